package ember

import "testing"

func TestTopCollectorBoundedKeepsBest(t *testing.T) {
	c := newTopCollector(2)
	c.collect(0, 1.0)
	c.collect(1, 3.0)
	c.collect(2, 2.0)

	top := c.topDocs(0, 2)
	if top.TotalHits != 3 {
		t.Fatalf("TotalHits should count every collected doc, got %d", top.TotalHits)
	}
	if top.MaxScore != 3.0 {
		t.Fatalf("MaxScore = %v, want 3.0", top.MaxScore)
	}
	if len(top.Hits) != 2 || top.Hits[0].Doc != 1 || top.Hits[1].Doc != 2 {
		t.Fatalf("expected best two hits [1 2] in descending-score order, got %v", top.Hits)
	}
}

func TestTopCollectorTieBreakAscendingDoc(t *testing.T) {
	c := newTopCollector(1)
	c.collect(5, 1.0)
	c.collect(2, 1.0)

	top := c.topDocs(0, 1)
	if len(top.Hits) != 1 || top.Hits[0].Doc != 2 {
		t.Fatalf("equal scores should keep the lower doc id, got %v", top.Hits)
	}
}

func TestTopCollectorUnbounded(t *testing.T) {
	c := newTopCollector(0)
	for i := 0; i < 5; i++ {
		c.collect(i, float64(i))
	}
	top := c.topDocs(0, -1)
	if len(top.Hits) != 5 {
		t.Fatalf("unbounded collector should keep every hit, got %d", len(top.Hits))
	}
}

func TestTopCollectorWindowing(t *testing.T) {
	c := newTopCollector(0)
	for i := 0; i < 5; i++ {
		c.collect(i, float64(10-i))
	}
	top := c.topDocs(1, 2)
	if len(top.Hits) != 2 || top.Hits[0].Doc != 1 || top.Hits[1].Doc != 2 {
		t.Fatalf("expected window [1 2] after skipping the first best hit, got %v", top.Hits)
	}
}
