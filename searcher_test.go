package ember

import "testing"

func buildTestCorpus(t *testing.T) *MemStore {
	t.Helper()
	store := newTestStore()
	docs := []string{
		"the quick fox jumps over the lazy dog",
		"the lazy dog sleeps",
		"quick fox runs fast",
	}
	for _, body := range docs {
		if err := store.AddDoc(Document{Fields: []Field{NewTextField("body", body)}}); err != nil {
			t.Fatalf("AddDoc: %v", err)
		}
	}
	return store
}

func TestSearcherTermQuery(t *testing.T) {
	store := buildTestCorpus(t)
	s := NewSearcher(store)

	top, err := s.Search(NewTermQuery("body", "fox"), 0, 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if top.TotalHits != 2 {
		t.Fatalf("expected 2 hits for 'fox', got %d", top.TotalHits)
	}
	gotDocs := map[int]bool{}
	for _, h := range top.Hits {
		gotDocs[h.Doc] = true
	}
	if !gotDocs[0] || !gotDocs[2] {
		t.Fatalf("expected docs 0 and 2 to match 'fox', got %v", top.Hits)
	}
}

func TestSearcherBooleanMustAndMustNot(t *testing.T) {
	store := buildTestCorpus(t)
	s := NewSearcher(store)

	bq := NewBooleanQuery(false)
	bq.Add(NewTermQuery("body", "fox"), Must)
	bq.Add(NewTermQuery("body", "lazy"), MustNot)

	top, err := s.Search(bq, 0, 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(top.Hits) != 1 || top.Hits[0].Doc != 2 {
		t.Fatalf("expected only doc 2 to match fox AND NOT lazy, got %v", top.Hits)
	}
}

func TestSearcherScoreNormalization(t *testing.T) {
	store := buildTestCorpus(t)
	s := NewSearcher(store)

	top, err := s.Search(NewTermQuery("body", "fox"), 0, 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if top.MaxScore <= 0 {
		t.Fatalf("expected positive max score")
	}
	for _, h := range top.Hits {
		norm := h.Score / top.MaxScore
		if norm <= 0 || norm > 1 {
			t.Fatalf("normalized score %v out of (0,1] for doc %d", norm, h.Doc)
		}
	}
}

func TestSearcherExplainMatchesScore(t *testing.T) {
	store := buildTestCorpus(t)
	s := NewSearcher(store)
	q := NewTermQuery("body", "fox")

	top, err := s.Search(q, 0, 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, h := range top.Hits {
		exp, err := s.Explain(q, h.Doc)
		if err != nil {
			t.Fatalf("Explain: %v", err)
		}
		diff := exp.Value - h.Score
		if diff < 0 {
			diff = -diff
		}
		tol := 1e-4 * maxFloat(h.Score, 1)
		if diff > tol {
			t.Fatalf("explain value %v diverges from hit score %v by more than %v", exp.Value, h.Score, tol)
		}
	}
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func TestSearcherSearchEachMonotonicDocIDs(t *testing.T) {
	store := buildTestCorpus(t)
	s := NewSearcher(store)

	last := -1
	err := s.SearchEach(NewMatchAllQuery(), nil, nil, func(doc int, _ float64) error {
		if doc <= last {
			t.Fatalf("doc ids must strictly increase: got %d after %d", doc, last)
		}
		last = doc
		return nil
	})
	if err != nil {
		t.Fatalf("SearchEach: %v", err)
	}
	if last != 2 {
		t.Fatalf("expected to reach doc 2, last was %d", last)
	}
}

func TestSearcherSearchEachStopSignal(t *testing.T) {
	store := buildTestCorpus(t)
	s := NewSearcher(store)

	count := 0
	err := s.SearchEach(NewMatchAllQuery(), nil, nil, func(doc int, _ float64) error {
		count++
		return StopSignal
	})
	if err != nil {
		t.Fatalf("SearchEach with stop signal should not propagate an error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected enumeration to halt after first doc, got count=%d", count)
	}
}

func TestSearcherSearchUnscoredPaging(t *testing.T) {
	store := buildTestCorpus(t)
	s := NewSearcher(store)

	buf := make([]int, 2)
	n, err := s.SearchUnscored(NewMatchAllQuery(), buf, 0)
	if err != nil {
		t.Fatalf("SearchUnscored: %v", err)
	}
	if n != 2 || buf[0] != 0 || buf[1] != 1 {
		t.Fatalf("expected first page [0 1], got %v (n=%d)", buf[:n], n)
	}

	buf2 := make([]int, 2)
	n2, err := s.SearchUnscored(NewMatchAllQuery(), buf2, 2)
	if err != nil {
		t.Fatalf("SearchUnscored: %v", err)
	}
	if n2 != 1 || buf2[0] != 2 {
		t.Fatalf("expected second page [2], got %v (n=%d)", buf2[:n2], n2)
	}
}

func TestSearcherPagingEquivalence(t *testing.T) {
	store := buildTestCorpus(t)
	s := NewSearcher(store)
	q := NewMatchAllQuery()

	whole, err := s.Search(q, 0, 3, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	var paged []ScoreDoc
	for k := 0; k < 3; k++ {
		page, err := s.Search(q, k, 1, nil)
		if err != nil {
			t.Fatalf("Search page %d: %v", k, err)
		}
		paged = append(paged, page.Hits...)
	}

	if len(whole.Hits) != len(paged) {
		t.Fatalf("page concatenation length %d != whole search length %d", len(paged), len(whole.Hits))
	}
	for i := range whole.Hits {
		if whole.Hits[i] != paged[i] {
			t.Fatalf("page %d mismatch: whole=%v paged=%v", i, whole.Hits[i], paged[i])
		}
	}
}

func TestSearcherEmptyIndexReturnsEmptyTopDocs(t *testing.T) {
	store := newTestStore()
	s := NewSearcher(store)

	top, err := s.Search(NewTermQuery("body", "fox"), 0, 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if top.TotalHits != 0 || top.MaxScore != 0 || len(top.Hits) != 0 {
		t.Fatalf("expected empty TopDocs on empty index, got %+v", top)
	}
}
