package ember

import "testing"

func TestMultiSearcherDocIDOffsets(t *testing.T) {
	storeA := newTestStore()
	storeA.AddDoc(Document{Fields: []Field{NewTextField("body", "fox dog")}})
	storeA.AddDoc(Document{Fields: []Field{NewTextField("body", "cat fox")}})

	storeB := newTestStore()
	storeB.AddDoc(Document{Fields: []Field{NewTextField("body", "fox bird")}})

	ms := NewMultiSearcher([]Reader{storeA, storeB})
	if got, want := ms.GlobalDoc(1, 0), 2; got != want {
		t.Fatalf("GlobalDoc(1,0) = %d, want %d", got, want)
	}
	sub, local := ms.LocalDoc(2)
	if sub != 1 || local != 0 {
		t.Fatalf("LocalDoc(2) = (%d,%d), want (1,0)", sub, local)
	}

	s := ms.Searcher()
	top, err := s.Search(NewTermQuery("body", "fox"), 0, 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	gotDocs := map[int]bool{}
	for _, h := range top.Hits {
		gotDocs[h.Doc] = true
	}
	if !gotDocs[0] || !gotDocs[1] || !gotDocs[2] {
		t.Fatalf("expected global docs 0,1,2 all to match 'fox' across both subs, got %v", top.Hits)
	}
}

func TestMultiSearcherDocFreqSummedAcrossSubs(t *testing.T) {
	storeA := newTestStore()
	storeA.AddDoc(Document{Fields: []Field{NewTextField("body", "fox")}})

	storeB := newTestStore()
	storeB.AddDoc(Document{Fields: []Field{NewTextField("body", "fox")}})
	storeB.AddDoc(Document{Fields: []Field{NewTextField("body", "dog")}})

	ms := NewMultiSearcher([]Reader{storeA, storeB})
	s := ms.Searcher()
	if got, want := s.DocFreq("body", "fox"), 2; got != want {
		t.Fatalf("DocFreq across subs = %d, want %d", got, want)
	}
	if got, want := s.MaxDoc(), 3; got != want {
		t.Fatalf("MaxDoc across subs = %d, want %d", got, want)
	}
}

func TestMultiSearcherEquivalentToMergedIndex(t *testing.T) {
	storeA := newTestStore()
	storeA.AddDoc(Document{Fields: []Field{NewTextField("body", "fox dog")}})

	storeB := newTestStore()
	storeB.AddDoc(Document{Fields: []Field{NewTextField("body", "fox cat")}})

	merged := newTestStore()
	merged.AddDoc(Document{Fields: []Field{NewTextField("body", "fox dog")}})
	merged.AddDoc(Document{Fields: []Field{NewTextField("body", "fox cat")}})

	ms := NewMultiSearcher([]Reader{storeA, storeB})
	multiTop, err := ms.Searcher().Search(NewTermQuery("body", "fox"), 0, 10, nil)
	if err != nil {
		t.Fatalf("multi search: %v", err)
	}
	mergedTop, err := NewSearcher(merged).Search(NewTermQuery("body", "fox"), 0, 10, nil)
	if err != nil {
		t.Fatalf("merged search: %v", err)
	}
	if multiTop.TotalHits != mergedTop.TotalHits {
		t.Fatalf("total hits differ: multi=%d merged=%d", multiTop.TotalHits, mergedTop.TotalHits)
	}
	if len(multiTop.Hits) != len(mergedTop.Hits) {
		t.Fatalf("hit count differs: multi=%d merged=%d", len(multiTop.Hits), len(mergedTop.Hits))
	}
}
