package ember

import "testing"

// keywordCorpus builds a store where "cat", "date" and "number" are keyword
// (unanalyzed) fields: each doc's whole field value is indexed as one
// literal term, exactly what Prefix/Wildcard/Range/TypedRange expect to find
// in the term dictionary.
func keywordCorpus(t *testing.T) *MemStore {
	t.Helper()
	store := newTestStore()
	rows := []struct{ cat, date, number string }{
		{"cat1/", "20051001", "-2.0"},
		{"cat1/sub", "20051005", "-1.0"},
		{"cat1/sub/sub2", "20051006", "0.0"},
		{"cat2/", "20051010", "0.5"},
		{"cat1/sub2", "20051012", "1.0"},
		{"cat1/sub2/sub2", "20051020", "2.0"},
	}
	for _, r := range rows {
		doc := Document{Fields: []Field{
			NewKeywordField("cat", r.cat),
			NewKeywordField("date", r.date),
			NewKeywordField("number", r.number),
		}}
		if err := store.AddDoc(doc); err != nil {
			t.Fatalf("AddDoc: %v", err)
		}
	}
	return store
}

func docSet(t *testing.T, s *Searcher, q Query) map[int]bool {
	t.Helper()
	out := map[int]bool{}
	if err := s.SearchEach(q, nil, nil, func(doc int, _ float64) error {
		out[doc] = true
		return nil
	}); err != nil {
		t.Fatalf("SearchEach: %v", err)
	}
	return out
}

func TestPrefixQueryMatchesKeywordField(t *testing.T) {
	store := keywordCorpus(t)
	s := NewSearcher(store)

	got := docSet(t, s, NewPrefixQuery("cat", "cat1"))
	want := map[int]bool{0: true, 1: true, 2: true, 4: true, 5: true}
	if len(got) != len(want) {
		t.Fatalf("prefix cat1: got %v, want %v", got, want)
	}
	for d := range want {
		if !got[d] {
			t.Fatalf("prefix cat1: missing doc %d in %v", d, got)
		}
	}

	got2 := docSet(t, s, NewPrefixQuery("cat", "cat1/sub2"))
	want2 := map[int]bool{4: true, 5: true}
	if len(got2) != len(want2) || !got2[4] || !got2[5] {
		t.Fatalf("prefix cat1/sub2: got %v, want %v", got2, want2)
	}
}

func TestWildcardQueryGlob(t *testing.T) {
	store := keywordCorpus(t)
	s := NewSearcher(store)

	got := docSet(t, s, NewWildcardQuery("cat", "cat1/s*sub2"))
	want := map[int]bool{2: true, 5: true}
	if len(got) != len(want) || !got[2] || !got[5] {
		t.Fatalf("wildcard cat1/s*sub2: got %v, want %v", got, want)
	}

	gotExact := docSet(t, s, NewWildcardQuery("cat", "cat1/"))
	if len(gotExact) != 1 || !gotExact[0] {
		t.Fatalf("wildcard cat1/ (no glob chars, whole-string match): got %v, want {0}", gotExact)
	}
}

func TestWildcardQueryEmptyPatternMatchesNothing(t *testing.T) {
	store := keywordCorpus(t)
	s := NewSearcher(store)
	got := docSet(t, s, NewWildcardQuery("cat", ""))
	if len(got) != 0 {
		t.Fatalf("empty wildcard pattern must match nothing, got %v", got)
	}
}

func TestRangeQueryLexicographicBounds(t *testing.T) {
	store := keywordCorpus(t)
	s := NewSearcher(store)

	lo, hi := "20051005", "20051010"
	rq := NewRangeQuery("date")
	rq.Lower, rq.Upper = &lo, &hi
	rq.LowerInclusive, rq.UpperInclusive = true, true
	got := docSet(t, s, rq)
	want := map[int]bool{1: true, 2: true, 3: true}
	if len(got) != len(want) {
		t.Fatalf("inclusive range: got %v, want docs 1,2,3", got)
	}
	for d := range want {
		if !got[d] {
			t.Fatalf("inclusive range: missing doc %d in %v", d, got)
		}
	}

	rq2 := NewRangeQuery("date")
	rq2.Lower, rq2.Upper = &lo, &hi
	rq2.LowerInclusive, rq2.UpperInclusive = false, true
	got2 := docSet(t, s, rq2)
	if got2[1] {
		t.Fatalf("exclusive lower bound must drop the boundary term: got %v", got2)
	}
	if !got2[2] || !got2[3] {
		t.Fatalf("exclusive-lower range: got %v, want docs 2,3", got2)
	}

	rq3 := NewRangeQuery("date")
	rq3.Lower, rq3.Upper = &lo, &hi
	rq3.LowerInclusive, rq3.UpperInclusive = true, false
	got3 := docSet(t, s, rq3)
	if got3[3] {
		t.Fatalf("exclusive upper bound must drop the boundary term: got %v", got3)
	}
	if !got3[1] || !got3[2] {
		t.Fatalf("exclusive-upper range: got %v, want docs 1,2", got3)
	}
}

func TestTypedRangeQueryNumericBounds(t *testing.T) {
	store := keywordCorpus(t)
	s := NewSearcher(store)

	lo, hi := -1.0, 1.0
	trq := NewTypedRangeQuery("number")
	trq.Lower, trq.Upper = &lo, &hi
	trq.LowerInclusive, trq.UpperInclusive = true, true
	got := docSet(t, s, trq)
	want := map[int]bool{1: true, 2: true, 3: true, 4: true}
	if len(got) != len(want) {
		t.Fatalf("inclusive typed range: got %v, want docs 1,2,3,4", got)
	}
	for d := range want {
		if !got[d] {
			t.Fatalf("inclusive typed range: missing doc %d in %v", d, got)
		}
	}

	trq2 := NewTypedRangeQuery("number")
	trq2.Lower, trq2.Upper = &lo, &hi
	trq2.LowerInclusive, trq2.UpperInclusive = false, false
	got2 := docSet(t, s, trq2)
	want2 := map[int]bool{2: true, 3: true}
	if len(got2) != len(want2) || !got2[2] || !got2[3] {
		t.Fatalf("exclusive typed range: got %v, want docs 2,3", got2)
	}
}

func TestTypedRangeQueryOpenEndedBounds(t *testing.T) {
	store := keywordCorpus(t)
	s := NewSearcher(store)

	hi := 0.0
	trq := NewTypedRangeQuery("number")
	trq.Upper = &hi
	trq.UpperInclusive = true
	got := docSet(t, s, trq)
	want := map[int]bool{0: true, 1: true, 2: true}
	if len(got) != len(want) {
		t.Fatalf("open-lower typed range: got %v, want docs 0,1,2", got)
	}
	for d := range want {
		if !got[d] {
			t.Fatalf("open-lower typed range: missing doc %d in %v", d, got)
		}
	}
}
