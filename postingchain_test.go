package ember

import "testing"

func TestPostingChainPositionsForDocEmpty(t *testing.T) {
	pc := NewPostingChain()
	if got := pc.PositionsForDoc(3); got != nil {
		t.Fatalf("empty chain: got %v, want nil", got)
	}
}

func TestPostingChainInsertAndPositionsForDoc(t *testing.T) {
	pc := NewPostingChain()
	pc.Insert(1, 5)
	pc.Insert(1, 2)
	pc.Insert(1, 9)
	pc.Insert(2, 0)

	got := pc.PositionsForDoc(1)
	want := []int{2, 5, 9}
	if len(got) != len(want) {
		t.Fatalf("doc 1 positions: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("doc 1 positions: got %v, want %v", got, want)
		}
	}

	if got := pc.PositionsForDoc(2); len(got) != 1 || got[0] != 0 {
		t.Fatalf("doc 2 positions: got %v, want [0]", got)
	}
	if got := pc.PositionsForDoc(7); got != nil {
		t.Fatalf("doc 7 positions: got %v, want nil", got)
	}
}

func TestPostingChainInsertDuplicateIsNoOp(t *testing.T) {
	pc := NewPostingChain()
	pc.Insert(4, 1)
	pc.Insert(4, 1)
	pc.Insert(4, 1)

	got := pc.PositionsForDoc(4)
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("duplicate inserts: got %v, want [1]", got)
	}
}

func TestPostingChainInsertOutOfOrder(t *testing.T) {
	pc := NewPostingChain()
	for _, p := range []struct{ doc, pos int }{
		{3, 4}, {1, 0}, {2, 9}, {1, 2}, {3, 0}, {2, 1},
	} {
		pc.Insert(p.doc, p.pos)
	}

	cases := map[int][]int{
		1: {0, 2},
		2: {1, 9},
		3: {0, 4},
	}
	for doc, want := range cases {
		got := pc.PositionsForDoc(doc)
		if len(got) != len(want) {
			t.Fatalf("doc %d: got %v, want %v", doc, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("doc %d: got %v, want %v", doc, got, want)
			}
		}
	}
}

func TestPostingChainEach(t *testing.T) {
	pc := NewPostingChain()
	pc.Insert(2, 1)
	pc.Insert(1, 3)
	pc.Insert(1, 1)

	var seen []occurrence
	pc.Each(func(doc, pos int) {
		seen = append(seen, occurrence{doc: doc, pos: pos})
	})

	want := []occurrence{{1, 1}, {1, 3}, {2, 1}}
	if len(seen) != len(want) {
		t.Fatalf("Each order: got %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("Each order: got %v, want %v", seen, want)
		}
	}
}

func TestPostingChainLargeDataset(t *testing.T) {
	pc := NewPostingChain()
	const docs, perDoc = 50, 20
	for d := 0; d < docs; d++ {
		for p := perDoc - 1; p >= 0; p-- {
			pc.Insert(d, p)
		}
	}
	for d := 0; d < docs; d++ {
		got := pc.PositionsForDoc(d)
		if len(got) != perDoc {
			t.Fatalf("doc %d: got %d positions, want %d", d, len(got), perDoc)
		}
		for i, p := range got {
			if p != i {
				t.Fatalf("doc %d: position %d out of order: %v", d, i, got)
			}
		}
	}
}
