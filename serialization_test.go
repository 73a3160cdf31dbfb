package ember

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	store := newTestStore()
	store.AddDoc(Document{Fields: []Field{NewTextField("body", "the quick fox jumps over the lazy dog")}})
	store.AddDoc(Document{Fields: []Field{NewTextField("body", "the lazy dog sleeps")}})
	store.AddDoc(Document{Fields: []Field{NewTextField("body", "quick fox runs fast")}})
	if err := store.DeleteDoc(1); err != nil {
		t.Fatalf("DeleteDoc: %v", err)
	}

	data, err := store.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	restored := newTestStore()
	if err := restored.Decode(data); err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if restored.NumDocs() != store.NumDocs() {
		t.Fatalf("NumDocs mismatch: got %d, want %d", restored.NumDocs(), store.NumDocs())
	}
	if restored.MaxDoc() != store.MaxDoc() {
		t.Fatalf("MaxDoc mismatch: got %d, want %d", restored.MaxDoc(), store.MaxDoc())
	}
	if restored.Generation() != store.Generation() {
		t.Fatalf("Generation mismatch: got %d, want %d", restored.Generation(), store.Generation())
	}
	if !restored.IsDeleted(1) {
		t.Fatalf("expected doc 1 to remain deleted after round trip")
	}
	if restored.IsDeleted(0) || restored.IsDeleted(2) {
		t.Fatalf("expected docs 0 and 2 to remain live after round trip")
	}
	if restored.DocFreq("body", "fox") != store.DocFreq("body", "fox") {
		t.Fatalf("DocFreq mismatch for 'fox': got %d, want %d",
			restored.DocFreq("body", "fox"), store.DocFreq("body", "fox"))
	}

	origDoc, err := store.GetDoc(0)
	if err != nil {
		t.Fatalf("GetDoc orig: %v", err)
	}
	gotDoc, err := restored.GetDoc(0)
	if err != nil {
		t.Fatalf("GetDoc restored: %v", err)
	}
	if gotDoc.Get("body") != origDoc.Get("body") {
		t.Fatalf("stored field mismatch: got %q, want %q", gotDoc.Get("body"), origDoc.Get("body"))
	}
}

func TestEncodeDecodePositionsSurvive(t *testing.T) {
	store := newTestStore()
	store.AddDoc(Document{Fields: []Field{NewTextField("body", "the fox and the dog")}})

	data, err := store.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	restored := newTestStore()
	if err := restored.Decode(data); err != nil {
		t.Fatalf("Decode: %v", err)
	}

	it, err := restored.TermDocs("body", "the")
	if err != nil {
		t.Fatalf("TermDocs: %v", err)
	}
	if !it.Next() {
		t.Fatalf("expected a posting for 'the' after round trip")
	}
	positions := it.Positions()
	if len(positions) != 2 || positions[0] != 0 || positions[1] != 3 {
		t.Fatalf("expected positions [0 3] after round trip, got %v", positions)
	}
}

func TestEncodeDecodeSearchable(t *testing.T) {
	store := buildTestCorpus(t)

	data, err := store.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	restored := newTestStore()
	if err := restored.Decode(data); err != nil {
		t.Fatalf("Decode: %v", err)
	}

	origTop, err := NewSearcher(store).Search(NewTermQuery("body", "fox"), 0, 10, nil)
	if err != nil {
		t.Fatalf("original Search: %v", err)
	}
	restoredTop, err := NewSearcher(restored).Search(NewTermQuery("body", "fox"), 0, 10, nil)
	if err != nil {
		t.Fatalf("restored Search: %v", err)
	}
	if origTop.TotalHits != restoredTop.TotalHits {
		t.Fatalf("TotalHits mismatch: orig=%d restored=%d", origTop.TotalHits, restoredTop.TotalHits)
	}
	for i := range origTop.Hits {
		if origTop.Hits[i].Doc != restoredTop.Hits[i].Doc {
			t.Fatalf("hit %d doc mismatch: orig=%d restored=%d", i, origTop.Hits[i].Doc, restoredTop.Hits[i].Doc)
		}
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	store := newTestStore()
	err := store.Decode([]byte("not a valid snapshot"))
	if err == nil {
		t.Fatalf("expected an error decoding garbage input")
	}
}
