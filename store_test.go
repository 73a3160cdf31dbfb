package ember

import "testing"

func TestMemStoreAddDocAndTermDocs(t *testing.T) {
	store := newTestStore()
	store.AddDoc(Document{Fields: []Field{NewTextField("body", "fox dog")}})
	store.AddDoc(Document{Fields: []Field{NewTextField("body", "fox cat")}})

	it, err := store.TermDocs("body", "fox")
	if err != nil {
		t.Fatalf("TermDocs: %v", err)
	}
	var docs []int
	for it.Next() {
		docs = append(docs, it.Doc())
	}
	if len(docs) != 2 || docs[0] != 0 || docs[1] != 1 {
		t.Fatalf("expected docs [0 1], got %v", docs)
	}
}

func TestMemStoreTermDocsUnknownTermIsEmptyNotError(t *testing.T) {
	store := newTestStore()
	store.AddDoc(Document{Fields: []Field{NewTextField("body", "fox")}})

	it, err := store.TermDocs("body", "nonexistent")
	if err != nil {
		t.Fatalf("unknown term must not error: %v", err)
	}
	if it.Next() {
		t.Fatalf("unknown term should yield no postings")
	}
}

func TestMemStoreDeleteDoc(t *testing.T) {
	store := newTestStore()
	store.AddDoc(Document{Fields: []Field{NewTextField("body", "fox")}})
	store.AddDoc(Document{Fields: []Field{NewTextField("body", "fox")}})

	if store.DocFreq("body", "fox") != 2 {
		t.Fatalf("expected doc_freq 2 before delete")
	}
	if err := store.DeleteDoc(0); err != nil {
		t.Fatalf("DeleteDoc: %v", err)
	}
	if !store.IsDeleted(0) {
		t.Fatalf("doc 0 should be deleted")
	}
	if store.DocFreq("body", "fox") != 1 {
		t.Fatalf("doc_freq should drop to 1 after delete, got %d", store.DocFreq("body", "fox"))
	}
	if store.NumDocs() != 1 {
		t.Fatalf("NumDocs should exclude deleted docs, got %d", store.NumDocs())
	}
}

func TestMemStoreDeleteTerm(t *testing.T) {
	store := newTestStore()
	store.AddDoc(Document{Fields: []Field{NewTextField("body", "fox")}})
	store.AddDoc(Document{Fields: []Field{NewTextField("body", "dog")}})

	if err := store.DeleteTerm("body", "fox"); err != nil {
		t.Fatalf("DeleteTerm: %v", err)
	}
	if !store.IsDeleted(0) {
		t.Fatalf("doc containing deleted term should be marked deleted")
	}
	if store.IsDeleted(1) {
		t.Fatalf("unrelated doc should not be deleted")
	}
}

func TestMemStorePositions(t *testing.T) {
	store := newTestStore()
	store.AddDoc(Document{Fields: []Field{NewTextField("body", "the fox and the dog")}})

	it, err := store.TermDocs("body", "the")
	if err != nil {
		t.Fatalf("TermDocs: %v", err)
	}
	if !it.Next() {
		t.Fatalf("expected one doc for 'the'")
	}
	positions := it.Positions()
	if len(positions) != 2 || positions[0] != 0 || positions[1] != 3 {
		t.Fatalf("expected positions [0 3], got %v", positions)
	}
}

func TestMemStoreGeneration(t *testing.T) {
	store := newTestStore()
	g0 := store.Generation()
	store.AddDoc(Document{Fields: []Field{NewTextField("body", "fox")}})
	if store.Generation() <= g0 {
		t.Fatalf("generation should advance after a mutation")
	}
}
