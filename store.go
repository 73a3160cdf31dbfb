// ═══════════════════════════════════════════════════════════════════════════════
// REFERENCE STORE
// ═══════════════════════════════════════════════════════════════════════════════
// MemStore is the one concrete Reader+Writer implementation this repository
// ships: a single in-RAM segment holding, per (field, term), a roaring
// bitmap of containing doc ids plus a PostingChain of exact positions,
// alongside per-(field, doc) length norms, a roaring-bitmap deleted-docs
// set, and a generation counter so the Index façade can tell when a reader
// has gone stale.
// ═══════════════════════════════════════════════════════════════════════════════

package ember

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/RoaringBitmap/roaring"
)

// fieldTerm is the composite key every posting structure is indexed by.
type fieldTerm struct {
	Field string
	Text  string
}

// PostingsIterator walks the postings for a single (field, term) in
// increasing doc_id order.
type PostingsIterator interface {
	Next() bool
	SkipTo(target int) bool
	Doc() int
	Freq() int
	Positions() []int
	Close() error
}

// Reader is the read-side store contract: term dictionary lookups, postings,
// document retrieval and the deletion/freshness state the façade needs.
type Reader interface {
	NumDocs() int
	MaxDoc() int
	HasDeletions() bool
	IsDeleted(doc int) bool
	DeleteDoc(doc int) error
	TermDocs(field, term string) (PostingsIterator, error)
	Terms(field string) ([]string, error)
	GetDoc(doc int) (Document, error)
	DocFreq(field, term string) int
	Norm(field string, doc int) float32
	Generation() uint64
	IsLatest() bool
	Commit() error
	Close() error
}

// Writer is the write-side store contract.
type Writer interface {
	AddDoc(doc Document) error
	DeleteTerm(field, term string) error
	Optimize() error
	Close() error
	Analyzer() Analyzer
}

// MemStore is an in-RAM segment satisfying both Reader and Writer.
type MemStore struct {
	mu sync.Mutex

	analyzer Analyzer

	docBitmaps map[fieldTerm]*roaring.Bitmap // (field,term) -> doc ids containing it
	postings   map[fieldTerm]*PostingChain   // (field,term) -> exact positions

	fieldNorms map[string]map[int]byte // field -> doc id -> encoded length norm
	docs       map[int]Document        // doc id -> stored document

	deleted *roaring.Bitmap

	nextDocID  int
	generation uint64
}

// NewMemStore creates an empty store using the given analyzer for indexed
// fields.
func NewMemStore(analyzer Analyzer) *MemStore {
	if analyzer == nil {
		analyzer = NewStandardAnalyzer()
	}
	return &MemStore{
		analyzer:   analyzer,
		docBitmaps: make(map[fieldTerm]*roaring.Bitmap),
		postings:   make(map[fieldTerm]*PostingChain),
		fieldNorms: make(map[string]map[int]byte),
		docs:       make(map[int]Document),
		deleted:    roaring.NewBitmap(),
	}
}

// AddDoc indexes every indexed field (analyzed fields through the store's
// Analyzer, unanalyzed ones as a single literal term) and appends the
// document under the next sequential doc id. The id is not returned.
func (m *MemStore) AddDoc(doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	docID := m.nextDocID
	m.nextDocID++

	fieldLen := make(map[string]int)
	for _, f := range doc.Fields {
		if !f.Indexed {
			continue
		}
		if !f.Analyzed {
			base := fieldLen[f.Name]
			m.indexToken(fieldTerm{Field: f.Name, Text: f.Value}, docID, base)
			fieldLen[f.Name]++
			continue
		}
		tokens := m.analyzer.Analyze(f.Name, f.Value)
		base := fieldLen[f.Name]
		for _, tok := range tokens {
			m.indexToken(fieldTerm{Field: f.Name, Text: tok.Text}, docID, base+tok.Position)
		}
		fieldLen[f.Name] += len(tokens)
	}

	for field, n := range fieldLen {
		if m.fieldNorms[field] == nil {
			m.fieldNorms[field] = make(map[int]byte)
		}
		m.fieldNorms[field][docID] = EncodeNorm(DefaultSimilarity().LengthNorm(n))
	}

	m.docs[docID] = doc
	m.generation++
	slog.Info("indexing document", slog.Int("docID", docID))
	return nil
}

func (m *MemStore) indexToken(ft fieldTerm, docID, position int) {
	if m.docBitmaps[ft] == nil {
		m.docBitmaps[ft] = roaring.NewBitmap()
	}
	m.docBitmaps[ft].Add(uint32(docID))

	pc, ok := m.postings[ft]
	if !ok {
		pc = NewPostingChain()
		m.postings[ft] = pc
	}
	pc.Insert(docID, position)
}

// DeleteTerm marks every document containing (field, term) as deleted.
func (m *MemStore) DeleteTerm(field, term string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	bm := m.docBitmaps[fieldTerm{Field: field, Text: term}]
	if bm == nil {
		return nil
	}
	it := bm.Iterator()
	for it.HasNext() {
		m.deleted.Add(it.Next())
	}
	m.generation++
	slog.Info("deleting by term", slog.String("field", field), slog.String("term", term))
	return nil
}

// DeleteDoc marks a single doc id as deleted.
func (m *MemStore) DeleteDoc(doc int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted.Add(uint32(doc))
	m.generation++
	return nil
}

func (m *MemStore) IsDeleted(doc int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleted.Contains(uint32(doc))
}

func (m *MemStore) HasDeletions() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.deleted.IsEmpty()
}

func (m *MemStore) NumDocs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nextDocID - int(m.deleted.GetCardinality())
}

func (m *MemStore) MaxDoc() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nextDocID
}

// Norm returns the decoded length-norm factor for (field, doc), or 0 if the
// field was never indexed for that document.
func (m *MemStore) Norm(field string, doc int) float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	byDoc := m.fieldNorms[field]
	if byDoc == nil {
		return 0
	}
	return DecodeNorm(byDoc[doc])
}

// TermDocs returns a PostingsIterator over live (non-deleted) documents
// containing (field, term). An unknown field or term yields an empty,
// non-erroring iterator: per the error-handling design, missing terms
// degrade to zero hits rather than failing the search.
func (m *MemStore) TermDocs(field, term string) (PostingsIterator, error) {
	m.mu.Lock()
	bm := m.docBitmaps[fieldTerm{Field: field, Text: term}]
	if bm == nil {
		m.mu.Unlock()
		return &postingsIter{idx: -1}, nil
	}
	live := roaring.AndNot(bm, m.deleted)
	docs := live.ToArray()
	m.mu.Unlock()

	return &postingsIter{
		store: m,
		ft:    fieldTerm{Field: field, Text: term},
		docs:  docs,
		idx:   -1,
	}, nil
}

// Terms returns every distinct term indexed under field, sorted.
func (m *MemStore) Terms(field string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]struct{})
	for ft := range m.docBitmaps {
		if ft.Field == field {
			seen[ft.Text] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

// GetDoc returns the stored document for doc, or ErrDocNotFound.
func (m *MemStore) GetDoc(doc int) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[doc]
	if !ok {
		return Document{}, wrapErr(StateError, ErrDocNotFound)
	}
	return d, nil
}

// DocFreq is the number of live documents containing (field, term).
func (m *MemStore) DocFreq(field, term string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	bm := m.docBitmaps[fieldTerm{Field: field, Text: term}]
	if bm == nil {
		return 0
	}
	return int(roaring.AndNot(bm, m.deleted).GetCardinality())
}

func (m *MemStore) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation
}

// IsLatest is always true for MemStore: there is no external writer that
// could advance the store behind this reader's back.
func (m *MemStore) IsLatest() bool { return true }

func (m *MemStore) Commit() error { return nil }

func (m *MemStore) Close() error { return nil }

// Optimize merges the store with itself. There is only ever one in-RAM
// segment, so there is nothing to physically merge, but the generation
// counter still advances so check_latest readers observe the operation,
// exercising the full Writer contract.
func (m *MemStore) Optimize() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generation++
	return nil
}

func (m *MemStore) Analyzer() Analyzer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.analyzer
}

// SetAnalyzer atomically rebinds the analyzer used by subsequent AddDoc
// calls.
func (m *MemStore) SetAnalyzer(a Analyzer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analyzer = a
}

// postingsIter groups a term's PostingChain entries by document: a cheap
// roaring-bitmap pass already gave us the sorted candidate doc ids, so
// Next/SkipTo only walk that slice, and positions for the current document
// are fetched lazily via the chain's own PositionsForDoc.
type postingsIter struct {
	store *MemStore
	ft    fieldTerm
	docs  []uint32
	idx   int

	curPositions []int
}

func (p *postingsIter) Next() bool {
	p.idx++
	if p.idx >= len(p.docs) {
		return false
	}
	p.load()
	return true
}

func (p *postingsIter) SkipTo(target int) bool {
	lo := p.idx + 1
	if lo < 0 {
		lo = 0
	}
	if lo > len(p.docs) {
		lo = len(p.docs)
	}
	i := sort.Search(len(p.docs)-lo, func(k int) bool {
		return p.docs[lo+k] >= uint32(target)
	})
	p.idx = lo + i
	if p.idx >= len(p.docs) {
		return false
	}
	p.load()
	return true
}

func (p *postingsIter) load() {
	p.store.mu.Lock()
	pc := p.store.postings[p.ft]
	p.store.mu.Unlock()
	if pc == nil {
		p.curPositions = nil
		return
	}
	p.curPositions = pc.PositionsForDoc(int(p.docs[p.idx]))
}

func (p *postingsIter) Doc() int {
	if p.idx < 0 || p.idx >= len(p.docs) {
		return -1
	}
	return int(p.docs[p.idx])
}

func (p *postingsIter) Freq() int { return len(p.curPositions) }

func (p *postingsIter) Positions() []int { return p.curPositions }

func (p *postingsIter) Close() error { return nil }
