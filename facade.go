// ═══════════════════════════════════════════════════════════════════════════════
// INDEX FAÇADE
// ═══════════════════════════════════════════════════════════════════════════════
// Index is the mutex-guarded lifecycle that coordinates a store's
// reader/writer/searcher roles: keyed upserts, deletions by doc/term/query,
// auto-commit, and check_latest freshness. Grounded on the teacher's single
// sync.Mutex-guarded InvertedIndex, where every mutating method locks and
// defers unlock around the whole operation (index.go in the teacher) -
// generalized here into an explicit role state machine layered on top of the
// same lock discipline, logging at the same coarse boundary the teacher logs
// at ("indexing document" in the teacher's Index()).
// ═══════════════════════════════════════════════════════════════════════════════

package ember

import (
	"log/slog"
	"sync"
)

type role int

const (
	roleNone role = iota
	roleReader
	roleWriter
	roleSearcher
)

// IndexConfig configures an Index façade at construction.
type IndexConfig struct {
	Analyzer     Analyzer
	AutoFlush    bool     // commit/close on every mutation instead of deferring to Flush
	CheckLatest  bool     // validate store generation on every reader/searcher acquisition
	KeyFields    []string // AddDoc performs a keyed upsert against these fields
	DefaultField string
}

// Index is the façade described in the component design: a mutex-guarded
// state machine over a store, switching between reader/writer/searcher
// modes, applying keyed upserts, deletions, auto-commit and freshness
// checks.
type Index struct {
	mu sync.Mutex

	store *MemStore
	cfg   IndexConfig

	role      role
	hasWrites bool
	closed    bool

	searcher  *Searcher
	searchGen uint64
}

// NewIndex creates a façade over a fresh in-RAM store.
func NewIndex(cfg IndexConfig) *Index {
	return &Index{store: NewMemStore(cfg.Analyzer), cfg: cfg}
}

func (idx *Index) requireOpen() error {
	if idx.closed {
		return wrapErr(StateError, ErrClosed)
	}
	return nil
}

// openWriter transitions to writer role. Per the component design, opening
// as writer closes any open reader/searcher.
func (idx *Index) openWriter() {
	idx.role = roleWriter
	idx.searcher = nil
}

// openSearcher transitions to searcher role, rebuilding the cached Searcher
// if this is the first acquisition or, when CheckLatest is set, if the
// store has advanced since the cached one was built.
func (idx *Index) openSearcher() *Searcher {
	stale := idx.cfg.CheckLatest && idx.searcher != nil && idx.searchGen != idx.store.Generation()
	if idx.searcher == nil || stale {
		idx.searcher = NewSearcher(idx.store)
		idx.searchGen = idx.store.Generation()
	}
	idx.role = roleSearcher
	return idx.searcher
}

// afterMutation applies the auto-flush policy: commit immediately when
// AutoFlush is set, otherwise defer to an explicit Flush or a mode switch.
func (idx *Index) afterMutation() error {
	idx.hasWrites = true
	if idx.cfg.AutoFlush {
		return idx.flushLocked()
	}
	return nil
}

func (idx *Index) flushLocked() error {
	if !idx.hasWrites {
		return nil
	}
	if err := idx.store.Commit(); err != nil {
		return wrapErr(IOError, err)
	}
	idx.hasWrites = false
	return nil
}

// Flush commits any writes deferred by a disabled auto-flush policy.
func (idx *Index) Flush() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if err := idx.requireOpen(); err != nil {
		return err
	}
	return idx.flushLocked()
}

// AddDoc performs a keyed upsert per the component design: with a single key
// field, a delete-by-term precedes the add; with more than one key field, a
// conjunction of term queries over those fields decides whether to add,
// delete-then-add, or fail with ErrNonUniqueKey.
func (idx *Index) AddDoc(doc Document) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if err := idx.requireOpen(); err != nil {
		return err
	}
	idx.openWriter()

	switch len(idx.cfg.KeyFields) {
	case 0:
		// no key fields: always append.
	case 1:
		field := idx.cfg.KeyFields[0]
		if err := idx.store.DeleteTerm(field, doc.Get(field)); err != nil {
			return wrapErr(IOError, err)
		}
	default:
		bq := NewBooleanQuery(false)
		for _, f := range idx.cfg.KeyFields {
			bq.Add(NewTermQuery(f, doc.Get(f)), Must)
		}
		var hits []int
		s := idx.openSearcher()
		err := s.SearchEach(bq, nil, nil, func(d int, _ float64) error {
			hits = append(hits, d)
			return nil
		})
		if err != nil {
			return err
		}
		idx.role = roleWriter
		switch len(hits) {
		case 0:
			// no existing doc shares the key; add below.
		case 1:
			if err := idx.store.DeleteDoc(hits[0]); err != nil {
				return wrapErr(IOError, err)
			}
		default:
			return wrapErr(ArgumentError, ErrNonUniqueKey)
		}
	}

	if err := idx.store.AddDoc(doc); err != nil {
		return wrapErr(IOError, err)
	}
	slog.Info("indexed document via facade", slog.Int("keyFields", len(idx.cfg.KeyFields)))
	return idx.afterMutation()
}

// DeleteDoc deletes a single doc id. Requires a reader, which MemStore
// always satisfies.
func (idx *Index) DeleteDoc(doc int) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if err := idx.requireOpen(); err != nil {
		return err
	}
	idx.role = roleReader
	if err := idx.store.DeleteDoc(doc); err != nil {
		return wrapErr(IOError, err)
	}
	return idx.afterMutation()
}

// DeleteTerm deletes every live document containing (field, term).
func (idx *Index) DeleteTerm(field, term string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if err := idx.requireOpen(); err != nil {
		return err
	}
	if err := idx.store.DeleteTerm(field, term); err != nil {
		return wrapErr(IOError, err)
	}
	return idx.afterMutation()
}

// DeleteQuery deletes every document matching q. Hit doc ids are buffered
// before any delete is issued, so the reader's deletion bitmap update never
// races the SearchEach iteration producing it (see DESIGN.md open question).
func (idx *Index) DeleteQuery(q Query) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if err := idx.requireOpen(); err != nil {
		return err
	}
	s := idx.openSearcher()
	var hits []int
	err := s.SearchEach(q, nil, nil, func(doc int, _ float64) error {
		hits = append(hits, doc)
		return nil
	})
	if err != nil {
		return err
	}
	idx.role = roleReader
	for _, doc := range hits {
		if err := idx.store.DeleteDoc(doc); err != nil {
			return wrapErr(IOError, err)
		}
	}
	return idx.afterMutation()
}

// Searcher returns the façade's searcher, opening one (which requires an
// open reader, trivially satisfied by MemStore) if needed.
func (idx *Index) Searcher() (*Searcher, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if err := idx.requireOpen(); err != nil {
		return nil, err
	}
	return idx.openSearcher(), nil
}

// SetAnalyzer atomically rebinds the analyzer used by subsequent AddDoc
// calls, including while a writer is conceptually open.
func (idx *Index) SetAnalyzer(a Analyzer) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if err := idx.requireOpen(); err != nil {
		return err
	}
	idx.cfg.Analyzer = a
	idx.store.SetAnalyzer(a)
	return nil
}

// Optimize forwards to the store's writer contract.
func (idx *Index) Optimize() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if err := idx.requireOpen(); err != nil {
		return err
	}
	idx.openWriter()
	if err := idx.store.Optimize(); err != nil {
		return wrapErr(IOError, err)
	}
	return nil
}

// Close flushes any pending writes and marks the façade closed; subsequent
// operations return ErrClosed.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.closed {
		return nil
	}
	if err := idx.flushLocked(); err != nil {
		return err
	}
	idx.closed = true
	idx.role = roleNone
	idx.searcher = nil
	return idx.store.Close()
}
