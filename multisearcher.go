// ═══════════════════════════════════════════════════════════════════════════════
// MULTI-SEARCHER
// ═══════════════════════════════════════════════════════════════════════════════
// MultiSearcher is a transparent union of sub-searchers: global doc id =
// local doc id + that sub's offset. doc_freq is summed across subs before
// weighting a query so idf stays globally consistent, matching the
// component design's requirement that a union of indexes score the same as
// one merged index modulo doc-id remapping.
// ═══════════════════════════════════════════════════════════════════════════════

package ember

// MultiSearcher searches an ordered list of sub-readers as one logical index.
type MultiSearcher struct {
	subs    []Reader
	offsets []int
	total   int
	sim     Similarity
}

// NewMultiSearcher computes each sub's global doc-id offset from the
// preceding subs' MaxDoc, in order.
func NewMultiSearcher(subs []Reader) *MultiSearcher {
	offsets := make([]int, len(subs))
	total := 0
	for i, r := range subs {
		offsets[i] = total
		total += r.MaxDoc()
	}
	return &MultiSearcher{subs: subs, offsets: offsets, total: total, sim: DefaultSimilarity()}
}

// multiReader presents the union of subs as a single Reader with
// globally-remapped doc ids, so the ordinary scorer tree built for a single
// Searcher runs unmodified over it.
type multiReader struct {
	subs    []Reader
	offsets []int
}

func (m *multiReader) localOf(doc int) (Reader, int, int) {
	for i := len(m.subs) - 1; i >= 0; i-- {
		if doc >= m.offsets[i] {
			return m.subs[i], doc - m.offsets[i], m.offsets[i]
		}
	}
	return nil, -1, -1
}

func (m *multiReader) NumDocs() int {
	n := 0
	for _, r := range m.subs {
		n += r.NumDocs()
	}
	return n
}

func (m *multiReader) MaxDoc() int {
	if len(m.subs) == 0 {
		return 0
	}
	return m.offsets[len(m.offsets)-1] + m.subs[len(m.subs)-1].MaxDoc()
}

func (m *multiReader) HasDeletions() bool {
	for _, r := range m.subs {
		if r.HasDeletions() {
			return true
		}
	}
	return false
}

func (m *multiReader) IsDeleted(doc int) bool {
	r, local, _ := m.localOf(doc)
	if r == nil {
		return true
	}
	return r.IsDeleted(local)
}

func (m *multiReader) DeleteDoc(doc int) error {
	r, local, _ := m.localOf(doc)
	if r == nil {
		return wrapErr(StateError, ErrDocNotFound)
	}
	return r.DeleteDoc(local)
}

// multiPostingsIterator walks each sub's postings in order, translating
// local doc ids to global ones as it goes: sub order fixes a total order on
// global doc ids because every doc in sub i is numbered below every doc in
// sub i+1.
type multiPostingsIterator struct {
	subs    []Reader
	offsets []int
	field   string
	term    string
	idx     int
	cur     PostingsIterator
}

func (m *multiReader) TermDocs(field, term string) (PostingsIterator, error) {
	it := &multiPostingsIterator{subs: m.subs, offsets: m.offsets, field: field, term: term, idx: -1}
	return it, nil
}

func (it *multiPostingsIterator) advanceSub() bool {
	for {
		it.idx++
		if it.idx >= len(it.subs) {
			it.cur = nil
			return false
		}
		cur, err := it.subs[it.idx].TermDocs(it.field, it.term)
		if err != nil {
			continue
		}
		it.cur = cur
		if it.cur.Next() {
			return true
		}
	}
}

func (it *multiPostingsIterator) Next() bool {
	if it.cur == nil {
		return it.advanceSub()
	}
	if it.cur.Next() {
		return true
	}
	return it.advanceSub()
}

func (it *multiPostingsIterator) SkipTo(target int) bool {
	for {
		if it.cur == nil {
			if !it.advanceSub() {
				return false
			}
		}
		subStart := it.offsets[it.idx]
		localTarget := target - subStart
		if localTarget < 0 {
			// target precedes this sub's doc-id range entirely; cur is
			// already positioned at its first live doc, which satisfies it.
			return true
		}
		if it.cur.SkipTo(localTarget) {
			return true
		}
		if !it.advanceSub() {
			return false
		}
	}
}

func (it *multiPostingsIterator) Doc() int {
	if it.cur == nil || it.cur.Doc() < 0 {
		return NoMoreDocs
	}
	return it.cur.Doc() + it.offsets[it.idx]
}

func (it *multiPostingsIterator) Freq() int {
	if it.cur == nil {
		return 0
	}
	return it.cur.Freq()
}

func (it *multiPostingsIterator) Positions() []int {
	if it.cur == nil {
		return nil
	}
	return it.cur.Positions()
}

func (it *multiPostingsIterator) Close() error {
	if it.cur != nil {
		return it.cur.Close()
	}
	return nil
}

func (m *multiReader) Terms(field string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range m.subs {
		terms, err := r.Terms(field)
		if err != nil {
			return nil, err
		}
		for _, t := range terms {
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func (m *multiReader) GetDoc(doc int) (Document, error) {
	r, local, _ := m.localOf(doc)
	if r == nil {
		return Document{}, wrapErr(StateError, ErrDocNotFound)
	}
	return r.GetDoc(local)
}

// DocFreq is summed across every sub so idf stays consistent with treating
// the union as one merged index.
func (m *multiReader) DocFreq(field, term string) int {
	sum := 0
	for _, r := range m.subs {
		sum += r.DocFreq(field, term)
	}
	return sum
}

func (m *multiReader) Norm(field string, doc int) float32 {
	r, local, _ := m.localOf(doc)
	if r == nil {
		return 0
	}
	return r.Norm(field, local)
}

func (m *multiReader) Generation() uint64 {
	var g uint64
	for _, r := range m.subs {
		g += r.Generation()
	}
	return g
}

func (m *multiReader) IsLatest() bool {
	for _, r := range m.subs {
		if !r.IsLatest() {
			return false
		}
	}
	return true
}

func (m *multiReader) Commit() error {
	for _, r := range m.subs {
		if err := r.Commit(); err != nil {
			return err
		}
	}
	return nil
}

func (m *multiReader) Close() error {
	for _, r := range m.subs {
		if err := r.Close(); err != nil {
			return err
		}
	}
	return nil
}

// Searcher returns an ordinary Searcher bound to the union reader, so the
// same Search/SearchEach/SearchUnscored/Explain machinery runs over every
// sub transparently.
func (ms *MultiSearcher) Searcher() *Searcher {
	mr := &multiReader{subs: ms.subs, offsets: ms.offsets}
	return NewSearcherWithSimilarity(mr, ms.sim)
}

// GlobalDoc translates a (subIndex, localDoc) pair to a global doc id.
func (ms *MultiSearcher) GlobalDoc(subIndex, localDoc int) int {
	return ms.offsets[subIndex] + localDoc
}

// LocalDoc translates a global doc id back to the owning sub and its local
// doc id.
func (ms *MultiSearcher) LocalDoc(globalDoc int) (subIndex, localDoc int) {
	for i := len(ms.subs) - 1; i >= 0; i-- {
		if globalDoc >= ms.offsets[i] {
			return i, globalDoc - ms.offsets[i]
		}
	}
	return -1, -1
}
