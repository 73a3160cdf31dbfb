// ═══════════════════════════════════════════════════════════════════════════════
// BOOLEAN AND MULTI-TERM SCORING
// ═══════════════════════════════════════════════════════════════════════════════
// conjunctionScorer implements the MUST leapfrog: every sub-scorer is driven
// forward to the largest doc seen until all agree. disjunctionScorer implements
// the SHOULD/MultiTerm union via a container/heap min-heap keyed by doc id,
// enforcing min_should_match. BooleanScorer composes MUST, SHOULD and MUST_NOT
// and applies coord unless disabled.
// ═══════════════════════════════════════════════════════════════════════════════

package ember

import (
	"container/heap"
	"fmt"
)

// ─── conjunctionScorer (MUST) ───────────────────────────────────────────────

type conjunctionScorer struct {
	subs    []Scorer
	doc     int
	started bool
}

func newConjunctionScorer(subs []Scorer) *conjunctionScorer {
	return &conjunctionScorer{subs: subs, doc: NoMoreDocs}
}

func (c *conjunctionScorer) align() bool {
	for {
		max := c.subs[0].Doc()
		for _, s := range c.subs[1:] {
			if s.Doc() > max {
				max = s.Doc()
			}
		}
		if max < 0 {
			c.doc = NoMoreDocs
			return false
		}
		agree := true
		for _, s := range c.subs {
			if s.Doc() != max {
				agree = false
				if !s.SkipTo(max) {
					c.doc = NoMoreDocs
					return false
				}
			}
		}
		if agree {
			c.doc = max
			return true
		}
	}
}

func (c *conjunctionScorer) NextDoc() bool {
	if !c.started {
		c.started = true
		for _, s := range c.subs {
			if !s.NextDoc() {
				c.doc = NoMoreDocs
				return false
			}
		}
		return c.align()
	}
	if !c.subs[0].NextDoc() {
		c.doc = NoMoreDocs
		return false
	}
	return c.align()
}

func (c *conjunctionScorer) SkipTo(target int) bool {
	c.started = true
	for _, s := range c.subs {
		if !s.SkipTo(target) {
			c.doc = NoMoreDocs
			return false
		}
	}
	return c.align()
}

func (c *conjunctionScorer) Doc() int { return c.doc }

func (c *conjunctionScorer) Score() float64 {
	var sum float64
	for _, s := range c.subs {
		sum += s.Score()
	}
	return sum
}

func (c *conjunctionScorer) Explain(doc int) (*Explanation, error) {
	details := make([]*Explanation, 0, len(c.subs))
	var sum float64
	for _, s := range c.subs {
		e, err := s.Explain(doc)
		if err != nil {
			return nil, err
		}
		details = append(details, e)
		sum += e.Value
	}
	return newExplanation(sum, "sum of required clauses", details...), nil
}

// ─── disjunctionScorer (SHOULD / multi-term union) ─────────────────────────

type scorerHeap []Scorer

func (h scorerHeap) Len() int            { return len(h) }
func (h scorerHeap) Less(i, j int) bool  { return h[i].Doc() < h[j].Doc() }
func (h scorerHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *scorerHeap) Push(x interface{}) { *h = append(*h, x.(Scorer)) }
func (h *scorerHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

type disjunctionScorer struct {
	h              scorerHeap
	doc            int
	matched        []Scorer
	minShouldMatch int
}

func newDisjunctionScorer(subs []Scorer, minShouldMatch int) *disjunctionScorer {
	h := make(scorerHeap, 0, len(subs))
	for _, s := range subs {
		if s.NextDoc() {
			h = append(h, s)
		}
	}
	heap.Init(&h)
	if minShouldMatch < 1 {
		minShouldMatch = 1
	}
	return &disjunctionScorer{h: h, doc: NoMoreDocs, minShouldMatch: minShouldMatch}
}

func (d *disjunctionScorer) advance() bool {
	// Subs matched at the previous doc stay positioned there until now, so
	// Score and Explain read them at the doc being reported.
	for _, s := range d.matched {
		if s.NextDoc() {
			heap.Push(&d.h, s)
		}
	}
	d.matched = nil
	for d.h.Len() > 0 {
		top := d.h[0].Doc()
		var matched []Scorer
		for d.h.Len() > 0 && d.h[0].Doc() == top {
			matched = append(matched, heap.Pop(&d.h).(Scorer))
		}
		if len(matched) >= d.minShouldMatch {
			d.doc = top
			d.matched = matched
			return true
		}
		for _, s := range matched {
			if s.NextDoc() {
				heap.Push(&d.h, s)
			}
		}
	}
	d.doc = NoMoreDocs
	return false
}

func (d *disjunctionScorer) NextDoc() bool { return d.advance() }

func (d *disjunctionScorer) SkipTo(target int) bool {
	newHeap := make(scorerHeap, 0, len(d.h)+len(d.matched))
	for _, s := range d.h {
		if s.Doc() >= target || s.SkipTo(target) {
			newHeap = append(newHeap, s)
		}
	}
	for _, s := range d.matched {
		if s.Doc() >= target || s.SkipTo(target) {
			newHeap = append(newHeap, s)
		}
	}
	d.matched = nil
	d.h = newHeap
	heap.Init(&d.h)
	return d.advance()
}

func (d *disjunctionScorer) Doc() int { return d.doc }

func (d *disjunctionScorer) Score() float64 {
	var sum float64
	for _, s := range d.matched {
		sum += s.Score()
	}
	return sum
}

func (d *disjunctionScorer) matchCount() int { return len(d.matched) }

func (d *disjunctionScorer) Explain(doc int) (*Explanation, error) {
	details := make([]*Explanation, 0, len(d.matched))
	var sum float64
	for _, s := range d.matched {
		e, err := s.Explain(doc)
		if err != nil {
			return nil, err
		}
		details = append(details, e)
		sum += e.Value
	}
	return newExplanation(sum, "sum of matching optional clauses", details...), nil
}

// ─── BooleanScorer ──────────────────────────────────────────────────────────

type booleanScorer struct {
	must          *conjunctionScorer // nil if no MUST clauses
	should        *disjunctionScorer // nil if no SHOULD clauses
	mustNot       []Scorer
	coordDisabled bool
	sim           Similarity
	maxOverlap    int
	boost         float64
	doc           int
}

func (b *booleanScorer) excluded(doc int) bool {
	for _, s := range b.mustNot {
		if s.Doc() < doc {
			if !s.SkipTo(doc) {
				continue
			}
		}
		if s.Doc() == doc {
			return true
		}
	}
	return false
}

func (b *booleanScorer) advance(fromMust, fromShould bool) bool {
	for {
		var candidate int
		switch {
		case b.must != nil:
			var ok bool
			if fromMust {
				ok = b.must.NextDoc()
			} else {
				ok = true
			}
			if !ok {
				b.doc = NoMoreDocs
				return false
			}
			candidate = b.must.Doc()
			if b.should != nil {
				b.should.SkipTo(candidate)
				if b.should.Doc() != candidate {
					// should didn't match at candidate; that's fine, it's optional.
				}
			}
		case b.should != nil:
			var ok bool
			if fromShould {
				ok = b.should.NextDoc()
			} else {
				ok = true
			}
			if !ok {
				b.doc = NoMoreDocs
				return false
			}
			candidate = b.should.Doc()
		default:
			b.doc = NoMoreDocs
			return false
		}
		fromMust, fromShould = true, true
		if !b.excluded(candidate) {
			b.doc = candidate
			return true
		}
	}
}

func (b *booleanScorer) NextDoc() bool { return b.advance(true, true) }

func (b *booleanScorer) SkipTo(target int) bool {
	if b.must != nil {
		if !b.must.SkipTo(target) {
			b.doc = NoMoreDocs
			return false
		}
		return b.advance(false, true)
	}
	if b.should != nil {
		if !b.should.SkipTo(target) {
			b.doc = NoMoreDocs
			return false
		}
		return b.advance(true, false)
	}
	b.doc = NoMoreDocs
	return false
}

func (b *booleanScorer) Doc() int { return b.doc }

func (b *booleanScorer) overlap() int {
	n := 0
	if b.must != nil {
		n += len(b.must.subs)
	}
	if b.should != nil && b.should.Doc() == b.doc {
		n += b.should.matchCount()
	}
	return n
}

func (b *booleanScorer) Score() float64 {
	var sum float64
	if b.must != nil {
		sum += b.must.Score()
	}
	if b.should != nil && b.should.Doc() == b.doc {
		sum += b.should.Score()
	}
	score := sum * b.boost
	if !b.coordDisabled {
		score *= float64(b.sim.Coord(b.overlap(), b.maxOverlap))
	}
	return score
}

func (b *booleanScorer) Explain(doc int) (*Explanation, error) {
	var details []*Explanation
	var sum float64
	if b.must != nil {
		e, err := b.must.Explain(doc)
		if err != nil {
			return nil, err
		}
		details = append(details, e)
		sum += e.Value
	}
	if b.should != nil && b.should.Doc() == doc {
		e, err := b.should.Explain(doc)
		if err != nil {
			return nil, err
		}
		details = append(details, e)
		sum += e.Value
	}
	value := sum * b.boost
	desc := "sum of required and optional clauses, product with boost"
	if !b.coordDisabled {
		c := float64(b.sim.Coord(b.overlap(), b.maxOverlap))
		value *= c
		details = append(details, newExplanation(c, fmt.Sprintf("coord(%d/%d)", b.overlap(), b.maxOverlap)))
		desc = "product of sum of clauses, boost and coord"
	}
	return newExplanation(value, desc, details...), nil
}

func (q *BooleanQuery) scorer(r Reader, sim Similarity, qNorm float64) (Scorer, error) {
	var mustSubs, shouldSubs, mustNotSubs []Scorer
	for _, c := range q.Clauses {
		s, err := c.Query.scorer(r, sim, qNorm)
		if err != nil {
			return nil, err
		}
		switch c.Occur {
		case Must:
			mustSubs = append(mustSubs, s)
		case Should:
			shouldSubs = append(shouldSubs, s)
		case MustNot:
			mustNotSubs = append(mustNotSubs, s)
		}
	}
	if len(mustSubs) == 0 && len(shouldSubs) == 0 {
		return matchNoneScorer{}, nil
	}

	b := &booleanScorer{
		coordDisabled: q.CoordDisabled,
		sim:           sim,
		mustNot:       mustNotSubs,
		boost:         q.BoostVal,
		doc:           NoMoreDocs,
		maxOverlap:    len(mustSubs) + len(shouldSubs),
	}
	if len(mustSubs) > 0 {
		b.must = newConjunctionScorer(mustSubs)
	}
	if len(shouldSubs) > 0 {
		minShould := q.MinShouldMatch
		if len(mustSubs) > 0 {
			minShould = 0 // SHOULD clauses are purely optional once a MUST exists
		}
		b.should = newDisjunctionScorer(shouldSubs, max1(minShould))
	}
	return b, nil
}

// sumSquaredWeights sums every non-prohibited clause's contribution, then
// scales by this query's own boost squared - MUST_NOT clauses never
// contribute a score so they never contribute a weight either.
func (q *BooleanQuery) sumSquaredWeights(r Reader, sim Similarity) (float64, error) {
	var sum float64
	for _, c := range q.Clauses {
		if c.Occur == MustNot {
			continue
		}
		w, err := c.Query.sumSquaredWeights(r, sim)
		if err != nil {
			return 0, err
		}
		sum += w
	}
	return sum * q.BoostVal * q.BoostVal, nil
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// ─── MultiTermQuery scorer (disjunction over its entries) ──────────────────

func (q *MultiTermQuery) scorer(r Reader, sim Similarity, qNorm float64) (Scorer, error) {
	entries := q.sortedEntries()
	if len(entries) == 0 {
		return matchNoneScorer{}, nil
	}
	subs := make([]Scorer, 0, len(entries))
	for _, e := range entries {
		s, err := newTermScorer(r, sim, q.FieldName, e.Term, e.Boost*q.BoostVal, qNorm)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return newDisjunctionScorer(subs, 1), nil
}

// sumSquaredWeights sums each kept entry's idf-squared contribution, the
// same disjunction-of-terms weight a boolean SHOULD clause would produce.
func (q *MultiTermQuery) sumSquaredWeights(r Reader, sim Similarity) (float64, error) {
	var sum float64
	numDocs := r.NumDocs()
	for _, e := range q.sortedEntries() {
		idf := float64(sim.IDFTerm(r.DocFreq(q.FieldName, e.Term), numDocs))
		boost := e.Boost * q.BoostVal
		sum += idf * idf * boost * boost
	}
	return sum, nil
}
