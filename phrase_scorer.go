// ═══════════════════════════════════════════════════════════════════════════════
// PHRASE AND MULTI-PHRASE SCORING
// ═══════════════════════════════════════════════════════════════════════════════
// phraseScorer walks one PostingsIterator per query position - a plain term
// iterator for an exact phrase position, or a unionPostingsIterator merging
// every alternative's postings for a multi-phrase position - conjoined by the
// same leapfrog alignment as the boolean MUST scorer, then checks positional
// alignment with the Lucene sloppy-phrase algorithm: repeatedly advance the
// position pointer holding the smallest normalized offset and accumulate
// sloppyFreq(distance) whenever the spread is within slop. Grounded on the
// teacher's NextPhrase/findPhraseStart/findPhraseEnd/isValidPhrase proximity
// walk (see DESIGN.md), generalized from a single document stream to
// per-clause PostingsIterators.
// ═══════════════════════════════════════════════════════════════════════════════

package ember

import (
	"fmt"
	"sort"
)

// ─── unionPostingsIterator ──────────────────────────────────────────────────

// unionPostingsIterator merges several term PostingsIterators into one: it
// advances to the smallest doc id any of them holds, and reports the union of
// their positions at that doc. This is what a multi-phrase position's set of
// alternatives consumes.
type unionPostingsIterator struct {
	subs   []PostingsIterator
	active []PostingsIterator
	doc    int
	pos    []int
}

func newUnionPostingsIterator(subs []PostingsIterator) *unionPostingsIterator {
	for _, s := range subs {
		s.Next()
	}
	return &unionPostingsIterator{subs: subs, doc: NoMoreDocs}
}

func (u *unionPostingsIterator) recompute() bool {
	min := -1
	for _, s := range u.subs {
		d := s.Doc()
		if d >= 0 && (min == -1 || d < min) {
			min = d
		}
	}
	if min == -1 {
		u.doc = NoMoreDocs
		u.active = nil
		u.pos = nil
		return false
	}
	u.doc = min
	u.active = u.active[:0]
	seen := make(map[int]bool)
	var positions []int
	for _, s := range u.subs {
		if s.Doc() == min {
			u.active = append(u.active, s)
			for _, p := range s.Positions() {
				if !seen[p] {
					seen[p] = true
					positions = append(positions, p)
				}
			}
		}
	}
	sort.Ints(positions)
	u.pos = positions
	return true
}

func (u *unionPostingsIterator) Next() bool {
	for _, s := range u.active {
		s.Next()
	}
	return u.recompute()
}

func (u *unionPostingsIterator) SkipTo(target int) bool {
	for _, s := range u.subs {
		if s.Doc() < target {
			s.SkipTo(target)
		}
	}
	return u.recompute()
}

func (u *unionPostingsIterator) Doc() int       { return u.doc }
func (u *unionPostingsIterator) Freq() int       { return len(u.pos) }
func (u *unionPostingsIterator) Positions() []int { return u.pos }

func (u *unionPostingsIterator) Close() error {
	for _, s := range u.subs {
		if err := s.Close(); err != nil {
			return err
		}
	}
	return nil
}

// ─── phrase position construction, shared by the scorer and Explain ───────

// phraseIterators builds one PostingsIterator per (sorted-by-position) term
// position, along with each position's relative offset from the smallest
// position in the phrase, and the flattened list of alternative doc
// frequencies used for idf_phrase.
func phraseIterators(r Reader, field string, terms []PhrasePosition) (subs []PostingsIterator, offsets []int, docFreqs []int, err error) {
	ordered := append([]PhrasePosition(nil), terms...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Position < ordered[j].Position })

	base := ordered[0].Position
	subs = make([]PostingsIterator, len(ordered))
	offsets = make([]int, len(ordered))
	for i, tp := range ordered {
		offsets[i] = int(tp.Position - base)
		alts := make([]PostingsIterator, len(tp.Alternatives))
		for j, alt := range tp.Alternatives {
			it, e := r.TermDocs(field, alt)
			if e != nil {
				return nil, nil, nil, e
			}
			alts[j] = it
			docFreqs = append(docFreqs, r.DocFreq(field, alt))
		}
		if len(alts) == 1 {
			subs[i] = alts[0]
		} else {
			subs[i] = newUnionPostingsIterator(alts)
		}
	}
	return subs, offsets, docFreqs, nil
}

func alignPhrasePositions(subs []PostingsIterator) (int, bool) {
	for {
		max := subs[0].Doc()
		for _, s := range subs[1:] {
			if s.Doc() > max {
				max = s.Doc()
			}
		}
		if max < 0 {
			return NoMoreDocs, false
		}
		agree := true
		for _, s := range subs {
			if s.Doc() != max {
				agree = false
				if !s.SkipTo(max) {
					return NoMoreDocs, false
				}
			}
		}
		if agree {
			return max, true
		}
	}
}

// sloppyMatchFrequency implements the Lucene sloppy-phrase algorithm:
// positions are normalized by each term's relative offset so an exact match
// means every normalized position is equal, then the smallest-position
// pointer is repeatedly advanced, recording sloppyFreq(distance) whenever the
// spread between the smallest and largest normalized position is within
// slop. slop=0 degenerates to counting exact alignments (sloppyFreq(0) == 1
// per occurrence), unifying the exact and sloppy phrase cases.
func sloppyMatchFrequency(subs []PostingsIterator, offsets []int, slop int, sim Similarity) float64 {
	n := len(subs)
	normalized := make([][]int, n)
	for i, s := range subs {
		raw := s.Positions()
		norm := make([]int, len(raw))
		for j, v := range raw {
			norm[j] = v - offsets[i]
		}
		normalized[i] = norm
	}
	idx := make([]int, n)
	var freq float64
	for {
		ready := true
		for i := 0; i < n; i++ {
			if idx[i] >= len(normalized[i]) {
				ready = false
				break
			}
		}
		if !ready {
			break
		}
		minVal := normalized[0][idx[0]]
		maxVal := minVal
		minI := 0
		for i := 1; i < n; i++ {
			v := normalized[i][idx[i]]
			if v < minVal {
				minVal = v
				minI = i
			}
			if v > maxVal {
				maxVal = v
			}
		}
		dist := maxVal - minVal
		if dist <= slop {
			freq += float64(sim.SloppyFreq(dist))
		}
		idx[minI]++
	}
	return freq
}

// ─── phraseScorer ───────────────────────────────────────────────────────────

type phraseScorer struct {
	reader    Reader
	field     string
	terms     []PhrasePosition
	subs      []PostingsIterator
	offsets   []int
	slop      int
	sim       Similarity
	idfPhrase float32
	weight    float64
	boost     float64
	started   bool
	doc       int
	freq      float64
}

func newPhraseScorer(r Reader, sim Similarity, field string, terms []PhrasePosition, slop int, boost, queryNorm float64) (*phraseScorer, error) {
	subs, offsets, docFreqs, err := phraseIterators(r, field, terms)
	if err != nil {
		return nil, err
	}
	idfPhrase := sim.IDFPhrase(docFreqs, r.NumDocs())
	weight := float64(idfPhrase) * float64(idfPhrase) * queryNorm * boost
	return &phraseScorer{
		reader: r, field: field, terms: terms, subs: subs, offsets: offsets,
		slop: slop, sim: sim, idfPhrase: idfPhrase, weight: weight, boost: boost,
		doc: NoMoreDocs,
	}, nil
}

func (p *phraseScorer) advance() bool {
	for {
		var doc int
		var ok bool
		if !p.started {
			p.started = true
			for _, s := range p.subs {
				if !s.Next() {
					p.doc = NoMoreDocs
					return false
				}
			}
			doc, ok = alignPhrasePositions(p.subs)
		} else {
			if !p.subs[0].Next() {
				p.doc = NoMoreDocs
				return false
			}
			doc, ok = alignPhrasePositions(p.subs)
		}
		if !ok {
			p.doc = NoMoreDocs
			return false
		}
		freq := sloppyMatchFrequency(p.subs, p.offsets, p.slop, p.sim)
		if freq > 0 {
			p.doc = doc
			p.freq = freq
			return true
		}
	}
}

func (p *phraseScorer) NextDoc() bool { return p.advance() }

func (p *phraseScorer) SkipTo(target int) bool {
	p.started = true
	for _, s := range p.subs {
		if !s.SkipTo(target) {
			p.doc = NoMoreDocs
			return false
		}
	}
	for {
		doc, ok := alignPhrasePositions(p.subs)
		if !ok {
			p.doc = NoMoreDocs
			return false
		}
		freq := sloppyMatchFrequency(p.subs, p.offsets, p.slop, p.sim)
		if freq > 0 {
			p.doc = doc
			p.freq = freq
			return true
		}
		if !p.subs[0].Next() {
			p.doc = NoMoreDocs
			return false
		}
	}
}

func (p *phraseScorer) Doc() int { return p.doc }

func (p *phraseScorer) Score() float64 {
	if p.doc < 0 {
		return 0
	}
	norm := float64(p.reader.Norm(p.field, p.doc))
	return float64(p.sim.TF(p.freq)) * p.weight * norm
}

func (p *phraseScorer) Explain(doc int) (*Explanation, error) {
	subs, offsets, docFreqs, err := phraseIterators(p.reader, p.field, p.terms)
	if err != nil {
		return nil, err
	}
	for _, s := range subs {
		if !s.SkipTo(doc) || s.Doc() != doc {
			return newExplanation(0, fmt.Sprintf("phrase(%s) does not match doc %d", p.field, doc)), nil
		}
	}
	freq := sloppyMatchFrequency(subs, offsets, p.slop, p.sim)
	norm := float64(p.reader.Norm(p.field, doc))
	tf := float64(p.sim.TF(freq))
	value := tf * p.weight * norm
	idfPhrase := p.sim.IDFPhrase(docFreqs, p.reader.NumDocs())
	return newExplanation(value,
		fmt.Sprintf("weight(phrase(%s) in %d), product of:", p.field, doc),
		newExplanation(float64(idfPhrase), "idf_phrase"),
		newExplanation(tf, fmt.Sprintf("tf(freq=%g)", freq)),
		newExplanation(norm, "fieldNorm"),
	), nil
}

func (q *PhraseQuery) scorer(r Reader, sim Similarity, qNorm float64) (Scorer, error) {
	if len(q.Terms) == 0 {
		return matchNoneScorer{}, nil
	}
	if len(q.Terms) == 1 {
		rewritten, err := q.Rewrite(r)
		if err != nil {
			return nil, err
		}
		return rewritten.scorer(r, sim, qNorm)
	}
	return newPhraseScorer(r, sim, q.FieldName, q.Terms, int(q.Slop), q.BoostVal, qNorm)
}

// sumSquaredWeights contributes idf_phrase^2 * boost^2, mirroring the single
// weight a phraseScorer carries (the whole phrase is one scoring unit, not a
// sum over its constituent terms).
func (q *PhraseQuery) sumSquaredWeights(r Reader, sim Similarity) (float64, error) {
	if len(q.Terms) == 0 {
		return 0, nil
	}
	if len(q.Terms) == 1 {
		rewritten, err := q.Rewrite(r)
		if err != nil {
			return 0, err
		}
		return rewritten.sumSquaredWeights(r, sim)
	}
	_, _, docFreqs, err := phraseIterators(r, q.FieldName, q.Terms)
	if err != nil {
		return 0, err
	}
	idfPhrase := float64(sim.IDFPhrase(docFreqs, r.NumDocs()))
	return idfPhrase * idfPhrase * q.BoostVal * q.BoostVal, nil
}
