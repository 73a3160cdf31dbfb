// ═══════════════════════════════════════════════════════════════════════════════
// SCORERS: the core algorithm
// ═══════════════════════════════════════════════════════════════════════════════
// Every scorer advances in strictly increasing doc_id order via NextDoc/
// SkipTo, reports its current doc via Doc, and produces Score()/Explain(doc)
// for it. Composite scorers (boolean, phrase, multi-term) are built out of
// these primitives in their own files.
// ═══════════════════════════════════════════════════════════════════════════════

package ember

import "fmt"

// NoMoreDocs is returned by Doc() once a scorer is exhausted or has not yet
// been advanced.
const NoMoreDocs = -1

// Scorer walks matching documents for one (query, reader) pair.
type Scorer interface {
	NextDoc() bool
	SkipTo(target int) bool
	Doc() int
	Score() float64
	Explain(doc int) (*Explanation, error)
}

// ─── TermScorer ─────────────────────────────────────────────────────────────

type TermScorer struct {
	reader Reader
	field  string
	text   string
	it     PostingsIterator
	sim    Similarity
	weight float64 // idf^2 * queryNorm * boost, independent of the current doc
	idf    float32
}

func newTermScorer(r Reader, sim Similarity, field, text string, boost, queryNorm float64) (*TermScorer, error) {
	it, err := r.TermDocs(field, text)
	if err != nil {
		return nil, err
	}
	idf := sim.IDFTerm(r.DocFreq(field, text), r.NumDocs())
	weight := float64(idf) * float64(idf) * queryNorm * boost
	return &TermScorer{reader: r, field: field, text: text, it: it, sim: sim, weight: weight, idf: idf}, nil
}

func (s *TermScorer) NextDoc() bool      { return s.it.Next() }
func (s *TermScorer) SkipTo(t int) bool  { return s.it.SkipTo(t) }
func (s *TermScorer) Doc() int           { return s.it.Doc() }

func (s *TermScorer) Score() float64 {
	doc := s.it.Doc()
	if doc < 0 {
		return 0
	}
	norm := float64(s.reader.Norm(s.field, doc))
	return float64(s.sim.TF(float64(s.it.Freq()))) * s.weight * norm
}

func (s *TermScorer) Explain(doc int) (*Explanation, error) {
	it, err := s.reader.TermDocs(s.field, s.text)
	if err != nil {
		return nil, err
	}
	defer it.Close()
	freq := 0
	for it.Next() {
		if it.Doc() == doc {
			freq = it.Freq()
			break
		}
		if it.Doc() > doc {
			break
		}
	}
	norm := float64(s.reader.Norm(s.field, doc))
	tf := float64(s.sim.TF(float64(freq)))
	value := tf * s.weight * norm
	return newExplanation(value,
		fmt.Sprintf("weight(%s:%s in %d), product of:", s.field, s.text, doc),
		newExplanation(float64(s.idf), fmt.Sprintf("idf(docFreq=%d)", s.reader.DocFreq(s.field, s.text))),
		newExplanation(tf, fmt.Sprintf("tf(freq=%d)", freq)),
		newExplanation(norm, "fieldNorm"),
	), nil
}

func (q *TermQuery) scorer(r Reader, sim Similarity, qNorm float64) (Scorer, error) {
	return newTermScorer(r, sim, q.FieldName, q.Text, q.BoostVal, qNorm)
}

// sumSquaredWeights contributes idf^2 * boost^2, the per-term addend to a
// query's overall QueryNorm input (component design §4.1/§4.3).
func (q *TermQuery) sumSquaredWeights(r Reader, sim Similarity) (float64, error) {
	idf := float64(sim.IDFTerm(r.DocFreq(q.FieldName, q.Text), r.NumDocs()))
	w := idf * idf * q.BoostVal * q.BoostVal
	return w, nil
}

// ─── MatchAllScorer ─────────────────────────────────────────────────────────

type matchAllScorer struct {
	reader Reader
	doc    int
	maxDoc int
	boost  float64
}

func (s *matchAllScorer) NextDoc() bool {
	s.doc++
	for s.doc < s.maxDoc && s.reader.IsDeleted(s.doc) {
		s.doc++
	}
	return s.doc < s.maxDoc
}

func (s *matchAllScorer) SkipTo(target int) bool {
	if target > s.doc {
		s.doc = target - 1
	}
	return s.NextDoc()
}

func (s *matchAllScorer) Doc() int {
	if s.doc >= s.maxDoc {
		return NoMoreDocs
	}
	return s.doc
}

func (s *matchAllScorer) Score() float64 { return s.boost }

func (s *matchAllScorer) Explain(doc int) (*Explanation, error) {
	return newExplanation(s.boost, fmt.Sprintf("matchAll(%d), boost", doc)), nil
}

func (q *MatchAllQuery) scorer(r Reader, sim Similarity, qNorm float64) (Scorer, error) {
	return &matchAllScorer{reader: r, doc: -1, maxDoc: r.MaxDoc(), boost: q.BoostVal}, nil
}

func (q *MatchAllQuery) sumSquaredWeights(Reader, Similarity) (float64, error) {
	return q.BoostVal * q.BoostVal, nil
}

// ─── matchNoneScorer ────────────────────────────────────────────────────────

type matchNoneScorer struct{}

func (matchNoneScorer) NextDoc() bool                        { return false }
func (matchNoneScorer) SkipTo(int) bool                      { return false }
func (matchNoneScorer) Doc() int                              { return NoMoreDocs }
func (matchNoneScorer) Score() float64                        { return 0 }
func (matchNoneScorer) Explain(int) (*Explanation, error)     { return newExplanation(0, "matchNone"), nil }

func (q *matchNoneQuery) scorer(Reader, Similarity, float64) (Scorer, error) {
	return matchNoneScorer{}, nil
}

func (q *matchNoneQuery) sumSquaredWeights(Reader, Similarity) (float64, error) { return 0, nil }
