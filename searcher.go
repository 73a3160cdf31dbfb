// ═══════════════════════════════════════════════════════════════════════════════
// SEARCHER
// ═══════════════════════════════════════════════════════════════════════════════
// Searcher binds a Reader to a Similarity and drives the "rewrite, build a
// scorer tree, collect" pipeline: Search for ranked top-N, SearchEach to
// stream every match with no ranking buffer, SearchUnscored to fill a plain
// doc-id buffer, Explain/Rewrite to expose the same machinery Search uses
// internally. The teacher has no searcher abstraction; the closest analogue
// is RankBM25/RankProximity's "gather candidates, score, collect" shape
// (search.go in the teacher), reshaped here around the Query/Scorer/Reader
// contracts the rest of this package defines.
// ═══════════════════════════════════════════════════════════════════════════════

package ember

// Filter culls candidate docs before scoring; PostFilter runs per scored hit
// and may reject it (false) or rewrite its score.
type Filter func(doc int) bool
type PostFilter func(doc int, score float64) (keep bool, newScore float64)

// Sort, when non-nil, replaces descending-score-then-ascending-doc ordering:
// Less(a, b) reports whether hit a should rank ahead of hit b.
type Sort func(a, b ScoreDoc) bool

// SearchOptions configures a single Searcher.Search call. The zero value
// applies no filter, no post-filter and default score ordering.
type SearchOptions struct {
	Filter     Filter
	Sort       Sort
	PostFilter PostFilter
}

// Searcher answers queries against one Reader.
type Searcher struct {
	reader Reader
	sim    Similarity
}

// NewSearcher binds r using the classic-TF-IDF Similarity.
func NewSearcher(r Reader) *Searcher {
	return &Searcher{reader: r, sim: DefaultSimilarity()}
}

// NewSearcherWithSimilarity binds r to an explicit Similarity.
func NewSearcherWithSimilarity(r Reader, sim Similarity) *Searcher {
	return &Searcher{reader: r, sim: sim}
}

func (s *Searcher) Reader() Reader { return s.reader }

// Rewrite resolves q to the concrete form its Scorer will be built from.
func (s *Searcher) Rewrite(q Query) (Query, error) {
	return q.Rewrite(s.reader)
}

// buildScorer rewrites q, computes its query norm from the sum of its
// squared term/clause weights (Similarity.QueryNorm, component design §4.1),
// and builds the scorer tree with that norm folded into every leaf weight -
// the same normalize-then-score two-pass Lucene itself uses.
func (s *Searcher) buildScorer(q Query) (Scorer, error) {
	rewritten, err := s.Rewrite(q)
	if err != nil {
		return nil, err
	}
	sumSq, err := rewritten.sumSquaredWeights(s.reader, s.sim)
	if err != nil {
		return nil, err
	}
	qNorm := float64(s.sim.QueryNorm(sumSq))
	return rewritten.scorer(s.reader, s.sim, qNorm)
}

// Search returns the top n hits after first, ranked by descending score then
// ascending doc id (or by opts.Sort, if given). opts may be nil.
func (s *Searcher) Search(q Query, first, n int, opts *SearchOptions) (TopDocs, error) {
	scorer, err := s.buildScorer(q)
	if err != nil {
		return TopDocs{}, err
	}
	var filter Filter
	var postFilter PostFilter
	if opts != nil {
		filter = opts.Filter
		postFilter = opts.PostFilter
	}

	capacity := 0
	if n >= 0 && (opts == nil || opts.Sort == nil) {
		capacity = first + n
	}
	collector := newTopCollector(capacity)

	for scorer.NextDoc() {
		doc := scorer.Doc()
		if s.reader.IsDeleted(doc) {
			continue
		}
		if filter != nil && !filter(doc) {
			continue
		}
		score := scorer.Score()
		if postFilter != nil {
			keep, newScore := postFilter(doc, score)
			if !keep {
				continue
			}
			score = newScore
		}
		collector.collect(doc, score)
	}

	// No hit score is ever divided by a non-positive max_score.
	if collector.maxScore <= 0 {
		return TopDocs{}, nil
	}
	if opts != nil && opts.Sort != nil {
		// Sort ranks every collected hit; the first/n window is cut after it.
		top := collector.topDocs(0, -1)
		sortScoreDocs(top.Hits, opts.Sort)
		lo := min(max(first, 0), len(top.Hits))
		hi := len(top.Hits)
		if n >= 0 {
			hi = min(lo+n, hi)
		}
		top.Hits = top.Hits[lo:hi]
		return top, nil
	}
	return collector.topDocs(first, n), nil
}

func sortScoreDocs(hits []ScoreDoc, less Sort) {
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && less(hits[j], hits[j-1]); j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
}

// StopSignal, returned by a SearchEach callback, halts enumeration early.
var StopSignal = stopSignal{}

type stopSignal struct{}

func (stopSignal) Error() string { return "search stopped" }

// SearchEach streams every matching, non-deleted doc to cb in increasing
// doc-id order with no ranking buffer. cb returning ember.StopSignal halts
// enumeration; any other non-nil error aborts and propagates.
func (s *Searcher) SearchEach(q Query, filter Filter, postFilter PostFilter, cb func(doc int, score float64) error) error {
	scorer, err := s.buildScorer(q)
	if err != nil {
		return err
	}
	for scorer.NextDoc() {
		doc := scorer.Doc()
		if s.reader.IsDeleted(doc) {
			continue
		}
		if filter != nil && !filter(doc) {
			continue
		}
		score := scorer.Score()
		if postFilter != nil {
			keep, newScore := postFilter(doc, score)
			if !keep {
				continue
			}
			score = newScore
		}
		if err := cb(doc, score); err != nil {
			if err == StopSignal {
				return nil
			}
			return err
		}
	}
	return nil
}

// SearchUnscored fills buf with up to len(buf) doc ids >= offset, in
// increasing order, skipping deleted docs, and returns how many it wrote.
func (s *Searcher) SearchUnscored(q Query, buf []int, offset int) (int, error) {
	scorer, err := s.buildScorer(q)
	if err != nil {
		return 0, err
	}
	n := 0
	for n < len(buf) && scorer.SkipTo(offset) {
		doc := scorer.Doc()
		if doc < 0 {
			break
		}
		if !s.reader.IsDeleted(doc) {
			buf[n] = doc
			n++
		}
		offset = doc + 1
	}
	return n, nil
}

// Explain reports how q's score at doc was computed.
func (s *Searcher) Explain(q Query, doc int) (*Explanation, error) {
	scorer, err := s.buildScorer(q)
	if err != nil {
		return nil, err
	}
	// Composite scorers explain the clauses matched at their current doc,
	// so the scorer is positioned on doc first.
	scorer.SkipTo(doc)
	return scorer.Explain(doc)
}

func (s *Searcher) DocFreq(field, term string) int { return s.reader.DocFreq(field, term) }
func (s *Searcher) MaxDoc() int                     { return s.reader.MaxDoc() }
func (s *Searcher) GetDoc(doc int) (Document, error) { return s.reader.GetDoc(doc) }
