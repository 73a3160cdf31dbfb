// ═══════════════════════════════════════════════════════════════════════════════
// TOP-N COLLECTION
// ═══════════════════════════════════════════════════════════════════════════════
// ScoreDoc/TopDocs is the bounded top-N collector behind Searcher.Search: a
// container/heap min-heap kept trimmed to n, ordered by descending score then
// ascending doc id on ties. The teacher instead sorts its whole candidate
// slice (sortMatchesByScore in the teacher's search.go) - acceptable when the
// candidate set itself is the result set, but this repo separates "all
// matches" from "top n of them", so a proper bounded heap is worth it.
// ═══════════════════════════════════════════════════════════════════════════════

package ember

import (
	"container/heap"
	"sort"
)

// ScoreDoc is a single ranked hit.
type ScoreDoc struct {
	Doc   int
	Score float64
}

// TopDocs is the result of a ranked search.
type TopDocs struct {
	TotalHits int
	MaxScore  float64
	Hits      []ScoreDoc
}

// scoreDocHeap is a min-heap ordered so the *worst* kept hit is at the root,
// making it cheap to evict when a better hit arrives. "Worse" means lower
// score, or equal score with a larger doc id (so the heap root is always the
// first candidate for eviction under the spec's tie-break rule).
type scoreDocHeap []ScoreDoc

func (h scoreDocHeap) Len() int { return len(h) }
func (h scoreDocHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score < h[j].Score
	}
	return h[i].Doc > h[j].Doc
}
func (h scoreDocHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *scoreDocHeap) Push(x interface{}) { *h = append(*h, x.(ScoreDoc)) }
func (h *scoreDocHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// topCollector keeps the best `cap` hits seen so far plus a running total
// hit count and max score, independent of how many are ultimately windowed
// out by `first`.
type topCollector struct {
	cap       int
	h         scoreDocHeap
	totalHits int
	maxScore  float64
}

func newTopCollector(capacity int) *topCollector {
	return &topCollector{cap: capacity}
}

func (c *topCollector) collect(doc int, score float64) {
	c.totalHits++
	if score > c.maxScore {
		c.maxScore = score
	}
	if c.cap <= 0 {
		heap.Push(&c.h, ScoreDoc{Doc: doc, Score: score})
		return
	}
	if len(c.h) < c.cap {
		heap.Push(&c.h, ScoreDoc{Doc: doc, Score: score})
		return
	}
	worst := c.h[0]
	if score > worst.Score || (score == worst.Score && doc < worst.Doc) {
		c.h[0] = ScoreDoc{Doc: doc, Score: score}
		heap.Fix(&c.h, 0)
	}
}

// topDocs drains the heap into descending-score (ascending-doc-id tie break)
// order and applies the `first` window.
func (c *topCollector) topDocs(first, n int) TopDocs {
	all := append([]ScoreDoc(nil), c.h...)
	sort.Slice(all, func(i, j int) bool {
		if all[i].Score != all[j].Score {
			return all[i].Score > all[j].Score
		}
		return all[i].Doc < all[j].Doc
	})
	if first < 0 {
		first = 0
	}
	if first > len(all) {
		first = len(all)
	}
	end := first + n
	if n < 0 || end > len(all) {
		end = len(all)
	}
	return TopDocs{
		TotalHits: c.totalHits,
		MaxScore:  c.maxScore,
		Hits:      append([]ScoreDoc(nil), all[first:end]...),
	}
}
