// ═══════════════════════════════════════════════════════════════════════════════
// MULTI-TERM-ROOTED QUERIES: Prefix, Wildcard, Range, TypedRange
// ═══════════════════════════════════════════════════════════════════════════════
// Each of these enumerates matching terms from the reader's term dictionary
// and rewrites, via MultiTermQuery, to a bounded disjunction - the
// Prefix/Wildcard/Range rewrite path named in the component design.
// ═══════════════════════════════════════════════════════════════════════════════

package ember

import (
	"fmt"
	"strconv"
	"strings"
)

func weighEntries(r Reader, field string, terms []string) []MultiTermEntry {
	sim := DefaultSimilarity()
	numDocs := r.NumDocs()
	entries := make([]MultiTermEntry, 0, len(terms))
	for _, t := range terms {
		df := r.DocFreq(field, t)
		if df == 0 {
			continue
		}
		entries = append(entries, MultiTermEntry{Term: t, Boost: float64(sim.IDFTerm(df, numDocs))})
	}
	return entries
}

func rewriteAsMultiTerm(field string, entries []MultiTermEntry, maxSize int, minScore, boost float64, r Reader) (Query, error) {
	mtq := &MultiTermQuery{FieldName: field, Entries: entries, MaxSize: maxSize, MinScore: minScore, BoostVal: boost}
	return mtq.Rewrite(r)
}

// ─── PrefixQuery ────────────────────────────────────────────────────────────

type PrefixQuery struct {
	FieldName string
	Prefix    string
	MaxSize   int
	MinScore  float64
	BoostVal  float64
}

func NewPrefixQuery(field, prefix string) *PrefixQuery {
	return &PrefixQuery{FieldName: field, Prefix: prefix, BoostVal: 1.0}
}

func (q *PrefixQuery) Boost() float64 { return q.BoostVal }
func (q *PrefixQuery) WithBoost(b float64) Query {
	c := *q
	c.BoostVal = b
	return &c
}
func (q *PrefixQuery) Equals(other Query) bool {
	o, ok := other.(*PrefixQuery)
	return ok && *o == *q
}
func (q *PrefixQuery) Hash() uint64 {
	return hashKey(fmt.Sprintf("prefix|%s|%s|%s", q.FieldName, q.Prefix, formatFloat(q.BoostVal)))
}
func (q *PrefixQuery) ToString(defaultField string) string {
	prefix := ""
	if q.FieldName != defaultField {
		prefix = q.FieldName + ":"
	}
	return prefix + q.Prefix + "*" + boostSuffix(q.BoostVal)
}
func (q *PrefixQuery) Rewrite(r Reader) (Query, error) {
	terms, err := r.Terms(q.FieldName)
	if err != nil {
		return nil, err
	}
	var matched []string
	for _, t := range terms {
		if strings.HasPrefix(t, q.Prefix) {
			matched = append(matched, t)
		}
	}
	return rewriteAsMultiTerm(q.FieldName, weighEntries(r, q.FieldName, matched), q.MaxSize, q.MinScore, q.BoostVal, r)
}

func (q *PrefixQuery) scorer(r Reader, sim Similarity, qNorm float64) (Scorer, error) {
	rewritten, err := q.Rewrite(r)
	if err != nil {
		return nil, err
	}
	return rewritten.scorer(r, sim, qNorm)
}

func (q *PrefixQuery) sumSquaredWeights(r Reader, sim Similarity) (float64, error) {
	rewritten, err := q.Rewrite(r)
	if err != nil {
		return 0, err
	}
	return rewritten.sumSquaredWeights(r, sim)
}

// ─── WildcardQuery ──────────────────────────────────────────────────────────

type WildcardQuery struct {
	FieldName string
	Pattern   string // '*' = any run, '?' = one char, whole-string match
	MaxSize   int
	MinScore  float64
	BoostVal  float64
}

func NewWildcardQuery(field, pattern string) *WildcardQuery {
	return &WildcardQuery{FieldName: field, Pattern: pattern, BoostVal: 1.0}
}

func (q *WildcardQuery) Boost() float64 { return q.BoostVal }
func (q *WildcardQuery) WithBoost(b float64) Query {
	c := *q
	c.BoostVal = b
	return &c
}
func (q *WildcardQuery) Equals(other Query) bool {
	o, ok := other.(*WildcardQuery)
	return ok && *o == *q
}
func (q *WildcardQuery) Hash() uint64 {
	return hashKey(fmt.Sprintf("wildcard|%s|%s|%s", q.FieldName, q.Pattern, formatFloat(q.BoostVal)))
}
func (q *WildcardQuery) ToString(defaultField string) string {
	prefix := ""
	if q.FieldName != defaultField {
		prefix = q.FieldName + ":"
	}
	return prefix + q.Pattern + boostSuffix(q.BoostVal)
}
func (q *WildcardQuery) Rewrite(r Reader) (Query, error) {
	if q.Pattern == "" {
		return newMatchNoneQuery(), nil
	}
	terms, err := r.Terms(q.FieldName)
	if err != nil {
		return nil, err
	}
	var matched []string
	for _, t := range terms {
		if wildcardMatch(q.Pattern, t) {
			matched = append(matched, t)
		}
	}
	return rewriteAsMultiTerm(q.FieldName, weighEntries(r, q.FieldName, matched), q.MaxSize, q.MinScore, q.BoostVal, r)
}

func (q *WildcardQuery) scorer(r Reader, sim Similarity, qNorm float64) (Scorer, error) {
	rewritten, err := q.Rewrite(r)
	if err != nil {
		return nil, err
	}
	return rewritten.scorer(r, sim, qNorm)
}

func (q *WildcardQuery) sumSquaredWeights(r Reader, sim Similarity) (float64, error) {
	rewritten, err := q.Rewrite(r)
	if err != nil {
		return 0, err
	}
	return rewritten.sumSquaredWeights(r, sim)
}

// wildcardMatch reports whether s matches the glob pattern (whole string):
// '*' matches zero or more characters, '?' matches exactly one.
func wildcardMatch(pattern, s string) bool {
	p, str := []rune(pattern), []rune(s)
	var backtrackP, backtrackS int = -1, -1
	pi, si := 0, 0
	for si < len(str) {
		if pi < len(p) && (p[pi] == '?' || p[pi] == str[si]) {
			pi++
			si++
		} else if pi < len(p) && p[pi] == '*' {
			backtrackP = pi
			backtrackS = si
			pi++
		} else if backtrackP != -1 {
			pi = backtrackP + 1
			backtrackS++
			si = backtrackS
		} else {
			return false
		}
	}
	for pi < len(p) && p[pi] == '*' {
		pi++
	}
	return pi == len(p)
}

// ─── RangeQuery (lexicographic byte comparison) ────────────────────────────

type RangeQuery struct {
	FieldName      string
	Lower, Upper   *string
	LowerInclusive bool
	UpperInclusive bool
	MaxSize        int
	MinScore       float64
	BoostVal       float64
}

func NewRangeQuery(field string) *RangeQuery {
	return &RangeQuery{FieldName: field, BoostVal: 1.0}
}

func (q *RangeQuery) Boost() float64 { return q.BoostVal }
func (q *RangeQuery) WithBoost(b float64) Query {
	c := *q
	c.BoostVal = b
	return &c
}
func (q *RangeQuery) boundKey() string {
	lo, hi := "-inf", "+inf"
	if q.Lower != nil {
		lo = *q.Lower
	}
	if q.Upper != nil {
		hi = *q.Upper
	}
	return fmt.Sprintf("%v%s/%v%s", q.LowerInclusive, lo, q.UpperInclusive, hi)
}
func (q *RangeQuery) Equals(other Query) bool {
	o, ok := other.(*RangeQuery)
	return ok && o.FieldName == q.FieldName && o.boundKey() == q.boundKey() && o.BoostVal == q.BoostVal
}
func (q *RangeQuery) Hash() uint64 {
	return hashKey(fmt.Sprintf("range|%s|%s|%s", q.FieldName, q.boundKey(), formatFloat(q.BoostVal)))
}
func (q *RangeQuery) ToString(defaultField string) string {
	prefix := ""
	if q.FieldName != defaultField {
		prefix = q.FieldName + ":"
	}
	open, close := "[", "]"
	if !q.LowerInclusive {
		open = "{"
	}
	if !q.UpperInclusive {
		close = "}"
	}
	lo, hi := "*", "*"
	if q.Lower != nil {
		lo = *q.Lower
	}
	if q.Upper != nil {
		hi = *q.Upper
	}
	return prefix + open + lo + " " + hi + close + boostSuffix(q.BoostVal)
}
func (q *RangeQuery) inRange(t string) bool {
	if q.Lower != nil {
		if q.LowerInclusive {
			if t < *q.Lower {
				return false
			}
		} else if t <= *q.Lower {
			return false
		}
	}
	if q.Upper != nil {
		if q.UpperInclusive {
			if t > *q.Upper {
				return false
			}
		} else if t >= *q.Upper {
			return false
		}
	}
	return true
}
func (q *RangeQuery) Rewrite(r Reader) (Query, error) {
	terms, err := r.Terms(q.FieldName)
	if err != nil {
		return nil, err
	}
	var matched []string
	for _, t := range terms {
		if q.inRange(t) {
			matched = append(matched, t)
		}
	}
	return rewriteAsMultiTerm(q.FieldName, weighEntries(r, q.FieldName, matched), q.MaxSize, q.MinScore, q.BoostVal, r)
}

func (q *RangeQuery) scorer(r Reader, sim Similarity, qNorm float64) (Scorer, error) {
	rewritten, err := q.Rewrite(r)
	if err != nil {
		return nil, err
	}
	return rewritten.scorer(r, sim, qNorm)
}

func (q *RangeQuery) sumSquaredWeights(r Reader, sim Similarity) (float64, error) {
	rewritten, err := q.Rewrite(r)
	if err != nil {
		return 0, err
	}
	return rewritten.sumSquaredWeights(r, sim)
}

// ─── TypedRangeQuery (locale-independent numeric comparison) ──────────────

type TypedRangeQuery struct {
	FieldName      string
	Lower, Upper   *float64
	LowerInclusive bool
	UpperInclusive bool
	MaxSize        int
	MinScore       float64
	BoostVal       float64
}

func NewTypedRangeQuery(field string) *TypedRangeQuery {
	return &TypedRangeQuery{FieldName: field, BoostVal: 1.0}
}

func (q *TypedRangeQuery) Boost() float64 { return q.BoostVal }
func (q *TypedRangeQuery) WithBoost(b float64) Query {
	c := *q
	c.BoostVal = b
	return &c
}
func (q *TypedRangeQuery) boundKey() string {
	lo, hi := "-inf", "+inf"
	if q.Lower != nil {
		lo = formatFloat(*q.Lower)
	}
	if q.Upper != nil {
		hi = formatFloat(*q.Upper)
	}
	return fmt.Sprintf("%v%s/%v%s", q.LowerInclusive, lo, q.UpperInclusive, hi)
}
func (q *TypedRangeQuery) Equals(other Query) bool {
	o, ok := other.(*TypedRangeQuery)
	return ok && o.FieldName == q.FieldName && o.boundKey() == q.boundKey() && o.BoostVal == q.BoostVal
}
func (q *TypedRangeQuery) Hash() uint64 {
	return hashKey(fmt.Sprintf("typedrange|%s|%s|%s", q.FieldName, q.boundKey(), formatFloat(q.BoostVal)))
}
func (q *TypedRangeQuery) ToString(defaultField string) string {
	prefix := ""
	if q.FieldName != defaultField {
		prefix = q.FieldName + ":"
	}
	open, close := "[", "]"
	if !q.LowerInclusive {
		open = "{"
	}
	if !q.UpperInclusive {
		close = "}"
	}
	lo, hi := "*", "*"
	if q.Lower != nil {
		lo = formatFloat(*q.Lower)
	}
	if q.Upper != nil {
		hi = formatFloat(*q.Upper)
	}
	return prefix + open + lo + " " + hi + close + boostSuffix(q.BoostVal)
}

// parseTypedNumber parses a term as a number, tolerant of a leading '+', an
// inner decimal point, and scientific notation - everything strconv.ParseFloat
// already accepts.
func parseTypedNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func (q *TypedRangeQuery) inRange(v float64) bool {
	if q.Lower != nil {
		if q.LowerInclusive {
			if v < *q.Lower {
				return false
			}
		} else if v <= *q.Lower {
			return false
		}
	}
	if q.Upper != nil {
		if q.UpperInclusive {
			if v > *q.Upper {
				return false
			}
		} else if v >= *q.Upper {
			return false
		}
	}
	return true
}
func (q *TypedRangeQuery) Rewrite(r Reader) (Query, error) {
	terms, err := r.Terms(q.FieldName)
	if err != nil {
		return nil, err
	}
	var matched []string
	for _, t := range terms {
		v, ok := parseTypedNumber(t)
		if ok && q.inRange(v) {
			matched = append(matched, t)
		}
	}
	return rewriteAsMultiTerm(q.FieldName, weighEntries(r, q.FieldName, matched), q.MaxSize, q.MinScore, q.BoostVal, r)
}

func (q *TypedRangeQuery) scorer(r Reader, sim Similarity, qNorm float64) (Scorer, error) {
	rewritten, err := q.Rewrite(r)
	if err != nil {
		return nil, err
	}
	return rewritten.scorer(r, sim, qNorm)
}

func (q *TypedRangeQuery) sumSquaredWeights(r Reader, sim Similarity) (float64, error) {
	rewritten, err := q.Rewrite(r)
	if err != nil {
		return 0, err
	}
	return rewritten.sumSquaredWeights(r, sim)
}
