package fulltext

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"unicode/utf8"
)

// Combinator selects how per-term results are merged.
type Combinator int

const (
	// And keeps documents matching every query term.
	And Combinator = iota
	// Or keeps documents matching any query term.
	Or
)

// BM25+ parameters.
const (
	bm25K = 1.2
	bm25B = 0.7
	bm25D = 0.5
)

const (
	prefixWeight = 0.375
	fuzzyWeight  = 0.45
	maxFuzzy     = 6
)

// SearchOptions tunes a query.
type SearchOptions struct {
	// Fuzzy below 1 is a fraction of the term length, otherwise an absolute
	// edit distance. Zero disables fuzzy matching.
	Fuzzy   float64
	Prefix  bool
	Boost   map[string]float64
	Combine Combinator
}

// DefaultSearchOptions matches terms by prefix and with a fifth of their
// length in edits, requiring every term.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{Fuzzy: 0.2, Prefix: true, Combine: And}
}

// Hit is a ranked search result.
type Hit struct {
	ID     string
	Score  float64
	Stored map[string]string
}

type partial struct {
	score      float64
	queryTerms map[string]bool
}

type resultSet map[int]*partial

// Search runs query against the index and returns hits by descending score.
func (idx *Index) Search(query string, opts SearchOptions) []Hit {
	terms := newAnalyzer().terms(query)
	if len(terms) == 0 || len(idx.docs) == 0 {
		return nil
	}

	var combined resultSet
	for i, qt := range terms {
		rs := idx.termQuery(qt, opts)
		if i == 0 {
			combined = rs
			continue
		}
		combined = combine(combined, rs, opts.Combine)
	}

	hits := make([]Hit, 0, len(combined))
	order := make([]int, 0, len(combined))
	for d := range combined {
		order = append(order, d)
	}
	slices.Sort(order)
	for _, d := range order {
		p := combined[d]
		hits = append(hits, Hit{
			ID:     idx.docs[d].ID,
			Score:  p.score * float64(len(p.queryTerms)),
			Stored: idx.docs[d].Stored,
		})
	}
	slices.SortStableFunc(hits, func(a, b Hit) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return hits
}

// termQuery collects the exact, prefix and fuzzy matches of one query term.
func (idx *Index) termQuery(qt string, opts SearchOptions) resultSet {
	rs := make(resultSet)
	idx.scoreTerm(rs, qt, qt, 1, opts)

	qlen := utf8.RuneCountInString(qt)
	prefixed := make(map[string]bool)
	if opts.Prefix {
		start, _ := slices.BinarySearch(idx.vocabulary, qt)
		for _, t := range idx.vocabulary[start:] {
			if !strings.HasPrefix(t, qt) {
				break
			}
			prefixed[t] = true
			dist := utf8.RuneCountInString(t) - qlen
			if dist == 0 {
				continue
			}
			tlen := float64(utf8.RuneCountInString(t))
			idx.scoreTerm(rs, qt, t, prefixWeight*tlen/(tlen+0.3*float64(dist)), opts)
		}
	}

	if maxDist := fuzzyDistance(qlen, opts.Fuzzy); maxDist > 0 {
		for _, t := range idx.vocabulary {
			if prefixed[t] {
				continue
			}
			dist, ok := editDistance(qt, t, maxDist)
			if !ok || dist == 0 {
				continue
			}
			tlen := float64(utf8.RuneCountInString(t))
			idx.scoreTerm(rs, qt, t, fuzzyWeight*tlen/(tlen+float64(dist)), opts)
		}
	}
	return rs
}

func fuzzyDistance(termLen int, fuzzy float64) int {
	switch {
	case fuzzy <= 0:
		return 0
	case fuzzy < 1:
		return min(maxFuzzy, int(math.Round(float64(termLen)*fuzzy)))
	default:
		return int(fuzzy)
	}
}

// scoreTerm adds the weighted BM25+ score of index term t to rs.
func (idx *Index) scoreTerm(rs resultSet, queryTerm, t string, weight float64, opts SearchOptions) {
	postings, ok := idx.postings[t]
	if !ok {
		return
	}
	total := float64(len(idx.docs))
	for f, docs := range postings {
		if len(docs) == 0 {
			continue
		}
		boost := 1.0
		if b, ok := opts.Boost[idx.fields[f]]; ok {
			boost = b
		}
		n := float64(len(docs))
		idf := math.Log(1 + (total-n+0.5)/(n+0.5))
		for d, tf := range docs {
			fl := float64(idx.fieldLengths[d][f])
			avg := idx.avgLengths[f]
			norm := 1 - bm25B
			if avg > 0 {
				norm += bm25B * fl / avg
			}
			freq := float64(tf)
			raw := idf * (bm25D + freq*(bm25K+1)/(freq+bm25K*norm))

			p := rs[d]
			if p == nil {
				p = &partial{queryTerms: map[string]bool{}}
				rs[d] = p
			}
			p.score += weight * boost * raw
			p.queryTerms[queryTerm] = true
		}
	}
}

func combine(a, b resultSet, how Combinator) resultSet {
	out := make(resultSet)
	if how == Or {
		for d, p := range a {
			out[d] = p
		}
		for d, p := range b {
			if q, ok := out[d]; ok {
				out[d] = merge(q, p)
			} else {
				out[d] = p
			}
		}
		return out
	}
	for d, p := range a {
		if q, ok := b[d]; ok {
			out[d] = merge(p, q)
		}
	}
	return out
}

func merge(a, b *partial) *partial {
	m := &partial{
		score:      a.score + b.score,
		queryTerms: make(map[string]bool, len(a.queryTerms)+len(b.queryTerms)),
	}
	for _, src := range []*partial{a, b} {
		for q := range src.queryTerms {
			m.queryTerms[q] = true
		}
	}
	return m
}

// editDistance is the Levenshtein distance between a and b over runes,
// giving up once it exceeds limit.
func editDistance(a, b string, limit int) (int, bool) {
	ra, rb := []rune(a), []rune(b)
	if d := len(ra) - len(rb); d > limit || -d > limit {
		return 0, false
	}
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		rowMin := cur[0]
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
			rowMin = min(rowMin, cur[j])
		}
		if rowMin > limit {
			return 0, false
		}
		prev, cur = cur, prev
	}
	if prev[len(rb)] > limit {
		return 0, false
	}
	return prev[len(rb)], true
}
