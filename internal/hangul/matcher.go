package hangul

// Match is an item of a Matcher that contains the query, with the byte range
// of the first occurrence.
type Match struct {
	Item  string
	Start int
	End   int
}

// Matcher answers Korean-aware substring queries over a fixed list of items.
//
// A query letter matches an item letter when they are equal ignoring case,
// when the query letter is a consonant equal to the leading consonant of the
// item syllable, or, for the final query letter only, when the query letter
// is an open syllable sharing the item syllable's leading consonant and
// vowel (so "가이ㄷ" and "가이드" both find "가이드").
type Matcher struct {
	items   []string
	letters [][]letter
}

// NewMatcher indexes items. The order of items is the order of results.
func NewMatcher(items []string) *Matcher {
	m := &Matcher{
		items:   make([]string, len(items)),
		letters: make([][]letter, len(items)),
	}
	copy(m.items, items)
	for i, it := range items {
		m.letters[i] = decompose(it)
	}
	return m
}

// Len returns the number of indexed items.
func (m *Matcher) Len() int { return len(m.items) }

// Search returns every item containing query, in index order.
func (m *Matcher) Search(query string) []Match {
	q := decompose(query)
	if len(q) == 0 {
		return nil
	}
	var out []Match
	for i, item := range m.letters {
		if at := indexOf(item, q); at >= 0 {
			last := item[at+len(q)-1]
			out = append(out, Match{
				Item:  m.items[i],
				Start: item[at].offset,
				End:   last.offset + last.width,
			})
		}
	}
	return out
}

// Items returns the matching items only.
func (m *Matcher) Items(query string) []string {
	matches := m.Search(query)
	out := make([]string, len(matches))
	for i, mt := range matches {
		out[i] = mt.Item
	}
	return out
}

func indexOf(text, query []letter) int {
	for start := 0; start+len(query) <= len(text); start++ {
		ok := true
		for j := range query {
			if !letterMatches(query[j], text[start+j], j == len(query)-1) {
				ok = false
				break
			}
		}
		if ok {
			return start
		}
	}
	return -1
}

func letterMatches(q, t letter, last bool) bool {
	if q.lower == t.lower {
		return true
	}
	if !t.isSyllable() {
		return false
	}
	if IsConsonant(q.r) {
		return q.r == t.lead
	}
	return last && q.isSyllable() && q.tail == 0 && q.lead == t.lead && q.vowel == t.vowel
}
