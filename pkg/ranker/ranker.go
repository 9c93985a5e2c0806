// Package ranker scores articles against search queries and surfaces
// trending topics via word and n-gram frequency over a recent corpus.
// Trending is frequency-based, not semantic.
package ranker

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/umputun/newspost/pkg/domain"
)

// stopWords excluded from single-word counts and from final trending terms
var stopWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"the", "and", "a", "to", "of", "in", "is", "it", "that", "for", "on", "with", "as", "was",
		"by", "at", "from", "be", "this", "have", "an", "are", "not", "or", "but", "what", "all",
		"were", "when", "we", "there", "been", "has", "would", "will", "more", "about", "which",
		"their", "they", "also", "had", "can", "his", "her", "she", "he", "them", "said",
	} {
		stopWords[w] = struct{}{}
	}
}

// word characters in the unicode sense, go's \w is ascii-only
var punctuationRe = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// relatedArticlesPerTopic caps supporting articles attached to a topic
const relatedArticlesPerTopic = 3

// Search ranks corpus articles against a whitespace-tokenized query.
// Score per article is 10 per term found in the title, plus the raw count of
// term occurrences in the content, plus 5 per term found in the summary.
// Zero-score articles are excluded and ties keep corpus order.
func Search(query string, corpus []domain.Article, maxArticles int) []domain.Article {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil
	}

	type scored struct {
		article domain.Article
		score   int
	}
	var matched []scored

	for _, a := range corpus {
		title := strings.ToLower(a.Title)
		body := strings.ToLower(a.Content)
		summary := strings.ToLower(a.Summary)

		score := 0
		for _, term := range terms {
			if strings.Contains(title, term) {
				score += 10 // higher weight for title matches
			}
			score += strings.Count(body, term)
			if strings.Contains(summary, term) {
				score += 5 // medium weight for summary matches
			}
		}
		if score > 0 {
			matched = append(matched, scored{article: a, score: score})
		}
	}

	// stable to keep corpus order between equal scores
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].score > matched[j].score })

	if maxArticles > 0 && len(matched) > maxArticles {
		matched = matched[:maxArticles]
	}
	res := make([]domain.Article, len(matched))
	for i, m := range matched {
		res[i] = m.article
	}
	return res
}

// Trending identifies trending topics across the corpus by merging
// single-word and 2/3-word phrase frequencies. Phrases only require every
// word to be longer than 3 characters, the stop-word list is applied to
// single words at count time and to final terms in a second pass - phrase
// generation itself is deliberately not stop-word filtered.
//
// Returns at most count topics, fewer when not enough terms have at least
// one related article. The count is a soft maximum, not a guarantee.
func Trending(corpus []domain.Article, count int) []domain.TrendingTopic {
	if count <= 0 || len(corpus) == 0 {
		return nil
	}

	var sb strings.Builder
	for _, a := range corpus {
		sb.WriteString(a.Title)
		sb.WriteString(" ")
		sb.WriteString(a.Summary)
		sb.WriteString(" ")
		sb.WriteString(a.Content)
		sb.WriteString(" ")
	}
	text := punctuationRe.ReplaceAllString(strings.ToLower(sb.String()), "")
	words := strings.Fields(text)

	counts := map[string]int{}

	// single words, short and stop words ignored
	for _, w := range words {
		if !longWord(w) {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		counts[w]++
	}

	// bigrams and trigrams of long-enough words, no stop-word filter here
	for i := 0; i+1 < len(words); i++ {
		if longWord(words[i]) && longWord(words[i+1]) {
			counts[words[i]+" "+words[i+1]]++
		}
	}
	for i := 0; i+2 < len(words); i++ {
		if longWord(words[i]) && longWord(words[i+1]) && longWord(words[i+2]) {
			counts[words[i]+" "+words[i+1]+" "+words[i+2]]++
		}
	}

	type termCount struct {
		term string
		n    int
	}
	ranked := make([]termCount, 0, len(counts))
	for term, n := range counts {
		ranked = append(ranked, termCount{term: term, n: n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].n != ranked[j].n {
			return ranked[i].n > ranked[j].n
		}
		return ranked[i].term < ranked[j].term // deterministic order for equal counts
	})

	// inspect more terms than requested, some get filtered below
	if len(ranked) > count*2 {
		ranked = ranked[:count*2]
	}

	var trending []domain.TrendingTopic
	for _, tc := range ranked {
		if containsStopWord(tc.term) {
			continue
		}
		related := relatedArticles(corpus, tc.term)
		if len(related) == 0 {
			continue
		}
		trending = append(trending, domain.TrendingTopic{
			Topic:           tc.term,
			Frequency:       tc.n,
			RelatedArticles: related,
		})
		if len(trending) >= count {
			break
		}
	}
	return trending
}

// longWord reports whether the word has more than 3 characters, counted in
// runes so non-ascii words are not over-measured
func longWord(w string) bool {
	return utf8.RuneCountInString(w) > 3
}

// containsStopWord reports whether any space-split component is a stop word
func containsStopWord(term string) bool {
	for _, part := range strings.Split(term, " ") {
		if _, ok := stopWords[part]; ok {
			return true
		}
	}
	return false
}

// relatedArticles finds up to relatedArticlesPerTopic articles mentioning the
// term in title or content
func relatedArticles(corpus []domain.Article, term string) []domain.ArticleRef {
	var res []domain.ArticleRef
	for _, a := range corpus {
		if strings.Contains(strings.ToLower(a.Title), term) || strings.Contains(strings.ToLower(a.Content), term) {
			res = append(res, a.Ref())
			if len(res) >= relatedArticlesPerTopic {
				break
			}
		}
	}
	return res
}
