package poster

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/newspost/pkg/config"
	"github.com/umputun/newspost/pkg/domain"
)

// TrendingProvider supplies current trending topics for hashtag generation
type TrendingProvider interface {
	Trending(ctx context.Context, count int) ([]domain.TrendingTopic, error)
}

// trendingHashtagPool is how many trending topics hashtag generation considers
const trendingHashtagPool = 5

// defaultMaxLength applies when a platform sets no limit
const defaultMaxLength = 5000

var nonWordRe = regexp.MustCompile(`[^0-9A-Za-z_]`)

// Formatter renders an article into platform-specific post text with length
// limits, hashtags, attribution and UTM-tagged links.
type Formatter struct {
	content  config.Content
	posting  config.Posting
	trending TrendingProvider // optional, nil disables trending hashtags
}

// NewFormatter creates a formatter. trending may be nil.
func NewFormatter(contentCfg config.Content, postingCfg config.Posting, trending TrendingProvider) *Formatter {
	return &Formatter{content: contentCfg, posting: postingCfg, trending: trending}
}

// Format renders the article for the platform. The final truncation never
// cuts inside a link: when text plus URL exceed the platform limit the text
// before the URL is truncated instead.
func (f *Formatter) Format(ctx context.Context, article domain.Article, platform string, pcfg config.Platform) string {
	format := "{title}"
	if len(f.content.TitleFormats) > 0 {
		format = f.content.TitleFormats[rand.Intn(len(f.content.TitleFormats))] //nolint:gosec // non-cryptographic randomness is fine for template choice
	}
	title := strings.ReplaceAll(format, "{title}", article.Title)
	title = truncate(title, f.content.MaxTitleLength)

	var b strings.Builder
	b.WriteString(title)

	if f.content.IncludeSummary && article.Summary != "" {
		b.WriteString("\n\n")
		b.WriteString(truncate(article.Summary, f.content.MaxSummaryLength))
	}

	if f.posting.IncludeSourceAttribution && article.Source != "" {
		b.WriteString("\n\nSource: ")
		b.WriteString(article.Source)
	}

	if pcfg.IncludeLink && article.URL != "" {
		b.WriteString("\n\n")
		b.WriteString(f.taggedURL(article.URL, platform))
	}

	if pcfg.IncludeHashtags {
		maxTags := pcfg.MaxHashtags
		if maxTags == 0 {
			maxTags = 3
		}
		if tags := f.hashtags(ctx, article); len(tags) > 0 {
			if len(tags) > maxTags {
				tags = tags[:maxTags]
			}
			b.WriteString("\n\n")
			b.WriteString(strings.Join(tags, " "))
		}
	}

	return enforceLimit(b.String(), pcfg.MaxLength)
}

// taggedURL appends UTM parameters for attribution tracking when configured
func (f *Formatter) taggedURL(url, platform string) string {
	if !f.posting.AddUTMParameters {
		return url
	}
	utm := fmt.Sprintf("utm_source=%s&utm_medium=social&utm_campaign=news_bot", platform)
	if strings.Contains(url, "?") {
		return url + "&" + utm
	}
	return url + "?" + utm
}

// hashtags builds the deduplicated union of category, trending and custom
// hashtags in configured source order
func (f *Formatter) hashtags(ctx context.Context, article domain.Article) []string {
	var tags []string
	seen := map[string]struct{}{}
	add := func(tag string) {
		if tag == "#" {
			return
		}
		if _, ok := seen[tag]; ok {
			return
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	for _, src := range f.content.HashtagSources {
		switch src {
		case "categories":
			for _, c := range article.Categories {
				add("#" + nonWordRe.ReplaceAllString(c, ""))
			}
		case "trending":
			if f.trending == nil {
				continue
			}
			topics, err := f.trending.Trending(ctx, trendingHashtagPool)
			if err != nil {
				lgr.Printf("[WARN] can't get trending topics for hashtags: %v", err)
				continue
			}
			titleWords := wordSet(article.Title)
			contentWords := wordSet(article.Content)
			for _, topic := range topics {
				if !topicRelevant(topic.Topic, titleWords, contentWords) {
					continue
				}
				add("#" + nonWordRe.ReplaceAllString(strings.ReplaceAll(topic.Topic, " ", ""), ""))
			}
		case "custom":
			for _, t := range f.content.CustomHashtags {
				add("#" + nonWordRe.ReplaceAllString(t, ""))
			}
		}
	}
	return tags
}

// topicRelevant reports whether any topic word appears in the article's
// title or content words
func topicRelevant(topic string, titleWords, contentWords map[string]struct{}) bool {
	for _, w := range strings.Fields(strings.ToLower(topic)) {
		if _, ok := titleWords[w]; ok {
			return true
		}
		if _, ok := contentWords[w]; ok {
			return true
		}
	}
	return false
}

func wordSet(s string) map[string]struct{} {
	res := map[string]struct{}{}
	for _, w := range strings.Fields(strings.ToLower(s)) {
		res[w] = struct{}{}
	}
	return res
}

// truncate cuts s to at most max characters with a trailing ellipsis.
// Zero max means no limit.
func truncate(s string, max int) string {
	if max <= 3 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// enforceLimit applies the platform length limit. A post containing a link
// never gets cut inside the link, the preceding text is truncated instead.
// Posts without a link are hard-truncated with an ellipsis.
func enforceLimit(post string, maxLength int) string {
	if maxLength == 0 {
		maxLength = defaultMaxLength
	}
	if utf8.RuneCountInString(post) <= maxLength {
		return post
	}

	urlIdx := strings.Index(post, "http")
	if urlIdx > 0 {
		tail := post[urlIdx:]
		if avail := maxLength - utf8.RuneCountInString(tail) - 2; avail > 3 {
			head := truncate(strings.TrimSpace(post[:urlIdx]), avail)
			return head + "\n\n" + tail
		}
		// the link barely fits on its own, keep it intact anyway
		return tail
	}

	return truncate(post, maxLength)
}
