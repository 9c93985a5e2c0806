package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-pkgz/lgr"
)

// ErrRetriesExhausted reported when all fetch attempts failed
var ErrRetriesExhausted = errors.New("max retries reached")

// contentSelectors is the prioritized candidate list for the main content
// container, first match wins
const contentSelectors = "article, .article, .content, .post, main, #content, .story, .entry-content"

// authorSelectors locate the author byline when meta tags are absent
const authorSelectors = ".author, .byline, .meta-author"

// Extracted holds the result of a successful article extraction
type Extracted struct {
	Content  string
	ImageURL string
	Author   string
}

// Extractor fetches article pages with retry and politeness throttling and
// extracts body text, primary image and author from the HTML.
type Extractor struct {
	client        *http.Client
	maxRetries    int
	requestDelay  time.Duration
	extractImages bool

	sleep func(time.Duration) // replaced in tests
}

// NewExtractor creates an extractor. maxRetries is the total number of fetch
// attempts per URL, requestDelay is applied after every completed request.
func NewExtractor(timeout, requestDelay time.Duration, maxRetries int, extractImages bool) *Extractor {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Extractor{
		client:        &http.Client{Timeout: timeout},
		maxRetries:    maxRetries,
		requestDelay:  requestDelay,
		extractImages: extractImages,
		sleep:         time.Sleep,
	}
}

// Extract fetches the page and extracts article content. Any failure means
// the caller should skip the article, extraction errors are never fatal to
// a crawl cycle.
func (e *Extractor) Extract(ctx context.Context, pageURL string) (*Extracted, error) {
	body, err := e.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return e.parse(body, pageURL)
}

// Fetch retrieves raw HTML with a bounded retry loop. Each attempt sends a
// randomized user agent and pays the politeness delay after the request
// completes. 429 and 503 double the delay before the next attempt, any other
// non-200 status fails without retry, transport errors are retried.
func (e *Extractor) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	for attempt := 0; attempt < e.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		addBrowserHeaders(req)

		resp, err := e.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lgr.Printf("[WARN] request error for %s: %v", pageURL, err)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		// politeness throttle, applies after every completed request
		e.sleep(e.requestDelay)

		switch {
		case resp.StatusCode == http.StatusOK:
			if readErr != nil {
				lgr.Printf("[WARN] read error for %s: %v", pageURL, readErr)
				continue
			}
			return body, nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable:
			lgr.Printf("[WARN] rate limited or unavailable (%d) for %s, retrying", resp.StatusCode, pageURL)
			e.sleep(e.requestDelay * 2)
		default:
			return nil, fmt.Errorf("unexpected status code %d for %s", resp.StatusCode, pageURL)
		}
	}
	return nil, fmt.Errorf("%w for %s", ErrRetriesExhausted, pageURL)
}

// parse extracts content, image and author from HTML. Fails when no main
// content container can be located.
func (e *Extractor) parse(html []byte, baseURL string) (*Extracted, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html from %s: %w", baseURL, err)
	}

	// strip non-content elements before anything else
	doc.Find("script, style, nav, footer, header, aside").Remove()

	main := e.findMainContent(doc)
	if main == nil {
		return nil, fmt.Errorf("no main content found in %s", baseURL)
	}

	var paragraphs []string
	main.Find("p").Each(func(_ int, p *goquery.Selection) {
		paragraphs = append(paragraphs, strings.TrimSpace(p.Text()))
	})

	res := &Extracted{Content: strings.Join(paragraphs, "\n\n")}

	if e.extractImages {
		res.ImageURL = e.findImage(doc, main, baseURL)
	}
	res.Author = findAuthor(doc)

	return res, nil
}

// findMainContent selects the main container by the candidate list, falling
// back to the largest div by text length
func (e *Extractor) findMainContent(doc *goquery.Document) *goquery.Selection {
	if candidates := doc.Find(contentSelectors); candidates.Length() > 0 {
		return candidates.First()
	}

	var best *goquery.Selection
	bestLen := 0
	doc.Find("div").Each(func(_ int, div *goquery.Selection) {
		if l := len(div.Text()); best == nil || l > bestLen {
			best, bestLen = div, l
		}
	})
	return best
}

// findImage prefers the og:image meta tag, then the largest image in the
// main container by declared width*height. Images without numeric dimensions
// don't compete on size but the first one serves as a last-resort fallback.
func (e *Extractor) findImage(doc *goquery.Document, main *goquery.Selection, baseURL string) string {
	if og, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok && og != "" {
		return resolveURL(og, baseURL)
	}

	var largest, first *goquery.Selection
	maxSize := 0
	main.Find("img").Each(func(i int, img *goquery.Selection) {
		if i == 0 {
			first = img
		}
		w, werr := strconv.Atoi(img.AttrOr("width", ""))
		h, herr := strconv.Atoi(img.AttrOr("height", ""))
		if werr != nil || herr != nil {
			return
		}
		if size := w * h; size > maxSize {
			maxSize = size
			largest = img
		}
	})

	if largest == nil {
		largest = first
	}
	if largest == nil {
		return ""
	}
	src := largest.AttrOr("src", "")
	if src == "" {
		return ""
	}
	return resolveURL(src, baseURL)
}

// findAuthor prefers the article:author meta tag, then common byline selectors
func findAuthor(doc *goquery.Document) string {
	if meta, ok := doc.Find(`meta[property="article:author"]`).Attr("content"); ok && meta != "" {
		return meta
	}
	if byline := doc.Find(authorSelectors); byline.Length() > 0 {
		return strings.TrimSpace(byline.First().Text())
	}
	return ""
}

// resolveURL resolves a possibly relative URL against the article's origin
func resolveURL(raw, baseURL string) string {
	ref, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if ref.IsAbs() {
		return raw
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return raw
	}
	return base.ResolveReference(ref).String()
}
