package poster

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/newspost/pkg/config"
	"github.com/umputun/newspost/pkg/domain"
)

// Platform clients are boundary stubs: each validates its configuration and
// simulates delivery. Real API integrations plug in behind the same Poster
// interface and the core treats them all polymorphically.

// TwitterClient posts to twitter
type TwitterClient struct {
	cfg config.Platform
}

// NewTwitterClient creates a twitter client
func NewTwitterClient(cfg config.Platform) *TwitterClient { return &TwitterClient{cfg: cfg} }

// Post publishes the text, with an optional image
func (c *TwitterClient) Post(_ context.Context, text, imageURL string) (domain.PostResult, error) {
	if c.cfg.APIKey == "" || c.cfg.APISecret == "" || c.cfg.AccessToken == "" || c.cfg.TokenSecret == "" {
		return domain.PostResult{}, fmt.Errorf("twitter API credentials not configured")
	}

	lgr.Printf("[INFO] twitter post: %s", snippet(text))
	if imageURL != "" {
		lgr.Printf("[DEBUG] twitter post image: %s", imageURL)
	}

	id := time.Now().Unix()
	return domain.PostResult{
		Success: true,
		PostID:  fmt.Sprintf("twitter_%d", id),
		URL:     fmt.Sprintf("https://twitter.com/user/status/%d", id),
	}, nil
}

// FacebookClient posts to a facebook page
type FacebookClient struct {
	cfg config.Platform
}

// NewFacebookClient creates a facebook client
func NewFacebookClient(cfg config.Platform) *FacebookClient { return &FacebookClient{cfg: cfg} }

// Post publishes the text, with an optional image
func (c *FacebookClient) Post(_ context.Context, text, imageURL string) (domain.PostResult, error) {
	if c.cfg.PageID == "" || c.cfg.AccessToken == "" {
		return domain.PostResult{}, fmt.Errorf("facebook API credentials not configured")
	}

	lgr.Printf("[INFO] facebook post: %s", snippet(text))
	if imageURL != "" {
		lgr.Printf("[DEBUG] facebook post image: %s", imageURL)
	}

	id := time.Now().Unix()
	return domain.PostResult{
		Success: true,
		PostID:  fmt.Sprintf("facebook_%d", id),
		URL:     fmt.Sprintf("https://facebook.com/post/%d", id),
	}, nil
}

// LinkedinClient posts to linkedin
type LinkedinClient struct {
	cfg config.Platform
}

// NewLinkedinClient creates a linkedin client
func NewLinkedinClient(cfg config.Platform) *LinkedinClient { return &LinkedinClient{cfg: cfg} }

// Post publishes the text, with an optional image
func (c *LinkedinClient) Post(_ context.Context, text, imageURL string) (domain.PostResult, error) {
	if c.cfg.AccessToken == "" {
		return domain.PostResult{}, fmt.Errorf("linkedin API credentials not configured")
	}

	lgr.Printf("[INFO] linkedin post: %s", snippet(text))
	if imageURL != "" {
		lgr.Printf("[DEBUG] linkedin post image: %s", imageURL)
	}

	id := time.Now().Unix()
	return domain.PostResult{
		Success: true,
		PostID:  fmt.Sprintf("linkedin_%d", id),
		URL:     fmt.Sprintf("https://linkedin.com/post/%d", id),
	}, nil
}

// InstagramClient posts to instagram, an image is mandatory
type InstagramClient struct {
	cfg config.Platform
}

// NewInstagramClient creates an instagram client
func NewInstagramClient(cfg config.Platform) *InstagramClient { return &InstagramClient{cfg: cfg} }

// Post publishes the text with the required image
func (c *InstagramClient) Post(_ context.Context, text, imageURL string) (domain.PostResult, error) {
	if c.cfg.Username == "" || c.cfg.Password == "" {
		return domain.PostResult{}, fmt.Errorf("instagram credentials not configured")
	}
	if imageURL == "" {
		return domain.PostResult{}, fmt.Errorf("image URL is required for instagram")
	}

	lgr.Printf("[INFO] instagram post: %s", snippet(text))
	lgr.Printf("[DEBUG] instagram post image: %s", imageURL)

	id := time.Now().Unix()
	return domain.PostResult{
		Success: true,
		PostID:  fmt.Sprintf("instagram_%d", id),
		URL:     fmt.Sprintf("https://instagram.com/p/%d", id),
	}, nil
}

// snippet trims post text for log lines
func snippet(text string) string {
	r := []rune(text)
	if len(r) <= 50 {
		return text
	}
	return string(r[:50]) + "..."
}
