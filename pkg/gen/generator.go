// Package gen is the client for the external text/image generation service,
// an OpenAI-compatible API. The crawler and posting scheduler never depend on
// it directly, it plugs into the posting pipeline as an optional rewriter.
package gen

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/umputun/newspost/pkg/config"
)

// Generator talks to an OpenAI-compatible generation endpoint
type Generator struct {
	client      *openai.Client
	httpClient  *http.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
}

// NewGenerator creates a generator from llm configuration
func NewGenerator(cfg config.LLM) *Generator {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = cfg.Endpoint
	}
	return &Generator{
		client:      openai.NewClientWithConfig(clientConfig),
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
	}
}

// GenerateText produces a completion for the prompt. Zero maxTokens uses the
// configured default.
func (g *Generator) GenerateText(ctx context.Context, prompt, systemMsg string, maxTokens int) (string, error) {
	if maxTokens == 0 {
		maxTokens = g.maxTokens
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: g.temperature,
		MaxTokens:   maxTokens,
		Messages:    messages(prompt, systemMsg),
	})
	if err != nil {
		return "", fmt.Errorf("generate text: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from generation service")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// GenerateStructured produces a JSON completion and unmarshals it into out
func (g *Generator) GenerateStructured(ctx context.Context, prompt, systemMsg string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
		Messages:    messages(prompt, systemMsg),
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return fmt.Errorf("generate structured: %w", err)
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("no response from generation service")
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), out); err != nil {
		return fmt.Errorf("parse structured response: %w", err)
	}
	return nil
}

// GenerateImage produces an image for the prompt and downloads it to a local
// temp file, returning the file path
func (g *Generator) GenerateImage(ctx context.Context, prompt, size string) (string, error) {
	if size == "" {
		size = openai.CreateImageSize1024x1024
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Size:           size,
		N:              1,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return "", fmt.Errorf("generate image: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", fmt.Errorf("no image returned from generation service")
	}
	return g.download(ctx, resp.Data[0].URL)
}

// RewriteSummary rewrites an article summary into a short post-friendly blurb
func (g *Generator) RewriteSummary(ctx context.Context, title, summary string) (string, error) {
	prompt := fmt.Sprintf("Rewrite this news summary as a single engaging sentence for a social media post. "+
		"Keep facts intact, no hashtags, no emojis.\n\nTitle: %s\nSummary: %s", title, summary)
	return g.GenerateText(ctx, prompt, "You write concise, factual social media copy.", 120)
}

func messages(prompt, systemMsg string) []openai.ChatCompletionMessage {
	var msgs []openai.ChatCompletionMessage
	if systemMsg != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemMsg})
	}
	return append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})
}

// download fetches the generated image into a temp file
func (g *Generator) download(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create image request: %w", err)
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code %d downloading image", resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "newspost-image-*.png")
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("save image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close image file: %w", err)
	}
	return tmp.Name(), nil
}
