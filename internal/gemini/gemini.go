// Package gemini wraps the Gemini generative model behind a plain
// generate-prompt contract with bounded retries.
package gemini

import (
	"context"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"technews/internal/logger"
)

type Client struct {
	client      *genai.Client
	model       string
	maxAttempts int
	backoff     time.Duration
}

func NewClient(ctx context.Context, apiKey, model string, maxAttempts int, backoff time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is missing")
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		client:      client,
		model:       model,
		maxAttempts: maxAttempts,
		backoff:     backoff,
	}, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Generate executes a prompt and returns the raw text response. Failed
// calls are retried with linearly increasing backoff before the error is
// surfaced to the caller.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	model := c.client.GenerativeModel(c.model)

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err == nil {
			if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
				err = fmt.Errorf("no response from Gemini")
			} else {
				return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
			}
		}
		lastErr = err

		if attempt == c.maxAttempts {
			break
		}
		logger.Warn("gemini call failed, retrying", "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(attempt) * c.backoff):
		}
	}

	return "", fmt.Errorf("generate failed after %d attempts: %w", c.maxAttempts, lastErr)
}
