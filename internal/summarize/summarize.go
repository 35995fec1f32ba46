// Package summarize batches articles through a generative-text service and
// parses the structured JSON responses, degrading to placeholder summaries
// when a batch cannot be summarized.
package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"technews/internal/logger"
	"technews/internal/news"
	"technews/internal/ratelimit"
)

// Generator is the generative-text contract. The model choice and auth are
// the implementation's business.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const promptTemplate = `You are an expert tech news summarizer. Given a list of tech news items with title, url, and content text, generate a concise summary for each item.
REQUIREMENTS:
- Valid JSON output: {"summaries":[{...}]}
- Each item: a few key bullets (<=80 characters each), plus "why_it_matters".
- If troubleshooting: add "key_commands" & "caveats".
- Rephrase in an easy-to-understand way.
- No fabrication. If information is missing, leave the array empty.
- Keep the "type" field as one of: news, howto, troubleshooting, announcement, video.

INPUT:
%s

OUTPUT:
{
  "summaries": [
    {
      "title": "...",
      "url": "...",
      "bullets": ["...", "..."],
      "why_it_matters": "...",
      "type": "news|howto|troubleshooting|announcement|video",
      "key_commands": ["..."],
      "caveats": ["..."]
    }
  ]
}
`

// Service turns canonical articles into structured summaries.
type Service struct {
	gen       Generator
	batchSize int
	timeout   time.Duration
	budget    *ratelimit.Budget
}

// NewService fails fast on a non-positive batch size. timeout bounds each
// batch's model call, 0 meaning unbounded; budget may be nil for unmetered
// use.
func NewService(gen Generator, batchSize int, timeout time.Duration, budget *ratelimit.Budget) (*Service, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be a positive integer, got %d", batchSize)
	}
	return &Service{gen: gen, batchSize: batchSize, timeout: timeout, budget: budget}, nil
}

// Summarize returns one SummaryResult per input article, in batch order.
// Within a batch the parsed model order is kept; requests the model skipped
// get fallback results so the output length always equals the input length.
func (s *Service) Summarize(ctx context.Context, articles []news.Article) []news.SummaryResult {
	requests := make([]news.SummaryRequest, len(articles))
	for i := range articles {
		requests[i] = articles[i].ToSummaryRequest()
	}

	results := make([]news.SummaryResult, 0, len(requests))
	for start := 0; start < len(requests); start += s.batchSize {
		end := start + s.batchSize
		if end > len(requests) {
			end = len(requests)
		}
		results = append(results, s.summarizeBatch(ctx, requests[start:end])...)
	}
	return results
}

func (s *Service) summarizeBatch(ctx context.Context, batch []news.SummaryRequest) []news.SummaryResult {
	if s.budget != nil && !s.budget.CanRequest() {
		used, max := s.budget.Usage()
		logger.Warn("model request budget exhausted, using fallback summaries", "used", used, "max", max)
		return fallbacks(batch)
	}

	prompt, err := s.buildPrompt(batch)
	if err != nil {
		logger.Error("failed to build prompt", "error", err)
		return fallbacks(batch)
	}

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	raw, err := s.gen.Generate(callCtx, prompt)
	if s.budget != nil {
		s.budget.RecordRequest()
	}
	if err != nil {
		logger.Error("model call failed for batch", "size", len(batch), "error", err)
		return fallbacks(batch)
	}

	parsed, err := parseResponse(raw)
	if err != nil {
		logger.Error("model response was not valid JSON", "error", err)
		return fallbacks(batch)
	}
	return reconcile(batch, parsed)
}

func (s *Service) buildPrompt(batch []news.SummaryRequest) (string, error) {
	items, err := json.Marshal(batch)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(promptTemplate, items), nil
}

// parseResponse strips optional code-fence markup and decodes the strict
// {"summaries": [...]} response shape.
func parseResponse(raw string) ([]news.SummaryResult, error) {
	var payload struct {
		Summaries []news.SummaryResult `json:"summaries"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &payload); err != nil {
		return nil, err
	}
	return payload.Summaries, nil
}

func stripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	for _, fence := range []string{"```json", "```"} {
		if strings.HasPrefix(text, fence) {
			text = strings.TrimSpace(strings.TrimPrefix(text, fence))
			text = strings.TrimSpace(strings.TrimSuffix(text, "```"))
			break
		}
	}
	return text
}

// reconcile guarantees exactly one result per request. Parsed results keep
// the model's order; requests the model omitted (matched by URL, then
// title) get fallbacks appended, and surplus entries are dropped.
func reconcile(batch []news.SummaryRequest, parsed []news.SummaryResult) []news.SummaryResult {
	if len(parsed) > len(batch) {
		parsed = parsed[:len(batch)]
	}
	for i := range parsed {
		parsed[i].Normalize()
	}
	if len(parsed) == len(batch) {
		return parsed
	}

	taken := make([]bool, len(parsed))
	var missing []news.SummaryRequest
	for _, req := range batch {
		found := false
		for i := range parsed {
			if taken[i] {
				continue
			}
			if (parsed[i].URL != "" && parsed[i].URL == req.URL) ||
				(parsed[i].Title != "" && parsed[i].Title == req.Title) {
				taken[i] = true
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, req)
		}
	}
	for _, req := range missing {
		if len(parsed) == len(batch) {
			break
		}
		parsed = append(parsed, news.FallbackResult(req))
	}
	return parsed
}

func fallbacks(batch []news.SummaryRequest) []news.SummaryResult {
	out := make([]news.SummaryResult, len(batch))
	for i, req := range batch {
		out[i] = news.FallbackResult(req)
	}
	return out
}
