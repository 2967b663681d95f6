package classify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/NepomukLorenz/auditrevenue"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

const (
	DefaultGeminiModel = "gemini-2.0-flash"

	defaultGeminiTimeout     = 30 * time.Second
	defaultGeminiRetries     = 3
	defaultRequestsPerMinute = 60
)

// GeminiOptions tunes the remote classifier. The zero value selects
// sensible defaults for every field.
type GeminiOptions struct {
	Model             string
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerMinute int
}

// Gemini classifies accounts with a Gemini model. The API key is taken
// from the environment by the client (GEMINI_API_KEY or GOOGLE_API_KEY).
type Gemini struct {
	client     *genai.Client
	model      string
	timeout    time.Duration
	maxRetries int
	limiter    *rate.Limiter
}

// NewGemini creates the remote classifier. Requests are rate limited
// and retried with exponential backoff; a reply outside the taxonomy
// counts as a failed attempt.
func NewGemini(ctx context.Context, opts GeminiOptions) (*Gemini, error) {
	if opts.Model == "" {
		opts.Model = DefaultGeminiModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultGeminiTimeout
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultGeminiRetries
	}
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = defaultRequestsPerMinute
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Gemini{
		client:     client,
		model:      opts.Model,
		timeout:    opts.Timeout,
		maxRetries: opts.MaxRetries,
		limiter:    rate.NewLimiter(rate.Limit(float64(opts.RequestsPerMinute)/60.0), 1),
	}, nil
}

func (g *Gemini) Classify(ctx context.Context, req Request) (auditrevenue.Category, error) {
	prompt := buildPrompt(req)
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	var lastErr error
	for attempt := 0; attempt < g.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return auditrevenue.CategoryUnknown, ctx.Err()
			}
		}
		if err := g.limiter.Wait(ctx); err != nil {
			return auditrevenue.CategoryUnknown, err
		}

		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		resp, err := g.client.Models.GenerateContent(callCtx, g.model, contents, nil)
		cancel()
		if err != nil {
			lastErr = fmt.Errorf("generate content: %w", err)
			continue
		}

		answer := cleanModelAnswer(resp.Text())
		if answer == "" {
			lastErr = fmt.Errorf("empty response from model")
			continue
		}
		category, ok := auditrevenue.ParseCategory(answer)
		if !ok {
			lastErr = fmt.Errorf("response %q is not a known category", answer)
			continue
		}
		return category, nil
	}
	return auditrevenue.CategoryUnknown, fmt.Errorf("classify account %s: %w", req.Account, lastErr)
}

func buildPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("You are an audit assistant categorizing general ledger accounts.\n\n")
	b.WriteString("Assign the account below to exactly one of these categories:\n")
	for _, category := range auditrevenue.Categories() {
		fmt.Fprintf(&b, "- %s\n", category)
	}
	fmt.Fprintf(&b, "\nAccount number: %s\nAccount name: %s\n", req.Account, req.Name)
	if req.CounterSummary != "" {
		fmt.Fprintf(&b, "\nTop counter-accounts by debit volume:\n%s\n", req.CounterSummary)
	}
	if req.NeighborSummary != "" {
		fmt.Fprintf(&b, "\nAdjacent accounts in the chart of accounts:\n%s\n", req.NeighborSummary)
	}
	b.WriteString("\nAnswer with the category name only. No explanation, no Markdown.\n")
	return b.String()
}

// cleanModelAnswer strips code fences and surrounding noise the model
// sometimes adds despite instructions.
func cleanModelAnswer(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.IndexByte(s, '\n'); idx != -1 {
		s = strings.TrimSpace(s[:idx])
	}
	return strings.Trim(s, `"'.`)
}
