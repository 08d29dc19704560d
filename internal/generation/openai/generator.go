// Package openai provides the live report generator backed by the OpenAI
// chat completions API.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"golang.org/x/time/rate"

	"github.com/karthiBP/aegis-incidents/internal/domain"
	"github.com/karthiBP/aegis-incidents/internal/generation"
)

// Config holds OpenAI generator configuration.
type Config struct {
	APIKey    string
	Model     string
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // outbound requests per second
}

// Generator implements generation.Generator using the OpenAI API. Two
// completions are made per report: one for action items (JSON), one for
// the postmortem document.
type Generator struct {
	client  openai.Client
	model   string
	limiter *rate.Limiter
}

// NewGenerator creates a live generator. API key is required.
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai generator: api key is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	rps := cfg.RateLimit
	if rps <= 0 {
		rps = 1
	}

	slog.Info("openai generator configured", "model", model, "rate_limit", rps)

	return &Generator{
		client:  openai.NewClient(opts...),
		model:   model,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}, nil
}

// Name implements generation.Generator.
func (g *Generator) Name() string { return "openai" }

// Generate implements generation.Generator.
func (g *Generator) Generate(ctx context.Context, req generation.ReportRequest) (*generation.ReportResult, error) {
	contextJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode incident context: %w", err)
	}

	items, err := g.generateActionItems(ctx, string(contextJSON))
	if err != nil {
		return nil, err
	}

	report, err := g.generateReport(ctx, string(contextJSON), items)
	if err != nil {
		return nil, err
	}

	return &generation.ReportResult{
		ActionItems:    items,
		ReportMarkdown: report,
	}, nil
}

func (g *Generator) generateActionItems(ctx context.Context, incidentContext string) ([]domain.ActionItem, error) {
	content, err := g.complete(ctx, actionItemsPrompt, incidentContext, 1000)
	if err != nil {
		return nil, err
	}

	// A malformed response degrades to an empty action-item list rather
	// than failing the whole generation.
	items := parseActionItems(content)
	if items == nil {
		slog.Warn("openai generator: could not parse action items, continuing without")
		items = make([]domain.ActionItem, 0)
	}
	return items, nil
}

func (g *Generator) generateReport(ctx context.Context, incidentContext string, items []domain.ActionItem) (string, error) {
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode action items: %w", err)
	}

	user := fmt.Sprintf("Generate a postmortem for this incident:\n%s\n\nAction Items:\n%s",
		incidentContext, itemsJSON)

	return g.complete(ctx, postmortemPrompt, user, 4000)
}

func (g *Generator) complete(ctx context.Context, system, user string, maxTokens int64) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("wait for rate limiter: %w", err)
	}

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		MaxTokens:   openai.Int(maxTokens),
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		return "", mapAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", generation.ErrGenerationFailed
	}
	return resp.Choices[0].Message.Content, nil
}

// mapAPIError converts transport/API failures to workflow errors. An
// overloaded service is distinguished so the user gets a "try again
// shortly" message instead of a generic failure.
func mapAPIError(err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) && apierr.StatusCode == http.StatusTooManyRequests {
		return generation.ErrGeneratorBusy
	}
	slog.Error("openai generator: api call failed", "error", err)
	return generation.ErrGenerationFailed
}

// parseActionItems accepts the shapes the model actually returns: a bare
// array, or an object wrapping the array under "items" or "action_items".
func parseActionItems(content string) []domain.ActionItem {
	type rawItem struct {
		Action   string `json:"action"`
		Owner    string `json:"owner"`
		Priority string `json:"priority"`
	}

	var raw []rawItem
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		var wrapped struct {
			Items       []rawItem `json:"items"`
			ActionItems []rawItem `json:"action_items"`
		}
		if err := json.Unmarshal([]byte(content), &wrapped); err != nil {
			return nil
		}
		raw = wrapped.Items
		if len(raw) == 0 {
			raw = wrapped.ActionItems
		}
	}

	items := make([]domain.ActionItem, 0, len(raw))
	for _, r := range raw {
		priority := domain.Priority(r.Priority)
		if !priority.IsValid() {
			priority = domain.PriorityP2
		}
		items = append(items, domain.ActionItem{
			ID:       uuid.NewString(),
			Action:   r.Action,
			Owner:    r.Owner,
			Priority: priority,
		})
	}
	return items
}
