package coach

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/sync/semaphore"
)

const SourceFallback = "fallback"

const systemPrompt = "You are MindFuel Coach, a guide to clean eating and healthy habits. " +
	"Respond to the user's question about health and wellness, focusing on clean eating, sugar detox and healthy habits. " +
	"Be supportive and give practical advice in 3-5 sentences maximum."

var replies = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "coach_replies_total",
		Help: "Coach replies by the source that produced them",
	},
	[]string{"source"},
)

func RegisterMetrics(reg prometheus.Registerer) error {
	return reg.Register(replies)
}

// Generator is the part of llms.Model the coach needs.
type Generator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

type Provider struct {
	Name  string
	Model Generator
}

// NewOpenAICompatible builds a provider for any endpoint speaking the OpenAI
// chat completions protocol. Gemini and the Hugging Face router both do.
func NewOpenAICompatible(name, token, model, baseURL string) (Provider, error) {
	llm, err := openai.New(
		openai.WithModel(model),
		openai.WithToken(token),
		openai.WithBaseURL(baseURL),
	)
	if err != nil {
		return Provider{}, fmt.Errorf("init %s: %w", name, err)
	}
	return Provider{Name: name, Model: llm}, nil
}

// Coach answers user messages with the first provider that succeeds,
// starting from the one that last worked. When every provider fails it
// answers from the keyword table.
type Coach struct {
	providers []Provider
	sem       *semaphore.Weighted

	mu        sync.Mutex
	preferred int
}

func New(concurrency int64, providers ...Provider) *Coach {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Coach{
		providers: providers,
		sem:       semaphore.NewWeighted(concurrency),
	}
}

// Preferred returns the name of the provider tried first, or SourceFallback
// when none are configured.
func (c *Coach) Preferred() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.providers) == 0 {
		return SourceFallback
	}
	return c.providers[c.preferred].Name
}

// Reply returns the coach's answer and the name of the source that produced
// it. The only error is a context failure while waiting for a model slot.
func (c *Coach) Reply(ctx context.Context, message string) (string, string, error) {
	if len(c.providers) == 0 {
		replies.WithLabelValues(SourceFallback).Inc()
		return FallbackReply(message), SourceFallback, nil
	}

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return "", "", err
	}
	defer c.sem.Release(1)

	c.mu.Lock()
	start := c.preferred
	c.mu.Unlock()

	var errs []error
	for i := range c.providers {
		idx := (start + i) % len(c.providers)
		p := c.providers[idx]

		text, err := generate(ctx, p.Model, message)
		if err != nil {
			slog.WarnContext(ctx, "coach provider failed", slog.String("provider", p.Name), slog.Any("error", err))
			errs = append(errs, fmt.Errorf("%s: %w", p.Name, err))
			continue
		}

		if idx != start {
			c.mu.Lock()
			c.preferred = idx
			c.mu.Unlock()
			slog.InfoContext(ctx, "coach switched provider", slog.String("provider", p.Name))
		}
		replies.WithLabelValues(p.Name).Inc()
		return text, p.Name, nil
	}

	slog.ErrorContext(ctx, "all coach providers failed", slog.Any("error", errors.Join(errs...)))
	replies.WithLabelValues(SourceFallback).Inc()
	return FallbackReply(message), SourceFallback, nil
}

func generate(ctx context.Context, model Generator, message string) (string, error) {
	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(message)},
		},
	}
	resp, err := model.GenerateContent(ctx, messages,
		llms.WithTemperature(0.7),
		llms.WithMaxTokens(500),
	)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", errors.New("empty response")
	}
	text := strings.TrimSpace(resp.Choices[0].Content)
	if text == "" {
		return "", errors.New("empty response")
	}
	return text, nil
}
