package services

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// LLMService sends one system + user exchange to a chat model and returns
// the raw reply text.
type LLMService interface {
	Complete(ctx context.Context, system, user string) (string, error)
	Source() string
}

type LLMOptions struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

func NewLLMService(ctx context.Context, opts LLMOptions) (LLMService, error) {
	switch opts.Provider {
	case "", ProviderOpenAI:
		return NewOpenAIService(opts), nil
	case ProviderGemini:
		return NewGeminiService(ctx, opts)
	default:
		return nil, eris.Errorf("unknown LLM provider %q", opts.Provider)
	}
}

// CompleteWithRetry calls the model up to maxAttempts times, retrying only
// transient failures and waiting delay between attempts.
func CompleteWithRetry(ctx context.Context, llm LLMService, system, user string, maxAttempts int, delay time.Duration) (string, error) {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		reply, err := llm.Complete(ctx, system, user)
		if err == nil {
			return reply, nil
		}
		lastErr = err

		if ctx.Err() != nil || !IsTransient(err) || attempt == maxAttempts {
			break
		}

		zap.L().Warn("model call failed, retrying",
			zap.String("source", llm.Source()),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", eris.Wrap(ctx.Err(), "context cancelled")
		case <-timer.C:
		}
	}

	if maxAttempts > 1 {
		return "", eris.Wrapf(lastErr, "failed after %d attempts", maxAttempts)
	}
	return "", lastErr
}
