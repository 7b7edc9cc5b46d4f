package services

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

type geminiService struct {
	client      *genai.Client
	modelName   string
	temperature float32
	timeout     time.Duration
}

// NewGeminiService builds a Gemini backend. A non-empty opts.BaseURL points
// the client at another endpoint (a proxy or a test server).
func NewGeminiService(ctx context.Context, opts LLMOptions) (LLMService, error) {
	httpOptions := genai.HTTPOptions{BaseURL: opts.BaseURL}
	if opts.Timeout > 0 {
		timeout := opts.Timeout
		httpOptions.Timeout = &timeout
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      opts.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: httpOptions,
	})
	if err != nil {
		return nil, eris.Wrap(err, "gemini: create client")
	}

	model := opts.Model
	if model == "" {
		model = defaultGeminiModel
	}

	return &geminiService{
		client:      client,
		modelName:   model,
		temperature: opts.Temperature,
		timeout:     opts.Timeout,
	}, nil
}

func (g *geminiService) Source() string {
	return ProviderGemini + "-" + g.modelName
}

// Complete implements LLMService.
func (g *geminiService) Complete(ctx context.Context, system, user string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	temperature := g.temperature
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       &temperature,
		MaxOutputTokens:   4096,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(user), config)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) && isTransientStatus(apiErr.Code) {
			return "", NewTransientError(eris.Wrap(err, "gemini: generate"), apiErr.Code)
		}
		return "", eris.Wrap(err, "gemini: generate")
	}

	if resp == nil {
		return "", eris.New("gemini: nil response")
	}

	text := resp.Text()
	if text == "" {
		return "", eris.New("gemini: no text content in response")
	}

	return text, nil
}
