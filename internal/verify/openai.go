package verify

import (
	"context"
	"fmt"
	"time"

	"github.com/dmarchante/relvet/internal/model"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements the Provider interface for OpenAI models
// and OpenAI-compatible endpoints.
type OpenAIProvider struct {
	client *openai.Client
	config model.VerifierConfig
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(cfg model.VerifierConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is properly configured by listing
// models (a lightweight API call).
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	return err == nil
}

// Verify checks one record using the Chat Completions API.
func (p *OpenAIProvider) Verify(ctx context.Context, rec model.Record) model.Outcome {
	chatModel := p.config.Model
	if chatModel == "" {
		chatModel = openai.GPT4oMini
	}

	maxTokens := p.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 512
	}

	timeout := p.config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: chatModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildPrompt(rec),
			},
		},
		MaxTokens:   maxTokens,
		Temperature: float32(p.config.Temperature),
	}

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return errorOutcome(rec, "openai: %v", err)
	}
	if len(resp.Choices) == 0 {
		return errorOutcome(rec, "openai: empty response")
	}

	verdict, reason := ParseVerdict(resp.Choices[0].Message.Content)
	return model.Outcome{
		ID:      rec.ID,
		Verdict: verdict,
		Reason:  reason,
		Record:  rec,
	}
}
