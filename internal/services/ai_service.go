package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"infographic-service/internal/config"
)

const (
	defaultModel     = "gpt-4o-mini"
	defaultMaxTokens = 8192
	requestTimeout   = 120 * time.Second

	systemPrompt = "You are an infographic designer. You turn text into a single, visually polished, self-contained HTML document. You respond with HTML only."
)

// Generator is the single operation the orchestrator needs from the
// completion API. AIService implements it; tests substitute a stub.
type Generator interface {
	GenerateInfographic(ctx context.Context, prompt string) (string, error)
}

// AIService wraps one chat-completion call to the configured API
type AIService struct {
	client *openai.Client
	cfg    config.OpenAIConfig
}

// NewAIService creates an AI service for the configured endpoint
func NewAIService(cfg config.OpenAIConfig) *AIService {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &AIService{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
	}
}

// GenerateInfographic sends the prompt and returns the raw completion text.
// A response with no usable completion counts as a failure.
func (s *AIService) GenerateInfographic(ctx context.Context, prompt string) (string, error) {
	model := s.cfg.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := s.cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(reqCtx, openai.ChatCompletionRequest{
		Model:       model,
		Temperature: float32(s.cfg.Temperature),
		MaxTokens:   maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("completion API request failed: %w", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("empty completion from model %s", model)
	}

	return resp.Choices[0].Message.Content, nil
}

// StripCodeFences removes markdown code fences the model sometimes wraps
// around the HTML despite being told not to
func StripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```html") {
		text = strings.TrimPrefix(text, "```html")
		text = strings.TrimSuffix(text, "```")
		text = strings.TrimSpace(text)
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
		text = strings.TrimSpace(text)
	}
	return text
}
