// Package openai turns free recipe text into a loose recipe payload through
// an OpenAI-compatible chat completions endpoint
package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alchemorsel/cookbook/internal/infrastructure/ai"
	"github.com/alchemorsel/cookbook/internal/infrastructure/config"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client implements outbound.RecipeStructurer
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	client      *http.Client
	logger      *zap.Logger
}

var _ outbound.RecipeStructurer = (*Client)(nil)

// NewClient creates a new OpenAI client. Without an API key every call
// returns outbound.ErrNotConfigured.
func NewClient(cfg config.AIConfig, logger *zap.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.OpenAIModel
	if model == "" {
		model = "gpt-4o-mini"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1500
	}

	log := logger.Named("openai")
	if cfg.OpenAIKey == "" {
		log.Info("OpenAI API key not set, recipe structuring disabled")
	}

	return &Client{
		apiKey:      cfg.OpenAIKey,
		baseURL:     baseURL,
		model:       model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		client:      ai.NewHTTPClient(timeout),
		logger:      log,
	}
}

// ChatCompletionRequest is the body of POST /chat/completions
type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionResponse struct {
	Choices []Choice `json:"choices"`
	Usage   struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

type Choice struct {
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// StructureRecipe asks the model for a recipe payload. The result is
// loose and must go through recipe.NormalizePayload.
func (c *Client) StructureRecipe(ctx context.Context, text string) (map[string]any, error) {
	if c.apiKey == "" {
		return nil, outbound.ErrNotConfigured
	}

	content, err := c.complete(ctx, ai.StructurePrompt, text)
	if err != nil {
		c.logger.Error("Recipe structuring failed", zap.Error(err))
		return nil, err
	}
	payload, err := ai.ParsePayload(content)
	if err != nil {
		c.logger.Warn("Model answer is not a recipe payload", zap.Error(err))
	}
	return payload, err
}

// complete runs one chat completion and returns the first choice
func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	req := ChatCompletionRequest{
		Model:          c.model,
		Messages:       []Message{{Role: "system", Content: system}, {Role: "user", Content: user}},
		Temperature:    c.temperature,
		MaxTokens:      c.maxTokens,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}
	header := http.Header{"Authorization": []string{"Bearer " + c.apiKey}}

	var resp ChatCompletionResponse
	if err := ai.PostJSON(ctx, c.client, "openai", c.baseURL+"/chat/completions", header, req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}

	c.logger.Debug("Chat completion done",
		zap.String("model", c.model),
		zap.String("finish_reason", resp.Choices[0].FinishReason),
		zap.Int("total_tokens", resp.Usage.TotalTokens))
	return resp.Choices[0].Message.Content, nil
}
