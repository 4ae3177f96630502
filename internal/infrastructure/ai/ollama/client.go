// Package ollama structures recipe text with a local Ollama model
package ollama

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/alchemorsel/cookbook/internal/infrastructure/ai"
	"github.com/alchemorsel/cookbook/internal/infrastructure/config"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	"go.uber.org/zap"
)

const (
	defaultHost  = "http://localhost:11434"
	defaultModel = "llama3.2:3b"
)

// Client implements outbound.RecipeStructurer using the Ollama chat API
type Client struct {
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	client      *http.Client
	logger      *zap.Logger
}

var _ outbound.RecipeStructurer = (*Client)(nil)

// NewClient creates a new Ollama client
func NewClient(cfg config.AIConfig, logger *zap.Logger) *Client {
	baseURL := strings.TrimRight(cfg.OllamaHost, "/")
	if baseURL == "" {
		baseURL = defaultHost
	}
	model := cfg.OllamaModel
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2000
	}

	log := logger.Named("ollama")
	log.Info("Ollama client initialized",
		zap.String("base_url", baseURL),
		zap.String("model", model),
		zap.Duration("timeout", timeout))

	return &Client{
		baseURL:     baseURL,
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   maxTokens,
		client:      ai.NewHTTPClient(timeout),
		logger:      log,
	}
}

// ChatMessage is one turn of an /api/chat conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model    string         `json:"model"`
	Messages []ChatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Format   string         `json:"format,omitempty"`
	Options  map[string]any `json:"options,omitempty"`
}

type ChatResponse struct {
	Model           string      `json:"model"`
	Message         ChatMessage `json:"message"`
	Done            bool        `json:"done"`
	TotalDuration   int64       `json:"total_duration,omitempty"`
	PromptEvalCount int         `json:"prompt_eval_count,omitempty"`
	EvalCount       int         `json:"eval_count,omitempty"`
}

// HealthCheck lists the local models, which only needs the daemon up
func (c *Client) HealthCheck(ctx context.Context) error {
	return ai.Probe(ctx, c.client, "ollama", c.baseURL+"/api/tags")
}

// StructureRecipe asks the local model for a recipe payload. Like the
// hosted provider, the result must go through recipe.NormalizePayload.
func (c *Client) StructureRecipe(ctx context.Context, text string) (map[string]any, error) {
	content, err := c.chat(ctx, ai.StructurePrompt, text)
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

func (c *Client) chat(ctx context.Context, system, user string) (string, error) {
	req := ChatRequest{
		Model:    c.model,
		Messages: []ChatMessage{{Role: "system", Content: system}, {Role: "user", Content: user}},
		Format:   "json",
		Options: map[string]any{
			"temperature": c.temperature,
			"num_predict": c.maxTokens,
			"num_ctx":     4096,
		},
	}

	var resp ChatResponse
	if err := ai.PostJSON(ctx, c.client, "ollama", c.baseURL+"/api/chat", nil, req, &resp); err != nil {
		return "", err
	}
	if !resp.Done {
		return "", errors.New("incomplete response from ollama")
	}

	c.logger.Debug("Chat completion done",
		zap.String("model", resp.Model),
		zap.Int("prompt_eval_count", resp.PromptEvalCount),
		zap.Int("eval_count", resp.EvalCount),
		zap.Duration("total_duration", time.Duration(resp.TotalDuration)))
	return resp.Message.Content, nil
}
