package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alchemorsel/cookbook/internal/infrastructure/config"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStructureRecipe_NotConfigured(t *testing.T) {
	client := NewClient(config.AIConfig{}, zap.NewNop())

	_, err := client.StructureRecipe(context.Background(), "une tarte")

	assert.ErrorIs(t, err, outbound.ErrNotConfigured)
}

func TestStructureRecipe_ParsesFencedJSON(t *testing.T) {
	// Arrange
	var received ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		_ = json.NewEncoder(w).Encode(ChatCompletionResponse{
			Choices: []Choice{{Message: Message{
				Role:    "assistant",
				Content: "```json\n{\"title\": \" Tarte \", \"portions\": 4}\n```",
			}}},
		})
	}))
	defer server.Close()

	client := NewClient(config.AIConfig{OpenAIKey: "sk-test", BaseURL: server.URL + "/", OpenAIModel: "test-model"}, zap.NewNop())

	// Act
	payload, err := client.StructureRecipe(context.Background(), "Tarte pour quatre")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, " Tarte ", payload["title"])
	assert.Equal(t, 4.0, payload["portions"])
	assert.Equal(t, "test-model", received.Model)
	require.Len(t, received.Messages, 2)
	assert.Equal(t, "Tarte pour quatre", received.Messages[1].Content)
}

func TestStructureRecipe_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(config.AIConfig{OpenAIKey: "sk-test", BaseURL: server.URL}, zap.NewNop())

	_, err := client.StructureRecipe(context.Background(), "soupe")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.NotContains(t, err.Error(), "quota")
}
