package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["text"]})
	}))
	defer server.Close()

	var out struct {
		Echo string `json:"echo"`
	}
	header := http.Header{"Authorization": []string{"Bearer k"}}
	err := PostJSON(context.Background(), NewHTTPClient(time.Second), "test", server.URL, header, map[string]string{"text": "gratin"}, &out)

	require.NoError(t, err)
	assert.Equal(t, "gratin", out.Echo)
}

func TestPostJSON_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid key sk-123", http.StatusUnauthorized)
	}))
	defer server.Close()

	err := PostJSON(context.Background(), NewHTTPClient(time.Second), "openai", server.URL, nil, struct{}{}, &struct{}{})

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Equal(t, "openai answered 401 Unauthorized", err.Error())
}

func TestProbe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/up" {
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()
	client := NewHTTPClient(time.Second)

	assert.NoError(t, Probe(context.Background(), client, "test", server.URL+"/up"))
	assert.Error(t, Probe(context.Background(), client, "test", server.URL+"/down"))
}
