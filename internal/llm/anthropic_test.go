package llm

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

func TestNewAnthropic_Defaults(t *testing.T) {
	tests := []struct {
		name          string
		model         string
		temperature   float64
		expectedModel string
		expectedTemp  float64
	}{
		{name: "explicit values", model: "claude-3-opus", temperature: 0.5, expectedModel: "claude-3-opus", expectedTemp: 0.5},
		{name: "empty model uses default", model: "", temperature: 0.2, expectedModel: defaultAnthropicModel, expectedTemp: 0.2},
		{name: "zero temperature uses default", model: "m", temperature: 0, expectedModel: "m", expectedTemp: 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewAnthropic("key", tt.model, tt.temperature, 0)
			assert.Equal(t, tt.expectedModel, c.model)
			assert.Equal(t, tt.expectedTemp, c.temperature)
			assert.Equal(t, 60*time.Second, c.httpClient.Timeout)
		})
	}
}

func TestAnthropicGenerate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-api-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		var req anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "system prompt", req.System)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "¿Cuál es la comisión?", req.Messages[0].Content)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":"  Es un mes de alquiler. "}]}`))
	}))
	defer server.Close()

	c := NewAnthropic("test-api-key", "test-model", 0.3, time.Second)
	c.apiURL = server.URL

	text, err := c.Generate(context.Background(), "system prompt", "¿Cuál es la comisión?")
	require.NoError(t, err)
	assert.Equal(t, "Es un mes de alquiler.", text)
}

func TestAnthropicGenerate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": {"type": "server_error", "message": "Internal error"}}`))
	}))
	defer server.Close()

	c := NewAnthropic("k", "m", 0.3, time.Second)
	c.apiURL = server.URL

	_, err := c.Generate(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestAnthropicGenerate_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":[]}`))
	}))
	defer server.Close()

	c := NewAnthropic("k", "m", 0.3, time.Second)
	c.apiURL = server.URL

	_, err := c.Generate(context.Background(), "s", "u")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestAnthropicPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		if r.Header.Get("x-api-key") != "good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	good := NewAnthropic("good", "", 0, time.Second)
	good.modelsURL = server.URL
	assert.NoError(t, good.Ping(context.Background()))

	bad := NewAnthropic("bad", "", 0, time.Second)
	bad.modelsURL = server.URL
	assert.Error(t, bad.Ping(context.Background()))
}
