package gateway

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

func newTestGateway(t *testing.T, handler http.HandlerFunc) *OpenRouter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenRouter(Options{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
	})
}

func TestOpenRouter_Query(t *testing.T) {
	t.Run("successful call", func(t *testing.T) {
		var gotAuth string
		var gotBody chatRequest
		g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hello from the model"}}]}`))
		})

		reply, err := g.Query(context.Background(), "test/model", "hi")
		require.NoError(t, err)
		assert.Equal(t, "hello from the model", reply.Content)
		assert.Equal(t, "Bearer test-key", gotAuth)
		assert.Equal(t, "test/model", gotBody.Model)
		require.Len(t, gotBody.Messages, 1)
		assert.Equal(t, "user", gotBody.Messages[0].Role)
		assert.Equal(t, "hi", gotBody.Messages[0].Content)
	})

	t.Run("402 maps to quota_exhausted", func(t *testing.T) {
		g := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusPaymentRequired)
			_, _ = w.Write([]byte(`{"error":{"code":402,"message":"Insufficient credits"}}`))
		})

		_, err := g.Query(context.Background(), "test/model", "hi")
		require.Error(t, err)
		var ce *CallError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, FailureQuota, ce.Kind)
		assert.True(t, IsQuota(err))
	})

	t.Run("credits message in 200 error body maps to quota_exhausted", func(t *testing.T) {
		g := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"error":{"code":402,"message":"Insufficient credits. Add more at openrouter.ai"}}`))
		})

		_, err := g.Query(context.Background(), "test/model", "hi")
		assert.True(t, IsQuota(err))
	})

	t.Run("server error maps to http_error", func(t *testing.T) {
		g := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := g.Query(context.Background(), "test/model", "hi")
		var ce *CallError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, FailureHTTP, ce.Kind)
		assert.Equal(t, http.StatusBadGateway, ce.Status)
		assert.False(t, IsQuota(err))
	})

	t.Run("malformed JSON maps to malformed_response", func(t *testing.T) {
		g := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{not json`))
		})

		_, err := g.Query(context.Background(), "test/model", "hi")
		var ce *CallError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, FailureMalformed, ce.Kind)
	})

	t.Run("missing choices maps to malformed_response", func(t *testing.T) {
		g := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		})

		_, err := g.Query(context.Background(), "test/model", "hi")
		var ce *CallError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, FailureMalformed, ce.Kind)
	})

	t.Run("slow backend maps to timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		t.Cleanup(srv.Close)
		g := NewOpenRouter(Options{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})

		_, err := g.Query(context.Background(), "test/model", "hi")
		var ce *CallError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, FailureTimeout, ce.Kind)
	})

	t.Run("per-model params are forwarded", func(t *testing.T) {
		var gotBody chatRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
		}))
		t.Cleanup(srv.Close)

		temp := 0.2
		g := NewOpenRouter(Options{
			BaseURL: srv.URL,
			Params: map[string]ModelParams{
				"test/model": {Temperature: &temp, MaxTokens: 1024},
			},
		})

		_, err := g.Query(context.Background(), "test/model", "hi")
		require.NoError(t, err)
		require.NotNil(t, gotBody.Temperature)
		assert.Equal(t, 0.2, *gotBody.Temperature)
		assert.Equal(t, 1024, gotBody.MaxTokens)
	})
}

func TestDecodeModelParams(t *testing.T) {
	t.Run("valid params", func(t *testing.T) {
		got, err := DecodeModelParams(map[string]map[string]any{
			"x/a": {"temperature": 0.7, "max_tokens": 2048},
		})
		require.NoError(t, err)
		require.NotNil(t, got["x/a"].Temperature)
		assert.Equal(t, 0.7, *got["x/a"].Temperature)
		assert.Equal(t, 2048, got["x/a"].MaxTokens)
	})

	t.Run("unknown key is rejected", func(t *testing.T) {
		_, err := DecodeModelParams(map[string]map[string]any{
			"x/a": {"temprature": 0.7},
		})
		require.Error(t, err)
	})
}
