package httputil

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zezinho10632/DouglasApi/pkg/logger"
)

func TestNew(t *testing.T) {
	client := New(logger.NewNop())

	require.NotNil(t, client.httpClient)
	assert.NotNil(t, client.logger)
	assert.Equal(t, 3, client.retryConfig.MaxRetries)
	assert.True(t, client.retryConfig.Enabled)
}

func TestNewWithTimeout(t *testing.T) {
	client := NewWithTimeout(logger.NewNop(), 5*time.Second)
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
}

func TestWithRetryAndDisable(t *testing.T) {
	client := New(logger.NewNop()).WithRetry(5, 10*time.Millisecond)
	assert.Equal(t, 5, client.retryConfig.MaxRetries)
	assert.Equal(t, 10*time.Millisecond, client.retryConfig.InitialDelay)

	client.DisableRetry()
	assert.False(t, client.retryConfig.Enabled)
}

func TestPostJSON(t *testing.T) {
	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	resp, err := New(logger.NewNop()).PostJSON(context.Background(), server.URL, map[string]string{"action": "CREATE"})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "CREATE", got["action"])
}

func TestRetryOn5xxResendsBody(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "x", body["k"])

		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(logger.NewNop()).WithRetry(3, time.Millisecond)
	resp, err := client.PostJSON(context.Background(), server.URL, map[string]string{"k": "x"})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestRetryStopsOnContextCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := New(logger.NewNop()).WithRetry(10, time.Second)
	_, err := client.PostJSON(ctx, server.URL, map[string]string{})
	assert.Error(t, err)
}

func TestNoRetryWhenDisabled(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	resp, err := New(logger.NewNop()).DisableRetry().PostJSON(context.Background(), server.URL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{200, false},
		{400, false},
		{404, false},
		{429, true},
		{500, true},
		{503, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsRetryableError(tt.code), "status %d", tt.code)
	}
}
