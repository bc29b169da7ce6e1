package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/raykavin/backview/pkg/result"
	"github.com/raykavin/backview/pkg/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetries(n int) Option {
	return WithRetries(n, time.Millisecond, 5*time.Millisecond)
}

func TestDefaultRequestIsValid(t *testing.T) {
	require.NoError(t, DefaultRequest().Validate())
}

func TestRequestValidate(t *testing.T) {
	tt := map[string]func(r *Request){
		"strategy":  func(r *Request) { r.StrategyKey = "rsi" },
		"bar":       func(r *Request) { r.Bar = "2h" },
		"min unit":  func(r *Request) { r.MinUnit = 0 },
		"currency":  func(r *Request) { r.Currency = "" },
		"inst id":   func(r *Request) { r.InstID = "" },
		"days low":  func(r *Request) { r.Days = 0 },
		"days high": func(r *Request) { r.Days = 31 },
		"balance":   func(r *Request) { r.InitialBalance = 500 },
		"leverage":  func(r *Request) { r.Leverage = 21 },
		"margin":    func(r *Request) { r.MaintenanceMarginRate = 0.2 },
		"open fee":  func(r *Request) { r.OpenFeeRate = -0.001 },
		"close fee": func(r *Request) { r.CloseFeeRate = 0.02 },
	}

	for name, mutate := range tt {
		t.Run(name, func(t *testing.T) {
			req := DefaultRequest()
			mutate(&req)
			require.Error(t, req.Validate())
		})
	}
}

func TestRunSuccess(t *testing.T) {
	var got Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": sample.Generate(sample.DefaultConfig())})
	}))
	defer server.Close()

	req := DefaultRequest()
	req.Bar = "1h"

	arr, err := New(server.URL).Run(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, arr, 13)
	assert.Equal(t, req, got)
}

func TestRunRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"data": [null]}`))
	}))
	defer server.Close()

	arr, err := New(server.URL, fastRetries(3)).Run(context.Background(), DefaultRequest())
	require.NoError(t, err)
	assert.Len(t, arr, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRunGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := New(server.URL, fastRetries(2)).Run(context.Background(), DefaultRequest())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, "down", apiErr.Body)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRunClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad strategy", http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := New(server.URL, fastRetries(5)).Run(context.Background(), DefaultRequest())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRunMalformedResponse(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"result": []}`))
	}))
	defer server.Close()

	_, err := New(server.URL, fastRetries(5)).Run(context.Background(), DefaultRequest())
	require.ErrorIs(t, err, result.ErrMalformedPayload)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRunInvalidRequest(t *testing.T) {
	req := DefaultRequest()
	req.Days = 90

	_, err := New("http://127.0.0.1:1").Run(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid request")
}

func TestRunEmptyEndpoint(t *testing.T) {
	_, err := New("").Run(context.Background(), DefaultRequest())
	require.ErrorIs(t, err, ErrEmptyEndpoint)
}

func TestRunCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	client := New(server.URL, WithRetries(10, time.Second, time.Second))

	done := make(chan error, 1)
	go func() {
		_, err := client.Run(ctx, DefaultRequest())
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop after cancel")
	}
}

func TestWithTimeoutKeepsCallerClient(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}

	c := New("http://localhost", WithHTTPClient(shared), WithTimeout(time.Second))
	assert.Equal(t, time.Minute, shared.Timeout)
	assert.Equal(t, time.Second, c.httpClient.Timeout)
	assert.NotSame(t, shared, c.httpClient)
}

func TestNilHTTPClient(t *testing.T) {
	var c *Client
	require.NotPanics(t, func() {
		c = New("http://localhost", WithHTTPClient(nil), WithTimeout(time.Second))
	})
	require.NotNil(t, c.httpClient)
	assert.Equal(t, time.Second, c.httpClient.Timeout)

	c = New("http://localhost", WithHTTPClient(nil))
	assert.NotNil(t, c.httpClient)
}
