package rates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan3dev/Church-management-system-sub001/internal/domain"
)

func TestFetchRatesParsesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/USD", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`{"rates":{"USD":1,"KES":150.25,"EUR":0.9}}`))
	}))
	defer server.Close()

	source := NewHTTPSource(server.URL)
	rates, err := source.FetchRates(context.Background(), "USD")
	require.NoError(t, err)

	assert.Equal(t, 1.0, rates["USD"])
	assert.Equal(t, 150.25, rates["KES"])
}

func TestFetchRatesServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	source := NewHTTPSource(server.URL, WithRetries(2), WithBackoff(time.Millisecond))
	_, err := source.FetchRates(context.Background(), "USD")
	require.Error(t, err)

	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusInternalServerError, fetchErr.Status)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchRatesRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"rates":{"USD":1,"KES":150}}`))
	}))
	defer server.Close()

	source := NewHTTPSource(server.URL, WithRetries(3), WithBackoff(time.Millisecond))
	rates, err := source.FetchRates(context.Background(), "USD")
	require.NoError(t, err)

	assert.Equal(t, 150.0, rates["KES"])
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchRatesMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json at all`))
	}))
	defer server.Close()

	source := NewHTTPSource(server.URL, WithRetries(1))
	_, err := source.FetchRates(context.Background(), "USD")
	assert.True(t, domain.IsFetchError(err))
}

func TestFetchRatesEmptyRates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rates":{}}`))
	}))
	defer server.Close()

	source := NewHTTPSource(server.URL, WithRetries(1))
	_, err := source.FetchRates(context.Background(), "USD")
	assert.True(t, domain.IsFetchError(err))
}

func TestFetchRatesContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := NewHTTPSource(server.URL, WithRetries(3), WithBackoff(time.Hour))
	_, err := source.FetchRates(ctx, "USD")
	assert.ErrorIs(t, err, context.Canceled)
}
