package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Dan3dev/Church-management-system-sub001/internal/domain"
)

// RatesResponse is the rate source wire format:
// GET <endpoint>/<base> -> {"rates": {"KES": 150.0, ...}}
type RatesResponse struct {
	Rates map[string]float64 `json:"rates"`
}

// HTTPSource fetches anchor-relative exchange rates over HTTP with
// bounded retry. Non-2xx responses and malformed bodies are FetchErrors.
type HTTPSource struct {
	endpoint string
	client   *http.Client
	retries  int
	backoff  time.Duration
}

type Option func(*HTTPSource)

func WithRetries(n int) Option {
	return func(s *HTTPSource) { s.retries = n }
}

func WithTimeout(d time.Duration) Option {
	return func(s *HTTPSource) { s.client.Timeout = d }
}

func WithBackoff(d time.Duration) Option {
	return func(s *HTTPSource) { s.backoff = d }
}

func NewHTTPSource(endpoint string, opts ...Option) *HTTPSource {
	s := &HTTPSource{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		retries: 3,
		backoff: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *HTTPSource) FetchRates(ctx context.Context, base string) (domain.Rates, error) {
	url := fmt.Sprintf("%s/%s", s.endpoint, base)

	var lastErr error
	backoff := s.backoff
	for attempt := 0; attempt < s.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, &domain.FetchError{URL: url, Err: ctx.Err()}
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		rates, err := s.fetchOnce(ctx, url)
		if err == nil {
			return rates, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (s *HTTPSource) fetchOnce(ctx context.Context, url string) (domain.Rates, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.FetchError{URL: url, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Err: err}
	}

	var parsed RatesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &domain.FetchError{URL: url, Err: fmt.Errorf("malformed body: %w", err)}
	}
	if len(parsed.Rates) == 0 {
		return nil, &domain.FetchError{URL: url, Err: fmt.Errorf("empty rates in response")}
	}

	return domain.Rates(parsed.Rates), nil
}
