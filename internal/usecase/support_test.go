package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Dan3dev/Church-management-system-sub001/internal/domain"
	"github.com/Dan3dev/Church-management-system-sub001/internal/infrastructure/metrics"
	"github.com/Dan3dev/Church-management-system-sub001/internal/infrastructure/webhook"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMetrics() *metrics.CoreMetrics {
	return metrics.NewCoreMetricsWith(prometheus.NewRegistry())
}

// stubRateSource serves a fixed anchor-relative rate table and records
// every requested base.
type stubRateSource struct {
	mu      sync.Mutex
	rates   domain.Rates
	err     error
	bases   []string
	fetched chan string
}

func newStubRateSource(rates domain.Rates) *stubRateSource {
	return &stubRateSource{rates: rates, fetched: make(chan string, 16)}
}

func (s *stubRateSource) FetchRates(ctx context.Context, base string) (domain.Rates, error) {
	s.mu.Lock()
	s.bases = append(s.bases, base)
	err := s.err
	rates := s.rates.Clone()
	s.mu.Unlock()

	select {
	case s.fetched <- base:
	default:
	}
	if err != nil {
		return nil, err
	}
	return rates, nil
}

func (s *stubRateSource) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *stubRateSource) requestedBases() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.bases))
	copy(out, s.bases)
	return out
}

// fakeGateway counts webhook traffic and fails on demand. URL
// validation runs through the real gateway so a rejected URL provably
// causes zero network calls.
type fakeGateway struct {
	validator *webhook.Gateway

	mu         sync.Mutex
	probeCalls int
	sendCalls  int
	probeErr   map[string]error
	sendErr    map[string]error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		validator: webhook.NewGateway(0),
		probeErr:  map[string]error{},
		sendErr:   map[string]error{},
	}
}

func (g *fakeGateway) ValidateURL(service, rawURL string) error {
	return g.validator.ValidateURL(service, rawURL)
}

func (g *fakeGateway) Probe(ctx context.Context, service, url string) error {
	g.mu.Lock()
	g.probeCalls++
	err := g.probeErr[service]
	g.mu.Unlock()
	return err
}

func (g *fakeGateway) Send(ctx context.Context, service, url, message, title, severity string) error {
	g.mu.Lock()
	g.sendCalls++
	err := g.sendErr[service]
	g.mu.Unlock()
	return err
}

func (g *fakeGateway) networkCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.probeCalls + g.sendCalls
}

// fakeAuth is the auth handshake double. begin/release gate the
// handshake so tests can hold it open while a second connect arrives.
type fakeAuth struct {
	mu         sync.Mutex
	beginCalls int
	fail       error
	started    chan struct{}
	release    chan struct{}
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{}
}

func (a *fakeAuth) Begin(ctx context.Context, service string) (string, error) {
	a.mu.Lock()
	a.beginCalls++
	fail := a.fail
	started, release := a.started, a.release
	a.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if release != nil {
		<-release
	}
	if fail != nil {
		return "", fail
	}
	return "session-" + service, nil
}

func (a *fakeAuth) Complete(ctx context.Context, service, sessionID string) (domain.AuthToken, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail != nil {
		return domain.AuthToken{}, a.fail
	}
	return domain.AuthToken{AccessToken: "token-" + service, Account: service + "@example.org"}, nil
}

func (a *fakeAuth) Verify(ctx context.Context, service, accessToken string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fail
}

func (a *fakeAuth) beginCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.beginCalls
}

// memStore is the minimal snapshot holder for hub tests that do not
// need a full state store.
type memStore struct {
	mu    sync.Mutex
	state domain.AppState
}

func newMemStore() *memStore {
	return &memStore{state: domain.NewAppState("en", "USD", "")}
}

func (s *memStore) Dispatch(intent domain.Intent) domain.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = intent.Apply(s.state)
	return s.state
}

func (s *memStore) Snapshot() domain.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// memSettings is an in-memory SettingsRepository.
type memSettings struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemSettings() *memSettings {
	return &memSettings{values: map[string]string{}}
}

func (r *memSettings) Get(ctx context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	value, ok := r.values[key]
	if !ok {
		return "", domain.ErrSettingNotFound
	}
	return value, nil
}

func (r *memSettings) Set(ctx context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = value
	return nil
}

func (r *memSettings) All(ctx context.Context) (map[string]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out, nil
}
