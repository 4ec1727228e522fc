package usecase

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"

	"github.com/Dan3dev/Church-management-system-sub001/internal/domain"
	"github.com/Dan3dev/Church-management-system-sub001/internal/infrastructure/clock"
	"github.com/Dan3dev/Church-management-system-sub001/internal/infrastructure/metrics"
)

// IntegrationBroker owns the per-service connection records and their
// lifecycle. Concurrent connects to one service collapse into a single
// handshake; broadcast fans out with allSettled semantics.
type IntegrationBroker struct {
	gateway domain.WebhookGateway
	auth    domain.AuthProvider
	bus     *EventBus
	metrics *metrics.CoreMetrics
	clock   clock.Clock
	logger  *slog.Logger

	newDeliveryID func() string

	mu      sync.Mutex
	records map[string]*integrationRecord
}

type integrationRecord struct {
	state domain.IntegrationState

	// wait is non-nil while a handshake is in flight. Followers block
	// on it and read result afterwards instead of starting their own.
	wait   chan struct{}
	result error
}

func NewIntegrationBroker(gateway domain.WebhookGateway, auth domain.AuthProvider, bus *EventBus, m *metrics.CoreMetrics, clk clock.Clock, logger *slog.Logger) *IntegrationBroker {
	if logger == nil {
		logger = slog.Default()
	}
	idGenerator, err := nanoid.Standard(12)
	if err != nil {
		panic(err)
	}
	return &IntegrationBroker{
		gateway:       gateway,
		auth:          auth,
		bus:           bus,
		metrics:       m,
		clock:         clk,
		logger:        logger,
		newDeliveryID: idGenerator,
		records:       map[string]*integrationRecord{},
	}
}

// Connect validates config synchronously, then performs the provider
// handshake. A validation failure never enters Connecting and issues
// no network call. A second Connect while one is in flight awaits the
// first handshake's outcome instead of starting another.
func (b *IntegrationBroker) Connect(ctx context.Context, service string, cfg domain.IntegrationConfig) (domain.IntegrationState, error) {
	provider, ok := domain.Providers()[service]
	if !ok {
		return domain.IntegrationState{Service: service}, domain.ErrUnknownService
	}

	if provider.Kind == domain.ProviderWebhook {
		if err := b.gateway.ValidateURL(service, cfg.WebhookURL); err != nil {
			b.metrics.ObserveConnect(service, "invalid")
			return b.State(service), err
		}
	}

	b.mu.Lock()
	rec := b.recordLocked(service)

	if rec.state.Status == domain.IntegrationConnected {
		st := rec.state
		b.mu.Unlock()
		return st, nil
	}

	if rec.wait != nil {
		// Collapse: follow the in-flight handshake.
		wait := rec.wait
		b.mu.Unlock()
		select {
		case <-ctx.Done():
			return b.State(service), ctx.Err()
		case <-wait:
		}
		b.mu.Lock()
		st, err := rec.state, rec.result
		b.mu.Unlock()
		return st, err
	}

	rec.wait = make(chan struct{})
	rec.state.Status = domain.IntegrationConnecting
	rec.state.LastError = ""
	connecting := rec.state
	b.mu.Unlock()

	if b.bus != nil {
		b.bus.Publish(domain.IntegrationChanged{State: connecting})
	}

	handshakeCfg, err := b.handshake(ctx, provider, cfg)

	b.mu.Lock()
	if err != nil {
		rec.state.Status = domain.IntegrationError
		rec.state.LastError = err.Error()
		rec.state.Config = domain.IntegrationConfig{}
		rec.state.SessionID = ""
	} else {
		now := b.clock.Now()
		rec.state.Status = domain.IntegrationConnected
		rec.state.Config = handshakeCfg
		rec.state.SessionID = uuid.New().String()
		rec.state.ConnectedAt = now
		rec.state.LastSync = now
		rec.state.LastError = ""
	}
	rec.result = err
	close(rec.wait)
	rec.wait = nil
	st := rec.state
	b.mu.Unlock()

	if err != nil {
		b.metrics.ObserveConnect(service, "failure")
	} else {
		b.metrics.ObserveConnect(service, "success")
	}
	if b.bus != nil {
		b.bus.Publish(domain.IntegrationChanged{State: st})
	}
	return st, err
}

func (b *IntegrationBroker) handshake(ctx context.Context, provider domain.Provider, cfg domain.IntegrationConfig) (domain.IntegrationConfig, error) {
	switch provider.Kind {
	case domain.ProviderWebhook:
		if err := b.gateway.Probe(ctx, provider.Name, cfg.WebhookURL); err != nil {
			return domain.IntegrationConfig{}, err
		}
		return cfg, nil
	case domain.ProviderAuth:
		sessionID, err := b.auth.Begin(ctx, provider.Name)
		if err != nil {
			return domain.IntegrationConfig{}, err
		}
		token, err := b.auth.Complete(ctx, provider.Name, sessionID)
		if err != nil {
			return domain.IntegrationConfig{}, err
		}
		cfg.AccessToken = token.AccessToken
		cfg.Account = token.Account
		return cfg, nil
	default:
		return domain.IntegrationConfig{}, domain.ErrUnknownService
	}
}

// Disconnect resets a service to Disconnected, dropping all
// connection-scoped data. Calling it twice is a no-op the second time.
// It never fails.
func (b *IntegrationBroker) Disconnect(service string) (domain.IntegrationState, bool) {
	b.mu.Lock()
	rec, ok := b.records[service]
	if !ok || rec.state.Status == domain.IntegrationDisconnected {
		st := domain.IntegrationState{Service: service, Status: domain.IntegrationDisconnected}
		if ok {
			st = rec.state
		}
		b.mu.Unlock()
		return st, false
	}
	rec.state = domain.IntegrationState{Service: service, Status: domain.IntegrationDisconnected}
	st := rec.state
	b.mu.Unlock()

	if b.bus != nil {
		b.bus.Publish(domain.IntegrationChanged{State: st})
	}
	return st, true
}

type broadcastTarget struct {
	service string
	url     string
}

// Broadcast fans the message out to every connected
// notification-capable channel as independent attempts. One channel's
// failure never prevents the others; the call returns after every
// attempt settles and reports aggregate success when at least one
// channel delivered. Per-channel status lives in the integration
// state, not the returned error.
func (b *IntegrationBroker) Broadcast(ctx context.Context, message, title, severity string) error {
	providers := domain.Providers()

	b.mu.Lock()
	var targets []broadcastTarget
	for service, rec := range b.records {
		if rec.state.Status != domain.IntegrationConnected {
			continue
		}
		if !providers[service].Notification {
			continue
		}
		targets = append(targets, broadcastTarget{service: service, url: rec.state.Config.WebhookURL})
	}
	b.mu.Unlock()

	if len(targets) == 0 {
		return domain.ErrNoChannels
	}

	var wg sync.WaitGroup
	results := make([]error, len(targets))
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target broadcastTarget) {
			defer wg.Done()
			deliveryID := b.newDeliveryID()
			err := b.gateway.Send(ctx, target.service, target.url, message, title, severity)
			results[i] = err
			if err != nil {
				b.metrics.ObserveDelivery(target.service, "failure")
				b.logger.Warn("broadcast delivery failed",
					"service", target.service,
					"delivery_id", deliveryID,
					"error", err,
				)
				return
			}
			b.metrics.ObserveDelivery(target.service, "success")
			b.mu.Lock()
			if rec, ok := b.records[target.service]; ok && rec.state.Status == domain.IntegrationConnected {
				rec.state.MessagesSent++
				rec.state.LastUsed = b.clock.Now()
			}
			b.mu.Unlock()
		}(i, target)
	}
	wg.Wait()

	delivered := 0
	for _, err := range results {
		if err == nil {
			delivered++
		}
	}
	switch {
	case delivered == 0:
		return domain.ErrDeliveryFailed
	case delivered < len(targets):
		b.logger.Warn("partial broadcast delivery",
			"delivered", delivered,
			"attempted", len(targets),
		)
	}
	return nil
}

// TestConnection sends a lightweight provider probe. A failed test
// reports the error but leaves the connection state untouched.
func (b *IntegrationBroker) TestConnection(ctx context.Context, service string) error {
	provider, ok := domain.Providers()[service]
	if !ok {
		return domain.ErrUnknownService
	}

	b.mu.Lock()
	rec, exists := b.records[service]
	if !exists || rec.state.Status != domain.IntegrationConnected {
		b.mu.Unlock()
		return domain.ErrNotConnected
	}
	cfg := rec.state.Config
	b.mu.Unlock()

	var err error
	switch provider.Kind {
	case domain.ProviderWebhook:
		err = b.gateway.Probe(ctx, service, cfg.WebhookURL)
	case domain.ProviderAuth:
		err = b.auth.Verify(ctx, service, cfg.AccessToken)
	}
	if err != nil {
		return err
	}

	b.mu.Lock()
	if rec, ok := b.records[service]; ok && rec.state.Status == domain.IntegrationConnected {
		rec.state.LastUsed = b.clock.Now()
	}
	b.mu.Unlock()
	return nil
}

// State returns the current record for service; unknown services read
// as Disconnected.
func (b *IntegrationBroker) State(service string) domain.IntegrationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	if rec, ok := b.records[service]; ok {
		return rec.state
	}
	return domain.IntegrationState{Service: service, Status: domain.IntegrationDisconnected}
}

// States returns a copy of every known record.
func (b *IntegrationBroker) States() map[string]domain.IntegrationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]domain.IntegrationState, len(b.records))
	for service, rec := range b.records {
		out[service] = rec.state
	}
	return out
}

func (b *IntegrationBroker) recordLocked(service string) *integrationRecord {
	rec, ok := b.records[service]
	if !ok {
		rec = &integrationRecord{
			state: domain.IntegrationState{Service: service, Status: domain.IntegrationDisconnected},
		}
		b.records[service] = rec
	}
	return rec
}
