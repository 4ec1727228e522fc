package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Dan3dev/Church-management-system-sub001/internal/domain"
	"github.com/Dan3dev/Church-management-system-sub001/internal/infrastructure/clock"
)

// StateStore owns the single authoritative AppState snapshot. All
// mutation goes through Dispatch; composite operations sequence an
// external call, a synchronous intent commit and an outcome
// notification. Consumers read the snapshot by value and must treat
// its maps and slices as immutable.
type StateStore struct {
	rates    *ExchangeRateService
	i18n     *TranslationService
	hub      *NotificationHub
	broker   *IntegrationBroker
	settings domain.SettingsRepository
	bus      *EventBus
	clock    clock.Clock
	logger   *slog.Logger

	mu    sync.RWMutex
	state domain.AppState

	lifecycle sync.Mutex
	stopCh    chan struct{}
	wg        sync.WaitGroup
	unsub     []func()
	closed    bool
}

func NewStateStore(
	initial domain.AppState,
	rates *ExchangeRateService,
	i18n *TranslationService,
	hub *NotificationHub,
	broker *IntegrationBroker,
	settings domain.SettingsRepository,
	bus *EventBus,
	clk clock.Clock,
	logger *slog.Logger,
) *StateStore {
	if logger == nil {
		logger = slog.Default()
	}
	s := &StateStore{
		rates:    rates,
		i18n:     i18n,
		hub:      hub,
		broker:   broker,
		settings: settings,
		bus:      bus,
		clock:    clk,
		logger:   logger,
		state:    initial,
		stopCh:   make(chan struct{}),
	}

	hub.Bind(s)
	hub.SetFanOut(s.fanOut)

	// Mirror broker lifecycle changes into the snapshot so UI readers
	// see integrations without holding a broker reference.
	s.unsub = append(s.unsub, bus.Subscribe(func(event domain.Event) {
		if changed, ok := event.(domain.IntegrationChanged); ok {
			if changed.State.Status == domain.IntegrationDisconnected {
				s.Dispatch(domain.ClearIntegration{Service: changed.State.Service})
				return
			}
			s.Dispatch(domain.SetIntegration{State: changed.State})
		}
	}))

	return s
}

// Dispatch commits one intent. The new snapshot is fully built before
// the swap, so readers never observe a partial write.
func (s *StateStore) Dispatch(intent domain.Intent) domain.AppState {
	s.mu.Lock()
	next := intent.Apply(s.state)
	s.state = next
	s.mu.Unlock()
	return next
}

// Snapshot returns the current committed state.
func (s *StateStore) Snapshot() domain.AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// T resolves a translation key in the current language.
func (s *StateStore) T(key string) string {
	return s.i18n.Resolve(key, s.Snapshot().Language)
}

// FormatCurrency renders amount in the given currency, defaulting to
// the base currency, using the current language's locale.
func (s *StateStore) FormatCurrency(amount float64, code string) string {
	st := s.Snapshot()
	if code == "" {
		code = st.BaseCurrency
	}
	return s.rates.Format(amount, code, s.i18n.LocaleFor(st.Language))
}

// ConvertCurrency converts using the committed rate map.
func (s *StateStore) ConvertCurrency(amount float64, from, to string) float64 {
	return s.rates.Convert(amount, from, to, s.Snapshot().ExchangeRates)
}

// ChangeLanguage loads the language's translation table, then commits
// the switch. The outcome is reported as a notification either way.
func (s *StateStore) ChangeLanguage(ctx context.Context, code string) error {
	if !s.knownLanguage(code) {
		s.notifyError("settings.languageChangeFailed", fmt.Sprintf("unknown language %q", code))
		return domain.ErrUnknownLanguage
	}

	table, err := s.i18n.LoadTranslations(ctx, code)
	if err != nil {
		s.notifyWarning("settings.languageChangeFailed", err.Error())
		return fmt.Errorf("change language to %s: %w", code, err)
	}

	s.Dispatch(domain.UpdateTranslations{Language: code, Partial: table})
	s.Dispatch(domain.SetLanguage{Code: code})
	s.Dispatch(domain.SetLanguageCompleteness{Code: code, Completeness: s.i18n.Completeness(code)})
	s.persistSetting(domain.SettingLanguage, code)

	s.bus.Publish(domain.LanguageChanged{Code: code})
	s.notifySuccess("settings.languageChanged", s.i18n.Resolve("settings.languageChanged", code))
	return nil
}

// ChangeCurrency fetches rates re-based onto the new currency, then
// commits the switch. On fetch failure the previous base and rates are
// retained and a warning notice is issued.
func (s *StateStore) ChangeCurrency(ctx context.Context, code string) error {
	if !s.knownCurrency(code) {
		s.notifyError("settings.currencyChangeFailed", fmt.Sprintf("unknown currency %q", code))
		return domain.ErrUnknownCurrency
	}

	fetched, err := s.rates.FetchRates(ctx, code)
	if err != nil {
		s.notifyWarning("settings.currencyChangeFailed", err.Error())
		return fmt.Errorf("change currency to %s: %w", code, err)
	}

	s.Dispatch(domain.SetCurrency{Code: code, Rates: fetched, At: s.clock.Now()})
	s.persistSetting(domain.SettingBaseCurrency, code)

	s.bus.Publish(domain.CurrencyChanged{Code: code})
	s.notifySuccess("settings.currencyChanged", fmt.Sprintf("%s %s", s.T("settings.currencyChanged"), code))
	return nil
}

// RefreshRates re-fetches rates for the base currency current at call
// time. Failures stay inside the refresh boundary: the last-known-good
// map is retained and a low-priority warning notice is issued.
func (s *StateStore) RefreshRates(ctx context.Context) error {
	base := s.Snapshot().BaseCurrency
	fetched, err := s.rates.FetchRates(ctx, base)
	if err != nil {
		s.hub.Send(domain.Notification{
			Type:     domain.NotificationWarning,
			Title:    s.T("rates.refreshFailed"),
			Message:  err.Error(),
			Priority: domain.PriorityLow,
			Category: "rates",
		})
		return fmt.Errorf("refresh rates for %s: %w", base, err)
	}
	s.Dispatch(domain.UpdateRates{Rates: fetched, At: s.clock.Now()})
	return nil
}

// ConnectIntegration runs the broker handshake and reports the outcome
// as a notification. Snapshot mirroring rides the integration events.
func (s *StateStore) ConnectIntegration(ctx context.Context, service string, cfg domain.IntegrationConfig) (domain.IntegrationState, error) {
	st, err := s.broker.Connect(ctx, service, cfg)
	if err != nil {
		s.notifyError("integrations.connectFailed", fmt.Sprintf("%s: %v", service, err))
		return st, err
	}
	s.notifySuccess("integrations.connected", fmt.Sprintf("%s %s", s.T("integrations.connected"), service))
	return st, nil
}

// DisconnectIntegration is total: it never fails and is a no-op when
// already disconnected.
func (s *StateStore) DisconnectIntegration(service string) domain.IntegrationState {
	st, changed := s.broker.Disconnect(service)
	if changed {
		s.hub.Send(domain.Notification{
			Type:     domain.NotificationInfo,
			Title:    s.T("integrations.disconnected"),
			Message:  service,
			Priority: domain.PriorityLow,
			Category: "integrations",
		})
	}
	return st
}

// TestIntegration probes a connected service. A failed probe reports
// the error without altering the connection state.
func (s *StateStore) TestIntegration(ctx context.Context, service string) error {
	return s.broker.TestConnection(ctx, service)
}

// SendNotification commits the notice through the hub; fan-out to
// connected channels happens off the commit path.
func (s *StateStore) SendNotification(n domain.Notification) int64 {
	return s.hub.Send(n)
}

func (s *StateStore) DismissNotification(id int64) { s.hub.Dismiss(id) }

func (s *StateStore) MarkNotificationRead(id int64) { s.hub.MarkRead(id) }

func (s *StateStore) ClearNotifications() { s.hub.ClearAll() }

// SetTheme persists and commits the UI theme.
func (s *StateStore) SetTheme(theme string) error {
	switch theme {
	case domain.ThemeLight, domain.ThemeDark, domain.ThemeSystem:
	default:
		return &domain.ValidationError{Field: "theme", Reason: fmt.Sprintf("unsupported theme %q", theme)}
	}
	s.Dispatch(domain.SetTheme{Theme: theme})
	s.persistSetting(domain.SettingTheme, theme)
	s.bus.Publish(domain.ThemeChanged{Theme: theme})
	return nil
}

func (s *StateStore) SetOnlineStatus(online bool) {
	s.Dispatch(domain.SetOnlineStatus{Online: online})
	s.bus.Publish(domain.OnlineStatusChanged{Online: online})
}

// StartRateRefresh launches the periodic refresh loop. Each fire uses
// the base currency current at that moment, not the one at start time.
func (s *StateStore) StartRateRefresh(interval time.Duration) {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	if s.closed {
		return
	}

	ticker := s.clock.NewTicker(interval)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-s.stopCh:
				return
			case <-ticker.C():
				if err := s.RefreshRates(context.Background()); err != nil {
					s.logger.Warn("periodic rate refresh failed", "error", err)
				}
			}
		}
	}()
}

// Close tears down the refresh loop and every pending notification
// timer as a unit. Idempotent.
func (s *StateStore) Close() {
	s.lifecycle.Lock()
	if s.closed {
		s.lifecycle.Unlock()
		return
	}
	s.closed = true
	close(s.stopCh)
	s.lifecycle.Unlock()

	s.wg.Wait()
	s.hub.Close()
	for _, unsub := range s.unsub {
		unsub()
	}
}

func (s *StateStore) fanOut(n domain.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	severity := "info"
	switch n.Type {
	case domain.NotificationError:
		severity = "error"
	case domain.NotificationWarning:
		severity = "warning"
	}
	if err := s.broker.Broadcast(ctx, n.Message, n.Title, severity); err != nil && err != domain.ErrNoChannels {
		s.logger.Warn("notification fan-out failed", "notification_id", n.ID, "error", err)
	}
}

func (s *StateStore) notifySuccess(key, message string) {
	s.hub.Send(domain.Notification{
		Type:     domain.NotificationSuccess,
		Title:    s.T(key),
		Message:  message,
		Priority: domain.PriorityLow,
		Category: "settings",
	})
}

func (s *StateStore) notifyWarning(key, message string) {
	s.hub.Send(domain.Notification{
		Type:     domain.NotificationWarning,
		Title:    s.T(key),
		Message:  message,
		Priority: domain.PriorityMedium,
		Category: "settings",
	})
}

func (s *StateStore) notifyError(key, message string) {
	s.hub.Send(domain.Notification{
		Type:     domain.NotificationError,
		Title:    s.T(key),
		Message:  message,
		Priority: domain.PriorityHigh,
		Category: "settings",
	})
}

func (s *StateStore) knownLanguage(code string) bool {
	for _, lang := range s.Snapshot().Languages {
		if lang.Code == code && lang.IsActive {
			return true
		}
	}
	return false
}

func (s *StateStore) knownCurrency(code string) bool {
	for _, c := range s.Snapshot().Currencies {
		if c.Code == code {
			return true
		}
	}
	return false
}

func (s *StateStore) persistSetting(key, value string) {
	if s.settings == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.settings.Set(ctx, key, value); err != nil {
		s.logger.Warn("failed to persist setting", "key", key, "error", err)
	}
}
