package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan3dev/Church-management-system-sub001/internal/domain"
	"github.com/Dan3dev/Church-management-system-sub001/internal/infrastructure/clock"
)

type testEnv struct {
	store    *StateStore
	source   *stubRateSource
	gateway  *fakeGateway
	auth     *fakeAuth
	settings *memSettings
	clk      *clock.Fake
	bus      *EventBus
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clk := clock.NewFake()
	bus := NewEventBus()
	m := testMetrics()
	logger := testLogger()

	source := newStubRateSource(domain.Rates{"USD": 1, "KES": 150, "EUR": 0.9, "NGN": 1600})
	gateway := newFakeGateway()
	auth := newFakeAuth()
	settings := newMemSettings()

	translations := StaticTranslationSource{
		"sw": {
			"common.save":              "Hifadhi",
			"settings.languageChanged": "Lugha imebadilishwa",
		},
	}

	rates := NewExchangeRateService(source, bus, m, clk, logger)
	i18n := NewTranslationService(translations, bus, m, logger)
	hub := NewNotificationHub(clk, bus, m, logger)
	broker := NewIntegrationBroker(gateway, auth, bus, m, clk, logger)

	store := NewStateStore(
		domain.NewAppState("en", "USD", domain.ThemeSystem),
		rates, i18n, hub, broker, settings, bus, clk, logger,
	)
	t.Cleanup(store.Close)

	return &testEnv{
		store:    store,
		source:   source,
		gateway:  gateway,
		auth:     auth,
		settings: settings,
		clk:      clk,
		bus:      bus,
	}
}

func (e *testEnv) notificationsOfType(kind domain.NotificationType) []domain.Notification {
	var out []domain.Notification
	for _, n := range e.store.Snapshot().Notifications {
		if n.Type == kind {
			out = append(out, n)
		}
	}
	return out
}

func TestChangeCurrency(t *testing.T) {
	env := newTestEnv(t)

	err := env.store.ChangeCurrency(context.Background(), "KES")
	require.NoError(t, err)

	st := env.store.Snapshot()
	assert.Equal(t, "KES", st.BaseCurrency)
	assert.Equal(t, 1.0, st.ExchangeRates["KES"])
	assert.InDelta(t, 1.0/150.0, st.ExchangeRates["USD"], 1e-12)

	baseCount := 0
	for _, c := range st.Currencies {
		if c.IsBaseCurrency {
			baseCount++
			assert.Equal(t, "KES", c.Code)
		}
	}
	assert.Equal(t, 1, baseCount)

	persisted, err := env.settings.Get(context.Background(), domain.SettingBaseCurrency)
	require.NoError(t, err)
	assert.Equal(t, "KES", persisted)

	assert.NotEmpty(t, env.notificationsOfType(domain.NotificationSuccess))
}

func TestChangeCurrencyUnknownCode(t *testing.T) {
	env := newTestEnv(t)

	err := env.store.ChangeCurrency(context.Background(), "XXX")
	assert.ErrorIs(t, err, domain.ErrUnknownCurrency)

	assert.Equal(t, "USD", env.store.Snapshot().BaseCurrency)
	assert.NotEmpty(t, env.notificationsOfType(domain.NotificationError))
}

func TestChangeCurrencyFetchFailureKeepsPreviousBase(t *testing.T) {
	env := newTestEnv(t)
	env.source.setErr(errors.New("upstream down"))

	err := env.store.ChangeCurrency(context.Background(), "KES")
	require.Error(t, err)

	st := env.store.Snapshot()
	assert.Equal(t, "USD", st.BaseCurrency)
	assert.Equal(t, 1.0, st.ExchangeRates["USD"])
	assert.NotEmpty(t, env.notificationsOfType(domain.NotificationWarning))
}

func TestChangeLanguage(t *testing.T) {
	env := newTestEnv(t)

	err := env.store.ChangeLanguage(context.Background(), "sw")
	require.NoError(t, err)

	st := env.store.Snapshot()
	assert.Equal(t, "sw", st.Language)
	assert.Equal(t, "Hifadhi", env.store.T("common.save"))
	assert.Equal(t, "Hifadhi", st.Translations["sw"]["common.save"])

	persisted, err := env.settings.Get(context.Background(), domain.SettingLanguage)
	require.NoError(t, err)
	assert.Equal(t, "sw", persisted)

	for _, lang := range st.Languages {
		if lang.Code == "sw" {
			assert.Greater(t, lang.Completeness, 0.0)
		}
	}
}

func TestChangeLanguageUnknownCode(t *testing.T) {
	env := newTestEnv(t)

	err := env.store.ChangeLanguage(context.Background(), "zz")
	assert.ErrorIs(t, err, domain.ErrUnknownLanguage)
	assert.Equal(t, "en", env.store.Snapshot().Language)
}

func TestRefreshRatesFailureRetainsRates(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.store.RefreshRates(context.Background()))
	before := env.store.Snapshot().ExchangeRates

	env.source.setErr(errors.New("upstream down"))
	err := env.store.RefreshRates(context.Background())
	require.Error(t, err)

	assert.Equal(t, before, env.store.Snapshot().ExchangeRates)

	warnings := env.notificationsOfType(domain.NotificationWarning)
	require.NotEmpty(t, warnings)
	assert.Equal(t, domain.PriorityLow, warnings[0].Priority)
}

func TestPeriodicRefreshUsesCurrentBase(t *testing.T) {
	env := newTestEnv(t)

	env.store.StartRateRefresh(time.Minute)

	require.NoError(t, env.store.ChangeCurrency(context.Background(), "KES"))
	for len(env.source.fetched) > 0 {
		<-env.source.fetched
	}

	env.clk.Advance(time.Minute)

	select {
	case base := <-env.source.fetched:
		assert.Equal(t, "KES", base)
	case <-time.After(2 * time.Second):
		t.Fatal("periodic refresh did not fire")
	}
}

func TestConnectIntegrationMirroredIntoSnapshot(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.store.ConnectIntegration(context.Background(), "slack", domain.IntegrationConfig{WebhookURL: slackURL})
	require.NoError(t, err)

	st := env.store.Snapshot()
	require.Contains(t, st.Integrations, "slack")
	assert.Equal(t, domain.IntegrationConnected, st.Integrations["slack"].Status)

	env.store.DisconnectIntegration("slack")
	assert.NotContains(t, env.store.Snapshot().Integrations, "slack")
}

func TestConnectIntegrationValidationFailure(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.store.ConnectIntegration(context.Background(), "slack", domain.IntegrationConfig{
		WebhookURL: "http://hooks.slack.com/services/T/B/X",
	})
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))

	assert.NotContains(t, env.store.Snapshot().Integrations, "slack")
	assert.NotEmpty(t, env.notificationsOfType(domain.NotificationError))
}

func TestSetTheme(t *testing.T) {
	env := newTestEnv(t)

	err := env.store.SetTheme("neon")
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))

	require.NoError(t, env.store.SetTheme(domain.ThemeDark))
	assert.Equal(t, domain.ThemeDark, env.store.Snapshot().Theme)

	persisted, err := env.settings.Get(context.Background(), domain.SettingTheme)
	require.NoError(t, err)
	assert.Equal(t, domain.ThemeDark, persisted)
}

func TestSetOnlineStatus(t *testing.T) {
	env := newTestEnv(t)

	env.store.SetOnlineStatus(false)
	assert.False(t, env.store.Snapshot().Online)

	env.store.SetOnlineStatus(true)
	assert.True(t, env.store.Snapshot().Online)
}

func TestFormatCurrencyDefaultsToBase(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.store.ChangeCurrency(context.Background(), "KES"))

	assert.Equal(t, "KSh 1,500.00", env.store.FormatCurrency(1500, ""))
	assert.Equal(t, "$10.00", env.store.FormatCurrency(10, "USD"))
}

func TestConvertCurrencyUsesCommittedRates(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.store.RefreshRates(context.Background()))

	kes := env.store.ConvertCurrency(10, "USD", "KES")
	assert.InDelta(t, 1500, kes, 1e-9)
	assert.InDelta(t, 10, env.store.ConvertCurrency(kes, "KES", "USD"), 1e-9)
}

func TestDispatchSnapshotIsolation(t *testing.T) {
	env := newTestEnv(t)

	before := env.store.Snapshot()
	env.store.Dispatch(domain.SetOnlineStatus{Online: false})

	assert.True(t, before.Online)
	assert.False(t, env.store.Snapshot().Online)
}

func TestCloseIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	env.store.StartRateRefresh(time.Minute)

	env.store.Close()
	env.store.Close()

	// Sends after close are rejected by the hub.
	id := env.store.SendNotification(domain.Notification{Title: "late"})
	assert.Zero(t, id)
}
