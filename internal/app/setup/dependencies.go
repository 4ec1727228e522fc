// Package setup composes the state core. Every collaborator is
// constructed explicitly and passed down by reference; nothing is a
// process-wide singleton.
package setup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/Dan3dev/Church-management-system-sub001/internal/config"
	"github.com/Dan3dev/Church-management-system-sub001/internal/domain"
	"github.com/Dan3dev/Church-management-system-sub001/internal/infrastructure/clock"
	"github.com/Dan3dev/Church-management-system-sub001/internal/infrastructure/kafka"
	"github.com/Dan3dev/Church-management-system-sub001/internal/infrastructure/metrics"
	"github.com/Dan3dev/Church-management-system-sub001/internal/infrastructure/oauth"
	"github.com/Dan3dev/Church-management-system-sub001/internal/infrastructure/postgres/repository"
	"github.com/Dan3dev/Church-management-system-sub001/internal/infrastructure/rates"
	"github.com/Dan3dev/Church-management-system-sub001/internal/infrastructure/webhook"
	"github.com/Dan3dev/Church-management-system-sub001/internal/usecase"
)

// Core bundles the composed state core and its teardown.
type Core struct {
	Store  *usecase.StateStore
	Hub    *usecase.NotificationHub
	Broker *usecase.IntegrationBroker
	Rates  *usecase.ExchangeRateService
	I18n   *usecase.TranslationService
	Bus    *usecase.EventBus

	eventPub domain.EventPublisher
	unsub    func()
}

// NewCore wires the core from config. db may be nil; settings and
// translations then stay in memory only.
func NewCore(cfg *config.AppConfig, db *gorm.DB, logger *slog.Logger) *Core {
	if logger == nil {
		logger = slog.Default()
	}

	clk := clock.New()
	bus := usecase.NewEventBus()
	coreMetrics := metrics.NewCoreMetrics()

	var settingsRepo domain.SettingsRepository
	var translationSource domain.TranslationSource
	if db != nil {
		settingsRepo = repository.NewSettingsRepository(db)
		translationSource = repository.NewTranslationRepository(db)
	} else {
		translationSource = usecase.StaticTranslationSource{}
	}

	rateSource := rates.NewHTTPSource(cfg.RateSource.Endpoint,
		rates.WithTimeout(cfg.RateSource.Timeout),
		rates.WithRetries(cfg.RateSource.Retries),
	)
	gateway := webhook.NewGateway(cfg.Webhook.Timeout)
	authProvider := oauth.NewStaticProvider()

	rateService := usecase.NewExchangeRateService(rateSource, bus, coreMetrics, clk, logger)
	i18nService := usecase.NewTranslationService(translationSource, bus, coreMetrics, logger)
	hub := usecase.NewNotificationHub(clk, bus, coreMetrics, logger)
	broker := usecase.NewIntegrationBroker(gateway, authProvider, bus, coreMetrics, clk, logger)

	initial := initialState(cfg, settingsRepo, logger)
	store := usecase.NewStateStore(initial, rateService, i18nService, hub, broker, settingsRepo, bus, clk, logger)

	core := &Core{
		Store:  store,
		Hub:    hub,
		Broker: broker,
		Rates:  rateService,
		I18n:   i18nService,
		Bus:    bus,
	}

	if cfg.Kafka.Enabled {
		brokers := []string{fmt.Sprintf("%s:%s", cfg.Kafka.Host, cfg.Kafka.Port)}
		publisher := kafka.NewStateEventPublisher(brokers, cfg.Kafka.Topic)
		core.eventPub = publisher
		core.unsub = bus.Subscribe(func(event domain.Event) {
			// Off the commit path: the bus must never block on I/O.
			go func() {
				if err := publisher.PublishEvent(context.Background(), event); err != nil {
					logger.Warn("failed to publish state event", "kind", event.Kind(), "error", err)
				}
			}()
		})
	}

	store.StartRateRefresh(cfg.RateSource.RefreshInterval)
	return core
}

// Close tears down timers, the refresh loop and the event publisher.
func (c *Core) Close() {
	c.Store.Close()
	if c.unsub != nil {
		c.unsub()
	}
	if c.eventPub != nil {
		if err := c.eventPub.Close(); err != nil {
			slog.Warn("failed to close event publisher", "error", err)
		}
	}
}

// initialState reads persisted settings and falls back to config
// defaults for anything missing.
func initialState(cfg *config.AppConfig, settings domain.SettingsRepository, logger *slog.Logger) domain.AppState {
	language := cfg.Defaults.Language
	baseCurrency := cfg.Defaults.BaseCurrency
	theme := cfg.Defaults.Theme

	if settings != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		for key, target := range map[string]*string{
			domain.SettingLanguage:     &language,
			domain.SettingBaseCurrency: &baseCurrency,
			domain.SettingTheme:        &theme,
		} {
			value, err := settings.Get(ctx, key)
			switch {
			case err == nil && value != "":
				*target = value
			case errors.Is(err, domain.ErrSettingNotFound):
			case err != nil:
				logger.Warn("failed to read setting", "key", key, "error", err)
			}
		}
	}

	return domain.NewAppState(language, baseCurrency, theme)
}
