package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CoreMetrics covers the state core: rate refreshes, notifications,
// integration lifecycle and broadcast deliveries. All methods are
// nil-receiver safe so tests can run without a registry.
type CoreMetrics struct {
	RateRefreshTotal *prometheus.CounterVec

	NotificationsSentTotal    *prometheus.CounterVec
	NotificationsExpiredTotal prometheus.Counter
	NotificationQueueSize     prometheus.Gauge

	IntegrationConnectsTotal  *prometheus.CounterVec
	BroadcastDeliveriesTotal  *prometheus.CounterVec
	TranslationLoadsTotal     *prometheus.CounterVec
	DegradedConversionsTotal  prometheus.Counter
}

func NewCoreMetrics() *CoreMetrics {
	return NewCoreMetricsWith(prometheus.DefaultRegisterer)
}

func NewCoreMetricsWith(reg prometheus.Registerer) *CoreMetrics {
	factory := promauto.With(reg)
	return &CoreMetrics{
		RateRefreshTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_refresh_total",
				Help: "Exchange-rate refresh attempts by outcome",
			},
			[]string{"base", "outcome"},
		),
		NotificationsSentTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifications_sent_total",
				Help: "Notifications sent by type",
			},
			[]string{"type"},
		),
		NotificationsExpiredTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "notifications_expired_total",
				Help: "Notifications removed by the expiry timer",
			},
		),
		NotificationQueueSize: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "notification_queue_size",
				Help: "Current number of visible notifications",
			},
		),
		IntegrationConnectsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "integration_connects_total",
				Help: "Integration connect attempts by service and outcome",
			},
			[]string{"service", "outcome"},
		),
		BroadcastDeliveriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "broadcast_deliveries_total",
				Help: "Broadcast delivery attempts by service and outcome",
			},
			[]string{"service", "outcome"},
		),
		TranslationLoadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "translation_loads_total",
				Help: "Translation table loads by language and outcome",
			},
			[]string{"language", "outcome"},
		),
		DegradedConversionsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "degraded_conversions_total",
				Help: "Currency conversions that fell back to a missing rate of 1",
			},
		),
	}
}

func (m *CoreMetrics) ObserveRateRefresh(base, outcome string) {
	if m == nil {
		return
	}
	m.RateRefreshTotal.WithLabelValues(base, outcome).Inc()
}

func (m *CoreMetrics) ObserveNotificationSent(kind string) {
	if m == nil {
		return
	}
	m.NotificationsSentTotal.WithLabelValues(kind).Inc()
}

func (m *CoreMetrics) ObserveNotificationExpired() {
	if m == nil {
		return
	}
	m.NotificationsExpiredTotal.Inc()
}

func (m *CoreMetrics) SetQueueSize(n int) {
	if m == nil {
		return
	}
	m.NotificationQueueSize.Set(float64(n))
}

func (m *CoreMetrics) ObserveConnect(service, outcome string) {
	if m == nil {
		return
	}
	m.IntegrationConnectsTotal.WithLabelValues(service, outcome).Inc()
}

func (m *CoreMetrics) ObserveDelivery(service, outcome string) {
	if m == nil {
		return
	}
	m.BroadcastDeliveriesTotal.WithLabelValues(service, outcome).Inc()
}

func (m *CoreMetrics) ObserveTranslationLoad(language, outcome string) {
	if m == nil {
		return
	}
	m.TranslationLoadsTotal.WithLabelValues(language, outcome).Inc()
}

func (m *CoreMetrics) ObserveDegradedConversion() {
	if m == nil {
		return
	}
	m.DegradedConversionsTotal.Inc()
}
