package usecase

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Dan3dev/Church-management-system-sub001/internal/domain"
	"github.com/Dan3dev/Church-management-system-sub001/internal/infrastructure/clock"
	"github.com/Dan3dev/Church-management-system-sub001/internal/infrastructure/metrics"
)

// DefaultNotificationTTL is how long a non-reminder notice stays
// visible before the expiry timer removes it.
const DefaultNotificationTTL = 5 * time.Second

// stateAccess is the slice of the state store the hub needs: intent
// commits and snapshot reads. Bound after construction because the
// store itself owns the hub.
type stateAccess interface {
	Dispatch(intent domain.Intent) domain.AppState
	Snapshot() domain.AppState
}

// NotificationHub assigns notification ids, commits queue changes
// through intents and owns all expiry timers. Queue commits are
// synchronous; external fan-out runs on its own goroutine and can
// never block or fail a send.
type NotificationHub struct {
	clock   clock.Clock
	bus     *EventBus
	metrics *metrics.CoreMetrics
	logger  *slog.Logger
	ttl     time.Duration

	mu     sync.Mutex
	seq    int64
	timers map[int64]clock.Timer
	store  stateAccess
	fanOut func(n domain.Notification)
	closed bool
}

type HubOption func(*NotificationHub)

func WithNotificationTTL(ttl time.Duration) HubOption {
	return func(h *NotificationHub) { h.ttl = ttl }
}

func NewNotificationHub(clk clock.Clock, bus *EventBus, m *metrics.CoreMetrics, logger *slog.Logger, opts ...HubOption) *NotificationHub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &NotificationHub{
		clock:   clk,
		bus:     bus,
		metrics: m,
		logger:  logger,
		ttl:     DefaultNotificationTTL,
		timers:  map[int64]clock.Timer{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Bind attaches the state store. Must be called before the first Send.
func (h *NotificationHub) Bind(store stateAccess) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.store = store
}

// SetFanOut installs the external broadcast hook. The hub invokes it
// on a fresh goroutine after the queue commit.
func (h *NotificationHub) SetFanOut(fn func(n domain.Notification)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fanOut = fn
}

// Send assigns the next id, prepends the notice to the queue and
// schedules auto-removal unless the notice is a reminder. The commit
// is synchronous; ids are strictly increasing in insertion order.
func (h *NotificationHub) Send(n domain.Notification) int64 {
	if n.Type == "" {
		n.Type = domain.NotificationInfo
	}
	if n.Priority == "" {
		n.Priority = domain.PriorityMedium
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return 0
	}
	h.seq++
	n.ID = h.seq
	n.CreatedAt = h.clock.Now()

	next := h.store.Dispatch(domain.AddNotification{Notification: n})

	if n.Type != domain.NotificationReminder {
		id := n.ID
		h.timers[id] = h.clock.AfterFunc(h.ttl, func() {
			h.expire(id)
		})
	}
	fanOut := h.fanOut
	h.mu.Unlock()

	h.metrics.ObserveNotificationSent(string(n.Type))
	h.metrics.SetQueueSize(len(next.Notifications))
	if h.bus != nil {
		h.bus.Publish(domain.NotificationAdded{Notification: n})
	}
	if fanOut != nil {
		go fanOut(n)
	}
	return n.ID
}

func (h *NotificationHub) expire(id int64) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	delete(h.timers, id)
	next := h.store.Dispatch(domain.RemoveNotification{ID: id})
	h.mu.Unlock()

	h.metrics.ObserveNotificationExpired()
	h.metrics.SetQueueSize(len(next.Notifications))
	if h.bus != nil {
		h.bus.Publish(domain.NotificationRemoved{ID: id, Expired: true})
	}
}

// Dismiss removes a notice immediately. Unknown ids are a no-op.
func (h *NotificationHub) Dismiss(id int64) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	present := false
	for _, n := range h.store.Snapshot().Notifications {
		if n.ID == id {
			present = true
			break
		}
	}
	if !present {
		h.mu.Unlock()
		return
	}
	if t, ok := h.timers[id]; ok {
		t.Stop()
		delete(h.timers, id)
	}
	next := h.store.Dispatch(domain.RemoveNotification{ID: id})
	h.mu.Unlock()

	h.metrics.SetQueueSize(len(next.Notifications))
	if h.bus != nil {
		h.bus.Publish(domain.NotificationRemoved{ID: id})
	}
}

// MarkRead toggles the read flag without touching the expiry timer.
func (h *NotificationHub) MarkRead(id int64) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.store.Dispatch(domain.MarkNotificationRead{ID: id})
	h.mu.Unlock()
}

// ClearAll empties the queue and cancels every pending expiry timer.
func (h *NotificationHub) ClearAll() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.stopTimersLocked()
	h.store.Dispatch(domain.ClearNotifications{})
	h.mu.Unlock()

	h.metrics.SetQueueSize(0)
	if h.bus != nil {
		h.bus.Publish(domain.NotificationsCleared{})
	}
}

// Close cancels all timers and rejects further sends. Idempotent.
func (h *NotificationHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	h.stopTimersLocked()
}

func (h *NotificationHub) stopTimersLocked() {
	for id, t := range h.timers {
		t.Stop()
		delete(h.timers, id)
	}
}
