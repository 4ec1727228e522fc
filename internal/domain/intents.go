package domain

import "time"

// Intent is a named pure transform over the application snapshot.
// Apply must not mutate old; it returns a fresh snapshot sharing only
// data that neither side will ever write to again.
type Intent interface {
	Apply(old AppState) AppState
}

// Dispatcher commits intents against the authoritative snapshot.
type Dispatcher interface {
	Dispatch(intent Intent) AppState
}

type SetLanguage struct {
	Code string
}

func (in SetLanguage) Apply(old AppState) AppState {
	next := old
	next.Language = in.Code
	return next
}

// SetCurrency switches the base currency and installs the freshly
// re-based rate map. Exactly one currency keeps IsBaseCurrency and its
// rate is pinned to 1.
type SetCurrency struct {
	Code  string
	Rates Rates
	At    time.Time
}

func (in SetCurrency) Apply(old AppState) AppState {
	next := old
	next.BaseCurrency = in.Code
	rates := in.Rates.Clone()
	rates[in.Code] = 1
	next.ExchangeRates = rates
	next.Currencies = cloneCurrencies(old.Currencies)
	for i := range next.Currencies {
		c := &next.Currencies[i]
		c.IsBaseCurrency = c.Code == in.Code
		if rate, ok := rates[c.Code]; ok {
			c.ExchangeRate = rate
			c.LastUpdated = in.At
		}
	}
	return next
}

// UpdateRates installs a refreshed rate map for the current base
// without changing which currency is base.
type UpdateRates struct {
	Rates Rates
	At    time.Time
}

func (in UpdateRates) Apply(old AppState) AppState {
	next := old
	rates := in.Rates.Clone()
	rates[old.BaseCurrency] = 1
	next.ExchangeRates = rates
	next.Currencies = cloneCurrencies(old.Currencies)
	for i := range next.Currencies {
		c := &next.Currencies[i]
		if rate, ok := rates[c.Code]; ok {
			c.ExchangeRate = rate
			c.LastUpdated = in.At
		}
	}
	return next
}

// AddNotification prepends; the queue is newest first.
type AddNotification struct {
	Notification Notification
}

func (in AddNotification) Apply(old AppState) AppState {
	next := old
	queue := make([]Notification, 0, len(old.Notifications)+1)
	queue = append(queue, in.Notification)
	queue = append(queue, old.Notifications...)
	next.Notifications = queue
	return next
}

type RemoveNotification struct {
	ID int64
}

func (in RemoveNotification) Apply(old AppState) AppState {
	next := old
	queue := make([]Notification, 0, len(old.Notifications))
	for _, n := range old.Notifications {
		if n.ID != in.ID {
			queue = append(queue, n)
		}
	}
	next.Notifications = queue
	return next
}

type MarkNotificationRead struct {
	ID int64
}

func (in MarkNotificationRead) Apply(old AppState) AppState {
	next := old
	next.Notifications = cloneNotifications(old.Notifications)
	for i := range next.Notifications {
		if next.Notifications[i].ID == in.ID {
			next.Notifications[i].Read = true
		}
	}
	return next
}

type ClearNotifications struct{}

func (ClearNotifications) Apply(old AppState) AppState {
	next := old
	next.Notifications = nil
	return next
}

type SetIntegration struct {
	State IntegrationState
}

func (in SetIntegration) Apply(old AppState) AppState {
	next := old
	next.Integrations = cloneIntegrations(old.Integrations)
	next.Integrations[in.State.Service] = in.State
	return next
}

type ClearIntegration struct {
	Service string
}

func (in ClearIntegration) Apply(old AppState) AppState {
	next := old
	next.Integrations = cloneIntegrations(old.Integrations)
	delete(next.Integrations, in.Service)
	return next
}

// UpdateTranslations overlays partial onto the language's table,
// key-wise. A whole-table load passes the full table; the result is
// the same because the overlay wins on every key.
type UpdateTranslations struct {
	Language string
	Partial  map[string]string
}

func (in UpdateTranslations) Apply(old AppState) AppState {
	next := old
	next.Translations = cloneTranslations(old.Translations)
	table := next.Translations[in.Language]
	if table == nil {
		table = make(map[string]string, len(in.Partial))
	}
	for k, v := range in.Partial {
		table[k] = v
	}
	next.Translations[in.Language] = table
	return next
}

// SetLanguageCompleteness updates the catalogue after a recompute.
type SetLanguageCompleteness struct {
	Code         string
	Completeness float64
}

func (in SetLanguageCompleteness) Apply(old AppState) AppState {
	next := old
	next.Languages = cloneLanguages(old.Languages)
	for i := range next.Languages {
		if next.Languages[i].Code == in.Code {
			next.Languages[i].Completeness = in.Completeness
		}
	}
	return next
}

type SetTheme struct {
	Theme string
}

func (in SetTheme) Apply(old AppState) AppState {
	next := old
	next.Theme = in.Theme
	return next
}

type SetOnlineStatus struct {
	Online bool
}

func (in SetOnlineStatus) Apply(old AppState) AppState {
	next := old
	next.Online = in.Online
	return next
}
