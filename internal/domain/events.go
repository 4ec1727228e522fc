package domain

import "time"

// Event is the tagged union carried by the in-process bus. Every
// committed state change is announced exactly once; consumers subscribe
// once and switch on the concrete type.
type Event interface {
	Kind() string
}

type RatesUpdated struct {
	Base  string
	Rates Rates
	At    time.Time
}

func (RatesUpdated) Kind() string { return "rates.updated" }

type LanguageChanged struct {
	Code string
}

func (LanguageChanged) Kind() string { return "language.changed" }

type CurrencyChanged struct {
	Code string
}

func (CurrencyChanged) Kind() string { return "currency.changed" }

type NotificationAdded struct {
	Notification Notification
}

func (NotificationAdded) Kind() string { return "notification.added" }

type NotificationRemoved struct {
	ID int64

	// Expired is true when the removal came from the expiry timer
	// rather than an explicit dismissal.
	Expired bool
}

func (NotificationRemoved) Kind() string { return "notification.removed" }

type NotificationsCleared struct{}

func (NotificationsCleared) Kind() string { return "notification.cleared" }

type IntegrationChanged struct {
	State IntegrationState
}

func (IntegrationChanged) Kind() string { return "integration.changed" }

type TranslationsLoaded struct {
	Language string
	Keys     int
}

func (TranslationsLoaded) Kind() string { return "translations.loaded" }

type ThemeChanged struct {
	Theme string
}

func (ThemeChanged) Kind() string { return "theme.changed" }

type OnlineStatusChanged struct {
	Online bool
}

func (OnlineStatusChanged) Kind() string { return "online.changed" }
