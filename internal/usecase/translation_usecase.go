package usecase

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Dan3dev/Church-management-system-sub001/internal/domain"
	"github.com/Dan3dev/Church-management-system-sub001/internal/infrastructure/metrics"
)

const fallbackLanguage = "en"

// locales maps a language code to its formatting locale.
var locales = map[string]string{
	"en": "en-US",
	"sw": "sw-KE",
	"fr": "fr-FR",
	"ar": "ar-EG",
}

const defaultLocale = "en-US"

// TranslationService resolves lookup keys to localized text with a
// deterministic fallback chain: requested language, then English, then
// the raw key. It never errors and never returns empty text.
type TranslationService struct {
	source  domain.TranslationSource
	bus     *EventBus
	metrics *metrics.CoreMetrics
	logger  *slog.Logger

	mu     sync.RWMutex
	tables map[string]map[string]string
}

func NewTranslationService(source domain.TranslationSource, bus *EventBus, m *metrics.CoreMetrics, logger *slog.Logger) *TranslationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TranslationService{
		source:  source,
		bus:     bus,
		metrics: m,
		logger:  logger,
		tables:  builtinTables(),
	}
}

// Resolve looks key up in lang's table, then the English table, then
// returns the key itself.
func (s *TranslationService) Resolve(key, lang string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if text := s.tables[lang][key]; text != "" {
		return text
	}
	if text := s.tables[fallbackLanguage][key]; text != "" {
		return text
	}
	return key
}

// LoadTranslations fetches the whole table for lang from the source
// and installs it atomically as a replacement. Calling it twice for
// the same language is safe: the last completed load wins; tables are
// never merged mid-load. An empty result keeps the current table so a
// misconfigured source cannot wipe the built-in defaults.
func (s *TranslationService) LoadTranslations(ctx context.Context, lang string) (map[string]string, error) {
	table, err := s.source.Load(ctx, lang)
	if err != nil {
		s.metrics.ObserveTranslationLoad(lang, "failure")
		return nil, err
	}
	if len(table) == 0 {
		s.logger.Warn("translation source returned no entries, keeping current table", "language", lang)
		s.metrics.ObserveTranslationLoad(lang, "empty")
		return s.Table(lang), nil
	}

	installed := make(map[string]string, len(table))
	for k, v := range table {
		installed[k] = v
	}

	s.mu.Lock()
	s.tables[lang] = installed
	s.mu.Unlock()

	s.metrics.ObserveTranslationLoad(lang, "success")
	if s.bus != nil {
		s.bus.Publish(domain.TranslationsLoaded{Language: lang, Keys: len(installed)})
	}
	return s.Table(lang), nil
}

// UpdateTranslations merges partial into lang's table key-wise. This
// is an overlay, not a replacement.
func (s *TranslationService) UpdateTranslations(lang string, partial map[string]string) {
	if len(partial) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	table := s.tables[lang]
	merged := make(map[string]string, len(table)+len(partial))
	for k, v := range table {
		merged[k] = v
	}
	for k, v := range partial {
		merged[k] = v
	}
	s.tables[lang] = merged
}

// Table returns a copy of lang's current table.
func (s *TranslationService) Table(lang string) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	table := s.tables[lang]
	out := make(map[string]string, len(table))
	for k, v := range table {
		out[k] = v
	}
	return out
}

// Completeness reports the percentage of English keys covered by lang.
func (s *TranslationService) Completeness(lang string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ref := s.tables[fallbackLanguage]
	if len(ref) == 0 {
		return 0
	}
	if lang == fallbackLanguage {
		return 100
	}
	table := s.tables[lang]
	covered := 0
	for k := range ref {
		if table[k] != "" {
			covered++
		}
	}
	return float64(covered) / float64(len(ref)) * 100
}

// LocaleFor resolves a language code to its formatting locale.
func (s *TranslationService) LocaleFor(lang string) string {
	if locale, ok := locales[lang]; ok {
		return locale
	}
	return defaultLocale
}

// StaticTranslationSource serves fixed in-memory tables. It backs
// tests and deployments without a translations database.
type StaticTranslationSource map[string]map[string]string

func (s StaticTranslationSource) Load(ctx context.Context, language string) (map[string]string, error) {
	table := s[language]
	out := make(map[string]string, len(table))
	for k, v := range table {
		out[k] = v
	}
	return out, nil
}

// builtinTables are the translations compiled into the binary. The
// English table is the completeness reference.
func builtinTables() map[string]map[string]string {
	return map[string]map[string]string{
		"en": {
			"app.title":                      "Church Administration",
			"common.save":                    "Save",
			"common.cancel":                  "Cancel",
			"common.delete":                  "Delete",
			"common.confirm":                 "Confirm",
			"nav.members":                    "Members",
			"nav.finance":                    "Finance",
			"nav.events":                     "Events",
			"nav.volunteers":                 "Volunteers",
			"nav.reports":                    "Reports",
			"nav.settings":                   "Settings",
			"settings.languageChanged":       "Language updated",
			"settings.languageChangeFailed":  "Could not change language",
			"settings.currencyChanged":       "Base currency updated",
			"settings.currencyChangeFailed":  "Could not change base currency",
			"settings.themeChanged":          "Theme updated",
			"rates.refreshed":                "Exchange rates refreshed",
			"rates.refreshFailed":            "Exchange rates could not be refreshed",
			"integrations.connected":         "Integration connected",
			"integrations.connectFailed":     "Integration could not be connected",
			"integrations.disconnected":      "Integration disconnected",
			"notifications.cleared":          "All notifications cleared",
		},
		"sw": {
			"app.title":                "Usimamizi wa Kanisa",
			"common.save":              "Hifadhi",
			"common.cancel":            "Ghairi",
			"common.delete":            "Futa",
			"nav.members":              "Washirika",
			"nav.finance":              "Fedha",
			"nav.events":               "Matukio",
			"nav.volunteers":           "Wajitolea",
			"nav.reports":              "Ripoti",
			"nav.settings":             "Mipangilio",
			"settings.languageChanged": "Lugha imebadilishwa",
			"settings.currencyChanged": "Sarafu kuu imebadilishwa",
			"rates.refreshed":          "Viwango vya kubadilisha fedha vimesasishwa",
		},
	}
}
