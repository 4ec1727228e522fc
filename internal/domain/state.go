package domain

// Theme values accepted by the settings layer.
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// AppState is the single authoritative application snapshot. It is
// owned by the state store and mutated only through intents; every
// intent produces a fresh value and never writes into maps or slices
// shared with a previously-committed snapshot.
type AppState struct {
	Language     string
	BaseCurrency string
	Theme        string
	Online       bool

	Currencies    []Currency
	ExchangeRates Rates
	Notifications []Notification // newest first
	Integrations  map[string]IntegrationState
	Translations  map[string]map[string]string
	Languages     []Language
}

// NewAppState builds the startup snapshot from persisted settings,
// falling back to the given defaults.
func NewAppState(language, baseCurrency, theme string) AppState {
	if language == "" {
		language = "en"
	}
	if baseCurrency == "" {
		baseCurrency = "USD"
	}
	if theme == "" {
		theme = ThemeSystem
	}
	st := AppState{
		Language:      language,
		BaseCurrency:  baseCurrency,
		Theme:         theme,
		Online:        true,
		Currencies:    DefaultCurrencies(),
		ExchangeRates: Rates{baseCurrency: 1},
		Integrations:  map[string]IntegrationState{},
		Translations:  map[string]map[string]string{},
		Languages:     DefaultLanguages(),
	}
	for i := range st.Currencies {
		st.Currencies[i].IsBaseCurrency = st.Currencies[i].Code == baseCurrency
		if st.Currencies[i].IsBaseCurrency {
			st.Currencies[i].ExchangeRate = 1
		}
	}
	return st
}

func cloneCurrencies(in []Currency) []Currency {
	out := make([]Currency, len(in))
	copy(out, in)
	return out
}

func cloneNotifications(in []Notification) []Notification {
	out := make([]Notification, len(in))
	copy(out, in)
	return out
}

func cloneIntegrations(in map[string]IntegrationState) map[string]IntegrationState {
	out := make(map[string]IntegrationState, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneTranslations(in map[string]map[string]string) map[string]map[string]string {
	out := make(map[string]map[string]string, len(in))
	for lang, table := range in {
		t := make(map[string]string, len(table))
		for k, v := range table {
			t[k] = v
		}
		out[lang] = t
	}
	return out
}

func cloneLanguages(in []Language) []Language {
	out := make([]Language, len(in))
	copy(out, in)
	return out
}
