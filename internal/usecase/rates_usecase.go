package usecase

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/Dan3dev/Church-management-system-sub001/internal/domain"
	"github.com/Dan3dev/Church-management-system-sub001/internal/infrastructure/clock"
	"github.com/Dan3dev/Church-management-system-sub001/internal/infrastructure/metrics"
)

// staticSymbols is the fallback symbol table for codes the catalogue
// knows; an unknown code renders as the code itself.
var staticSymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"KES": "KSh",
	"UGX": "USh",
	"TZS": "TSh",
	"NGN": "₦",
	"ZAR": "R",
	"JPY": "¥",
	"INR": "₹",
}

// ExchangeRateService fetches anchor-relative rates, re-bases them onto
// the requested base currency and keeps the last-known-good map per
// base so a failed refresh never loses data.
type ExchangeRateService struct {
	source  domain.RateSource
	bus     *EventBus
	metrics *metrics.CoreMetrics
	clock   clock.Clock
	logger  *slog.Logger

	mu       sync.RWMutex
	lastGood map[string]domain.Rates
}

func NewExchangeRateService(source domain.RateSource, bus *EventBus, m *metrics.CoreMetrics, clk clock.Clock, logger *slog.Logger) *ExchangeRateService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExchangeRateService{
		source:   source,
		bus:      bus,
		metrics:  m,
		clock:    clk,
		logger:   logger,
		lastGood: map[string]domain.Rates{},
	}
}

// FetchRates returns rates re-based onto base: every anchor-relative
// rate divided by the base's anchor rate, with rates[base] pinned to 1
// exactly. On failure the last-known-good map for that base is
// returned alongside the error; the caller decides how to surface it.
func (s *ExchangeRateService) FetchRates(ctx context.Context, base string) (domain.Rates, error) {
	raw, err := s.source.FetchRates(ctx, base)
	if err != nil {
		s.metrics.ObserveRateRefresh(base, "failure")
		s.logger.Warn("rate fetch failed, retaining cached rates", "base", base, "error", err)
		s.mu.RLock()
		cached := s.lastGood[base]
		s.mu.RUnlock()
		if cached != nil {
			return cached.Clone(), err
		}
		return nil, err
	}

	baseRate, ok := raw[base]
	if !ok || baseRate <= 0 {
		// Degraded mode: the source did not quote the base itself.
		s.logger.Warn("rate source missing base rate, assuming 1", "base", base)
		baseRate = 1
	}

	rebased := make(domain.Rates, len(raw))
	for code, rate := range raw {
		rebased[code] = rate / baseRate
	}
	rebased[base] = 1

	s.mu.Lock()
	s.lastGood[base] = rebased.Clone()
	s.mu.Unlock()

	s.metrics.ObserveRateRefresh(base, "success")
	if s.bus != nil {
		s.bus.Publish(domain.RatesUpdated{Base: base, Rates: rebased.Clone(), At: s.clock.Now()})
	}
	return rebased, nil
}

// CachedRates returns the last successfully fetched map for base, or
// nil when none exists yet.
func (s *ExchangeRateService) CachedRates(base string) domain.Rates {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if cached, ok := s.lastGood[base]; ok {
		return cached.Clone()
	}
	return nil
}

// Convert converts amount from one currency to another using the given
// rate map. A missing rate is treated as 1; that is a documented
// degraded-mode fallback and is flagged in the log and metrics.
func (s *ExchangeRateService) Convert(amount float64, from, to string, rates domain.Rates) float64 {
	if from == to {
		return amount
	}
	fromRate, ok := rates[from]
	if !ok {
		s.logger.Warn("degraded conversion: missing rate treated as 1", "code", from)
		s.metrics.ObserveDegradedConversion()
		fromRate = 1
	}
	toRate, ok := rates[to]
	if !ok {
		s.logger.Warn("degraded conversion: missing rate treated as 1", "code", to)
		s.metrics.ObserveDegradedConversion()
		toRate = 1
	}
	return (amount / fromRate) * toRate
}

// Format renders an amount as symbol plus thousands-grouped value in
// the given locale. Unknown codes fall back to the static symbol
// table, then to the code itself.
func (s *ExchangeRateService) Format(amount float64, code, locale string) string {
	tag := language.Make(locale)
	if tag == language.Und {
		tag = language.English
	}
	printer := message.NewPrinter(tag)
	grouped := printer.Sprintf("%v", number.Decimal(amount,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))

	symbol, ok := staticSymbols[strings.ToUpper(code)]
	if !ok {
		symbol = strings.ToUpper(code)
	}
	if endsWithLetter(symbol) {
		return symbol + " " + grouped
	}
	return symbol + grouped
}

func endsWithLetter(s string) bool {
	runes := []rune(s)
	if len(runes) == 0 {
		return false
	}
	return unicode.IsLetter(runes[len(runes)-1])
}
