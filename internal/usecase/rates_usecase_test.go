package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan3dev/Church-management-system-sub001/internal/domain"
	"github.com/Dan3dev/Church-management-system-sub001/internal/infrastructure/clock"
)

func newRateService(source domain.RateSource) *ExchangeRateService {
	return NewExchangeRateService(source, NewEventBus(), testMetrics(), clock.NewFake(), testLogger())
}

func TestFetchRatesRebasesOntoRequestedBase(t *testing.T) {
	source := newStubRateSource(domain.Rates{"USD": 1, "KES": 150, "EUR": 0.9})
	svc := newRateService(source)

	rates, err := svc.FetchRates(context.Background(), "KES")
	require.NoError(t, err)

	assert.Equal(t, 1.0, rates["KES"])
	assert.InDelta(t, 1.0/150.0, rates["USD"], 1e-12)
	assert.InDelta(t, 0.9/150.0, rates["EUR"], 1e-12)
}

func TestFetchRatesBaseAlwaysExactlyOne(t *testing.T) {
	source := newStubRateSource(domain.Rates{"USD": 1, "KES": 150, "NGN": 1600, "EUR": 0.9})
	svc := newRateService(source)

	for _, base := range []string{"USD", "KES", "NGN", "EUR"} {
		rates, err := svc.FetchRates(context.Background(), base)
		require.NoError(t, err)
		assert.Equal(t, 1.0, rates[base], "base %s", base)
	}
}

func TestFetchRatesFailureReturnsLastKnownGood(t *testing.T) {
	source := newStubRateSource(domain.Rates{"USD": 1, "KES": 150})
	svc := newRateService(source)

	first, err := svc.FetchRates(context.Background(), "USD")
	require.NoError(t, err)

	source.setErr(errors.New("upstream down"))
	cached, err := svc.FetchRates(context.Background(), "USD")
	require.Error(t, err)
	assert.Equal(t, first, cached)
}

func TestFetchRatesFailureWithoutCache(t *testing.T) {
	source := newStubRateSource(nil)
	source.setErr(errors.New("upstream down"))
	svc := newRateService(source)

	rates, err := svc.FetchRates(context.Background(), "USD")
	require.Error(t, err)
	assert.Nil(t, rates)
	assert.Nil(t, svc.CachedRates("USD"))
}

func TestFetchRatesPublishesEvent(t *testing.T) {
	source := newStubRateSource(domain.Rates{"USD": 1, "KES": 150})
	bus := NewEventBus()
	svc := NewExchangeRateService(source, bus, testMetrics(), clock.NewFake(), testLogger())

	var got []domain.Event
	bus.Subscribe(func(e domain.Event) { got = append(got, e) })

	_, err := svc.FetchRates(context.Background(), "USD")
	require.NoError(t, err)

	require.Len(t, got, 1)
	updated, ok := got[0].(domain.RatesUpdated)
	require.True(t, ok)
	assert.Equal(t, "USD", updated.Base)
	assert.Equal(t, 150.0, updated.Rates["KES"])
}

func TestConvertIdentity(t *testing.T) {
	svc := newRateService(newStubRateSource(nil))
	rates := domain.Rates{"USD": 1, "KES": 150}

	assert.Equal(t, 123.45, svc.Convert(123.45, "USD", "USD", rates))
}

func TestConvertRoundTrip(t *testing.T) {
	svc := newRateService(newStubRateSource(nil))
	rates := domain.Rates{"USD": 1, "KES": 150, "EUR": 0.9}

	kes := svc.Convert(10, "USD", "KES", rates)
	assert.InDelta(t, 1500, kes, 1e-9)

	back := svc.Convert(kes, "KES", "USD", rates)
	assert.InDelta(t, 10, back, 1e-9)
}

func TestConvertMissingRateTreatedAsOne(t *testing.T) {
	svc := newRateService(newStubRateSource(nil))
	rates := domain.Rates{"USD": 1}

	assert.Equal(t, 5.0, svc.Convert(5, "USD", "XXX", rates))
	assert.Equal(t, 5.0, svc.Convert(5, "XXX", "USD", rates))
}

func TestFormatCurrency(t *testing.T) {
	svc := newRateService(newStubRateSource(nil))

	assert.Equal(t, "$1,500.00", svc.Format(1500, "USD", "en-US"))
	assert.Equal(t, "KSh 1,500.00", svc.Format(1500, "KES", "en-US"))
	assert.Equal(t, "$0.50", svc.Format(0.5, "USD", "en-US"))
}

func TestFormatUnknownCodeFallsBackToCode(t *testing.T) {
	svc := newRateService(newStubRateSource(nil))

	assert.Equal(t, "XYZ 12.00", svc.Format(12, "xyz", "en-US"))
}
