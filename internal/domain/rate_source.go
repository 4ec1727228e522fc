package domain

import "context"

// RateSource fetches exchange rates from an external endpoint.
// Returned rates are anchor-relative: expressed against whatever
// reference currency the remote source uses, not against base.
// Re-basing onto the requested base is the caller's job.
type RateSource interface {
	FetchRates(ctx context.Context, base string) (Rates, error)
}
