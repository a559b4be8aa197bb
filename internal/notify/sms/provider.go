// Package sms holds the interchangeable SMS provider backends. Providers
// share one contract and are selected by configuration; callers never branch
// on the concrete backend.
package sms

import "context"

// Provider sends one SMS to one normalized 10-digit local number and returns
// the provider-side message id. Errors are per-call; batching, capping, and
// failure isolation live a layer up in the channel.
type Provider interface {
	Name() string
	Send(ctx context.Context, phone, body string) (string, error)
}
