package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Summary is the aggregated outcome of one dispatch. Every attempted
// recipient is counted exactly once per channel; recipients without a
// resolvable address for a channel are simply not attempted there and
// never counted as failures.
type Summary struct {
	Total     int    `json:"total_audience"`
	SMSSent   int    `json:"sms_sent"`
	SMSFailed int    `json:"sms_failed"`
	AppSent   int    `json:"app_notifications_sent"`
	AppFailed int    `json:"app_notifications_failed"`
	Dropped   int    `json:"dropped"`
	Period    string `json:"period,omitempty"`
	Date      string `json:"date,omitempty"`
}

// AudienceResolver turns an event into its recipient list.
type AudienceResolver interface {
	Resolve(ctx context.Context, ev Event) ([]Recipient, error)
}

// Orchestrator drives one dispatch end to end: collect the audience,
// partition it per channel, fan out, and aggregate. Channel failures are
// isolated from each other; a dispatch with partial failures still returns
// a summary, never an error. Only an unresolvable audience (bad event,
// storage outage during the query) is a true error.
type Orchestrator struct {
	resolver AudienceResolver
	registry *Registry
}

func NewOrchestrator(resolver AudienceResolver, registry *Registry) (*Orchestrator, error) {
	if resolver == nil {
		return nil, errors.New("notify: audience resolver is required")
	}
	if registry == nil {
		return nil, errors.New("notify: channel registry is required")
	}
	return &Orchestrator{resolver: resolver, registry: registry}, nil
}

func (o *Orchestrator) Dispatch(ctx context.Context, ev Event) (Summary, error) {
	summary := Summary{Period: ev.Period}
	if !ev.Date.IsZero() {
		summary.Date = ev.Date.Format("2006-01-02")
	}

	// COLLECTING
	audience, err := o.resolver.Resolve(ctx, ev)
	if err != nil {
		return Summary{}, err
	}
	summary.Total = len(audience)
	if len(audience) == 0 {
		// Observable no-op: nothing to send, no channel is invoked.
		return summary, nil
	}

	// PARTITIONED: membership per list is independent, a recipient with both
	// a phone and a linked account appears in both.
	var smsEligible, appEligible []Recipient
	for _, rcpt := range audience {
		if rcpt.Phone != "" {
			smsEligible = append(smsEligible, rcpt)
		}
		if rcpt.AccountID != "" {
			appEligible = append(appEligible, rcpt)
		}
	}

	// DISPATCHING: the two channels are order-insensitive and must both run
	// even if one fails outright.
	msg := ev.Render()
	var wg sync.WaitGroup
	smsResult := o.runChannel(ctx, &wg, ChannelSMS, smsEligible, msg)
	appResult := o.runChannel(ctx, &wg, ChannelInApp, appEligible, msg)
	wg.Wait()

	// AGGREGATED
	summary.SMSSent = smsResult.result.Sent()
	summary.SMSFailed = smsResult.result.Failed()
	summary.Dropped = smsResult.result.Dropped
	summary.AppSent = appResult.result.Sent()
	summary.AppFailed = appResult.result.Failed()
	return summary, nil
}

type channelOutcome struct {
	result ChannelResult
}

// runChannel launches one channel batch in its own goroutine. A channel
// error or panic converts every eligible recipient into a failed attempt so
// the summary still accounts for them.
func (o *Orchestrator) runChannel(ctx context.Context, wg *sync.WaitGroup, name string, recipients []Recipient, msg Message) *channelOutcome {
	out := &channelOutcome{result: ChannelResult{Channel: name}}
	if len(recipients) == 0 {
		return out
	}
	ch, ok := o.registry.Get(name)
	if !ok {
		out.result = failAll(name, recipients, fmt.Errorf("%w: channel %q not registered", ErrMisconfigured, name))
		return out
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				out.result = failAll(name, recipients, fmt.Errorf("notify: channel %s panicked: %v", name, r))
			}
		}()
		result, err := ch.Deliver(ctx, recipients, msg)
		if err != nil {
			out.result = failAll(name, recipients, err)
			return
		}
		out.result = result
	}()
	return out
}

func failAll(name string, recipients []Recipient, err error) ChannelResult {
	result := ChannelResult{Channel: name}
	now := time.Now().UTC()
	for _, rcpt := range recipients {
		result.Attempted = append(result.Attempted, DeliveryResult{
			RecipientID: rcpt.ID,
			Err:         err.Error(),
			Timestamp:   now,
		})
	}
	return result
}
