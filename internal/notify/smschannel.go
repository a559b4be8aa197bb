package notify

import (
	"context"
	"fmt"
	"time"

	"edcore.org/internal/notify/sms"
	"edcore.org/internal/obs"
)

const (
	defaultSMSBatchCap   = 100
	defaultSMSPerCallTTL = 5 * time.Second
)

// SMSChannel fans a message out to phone-bearing recipients through the
// configured provider. Recipients past the batch cap are reported as
// Dropped, never silently discarded; each send runs under its own deadline
// so one slow number cannot stall the batch.
type SMSChannel struct {
	provider    sms.Provider
	batchCap    int
	callTimeout time.Duration
}

type SMSOption func(*SMSChannel)

// WithBatchCap overrides the per-dispatch recipient cap; zero or negative
// disables capping.
func WithBatchCap(n int) SMSOption {
	return func(c *SMSChannel) { c.batchCap = n }
}

// WithCallTimeout bounds each provider call.
func WithCallTimeout(d time.Duration) SMSOption {
	return func(c *SMSChannel) {
		if d > 0 {
			c.callTimeout = d
		}
	}
}

func NewSMSChannel(provider sms.Provider, opts ...SMSOption) *SMSChannel {
	c := &SMSChannel{
		provider:    provider,
		batchCap:    defaultSMSBatchCap,
		callTimeout: defaultSMSPerCallTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *SMSChannel) Name() string { return ChannelSMS }

func (c *SMSChannel) Deliver(ctx context.Context, recipients []Recipient, msg Message) (ChannelResult, error) {
	result := ChannelResult{Channel: ChannelSMS}
	if c.provider == nil {
		return result, fmt.Errorf("%w: no sms provider configured", ErrMisconfigured)
	}

	if c.batchCap > 0 && len(recipients) > c.batchCap {
		result.Dropped = len(recipients) - c.batchCap
		recipients = recipients[:c.batchCap]
		obs.CountDropped(result.Dropped)
	}

	for _, rcpt := range recipients {
		result.Attempted = append(result.Attempted, c.sendOne(ctx, rcpt, msg.Body))
	}
	return result, nil
}

func (c *SMSChannel) sendOne(ctx context.Context, rcpt Recipient, body string) DeliveryResult {
	res := DeliveryResult{RecipientID: rcpt.ID, Timestamp: time.Now().UTC()}

	phone, err := NormalizePhone(rcpt.Phone)
	if err != nil {
		res.Err = err.Error()
		obs.CountDelivery(ChannelSMS, false)
		return res
	}

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	msgID, err := c.provider.Send(callCtx, phone, body)
	if err != nil {
		res.Err = err.Error()
		obs.CountDelivery(ChannelSMS, false)
		return res
	}
	res.OK = true
	res.ProviderMessageID = msgID
	obs.CountDelivery(ChannelSMS, true)
	return res
}
