package notify

import (
	"context"
	"fmt"
	"time"

	"edcore.org/internal/ids"
	"edcore.org/internal/obs"
)

// InAppChannel persists one notification row per account-bearing recipient
// in a single batch insert.
type InAppChannel struct {
	store RecordStore
}

func NewInAppChannel(store RecordStore) *InAppChannel {
	return &InAppChannel{store: store}
}

func (c *InAppChannel) Name() string { return ChannelInApp }

func (c *InAppChannel) Deliver(ctx context.Context, recipients []Recipient, msg Message) (ChannelResult, error) {
	result := ChannelResult{Channel: ChannelInApp}
	if c.store == nil {
		return result, fmt.Errorf("%w: no notification store configured", ErrMisconfigured)
	}
	if len(recipients) == 0 {
		return result, nil
	}

	now := time.Now().UTC()
	records := make([]Record, 0, len(recipients))
	for _, rcpt := range recipients {
		records = append(records, Record{
			ID:        ids.New(),
			UserID:    rcpt.AccountID,
			Type:      msg.Type,
			Title:     msg.Title,
			Message:   msg.Body,
			Priority:  msg.Priority,
			ActionURL: msg.ActionURL,
			CreatedAt: now,
		})
	}

	if err := c.store.InsertBatch(ctx, records); err != nil {
		// One batch, one failure mode: every recipient missed the insert.
		for _, rcpt := range recipients {
			result.Attempted = append(result.Attempted, DeliveryResult{
				RecipientID: rcpt.ID,
				Err:         err.Error(),
				Timestamp:   now,
			})
			obs.CountDelivery(ChannelInApp, false)
		}
		return result, nil
	}

	for i, rcpt := range recipients {
		result.Attempted = append(result.Attempted, DeliveryResult{
			RecipientID:       rcpt.ID,
			OK:                true,
			ProviderMessageID: records[i].ID,
			Timestamp:         now,
		})
		obs.CountDelivery(ChannelInApp, true)
	}
	return result, nil
}
