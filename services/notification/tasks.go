package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"dispatchly/models"
)

// TypeNotifySend is the asynq task type for notification delivery.
const TypeNotifySend = "notify:send"

// AsyncDispatcher queues notifications for background delivery instead of
// sending inline. Booking turns stay fast even when FCM or the SMS gateway
// is slow.
type AsyncDispatcher struct {
	client *asynq.Client
}

func NewAsyncDispatcher(client *asynq.Client) *AsyncDispatcher {
	return &AsyncDispatcher{client: client}
}

func (d *AsyncDispatcher) NotifyOwner(
	ctx context.Context,
	business *models.Business,
	title, body string,
	data map[string]string,
) error {
	if business == nil {
		return fmt.Errorf("NotifyOwner: business is nil")
	}
	return d.enqueue(ctx, models.NotificationPayload{
		BusinessID: business.ID,
		Target:     "owner",
		Title:      title,
		Body:       body,
		Data:       data,
	})
}

func (d *AsyncDispatcher) NotifyCustomer(
	ctx context.Context,
	business *models.Business,
	toPhone, body string,
) error {
	if business == nil {
		return fmt.Errorf("NotifyCustomer: business is nil")
	}
	return d.enqueue(ctx, models.NotificationPayload{
		BusinessID: business.ID,
		Target:     "customer",
		ToPhone:    toPhone,
		Body:       body,
	})
}

func (d *AsyncDispatcher) enqueue(ctx context.Context, payload models.NotificationPayload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("notification payload marshal error: %w", err)
	}
	task := asynq.NewTask(TypeNotifySend, raw)
	if _, err := d.client.EnqueueContext(ctx, task, asynq.MaxRetry(3)); err != nil {
		return fmt.Errorf("notification enqueue error: %w", err)
	}
	return nil
}
