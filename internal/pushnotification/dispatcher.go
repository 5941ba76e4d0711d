package pushnotification

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/internal/notification"
)

// Dispatcher turns notification.created events into web pushes for the
// notified user.
type Dispatcher struct {
	eventBus *eventbus.Bus
	sender   *Sender
}

func NewDispatcher(eventBus *eventbus.Bus, sender *Sender) *Dispatcher {
	return &Dispatcher{
		eventBus: eventBus,
		sender:   sender,
	}
}

func (d *Dispatcher) Start(ctx context.Context) error {
	subID, ch := d.eventBus.Subscribe(256)
	defer d.eventBus.Unsubscribe(subID)

	slog.Info("push notification dispatcher started")
	for {
		select {
		case <-ctx.Done():
			slog.Info("push notification dispatcher stopped")
			return nil
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			if event.Type == eventbus.NotificationCreated {
				d.handleNotificationCreated(ctx, event)
			}
		}
	}
}

func (d *Dispatcher) handleNotificationCreated(ctx context.Context, event *eventbus.Event) {
	var n notification.Notification
	if err := json.Unmarshal([]byte(event.Payload), &n); err != nil {
		slog.ErrorContext(ctx, "push dispatcher: malformed notification payload", "id", event.ResourceID, "error", err)
		return
	}
	if n.ForUser == "" {
		return
	}
	d.sender.SendToUser(ctx, n.ForUser, &NotificationPayload{
		Title: n.Title,
		Body:  n.Message,
		URL:   "/notifications",
		Tag:   n.ID,
	})
}
