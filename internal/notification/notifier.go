package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/internal/task"
)

const (
	titleForCreator  = "A task created by you has been updated."
	titleForAssignee = "A task assigned to you has been updated."
)

var _ task.ChangeNotifier = (*Notifier)(nil)

type watchedField struct {
	name  string
	value func(*task.Task) string
}

// watchedFields is evaluated in order, so messages come out in this order.
var watchedFields = []watchedField{
	{name: "dueDate", value: func(t *task.Task) string { return formatTime(t.DueDate) }},
	{name: "status", value: func(t *task.Task) string { return string(t.Status) }},
	{name: "priority", value: func(t *task.Task) string { return string(t.Priority) }},
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// ChangeMessages lists one message per watched field whose value differs
// between before and after.
func ChangeMessages(before, after *task.Task) []string {
	var msgs []string
	for _, f := range watchedFields {
		newValue := f.value(after)
		if f.value(before) == newValue {
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s - %s has been set to \"%s\"", after.Name, f.name, newValue))
	}
	return msgs
}

// Build turns a before/after pair into notifications for the creator and,
// when there is one, the assignee.
func Build(before, after *task.Task, now time.Time) []*Notification {
	msgs := ChangeMessages(before, after)
	if len(msgs) == 0 {
		return nil
	}
	var ns []*Notification
	add := func(title, forUser string) {
		for _, msg := range msgs {
			ns = append(ns, &Notification{
				ID:        ulid.Make().String(),
				Title:     title,
				Message:   msg,
				ForUser:   forUser,
				CreatedAt: now,
			})
		}
	}
	add(titleForCreator, after.CreatedBy)
	if after.AssignedTo != "" {
		add(titleForAssignee, after.AssignedTo)
	}
	return ns
}

// Notifier persists change notifications and announces them on the bus.
type Notifier struct {
	repo Repository
	bus  *eventbus.Bus
	now  func() time.Time
}

func NewNotifier(repo Repository, bus *eventbus.Bus) *Notifier {
	return &Notifier{repo: repo, bus: bus, now: time.Now}
}

func (n *Notifier) NotifyTaskChanged(ctx context.Context, before, after *task.Task) error {
	ns := Build(before, after, n.now())
	if len(ns) == 0 {
		return nil
	}
	if err := n.repo.CreateMany(ctx, ns); err != nil {
		return err
	}
	for _, nt := range ns {
		payload, err := json.Marshal(nt)
		if err != nil {
			slog.WarnContext(ctx, "failed to marshal notification", "notification_id", nt.ID, "error", err)
			continue
		}
		n.bus.PublishNew(eventbus.NotificationCreated, nt.ID, string(payload), map[string]string{
			"for_user": nt.ForUser,
			"task_id":  after.ID,
		})
	}
	return nil
}
