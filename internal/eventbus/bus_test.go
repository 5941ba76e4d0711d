package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusPublishSubscribe(t *testing.T) {
	b := New()
	id, ch := b.Subscribe(4)
	defer b.Unsubscribe(id)

	b.PublishNew(TaskCreated, "task-1", "", map[string]string{"project_id": "p-1"})

	select {
	case ev := <-ch:
		assert.Equal(t, TaskCreated, ev.Type)
		assert.Equal(t, "task-1", ev.ResourceID)
		assert.Equal(t, "p-1", ev.Metadata["project_id"])
		assert.NotEmpty(t, ev.ID)
	case <-time.After(time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestBusDropsWhenBufferFull(t *testing.T) {
	b := New()
	id, ch := b.Subscribe(1)
	defer b.Unsubscribe(id)

	b.PublishNew(TaskUpdated, "a", "", nil)
	b.PublishNew(TaskUpdated, "b", "", nil)

	ev := <-ch
	assert.Equal(t, "a", ev.ResourceID)
	select {
	case extra := <-ch:
		t.Fatalf("unexpected event %s", extra.ResourceID)
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := New()
	id, ch := b.Subscribe(1)
	b.Unsubscribe(id)
	_, ok := <-ch
	require.False(t, ok)
}

func TestNilBusDiscards(t *testing.T) {
	var b *Bus
	assert.NotPanics(t, func() {
		b.PublishNew(TaskDeleted, "x", "", nil)
	})
}

func TestForwarderSubject(t *testing.T) {
	f := NewForwarder(New(), nil, "taskboard.events.")
	assert.Equal(t, "taskboard.events.notification.created", f.Subject(NotificationCreated))
}
