package pushnotification

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskboard/internal/config"
	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/internal/notification"
	"github.com/kazz187/taskboard/internal/pushsubscription"
	"github.com/kazz187/taskboard/internal/pushsubscription/repositoryimpl"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/storage"
)

// browser keys of a real PushSubscription
const (
	testP256dh = "BNNL5ZaTfK81qhXOx23-wewhigUeFb632jN6LvRWCFH1ubQr77FE_9qV1FuojuRmHP42zmf34rXgW80OvUVDgTk"
	testAuth   = "zqbxT6JKstKSY9JKibZLSQ"
)

type fakeClient struct {
	mu       sync.Mutex
	status   map[string]int
	requests []string
}

func (c *fakeClient) Do(req *http.Request) (*http.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req.URL.String())
	status, ok := c.status[req.URL.String()]
	if !ok {
		status = http.StatusCreated
	}
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(""))}, nil
}

func (c *fakeClient) sent() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.requests...)
}

func newSender(t *testing.T) (*Sender, pushsubscription.Repository, *fakeClient) {
	t.Helper()
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	repo := repositoryimpl.NewYAMLRepository(s)

	priv, pub, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)
	client := &fakeClient{status: map[string]int{}}
	sender := NewSender(&config.VAPIDEnv{VAPIDPublicKey: pub, VAPIDPrivateKey: priv, VAPIDContact: "ops@example.com"}, repo)
	sender.httpClient = client
	return sender, repo, client
}

func subscribe(t *testing.T, repo pushsubscription.Repository, id, userID, endpoint string) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &pushsubscription.Subscription{
		ID: id, UserID: userID, Endpoint: endpoint, P256dhKey: testP256dh, AuthKey: testAuth, CreatedAt: time.Now(),
	}))
}

func TestSendToUser(t *testing.T) {
	ctx := context.Background()
	sender, repo, client := newSender(t)
	subscribe(t, repo, "s1", "alice", "https://push.example.com/alice-laptop")
	subscribe(t, repo, "s2", "alice", "https://push.example.com/alice-phone")
	subscribe(t, repo, "s3", "bob", "https://push.example.com/bob")
	client.status["https://push.example.com/alice-phone"] = http.StatusGone

	sent := sender.SendToUser(ctx, "alice", &NotificationPayload{Title: "hi", Body: "there"})
	assert.Equal(t, 1, sent)
	assert.ElementsMatch(t, []string{"https://push.example.com/alice-laptop", "https://push.example.com/alice-phone"}, client.sent())

	// the gone endpoint was dropped
	subs, err := repo.ListByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "s1", subs[0].ID)

	_, err = repo.FindByEndpoint(ctx, "https://push.example.com/alice-phone")
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
}

func TestSendToUserWithoutVAPIDKeys(t *testing.T) {
	sender, repo, client := newSender(t)
	sender.vapidEnv = &config.VAPIDEnv{}
	subscribe(t, repo, "s1", "alice", "https://push.example.com/alice")

	assert.Zero(t, sender.SendToUser(context.Background(), "alice", &NotificationPayload{Title: "hi"}))
	assert.Empty(t, client.sent())
}

func TestDispatcherPushesNotificationEvents(t *testing.T) {
	sender, repo, client := newSender(t)
	subscribe(t, repo, "s1", "alice", "https://push.example.com/alice")

	bus := eventbus.New()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	d := NewDispatcher(bus, sender)
	go func() {
		defer close(done)
		_ = d.Start(ctx)
	}()

	payload, err := json.Marshal(&notification.Notification{ID: "n1", ForUser: "alice", Title: "A task assigned to you has been updated."})
	require.NoError(t, err)
	// the dispatcher subscribes asynchronously, so keep publishing until it
	// picks one up
	require.Eventually(t, func() bool {
		bus.PublishNew(eventbus.TaskUpdated, "t1", "", nil)
		bus.PublishNew(eventbus.NotificationCreated, "n1", string(payload), map[string]string{"for_user": "alice"})
		return len(client.sent()) > 0
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	<-done
	assert.Equal(t, "https://push.example.com/alice", client.sent()[0])
}
