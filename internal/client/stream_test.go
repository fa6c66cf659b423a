package client

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/perguntas-ebd/backend/internal/feed"
	"github.com/perguntas-ebd/backend/internal/models"
	"github.com/perguntas-ebd/backend/internal/realtime"
)

// starts a real websocket endpoint backed by a hub without Redis, so
// publishes broadcast locally.
func startServer(t *testing.T) (*realtime.Hub, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	hub := realtime.NewHub(logger, nil, nil)

	r := gin.New()
	r.GET("/ws", realtime.ServeWs(hub, logger))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return hub, srv.URL
}

func waitForConnected(t *testing.T, f *feed.Feed) {
	t.Helper()
	require.Eventually(t, f.Connected, 2*time.Second, 10*time.Millisecond, "handshake event not received")
}

func TestSubscribeReceivesChanges(t *testing.T) {
	hub, baseURL := startServer(t)

	f := feed.New()
	epoch := f.Activate("doutrina")
	require.True(t, f.SetInitial(epoch, nil))

	sub, err := Subscribe(baseURL, "doutrina", f, epoch, true)
	require.NoError(t, err)
	defer sub.Close()
	waitForConnected(t, f)

	q := models.Question{
		ID:        uuid.New(),
		Room:      "doutrina",
		Text:      "Qual o significado de graça?",
		Status:    models.StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	hub.PublishInsert(&q)
	require.Eventually(t, func() bool { return len(f.Snapshot()) == 1 }, 2*time.Second, 10*time.Millisecond)

	q.Status = models.StatusHighlighted
	hub.PublishUpdate(&q)
	require.Eventually(t, func() bool {
		got, ok := f.Get(q.ID)
		return ok && got.Status == models.StatusHighlighted
	}, 2*time.Second, 10*time.Millisecond)

	hub.PublishDelete("doutrina", q.ID)
	require.Eventually(t, func() bool { return len(f.Snapshot()) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestModeratorSubscriptionIgnoresDeletes(t *testing.T) {
	hub, baseURL := startServer(t)

	f := feed.New()
	epoch := f.Activate("doutrina")
	q := models.Question{ID: uuid.New(), Room: "doutrina", Text: "fica", Status: models.StatusPending}
	require.True(t, f.SetInitial(epoch, []models.Question{q}))

	sub, err := Subscribe(baseURL, "doutrina", f, epoch, false)
	require.NoError(t, err)
	defer sub.Close()
	waitForConnected(t, f)

	hub.PublishDelete("doutrina", q.ID)
	// the delete event must not remove the row; give the broadcast time to land
	time.Sleep(200 * time.Millisecond)
	assert.Len(t, f.Snapshot(), 1)
}

func TestSubscribeUnknownRoom(t *testing.T) {
	_, baseURL := startServer(t)
	f := feed.New()
	epoch := f.Activate("matematica")

	_, err := Subscribe(baseURL, "matematica", f, epoch, true)
	assert.Error(t, err, "upgrade must be refused for unregistered rooms")
}

func TestCloseFlipsConnectedOff(t *testing.T) {
	_, baseURL := startServer(t)

	f := feed.New()
	epoch := f.Activate("doutrina")
	sub, err := Subscribe(baseURL, "doutrina", f, epoch, true)
	require.NoError(t, err)
	waitForConnected(t, f)

	sub.Close()
	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("read loop did not exit on close")
	}
	assert.False(t, f.Connected())
}
