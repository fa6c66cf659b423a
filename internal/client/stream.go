package client

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/perguntas-ebd/backend/internal/feed"
	"github.com/perguntas-ebd/backend/internal/models"
	"github.com/perguntas-ebd/backend/internal/realtime"
)

// Subscription is one live room change feed. Exactly one may be open per
// view; callers must Close the previous one before subscribing to another
// room.
type Subscription struct {
	conn *websocket.Conn
	done chan struct{}
}

// Subscribe dials the backend websocket for a room and merges incoming
// change events into f under the given epoch. The feed's connected flag
// flips true on the server's handshake event and false on teardown.
//
// applyDeletes selects the feed variant: the student view consumes delete
// events, the moderator view ignores them (its own deletes are applied
// optimistically, and only moderators delete).
func Subscribe(baseURL, room string, f *feed.Feed, epoch uint64, applyDeletes bool) (*Subscription, error) {
	wsURL, err := websocketURL(baseURL, room)
	if err != nil {
		return nil, err
	}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return nil, err
	}

	s := &Subscription{conn: conn, done: make(chan struct{})}
	go s.readLoop(f, epoch, applyDeletes)
	return s, nil
}

// Done is closed when the subscription's read loop exits.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close tears the subscription down. The feed keeps its current list; the
// next Activate clears it.
func (s *Subscription) Close() {
	_ = s.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = s.conn.Close()
}

func (s *Subscription) readLoop(f *feed.Feed, epoch uint64, applyDeletes bool) {
	defer func() {
		f.SetConnected(epoch, false)
		_ = s.conn.Close()
		close(s.done)
	}()

	for {
		var msg realtime.WSMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			return
		}
		switch msg.Event {
		case realtime.EventConnected:
			f.SetConnected(epoch, true)
		case realtime.EventInsert, realtime.EventUpdate:
			var q models.Question
			if err := json.Unmarshal(msg.Data, &q); err != nil {
				continue
			}
			kind := feed.KindInsert
			if msg.Event == realtime.EventUpdate {
				kind = feed.KindUpdate
			}
			f.Apply(epoch, feed.Event{Kind: kind, Question: q})
		case realtime.EventDelete:
			if !applyDeletes {
				continue
			}
			var p realtime.DeletePayload
			if err := json.Unmarshal(msg.Data, &p); err != nil {
				continue
			}
			f.Apply(epoch, feed.Event{Kind: feed.KindDelete, ID: p.ID})
		}
	}
}

func websocketURL(baseURL, room string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	switch {
	case strings.EqualFold(u.Scheme, "https"):
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	q := u.Query()
	q.Set("room", room)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
