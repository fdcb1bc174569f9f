package session

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Event types published on the session feed.
const (
	EventSignedIn  = "signed_in"
	EventSignedOut = "signed_out"
	EventExpired   = "expired"
)

// Event is a session lifecycle notification. Subscribers receiving
// signed_out or expired for their own user should re-check their session
// and redirect to sign-in if it is gone.
type Event struct {
	Type      string    `json:"type"`
	UserID    uuid.UUID `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

type subscriber struct {
	userID uuid.UUID
	send   chan []byte
}

// Broadcaster fans session events out to connected listeners. Each listener
// is keyed by the user it belongs to; events are only delivered to that
// user's own listeners. A listener that cannot keep up has events dropped
// rather than blocking the publisher.
type Broadcaster struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]map[*subscriber]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[uuid.UUID]map[*subscriber]struct{})}
}

func (b *Broadcaster) subscribe(userID uuid.UUID) *subscriber {
	sub := &subscriber{userID: userID, send: make(chan []byte, 16)}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[userID] == nil {
		b.subs[userID] = make(map[*subscriber]struct{})
	}
	b.subs[userID][sub] = struct{}{}
	return sub
}

func (b *Broadcaster) unsubscribe(sub *subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	listeners, ok := b.subs[sub.userID]
	if !ok {
		return
	}
	if _, ok := listeners[sub]; !ok {
		return
	}
	delete(listeners, sub)
	if len(listeners) == 0 {
		delete(b.subs, sub.userID)
	}
	close(sub.send)
}

// Publish delivers an event to every listener of the event's user.
func (b *Broadcaster) Publish(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs[event.UserID] {
		select {
		case sub.send <- data:
		default:
			// Listener buffer full; skip to avoid blocking.
		}
	}
}

// ListenerCount returns the number of listeners for a user.
func (b *Broadcaster) ListenerCount(userID uuid.UUID) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[userID])
}

var upgrader = gorillawebsocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Session events carry no secrets and the connection is already
		// authenticated by the guard.
		return true
	},
}

// EventsHandler upgrades guarded requests to WebSocket and streams the
// caller's own session events.
type EventsHandler struct {
	broadcaster *Broadcaster
	log         zerolog.Logger
}

func NewEventsHandler(broadcaster *Broadcaster, log zerolog.Logger) *EventsHandler {
	return &EventsHandler{
		broadcaster: broadcaster,
		log:         log.With().Str("component", "session_events").Logger(),
	}
}

// Subscribe handles GET /session/events. It must be mounted behind the
// guard; an unguarded mount has no session to subscribe for.
func (h *EventsHandler) Subscribe(c echo.Context) error {
	s := FromEcho(c)
	if s == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	sub := h.broadcaster.subscribe(s.UserID)

	go h.writePump(sub, ws)
	go h.readPump(sub, ws)

	return nil
}

// readPump discards inbound frames and tears the subscription down when
// the client goes away.
func (h *EventsHandler) readPump(sub *subscriber, ws *gorillawebsocket.Conn) {
	defer func() {
		h.broadcaster.unsubscribe(sub)
		ws.Close()
	}()

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *EventsHandler) writePump(sub *subscriber, ws *gorillawebsocket.Conn) {
	defer ws.Close()

	for message := range sub.send {
		if err := ws.WriteMessage(gorillawebsocket.TextMessage, message); err != nil {
			return
		}
	}
}
