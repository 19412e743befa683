package live

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const reconnectDelay = 5 * time.Second

// Event is a message from the service's event stream
type Event struct {
	Type    string `json:"type"`
	Group   string `json:"group,omitempty"`
	PostID  string `json:"post_id,omitempty"`
	ItemID  string `json:"item_id,omitempty"`
	UserID  string `json:"user_id,omitempty"`
	Message string `json:"message,omitempty"`
	SentAt  int64  `json:"timestamp,omitempty"`
}

// Listener subscribes to the service's websocket event stream for one
// group and hands matching events to a callback. A media_uploaded event
// is how the client learns it should refresh the feed without polling.
type Listener struct {
	url     string
	groupID string
	onEvent func(Event)
}

// NewListener creates a listener for the given group
func NewListener(url, groupID string, onEvent func(Event)) *Listener {
	return &Listener{
		url:     url,
		groupID: groupID,
		onEvent: onEvent,
	}
}

// Run connects and reads events until the context is cancelled,
// reconnecting after a flat delay when the connection drops.
func (l *Listener) Run(ctx context.Context) error {
	for {
		if err := l.connectAndRead(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn().Err(err).Msg("Event stream disconnected, reconnecting")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

func (l *Listener) connectAndRead(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, l.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	log.Info().Str("group", l.groupID).Msg("Event stream connected")

	// Close the connection when the context is cancelled so ReadMessage
	// unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			log.Warn().Err(err).Msg("Ignoring malformed event")
			continue
		}

		if ev.Group != "" && ev.Group != l.groupID {
			continue
		}

		l.onEvent(ev)
	}
}
