package live

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"group-gallery-client/internal/api"
	"group-gallery-client/internal/stubapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenerReceivesUploadEvents(t *testing.T) {
	stub := stubapi.New()
	srv := httptest.NewServer(stub.Router())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	events := make(chan Event, 1)
	listener := NewListener(wsURL, "G1", func(ev Event) {
		select {
		case events <- ev:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go listener.Run(ctx)

	client := api.New(srv.URL, "")

	// Give the listener a moment to connect before triggering the event.
	require.Eventually(t, func() bool {
		err := client.UploadMedia(ctx, "G1", "u1", []api.Upload{
			{Filename: "a.jpg", Data: []byte("img")},
		})
		if err != nil {
			return false
		}
		select {
		case ev := <-events:
			assert.Equal(t, "media_uploaded", ev.Type)
			assert.Equal(t, "G1", ev.Group)
			return true
		case <-time.After(200 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 100*time.Millisecond)
}

func TestListenerStopsOnCancel(t *testing.T) {
	stub := stubapi.New()
	srv := httptest.NewServer(stub.Router())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	listener := NewListener(wsURL, "G1", func(Event) {})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- listener.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("listener did not stop on cancel")
	}
}
