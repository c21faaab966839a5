package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubBroadcastsToRegisteredClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx)

	a := NewClient(hub, "u1", nil)
	b := NewClient(hub, "u2", nil)
	hub.Register <- a
	hub.Register <- b

	require.Eventually(t, func() bool { return hub.ConnectionCount() == 2 }, time.Second, 5*time.Millisecond)

	hub.Broadcast([]byte(`{"kind":"post.liked"}`))

	for _, c := range []*Client{a, b} {
		select {
		case msg := <-c.Send:
			assert.JSONEq(t, `{"kind":"post.liked"}`, string(msg))
		case <-time.After(time.Second):
			t.Fatalf("client %s received nothing", c.UserID)
		}
	}

	hub.Unregister <- a
	require.Eventually(t, func() bool { return hub.ConnectionCount() == 1 }, time.Second, 5*time.Millisecond)

	_, open := <-a.Send
	assert.False(t, open)
}

func TestHubRunClosesClientsOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	c := NewClient(hub, "u1", nil)
	hub.Register <- c
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	_, open := <-c.Send
	assert.False(t, open)
	assert.Zero(t, hub.ConnectionCount())

	assert.False(t, hub.Add(NewClient(hub, "u2", nil)))
}
