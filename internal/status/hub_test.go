package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient builds a Client with no real websocket connection, only
// exercising the Hub's registration/broadcast bookkeeping.
func newTestClient(id, runID string, hub *Hub) *Client {
	return &Client{hub: hub, send: make(chan Event, sendBufferSize), id: id, runID: runID}
}

func TestHub_DeliversOnlyToSubscribersOfTheSameRun(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	c1 := newTestClient("c1", "run-a", hub)
	c2 := newTestClient("c2", "run-b", hub)
	hub.Register(c1)
	hub.Register(c2)

	waitForRegistration(t, hub, 2)

	pub := hub.RunPublisher("run-a")
	pub.Publish("node1", StatusLoading)

	select {
	case evt := <-c1.send:
		assert.Equal(t, "node1", evt.NodeID)
		assert.Equal(t, StatusLoading, evt.Status)
		assert.Equal(t, "run-a", evt.WorkflowRunID)
	case <-time.After(time.Second):
		t.Fatal("subscriber of run-a did not receive its event")
	}

	select {
	case <-c2.send:
		t.Fatal("subscriber of run-b must not receive an event for run-a")
	case <-time.After(50 * time.Millisecond):
	}
}

// Per-subscriber delivery is FIFO: loading arrives strictly before the
// terminal status for the same node.
func TestHub_PerSubscriberFIFOOrdering(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	c1 := newTestClient("c1", "run-x", hub)
	hub.Register(c1)
	waitForRegistration(t, hub, 1)

	pub := hub.RunPublisher("run-x")
	pub.Publish("node1", StatusLoading)
	pub.Publish("node1", StatusSuccess)

	first := <-c1.send
	second := <-c1.send
	assert.Equal(t, StatusLoading, first.Status)
	assert.Equal(t, StatusSuccess, second.Status)
}

func TestHub_UnregisterStopsDelivery(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	c1 := newTestClient("c1", "run-y", hub)
	hub.Register(c1)
	waitForRegistration(t, hub, 1)

	hub.Unregister(c1)
	waitForRegistration(t, hub, 0)

	pub := hub.RunPublisher("run-y")
	pub.Publish("node1", StatusLoading)

	select {
	case _, ok := <-c1.send:
		assert.False(t, ok, "an unregistered client's channel is closed, not fed")
	case <-time.After(200 * time.Millisecond):
		t.Fatal("expected the closed send channel to be immediately readable")
	}
}

func waitForRegistration(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.Equal(t, want, hub.ClientCount())
}

func TestJWTAuth_IssueAndValidateRoundTrip(t *testing.T) {
	auth := NewJWTAuth([]byte("test-secret"))
	token, err := auth.IssueToken("run-123", time.Minute)
	require.NoError(t, err)

	runID, err := auth.validate(token)
	require.NoError(t, err)
	assert.Equal(t, "run-123", runID)
}

func TestJWTAuth_RejectsExpiredToken(t *testing.T) {
	auth := NewJWTAuth([]byte("test-secret"))
	token, err := auth.IssueToken("run-123", -time.Minute)
	require.NoError(t, err)

	_, err = auth.validate(token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestJWTAuth_RejectsWrongSecret(t *testing.T) {
	auth := NewJWTAuth([]byte("secret-a"))
	token, err := auth.IssueToken("run-123", time.Minute)
	require.NoError(t, err)

	other := NewJWTAuth([]byte("secret-b"))
	_, err = other.validate(token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
