package hub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/team-pig/backend/internal/domain"
)

func testClient(h *Hub, roomID, userID uint) *Client {
	return NewClient(h, nil, roomID, userID)
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-h.Done()
	})
	return h
}

func register(t *testing.T, h *Hub, c *Client) {
	t.Helper()
	before := h.ClientCount(c.roomID)
	require.True(t, h.Register(c))
	require.Eventually(t, func() bool { return h.ClientCount(c.roomID) == before+1 }, time.Second, 5*time.Millisecond)
}

func event(t *testing.T, typ string, roomID, actorID uint) []byte {
	t.Helper()
	payload, err := json.Marshal(domain.BoardEvent{Type: typ, RoomID: roomID, ActorID: actorID})
	require.NoError(t, err)
	return payload
}

func TestHub_DispatchOnlyReachesRoom(t *testing.T) {
	h := startHub(t)
	a := testClient(h, 1, 10)
	b := testClient(h, 1, 11)
	other := testClient(h, 2, 12)
	register(t, h, a)
	register(t, h, b)
	register(t, h, other)

	assert.Equal(t, 2, h.Dispatch(1, []byte(`{"type":"card.created"}`)))

	assert.Equal(t, `{"type":"card.created"}`, string(<-a.send))
	assert.Equal(t, `{"type":"card.created"}`, string(<-b.send))
	assert.Len(t, other.send, 0)
}

func TestHub_DispatchSkipsFullClient(t *testing.T) {
	h := startHub(t)
	slow := testClient(h, 1, 10)
	register(t, h, slow)
	for i := 0; i < sendBufferSize; i++ {
		slow.send <- []byte("x")
	}

	assert.Equal(t, 0, h.Dispatch(1, []byte("y")))
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	h := startHub(t)
	c := testClient(h, 3, 10)
	register(t, h, c)

	h.Unregister(c)
	require.Eventually(t, func() bool { return h.ClientCount(3) == 0 }, time.Second, 5*time.Millisecond)
	_, ok := <-c.send
	assert.False(t, ok)
}

func TestHub_MemberLeftDisconnectsThatUser(t *testing.T) {
	h := startHub(t)
	stays := testClient(h, 1, 10)
	leaves := testClient(h, 1, 11)
	register(t, h, stays)
	register(t, h, leaves)

	h.HandleEvent(1, event(t, domain.EventMemberLeft, 1, 11))

	require.Eventually(t, func() bool { return h.ClientCount(1) == 1 }, time.Second, 5*time.Millisecond)
	assert.Len(t, stays.send, 1)
	<-leaves.send // the event itself
	_, ok := <-leaves.send
	assert.False(t, ok)
}

func TestHub_RoomDeletedDisconnectsEveryone(t *testing.T) {
	h := startHub(t)
	register(t, h, testClient(h, 5, 10))
	register(t, h, testClient(h, 5, 11))

	h.HandleEvent(5, event(t, domain.EventRoomDeleted, 5, 10))

	require.Eventually(t, func() bool { return h.ClientCount(5) == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_HandleEventIgnoresGarbage(t *testing.T) {
	h := startHub(t)
	c := testClient(h, 1, 10)
	register(t, h, c)

	h.HandleEvent(1, []byte("not json"))
	assert.Len(t, c.send, 0)
}
