package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/team-pig/backend/internal/domain"
	redispubsub "github.com/team-pig/backend/internal/infra/pubsub/redis"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Clients only receive, so this is small.
	maxMessageSize = 512

	sendBufferSize = 256
)

type messageType int

const (
	msgRegister messageType = iota
	msgUnregister
	msgDisconnectRoom
	msgDisconnectUser
)

// hubMessage is one request to the Run loop.
type hubMessage struct {
	typ    messageType
	client *Client
	roomID uint
	userID uint
}

// Hub tracks the websocket clients of each room and fans board events out to them.
// Registration changes go through the Run loop; Dispatch may be called from any goroutine.
type Hub struct {
	messageChan chan hubMessage

	// map[roomID]map[*Client]bool
	rooms   map[uint]map[*Client]bool
	roomsMu sync.RWMutex

	done chan struct{}
}

// NewHub creates a Hub. Call Run before registering clients.
func NewHub() *Hub {
	return &Hub{
		messageChan: make(chan hubMessage, 512),
		rooms:       make(map[uint]map[*Client]bool),
		done:        make(chan struct{}),
	}
}

// Run processes registrations until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	log := logrus.WithField("component", "hub")
	log.Info("Hub is running...")
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			log.Info("Hub stopped")
			return
		case msg := <-h.messageChan:
			switch msg.typ {
			case msgRegister:
				h.registerClient(msg.client)
			case msgUnregister:
				h.unregisterClient(msg.client)
			case msgDisconnectRoom:
				h.disconnect(msg.roomID, func(*Client) bool { return true })
			case msgDisconnectUser:
				h.disconnect(msg.roomID, func(c *Client) bool { return c.userID == msg.userID })
			default:
				log.Warnf("Hub: unknown message type %d", msg.typ)
			}
		}
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} { return h.done }

// Register queues the client for registration. It reports false when the
// hub is saturated or stopped.
func (h *Hub) Register(client *Client) bool {
	return h.queue(hubMessage{typ: msgRegister, client: client, roomID: client.roomID, userID: client.userID})
}

// Unregister queues the client for removal, waiting up to a second for room in the queue.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.messageChan <- hubMessage{typ: msgUnregister, client: client}:
	case <-h.done:
	case <-time.After(time.Second):
		logrus.WithFields(logrus.Fields{"user_id": client.userID, "room_id": client.roomID}).
			Warn("Timeout sending unregister message to Hub channel")
	}
}

// Dispatch delivers payload to every client of roomID. Slow clients whose
// buffer is full miss the message.
func (h *Hub) Dispatch(roomID uint, payload []byte) int {
	h.roomsMu.RLock()
	defer h.roomsMu.RUnlock()

	roomClients := h.rooms[roomID]
	delivered := 0
	for client := range roomClients {
		select {
		case client.send <- payload:
			delivered++
		default:
			logrus.WithFields(logrus.Fields{
				"room_id": roomID,
				"user_id": client.userID,
			}).Warn("Client send channel full, dropping board event")
		}
	}
	return delivered
}

// ClientCount returns the number of clients registered for roomID.
func (h *Hub) ClientCount(roomID uint) int {
	h.roomsMu.RLock()
	defer h.roomsMu.RUnlock()
	return len(h.rooms[roomID])
}

// Listen subscribes to the board event channels of every room and dispatches
// each message to that room's clients until ctx is cancelled.
func (h *Hub) Listen(ctx context.Context, rdb redis.UniversalClient, keyPrefix string) error {
	log := logrus.WithField("component", "hub")
	pattern := redispubsub.RoomChannelPattern(keyPrefix)
	sub := rdb.PSubscribe(ctx, pattern)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	log.WithField("pattern", pattern).Info("Subscribed to board events")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			roomID, ok := redispubsub.ParseRoomChannel(keyPrefix, msg.Channel)
			if !ok {
				log.WithField("channel", msg.Channel).Warn("Ignoring message on unexpected channel")
				continue
			}
			h.HandleEvent(roomID, []byte(msg.Payload))
		}
	}
}

// HandleEvent forwards a published event to the room and drops the
// connections the event revokes: every client of a deleted room, and the
// clients of a member who left.
func (h *Hub) HandleEvent(roomID uint, payload []byte) {
	var event domain.BoardEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		logrus.WithError(err).WithField("room_id", roomID).Warn("Dropping undecodable board event")
		return
	}
	h.Dispatch(roomID, payload)

	switch event.Type {
	case domain.EventRoomDeleted:
		h.queue(hubMessage{typ: msgDisconnectRoom, roomID: roomID})
	case domain.EventMemberLeft:
		h.queue(hubMessage{typ: msgDisconnectUser, roomID: roomID, userID: event.ActorID})
	}
}

func (h *Hub) queue(msg hubMessage) bool {
	select {
	case h.messageChan <- msg:
		return true
	default:
		logrus.WithFields(logrus.Fields{
			"room_id": msg.roomID,
			"user_id": msg.userID,
		}).Warn("Hub message channel full, dropping message")
		return false
	}
}

func (h *Hub) registerClient(client *Client) {
	if client == nil {
		logrus.Error("Hub: Attempted to register a nil client")
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{"room_id": client.roomID, "user_id": client.userID})

	h.roomsMu.Lock()
	if _, ok := h.rooms[client.roomID]; !ok {
		h.rooms[client.roomID] = make(map[*Client]bool)
	}
	h.rooms[client.roomID][client] = true
	h.roomsMu.Unlock()
	logCtx.Info("Client registered to Hub")
}

func (h *Hub) unregisterClient(client *Client) {
	if client == nil {
		return
	}
	h.roomsMu.Lock()
	removed := h.removeLocked(client)
	h.roomsMu.Unlock()
	if removed {
		logrus.WithFields(logrus.Fields{"room_id": client.roomID, "user_id": client.userID}).
			Info("Client unregistered from Hub")
	}
}

// removeLocked drops the client and closes its send channel, which makes its
// write pump send a close frame and exit. Caller holds roomsMu.
func (h *Hub) removeLocked(client *Client) bool {
	roomClients, ok := h.rooms[client.roomID]
	if !ok || !roomClients[client] {
		return false
	}
	delete(roomClients, client)
	close(client.send)
	if len(roomClients) == 0 {
		delete(h.rooms, client.roomID)
	}
	return true
}

func (h *Hub) disconnect(roomID uint, match func(*Client) bool) {
	h.roomsMu.Lock()
	defer h.roomsMu.Unlock()
	n := 0
	for client := range h.rooms[roomID] {
		if match(client) && h.removeLocked(client) {
			n++
		}
	}
	if n > 0 {
		logrus.WithFields(logrus.Fields{"room_id": roomID, "clients": n}).Info("Disconnected clients")
	}
}

func (h *Hub) closeAll() {
	h.roomsMu.Lock()
	defer h.roomsMu.Unlock()
	for _, roomClients := range h.rooms {
		for client := range roomClients {
			close(client.send)
		}
	}
	h.rooms = make(map[uint]map[*Client]bool)
}
