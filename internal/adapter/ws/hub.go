package ws

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// subscriber is one connected session from the hub's point of view.
type subscriber interface {
	userID() uuid.UUID
	deliver(f Frame)
	// shutdown is invoked exactly once, by the hub, when the subscriber
	// is unregistered.
	shutdown()
}

// Hub owns all room and personal-channel membership. Membership is
// process-local state: it is never persisted and is rebuilt from scratch when
// a client reconnects. All maps are guarded by mu; broadcasts hold the read
// lock for the whole delivery pass so an unregister can never race a send.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[uuid.UUID]map[subscriber]struct{}
	personal map[uuid.UUID]map[subscriber]struct{}
	joined   map[subscriber]map[uuid.UUID]struct{}
	log      *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		rooms:    make(map[uuid.UUID]map[subscriber]struct{}),
		personal: make(map[uuid.UUID]map[subscriber]struct{}),
		joined:   make(map[subscriber]map[uuid.UUID]struct{}),
		log:      log,
	}
}

// Register adds the session to its user's personal channel.
func (h *Hub) Register(s subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	uid := s.userID()
	if h.personal[uid] == nil {
		h.personal[uid] = make(map[subscriber]struct{})
	}
	h.personal[uid][s] = struct{}{}
	h.joined[s] = make(map[uuid.UUID]struct{})
}

// JoinRoom adds the session to a hall room. Joining twice is a no-op.
func (h *Hub) JoinRoom(hallID uuid.UUID, s subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.joined[s]; !ok {
		// Not registered (already unregistered); never grant membership.
		return
	}

	if h.rooms[hallID] == nil {
		h.rooms[hallID] = make(map[subscriber]struct{})
	}
	h.rooms[hallID][s] = struct{}{}
	h.joined[s][hallID] = struct{}{}
}

// Unregister releases every membership of the session exactly once and shuts
// its outbound channel down.
func (h *Hub) Unregister(s subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rooms, ok := h.joined[s]
	if !ok {
		return
	}
	delete(h.joined, s)

	for hallID := range rooms {
		delete(h.rooms[hallID], s)
		if len(h.rooms[hallID]) == 0 {
			delete(h.rooms, hallID)
		}
	}

	uid := s.userID()
	delete(h.personal[uid], s)
	if len(h.personal[uid]) == 0 {
		delete(h.personal, uid)
	}

	s.shutdown()
}

// BroadcastRoom delivers the frame to every session in the hall room.
func (h *Hub) BroadcastRoom(hallID uuid.UUID, f Frame) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.rooms[hallID] {
		s.deliver(f)
	}
}

// BroadcastUser delivers the frame to every session in a user's personal
// channel.
func (h *Hub) BroadcastUser(userID uuid.UUID, f Frame) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.personal[userID] {
		s.deliver(f)
	}
}

// BroadcastMessage delivers the frame to the hall room and to the
// recipient's personal channel, deduplicating sessions present in both.
func (h *Hub) BroadcastMessage(hallID, recipientID uuid.UUID, f Frame) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[subscriber]struct{})
	for s := range h.rooms[hallID] {
		seen[s] = struct{}{}
		s.deliver(f)
	}
	for s := range h.personal[recipientID] {
		if _, dup := seen[s]; dup {
			continue
		}
		s.deliver(f)
	}
}

// RoomSize reports current membership of a hall room.
func (h *Hub) RoomSize(hallID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[hallID])
}
