package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/satrio28/hallbook/internal/core/domain"
	"github.com/satrio28/hallbook/internal/core/ports/mocks"
	"github.com/satrio28/hallbook/internal/core/services"
)

// stubVerifier resolves tokens from a fixed table.
type stubVerifier struct {
	identities map[string]domain.Identity
}

func (v stubVerifier) Verify(token string) (domain.Identity, error) {
	identity, ok := v.identities[token]
	if !ok {
		return domain.Identity{}, domain.ErrInvalidToken
	}
	return identity, nil
}

// convStore backs the chat service with in-process state; failAppend
// simulates a persistence outage on message append.
type convStore struct {
	mu         sync.Mutex
	convs      []*domain.Conversation
	messages   map[uuid.UUID][]domain.Message
	failAppend bool
}

func newConvStore() *convStore {
	return &convStore{messages: make(map[uuid.UUID][]domain.Message)}
}

func (r *convStore) Find(_ context.Context, hallID, a, b uuid.UUID) (*domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.convs {
		if c.HallID == hallID && c.Involves(a) && c.Involves(b) {
			out := *c
			return &out, nil
		}
	}
	return nil, domain.ErrConversationNotFound
}

func (r *convStore) Create(_ context.Context, hallID, fromID, toID uuid.UUID) (*domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv := &domain.Conversation{ID: uuid.New(), HallID: hallID, FromID: fromID, ToID: toID, CreatedAt: time.Now().UTC()}
	r.convs = append(r.convs, conv)
	out := *conv
	return &out, nil
}

func (r *convStore) AppendMessage(_ context.Context, message *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAppend {
		return errors.New("connection refused")
	}
	r.messages[message.ConversationID] = append(r.messages[message.ConversationID], *message)
	return nil
}

func (r *convStore) ListMessages(_ context.Context, conversationID uuid.UUID) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Message, len(r.messages[conversationID]))
	copy(out, r.messages[conversationID])
	return out, nil
}

// rxFrame keeps Data raw so each test decodes per event type.
type rxFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type chatFixture struct {
	hub      *Hub
	server   *httptest.Server
	store    *convStore
	hallID   uuid.UUID
	customer domain.Identity
	manager  domain.Identity
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()

	hallID := uuid.New()
	customer := domain.Identity{UserID: uuid.New(), Name: "Budi", Role: domain.RoleCustomer}
	manager := domain.Identity{UserID: uuid.New(), Name: "Sari", Role: domain.RoleManager}

	mockHalls := mocks.NewHallRepository(t)
	mockHalls.On("GetByID", mock.Anything, hallID).Return(&domain.Hall{ID: hallID, ManagerID: manager.UserID}, nil).Maybe()
	mockUsers := mocks.NewUserRepository(t)
	mockUsers.On("GetByID", mock.Anything, customer.UserID).Return(&domain.User{ID: customer.UserID, Role: domain.RoleCustomer}, nil).Maybe()

	store := newConvStore()
	chat := services.NewChatService(store, mockHalls, mockUsers, zap.NewNop())

	verifier := stubVerifier{identities: map[string]domain.Identity{
		"customer-token": customer,
		"manager-token":  manager,
	}}

	hub := NewHub(zap.NewNop())
	handler := NewHandler(hub, chat, verifier, zap.NewNop())

	server := httptest.NewServer(http.HandlerFunc(handler.Handle))
	t.Cleanup(server.Close)

	return &chatFixture{
		hub:      hub,
		server:   server,
		store:    store,
		hallID:   hallID,
		customer: customer,
		manager:  manager,
	}
}

func (f *chatFixture) dial(t *testing.T, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) rxFrame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame rxFrame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func sendEvent(t *testing.T, conn *websocket.Conn, eventType string, payload any) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(Envelope{Type: eventType, Data: data}))
}

func waitOnline(t *testing.T, hub *Hub, userID uuid.UUID) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		n := len(hub.personal[userID])
		hub.mu.RUnlock()
		if n > 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("session for %s never registered", userID)
}

func TestHandle_RejectsBadToken(t *testing.T) {
	f := newChatFixture(t)

	conn := f.dial(t, "forged-token")

	frame := readFrame(t, conn)
	assert.Equal(t, EventError, frame.Type)

	var payload errorPayload
	require.NoError(t, json.Unmarshal(frame.Data, &payload))
	assert.True(t, strings.HasPrefix(payload.Message, "Authentication error:"), payload.Message)

	// No membership was granted.
	f.hub.mu.RLock()
	defer f.hub.mu.RUnlock()
	assert.Empty(t, f.hub.joined)
}

func TestHandle_JoinDeliversHistoryToCallerOnly(t *testing.T) {
	f := newChatFixture(t)

	customer := f.dial(t, "customer-token")
	waitOnline(t, f.hub, f.customer.UserID)

	sendEvent(t, customer, EventJoinHallChat, joinPayload{HallID: f.hallID.String()})

	frame := readFrame(t, customer)
	require.Equal(t, EventChatHistory, frame.Type)

	var history historyPayload
	require.NoError(t, json.Unmarshal(frame.Data, &history))
	assert.Equal(t, f.hallID.String(), history.HallID)
	assert.NotEmpty(t, history.ChatID)
	assert.Empty(t, history.Messages)

	assert.Eventually(t, func() bool { return f.hub.RoomSize(f.hallID) == 1 }, 2*time.Second, 5*time.Millisecond)
}

func TestHandle_SendReachesRoomAndPersonalChannel(t *testing.T) {
	f := newChatFixture(t)

	customer := f.dial(t, "customer-token")
	waitOnline(t, f.hub, f.customer.UserID)
	sendEvent(t, customer, EventJoinHallChat, joinPayload{HallID: f.hallID.String()})
	readFrame(t, customer) // chat_history

	// Manager is connected but has not joined the hall room.
	manager := f.dial(t, "manager-token")
	waitOnline(t, f.hub, f.manager.UserID)

	sendEvent(t, customer, EventSendMessage, sendPayload{HallID: f.hallID.String(), Text: "is the evening slot free?"})

	for _, conn := range []*websocket.Conn{customer, manager} {
		frame := readFrame(t, conn)
		require.Equal(t, EventNewMessage, frame.Type)

		var payload newMessagePayload
		require.NoError(t, json.Unmarshal(frame.Data, &payload))
		assert.Equal(t, f.hallID.String(), payload.HallID)
		assert.Equal(t, "is the evening slot free?", payload.Message.Text)
		assert.Equal(t, f.customer.UserID, payload.Message.From.ID)
		assert.Equal(t, domain.RoleCustomer, payload.Message.From.Role)
	}
}

func TestHandle_ManagerReplyInRoom(t *testing.T) {
	f := newChatFixture(t)

	customer := f.dial(t, "customer-token")
	waitOnline(t, f.hub, f.customer.UserID)
	sendEvent(t, customer, EventJoinHallChat, joinPayload{HallID: f.hallID.String()})
	readFrame(t, customer) // chat_history

	manager := f.dial(t, "manager-token")
	waitOnline(t, f.hub, f.manager.UserID)
	sendEvent(t, manager, EventJoinHallChat, joinPayload{HallID: f.hallID.String(), WithUserID: f.customer.UserID.String()})
	readFrame(t, manager) // chat_history

	sendEvent(t, manager, EventSendMessage, sendPayload{
		HallID:   f.hallID.String(),
		Text:     "yes, still open",
		ToUserID: f.customer.UserID.String(),
	})

	frame := readFrame(t, customer)
	require.Equal(t, EventNewMessage, frame.Type)

	var payload newMessagePayload
	require.NoError(t, json.Unmarshal(frame.Data, &payload))
	assert.Equal(t, domain.RoleManager, payload.Message.From.Role)
	assert.Equal(t, "yes, still open", payload.Message.Text)
}

func TestHandle_PersistenceFailureStaysWithSender(t *testing.T) {
	f := newChatFixture(t)

	customer := f.dial(t, "customer-token")
	waitOnline(t, f.hub, f.customer.UserID)
	sendEvent(t, customer, EventJoinHallChat, joinPayload{HallID: f.hallID.String()})
	readFrame(t, customer) // chat_history

	manager := f.dial(t, "manager-token")
	waitOnline(t, f.hub, f.manager.UserID)

	f.store.mu.Lock()
	f.store.failAppend = true
	f.store.mu.Unlock()

	sendEvent(t, customer, EventSendMessage, sendPayload{HallID: f.hallID.String(), Text: "hello?"})

	frame := readFrame(t, customer)
	assert.Equal(t, EventError, frame.Type)

	var payload errorPayload
	require.NoError(t, json.Unmarshal(frame.Data, &payload))
	assert.Equal(t, "internal error", payload.Message)

	// Nothing was broadcast.
	manager.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var stray rxFrame
	err := manager.ReadJSON(&stray)
	require.Error(t, err)
}

func TestHandle_EmptyMessageRejected(t *testing.T) {
	f := newChatFixture(t)

	customer := f.dial(t, "customer-token")
	waitOnline(t, f.hub, f.customer.UserID)

	sendEvent(t, customer, EventSendMessage, sendPayload{HallID: f.hallID.String(), Text: "   "})

	frame := readFrame(t, customer)
	assert.Equal(t, EventError, frame.Type)

	var payload errorPayload
	require.NoError(t, json.Unmarshal(frame.Data, &payload))
	assert.Equal(t, domain.ErrEmptyMessage.Error(), payload.Message)
}

func TestHandle_UnknownEvent(t *testing.T) {
	f := newChatFixture(t)

	customer := f.dial(t, "customer-token")
	waitOnline(t, f.hub, f.customer.UserID)

	sendEvent(t, customer, "subscribe_everything", struct{}{})

	frame := readFrame(t, customer)
	assert.Equal(t, EventError, frame.Type)
}
