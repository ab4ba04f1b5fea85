package realtime

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"flashback-app/internal/models"
	"flashback-app/internal/registry"
	"flashback-app/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

// Store is the slice of the domain store the realtime layer consumes.
// *database.PostgresDB satisfies it.
type Store interface {
	ListUserEvents(ctx context.Context, userID int) ([]*models.Event, error)
	CreateMessage(ctx context.Context, req *models.CreateMessageRequest, userID int) (*models.Message, error)
	GetMessageByID(ctx context.Context, id int) (*models.Message, error)
	ToggleLike(ctx context.Context, messageID, userID int) (*models.Message, error)
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

var errSessionClosed = errors.New("session closed")

// Conn is the subset of *websocket.Conn the session needs; tests swap in
// an in-memory implementation.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Options configures a session's runtime behavior.
//
// StrictErrors is the production policy: handler errors and panics are
// logged with the offending discriminator and the connection survives.
// With it off, a failing handler tears the session down so bugs surface
// during development.
type Options struct {
	StrictErrors bool
	SendBuffer   int
}

// Session binds one live websocket connection to its group subscriptions.
// joinedGroups is owned by the session: connect-time bootstrap, directive
// handling and teardown all go through the session's own methods, and
// everything else reaches the session only through the registry.
type Session struct {
	user   *models.User
	conn   Conn
	reg    registry.Registry
	router *Router
	store  Store
	strict bool

	key  string
	send chan []byte
	done chan struct{}

	mu     sync.Mutex
	joined map[string]struct{}
	closed bool

	closeOnce sync.Once
}

func NewSession(user *models.User, conn Conn, reg registry.Registry, router *Router, store Store, opts Options) (*Session, error) {
	key, err := generateSessionKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session key: %w", err)
	}

	buffer := opts.SendBuffer
	if buffer <= 0 {
		buffer = 256
	}

	return &Session{
		user:   user,
		conn:   conn,
		reg:    reg,
		router: router,
		store:  store,
		strict: opts.StrictErrors,
		key:    key,
		send:   make(chan []byte, buffer),
		done:   make(chan struct{}),
		joined: make(map[string]struct{}),
	}, nil
}

// Key implements registry.Handle.
func (s *Session) Key() string {
	return s.key
}

// Deliver implements registry.Handle. It never blocks: a full buffer or a
// closed session drops the frame.
func (s *Session) Deliver(frame []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.send <- frame:
		return true
	default:
		return false
	}
}

func (s *Session) User() *models.User {
	return s.user
}

// InGroup reports membership against the session's local subscription set.
// Like/unlike authorization deliberately checks this cache instead of the
// store; see the handler.
func (s *Session) InGroup(group string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.joined[group]
	return ok
}

// JoinedGroups returns a snapshot of the subscription set.
func (s *Session) JoinedGroups() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	groups := make([]string, 0, len(s.joined))
	for group := range s.joined {
		groups = append(groups, group)
	}
	return groups
}

// joinGroup subscribes and records the group. A directive frame can still
// be in flight when the session tears down, so the closed flag is checked
// on both sides of the registry call; losing the race to Close undoes the
// subscription instead of leaving a dead member behind.
func (s *Session) joinGroup(group string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errSessionClosed
	}
	s.mu.Unlock()

	if err := s.reg.Subscribe(group, s); err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		if err := s.reg.Unsubscribe(group, s); err != nil {
			logger.Error().Err(err).Str("group", group).Msg("group discard failed")
		}
		return errSessionClosed
	}
	s.joined[group] = struct{}{}
	s.mu.Unlock()
	return nil
}

// JoinInitialGroups subscribes the session to every group it starts with:
// one chat group per current event membership, the global notification
// group, and the user's private group. A failed join is logged and
// skipped, never fatal; the connection proceeds with whatever subset
// succeeded. Callers complete the handshake only after this returns.
func (s *Session) JoinInitialGroups(ctx context.Context) {
	events, err := s.store.ListUserEvents(ctx, s.user.ID)
	if err != nil {
		logger.Error().Err(err).Int("user_id", s.user.ID).Msg("failed to list events for group bootstrap")
	}
	for _, event := range events {
		group := EventChatGroup(event.ID)
		if err := s.joinGroup(group); err != nil {
			logger.Error().Err(err).Str("group", group).Msg("group join failed")
			continue
		}
	}

	if err := s.joinGroup(NotificationGroup); err != nil {
		logger.Error().Err(err).Str("group", NotificationGroup).Msg("group join failed")
	}
	if err := s.joinGroup(UserGroup(s.user.ID)); err != nil {
		logger.Error().Err(err).Str("group", UserGroup(s.user.ID)).Msg("group join failed")
	}
}

// Run drives the session until the connection dies, then tears it down.
func (s *Session) Run() {
	go s.writePump()
	s.readPump()
}

// Close drains every group subscription and closes the connection. Safe to
// call more than once and from any goroutine. Each group is removed from
// the set as it is processed, so a failure mid-drain leaves a consistent
// partial state instead of a stale full set.
func (s *Session) Close(reason string) {
	s.closeOnce.Do(func() {
		close(s.done)

		s.mu.Lock()
		s.closed = true
		for group := range s.joined {
			if err := s.reg.Unsubscribe(group, s); err != nil {
				logger.Error().Err(err).Str("group", group).Msg("group discard failed")
			}
			delete(s.joined, group)
		}
		s.mu.Unlock()

		s.conn.Close()
		logger.Info().Str("session", s.key).Int("user_id", s.user.ID).Str("reason", reason).Msg("session closed")
	})
}

func (s *Session) readPump() {
	defer s.Close("read pump exit")

	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error().Err(err).Str("session", s.key).Msg("websocket read error")
			}
			return
		}

		if err := s.receive(context.Background(), raw); err != nil {
			logger.Error().Err(err).Str("session", s.key).Msg("handler failed, closing session")
			return
		}
	}
}

// receive parses one inbound frame and dispatches it. Anything malformed
// (type not an integer, data not an object, unknown discriminator) is
// dropped without a reply; the protocol has no error frames.
func (s *Session) receive(ctx context.Context, raw []byte) error {
	var env struct {
		Type json.RawMessage `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil
	}

	var requestType int
	if len(env.Type) == 0 || json.Unmarshal(env.Type, &requestType) != nil {
		return nil
	}

	var data map[string]any
	if len(env.Data) == 0 || json.Unmarshal(env.Data, &data) != nil || data == nil {
		return nil
	}

	handler, ok := s.router.Lookup(requestType)
	if !ok {
		return nil
	}

	return s.dispatch(ctx, requestType, handler, data)
}

func (s *Session) dispatch(ctx context.Context, requestType int, handler HandlerFunc, data map[string]any) (err error) {
	if !s.strict {
		return handler(ctx, s, data)
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Int("request_type", requestType).Int("user_id", s.user.ID).
				Interface("panic", r).Msg("handler panicked")
			err = nil
		}
	}()

	if herr := handler(ctx, s, data); herr != nil {
		logger.Error().Err(herr).Int("request_type", requestType).Int("user_id", s.user.ID).
			Msg("handler failed")
	}
	return nil
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.Close("write pump exit")
	}()

	for {
		select {
		case <-s.done:
			return

		case frame := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.handleFrame(frame); err != nil {
				logger.Error().Err(err).Str("session", s.key).Msg("websocket write error")
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleFrame consumes one registry frame on the session's own goroutine:
// chat_message frames have their inner envelope written to the socket,
// add_to_group directives mutate the subscription set and produce no
// socket traffic.
func (s *Session) handleFrame(frame []byte) error {
	var rf registryFrame
	if err := json.Unmarshal(frame, &rf); err != nil {
		logger.Warn().Err(err).Str("session", s.key).Msg("malformed registry frame")
		return nil
	}

	switch rf.Type {
	case frameChatMessage:
		return s.conn.WriteMessage(websocket.TextMessage, rf.Data)
	case frameAddToGroup:
		s.onDirective(rf.Data)
		return nil
	default:
		logger.Debug().Str("frame_type", rf.Type).Msg("ignoring unknown registry frame")
		return nil
	}
}

// onDirective applies a membership directive: subscribe to the chat group
// of the referenced event. A directive without an event id is ignored, and
// no reply goes anywhere.
func (s *Session) onDirective(data json.RawMessage) {
	var d directivePayload
	if err := json.Unmarshal(data, &d); err != nil || d.EventID == nil {
		return
	}

	group := EventChatGroup(*d.EventID)
	if err := s.joinGroup(group); err != nil {
		logger.Error().Err(err).Str("group", group).Int("user_id", s.user.ID).Msg("directive group join failed")
		return
	}
	logger.Debug().Str("group", group).Int("user_id", s.user.ID).Msg("joined group by directive")
}

// Broadcast publishes a client-facing envelope to a group through the
// registry.
func (s *Session) Broadcast(group string, innerType int, payload any) error {
	frame, err := OutboundFrame{InnerType: innerType, Payload: payload}.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode broadcast: %w", err)
	}
	return s.reg.Publish(group, frame)
}

func generateSessionKey() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", bytes), nil
}
