package realtime

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"flashback-app/internal/database"
	"flashback-app/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

// Handlers implements the business side of the inbound route table.
// Invalid input aborts silently: the transport has no per-message
// acknowledgment, so the client contract is fire and forget.
type Handlers struct {
	store    Store
	validate *validator.Validate
}

func NewHandlers(store Store) *Handlers {
	return &Handlers{
		store:    store,
		validate: validator.New(),
	}
}

// Routes builds the inbound route table.
func (h *Handlers) Routes() *Router {
	r := NewRouter()
	r.Handle(RequestMessage, h.SendMessage)
	r.Handle(RequestLikeUnlikeMessage, h.LikeUnlikeMessage)
	return r
}

// SendMessage persists a chat message attributed to the session's user and
// broadcasts it to the owning event's chat group.
func (h *Handlers) SendMessage(ctx context.Context, s *Session, data map[string]any) error {
	var req models.CreateMessageRequest
	if !decodeData(data, &req) {
		return nil
	}
	if err := h.validate.Struct(&req); err != nil {
		return nil
	}

	message, err := h.store.CreateMessage(ctx, &req, s.User().ID)
	if errors.Is(err, database.ErrNotFound) {
		// Unknown event or parent: a validation failure, not a fault.
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	return s.Broadcast(EventChatGroup(message.Event), ResponseMessage, message)
}

// LikeUnlikeMessage strictly toggles the (user, message) like record and
// broadcasts the updated message either way. Authorization is membership
// in the message's chat group, checked against the session's own
// subscription set rather than a fresh store query.
func (h *Handlers) LikeUnlikeMessage(ctx context.Context, s *Session, data map[string]any) error {
	id, ok := parseMessageID(data["id"])
	if !ok {
		return nil
	}

	message, err := h.store.GetMessageByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load message: %w", err)
	}

	group := EventChatGroup(message.Event)
	if !s.InGroup(group) {
		return nil
	}

	updated, err := h.store.ToggleLike(ctx, message.ID, s.User().ID)
	if err != nil {
		return fmt.Errorf("failed to toggle like: %w", err)
	}

	return s.Broadcast(group, ResponseMessage, updated)
}

// decodeData maps the validated envelope data onto a request struct; any
// shape mismatch rejects the frame.
func decodeData(data map[string]any, out any) bool {
	raw, err := json.Marshal(data)
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

// parseMessageID accepts a JSON number or a numeric string, matching the
// int() coercion clients have come to rely on.
func parseMessageID(v any) (int, bool) {
	switch id := v.(type) {
	case float64:
		if id != math.Trunc(id) {
			return 0, false
		}
		return int(id), true
	case string:
		n, err := strconv.Atoi(id)
		if err != nil {
			return 0, false
		}
		return n, true
	case json.Number:
		n, err := id.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
