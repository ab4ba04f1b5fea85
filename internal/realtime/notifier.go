package realtime

import (
	"flashback-app/internal/models"
	"flashback-app/internal/registry"
	"flashback-app/pkg/logger"
)

// Notifier is the entry point for domain logic outside any connection's
// lifetime. Everything here is fire and forget: delivery is best effort to
// whatever sessions are live right now, and no acknowledgment flows back.
type Notifier struct {
	reg registry.Registry
}

func NewNotifier(reg registry.Registry) *Notifier {
	return &Notifier{reg: reg}
}

// NotifyEventJoin tells all of a user's live sessions to subscribe to an
// event's chat group. Called when membership is created out of band, e.g.
// an accepted invite.
func (n *Notifier) NotifyEventJoin(userID, eventID int) {
	frame, err := EncodeDirective(eventID)
	if err != nil {
		logger.Error().Err(err).Int("event_id", eventID).Msg("failed to encode join directive")
		return
	}
	if err := n.reg.Publish(UserGroup(userID), frame); err != nil {
		logger.Error().Err(err).Int("user_id", userID).Int("event_id", eventID).Msg("failed to publish join directive")
	}
}

// SendNotification pushes a typed notification to a user's private group.
func (n *Notifier) SendNotification(userID int, notification models.Notification) {
	frame, err := OutboundFrame{InnerType: ResponseNotification, Payload: notification}.Encode()
	if err != nil {
		logger.Error().Err(err).Int("user_id", userID).Msg("failed to encode notification")
		return
	}
	if err := n.reg.Publish(UserGroup(userID), frame); err != nil {
		logger.Error().Err(err).Int("user_id", userID).Msg("failed to publish notification")
	}
}
