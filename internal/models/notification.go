package models

type NotificationType int

const (
	NotificationFriendRequest NotificationType = iota
	NotificationEventInvitation
)

// Notification is the typed payload pushed to a user's private realtime
// group and listed by the notifications endpoint.
type Notification struct {
	Type NotificationType `json:"type"`
	Data any              `json:"data"`
}

func NewFriendRequestNotification(from *MiniUser) Notification {
	return Notification{
		Type: NotificationFriendRequest,
		Data: map[string]any{"from_user": from},
	}
}

func NewEventInvitationNotification(invitedBy *MiniUser, event *MiniEvent) Notification {
	return Notification{
		Type: NotificationEventInvitation,
		Data: map[string]any{"invited_by": invitedBy, "event": event},
	}
}
