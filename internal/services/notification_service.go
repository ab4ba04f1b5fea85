package services

import (
	"context"
	"fmt"

	"flashback-app/internal/database"
	"flashback-app/internal/models"
)

type NotificationService struct {
	db database.Database
}

func NewNotificationService(db database.Database) *NotificationService {
	return &NotificationService{db: db}
}

// ListUserNotifications rebuilds the user's pending notifications from the
// store: one per open friend request, one per open event invite. The
// realtime push and this listing are the same payloads, so a client can
// reconcile after reconnecting.
func (s *NotificationService) ListUserNotifications(ctx context.Context, userID int) ([]models.Notification, error) {
	requests, err := s.db.ListFriendRequests(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friend requests: %w", err)
	}
	invites, err := s.db.ListUserInvites(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}

	notifications := make([]models.Notification, 0, len(requests)+len(invites))
	for _, request := range requests {
		notifications = append(notifications, models.NewFriendRequestNotification(request.FromUser))
	}
	for _, invite := range invites {
		notifications = append(notifications, models.NewEventInvitationNotification(invite.InvitedBy, invite.Event))
	}
	return notifications, nil
}
