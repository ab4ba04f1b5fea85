package services

import (
	"context"
	"fmt"

	"flashback-app/internal/database"
	"flashback-app/internal/models"
	"flashback-app/internal/realtime"
)

type FriendshipService struct {
	db       database.Database
	notifier *realtime.Notifier
}

func NewFriendshipService(db database.Database, notifier *realtime.Notifier) *FriendshipService {
	return &FriendshipService{db: db, notifier: notifier}
}

// SendRequest creates a pending friend request and pushes a friend_request
// notification to the target's live sessions.
func (s *FriendshipService) SendRequest(ctx context.Context, fromID int, username string) (*models.FriendRequest, error) {
	target, err := s.db.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("user not found")
	}
	if target.ID == fromID {
		return nil, fmt.Errorf("cannot befriend yourself")
	}

	request, err := s.db.CreateFriendRequest(ctx, fromID, target.ID)
	if err != nil {
		if err == database.ErrDuplicate {
			return nil, fmt.Errorf("request already sent")
		}
		return nil, fmt.Errorf("failed to create friend request: %w", err)
	}

	s.notifier.SendNotification(target.ID, models.NewFriendRequestNotification(request.FromUser))
	return request, nil
}

func (s *FriendshipService) ListRequests(ctx context.Context, userID int) ([]*models.FriendRequest, error) {
	return s.db.ListFriendRequests(ctx, userID)
}

// RespondRequest accepts or refuses a pending request addressed to userID.
// Accepting creates the friendship; the request is deleted either way.
func (s *FriendshipService) RespondRequest(ctx context.Context, requestID, userID int, status models.FriendRequestStatus) error {
	request, err := s.db.GetFriendRequestByID(ctx, requestID)
	if err != nil {
		return fmt.Errorf("friend request not found")
	}
	if request.ToUser.ID != userID {
		return fmt.Errorf("forbidden - not your friend request")
	}

	switch status {
	case models.FriendRequestAccepted:
		if err := s.db.CreateFriendship(ctx, request.FromUser.ID, request.ToUser.ID); err != nil {
			return err
		}
	case models.FriendRequestRefused:
		// fall through to delete
	default:
		return fmt.Errorf("invalid friend request response")
	}

	return s.db.DeleteFriendRequest(ctx, requestID)
}

func (s *FriendshipService) ListFriends(ctx context.Context, userID int) ([]*models.Friendship, error) {
	return s.db.ListFriends(ctx, userID)
}
