package services

import (
	"context"
	"fmt"
	"time"

	"flashback-app/internal/database"
	"flashback-app/internal/models"
	"flashback-app/internal/realtime"

	"github.com/go-playground/validator/v10"
)

type EventService struct {
	db       database.Database
	notifier *realtime.Notifier
	validate *validator.Validate
}

func NewEventService(db database.Database, notifier *realtime.Notifier) *EventService {
	return &EventService{
		db:       db,
		notifier: notifier,
		validate: validator.New(),
	}
}

func (s *EventService) CreateEvent(ctx context.Context, req *models.CreateEventRequest, hostID int) (*models.Event, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid event: %w", err)
	}
	return s.db.CreateEvent(ctx, req, hostID)
}

func (s *EventService) GetEvent(ctx context.Context, eventID int) (*models.Event, error) {
	return s.db.GetEventByID(ctx, eventID)
}

func (s *EventService) ListUserEvents(ctx context.Context, userID int) ([]*models.Event, error) {
	return s.db.ListUserEvents(ctx, userID)
}

// CloseEvent ends the event now. Host only.
func (s *EventService) CloseEvent(ctx context.Context, eventID, userID int) error {
	host, err := s.eventHost(ctx, eventID)
	if err != nil {
		return err
	}
	if host == nil || host.User.ID != userID {
		return fmt.Errorf("forbidden - only the host can close an event")
	}
	return s.db.CloseEvent(ctx, eventID, time.Now())
}

func (s *EventService) LeaveEvent(ctx context.Context, eventID, userID int) error {
	if err := s.db.RemoveMember(ctx, eventID, userID); err != nil {
		return fmt.Errorf("not a member of this event")
	}
	return nil
}

func (s *EventService) ListMembers(ctx context.Context, eventID, userID int) ([]*models.EventMember, error) {
	if err := s.requireMember(ctx, eventID, userID); err != nil {
		return nil, err
	}
	return s.db.ListMembers(ctx, eventID)
}

// InviteUser creates a pending invite and pushes an event_invitation
// notification to the invited user's live sessions.
func (s *EventService) InviteUser(ctx context.Context, eventID, inviterID int, username string) (*models.EventInvite, error) {
	if err := s.requireMember(ctx, eventID, inviterID); err != nil {
		return nil, err
	}

	target, err := s.db.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("user not found")
	}
	if target.ID == inviterID {
		return nil, fmt.Errorf("cannot invite yourself")
	}

	invite, err := s.db.CreateInvite(ctx, eventID, target.ID, inviterID)
	if err != nil {
		if err == database.ErrDuplicate {
			return nil, fmt.Errorf("user already invited")
		}
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}

	s.notifier.SendNotification(target.ID, models.NewEventInvitationNotification(invite.InvitedBy, invite.Event))
	return invite, nil
}

func (s *EventService) ListUserInvites(ctx context.Context, userID int) ([]*models.EventInvite, error) {
	return s.db.ListUserInvites(ctx, userID)
}

// RespondInvite processes an accept or decline. Accepting creates the
// membership and fires the join directive at the user's live sessions so
// open connections pick up the new chat group without reconnecting; the
// invite is deleted either way.
func (s *EventService) RespondInvite(ctx context.Context, inviteID, userID int, status models.EventInviteStatus) error {
	invite, err := s.db.GetInviteByID(ctx, inviteID)
	if err != nil {
		return fmt.Errorf("invite not found")
	}
	if invite.UserID != userID {
		return fmt.Errorf("forbidden - not your invite")
	}

	switch status {
	case models.InviteAccept:
		created, err := s.db.AddMember(ctx, invite.EventID, userID, models.RoleGuest, invite.InvitedBy.ID)
		if err != nil {
			return fmt.Errorf("failed to add member: %w", err)
		}
		if created {
			s.notifier.NotifyEventJoin(userID, invite.EventID)
		}
	case models.InviteDecline:
		// fall through to delete
	default:
		return fmt.Errorf("invalid invite response")
	}

	return s.db.DeleteInvite(ctx, inviteID)
}

// GetInviteCode returns the event's shareable join code, creating it on
// first use. Member only.
func (s *EventService) GetInviteCode(ctx context.Context, eventID, userID int) (*models.EventInviteCode, error) {
	if err := s.requireMember(ctx, eventID, userID); err != nil {
		return nil, err
	}
	return s.db.GetOrCreateInviteCode(ctx, eventID)
}

// JoinByCode adds the user as a guest of the event behind the code and
// fires the join directive.
func (s *EventService) JoinByCode(ctx context.Context, code string, userID int) (*models.Event, error) {
	event, err := s.db.GetEventByInviteCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("invalid invite code")
	}

	addedBy := 0
	if host, err := s.eventHost(ctx, event.ID); err == nil && host != nil {
		addedBy = host.User.ID
	}

	created, err := s.db.AddMember(ctx, event.ID, userID, models.RoleGuest, addedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to join event: %w", err)
	}
	if created {
		s.notifier.NotifyEventJoin(userID, event.ID)
	}

	return event, nil
}

// ListMessages serves chat history, newest first. Member only.
func (s *EventService) ListMessages(ctx context.Context, eventID, userID, limit int, before time.Time) ([]*models.Message, error) {
	if err := s.requireMember(ctx, eventID, userID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	if before.IsZero() {
		before = time.Now()
	}
	return s.db.ListEventMessages(ctx, eventID, limit, before)
}

func (s *EventService) requireMember(ctx context.Context, eventID, userID int) error {
	isMember, err := s.db.IsMember(ctx, eventID, userID)
	if err != nil {
		return fmt.Errorf("database error")
	}
	if !isMember {
		return fmt.Errorf("forbidden - not a member of this event")
	}
	return nil
}

func (s *EventService) eventHost(ctx context.Context, eventID int) (*models.EventMember, error) {
	members, err := s.db.ListMembers(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("event not found")
	}
	for _, member := range members {
		if member.Role == models.RoleHost {
			return member, nil
		}
	}
	return nil, nil
}
