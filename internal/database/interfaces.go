package database

import (
	"context"
	"errors"
	"time"

	"flashback-app/internal/models"
)

// ErrNotFound covers both missing rows and writes rejected because a
// referenced row does not exist. Callers on the realtime path treat it as
// a validation failure and stay silent.
var ErrNotFound = errors.New("not found")

// ErrDuplicate reports a write rejected by a uniqueness constraint, such
// as inviting the same user to an event twice.
var ErrDuplicate = errors.New("already exists")

type UserRepository interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	CreateUser(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
}

type EventRepository interface {
	CreateEvent(ctx context.Context, req *models.CreateEventRequest, hostID int) (*models.Event, error)
	GetEventByID(ctx context.Context, id int) (*models.Event, error)
	ListUserEvents(ctx context.Context, userID int) ([]*models.Event, error)
	CloseEvent(ctx context.Context, eventID int, at time.Time) error

	// AddMember has get-or-create semantics: adding an existing member is
	// a no-op and reports created=false.
	AddMember(ctx context.Context, eventID, userID int, role models.EventMemberRole, addedBy int) (created bool, err error)
	RemoveMember(ctx context.Context, eventID, userID int) error
	IsMember(ctx context.Context, eventID, userID int) (bool, error)
	ListMembers(ctx context.Context, eventID int) ([]*models.EventMember, error)

	CreateInvite(ctx context.Context, eventID, userID, invitedBy int) (*models.EventInvite, error)
	GetInviteByID(ctx context.Context, id int) (*models.EventInvite, error)
	ListUserInvites(ctx context.Context, userID int) ([]*models.EventInvite, error)
	DeleteInvite(ctx context.Context, id int) error

	GetOrCreateInviteCode(ctx context.Context, eventID int) (*models.EventInviteCode, error)
	GetEventByInviteCode(ctx context.Context, code string) (*models.Event, error)
}

type MessageRepository interface {
	CreateMessage(ctx context.Context, req *models.CreateMessageRequest, userID int) (*models.Message, error)
	GetMessageByID(ctx context.Context, id int) (*models.Message, error)
	// ToggleLike flips the (user, message) like record and returns the
	// message with its refreshed like list.
	ToggleLike(ctx context.Context, messageID, userID int) (*models.Message, error)
	ListEventMessages(ctx context.Context, eventID, limit int, before time.Time) ([]*models.Message, error)
}

type FriendshipRepository interface {
	CreateFriendRequest(ctx context.Context, fromID, toID int) (*models.FriendRequest, error)
	GetFriendRequestByID(ctx context.Context, id int) (*models.FriendRequest, error)
	ListFriendRequests(ctx context.Context, toUserID int) ([]*models.FriendRequest, error)
	DeleteFriendRequest(ctx context.Context, id int) error
	CreateFriendship(ctx context.Context, fromID, toID int) error
	ListFriends(ctx context.Context, userID int) ([]*models.Friendship, error)
}

type FlashbackRepository interface {
	CreateFlashback(ctx context.Context, eventID, userID int, mediaKey string, visibility models.FlashbackVisibility) (*models.Flashback, error)
	SetFlashbackNSFW(ctx context.Context, id int, isNSFW bool) error
	ListEventFlashbacks(ctx context.Context, eventID int) ([]*models.Flashback, error)
}

type Database interface {
	UserRepository
	EventRepository
	MessageRepository
	FriendshipRepository
	FlashbackRepository
	Close() error
}
