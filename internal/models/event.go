package models

import (
	"encoding/json"
	"time"
)

type EventStatus int

const (
	EventStatusOpened EventStatus = iota
	EventStatusActivated
	EventStatusClosed
)

type EventViewersMode int

const (
	ViewersOnlyMembers EventViewersMode = iota
	ViewersAllFriends
	ViewersMutualFriends
)

type Event struct {
	ID          int              `json:"pk"`
	Title       string           `json:"title"`
	Emoji       string           `json:"emoji"`
	StartAt     time.Time        `json:"start_at"`
	EndAt       time.Time        `json:"end_at"`
	ViewersMode EventViewersMode `json:"viewers_mode"`
	AllowNSFW   bool             `json:"allow_nsfw"`
	CreatedAt   time.Time        `json:"created_at"`
}

// Status is derived from the clock, never stored.
func (e *Event) Status(now time.Time) EventStatus {
	if now.Before(e.StartAt) {
		return EventStatusOpened
	}
	if now.After(e.EndAt) {
		return EventStatusClosed
	}
	return EventStatusActivated
}

// MarshalJSON adds the derived status so every event payload carries it.
func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event
	return json.Marshal(struct {
		alias
		Status EventStatus `json:"status"`
	}{alias(e), e.Status(time.Now())})
}

// MiniEvent is the compact event payload embedded in notifications.
type MiniEvent struct {
	ID      int       `json:"pk"`
	Title   string    `json:"title"`
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
	Emoji   string    `json:"emoji"`
}

func (e *Event) Mini() *MiniEvent {
	if e == nil {
		return nil
	}
	return &MiniEvent{
		ID:      e.ID,
		Title:   e.Title,
		StartAt: e.StartAt,
		EndAt:   e.EndAt,
		Emoji:   e.Emoji,
	}
}

type EventMemberRole int

const (
	RoleHost EventMemberRole = iota
	RoleGuest
)

type EventMember struct {
	ID      int             `json:"id"`
	EventID int             `json:"event"`
	Role    EventMemberRole `json:"role"`
	User    *MiniUser       `json:"user"`
	AddedBy *MiniUser       `json:"added_by"`
}

type EventInviteStatus int

const (
	InvitePending EventInviteStatus = iota
	InviteAccept
	InviteDecline
)

type EventInvite struct {
	ID        int               `json:"id"`
	EventID   int               `json:"-"`
	UserID    int               `json:"-"`
	Status    EventInviteStatus `json:"status"`
	Date      time.Time         `json:"date"`
	Event     *MiniEvent        `json:"event"`
	InvitedBy *MiniUser         `json:"invited_by"`
}

type EventInviteCode struct {
	Code    string `json:"code"`
	EventID int    `json:"event"`
}

type CreateEventRequest struct {
	Title       string           `json:"title" validate:"required,max=15"`
	Emoji       string           `json:"emoji" validate:"required,max=35"`
	StartAt     time.Time        `json:"start_at" validate:"required"`
	EndAt       time.Time        `json:"end_at" validate:"required,gtfield=StartAt"`
	ViewersMode EventViewersMode `json:"viewers_mode"`
	AllowNSFW   bool             `json:"allow_nsfw"`
}

type InviteUserRequest struct {
	Username string `json:"username" validate:"required"`
}

type RespondInviteRequest struct {
	Status EventInviteStatus `json:"status" validate:"oneof=1 2"`
}
