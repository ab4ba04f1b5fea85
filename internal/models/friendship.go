package models

import "time"

type FriendRequestStatus int

const (
	FriendRequestPending FriendRequestStatus = iota
	FriendRequestAccepted
	FriendRequestRefused
)

type FriendRequest struct {
	ID       int                 `json:"id"`
	Status   FriendRequestStatus `json:"status"`
	Date     time.Time           `json:"date"`
	FromUser *MiniUser           `json:"from_user"`
	ToUser   *MiniUser           `json:"to_user"`
}

type Friendship struct {
	ID     int       `json:"id"`
	Date   time.Time `json:"date"`
	Friend *MiniUser `json:"friend"`
}

type SendFriendRequestRequest struct {
	Username string `json:"username" validate:"required"`
}

type RespondFriendRequestRequest struct {
	Status FriendRequestStatus `json:"status" validate:"oneof=1 2"`
}
