package models

import "time"

// Message is the chat message payload as delivered over both the HTTP
// history endpoint and the realtime broadcast. User is nil when the author
// account no longer exists.
type Message struct {
	ID        int            `json:"pk"`
	User      *MiniUser      `json:"user"`
	Event     int            `json:"event"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Parent    *MessageParent `json:"parent"`
	LikedBy   []*MiniUser    `json:"liked_by"`
}

// MessageParent is the reply-target summary nested inside Message.
type MessageParent struct {
	ID      int       `json:"pk"`
	Content string    `json:"content"`
	User    *MiniUser `json:"user"`
}

type CreateMessageRequest struct {
	Content string `json:"content" validate:"required"`
	Event   int    `json:"event" validate:"required"`
	Parent  *int   `json:"parent"`
}
