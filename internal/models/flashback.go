package models

import "time"

type FlashbackVisibility int

const (
	FlashbackPublic FlashbackVisibility = iota
	FlashbackPrivate
)

// Flashback is a piece of ephemeral media posted by an event member.
// MediaKey addresses the stored media object; upload and rendering live
// outside this service.
type Flashback struct {
	ID         int                 `json:"id"`
	EventID    int                 `json:"event"`
	User       *MiniUser           `json:"user"`
	MediaKey   string              `json:"media_key"`
	Visibility FlashbackVisibility `json:"visibility"`
	IsNSFW     bool                `json:"is_nsfw"`
	CreatedAt  time.Time           `json:"created_at"`
}

type CreateFlashbackRequest struct {
	Visibility FlashbackVisibility `json:"visibility" validate:"oneof=0 1"`
}
