// Package nsfw defines the media classification collaborator. Scanning
// itself happens elsewhere; this service only submits jobs and applies the
// classification that comes back.
package nsfw

import "context"

type Classification struct {
	Categories []string
	IsNSFW     bool
}

type Scanner interface {
	Scan(ctx context.Context, mediaKey string) (Classification, error)
}

// Disabled classifies everything as safe. Used when no scanning backend
// is configured.
type Disabled struct{}

func (Disabled) Scan(ctx context.Context, mediaKey string) (Classification, error) {
	return Classification{}, nil
}
