package services

import (
	"context"
	"testing"
	"time"

	"flashback-app/internal/database"
	"flashback-app/internal/models"
	"flashback-app/internal/nsfw"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *stubDB) CreateFlashback(ctx context.Context, eventID, userID int, mediaKey string, visibility models.FlashbackVisibility) (*models.Flashback, error) {
	if isMember, _ := s.IsMember(ctx, eventID, userID); !isMember {
		return nil, database.ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flashbackCount++
	return &models.Flashback{
		ID:         s.flashbackCount,
		EventID:    eventID,
		User:       &models.MiniUser{ID: userID},
		MediaKey:   mediaKey,
		Visibility: visibility,
	}, nil
}

func (s *stubDB) SetFlashbackNSFW(ctx context.Context, id int, isNSFW bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flaggedFlashbacks = append(s.flaggedFlashbacks, id)
	return nil
}

func (s *stubDB) flagged() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.flaggedFlashbacks))
	copy(out, s.flaggedFlashbacks)
	return out
}

func (s *stubDB) flashbacks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flashbackCount
}

type stubScanner struct {
	result nsfw.Classification
}

func (s stubScanner) Scan(ctx context.Context, mediaKey string) (nsfw.Classification, error) {
	return s.result, nil
}

func TestCreateFlashbackRejectsInvalidVisibility(t *testing.T) {
	db := newStubDB()
	db.members[9] = []*models.EventMember{{User: &models.MiniUser{ID: 3}, Role: models.RoleHost}}
	svc := NewFlashbackService(db, nsfw.Disabled{})

	_, err := svc.CreateFlashback(context.Background(), 9, 3, &models.CreateFlashbackRequest{
		Visibility: models.FlashbackVisibility(5),
	})
	require.Error(t, err)
	assert.Zero(t, db.flashbacks())
}

func TestCreateFlashbackRequiresMembership(t *testing.T) {
	svc := NewFlashbackService(newStubDB(), nsfw.Disabled{})

	_, err := svc.CreateFlashback(context.Background(), 9, 3, &models.CreateFlashbackRequest{
		Visibility: models.FlashbackPublic,
	})
	assert.EqualError(t, err, "forbidden - not a member of this event")
}

func TestCreateFlashbackFlagsNSFWMedia(t *testing.T) {
	db := newStubDB()
	db.members[9] = []*models.EventMember{{User: &models.MiniUser{ID: 3}, Role: models.RoleHost}}
	scanner := stubScanner{result: nsfw.Classification{IsNSFW: true, Categories: []string{"explicit"}}}
	svc := NewFlashbackService(db, scanner)

	flashback, err := svc.CreateFlashback(context.Background(), 9, 3, &models.CreateFlashbackRequest{
		Visibility: models.FlashbackPrivate,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, flashback.MediaKey)
	assert.Equal(t, models.FlashbackPrivate, flashback.Visibility)

	assert.Eventually(t, func() bool {
		flagged := db.flagged()
		return len(flagged) == 1 && flagged[0] == flashback.ID
	}, time.Second, 10*time.Millisecond)
}

func TestCreateFlashbackSafeMediaStaysUnflagged(t *testing.T) {
	db := newStubDB()
	db.members[9] = []*models.EventMember{{User: &models.MiniUser{ID: 3}, Role: models.RoleHost}}
	svc := NewFlashbackService(db, nsfw.Disabled{})

	_, err := svc.CreateFlashback(context.Background(), 9, 3, &models.CreateFlashbackRequest{
		Visibility: models.FlashbackPublic,
	})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, db.flagged())
}
