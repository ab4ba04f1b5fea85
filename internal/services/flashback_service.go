package services

import (
	"context"
	"fmt"
	"time"

	"flashback-app/internal/database"
	"flashback-app/internal/models"
	"flashback-app/internal/nsfw"
	"flashback-app/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const scanTimeout = 30 * time.Second

type FlashbackService struct {
	db       database.Database
	scanner  nsfw.Scanner
	validate *validator.Validate
}

func NewFlashbackService(db database.Database, scanner nsfw.Scanner) *FlashbackService {
	return &FlashbackService{
		db:       db,
		scanner:  scanner,
		validate: validator.New(),
	}
}

// CreateFlashback records a flashback for an event member and submits its
// media for classification in the background. The caller gets the
// flashback back immediately; is_nsfw flips later if the scan says so.
func (s *FlashbackService) CreateFlashback(ctx context.Context, eventID, userID int, req *models.CreateFlashbackRequest) (*models.Flashback, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid flashback: %w", err)
	}
	mediaKey := uuid.New().String()

	flashback, err := s.db.CreateFlashback(ctx, eventID, userID, mediaKey, req.Visibility)
	if err != nil {
		if err == database.ErrNotFound {
			return nil, fmt.Errorf("forbidden - not a member of this event")
		}
		return nil, fmt.Errorf("failed to create flashback: %w", err)
	}

	go s.scan(flashback.ID, mediaKey)

	return flashback, nil
}

func (s *FlashbackService) ListEventFlashbacks(ctx context.Context, eventID, userID int) ([]*models.Flashback, error) {
	isMember, err := s.db.IsMember(ctx, eventID, userID)
	if err != nil {
		return nil, fmt.Errorf("database error")
	}
	if !isMember {
		return nil, fmt.Errorf("forbidden - not a member of this event")
	}
	return s.db.ListEventFlashbacks(ctx, eventID)
}

func (s *FlashbackService) scan(flashbackID int, mediaKey string) {
	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	result, err := s.scanner.Scan(ctx, mediaKey)
	if err != nil {
		logger.Error().Err(err).Int("flashback_id", flashbackID).Msg("nsfw scan failed")
		return
	}
	if !result.IsNSFW {
		return
	}

	if err := s.db.SetFlashbackNSFW(ctx, flashbackID, true); err != nil {
		logger.Error().Err(err).Int("flashback_id", flashbackID).Msg("failed to flag flashback")
		return
	}
	logger.Info().Int("flashback_id", flashbackID).Strs("categories", result.Categories).Msg("flashback flagged as nsfw")
}
