package database

import (
	"context"

	"flashback-app/internal/models"
)

// Flashback Repository Implementation
func (db *PostgresDB) CreateFlashback(ctx context.Context, eventID, userID int, mediaKey string, visibility models.FlashbackVisibility) (*models.Flashback, error) {
	query := `
		INSERT INTO flashbacks (event_member_id, media_key, visibility, is_nsfw, created_at)
		SELECT m.id, $3, $4, false, NOW()
		FROM event_members m
		WHERE m.event_id = $1 AND m.user_id = $2
		RETURNING id, created_at`

	flashback := &models.Flashback{
		EventID:    eventID,
		MediaKey:   mediaKey,
		Visibility: visibility,
	}
	err := db.pool.QueryRow(ctx, query, eventID, userID, mediaKey, visibility).Scan(&flashback.ID, &flashback.CreatedAt)
	if err != nil {
		// No membership row means the INSERT..SELECT produced nothing.
		return nil, mapRowError(err)
	}

	user, err := db.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	flashback.User = user.Mini()

	return flashback, nil
}

func (db *PostgresDB) SetFlashbackNSFW(ctx context.Context, id int, isNSFW bool) error {
	query := `UPDATE flashbacks SET is_nsfw = $2 WHERE id = $1`

	tag, err := db.pool.Exec(ctx, query, id, isNSFW)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *PostgresDB) ListEventFlashbacks(ctx context.Context, eventID int) ([]*models.Flashback, error) {
	query := `
		SELECT f.id, m.event_id, f.media_key, f.visibility, f.is_nsfw, f.created_at,
		       u.id, u.username, u.email, u.profile, u.about
		FROM flashbacks f
		JOIN event_members m ON m.id = f.event_member_id
		JOIN users u ON u.id = m.user_id
		WHERE m.event_id = $1
		ORDER BY f.created_at DESC`

	rows, err := db.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flashbacks []*models.Flashback
	for rows.Next() {
		flashback := &models.Flashback{User: &models.MiniUser{}}
		if err := rows.Scan(
			&flashback.ID, &flashback.EventID, &flashback.MediaKey, &flashback.Visibility, &flashback.IsNSFW, &flashback.CreatedAt,
			&flashback.User.ID, &flashback.User.Username, &flashback.User.Email, &flashback.User.Profile, &flashback.User.About,
		); err != nil {
			return nil, err
		}
		flashbacks = append(flashbacks, flashback)
	}

	return flashbacks, rows.Err()
}
