package database

import (
	"context"
	"fmt"
	"time"

	"flashback-app/internal/models"

	"github.com/jackc/pgx/v5"
)

// Message Repository Implementation
func (db *PostgresDB) CreateMessage(ctx context.Context, req *models.CreateMessageRequest, userID int) (*models.Message, error) {
	query := `
		INSERT INTO messages (event_id, user_id, content, parent_id, timestamp)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id`

	var id int
	err := db.pool.QueryRow(ctx, query, req.Event, userID, req.Content, req.Parent).Scan(&id)
	if err != nil {
		return nil, mapRowError(err)
	}

	return db.GetMessageByID(ctx, id)
}

func (db *PostgresDB) GetMessageByID(ctx context.Context, id int) (*models.Message, error) {
	query := `
		SELECT m.id, m.event_id, m.content, m.timestamp,
		       u.id, u.username, u.email, u.profile, u.about,
		       p.id, p.content,
		       pu.id, pu.username, pu.email, pu.profile, pu.about
		FROM messages m
		LEFT JOIN users u ON u.id = m.user_id
		LEFT JOIN messages p ON p.id = m.parent_id
		LEFT JOIN users pu ON pu.id = p.user_id
		WHERE m.id = $1`

	message, err := scanMessage(db.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapRowError(err)
	}

	likedBy, err := db.listMessageLikes(ctx, message.ID)
	if err != nil {
		return nil, err
	}
	message.LikedBy = likedBy

	return message, nil
}

// ToggleLike deletes the (user, message) like record if it exists, creates
// it otherwise, then returns the message with its refreshed like list.
// Uniqueness of like records is the table constraint's job.
func (db *PostgresDB) ToggleLike(ctx context.Context, messageID, userID int) (*models.Message, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM liked_messages WHERE message_id = $1 AND user_id = $2`, messageID, userID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		insert := `INSERT INTO liked_messages (message_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
		if _, err := tx.Exec(ctx, insert, messageID, userID); err != nil {
			return nil, mapRowError(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return db.GetMessageByID(ctx, messageID)
}

func (db *PostgresDB) ListEventMessages(ctx context.Context, eventID, limit int, before time.Time) ([]*models.Message, error) {
	query := `
		SELECT m.id, m.event_id, m.content, m.timestamp,
		       u.id, u.username, u.email, u.profile, u.about,
		       p.id, p.content,
		       pu.id, pu.username, pu.email, pu.profile, pu.about
		FROM messages m
		LEFT JOIN users u ON u.id = m.user_id
		LEFT JOIN messages p ON p.id = m.parent_id
		LEFT JOIN users pu ON pu.id = p.user_id
		WHERE m.event_id = $1 AND m.timestamp < $2
		ORDER BY m.timestamp DESC
		LIMIT $3`

	rows, err := db.pool.Query(ctx, query, eventID, before, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, message := range messages {
		likedBy, err := db.listMessageLikes(ctx, message.ID)
		if err != nil {
			return nil, err
		}
		message.LikedBy = likedBy
	}

	return messages, nil
}

func (db *PostgresDB) listMessageLikes(ctx context.Context, messageID int) ([]*models.MiniUser, error) {
	query := `
		SELECT u.id, u.username, u.email, u.profile, u.about
		FROM liked_messages l
		JOIN users u ON u.id = l.user_id
		WHERE l.message_id = $1
		ORDER BY l.id`

	rows, err := db.pool.Query(ctx, query, messageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// Empty slice, not nil: liked_by always serializes as a list.
	likedBy := []*models.MiniUser{}
	for rows.Next() {
		user := &models.MiniUser{}
		if err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.Profile, &user.About); err != nil {
			return nil, err
		}
		likedBy = append(likedBy, user)
	}

	return likedBy, rows.Err()
}

func scanMessage(row pgx.Row) (*models.Message, error) {
	message := &models.Message{}
	var (
		user     nullableMiniUser
		parentID *int
		parent   struct {
			content *string
			user    nullableMiniUser
		}
	)

	err := row.Scan(
		&message.ID, &message.Event, &message.Content, &message.Timestamp,
		&user.id, &user.username, &user.email, &user.profile, &user.about,
		&parentID, &parent.content,
		&parent.user.id, &parent.user.username, &parent.user.email, &parent.user.profile, &parent.user.about,
	)
	if err != nil {
		return nil, err
	}

	message.User = user.mini()
	if parentID != nil {
		message.Parent = &models.MessageParent{
			ID:      *parentID,
			Content: *parent.content,
			User:    parent.user.mini(),
		}
	}

	return message, nil
}

// nullableMiniUser scans a LEFT JOINed users row that may be entirely NULL,
// e.g. when the message author deleted their account.
type nullableMiniUser struct {
	id       *int
	username *string
	email    *string
	profile  *string
	about    *string
}

func (n *nullableMiniUser) mini() *models.MiniUser {
	if n.id == nil {
		return nil
	}
	return &models.MiniUser{
		ID:       *n.id,
		Username: *n.username,
		Email:    *n.email,
		Profile:  *n.profile,
		About:    *n.about,
	}
}
