package database

import (
	"context"
	"fmt"
	"time"

	"flashback-app/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Event Repository Implementation
func (db *PostgresDB) CreateEvent(ctx context.Context, req *models.CreateEventRequest, hostID int) (*models.Event, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO events (title, emoji, start_at, end_at, viewers_mode, allow_nsfw, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, title, emoji, start_at, end_at, viewers_mode, allow_nsfw, created_at`

	event := &models.Event{}
	err = tx.QueryRow(ctx, query, req.Title, req.Emoji, req.StartAt, req.EndAt, req.ViewersMode, req.AllowNSFW).Scan(
		&event.ID, &event.Title, &event.Emoji, &event.StartAt, &event.EndAt,
		&event.ViewersMode, &event.AllowNSFW, &event.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	// The creating user is always the host member.
	memberQuery := `INSERT INTO event_members (event_id, user_id, role, added_by) VALUES ($1, $2, $3, NULL)`
	if _, err := tx.Exec(ctx, memberQuery, event.ID, hostID, models.RoleHost); err != nil {
		return nil, fmt.Errorf("failed to add host member: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return event, nil
}

func (db *PostgresDB) GetEventByID(ctx context.Context, id int) (*models.Event, error) {
	query := `SELECT id, title, emoji, start_at, end_at, viewers_mode, allow_nsfw, created_at FROM events WHERE id = $1`

	event := &models.Event{}
	err := db.pool.QueryRow(ctx, query, id).Scan(
		&event.ID, &event.Title, &event.Emoji, &event.StartAt, &event.EndAt,
		&event.ViewersMode, &event.AllowNSFW, &event.CreatedAt,
	)
	if err != nil {
		return nil, mapRowError(err)
	}

	return event, nil
}

func (db *PostgresDB) ListUserEvents(ctx context.Context, userID int) ([]*models.Event, error) {
	query := `
		SELECT e.id, e.title, e.emoji, e.start_at, e.end_at, e.viewers_mode, e.allow_nsfw, e.created_at
		FROM events e
		JOIN event_members m ON e.id = m.event_id
		WHERE m.user_id = $1
		ORDER BY e.start_at DESC`

	rows, err := db.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event := &models.Event{}
		if err := rows.Scan(
			&event.ID, &event.Title, &event.Emoji, &event.StartAt, &event.EndAt,
			&event.ViewersMode, &event.AllowNSFW, &event.CreatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

func (db *PostgresDB) CloseEvent(ctx context.Context, eventID int, at time.Time) error {
	query := `UPDATE events SET end_at = $2 WHERE id = $1`

	tag, err := db.pool.Exec(ctx, query, eventID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Membership Implementation
func (db *PostgresDB) AddMember(ctx context.Context, eventID, userID int, role models.EventMemberRole, addedBy int) (bool, error) {
	query := `
		INSERT INTO event_members (event_id, user_id, role, added_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id, user_id) DO NOTHING`

	tag, err := db.pool.Exec(ctx, query, eventID, userID, role, addedBy)
	if err != nil {
		return false, mapRowError(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (db *PostgresDB) RemoveMember(ctx context.Context, eventID, userID int) error {
	query := `DELETE FROM event_members WHERE event_id = $1 AND user_id = $2`

	tag, err := db.pool.Exec(ctx, query, eventID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *PostgresDB) IsMember(ctx context.Context, eventID, userID int) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM event_members WHERE event_id = $1 AND user_id = $2)`

	var exists bool
	err := db.pool.QueryRow(ctx, query, eventID, userID).Scan(&exists)
	return exists, err
}

func (db *PostgresDB) ListMembers(ctx context.Context, eventID int) ([]*models.EventMember, error) {
	query := `
		SELECT m.id, m.event_id, m.role,
		       u.id, u.username, u.email, u.profile, u.about,
		       a.id, a.username, a.email, a.profile, a.about
		FROM event_members m
		JOIN users u ON u.id = m.user_id
		LEFT JOIN users a ON a.id = m.added_by
		WHERE m.event_id = $1
		ORDER BY m.role, u.username`

	rows, err := db.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*models.EventMember
	for rows.Next() {
		member, err := scanEventMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}

	return members, rows.Err()
}

// scanEventMember reads one member row including the LEFT JOINed adding
// user, which is NULL for hosts.
func scanEventMember(row pgx.Row) (*models.EventMember, error) {
	member := &models.EventMember{User: &models.MiniUser{}}
	var addedBy nullableMiniUser

	err := row.Scan(
		&member.ID, &member.EventID, &member.Role,
		&member.User.ID, &member.User.Username, &member.User.Email, &member.User.Profile, &member.User.About,
		&addedBy.id, &addedBy.username, &addedBy.email, &addedBy.profile, &addedBy.about,
	)
	if err != nil {
		return nil, err
	}

	member.AddedBy = addedBy.mini()
	return member, nil
}

// Invite Implementation
func (db *PostgresDB) CreateInvite(ctx context.Context, eventID, userID, invitedBy int) (*models.EventInvite, error) {
	query := `
		INSERT INTO event_invites (event_id, user_id, invited_by, status, date)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, date`

	invite := &models.EventInvite{EventID: eventID, UserID: userID, Status: models.InvitePending}
	err := db.pool.QueryRow(ctx, query, eventID, userID, invitedBy, models.InvitePending).Scan(&invite.ID, &invite.Date)
	if err != nil {
		return nil, mapRowError(err)
	}

	return db.GetInviteByID(ctx, invite.ID)
}

func (db *PostgresDB) GetInviteByID(ctx context.Context, id int) (*models.EventInvite, error) {
	query := `
		SELECT i.id, i.event_id, i.user_id, i.status, i.date,
		       e.id, e.title, e.start_at, e.end_at, e.emoji,
		       u.id, u.username, u.email, u.profile, u.about
		FROM event_invites i
		JOIN events e ON e.id = i.event_id
		JOIN users u ON u.id = i.invited_by
		WHERE i.id = $1`

	invite := &models.EventInvite{Event: &models.MiniEvent{}, InvitedBy: &models.MiniUser{}}
	err := db.pool.QueryRow(ctx, query, id).Scan(
		&invite.ID, &invite.EventID, &invite.UserID, &invite.Status, &invite.Date,
		&invite.Event.ID, &invite.Event.Title, &invite.Event.StartAt, &invite.Event.EndAt, &invite.Event.Emoji,
		&invite.InvitedBy.ID, &invite.InvitedBy.Username, &invite.InvitedBy.Email, &invite.InvitedBy.Profile, &invite.InvitedBy.About,
	)
	if err != nil {
		return nil, mapRowError(err)
	}

	return invite, nil
}

func (db *PostgresDB) ListUserInvites(ctx context.Context, userID int) ([]*models.EventInvite, error) {
	query := `
		SELECT i.id, i.event_id, i.user_id, i.status, i.date,
		       e.id, e.title, e.start_at, e.end_at, e.emoji,
		       u.id, u.username, u.email, u.profile, u.about
		FROM event_invites i
		JOIN events e ON e.id = i.event_id
		JOIN users u ON u.id = i.invited_by
		WHERE i.user_id = $1
		ORDER BY i.date DESC`

	rows, err := db.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invites []*models.EventInvite
	for rows.Next() {
		invite := &models.EventInvite{Event: &models.MiniEvent{}, InvitedBy: &models.MiniUser{}}
		if err := rows.Scan(
			&invite.ID, &invite.EventID, &invite.UserID, &invite.Status, &invite.Date,
			&invite.Event.ID, &invite.Event.Title, &invite.Event.StartAt, &invite.Event.EndAt, &invite.Event.Emoji,
			&invite.InvitedBy.ID, &invite.InvitedBy.Username, &invite.InvitedBy.Email, &invite.InvitedBy.Profile, &invite.InvitedBy.About,
		); err != nil {
			return nil, err
		}
		invites = append(invites, invite)
	}

	return invites, rows.Err()
}

func (db *PostgresDB) DeleteInvite(ctx context.Context, id int) error {
	query := `DELETE FROM event_invites WHERE id = $1`

	tag, err := db.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Invite Code Implementation
func (db *PostgresDB) GetOrCreateInviteCode(ctx context.Context, eventID int) (*models.EventInviteCode, error) {
	code := uuid.New().String()[:8]
	query := `
		INSERT INTO event_invite_codes (event_id, code) VALUES ($1, $2)
		ON CONFLICT (event_id) DO UPDATE SET event_id = EXCLUDED.event_id
		RETURNING code, event_id`

	inviteCode := &models.EventInviteCode{}
	err := db.pool.QueryRow(ctx, query, eventID, code).Scan(&inviteCode.Code, &inviteCode.EventID)
	if err != nil {
		return nil, mapRowError(err)
	}

	return inviteCode, nil
}

func (db *PostgresDB) GetEventByInviteCode(ctx context.Context, code string) (*models.Event, error) {
	query := `
		SELECT e.id, e.title, e.emoji, e.start_at, e.end_at, e.viewers_mode, e.allow_nsfw, e.created_at
		FROM events e
		JOIN event_invite_codes c ON c.event_id = e.id
		WHERE c.code = $1`

	event := &models.Event{}
	err := db.pool.QueryRow(ctx, query, code).Scan(
		&event.ID, &event.Title, &event.Emoji, &event.StartAt, &event.EndAt,
		&event.ViewersMode, &event.AllowNSFW, &event.CreatedAt,
	)
	if err != nil {
		return nil, mapRowError(err)
	}

	return event, nil
}
