package database

import (
	"context"
	"fmt"

	"flashback-app/internal/models"
)

// Friendship Repository Implementation
func (db *PostgresDB) CreateFriendRequest(ctx context.Context, fromID, toID int) (*models.FriendRequest, error) {
	query := `
		INSERT INTO friend_requests (from_user_id, to_user_id, status, date)
		VALUES ($1, $2, $3, NOW())
		RETURNING id`

	var id int
	err := db.pool.QueryRow(ctx, query, fromID, toID, models.FriendRequestPending).Scan(&id)
	if err != nil {
		return nil, mapRowError(err)
	}

	return db.GetFriendRequestByID(ctx, id)
}

func (db *PostgresDB) GetFriendRequestByID(ctx context.Context, id int) (*models.FriendRequest, error) {
	query := `
		SELECT r.id, r.status, r.date,
		       f.id, f.username, f.email, f.profile, f.about,
		       t.id, t.username, t.email, t.profile, t.about
		FROM friend_requests r
		JOIN users f ON f.id = r.from_user_id
		JOIN users t ON t.id = r.to_user_id
		WHERE r.id = $1`

	request := &models.FriendRequest{FromUser: &models.MiniUser{}, ToUser: &models.MiniUser{}}
	err := db.pool.QueryRow(ctx, query, id).Scan(
		&request.ID, &request.Status, &request.Date,
		&request.FromUser.ID, &request.FromUser.Username, &request.FromUser.Email, &request.FromUser.Profile, &request.FromUser.About,
		&request.ToUser.ID, &request.ToUser.Username, &request.ToUser.Email, &request.ToUser.Profile, &request.ToUser.About,
	)
	if err != nil {
		return nil, mapRowError(err)
	}

	return request, nil
}

func (db *PostgresDB) ListFriendRequests(ctx context.Context, toUserID int) ([]*models.FriendRequest, error) {
	query := `
		SELECT r.id, r.status, r.date,
		       f.id, f.username, f.email, f.profile, f.about,
		       t.id, t.username, t.email, t.profile, t.about
		FROM friend_requests r
		JOIN users f ON f.id = r.from_user_id
		JOIN users t ON t.id = r.to_user_id
		WHERE r.to_user_id = $1
		ORDER BY r.date DESC`

	rows, err := db.pool.Query(ctx, query, toUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*models.FriendRequest
	for rows.Next() {
		request := &models.FriendRequest{FromUser: &models.MiniUser{}, ToUser: &models.MiniUser{}}
		if err := rows.Scan(
			&request.ID, &request.Status, &request.Date,
			&request.FromUser.ID, &request.FromUser.Username, &request.FromUser.Email, &request.FromUser.Profile, &request.FromUser.About,
			&request.ToUser.ID, &request.ToUser.Username, &request.ToUser.Email, &request.ToUser.Profile, &request.ToUser.About,
		); err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}

	return requests, rows.Err()
}

func (db *PostgresDB) DeleteFriendRequest(ctx context.Context, id int) error {
	query := `DELETE FROM friend_requests WHERE id = $1`

	tag, err := db.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *PostgresDB) CreateFriendship(ctx context.Context, fromID, toID int) error {
	query := `
		INSERT INTO friendships (from_user_id, to_user_id, date)
		VALUES ($1, $2, NOW())
		ON CONFLICT (from_user_id, to_user_id) DO NOTHING`

	if _, err := db.pool.Exec(ctx, query, fromID, toID); err != nil {
		return fmt.Errorf("failed to create friendship: %w", mapRowError(err))
	}
	return nil
}

func (db *PostgresDB) ListFriends(ctx context.Context, userID int) ([]*models.Friendship, error) {
	query := `
		SELECT fs.id, fs.date,
		       u.id, u.username, u.email, u.profile, u.about
		FROM friendships fs
		JOIN users u ON u.id = CASE WHEN fs.from_user_id = $1 THEN fs.to_user_id ELSE fs.from_user_id END
		WHERE fs.from_user_id = $1 OR fs.to_user_id = $1
		ORDER BY fs.date DESC`

	rows, err := db.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var friends []*models.Friendship
	for rows.Next() {
		friendship := &models.Friendship{Friend: &models.MiniUser{}}
		if err := rows.Scan(
			&friendship.ID, &friendship.Date,
			&friendship.Friend.ID, &friendship.Friend.Username, &friendship.Friend.Email, &friendship.Friend.Profile, &friendship.Friend.About,
		); err != nil {
			return nil, err
		}
		friends = append(friends, friendship)
	}

	return friends, rows.Err()
}
