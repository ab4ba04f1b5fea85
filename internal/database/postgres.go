package database

import (
	"context"
	"errors"
	"fmt"

	"flashback-app/internal/models"
	"flashback-app/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type PostgresDB struct {
	pool *pgxpool.Pool
}

func NewPostgresDB(databaseURL string) (*PostgresDB, error) {
	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().Msg("Connected to database")
	return &PostgresDB{pool: pool}, nil
}

func (db *PostgresDB) Close() error {
	db.pool.Close()
	return nil
}

// mapRowError folds pgx row-level errors into the package's sentinel:
// missing rows and rejected foreign keys both surface as ErrNotFound.
func mapRowError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503":
			return ErrNotFound
		case "23505":
			return ErrDuplicate
		}
	}
	return err
}

// User Repository Implementation
func (db *PostgresDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT id, username, email, password_hash, profile, about, created_at FROM users WHERE email = $1`

	user := &models.User{}
	err := db.pool.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Profile, &user.About, &user.CreatedAt,
	)
	if err != nil {
		return nil, mapRowError(err)
	}

	return user, nil
}

func (db *PostgresDB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT id, username, email, password_hash, profile, about, created_at FROM users WHERE username = $1`

	user := &models.User{}
	err := db.pool.QueryRow(ctx, query, username).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Profile, &user.About, &user.CreatedAt,
	)
	if err != nil {
		return nil, mapRowError(err)
	}

	return user, nil
}

func (db *PostgresDB) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT id, username, email, profile, about, created_at FROM users WHERE id = $1`

	user := &models.User{}
	err := db.pool.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Username, &user.Email, &user.Profile, &user.About, &user.CreatedAt,
	)
	if err != nil {
		return nil, mapRowError(err)
	}

	return user, nil
}

func (db *PostgresDB) CreateUser(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	query := `
		INSERT INTO users (username, email, password_hash, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, username, email, profile, about, created_at`

	user := &models.User{PasswordHash: string(hash)}
	err = db.pool.QueryRow(ctx, query, req.Username, req.Email, string(hash)).Scan(
		&user.ID, &user.Username, &user.Email, &user.Profile, &user.About, &user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}
