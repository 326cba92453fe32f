package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"survey-grader/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

const userColumns = `
	id "id",
	google_id "google_id",
	email "email",
	name "name",
	profile_picture_url "profile_picture_url",
	encrypted_access_token "encrypted_access_token",
	encrypted_refresh_token "encrypted_refresh_token",
	token_expires_at "token_expires_at",
	created_at "created_at",
	updated_at "updated_at",
	deleted_at "deleted_at"`

// UserRepository defines the interface for user data operations. The
// OAuth flow owns the full user lifecycle, so it works on persistence
// models directly.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
}

type sqlxUserRepository struct {
	db *sqlx.DB
}

// NewSQLXUserRepository creates a new instance of sqlxUserRepository.
func NewSQLXUserRepository(db *sqlx.DB) UserRepository {
	return &sqlxUserRepository{db: db}
}

// CreateUser inserts a new user into the database.
func (r *sqlxUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (id, google_id, email, name, profile_picture_url, encrypted_access_token,
	            encrypted_refresh_token, token_expires_at, created_at, updated_at)
	          VALUES (:id, :google_id, :email, :name, :profile_picture_url, :encrypted_access_token,
	            :encrypted_refresh_token, :token_expires_at, :created_at, :updated_at)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.NamedExecContext(ctx, query, user); err != nil {
		// Duplicate google_id surfaces as ORA-00001 and is left to the caller.
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// getUser runs a single-row named query. A row that does not exist is
// (nil, nil), not an error.
func (r *sqlxUserRepository) getUser(ctx context.Context, query string, args map[string]any) (*models.User, error) {
	stmt, err := r.db.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare user query: %w", err)
	}
	defer stmt.Close()

	var user models.User
	if err := stmt.GetContext(ctx, &user, args); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *sqlxUserRepository) GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE google_id = :google_id AND deleted_at IS NULL`
	user, err := r.getUser(ctx, query, map[string]any{"google_id": googleID})
	if err != nil {
		return nil, fmt.Errorf("failed to get user by google_id: %w", err)
	}
	return user, nil
}

func (r *sqlxUserRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = :id AND deleted_at IS NULL`
	user, err := r.getUser(ctx, query, map[string]any{"id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

// UpdateUser updates the profile and token fields of an existing user.
// Updating a missing or soft-deleted user returns sql.ErrNoRows.
func (r *sqlxUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()

	query := `UPDATE users SET
	            email = :email,
	            name = :name,
	            profile_picture_url = :profile_picture_url,
	            encrypted_access_token = :encrypted_access_token,
	            encrypted_refresh_token = :encrypted_refresh_token,
	            token_expires_at = :token_expires_at,
	            updated_at = :updated_at
	          WHERE id = :id AND deleted_at IS NULL`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.NamedExecContext(ctx, query, user)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
