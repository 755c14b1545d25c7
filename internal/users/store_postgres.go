// Copyright (c) 2026 ExpenseReport. All rights reserved.
// Author: s.maher.dev@gmail.com

package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slmaher/ExpenseReport/internal/platform/apperr"
	"github.com/slmaher/ExpenseReport/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
//
// # Nullable Columns
//
// google_id and password_hash are nullable in the schema (an account may lack
// either credential path) while the entity uses plain strings. The queries
// bridge the two with NULLIF on write and COALESCE on read, which also keeps
// the partial-unique index on google_id meaningful.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of [Repository].
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const userColumns = `
	id, first_name, last_name, username, email,
	COALESCE(password_hash, ''), COALESCE(avatar_url, ''), COALESCE(google_id, ''),
	role, is_active, created_at, updated_at`

// scanUser reads one row in userColumns order.
func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.AvatarURL,
		&user.GoogleID,
		&user.Role,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create persists a new user record.
func (repository *PostgresRepository) Create(ctx context.Context, user *User) error {
	const query = `
		INSERT INTO users (
			id, first_name, last_name, username, email,
			password_hash, avatar_url, google_id, role, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), $9, $10, $11, $12)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.AvatarURL,
		user.GoogleID,
		user.Role,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		// The constraint, not a pre-check, decides the race.
		if dberr.IsUniqueViolation(err) {
			return ErrUserExists.WithCause(err)
		}
		return fmt.Errorf("postgres_user_repo_create_failed: %w", dberr.Wrap(err))
	}

	return nil
}

// FindByID retrieves a user record by primary key.
func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_id_failed: %w", dberr.Wrap(err))
	}

	return user, nil
}

// FindByUsername retrieves a user record by unique username.
func (repository *PostgresRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user, err := scanUser(repository.pool.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_username_failed: %w", dberr.Wrap(err))
	}

	return user, nil
}

// FindByGoogleID retrieves the user linked to a Google subject id.
func (repository *PostgresRepository) FindByGoogleID(ctx context.Context, googleID string) (*User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE google_id = $1`

	user, err := scanUser(repository.pool.QueryRow(ctx, query, googleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_google_id_failed: %w", dberr.Wrap(err))
	}

	return user, nil
}

// List returns all user accounts, newest first.
func (repository *PostgresRepository) List(ctx context.Context) ([]User, error) {
	const query = `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`

	rows, err := repository.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres_user_repo_list_failed: %w", dberr.Wrap(err))
	}
	defer rows.Close()

	var all []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_user_repo_list_scan_failed: %w", dberr.Wrap(err))
		}
		all = append(all, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_user_repo_list_rows_failed: %w", dberr.Wrap(err))
	}

	return all, nil
}

// Update persists changes to a user's mutable fields.
func (repository *PostgresRepository) Update(ctx context.Context, user *User) error {
	const query = `
		UPDATE users
		SET first_name = $2, last_name = $3, username = $4, email = $5,
		    password_hash = NULLIF($6, ''), avatar_url = NULLIF($7, ''),
		    role = $8, is_active = $9, updated_at = $10
		WHERE id = $1`

	user.UpdatedAt = time.Now()
	tag, err := repository.pool.Exec(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.AvatarURL,
		user.Role,
		user.IsActive,
		user.UpdatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return ErrUserExists.WithCause(err)
		}
		return fmt.Errorf("postgres_user_repo_update_failed: %w", dberr.Wrap(err))
	}

	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}
