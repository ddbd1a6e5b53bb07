package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	financeErrors "github.com/sebuszqo/FinanceLedger/internal/finance/errors"
)

var ErrUserNotFound = financeErrors.ErrUserNotFound

type Repository interface {
	createUser(ctx context.Context, user *User) error
	getUserByID(ctx context.Context, id string) (*User, error)
	getUserByLogin(ctx context.Context, login string) (*User, error)
	getLogins(ctx context.Context, ids []string) (map[string]string, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) Repository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) createUser(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, login, email, first_name, last_name, can_view_all, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at;
	`
	err := r.db.QueryRowContext(ctx, query, user.ID, user.Login, user.Email, user.FirstName, user.LastName, user.CanViewAll).
		Scan(&user.CreatedAt)
	if err != nil {
		return fmt.Errorf("could not create user: %w", err)
	}
	return nil
}

func (r *userRepository) getUserByID(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, login, email, first_name, last_name, can_view_all, created_at
		FROM users
		WHERE id = $1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *userRepository) getUserByLogin(ctx context.Context, login string) (*User, error) {
	query := `
		SELECT id, login, email, first_name, last_name, can_view_all, created_at
		FROM users
		WHERE login = $1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, login))
}

func (r *userRepository) scanUser(row *sql.Row) (*User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Login, &user.Email, &user.FirstName, &user.LastName, &user.CanViewAll, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("could not find user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) getLogins(ctx context.Context, ids []string) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, login FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("could not load user logins: %w", err)
	}
	defer rows.Close()

	logins := make(map[string]string, len(ids))
	for rows.Next() {
		var id, login string
		if err := rows.Scan(&id, &login); err != nil {
			return nil, err
		}
		logins[id] = login
	}
	return logins, rows.Err()
}
