package dao

import (
	"context"
	"database/sql"
	"errors"

	"marketplace-feed/model"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Insert(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (id, name, email, preferences) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, user.ID, user.Name, user.Email, user.Preferences)
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getOne(ctx, `SELECT id, name, email, preferences FROM users WHERE id = ?`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, `SELECT id, name, email, preferences FROM users WHERE email = ?`, email)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg string) (*model.User, error) {
	var (
		u     model.User
		prefs sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Name, &u.Email, &prefs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}
	u.Preferences = prefs.String
	return &u, nil
}

// GetPreferences returns the stored preference string, "" when unset.
func (r *UserRepository) GetPreferences(ctx context.Context, userID string) (string, error) {
	var prefs sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT preferences FROM users WHERE id = ?`, userID).Scan(&prefs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return prefs.String, nil
}

// UpdatePreferences replaces the stored preference string. Concurrent writers
// race and the last one wins.
func (r *UserRepository) UpdatePreferences(ctx context.Context, userID, prefs string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET preferences = ? WHERE id = ?`, prefs, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
