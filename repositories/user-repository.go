package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/LepeyevaEmiliya/projects/models"
)

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, password_hash, name, avatar_url, is_active, last_login_at, created_at`

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	q := r.db.conn.Rebind(`INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.conn.ExecContext(ctx, q,
		user.ID, user.Email, user.PasswordHash, user.Name, user.AvatarURL, user.IsActive, user.LastLoginAt, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// GetByEmail expects an already lower-cased email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *UserRepository) getOne(ctx context.Context, q string, args ...any) (models.User, error) {
	var u models.User
	if err := r.db.conn.GetContext(ctx, &u, r.db.conn.Rebind(q), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, models.ErrNotFound
		}
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.exec(ctx, "update last login", `UPDATE users SET last_login_at = ? WHERE id = ?`, at, id)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.exec(ctx, "update password", `UPDATE users SET password_hash = ? WHERE id = ?`, hash, id)
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id, name, email string) error {
	err := r.exec(ctx, "update profile", `UPDATE users SET name = ?, email = ? WHERE id = ?`, name, email, id)
	if err != nil && isUniqueViolation(err) {
		return models.ErrConflict
	}
	return err
}

func (r *UserRepository) SetActive(ctx context.Context, email string, active bool) error {
	return r.exec(ctx, "set active", `UPDATE users SET is_active = ? WHERE email = ?`, active, email)
}

func (r *UserRepository) exec(ctx context.Context, op, q string, args ...any) error {
	res, err := r.db.conn.ExecContext(ctx, r.db.conn.Rebind(q), args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected(res) == 0 {
		return models.ErrNotFound
	}
	return nil
}
