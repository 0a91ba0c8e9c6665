package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/ducnm/oto-dealer/internal/model"
	"github.com/ducnm/oto-dealer/internal/utils"
)

// UserRepo persists accounts in the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,password_hash,name,phone,address,avatar_url,role,is_active,email_verified,reset_token_hash,reset_expires_at,last_login_at,created_at,updated_at"

// Create hashes the password and inserts a new account. Email
// uniqueness is enforced by the unique index; a duplicate-key failure
// surfaces as ErrEmailExists so concurrent identical signups cannot
// both succeed.
func (r *UserRepo) Create(ctx context.Context, email, password, name, phone, address string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, name, phone, address, role, is_active, email_verified) VALUES (?,?,?,?,?,?,1,0)",
		email, hash, name, phone, address, model.RoleUser)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email, including the
// password hash. Callers must strip the hash before responding.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// TouchLastLogin records a successful login.
func (r *UserRepo) TouchLastLogin(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET last_login_at=NOW() WHERE id=?", id)
	return err
}

// SetResetToken stores the hash of a freshly generated reset token and
// its expiry on the account identified by email. Updating zero rows is
// not an error: the forgot-password handler must not learn whether the
// email exists.
func (r *UserRepo) SetResetToken(ctx context.Context, email, tokenHash string, exp time.Time) error {
	email = strings.ToLower(strings.TrimSpace(email))
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET reset_token_hash=?, reset_expires_at=? WHERE email=? AND is_active=1",
		tokenHash, exp, email)
	return err
}

// GetByResetToken finds the account holding a non-expired reset token
// hash. Expired or unknown tokens report sql.ErrNoRows.
func (r *UserRepo) GetByResetToken(ctx context.Context, tokenHash string) (model.User, error) {
	u, err := r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE reset_token_hash=? LIMIT 1", tokenHash))
	if err != nil {
		return model.User{}, err
	}
	if u.ResetExpiresAt == nil || time.Now().UTC().After(*u.ResetExpiresAt) {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

// UpdatePassword replaces the password hash and clears any pending
// reset token in the same statement.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, reset_token_hash=NULL, reset_expires_at=NULL WHERE id=?",
		hash, id)
	return err
}

// Deactivate soft-disables an account. Accounts are never hard-deleted.
func (r *UserRepo) Deactivate(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_active=0 WHERE id=?", id)
	return err
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var (
		u         model.User
		resetHash sql.NullString
		resetExp  sql.NullTime
		lastLogin sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Phone, &u.Address,
		&u.AvatarURL, &u.Role, &u.IsActive, &u.EmailVerified,
		&resetHash, &resetExp, &lastLogin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	if resetHash.Valid {
		u.ResetTokenHash = &resetHash.String
	}
	if resetExp.Valid {
		t := resetExp.Time
		u.ResetExpiresAt = &t
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	return u, nil
}
