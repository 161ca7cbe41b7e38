package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/gymcore/access-api/internal/model"
	"github.com/gymcore/access-api/internal/utils"
)

// UserRepo provides CRUD access to the `user` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, uuid, role_id, email, password, fcm, is_active, last_access, created_at, updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var (
		u          model.User
		fcm        sql.NullString
		lastAccess sql.NullTime
	)
	err := row.Scan(&u.ID, &u.UUID, &u.RoleID, &u.Email, &u.PasswordHash,
		&fcm, &u.IsActive, &lastAccess, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.User{}, ErrNotFound
		}
		return model.User{}, err
	}
	if fcm.Valid {
		v := fcm.String
		u.FCMToken = &v
	}
	if lastAccess.Valid {
		t := lastAccess.Time
		u.LastAccess = &t
	}
	return u, nil
}

// Create inserts a user with a hashed password and returns its ID.
func (r *UserRepo) Create(ctx context.Context, email, password, uuid string, roleID uint64, active bool, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO user (uuid, role_id, email, password, is_active) VALUES (?,?,?,?,?)",
		uuid, roleID, email, hash, active)
	if err != nil {
		// 1062 = duplicate entry on the unique email index
		if isDuplicate(err) {
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

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM user WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM user WHERE id=? LIMIT 1", id))
}

// UpdatePassword replaces the stored hash for a user.
func (r *UserRepo) UpdatePassword(ctx context.Context, userID uint64, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE user SET password=?, updated_at=NOW() WHERE id=?", hash, userID)
	return err
}

// TouchLastAccess stamps the user's last granted entry time.
func (r *UserRepo) TouchLastAccess(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE user SET last_access=NOW() WHERE id=?", userID)
	return err
}
