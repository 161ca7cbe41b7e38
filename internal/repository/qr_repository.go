package repository

import (
	"context"
	"database/sql"

	"github.com/gymcore/access-api/internal/model"
)

// QrRepo manages the single QR token row each user owns in the
// `user_qr_code` table.
type QrRepo struct{ DB *sql.DB }

func NewQrRepo(db *sql.DB) *QrRepo { return &QrRepo{DB: db} }

// Replace upserts the QR token for a user.  user_id carries a unique
// index, so an existing row is overwritten in place and the old token
// value stops resolving immediately.  Concurrent replacements for the
// same user resolve last-write-wins, which is acceptable here.
func (r *QrRepo) Replace(ctx context.Context, userID uint64, token string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO user_qr_code (user_id, qr_token) VALUES (?,?)
		 ON DUPLICATE KEY UPDATE qr_token=VALUES(qr_token), updated_at=NOW()`,
		userID, token)
	return err
}

// GetByUser fetches the QR row owned by a user.
func (r *QrRepo) GetByUser(ctx context.Context, userID uint64) (model.UserQrCode, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, qr_token, created_at, updated_at FROM user_qr_code WHERE user_id=? LIMIT 1",
		userID))
}

// GetByToken resolves a presented QR token to its row.
func (r *QrRepo) GetByToken(ctx context.Context, token string) (model.UserQrCode, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, qr_token, created_at, updated_at FROM user_qr_code WHERE qr_token=? LIMIT 1",
		token))
}

// DeleteByUser removes the user's QR row.
func (r *QrRepo) DeleteByUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM user_qr_code WHERE user_id=?", userID)
	return err
}

func (r *QrRepo) scanOne(row *sql.Row) (model.UserQrCode, error) {
	var q model.UserQrCode
	err := row.Scan(&q.ID, &q.UserID, &q.QrToken, &q.CreatedAt, &q.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.UserQrCode{}, ErrNotFound
	}
	return q, err
}
