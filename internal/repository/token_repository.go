package repository

import (
	"context"
	"database/sql"
	"time"
)

// TokenRepo persists refresh tokens (single 'token_hash' column).  Rows
// are deleted outright on logout; there is no revoked_at soft state
// because logout signs the user out of every device at once.  Lifecycle
// decisions (expiry, reuse stamping) belong to the session service;
// this repo only moves rows.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// StoreRefresh inserts a refresh token hash row.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, tokenHash, exp)
	return err
}

// LookupRefresh fetches a stored token row by hash.  lastUsed is nil
// for a token that has never been exchanged.
func (r *TokenRepo) LookupRefresh(ctx context.Context, tokenHash string) (uint64, time.Time, *time.Time, error) {
	var (
		userID    uint64
		expiresAt time.Time
		lastUsed  sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, expires_at, last_used_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&userID, &expiresAt, &lastUsed)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, time.Time{}, nil, ErrNotFound
		}
		return 0, time.Time{}, nil, err
	}
	if lastUsed.Valid {
		t := lastUsed.Time
		return userID, expiresAt, &t, nil
	}
	return userID, expiresAt, nil, nil
}

// MarkUsed stamps the token's last exchange time.
func (r *TokenRepo) MarkUsed(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET last_used_at=NOW() WHERE token_hash=?", tokenHash)
	return err
}

// DeleteAllForUser removes every refresh token the user owns.
func (r *TokenRepo) DeleteAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE user_id=?", userID)
	return err
}
