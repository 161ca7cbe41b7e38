package repository

import (
	"context"
	"database/sql"

	"github.com/gymcore/access-api/internal/model"
)

// OtpMutator is the write surface handed to an OTP transaction
// callback.  Both mutations of an issue run against the same sql.Tx.
type OtpMutator interface {
	DeactivateActive(ctx context.Context, userID uint64) error
	Insert(ctx context.Context, userID uint64, code string) (model.Otp, error)
}

// OtpRepo persists single-use password recovery codes in the `otps`
// table.  The table keeps consumed rows as an audit trail; only the
// is_active flag changes over a code's life.
type OtpRepo struct{ DB *sql.DB }

func NewOtpRepo(db *sql.DB) *OtpRepo { return &OtpRepo{DB: db} }

type otpTx struct{ tx *sql.Tx }

func (t otpTx) DeactivateActive(ctx context.Context, userID uint64) error {
	_, err := t.tx.ExecContext(ctx,
		"UPDATE otps SET is_active=0 WHERE user_id=? AND is_active=1", userID)
	return err
}

func (t otpTx) Insert(ctx context.Context, userID uint64, code string) (model.Otp, error) {
	res, err := t.tx.ExecContext(ctx,
		"INSERT INTO otps (user_id, token, is_active) VALUES (?,?,1)", userID, code)
	if err != nil {
		return model.Otp{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Otp{}, err
	}
	return model.Otp{ID: uint64(id), UserID: userID, Code: code, IsActive: true}, nil
}

// Transact runs fn inside a single transaction; any error rolls the
// whole sequence back.
func (r *OtpRepo) Transact(ctx context.Context, fn func(OtpMutator) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := fn(otpTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

// FindActive looks up an active code for the user.  A wrong code and a
// missing code are indistinguishable to the caller: both are ErrNotFound.
func (r *OtpRepo) FindActive(ctx context.Context, userID uint64, code string) (model.Otp, error) {
	var o model.Otp
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, token, is_active FROM otps WHERE user_id=? AND token=? AND is_active=1 LIMIT 1",
		userID, code).Scan(&o.ID, &o.UserID, &o.Code, &o.IsActive)
	if err == sql.ErrNoRows {
		return model.Otp{}, ErrNotFound
	}
	return o, err
}

// Consume flips the code inactive.
func (r *OtpRepo) Consume(ctx context.Context, otpID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE otps SET is_active=0 WHERE id=?", otpID)
	return err
}
