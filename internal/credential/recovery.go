// Package credential implements the lifecycle of the stored
// credentials: single-use password recovery codes and refresh tokens.
// Handlers call these services; persistence sits behind narrow store
// interfaces so the sequencing rules live in one place and tests can
// substitute fakes.
package credential

import (
	"context"

	"github.com/gymcore/access-api/internal/model"
	"github.com/gymcore/access-api/internal/repository"
	"github.com/gymcore/access-api/internal/utils"
)

// OtpStore is the persistence surface of the recovery-code service.
// Transact runs the mutations of a single issue against one
// transaction; the concrete repo backs it with sql.Tx.
type OtpStore interface {
	Transact(ctx context.Context, fn func(repository.OtpMutator) error) error
	FindActive(ctx context.Context, userID uint64, code string) (model.Otp, error)
	Consume(ctx context.Context, otpID uint64) error
}

// Recovery issues, verifies and consumes password recovery codes.
type Recovery struct {
	Store OtpStore
}

func NewRecovery(store OtpStore) *Recovery { return &Recovery{Store: store} }

// Issue draws a fresh 5 digit code and persists it as the user's only
// active one.  Every previously active code is deactivated first,
// inside the same transaction as the insert, so two concurrent issues
// cannot both end up active.
func (r *Recovery) Issue(ctx context.Context, userID uint64) (string, error) {
	code, err := utils.NewOtpCode()
	if err != nil {
		return "", err
	}
	err = r.Store.Transact(ctx, func(tx repository.OtpMutator) error {
		if err := tx.DeactivateActive(ctx, userID); err != nil {
			return err
		}
		_, err := tx.Insert(ctx, userID, code)
		return err
	})
	if err != nil {
		return "", err
	}
	return code, nil
}

// Verify looks up an active code owned by the user.  A wrong code, a
// consumed code and a superseded code all fail the same way:
// repository.ErrNotFound.
func (r *Recovery) Verify(ctx context.Context, userID uint64, code string) (model.Otp, error) {
	return r.Store.FindActive(ctx, userID, code)
}

// Consume retires a verified code.  Besides a newer Issue, this is the
// only path that makes a code unusable.
func (r *Recovery) Consume(ctx context.Context, otpID uint64) error {
	return r.Store.Consume(ctx, otpID)
}
