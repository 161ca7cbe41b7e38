package credential

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymcore/access-api/internal/model"
	"github.com/gymcore/access-api/internal/repository"
)

// fakeOtpStore keeps rows in memory and records the mutation order so
// tests can assert that a new code never goes in before the old ones
// are retired.  Transact runs the callback against the fake itself;
// the real repo backs it with a sql.Tx.
type fakeOtpStore struct {
	rows   []model.Otp
	nextID uint64
	ops    []string
}

func (f *fakeOtpStore) Transact(ctx context.Context, fn func(repository.OtpMutator) error) error {
	return fn(f)
}

func (f *fakeOtpStore) DeactivateActive(ctx context.Context, userID uint64) error {
	f.ops = append(f.ops, "deactivate")
	for i := range f.rows {
		if f.rows[i].UserID == userID {
			f.rows[i].IsActive = false
		}
	}
	return nil
}

func (f *fakeOtpStore) Insert(ctx context.Context, userID uint64, code string) (model.Otp, error) {
	f.ops = append(f.ops, "insert")
	f.nextID++
	otp := model.Otp{ID: f.nextID, UserID: userID, Code: code, IsActive: true}
	f.rows = append(f.rows, otp)
	return otp, nil
}

func (f *fakeOtpStore) FindActive(ctx context.Context, userID uint64, code string) (model.Otp, error) {
	for _, r := range f.rows {
		if r.UserID == userID && r.Code == code && r.IsActive {
			return r, nil
		}
	}
	return model.Otp{}, repository.ErrNotFound
}

func (f *fakeOtpStore) Consume(ctx context.Context, otpID uint64) error {
	for i := range f.rows {
		if f.rows[i].ID == otpID {
			f.rows[i].IsActive = false
			return nil
		}
	}
	return repository.ErrNotFound
}

func activeCodes(f *fakeOtpStore, userID uint64) []string {
	var codes []string
	for _, r := range f.rows {
		if r.UserID == userID && r.IsActive {
			codes = append(codes, r.Code)
		}
	}
	return codes
}

func TestIssueSupersedesPriorActiveCodes(t *testing.T) {
	store := &fakeOtpStore{}
	svc := NewRecovery(store)
	ctx := context.Background()

	first, err := svc.Issue(ctx, 7)
	require.NoError(t, err)

	second, err := svc.Issue(ctx, 7)
	require.NoError(t, err)
	// Codes are drawn from a 90000-value space; on the off chance two
	// draws collide, re-issue until they differ.
	for i := 0; i < 5 && second == first; i++ {
		second, err = svc.Issue(ctx, 7)
		require.NoError(t, err)
	}
	require.NotEqual(t, first, second)

	assert.Equal(t, []string{second}, activeCodes(store, 7))

	_, err = svc.Verify(ctx, 7, first)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	otp, err := svc.Verify(ctx, 7, second)
	require.NoError(t, err)
	assert.Equal(t, second, otp.Code)
}

func TestIssueDeactivatesBeforeInsert(t *testing.T) {
	store := &fakeOtpStore{}
	svc := NewRecovery(store)

	_, err := svc.Issue(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, []string{"deactivate", "insert"}, store.ops)
}

func TestVerifyAfterConsumeFails(t *testing.T) {
	store := &fakeOtpStore{}
	svc := NewRecovery(store)
	ctx := context.Background()

	code, err := svc.Issue(ctx, 7)
	require.NoError(t, err)

	otp, err := svc.Verify(ctx, 7, code)
	require.NoError(t, err)
	require.NoError(t, svc.Consume(ctx, otp.ID))

	_, err = svc.Verify(ctx, 7, code)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestIssueLeavesOtherUsersAlone(t *testing.T) {
	store := &fakeOtpStore{}
	svc := NewRecovery(store)
	ctx := context.Background()

	other, err := svc.Issue(ctx, 8)
	require.NoError(t, err)

	_, err = svc.Issue(ctx, 7)
	require.NoError(t, err)

	_, err = svc.Verify(ctx, 8, other)
	assert.NoError(t, err)
}
