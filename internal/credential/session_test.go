package credential

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymcore/access-api/internal/repository"
	"github.com/gymcore/access-api/internal/utils"
)

type refreshRow struct {
	userID    uint64
	expiresAt time.Time
	lastUsed  *time.Time
}

// fakeRefreshStore keys rows by token hash like the refresh_tokens
// table does.
type fakeRefreshStore struct {
	rows map[string]*refreshRow
}

func newFakeRefreshStore() *fakeRefreshStore {
	return &fakeRefreshStore{rows: make(map[string]*refreshRow)}
}

func (f *fakeRefreshStore) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	f.rows[tokenHash] = &refreshRow{userID: userID, expiresAt: exp}
	return nil
}

func (f *fakeRefreshStore) LookupRefresh(ctx context.Context, tokenHash string) (uint64, time.Time, *time.Time, error) {
	row, ok := f.rows[tokenHash]
	if !ok {
		return 0, time.Time{}, nil, repository.ErrNotFound
	}
	return row.userID, row.expiresAt, row.lastUsed, nil
}

func (f *fakeRefreshStore) MarkUsed(ctx context.Context, tokenHash string) error {
	if row, ok := f.rows[tokenHash]; ok {
		now := time.Now().UTC()
		row.lastUsed = &now
	}
	return nil
}

func (f *fakeRefreshStore) DeleteAllForUser(ctx context.Context, userID uint64) error {
	for hash, row := range f.rows {
		if row.userID == userID {
			delete(f.rows, hash)
		}
	}
	return nil
}

func TestMintAndExchange(t *testing.T) {
	store := newFakeRefreshStore()
	svc := NewSessions(store, 30)
	ctx := context.Background()

	refresh, err := svc.Mint(ctx, 7)
	require.NoError(t, err)
	require.NotEmpty(t, refresh.Raw)

	// Only the hash reaches the store, never the raw secret.
	require.Len(t, store.rows, 1)
	_, rawStored := store.rows[refresh.Raw]
	assert.False(t, rawStored)
	_, hashStored := store.rows[utils.HashRefreshRaw(refresh.Raw)]
	assert.True(t, hashStored)

	userID, lastUsed, err := svc.Exchange(ctx, refresh.Raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), userID)
	assert.Nil(t, lastUsed)

	// The token does not rotate: a second exchange succeeds and sees
	// the stamp left by the first.
	userID, lastUsed, err = svc.Exchange(ctx, refresh.Raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), userID)
	assert.NotNil(t, lastUsed)
}

func TestExchangeUnknownToken(t *testing.T) {
	svc := NewSessions(newFakeRefreshStore(), 30)

	_, _, err := svc.Exchange(context.Background(), "never-minted")
	assert.ErrorIs(t, err, ErrRefreshInvalid)
}

func TestExchangeExpiredToken(t *testing.T) {
	store := newFakeRefreshStore()
	svc := NewSessions(store, 30)
	ctx := context.Background()

	refresh, err := svc.Mint(ctx, 7)
	require.NoError(t, err)

	row := store.rows[utils.HashRefreshRaw(refresh.Raw)]
	row.expiresAt = time.Now().UTC().Add(-time.Minute)

	_, _, err = svc.Exchange(ctx, refresh.Raw)
	assert.ErrorIs(t, err, ErrRefreshInvalid)
}

func TestRevokeAllInvalidatesEveryDevice(t *testing.T) {
	store := newFakeRefreshStore()
	svc := NewSessions(store, 30)
	ctx := context.Background()

	phone, err := svc.Mint(ctx, 7)
	require.NoError(t, err)
	laptop, err := svc.Mint(ctx, 7)
	require.NoError(t, err)
	other, err := svc.Mint(ctx, 8)
	require.NoError(t, err)

	require.NoError(t, svc.RevokeAll(ctx, 7))

	_, _, err = svc.Exchange(ctx, phone.Raw)
	assert.ErrorIs(t, err, ErrRefreshInvalid)
	_, _, err = svc.Exchange(ctx, laptop.Raw)
	assert.ErrorIs(t, err, ErrRefreshInvalid)

	userID, _, err := svc.Exchange(ctx, other.Raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(8), userID)
}
