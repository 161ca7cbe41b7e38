package credential

import (
	"context"
	"errors"
	"time"

	"github.com/gymcore/access-api/internal/repository"
	"github.com/gymcore/access-api/internal/utils"
)

// ErrRefreshInvalid is returned by Exchange for a token that is
// unknown, revoked or past its expiry.  Callers translate it into a
// 401; the three cases are deliberately indistinguishable.
var ErrRefreshInvalid = errors.New("refresh token invalid or expired")

// RefreshStore is the persistence surface of the session service.
// Lookup returns the stored row as-is; expiry is judged here, not in
// the store.
type RefreshStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	LookupRefresh(ctx context.Context, tokenHash string) (userID uint64, expiresAt time.Time, lastUsed *time.Time, err error)
	MarkUsed(ctx context.Context, tokenHash string) error
	DeleteAllForUser(ctx context.Context, userID uint64) error
}

// Sessions owns the refresh-token lifecycle: minting, exchange and
// revocation.  Only the SHA-256 hash of a token ever reaches the store.
type Sessions struct {
	Store   RefreshStore
	TTLDays int
}

func NewSessions(store RefreshStore, ttlDays int) *Sessions {
	return &Sessions{Store: store, TTLDays: ttlDays}
}

// Mint generates a refresh token for the user and persists its hash.
func (s *Sessions) Mint(ctx context.Context, userID uint64) (utils.RefreshToken, error) {
	refresh, err := utils.NewRefreshToken(s.TTLDays)
	if err != nil {
		return utils.RefreshToken{}, err
	}
	if err := s.Store.StoreRefresh(ctx, userID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return utils.RefreshToken{}, err
	}
	return refresh, nil
}

// Exchange resolves a presented raw token to its owning user.  The
// token stays valid afterwards (non-rotating, multi-device friendly);
// its last-use stamp is updated best-effort and the previous stamp is
// returned so the caller can spot suspiciously rapid reuse.
func (s *Sessions) Exchange(ctx context.Context, raw string) (uint64, *time.Time, error) {
	hash := utils.HashRefreshRaw(raw)
	userID, expiresAt, lastUsed, err := s.Store.LookupRefresh(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, nil, ErrRefreshInvalid
		}
		return 0, nil, err
	}
	if time.Now().UTC().After(expiresAt) {
		return 0, nil, ErrRefreshInvalid
	}
	_ = s.Store.MarkUsed(ctx, hash)
	return userID, lastUsed, nil
}

// RevokeAll deletes every refresh token the user owns.  Logout signs
// out every device at once, not just the session making the request.
func (s *Sessions) RevokeAll(ctx context.Context, userID uint64) error {
	return s.Store.DeleteAllForUser(ctx, userID)
}
