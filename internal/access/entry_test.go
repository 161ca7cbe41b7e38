package access

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymcore/access-api/internal/model"
	"github.com/gymcore/access-api/internal/repository"
)

// Hand-written fakes over the narrow store interfaces.

type fakeQrStore struct {
	rows map[string]model.UserQrCode
}

func (f *fakeQrStore) GetByToken(_ context.Context, token string) (model.UserQrCode, error) {
	if row, ok := f.rows[token]; ok {
		return row, nil
	}
	return model.UserQrCode{}, repository.ErrNotFound
}

type fakeUserStore struct {
	users   map[uint64]model.User
	touched []uint64
}

func (f *fakeUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUserStore) TouchLastAccess(_ context.Context, id uint64) error {
	f.touched = append(f.touched, id)
	return nil
}

type fakeSubStore struct {
	active map[uint64]model.Subscription
	latest map[uint64]model.Subscription
}

func (f *fakeSubStore) ActiveForUser(_ context.Context, userID uint64) (model.Subscription, error) {
	if s, ok := f.active[userID]; ok {
		return s, nil
	}
	return model.Subscription{}, repository.ErrNotFound
}

func (f *fakeSubStore) LatestForUser(_ context.Context, userID uint64) (model.Subscription, error) {
	if s, ok := f.latest[userID]; ok {
		return s, nil
	}
	return model.Subscription{}, repository.ErrNotFound
}

type fakeMembershipStore struct {
	plans map[uint64]model.Membership
}

func (f *fakeMembershipStore) GetByID(_ context.Context, id uint64) (model.Membership, error) {
	if m, ok := f.plans[id]; ok {
		return m, nil
	}
	return model.Membership{}, repository.ErrNotFound
}

func newFixture() (*Decider, *fakeQrStore, *fakeUserStore, *fakeSubStore, *fakeMembershipStore) {
	qr := &fakeQrStore{rows: map[string]model.UserQrCode{}}
	users := &fakeUserStore{users: map[uint64]model.User{}}
	subs := &fakeSubStore{active: map[uint64]model.Subscription{}, latest: map[uint64]model.Subscription{}}
	plans := &fakeMembershipStore{plans: map[uint64]model.Membership{}}
	return NewDecider(qr, users, subs, plans), qr, users, subs, plans
}

func TestAuthorizeEntryTokenNotRegistered(t *testing.T) {
	d, _, _, _, _ := newFixture()
	dec, err := d.AuthorizeEntry(context.Background(), "unknown-token")
	require.NoError(t, err)
	assert.Equal(t, TokenNotRegistered, dec.Verdict)
}

func TestAuthorizeEntryDanglingUser(t *testing.T) {
	d, qr, _, _, _ := newFixture()
	qr.rows["tok"] = model.UserQrCode{ID: 1, UserID: 99, QrToken: "tok"}

	dec, err := d.AuthorizeEntry(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, UserNotFound, dec.Verdict)
}

func TestAuthorizeEntryInactiveUserBeforeSubscription(t *testing.T) {
	d, qr, users, subs, plans := newFixture()
	qr.rows["tok"] = model.UserQrCode{ID: 1, UserID: 7, QrToken: "tok"}
	users.users[7] = model.User{ID: 7, Email: "a@x.com", IsActive: false}
	// Even with a perfectly valid subscription the user must be denied.
	subs.active[7] = model.Subscription{ID: 1, UserID: 7, MembershipID: 3, Status: model.SubscriptionActive}
	plans.plans[3] = model.Membership{ID: 3, Name: "Premium"}

	dec, err := d.AuthorizeEntry(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, UserInactive, dec.Verdict)
	assert.Equal(t, uint64(7), dec.UserID)
	assert.Empty(t, users.touched)
}

func TestAuthorizeEntryNoSubscriptionAtAll(t *testing.T) {
	d, qr, users, _, _ := newFixture()
	qr.rows["tok"] = model.UserQrCode{ID: 1, UserID: 7, QrToken: "tok"}
	users.users[7] = model.User{ID: 7, Email: "a@x.com", IsActive: true}

	dec, err := d.AuthorizeEntry(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, SubscriptionExpired, dec.Verdict)
	assert.Equal(t, "none", dec.SubscriptionStatus)
}

func TestAuthorizeEntryExpiredStatusSurfaced(t *testing.T) {
	d, qr, users, subs, _ := newFixture()
	qr.rows["tok"] = model.UserQrCode{ID: 1, UserID: 7, QrToken: "tok"}
	users.users[7] = model.User{ID: 7, Email: "a@x.com", IsActive: true}
	subs.latest[7] = model.Subscription{ID: 2, UserID: 7, Status: model.SubscriptionExpired}

	dec, err := d.AuthorizeEntry(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, SubscriptionExpired, dec.Verdict)
	assert.Equal(t, "expired", dec.SubscriptionStatus)
}

func TestAuthorizeEntryMissingMembershipIsInternal(t *testing.T) {
	d, qr, users, subs, _ := newFixture()
	qr.rows["tok"] = model.UserQrCode{ID: 1, UserID: 7, QrToken: "tok"}
	users.users[7] = model.User{ID: 7, Email: "a@x.com", IsActive: true}
	subs.active[7] = model.Subscription{ID: 1, UserID: 7, MembershipID: 404, Status: model.SubscriptionActive}

	_, err := d.AuthorizeEntry(context.Background(), "tok")
	require.Error(t, err)
}

func TestAuthorizeEntryGranted(t *testing.T) {
	d, qr, users, subs, plans := newFixture()
	validUntil := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	qr.rows["tok"] = model.UserQrCode{ID: 1, UserID: 7, QrToken: "tok"}
	users.users[7] = model.User{ID: 7, Email: "a@x.com", IsActive: true}
	subs.active[7] = model.Subscription{ID: 1, UserID: 7, MembershipID: 3, Status: model.SubscriptionActive, EndDate: validUntil}
	plans.plans[3] = model.Membership{ID: 3, Name: "Premium"}

	dec, err := d.AuthorizeEntry(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, Granted, dec.Verdict)
	assert.Equal(t, uint64(7), dec.UserID)
	assert.Equal(t, "a@x.com", dec.Email)
	assert.Equal(t, "Premium", dec.Membership)
	assert.Equal(t, model.SubscriptionActive, dec.SubscriptionStatus)
	assert.Equal(t, validUntil, dec.ValidUntil)
	assert.WithinDuration(t, time.Now().UTC(), dec.AccessTime, 5*time.Second)
	assert.Equal(t, []uint64{7}, users.touched)
}

func TestAuthorizeEntryRegeneratedTokenInvalidatesOld(t *testing.T) {
	d, qr, users, subs, plans := newFixture()
	users.users[7] = model.User{ID: 7, Email: "a@x.com", IsActive: true}
	subs.active[7] = model.Subscription{ID: 1, UserID: 7, MembershipID: 3, Status: model.SubscriptionActive}
	plans.plans[3] = model.Membership{ID: 3, Name: "Premium"}

	// One row per user: regeneration replaces the token in place.
	qr.rows["old"] = model.UserQrCode{ID: 1, UserID: 7, QrToken: "old"}
	delete(qr.rows, "old")
	qr.rows["new"] = model.UserQrCode{ID: 1, UserID: 7, QrToken: "new"}

	dec, err := d.AuthorizeEntry(context.Background(), "old")
	require.NoError(t, err)
	assert.Equal(t, TokenNotRegistered, dec.Verdict)

	dec, err = d.AuthorizeEntry(context.Background(), "new")
	require.NoError(t, err)
	assert.Equal(t, Granted, dec.Verdict)
}
