package access

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gymcore/access-api/internal/model"
	"github.com/gymcore/access-api/internal/repository"
)

// Store interfaces narrow the repositories to the lookups the entry
// pipeline needs.  The concrete repos in internal/repository satisfy
// them; tests substitute fakes.

type QrStore interface {
	GetByToken(ctx context.Context, token string) (model.UserQrCode, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
	TouchLastAccess(ctx context.Context, userID uint64) error
}

type SubscriptionStore interface {
	ActiveForUser(ctx context.Context, userID uint64) (model.Subscription, error)
	LatestForUser(ctx context.Context, userID uint64) (model.Subscription, error)
}

type MembershipStore interface {
	GetByID(ctx context.Context, id uint64) (model.Membership, error)
}

// Verdict classifies the outcome of an entry decision.  Every denial is
// terminal; no stage of the pipeline is retried.
type Verdict int

const (
	Granted Verdict = iota
	TokenNotRegistered
	UserNotFound
	UserInactive
	SubscriptionExpired
)

// Decision is the advisory result of authorizing a presented QR token.
// The service does not unlock anything itself; an external actuator acts
// on the verdict.  For SubscriptionExpired, SubscriptionStatus carries
// the last known status ("none" when the user never had a subscription).
type Decision struct {
	Verdict            Verdict
	UserID             uint64
	Email              string
	SubscriptionStatus string
	Membership         string
	ValidUntil         time.Time
	AccessTime         time.Time
}

// Decider runs the staged entry pipeline against the persistence stores.
type Decider struct {
	Qr            QrStore
	Users         UserStore
	Subscriptions SubscriptionStore
	Memberships   MembershipStore
}

func NewDecider(qr QrStore, users UserStore, subs SubscriptionStore, memberships MembershipStore) *Decider {
	return &Decider{Qr: qr, Users: users, Subscriptions: subs, Memberships: memberships}
}

// AuthorizeEntry resolves a presented QR token to an entry decision.
// Stages, each a hard denial on failure:
//
//  1. token -> QR row (TokenNotRegistered)
//  2. QR row -> user  (UserNotFound)
//  3. user active     (UserInactive)
//  4. active subscription row (SubscriptionExpired, last status attached)
//  5. subscription -> membership (missing row is an internal fault, not a
//     user-facing denial; it surfaces as a non-nil error)
//
// On a grant the user's last_access stamp is updated best-effort.
func (d *Decider) AuthorizeEntry(ctx context.Context, qrToken string) (Decision, error) {
	qr, err := d.Qr.GetByToken(ctx, qrToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Decision{Verdict: TokenNotRegistered}, nil
		}
		return Decision{}, err
	}

	user, err := d.Users.GetByID(ctx, qr.UserID)
	if err != nil {
		// A dangling QR row should not happen with intact referential
		// integrity, but the pipeline treats it as a recoverable denial.
		if errors.Is(err, repository.ErrNotFound) {
			return Decision{Verdict: UserNotFound}, nil
		}
		return Decision{}, err
	}

	if !user.IsActive {
		return Decision{Verdict: UserInactive, UserID: user.ID}, nil
	}

	sub, err := d.Subscriptions.ActiveForUser(ctx, user.ID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return Decision{}, err
		}
		// No active row: look up the most recent subscription purely for
		// the denial payload's diagnostic status.
		status := "none"
		if last, lerr := d.Subscriptions.LatestForUser(ctx, user.ID); lerr == nil {
			status = last.Status
		} else if !errors.Is(lerr, repository.ErrNotFound) {
			return Decision{}, lerr
		}
		return Decision{
			Verdict:            SubscriptionExpired,
			UserID:             user.ID,
			SubscriptionStatus: status,
		}, nil
	}

	membership, err := d.Memberships.GetByID(ctx, sub.MembershipID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Decision{}, fmt.Errorf("subscription %d references missing membership %d", sub.ID, sub.MembershipID)
		}
		return Decision{}, err
	}

	// Grant. The stamp is informational; a write failure must not flip an
	// already-made decision.
	_ = d.Users.TouchLastAccess(ctx, user.ID)

	return Decision{
		Verdict:            Granted,
		UserID:             user.ID,
		Email:              user.Email,
		SubscriptionStatus: sub.Status,
		Membership:         membership.Name,
		ValidUntil:         sub.EndDate,
		AccessTime:         time.Now().UTC(),
	}, nil
}
