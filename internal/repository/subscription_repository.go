package repository

import (
	"context"
	"database/sql"

	"github.com/gymcore/access-api/internal/model"
)

// SubscriptionRepo reads membership entitlements from the `subscription`
// table.  The repo only reads; subscription sales and renewals live in a
// separate back office system.
type SubscriptionRepo struct{ DB *sql.DB }

func NewSubscriptionRepo(db *sql.DB) *SubscriptionRepo { return &SubscriptionRepo{DB: db} }

const subscriptionColumns = "id, user_id, membership_id, start_date, end_date, status, is_renewable, canceled_at, created_at, updated_at"

// ActiveForUser returns the user's subscription with status exactly
// 'active' and the current date inside its validity window.  Absence is
// ErrNotFound and means entry must be denied.
func (r *SubscriptionRepo) ActiveForUser(ctx context.Context, userID uint64) (model.Subscription, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+subscriptionColumns+` FROM subscription
		 WHERE user_id=? AND status='active' AND start_date<=CURDATE() AND end_date>=CURDATE()
		 LIMIT 1`, userID))
}

// LatestForUser returns the subscription with the most recent end date,
// regardless of status.  Used only for diagnostic messaging when no
// active row exists.
func (r *SubscriptionRepo) LatestForUser(ctx context.Context, userID uint64) (model.Subscription, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+subscriptionColumns+" FROM subscription WHERE user_id=? ORDER BY end_date DESC LIMIT 1",
		userID))
}

func (r *SubscriptionRepo) scanOne(row *sql.Row) (model.Subscription, error) {
	var (
		s          model.Subscription
		canceledAt sql.NullTime
	)
	err := row.Scan(&s.ID, &s.UserID, &s.MembershipID, &s.StartDate, &s.EndDate,
		&s.Status, &s.IsRenewable, &canceledAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Subscription{}, ErrNotFound
		}
		return model.Subscription{}, err
	}
	if canceledAt.Valid {
		t := canceledAt.Time
		s.CanceledAt = &t
	}
	return s, nil
}
