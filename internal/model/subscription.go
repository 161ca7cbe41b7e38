package model

import "time"

// Subscription status values as stored in subscription.status.
const (
    SubscriptionActive   = "active"
    SubscriptionExpired  = "expired"
    SubscriptionCanceled = "canceled"
)

// Subscription is a time-bounded membership entitlement from the
// `subscription` table.  An "active" status row is required for QR entry;
// its absence is a hard denial.
type Subscription struct {
    ID           uint64     // subscription.id
    UserID       uint64     // subscription.user_id
    MembershipID uint64     // subscription.membership_id
    StartDate    time.Time  // subscription.start_date
    EndDate      time.Time  // subscription.end_date
    Status       string     // subscription.status (active|expired|canceled)
    IsRenewable  bool       // subscription.is_renewable
    CanceledAt   *time.Time // subscription.canceled_at (nullable)
    CreatedAt    time.Time  // subscription.created_at
    UpdatedAt    time.Time  // subscription.updated_at
}

// Membership is a purchasable plan from the `membership` table.
type Membership struct {
    ID           uint64    // membership.id
    Name         string    // membership.name
    DurationDays uint32    // membership.duration_days
    PriceCents   uint64    // membership.price
    CreatedAt    time.Time // membership.created_at
    UpdatedAt    time.Time // membership.updated_at
}
