package model

// Otp is a single-use numeric password recovery code from the `otps`
// table.  At most one row per user may be active at any time; issuing a
// new code deactivates all earlier active ones.  Consumed rows are kept
// as an audit trail, never deleted.
type Otp struct {
    ID       uint64 // otps.id
    UserID   uint64 // otps.user_id
    Code     string // otps.token (5 digit numeric string)
    IsActive bool   // otps.is_active
}
