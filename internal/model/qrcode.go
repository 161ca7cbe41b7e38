package model

import "time"

// UserQrCode holds the durable per-user QR token from the
// `user_qr_code` table.  user_id carries a unique constraint, so each
// user owns at most one token; regeneration overwrites the row in place
// and the previous token value stops resolving immediately.
type UserQrCode struct {
    ID        uint64    // user_qr_code.id
    UserID    uint64    // user_qr_code.user_id (unique)
    QrToken   string    // user_qr_code.qr_token (opaque UUID string)
    CreatedAt time.Time // user_qr_code.created_at
    UpdatedAt time.Time // user_qr_code.updated_at
}
