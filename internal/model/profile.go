package model

import "time"

// Profile is the one-to-one personal data record from the `profile`
// table.  A user gets at most one profile; creation performs an explicit
// duplicate check rather than relying on a constraint error.
type Profile struct {
    ID        uint64    // profile.id
    UserID    uint64    // profile.user_id (unique)
    FullName  string    // profile.full_name
    Phone     *string   // profile.phone (nullable, 10 digits when present)
    BirthDate time.Time // profile.birth_date
    Gender    string    // profile.gender (M|F|Other)
    PhotoURL  *string   // profile.photo_url (nullable)
}
