package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/gymcore/access-api/internal/model"
)

// isDuplicate reports whether a MySQL error is a 1062 duplicate-key
// violation.
func isDuplicate(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "1062")
}

// ProfileRepo persists the one-to-one `profile` rows.
type ProfileRepo struct{ DB *sql.DB }

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{DB: db} }

// Create inserts a profile after an explicit duplicate check.  The check
// and insert are not atomic; the unique index on user_id backstops the
// race and also surfaces as ErrProfileExists.
func (r *ProfileRepo) Create(ctx context.Context, p *model.Profile) error {
	existing, err := r.GetByUser(ctx, p.UserID)
	if err == nil && existing.ID != 0 {
		return ErrProfileExists
	}
	if err != nil && err != ErrNotFound {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO profile (user_id, full_name, phone, birth_date, gender, photo_url) VALUES (?,?,?,?,?,?)",
		p.UserID, p.FullName, p.Phone, p.BirthDate, p.Gender, p.PhotoURL)
	if err != nil {
		if isDuplicate(err) {
			return ErrProfileExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetByUser fetches the profile owned by a user.
func (r *ProfileRepo) GetByUser(ctx context.Context, userID uint64) (model.Profile, error) {
	var (
		p        model.Profile
		phone    sql.NullString
		photoURL sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, full_name, phone, birth_date, gender, photo_url FROM profile WHERE user_id=? LIMIT 1",
		userID).Scan(&p.ID, &p.UserID, &p.FullName, &phone, &p.BirthDate, &p.Gender, &photoURL)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Profile{}, ErrNotFound
		}
		return model.Profile{}, err
	}
	if phone.Valid {
		v := phone.String
		p.Phone = &v
	}
	if photoURL.Valid {
		v := photoURL.String
		p.PhotoURL = &v
	}
	return p, nil
}
