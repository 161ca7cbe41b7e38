package repository

import (
	"context"
	"database/sql"

	"github.com/gymcore/access-api/internal/model"
)

// MembershipRepo reads the `membership` plan table.
type MembershipRepo struct{ DB *sql.DB }

func NewMembershipRepo(db *sql.DB) *MembershipRepo { return &MembershipRepo{DB: db} }

// GetByID fetches a membership plan by id.
func (r *MembershipRepo) GetByID(ctx context.Context, id uint64) (model.Membership, error) {
	var m model.Membership
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, duration_days, price, created_at, updated_at FROM membership WHERE id=? LIMIT 1",
		id).Scan(&m.ID, &m.Name, &m.DurationDays, &m.PriceCents, &m.CreatedAt, &m.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Membership{}, ErrNotFound
	}
	return m, err
}
