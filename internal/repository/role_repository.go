package repository

import (
	"context"
	"database/sql"

	"github.com/gymcore/access-api/internal/model"
)

// RoleRepo reads the static `role` reference table.
type RoleRepo struct{ DB *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{DB: db} }

// GetByID fetches a role by id.
func (r *RoleRepo) GetByID(ctx context.Context, id uint64) (model.Role, error) {
	var role model.Role
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, description FROM role WHERE id=? LIMIT 1",
		id).Scan(&role.ID, &role.Name, &role.Description)
	if err == sql.ErrNoRows {
		return model.Role{}, ErrNotFound
	}
	return role, err
}

// PermissionsForRole lists the permission names granted to a role through
// the role_permission pivot.
func (r *RoleRepo) PermissionsForRole(ctx context.Context, roleID uint64) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT p.name FROM permission p
		 JOIN role_permission rp ON rp.permission_id = p.id
		 WHERE rp.role_id = ?`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}
