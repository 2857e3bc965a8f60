package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// UserRepository reads users and their role grants.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FilterIDsWithRole returns the ids among the input whose user holds role.
func (r *UserRepository) FilterIDsWithRole(ctx context.Context, ids []int64, role models.UserRole) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `
SELECT DISTINCT u.id FROM users u
JOIN user_roles ur ON ur.user_id = u.id
JOIN roles r ON r.id = ur.role_id
WHERE u.id = ANY($1) AND r.name = $2`
	var found []int64
	if err := r.db.SelectContext(ctx, &found, query, pq.Array(ids), role); err != nil {
		return nil, fmt.Errorf("filter users by role: %w", err)
	}
	return found, nil
}
