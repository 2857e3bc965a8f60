package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// CatalogRepository answers batch existence lookups over reference tables.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository constructs the repository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ExistingCourseIDs returns the subset of ids present in courses.
func (r *CatalogRepository) ExistingCourseIDs(ctx context.Context, ids []int64) ([]int64, error) {
	return r.existing(ctx, `SELECT id FROM courses WHERE id = ANY($1)`, "courses", ids)
}

// ExistingClassroomIDs returns the subset of ids present in classrooms.
func (r *CatalogRepository) ExistingClassroomIDs(ctx context.Context, ids []int64) ([]int64, error) {
	return r.existing(ctx, `SELECT id FROM classrooms WHERE id = ANY($1)`, "classrooms", ids)
}

// ExistingTimeSlotIDs returns the subset of ids present in time_slots.
func (r *CatalogRepository) ExistingTimeSlotIDs(ctx context.Context, ids []int64) ([]int64, error) {
	return r.existing(ctx, `SELECT id FROM time_slots WHERE id = ANY($1)`, "time slots", ids)
}

func (r *CatalogRepository) existing(ctx context.Context, query, label string, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []int64
	if err := r.db.SelectContext(ctx, &found, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("lookup %s: %w", label, err)
	}
	return found, nil
}
