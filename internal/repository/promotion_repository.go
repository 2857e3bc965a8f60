package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// PromotionRepository reads promotions.
type PromotionRepository struct {
	db *sqlx.DB
}

// NewPromotionRepository constructs the repository.
func NewPromotionRepository(db *sqlx.DB) *PromotionRepository {
	return &PromotionRepository{db: db}
}

// FindByID returns a promotion or sql.ErrNoRows.
func (r *PromotionRepository) FindByID(ctx context.Context, id int64) (*models.Promotion, error) {
	const query = `SELECT id, name, level, student_count, published, created_at, updated_at FROM promotions WHERE id = $1`
	var promotion models.Promotion
	if err := r.db.GetContext(ctx, &promotion, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find promotion: %w", err)
	}
	return &promotion, nil
}
