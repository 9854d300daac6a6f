package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_revenue/internal/models"
)

// StoreScoreRepository reads the upstream store revenue scores.
type StoreScoreRepository struct {
	db *sqlx.DB
}

// NewStoreScoreRepository creates a new StoreScoreRepository.
func NewStoreScoreRepository(db *sqlx.DB) *StoreScoreRepository {
	return &StoreScoreRepository{db: db}
}

// Latest returns the most recent score of storeID, or nil when the store has
// never been scored.
func (r *StoreScoreRepository) Latest(ctx context.Context, storeID string) (*models.StoreRevenueScore, error) {
	const q = `
        SELECT store_id, heat_score, order_prob_7d
        FROM store_revenue_scores
        WHERE store_id = $1
        ORDER BY snapshot_date DESC
        LIMIT 1`

	var s models.StoreRevenueScore
	if err := r.db.GetContext(ctx, &s, q, storeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}
