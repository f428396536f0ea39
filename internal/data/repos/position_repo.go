package repos

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jwpark/cyclewatch/internal/contracts"
)

// PositionRepository loads and stores the tracked portfolio.
// ⭐ SSOT: 포지션 데이터 저장/조회는 여기서만
type PositionRepository struct {
	pool *pgxpool.Pool
}

// NewPositionRepository creates a new position repository.
func NewPositionRepository(pool *pgxpool.Pool) *PositionRepository {
	return &PositionRepository{pool: pool}
}

// Positions returns the current portfolio with weights derived from market
// values, plus the total portfolio value. Weights always sum to 1.
func (r *PositionRepository) Positions(ctx context.Context) ([]contracts.PositionInput, float64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ticker, market_value, bucket, profile, story_tags
		FROM cyclewatch.positions
		ORDER BY ticker
	`)
	if err != nil {
		return nil, 0, fmt.Errorf("query positions: %w", err)
	}
	defer rows.Close()

	var positions []contracts.PositionInput
	totalValue := 0.0

	for rows.Next() {
		var pos contracts.PositionInput
		var bucket, profile string
		if err := rows.Scan(&pos.Ticker, &pos.MarketValue, &bucket, &profile, &pos.StoryTags); err != nil {
			return nil, 0, fmt.Errorf("scan position row: %w", err)
		}
		pos.Bucket = contracts.Bucket(bucket)
		pos.Profile = contracts.Profile(profile)
		positions = append(positions, pos)
		totalValue += pos.MarketValue
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate positions: %w", err)
	}

	if totalValue > 0 {
		for i := range positions {
			positions[i].Weight = positions[i].MarketValue / totalValue
		}
	}

	return positions, totalValue, nil
}

// ReplacePositions swaps the stored portfolio for a new snapshot.
func (r *PositionRepository) ReplacePositions(ctx context.Context, positions []contracts.PositionInput) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM cyclewatch.positions`); err != nil {
		return fmt.Errorf("clear positions: %w", err)
	}

	for _, pos := range positions {
		_, err := tx.Exec(ctx, `
			INSERT INTO cyclewatch.positions
				(ticker, market_value, bucket, profile, story_tags)
			VALUES ($1, $2, $3, $4, $5)
		`, pos.Ticker, pos.MarketValue, string(pos.Bucket), string(pos.Profile), pos.StoryTags)
		if err != nil {
			return fmt.Errorf("insert position %s: %w", pos.Ticker, err)
		}
	}

	return tx.Commit(ctx)
}
