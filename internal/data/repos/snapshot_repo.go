package repos

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jwpark/cyclewatch/internal/contracts"
)

// SnapshotRepository loads pre-computed indicator snapshots. Implements
// brain.SnapshotSource.
// ⭐ SSOT: 지표 스냅샷 조회는 여기서만
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepository creates a new snapshot repository.
func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

// Snapshots returns the latest indicator snapshot per ticker. A ticker with
// no stored indicators is simply absent from the result; the caller decides
// how to handle it.
func (r *SnapshotRepository) Snapshots(ctx context.Context, tickers []string) (map[string]*contracts.IndicatorSnapshot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ticker, indicator, value, lookback_days
		FROM cyclewatch.indicators
		WHERE ticker = ANY($1)
	`, tickers)
	if err != nil {
		return nil, fmt.Errorf("query indicators: %w", err)
	}
	defer rows.Close()

	out := map[string]*contracts.IndicatorSnapshot{}
	for rows.Next() {
		var (
			ticker, indicator string
			value             float64
			lookbackDays      int
		)
		if err := rows.Scan(&ticker, &indicator, &value, &lookbackDays); err != nil {
			return nil, fmt.Errorf("scan indicator row: %w", err)
		}

		snap, ok := out[ticker]
		if !ok {
			snap = &contracts.IndicatorSnapshot{
				Ticker:       ticker,
				LookbackDays: lookbackDays,
				Values:       map[string]float64{},
			}
			out[ticker] = snap
		}
		snap.Values[indicator] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate indicators: %w", err)
	}

	return out, nil
}

// SaveSnapshot stores one ticker's snapshot, replacing previous values.
func (r *SnapshotRepository) SaveSnapshot(ctx context.Context, snap *contracts.IndicatorSnapshot) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM cyclewatch.indicators WHERE ticker = $1`, snap.Ticker); err != nil {
		return fmt.Errorf("clear indicators: %w", err)
	}

	for indicator, value := range snap.Values {
		_, err := tx.Exec(ctx, `
			INSERT INTO cyclewatch.indicators (ticker, indicator, value, lookback_days)
			VALUES ($1, $2, $3, $4)
		`, snap.Ticker, indicator, value, snap.LookbackDays)
		if err != nil {
			return fmt.Errorf("insert indicator %s/%s: %w", snap.Ticker, indicator, err)
		}
	}

	return tx.Commit(ctx)
}
