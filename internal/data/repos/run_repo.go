package repos

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jwpark/cyclewatch/internal/brain"
	"github.com/jwpark/cyclewatch/internal/contracts"
)

// RunRepository persists completed analysis runs. Implements brain.RunStore.
// ⭐ SSOT: 런 결과 저장/조회는 여기서만
type RunRepository struct {
	pool *pgxpool.Pool
}

// NewRunRepository creates a new run repository.
func NewRunRepository(pool *pgxpool.Pool) *RunRepository {
	return &RunRepository{pool: pool}
}

// SaveRun stores the run summary plus per-ticker analyses and actions in one
// transaction.
func (r *RunRepository) SaveRun(ctx context.Context, result *brain.RunResult) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	portfolioJSON, err := json.Marshal(result.Portfolio)
	if err != nil {
		return fmt.Errorf("marshal portfolio result: %w", err)
	}
	actionsJSON, err := json.Marshal(result.Actions)
	if err != nil {
		return fmt.Errorf("marshal actions: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO cyclewatch.runs
			(run_id, run_date, policy_hash, transition_risk, mode, portfolio, actions, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (run_id) DO UPDATE SET
			transition_risk = EXCLUDED.transition_risk,
			mode            = EXCLUDED.mode,
			portfolio       = EXCLUDED.portfolio,
			actions         = EXCLUDED.actions,
			duration_ms     = EXCLUDED.duration_ms
	`, result.RunID, result.Date, result.PolicyHash,
		result.Portfolio.TransitionRisk, string(result.Portfolio.Mode),
		portfolioJSON, actionsJSON, result.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for ticker, ta := range result.Tickers {
		analysisJSON, err := json.Marshal(ta)
		if err != nil {
			return fmt.Errorf("marshal analysis for %s: %w", ticker, err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO cyclewatch.ticker_analyses
				(run_id, ticker, opportunity, sell_risk, bias, phase, pressure, data_quality_ok, analysis)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (run_id, ticker) DO UPDATE SET
				opportunity     = EXCLUDED.opportunity,
				sell_risk       = EXCLUDED.sell_risk,
				bias            = EXCLUDED.bias,
				phase           = EXCLUDED.phase,
				pressure        = EXCLUDED.pressure,
				data_quality_ok = EXCLUDED.data_quality_ok,
				analysis        = EXCLUDED.analysis
		`, result.RunID, ticker,
			ta.GatedScore.OpportunityScore, ta.GatedScore.SellRiskScore,
			string(ta.GatedScore.Bias), string(ta.Analysis.Phase),
			ta.Analysis.CyclePressure, ta.Analysis.DataQualityOK, analysisJSON)
		if err != nil {
			return fmt.Errorf("insert analysis for %s: %w", ticker, err)
		}
	}

	return tx.Commit(ctx)
}

// GetRun loads one stored run by ID.
func (r *RunRepository) GetRun(ctx context.Context, runID string) (*brain.RunResult, error) {
	var (
		result        brain.RunResult
		portfolioJSON []byte
		actionsJSON   []byte
		durationMS    int64
	)

	err := r.pool.QueryRow(ctx, `
		SELECT run_id, run_date, policy_hash, portfolio, actions, duration_ms
		FROM cyclewatch.runs
		WHERE run_id = $1
	`, runID).Scan(&result.RunID, &result.Date, &result.PolicyHash,
		&portfolioJSON, &actionsJSON, &durationMS)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}

	if err := json.Unmarshal(portfolioJSON, &result.Portfolio); err != nil {
		return nil, fmt.Errorf("unmarshal portfolio: %w", err)
	}
	if err := json.Unmarshal(actionsJSON, &result.Actions); err != nil {
		return nil, fmt.Errorf("unmarshal actions: %w", err)
	}
	result.Duration = time.Duration(durationMS) * time.Millisecond

	result.Tickers = map[string]*brain.TickerAnalysis{}
	rows, err := r.pool.Query(ctx, `
		SELECT ticker, analysis
		FROM cyclewatch.ticker_analyses
		WHERE run_id = $1
		ORDER BY ticker
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ticker string
		var analysisJSON []byte
		if err := rows.Scan(&ticker, &analysisJSON); err != nil {
			return nil, fmt.Errorf("scan analysis row: %w", err)
		}
		var ta brain.TickerAnalysis
		if err := json.Unmarshal(analysisJSON, &ta); err != nil {
			return nil, fmt.Errorf("unmarshal analysis for %s: %w", ticker, err)
		}
		result.Tickers[ticker] = &ta
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analyses: %w", err)
	}

	return &result, nil
}

// LatestRunID returns the most recent run ID, or empty when none exist.
func (r *RunRepository) LatestRunID(ctx context.Context) (string, error) {
	var runID string
	err := r.pool.QueryRow(ctx, `
		SELECT run_id FROM cyclewatch.runs
		ORDER BY run_date DESC, run_id DESC
		LIMIT 1
	`).Scan(&runID)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query latest run: %w", err)
	}
	return runID, nil
}

// ListActions returns the stored actions of one run.
func (r *RunRepository) ListActions(ctx context.Context, runID string) ([]contracts.Action, error) {
	var actionsJSON []byte
	err := r.pool.QueryRow(ctx, `
		SELECT actions FROM cyclewatch.runs WHERE run_id = $1
	`, runID).Scan(&actionsJSON)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}

	var actions []contracts.Action
	if err := json.Unmarshal(actionsJSON, &actions); err != nil {
		return nil, fmt.Errorf("unmarshal actions: %w", err)
	}
	return actions, nil
}
