package brain

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jwpark/cyclewatch/internal/actions"
	"github.com/jwpark/cyclewatch/internal/contracts"
	"github.com/jwpark/cyclewatch/internal/portfolio"
	"github.com/jwpark/cyclewatch/internal/strategyconfig"
	"github.com/jwpark/cyclewatch/pkg/logger"
)

// SnapshotSource provides pre-computed indicator snapshots per ticker.
type SnapshotSource interface {
	Snapshots(ctx context.Context, tickers []string) (map[string]*contracts.IndicatorSnapshot, error)
}

// NewsSource provides headline aggregates per ticker. A missing ticker is
// fine; the quality gate handles thin news coverage.
type NewsSource interface {
	Aggregates(ctx context.Context, tickers []string) (map[string]*contracts.HeadlineAggregate, error)
}

// RunStore persists completed runs. Optional.
type RunStore interface {
	SaveRun(ctx context.Context, result *RunResult) error
}

// RunConfig holds configuration for one analysis run.
type RunConfig struct {
	RunID      string
	Date       time.Time
	PolicyHash string
	Workers    int
}

// RunResult is the complete output of one pipeline run.
type RunResult struct {
	RunID      string    `json:"run_id"`
	Date       time.Time `json:"date"`
	PolicyHash string    `json:"policy_hash"`

	Tickers   map[string]*TickerAnalysis     `json:"tickers"`
	Portfolio *contracts.PortfolioRiskResult `json:"portfolio"`
	Actions   []contracts.Action             `json:"actions"`

	Duration time.Duration `json:"duration"`
}

// Orchestrator coordinates the full pipeline: per-ticker analysis fanned out
// over a worker pool, then the bucket/portfolio join, then action generation.
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Orchestrator struct {
	analyzer   *StockAnalyzer
	aggregator *portfolio.RiskAggregator
	generator  *actions.Generator

	snapshots SnapshotSource
	news      NewsSource
	store     RunStore

	logger *logger.Logger
}

// NewOrchestrator creates an orchestrator. store may be nil to skip
// persistence.
func NewOrchestrator(
	cfg *strategyconfig.Config,
	snapshots SnapshotSource,
	news NewsSource,
	store RunStore,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		analyzer:   NewStockAnalyzer(cfg, log),
		aggregator: portfolio.NewRiskAggregator(cfg.Portfolio, log),
		generator:  actions.NewGenerator(cfg.Actions, log),
		snapshots:  snapshots,
		news:       news,
		store:      store,
		logger:     log,
	}
}

// Run executes one full analysis over the given positions. Per-ticker work
// has no cross-ticker dependency and runs concurrently; the aggregators join
// once every ticker is done.
func (o *Orchestrator) Run(
	ctx context.Context,
	config RunConfig,
	positions []contracts.PositionInput,
	totalValue float64,
) (*RunResult, error) {
	start := time.Now()

	workers := config.Workers
	if workers <= 0 {
		workers = 4
	}

	tickers := analyzableTickers(positions)

	o.logger.WithFields(map[string]interface{}{
		"run_id":      config.RunID,
		"date":        config.Date.Format("2006-01-02"),
		"policy_hash": config.PolicyHash,
		"tickers":     len(tickers),
		"workers":     workers,
	}).Info("Starting cycle analysis run")

	snaps, err := o.snapshots.Snapshots(ctx, tickers)
	if err != nil {
		return nil, fmt.Errorf("load snapshots: %w", err)
	}

	var aggregates map[string]*contracts.HeadlineAggregate
	if o.news != nil {
		aggregates, err = o.news.Aggregates(ctx, tickers)
		if err != nil {
			// 뉴스 소스 실패는 치명적이지 않음: 게이트가 뉴스 클러스터를 막는다
			o.logger.WithError(err).Warn("News source failed, running without headline data")
			aggregates = nil
		}
	}

	analyses := o.analyzeAll(ctx, tickers, snaps, aggregates, workers)

	// Join: 버킷/포트폴리오 집계는 전 종목 결과가 모인 후에만
	stockAnalyses := make(map[string]*contracts.StockCycleAnalysis, len(analyses))
	for ticker, ta := range analyses {
		stockAnalyses[ticker] = ta.Analysis
	}

	riskResult, err := o.aggregator.Aggregate(positions, stockAnalyses, totalValue)
	if err != nil {
		return nil, fmt.Errorf("portfolio aggregation: %w", err)
	}

	actionList := o.generator.Generate(riskResult, positions, stockAnalyses)

	result := &RunResult{
		RunID:      config.RunID,
		Date:       config.Date,
		PolicyHash: config.PolicyHash,
		Tickers:    analyses,
		Portfolio:  riskResult,
		Actions:    actionList,
		Duration:   time.Since(start),
	}

	if o.store != nil {
		if err := o.store.SaveRun(ctx, result); err != nil {
			return nil, fmt.Errorf("save run: %w", err)
		}
	}

	o.logger.WithFields(map[string]interface{}{
		"run_id":          config.RunID,
		"tickers":         len(analyses),
		"actions":         len(actionList),
		"mode":            riskResult.Mode,
		"transition_risk": riskResult.TransitionRisk,
		"duration":        result.Duration.Seconds(),
	}).Info("Cycle analysis run completed")

	return result, nil
}

// AnalyzeTicker runs the per-ticker pipeline for a single symbol, outside a
// portfolio context.
func (o *Orchestrator) AnalyzeTicker(ctx context.Context, ticker string) (*TickerAnalysis, error) {
	snaps, err := o.snapshots.Snapshots(ctx, []string{ticker})
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	snap, ok := snaps[ticker]
	if !ok {
		return nil, fmt.Errorf("no snapshot for %s", ticker)
	}

	var news *contracts.HeadlineAggregate
	if o.news != nil {
		if aggregates, err := o.news.Aggregates(ctx, []string{ticker}); err == nil {
			news = aggregates[ticker]
		}
	}

	return o.analyzer.Analyze(snap, news), nil
}

// analyzeAll fans per-ticker analysis out over a bounded worker pool.
func (o *Orchestrator) analyzeAll(
	ctx context.Context,
	tickers []string,
	snaps map[string]*contracts.IndicatorSnapshot,
	aggregates map[string]*contracts.HeadlineAggregate,
	workers int,
) map[string]*TickerAnalysis {
	tickerCh := make(chan string, len(tickers))
	resultCh := make(chan *TickerAnalysis, len(tickers))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ticker := range tickerCh {
				select {
				case <-ctx.Done():
					return
				default:
				}

				snap, ok := snaps[ticker]
				if !ok {
					o.logger.WithFields(map[string]interface{}{
						"ticker": ticker,
					}).Warn("No snapshot, skipping ticker")
					continue
				}
				resultCh <- o.analyzer.Analyze(snap, aggregates[ticker])
			}
		}()
	}

	for _, ticker := range tickers {
		tickerCh <- ticker
	}
	close(tickerCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	out := make(map[string]*TickerAnalysis, len(tickers))
	for ta := range resultCh {
		out[ta.Ticker] = ta
	}
	return out
}

// analyzableTickers lists non-cash tickers in deterministic order.
func analyzableTickers(positions []contracts.PositionInput) []string {
	seen := map[string]bool{}
	var out []string
	for _, pos := range positions {
		if pos.Bucket == contracts.BucketCash || seen[pos.Ticker] {
			continue
		}
		seen[pos.Ticker] = true
		out = append(out, pos.Ticker)
	}
	sort.Strings(out)
	return out
}

// GenerateRunID generates a unique run ID.
func GenerateRunID() string {
	return fmt.Sprintf("run_%s", time.Now().Format("20060102_150405"))
}
