package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwpark/cyclewatch/internal/brain"
	"github.com/jwpark/cyclewatch/internal/contracts"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "전체 분석 런 실행",
	Long: `저장된 포트폴리오 전체에 대해 분석 파이프라인을 실행합니다.

종목별 분석 → 버킷 집계 → 포트폴리오 리스크 → 액션 생성 순서로
실행하고 결과를 저장합니다.

Flags:
  --date      실행 날짜 (기본: 오늘)
  --workers   동시 분석 워커 수 (기본: 4)

Example:
  go run ./cmd/cyclewatch run
  go run ./cmd/cyclewatch run --date 2026-08-21 --workers 8`,
	RunE: runAnalysis,
}

var (
	runDate    string
	runWorkers int
)

func init() {
	rootCmd.AddCommand(runCmd)

	// Flags
	runCmd.Flags().StringVar(&runDate, "date", "", "실행 날짜 (YYYY-MM-DD, 기본: 오늘)")
	runCmd.Flags().IntVar(&runWorkers, "workers", 4, "동시 분석 워커 수")
}

func runAnalysis(cmd *cobra.Command, args []string) error {
	fmt.Println("=== CycleWatch Analysis Run ===")

	// Parse date
	var date time.Time
	if runDate != "" {
		parsed, err := time.Parse("2006-01-02", runDate)
		if err != nil {
			return fmt.Errorf("invalid date format: %w", err)
		}
		date = parsed
	} else {
		date = time.Now()
	}

	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.close()

	positions, totalValue, err := d.positions.Positions(cmd.Context())
	if err != nil {
		return fmt.Errorf("load positions: %w", err)
	}
	if len(positions) == 0 {
		return fmt.Errorf("no positions stored, use the API to set positions first")
	}

	runConfig := brain.RunConfig{
		RunID:      brain.GenerateRunID(),
		Date:       date,
		PolicyHash: d.policyHash,
		Workers:    runWorkers,
	}

	fmt.Printf("\n📅 Run Date: %s\n", date.Format("2006-01-02"))
	fmt.Printf("📊 Positions: %d (total value %.0f)\n", len(positions), totalValue)
	fmt.Printf("🚀 Starting run: %s\n\n", runConfig.RunID)

	result, err := d.orchestrator.Run(cmd.Context(), runConfig, positions, totalValue)
	if err != nil {
		return fmt.Errorf("analysis run failed: %w", err)
	}

	printRunResult(result)
	return nil
}

func printRunResult(result *brain.RunResult) {
	fmt.Println("✅ Analysis Run Completed")
	fmt.Println()

	// Summary
	fmt.Printf("Run ID: %s\n", result.RunID)
	fmt.Printf("Date: %s\n", result.Date.Format("2006-01-02"))
	fmt.Printf("Duration: %.2fs\n", result.Duration.Seconds())
	fmt.Println()

	// Portfolio
	p := result.Portfolio
	fmt.Printf("Portfolio Phase: %s (pressure %.1f)\n", p.Phase, p.Pressure)
	fmt.Printf("Transition Risk: %.1f\n", p.TransitionRisk)
	fmt.Printf("Mode: %s\n", p.Mode)
	if len(p.PeakingTickers) > 0 {
		fmt.Printf("Peaking: %v (%.0f%% of portfolio)\n", p.PeakingTickers, p.PeakingWeight*100)
	}
	fmt.Println()

	// Buckets
	fmt.Println("Buckets:")
	for bucket, agg := range p.Buckets {
		fmt.Printf("  %-12s weight %5.1f%%  phase %-8s  risk %5.1f\n",
			bucket, agg.Weight*100, agg.Phase, agg.TransitionRisk)
	}
	fmt.Println()

	// Actions
	if len(result.Actions) == 0 {
		fmt.Println("Actions: none")
		return
	}
	fmt.Printf("Actions (%d):\n", len(result.Actions))
	for _, a := range result.Actions {
		printAction(a)
	}
}

func printAction(a contracts.Action) {
	if a.IsBucketLevel() {
		fmt.Printf("  [%s] %s bucket: %.1f%% → %.1f%% (%s, %s)\n",
			a.Kind, a.Bucket, a.FromWeight*100, a.ToWeight*100, a.Urgency, a.Timeframe)
	} else {
		fmt.Printf("  [%s] %s: %.1f%% → %.1f%% (contribution %.1f)\n",
			a.Kind, a.Ticker, a.FromWeight*100, a.ToWeight*100, a.Contribution)
	}
	for _, reason := range a.Reasons {
		fmt.Printf("        - %s\n", reason)
	}
}
