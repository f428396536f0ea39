package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jwpark/cyclewatch/internal/brain"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <ticker>",
	Short: "단일 종목 분석",
	Long: `한 종목에 대해 전체 분석 파이프라인을 실행합니다.

클러스터 평가 → 이중 점수 → 사이클 국면 → 품질 게이트 순서로
실행하고 결과를 출력합니다. 저장하지 않습니다.

Example:
  go run ./cmd/cyclewatch analyze MU
  go run ./cmd/cyclewatch analyze NVDA -v`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ticker := strings.ToUpper(args[0])

	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.close()

	analysis, err := d.orchestrator.AnalyzeTicker(cmd.Context(), ticker)
	if err != nil {
		return fmt.Errorf("analyze %s: %w", ticker, err)
	}

	printTickerAnalysis(analysis)
	return nil
}

func printTickerAnalysis(ta *brain.TickerAnalysis) {
	fmt.Printf("=== %s ===\n\n", ta.Ticker)

	// Scores: raw vs gated side by side
	fmt.Println("Scores (raw → gated):")
	fmt.Printf("  Opportunity: %5.1f → %5.1f\n",
		ta.RawScore.OpportunityScore, ta.GatedScore.OpportunityScore)
	fmt.Printf("  Sell Risk:   %5.1f → %5.1f\n",
		ta.RawScore.SellRiskScore, ta.GatedScore.SellRiskScore)
	fmt.Printf("  Bias:        %s → %s\n", ta.RawScore.Bias, ta.GatedScore.Bias)
	fmt.Printf("  Confidence:  %5.1f → %5.1f\n",
		ta.RawScore.Confidence, ta.GatedScore.Confidence)
	fmt.Println()

	// Cycle
	fmt.Printf("Cycle Phase: %s (composite %.1f, confidence %.0f)\n",
		ta.Cycle.Phase, ta.Cycle.Composite, ta.Cycle.Confidence)
	fmt.Printf("Transition Risk: %.1f\n", ta.Cycle.TransitionRisk)
	for _, sig := range ta.Cycle.KeySignals {
		fmt.Printf("  - %s\n", sig)
	}
	fmt.Println()

	// Critical signals
	if len(ta.Analysis.CriticalSignals) > 0 {
		fmt.Printf("Critical Signals: %s\n", strings.Join(ta.Analysis.CriticalSignals, ", "))
		fmt.Println()
	}

	// Data quality
	if ta.Analysis.DataQualityOK {
		fmt.Println("Data Quality: OK")
	} else {
		fmt.Println("Data Quality: RESTRICTED")
		for _, reason := range ta.Restrictions.Reasons {
			fmt.Printf("  - %s\n", reason)
		}
	}
}
