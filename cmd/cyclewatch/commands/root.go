package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	policyFile string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cyclewatch",
	Short: "CycleWatch - 반도체 사이클 스코어링 엔진",
	Long: `CycleWatch Unified CLI

종목별 기술 지표와 뉴스 시그널을 이중 점수(기회/매도위험)로 변환하고,
버킷/포트폴리오 리스크를 집계해 포지션 사이징 액션을 생성합니다.

Usage:
  go run ./cmd/cyclewatch [command]

Examples:
  go run ./cmd/cyclewatch serve
  go run ./cmd/cyclewatch run
  go run ./cmd/cyclewatch analyze MU
  go run ./cmd/cyclewatch policy show`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&policyFile, "policy", "", "policy YAML file (default: built-in baseline)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
