package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jwpark/cyclewatch/internal/contracts"
	"github.com/jwpark/cyclewatch/internal/strategyconfig"
	"github.com/jwpark/cyclewatch/pkg/config"
)

// policyCmd represents the policy command
var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "전략 정책 관리",
	Long: `전략 정책 YAML을 검증하고 내용을 출력합니다.

Example:
  go run ./cmd/cyclewatch policy show
  go run ./cmd/cyclewatch policy validate --policy config/policy.yaml`,
}

var (
	policyShowCmd = &cobra.Command{
		Use:   "show",
		Short: "정책 요약 출력",
		RunE:  runPolicyShow,
	}

	policyValidateCmd = &cobra.Command{
		Use:   "validate",
		Short: "정책 파일 검증",
		RunE:  runPolicyValidate,
	}
)

func init() {
	rootCmd.AddCommand(policyCmd)
	policyCmd.AddCommand(policyShowCmd)
	policyCmd.AddCommand(policyValidateCmd)
}

func resolvePolicy() (*strategyconfig.Config, string, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, "", fmt.Errorf("load config: %w", err)
	}
	return loadPolicy(cfg)
}

func runPolicyShow(cmd *cobra.Command, args []string) error {
	policy, hash, err := resolvePolicy()
	if err != nil {
		return err
	}

	fmt.Println("=== Strategy Policy ===")
	fmt.Printf("Policy ID: %s (version %s)\n", policy.Meta.PolicyID, policy.Meta.Version)
	fmt.Printf("Hash: %s\n\n", hash)

	fmt.Println("Cluster Weights:")
	names := make([]string, 0, len(policy.Clusters.Weights))
	for name := range policy.Clusters.Weights {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-26s %.2f\n", name, policy.Clusters.Weights[name])
	}
	fmt.Println()

	fmt.Println("Bucket Limits:")
	for _, bucket := range sortedBuckets(policy) {
		fmt.Printf("  %-12s %.0f%%\n", bucket, policy.Portfolio.BucketLimits[bucket]*100)
	}
	fmt.Println()

	fmt.Printf("Cycle Bands: early<%.0f mid<%.0f sub<%.0f downturn>=%.0f (sub-band → %s)\n",
		policy.Cycle.EarlyMax, policy.Cycle.MidMax, policy.Cycle.SubBandMax,
		policy.Cycle.DownturnMin, policy.Cycle.SubBandPhase)
	fmt.Printf("Mode Thresholds: offense<%.0f defense>%.0f\n",
		policy.Portfolio.OffenseMaxRisk, policy.Portfolio.DefenseMinRisk)

	return nil
}

func runPolicyValidate(cmd *cobra.Command, args []string) error {
	policy, hash, err := resolvePolicy()
	if err != nil {
		return err
	}

	if err := strategyconfig.Validate(policy); err != nil {
		return fmt.Errorf("policy invalid: %w", err)
	}

	fmt.Printf("✅ Policy valid: %s (hash %s)\n", policy.Meta.PolicyID, hash[:12])
	return nil
}

func sortedBuckets(policy *strategyconfig.Config) []contracts.Bucket {
	buckets := make([]contracts.Bucket, 0, len(policy.Portfolio.BucketLimits))
	for bucket := range policy.Portfolio.BucketLimits {
		buckets = append(buckets, bucket)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i] < buckets[j] })
	return buckets
}
