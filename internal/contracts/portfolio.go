package contracts

// =============================================================================
// Buckets & Positions
// =============================================================================

// Bucket is a portfolio grouping with a weight-limit policy. The catalog is
// the semiconductor segmentation the engine was built around.
type Bucket string

const (
	BucketMemory      Bucket = "Memory"
	BucketEquipment   Bucket = "Equipment"
	BucketEDA         Bucket = "EDA"
	BucketAnalog      Bucket = "Analog"
	BucketFoundry     Bucket = "Foundry"
	BucketPower       Bucket = "Power"
	BucketSpeculative Bucket = "Speculative"
	BucketCash        Bucket = "Cash"
)

// KnownBuckets lists every valid bucket for configuration validation.
var KnownBuckets = []Bucket{
	BucketMemory, BucketEquipment, BucketEDA, BucketAnalog,
	BucketFoundry, BucketPower, BucketSpeculative, BucketCash,
}

// Profile describes a stock's cycle behavior archetype.
type Profile string

const (
	ProfileMemory    Profile = "memory"
	ProfileEquipment Profile = "equipment"
	ProfileEDA       Profile = "eda"
	ProfileAnalog    Profile = "analog"
	ProfileFoundry   Profile = "foundry"
	ProfilePower     Profile = "power"
)

// PositionInput is one portfolio position as consumed by the aggregators.
// Weight is the share of total portfolio value; cash positions carry zero
// cycle pressure.
type PositionInput struct {
	Ticker      string   `json:"ticker"`
	MarketValue float64  `json:"market_value"`
	Weight      float64  `json:"weight"`
	Bucket      Bucket   `json:"bucket"`
	Profile     Profile  `json:"profile"`
	StoryTags   []string `json:"story_tags"`
}

// =============================================================================
// Bucket Aggregate
// =============================================================================

// Contributor is one position's share of a bucket's risk, ranked by
// weight x pressure.
type Contributor struct {
	Ticker          string     `json:"ticker"`
	Weight          float64    `json:"weight"`
	Pressure        float64    `json:"pressure"`
	Contribution    float64    `json:"contribution"` // weight * pressure
	Phase           CyclePhase `json:"phase"`
	CriticalSignals []string   `json:"critical_signals"`
}

// BucketAggregate rolls weighted per-stock pressure, phase, and critical
// signal data up to one bucket.
type BucketAggregate struct {
	Bucket    Bucket  `json:"bucket"`
	Weight    float64 `json:"weight"`     // actual total weight
	TargetMax float64 `json:"target_max"` // policy limit
	Overage   float64 `json:"overage"`    // max(0, weight - target_max)

	Pressure   float64    `json:"pressure"`    // sum(w_i * pressure_i)
	PhaseScore float64    `json:"phase_score"` // sum(w_i * phase_score_i)
	Phase      CyclePhase `json:"phase"`

	BaseRisk        float64 `json:"base_risk"`        // clip(2 * pressure, 0, 100)
	CriticalBreadth float64 `json:"critical_breadth"` // 0-1, weight share with critical signals
	RiskMultiplier  float64 `json:"risk_multiplier"`  // 1 + 0.8 * breadth
	TransitionRisk  float64 `json:"transition_risk"`  // clip(base * multiplier, 0, 100)

	TopContributors []Contributor `json:"top_contributors"`
}

// =============================================================================
// Portfolio Risk
// =============================================================================

// Mode is the portfolio posture derived from transition risk and phase.
type Mode string

const (
	ModeOffense  Mode = "OFFENSE"
	ModeBalanced Mode = "BALANCED"
	ModeDefense  Mode = "DEFENSE"
)

// PortfolioRiskResult is the portfolio-level rollup of all bucket and stock
// analyses for one run.
type PortfolioRiskResult struct {
	TotalValue float64    `json:"total_value"`
	Pressure   float64    `json:"pressure"` // sum(w_i * pressure_i), cash = 0
	Phase      CyclePhase `json:"phase"`

	// Risk components, each 0-100.
	PressureRisk  float64 `json:"pressure_risk"`           // clip(2 * pressure)
	PhaseConcRisk float64 `json:"phase_concentration_risk"` // clip(250 * peaking weight)
	BucketConcRisk float64 `json:"bucket_concentration_risk"` // clip(200 * sum overages)
	StoryConcRisk float64 `json:"story_concentration_risk"`  // clip(200 * max story weight)

	TransitionRisk float64 `json:"transition_risk"` // weighted blend, 0-100
	Mode           Mode    `json:"mode"`

	Buckets map[Bucket]*BucketAggregate `json:"buckets"`

	StoryWeights   map[string]float64 `json:"story_weights"`
	MaxStoryWeight float64            `json:"max_story_weight"`
	PeakingWeight  float64            `json:"peaking_weight"`
	PeakingTickers []string           `json:"peaking_tickers"`
}
