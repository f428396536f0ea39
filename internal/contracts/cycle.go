package contracts

// =============================================================================
// Cycle Phase
// =============================================================================

// CyclePhase is the discrete market cycle classification. The same ordinal
// scale is used at stock, bucket, and portfolio level.
type CyclePhase string

const (
	PhaseEarly    CyclePhase = "EARLY"
	PhaseMid      CyclePhase = "MID"
	PhaseLate     CyclePhase = "LATE"
	PhasePeaking  CyclePhase = "PEAKING"
	PhaseDownturn CyclePhase = "DOWNTURN"
)

// Rank returns the ordinal position of the phase (EARLY=0 .. DOWNTURN=4).
// 단계 비교는 문자열 비교가 아니라 반드시 Rank()로만
func (p CyclePhase) Rank() int {
	switch p {
	case PhaseEarly:
		return 0
	case PhaseMid:
		return 1
	case PhaseLate:
		return 2
	case PhasePeaking:
		return 3
	case PhaseDownturn:
		return 4
	}
	return 1 // unknown phases behave like MID
}

// Score maps a phase to its numeric contribution for weighted bucket math.
func (p CyclePhase) Score() float64 {
	switch p {
	case PhaseEarly:
		return -10
	case PhaseMid:
		return 0
	case PhaseLate:
		return 15
	case PhasePeaking:
		return 30
	case PhaseDownturn:
		return 45
	}
	return 0
}

// ScoreToPhase converts a weighted phase score back to a discrete phase.
// Boundaries are half-open on the left: -5 is MID, 7.5 is LATE, 37.5 is
// DOWNTURN.
func ScoreToPhase(score float64) CyclePhase {
	switch {
	case score < -5:
		return PhaseEarly
	case score < 7.5:
		return PhaseMid
	case score < 22.5:
		return PhaseLate
	case score < 37.5:
		return PhasePeaking
	default:
		return PhaseDownturn
	}
}

// =============================================================================
// Cycle Components
// =============================================================================

// Cycle component name constants.
const (
	CompRSIOverheat     = "rsi_overheat"
	CompPriceExtension  = "price_extension"
	CompNegativeNews    = "negative_news_shift"
	CompVolExpansion    = "vol_expansion"
	CompCapexMentions   = "capex_mentions"
	CompMomentumVolDivg = "momentum_vol_divergence"
)

// CycleAssessment is the classifier output for one ticker: the per-component
// readings (each 0-100, zero when inactive), the composite, and the phase
// derived from it.
type CycleAssessment struct {
	Ticker         string             `json:"ticker"`
	Components     map[string]float64 `json:"components"`
	Composite      float64            `json:"composite"` // 0-100
	Phase          CyclePhase         `json:"phase"`
	Confidence     float64            `json:"confidence"`      // 0-100
	TransitionRisk float64            `json:"transition_risk"` // 0-100
	KeySignals     []string           `json:"key_signals"`
}

// =============================================================================
// Stock Cycle Analysis
// =============================================================================

// StockCycleAnalysis is the fully gated per-ticker result that feeds the
// bucket and portfolio aggregators. One per ticker per run; nothing here
// persists across runs.
type StockCycleAnalysis struct {
	Ticker           string     `json:"ticker"`
	RiskTotal        float64    `json:"risk_total"`        // 0-100
	OpportunityTotal float64    `json:"opportunity_total"` // 0-100
	CyclePressure    float64    `json:"cycle_pressure"`    // risk - opportunity
	Phase            CyclePhase `json:"phase"`
	TransitionRisk   float64    `json:"transition_risk"` // 0-100
	CriticalSignals  []string   `json:"critical_signals"`
	DataQualityOK    bool       `json:"data_quality_ok"`
}

// HasCritical reports whether any critical signal fired.
func (a *StockCycleAnalysis) HasCritical() bool {
	return len(a.CriticalSignals) > 0
}
