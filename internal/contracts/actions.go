package contracts

// =============================================================================
// Actions
// =============================================================================

// ActionKind classifies what the position-sizing engine wants done.
type ActionKind string

const (
	ActionReduce ActionKind = "REDUCE" // bucket level
	ActionTrim   ActionKind = "TRIM"
	ActionHold   ActionKind = "HOLD"
	ActionAdd    ActionKind = "ADD"
)

// Urgency grades how quickly an action should be executed.
type Urgency string

const (
	UrgencyHigh   Urgency = "HIGH"
	UrgencyMedium Urgency = "MEDIUM"
	UrgencyLow    Urgency = "LOW"
)

// Rank orders urgencies for sorting, most urgent first.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyHigh:
		return 0
	case UrgencyMedium:
		return 1
	case UrgencyLow:
		return 2
	default:
		return 3
	}
}

// Action is one recommended position-sizing move, either bucket-level
// (Bucket set, Ticker empty) or position-level (Ticker set).
type Action struct {
	Bucket Bucket     `json:"bucket,omitempty"`
	Ticker string     `json:"ticker,omitempty"`
	Kind   ActionKind `json:"kind"`

	FromWeight float64 `json:"from_weight"`
	ToWeight   float64 `json:"to_weight"`

	Urgency   Urgency  `json:"urgency,omitempty"`
	Timeframe string   `json:"timeframe,omitempty"` // e.g. "2-4 weeks"
	Priority  int      `json:"priority"`            // 1 = highest
	Reasons   []string `json:"reasons"`

	// Contribution to bucket risk (weight x pressure) for position actions.
	Contribution float64 `json:"contribution,omitempty"`
}

// IsBucketLevel reports whether the action targets a whole bucket.
func (a *Action) IsBucketLevel() bool {
	return a.Ticker == "" && a.Bucket != ""
}
