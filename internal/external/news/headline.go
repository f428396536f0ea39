package news

import (
	"strings"
	"time"

	"github.com/jwpark/cyclewatch/internal/contracts"
)

// Headline is one scraped news item with its derived sentiment.
type Headline struct {
	Ticker      string    `json:"ticker"`
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	Sentiment   float64   `json:"sentiment"` // lexicon score, negative = bearish
}

// Reaction is the market's verdict on one positive headline: did the price
// follow through over the forward window?
type Reaction struct {
	ForwardReturn    float64 `json:"forward_return"`
	HighVolume       bool    `json:"high_volume"`
	FailedBreakout   bool    `json:"failed_breakout"`
	IntradayWeakness float64 `json:"intraday_weakness"`
	GappedDown       bool    `json:"gapped_down"`
}

// ReactionSource supplies per-headline price reactions. Optional; without
// one the reaction-derived aggregate fields stay neutral.
type ReactionSource interface {
	Reactions(ticker string, headlines []Headline) []Reaction
}

// Sentiment lexicons, keyed on lowercase substrings.
// ⭐ SSOT: 뉴스 키워드 사전은 여기서만
var (
	positiveWords = []string{
		"beat", "beats", "record", "surge", "strong", "upgrade", "raises",
		"growth", "wins", "expands", "outperform", "rally", "soars",
	}
	negativeWords = []string{
		"miss", "misses", "cut", "cuts", "downgrade", "weak", "falls",
		"lawsuit", "probe", "recall", "layoff", "warning", "plunge", "slump",
	}

	cycleWarningWords = []string{
		"oversupply", "inventory", "pricing pressure", "capex pause",
		"excess supply", "glut", "stockpile", "backlog", "order delay",
		"production cut", "demand slowdown", "capacity", "utilization",
	}

	capexWords = []string{
		"capex", "capital expenditure", "investment", "spending",
	}

	semiCycleWords = []string{
		"memory", "dram", "nand", "hbm", "ssd", "foundry", "semiconductor",
		"chip", "ai chip", "datacenter", "cloud", "capex", "fab", "wafer",
	}
)

// ScoreSentiment returns the lexicon sentiment for one title: +1 per
// positive hit, -1 per negative hit, cycle warnings count double negative.
func ScoreSentiment(title string) float64 {
	text := strings.ToLower(title)

	score := 0.0
	for _, w := range positiveWords {
		if strings.Contains(text, w) {
			score++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(text, w) {
			score--
		}
	}
	for _, w := range cycleWarningWords {
		if strings.Contains(text, w) {
			score -= 2
			break
		}
	}
	return score
}

// Aggregate reduces a headline list (plus optional reactions) to the
// statistics the scoring engine consumes.
func Aggregate(ticker string, headlines []Headline, reactions []Reaction) *contracts.HeadlineAggregate {
	agg := &contracts.HeadlineAggregate{
		Ticker:             ticker,
		Total:              len(headlines),
		EffectivenessScore: 50,  // 반응 데이터 없으면 중립
		HighVolumeWinRate:  0.5, // 0이면 분산 징후로 오인되므로 중립값
	}

	cycleRiskCount := 0
	for _, h := range headlines {
		agg.SentimentTotal += h.Sentiment
		if h.Sentiment > 0 {
			agg.Positive++
		}

		text := strings.ToLower(h.Title)
		if containsAny(text, cycleWarningWords) {
			cycleRiskCount++
		}
		if containsAny(text, capexWords) && containsAny(text, semiCycleWords) {
			agg.CapexMentions++
		}
	}

	if agg.Total > 0 {
		agg.CycleRiskScore = float64(cycleRiskCount) / float64(agg.Total) * 100
	}

	if len(reactions) > 0 {
		applyReactions(agg, reactions)
	}

	return agg
}

// applyReactions folds forward-return verdicts into the aggregate:
// effectiveness drops as positive news stops moving the price.
func applyReactions(agg *contracts.HeadlineAggregate, reactions []Reaction) {
	failures := 0
	consecutive := 0
	maxConsecutive := 0
	highVolume := 0
	highVolumeWins := 0
	failedBreakouts := 0
	gapDowns := 0
	weaknessSum := 0.0

	for _, r := range reactions {
		if r.ForwardReturn < 0 {
			failures++
			consecutive++
			if consecutive > maxConsecutive {
				maxConsecutive = consecutive
			}
		} else {
			consecutive = 0
		}

		if r.HighVolume {
			highVolume++
			if r.ForwardReturn > 0 {
				highVolumeWins++
			}
		}
		if r.FailedBreakout {
			failedBreakouts++
		}
		if r.GappedDown {
			gapDowns++
		}
		weaknessSum += r.IntradayWeakness
	}

	n := float64(len(reactions))
	agg.FailureRate = float64(failures) / n
	agg.ConsecutiveFailures = maxConsecutive
	agg.FailedBreakoutRate = float64(failedBreakouts) / n
	agg.GapDownFrequency = float64(gapDowns) / n
	agg.AvgIntradayWeakness = weaknessSum / n
	agg.EffectivenessScore = clip(100*(1-agg.FailureRate), 0, 100)

	if highVolume > 0 {
		agg.HighVolumeWinRate = float64(highVolumeWins) / float64(highVolume)
	} else {
		agg.HighVolumeWinRate = 0.5 // 표본 없음 → 중립
	}
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
