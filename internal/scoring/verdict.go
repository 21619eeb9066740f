package scoring

// Verdict is the categorical outcome of an evaluation.
type Verdict string

const (
	VerdictApt            Verdict = "APTO"
	VerdictConditionalApt Verdict = "CONDICIONALMENTE APTO"
	VerdictNotApt         Verdict = "NO APTO"
)

// Color is the traffic-light code paired with a verdict or a percentage level.
type Color string

const (
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorRed    Color = "red"
)

// Thresholds used by the verdict classifier, in percentage points.
const (
	AptThreshold         = 70.0
	ConditionalThreshold = 50.0
	LowAreaPenaltyCutoff = 60.0
	AreaFloor            = 40.0
)

// Classify derives the verdict from the overall percentage and the area
// percentages. The second tier still passes with a low area once overall
// reaches LowAreaPenaltyCutoff; thresholds were calibrated against exactly
// this rule, so keep it as is.
func Classify(overall float64, areaPcts []float64) (Verdict, Color) {
	anyLow := false
	for _, p := range areaPcts {
		if p < AreaFloor {
			anyLow = true
			break
		}
	}

	if overall >= AptThreshold && !anyLow {
		return VerdictApt, ColorGreen
	} else if overall >= ConditionalThreshold && !(anyLow && overall < LowAreaPenaltyCutoff) {
		return VerdictConditionalApt, ColorYellow
	}
	return VerdictNotApt, ColorRed
}

// LevelFor buckets a single percentage for display: ≥70 green, ≥50 yellow,
// otherwise red.
func LevelFor(pct float64) Color {
	switch {
	case pct >= AptThreshold:
		return ColorGreen
	case pct >= ConditionalThreshold:
		return ColorYellow
	default:
		return ColorRed
	}
}
