package questionbank

import "slices"

// Catalog profiles shipped with the binary.
const (
	ProfileSecurity = "security"
	ProfileGeneral  = "general"
)

// Question is a single catalog item. Options and Scores are index-aligned.
type Question struct {
	ID        int       `json:"id"`
	Area      string    `json:"area"`
	Dimension string    `json:"dimension"`
	Text      string    `json:"text"`
	Options   []string  `json:"options"`
	Scores    []float64 `json:"scores"`
	Weight    float64   `json:"weight"`
}

// MaxScore returns the highest raw score any option can earn.
func (q Question) MaxScore() float64 {
	if len(q.Scores) == 0 {
		return 0
	}
	return slices.Max(q.Scores)
}

// Inverted reports whether disagreement scores highest.
func (q Question) Inverted() bool {
	return len(q.Scores) > 1 && q.Scores[0] < q.Scores[len(q.Scores)-1]
}

// ValidOption reports whether idx indexes into Options.
func (q Question) ValidOption(idx int) bool {
	return idx >= 0 && idx < len(q.Options)
}

func (q Question) clone() Question {
	q.Options = slices.Clone(q.Options)
	q.Scores = slices.Clone(q.Scores)
	return q
}

// Dimension is a sub-category of an area.
type Dimension struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Descriptions holds the interpretive text shown for an area at each result level.
type Descriptions struct {
	Green  string `json:"green"`
	Yellow string `json:"yellow"`
	Red    string `json:"red"`
}

// Area is a top-level scored category with a fixed weight.
type Area struct {
	Key          string       `json:"key"`
	Name         string       `json:"name"`
	Weight       float64      `json:"weight"`
	Dimensions   []Dimension  `json:"dimensions"`
	Descriptions Descriptions `json:"descriptions"`
}

// DimensionName returns the display name for a dimension key.
func (a Area) DimensionName(key string) (string, bool) {
	for _, d := range a.Dimensions {
		if d.Key == key {
			return d.Name, true
		}
	}
	return "", false
}

// Description returns the interpretive text for a result level
// ("green", "yellow" or "red").
func (a Area) Description(level string) string {
	switch level {
	case "green":
		return a.Descriptions.Green
	case "yellow":
		return a.Descriptions.Yellow
	case "red":
		return a.Descriptions.Red
	default:
		return ""
	}
}

func (a Area) clone() Area {
	a.Dimensions = slices.Clone(a.Dimensions)
	return a
}

// Catalog is the declarative form of a question bank, as stored on disk.
type Catalog struct {
	Profile   string     `json:"profile"`
	Title     string     `json:"title"`
	Areas     []Area     `json:"areas"`
	Questions []Question `json:"questions"`
}
