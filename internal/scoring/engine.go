package scoring

import (
	"errors"
	"fmt"

	"evamed-backend/internal/questionbank"
)

// ErrInvalidInput is returned when an answer set references unknown
// questions, out-of-range options, or repeats a question.
var ErrInvalidInput = errors.New("invalid answer set")

// Answer is one chosen option for one question.
type Answer struct {
	QuestionID  int `json:"question_id"`
	AnswerValue int `json:"answer_value"`
}

// DimensionResult is the weighted tally for one dimension over its answered
// questions only.
type DimensionResult struct {
	Key      string  `json:"key"`
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
	Max      float64 `json:"max"`
	Pct      float64 `json:"pct"`
	Answered int     `json:"answered"`
}

// AreaResult aggregates the dimensions of one area. Dimensions without
// answers are absent from Dimensions.
type AreaResult struct {
	Key         string            `json:"key"`
	Name        string            `json:"name"`
	Weight      float64           `json:"weight"`
	Pct         float64           `json:"pct"`
	Level       Color             `json:"level"`
	Description string            `json:"description,omitempty"`
	Dimensions  []DimensionResult `json:"dimensions"`
}

// Dimension looks up a present dimension by key.
func (a AreaResult) Dimension(key string) (DimensionResult, bool) {
	for _, d := range a.Dimensions {
		if d.Key == key {
			return d, true
		}
	}
	return DimensionResult{}, false
}

// Result is the full scoring outcome for an answer set.
type Result struct {
	Profile      string       `json:"profile"`
	OverallPct   float64      `json:"overall_pct"`
	Verdict      Verdict      `json:"verdict"`
	VerdictColor Color        `json:"verdict_color"`
	Areas        []AreaResult `json:"areas"`
	Answered     int          `json:"answered"`
}

// Area looks up an area result by key.
func (r *Result) Area(key string) (AreaResult, bool) {
	for _, a := range r.Areas {
		if a.Key == key {
			return a, true
		}
	}
	return AreaResult{}, false
}

// Engine scores answer sets against one question bank. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	bank *questionbank.Bank
}

// NewEngine returns an engine bound to bank.
func NewEngine(bank *questionbank.Bank) *Engine {
	return &Engine{bank: bank}
}

// Bank returns the question bank the engine scores against.
func (e *Engine) Bank() *questionbank.Bank {
	return e.bank
}

type tally struct {
	score, max float64
	answered   int
}

// Compute scores answers. It is a pure function of the bank and the answer
// set: the same input always yields the same Result.
func (e *Engine) Compute(answers []Answer) (*Result, error) {
	chosen, err := e.index(answers)
	if err != nil {
		return nil, err
	}

	// area -> dimension -> tally, over answered questions only
	tallies := make(map[string]map[string]*tally)
	for _, q := range e.bank.Questions() {
		val, ok := chosen[q.ID]
		if !ok {
			continue
		}
		dims := tallies[q.Area]
		if dims == nil {
			dims = make(map[string]*tally)
			tallies[q.Area] = dims
		}
		t := dims[q.Dimension]
		if t == nil {
			t = &tally{}
			dims[q.Dimension] = t
		}
		t.score += q.Scores[val] * q.Weight
		t.max += q.MaxScore() * q.Weight
		t.answered++
	}

	areas := e.bank.Areas()
	res := &Result{
		Profile:  e.bank.Profile(),
		Areas:    make([]AreaResult, 0, len(areas)),
		Answered: len(chosen),
	}
	areaPcts := make([]float64, 0, len(areas))
	var overall float64

	for _, a := range areas {
		ar := AreaResult{
			Key:        a.Key,
			Name:       a.Name,
			Weight:     a.Weight,
			Dimensions: []DimensionResult{},
		}
		var sum float64
		for _, d := range a.Dimensions {
			t := tallies[a.Key][d.Key]
			if t == nil || t.max <= 0 {
				continue
			}
			pct := round1(t.score / t.max * 100)
			ar.Dimensions = append(ar.Dimensions, DimensionResult{
				Key:      d.Key,
				Name:     d.Name,
				Score:    t.score,
				Max:      t.max,
				Pct:      pct,
				Answered: t.answered,
			})
			sum += pct
		}
		// An area without answered dimensions reports 0.0 rather than being
		// omitted; verdict thresholds depend on it.
		if n := len(ar.Dimensions); n > 0 {
			ar.Pct = round1(sum / float64(n))
		}
		ar.Level = LevelFor(ar.Pct)
		ar.Description = a.Description(string(ar.Level))

		overall += ar.Pct * a.Weight
		areaPcts = append(areaPcts, ar.Pct)
		res.Areas = append(res.Areas, ar)
	}

	res.OverallPct = round1(overall)
	res.Verdict, res.VerdictColor = Classify(res.OverallPct, areaPcts)
	return res, nil
}

// index builds the question -> option lookup and rejects anything the
// persistence layer should never have let through.
func (e *Engine) index(answers []Answer) (map[int]int, error) {
	chosen := make(map[int]int, len(answers))
	for _, a := range answers {
		if _, dup := chosen[a.QuestionID]; dup {
			return nil, fmt.Errorf("%w: question %d answered more than once", ErrInvalidInput, a.QuestionID)
		}
		q, err := e.bank.Question(a.QuestionID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if !q.ValidOption(a.AnswerValue) {
			return nil, fmt.Errorf("%w: question %d has no option %d", ErrInvalidInput, a.QuestionID, a.AnswerValue)
		}
		chosen[a.QuestionID] = a.AnswerValue
	}
	return chosen, nil
}
