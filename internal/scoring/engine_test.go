package scoring

import (
	"encoding/json"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evamed-backend/internal/questionbank"
)

func securityEngine(t *testing.T) *Engine {
	t.Helper()
	b, err := questionbank.Load(questionbank.ProfileSecurity)
	require.NoError(t, err)
	return NewEngine(b)
}

// answerAll picks an option for every question in the bank.
func answerAll(b *questionbank.Bank, pick func(q questionbank.Question) int) []Answer {
	out := make([]Answer, 0, b.Total())
	for _, q := range b.Questions() {
		out = append(out, Answer{QuestionID: q.ID, AnswerValue: pick(q)})
	}
	return out
}

func bestOption(q questionbank.Question) int {
	if q.Inverted() {
		return 2
	}
	return 0
}

func worstOption(q questionbank.Question) int {
	return 2 - bestOption(q)
}

func areaPcts(r *Result) map[string]float64 {
	out := make(map[string]float64, len(r.Areas))
	for _, a := range r.Areas {
		out[a.Key] = a.Pct
	}
	return out
}

func dimPcts(a AreaResult) map[string]float64 {
	out := make(map[string]float64, len(a.Dimensions))
	for _, d := range a.Dimensions {
		out[d.Key] = d.Pct
	}
	return out
}

func TestComputeAllBest(t *testing.T) {
	e := securityEngine(t)
	r, err := e.Compute(answerAll(e.Bank(), bestOption))
	require.NoError(t, err)

	assert.Equal(t, 100.0, r.OverallPct)
	assert.Equal(t, VerdictApt, r.Verdict)
	assert.Equal(t, ColorGreen, r.VerdictColor)
	assert.Equal(t, 100, r.Answered)
	for _, a := range r.Areas {
		assert.Equal(t, 100.0, a.Pct, a.Key)
		assert.Equal(t, ColorGreen, a.Level)
		for _, d := range a.Dimensions {
			assert.Equal(t, 100.0, d.Pct, d.Key)
		}
	}
}

func TestComputeAllWorst(t *testing.T) {
	e := securityEngine(t)
	r, err := e.Compute(answerAll(e.Bank(), worstOption))
	require.NoError(t, err)

	assert.Equal(t, 0.0, r.OverallPct)
	assert.Equal(t, VerdictNotApt, r.Verdict)
	assert.Equal(t, ColorRed, r.VerdictColor)
	for _, a := range r.Areas {
		assert.Equal(t, 0.0, a.Pct, a.Key)
		assert.Equal(t, ColorRed, a.Level)
		assert.NotEmpty(t, a.Dimensions)
	}
}

func TestComputeKnownAnswerSets(t *testing.T) {
	e := securityEngine(t)

	t.Run("middle option everywhere", func(t *testing.T) {
		r, err := e.Compute(answerAll(e.Bank(), func(questionbank.Question) int { return 1 }))
		require.NoError(t, err)
		assert.Equal(t, 50.0, r.OverallPct)
		assert.Equal(t, VerdictConditionalApt, r.Verdict)
		for _, a := range r.Areas {
			assert.Equal(t, 50.0, a.Pct)
			assert.Equal(t, ColorYellow, a.Level)
		}
	})

	t.Run("agree everywhere", func(t *testing.T) {
		r, err := e.Compute(answerAll(e.Bank(), func(questionbank.Question) int { return 0 }))
		require.NoError(t, err)
		assert.Equal(t, 68.0, r.OverallPct)
		assert.Equal(t, VerdictConditionalApt, r.Verdict)
		assert.Equal(t, map[string]float64{
			"personalidad": 65.7, "integridad": 69.8, "emocional": 64.0, "aptitud": 73.9,
		}, areaPcts(r))
	})

	t.Run("id modulo three", func(t *testing.T) {
		r, err := e.Compute(answerAll(e.Bank(), func(q questionbank.Question) int { return q.ID % 3 }))
		require.NoError(t, err)
		assert.Equal(t, 52.2, r.OverallPct)
		assert.Equal(t, VerdictNotApt, r.Verdict)
		assert.Equal(t, ColorRed, r.VerdictColor)
		assert.Equal(t, map[string]float64{
			"personalidad": 33.9, "integridad": 58.6, "emocional": 68.6, "aptitud": 59.6,
		}, areaPcts(r))

		p, _ := r.Area("personalidad")
		assert.Equal(t, map[string]float64{
			"estabilidad": 50.0, "dominancia": 32.8, "consciencia": 50.0,
			"vigilancia": 10.4, "perfeccionismo": 20.2, "tension": 40.0,
		}, dimPcts(p))
		i, _ := r.Area("integridad")
		assert.Equal(t, map[string]float64{"honestidad": 61.5, "resistencia": 71.6, "transparencia": 42.8}, dimPcts(i))
		em, _ := r.Area("emocional")
		assert.Equal(t, map[string]float64{"control": 57.1, "empatia": 83.1, "estres": 65.5}, dimPcts(em))
		ap, _ := r.Area("aptitud")
		assert.Equal(t, map[string]float64{"decision": 44.9, "autoridad": 66.1, "emergencia": 67.9}, dimPcts(ap))
	})
}

func TestComputePartialAnswersOmitUnansweredDimensions(t *testing.T) {
	e := securityEngine(t)

	var answers []Answer
	for id := 1; id <= 30; id++ {
		answers = append(answers, Answer{QuestionID: id, AnswerValue: (id % 2) * 2})
	}
	r, err := e.Compute(answers)
	require.NoError(t, err)

	assert.Equal(t, 21.9, r.OverallPct)
	assert.Equal(t, VerdictNotApt, r.Verdict)
	assert.Equal(t, 30, r.Answered)

	p, ok := r.Area("personalidad")
	require.True(t, ok)
	assert.Equal(t, 62.5, p.Pct)
	assert.Equal(t, map[string]float64{
		"estabilidad": 85.7, "dominancia": 17.2, "consciencia": 50.0,
		"vigilancia": 62.5, "perfeccionismo": 59.6, "tension": 100.0,
	}, dimPcts(p))

	// Areas with no answers are reported at 0.0 with no dimensions.
	for _, key := range []string{"integridad", "emocional", "aptitud"} {
		a, ok := r.Area(key)
		require.True(t, ok)
		assert.Equal(t, 0.0, a.Pct, key)
		assert.Empty(t, a.Dimensions, key)
		assert.Equal(t, ColorRed, a.Level)
	}
}

func TestComputeSingleAnswer(t *testing.T) {
	e := securityEngine(t)
	r, err := e.Compute([]Answer{{QuestionID: 1, AnswerValue: bestOption(mustQuestion(t, e, 1))}})
	require.NoError(t, err)

	p, _ := r.Area("personalidad")
	require.Len(t, p.Dimensions, 1)
	assert.Equal(t, "estabilidad", p.Dimensions[0].Key)
	assert.Equal(t, 100.0, p.Pct)
	assert.Equal(t, 35.0, r.OverallPct)
	assert.Equal(t, VerdictNotApt, r.Verdict)
}

func TestComputeEmpty(t *testing.T) {
	e := securityEngine(t)
	r, err := e.Compute(nil)
	require.NoError(t, err)

	assert.Equal(t, 0.0, r.OverallPct)
	assert.Equal(t, VerdictNotApt, r.Verdict)
	assert.Equal(t, ColorRed, r.VerdictColor)
	require.Len(t, r.Areas, 4)
	for _, a := range r.Areas {
		assert.Equal(t, 0.0, a.Pct)
		assert.Empty(t, a.Dimensions)
	}
}

func TestComputeRejectsInvalidAnswers(t *testing.T) {
	e := securityEngine(t)
	tests := []struct {
		name    string
		answers []Answer
	}{
		{"unknown question", []Answer{{QuestionID: 101, AnswerValue: 0}}},
		{"question zero", []Answer{{QuestionID: 0, AnswerValue: 0}}},
		{"option too high", []Answer{{QuestionID: 1, AnswerValue: 3}}},
		{"negative option", []Answer{{QuestionID: 1, AnswerValue: -1}}},
		{"duplicate question", []Answer{{QuestionID: 5, AnswerValue: 0}, {QuestionID: 5, AnswerValue: 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Compute(tt.answers)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	e := securityEngine(t)
	answers := answerAll(e.Bank(), func(q questionbank.Question) int { return (q.ID * 7) % 3 })

	first, err := e.Compute(answers)
	require.NoError(t, err)
	second, err := e.Compute(answers)
	require.NoError(t, err)

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	assert.JSONEq(t, string(a), string(b))

	// Submission order does not matter.
	reversed := make([]Answer, len(answers))
	for i, ans := range answers {
		reversed[len(answers)-1-i] = ans
	}
	third, err := e.Compute(reversed)
	require.NoError(t, err)
	c, _ := json.Marshal(third)
	assert.JSONEq(t, string(a), string(c))
}

func TestComputeIsMonotonicPerQuestion(t *testing.T) {
	e := securityEngine(t)
	base := answerAll(e.Bank(), func(questionbank.Question) int { return 1 })

	for i, q := range e.Bank().Questions() {
		worse := append([]Answer(nil), base...)
		better := append([]Answer(nil), base...)
		worse[i].AnswerValue = worstOption(q)
		better[i].AnswerValue = bestOption(q)

		rw, err := e.Compute(worse)
		require.NoError(t, err)
		rb, err := e.Compute(better)
		require.NoError(t, err)

		aw, _ := rw.Area(q.Area)
		ab, _ := rb.Area(q.Area)
		dw, _ := aw.Dimension(q.Dimension)
		db, _ := ab.Dimension(q.Dimension)
		assert.GreaterOrEqual(t, db.Pct, dw.Pct, "question %d", q.ID)
		assert.GreaterOrEqual(t, ab.Pct, aw.Pct, "question %d", q.ID)
	}
}

func TestComputeOverallIsWeightedSum(t *testing.T) {
	e := securityEngine(t)
	rng := rand.New(rand.NewPCG(7, 11))

	for range 200 {
		var answers []Answer
		for _, q := range e.Bank().Questions() {
			if rng.IntN(4) == 0 {
				continue
			}
			answers = append(answers, Answer{QuestionID: q.ID, AnswerValue: rng.IntN(3)})
		}
		r, err := e.Compute(answers)
		require.NoError(t, err)

		var sum float64
		for _, a := range r.Areas {
			assert.GreaterOrEqual(t, a.Pct, 0.0)
			assert.LessOrEqual(t, a.Pct, 100.0)
			sum += a.Pct * a.Weight
		}
		assert.LessOrEqual(t, math.Abs(r.OverallPct-sum), 0.05+1e-9)
		assert.GreaterOrEqual(t, r.OverallPct, 0.0)
		assert.LessOrEqual(t, r.OverallPct, 100.0)
	}
}

func TestComputeGeneralProfile(t *testing.T) {
	b, err := questionbank.Load(questionbank.ProfileGeneral)
	require.NoError(t, err)
	e := NewEngine(b)

	r, err := e.Compute(answerAll(b, bestOption))
	require.NoError(t, err)
	assert.Equal(t, questionbank.ProfileGeneral, r.Profile)
	assert.Equal(t, VerdictApt, r.Verdict)

	p, _ := r.Area("personalidad")
	_, ok := p.Dimension("atencion")
	assert.True(t, ok)
}

// twoAreaBank has area "x" with twenty direct questions (ids 1-20) and area
// "y" with twenty more (ids 21-40).
func twoAreaBank(t *testing.T, wx, wy float64) *questionbank.Bank {
	t.Helper()
	c := questionbank.Catalog{
		Profile: "two",
		Title:   "Two areas",
		Areas: []questionbank.Area{
			{Key: "x", Name: "X", Weight: wx, Dimensions: []questionbank.Dimension{{Key: "x1", Name: "X1"}},
				Descriptions: questionbank.Descriptions{Green: "x green", Yellow: "x yellow", Red: "x red"}},
			{Key: "y", Name: "Y", Weight: wy, Dimensions: []questionbank.Dimension{{Key: "y1", Name: "Y1"}},
				Descriptions: questionbank.Descriptions{Green: "y green", Yellow: "y yellow", Red: "y red"}},
		},
	}
	for id := 1; id <= 40; id++ {
		area, dim := "x", "x1"
		if id > 20 {
			area, dim = "y", "y1"
		}
		c.Questions = append(c.Questions, questionbank.Question{
			ID: id, Area: area, Dimension: dim, Text: "q",
			Options: []string{"a", "b", "c"}, Scores: []float64{2, 1, 0}, Weight: 1,
		})
	}
	b, err := questionbank.New(c)
	require.NoError(t, err)
	return b
}

// splitAnswers answers the first xBest questions of area x and the first
// yBest of area y with the best option, the rest with the worst.
func splitAnswers(xBest, yBest int) []Answer {
	var out []Answer
	for id := 1; id <= 40; id++ {
		best := id <= xBest || (id > 20 && id-20 <= yBest)
		val := 2
		if best {
			val = 0
		}
		out = append(out, Answer{QuestionID: id, AnswerValue: val})
	}
	return out
}

func TestComputeLowAreaDowngradesApt(t *testing.T) {
	e := NewEngine(twoAreaBank(t, 0.2, 0.8))
	r, err := e.Compute(splitAnswers(7, 17))
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"x": 35.0, "y": 85.0}, areaPcts(r))
	assert.Equal(t, 75.0, r.OverallPct)
	assert.Equal(t, VerdictConditionalApt, r.Verdict)
	assert.Equal(t, ColorYellow, r.VerdictColor)

	x, _ := r.Area("x")
	assert.Equal(t, ColorRed, x.Level)
	assert.Equal(t, "x red", x.Description)
	y, _ := r.Area("y")
	assert.Equal(t, "y green", y.Description)
}

func TestComputeLowAreaBelowCutoffFails(t *testing.T) {
	e := NewEngine(twoAreaBank(t, 0.5, 0.5))
	r, err := e.Compute(splitAnswers(6, 16))
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"x": 30.0, "y": 80.0}, areaPcts(r))
	assert.Equal(t, 55.0, r.OverallPct)
	assert.Equal(t, VerdictNotApt, r.Verdict)
	assert.Equal(t, ColorRed, r.VerdictColor)
}

func mustQuestion(t *testing.T, e *Engine, id int) questionbank.Question {
	t.Helper()
	q, err := e.Bank().Question(id)
	require.NoError(t, err)
	return q
}
