package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"evamed-backend/internal/db/dbtest"
	"evamed-backend/internal/model"
	"evamed-backend/internal/questionbank"
	"evamed-backend/internal/repository"
	"evamed-backend/internal/scoring"
	"evamed-backend/utilities"
)

func agreeOptions() []string {
	return []string{"De acuerdo", "A veces / Depende", "En desacuerdo"}
}

// miniCatalog has two areas; answering 0 everywhere scores area a 100 and area b 0.
func miniCatalog() questionbank.Catalog {
	return questionbank.Catalog{
		Profile: "mini",
		Title:   "Mini",
		Areas: []questionbank.Area{
			{Key: "a", Name: "Área A", Weight: 0.6,
				Dimensions:   []questionbank.Dimension{{Key: "a1", Name: "A uno"}, {Key: "a2", Name: "A dos"}},
				Descriptions: questionbank.Descriptions{Green: "a verde", Yellow: "a amarillo", Red: "a rojo"}},
			{Key: "b", Name: "Área B", Weight: 0.4,
				Dimensions:   []questionbank.Dimension{{Key: "b1", Name: "B uno"}},
				Descriptions: questionbank.Descriptions{Green: "b verde", Yellow: "b amarillo", Red: "b rojo"}},
		},
		Questions: []questionbank.Question{
			{ID: 1, Area: "a", Dimension: "a1", Text: "Pregunta uno", Options: agreeOptions(), Scores: []float64{2, 1, 0}, Weight: 1},
			{ID: 2, Area: "a", Dimension: "a2", Text: "Pregunta dos", Options: agreeOptions(), Scores: []float64{2, 1, 0}, Weight: 1.2},
			{ID: 3, Area: "b", Dimension: "b1", Text: "Pregunta tres", Options: agreeOptions(), Scores: []float64{0, 1, 2}, Weight: 1},
		},
	}
}

type testEnv struct {
	store          *repository.Store
	questionnaires *Questionnaires
	bus            *utilities.EventBus
	evaluations    EvaluationService
	responses      ResponseService
	results        ResultService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := repository.NewStore(dbtest.New(t))
	qs, err := NewQuestionnaires([]*questionbank.Bank{questionbank.MustNew(miniCatalog())}, "mini")
	require.NoError(t, err)
	bus := utilities.NewEventBus()
	return &testEnv{
		store:          store,
		questionnaires: qs,
		bus:            bus,
		evaluations:    NewEvaluationService(store, qs),
		responses:      NewResponseService(store, qs, bus),
		results:        NewResultService(store, qs),
	}
}

func (env *testEnv) create(t *testing.T, name string) *model.Evaluation {
	t.Helper()
	e, err := env.evaluations.Create(context.Background(), CreateEvaluationInput{CandidateName: name}, 0)
	require.NoError(t, err)
	return e
}

func (env *testEnv) answer(t *testing.T, token string, answers map[int]int) *Progress {
	t.Helper()
	var p *Progress
	for _, id := range []int{1, 2, 3} {
		v, ok := answers[id]
		if !ok {
			continue
		}
		var err error
		p, err = env.responses.Save(context.Background(), token, scoring.Answer{QuestionID: id, AnswerValue: v})
		require.NoError(t, err)
	}
	return p
}

func strPtr(s string) *string { return &s }
