package service

import (
	"context"
	"fmt"
	"time"

	"evamed-backend/internal/model"
	"evamed-backend/internal/repository"
	"evamed-backend/internal/scoring"
)

// DimensionOut is one dimension score inside an area.
type DimensionOut struct {
	Name string  `json:"name"`
	Pct  float64 `json:"pct"`
}

// AreaOut is one area score. Dimensions is keyed by dimension key and only
// contains answered dimensions; DimensionOrder lists those keys in catalog order.
type AreaOut struct {
	Name           string                  `json:"name"`
	Key            string                  `json:"key"`
	Pct            float64                 `json:"pct"`
	Weight         float64                 `json:"weight"`
	Level          string                  `json:"level"`
	Description    string                  `json:"description"`
	Dimensions     map[string]DimensionOut `json:"dimensions"`
	DimensionOrder []string                `json:"dimension_order"`
}

// ResultOut is the full result document for one evaluation.
type ResultOut struct {
	Token             string     `json:"token"`
	Profile           string     `json:"profile"`
	CandidateName     string     `json:"candidate_name"`
	CandidateID       *string    `json:"candidate_id"`
	Position          *string    `json:"position"`
	Company           *string    `json:"company"`
	Status            string     `json:"status"`
	CreatedAt         time.Time  `json:"created_at"`
	CompletedAt       *time.Time `json:"completed_at"`
	OverallPct        float64    `json:"overall_pct"`
	Verdict           string     `json:"verdict"`
	VerdictColor      string     `json:"verdict_color"`
	Areas             []AreaOut  `json:"areas"`
	TotalQuestions    int        `json:"total_questions"`
	AnsweredQuestions int        `json:"answered_questions"`
}

type ResultService interface {
	// Get scores whatever has been answered so far; completion is not required.
	Get(ctx context.Context, token string) (*ResultOut, error)
}

type resultService struct {
	store          *repository.Store
	questionnaires *Questionnaires
}

func NewResultService(store *repository.Store, questionnaires *Questionnaires) ResultService {
	return &resultService{store: store, questionnaires: questionnaires}
}

func (s *resultService) Get(ctx context.Context, token string) (*ResultOut, error) {
	e, err := findEvaluation(ctx, s.store, token)
	if err != nil {
		return nil, err
	}
	responses, err := s.store.Responses.ListByEvaluation(ctx, e.ID)
	if err != nil {
		return nil, fmt.Errorf("load responses: %w", err)
	}
	if len(responses) == 0 {
		return nil, ErrNoResponses
	}
	qn, err := s.questionnaires.Get(e.Profile)
	if err != nil {
		return nil, err
	}
	res, err := qn.Engine.Compute(toAnswers(responses))
	if err != nil {
		return nil, fmt.Errorf("score evaluation %s: %w", e.Token, err)
	}
	return buildResult(e, qn.Bank.Total(), res), nil
}

func buildResult(e *model.Evaluation, total int, res *scoring.Result) *ResultOut {
	out := &ResultOut{
		Token:             e.Token,
		Profile:           e.Profile,
		CandidateName:     e.CandidateName,
		CandidateID:       e.CandidateID,
		Position:          e.Position,
		Company:           e.Company,
		Status:            e.Status,
		CreatedAt:         e.CreatedAt,
		CompletedAt:       e.CompletedAt,
		OverallPct:        res.OverallPct,
		Verdict:           string(res.Verdict),
		VerdictColor:      string(res.VerdictColor),
		Areas:             make([]AreaOut, 0, len(res.Areas)),
		TotalQuestions:    total,
		AnsweredQuestions: res.Answered,
	}
	for _, a := range res.Areas {
		ao := AreaOut{
			Name:           a.Name,
			Key:            a.Key,
			Pct:            a.Pct,
			Weight:         a.Weight,
			Level:          string(a.Level),
			Description:    a.Description,
			Dimensions:     make(map[string]DimensionOut, len(a.Dimensions)),
			DimensionOrder: make([]string, 0, len(a.Dimensions)),
		}
		for _, d := range a.Dimensions {
			ao.Dimensions[d.Key] = DimensionOut{Name: d.Name, Pct: d.Pct}
			ao.DimensionOrder = append(ao.DimensionOrder, d.Key)
		}
		out.Areas = append(out.Areas, ao)
	}
	return out
}
