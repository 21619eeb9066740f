package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"evamed-backend/internal/model"
	"evamed-backend/internal/repository"
	"evamed-backend/internal/scoring"
	"evamed-backend/utilities"
)

const maxFieldLength = 200

// CreateEvaluationInput is the candidate data an evaluator submits.
type CreateEvaluationInput struct {
	CandidateName  string  `json:"candidate_name"`
	CandidateID    *string `json:"candidate_id"`
	CandidateEmail *string `json:"candidate_email"`
	CandidatePhone *string `json:"candidate_phone"`
	Position       *string `json:"position"`
	Company        *string `json:"company"`
	Profile        string  `json:"profile"`
}

// EvaluationSummary is one row of the evaluator's list. OverallPct and
// Verdict are only set for completed evaluations.
type EvaluationSummary struct {
	ID             uint       `json:"id"`
	Token          string     `json:"token"`
	Profile        string     `json:"profile"`
	CandidateName  string     `json:"candidate_name"`
	CandidateID    *string    `json:"candidate_id"`
	CandidateEmail *string    `json:"candidate_email"`
	Position       *string    `json:"position"`
	Company        *string    `json:"company"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at"`
	OverallPct     *float64   `json:"overall_pct"`
	Verdict        *string    `json:"verdict"`
}

type EvaluationService interface {
	Create(ctx context.Context, in CreateEvaluationInput, createdBy uint) (*model.Evaluation, error)
	List(ctx context.Context, filter repository.EvaluationFilter) ([]EvaluationSummary, error)
	Get(ctx context.Context, token string) (*model.Evaluation, error)
	Delete(ctx context.Context, token string) error
}

type evaluationService struct {
	store          *repository.Store
	questionnaires *Questionnaires
}

func NewEvaluationService(store *repository.Store, questionnaires *Questionnaires) EvaluationService {
	return &evaluationService{store: store, questionnaires: questionnaires}
}

func (s *evaluationService) Create(ctx context.Context, in CreateEvaluationInput, createdBy uint) (*model.Evaluation, error) {
	name := strings.TrimSpace(in.CandidateName)
	if name == "" {
		return nil, fmt.Errorf("%w: candidate_name is required", ErrInvalidCandidate)
	}
	if utf8.RuneCountInString(name) > maxFieldLength {
		return nil, fmt.Errorf("%w: candidate_name is too long", ErrInvalidCandidate)
	}

	profile := strings.TrimSpace(in.Profile)
	if profile == "" {
		profile = s.questionnaires.Default()
	}
	if _, err := s.questionnaires.Get(profile); err != nil {
		return nil, err
	}

	evaluation := &model.Evaluation{
		Token:          uuid.NewString(),
		Profile:        profile,
		CandidateName:  name,
		CandidateID:    optional(in.CandidateID),
		CandidateEmail: optional(in.CandidateEmail),
		CandidatePhone: optional(in.CandidatePhone),
		Position:       optional(in.Position),
		Company:        optional(in.Company),
		Status:         model.StatusPending,
	}
	for field, v := range map[string]*string{
		"candidate_id": evaluation.CandidateID, "candidate_email": evaluation.CandidateEmail,
		"candidate_phone": evaluation.CandidatePhone, "position": evaluation.Position, "company": evaluation.Company,
	} {
		if v != nil && utf8.RuneCountInString(*v) > maxFieldLength {
			return nil, fmt.Errorf("%w: %s is too long", ErrInvalidCandidate, field)
		}
	}
	if createdBy != 0 {
		evaluation.CreatedBy = &createdBy
	}

	if err := s.store.Evaluations.Create(ctx, evaluation); err != nil {
		return nil, fmt.Errorf("create evaluation: %w", err)
	}
	utilities.L().Info("evaluation created",
		zap.String("token", evaluation.Token),
		zap.String("profile", profile),
		zap.Uint("created_by", createdBy))
	return evaluation, nil
}

func (s *evaluationService) List(ctx context.Context, filter repository.EvaluationFilter) ([]EvaluationSummary, error) {
	evaluations, err := s.store.Evaluations.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}

	var completed []uint
	for _, e := range evaluations {
		if e.Status == model.StatusCompleted {
			completed = append(completed, e.ID)
		}
	}
	responses, err := s.store.Responses.ListByEvaluations(ctx, completed)
	if err != nil {
		return nil, fmt.Errorf("load responses: %w", err)
	}

	out := make([]EvaluationSummary, 0, len(evaluations))
	for _, e := range evaluations {
		sum := EvaluationSummary{
			ID:             e.ID,
			Token:          e.Token,
			Profile:        e.Profile,
			CandidateName:  e.CandidateName,
			CandidateID:    e.CandidateID,
			CandidateEmail: e.CandidateEmail,
			Position:       e.Position,
			Company:        e.Company,
			Status:         e.Status,
			CreatedAt:      e.CreatedAt,
			CompletedAt:    e.CompletedAt,
		}
		if e.Status == model.StatusCompleted {
			if res, err := s.score(e.Profile, responses[e.ID]); err != nil {
				utilities.L().Warn("cannot score evaluation", zap.String("token", e.Token), zap.Error(err))
			} else {
				pct, verdict := res.OverallPct, string(res.Verdict)
				sum.OverallPct, sum.Verdict = &pct, &verdict
			}
		}
		out = append(out, sum)
	}
	return out, nil
}

func (s *evaluationService) score(profile string, responses []model.Response) (*scoring.Result, error) {
	q, err := s.questionnaires.Get(profile)
	if err != nil {
		return nil, err
	}
	return q.Engine.Compute(toAnswers(responses))
}

func (s *evaluationService) Get(ctx context.Context, token string) (*model.Evaluation, error) {
	return findEvaluation(ctx, s.store, token)
}

func (s *evaluationService) Delete(ctx context.Context, token string) error {
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		e, err := lockEvaluation(ctx, tx, token)
		if err != nil {
			return err
		}
		if err := tx.Evaluations.Delete(ctx, e.ID); err != nil {
			return fmt.Errorf("delete evaluation: %w", err)
		}
		utilities.L().Info("evaluation deleted", zap.String("token", token))
		return nil
	})
}

func findEvaluation(ctx context.Context, store *repository.Store, token string) (*model.Evaluation, error) {
	e, err := store.Evaluations.GetByToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrEvaluationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load evaluation: %w", err)
	}
	return e, nil
}

func lockEvaluation(ctx context.Context, tx *repository.Store, token string) (*model.Evaluation, error) {
	e, err := tx.Evaluations.LockByToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrEvaluationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock evaluation: %w", err)
	}
	return e, nil
}

func toAnswers(responses []model.Response) []scoring.Answer {
	out := make([]scoring.Answer, len(responses))
	for i, r := range responses {
		out[i] = scoring.Answer{QuestionID: r.QuestionID, AnswerValue: r.AnswerValue}
	}
	return out
}

// optional trims s and maps blank values to nil.
func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
