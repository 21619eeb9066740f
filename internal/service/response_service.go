package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"evamed-backend/internal/model"
	"evamed-backend/internal/questionbank"
	"evamed-backend/internal/repository"
	"evamed-backend/internal/scoring"
	"evamed-backend/utilities"
)

// EventEvaluationCompleted is published once the last question is answered.
const EventEvaluationCompleted = "evaluation.completed"

// EvaluationCompleted is the payload of EventEvaluationCompleted.
type EvaluationCompleted struct {
	Token       string
	Profile     string
	CompletedAt time.Time
}

// Progress reports how far a candidate is. CurrentQuestion is the next
// unanswered question id, or 0 once every question is answered. Save also
// fills NextQuestion so the client can render it without another request.
type Progress struct {
	Answered        int          `json:"answered"`
	Total           int          `json:"total"`
	CurrentQuestion int          `json:"current_question"`
	Status          string       `json:"status"`
	NextQuestion    *QuestionOut `json:"-"`
}

// EvaluationHeader is the candidate-facing view of an evaluation.
type EvaluationHeader struct {
	Token         string  `json:"token"`
	Profile       string  `json:"profile"`
	CandidateName string  `json:"candidate_name"`
	Position      *string `json:"position"`
	Company       *string `json:"company"`
	Status        string  `json:"status"`
}

// QuestionOut is a question as shown to candidates, without its scoring key.
type QuestionOut struct {
	ID        int      `json:"id"`
	Area      string   `json:"area"`
	AreaName  string   `json:"area_name"`
	Dimension string   `json:"dimension"`
	Text      string   `json:"text"`
	Options   []string `json:"options"`
}

// NextQuestion is what the questionnaire page renders.
type NextQuestion struct {
	Evaluation   EvaluationHeader `json:"evaluation"`
	Answered     int              `json:"answered"`
	Total        int              `json:"total"`
	NextQuestion *QuestionOut     `json:"next_question"`
}

type ResponseService interface {
	Save(ctx context.Context, token string, answer scoring.Answer) (*Progress, error)
	Progress(ctx context.Context, token string) (*Progress, error)
	Next(ctx context.Context, token string) (*NextQuestion, error)
}

type responseService struct {
	store          *repository.Store
	questionnaires *Questionnaires
	bus            *utilities.EventBus
	now            func() time.Time
}

func NewResponseService(store *repository.Store, questionnaires *Questionnaires, bus *utilities.EventBus) ResponseService {
	return &responseService{
		store:          store,
		questionnaires: questionnaires,
		bus:            bus,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Save records one answer. Answering a question again overwrites the
// earlier answer; the evaluation completes when every question has one.
func (s *responseService) Save(ctx context.Context, token string, answer scoring.Answer) (*Progress, error) {
	var (
		progress  *Progress
		completed *EvaluationCompleted
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		e, err := lockEvaluation(ctx, tx, token)
		if err != nil {
			return err
		}
		if e.Status == model.StatusCompleted {
			return ErrEvaluationCompleted
		}
		qn, err := s.questionnaires.Get(e.Profile)
		if err != nil {
			return err
		}
		q, err := qn.Bank.Question(answer.QuestionID)
		if errors.Is(err, questionbank.ErrQuestionNotFound) {
			return fmt.Errorf("%w: %d", ErrInvalidQuestion, answer.QuestionID)
		}
		if err != nil {
			return err
		}
		if !q.ValidOption(answer.AnswerValue) {
			return fmt.Errorf("%w: %d", ErrInvalidAnswer, answer.AnswerValue)
		}

		now := s.now()
		if err := tx.Responses.Upsert(ctx, &model.Response{
			EvaluationID: e.ID,
			QuestionID:   answer.QuestionID,
			AnswerValue:  answer.AnswerValue,
			AnsweredAt:   now,
		}); err != nil {
			return fmt.Errorf("save response: %w", err)
		}

		answered, err := tx.Responses.AnsweredIDs(ctx, e.ID)
		if err != nil {
			return fmt.Errorf("load answered questions: %w", err)
		}
		status, current, completedAt := model.StatusInProgress, 0, (*time.Time)(nil)
		var nextOut *QuestionOut
		if next, ok := qn.Bank.NextUnanswered(answered); ok {
			current = next.ID
			nextOut = toQuestionOut(qn.Bank, next)
		} else {
			status, completedAt = model.StatusCompleted, &now
			completed = &EvaluationCompleted{Token: e.Token, Profile: e.Profile, CompletedAt: now}
		}
		if err := tx.Evaluations.UpdateProgress(ctx, e.ID, status, current, completedAt); err != nil {
			return fmt.Errorf("update evaluation: %w", err)
		}

		progress = &Progress{
			Answered:        countAnswered(qn.Bank, answered),
			Total:           qn.Bank.Total(),
			CurrentQuestion: current,
			Status:          status,
			NextQuestion:    nextOut,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if completed != nil {
		utilities.L().Info("evaluation completed", zap.String("token", completed.Token))
		if s.bus != nil {
			s.bus.Publish(EventEvaluationCompleted, *completed)
		}
	}
	return progress, nil
}

func (s *responseService) Progress(ctx context.Context, token string) (*Progress, error) {
	e, qn, answered, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}
	p := &Progress{
		Answered: countAnswered(qn.Bank, answered),
		Total:    qn.Bank.Total(),
		Status:   e.Status,
	}
	if next, ok := qn.Bank.NextUnanswered(answered); ok {
		p.CurrentQuestion = next.ID
	}
	return p, nil
}

func (s *responseService) Next(ctx context.Context, token string) (*NextQuestion, error) {
	e, qn, answered, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}
	out := &NextQuestion{
		Evaluation: EvaluationHeader{
			Token:         e.Token,
			Profile:       e.Profile,
			CandidateName: e.CandidateName,
			Position:      e.Position,
			Company:       e.Company,
			Status:        e.Status,
		},
		Answered: countAnswered(qn.Bank, answered),
		Total:    qn.Bank.Total(),
	}
	if e.Status == model.StatusCompleted {
		return out, nil
	}
	if q, ok := qn.Bank.NextUnanswered(answered); ok {
		out.NextQuestion = toQuestionOut(qn.Bank, q)
	}
	return out, nil
}

func toQuestionOut(b *questionbank.Bank, q questionbank.Question) *QuestionOut {
	areaName := q.Area
	if a, ok := b.Area(q.Area); ok {
		areaName = a.Name
	}
	return &QuestionOut{
		ID:        q.ID,
		Area:      q.Area,
		AreaName:  areaName,
		Dimension: q.Dimension,
		Text:      q.Text,
		Options:   q.Options,
	}
}

func (s *responseService) load(ctx context.Context, token string) (*model.Evaluation, *Questionnaire, map[int]bool, error) {
	e, err := findEvaluation(ctx, s.store, token)
	if err != nil {
		return nil, nil, nil, err
	}
	qn, err := s.questionnaires.Get(e.Profile)
	if err != nil {
		return nil, nil, nil, err
	}
	answered, err := s.store.Responses.AnsweredIDs(ctx, e.ID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load answered questions: %w", err)
	}
	return e, qn, answered, nil
}

// countAnswered ignores stored answers to ids the catalog no longer has.
func countAnswered(b *questionbank.Bank, answered map[int]bool) int {
	n := 0
	for _, id := range b.IDs() {
		if answered[id] {
			n++
		}
	}
	return n
}
