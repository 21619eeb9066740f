package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"evamed-backend/internal/model"
)

type ResponseRepository interface {
	// Upsert stores the answer, replacing any earlier answer to the same question.
	Upsert(ctx context.Context, response *model.Response) error
	ListByEvaluation(ctx context.Context, evaluationID uint) ([]model.Response, error)
	ListByEvaluations(ctx context.Context, evaluationIDs []uint) (map[uint][]model.Response, error)
	AnsweredIDs(ctx context.Context, evaluationID uint) (map[int]bool, error)
	Count(ctx context.Context, evaluationID uint) (int64, error)
}

type responseRepository struct {
	db *gorm.DB
}

func NewResponseRepository(db *gorm.DB) ResponseRepository {
	return &responseRepository{db: db}
}

func (r *responseRepository) Upsert(ctx context.Context, response *model.Response) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "evaluation_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"answer_value", "answered_at"}),
	}).Create(response).Error
	return translate(err)
}

// ListByEvaluation returns responses in question order.
func (r *responseRepository) ListByEvaluation(ctx context.Context, evaluationID uint) ([]model.Response, error) {
	var responses []model.Response
	err := r.db.WithContext(ctx).
		Where("evaluation_id = ?", evaluationID).
		Order("question_id").
		Find(&responses).Error
	return responses, translate(err)
}

func (r *responseRepository) ListByEvaluations(ctx context.Context, evaluationIDs []uint) (map[uint][]model.Response, error) {
	out := make(map[uint][]model.Response, len(evaluationIDs))
	if len(evaluationIDs) == 0 {
		return out, nil
	}
	var responses []model.Response
	err := r.db.WithContext(ctx).
		Where("evaluation_id IN ?", evaluationIDs).
		Order("evaluation_id").Order("question_id").
		Find(&responses).Error
	if err != nil {
		return nil, translate(err)
	}
	for _, resp := range responses {
		out[resp.EvaluationID] = append(out[resp.EvaluationID], resp)
	}
	return out, nil
}

func (r *responseRepository) AnsweredIDs(ctx context.Context, evaluationID uint) (map[int]bool, error) {
	var ids []int
	err := r.db.WithContext(ctx).Model(&model.Response{}).
		Where("evaluation_id = ?", evaluationID).
		Pluck("question_id", &ids).Error
	if err != nil {
		return nil, translate(err)
	}
	out := make(map[int]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *responseRepository) Count(ctx context.Context, evaluationID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Response{}).Where("evaluation_id = ?", evaluationID).Count(&n).Error
	return n, translate(err)
}
