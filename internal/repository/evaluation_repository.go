package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"evamed-backend/internal/model"
)

// EvaluationFilter narrows List. Zero values match everything.
type EvaluationFilter struct {
	Status    string
	CreatedBy *uint
	Limit     int
}

type EvaluationRepository interface {
	Create(ctx context.Context, evaluation *model.Evaluation) error
	List(ctx context.Context, filter EvaluationFilter) ([]model.Evaluation, error)
	GetByToken(ctx context.Context, token string) (*model.Evaluation, error)
	// LockByToken is GetByToken plus a row lock held until the surrounding
	// transaction ends. SQLite ignores the lock; its single writer serializes instead.
	LockByToken(ctx context.Context, token string) (*model.Evaluation, error)
	UpdateProgress(ctx context.Context, id uint, status string, currentQuestion int, completedAt *time.Time) error
	Delete(ctx context.Context, id uint) error
	// StaleIDs returns unfinished evaluations not touched since cutoff.
	StaleIDs(ctx context.Context, cutoff time.Time) ([]uint, error)
	DeleteByIDs(ctx context.Context, ids []uint) (int64, error)
}

type evaluationRepository struct {
	db *gorm.DB
}

func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

func (r *evaluationRepository) Create(ctx context.Context, evaluation *model.Evaluation) error {
	return translate(r.db.WithContext(ctx).Create(evaluation).Error)
}

// List returns evaluations newest first.
func (r *evaluationRepository) List(ctx context.Context, filter EvaluationFilter) ([]model.Evaluation, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.CreatedBy != nil {
		q = q.Where("created_by = ?", *filter.CreatedBy)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	var evaluations []model.Evaluation
	err := q.Find(&evaluations).Error
	return evaluations, translate(err)
}

func (r *evaluationRepository) GetByToken(ctx context.Context, token string) (*model.Evaluation, error) {
	var evaluation model.Evaluation
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&evaluation).Error
	if err != nil {
		return nil, translate(err)
	}
	return &evaluation, nil
}

func (r *evaluationRepository) LockByToken(ctx context.Context, token string) (*model.Evaluation, error) {
	var evaluation model.Evaluation
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("token = ?", token).First(&evaluation).Error
	if err != nil {
		return nil, translate(err)
	}
	return &evaluation, nil
}

func (r *evaluationRepository) UpdateProgress(ctx context.Context, id uint, status string, currentQuestion int, completedAt *time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.Evaluation{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":           status,
		"current_question": currentQuestion,
		"completed_at":     completedAt,
	})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the evaluation and its responses.
func (r *evaluationRepository) Delete(ctx context.Context, id uint) error {
	n, err := r.DeleteByIDs(ctx, []uint{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *evaluationRepository) StaleIDs(ctx context.Context, cutoff time.Time) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&model.Evaluation{}).
		Where("status IN ?", []string{model.StatusPending, model.StatusInProgress}).
		Where("updated_at < ?", cutoff).
		Order("id").
		Pluck("id", &ids).Error
	return ids, translate(err)
}

// DeleteByIDs removes evaluations and their responses. Callers wanting both
// deletes to be atomic run it inside Store.Transaction.
func (r *evaluationRepository) DeleteByIDs(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	db := r.db.WithContext(ctx)
	if err := db.Where("evaluation_id IN ?", ids).Delete(&model.Response{}).Error; err != nil {
		return 0, translate(err)
	}
	res := db.Where("id IN ?", ids).Delete(&model.Evaluation{})
	return res.RowsAffected, translate(res.Error)
}
