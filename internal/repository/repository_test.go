package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evamed-backend/internal/db/dbtest"
	"evamed-backend/internal/model"
	"evamed-backend/internal/repository"
)

func newEvaluation(t *testing.T, store *repository.Store, name string) *model.Evaluation {
	t.Helper()
	e := &model.Evaluation{
		Token:         uuid.NewString(),
		Profile:       "security",
		CandidateName: name,
		Status:        model.StatusPending,
	}
	require.NoError(t, store.Evaluations.Create(context.Background(), e))
	return e
}

func TestEvaluationCRUD(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(dbtest.New(t))

	first := newEvaluation(t, store, "Ana")
	second := newEvaluation(t, store, "Luis")

	got, err := store.Evaluations.GetByToken(ctx, first.Token)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.CandidateName)
	assert.Equal(t, model.StatusPending, got.Status)

	_, err = store.Evaluations.GetByToken(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	list, err := store.Evaluations.List(ctx, repository.EvaluationFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")

	now := time.Now().UTC()
	require.NoError(t, store.Evaluations.UpdateProgress(ctx, first.ID, model.StatusCompleted, 0, &now))
	completed, err := store.Evaluations.List(ctx, repository.EvaluationFilter{Status: model.StatusCompleted})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.NotNil(t, completed[0].CompletedAt)

	assert.ErrorIs(t, store.Evaluations.UpdateProgress(ctx, 9999, model.StatusInProgress, 1, nil), repository.ErrNotFound)

	require.NoError(t, store.Evaluations.Delete(ctx, second.ID))
	assert.ErrorIs(t, store.Evaluations.Delete(ctx, second.ID), repository.ErrNotFound)
}

func TestEvaluationTokenIsUnique(t *testing.T) {
	store := repository.NewStore(dbtest.New(t))
	e := newEvaluation(t, store, "Ana")

	dup := &model.Evaluation{Token: e.Token, Profile: "security", CandidateName: "Otro", Status: model.StatusPending}
	assert.ErrorIs(t, store.Evaluations.Create(context.Background(), dup), repository.ErrDuplicate)
}

func TestListFilterByCreator(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(dbtest.New(t))
	owner := uint(42)

	e := &model.Evaluation{Token: uuid.NewString(), Profile: "security", CandidateName: "Ana", Status: model.StatusPending, CreatedBy: &owner}
	require.NoError(t, store.Evaluations.Create(ctx, e))
	newEvaluation(t, store, "Sin dueño")

	mine, err := store.Evaluations.List(ctx, repository.EvaluationFilter{CreatedBy: &owner})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Ana", mine[0].CandidateName)

	limited, err := store.Evaluations.List(ctx, repository.EvaluationFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestResponseUpsertReplacesAnswer(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(dbtest.New(t))
	e := newEvaluation(t, store, "Ana")

	require.NoError(t, store.Responses.Upsert(ctx, &model.Response{EvaluationID: e.ID, QuestionID: 3, AnswerValue: 0, AnsweredAt: time.Now()}))
	require.NoError(t, store.Responses.Upsert(ctx, &model.Response{EvaluationID: e.ID, QuestionID: 1, AnswerValue: 1, AnsweredAt: time.Now()}))
	require.NoError(t, store.Responses.Upsert(ctx, &model.Response{EvaluationID: e.ID, QuestionID: 3, AnswerValue: 2, AnsweredAt: time.Now()}))

	n, err := store.Responses.Count(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	list, err := store.Responses.ListByEvaluation(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].QuestionID)
	assert.Equal(t, 3, list[1].QuestionID)
	assert.Equal(t, 2, list[1].AnswerValue, "last write wins")

	ids, err := store.Responses.AnsweredIDs(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{1: true, 3: true}, ids)
}

func TestListByEvaluations(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(dbtest.New(t))
	a := newEvaluation(t, store, "A")
	b := newEvaluation(t, store, "B")
	c := newEvaluation(t, store, "C")

	require.NoError(t, store.Responses.Upsert(ctx, &model.Response{EvaluationID: a.ID, QuestionID: 1}))
	require.NoError(t, store.Responses.Upsert(ctx, &model.Response{EvaluationID: a.ID, QuestionID: 2}))
	require.NoError(t, store.Responses.Upsert(ctx, &model.Response{EvaluationID: b.ID, QuestionID: 1}))

	got, err := store.Responses.ListByEvaluations(ctx, []uint{a.ID, b.ID, c.ID})
	require.NoError(t, err)
	assert.Len(t, got[a.ID], 2)
	assert.Len(t, got[b.ID], 1)
	assert.Empty(t, got[c.ID])

	empty, err := store.Responses.ListByEvaluations(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDeleteRemovesResponses(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(dbtest.New(t))
	e := newEvaluation(t, store, "Ana")
	require.NoError(t, store.Responses.Upsert(ctx, &model.Response{EvaluationID: e.ID, QuestionID: 1}))

	require.NoError(t, store.Evaluations.Delete(ctx, e.ID))
	n, err := store.Responses.Count(ctx, e.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStaleIDsSkipsCompleted(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.New(t)
	store := repository.NewStore(gdb)

	old := newEvaluation(t, store, "Viejo")
	oldDone := newEvaluation(t, store, "Viejo terminado")
	fresh := newEvaluation(t, store, "Nuevo")

	longAgo := time.Now().UTC().Add(-48 * time.Hour)
	require.NoError(t, gdb.Model(&model.Evaluation{}).Where("id IN ?", []uint{old.ID, oldDone.ID}).
		UpdateColumn("updated_at", longAgo).Error)
	require.NoError(t, gdb.Model(&model.Evaluation{}).Where("id = ?", oldDone.ID).
		UpdateColumn("status", model.StatusCompleted).Error)

	ids, err := store.Evaluations.StaleIDs(ctx, time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []uint{old.ID}, ids)

	n, err := store.Evaluations.DeleteByIDs(ctx, ids)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.Evaluations.GetByToken(ctx, fresh.Token)
	assert.NoError(t, err)
}

func TestTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(dbtest.New(t))
	boom := errors.New("boom")

	err := store.Transaction(ctx, func(tx *repository.Store) error {
		newEvaluation(t, tx, "Fantasma")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	list, err := store.Evaluations.List(ctx, repository.EvaluationFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAdminUsers(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(dbtest.New(t))

	admin := &model.AdminUser{Username: "admin", PasswordHash: "x", Role: model.RoleAdmin}
	require.NoError(t, store.AdminUsers.Create(ctx, admin))
	require.NoError(t, store.AdminUsers.Create(ctx, &model.AdminUser{Username: "eva", PasswordHash: "y", Role: model.RoleCreator}))

	assert.ErrorIs(t, store.AdminUsers.Create(ctx, &model.AdminUser{Username: "admin", PasswordHash: "z", Role: model.RoleCreator}), repository.ErrDuplicate)

	got, err := store.AdminUsers.GetByUsername(ctx, "eva")
	require.NoError(t, err)
	assert.Equal(t, model.RoleCreator, got.Role)

	byID, err := store.AdminUsers.GetByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin", byID.Username)

	_, err = store.AdminUsers.GetByUsername(ctx, "nadie")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	n, err := store.AdminUsers.CountByRole(ctx, model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	users, err := store.AdminUsers.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	require.NoError(t, store.AdminUsers.Delete(ctx, got.ID))
	assert.ErrorIs(t, store.AdminUsers.Delete(ctx, got.ID), repository.ErrNotFound)
}
