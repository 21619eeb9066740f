package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"evamed-backend/internal/model"
	"evamed-backend/internal/repository"
	"evamed-backend/internal/service"
	"evamed-backend/utilities"
)

const maxListLimit = 500

type EvaluationController struct {
	EvaluationService service.EvaluationService
}

func NewEvaluationController(evaluationService service.EvaluationService) *EvaluationController {
	return &EvaluationController{EvaluationService: evaluationService}
}

// CreateEvaluation handles POST /api/evaluations
func (ec *EvaluationController) CreateEvaluation(c *gin.Context) {
	var req service.CreateEvaluationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	e, err := ec.EvaluationService.Create(c.Request.Context(), req, utilities.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

// ListEvaluations handles GET /api/evaluations?status=&limit=
// Creators only see the evaluations they created.
func (ec *EvaluationController) ListEvaluations(c *gin.Context) {
	filter := repository.EvaluationFilter{Status: c.Query("status")}
	switch filter.Status {
	case "", model.StatusPending, model.StatusInProgress, model.StatusCompleted:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Estado inválido", "error": "bad_request"})
		return
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Límite inválido", "error": "bad_request"})
			return
		}
		filter.Limit = min(n, maxListLimit)
	}
	if c.GetString(utilities.CtxRole) == model.RoleCreator {
		uid := utilities.CurrentUserID(c)
		filter.CreatedBy = &uid
	}

	list, err := ec.EvaluationService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetEvaluation handles GET /api/evaluations/:token
func (ec *EvaluationController) GetEvaluation(c *gin.Context) {
	e, err := ec.EvaluationService.Get(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// DeleteEvaluation handles DELETE /api/evaluations/:token
func (ec *EvaluationController) DeleteEvaluation(c *gin.Context) {
	if err := ec.EvaluationService.Delete(c.Request.Context(), c.Param("token")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
