package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"evamed-backend/internal/scoring"
	"evamed-backend/internal/service"
)

// QuestionnaireController serves the candidate-facing endpoints. Callers are
// identified only by the evaluation token in the path.
type QuestionnaireController struct {
	ResponseService service.ResponseService
}

func NewQuestionnaireController(responseService service.ResponseService) *QuestionnaireController {
	return &QuestionnaireController{ResponseService: responseService}
}

// Pointers so that option 0 passes the required check.
type answerRequest struct {
	QuestionID  *int `json:"question_id" binding:"required"`
	AnswerValue *int `json:"answer_value" binding:"required"`
}

// SaveResponse handles POST /api/eval/:token/response
func (qc *QuestionnaireController) SaveResponse(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := qc.ResponseService.Save(c.Request.Context(), c.Param("token"), scoring.Answer{
		QuestionID:  *req.QuestionID,
		AnswerValue: *req.AnswerValue,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":               true,
		"answered":         p.Answered,
		"total":            p.Total,
		"current_question": p.CurrentQuestion,
		"status":           p.Status,
		"next_question":    p.NextQuestion,
	})
}

// GetProgress handles GET /api/eval/:token/progress
func (qc *QuestionnaireController) GetProgress(c *gin.Context) {
	p, err := qc.ResponseService.Progress(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// GetNextQuestion handles GET /api/eval/:token/next-question
func (qc *QuestionnaireController) GetNextQuestion(c *gin.Context) {
	next, err := qc.ResponseService.Next(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, next)
}
