package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"evamed-backend/internal/service"
	"evamed-backend/utilities"
)

type apiError struct {
	status int
	code   string
	detail string
}

// errorTable maps service errors to responses. Order matters only for
// errors that wrap one another, which none of these do.
var errorTable = []struct {
	target error
	resp   apiError
}{
	{service.ErrEvaluationNotFound, apiError{http.StatusNotFound, "not_found", "Evaluación no encontrada"}},
	{service.ErrEvaluationCompleted, apiError{http.StatusBadRequest, "evaluation_completed", "La evaluación ya fue completada"}},
	{service.ErrInvalidQuestion, apiError{http.StatusBadRequest, "invalid_question", "Pregunta inválida"}},
	{service.ErrInvalidAnswer, apiError{http.StatusBadRequest, "invalid_answer", "Valor de respuesta inválido"}},
	{service.ErrNoResponses, apiError{http.StatusBadRequest, "no_responses", "Sin respuestas registradas"}},
	{service.ErrUnknownProfile, apiError{http.StatusBadRequest, "unknown_profile", "Perfil de cuestionario desconocido"}},
	{service.ErrInvalidCandidate, apiError{http.StatusBadRequest, "invalid_candidate", "Datos del candidato inválidos"}},
	{service.ErrInvalidCredentials, apiError{http.StatusUnauthorized, "invalid_credentials", "Usuario o contraseña incorrectos"}},
	{service.ErrInvalidUser, apiError{http.StatusBadRequest, "invalid_user", "Datos de usuario inválidos"}},
	{service.ErrUserExists, apiError{http.StatusConflict, "user_exists", "El nombre de usuario ya existe"}},
	{service.ErrUserNotFound, apiError{http.StatusNotFound, "not_found", "Usuario no encontrado"}},
	{service.ErrCannotDeleteSelf, apiError{http.StatusBadRequest, "cannot_delete_self", "No puede eliminar su propia cuenta"}},
	{service.ErrLastAdmin, apiError{http.StatusBadRequest, "last_admin", "No se puede eliminar el último administrador"}},
}

// respondError writes the JSON error body for err. Unknown errors become a
// 500 and are logged; their text never reaches the client.
func respondError(c *gin.Context, err error) {
	for _, e := range errorTable {
		if errors.Is(err, e.target) {
			c.JSON(e.resp.status, gin.H{"detail": e.resp.detail, "error": e.resp.code, "message": err.Error()})
			return
		}
	}
	utilities.L().Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error interno del servidor", "error": "internal"})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"detail": "Solicitud inválida", "error": "bad_request", "message": err.Error()})
}
