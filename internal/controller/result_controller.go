package controller

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"evamed-backend/internal/service"
)

type ResultController struct {
	ResultService service.ResultService
	ReportService service.ReportService
}

func NewResultController(results service.ResultService, reports service.ReportService) *ResultController {
	return &ResultController{ResultService: results, ReportService: reports}
}

// GetResult handles GET /api/result/:token
func (rc *ResultController) GetResult(c *gin.Context) {
	res, err := rc.ResultService.Get(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// DownloadReport handles GET /api/result/:token/pdf
func (rc *ResultController) DownloadReport(c *gin.Context) {
	token := c.Param("token")
	// Render fully before writing so errors can still produce a JSON body.
	var buf bytes.Buffer
	if err := rc.ReportService.Render(c.Request.Context(), token, &buf); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+service.ReportFilename(token))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
