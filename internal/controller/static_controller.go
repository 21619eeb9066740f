package controller

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// StaticController serves the built single-page frontend.
type StaticController struct {
	dir string
}

func NewStaticController(dir string) *StaticController {
	return &StaticController{dir: dir}
}

// Enabled reports whether the frontend build is present.
func (sc *StaticController) Enabled() bool {
	if sc.dir == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(sc.dir, "index.html"))
	return err == nil
}

// Fallback answers unmatched routes: API paths get a JSON 404, files that
// exist in the build are served, and everything else gets index.html so the
// client-side router can take over.
func (sc *StaticController) Fallback(c *gin.Context) {
	p := c.Request.URL.Path
	if strings.HasPrefix(p, "/api/") || p == "/api" || !sc.Enabled() ||
		(c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "No encontrado", "error": "not_found"})
		return
	}
	clean := filepath.Clean("/" + p)
	if clean != "/" {
		if fi, err := os.Stat(filepath.Join(sc.dir, clean)); err == nil && !fi.IsDir() {
			c.File(filepath.Join(sc.dir, clean))
			return
		}
	}
	c.File(filepath.Join(sc.dir, "index.html"))
}
