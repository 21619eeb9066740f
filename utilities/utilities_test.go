package utilities

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEventBusDeliversToEverySubscriber(t *testing.T) {
	bus := NewEventBus()
	var got atomic.Int32
	bus.Subscribe("evaluation.completed", func(data interface{}) { got.Add(int32(data.(int))) })
	bus.Subscribe("evaluation.completed", func(data interface{}) { got.Add(int32(data.(int))) })
	bus.Subscribe("other", func(interface{}) { t.Error("unexpected delivery") })

	bus.Publish("evaluation.completed", 5)
	bus.Publish("nobody.listens", 1)
	bus.Wait()

	assert.Equal(t, int32(10), got.Load())
}

func TestEventBusSurvivesPanickingHandler(t *testing.T) {
	bus := NewEventBus()
	var ran atomic.Bool
	bus.Subscribe("e", func(interface{}) { panic("boom") })
	bus.Subscribe("e", func(interface{}) { ran.Store(true) })

	bus.Publish("e", nil)
	bus.Wait()
	assert.True(t, ran.Load())
}

func TestRateLimiterPerKey(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"), "keys have independent buckets")

	now = now.Add(time.Second)
	assert.True(t, rl.Allow("a"))

	now = now.Add(time.Hour)
	assert.Equal(t, 0, rl.Prune(2*time.Hour))
	// Allow pruned both idle keys before recording "c".
	assert.True(t, rl.Allow("c"))
	assert.Len(t, rl.visitors, 1)
}

func TestRateLimiterMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(0.001, 1)
	r := gin.New()
	r.GET("/x", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusOK, do())
	assert.Equal(t, http.StatusTooManyRequests, do())
}

func TestSetupLoggingSplitsByLevel(t *testing.T) {
	dir := t.TempDir()
	_, err := SetupLogging(LogOptions{Dir: dir, Level: "info", Quiet: true})
	require.NoError(t, err)
	t.Cleanup(func() { SetLogger(zap.NewNop()) })

	Debug("hidden %d", 1)
	Info("started %s", "ok")
	Error("failed %s", "badly")
	SyncLogs()

	info, err := os.ReadFile(filepath.Join(dir, "info.log"))
	require.NoError(t, err)
	assert.Contains(t, string(info), "started ok")
	assert.Contains(t, string(info), "failed badly")
	assert.NotContains(t, string(info), "hidden")

	errs, err := os.ReadFile(filepath.Join(dir, "error.log"))
	require.NoError(t, err)
	assert.Contains(t, string(errs), "failed badly")
	assert.NotContains(t, string(errs), "started ok")
}

func TestSetupLoggingWithoutDir(t *testing.T) {
	l, err := SetupLogging(LogOptions{Level: "bogus", Quiet: true})
	require.NoError(t, err)
	t.Cleanup(func() { SetLogger(zap.NewNop()) })
	assert.Same(t, l, L())
}
