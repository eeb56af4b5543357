package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, engine *gin.Engine, path string) {
	t.Helper()
	rec := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, path, nil)
	require.NoError(t, err)
	engine.ServeHTTP(rec, req)
}

func TestGinMiddlewareSeverityFollowsStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	engine := gin.New()
	engine.Use(GinMiddleware(zap.New(core)))
	engine.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	engine.GET("/broken", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	serve(t, engine, "/ok")
	serve(t, engine, "/missing")
	serve(t, engine, "/broken")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "http_request", entries[0].Message)
}

func TestGinMiddlewareSkipsProbes(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	engine := gin.New()
	engine.Use(GinMiddleware(zap.New(core)))
	engine.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.GET("/api/enrollments/", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(t, engine, "/health")
	serve(t, engine, "/metrics")
	serve(t, engine, "/api/enrollments/")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "/api/enrollments/", logs.All()[0].ContextMap()["path"])
}
