package httpx

import (
	"encoding/json"
	"errors"
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

func newRouter(log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Logger(log), Recovery(log), CORS([]string{"http://localhost:5173"}))
	r.GET("/ok", func(c *gin.Context) { JSON(c, http.StatusOK, gin.H{"v": 1}) })
	r.GET("/missing", func(c *gin.Context) { Error(c, CodeNotFound, errors.New("product not found")) })
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })
	r.GET("/db", func(c *gin.Context) { Error(c, CodeInternal, errors.New("connection refused")) })
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var r Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &r))
	return r
}

func TestLoggerLevelByStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := newRouter(zap.New(core))

	for path, level := range map[string]zapcore.Level{
		"/ok":      zapcore.InfoLevel,
		"/missing": zapcore.WarnLevel,
		"/db":      zapcore.ErrorLevel,
	} {
		logs.TakeAll()
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

		entries := logs.FilterMessage("http request").All()
		require.Len(t, entries, 1, path)
		assert.Equal(t, level, entries[0].Level, path)
		assert.NotEmpty(t, entries[0].ContextMap()["rid"])
	}
}

func TestRequestIDPropagates(t *testing.T) {
	r := newRouter(zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestRecoveryReturnsEnvelope(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	r := newRouter(zap.New(core))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decode(t, w)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInternal, resp.Error.Code)
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestPanicStillGetsAccessLog(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := newRouter(zap.New(core))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, int64(http.StatusInternalServerError), entries[0].ContextMap()["status"])
}

func TestInternalErrorsAreGeneric(t *testing.T) {
	r := newRouter(zap.NewNop())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/db", nil))

	resp := decode(t, w)
	assert.Equal(t, "internal error", resp.Error.Message)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestCORS(t *testing.T) {
	r := newRouter(zap.NewNop())

	req := httptest.NewRequest(http.MethodOptions, "/ok", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("Origin", "http://evil.test")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
