package router

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"couplet_studio_202602/internal/config"
	"couplet_studio_202602/internal/controller"
	"couplet_studio_202602/internal/service"
	"couplet_studio_202602/pkg/net"
	"couplet_studio_202602/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestRouter(t *testing.T, archiveDir string) *gin.Engine {
	t.Helper()
	cfg := &config.AIConfig{
		Provider:   "ai-builder",
		BaseURL:    "http://127.0.0.1:1",
		TextModel:  "text-model",
		ImageModel: "image-model",
		Timeout:    time.Second,
	}
	aiService := service.NewAIService(cfg, utils.NewUpstreamClient(cfg.BaseURL), net.NewDispatcher(cfg.Timeout))
	logger := zap.NewNop()
	ctl := controller.NewCoupletController(aiService, service.NewCallRecorder(logger, nil), nil, nil, logger)

	return SetupRouter(logger, ctl, Options{ArchiveDir: archiveDir})
}

func serve(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestRouter_Pages(t *testing.T) {
	r := setupTestRouter(t, "")

	w := serve(r, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "AI 春联工坊")

	w = serve(r, http.MethodGet, "/static/app.js")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "请求编号")

	w = serve(r, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRouter_APIRoutes(t *testing.T) {
	r := setupTestRouter(t, "")

	// 空请求体先于凭证检查返回 400
	req := httptest.NewRequest(http.MethodPost, "/api/couplet/generate", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodGet, "/api/couplet/stats")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = serve(r, http.MethodGet, "/api/couplet/generate")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_Archive(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "posters"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "posters", "a.png"), []byte("png"), 0o644))

	r := setupTestRouter(t, dir)
	w := serve(r, http.MethodGet, "/archive/posters/a.png")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png", w.Body.String())

	r = setupTestRouter(t, "")
	w = serve(r, http.MethodGet, "/archive/posters/a.png")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
