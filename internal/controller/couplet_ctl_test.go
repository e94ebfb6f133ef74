package controller

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"couplet_studio_202602/internal/config"
	"couplet_studio_202602/internal/model"
	"couplet_studio_202602/internal/repository"
	"couplet_studio_202602/internal/service"
	"couplet_studio_202602/pkg/net"
	"couplet_studio_202602/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== 测试辅助 ====================

const fencedCouplet = "```json\n{\"topLine\":\"春回大地千山秀\",\"bottomLine\":\"福满人间万户欢\",\"horizontal\":\"万象更新\",\"explanation\":\"辞旧迎新\",\"styleTags\":[\"喜庆\"]}\n```"

type testEnv struct {
	ctl      *CoupletController
	router   *gin.Engine
	logs     *observer.ObservedLogs
	repo     repository.GenerationLogRepository
	upstream *httptest.Server
}

type envOptions struct {
	token      string
	timeout    time.Duration
	archiveDir string
	noDB       bool
}

func setupCoupletEnv(t *testing.T, upstream http.HandlerFunc, opts envOptions) *testEnv {
	t.Helper()

	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	if opts.timeout == 0 {
		opts.timeout = 2 * time.Second
	}
	cfg := &config.AIConfig{
		Provider:   "ai-builder",
		BaseURL:    srv.URL,
		Token:      opts.token,
		TextModel:  "supermind-agent-v1",
		ImageModel: "gpt-image-1.5",
		Timeout:    opts.timeout,
	}
	aiService := service.NewAIService(cfg, utils.NewUpstreamClient(srv.URL), net.NewDispatcher(opts.timeout))

	var repo repository.GenerationLogRepository
	var statsService *service.StatsService
	if !opts.noDB {
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
		require.NoError(t, err)
		sqlDB, _ := db.DB()
		sqlDB.SetMaxOpenConns(1)
		require.NoError(t, db.AutoMigrate(&model.GenerationLog{}))
		repo = repository.NewGenerationLogRepository(db)
		statsService = service.NewStatsService(repo)
	}

	var storageService *service.StorageService
	if opts.archiveDir != "" {
		var err error
		storageService, err = service.NewStorageService(&config.StorageConfig{Provider: "local", BasePath: opts.archiveDir})
		require.NoError(t, err)
	}

	core, logs := observer.New(zapcore.InfoLevel)
	zl := zap.New(core)
	ctl := NewCoupletController(aiService, service.NewCallRecorder(zl, repo), storageService, statsService, zl)

	r := gin.New()
	api := r.Group("/api/couplet")
	api.POST("/generate", ctl.Generate)
	api.POST("/poster", ctl.Poster)
	api.GET("/stats", ctl.Stats)

	return &testEnv{ctl: ctl, router: r, logs: logs, repo: repo, upstream: srv}
}

func (e *testEnv) post(t *testing.T, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())
	return w, resp
}

// stalledUpstream 读完请求体后挂起，直到客户端断开或测试结束
func stalledUpstream(t *testing.T) http.HandlerFunc {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	return func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}
}

func chatOK(w http.ResponseWriter, content string) {
	raw, _ := json.Marshal(map[string]any{
		"choices": []any{map[string]any{"message": map[string]any{"content": content}}},
	})
	w.Header().Set("Content-Type", "application/json")
	w.Write(raw)
}

// ==================== 春联生成 ====================

func TestCoupletController_Generate_Success(t *testing.T) {
	env := setupCoupletEnv(t, func(w http.ResponseWriter, r *http.Request) {
		chatOK(w, fencedCouplet)
	}, envOptions{token: "test-token"})

	w, resp := env.post(t, "/api/couplet/generate", `{"theme":"新年快乐"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	requestID, _ := resp["requestId"].(string)
	assert.NotEmpty(t, requestID)
	assert.Equal(t, "ai-builder", resp["provider"])
	assert.Equal(t, "supermind-agent-v1", resp["model"])

	data := resp["data"].(map[string]any)
	assert.Equal(t, "春回大地千山秀", data["topLine"])
	assert.Equal(t, "福满人间万户欢", data["bottomLine"])
	assert.Equal(t, "万象更新", data["horizontal"])
	assert.Equal(t, "辞旧迎新", data["explanation"])
	assert.Equal(t, []any{"喜庆"}, data["styleTags"])

	// 每次调用恰好记录一次
	require.Equal(t, 1, env.logs.Len())
	fields := env.logs.All()[0].ContextMap()
	assert.Equal(t, requestID, fields["requestId"])
	assert.Equal(t, int64(200), fields["statusCode"])
	assert.Nil(t, fields["errorType"])
}

func TestCoupletController_Generate_UpstreamError(t *testing.T) {
	env := setupCoupletEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, envOptions{token: "test-token"})

	w, resp := env.post(t, "/api/couplet/generate", `{"theme":"新年快乐"}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, resp["error"], "500")
	assert.NotEmpty(t, resp["requestId"])
	assert.NotContains(t, resp, "data")

	require.Equal(t, 1, env.logs.Len())
	assert.Equal(t, "UpstreamError", env.logs.All()[0].ContextMap()["errorType"])
}

func TestCoupletController_Generate_Timeout(t *testing.T) {
	env := setupCoupletEnv(t, stalledUpstream(t), envOptions{token: "test-token", timeout: time.Second})

	w, resp := env.post(t, "/api/couplet/generate", `{"theme":"新年快乐"}`)

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Equal(t, "生成请求超时（>1 秒），请稍后重试。", resp["error"])
}

func TestCoupletController_Generate_Validation(t *testing.T) {
	var hits int
	env := setupCoupletEnv(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
	}, envOptions{token: "test-token"})

	tests := []struct {
		name string
		body string
		want string
	}{
		{"缺少主题", `{}`, "请求参数有误：theme 不能为空。请检查后重试。"},
		{"主题过长", `{"theme":"` + strings.Repeat("福", 51) + `"}`, "请求参数有误：theme 过长，请控制在 50 字以内。请检查后重试。"},
		{"非 JSON", `not json`, "请求参数有误：请求体必须为 JSON 对象。请检查后重试。"},
		{"数组", `[1]`, "请求参数有误：请求体必须为 JSON 对象。请检查后重试。"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := env.post(t, "/api/couplet/generate", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.want, resp["error"])
		})
	}
	assert.Equal(t, 0, hits, "校验失败时不应访问上游")
}

func TestCoupletController_Generate_OversizedBody(t *testing.T) {
	env := setupCoupletEnv(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("超长请求体不应访问上游")
	}, envOptions{token: "test-token"})

	body := `{"theme":"新年快乐","pad":"` + strings.Repeat("a", maxRequestBodyBytes) + `"}`
	w, resp := env.post(t, "/api/couplet/generate", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "请求参数有误：请求体必须为 JSON 对象。请检查后重试。", resp["error"])
	require.Equal(t, 1, env.logs.Len())
	assert.Equal(t, "ValidationError", env.logs.All()[0].ContextMap()["errorType"])
}

func TestCoupletController_Serve_PanicIsRecorded(t *testing.T) {
	env := setupCoupletEnv(t, func(w http.ResponseWriter, r *http.Request) {}, envOptions{token: "test-token"})

	r := gin.New()
	r.Use(gin.RecoveryWithWriter(io.Discard))
	r.POST("/boom", func(c *gin.Context) {
		env.ctl.serve(c, model.EndpointGenerate, "supermind-agent-v1", func(ctx context.Context, _ string, _ any) (any, error) {
			panic("boom")
		})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/boom", strings.NewReader(`{"theme":"新年快乐"}`)))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	require.Equal(t, 1, env.logs.Len())
	fields := env.logs.All()[0].ContextMap()
	assert.Equal(t, int64(500), fields["statusCode"])
	assert.Equal(t, "NetworkOrServiceError", fields["errorType"])
	assert.Equal(t, "panic: boom", fields["error"])

	requestID, _ := fields["requestId"].(string)
	saved, err := env.repo.GetByRequestID(context.Background(), requestID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, saved.StatusCode)
}

func TestCoupletController_Generate_MissingToken(t *testing.T) {
	env := setupCoupletEnv(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("缺少凭证时不应访问上游")
	}, envOptions{})

	w, resp := env.post(t, "/api/couplet/generate", `{"theme":"新年快乐"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "服务暂时不可用（配置缺失）。请联系管理员后重试。", resp["error"])

	// 校验先于凭证检查
	w, _ = env.post(t, "/api/couplet/generate", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ==================== 海报生成 ====================

func TestCoupletController_Poster_MissingBottomLine(t *testing.T) {
	env := setupCoupletEnv(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("校验失败时不应访问上游")
	}, envOptions{token: "test-token"})

	w, resp := env.post(t, "/api/couplet/poster", `{"theme":"新年","topLine":"上联","horizontal":"横批"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "请求参数有误：bottomLine 不能为空。请检查后重试。", resp["error"])
}

func TestCoupletController_Poster_Success(t *testing.T) {
	png := base64.StdEncoding.EncodeToString([]byte("\x89PNG\r\n\x1a\nposter"))
	archiveDir := t.TempDir()
	env := setupCoupletEnv(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images/generations", r.URL.Path)
		w.Write([]byte(`{"data":[{"b64_json":"` + png + `"}]}`))
	}, envOptions{token: "test-token", archiveDir: archiveDir})

	w, resp := env.post(t, "/api/couplet/poster", `{"theme":"新年","topLine":"上联","bottomLine":"下联","horizontal":"横批"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gpt-image-1.5", resp["model"])
	data := resp["data"].(map[string]any)
	assert.Equal(t, png, data["imageBase64"])
	assert.NotContains(t, data, "imageUrl")

	archiveURL, _ := data["archiveUrl"].(string)
	requestID := resp["requestId"].(string)
	require.True(t, strings.HasSuffix(archiveURL, "/"+requestID+".png"), "archiveUrl = %s", archiveURL)

	key := strings.TrimPrefix(archiveURL, "/archive/")
	_, err := os.Stat(filepath.Join(archiveDir, filepath.FromSlash(key)))
	assert.NoError(t, err)
}

func TestCoupletController_Poster_URLOnlySkipsArchive(t *testing.T) {
	env := setupCoupletEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"url":"https://img.example.com/p.png"}]}`))
	}, envOptions{token: "test-token", archiveDir: t.TempDir()})

	w, resp := env.post(t, "/api/couplet/poster", `{"theme":"新年","topLine":"上联","bottomLine":"下联","horizontal":"横批"}`)

	require.Equal(t, http.StatusOK, w.Code)
	data := resp["data"].(map[string]any)
	assert.Equal(t, "https://img.example.com/p.png", data["imageUrl"])
	assert.NotContains(t, data, "archiveUrl")
}

func TestCoupletController_Poster_EmptyImage(t *testing.T) {
	env := setupCoupletEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}, envOptions{token: "test-token"})

	w, resp := env.post(t, "/api/couplet/poster", `{"theme":"新年","topLine":"上联","bottomLine":"下联","horizontal":"横批"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "海报生成结果为空，请稍后重试。", resp["error"])
}

// ==================== 调用统计 ====================

func TestCoupletController_Stats(t *testing.T) {
	env := setupCoupletEnv(t, func(w http.ResponseWriter, r *http.Request) {
		chatOK(w, fencedCouplet)
	}, envOptions{token: "test-token"})

	env.post(t, "/api/couplet/generate", `{"theme":"新年快乐"}`)
	env.post(t, "/api/couplet/generate", `{}`)

	req := httptest.NewRequest(http.MethodGet, "/api/couplet/stats", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Days      int `json:"days"`
		Endpoints []struct {
			Endpoint     string `json:"endpoint"`
			TotalCalls   int64  `json:"totalCalls"`
			SuccessCount int64  `json:"successCount"`
			FailedCount  int64  `json:"failedCount"`
		} `json:"endpoints"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 7, resp.Days)
	require.Len(t, resp.Endpoints, 1)
	assert.Equal(t, "generate", resp.Endpoints[0].Endpoint)
	assert.Equal(t, int64(2), resp.Endpoints[0].TotalCalls)
	assert.Equal(t, int64(1), resp.Endpoints[0].SuccessCount)
	assert.Equal(t, int64(1), resp.Endpoints[0].FailedCount)
}

func TestCoupletController_Stats_InvalidDays(t *testing.T) {
	env := setupCoupletEnv(t, func(w http.ResponseWriter, r *http.Request) {}, envOptions{token: "test-token"})

	for _, days := range []string{"0", "91", "abc"} {
		req := httptest.NewRequest(http.MethodGet, "/api/couplet/stats?days="+days, nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "days=%s", days)
	}
}

func TestCoupletController_Stats_Disabled(t *testing.T) {
	env := setupCoupletEnv(t, func(w http.ResponseWriter, r *http.Request) {}, envOptions{token: "test-token", noDB: true})

	req := httptest.NewRequest(http.MethodGet, "/api/couplet/stats", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
