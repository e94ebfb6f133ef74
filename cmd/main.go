package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"couplet_studio_202602/internal/config"
	"couplet_studio_202602/internal/controller"
	"couplet_studio_202602/internal/model"
	"couplet_studio_202602/internal/repository"
	"couplet_studio_202602/internal/router"
	"couplet_studio_202602/internal/service"
	"couplet_studio_202602/internal/task"
	"couplet_studio_202602/pkg/database"
	"couplet_studio_202602/pkg/logger"
	"couplet_studio_202602/pkg/net"
	"couplet_studio_202602/pkg/utils"
)

// @title AI 春联工坊 API
// @version 1.0
// @description 春联生成与海报生成接口
// @host localhost:8080
// @BasePath /
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 2. 初始化日志
	zl, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer zl.Sync()

	// 3. 初始化依赖
	deps, err := initDependencies(cfg, zl)
	if err != nil {
		zl.Fatal("初始化依赖失败", zap.Error(err))
	}
	defer deps.Close()

	// 4. 启动定时任务
	if err := initTasks(deps); err != nil {
		zl.Fatal("启动定时任务失败", zap.Error(err))
	}

	// 5. 初始化路由
	gin.SetMode(cfg.Server.Mode)
	r := router.SetupRouter(zl, deps.Controllers.Couplet, router.Options{ArchiveDir: deps.ArchiveDir})

	// 6. 启动服务
	startServer(cfg, zl, r)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB // 未配置 DATABASE_DSN 时为 nil
	Repos       *Repositories
	Dispatcher  net.Dispatcher
	Services    *Services
	Controllers *Controllers
	ArchiveDir  string // 仅本地归档时非空
	Tasks       []stopper
}

// Repositories 仓库集合
type Repositories struct {
	GenerationLog repository.GenerationLogRepository
}

// Services 服务集合
type Services struct {
	AI       *service.AIService
	Recorder *service.CallRecorder
	Storage  *service.StorageService
	Stats    *service.StatsService
}

// Controllers 控制器集合
type Controllers struct {
	Couplet *controller.CoupletController
}

type stopper interface {
	Stop()
}

// Close 停止任务并释放数据库连接
func (d *Dependencies) Close() {
	for _, t := range d.Tasks {
		t.Stop()
	}
	if d.DB != nil {
		if err := database.Close(d.DB); err != nil {
			d.Logger.Warn("关闭数据库失败", zap.Error(err))
		}
	}
}

// ==================== 初始化函数 ====================

// initDependencies 初始化所有依赖
func initDependencies(cfg *config.Config, zl *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: zl,
		Repos:  &Repositories{},
	}

	// -------- 数据库 (可选) --------
	if cfg.Database.Enabled() {
		db, err := database.InitDB(cfg.Database.DSN, &model.GenerationLog{})
		if err != nil {
			return nil, err
		}
		deps.DB = db
		deps.Repos.GenerationLog = repository.NewGenerationLogRepository(db)
		zl.Info("调用记录持久化已开启")
	}

	// -------- 上游调用 --------
	if cfg.AI.Token == "" {
		zl.Warn("未配置 AI_BUILDER_TOKEN，生成接口将返回 500")
	}
	deps.Dispatcher = net.NewDispatcher(cfg.AI.Timeout)
	client := utils.NewUpstreamClient(cfg.AI.BaseURL)

	// -------- 服务 --------
	deps.Services = &Services{
		AI:       service.NewAIService(&cfg.AI, client, deps.Dispatcher),
		Recorder: service.NewCallRecorder(zl, deps.Repos.GenerationLog),
	}
	if deps.Repos.GenerationLog != nil {
		deps.Services.Stats = service.NewStatsService(deps.Repos.GenerationLog)
	}

	storageSvc, archiveDir, err := initStorageService(&cfg.Storage)
	if err != nil {
		return nil, err
	}
	deps.Services.Storage = storageSvc
	deps.ArchiveDir = archiveDir

	// -------- Controller 层 --------
	deps.Controllers = &Controllers{
		Couplet: controller.NewCoupletController(
			deps.Services.AI,
			deps.Services.Recorder,
			deps.Services.Storage,
			deps.Services.Stats,
			zl,
		),
	}

	return deps, nil
}

// initStorageService 初始化海报归档，未配置时返回 nil
func initStorageService(cfg *config.StorageConfig) (*service.StorageService, string, error) {
	if !cfg.Enabled() {
		return nil, "", nil
	}

	storageSvc, err := service.NewStorageService(cfg)
	if err != nil {
		return nil, "", fmt.Errorf("存储服务初始化失败: %w", err)
	}

	var archiveDir string
	if local, ok := storageSvc.GetProvider().(*service.LocalStorage); ok {
		archiveDir = local.BasePath()
	}
	return storageSvc, archiveDir, nil
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(deps *Dependencies) error {
	if deps.Repos.GenerationLog == nil {
		return nil
	}

	retention := task.NewLogRetentionTask(
		deps.Repos.GenerationLog,
		deps.Config.Database.RetentionDays,
		deps.Logger,
	)
	if err := retention.Start(task.DefaultRetentionSpec); err != nil {
		return err
	}
	deps.Tasks = append(deps.Tasks, retention)
	return nil
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(cfg *config.Config, zl *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		// 需覆盖上游超时上限
		WriteTimeout: time.Duration(config.MaxTimeoutMs)*time.Millisecond + 20*time.Second,
	}

	// 异步启动服务
	go func() {
		zl.Info("服务启动", zap.String("addr", srv.Addr), zap.Int64("upstreamTimeoutSec", cfg.AI.TimeoutSeconds()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("服务启动失败", zap.Error(err))
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("正在关闭服务...")

	// 优雅关闭，等待进行中的上游调用结束
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(config.MaxTimeoutMs)*time.Millisecond+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("服务强制关闭", zap.Error(err))
		return
	}

	zl.Info("服务已退出")
}
