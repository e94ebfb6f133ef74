package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"couplet_studio_202602/internal/controller"
	"couplet_studio_202602/internal/middleware"
	"couplet_studio_202602/internal/web"

	_ "couplet_studio_202602/docs"
)

// Options 路由可选项
type Options struct {
	// ArchiveDir 本地归档目录，非空时挂载 /archive
	ArchiveDir string
}

// SetupRouter 创建 gin 引擎并注册中间件
func SetupRouter(logger *zap.Logger, coupletCtl *controller.CoupletController, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.AccessLog(logger))

	InitRoutes(r, coupletCtl, opts)
	return r
}

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine, coupletCtl *controller.CoupletController, opts Options) {
	// 1. 页面与静态资源
	r.GET("/", func(c *gin.Context) {
		page, err := web.IndexHTML()
		if err != nil {
			c.String(http.StatusInternalServerError, "页面加载失败")
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
	})
	r.StaticFS("/static", web.StaticFS())

	// 2. 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 3. Swagger 文档路由
	// 访问 http://localhost:8080/swagger/index.html 即可查看
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 4. API 路由组
	api := r.Group("/api")
	{
		couplet := api.Group("/couplet")
		{
			// POST /api/couplet/generate
			couplet.POST("/generate", coupletCtl.Generate)
			// POST /api/couplet/poster
			couplet.POST("/poster", coupletCtl.Poster)
			// GET /api/couplet/stats?days=7
			couplet.GET("/stats", coupletCtl.Stats)
		}
	}

	// 5. 本地海报归档
	if opts.ArchiveDir != "" {
		r.Static("/archive", opts.ArchiveDir)
	}
}
