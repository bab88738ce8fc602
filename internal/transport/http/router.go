package httptransport

import (
	"net/http"
	"time"

	gincors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mailbin/backend/internal/config"
	"mailbin/backend/internal/health"
	"mailbin/backend/internal/middleware"
	"mailbin/backend/internal/monitoring"
	"mailbin/backend/internal/service"
)

// RouterDependencies 路由器依赖项
type RouterDependencies struct {
	Config         *config.Config
	InboxService   *service.InboxService
	MessageService *service.MessageService
	Metrics        *monitoring.Metrics      // 可选
	HealthChecker  *health.HealthChecker    // 可选
	Logger         *zap.Logger
}

// NewRouter 创建并返回 Gin 路由实例。
func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.New()

	// 使用自定义中间件替代默认中间件
	mon := middleware.NewMonitoringMiddleware(deps.Metrics, deps.Logger)
	router.Use(mon.PanicRecovery())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(mon.HTTPMetrics())

	// CORS 配置
	corsConfig := gincors.Config{
		AllowOrigins:     deps.Config.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	// 如果允许所有来源，则需清空凭证支持。
	for _, origin := range corsConfig.AllowOrigins {
		if origin == "*" {
			corsConfig.AllowCredentials = false
			break
		}
	}
	router.Use(gincors.New(corsConfig))

	// 创建处理器
	handler := NewInboxHandler(deps.InboxService, deps.MessageService, deps.Metrics, deps.Logger)

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	// 存活/就绪探针与指标
	if deps.HealthChecker != nil {
		router.GET("/health/live", gin.WrapF(deps.HealthChecker.LiveEndpoint))
		router.GET("/health/ready", gin.WrapF(deps.HealthChecker.ReadyEndpoint))
	}
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.HTTPHandler()))
	}

	// ========== Inbox API ==========
	apiRoutes := router.Group("/api")
	{
		apiRoutes.POST("/inbox", handler.createInbox)
		apiRoutes.GET("/inbox/:token/messages", handler.listMessages)
		apiRoutes.GET("/inbox/:token/messages/:id", handler.getMessage)
		apiRoutes.DELETE("/inbox/:token/messages", handler.deleteMessages)
		apiRoutes.GET("/inbox/:token/count", handler.countMessages)
	}

	// 未知路由统一返回 404
	router.NoRoute(func(c *gin.Context) {
		NotFound(c, MsgRouteNotFound)
	})

	return router
}
