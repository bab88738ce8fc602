package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	gosmtp "github.com/emersion/go-smtp"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mailbin/backend/internal/config"
	"mailbin/backend/internal/health"
	"mailbin/backend/internal/logger"
	"mailbin/backend/internal/monitoring"
	"mailbin/backend/internal/service"
	"mailbin/backend/internal/smtp"
	"mailbin/backend/internal/storage"
	"mailbin/backend/internal/storage/memory"
	mongostore "mailbin/backend/internal/storage/mongo"
	httptransport "mailbin/backend/internal/transport/http"
)

// main 启动同时包含 HTTP API 与 SMTP 接收端的综合服务。
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 设置 Gin 模式（基于开发环境标志）
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// 初始化日志系统
	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		File:        cfg.Log.File,
		MaxSize:     100,
		MaxBackups:  3,
		MaxAge:      28,
		Compress:    true,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	log.Info("starting mailbin server",
		zap.String("mail_domain", cfg.Mail.Domain),
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("development", cfg.Log.Development),
	)

	// 初始化存储层
	var store storage.Store

	if cfg.Mongo.URI != "" {
		// 使用 MongoDB 存储；连接或索引创建失败直接退出，
		// 带着断开的存储启动只会把失败推迟到第一封邮件。
		connectCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		mongo, err := mongostore.Open(connectCtx, cfg.Mongo)
		if err != nil {
			cancel()
			log.Fatal("failed to connect to MongoDB", zap.Error(err))
		}
		if err := mongo.EnsureIndexes(connectCtx); err != nil {
			cancel()
			log.Fatal("failed to create indexes", zap.Error(err))
		}
		cancel()

		store = mongo
		log.Info("using MongoDB storage",
			zap.String("database", cfg.Mongo.Database),
			zap.String("collection", cfg.Mongo.Collection),
		)
	} else {
		// 使用内存存储（开发环境）
		store = memory.NewStore()
		log.Info("using memory storage (development mode)")
	}

	// 初始化监控系统
	// 注意：promauto 注册到默认注册表，进程内只创建一次
	metrics := monitoring.NewMetrics()
	collector := monitoring.NewIngestCollector()

	// 初始化健康检查
	healthChecker := health.NewHealthChecker(store, log)

	// 初始化服务层
	inboxService := service.NewInboxService(cfg.Mail.Domain)
	messageService := service.NewMessageService(store)

	// 创建 HTTP 服务器
	httpAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	router := httptransport.NewRouter(httptransport.RouterDependencies{
		Config:         cfg,
		InboxService:   inboxService,
		MessageService: messageService,
		Metrics:        metrics,
		HealthChecker:  healthChecker,
		Logger:         log,
	})

	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// 创建 SMTP 服务器
	smtpBackend := smtp.NewBackend(smtp.BackendOptions{
		Policy:    smtp.NewRecipientPolicy(cfg.Mail.Domain),
		Messages:  messageService,
		Collector: collector,
		Metrics:   metrics,
		Limiter:   smtp.NewConnectionLimiter(cfg.SMTP.MaxConnections, cfg.SMTP.MaxConnRate),
		Logger:    log,
		MaxBytes:  cfg.SMTP.MaxMessageBytes,
	})
	smtpServer := gosmtp.NewServer(smtpBackend)
	smtpServer.Addr = cfg.SMTP.BindAddr
	smtpServer.Domain = cfg.SMTP.Hostname
	smtpServer.ReadTimeout = 10 * time.Second
	smtpServer.WriteTimeout = 10 * time.Second
	smtpServer.MaxMessageBytes = cfg.SMTP.MaxMessageBytes
	smtpServer.MaxRecipients = 50

	// 信号处理
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	// HTTP 服务器 goroutine
	group.Go(func() error {
		log.Info("starting HTTP server", zap.String("address", httpAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", zap.Error(err))
			return err
		}
		return nil
	})

	// SMTP 服务器 goroutine
	group.Go(func() error {
		log.Info("starting SMTP server",
			zap.String("address", cfg.SMTP.BindAddr),
			zap.String("domain", cfg.Mail.Domain),
		)
		if err := smtpServer.ListenAndServe(); err != nil {
			log.Error("SMTP server error", zap.Error(err))
			return err
		}
		return nil
	})

	// 吞吐统计 goroutine：每小时输出一次并清零计数
	group.Go(func() error {
		collector.Run(groupCtx, time.Hour, log)
		return nil
	})

	// 优雅关闭 goroutine
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutdown signal received, gracefully shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// 关闭 HTTP 服务器
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error", zap.Error(err))
		}

		// 关闭 SMTP 服务器
		if err := smtpServer.Close(); err != nil {
			log.Warn("SMTP server close warning", zap.Error(err))
		}

		// 排空存储连接池
		if err := store.Close(shutdownCtx); err != nil {
			log.Warn("store close warning", zap.Error(err))
		}

		log.Info("servers stopped")
		return nil
	})

	// 等待所有 goroutine 完成
	if err := group.Wait(); shouldReportError(err) {
		log.Fatal("server error", zap.Error(err))
	}

	log.Info("server exited cleanly")
}

// shouldReportError 过滤正常关闭路径上的取消错误（含包装形式）。
func shouldReportError(err error) bool {
	return err != nil && !errors.Is(err, context.Canceled)
}
