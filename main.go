package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BerniceZTT/salesiq/config"
	"github.com/BerniceZTT/salesiq/controllers"
	"github.com/BerniceZTT/salesiq/realtime"
	"github.com/BerniceZTT/salesiq/repository"
	"github.com/BerniceZTT/salesiq/routes"
	"github.com/BerniceZTT/salesiq/service"
	"github.com/BerniceZTT/salesiq/tasks"
	"github.com/BerniceZTT/salesiq/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.LoadConfig()

	// 初始化日志
	utils.InitLogger(cfg.Debug)
	utils.SetWebhookSecret(cfg.WebhookKey)

	// 设置Gin模式
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化数据存储
	initCtx, initCancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := repository.InitStore(initCtx, cfg); err != nil {
		initCancel()
		utils.Logger.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("初始化数据存储失败")
	}
	initCancel()

	// 实时推送和后台任务
	hub := realtime.NewHub(cfg.AllowedOrigins)
	go hub.Run()
	manager := tasks.NewManager(hub)

	// 短信周报调度
	loc, err := time.LoadLocation(cfg.ReportTimezone)
	if err != nil {
		utils.Logger.Warn().Err(err).Str("timezone", cfg.ReportTimezone).Msg("无效的时区，使用UTC")
		loc = time.UTC
	}
	scheduler := service.NewReportScheduler(repository.GetStore(), service.LogNotifier{}, loc)
	if err := scheduler.Start(context.Background()); err != nil {
		utils.Logger.Error().Err(err).Msg("启动短信周报调度失败")
	}

	controllers.Setup(cfg, manager, hub, scheduler)
	router := routes.SetupRouter(cfg)

	// 设置HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 启动服务器
	go func() {
		utils.Logger.Info().Msgf("服务器启动，监听端口: %d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.Logger.Fatal().Err(err).Msg("启动服务器失败")
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.Logger.Info().Msg("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.Logger.Error().Err(err).Msg("服务器关闭异常")
	}

	scheduler.Stop()
	if err := manager.Shutdown(ctx); err != nil {
		utils.Logger.Error().Err(err).Msg("等待后台任务退出超时")
	}
	hub.Stop()
	repository.CloseStore(ctx)

	utils.Logger.Info().Msg("服务器已优雅关闭")
}
