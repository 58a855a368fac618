package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BerniceZTT/prep_end/config"
	"github.com/BerniceZTT/prep_end/controllers"
	"github.com/BerniceZTT/prep_end/gateway"
	"github.com/BerniceZTT/prep_end/middleware"
	"github.com/BerniceZTT/prep_end/routes"
	"github.com/BerniceZTT/prep_end/service"
	"github.com/BerniceZTT/prep_end/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	// 初始化日志
	utils.InitLogger()

	// 加载配置
	cfg := config.LoadConfig()

	// 设置Gin模式
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化远端网关客户端
	gw := gateway.NewClient(cfg.GatewayBaseURL, cfg.GatewayTimeout)

	// 组装服务
	refresh := &service.RefreshSignal{}
	prepSvc := service.NewPrepService(gw, service.PrepCountdown, refresh)
	labelAgg := service.NewLabelAggregator(gw)
	searchSvc := service.NewSearchService(gw, service.SearchDebounce)
	inventoryStore := service.NewInventoryStore(gw)

	defer prepSvc.Close()
	defer searchSvc.Close()

	// 创建Gin实例
	router := gin.New()

	// 应用中间件
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.ErrorHandler())

	// 注册路由
	routes.RegisterRoutes(router, routes.Controllers{
		Prep:      controllers.NewPrepController(prepSvc, cfg.ForecastDate),
		Forecast:  controllers.NewForecastController(gw, refresh),
		Label:     controllers.NewLabelController(labelAgg, cfg.ForecastDate),
		Search:    controllers.NewSearchController(searchSvc),
		Inventory: controllers.NewInventoryController(gw, inventoryStore),
	})

	// 预加载当日备餐清单，加载失败不阻塞启动
	utils.Logger.Info().Msg("开始系统初始化...")
	loadCtx, loadCancel := context.WithTimeout(context.Background(), cfg.GatewayTimeout)
	if _, err := prepSvc.LoadItems(loadCtx, cfg.ForecastDate); err != nil {
		utils.Logger.Error().Err(err).Str("date", cfg.ForecastDate).Msg("预加载备餐清单失败")
	}
	loadCancel()
	utils.Logger.Info().Msg("系统初始化完成")

	// 设置HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.Logger.Fatal().Err(err).Msg("服务器关闭异常")
	}

	utils.Logger.Info().Msg("服务器已优雅关闭")
}
