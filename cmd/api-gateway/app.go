package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/worktime-api/internal/handler"
	internalmiddleware "github.com/noah-isme/worktime-api/internal/middleware"
	"github.com/noah-isme/worktime-api/internal/repository"
	"github.com/noah-isme/worktime-api/internal/service"
	"github.com/noah-isme/worktime-api/pkg/clock"
	"github.com/noah-isme/worktime-api/pkg/config"
	"github.com/noah-isme/worktime-api/pkg/kvstore"
	"github.com/noah-isme/worktime-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/worktime-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/worktime-api/pkg/middleware/requestid"
)

type app struct {
	router *gin.Engine
	stops  []func()
}

// Close detaches ledger watchers.
func (a *app) Close() {
	for _, stop := range a.stops {
		stop()
	}
}

func newApp(cfg *config.Config, logr *zap.Logger, store kvstore.Store, redisClient *redis.Client) *app {
	clk := clock.Real{}
	validate := validator.New()
	loc := cfg.Attendance.Location

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	records := repository.NewDailyRecordRepository(store)
	ledgerRepo := repository.NewLedgerRepository(store)
	accountRepo := repository.NewAccountRepository(store)

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Overview.CacheTTL, logr.Named("cache"), cfg.Overview.CacheEnabled && redisClient != nil)

	bridge := service.NewAttendanceBridge(ledgerRepo, metrics, logr.Named("bridge"))
	accounts := service.NewAccountService(accountRepo, metrics, logr.Named("accounts"))
	attendance := service.NewAttendanceService(records, bridge, accounts, clk, metrics, logr.Named("attendance"), service.AttendanceServiceConfig{
		Location:             loc,
		SurfaceStorageErrors: cfg.Attendance.SurfaceStorageErrors(),
	})
	monthly := service.NewMonthlyService(bridge, cacheSvc, logr.Named("monthly"))
	exports := service.NewExportService(monthly, loc, logr.Named("export"), nil, nil)

	a := &app{}
	a.stops = append(a.stops, monthly.Start())

	attendanceHandler := handler.NewAttendanceHandler(attendance, monthly, validate, clk, loc)
	adminHandler := handler.NewAdminAttendanceHandler(attendance, bridge, monthly, exports, validate, clk, handler.AdminAttendanceOptions{
		Location:       loc,
		ExportsEnabled: cfg.Exports.Enabled,
	})
	accountHandler := handler.NewAccountHandler(accounts, validate)
	metricsHandler := handler.NewMetricsHandler(metrics)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready", "store": cfg.Store.Driver})
	})
	if cfg.Metrics.Enabled {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	employee := api.Group("/attendance")
	employee.GET("/today", attendanceHandler.Today)
	employee.GET("/history", attendanceHandler.History)
	employee.POST("/clock-in", attendanceHandler.ClockIn)
	employee.POST("/break-start", attendanceHandler.StartBreak)
	employee.POST("/break-end", attendanceHandler.EndBreak)
	employee.POST("/clock-out", attendanceHandler.ClockOut)
	employee.POST("/device", attendanceHandler.RefreshDevice)

	admin := api.Group("/admin")
	adminAttendance := admin.Group("/attendance")
	adminAttendance.GET("", adminHandler.List)
	adminAttendance.GET("/stream", adminHandler.Stream)
	adminAttendance.GET("/date/:date", adminHandler.ByDate)
	adminAttendance.PATCH("/:employeeId/:date", adminHandler.Correct)
	adminAttendance.GET("/:employeeId/overview", adminHandler.Overview)
	adminAttendance.GET("/:employeeId/export", adminHandler.Export)

	adminAccounts := admin.Group("/accounts")
	adminAccounts.GET("/:role/:id", accountHandler.Get)
	adminAccounts.PUT("/:role/:id", accountHandler.Set)
	adminAccounts.POST("/:role/:id/toggle", accountHandler.Toggle)

	a.router = r
	return a
}
