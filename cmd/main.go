package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hotel-service/internal/availability"
	"hotel-service/internal/clock"
	"hotel-service/internal/handler"
	"hotel-service/internal/kpi"
	appmiddleware "hotel-service/internal/middleware"
	"hotel-service/internal/pricing"
	"hotel-service/internal/reconcile"
	"hotel-service/pkg/cache"
	"hotel-service/pkg/config"
	"hotel-service/pkg/database"
	"hotel-service/pkg/jwtutil"
	"hotel-service/pkg/logger"
	appmetrics "hotel-service/prometheus"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logger.InitLogger(cfg)
	log := logger.GetLogger()
	defer log.Sync()

	jwtutil.Initialize(&cfg.JWT)
	appmetrics.InitMetrics(cfg)

	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	db := database.GetDB()

	var kv cache.KV
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Warn("Redis unreachable, occupancy snapshots disabled", zap.Error(err))
		} else {
			kv = cache.NewRedisKV(rdb)
			log.Info("Redis cache connected", zap.String("addr", cfg.Redis.Addr))
		}
	}

	clk := clock.NewSystem()
	availabilitySvc := availability.NewService(db, clk, log)
	aggregator := kpi.NewAggregator(db, log)
	pricingClient := pricing.NewClient(cfg.Pricing.BaseURL, cfg.Pricing.Timeout, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	job := reconcile.NewJob(db, clk, log, kv)
	go job.Start(ctx, cfg.Reconcile.Interval)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(appmiddleware.RequestIDMiddleware)
	e.Use(appmiddleware.MetricsMiddleware)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)
	reservationHandler := handler.NewReservationHandler(db, availabilitySvc)
	roomHandler := handler.NewRoomHandler(db)
	maintenanceHandler := handler.NewMaintenanceHandler(db, clk)
	occupancyHandler := handler.NewOccupancyHandler(db, kv, clk)
	kpiHandler := handler.NewKPIHandler(aggregator)
	expenseHandler := handler.NewExpenseHandler(db)
	pricingHandler := handler.NewPricingHandler(pricingClient)

	api := e.Group("/api")
	api.Use(appmiddleware.AuthMiddleware)

	api.GET("/reservation/rooms", availabilityHandler.NumOfRooms)
	api.GET("/reservation/room-numbers", availabilityHandler.RoomNumbers)

	api.POST("/reservations", reservationHandler.Create)
	api.GET("/reservations", reservationHandler.List)
	api.GET("/reservations/:id", reservationHandler.Get)
	api.DELETE("/reservations/:id", reservationHandler.Delete)

	api.GET("/rooms", roomHandler.ListRooms)
	api.POST("/rooms", roomHandler.CreateRoom)
	api.GET("/rooms/counts", roomHandler.Counts)
	api.PUT("/rooms/:id", roomHandler.UpdateRoom)
	api.DELETE("/rooms/:id", roomHandler.DeleteRoom)
	api.GET("/room-units", roomHandler.ListUnits)
	api.POST("/room-units", roomHandler.CreateUnit)
	api.DELETE("/room-units/:id", roomHandler.DeleteUnit)
	api.PUT("/room-units/:id/status", roomHandler.UpdateUnitStatus)
	api.POST("/room-units/:id/maintenance", maintenanceHandler.Create)
	api.GET("/maintenance-blocks", maintenanceHandler.List)
	api.DELETE("/maintenance-blocks/:id", maintenanceHandler.Delete)

	api.GET("/occupancy", occupancyHandler.Get)
	api.GET("/kpi/:hotelId", kpiHandler.Report)

	api.GET("/expense-categories", expenseHandler.ListCategories)
	api.POST("/expense-categories", expenseHandler.CreateCategory)
	api.GET("/expenses", expenseHandler.ListExpenses)
	api.POST("/expenses", expenseHandler.CreateExpense)
	api.DELETE("/expenses/:id", expenseHandler.DeleteExpense)

	api.POST("/pricing/predict", pricingHandler.Predict)

	go func() {
		log.Info("Starting hotel service", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
}
