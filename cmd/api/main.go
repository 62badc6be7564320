package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/CastleLabs/prizewheel/internal/config"
	"github.com/CastleLabs/prizewheel/internal/handlers"
	"github.com/CastleLabs/prizewheel/internal/hardware"
	"github.com/CastleLabs/prizewheel/internal/logger"
	"github.com/CastleLabs/prizewheel/internal/middleware"
	"github.com/CastleLabs/prizewheel/internal/services"
	"github.com/CastleLabs/prizewheel/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log := logger.New(cfg.LogFile)

	st, err := store.New(cfg.DataDir, log)
	if err != nil {
		log.Fatalf("Failed to open data store: %v", err)
	}

	state := services.NewWheelState(log)
	engine := services.NewWheelEngine(st, state, log)

	wsHandler := handlers.NewWebSocketHandler(engine, log)
	engine.SetBroadcaster(wsHandler)

	// Dashboards refresh even when nobody spins.
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for range ticker.C {
			wsHandler.BroadcastStateUpdate(engine.DashboardState())
		}
	}()

	button := hardware.NewButton(engine.Config().ButtonPin(), cfg.GPIOValuePath, engine, log)
	gpioAvailable := cfg.GPIOEnabled && button.Available()
	if gpioAvailable {
		go button.Watch(context.Background())
	} else {
		log.Info("GPIO unavailable, running in simulation mode")
	}

	spinHandler := handlers.NewSpinHandler(engine, log)
	prizeHandler := handlers.NewPrizeHandler(engine, log)
	adminHandler := handlers.NewAdminHandler(engine, cfg.SoundsDir, gpioAvailable, log)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.Use(middleware.CORS())

	router.GET("/ws", wsHandler.HandleWebSocket)
	router.Static("/static", "./static")

	api := router.Group("/api")
	{
		api.POST("/spin", spinHandler.TriggerSpin)
		api.GET("/spin/status", spinHandler.GetStatus)

		api.GET("/prizes", prizeHandler.GetPrizes)
		api.POST("/prizes", prizeHandler.AddPrize)
		api.PUT("/prizes/:id", prizeHandler.UpdatePrize)
		api.DELETE("/prizes/:id", prizeHandler.DeletePrize)

		odds := api.Group("/odds")
		{
			odds.GET("/prizes", prizeHandler.GetOddsPrizes)
			odds.POST("/simulate", prizeHandler.SimulateSpins)
			odds.GET("/analysis", prizeHandler.GetOddsAnalysis)
		}

		api.POST("/config", adminHandler.UpdateConfig)
		api.GET("/dashboard_data", adminHandler.GetDashboardData)
		api.GET("/performance", adminHandler.GetPerformance)
		api.GET("/export/csv", adminHandler.ExportCSV)
		api.DELETE("/stats", adminHandler.ClearStats)
		api.GET("/qr_code", adminHandler.GetQRCode)

		api.GET("/sounds/list", adminHandler.ListSounds)
		api.POST("/upload/sound", adminHandler.UploadSound)
	}

	log.Infof("Prize wheel server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
