package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"runform-backend/internal/config"
	"runform-backend/internal/database"
	"runform-backend/internal/handlers"
	"runform-backend/internal/middleware"
	"runform-backend/internal/pose"
)

func main() {
	config.InitLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := database.InitDB(cfg); err != nil {
		slog.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}

	estimator := pose.NewHTTPEstimator(cfg.ModelURL, 10*time.Second)
	handlers.Cfg = cfg
	handlers.Manager = handlers.NewSessionManager(database.DB, cfg, estimator)

	router := gin.Default()
	router.Use(cors.Default())

	api := router.Group("/api")
	api.POST("/auth/login", handlers.Login)
	api.GET("/sessions", handlers.ListSessions)
	api.GET("/sessions/:session_id", handlers.GetSession)
	api.GET("/sessions/:session_id/metrics", handlers.GetSessionMetrics)
	api.GET("/media", handlers.ListMedia)

	control := api.Group("")
	if cfg.AccessKeyHash != "" {
		control.Use(middleware.RequireAuth(cfg.JWTSecret))
	}
	control.POST("/sessions", handlers.StartSession)
	control.POST("/sessions/:session_id/stop", handlers.StopSession)
	control.POST("/sessions/:session_id/mode", handlers.SwitchSessionMode)
	control.POST("/sessions/:session_id/pause", handlers.PauseSession)
	control.POST("/sessions/:session_id/resume", handlers.ResumeSession)
	control.POST("/sessions/:session_id/rate", handlers.SetPlaybackRate)
	control.POST("/media", handlers.UploadMedia)

	slog.Info("server listening", "port", cfg.ListenPort)
	if err := router.Run(":" + cfg.ListenPort); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}
