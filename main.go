package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/alum-connect/api-go/config"
	"github.com/alum-connect/api-go/logger"
	"github.com/alum-connect/api-go/mailer"
	"github.com/alum-connect/api-go/realtime"
	"github.com/alum-connect/api-go/routes"
	"github.com/alum-connect/api-go/services"
)

func main() {
	// .env is optional; in production everything comes from the environment.
	_ = godotenv.Load()

	cfg := config.Load()

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()

	db := config.InitDB(cfg)

	ctx := context.Background()

	var emailer services.Emailer
	if cfg.EmailEnabled {
		m, err := mailer.New(ctx, cfg.SESRegion, cfg.EmailSender, log)
		if err != nil {
			log.Warn("email disabled, SES init failed", zap.Error(err))
		} else {
			emailer = m
		}
	}

	bus := services.NewEventBus(cfg.EventBufferSize)
	hub := realtime.NewHub(log)

	dispatcher := services.NewDispatcher(db, bus, hub, emailer, log)
	if err := dispatcher.Reconcile(ctx); err != nil {
		log.Error("notification reconciliation failed", zap.Error(err))
	}
	go dispatcher.Run(ctx)

	verification := services.NewVerificationService(db, bus, log)
	relationship := services.NewRelationshipService(db, bus, log)

	gin.SetMode(cfg.GinMode)
	r := gin.Default()

	routes.SetupRoutes(r, routes.Deps{
		DB:           db,
		Cfg:          cfg,
		Verification: verification,
		Relationship: relationship,
		Dispatcher:   dispatcher,
		Realtime:     realtime.NewHandler(hub, cfg.JWTSecret, cfg.RealtimeIdleTimeout, log),
	})

	log.Info("starting server", zap.String("addr", cfg.ServerAddr))
	if err := r.Run(cfg.ServerAddr); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}
