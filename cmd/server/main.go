package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/detekoi/iron-golem/api/router"
	"github.com/detekoi/iron-golem/config"
	"github.com/detekoi/iron-golem/gemini"
	"github.com/detekoi/iron-golem/logger"
	"github.com/detekoi/iron-golem/stores"
)

// @title           Iron Golem API
// @version         1.0
// @description     Streaming Minecraft help assistant backed by Gemini. Chat responses stream over SSE with search grounding and inline crafting recipes.

// @contact.name   Iron Golem
// @contact.url    https://github.com/detekoi/iron-golem

// @license.name  MIT

// @host      localhost:8080
// @BasePath  /
func main() {
	config.Init()
	cfg := config.Get()
	log := logger.New("server")

	apiKey := config.APIKey()
	if apiKey == "" {
		log.Error("GEMINI_API_KEY is not set", nil)
		os.Exit(1)
	}

	ctx := context.Background()
	model, err := gemini.NewClient(ctx, gemini.Options{
		APIKey:      apiKey,
		Model:       cfg.Gemini.Model,
		RouterModel: cfg.Gemini.RouterModel,
		Log:         log.With("gemini"),
	})
	if err != nil {
		log.Error("failed to create Gemini client", logger.Fields{"error": err.Error()})
		os.Exit(1)
	}

	store, err := stores.NewStore(stores.NewStoreConfig(cfg.Store.Type, cfg.Store.Connection))
	if err != nil {
		log.Error("failed to open session store", logger.Fields{
			"type":  cfg.Store.Type,
			"error": err.Error(),
		})
		os.Exit(1)
	}
	defer store.Close()

	scheduler := startRetention(store, cfg.Retention, log)
	if scheduler != nil {
		defer scheduler.Stop()
	}

	r := router.New(router.Deps{
		Model:          model,
		Store:          store,
		Log:            log,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("server starting", logger.Fields{
		"addr":  addr,
		"model": cfg.Gemini.Model,
		"store": cfg.Store.Type,
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- r.Run(addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		log.Error("server stopped", logger.Fields{"error": err.Error()})
		os.Exit(1)
	case sig := <-quit:
		log.Info("shutting down", logger.Fields{"signal": sig.String()})
	}
}

// startRetention schedules the idle-session pruning job. Returns nil when
// retention is disabled.
func startRetention(store stores.SessionStore, cfg config.RetentionConfig, log *logger.Logger) *cron.Cron {
	if cfg.MaxIdleDays <= 0 {
		return nil
	}

	idleFor := time.Duration(cfg.MaxIdleDays) * 24 * time.Hour
	jobLog := log.With("retention")

	scheduler := cron.New(cron.WithSeconds())
	_, err := scheduler.AddFunc(cfg.Schedule, func() {
		pruned, err := store.PruneIdleSessions(idleFor)
		if err != nil {
			jobLog.Error("pruning failed", logger.Fields{"error": err.Error()})
			return
		}
		if pruned > 0 {
			jobLog.Info("pruned idle sessions", logger.Fields{"count": pruned})
		}
	})
	if err != nil {
		jobLog.Error("invalid retention schedule", logger.Fields{
			"schedule": cfg.Schedule,
			"error":    err.Error(),
		})
		return nil
	}

	scheduler.Start()
	jobLog.Info("retention job scheduled", logger.Fields{
		"schedule":    cfg.Schedule,
		"maxIdleDays": cfg.MaxIdleDays,
	})
	return scheduler
}
