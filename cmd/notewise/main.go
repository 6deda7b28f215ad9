package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dpetrov/notewise/internal/backup"
	"github.com/dpetrov/notewise/internal/config"
	"github.com/dpetrov/notewise/internal/database"
	"github.com/dpetrov/notewise/internal/llm"
	"github.com/dpetrov/notewise/internal/logging"
	"github.com/dpetrov/notewise/internal/server"
)

func main() {
	cfg, err := config.Parse()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	logger := logging.Setup(cfg.App.LogLevel, cfg.App.Pretty)

	db, err := database.Open(cfg.DB.Path)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	llmClient := llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.Token, llm.WithModel(cfg.LLM.Model))
	if !llmClient.Configured() {
		logger.Warn("LLM token not set, translate/generate routes will fail until configured")
	}

	srv := server.New(db, llmClient, backup.Config{
		S3: backup.S3Config{
			Endpoint:  cfg.Backup.S3Endpoint,
			Bucket:    cfg.Backup.S3Bucket,
			Region:    cfg.Backup.S3Region,
			AccessKey: cfg.Backup.S3AccessKey,
			SecretKey: cfg.Backup.S3SecretKey,
		},
		DBPath:        cfg.DB.Path,
		Passphrase:    cfg.Backup.Passphrase,
		ScheduleHour:  cfg.Backup.ScheduleHour,
		RetentionDays: cfg.Backup.RetentionDays,
	}, logger)

	backups := srv.Backups()
	if backups.Enabled() {
		backups.Start(context.Background())
		defer backups.Stop()
		logger.Info("scheduled backups enabled", "hour", cfg.Backup.ScheduleHour)
	}

	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("notewise listening", "port", cfg.HTTP.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
