package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"picktrack/api/internal/app"
	"picktrack/api/internal/audit"
	"picktrack/api/internal/authpw"
	"picktrack/api/internal/backup"
	"picktrack/api/internal/config"
	"picktrack/api/internal/export"
	"picktrack/api/internal/ledger"
	"picktrack/api/internal/registry"
	"picktrack/api/internal/search"
	"picktrack/api/internal/session"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("failed to create data dir: %v", err)
	}

	reg := registry.New(cfg.DataDir)
	ledgers := app.Ledgers{
		Picks:    ledger.NewPickList(filepath.Join(cfg.DataDir, "picklists.txt")),
		Scans:    ledger.NewScanLedger(filepath.Join(cfg.DataDir, "scanned.txt")),
		Troubles: ledger.NewTroubleLedger(filepath.Join(cfg.DataDir, "troubleshoot.txt")),
		Problems: ledger.NewProblemLedger(filepath.Join(cfg.DataDir, "problems.txt")),
	}

	fallback := search.NewLedgers(ledgers.Scans, ledgers.Troubles, ledgers.Problems)
	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
		defer meiliClient.Close()
	}
	searchService := search.NewService(meiliClient, fallback)

	var auditService *audit.Service
	if cfg.AuditEnabled {
		auditService = audit.New(cfg.DataDir)
	}

	var backupService *backup.Service
	if strings.TrimSpace(cfg.BackupEndpoint) != "" {
		var err error
		backupService, err = backup.NewService(ctx, backup.Config{
			Endpoint:  cfg.BackupEndpoint,
			AccessKey: cfg.BackupAccessKey,
			SecretKey: cfg.BackupSecretKey,
			Bucket:    cfg.BackupBucket,
			UseSSL:    cfg.BackupUseSSL,
		})
		if err != nil {
			log.Fatalf("backup target unreachable: %v", err)
		}
	}

	// Refresh tokens live in Redis when configured, in memory otherwise.
	var sessions app.SessionStore
	if strings.TrimSpace(cfg.RedisURL) != "" {
		log.Printf("Using Redis for refresh token storage")
		redisStore, err := session.NewRedisStore(cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		defer redisStore.Close()
		sessions = redisStore
	} else {
		log.Printf("Using in-memory refresh token storage")
		sessions = session.NewMemoryStore()
	}

	service := app.New(cfg, reg, ledgers, authpw.NewService(reg), sessions,
		searchService, export.NewService(), auditService, backupService)
	if err := service.Bootstrap(ctx); err != nil {
		log.Printf("WARNING: bootstrap error (will retry on next restart): %v", err)
	}

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("PickTrack API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
