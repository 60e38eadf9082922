package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/example/langportal/internal/api"
	"github.com/example/langportal/internal/bot"
	"github.com/example/langportal/internal/config"
	"github.com/example/langportal/internal/database"
	"github.com/example/langportal/internal/excel"
	"github.com/example/langportal/internal/logger"
	"github.com/example/langportal/internal/scheduler"
	"github.com/example/langportal/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

const version = "1.0.0"

func main() {
	importPath := flag.String("import", "", "import vocabulary from an .xlsx or .csv file and exit")
	tokenFor := flag.String("token", "", "print a 24h API token for the given user ID and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *tokenFor != "" {
		token, err := api.NewTokenAuth(cfg.Auth.JWTSecret).GenerateToken(*tokenFor, 24*time.Hour)
		if err != nil {
			log.Fatalf("Failed to generate token: %v", err)
		}
		fmt.Println(token)
		return
	}

	closer, err := logger.Setup(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closer.Close()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if *importPath != "" {
		if err := runImport(db, *importPath); err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		return
	}

	printStartUpBanner()

	// Cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Built unconditionally so on-demand reminders work with the cron job off
	sched := scheduler.New(db, newNotifier(cfg.Telegram), cfg.Scheduler, nil)
	if cfg.Scheduler.Enabled {
		if err := sched.Start(); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
	}

	gin.SetMode(gin.ReleaseMode)
	sessions := session.NewService(db, nil, nil)
	router := api.NewRouter(
		api.NewHandler(db, sessions, sched, nil),
		api.NewTokenAuth(cfg.Auth.JWTSecret),
		api.NewRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst),
	)
	server := api.NewServer(cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		log.Println("Received shutdown signal")
	case err := <-errCh:
		if err != nil {
			log.Printf("Server error: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	if cfg.Scheduler.Enabled {
		sched.Stop()
	}
	log.Println("Server stopped successfully")
}

// newNotifier prefers Telegram and falls back to logging reminders
func newNotifier(cfg config.TelegramConfig) scheduler.Notifier {
	if cfg.Token == "" {
		logger.Warnf("TELEGRAM_BOT_TOKEN is not set, reminders will only be logged")
		return scheduler.LogNotifier{}
	}
	n, err := bot.NewTelegramNotifier(cfg.Token)
	if err != nil {
		logger.Errorf("Telegram is unavailable, reminders will only be logged: %v", err)
		return scheduler.LogNotifier{}
	}
	return n
}

func runImport(db *sqlx.DB, path string) error {
	cfg := excel.DefaultImportConfig()
	cfg.FilePath = path

	result, err := excel.NewImporter(database.NewWordRepository(db)).Import(context.Background(), cfg)
	if err != nil {
		return err
	}
	logger.Infof("Imported %s: %d processed, %d created, %d updated, %d skipped",
		path, result.TotalProcessed, result.Created, result.Updated, result.Skipped)
	for _, e := range result.Errors {
		logger.Warnf("%s", e)
	}
	return nil
}

func printStartUpBanner() {
	myFigure := figure.NewFigure("LANG PORTAL", "", true)
	myFigure.Print()

	fmt.Println("======================================================")
	fmt.Printf("Study progress API (v%s)\n\n", version)
}
