package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kaiva-ai/kaiva/internal/api"
	"github.com/kaiva-ai/kaiva/internal/config"
	"github.com/kaiva-ai/kaiva/internal/repository"
	"github.com/kaiva-ai/kaiva/internal/service"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath = flag.String("config", "", "Path to config file")
)

func main() {
	flag.Parse()

	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if cfg.HasCredential() {
		logger.Info("OpenAI API key loaded", zap.String("prefix", keyPrefix(cfg.LLM.APIKey)))
	} else {
		logger.Warn("OpenAI API key is not configured, chat requests will fail")
	}

	db, err := repository.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	abstractRepo := repository.NewAbstractRepository(db)

	extractor := service.NewExtractor()
	completer := service.NewCompletionService(cfg, logger)

	chatService := service.NewChatService(cfg, extractor, completer, logger)
	abstractService := service.NewAbstractService(cfg, extractor, completer, abstractRepo, logger)

	router := api.SetupRouter(chatService, abstractService, api.RouterConfig{
		AllowOrigins:  cfg.CORS.AllowOrigins,
		UploadBaseURL: cfg.Upload.BaseURL,
	}, logger)

	srv := &http.Server{
		Addr:        cfg.Address(),
		Handler:     router,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.Abstract.Retention > 0 {
		go pruneAbstracts(ctx, abstractService, cfg.Abstract.Retention, logger)
	}

	go func() {
		printBanner()
		logger.Info("Starting KAIVA server",
			zap.String("address", cfg.Address()),
			zap.String("model", cfg.LLM.Model),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	return zcfg.Build()
}

// keyPrefix returns enough of the key to identify it in logs
func keyPrefix(key string) string {
	if len(key) <= 6 {
		return "***"
	}
	return key[:6] + "..."
}

func pruneAbstracts(ctx context.Context, svc *service.AbstractService, retention time.Duration, logger *zap.Logger) {
	interval := retention / 4
	if interval < time.Minute {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := svc.Prune(ctx, retention); err != nil {
				logger.Warn("Failed to prune abstracts", zap.Error(err))
			}
		}
	}
}

func printBanner() {
	banner := `
 _  __    _    _____     __    _
| |/ /   / \  |_ _\ \   / /   / \
| ' /   / _ \  | | \ \ / /   / _ \
| . \  / ___ \ | |  \ V /   / ___ \
|_|\_\/_/   \_\___|  \_/   /_/   \_\
`

	fmt.Println(banner)
}
