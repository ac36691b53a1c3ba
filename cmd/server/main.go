package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/lk2023060901/knowcast-backend/internal/conf"
	"github.com/lk2023060901/knowcast-backend/internal/pkg/injector"
	"github.com/lk2023060901/knowcast-backend/internal/pkg/logger"
)

var (
	configFile = flag.String("config", "configs/config.yaml", "config file path, empty for environment only")
	envFile    = flag.String("env", ".env", "dotenv file loaded before the config file")
)

func main() {
	flag.Parse()

	// Load configuration
	config, err := conf.LoadConfig(*configFile, *envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	log, err := logger.New(&config.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	logger.SetGlobal(log)

	provider, _ := config.Knowledge.Active()
	log.Info("config loaded successfully",
		zap.String("knowledge_provider", provider.Name),
		zap.String("openai_model", config.OpenAI.Model),
		zap.String("output_dir", config.Storage.OutputDir),
		zap.Bool("redis", config.Redis.Enabled),
		zap.Bool("minio", config.MinIO.Enabled),
	)

	app, cleanup, err := injector.InitializeApp(config, log)
	if err != nil {
		log.Fatal("failed to initialize app", zap.Error(err))
	}
	defer cleanup()

	go func() {
		if err := app.HTTPServer.Start(); err != nil {
			log.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	log.Info("server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), config.Server.ShutdownTimeout)
	defer cancel()

	if err := app.HTTPServer.Stop(ctx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}
