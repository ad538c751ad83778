package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/Vishakh-Neelakantan/Mnemic/internal/config"
	"github.com/Vishakh-Neelakantan/Mnemic/internal/model"
	"github.com/Vishakh-Neelakantan/Mnemic/internal/modelsource"
	"github.com/Vishakh-Neelakantan/Mnemic/internal/scheduler"
	"github.com/Vishakh-Neelakantan/Mnemic/internal/storage"
	"github.com/Vishakh-Neelakantan/Mnemic/internal/web"
)

func main() {
	// Best effort; a missing .env is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	modelDir := cfg.ModelDir
	if cfg.ModelRepo != "" {
		modelDir, err = modelsource.Fetch(cfg.ModelRepo, cfg.CacheDir)
		if err != nil {
			slog.Error("Failed to fetch model artifacts", "repo", cfg.ModelRepo, "error", err)
			os.Exit(1)
		}
	}

	bundle, err := model.Load(modelDir)
	if err != nil {
		slog.Error("Failed to load model artifacts", "dir", modelDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Model loaded successfully", "dir", modelDir)

	svc, err := scheduler.NewService(bundle.Scorer, bundle.Scaler, bundle.DifficultyEncoder, bundle.SubjectEncoder)
	if err != nil {
		slog.Error("Failed to construct scheduler service", "error", err)
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("Database opened successfully", "path", cfg.DBPath)

	server := web.NewServer(svc, db, cfg.DaysAhead, logger)

	slog.Info("Listening", "addr", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, server); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
