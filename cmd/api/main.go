package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/dropplus/server/internal/api"
	"github.com/dropplus/server/internal/config"
	"github.com/dropplus/server/internal/device"
	"github.com/dropplus/server/internal/service"
	"github.com/dropplus/server/internal/store"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(log)

	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	ledger, err := store.New(cfg.DBPath)
	if err != nil {
		log.Error("open ledger store", "error", err)
		os.Exit(1)
	}
	defer ledger.Close()
	log.Info("ledger store ready", "path", cfg.DBPath)

	registry := device.NewRegistry(cfg.Devices)

	deposits := service.NewDepositService(ledger, registry, cfg.PointsPerBottle)
	queries := service.NewQueryService(ledger)
	admin := service.NewAdminService(ledger, cfg.AdminKey)

	handler := api.NewHandler(deposits, queries, admin, log)
	router := handler.Router(cfg.StaticDir)

	log.Info("DropPlus server starting",
		"addr", ":"+cfg.Port,
		"devices", len(cfg.Devices),
		"points_per_bottle", cfg.PointsPerBottle,
		"env", cfg.Env,
	)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
