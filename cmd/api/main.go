package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/budgetcal/internal/account"
	"github.com/MrJamesThe3rd/budgetcal/internal/balance"
	"github.com/MrJamesThe3rd/budgetcal/internal/config"
	budgetHttp "github.com/MrJamesThe3rd/budgetcal/internal/http"
	accountHandler "github.com/MrJamesThe3rd/budgetcal/internal/http/account"
	balanceHandler "github.com/MrJamesThe3rd/budgetcal/internal/http/balance"
	itemHandler "github.com/MrJamesThe3rd/budgetcal/internal/http/item"
	layerHandler "github.com/MrJamesThe3rd/budgetcal/internal/http/layer"
	snapshotHandler "github.com/MrJamesThe3rd/budgetcal/internal/http/snapshot"
	"github.com/MrJamesThe3rd/budgetcal/internal/item"
	"github.com/MrJamesThe3rd/budgetcal/internal/layer"
	"github.com/MrJamesThe3rd/budgetcal/internal/snapshot"
	"github.com/MrJamesThe3rd/budgetcal/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db := store.New()

	var (
		accountService  = account.NewService(db)
		layerService    = layer.NewService(db)
		itemService     = item.NewService(db, layerService)
		balanceService  = balance.NewService(db, db, db, layerService)
		snapshotService = snapshot.NewService(db)
	)

	var (
		accountH  = accountHandler.NewHandler(accountService)
		layerH    = layerHandler.NewHandler(layerService)
		itemH     = itemHandler.NewHandler(itemService)
		balanceH  = balanceHandler.NewHandler(balanceService)
		snapshotH = snapshotHandler.NewHandler(snapshotService)
	)

	router := budgetHttp.New(itemH, accountH, layerH, balanceH, snapshotH, cfg.CORS.AllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	go func() {
		slog.Info("starting server", "app", cfg.App.Name, "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
