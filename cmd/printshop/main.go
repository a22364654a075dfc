package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"printshop/internal/config"
	"printshop/internal/lib/logger"
	generate_excel "printshop/internal/service/generate-excel"
	"printshop/internal/service/pricing"
	"printshop/internal/service/pricing/layout"
	"printshop/internal/service/provision"
	"printshop/internal/storage/cache"
	"printshop/internal/storage/mysql"
	"syscall"
	"time"
)

func main() {
	cfg := config.MustConfig()

	log := logger.Setup(cfg.Env, "errors.log")

	db, err := mysql.New(*cfg)
	if err != nil {
		log.Error("failed to open db", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	err = db.Ping(pingCtx)
	cancelPing()
	if err != nil {
		log.Error("db is unreachable", "error", err)
		os.Exit(1)
	}

	// Прайсы и наценку читаем через Redis, если он настроен
	var store cache.Backend = db
	if cfg.Redis.Address != "" {
		rdb := cache.NewClient(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		defer rdb.Close()

		store = cache.New(db, rdb, cfg.Redis.TTL, log)
		log.Info("redis cache enabled", slog.String("address", cfg.Redis.Address))
	}

	engine := pricing.NewEngine(store, log, pricing.Settings{
		DefaultMarkup: cfg.Pricing.DefaultMarkup,
		Optimizer:     layout.New(cfg.Pricing.SheetMargin, cfg.Pricing.SheetGap),
	})
	genService := generate_excel.NewGenerateService(engine)
	provisionService := provision.NewService(db, log)

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      routes(*cfg, log, db, store, engine, genService, provisionService),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("server started", slog.String("address", cfg.Address), slog.String("env", cfg.Env))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed start server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop server", "error", err)
	}

	log.Info("server stopped")
}
