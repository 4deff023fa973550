package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	pkgconfig "github.com/Skotchmaster/grocery_shop/pkg/config"
	pkgdb "github.com/Skotchmaster/grocery_shop/pkg/db"
	"github.com/Skotchmaster/grocery_shop/pkg/events"
	"github.com/Skotchmaster/grocery_shop/pkg/logging"
	"github.com/Skotchmaster/grocery_shop/pkg/productclient"

	cartcfg "github.com/Skotchmaster/grocery_shop/services/cart/internal/config"
	"github.com/Skotchmaster/grocery_shop/services/cart/internal/httpserver"
	"github.com/Skotchmaster/grocery_shop/services/cart/internal/models"
	"github.com/Skotchmaster/grocery_shop/services/cart/internal/repo"
	"github.com/Skotchmaster/grocery_shop/services/cart/internal/service"
)

func main() {
	pkgconfig.LoadEnvFile("services/cart/.env")

	cfg := cartcfg.Load()
	pkgconfig.MustNonEmpty(cfg.ProductURL, "PRODUCT_URL")

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL, cfg.SQLitePath)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := db.AutoMigrate(&models.CartItem{}); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	publisher := events.New(cfg.KafkaBrokers)

	svc := &service.CartService{
		Repo:      &repo.GormRepo{DB: db},
		Inventory: productclient.NewClient(cfg.ProductURL),
		Events:    publisher,
	}

	e := httpserver.New(logger, &httpserver.Deps{
		CartHandler: &httpserver.CartHTTP{Svc: svc},
		Ready:       func(ctx context.Context) error { return pkgdb.Ping(ctx, db) },
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("cart_listening", "addr", srv.Addr, "product_url", cfg.ProductURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	if err := publisher.Close(); err != nil {
		logger.Warn("publisher_close_failed", "error", err)
	}
	pkgdb.Close(db)

	logger.Info("cart_stopped")
}
