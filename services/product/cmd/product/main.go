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

	"gorm.io/gorm"

	pkgconfig "github.com/Skotchmaster/grocery_shop/pkg/config"
	pkgdb "github.com/Skotchmaster/grocery_shop/pkg/db"
	"github.com/Skotchmaster/grocery_shop/pkg/events"
	"github.com/Skotchmaster/grocery_shop/pkg/logging"
	middleware "github.com/Skotchmaster/grocery_shop/pkg/middleware/auth"
	"github.com/Skotchmaster/grocery_shop/pkg/search"

	productcfg "github.com/Skotchmaster/grocery_shop/services/product/internal/config"
	"github.com/Skotchmaster/grocery_shop/services/product/internal/httpserver"
	"github.com/Skotchmaster/grocery_shop/services/product/internal/models"
	"github.com/Skotchmaster/grocery_shop/services/product/internal/repo"
	"github.com/Skotchmaster/grocery_shop/services/product/internal/service"
)

func main() {
	pkgconfig.LoadEnvFile("services/product/.env")

	cfg := productcfg.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL, cfg.SQLitePath)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	publisher := events.New(cfg.KafkaBrokers)

	svc := &service.ProductService{
		Repo:   &repo.GormRepo{DB: db},
		Events: publisher,
	}
	if cfg.ESURL != "" {
		es, err := search.NewElastic(search.Config{
			URL:      cfg.ESURL,
			User:     cfg.ESUser,
			Password: cfg.ESPassword,
			Index:    cfg.ESIndex,
		})
		if err != nil {
			logger.Warn("elasticsearch_unavailable", "reason", "search falls back to db", "error", err)
		} else {
			svc.Index = es
		}
	}

	e := httpserver.New(logger, &httpserver.Deps{
		ProductHandler: &httpserver.ProductHTTP{Svc: svc},
		AdminGuard:     middleware.NewAdminGuard(cfg.AdminJWTSecret),
		Ready:          func(ctx context.Context) error { return pkgdb.Ping(ctx, db) },
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("product_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdown(srv, publisher, db)
	logger.Info("product_stopped")
}

func shutdown(srv *http.Server, publisher events.Publisher, db *gorm.DB) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if err := publisher.Close(); err != nil {
		slog.Warn("publisher_close_failed", "error", err)
	}
	pkgdb.Close(db)
}
