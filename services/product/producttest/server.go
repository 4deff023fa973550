// Package producttest runs a real product service for tests of its callers.
package producttest

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	pkgdb "github.com/Skotchmaster/grocery_shop/pkg/db"
	"github.com/Skotchmaster/grocery_shop/services/product/internal/httpserver"
	"github.com/Skotchmaster/grocery_shop/services/product/internal/models"
	"github.com/Skotchmaster/grocery_shop/services/product/internal/repo"
	"github.com/Skotchmaster/grocery_shop/services/product/internal/service"
)

// NewServer starts the product HTTP stack on an in-memory database. The
// server and database are closed when the test ends.
func NewServer(t testing.TB) *httptest.Server {
	t.Helper()

	db, err := pkgdb.Open(context.Background(), "", ":memory:")
	if err != nil {
		t.Fatalf("open product db: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}); err != nil {
		t.Fatalf("migrate product db: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := &service.ProductService{Repo: &repo.GormRepo{DB: db}}
	e := httpserver.New(logger, &httpserver.Deps{
		ProductHandler: &httpserver.ProductHTTP{Svc: svc},
	})

	srv := httptest.NewServer(e)
	t.Cleanup(func() {
		srv.Close()
		pkgdb.Close(db)
	})
	return srv
}
