package app_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/asyncrace/asyncrace/internal/app"
	"github.com/asyncrace/asyncrace/internal/config"
	"github.com/asyncrace/asyncrace/internal/logger"
)

func TestNew(t *testing.T) {
	cfg := config.Config{DBPath: ":memory:"}
	a, err := app.New(logger.New(), cfg)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	defer a.Close()

	if a.Router() == nil {
		t.Fatal("expected router to be configured")
	}
}

func TestNew_BadDBPath(t *testing.T) {
	cfg := config.Config{DBPath: "/nonexistent-dir/asyncrace.db"}
	if _, err := app.New(logger.New(), cfg); err == nil {
		t.Error("expected error for unwritable database path")
	}
}

func TestRouterServesAPI(t *testing.T) {
	cfg := config.Config{DBPath: ":memory:"}
	a, err := app.New(logger.New(), cfg)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	defer a.Close()

	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
}
