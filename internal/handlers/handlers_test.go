package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/asyncrace/asyncrace/internal/config"
	"github.com/asyncrace/asyncrace/internal/handlers"
	"github.com/asyncrace/asyncrace/internal/logger"
	"github.com/asyncrace/asyncrace/internal/repository"
	"github.com/asyncrace/asyncrace/internal/services"
	"github.com/asyncrace/asyncrace/internal/testutil"
	"github.com/asyncrace/asyncrace/pkg/chatfront"
)

const (
	creatorUserID    = int64(42)
	creatorRoleID    = int64(500)
	creatorChannelID = int64(600)
)

type testSetup struct {
	repo   *repository.Repository
	router chi.Router
	chat   *chatfront.MockClient
	cfg    config.Config
}

func testConfig() config.Config {
	return config.Config{
		RaceCreatorRoleID:      creatorRoleID,
		RaceCreatorChannelID:   creatorChannelID,
		ShowSecondaryTimeField: true,
	}
}

func newTestSetup(t *testing.T) *testSetup {
	t.Helper()
	return newTestSetupWithConfig(t, testConfig())
}

func newTestSetupWithConfig(t *testing.T, cfg config.Config) *testSetup {
	t.Helper()

	repo := testutil.NewTestRepository(t)
	log := logger.New()
	permission := services.NewPermissionService(log, repo, cfg)
	roster := services.NewRosterService(log, repo, cfg)
	race := services.NewRaceService(log, repo, roster, cfg)
	submission := services.NewSubmissionService(log, repo, permission, cfg)
	category := services.NewCategoryService(log, repo)

	chat := chatfront.NewMockClient()
	h := handlers.New(race, roster, submission, category, permission, nil, chat, handlers.NoopHTTPLogger{}, cfg)
	return &testSetup{repo: repo, router: h.Router(), chat: chat, cfg: cfg}
}

// newRequest builds a request with an optional JSON body
func newRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	if body == nil {
		return httptest.NewRequest(method, path, nil)
	}
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// asUser stamps caller identity headers on a request
func asUser(req *http.Request, userID int64, username string) *http.Request {
	req.Header.Set("X-User-ID", strconv.FormatInt(userID, 10))
	req.Header.Set("X-Username", username)
	return req
}

// asCreator stamps race creator identity headers on a request
func asCreator(req *http.Request) *http.Request {
	asUser(req, creatorUserID, "creator")
	req.Header.Set("X-Role-IDs", strconv.FormatInt(creatorRoleID, 10))
	req.Header.Set("X-Channel-ID", strconv.FormatInt(creatorChannelID, 10))
	return req
}

func (s *testSetup) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testSetup) createCategory(t *testing.T, name string) int {
	t.Helper()
	id, err := s.repo.CreateCategory(context.Background(), name, "")
	if err != nil {
		t.Fatalf("failed to create category: %v", err)
	}
	return int(id)
}

func (s *testSetup) createRace(t *testing.T, categoryID int) int {
	t.Helper()
	id, err := s.repo.CreateRace(context.Background(), "seed-1", "beat the game", "", categoryID)
	if err != nil {
		t.Fatalf("failed to create race: %v", err)
	}
	return int(id)
}

func (s *testSetup) startRace(t *testing.T, raceID int) {
	t.Helper()
	if err := s.repo.SetRaceActive(context.Background(), raceID, true, "2026-08-31"); err != nil {
		t.Fatalf("failed to start race: %v", err)
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(target); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func TestRouterConfigured(t *testing.T) {
	setup := newTestSetup(t)
	if setup.router == nil {
		t.Fatal("expected router to be created")
	}
}

func TestGetCategories(t *testing.T) {
	setup := newTestSetup(t)
	setup.createCategory(t, "Weekly")
	setup.createCategory(t, "Tournament")

	rec := setup.serve(newRequest(t, http.MethodGet, "/api/categories", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var categories []map[string]interface{}
	decodeBody(t, rec, &categories)
	if len(categories) != 2 {
		t.Errorf("expected 2 categories, got %d", len(categories))
	}
}

func TestGetCategory_NotFound(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.serve(newRequest(t, http.MethodGet, "/api/categories/99", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestCreateCategory_RequiresCreator(t *testing.T) {
	setup := newTestSetup(t)

	body := map[string]string{"name": "Weekly"}
	rec := setup.serve(newRequest(t, http.MethodPost, "/api/categories", body))
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
}

func TestCreateCategory_AsCreator(t *testing.T) {
	setup := newTestSetup(t)

	body := map[string]string{"name": "Weekly", "description": "the weekly race"}
	rec := setup.serve(asCreator(newRequest(t, http.MethodPost, "/api/categories", body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var category map[string]interface{}
	decodeBody(t, rec, &category)
	if category["name"] != "Weekly" {
		t.Errorf("expected name Weekly, got %v", category["name"])
	}
}

func TestCreateCategory_MissingName(t *testing.T) {
	setup := newTestSetup(t)

	body := map[string]string{"description": "no name"}
	rec := setup.serve(asCreator(newRequest(t, http.MethodPost, "/api/categories", body)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestCreatorRoleWithoutChannel_Denied(t *testing.T) {
	setup := newTestSetup(t)

	// Role but no channel header fails the channel half of the check
	req := newRequest(t, http.MethodPost, "/api/categories", map[string]string{"name": "X"})
	asUser(req, creatorUserID, "creator")
	req.Header.Set("X-Role-IDs", strconv.FormatInt(creatorRoleID, 10))
	rec := setup.serve(req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
}

// errorRecorder captures handler error reports for assertions
type errorRecorder struct {
	mu     sync.Mutex
	errors []string
}

func (l *errorRecorder) IsHTTPLoggingEnabled() bool { return false }

func (l *errorRecorder) Error(msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

func TestInternalErrorReportedToLogger(t *testing.T) {
	cfg := testConfig()
	repo := testutil.NewTestRepository(t)
	log := logger.New()
	permission := services.NewPermissionService(log, repo, cfg)
	roster := services.NewRosterService(log, repo, cfg)
	race := services.NewRaceService(log, repo, roster, cfg)
	submission := services.NewSubmissionService(log, repo, permission, cfg)
	category := services.NewCategoryService(log, repo)

	recLog := &errorRecorder{}
	h := handlers.New(race, roster, submission, category, permission, nil, chatfront.NewMockClient(), recLog, cfg)
	router := h.Router()

	// A closed database turns every query into an internal failure
	repo.Close()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, newRequest(t, http.MethodGet, "/api/categories", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d: %s", http.StatusInternalServerError, rec.Code, rec.Body.String())
	}

	recLog.mu.Lock()
	defer recLog.mu.Unlock()
	if len(recLog.errors) == 0 {
		t.Error("expected the failure to reach the handler logger")
	}
}
