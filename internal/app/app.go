package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/asyncrace/asyncrace/internal/config"
	"github.com/asyncrace/asyncrace/internal/handlers"
	"github.com/asyncrace/asyncrace/internal/logger"
	"github.com/asyncrace/asyncrace/internal/repository"
	"github.com/asyncrace/asyncrace/internal/services"
	"github.com/asyncrace/asyncrace/internal/websocket"
	"github.com/asyncrace/asyncrace/pkg/chatfront"
)

// App holds all application dependencies
type App struct {
	log      logger.Logger
	cfg      config.Config
	handlers *handlers.Handlers
	repo     *repository.Repository
}

// New creates and initializes a new application instance
func New(log logger.Logger, cfg config.Config) (*App, error) {
	repo, err := repository.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	// Initialize services
	permissionService := services.NewPermissionService(log, repo, cfg)
	rosterService := services.NewRosterService(log, repo, cfg)
	raceService := services.NewRaceService(log, repo, rosterService, cfg)
	submissionService := services.NewSubmissionService(log, repo, permissionService, cfg)
	categoryService := services.NewCategoryService(log, repo)

	// Initialize WebSocket hub with DI
	hub := websocket.New(log, raceService)
	hub.Start()

	// Chat gateway client for announcements. A mock stands in when no
	// gateway is configured.
	var chat chatfront.Client
	if cfg.ChatBaseURL != "" {
		gw := chatfront.NewHTTPClient(cfg.ChatBaseURL, log)
		gw.SetToken(cfg.ChatToken)
		chat = gw
	} else {
		chat = chatfront.NewMockClient()
	}

	h := handlers.New(
		raceService,
		rosterService,
		submissionService,
		categoryService,
		permissionService,
		hub,
		chat,
		log,
		cfg,
	)

	return &App{
		log:      log,
		cfg:      cfg,
		handlers: h,
		repo:     repo,
	}, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Close releases app resources
func (a *App) Close() error {
	return a.repo.Close()
}

// Run starts the HTTP server
func (a *App) Run(addr string) error {
	a.log.Info("Server starting", "addr", addr)
	return http.ListenAndServe(addr, a.Router())
}
