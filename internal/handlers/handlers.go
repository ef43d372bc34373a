package handlers

import (
	"github.com/asyncrace/asyncrace/internal/config"
	"github.com/asyncrace/asyncrace/internal/services"
	"github.com/asyncrace/asyncrace/internal/websocket"
	"github.com/asyncrace/asyncrace/pkg/chatfront"
)

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Race       services.RaceServicer
	Roster     services.RosterServicer
	Submission services.SubmissionServicer
	Category   services.CategoryServicer
	Permission services.PermissionServicer
	Hub        *websocket.Hub
	Chat       chatfront.Client
	Log        HTTPLogger
	cfg        config.Config
}

// HTTPLogger is an interface for loggers that support HTTP logging
// control. Error reports handler failures that the client only sees as
// a generic 500.
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
	Error(msg string, args ...any)
}

// New creates a new Handlers instance with all dependencies
func New(
	race services.RaceServicer,
	roster services.RosterServicer,
	submission services.SubmissionServicer,
	category services.CategoryServicer,
	permission services.PermissionServicer,
	hub *websocket.Hub,
	chat chatfront.Client,
	log HTTPLogger,
	cfg config.Config,
) *Handlers {
	return &Handlers{
		Race:       race,
		Roster:     roster,
		Submission: submission,
		Category:   category,
		Permission: permission,
		Hub:        hub,
		Chat:       chat,
		Log:        log,
		cfg:        cfg,
	}
}

// NoopHTTPLogger is a test logger that discards errors and never
// enables HTTP logging
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) IsHTTPLoggingEnabled() bool { return false }

func (NoopHTTPLogger) Error(msg string, args ...any) {}
