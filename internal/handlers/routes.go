package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// requireCommandChannel rejects racer commands issued outside the
// configured bot command channels
func (h *Handlers) requireCommandChannel(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := actorFromRequest(r)
		if !h.cfg.IsCommandChannel(actor.ChannelID) {
			h.respondError(w, Forbidden())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireRaceCreator rejects callers without the race creator role, or
// those invoking management endpoints outside the creator channel. The
// denial is always the generic message.
func (h *Handlers) requireRaceCreator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := actorFromRequest(r)
		if !h.Permission.IsRaceCreatorCommand(actor.RoleIDs, actor.ChannelID) {
			h.respondError(w, Forbidden())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(60 * time.Second))

	// WebSocket
	if h.Hub != nil {
		r.Get("/ws", h.Hub.ServeWs)
	}

	// Races (public reads)
	r.Get("/api/races", h.handleListRaces)
	r.Get("/api/races/{id}", h.handleGetRace)
	r.Get("/api/races/{id}/seed-qr", h.handleSeedQR)
	r.Get("/api/races/{id}/leaderboard", h.handleLeaderboard)
	r.Get("/api/users/{userID}/results", h.handleUserResults)
	r.Get("/api/next-mode-suggestions", h.handleNextModeSuggestions)

	// Racer commands, restricted to the allowed command channels
	r.Group(func(r chi.Router) {
		r.Use(h.requireCommandChannel)

		r.Post("/api/races/{id}/info-viewed", h.handleMarkInfoViewed)
		r.Post("/api/races/{id}/submissions", h.handleSubmitTime)
		r.Post("/api/races/{id}/forfeit", h.handleForfeit)
		r.Put("/api/submissions/{id}", h.handleEditSubmission)
	})

	// Categories (public reads)
	r.Get("/api/categories", h.handleGetCategories)
	r.Get("/api/categories/{id}", h.handleGetCategory)

	// Management (race creator only)
	r.Group(func(r chi.Router) {
		r.Use(h.requireRaceCreator)

		r.Post("/api/races", h.handleCreateRace)
		r.Put("/api/races/{id}", h.handleEditRace)
		r.Post("/api/races/{id}/start", h.handleStartRace)
		r.Post("/api/races/{id}/pause", h.handlePauseRace)
		r.Post("/api/races/{id}/end", h.handleEndRace)
		r.Delete("/api/races/{id}", h.handleRemoveRace)

		r.Post("/api/races/{id}/roster", h.handleAssignRacer)
		r.Get("/api/races/{id}/roster", h.handleGetRoster)
		r.Get("/api/races/{id}/verification", h.handleVerificationReport)

		r.Post("/api/categories", h.handleCreateCategory)
	})

	return r
}
