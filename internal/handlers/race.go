package handlers

import (
	"fmt"
	"net/http"

	"github.com/skip2/go-qrcode"

	"github.com/asyncrace/asyncrace/internal/models"
	"github.com/asyncrace/asyncrace/internal/services"
	"github.com/asyncrace/asyncrace/pkg/chatfront"
)

// announce posts to the announcements channel. Failures never fail the
// request that triggered them.
func (h *Handlers) announce(r *http.Request, content string) {
	if h.Chat == nil || h.cfg.AnnouncementsChannelID == 0 {
		return
	}
	h.Chat.PostMessage(r.Context(), chatfront.Message{
		ChannelID: h.cfg.AnnouncementsChannelID,
		Content:   content,
	})
}

// handleListRaces lists races, optionally filtered by category and
// active state, newest first
func (h *Handlers) handleListRaces(w http.ResponseWriter, r *http.Request) {
	categoryID := queryInt(r, "category_id", 0)
	activeOnly := r.URL.Query().Get("active") == "true"
	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", 10)

	races, err := h.Race.ListRaces(r.Context(), categoryID, activeOnly, page, perPage)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, RaceListResponse{Races: races, Page: page})
}

// authorizeRaceView applies the race info visibility rules. Inactive
// races are hidden from everyone but race creators. Beyond that, a
// caller may see a race when it is public, when they hold a roster
// assignment, or when they are a creator acting in the creator channel.
func (h *Handlers) authorizeRaceView(r *http.Request, race *models.Race, actor Actor) error {
	if !race.Active && !h.Permission.IsRaceCreator(actor.RoleIDs) {
		return Conflict(fmt.Sprintf("Race %d is not yet active", race.ID))
	}
	allowed, err := h.Permission.HasSubmitPermission(r.Context(), race.ID, actor.UserID)
	if err != nil {
		return err
	}
	if allowed || h.Permission.IsRaceCreatorCommand(actor.RoleIDs, actor.ChannelID) {
		return nil
	}
	return Forbidden()
}

// handleGetRace returns a single race
func (h *Handlers) handleGetRace(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	race, err := h.Race.GetRace(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if err := h.authorizeRaceView(r, race, actorFromRequest(r)); err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, race)
}

// handleCreateRace creates a new, inactive race
func (h *Handlers) handleCreateRace(w http.ResponseWriter, r *http.Request) {
	var req RaceCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	race, err := h.Race.CreateRace(r.Context(), services.RaceFields{
		Seed:                   req.Seed,
		Description:            req.Description,
		AdditionalInstructions: req.AdditionalInstructions,
		CategoryID:             req.CategoryID,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondCreated(w, race)
}

// handleEditRace edits a race that has not started and has no submissions
func (h *Handlers) handleEditRace(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	var req RaceUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	race, err := h.Race.EditRace(r.Context(), id, services.RaceFields{
		Seed:                   req.Seed,
		Description:            req.Description,
		AdditionalInstructions: req.AdditionalInstructions,
		CategoryID:             req.CategoryID,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, race)
}

// handleStartRace activates a race and stamps its start date
func (h *Handlers) handleStartRace(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	result, err := h.Race.StartRace(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if result.IsWeekly {
		if h.Hub != nil {
			h.Hub.BroadcastRaceStarted(result.Race)
		}
		h.weeklyStartEffects(r, result.Race)
	}
	respondOK(w, result)
}

// weeklyStartEffects runs the chat-side turnover for a new weekly
// race: the submit channel is wiped and re-seeded with the race info,
// the leaderboard channel is reset, everyone loses the race-done role,
// and the announcement pings the weekly racer role. Gateway failures
// never fail the start.
func (h *Handlers) weeklyStartEffects(r *http.Request, race *models.Race) {
	if h.Chat == nil {
		return
	}
	ctx := r.Context()
	if h.cfg.WeeklySubmitChannelID != 0 {
		h.Chat.PurgeChannel(ctx, h.cfg.WeeklySubmitChannelID)
		h.Chat.PostMessage(ctx, chatfront.Message{
			ChannelID: h.cfg.WeeklySubmitChannelID,
			Content:   raceInfoText(race),
		})
	}
	h.postWeeklyLeaderboard(r, race.ID, race.Description)
	if h.cfg.WeeklyRaceDoneRoleID != 0 {
		h.Chat.ClearRole(ctx, h.cfg.WeeklyRaceDoneRoleID)
	}
	if h.cfg.AnnouncementsChannelID != 0 {
		h.Chat.PostMessage(ctx, chatfront.Message{
			ChannelID:  h.cfg.AnnouncementsChannelID,
			Content:    fmt.Sprintf("The weekly race is live! Mode: %s", race.Description),
			PingRoleID: h.cfg.WeeklyRacerRoleID,
		})
	}
}

// raceInfoText renders a race's info as a chat message
func raceInfoText(race *models.Race) string {
	text := fmt.Sprintf("Race %d: %s\nSeed: %s", race.ID, race.Description, race.Seed)
	if race.AdditionalInstructions != "" {
		text += "\n" + race.AdditionalInstructions
	}
	return text
}

// handlePauseRace deactivates a race without ending it
func (h *Handlers) handlePauseRace(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	race, err := h.Race.PauseRace(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, race)
}

// handleEndRace ends a race, optionally force-completing missing
// submissions so results can be posted
func (h *Handlers) handleEndRace(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	var req RaceEndRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			h.respondError(w, err)
			return
		}
	}
	result, err := h.Race.EndRace(r.Context(), id, req.PostResults)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if result.IsWeekly {
		if h.Hub != nil {
			h.Hub.BroadcastRaceComplete(id)
		}
		h.announce(r, fmt.Sprintf("The weekly race has ended. %s", result.Race.Description))
	}
	respondOK(w, result)
}

// handleRemoveRace deletes a race with no submissions
func (h *Handlers) handleRemoveRace(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	if err := h.Race.RemoveRace(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	respondDeleted(w)
}

// handleAssignRacer assigns a racer to a race's roster
func (h *Handlers) handleAssignRacer(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	var req RosterAssignRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	entry, err := h.Roster.AssignRacer(r.Context(), id, req.UserID, req.Username)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondCreated(w, entry)
}

// handleGetRoster lists a race's roster
func (h *Handlers) handleGetRoster(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	entries, err := h.Roster.Roster(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, RosterResponse{RaceID: id, Entries: entries})
}

// handleVerificationReport returns the audit trail for an assigned race
func (h *Handlers) handleVerificationReport(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	rows, err := h.Roster.VerificationReport(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, VerificationResponse{RaceID: id, Rows: rows})
}

// handleMarkInfoViewed stamps the time a racer first viewed race info.
// The stamp is write-once; repeat calls are no-ops.
func (h *Handlers) handleMarkInfoViewed(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	actor := actorFromRequest(r)
	if err := requireActor(actor); err != nil {
		h.respondError(w, err)
		return
	}
	race, err := h.Race.GetRace(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if err := h.authorizeRaceView(r, race, actor); err != nil {
		h.respondError(w, err)
		return
	}
	if err := h.Roster.MarkInfoViewed(r.Context(), id, actor.UserID); err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, race)
}

// handleSeedQR serves a race's seed as a QR code PNG
func (h *Handlers) handleSeedQR(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	race, err := h.Race.GetRace(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if err := h.authorizeRaceView(r, race, actorFromRequest(r)); err != nil {
		h.respondError(w, err)
		return
	}
	png, err := qrcode.Encode(race.Seed, qrcode.Medium, 256)
	if err != nil {
		h.respondError(w, h.internalError(err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}
