package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/asyncrace/asyncrace/internal/services"
	"github.com/asyncrace/asyncrace/pkg/chatfront"
)

// handleSubmitTime records a racer's result for a race
func (h *Handlers) handleSubmitTime(w http.ResponseWriter, r *http.Request) {
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
	var req SubmissionCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	sub, err := h.Submission.SubmitTime(r.Context(), services.SubmitRequest{
		RaceID:         id,
		UserID:         actor.UserID,
		Username:       actor.Username,
		FinishTimeIGT:  req.FinishTimeIGT,
		FinishTimeRTA:  req.FinishTimeRTA,
		CollectionRate: req.CollectionRate,
		NextMode:       req.NextMode,
		Comment:        req.Comment,
		VodLink:        req.VodLink,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.broadcastAfterSubmit(r, id, actor.UserID)
	respondCreated(w, sub)
}

// handleForfeit records a DNF for a racer
func (h *Handlers) handleForfeit(w http.ResponseWriter, r *http.Request) {
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
	var req ForfeitRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			h.respondError(w, err)
			return
		}
	}

	sub, err := h.Submission.Forfeit(r.Context(), id, actor.UserID, actor.Username, req.Comment)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.broadcastAfterSubmit(r, id, actor.UserID)
	respondCreated(w, sub)
}

// broadcastAfterSubmit runs submission side effects. Weekly races get
// a refreshed leaderboard and the submitter gets the race-done role;
// every race gets a completion notice once all roster members have
// submitted. Broadcast and gateway failures never fail the submit.
func (h *Handlers) broadcastAfterSubmit(r *http.Request, raceID int, userID int64) {
	race, err := h.Race.GetRace(r.Context(), raceID)
	if err != nil {
		return
	}
	if h.cfg.IsWeeklyCategory(race.CategoryID) {
		if h.Hub != nil {
			if rows, err := h.Submission.Leaderboard(r.Context(), raceID); err == nil {
				h.Hub.BroadcastLeaderboardUpdate(raceID, rows)
			}
		}
		h.postWeeklyLeaderboard(r, raceID, race.Description)
		if h.Chat != nil && h.cfg.WeeklyRaceDoneRoleID != 0 && userID != 0 {
			h.Chat.AssignRole(r.Context(), userID, h.cfg.WeeklyRaceDoneRoleID)
		}
	}
	if done, err := h.Roster.IsRaceComplete(r.Context(), race); err == nil && done {
		if h.Hub != nil {
			h.Hub.BroadcastRaceComplete(raceID)
		}
		if h.cfg.PingRaceCreatorOnEnd {
			h.announce(r, fmt.Sprintf("All racers have submitted for race %d.", raceID))
		}
	}
}

// postWeeklyLeaderboard replaces the weekly leaderboard channel's
// contents with the current standings
func (h *Handlers) postWeeklyLeaderboard(r *http.Request, raceID int, description string) {
	if h.Chat == nil || h.cfg.WeeklyLeaderboardChannel == 0 {
		return
	}
	rows, err := h.Submission.Leaderboard(r.Context(), raceID)
	if err != nil {
		return
	}
	h.Chat.PurgeChannel(r.Context(), h.cfg.WeeklyLeaderboardChannel)
	h.Chat.PostMessage(r.Context(), chatfront.Message{
		ChannelID: h.cfg.WeeklyLeaderboardChannel,
		Content:   weeklyLeaderboardText(raceID, description, rows),
	})
}

// weeklyLeaderboardText renders the standings as a chat message
func weeklyLeaderboardText(raceID int, description string, rows []services.LeaderboardRow) string {
	if len(rows) == 0 {
		return fmt.Sprintf("No results yet for race %d (%s)", raceID, description)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Results for race %d (%s)", raceID, description)
	for _, row := range rows {
		fmt.Fprintf(&b, "\n%s %s %s", row.Place, row.Username, row.PrimaryTime)
		if row.SecondaryTime != "" {
			fmt.Fprintf(&b, " (%s)", row.SecondaryTime)
		}
		fmt.Fprintf(&b, " CR %d", row.CollectionRate)
	}
	return b.String()
}

// handleLeaderboard returns the ranked leaderboard for a race. Only the
// race creator or racers with a submission may view it while the race
// is live.
func (h *Handlers) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	actor := actorFromRequest(r)
	allowed, err := h.Permission.CanViewLeaderboard(r.Context(), id, actor.UserID, actor.RoleIDs)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if !allowed {
		h.respondError(w, Forbidden())
		return
	}
	rows, err := h.Submission.Leaderboard(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, LeaderboardResponse{RaceID: id, Rows: rows})
}

// handleUserResults returns a racer's submission history, newest first
func (h *Handlers) handleUserResults(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIntParam(r, "userID")
	if err != nil {
		h.respondError(w, err)
		return
	}
	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", 10)

	results, err := h.Submission.UserResults(r.Context(), int64(userID), page, perPage)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, UserResultsResponse{UserID: int64(userID), Results: results, Page: page})
}

// handleEditSubmission replaces a prior submission's fields. Racers may
// edit their own public-race submissions; race creators may edit any.
func (h *Handlers) handleEditSubmission(w http.ResponseWriter, r *http.Request) {
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
	var req SubmissionCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	existing, err := h.Submission.GetSubmission(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	allowed, err := h.Permission.CanEditSubmission(r.Context(), existing, actor.UserID, actor.RoleIDs)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if !allowed {
		h.respondError(w, Forbidden())
		return
	}

	sub, err := h.Submission.EditSubmission(r.Context(), id, services.SubmitRequest{
		FinishTimeIGT:  req.FinishTimeIGT,
		FinishTimeRTA:  req.FinishTimeRTA,
		CollectionRate: req.CollectionRate,
		NextMode:       req.NextMode,
		Comment:        req.Comment,
		VodLink:        req.VodLink,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.broadcastAfterSubmit(r, sub.RaceID, sub.UserID)
	respondOK(w, sub)
}

// handleNextModeSuggestions returns next-mode suggestions gathered from
// the two most recent weekly races
func (h *Handlers) handleNextModeSuggestions(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.Submission.NextModeSuggestions(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, SuggestionsResponse{Suggestions: suggestions})
}
