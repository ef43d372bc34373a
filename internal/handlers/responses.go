package handlers

import (
	"github.com/asyncrace/asyncrace/internal/models"
	"github.com/asyncrace/asyncrace/internal/services"
)

// RaceListResponse is the response for the race listing endpoint
type RaceListResponse struct {
	Races []models.Race `json:"races"`
	Page  int           `json:"page"`
}

// RosterResponse is the response for the roster listing endpoint
type RosterResponse struct {
	RaceID  int                  `json:"race_id"`
	Entries []models.RosterEntry `json:"entries"`
}

// LeaderboardResponse is the response for the leaderboard endpoint
type LeaderboardResponse struct {
	RaceID int                       `json:"race_id"`
	Rows   []services.LeaderboardRow `json:"rows"`
}

// UserResultsResponse is the response for a racer's submission history
type UserResultsResponse struct {
	UserID  int64                 `json:"user_id"`
	Results []services.UserResult `json:"results"`
	Page    int                   `json:"page"`
}

// VerificationResponse is the response for the verification report
type VerificationResponse struct {
	RaceID int                        `json:"race_id"`
	Rows   []services.VerificationRow `json:"rows"`
}

// SuggestionsResponse is the response for next mode suggestions
type SuggestionsResponse struct {
	Suggestions []services.ModeSuggestion `json:"suggestions"`
}
