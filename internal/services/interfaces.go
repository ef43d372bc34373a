package services

import (
	"context"

	"github.com/asyncrace/asyncrace/internal/models"
)

// PermissionServicer defines the interface for permission checks
type PermissionServicer interface {
	IsRaceCreator(roleIDs []int64) bool
	IsRaceCreatorCommand(roleIDs []int64, channelID int64) bool
	HasSubmitPermission(ctx context.Context, raceID int, userID int64) (bool, error)
	CanViewLeaderboard(ctx context.Context, raceID int, userID int64, roleIDs []int64) (bool, error)
	CanEditSubmission(ctx context.Context, sub *models.Submission, userID int64, roleIDs []int64) (bool, error)
	EnsureRacer(ctx context.Context, userID int64, username string) error
}

// RaceServicer defines the interface for race lifecycle operations
type RaceServicer interface {
	CreateRace(ctx context.Context, fields RaceFields) (*models.Race, error)
	EditRace(ctx context.Context, raceID int, fields RaceFields) (*models.Race, error)
	StartRace(ctx context.Context, raceID int) (*StartResult, error)
	PauseRace(ctx context.Context, raceID int) (*models.Race, error)
	EndRace(ctx context.Context, raceID int, postResults bool) (*EndResult, error)
	RemoveRace(ctx context.Context, raceID int) error
	GetRace(ctx context.Context, raceID int) (*models.Race, error)
	ListRaces(ctx context.Context, categoryID int, activeOnly bool, page, perPage int) ([]models.Race, error)
	LatestWeeklyRaceID(ctx context.Context) (int, error)
}

// RosterServicer defines the interface for roster and completion operations
type RosterServicer interface {
	AssignRacer(ctx context.Context, raceID int, userID int64, username string) (*models.RosterEntry, error)
	Roster(ctx context.Context, raceID int) ([]models.RosterEntry, error)
	IsPublicRace(ctx context.Context, raceID int) (bool, error)
	IsRaceComplete(ctx context.Context, race *models.Race) (bool, error)
	ForceCompleteMissingSubmissions(ctx context.Context, raceID int) (int, error)
	MarkInfoViewed(ctx context.Context, raceID int, userID int64) error
	VerificationReport(ctx context.Context, raceID int) ([]VerificationRow, error)
}

// SubmissionServicer defines the interface for submission and leaderboard operations
type SubmissionServicer interface {
	SubmitTime(ctx context.Context, req SubmitRequest) (*models.Submission, error)
	Forfeit(ctx context.Context, raceID int, userID int64, username, comment string) (*models.Submission, error)
	RankSubmissions(ctx context.Context, raceID int) ([]models.Submission, error)
	PlacementOf(ctx context.Context, raceID int, userID int64) (string, error)
	Leaderboard(ctx context.Context, raceID int) ([]LeaderboardRow, error)
	UserResults(ctx context.Context, userID int64, page, perPage int) ([]UserResult, error)
	GetSubmission(ctx context.Context, submissionID int) (*models.Submission, error)
	EditSubmission(ctx context.Context, submissionID int, req SubmitRequest) (*models.Submission, error)
	NextModeSuggestions(ctx context.Context) ([]ModeSuggestion, error)
}

// CategoryServicer defines the interface for category operations
type CategoryServicer interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id int) (*models.Category, error)
	CreateCategory(ctx context.Context, name, description string) (*models.Category, error)
}

// Ensure concrete types implement interfaces
var (
	_ PermissionServicer = (*PermissionService)(nil)
	_ RaceServicer       = (*RaceService)(nil)
	_ RosterServicer     = (*RosterService)(nil)
	_ SubmissionServicer = (*SubmissionService)(nil)
	_ CategoryServicer   = (*CategoryService)(nil)
)
