package repository

import (
	"context"

	"github.com/asyncrace/asyncrace/internal/models"
)

// CategoryRepository defines race category data operations
type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id int) (*models.Category, error)
	CreateCategory(ctx context.Context, name, description string) (int64, error)
	CountCategories(ctx context.Context) (int, error)
}

// RaceRepository defines race data operations
type RaceRepository interface {
	GetRace(ctx context.Context, id int) (*models.Race, error)
	ListRaces(ctx context.Context, categoryID int, activeOnly bool, page, perPage int) ([]models.Race, error)
	CreateRace(ctx context.Context, seed, description, instructions string, categoryID int) (int64, error)
	UpdateRace(ctx context.Context, id int, seed, description, instructions string) error
	SetRaceActive(ctx context.Context, id int, active bool, startDate string) error
	DeleteRace(ctx context.Context, id int) error
	LatestActiveRaceID(ctx context.Context, categoryID int) (int, error)
}

// RacerRepository defines racer data operations
type RacerRepository interface {
	GetRacer(ctx context.Context, userID int64) (*models.Racer, error)
	EnsureRacer(ctx context.Context, userID int64, username string) error
}

// SubmissionRepository defines submission data operations
type SubmissionRepository interface {
	GetSubmission(ctx context.Context, raceID int, userID int64) (*models.Submission, error)
	GetSubmissionByID(ctx context.Context, id int) (*models.Submission, error)
	ListSubmissionsByRace(ctx context.Context, raceID int) ([]models.Submission, error)
	ListSubmissionsByUser(ctx context.Context, userID int64, page, perPage int) ([]models.Submission, error)
	UpsertSubmission(ctx context.Context, sub models.Submission) error
	CountSubmissionsForRace(ctx context.Context, raceID int) (int, error)
}

// RosterRepository defines roster assignment data operations
type RosterRepository interface {
	ListRoster(ctx context.Context, raceID int) ([]models.RosterEntry, error)
	GetAssignment(ctx context.Context, raceID int, userID int64) (*models.RosterEntry, error)
	CreateAssignment(ctx context.Context, raceID int, userID int64) (int64, error)
	SetAssignmentInfoTime(ctx context.Context, id int, infoTime string) error
	CountRoster(ctx context.Context, raceID int) (int, error)
}

// FullRepository combines all repository interfaces
// Use this when a service needs access to multiple domains
type FullRepository interface {
	CategoryRepository
	RaceRepository
	RacerRepository
	SubmissionRepository
	RosterRepository
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
