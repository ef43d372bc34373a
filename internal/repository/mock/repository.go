package mock

import (
	"context"

	"github.com/asyncrace/asyncrace/internal/models"
	"github.com/asyncrace/asyncrace/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
// This provides a flexible way to test error paths without complex database manipulation.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.UpsertSubmissionError = errors.New("database error")
//	svc := services.NewSubmissionService(log, mockRepo, cfg)
//	err := svc.SubmitTime(ctx, req)
//	// err will now contain the injected error
type Repository struct {
	repository.FullRepository

	// ===== Category Errors =====
	ListCategoriesError  error
	GetCategoryError     error
	CreateCategoryError  error
	CountCategoriesError error

	// ===== Race Errors =====
	GetRaceError            error
	ListRacesError          error
	CreateRaceError         error
	UpdateRaceError         error
	SetRaceActiveError      error
	DeleteRaceError         error
	LatestActiveRaceIDError error

	// ===== Racer Errors =====
	GetRacerError    error
	EnsureRacerError error

	// ===== Submission Errors =====
	GetSubmissionError         error
	GetSubmissionByIDError     error
	ListSubmissionsByRaceError error
	ListSubmissionsByUserError error
	UpsertSubmissionError      error
	CountSubmissionsError      error

	// ===== Roster Errors =====
	ListRosterError            error
	GetAssignmentError         error
	CreateAssignmentError      error
	SetAssignmentInfoTimeError error
	CountRosterError           error
}

// NewRepository creates a mock repository wrapping a real one.
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{FullRepository: real}
}

func (m *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	if m.ListCategoriesError != nil {
		return nil, m.ListCategoriesError
	}
	return m.FullRepository.ListCategories(ctx)
}

func (m *Repository) GetCategory(ctx context.Context, id int) (*models.Category, error) {
	if m.GetCategoryError != nil {
		return nil, m.GetCategoryError
	}
	return m.FullRepository.GetCategory(ctx, id)
}

func (m *Repository) CreateCategory(ctx context.Context, name, description string) (int64, error) {
	if m.CreateCategoryError != nil {
		return 0, m.CreateCategoryError
	}
	return m.FullRepository.CreateCategory(ctx, name, description)
}

func (m *Repository) CountCategories(ctx context.Context) (int, error) {
	if m.CountCategoriesError != nil {
		return 0, m.CountCategoriesError
	}
	return m.FullRepository.CountCategories(ctx)
}

func (m *Repository) GetRace(ctx context.Context, id int) (*models.Race, error) {
	if m.GetRaceError != nil {
		return nil, m.GetRaceError
	}
	return m.FullRepository.GetRace(ctx, id)
}

func (m *Repository) ListRaces(ctx context.Context, categoryID int, activeOnly bool, page, perPage int) ([]models.Race, error) {
	if m.ListRacesError != nil {
		return nil, m.ListRacesError
	}
	return m.FullRepository.ListRaces(ctx, categoryID, activeOnly, page, perPage)
}

func (m *Repository) CreateRace(ctx context.Context, seed, description, instructions string, categoryID int) (int64, error) {
	if m.CreateRaceError != nil {
		return 0, m.CreateRaceError
	}
	return m.FullRepository.CreateRace(ctx, seed, description, instructions, categoryID)
}

func (m *Repository) UpdateRace(ctx context.Context, id int, seed, description, instructions string) error {
	if m.UpdateRaceError != nil {
		return m.UpdateRaceError
	}
	return m.FullRepository.UpdateRace(ctx, id, seed, description, instructions)
}

func (m *Repository) SetRaceActive(ctx context.Context, id int, active bool, startDate string) error {
	if m.SetRaceActiveError != nil {
		return m.SetRaceActiveError
	}
	return m.FullRepository.SetRaceActive(ctx, id, active, startDate)
}

func (m *Repository) DeleteRace(ctx context.Context, id int) error {
	if m.DeleteRaceError != nil {
		return m.DeleteRaceError
	}
	return m.FullRepository.DeleteRace(ctx, id)
}

func (m *Repository) LatestActiveRaceID(ctx context.Context, categoryID int) (int, error) {
	if m.LatestActiveRaceIDError != nil {
		return 0, m.LatestActiveRaceIDError
	}
	return m.FullRepository.LatestActiveRaceID(ctx, categoryID)
}

func (m *Repository) GetRacer(ctx context.Context, userID int64) (*models.Racer, error) {
	if m.GetRacerError != nil {
		return nil, m.GetRacerError
	}
	return m.FullRepository.GetRacer(ctx, userID)
}

func (m *Repository) EnsureRacer(ctx context.Context, userID int64, username string) error {
	if m.EnsureRacerError != nil {
		return m.EnsureRacerError
	}
	return m.FullRepository.EnsureRacer(ctx, userID, username)
}

func (m *Repository) GetSubmission(ctx context.Context, raceID int, userID int64) (*models.Submission, error) {
	if m.GetSubmissionError != nil {
		return nil, m.GetSubmissionError
	}
	return m.FullRepository.GetSubmission(ctx, raceID, userID)
}

func (m *Repository) GetSubmissionByID(ctx context.Context, id int) (*models.Submission, error) {
	if m.GetSubmissionByIDError != nil {
		return nil, m.GetSubmissionByIDError
	}
	return m.FullRepository.GetSubmissionByID(ctx, id)
}

func (m *Repository) ListSubmissionsByRace(ctx context.Context, raceID int) ([]models.Submission, error) {
	if m.ListSubmissionsByRaceError != nil {
		return nil, m.ListSubmissionsByRaceError
	}
	return m.FullRepository.ListSubmissionsByRace(ctx, raceID)
}

func (m *Repository) ListSubmissionsByUser(ctx context.Context, userID int64, page, perPage int) ([]models.Submission, error) {
	if m.ListSubmissionsByUserError != nil {
		return nil, m.ListSubmissionsByUserError
	}
	return m.FullRepository.ListSubmissionsByUser(ctx, userID, page, perPage)
}

func (m *Repository) UpsertSubmission(ctx context.Context, sub models.Submission) error {
	if m.UpsertSubmissionError != nil {
		return m.UpsertSubmissionError
	}
	return m.FullRepository.UpsertSubmission(ctx, sub)
}

func (m *Repository) CountSubmissionsForRace(ctx context.Context, raceID int) (int, error) {
	if m.CountSubmissionsError != nil {
		return 0, m.CountSubmissionsError
	}
	return m.FullRepository.CountSubmissionsForRace(ctx, raceID)
}

func (m *Repository) ListRoster(ctx context.Context, raceID int) ([]models.RosterEntry, error) {
	if m.ListRosterError != nil {
		return nil, m.ListRosterError
	}
	return m.FullRepository.ListRoster(ctx, raceID)
}

func (m *Repository) GetAssignment(ctx context.Context, raceID int, userID int64) (*models.RosterEntry, error) {
	if m.GetAssignmentError != nil {
		return nil, m.GetAssignmentError
	}
	return m.FullRepository.GetAssignment(ctx, raceID, userID)
}

func (m *Repository) CreateAssignment(ctx context.Context, raceID int, userID int64) (int64, error) {
	if m.CreateAssignmentError != nil {
		return 0, m.CreateAssignmentError
	}
	return m.FullRepository.CreateAssignment(ctx, raceID, userID)
}

func (m *Repository) SetAssignmentInfoTime(ctx context.Context, id int, infoTime string) error {
	if m.SetAssignmentInfoTimeError != nil {
		return m.SetAssignmentInfoTimeError
	}
	return m.FullRepository.SetAssignmentInfoTime(ctx, id, infoTime)
}

func (m *Repository) CountRoster(ctx context.Context, raceID int) (int, error) {
	if m.CountRosterError != nil {
		return 0, m.CountRosterError
	}
	return m.FullRepository.CountRoster(ctx, raceID)
}
