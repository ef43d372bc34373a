package services

import (
	"context"
	"strings"
	"time"

	"github.com/asyncrace/asyncrace/internal/config"
	"github.com/asyncrace/asyncrace/internal/errors"
	"github.com/asyncrace/asyncrace/internal/logger"
	"github.com/asyncrace/asyncrace/internal/models"
	"github.com/asyncrace/asyncrace/internal/repository"
)

// Timestamp layouts used for persisted dates. Start dates carry the day
// only; submit and info-view stamps carry minute precision.
const (
	startDateLayout = "2006-01-02"
	stampLayout     = "2006-01-02 15:04"
)

// RaceServiceRepository defines the repository methods needed by RaceService
type RaceServiceRepository interface {
	repository.RaceRepository
	GetCategory(ctx context.Context, id int) (*models.Category, error)
	CountSubmissionsForRace(ctx context.Context, raceID int) (int, error)
}

// RaceService owns race lifecycle state transitions
type RaceService struct {
	log    logger.Logger
	repo   RaceServiceRepository
	roster RosterServicer
	cfg    config.Config
}

// NewRaceService creates a new RaceService
func NewRaceService(log logger.Logger, repo RaceServiceRepository, roster RosterServicer, cfg config.Config) *RaceService {
	return &RaceService{
		log:    log,
		repo:   repo,
		roster: roster,
		cfg:    cfg,
	}
}

// RaceFields are the editable fields of a race. Category membership is
// fixed at creation.
type RaceFields struct {
	Seed                   string `json:"seed"`
	Description            string `json:"description"`
	AdditionalInstructions string `json:"additional_instructions"`
	CategoryID             int    `json:"category_id"`
}

// StartResult reports a race start along with whether the race belongs
// to the weekly category, so the caller knows to run the weekly side
// effects (leaderboard refresh, announcement, role cleanup).
type StartResult struct {
	Race     *models.Race `json:"race"`
	IsWeekly bool         `json:"is_weekly"`
}

// EndResult reports a race end. ForcedDNFs counts the placeholder
// submissions created for roster members who never submitted.
type EndResult struct {
	Race       *models.Race `json:"race"`
	IsWeekly   bool         `json:"is_weekly"`
	ForcedDNFs int          `json:"forced_dnfs"`
}

// CreateRace creates a new, inactive race
func (s *RaceService) CreateRace(ctx context.Context, fields RaceFields) (*models.Race, error) {
	if strings.TrimSpace(fields.Seed) == "" {
		return nil, errors.Validation("seed is required")
	}
	if strings.TrimSpace(fields.Description) == "" {
		return nil, errors.Validation("description is required")
	}
	if _, err := s.repo.GetCategory(ctx, fields.CategoryID); err != nil {
		if err == repository.ErrNotFound {
			return nil, errors.NotFoundf("category %d not found", fields.CategoryID)
		}
		return nil, err
	}

	id, err := s.repo.CreateRace(ctx, fields.Seed, fields.Description, fields.AdditionalInstructions, fields.CategoryID)
	if err != nil {
		return nil, err
	}

	s.log.Info("Race created", "race_id", id, "category_id", fields.CategoryID)
	return s.repo.GetRace(ctx, int(id))
}

// EditRace updates a race's seed, description, and instructions. Only
// inactive races with zero submissions may be edited, so already-run
// races cannot be retroactively tampered with.
func (s *RaceService) EditRace(ctx context.Context, raceID int, fields RaceFields) (*models.Race, error) {
	race, err := s.getRace(ctx, raceID)
	if err != nil {
		return nil, err
	}
	if race.Active {
		return nil, ErrEditNotAllowed
	}
	count, err := s.repo.CountSubmissionsForRace(ctx, raceID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEditNotAllowed
	}

	if strings.TrimSpace(fields.Seed) == "" {
		return nil, errors.Validation("seed is required")
	}
	if strings.TrimSpace(fields.Description) == "" {
		return nil, errors.Validation("description is required")
	}

	if err := s.repo.UpdateRace(ctx, raceID, fields.Seed, fields.Description, fields.AdditionalInstructions); err != nil {
		return nil, err
	}

	s.log.Info("Race edited", "race_id", raceID)
	return s.repo.GetRace(ctx, raceID)
}

// StartRace activates a race and stamps its start date. Restarting an
// already active race is a no-op transition and allowed.
func (s *RaceService) StartRace(ctx context.Context, raceID int) (*StartResult, error) {
	race, err := s.getRace(ctx, raceID)
	if err != nil {
		return nil, err
	}

	startDate := time.Now().Format(startDateLayout)
	if err := s.repo.SetRaceActive(ctx, raceID, true, startDate); err != nil {
		return nil, err
	}

	race.Active = true
	race.StartDate = startDate
	s.log.Info("Race started", "race_id", raceID, "start_date", startDate)

	return &StartResult{
		Race:     race,
		IsWeekly: s.cfg.IsWeeklyCategory(race.CategoryID),
	}, nil
}

// PauseRace deactivates a race without completion handling. The race
// can be started again later.
func (s *RaceService) PauseRace(ctx context.Context, raceID int) (*models.Race, error) {
	race, err := s.getRace(ctx, raceID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetRaceActive(ctx, raceID, false, ""); err != nil {
		return nil, err
	}

	race.Active = false
	s.log.Info("Race paused", "race_id", raceID)
	return race, nil
}

// EndRace deactivates a race. When postResults is set, roster members
// who never submitted get placeholder DNF submissions so the final
// leaderboard has a complete row set.
func (s *RaceService) EndRace(ctx context.Context, raceID int, postResults bool) (*EndResult, error) {
	race, err := s.getRace(ctx, raceID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetRaceActive(ctx, raceID, false, ""); err != nil {
		return nil, err
	}
	race.Active = false

	forced := 0
	if postResults {
		forced, err = s.roster.ForceCompleteMissingSubmissions(ctx, raceID)
		if err != nil {
			return nil, err
		}
	}

	s.log.Info("Race ended", "race_id", raceID, "forced_dnfs", forced)
	return &EndResult{
		Race:       race,
		IsWeekly:   s.cfg.IsWeeklyCategory(race.CategoryID),
		ForcedDNFs: forced,
	}, nil
}

// RemoveRace hard-deletes a race. Races with submissions cannot be
// removed; race history must never silently disappear once racers have
// invested time.
func (s *RaceService) RemoveRace(ctx context.Context, raceID int) error {
	if _, err := s.getRace(ctx, raceID); err != nil {
		return err
	}

	count, err := s.repo.CountSubmissionsForRace(ctx, raceID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrHasSubmissions
	}

	if err := s.repo.DeleteRace(ctx, raceID); err != nil {
		return err
	}

	s.log.Info("Race removed", "race_id", raceID)
	return nil
}

// GetRace returns a race by ID
func (s *RaceService) GetRace(ctx context.Context, raceID int) (*models.Race, error) {
	return s.getRace(ctx, raceID)
}

// ListRaces returns races in a category, newest first, paginated
func (s *RaceService) ListRaces(ctx context.Context, categoryID int, activeOnly bool, page, perPage int) ([]models.Race, error) {
	if perPage <= 0 {
		perPage = 10
	}
	return s.repo.ListRaces(ctx, categoryID, activeOnly, page, perPage)
}

// LatestWeeklyRaceID returns the newest active race in the weekly
// category, or NotFound if there is none or weekly support is disabled.
func (s *RaceService) LatestWeeklyRaceID(ctx context.Context) (int, error) {
	if s.cfg.WeeklyCategoryID == 0 {
		return 0, errors.NotFound("no weekly category configured")
	}
	id, err := s.repo.LatestActiveRaceID(ctx, s.cfg.WeeklyCategoryID)
	if err == repository.ErrNotFound {
		return 0, errors.NotFound("no active weekly race")
	}
	return id, err
}

func (s *RaceService) getRace(ctx context.Context, raceID int) (*models.Race, error) {
	race, err := s.repo.GetRace(ctx, raceID)
	if err == repository.ErrNotFound {
		return nil, errors.NotFoundf("race %d not found", raceID)
	}
	return race, err
}
