package services

import (
	"context"

	"github.com/asyncrace/asyncrace/internal/config"
	"github.com/asyncrace/asyncrace/internal/logger"
	"github.com/asyncrace/asyncrace/internal/models"
	"github.com/asyncrace/asyncrace/internal/repository"
)

// PermissionServiceRepository defines the repository methods needed by PermissionService
type PermissionServiceRepository interface {
	repository.RacerRepository
	repository.RosterRepository
	GetSubmission(ctx context.Context, raceID int, userID int64) (*models.Submission, error)
}

// PermissionService evaluates whether an actor may perform race-scoped
// actions, from role membership, channel identity, and roster state.
type PermissionService struct {
	log  logger.Logger
	repo PermissionServiceRepository
	cfg  config.Config
}

// NewPermissionService creates a new PermissionService
func NewPermissionService(log logger.Logger, repo PermissionServiceRepository, cfg config.Config) *PermissionService {
	return &PermissionService{
		log:  log,
		repo: repo,
		cfg:  cfg,
	}
}

// IsRaceCreator reports whether the actor holds the race creator role.
func (s *PermissionService) IsRaceCreator(roleIDs []int64) bool {
	if s.cfg.RaceCreatorRoleID == 0 {
		return false
	}
	for _, id := range roleIDs {
		if id == s.cfg.RaceCreatorRoleID {
			return true
		}
	}
	return false
}

// IsRaceCreatorCommand reports whether the actor holds the race creator
// role AND issued the command from the race creator channel. Every
// management operation requires both.
func (s *PermissionService) IsRaceCreatorCommand(roleIDs []int64, channelID int64) bool {
	return s.IsRaceCreator(roleIDs) && channelID == s.cfg.RaceCreatorChannelID
}

// HasSubmitPermission reports whether the user may submit to the race:
// either the race is public, or the user has a roster assignment.
func (s *PermissionService) HasSubmitPermission(ctx context.Context, raceID int, userID int64) (bool, error) {
	count, err := s.repo.CountRoster(ctx, raceID)
	if err != nil {
		return false, err
	}
	if count == 0 {
		return true, nil
	}

	_, err = s.repo.GetAssignment(ctx, raceID, userID)
	if err == repository.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CanViewLeaderboard reports whether the actor may view a race's
// leaderboard: race creators always can; everyone else must have a
// submission of their own first, so an assigned race's results cannot
// be spoiled before racing it.
func (s *PermissionService) CanViewLeaderboard(ctx context.Context, raceID int, userID int64, roleIDs []int64) (bool, error) {
	if s.IsRaceCreator(roleIDs) {
		return true, nil
	}

	_, err := s.repo.GetSubmission(ctx, raceID, userID)
	if err == repository.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CanEditSubmission reports whether the actor may edit a submission:
// race creators always can; the owner can only when the race is public.
func (s *PermissionService) CanEditSubmission(ctx context.Context, sub *models.Submission, userID int64, roleIDs []int64) (bool, error) {
	if s.IsRaceCreator(roleIDs) {
		return true, nil
	}
	if sub.UserID != userID {
		return false, nil
	}

	count, err := s.repo.CountRoster(ctx, sub.RaceID)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// EnsureRacer registers the user as a racer if not already known.
// Idempotent; called once at the entry point of every user action.
func (s *PermissionService) EnsureRacer(ctx context.Context, userID int64, username string) error {
	return s.repo.EnsureRacer(ctx, userID, username)
}
