package services

import (
	"context"
	"time"

	"github.com/asyncrace/asyncrace/internal/config"
	"github.com/asyncrace/asyncrace/internal/errors"
	"github.com/asyncrace/asyncrace/internal/gametime"
	"github.com/asyncrace/asyncrace/internal/logger"
	"github.com/asyncrace/asyncrace/internal/models"
	"github.com/asyncrace/asyncrace/internal/repository"
)

// RosterServiceRepository defines the repository methods needed by RosterService
type RosterServiceRepository interface {
	repository.RosterRepository
	GetRace(ctx context.Context, id int) (*models.Race, error)
	GetRacer(ctx context.Context, userID int64) (*models.Racer, error)
	EnsureRacer(ctx context.Context, userID int64, username string) error
	GetSubmission(ctx context.Context, raceID int, userID int64) (*models.Submission, error)
	ListSubmissionsByRace(ctx context.Context, raceID int) ([]models.Submission, error)
	UpsertSubmission(ctx context.Context, sub models.Submission) error
}

// RosterService manages per-race assignments and race completion.
// The roster table is the single source of truth for the public versus
// assigned distinction: a race is public iff it has zero roster rows.
type RosterService struct {
	log  logger.Logger
	repo RosterServiceRepository
	cfg  config.Config
}

// NewRosterService creates a new RosterService
func NewRosterService(log logger.Logger, repo RosterServiceRepository, cfg config.Config) *RosterService {
	return &RosterService{
		log:  log,
		repo: repo,
		cfg:  cfg,
	}
}

// AssignRacer adds a racer to a race's roster, making the race an
// assigned race. Assigning an already assigned racer is an error.
func (s *RosterService) AssignRacer(ctx context.Context, raceID int, userID int64, username string) (*models.RosterEntry, error) {
	if _, err := s.repo.GetRace(ctx, raceID); err != nil {
		if err == repository.ErrNotFound {
			return nil, errors.NotFoundf("race %d not found", raceID)
		}
		return nil, err
	}
	if err := s.repo.EnsureRacer(ctx, userID, username); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetAssignment(ctx, raceID, userID); err == nil {
		return nil, errors.Validationf("user %d is already assigned to race %d", userID, raceID)
	} else if err != repository.ErrNotFound {
		return nil, err
	}

	if _, err := s.repo.CreateAssignment(ctx, raceID, userID); err != nil {
		return nil, err
	}

	s.log.Info("Racer assigned", "race_id", raceID, "user_id", userID)
	return s.repo.GetAssignment(ctx, raceID, userID)
}

// Roster returns the roster entries for a race
func (s *RosterService) Roster(ctx context.Context, raceID int) ([]models.RosterEntry, error) {
	return s.repo.ListRoster(ctx, raceID)
}

// IsPublicRace reports whether a race is public, meaning it has no
// roster assignments and is open to any racer.
func (s *RosterService) IsPublicRace(ctx context.Context, raceID int) (bool, error) {
	count, err := s.repo.CountRoster(ctx, raceID)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// IsRaceComplete reports whether a race is finished. A public race is
// complete once it is no longer active; an assigned race is complete
// once every roster member has submitted.
func (s *RosterService) IsRaceComplete(ctx context.Context, race *models.Race) (bool, error) {
	roster, err := s.repo.ListRoster(ctx, race.ID)
	if err != nil {
		return false, err
	}
	if len(roster) == 0 {
		return !race.Active, nil
	}

	for _, entry := range roster {
		_, err := s.repo.GetSubmission(ctx, race.ID, entry.UserID)
		if err == repository.ErrNotFound {
			return false, nil
		}
		if err != nil {
			return false, err
		}
	}
	return true, nil
}

// ForceCompleteMissingSubmissions inserts a DNF placeholder submission
// for every roster member who has not submitted, so the final results
// cover the whole roster. Returns the number of placeholders created.
// Idempotent: members with a submission are left untouched.
func (s *RosterService) ForceCompleteMissingSubmissions(ctx context.Context, raceID int) (int, error) {
	roster, err := s.repo.ListRoster(ctx, raceID)
	if err != nil {
		return 0, err
	}

	created := 0
	now := time.Now().Format(stampLayout)
	for _, entry := range roster {
		_, err := s.repo.GetSubmission(ctx, raceID, entry.UserID)
		if err == nil {
			continue
		}
		if err != repository.ErrNotFound {
			return created, err
		}

		username := ""
		if racer, err := s.repo.GetRacer(ctx, entry.UserID); err == nil {
			username = racer.Username
		}

		sub := models.Submission{
			SubmitDate:     now,
			RaceID:         raceID,
			UserID:         entry.UserID,
			Username:       username,
			FinishTimeRTA:  config.DNFTime,
			FinishTimeIGT:  config.DNFTime,
			CollectionRate: config.DefaultCollectionRate,
		}
		if err := s.repo.UpsertSubmission(ctx, sub); err != nil {
			return created, err
		}
		created++
	}

	if created > 0 {
		s.log.Info("Force-completed missing submissions", "race_id", raceID, "count", created)
	}
	return created, nil
}

// MarkInfoViewed stamps the time a racer first viewed a race's info.
// Later views leave the original stamp in place.
func (s *RosterService) MarkInfoViewed(ctx context.Context, raceID int, userID int64) error {
	entry, err := s.repo.GetAssignment(ctx, raceID, userID)
	if err == repository.ErrNotFound {
		// Public race viewers have no roster row; nothing to stamp.
		return nil
	}
	if err != nil {
		return err
	}
	if entry.RaceInfoTime != "" {
		return nil
	}
	return s.repo.SetAssignmentInfoTime(ctx, entry.ID, time.Now().Format(stampLayout))
}

// VerificationRow is one roster member's audit trail for a race
type VerificationRow struct {
	UserID     int64  `json:"user_id"`
	Username   string `json:"username"`
	StartTime  string `json:"start_time"`
	SubmitTime string `json:"submit_time"`
	FinishTime string `json:"finish_time"`
	VodLink    string `json:"vod_link,omitempty"`
	HasSubmit  bool   `json:"has_submit"`
}

// VerificationReport returns, for each roster member, when they first
// viewed the race info, when they submitted, their primary finish time,
// and their VoD link, for human verification of an assigned race.
func (s *RosterService) VerificationReport(ctx context.Context, raceID int) ([]VerificationRow, error) {
	roster, err := s.repo.ListRoster(ctx, raceID)
	if err != nil {
		return nil, err
	}
	if len(roster) == 0 {
		return nil, ErrNotAssignedRace
	}

	rows := make([]VerificationRow, 0, len(roster))
	for _, entry := range roster {
		row := VerificationRow{
			UserID:    entry.UserID,
			StartTime: entry.RaceInfoTime,
		}
		if racer, err := s.repo.GetRacer(ctx, entry.UserID); err == nil {
			row.Username = racer.Username
		}

		sub, err := s.repo.GetSubmission(ctx, raceID, entry.UserID)
		if err == nil {
			row.HasSubmit = true
			row.SubmitTime = sub.SubmitDate
			row.VodLink = sub.VodLink
			finish := sub.FinishTimeIGT
			if s.cfg.RTAIsPrimary {
				finish = sub.FinishTimeRTA
			}
			if gametime.IsDNF(finish) {
				finish = "DNF"
			}
			row.FinishTime = finish
		} else if err != repository.ErrNotFound {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
