package services

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/asyncrace/asyncrace/internal/config"
	"github.com/asyncrace/asyncrace/internal/errors"
	"github.com/asyncrace/asyncrace/internal/gametime"
	"github.com/asyncrace/asyncrace/internal/logger"
	"github.com/asyncrace/asyncrace/internal/models"
	"github.com/asyncrace/asyncrace/internal/repository"
)

// SubmissionServiceRepository defines the repository methods needed by SubmissionService
type SubmissionServiceRepository interface {
	repository.SubmissionRepository
	GetRace(ctx context.Context, id int) (*models.Race, error)
	ListRaces(ctx context.Context, categoryID int, activeOnly bool, page, perPage int) ([]models.Race, error)
	LatestActiveRaceID(ctx context.Context, categoryID int) (int, error)
	EnsureRacer(ctx context.Context, userID int64, username string) error
}

// SubmissionService validates and stores racer results and computes
// leaderboards and placements.
type SubmissionService struct {
	log        logger.Logger
	repo       SubmissionServiceRepository
	permission PermissionServicer
	cfg        config.Config
}

// NewSubmissionService creates a new SubmissionService
func NewSubmissionService(log logger.Logger, repo SubmissionServiceRepository, permission PermissionServicer, cfg config.Config) *SubmissionService {
	return &SubmissionService{
		log:        log,
		repo:       repo,
		permission: permission,
		cfg:        cfg,
	}
}

// SubmitRequest carries a racer's result for one race
type SubmitRequest struct {
	RaceID         int    `json:"race_id"`
	UserID         int64  `json:"user_id"`
	Username       string `json:"username"`
	FinishTimeIGT  string `json:"finish_time_igt"`
	FinishTimeRTA  string `json:"finish_time_rta"`
	CollectionRate int    `json:"collection_rate"`
	NextMode       string `json:"next_mode"`
	Comment        string `json:"comment"`
	VodLink        string `json:"vod_link"`
}

// LeaderboardRow is one ranked leaderboard entry. DNF times are already
// rendered as "DNF" and the secondary time is omitted when disabled.
type LeaderboardRow struct {
	Place          string `json:"place"`
	Username       string `json:"username"`
	PrimaryTime    string `json:"primary_time"`
	SecondaryTime  string `json:"secondary_time,omitempty"`
	CollectionRate int    `json:"collection_rate"`
	SubmitDate     string `json:"submit_date"`
}

// UserResult is one row of a racer's submission history. Times and
// placement are masked while the submission's race is the current
// weekly race, so results cannot be leaked before it concludes.
type UserResult struct {
	RaceID         int    `json:"race_id"`
	SubmissionID   int    `json:"submission_id"`
	SubmitDate     string `json:"submit_date"`
	RaceName       string `json:"race_name"`
	Place          string `json:"place"`
	FinishTimeIGT  string `json:"finish_time_igt"`
	FinishTimeRTA  string `json:"finish_time_rta"`
	CollectionRate string `json:"collection_rate"`
	Comment        string `json:"comment,omitempty"`
}

// ModeSuggestion pairs a racer with their suggestion for the next mode
type ModeSuggestion struct {
	Username   string `json:"username"`
	Suggestion string `json:"suggestion"`
}

// SubmitTime validates and stores a result. Preconditions are checked
// in order: race active, submit permission, required primary time,
// format of every non-empty time. A second submit for the same race and
// user overwrites the first in place.
func (s *SubmissionService) SubmitTime(ctx context.Context, req SubmitRequest) (*models.Submission, error) {
	race, err := s.repo.GetRace(ctx, req.RaceID)
	if err == repository.ErrNotFound {
		return nil, errors.NotFoundf("race %d not found", req.RaceID)
	}
	if err != nil {
		return nil, err
	}
	if !race.Active {
		return nil, ErrRaceNotActive
	}

	if err := s.permission.EnsureRacer(ctx, req.UserID, req.Username); err != nil {
		return nil, err
	}
	allowed, err := s.permission.HasSubmitPermission(ctx, req.RaceID, req.UserID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrNotAssigned
	}

	primary := req.FinishTimeIGT
	if s.cfg.RTAIsPrimary {
		primary = req.FinishTimeRTA
	}
	if primary == "" {
		return nil, ErrMissingRequiredTime
	}

	igt, rta := req.FinishTimeIGT, req.FinishTimeRTA
	if igt != "" {
		t, err := gametime.Parse(igt)
		if err != nil {
			return nil, errors.Validation("IGT is in the wrong format")
		}
		igt = t.String()
	}
	if rta != "" {
		t, err := gametime.Parse(rta)
		if err != nil {
			return nil, errors.Validation("RTA is in the wrong format")
		}
		rta = t.String()
	}

	cr := req.CollectionRate
	if cr == 0 {
		cr = config.DefaultCollectionRate
	}

	sub := models.Submission{
		SubmitDate:     time.Now().Format(stampLayout),
		RaceID:         req.RaceID,
		UserID:         req.UserID,
		Username:       req.Username,
		FinishTimeIGT:  igt,
		FinishTimeRTA:  rta,
		CollectionRate: cr,
		NextMode:       req.NextMode,
		Comment:        req.Comment,
		VodLink:        req.VodLink,
	}
	if err := s.repo.UpsertSubmission(ctx, sub); err != nil {
		return nil, err
	}

	s.log.Info("Time submitted", "race_id", req.RaceID, "user_id", req.UserID)
	return s.repo.GetSubmission(ctx, req.RaceID, req.UserID)
}

// Forfeit records a DNF for the racer, through the same validation and
// permission path as a normal submit.
func (s *SubmissionService) Forfeit(ctx context.Context, raceID int, userID int64, username, comment string) (*models.Submission, error) {
	return s.SubmitTime(ctx, SubmitRequest{
		RaceID:        raceID,
		UserID:        userID,
		Username:      username,
		FinishTimeIGT: config.DNFTime,
		FinishTimeRTA: config.DNFTime,
		Comment:       comment,
	})
}

// RankSubmissions returns a race's submissions ordered ascending by the
// canonical seconds of the primary time field. The sort is stable, so
// ties keep their submission order and repeated calls are deterministic.
func (s *SubmissionService) RankSubmissions(ctx context.Context, raceID int) ([]models.Submission, error) {
	subs, err := s.repo.ListSubmissionsByRace(ctx, raceID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(subs, func(i, j int) bool {
		return s.primarySeconds(subs[i]) < s.primarySeconds(subs[j])
	})
	return subs, nil
}

// PlacementOf returns the user's 1-based placement in a race as an
// ordinal label. A user with no submission gets the no-placement label.
func (s *SubmissionService) PlacementOf(ctx context.Context, raceID int, userID int64) (string, error) {
	ranked, err := s.RankSubmissions(ctx, raceID)
	if err != nil {
		return "", err
	}

	place := 0
	for i, sub := range ranked {
		if sub.UserID == userID {
			place = i + 1
			break
		}
	}
	return gametime.PlaceString(place), nil
}

// Leaderboard returns the ranked results for a race, ready for display
func (s *SubmissionService) Leaderboard(ctx context.Context, raceID int) ([]LeaderboardRow, error) {
	if _, err := s.repo.GetRace(ctx, raceID); err != nil {
		if err == repository.ErrNotFound {
			return nil, errors.NotFoundf("race %d not found", raceID)
		}
		return nil, err
	}

	ranked, err := s.RankSubmissions(ctx, raceID)
	if err != nil {
		return nil, err
	}

	rows := make([]LeaderboardRow, 0, len(ranked))
	for i, sub := range ranked {
		primary, secondary := sub.FinishTimeIGT, sub.FinishTimeRTA
		if s.cfg.RTAIsPrimary {
			primary, secondary = secondary, primary
		}
		row := LeaderboardRow{
			Place:          gametime.PlaceString(i + 1),
			Username:       sub.Username,
			PrimaryTime:    renderTime(primary),
			CollectionRate: sub.CollectionRate,
			SubmitDate:     sub.SubmitDate,
		}
		if s.cfg.ShowSecondaryTimeField {
			row.SecondaryTime = renderTime(secondary)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// UserResults returns a page of the user's submission history, newest
// first. Rows belonging to the current weekly race are masked.
func (s *SubmissionService) UserResults(ctx context.Context, userID int64, page, perPage int) ([]UserResult, error) {
	if perPage <= 0 {
		perPage = 10
	}
	subs, err := s.repo.ListSubmissionsByUser(ctx, userID, page, perPage)
	if err != nil {
		return nil, err
	}

	weeklyID := 0
	if s.cfg.WeeklyCategoryID != 0 {
		if id, err := s.repo.LatestActiveRaceID(ctx, s.cfg.WeeklyCategoryID); err == nil {
			weeklyID = id
		}
	}

	results := make([]UserResult, 0, len(subs))
	for _, sub := range subs {
		res := UserResult{
			RaceID:       sub.RaceID,
			SubmissionID: sub.ID,
			SubmitDate:   sub.SubmitDate,
			Comment:      sub.Comment,
		}
		if race, err := s.repo.GetRace(ctx, sub.RaceID); err == nil {
			res.RaceName = race.Description
		}

		if sub.RaceID == weeklyID {
			// Hide completion info for the ongoing weekly race
			res.FinishTimeIGT = "**:**:**"
			res.FinishTimeRTA = "**:**:**"
			res.CollectionRate = "***"
			res.Place = "****"
		} else {
			res.FinishTimeIGT = renderTime(sub.FinishTimeIGT)
			res.FinishTimeRTA = renderTime(sub.FinishTimeRTA)
			res.CollectionRate = strconv.Itoa(sub.CollectionRate)
			place, err := s.PlacementOf(ctx, sub.RaceID, userID)
			if err != nil {
				return nil, err
			}
			res.Place = place
		}
		results = append(results, res)
	}
	return results, nil
}

// GetSubmission looks up a single submission by ID
func (s *SubmissionService) GetSubmission(ctx context.Context, submissionID int) (*models.Submission, error) {
	sub, err := s.repo.GetSubmissionByID(ctx, submissionID)
	if err == repository.ErrNotFound {
		return nil, errors.NotFoundf("submission %d not found", submissionID)
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// EditSubmission rewrites an existing submission's fields through the
// normal submit path, on behalf of its owner.
func (s *SubmissionService) EditSubmission(ctx context.Context, submissionID int, req SubmitRequest) (*models.Submission, error) {
	sub, err := s.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	req.RaceID = sub.RaceID
	req.UserID = sub.UserID
	if req.Username == "" {
		req.Username = sub.Username
	}
	return s.SubmitTime(ctx, req)
}

// NextModeSuggestions collects the non-empty next-mode suggestions from
// submissions to the two most recent active weekly races. Returns
// nothing when suggestion collection is disabled.
func (s *SubmissionService) NextModeSuggestions(ctx context.Context) ([]ModeSuggestion, error) {
	if !s.cfg.SuggestNextMode || s.cfg.WeeklyCategoryID == 0 {
		return nil, nil
	}

	races, err := s.repo.ListRaces(ctx, s.cfg.WeeklyCategoryID, true, 1, 2)
	if err != nil {
		return nil, err
	}

	var suggestions []ModeSuggestion
	for _, race := range races {
		subs, err := s.repo.ListSubmissionsByRace(ctx, race.ID)
		if err != nil {
			return nil, err
		}
		for _, sub := range subs {
			mode := strings.TrimSpace(strings.ReplaceAll(sub.NextMode, "\n", " "))
			if mode == "" || mode == "None" {
				continue
			}
			suggestions = append(suggestions, ModeSuggestion{
				Username:   sub.Username,
				Suggestion: mode,
			})
		}
	}
	return suggestions, nil
}

func (s *SubmissionService) primarySeconds(sub models.Submission) int {
	if s.cfg.RTAIsPrimary {
		return gametime.SortSeconds(sub.FinishTimeRTA)
	}
	return gametime.SortSeconds(sub.FinishTimeIGT)
}

// renderTime shows the DNF sentinel as "DNF"
func renderTime(t string) string {
	if gametime.IsDNF(t) {
		return "DNF"
	}
	return t
}
