package repository

import (
	"context"
	"testing"

	"github.com/asyncrace/asyncrace/internal/models"
)

// newTestRepo creates a new in-memory repository for testing.
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

// newTestRace creates a category and an inactive race, returning the race ID.
func newTestRace(t *testing.T, repo *Repository) int {
	t.Helper()
	ctx := context.Background()
	catID, err := repo.CreateCategory(ctx, "Any%", "standard ruleset")
	if err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	raceID, err := repo.CreateRace(ctx, "https://example.com/seed/123", "Casual seed", "", int(catID))
	if err != nil {
		t.Fatalf("CreateRace failed: %v", err)
	}
	return int(raceID)
}

// ==================== Category Tests ====================

func TestCreateCategory_Basic(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.CreateCategory(ctx, "100%", "all items")
	if err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	if id <= 0 {
		t.Errorf("expected positive ID, got %d", id)
	}

	cat, err := repo.GetCategory(ctx, int(id))
	if err != nil {
		t.Fatalf("GetCategory failed: %v", err)
	}
	if cat.Name != "100%" {
		t.Errorf("expected name '100%%', got %q", cat.Name)
	}
	if cat.Description != "all items" {
		t.Errorf("expected description 'all items', got %q", cat.Description)
	}
}

func TestGetCategory_NonExistent(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetCategory(context.Background(), 999)
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListCategories_Order(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, name := range []string{"Any%", "100%", "Weekly"} {
		if _, err := repo.CreateCategory(ctx, name, ""); err != nil {
			t.Fatalf("CreateCategory failed: %v", err)
		}
	}

	cats, err := repo.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories failed: %v", err)
	}
	if len(cats) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(cats))
	}
	if cats[0].Name != "Any%" || cats[2].Name != "Weekly" {
		t.Errorf("categories out of insertion order: %+v", cats)
	}

	count, err := repo.CountCategories(ctx)
	if err != nil {
		t.Fatalf("CountCategories failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected count 3, got %d", count)
	}
}

// ==================== Race Tests ====================

func TestCreateRace_StartsInactive(t *testing.T) {
	repo := newTestRepo(t)
	raceID := newTestRace(t, repo)

	race, err := repo.GetRace(context.Background(), raceID)
	if err != nil {
		t.Fatalf("GetRace failed: %v", err)
	}
	if race.Active {
		t.Error("new race should be inactive")
	}
	if race.StartDate != "" {
		t.Errorf("new race should have no start date, got %q", race.StartDate)
	}
	if race.Seed != "https://example.com/seed/123" {
		t.Errorf("unexpected seed %q", race.Seed)
	}
}

func TestGetRace_NonExistent(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetRace(context.Background(), 42)
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSetRaceActive_WithStartDate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	raceID := newTestRace(t, repo)

	if err := repo.SetRaceActive(ctx, raceID, true, "2026-08-31 12:00:00"); err != nil {
		t.Fatalf("SetRaceActive failed: %v", err)
	}

	race, err := repo.GetRace(ctx, raceID)
	if err != nil {
		t.Fatalf("GetRace failed: %v", err)
	}
	if !race.Active {
		t.Error("race should be active")
	}
	if race.StartDate != "2026-08-31 12:00:00" {
		t.Errorf("expected start date to be set, got %q", race.StartDate)
	}

	// Deactivating without a date keeps the original start date
	if err := repo.SetRaceActive(ctx, raceID, false, ""); err != nil {
		t.Fatalf("SetRaceActive failed: %v", err)
	}
	race, _ = repo.GetRace(ctx, raceID)
	if race.Active {
		t.Error("race should be inactive")
	}
	if race.StartDate != "2026-08-31 12:00:00" {
		t.Errorf("start date should survive deactivation, got %q", race.StartDate)
	}
}

func TestUpdateRace_Fields(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	raceID := newTestRace(t, repo)

	if err := repo.UpdateRace(ctx, raceID, "new-seed", "new description", "glitchless only"); err != nil {
		t.Fatalf("UpdateRace failed: %v", err)
	}

	race, err := repo.GetRace(ctx, raceID)
	if err != nil {
		t.Fatalf("GetRace failed: %v", err)
	}
	if race.Seed != "new-seed" || race.Description != "new description" || race.AdditionalInstructions != "glitchless only" {
		t.Errorf("update not applied: %+v", race)
	}
}

func TestDeleteRace_RemovesRoster(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	raceID := newTestRace(t, repo)

	if _, err := repo.CreateAssignment(ctx, raceID, 100); err != nil {
		t.Fatalf("CreateAssignment failed: %v", err)
	}

	if err := repo.DeleteRace(ctx, raceID); err != nil {
		t.Fatalf("DeleteRace failed: %v", err)
	}

	if _, err := repo.GetRace(ctx, raceID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	count, err := repo.CountRoster(ctx, raceID)
	if err != nil {
		t.Fatalf("CountRoster failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected empty roster after delete, got %d entries", count)
	}
}

func TestListRaces_ActiveFilterAndPaging(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	catID, err := repo.CreateCategory(ctx, "Any%", "")
	if err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}

	var raceIDs []int
	for i := 0; i < 5; i++ {
		id, err := repo.CreateRace(ctx, "seed", "race", "", int(catID))
		if err != nil {
			t.Fatalf("CreateRace failed: %v", err)
		}
		raceIDs = append(raceIDs, int(id))
	}
	// Activate the first two
	for _, id := range raceIDs[:2] {
		if err := repo.SetRaceActive(ctx, id, true, "2026-08-31 12:00:00"); err != nil {
			t.Fatalf("SetRaceActive failed: %v", err)
		}
	}

	active, err := repo.ListRaces(ctx, int(catID), true, 1, 10)
	if err != nil {
		t.Fatalf("ListRaces failed: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected 2 active races, got %d", len(active))
	}

	// Newest first
	page1, err := repo.ListRaces(ctx, int(catID), false, 1, 2)
	if err != nil {
		t.Fatalf("ListRaces failed: %v", err)
	}
	if len(page1) != 2 || page1[0].ID != raceIDs[4] {
		t.Errorf("expected newest race first, got %+v", page1)
	}

	page3, err := repo.ListRaces(ctx, int(catID), false, 3, 2)
	if err != nil {
		t.Fatalf("ListRaces failed: %v", err)
	}
	if len(page3) != 1 || page3[0].ID != raceIDs[0] {
		t.Errorf("expected oldest race on last page, got %+v", page3)
	}
}

func TestLatestActiveRaceID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	catID, err := repo.CreateCategory(ctx, "Weekly", "")
	if err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}

	if _, err := repo.LatestActiveRaceID(ctx, int(catID)); err != ErrNotFound {
		t.Errorf("expected ErrNotFound with no active race, got %v", err)
	}

	first, _ := repo.CreateRace(ctx, "s1", "first", "", int(catID))
	second, _ := repo.CreateRace(ctx, "s2", "second", "", int(catID))
	repo.SetRaceActive(ctx, int(first), true, "2026-08-01 12:00:00")
	repo.SetRaceActive(ctx, int(second), true, "2026-08-08 12:00:00")

	id, err := repo.LatestActiveRaceID(ctx, int(catID))
	if err != nil {
		t.Fatalf("LatestActiveRaceID failed: %v", err)
	}
	if id != int(second) {
		t.Errorf("expected latest race %d, got %d", second, id)
	}
}

// ==================== Racer Tests ====================

func TestEnsureRacer_CreatesOnce(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.EnsureRacer(ctx, 7, "speedy"); err != nil {
		t.Fatalf("EnsureRacer failed: %v", err)
	}

	racer, err := repo.GetRacer(ctx, 7)
	if err != nil {
		t.Fatalf("GetRacer failed: %v", err)
	}
	if racer.Username != "speedy" {
		t.Errorf("expected username 'speedy', got %q", racer.Username)
	}

	// Calling again with a different name does not overwrite
	if err := repo.EnsureRacer(ctx, 7, "renamed"); err != nil {
		t.Fatalf("second EnsureRacer failed: %v", err)
	}
	racer, _ = repo.GetRacer(ctx, 7)
	if racer.Username != "speedy" {
		t.Errorf("EnsureRacer should not overwrite existing row, got %q", racer.Username)
	}
}

func TestGetRacer_NonExistent(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetRacer(context.Background(), 999)
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// ==================== Submission Tests ====================

func TestUpsertSubmission_InsertThenUpdate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	raceID := newTestRace(t, repo)

	sub := models.Submission{
		SubmitDate:    "2026-08-31 13:00:00",
		RaceID:        raceID,
		UserID:        7,
		Username:      "speedy",
		FinishTimeRTA: "1:23:45",
		FinishTimeIGT: "1:20:00",
	}
	if err := repo.UpsertSubmission(ctx, sub); err != nil {
		t.Fatalf("UpsertSubmission failed: %v", err)
	}

	got, err := repo.GetSubmission(ctx, raceID, 7)
	if err != nil {
		t.Fatalf("GetSubmission failed: %v", err)
	}
	if got.FinishTimeRTA != "1:23:45" {
		t.Errorf("expected RTA '1:23:45', got %q", got.FinishTimeRTA)
	}
	firstID := got.ID

	// Resubmit overwrites the same row
	sub.FinishTimeRTA = "1:10:00"
	sub.Comment = "better route"
	if err := repo.UpsertSubmission(ctx, sub); err != nil {
		t.Fatalf("second UpsertSubmission failed: %v", err)
	}

	got, err = repo.GetSubmission(ctx, raceID, 7)
	if err != nil {
		t.Fatalf("GetSubmission failed: %v", err)
	}
	if got.ID != firstID {
		t.Errorf("resubmit should keep row ID %d, got %d", firstID, got.ID)
	}
	if got.FinishTimeRTA != "1:10:00" || got.Comment != "better route" {
		t.Errorf("resubmit not applied: %+v", got)
	}

	count, err := repo.CountSubmissionsForRace(ctx, raceID)
	if err != nil {
		t.Fatalf("CountSubmissionsForRace failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 submission after resubmit, got %d", count)
	}
}

func TestGetSubmission_NonExistent(t *testing.T) {
	repo := newTestRepo(t)
	raceID := newTestRace(t, repo)

	_, err := repo.GetSubmission(context.Background(), raceID, 99)
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListSubmissionsByRace_InsertionOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	raceID := newTestRace(t, repo)

	for i, user := range []int64{10, 20, 30} {
		sub := models.Submission{
			RaceID:        raceID,
			UserID:        user,
			Username:      "racer",
			FinishTimeRTA: "1:00:00",
		}
		if err := repo.UpsertSubmission(ctx, sub); err != nil {
			t.Fatalf("UpsertSubmission %d failed: %v", i, err)
		}
	}

	subs, err := repo.ListSubmissionsByRace(ctx, raceID)
	if err != nil {
		t.Fatalf("ListSubmissionsByRace failed: %v", err)
	}
	if len(subs) != 3 {
		t.Fatalf("expected 3 submissions, got %d", len(subs))
	}
	if subs[0].UserID != 10 || subs[2].UserID != 30 {
		t.Errorf("submissions out of insertion order: %+v", subs)
	}
}

func TestListSubmissionsByUser_NewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	catID, _ := repo.CreateCategory(ctx, "Any%", "")
	var raceIDs []int
	for i := 0; i < 3; i++ {
		id, _ := repo.CreateRace(ctx, "seed", "race", "", int(catID))
		raceIDs = append(raceIDs, int(id))
		sub := models.Submission{RaceID: int(id), UserID: 7, Username: "speedy", FinishTimeRTA: "1:00:00"}
		if err := repo.UpsertSubmission(ctx, sub); err != nil {
			t.Fatalf("UpsertSubmission failed: %v", err)
		}
	}

	subs, err := repo.ListSubmissionsByUser(ctx, 7, 1, 2)
	if err != nil {
		t.Fatalf("ListSubmissionsByUser failed: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("expected 2 submissions on page 1, got %d", len(subs))
	}
	if subs[0].RaceID != raceIDs[2] {
		t.Errorf("expected newest submission first, got race %d", subs[0].RaceID)
	}
}

// ==================== Roster Tests ====================

func TestCreateAssignment_AndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	raceID := newTestRace(t, repo)

	id, err := repo.CreateAssignment(ctx, raceID, 55)
	if err != nil {
		t.Fatalf("CreateAssignment failed: %v", err)
	}
	if id <= 0 {
		t.Errorf("expected positive ID, got %d", id)
	}

	entry, err := repo.GetAssignment(ctx, raceID, 55)
	if err != nil {
		t.Fatalf("GetAssignment failed: %v", err)
	}
	if entry.RaceInfoTime != "" {
		t.Errorf("new assignment should have no info time, got %q", entry.RaceInfoTime)
	}
}

func TestCreateAssignment_Duplicate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	raceID := newTestRace(t, repo)

	if _, err := repo.CreateAssignment(ctx, raceID, 55); err != nil {
		t.Fatalf("first CreateAssignment failed: %v", err)
	}
	if _, err := repo.CreateAssignment(ctx, raceID, 55); err == nil {
		t.Error("expected error for duplicate assignment, got nil")
	}
}

func TestGetAssignment_NonExistent(t *testing.T) {
	repo := newTestRepo(t)
	raceID := newTestRace(t, repo)

	_, err := repo.GetAssignment(context.Background(), raceID, 12)
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSetAssignmentInfoTime_StampsOnce(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	raceID := newTestRace(t, repo)

	id, err := repo.CreateAssignment(ctx, raceID, 55)
	if err != nil {
		t.Fatalf("CreateAssignment failed: %v", err)
	}

	if err := repo.SetAssignmentInfoTime(ctx, int(id), "2026-08-31 14:00:00"); err != nil {
		t.Fatalf("SetAssignmentInfoTime failed: %v", err)
	}
	entry, _ := repo.GetAssignment(ctx, raceID, 55)
	if entry.RaceInfoTime != "2026-08-31 14:00:00" {
		t.Errorf("expected info time stamped, got %q", entry.RaceInfoTime)
	}

	// A second stamp must not overwrite the first view time
	if err := repo.SetAssignmentInfoTime(ctx, int(id), "2026-09-01 09:00:00"); err != nil {
		t.Fatalf("second SetAssignmentInfoTime failed: %v", err)
	}
	entry, _ = repo.GetAssignment(ctx, raceID, 55)
	if entry.RaceInfoTime != "2026-08-31 14:00:00" {
		t.Errorf("info time should be immutable once set, got %q", entry.RaceInfoTime)
	}
}

func TestListRoster_Order(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	raceID := newTestRace(t, repo)

	for _, user := range []int64{3, 1, 2} {
		if _, err := repo.CreateAssignment(ctx, raceID, user); err != nil {
			t.Fatalf("CreateAssignment failed: %v", err)
		}
	}

	roster, err := repo.ListRoster(ctx, raceID)
	if err != nil {
		t.Fatalf("ListRoster failed: %v", err)
	}
	if len(roster) != 3 {
		t.Fatalf("expected 3 roster entries, got %d", len(roster))
	}
	if roster[0].UserID != 3 || roster[2].UserID != 2 {
		t.Errorf("roster out of assignment order: %+v", roster)
	}
}
