package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/asyncrace/asyncrace/internal/models"
)

func testSubmission(raceID int, userID int64) models.Submission {
	return models.Submission{
		RaceID:        raceID,
		UserID:        userID,
		Username:      "speedy",
		FinishTimeRTA: "1:00:00",
	}
}

// TestListCategories_ScanError tests row scanning error
func TestListCategories_ScanError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	repo := &Repository{db: db}
	ctx := context.Background()

	// Row with wrong type for id to trigger scan error
	rows := sqlmock.NewRows([]string{"id", "name", "description"}).
		AddRow("bad-id", "Any%", nil)

	mock.ExpectQuery("SELECT (.+) FROM race_categories").WillReturnRows(rows)

	_, err = repo.ListCategories(ctx)
	if err == nil {
		t.Error("expected error from scan failure, got nil")
	}
}

// TestListCategories_QueryError tests query failure
func TestListCategories_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	repo := &Repository{db: db}

	mock.ExpectQuery("SELECT (.+) FROM race_categories").WillReturnError(errors.New("database locked"))

	_, err = repo.ListCategories(context.Background())
	if err == nil {
		t.Error("expected query error, got nil")
	}
}

// TestListRaces_ScanError tests row scanning error
func TestListRaces_ScanError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	repo := &Repository{db: db}

	rows := sqlmock.NewRows([]string{"id", "start_date", "seed", "description", "additional_instructions", "category_id", "active"}).
		AddRow("bad-id", nil, "seed", "desc", nil, 1, false)

	mock.ExpectQuery("SELECT (.+) FROM async_races").WillReturnRows(rows)

	_, err = repo.ListRaces(context.Background(), 1, false, 1, 10)
	if err == nil {
		t.Error("expected error from scan failure, got nil")
	}
}

// TestListSubmissionsByRace_QueryError tests query failure
func TestListSubmissionsByRace_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	repo := &Repository{db: db}

	mock.ExpectQuery("SELECT (.+) FROM async_submissions").WillReturnError(errors.New("disk I/O error"))

	_, err = repo.ListSubmissionsByRace(context.Background(), 1)
	if err == nil {
		t.Error("expected query error, got nil")
	}
}

// TestListSubmissionsByRace_ScanError tests row scanning error
func TestListSubmissionsByRace_ScanError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	repo := &Repository{db: db}

	rows := sqlmock.NewRows([]string{"id", "submit_date", "race_id", "user_id", "username",
		"finish_time_rta", "finish_time_igt", "collection_rate", "next_mode", "comment", "vod_link"}).
		AddRow("bad-id", nil, 1, 7, "speedy", nil, nil, nil, nil, nil, nil)

	mock.ExpectQuery("SELECT (.+) FROM async_submissions").WillReturnRows(rows)

	_, err = repo.ListSubmissionsByRace(context.Background(), 1)
	if err == nil {
		t.Error("expected error from scan failure, got nil")
	}
}

// TestListRoster_ScanError tests row scanning error
func TestListRoster_ScanError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	repo := &Repository{db: db}

	rows := sqlmock.NewRows([]string{"id", "race_id", "user_id", "race_info_time"}).
		AddRow("bad-id", 1, 7, nil)

	mock.ExpectQuery("SELECT (.+) FROM async_race_rosters").WillReturnRows(rows)

	_, err = repo.ListRoster(context.Background(), 1)
	if err == nil {
		t.Error("expected error from scan failure, got nil")
	}
}

// TestUpsertSubmission_ExecError tests write failure
func TestUpsertSubmission_ExecError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	repo := &Repository{db: db}

	mock.ExpectExec("INSERT INTO async_submissions").WillReturnError(errors.New("constraint failed"))

	err = repo.UpsertSubmission(context.Background(), testSubmission(1, 7))
	if err == nil {
		t.Error("expected exec error, got nil")
	}
}

// TestCountSubmissionsForRace_QueryError tests count failure
func TestCountSubmissionsForRace_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	repo := &Repository{db: db}

	mock.ExpectQuery("SELECT COUNT").WillReturnError(errors.New("database locked"))

	_, err = repo.CountSubmissionsForRace(context.Background(), 1)
	if err == nil {
		t.Error("expected query error, got nil")
	}
}
