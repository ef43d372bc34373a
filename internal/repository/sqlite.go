package repository

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/asyncrace/asyncrace/internal/models"
)

// Repository provides data access methods
type Repository struct {
	db *sql.DB
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite works best with single connection
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}

	if err := repo.ensureSchema(); err != nil {
		return nil, err
	}

	return repo, nil
}

// DB returns the underlying database connection
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ensureSchema creates any missing tables. It is idempotent and runs
// once at startup. The UNIQUE(race_id, user_id) constraint on
// submissions is what makes the submission upsert atomic.
func (r *Repository) ensureSchema() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS race_categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			description TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS async_races (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			start_date TEXT,
			seed TEXT NOT NULL,
			description TEXT NOT NULL,
			additional_instructions TEXT,
			category_id INTEGER NOT NULL,
			active BOOLEAN NOT NULL DEFAULT 0,
			FOREIGN KEY (category_id) REFERENCES race_categories(id)
		)`,
		`CREATE TABLE IF NOT EXISTS async_racers (
			user_id INTEGER PRIMARY KEY,
			username TEXT NOT NULL,
			wheel_weight INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS async_submissions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			submit_date TEXT,
			race_id INTEGER NOT NULL,
			user_id INTEGER NOT NULL,
			username TEXT NOT NULL,
			finish_time_rta TEXT,
			finish_time_igt TEXT,
			collection_rate INTEGER,
			next_mode TEXT,
			comment TEXT,
			vod_link TEXT,
			FOREIGN KEY (race_id) REFERENCES async_races(id),
			UNIQUE(race_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS async_race_rosters (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			race_id INTEGER NOT NULL,
			user_id INTEGER NOT NULL,
			race_info_time TEXT,
			FOREIGN KEY (race_id) REFERENCES async_races(id),
			UNIQUE(race_id, user_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_race ON async_submissions(race_id)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_user ON async_submissions(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_rosters_race ON async_race_rosters(race_id)`,
		`CREATE INDEX IF NOT EXISTS idx_races_category ON async_races(category_id)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}
	return nil
}

// ==================== Category Methods ====================

// ListCategories returns all race categories
func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, description FROM race_categories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var cat models.Category
		var description sql.NullString
		if err := rows.Scan(&cat.ID, &cat.Name, &description); err != nil {
			return nil, err
		}
		cat.Description = description.String
		categories = append(categories, cat)
	}
	return categories, rows.Err()
}

// GetCategory returns a race category by ID
func (r *Repository) GetCategory(ctx context.Context, id int) (*models.Category, error) {
	var cat models.Category
	var description sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description FROM race_categories WHERE id = ?`, id).
		Scan(&cat.ID, &cat.Name, &description)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	cat.Description = description.String
	return &cat, nil
}

// CreateCategory creates a new race category
func (r *Repository) CreateCategory(ctx context.Context, name, description string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO race_categories (name, description) VALUES (?, ?)`, name, description)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// CountCategories returns the number of race categories
func (r *Repository) CountCategories(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM race_categories`).Scan(&count)
	return count, err
}

// ==================== Race Methods ====================

func scanRace(scan func(dest ...any) error) (*models.Race, error) {
	var race models.Race
	var startDate, instructions sql.NullString
	if err := scan(&race.ID, &startDate, &race.Seed, &race.Description, &instructions, &race.CategoryID, &race.Active); err != nil {
		return nil, err
	}
	race.StartDate = startDate.String
	race.AdditionalInstructions = instructions.String
	return &race, nil
}

// GetRace returns a race by ID
func (r *Repository) GetRace(ctx context.Context, id int) (*models.Race, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, start_date, seed, description, additional_instructions, category_id, active
		FROM async_races WHERE id = ?
	`, id)
	race, err := scanRace(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return race, nil
}

// ListRaces returns races for a category, newest first, paginated.
// Page numbers are 1-based.
func (r *Repository) ListRaces(ctx context.Context, categoryID int, activeOnly bool, page, perPage int) ([]models.Race, error) {
	query := `
		SELECT id, start_date, seed, description, additional_instructions, category_id, active
		FROM async_races WHERE category_id = ?`
	if activeOnly {
		query += ` AND active = 1`
	}
	query += ` ORDER BY id DESC LIMIT ? OFFSET ?`

	if page < 1 {
		page = 1
	}
	rows, err := r.db.QueryContext(ctx, query, categoryID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var races []models.Race
	for rows.Next() {
		race, err := scanRace(rows.Scan)
		if err != nil {
			return nil, err
		}
		races = append(races, *race)
	}
	return races, rows.Err()
}

// CreateRace inserts a new, inactive race
func (r *Repository) CreateRace(ctx context.Context, seed, description, instructions string, categoryID int) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO async_races (seed, description, additional_instructions, category_id, active)
		VALUES (?, ?, ?, ?, 0)
	`, seed, description, instructions, categoryID)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// UpdateRace updates a race's editable fields. Category membership is
// fixed at creation and cannot be changed here.
func (r *Repository) UpdateRace(ctx context.Context, id int, seed, description, instructions string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE async_races SET seed = ?, description = ?, additional_instructions = ?
		WHERE id = ?
	`, seed, description, instructions, id)
	return err
}

// SetRaceActive updates a race's active flag. A non-empty startDate is
// written along with it (used when starting a race).
func (r *Repository) SetRaceActive(ctx context.Context, id int, active bool, startDate string) error {
	if startDate != "" {
		_, err := r.db.ExecContext(ctx,
			`UPDATE async_races SET active = ?, start_date = ? WHERE id = ?`, active, startDate, id)
		return err
	}
	_, err := r.db.ExecContext(ctx, `UPDATE async_races SET active = ? WHERE id = ?`, active, id)
	return err
}

// DeleteRace hard-deletes a race and its roster rows. The service layer
// guarantees no submissions exist before calling this.
func (r *Repository) DeleteRace(ctx context.Context, id int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM async_race_rosters WHERE race_id = ?`, id); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM async_races WHERE id = ?`, id)
	return err
}

// LatestActiveRaceID returns the newest active race ID in a category,
// or ErrNotFound if the category has no active race.
func (r *Repository) LatestActiveRaceID(ctx context.Context, categoryID int) (int, error) {
	var id int
	err := r.db.QueryRowContext(ctx, `
		SELECT id FROM async_races
		WHERE category_id = ? AND active = 1
		ORDER BY id DESC LIMIT 1
	`, categoryID).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	return id, err
}

// ==================== Racer Methods ====================

// GetRacer returns a racer by user ID
func (r *Repository) GetRacer(ctx context.Context, userID int64) (*models.Racer, error) {
	var racer models.Racer
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, username, wheel_weight FROM async_racers WHERE user_id = ?`, userID).
		Scan(&racer.UserID, &racer.Username, &racer.WheelWeight)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &racer, nil
}

// EnsureRacer creates a racer row for the user if one does not already
// exist. Existing rows are left untouched, including the username.
func (r *Repository) EnsureRacer(ctx context.Context, userID int64, username string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO async_racers (user_id, username, wheel_weight) VALUES (?, ?, 1)
		ON CONFLICT(user_id) DO NOTHING
	`, userID, username)
	return err
}

// ==================== Submission Methods ====================

func scanSubmission(scan func(dest ...any) error) (*models.Submission, error) {
	var sub models.Submission
	var submitDate, rta, igt, nextMode, comment, vodLink sql.NullString
	var cr sql.NullInt64
	if err := scan(&sub.ID, &submitDate, &sub.RaceID, &sub.UserID, &sub.Username,
		&rta, &igt, &cr, &nextMode, &comment, &vodLink); err != nil {
		return nil, err
	}
	sub.SubmitDate = submitDate.String
	sub.FinishTimeRTA = rta.String
	sub.FinishTimeIGT = igt.String
	sub.CollectionRate = int(cr.Int64)
	sub.NextMode = nextMode.String
	sub.Comment = comment.String
	sub.VodLink = vodLink.String
	return &sub, nil
}

const submissionColumns = `id, submit_date, race_id, user_id, username,
	finish_time_rta, finish_time_igt, collection_rate, next_mode, comment, vod_link`

// GetSubmission returns the submission for a (race, user) pair
func (r *Repository) GetSubmission(ctx context.Context, raceID int, userID int64) (*models.Submission, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+submissionColumns+` FROM async_submissions
		WHERE race_id = ? AND user_id = ?
	`, raceID, userID)
	sub, err := scanSubmission(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// GetSubmissionByID returns a submission by its surrogate ID
func (r *Repository) GetSubmissionByID(ctx context.Context, id int) (*models.Submission, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+submissionColumns+` FROM async_submissions WHERE id = ?
	`, id)
	sub, err := scanSubmission(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// ListSubmissionsByRace returns all submissions for a race in insertion
// order. The stable leaderboard sort relies on this ordering.
func (r *Repository) ListSubmissionsByRace(ctx context.Context, raceID int) ([]models.Submission, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+submissionColumns+` FROM async_submissions
		WHERE race_id = ? ORDER BY id
	`, raceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []models.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows.Scan)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

// ListSubmissionsByUser returns a user's submissions, newest first,
// paginated. Page numbers are 1-based.
func (r *Repository) ListSubmissionsByUser(ctx context.Context, userID int64, page, perPage int) ([]models.Submission, error) {
	if page < 1 {
		page = 1
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+submissionColumns+` FROM async_submissions
		WHERE user_id = ? ORDER BY id DESC LIMIT ? OFFSET ?
	`, userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []models.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows.Scan)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

// UpsertSubmission inserts a submission, or overwrites the existing row
// for the same (race, user) pair. The UNIQUE constraint makes the
// check-then-write atomic under concurrent submits.
func (r *Repository) UpsertSubmission(ctx context.Context, sub models.Submission) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO async_submissions
			(submit_date, race_id, user_id, username, finish_time_rta, finish_time_igt,
			 collection_rate, next_mode, comment, vod_link)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(race_id, user_id) DO UPDATE SET
			submit_date = excluded.submit_date,
			username = excluded.username,
			finish_time_rta = excluded.finish_time_rta,
			finish_time_igt = excluded.finish_time_igt,
			collection_rate = excluded.collection_rate,
			next_mode = excluded.next_mode,
			comment = excluded.comment,
			vod_link = excluded.vod_link
	`, sub.SubmitDate, sub.RaceID, sub.UserID, sub.Username, sub.FinishTimeRTA,
		sub.FinishTimeIGT, sub.CollectionRate, sub.NextMode, sub.Comment, sub.VodLink)
	return err
}

// CountSubmissionsForRace returns the number of submissions for a race
func (r *Repository) CountSubmissionsForRace(ctx context.Context, raceID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM async_submissions WHERE race_id = ?`, raceID).Scan(&count)
	return count, err
}

// ==================== Roster Methods ====================

// ListRoster returns the roster entries for a race in assignment order
func (r *Repository) ListRoster(ctx context.Context, raceID int) ([]models.RosterEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, race_id, user_id, race_info_time
		FROM async_race_rosters WHERE race_id = ? ORDER BY id
	`, raceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roster []models.RosterEntry
	for rows.Next() {
		var entry models.RosterEntry
		var infoTime sql.NullString
		if err := rows.Scan(&entry.ID, &entry.RaceID, &entry.UserID, &infoTime); err != nil {
			return nil, err
		}
		entry.RaceInfoTime = infoTime.String
		roster = append(roster, entry)
	}
	return roster, rows.Err()
}

// GetAssignment returns the roster entry for a (race, user) pair
func (r *Repository) GetAssignment(ctx context.Context, raceID int, userID int64) (*models.RosterEntry, error) {
	var entry models.RosterEntry
	var infoTime sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT id, race_id, user_id, race_info_time
		FROM async_race_rosters WHERE race_id = ? AND user_id = ?
	`, raceID, userID).Scan(&entry.ID, &entry.RaceID, &entry.UserID, &infoTime)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	entry.RaceInfoTime = infoTime.String
	return &entry, nil
}

// CreateAssignment adds a racer to a race's roster
func (r *Repository) CreateAssignment(ctx context.Context, raceID int, userID int64) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO async_race_rosters (race_id, user_id) VALUES (?, ?)`, raceID, userID)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// SetAssignmentInfoTime stamps the first-view time on a roster entry.
// The stamp is written only if the column is still NULL.
func (r *Repository) SetAssignmentInfoTime(ctx context.Context, id int, infoTime string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE async_race_rosters SET race_info_time = ?
		WHERE id = ? AND race_info_time IS NULL
	`, infoTime, id)
	return err
}

// CountRoster returns the number of roster entries for a race
func (r *Repository) CountRoster(ctx context.Context, raceID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM async_race_rosters WHERE race_id = ?`, raceID).Scan(&count)
	return count, err
}
