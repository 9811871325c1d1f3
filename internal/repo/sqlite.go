package repo

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/universeapp/universe/internal/events"
)

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db  *sql.DB
	bus *events.Bus
}

// NewSQLiteRepository opens or creates a SQLite database at dbPath and
// initializes the schema. Parent directories are created if they do not
// exist. bus may be nil, in which case mutations publish no events.
func NewSQLiteRepository(dbPath string, bus *events.Bus) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteRepository{db: db, bus: bus}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS listings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		posted_by INTEGER NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		housing_type TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		zip_code TEXT NOT NULL DEFAULT '',
		distance_to_campus REAL NOT NULL DEFAULT 0,
		rent_price REAL NOT NULL DEFAULT 0,
		bedrooms INTEGER NOT NULL DEFAULT 0,
		bathrooms INTEGER NOT NULL DEFAULT 0,
		sq_ft INTEGER NOT NULL DEFAULT 0,
		lease_type TEXT NOT NULL DEFAULT '',
		furnished INTEGER NOT NULL DEFAULT 0,
		pets_allowed INTEGER NOT NULL DEFAULT 0,
		parking INTEGER NOT NULL DEFAULT 0,
		laundry INTEGER NOT NULL DEFAULT 0,
		wifi_included INTEGER NOT NULL DEFAULT 0,
		ac INTEGER NOT NULL DEFAULT 0,
		utilities_included INTEGER NOT NULL DEFAULT 0,
		is_available INTEGER NOT NULL DEFAULT 1,
		posted_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_listings_available ON listings(is_available);

	CREATE TABLE IF NOT EXISTS items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seller INTEGER NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price REAL NOT NULL DEFAULT 0,
		item_type TEXT NOT NULL DEFAULT '',
		condition TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		is_sold INTEGER NOT NULL DEFAULT 0,
		posted_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_items_sold ON items(is_sold);

	CREATE TABLE IF NOT EXISTS study_groups (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		creator INTEGER NOT NULL,
		name TEXT NOT NULL,
		course_code TEXT NOT NULL DEFAULT '',
		subject_area TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		max_members INTEGER NOT NULL DEFAULT 0,
		meeting_location TEXT NOT NULL DEFAULT '',
		meeting_schedule TEXT NOT NULL DEFAULT '',
		meeting_frequency TEXT NOT NULL DEFAULT '',
		is_online INTEGER NOT NULL DEFAULT 0,
		meeting_link TEXT NOT NULL DEFAULT '',
		is_active INTEGER NOT NULL DEFAULT 1,
		created_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_groups_active ON study_groups(is_active);

	CREATE TABLE IF NOT EXISTS group_memberships (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		group_id INTEGER NOT NULL,
		user_id INTEGER NOT NULL,
		joined_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (group_id, user_id),
		FOREIGN KEY (group_id) REFERENCES study_groups(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_memberships_group ON group_memberships(group_id);

	CREATE TABLE IF NOT EXISTS profiles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL UNIQUE,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		age INTEGER NOT NULL DEFAULT 0,
		gender TEXT NOT NULL DEFAULT '',
		interests TEXT NOT NULL DEFAULT '',
		course_major TEXT NOT NULL DEFAULT '',
		bio TEXT NOT NULL DEFAULT '',
		date_joined TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS roommate_profiles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL UNIQUE,
		smoking_preference TEXT NOT NULL DEFAULT '',
		drinking_preference TEXT NOT NULL DEFAULT '',
		sleep_habits TEXT NOT NULL DEFAULT '',
		study_habits TEXT NOT NULL DEFAULT '',
		guests_preference TEXT NOT NULL DEFAULT '',
		cleanliness_level INTEGER NOT NULL DEFAULT 0,
		max_rent_budget REAL NOT NULL DEFAULT 0,
		preferred_move_in_date TIMESTAMP
	);
	`
	_, err := db.Exec(schema)
	return err
}

// publish emits a mutation event. Publish failures never fail the mutation
// that triggered them.
func (r *SQLiteRepository) publish(kind events.Kind, op events.Op, id int64) {
	if r.bus == nil {
		return
	}
	_ = r.bus.Publish(events.Event{Kind: kind, Op: op, EntityID: id})
}

// idPlaceholders builds a "?, ?, ..." fragment plus the matching args slice
// for an IN clause.
func idPlaceholders(ids []int64) (string, []any) {
	marks := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		marks[i] = "?"
		args[i] = id
	}
	return strings.Join(marks, ", "), args
}

// CountRecords returns the per-table record totals.
func (r *SQLiteRepository) CountRecords(ctx context.Context) (*Counts, error) {
	c := &Counts{}
	type target struct {
		table string
		dst   *int64
	}
	for _, t := range []target{
		{"listings", &c.Listings},
		{"items", &c.Items},
		{"study_groups", &c.StudyGroups},
		{"profiles", &c.Profiles},
	} {
		if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t.table).Scan(t.dst); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", t.table, err)
		}
	}
	return c, nil
}

// Close closes the database connection.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
