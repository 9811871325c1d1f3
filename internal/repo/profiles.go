package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/universeapp/universe/internal/events"
	"github.com/universeapp/universe/internal/models"
)

const profileColumns = `id, user_id, first_name, last_name, age, gender, interests,
	course_major, bio, date_joined`

func scanProfile(row interface{ Scan(...any) error }) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.Age, &p.Gender,
		&p.Interests, &p.CourseMajor, &p.Bio, &p.DateJoined)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProfile inserts a user profile and fills in its assigned ID. A user
// has at most one profile.
func (r *SQLiteRepository) CreateProfile(ctx context.Context, p *models.Profile) error {
	p.DateJoined = time.Now()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id, first_name, last_name, age, gender, interests,
		 course_major, bio, date_joined)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.FirstName, p.LastName, p.Age, p.Gender, p.Interests,
		p.CourseMajor, p.Bio, p.DateJoined,
	)
	if err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return err
	}
	r.publish(events.KindProfile, events.OpCreated, p.ID)
	return nil
}

// GetProfile returns a profile by its own ID.
func (r *SQLiteRepository) GetProfile(ctx context.Context, id int64) (*models.Profile, error) {
	p, err := scanProfile(r.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: profile %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetProfileByUserID returns the profile of a user account.
func (r *SQLiteRepository) GetProfileByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	p, err := scanProfile(r.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = ?`, userID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: profile for user %d", ErrNotFound, userID)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetProfilesByUserIDs returns the profiles that exist among userIDs, keyed
// by user ID.
func (r *SQLiteRepository) GetProfilesByUserIDs(ctx context.Context, userIDs []int64) (map[int64]*models.Profile, error) {
	out := make(map[int64]*models.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	marks, args := idPlaceholders(userIDs)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id IN (`+marks+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out[p.UserID] = p
	}
	return out, rows.Err()
}

// UpdateProfile updates an existing profile.
func (r *SQLiteRepository) UpdateProfile(ctx context.Context, p *models.Profile) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET first_name = ?, last_name = ?, age = ?, gender = ?,
		 interests = ?, course_major = ?, bio = ?
		 WHERE id = ?`,
		p.FirstName, p.LastName, p.Age, p.Gender, p.Interests, p.CourseMajor, p.Bio, p.ID,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: profile %d", ErrNotFound, p.ID)
	}
	r.publish(events.KindProfile, events.OpUpdated, p.ID)
	return nil
}

// ListProfiles returns every profile. This is the eligibility set the
// roommate index is built from.
func (r *SQLiteRepository) ListProfiles(ctx context.Context) ([]*models.Profile, error) {
	return r.queryProfiles(ctx,
		`SELECT `+profileColumns+` FROM profiles ORDER BY id`)
}

// ListRecentProfiles returns the most recently joined profiles, excluding
// the requesting user's own.
func (r *SQLiteRepository) ListRecentProfiles(ctx context.Context, limit int, excludeUserID int64) ([]*models.Profile, error) {
	return r.queryProfiles(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id != ?
		 ORDER BY date_joined DESC LIMIT ?`, excludeUserID, limit)
}

// UpsertRoommateProfile inserts or replaces a user's roommate preferences.
func (r *SQLiteRepository) UpsertRoommateProfile(ctx context.Context, rp *models.RoommateProfile) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO roommate_profiles (user_id, smoking_preference, drinking_preference,
		 sleep_habits, study_habits, guests_preference, cleanliness_level,
		 max_rent_budget, preferred_move_in_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
		 smoking_preference = excluded.smoking_preference,
		 drinking_preference = excluded.drinking_preference,
		 sleep_habits = excluded.sleep_habits,
		 study_habits = excluded.study_habits,
		 guests_preference = excluded.guests_preference,
		 cleanliness_level = excluded.cleanliness_level,
		 max_rent_budget = excluded.max_rent_budget,
		 preferred_move_in_date = excluded.preferred_move_in_date`,
		rp.UserID, rp.SmokingPreference, rp.DrinkingPreference, rp.SleepHabits,
		rp.StudyHabits, rp.GuestsPreference, rp.CleanlinessLevel, rp.MaxRentBudget,
		rp.PreferredMoveIn,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert roommate profile: %w", err)
	}
	rp.ID, err = res.LastInsertId()
	if err != nil {
		return err
	}
	r.publish(events.KindRoommateProfile, events.OpUpdated, rp.UserID)
	return nil
}

// GetRoommateProfile returns a user's roommate preferences, or ErrNotFound
// when the user never filled them in.
func (r *SQLiteRepository) GetRoommateProfile(ctx context.Context, userID int64) (*models.RoommateProfile, error) {
	var rp models.RoommateProfile
	var moveIn sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, smoking_preference, drinking_preference, sleep_habits,
		 study_habits, guests_preference, cleanliness_level, max_rent_budget,
		 preferred_move_in_date
		 FROM roommate_profiles WHERE user_id = ?`, userID,
	).Scan(&rp.ID, &rp.UserID, &rp.SmokingPreference, &rp.DrinkingPreference,
		&rp.SleepHabits, &rp.StudyHabits, &rp.GuestsPreference, &rp.CleanlinessLevel,
		&rp.MaxRentBudget, &moveIn)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: roommate profile for user %d", ErrNotFound, userID)
	}
	if err != nil {
		return nil, err
	}
	if moveIn.Valid {
		rp.PreferredMoveIn = &moveIn.Time
	}
	return &rp, nil
}

func (r *SQLiteRepository) queryProfiles(ctx context.Context, query string, args ...any) ([]*models.Profile, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
