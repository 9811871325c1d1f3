package models

import "time"

// Profile is a user profile record. UserID is the id of the owning user
// account; the roommate index and all roommate search results key on UserID,
// never on the profile's own ID.
type Profile struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"user_id" db:"user_id"`
	FirstName   string    `json:"first_name" db:"first_name"`
	LastName    string    `json:"last_name" db:"last_name"`
	Age         int       `json:"age,omitempty" db:"age"` // 0 = not stated
	Gender      string    `json:"gender,omitempty" db:"gender"`
	Interests   string    `json:"interests,omitempty" db:"interests"`
	CourseMajor string    `json:"course_major,omitempty" db:"course_major"`
	Bio         string    `json:"bio,omitempty" db:"bio"`
	DateJoined  time.Time `json:"date_joined" db:"date_joined"`
}

// RoommateProfile holds the optional extended lifestyle preferences of a user.
// A nil *RoommateProfile means the user never filled one in.
type RoommateProfile struct {
	ID                 int64      `json:"id" db:"id"`
	UserID             int64      `json:"user_id" db:"user_id"`
	SmokingPreference  string     `json:"smoking_preference" db:"smoking_preference"`
	DrinkingPreference string     `json:"drinking_preference" db:"drinking_preference"`
	SleepHabits        string     `json:"sleep_habits" db:"sleep_habits"`
	StudyHabits        string     `json:"study_habits" db:"study_habits"`
	GuestsPreference   string     `json:"guests_preference" db:"guests_preference"`
	CleanlinessLevel   int        `json:"cleanliness_level" db:"cleanliness_level"` // 1-5, 5 cleanest
	MaxRentBudget      float64    `json:"max_rent_budget,omitempty" db:"max_rent_budget"` // 0 = no budget stated
	PreferredMoveIn    *time.Time `json:"preferred_move_in_date,omitempty" db:"preferred_move_in_date"`
}
