package models

import "time"

// StudyGroup is a study group record. MemberCount is the number of active
// memberships and is filled in by the repository on read.
type StudyGroup struct {
	ID               int64     `json:"id" db:"id"`
	Creator          int64     `json:"creator" db:"creator"`
	Name             string    `json:"name" db:"name"`
	CourseCode       string    `json:"course_code" db:"course_code"`
	SubjectArea      string    `json:"subject_area" db:"subject_area"`
	Description      string    `json:"description" db:"description"`
	MaxMembers       int       `json:"max_members" db:"max_members"`
	MeetingLocation  string    `json:"meeting_location" db:"meeting_location"`
	MeetingSchedule  string    `json:"meeting_schedule" db:"meeting_schedule"`
	MeetingFrequency string    `json:"meeting_frequency" db:"meeting_frequency"`
	IsOnline         bool      `json:"is_online" db:"is_online"`
	MeetingLink      string    `json:"meeting_link" db:"meeting_link"`
	IsActive         bool      `json:"is_active" db:"is_active"`
	MemberCount      int       `json:"member_count" db:"-"`
	CreatedDate      time.Time `json:"created_date" db:"created_date"`
}

// IsFull reports whether the group has reached its member limit.
func (g *StudyGroup) IsFull() bool {
	return g.MaxMembers > 0 && g.MemberCount >= g.MaxMembers
}
