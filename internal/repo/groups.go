package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/universeapp/universe/internal/events"
	"github.com/universeapp/universe/internal/models"
)

// groupColumns includes a membership count subquery so MemberCount is always
// filled on read.
const groupColumns = `g.id, g.creator, g.name, g.course_code, g.subject_area, g.description,
	g.max_members, g.meeting_location, g.meeting_schedule, g.meeting_frequency,
	g.is_online, g.meeting_link, g.is_active, g.created_date,
	(SELECT COUNT(*) FROM group_memberships m WHERE m.group_id = g.id)`

func scanGroup(row interface{ Scan(...any) error }) (*models.StudyGroup, error) {
	var g models.StudyGroup
	err := row.Scan(&g.ID, &g.Creator, &g.Name, &g.CourseCode, &g.SubjectArea,
		&g.Description, &g.MaxMembers, &g.MeetingLocation, &g.MeetingSchedule,
		&g.MeetingFrequency, &g.IsOnline, &g.MeetingLink, &g.IsActive,
		&g.CreatedDate, &g.MemberCount)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// CreateStudyGroup inserts a study group, enrolls the creator as its first
// member and fills in the assigned ID.
func (r *SQLiteRepository) CreateStudyGroup(ctx context.Context, g *models.StudyGroup) error {
	g.CreatedDate = time.Now()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO study_groups (creator, name, course_code, subject_area, description,
		 max_members, meeting_location, meeting_schedule, meeting_frequency, is_online,
		 meeting_link, is_active, created_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.Creator, g.Name, g.CourseCode, g.SubjectArea, g.Description, g.MaxMembers,
		g.MeetingLocation, g.MeetingSchedule, g.MeetingFrequency, g.IsOnline,
		g.MeetingLink, g.IsActive, g.CreatedDate,
	)
	if err != nil {
		return fmt.Errorf("failed to insert study group: %w", err)
	}
	g.ID, err = res.LastInsertId()
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO group_memberships (group_id, user_id) VALUES (?, ?)`,
		g.ID, g.Creator,
	); err != nil {
		return fmt.Errorf("failed to enroll creator: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	g.MemberCount = 1
	r.publish(events.KindStudyGroup, events.OpCreated, g.ID)
	return nil
}

// GetStudyGroup returns a study group by ID with its member count.
func (r *SQLiteRepository) GetStudyGroup(ctx context.Context, id int64) (*models.StudyGroup, error) {
	g, err := scanGroup(r.db.QueryRowContext(ctx,
		`SELECT `+groupColumns+` FROM study_groups g WHERE g.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: study group %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// GetStudyGroupsByIDs returns the study groups that exist among ids, keyed by ID.
func (r *SQLiteRepository) GetStudyGroupsByIDs(ctx context.Context, ids []int64) (map[int64]*models.StudyGroup, error) {
	out := make(map[int64]*models.StudyGroup, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	marks, args := idPlaceholders(ids)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+groupColumns+` FROM study_groups g WHERE g.id IN (`+marks+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		out[g.ID] = g
	}
	return out, rows.Err()
}

// UpdateStudyGroup updates an existing study group.
func (r *SQLiteRepository) UpdateStudyGroup(ctx context.Context, g *models.StudyGroup) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE study_groups SET creator = ?, name = ?, course_code = ?, subject_area = ?,
		 description = ?, max_members = ?, meeting_location = ?, meeting_schedule = ?,
		 meeting_frequency = ?, is_online = ?, meeting_link = ?, is_active = ?
		 WHERE id = ?`,
		g.Creator, g.Name, g.CourseCode, g.SubjectArea, g.Description, g.MaxMembers,
		g.MeetingLocation, g.MeetingSchedule, g.MeetingFrequency, g.IsOnline,
		g.MeetingLink, g.IsActive, g.ID,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: study group %d", ErrNotFound, g.ID)
	}
	r.publish(events.KindStudyGroup, events.OpUpdated, g.ID)
	return nil
}

// DeleteStudyGroup removes a study group and its memberships.
func (r *SQLiteRepository) DeleteStudyGroup(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM study_groups WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: study group %d", ErrNotFound, id)
	}
	r.publish(events.KindStudyGroup, events.OpDeleted, id)
	return nil
}

// ListActiveStudyGroups returns every active study group. This is the
// eligibility set the study group index is built from; fullness is checked
// at query time because membership can change after a rebuild.
func (r *SQLiteRepository) ListActiveStudyGroups(ctx context.Context) ([]*models.StudyGroup, error) {
	return r.queryGroups(ctx,
		`SELECT `+groupColumns+` FROM study_groups g WHERE g.is_active = 1 ORDER BY g.id`)
}

// ListRecentStudyGroups returns the newest active groups, newest first.
func (r *SQLiteRepository) ListRecentStudyGroups(ctx context.Context, limit int) ([]*models.StudyGroup, error) {
	return r.queryGroups(ctx,
		`SELECT `+groupColumns+` FROM study_groups g WHERE g.is_active = 1
		 ORDER BY g.id DESC LIMIT ?`, limit)
}

// AddGroupMember enrolls a user in a group. Enrolling twice is an error.
func (r *SQLiteRepository) AddGroupMember(ctx context.Context, groupID, userID int64) error {
	if _, err := r.GetStudyGroup(ctx, groupID); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO group_memberships (group_id, user_id) VALUES (?, ?)`,
		groupID, userID,
	); err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	r.publish(events.KindStudyGroup, events.OpUpdated, groupID)
	return nil
}

// RemoveGroupMember withdraws a user from a group.
func (r *SQLiteRepository) RemoveGroupMember(ctx context.Context, groupID, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM group_memberships WHERE group_id = ? AND user_id = ?`,
		groupID, userID,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: membership of user %d in group %d", ErrNotFound, userID, groupID)
	}
	r.publish(events.KindStudyGroup, events.OpUpdated, groupID)
	return nil
}

func (r *SQLiteRepository) queryGroups(ctx context.Context, query string, args ...any) ([]*models.StudyGroup, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []*models.StudyGroup
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}
