// Package repo defines the persistence interface for listings, items, study
// groups and profiles, backed by SQLite.
package repo

import (
	"context"
	"errors"

	"github.com/universeapp/universe/internal/models"
)

// ErrNotFound is returned when a requested record does not exist. Callers
// test for it with errors.Is.
var ErrNotFound = errors.New("not found")

// Counts holds per-table record totals.
type Counts struct {
	Listings    int64 `json:"listings"`
	Items       int64 `json:"items"`
	StudyGroups int64 `json:"study_groups"`
	Profiles    int64 `json:"profiles"`
}

// Repository defines record persistence operations. List* eligibility
// methods apply the same rules the index builder uses; ListRecent* back the
// recency fallbacks.
type Repository interface {
	// Housing listings
	CreateListing(ctx context.Context, l *models.Listing) error
	GetListing(ctx context.Context, id int64) (*models.Listing, error)
	GetListingsByIDs(ctx context.Context, ids []int64) (map[int64]*models.Listing, error)
	UpdateListing(ctx context.Context, l *models.Listing) error
	DeleteListing(ctx context.Context, id int64) error
	ListAvailableListings(ctx context.Context) ([]*models.Listing, error)
	ListRecentListings(ctx context.Context, limit int) ([]*models.Listing, error)

	// Marketplace items
	CreateItem(ctx context.Context, it *models.Item) error
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	GetItemsByIDs(ctx context.Context, ids []int64) (map[int64]*models.Item, error)
	UpdateItem(ctx context.Context, it *models.Item) error
	DeleteItem(ctx context.Context, id int64) error
	ListUnsoldItems(ctx context.Context) ([]*models.Item, error)
	ListRecentItems(ctx context.Context, limit int) ([]*models.Item, error)

	// Study groups
	CreateStudyGroup(ctx context.Context, g *models.StudyGroup) error
	GetStudyGroup(ctx context.Context, id int64) (*models.StudyGroup, error)
	GetStudyGroupsByIDs(ctx context.Context, ids []int64) (map[int64]*models.StudyGroup, error)
	UpdateStudyGroup(ctx context.Context, g *models.StudyGroup) error
	DeleteStudyGroup(ctx context.Context, id int64) error
	ListActiveStudyGroups(ctx context.Context) ([]*models.StudyGroup, error)
	ListRecentStudyGroups(ctx context.Context, limit int) ([]*models.StudyGroup, error)
	AddGroupMember(ctx context.Context, groupID, userID int64) error
	RemoveGroupMember(ctx context.Context, groupID, userID int64) error

	// Profiles
	CreateProfile(ctx context.Context, p *models.Profile) error
	GetProfile(ctx context.Context, id int64) (*models.Profile, error)
	GetProfileByUserID(ctx context.Context, userID int64) (*models.Profile, error)
	GetProfilesByUserIDs(ctx context.Context, userIDs []int64) (map[int64]*models.Profile, error)
	UpdateProfile(ctx context.Context, p *models.Profile) error
	ListProfiles(ctx context.Context) ([]*models.Profile, error)
	ListRecentProfiles(ctx context.Context, limit int, excludeUserID int64) ([]*models.Profile, error)
	UpsertRoommateProfile(ctx context.Context, rp *models.RoommateProfile) error
	GetRoommateProfile(ctx context.Context, userID int64) (*models.RoommateProfile, error)

	// Stats
	CountRecords(ctx context.Context) (*Counts, error)

	Close() error
}
