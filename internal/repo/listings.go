package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/universeapp/universe/internal/events"
	"github.com/universeapp/universe/internal/models"
)

const listingColumns = `id, posted_by, title, description, housing_type, address, city, state,
	zip_code, distance_to_campus, rent_price, bedrooms, bathrooms, sq_ft, lease_type,
	furnished, pets_allowed, parking, laundry, wifi_included, ac, utilities_included,
	is_available, posted_date, updated_date`

func scanListing(row interface{ Scan(...any) error }) (*models.Listing, error) {
	var l models.Listing
	err := row.Scan(&l.ID, &l.PostedBy, &l.Title, &l.Description, &l.HousingType,
		&l.Address, &l.City, &l.State, &l.ZipCode, &l.DistanceToCampus, &l.RentPrice,
		&l.Bedrooms, &l.Bathrooms, &l.SqFt, &l.LeaseType, &l.Furnished, &l.PetsAllowed,
		&l.Parking, &l.Laundry, &l.WifiIncluded, &l.AC, &l.UtilitiesIncluded,
		&l.IsAvailable, &l.PostedDate, &l.UpdatedDate)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateListing inserts a housing listing and fills in its assigned ID.
func (r *SQLiteRepository) CreateListing(ctx context.Context, l *models.Listing) error {
	now := time.Now()
	l.PostedDate = now
	l.UpdatedDate = now

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO listings (posted_by, title, description, housing_type, address, city,
		 state, zip_code, distance_to_campus, rent_price, bedrooms, bathrooms, sq_ft,
		 lease_type, furnished, pets_allowed, parking, laundry, wifi_included, ac,
		 utilities_included, is_available, posted_date, updated_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.PostedBy, l.Title, l.Description, l.HousingType, l.Address, l.City, l.State,
		l.ZipCode, l.DistanceToCampus, l.RentPrice, l.Bedrooms, l.Bathrooms, l.SqFt,
		l.LeaseType, l.Furnished, l.PetsAllowed, l.Parking, l.Laundry, l.WifiIncluded,
		l.AC, l.UtilitiesIncluded, l.IsAvailable, l.PostedDate, l.UpdatedDate,
	)
	if err != nil {
		return fmt.Errorf("failed to insert listing: %w", err)
	}
	l.ID, err = res.LastInsertId()
	if err != nil {
		return err
	}
	r.publish(events.KindListing, events.OpCreated, l.ID)
	return nil
}

// GetListing returns a listing by ID.
func (r *SQLiteRepository) GetListing(ctx context.Context, id int64) (*models.Listing, error) {
	l, err := scanListing(r.db.QueryRowContext(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: listing %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// GetListingsByIDs returns the listings that exist among ids, keyed by ID.
// Missing IDs are simply absent from the result.
func (r *SQLiteRepository) GetListingsByIDs(ctx context.Context, ids []int64) (map[int64]*models.Listing, error) {
	out := make(map[int64]*models.Listing, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	marks, args := idPlaceholders(ids)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE id IN (`+marks+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out[l.ID] = l
	}
	return out, rows.Err()
}

// UpdateListing updates an existing listing.
func (r *SQLiteRepository) UpdateListing(ctx context.Context, l *models.Listing) error {
	l.UpdatedDate = time.Now()

	res, err := r.db.ExecContext(ctx,
		`UPDATE listings SET posted_by = ?, title = ?, description = ?, housing_type = ?,
		 address = ?, city = ?, state = ?, zip_code = ?, distance_to_campus = ?,
		 rent_price = ?, bedrooms = ?, bathrooms = ?, sq_ft = ?, lease_type = ?,
		 furnished = ?, pets_allowed = ?, parking = ?, laundry = ?, wifi_included = ?,
		 ac = ?, utilities_included = ?, is_available = ?, updated_date = ?
		 WHERE id = ?`,
		l.PostedBy, l.Title, l.Description, l.HousingType, l.Address, l.City, l.State,
		l.ZipCode, l.DistanceToCampus, l.RentPrice, l.Bedrooms, l.Bathrooms, l.SqFt,
		l.LeaseType, l.Furnished, l.PetsAllowed, l.Parking, l.Laundry, l.WifiIncluded,
		l.AC, l.UtilitiesIncluded, l.IsAvailable, l.UpdatedDate, l.ID,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: listing %d", ErrNotFound, l.ID)
	}
	r.publish(events.KindListing, events.OpUpdated, l.ID)
	return nil
}

// DeleteListing removes a listing by ID.
func (r *SQLiteRepository) DeleteListing(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM listings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: listing %d", ErrNotFound, id)
	}
	r.publish(events.KindListing, events.OpDeleted, id)
	return nil
}

// ListAvailableListings returns every listing still marked available. This is
// the eligibility set the housing index is built from.
func (r *SQLiteRepository) ListAvailableListings(ctx context.Context) ([]*models.Listing, error) {
	return r.queryListings(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE is_available = 1 ORDER BY id`)
}

// ListRecentListings returns the newest available listings, newest first.
func (r *SQLiteRepository) ListRecentListings(ctx context.Context, limit int) ([]*models.Listing, error) {
	return r.queryListings(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE is_available = 1
		 ORDER BY id DESC LIMIT ?`, limit)
}

func (r *SQLiteRepository) queryListings(ctx context.Context, query string, args ...any) ([]*models.Listing, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}
