package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/universeapp/universe/internal/events"
	"github.com/universeapp/universe/internal/models"
)

const itemColumns = `id, seller, title, description, price, item_type, condition, location,
	is_sold, posted_date`

func scanItem(row interface{ Scan(...any) error }) (*models.Item, error) {
	var it models.Item
	err := row.Scan(&it.ID, &it.Seller, &it.Title, &it.Description, &it.Price,
		&it.ItemType, &it.Condition, &it.Location, &it.IsSold, &it.PostedDate)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// CreateItem inserts a marketplace item and fills in its assigned ID.
func (r *SQLiteRepository) CreateItem(ctx context.Context, it *models.Item) error {
	it.PostedDate = time.Now()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO items (seller, title, description, price, item_type, condition,
		 location, is_sold, posted_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		it.Seller, it.Title, it.Description, it.Price, it.ItemType, it.Condition,
		it.Location, it.IsSold, it.PostedDate,
	)
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	it.ID, err = res.LastInsertId()
	if err != nil {
		return err
	}
	r.publish(events.KindItem, events.OpCreated, it.ID)
	return nil
}

// GetItem returns an item by ID.
func (r *SQLiteRepository) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	it, err := scanItem(r.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: item %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return it, nil
}

// GetItemsByIDs returns the items that exist among ids, keyed by ID.
func (r *SQLiteRepository) GetItemsByIDs(ctx context.Context, ids []int64) (map[int64]*models.Item, error) {
	out := make(map[int64]*models.Item, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	marks, args := idPlaceholders(ids)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id IN (`+marks+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out[it.ID] = it
	}
	return out, rows.Err()
}

// UpdateItem updates an existing item. Marking an item sold goes through
// here as well.
func (r *SQLiteRepository) UpdateItem(ctx context.Context, it *models.Item) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE items SET seller = ?, title = ?, description = ?, price = ?,
		 item_type = ?, condition = ?, location = ?, is_sold = ?
		 WHERE id = ?`,
		it.Seller, it.Title, it.Description, it.Price, it.ItemType, it.Condition,
		it.Location, it.IsSold, it.ID,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: item %d", ErrNotFound, it.ID)
	}
	r.publish(events.KindItem, events.OpUpdated, it.ID)
	return nil
}

// DeleteItem removes an item by ID.
func (r *SQLiteRepository) DeleteItem(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: item %d", ErrNotFound, id)
	}
	r.publish(events.KindItem, events.OpDeleted, id)
	return nil
}

// ListUnsoldItems returns every item not yet sold. This is the eligibility
// set the marketplace index is built from.
func (r *SQLiteRepository) ListUnsoldItems(ctx context.Context) ([]*models.Item, error) {
	return r.queryItems(ctx,
		`SELECT `+itemColumns+` FROM items WHERE is_sold = 0 ORDER BY id`)
}

// ListRecentItems returns the newest unsold items, newest first.
func (r *SQLiteRepository) ListRecentItems(ctx context.Context, limit int) ([]*models.Item, error) {
	return r.queryItems(ctx,
		`SELECT `+itemColumns+` FROM items WHERE is_sold = 0 ORDER BY id DESC LIMIT ?`, limit)
}

func (r *SQLiteRepository) queryItems(ctx context.Context, query string, args ...any) ([]*models.Item, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
