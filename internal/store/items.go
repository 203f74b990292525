package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/erazemk/stockmate/internal/model"
)

// Inventory manages item records and their quantities.
type Inventory struct {
	s *Store
}

func (inv *Inventory) prepare(item model.Item) (model.Item, error) {
	limit := inv.s.opts.Limits.MaxItemNameLength
	item = model.SanitizeItem(item, limit)
	if err := model.ValidateItem(item, limit); err != nil {
		return item, err
	}
	return item, nil
}

// AddItem creates a new item and returns its id. The id is always generated,
// so the insert policy never replaces an existing row.
func (inv *Inventory) AddItem(ctx context.Context, name, description string, quantity int) (int64, error) {
	ctx, cancel := inv.s.opContext(ctx)
	defer cancel()

	item, err := inv.prepare(model.Item{Name: name, Description: description, Quantity: quantity})
	if err != nil {
		return 0, err
	}

	query := `INSERT INTO items (name, description, quantity) VALUES (?, ?, ?)`
	if inv.s.opts.InsertPolicy == model.InsertReplace {
		query = `INSERT OR REPLACE INTO items (name, description, quantity) VALUES (?, ?, ?)`
	}

	result, err := inv.s.db.ExecContext(ctx, query, item.Name, nullString(item.Description), item.Quantity)
	if err != nil {
		return 0, inv.s.storageError(ctx, "creating item", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, inv.s.storageError(ctx, "getting item id", err)
	}
	return id, nil
}

// GetItem returns an item by ID, or nil if none exists.
func (inv *Inventory) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	ctx, cancel := inv.s.opContext(ctx)
	defer cancel()

	item := &model.Item{}
	var description sql.NullString
	err := inv.s.db.QueryRowContext(ctx,
		`SELECT id, name, description, quantity FROM items WHERE id = ?`, id,
	).Scan(&item.ID, &item.Name, &description, &item.Quantity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, inv.s.storageError(ctx, "getting item", err)
	}
	item.Description = description.String
	return item, nil
}

// GetAllItems returns every item in storage order.
func (inv *Inventory) GetAllItems(ctx context.Context) ([]model.Item, error) {
	ctx, cancel := inv.s.opContext(ctx)
	defer cancel()

	rows, err := inv.s.db.QueryContext(ctx,
		`SELECT id, name, description, quantity FROM items ORDER BY id`,
	)
	if err != nil {
		return nil, inv.s.storageError(ctx, "listing items", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var item model.Item
		var description sql.NullString
		if err := rows.Scan(&item.ID, &item.Name, &description, &item.Quantity); err != nil {
			return nil, inv.s.storageError(ctx, "scanning item", err)
		}
		item.Description = description.String
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, inv.s.storageError(ctx, "listing items", err)
	}
	return items, nil
}

// UpdateItem updates the name and quantity of the item with item.ID. It
// reports false if no such item exists.
func (inv *Inventory) UpdateItem(ctx context.Context, item model.Item) (bool, error) {
	ctx, cancel := inv.s.opContext(ctx)
	defer cancel()

	item, err := inv.prepare(item)
	if err != nil {
		return false, err
	}

	return inv.exec(ctx, "updating item",
		`UPDATE items SET name = ?, quantity = ? WHERE id = ?`,
		item.Name, item.Quantity, item.ID,
	)
}

// DeleteItem deletes the item with id. It reports false if no such item
// exists. Callers are expected to have obtained confirmation.
func (inv *Inventory) DeleteItem(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := inv.s.opContext(ctx)
	defer cancel()

	return inv.exec(ctx, "deleting item", `DELETE FROM items WHERE id = ?`, id)
}

// IncrementQuantity adds one unit to the item with id. An item already at
// math.MaxInt is left alone and reported as ErrInvalidInput.
func (inv *Inventory) IncrementQuantity(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := inv.s.opContext(ctx)
	defer cancel()

	ok, err := inv.exec(ctx, "incrementing quantity",
		`UPDATE items SET quantity = quantity + 1 WHERE id = ? AND quantity < ?`,
		id, math.MaxInt,
	)
	if err != nil || ok {
		return ok, err
	}

	item, err := inv.GetItem(ctx, id)
	if err != nil || item == nil {
		return false, err
	}
	return false, fmt.Errorf("%w: item %d is at the maximum quantity", model.ErrInvalidInput, id)
}

// DecrementQuantity removes one unit from the item with id. The quantity
// stays at 0 once it gets there.
func (inv *Inventory) DecrementQuantity(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := inv.s.opContext(ctx)
	defer cancel()

	return inv.exec(ctx, "decrementing quantity",
		`UPDATE items SET quantity = MAX(quantity - 1, 0) WHERE id = ?`, id,
	)
}

// exec runs a single-row statement and reports whether a row was affected.
func (inv *Inventory) exec(ctx context.Context, op, query string, args ...any) (bool, error) {
	result, err := inv.s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, inv.s.storageError(ctx, op, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, inv.s.storageError(ctx, op, err)
	}
	return n > 0, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
