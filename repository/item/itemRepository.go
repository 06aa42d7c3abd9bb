// repository/item/itemRepository.go
package item

import (
	"context"
	"database/sql"

	"lendoo/model"
	"lendoo/util/apperr"
	"lendoo/util/database"
)

type Filter struct {
	Category     string
	ExcludeOwner int64
}

type Repo interface {
	Create(ctx context.Context, it *model.Item) error
	ByID(ctx context.Context, id int64) (*model.Item, error)
	ListAvailable(ctx context.Context, f Filter) ([]model.Item, error)
	ByOwner(ctx context.Context, ownerID int64) ([]model.Item, error)
	Deactivate(ctx context.Context, ownerID, itemID int64) (bool, error)

	// ReserveUnit decrements available_quantity by one iff a unit is left.
	// ReleaseUnit is the inverse, refusing to go past total_quantity.
	// Both are single conditional UPDATEs; the rows-affected count is the
	// only success signal, so concurrent callers cannot lose updates.
	ReserveUnit(ctx context.Context, itemID int64) error
	ReleaseUnit(ctx context.Context, itemID int64) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

const itemCols = `id, owner_id, name, description, category, daily_price, deposit,
	total_quantity, available_quantity, location, latitude, longitude, image_url, active, created_at`

func scanItem(row interface{ Scan(...any) error }, it *model.Item) error {
	return row.Scan(
		&it.ID, &it.OwnerID, &it.Name, &it.Description, &it.Category,
		&it.DailyPrice, &it.Deposit, &it.TotalQty, &it.AvailableQty,
		&it.Location, &it.Latitude, &it.Longitude, &it.ImageURL,
		&it.Active, &it.CreatedAt,
	)
}

func (r *repo) Create(ctx context.Context, it *model.Item) error {
	const q = `
		INSERT INTO items (owner_id, name, description, category, daily_price, deposit,
			total_quantity, available_quantity, location, latitude, longitude, image_url)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$7,$8,$9,$10,$11)
		RETURNING id, active, created_at`
	err := r.db.QueryRowContext(ctx, q,
		it.OwnerID, it.Name, it.Description, it.Category, it.DailyPrice, it.Deposit,
		it.TotalQty, it.Location, it.Latitude, it.Longitude, it.ImageURL,
	).Scan(&it.ID, &it.Active, &it.CreatedAt)
	if err != nil {
		return database.Classify(err)
	}
	it.AvailableQty = it.TotalQty
	return nil
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Item, error) {
	it := &model.Item{}
	err := scanItem(r.db.QueryRowContext(ctx, `SELECT `+itemCols+` FROM items WHERE id=$1`, id), it)
	if err != nil {
		return nil, database.Classify(err)
	}
	return it, nil
}

func (r *repo) ListAvailable(ctx context.Context, f Filter) ([]model.Item, error) {
	const q = `
		SELECT ` + itemCols + `
		FROM items
		WHERE active AND available_quantity > 0
			AND ($1 = '' OR category = $1)
			AND ($2 = 0 OR owner_id <> $2)
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, f.Category, f.ExcludeOwner)
	if err != nil {
		return nil, database.Classify(err)
	}
	defer rows.Close()

	var out []model.Item
	for rows.Next() {
		var it model.Item
		if err := scanItem(rows, &it); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, database.Classify(rows.Err())
}

func (r *repo) ByOwner(ctx context.Context, ownerID int64) ([]model.Item, error) {
	const q = `
		SELECT ` + itemCols + `
		FROM items
		WHERE owner_id = $1 AND active
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, database.Classify(err)
	}
	defer rows.Close()

	var out []model.Item
	for rows.Next() {
		var it model.Item
		if err := scanItem(rows, &it); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, database.Classify(rows.Err())
}

func (r *repo) Deactivate(ctx context.Context, ownerID, itemID int64) (bool, error) {
	const q = `
		UPDATE items
		SET active = FALSE
		WHERE id = $1 AND owner_id = $2 AND active`
	res, err := r.db.ExecContext(ctx, q, itemID, ownerID)
	if err != nil {
		return false, database.Classify(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *repo) ReserveUnit(ctx context.Context, itemID int64) error {
	const q = `
		UPDATE items
		SET available_quantity = available_quantity - 1
		WHERE id = $1 AND available_quantity > 0`
	res, err := r.db.ExecContext(ctx, q, itemID)
	if err != nil {
		return database.Classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.CodeOutOfStock, "no unit available")
	}
	return nil
}

func (r *repo) ReleaseUnit(ctx context.Context, itemID int64) error {
	const q = `
		UPDATE items
		SET available_quantity = available_quantity + 1
		WHERE id = $1 AND available_quantity < total_quantity`
	res, err := r.db.ExecContext(ctx, q, itemID)
	if err != nil {
		return database.Classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// either the item is gone or someone released twice
		return apperr.New(apperr.CodeInvariantViolation, "release would exceed total quantity")
	}
	return nil
}
