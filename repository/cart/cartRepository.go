// repository/cart/cartRepository.go
package cart

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"lendoo/model"
	"lendoo/util/database"
)

type Repo interface {
	Insert(ctx context.Context, e *model.CartEntry) error
	ByID(ctx context.Context, id int64) (*model.CartEntry, error)
	ByBorrowerAndItem(ctx context.Context, borrowerID, itemID int64) (*model.CartEntry, error)
	ListByBorrower(ctx context.Context, borrowerID int64) ([]model.CartEntry, error)
	UpdateDuration(ctx context.Context, id int64, endDate time.Time, days int, fee float64) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

const entryCols = `id, borrower_id, item_id, start_date, end_date, days, fee, deposit, created_at`

func scanEntry(row interface{ Scan(...any) error }, e *model.CartEntry) error {
	return row.Scan(
		&e.ID, &e.BorrowerID, &e.ItemID, &e.StartDate, &e.EndDate,
		&e.Days, &e.Fee, &e.Deposit, &e.CreatedAt,
	)
}

func (r *repo) Insert(ctx context.Context, e *model.CartEntry) error {
	const q = `
		INSERT INTO cart_entries (borrower_id, item_id, start_date, end_date, days, fee, deposit)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, q,
		e.BorrowerID, e.ItemID, e.StartDate, e.EndDate, e.Days, e.Fee, e.Deposit,
	).Scan(&e.ID, &e.CreatedAt)
	return database.Classify(err)
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.CartEntry, error) {
	e := &model.CartEntry{}
	err := scanEntry(r.db.QueryRowContext(ctx,
		`SELECT `+entryCols+` FROM cart_entries WHERE id=$1`, id), e)
	if err != nil {
		return nil, database.Classify(err)
	}
	return e, nil
}

// ByBorrowerAndItem returns nil, nil when no entry is staged.
func (r *repo) ByBorrowerAndItem(ctx context.Context, borrowerID, itemID int64) (*model.CartEntry, error) {
	e := &model.CartEntry{}
	err := scanEntry(r.db.QueryRowContext(ctx,
		`SELECT `+entryCols+` FROM cart_entries WHERE borrower_id=$1 AND item_id=$2`,
		borrowerID, itemID), e)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, database.Classify(err)
	}
	return e, nil
}

func (r *repo) ListByBorrower(ctx context.Context, borrowerID int64) ([]model.CartEntry, error) {
	const q = `
		SELECT ` + entryCols + `
		FROM cart_entries
		WHERE borrower_id = $1
		ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, q, borrowerID)
	if err != nil {
		return nil, database.Classify(err)
	}
	defer rows.Close()

	var out []model.CartEntry
	for rows.Next() {
		var e model.CartEntry
		if err := scanEntry(rows, &e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, database.Classify(rows.Err())
}

func (r *repo) UpdateDuration(ctx context.Context, id int64, endDate time.Time, days int, fee float64) error {
	const q = `
		UPDATE cart_entries
		SET end_date = $2, days = $3, fee = $4
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, endDate, days, fee)
	return database.Classify(err)
}

func (r *repo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cart_entries WHERE id=$1`, id)
	if err != nil {
		return false, database.Classify(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
