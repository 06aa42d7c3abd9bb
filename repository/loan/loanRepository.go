// repository/loan/loanRepository.go
package loan

import (
	"context"
	"database/sql"
	"time"

	"lendoo/model"
	"lendoo/util/database"
)

// LoanRow is a loan joined with its item snapshot and the counterparty's
// display info. The item side comes from a LEFT JOIN so history stays
// readable after a listing is deactivated or deleted.
type LoanRow struct {
	LoanID             int64      `json:"loan_id"`
	ItemID             int64      `json:"item_id"`
	Status             string     `json:"status"`
	StartDate          time.Time  `json:"start_date"`
	EndDate            time.Time  `json:"end_date"`
	ActualReturnDate   *time.Time `json:"actual_return_date,omitempty"`
	Fee                float64    `json:"fee"`
	DepositPaid        float64    `json:"deposit_paid"`
	DepositReturned    bool       `json:"deposit_returned"`
	ExtensionRequested bool       `json:"extension_requested"`
	ProposedEndDate    *time.Time `json:"proposed_end_date,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`

	ItemName        *string `json:"item_name,omitempty"`
	ItemDescription *string `json:"item_description,omitempty"`
	ItemImageURL    *string `json:"item_image_url,omitempty"`

	CounterpartyName  *string `json:"counterparty_name,omitempty"`
	CounterpartyEmail *string `json:"counterparty_email,omitempty"`
}

type Repo interface {
	Insert(ctx context.Context, l *model.Loan) error
	ByID(ctx context.Context, id int64) (*model.Loan, error)

	// UpdateStatus flips status from -> to in one conditional statement.
	// false means the loan was not in the expected status anymore.
	UpdateStatus(ctx context.Context, id int64, from, to model.LoanStatus) (bool, error)

	// MarkReturned closes a return_requested loan: terminal status, actual
	// return date, deposit flagged returned.
	MarkReturned(ctx context.Context, id int64, returnedAt time.Time) (bool, error)

	RequestExtension(ctx context.Context, id int64, stored model.LoanStatus, proposedEnd time.Time) (bool, error)
	AcceptExtension(ctx context.Context, id int64, stored model.LoanStatus, newEnd time.Time, newFee float64) (bool, error)
	DeclineExtension(ctx context.Context, id int64, stored model.LoanStatus) (bool, error)

	ListByBorrower(ctx context.Context, borrowerID int64) ([]LoanRow, error)
	ListByLender(ctx context.Context, lenderID int64) ([]LoanRow, error)
	PendingByLender(ctx context.Context, lenderID int64) ([]LoanRow, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Insert(ctx context.Context, l *model.Loan) error {
	const q = `
		INSERT INTO loans (item_id, borrower_id, lender_id, status, start_date, end_date,
			fee, deposit_paid, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, q,
		l.ItemID, l.BorrowerID, l.LenderID, string(l.Status), l.StartDate, l.EndDate,
		l.Fee, l.DepositPaid, l.Notes,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	return database.Classify(err)
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Loan, error) {
	const q = `
		SELECT id, item_id, borrower_id, lender_id, status, start_date, end_date,
			actual_return_date, fee, deposit_paid, deposit_returned,
			extension_requested, proposed_end_date, notes, created_at, updated_at
		FROM loans
		WHERE id = $1`
	l := &model.Loan{}
	var rawStatus string
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&l.ID, &l.ItemID, &l.BorrowerID, &l.LenderID, &rawStatus,
		&l.StartDate, &l.EndDate, &l.ActualReturnDate,
		&l.Fee, &l.DepositPaid, &l.DepositReturned,
		&l.ExtensionRequested, &l.ProposedEndDate, &l.Notes,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, database.Classify(err)
	}
	st, err := model.ParseLoanStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	l.Status = st
	return l, nil
}

func (r *repo) UpdateStatus(ctx context.Context, id int64, from, to model.LoanStatus) (bool, error) {
	const q = `
		UPDATE loans
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2`
	res, err := r.db.ExecContext(ctx, q, id, string(from), string(to))
	if err != nil {
		return false, database.Classify(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *repo) MarkReturned(ctx context.Context, id int64, returnedAt time.Time) (bool, error) {
	const q = `
		UPDATE loans
		SET status = $2, actual_return_date = $3, deposit_returned = TRUE, updated_at = NOW()
		WHERE id = $1 AND status = $4`
	res, err := r.db.ExecContext(ctx, q,
		id, string(model.StatusReturned), returnedAt, string(model.StatusReturnRequested))
	if err != nil {
		return false, database.Classify(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *repo) RequestExtension(ctx context.Context, id int64, stored model.LoanStatus, proposedEnd time.Time) (bool, error) {
	const q = `
		UPDATE loans
		SET extension_requested = TRUE, proposed_end_date = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2 AND NOT extension_requested`
	res, err := r.db.ExecContext(ctx, q, id, string(stored), proposedEnd)
	if err != nil {
		return false, database.Classify(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *repo) AcceptExtension(ctx context.Context, id int64, stored model.LoanStatus, newEnd time.Time, newFee float64) (bool, error) {
	const q = `
		UPDATE loans
		SET end_date = $3, fee = $4,
			extension_requested = FALSE, proposed_end_date = NULL, updated_at = NOW()
		WHERE id = $1 AND status = $2 AND extension_requested`
	res, err := r.db.ExecContext(ctx, q, id, string(stored), newEnd, newFee)
	if err != nil {
		return false, database.Classify(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *repo) DeclineExtension(ctx context.Context, id int64, stored model.LoanStatus) (bool, error) {
	const q = `
		UPDATE loans
		SET extension_requested = FALSE, proposed_end_date = NULL, updated_at = NOW()
		WHERE id = $1 AND status = $2 AND extension_requested`
	res, err := r.db.ExecContext(ctx, q, id, string(stored))
	if err != nil {
		return false, database.Classify(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

const rowCols = `
	l.id, l.item_id, l.status, l.start_date, l.end_date, l.actual_return_date,
	l.fee, l.deposit_paid, l.deposit_returned, l.extension_requested, l.proposed_end_date,
	l.created_at,
	i.name, i.description, i.image_url,
	u.display_name, u.email`

func (r *repo) queryRows(ctx context.Context, q string, arg int64) ([]LoanRow, error) {
	rows, err := r.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, database.Classify(err)
	}
	defer rows.Close()

	var out []LoanRow
	for rows.Next() {
		var lr LoanRow
		if err := rows.Scan(
			&lr.LoanID, &lr.ItemID, &lr.Status, &lr.StartDate, &lr.EndDate, &lr.ActualReturnDate,
			&lr.Fee, &lr.DepositPaid, &lr.DepositReturned, &lr.ExtensionRequested, &lr.ProposedEndDate,
			&lr.CreatedAt,
			&lr.ItemName, &lr.ItemDescription, &lr.ItemImageURL,
			&lr.CounterpartyName, &lr.CounterpartyEmail,
		); err != nil {
			return nil, err
		}
		out = append(out, lr)
	}
	return out, database.Classify(rows.Err())
}

func (r *repo) ListByBorrower(ctx context.Context, borrowerID int64) ([]LoanRow, error) {
	const q = `
		SELECT ` + rowCols + `
		FROM loans l
		LEFT JOIN items i ON i.id = l.item_id
		LEFT JOIN users u ON u.id = l.lender_id
		WHERE l.borrower_id = $1
		ORDER BY l.created_at DESC, l.id DESC`
	return r.queryRows(ctx, q, borrowerID)
}

func (r *repo) ListByLender(ctx context.Context, lenderID int64) ([]LoanRow, error) {
	const q = `
		SELECT ` + rowCols + `
		FROM loans l
		LEFT JOIN items i ON i.id = l.item_id
		LEFT JOIN users u ON u.id = l.borrower_id
		WHERE l.lender_id = $1
		ORDER BY l.created_at DESC, l.id DESC`
	return r.queryRows(ctx, q, lenderID)
}

func (r *repo) PendingByLender(ctx context.Context, lenderID int64) ([]LoanRow, error) {
	const q = `
		SELECT ` + rowCols + `
		FROM loans l
		LEFT JOIN items i ON i.id = l.item_id
		LEFT JOIN users u ON u.id = l.borrower_id
		WHERE l.lender_id = $1 AND l.status = 'pending'
		ORDER BY l.created_at DESC, l.id DESC`
	return r.queryRows(ctx, q, lenderID)
}
