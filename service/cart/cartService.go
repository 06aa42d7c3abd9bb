package cartsvc

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"lendoo/model"
	"lendoo/util/apperr"
)

const defaultDays = 3

// Catalog is the read-only view the cart needs. Availability is checked
// optimistically here; the real reservation happens at checkout.
type Catalog interface {
	ByID(ctx context.Context, id int64) (*model.Item, error)
}

type Checkouter interface {
	Checkout(ctx context.Context, entry *model.CartEntry) (*model.Loan, error)
}

type Repo interface {
	Insert(ctx context.Context, e *model.CartEntry) error
	ByID(ctx context.Context, id int64) (*model.CartEntry, error)
	ByBorrowerAndItem(ctx context.Context, borrowerID, itemID int64) (*model.CartEntry, error)
	ListByBorrower(ctx context.Context, borrowerID int64) ([]model.CartEntry, error)
	UpdateDuration(ctx context.Context, id int64, endDate time.Time, days int, fee float64) error
	Delete(ctx context.Context, id int64) (bool, error)
}

// CheckoutReport is the per-entry outcome of CheckoutAll. Submission is not
// atomic across entries: some entries become pending loans while others stay
// in the cart with the error that kept them there.
type CheckoutReport struct {
	Submitted []SubmittedEntry `json:"submitted"`
	Failed    []FailedEntry    `json:"failed"`
}

type SubmittedEntry struct {
	EntryID int64 `json:"entry_id"`
	ItemID  int64 `json:"item_id"`
	LoanID  int64 `json:"loan_id"`
}

type FailedEntry struct {
	EntryID int64          `json:"entry_id"`
	ItemID  int64          `json:"item_id"`
	Code    apperr.ErrCode `json:"code"`
	Message string         `json:"message"`
}

type Service interface {
	Add(ctx context.Context, borrowerID, itemID int64, days int) (*model.CartEntry, error)
	List(ctx context.Context, borrowerID int64) ([]model.CartEntry, error)
	// UpdateDuration returns nil when newDays < 1 removed the entry.
	UpdateDuration(ctx context.Context, borrowerID, entryID int64, newDays int) (*model.CartEntry, error)
	Remove(ctx context.Context, borrowerID, entryID int64) error
	CheckoutAll(ctx context.Context, borrowerID int64) (*CheckoutReport, error)
}

type service struct {
	r     Repo
	items Catalog
	loans Checkouter
	now   func() time.Time
}

func New(r Repo, items Catalog, loans Checkouter) Service {
	return &service{r: r, items: items, loans: loans, now: time.Now}
}

func (s *service) today() time.Time {
	y, m, d := s.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *service) Add(ctx context.Context, borrowerID, itemID int64, days int) (*model.CartEntry, error) {
	if days <= 0 {
		days = defaultDays
	}

	it, err := s.items.ByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.CodeNotFound, "item not found")
		}
		return nil, err
	}
	if it.OwnerID == borrowerID {
		return nil, apperr.New(apperr.CodeValidation, "cannot rent your own item")
	}
	if !it.Active || it.AvailableQty <= 0 {
		return nil, apperr.New(apperr.CodeOutOfStock, "item not available")
	}

	// one entry per (borrower, item): adding again extends the duration
	existing, err := s.r.ByBorrowerAndItem(ctx, borrowerID, itemID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return s.applyDuration(ctx, existing, it, existing.Days+days)
	}

	start := s.today()
	e := &model.CartEntry{
		BorrowerID: borrowerID,
		ItemID:     itemID,
		StartDate:  start,
		EndDate:    start.AddDate(0, 0, days),
		Days:       days,
		Fee:        model.RentalFee(days, it.DailyPrice),
		Deposit:    it.Deposit,
	}
	if err := s.r.Insert(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *service) applyDuration(ctx context.Context, e *model.CartEntry, it *model.Item, days int) (*model.CartEntry, error) {
	e.Days = days
	e.EndDate = e.StartDate.AddDate(0, 0, days)
	e.Fee = model.RentalFee(days, it.DailyPrice)
	if err := s.r.UpdateDuration(ctx, e.ID, e.EndDate, e.Days, e.Fee); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *service) List(ctx context.Context, borrowerID int64) ([]model.CartEntry, error) {
	return s.r.ListByBorrower(ctx, borrowerID)
}

func (s *service) UpdateDuration(ctx context.Context, borrowerID, entryID int64, newDays int) (*model.CartEntry, error) {
	e, err := s.entryOf(ctx, borrowerID, entryID)
	if err != nil {
		return nil, err
	}
	if newDays < 1 {
		if _, err := s.r.Delete(ctx, e.ID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	it, err := s.items.ByID(ctx, e.ItemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.CodeNotFound, "item no longer exists")
		}
		return nil, err
	}
	return s.applyDuration(ctx, e, it, newDays)
}

func (s *service) Remove(ctx context.Context, borrowerID, entryID int64) error {
	e, err := s.entryOf(ctx, borrowerID, entryID)
	if err != nil {
		return err
	}
	if _, err := s.r.Delete(ctx, e.ID); err != nil {
		return err
	}
	return nil
}

func (s *service) entryOf(ctx context.Context, borrowerID, entryID int64) (*model.CartEntry, error) {
	e, err := s.r.ByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.CodeNotFound, "cart entry not found")
		}
		return nil, err
	}
	if e.BorrowerID != borrowerID {
		return nil, apperr.New(apperr.CodeForbidden, "not your cart entry")
	}
	return e, nil
}

func (s *service) CheckoutAll(ctx context.Context, borrowerID int64) (*CheckoutReport, error) {
	entries, err := s.r.ListByBorrower(ctx, borrowerID)
	if err != nil {
		return nil, err
	}

	report := &CheckoutReport{}
	for i := range entries {
		e := &entries[i]
		l, err := s.loans.Checkout(ctx, e)
		if err != nil {
			// the entry stays in the cart so the user can retry or drop it
			report.Failed = append(report.Failed, FailedEntry{
				EntryID: e.ID,
				ItemID:  e.ItemID,
				Code:    apperr.CodeOf(err),
				Message: err.Error(),
			})
			continue
		}
		if _, err := s.r.Delete(ctx, e.ID); err != nil {
			return nil, err
		}
		report.Submitted = append(report.Submitted, SubmittedEntry{
			EntryID: e.ID,
			ItemID:  e.ItemID,
			LoanID:  l.ID,
		})
	}
	return report, nil
}
