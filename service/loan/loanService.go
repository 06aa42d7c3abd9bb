// Package loansvc owns the loan lifecycle state machine. Every transition
// is a single conditional update at the storage boundary; checkout is the
// one two-step operation and carries its own compensation.
package loansvc

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"lendoo/model"
	"lendoo/util/apperr"
)

// Inventory is the slice of the catalog the lifecycle needs: atomic unit
// accounting plus the price/deposit snapshot at checkout.
type Inventory interface {
	ByID(ctx context.Context, id int64) (*model.Item, error)
	ReserveUnit(ctx context.Context, itemID int64) error
	ReleaseUnit(ctx context.Context, itemID int64) error
}

type Repo interface {
	Insert(ctx context.Context, l *model.Loan) error
	ByID(ctx context.Context, id int64) (*model.Loan, error)
	UpdateStatus(ctx context.Context, id int64, from, to model.LoanStatus) (bool, error)
	MarkReturned(ctx context.Context, id int64, returnedAt time.Time) (bool, error)
	RequestExtension(ctx context.Context, id int64, stored model.LoanStatus, proposedEnd time.Time) (bool, error)
	AcceptExtension(ctx context.Context, id int64, stored model.LoanStatus, newEnd time.Time, newFee float64) (bool, error)
	DeclineExtension(ctx context.Context, id int64, stored model.LoanStatus) (bool, error)
}

type Service interface {
	// Checkout converts a staged cart entry into a pending loan, reserving
	// one unit. On OUT_OF_STOCK the entry must be left in the cart.
	Checkout(ctx context.Context, entry *model.CartEntry) (*model.Loan, error)

	Approve(ctx context.Context, lenderID, loanID int64) error
	Reject(ctx context.Context, lenderID, loanID int64) error
	RequestReturn(ctx context.Context, borrowerID, loanID int64) error
	ConfirmReturn(ctx context.Context, lenderID, loanID int64) error

	// RequestExtension proposes a new total duration of newDays for the
	// rental; the status is left unchanged until the lender decides.
	RequestExtension(ctx context.Context, borrowerID, loanID int64, newDays int) error
	AcceptExtension(ctx context.Context, lenderID, loanID int64) error
	DeclineExtension(ctx context.Context, lenderID, loanID int64) error
}

type service struct {
	items Inventory
	loans Repo
	log   *slog.Logger
	now   func() time.Time
}

func New(items Inventory, loans Repo, log *slog.Logger) Service {
	return &service{items: items, loans: loans, log: log, now: time.Now}
}

func (s *service) Checkout(ctx context.Context, entry *model.CartEntry) (*model.Loan, error) {
	it, err := s.items.ByID(ctx, entry.ItemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.CodeNotFound, "item no longer exists")
		}
		return nil, err
	}
	if !it.Active {
		return nil, apperr.New(apperr.CodeOutOfStock, "item was removed from the catalog")
	}
	if it.OwnerID == entry.BorrowerID {
		return nil, apperr.New(apperr.CodeValidation, "cannot borrow your own item")
	}
	if entry.EndDate.Before(entry.StartDate) {
		return nil, apperr.New(apperr.CodeValidation, "end date before start date")
	}

	// fee and deposit are fixed here, from the item as it is right now
	days := model.RentalDays(entry.StartDate, entry.EndDate)
	l := &model.Loan{
		ItemID:      it.ID,
		BorrowerID:  entry.BorrowerID,
		LenderID:    it.OwnerID,
		Status:      model.StatusPending,
		StartDate:   entry.StartDate,
		EndDate:     entry.EndDate,
		Fee:         model.RentalFee(days, it.DailyPrice),
		DepositPaid: it.Deposit,
	}

	if err := s.items.ReserveUnit(ctx, it.ID); err != nil {
		return nil, err
	}
	if err := s.loans.Insert(ctx, l); err != nil {
		// compensate the reservation, otherwise the unit leaks
		if relErr := s.items.ReleaseUnit(ctx, it.ID); relErr != nil {
			s.log.Error("checkout compensation failed, unit leaked",
				"item_id", it.ID, "err", relErr)
		}
		return nil, err
	}
	return l, nil
}

// step loads the loan, checks the actor and the transition table against
// the effective status, then performs the conditional flip. A zero
// rows-affected result means the stored status moved underneath us.
func (s *service) step(ctx context.Context, loanID, actorID int64, lenderActs bool, event model.LoanEvent) (*model.Loan, error) {
	l, err := s.loans.ByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.CodeNotFound, "loan not found")
		}
		return nil, err
	}
	if lenderActs && l.LenderID != actorID {
		return nil, apperr.New(apperr.CodeForbidden, "only the lender may do this")
	}
	if !lenderActs && l.BorrowerID != actorID {
		return nil, apperr.New(apperr.CodeForbidden, "only the borrower may do this")
	}

	eff := l.EffectiveStatus(s.now())
	next, ok := model.NextStatus(eff, event)
	if !ok {
		return nil, apperr.New(apperr.CodeInvalidTransition,
			string(event)+" not allowed from status "+string(eff))
	}
	changed, err := s.loans.UpdateStatus(ctx, l.ID, l.Status, next)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, apperr.New(apperr.CodeInvalidTransition, "loan changed, reload and retry")
	}
	l.Status = next
	return l, nil
}

func (s *service) Approve(ctx context.Context, lenderID, loanID int64) error {
	_, err := s.step(ctx, loanID, lenderID, true, model.EventApprove)
	return err
}

func (s *service) Reject(ctx context.Context, lenderID, loanID int64) error {
	l, err := s.step(ctx, loanID, lenderID, true, model.EventReject)
	if err != nil {
		return err
	}
	// the pending reservation goes back on the shelf, exactly once
	if err := s.items.ReleaseUnit(ctx, l.ItemID); err != nil {
		s.log.Error("release after reject failed", "loan_id", l.ID, "item_id", l.ItemID, "err", err)
		return err
	}
	return nil
}

func (s *service) RequestReturn(ctx context.Context, borrowerID, loanID int64) error {
	_, err := s.step(ctx, loanID, borrowerID, false, model.EventRequestReturn)
	return err
}

func (s *service) ConfirmReturn(ctx context.Context, lenderID, loanID int64) error {
	l, err := s.loans.ByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.New(apperr.CodeNotFound, "loan not found")
		}
		return err
	}
	if l.LenderID != lenderID {
		return apperr.New(apperr.CodeForbidden, "only the lender may do this")
	}
	if _, ok := model.NextStatus(l.EffectiveStatus(s.now()), model.EventConfirmReturn); !ok {
		return apperr.New(apperr.CodeInvalidTransition,
			"confirm_return not allowed from status "+string(l.Status))
	}

	changed, err := s.loans.MarkReturned(ctx, l.ID, s.now())
	if err != nil {
		return err
	}
	if !changed {
		return apperr.New(apperr.CodeInvalidTransition, "loan changed, reload and retry")
	}
	if err := s.items.ReleaseUnit(ctx, l.ItemID); err != nil {
		s.log.Error("release after return failed", "loan_id", l.ID, "item_id", l.ItemID, "err", err)
		return err
	}
	return nil
}

func (s *service) RequestExtension(ctx context.Context, borrowerID, loanID int64, newDays int) error {
	l, err := s.loans.ByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.New(apperr.CodeNotFound, "loan not found")
		}
		return err
	}
	if l.BorrowerID != borrowerID {
		return apperr.New(apperr.CodeForbidden, "only the borrower may do this")
	}
	eff := l.EffectiveStatus(s.now())
	if _, ok := model.NextStatus(eff, model.EventRequestExtension); !ok {
		return apperr.New(apperr.CodeInvalidTransition,
			"request_extension not allowed from status "+string(eff))
	}
	currentDays := model.RentalDays(l.StartDate, l.EndDate)
	if newDays <= currentDays {
		return apperr.New(apperr.CodeValidation, "extension must be longer than the current duration")
	}

	proposedEnd := l.StartDate.AddDate(0, 0, newDays)
	changed, err := s.loans.RequestExtension(ctx, l.ID, l.Status, proposedEnd)
	if err != nil {
		return err
	}
	if !changed {
		return apperr.New(apperr.CodeInvalidTransition, "extension already requested or loan changed")
	}
	return nil
}

func (s *service) AcceptExtension(ctx context.Context, lenderID, loanID int64) error {
	l, err := s.loans.ByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.New(apperr.CodeNotFound, "loan not found")
		}
		return err
	}
	if l.LenderID != lenderID {
		return apperr.New(apperr.CodeForbidden, "only the lender may do this")
	}
	eff := l.EffectiveStatus(s.now())
	if _, ok := model.NextStatus(eff, model.EventAcceptExtension); !ok {
		return apperr.New(apperr.CodeInvalidTransition,
			"accept_extension not allowed from status "+string(eff))
	}
	if !l.ExtensionRequested || l.ProposedEndDate == nil {
		return apperr.New(apperr.CodeInvalidTransition, "no extension requested")
	}

	// recompute from the rate fixed at checkout, not the live item price
	oldDays := model.RentalDays(l.StartDate, l.EndDate)
	dailyRate := l.Fee / float64(oldDays)
	newDays := model.RentalDays(l.StartDate, *l.ProposedEndDate)
	newFee := model.RentalFee(newDays, dailyRate)

	changed, err := s.loans.AcceptExtension(ctx, l.ID, l.Status, *l.ProposedEndDate, newFee)
	if err != nil {
		return err
	}
	if !changed {
		return apperr.New(apperr.CodeInvalidTransition, "loan changed, reload and retry")
	}
	return nil
}

func (s *service) DeclineExtension(ctx context.Context, lenderID, loanID int64) error {
	l, err := s.loans.ByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.New(apperr.CodeNotFound, "loan not found")
		}
		return err
	}
	if l.LenderID != lenderID {
		return apperr.New(apperr.CodeForbidden, "only the lender may do this")
	}
	if !l.ExtensionRequested {
		return apperr.New(apperr.CodeInvalidTransition, "no extension requested")
	}

	changed, err := s.loans.DeclineExtension(ctx, l.ID, l.Status)
	if err != nil {
		return err
	}
	if !changed {
		return apperr.New(apperr.CodeInvalidTransition, "loan changed, reload and retry")
	}
	return nil
}
