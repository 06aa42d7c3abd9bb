// Package reconcilesvc builds the read-side views: a user's borrowed and
// lent loans joined with item snapshots and counterparty display info.
// Queries never mutate anything.
package reconcilesvc

import (
	"context"
	"fmt"
	"time"

	"lendoo/model"
	loanrepo "lendoo/repository/loan"
)

type Repo interface {
	ListByBorrower(ctx context.Context, borrowerID int64) ([]loanrepo.LoanRow, error)
	ListByLender(ctx context.Context, lenderID int64) ([]loanrepo.LoanRow, error)
	PendingByLender(ctx context.Context, lenderID int64) ([]loanrepo.LoanRow, error)
}

// LoanView is what the UI renders. Status is the effective one (an approved
// loan past its start date shows as active); missing item data degrades to a
// placeholder so history outlives deleted listings.
type LoanView struct {
	LoanID             int64            `json:"loan_id"`
	ItemID             int64            `json:"item_id"`
	ItemName           string           `json:"item_name"`
	ItemDescription    string           `json:"item_description,omitempty"`
	ItemImageURL       *string          `json:"item_image_url,omitempty"`
	Counterparty       string           `json:"counterparty"`
	CounterpartyEmail  string           `json:"counterparty_email,omitempty"`
	Status             model.LoanStatus `json:"status"`
	StartDate          time.Time        `json:"start_date"`
	EndDate            time.Time        `json:"end_date"`
	ActualReturnDate   *time.Time       `json:"actual_return_date,omitempty"`
	Fee                float64          `json:"fee"`
	DepositPaid        float64          `json:"deposit_paid"`
	DepositReturned    bool             `json:"deposit_returned"`
	ExtensionRequested bool             `json:"extension_requested"`
	ProposedEndDate    *time.Time       `json:"proposed_end_date,omitempty"`
}

type Service interface {
	MyBorrowedLoans(ctx context.Context, userID int64) ([]LoanView, error)
	MyLentLoans(ctx context.Context, userID int64) ([]LoanView, error)
	PendingRequestsForOwner(ctx context.Context, userID int64) ([]LoanView, error)
}

type service struct {
	r   Repo
	now func() time.Time
}

func New(r Repo) Service { return &service{r: r, now: time.Now} }

func (s *service) MyBorrowedLoans(ctx context.Context, userID int64) ([]LoanView, error) {
	rows, err := s.r.ListByBorrower(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.project(rows)
}

func (s *service) MyLentLoans(ctx context.Context, userID int64) ([]LoanView, error) {
	rows, err := s.r.ListByLender(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.project(rows)
}

func (s *service) PendingRequestsForOwner(ctx context.Context, userID int64) ([]LoanView, error) {
	rows, err := s.r.PendingByLender(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.project(rows)
}

func (s *service) project(rows []loanrepo.LoanRow) ([]LoanView, error) {
	now := s.now()
	out := make([]LoanView, 0, len(rows))
	for _, r := range rows {
		st, err := model.ParseLoanStatus(r.Status)
		if err != nil {
			return nil, err
		}
		l := model.Loan{Status: st, StartDate: r.StartDate}

		v := LoanView{
			LoanID:             r.LoanID,
			ItemID:             r.ItemID,
			ItemName:           fmt.Sprintf("Item #%d", r.ItemID),
			ItemImageURL:       r.ItemImageURL,
			Counterparty:       "Unknown user",
			Status:             l.EffectiveStatus(now),
			StartDate:          r.StartDate,
			EndDate:            r.EndDate,
			ActualReturnDate:   r.ActualReturnDate,
			Fee:                r.Fee,
			DepositPaid:        r.DepositPaid,
			DepositReturned:    r.DepositReturned,
			ExtensionRequested: r.ExtensionRequested,
			ProposedEndDate:    r.ProposedEndDate,
		}
		if r.ItemName != nil {
			v.ItemName = *r.ItemName
		}
		if r.ItemDescription != nil {
			v.ItemDescription = *r.ItemDescription
		}
		if r.CounterpartyName != nil {
			v.Counterparty = *r.CounterpartyName
		}
		if r.CounterpartyEmail != nil {
			v.CounterpartyEmail = *r.CounterpartyEmail
		}
		out = append(out, v)
	}
	return out, nil
}
