// model/loan.go
package model

import (
	"fmt"
	"time"
)

// LoanStatus is the closed set of lifecycle states. Anything read from
// storage goes through ParseLoanStatus first; unknown strings are rejected
// instead of leaking into the state machine.
type LoanStatus string

const (
	StatusPending         LoanStatus = "pending"
	StatusApproved        LoanStatus = "approved"
	StatusActive          LoanStatus = "active"
	StatusReturnRequested LoanStatus = "return_requested"
	StatusReturned        LoanStatus = "returned"
	StatusRejected        LoanStatus = "rejected"
)

// statusAliases maps the legacy French labels (and their drifted variants)
// that older clients wrote to the canonical status.
var statusAliases = map[string]LoanStatus{
	"en attente":     StatusPending,
	"approuvé":       StatusApproved,
	"accepté":        StatusApproved,
	"actif":          StatusActive,
	"en cours":       StatusActive,
	"demande_retour": StatusReturnRequested,
	"retourné":       StatusReturned,
	"terminé":        StatusReturned,
	"rejeté":         StatusRejected,
	"refusé":         StatusRejected,
}

func ParseLoanStatus(s string) (LoanStatus, error) {
	switch LoanStatus(s) {
	case StatusPending, StatusApproved, StatusActive,
		StatusReturnRequested, StatusReturned, StatusRejected:
		return LoanStatus(s), nil
	}
	if st, ok := statusAliases[s]; ok {
		return st, nil
	}
	return "", fmt.Errorf("unknown loan status %q", s)
}

func (s LoanStatus) Terminal() bool {
	return s == StatusReturned || s == StatusRejected
}

// LoanEvent is a lifecycle action requested by the borrower or the lender.
type LoanEvent string

const (
	EventApprove          LoanEvent = "approve"
	EventReject           LoanEvent = "reject"
	EventRequestReturn    LoanEvent = "request_return"
	EventConfirmReturn    LoanEvent = "confirm_return"
	EventRequestExtension LoanEvent = "request_extension"
	EventAcceptExtension  LoanEvent = "accept_extension"
	EventDeclineExtension LoanEvent = "decline_extension"
)

// transitions lists, per event, the states the event is legal from and the
// state it leads to. Extension events keep the status unchanged.
var transitions = map[LoanEvent]map[LoanStatus]LoanStatus{
	EventApprove:       {StatusPending: StatusApproved},
	EventReject:        {StatusPending: StatusRejected},
	EventRequestReturn: {StatusActive: StatusReturnRequested},
	EventConfirmReturn: {StatusReturnRequested: StatusReturned},
	EventRequestExtension: {
		StatusActive:          StatusActive,
		StatusReturnRequested: StatusReturnRequested,
	},
	EventAcceptExtension:  {StatusActive: StatusActive},
	EventDeclineExtension: {StatusActive: StatusActive},
}

// NextStatus resolves the transition table for event from the given state.
func NextStatus(from LoanStatus, event LoanEvent) (LoanStatus, bool) {
	to, ok := transitions[event][from]
	return to, ok
}

type Loan struct {
	ID                 int64      `json:"id"`
	ItemID             int64      `json:"item_id"`
	BorrowerID         int64      `json:"borrower_id"`
	LenderID           int64      `json:"lender_id"`
	Status             LoanStatus `json:"status"`
	StartDate          time.Time  `json:"start_date"`
	EndDate            time.Time  `json:"end_date"`
	ActualReturnDate   *time.Time `json:"actual_return_date,omitempty"`
	Fee                float64    `json:"fee"`
	DepositPaid        float64    `json:"deposit_paid"`
	DepositReturned    bool       `json:"deposit_returned"`
	ExtensionRequested bool       `json:"extension_requested"`
	ProposedEndDate    *time.Time `json:"proposed_end_date,omitempty"`
	Notes              *string    `json:"notes,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// EffectiveStatus computes the status as of now. There is no scheduler
// flipping approved loans to active on their start date, so the promotion
// happens lazily at read time.
func (l *Loan) EffectiveStatus(now time.Time) LoanStatus {
	if l.Status == StatusApproved && !now.Before(l.StartDate) {
		return StatusActive
	}
	return l.Status
}

// RentalDays counts whole days between start and end, minimum 1.
func RentalDays(start, end time.Time) int {
	d := int(end.Sub(start).Hours() / 24)
	if d < 1 {
		d = 1
	}
	return d
}

// RentalFee is the one place fee arithmetic lives.
func RentalFee(days int, dailyPrice float64) float64 {
	return float64(days) * dailyPrice
}
