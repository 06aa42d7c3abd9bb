package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseLoanStatus_Canonical(t *testing.T) {
	for _, s := range []string{"pending", "approved", "active", "return_requested", "returned", "rejected"} {
		st, err := ParseLoanStatus(s)
		require.NoError(t, err)
		require.Equal(t, LoanStatus(s), st)
	}
}

func TestParseLoanStatus_LegacyAliases(t *testing.T) {
	cases := map[string]LoanStatus{
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
	for in, want := range cases {
		st, err := ParseLoanStatus(in)
		require.NoError(t, err, in)
		require.Equal(t, want, st, in)
	}
}

func TestParseLoanStatus_Unknown(t *testing.T) {
	for _, s := range []string{"", "panier", "PENDING", "garbage"} {
		_, err := ParseLoanStatus(s)
		require.Error(t, err, s)
	}
}

func TestNextStatus_Table(t *testing.T) {
	type tc struct {
		from  LoanStatus
		event LoanEvent
		to    LoanStatus
		ok    bool
	}
	cases := []tc{
		{StatusPending, EventApprove, StatusApproved, true},
		{StatusPending, EventReject, StatusRejected, true},
		{StatusActive, EventRequestReturn, StatusReturnRequested, true},
		{StatusReturnRequested, EventConfirmReturn, StatusReturned, true},
		{StatusActive, EventRequestExtension, StatusActive, true},
		{StatusReturnRequested, EventRequestExtension, StatusReturnRequested, true},
		{StatusActive, EventAcceptExtension, StatusActive, true},

		// illegal ones
		{StatusApproved, EventApprove, "", false},
		{StatusActive, EventApprove, "", false},
		{StatusReturned, EventConfirmReturn, "", false},
		{StatusRejected, EventReject, "", false},
		{StatusPending, EventRequestReturn, "", false},
		{StatusPending, EventRequestExtension, "", false},
	}
	for _, c := range cases {
		to, ok := NextStatus(c.from, c.event)
		require.Equal(t, c.ok, ok, "%s on %s", c.event, c.from)
		if ok {
			require.Equal(t, c.to, to)
		}
	}
}

func TestTerminal(t *testing.T) {
	require.True(t, StatusReturned.Terminal())
	require.True(t, StatusRejected.Terminal())
	require.False(t, StatusPending.Terminal())
	require.False(t, StatusReturnRequested.Terminal())
}

func TestEffectiveStatus_LazyActivation(t *testing.T) {
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	l := &Loan{Status: StatusApproved, StartDate: start}

	require.Equal(t, StatusApproved, l.EffectiveStatus(start.Add(-time.Hour)))
	require.Equal(t, StatusActive, l.EffectiveStatus(start))
	require.Equal(t, StatusActive, l.EffectiveStatus(start.Add(48*time.Hour)))

	// only approved loans are promoted
	p := &Loan{Status: StatusPending, StartDate: start}
	require.Equal(t, StatusPending, p.EffectiveStatus(start.Add(time.Hour)))
}

func TestRentalFeeArithmetic(t *testing.T) {
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	require.Equal(t, 3, RentalDays(start, start.AddDate(0, 0, 3)))
	require.Equal(t, 1, RentalDays(start, start))
	require.Equal(t, 30.0, RentalFee(3, 10.0))
	require.Equal(t, 70.0, RentalFee(7, 10.0))
}
