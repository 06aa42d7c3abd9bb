package reconcilesvc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lendoo/model"
	loanrepo "lendoo/repository/loan"
)

type repoMock struct {
	borrowed []loanrepo.LoanRow
	lent     []loanrepo.LoanRow
	pending  []loanrepo.LoanRow
}

func (m *repoMock) ListByBorrower(context.Context, int64) ([]loanrepo.LoanRow, error) {
	return m.borrowed, nil
}
func (m *repoMock) ListByLender(context.Context, int64) ([]loanrepo.LoanRow, error) {
	return m.lent, nil
}
func (m *repoMock) PendingByLender(context.Context, int64) ([]loanrepo.LoanRow, error) {
	return m.pending, nil
}

var projNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func newTestService(m *repoMock) *service {
	return &service{r: m, now: func() time.Time { return projNow }}
}

func strPtr(s string) *string { return &s }

func TestProjection_ItemFallback(t *testing.T) {
	m := &repoMock{borrowed: []loanrepo.LoanRow{
		{
			LoanID: 1, ItemID: 7, Status: "pending",
			StartDate: projNow, EndDate: projNow.AddDate(0, 0, 3),
			// item was deactivated and dropped from the join
			ItemName: nil, CounterpartyName: strPtr("Alice"),
		},
	}}
	svc := newTestService(m)

	views, err := svc.MyBorrowedLoans(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, "Item #7", views[0].ItemName)
	require.Equal(t, "Alice", views[0].Counterparty)
}

func TestProjection_LazyActivation(t *testing.T) {
	m := &repoMock{borrowed: []loanrepo.LoanRow{
		{
			LoanID: 1, ItemID: 7, Status: "approved",
			StartDate: projNow.AddDate(0, 0, -1), EndDate: projNow.AddDate(0, 0, 2),
			ItemName: strPtr("Drill"),
		},
		{
			LoanID: 2, ItemID: 8, Status: "approved",
			StartDate: projNow.AddDate(0, 0, 1), EndDate: projNow.AddDate(0, 0, 4),
			ItemName: strPtr("Tent"),
		},
	}}
	svc := newTestService(m)

	views, err := svc.MyBorrowedLoans(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, model.StatusActive, views[0].Status)   // start date passed
	require.Equal(t, model.StatusApproved, views[1].Status) // not started yet
}

func TestProjection_LegacyStatusStrings(t *testing.T) {
	m := &repoMock{lent: []loanrepo.LoanRow{
		{
			LoanID: 3, ItemID: 9, Status: "en attente",
			StartDate: projNow, EndDate: projNow.AddDate(0, 0, 2),
			ItemName: strPtr("Kayak"),
		},
	}}
	svc := newTestService(m)

	views, err := svc.MyLentLoans(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, model.StatusPending, views[0].Status)
}

func TestProjection_UnknownStatusRejected(t *testing.T) {
	m := &repoMock{pending: []loanrepo.LoanRow{
		{LoanID: 4, ItemID: 9, Status: "definitely-not-a-status",
			StartDate: projNow, EndDate: projNow.AddDate(0, 0, 2)},
	}}
	svc := newTestService(m)

	_, err := svc.PendingRequestsForOwner(context.Background(), 1)
	require.Error(t, err)
}
