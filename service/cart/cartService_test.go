package cartsvc

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lendoo/model"
	"lendoo/util/apperr"
)

// ---- fakes ----

type fakeCatalog struct {
	items map[int64]*model.Item
}

func (f *fakeCatalog) ByID(_ context.Context, id int64) (*model.Item, error) {
	it, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *it
	return &cp, nil
}

type fakeCartRepo struct {
	entries map[int64]*model.CartEntry
	nextID  int64
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{entries: map[int64]*model.CartEntry{}}
}

func (f *fakeCartRepo) Insert(_ context.Context, e *model.CartEntry) error {
	f.nextID++
	e.ID = f.nextID
	cp := *e
	f.entries[e.ID] = &cp
	return nil
}

func (f *fakeCartRepo) ByID(_ context.Context, id int64) (*model.CartEntry, error) {
	e, ok := f.entries[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *e
	return &cp, nil
}

func (f *fakeCartRepo) ByBorrowerAndItem(_ context.Context, borrowerID, itemID int64) (*model.CartEntry, error) {
	for _, e := range f.entries {
		if e.BorrowerID == borrowerID && e.ItemID == itemID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeCartRepo) ListByBorrower(_ context.Context, borrowerID int64) ([]model.CartEntry, error) {
	var out []model.CartEntry
	for id := int64(1); id <= f.nextID; id++ {
		if e, ok := f.entries[id]; ok && e.BorrowerID == borrowerID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeCartRepo) UpdateDuration(_ context.Context, id int64, endDate time.Time, days int, fee float64) error {
	e := f.entries[id]
	e.EndDate = endDate
	e.Days = days
	e.Fee = fee
	return nil
}

func (f *fakeCartRepo) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := f.entries[id]; !ok {
		return false, nil
	}
	delete(f.entries, id)
	return true, nil
}

type checkoutFn func(ctx context.Context, e *model.CartEntry) (*model.Loan, error)

func (fn checkoutFn) Checkout(ctx context.Context, e *model.CartEntry) (*model.Loan, error) {
	return fn(ctx, e)
}

// ---- helpers ----

var testNow = time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)

func newTestService(cat *fakeCatalog, repo *fakeCartRepo, checkout checkoutFn) *service {
	return &service{
		r:     repo,
		items: cat,
		loans: checkout,
		now:   func() time.Time { return testNow },
	}
}

func twoItemCatalog() *fakeCatalog {
	return &fakeCatalog{items: map[int64]*model.Item{
		10: {ID: 10, OwnerID: 1, Name: "Drill", DailyPrice: 15, Deposit: 50,
			TotalQty: 2, AvailableQty: 2, Active: true},
		20: {ID: 20, OwnerID: 1, Name: "Tent", DailyPrice: 8, Deposit: 30,
			TotalQty: 1, AvailableQty: 1, Active: true},
	}}
}

// ---- tests ----

func TestAdd_Defaults(t *testing.T) {
	cat := twoItemCatalog()
	svc := newTestService(cat, newFakeCartRepo(), nil)

	e, err := svc.Add(context.Background(), 2, 10, 0)
	require.NoError(t, err)
	require.Equal(t, 3, e.Days) // default duration
	require.Equal(t, 45.0, e.Fee)
	require.Equal(t, 50.0, e.Deposit)
	require.Equal(t, e.StartDate.AddDate(0, 0, 3), e.EndDate)
	require.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), e.StartDate)

	// the cart never touches inventory
	require.Equal(t, 2, cat.items[10].AvailableQty)
}

func TestAdd_ExistingEntryExtends(t *testing.T) {
	cat := twoItemCatalog()
	repo := newFakeCartRepo()
	svc := newTestService(cat, repo, nil)

	first, err := svc.Add(context.Background(), 2, 10, 3)
	require.NoError(t, err)

	second, err := svc.Add(context.Background(), 2, 10, 2)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID) // no duplicate entry
	require.Equal(t, 5, second.Days)
	require.Equal(t, 75.0, second.Fee)
	require.Len(t, repo.entries, 1)
}

func TestAdd_OutOfStock(t *testing.T) {
	cat := twoItemCatalog()
	cat.items[20].AvailableQty = 0
	svc := newTestService(cat, newFakeCartRepo(), nil)

	_, err := svc.Add(context.Background(), 2, 20, 3)
	require.Equal(t, apperr.CodeOutOfStock, apperr.CodeOf(err))
}

func TestAdd_OwnItem(t *testing.T) {
	svc := newTestService(twoItemCatalog(), newFakeCartRepo(), nil)

	_, err := svc.Add(context.Background(), 1, 10, 3)
	require.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
}

func TestUpdateDuration_RecomputesFee(t *testing.T) {
	cat := twoItemCatalog()
	repo := newFakeCartRepo()
	svc := newTestService(cat, repo, nil)

	e, err := svc.Add(context.Background(), 2, 10, 3)
	require.NoError(t, err)
	require.Equal(t, 45.0, e.Fee) // 3 x 15.00

	e2, err := svc.UpdateDuration(context.Background(), 2, e.ID, 4)
	require.NoError(t, err)
	require.Equal(t, 60.0, e2.Fee) // 4 x 15.00
	require.Equal(t, e.StartDate.AddDate(0, 0, 4), e2.EndDate)
	require.Equal(t, 2, cat.items[10].AvailableQty) // catalog untouched
}

func TestUpdateDuration_ZeroRemoves(t *testing.T) {
	repo := newFakeCartRepo()
	svc := newTestService(twoItemCatalog(), repo, nil)

	e, err := svc.Add(context.Background(), 2, 10, 3)
	require.NoError(t, err)

	gone, err := svc.UpdateDuration(context.Background(), 2, e.ID, 0)
	require.NoError(t, err)
	require.Nil(t, gone)
	require.Empty(t, repo.entries)
}

func TestRemove_OwnershipEnforced(t *testing.T) {
	cat := twoItemCatalog()
	repo := newFakeCartRepo()
	svc := newTestService(cat, repo, nil)

	e, err := svc.Add(context.Background(), 2, 10, 3)
	require.NoError(t, err)

	err = svc.Remove(context.Background(), 3, e.ID)
	require.Equal(t, apperr.CodeForbidden, apperr.CodeOf(err))

	require.NoError(t, svc.Remove(context.Background(), 2, e.ID))
	require.Empty(t, repo.entries)
	require.Equal(t, 2, cat.items[10].AvailableQty) // add+remove round trip
}

func TestCheckoutAll_PartialFailure(t *testing.T) {
	cat := twoItemCatalog()
	repo := newFakeCartRepo()

	checkout := checkoutFn(func(_ context.Context, e *model.CartEntry) (*model.Loan, error) {
		if e.ItemID == 20 {
			return nil, apperr.New(apperr.CodeOutOfStock, "no unit available")
		}
		return &model.Loan{ID: 500 + e.ID, Status: model.StatusPending}, nil
	})
	svc := newTestService(cat, repo, checkout)

	e1, err := svc.Add(context.Background(), 2, 10, 3)
	require.NoError(t, err)
	e2, err := svc.Add(context.Background(), 2, 20, 3)
	require.NoError(t, err)

	report, err := svc.CheckoutAll(context.Background(), 2)
	require.NoError(t, err)

	require.Len(t, report.Submitted, 1)
	require.Equal(t, e1.ID, report.Submitted[0].EntryID)
	require.Equal(t, int64(500+e1.ID), report.Submitted[0].LoanID)

	require.Len(t, report.Failed, 1)
	require.Equal(t, e2.ID, report.Failed[0].EntryID)
	require.Equal(t, apperr.CodeOutOfStock, report.Failed[0].Code)

	// the successful entry left the cart, the failed one stayed
	_, ok := repo.entries[e1.ID]
	require.False(t, ok)
	_, ok = repo.entries[e2.ID]
	require.True(t, ok)
}

func TestCheckoutAll_EmptyCart(t *testing.T) {
	svc := newTestService(twoItemCatalog(), newFakeCartRepo(), nil)

	report, err := svc.CheckoutAll(context.Background(), 2)
	require.NoError(t, err)
	require.Empty(t, report.Submitted)
	require.Empty(t, report.Failed)
}
