package catalogsvc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"lendoo/model"
	itemrepo "lendoo/repository/item"
	"lendoo/util/apperr"
)

type repoMock struct {
	createFn     func(ctx context.Context, it *model.Item) error
	byIDFn       func(ctx context.Context, id int64) (*model.Item, error)
	listFn       func(ctx context.Context, f itemrepo.Filter) ([]model.Item, error)
	byOwnerFn    func(ctx context.Context, ownerID int64) ([]model.Item, error)
	deactivateFn func(ctx context.Context, ownerID, itemID int64) (bool, error)
}

func (m *repoMock) Create(ctx context.Context, it *model.Item) error {
	if m.createFn == nil {
		// same contract as the real repo: creation opens the full stock
		it.ID = 1
		it.Active = true
		it.AvailableQty = it.TotalQty
		return nil
	}
	return m.createFn(ctx, it)
}

func (m *repoMock) ByID(ctx context.Context, id int64) (*model.Item, error) {
	return m.byIDFn(ctx, id)
}

func (m *repoMock) ListAvailable(ctx context.Context, f itemrepo.Filter) ([]model.Item, error) {
	return m.listFn(ctx, f)
}

func (m *repoMock) ByOwner(ctx context.Context, ownerID int64) ([]model.Item, error) {
	return m.byOwnerFn(ctx, ownerID)
}

func (m *repoMock) Deactivate(ctx context.Context, ownerID, itemID int64) (bool, error) {
	return m.deactivateFn(ctx, ownerID, itemID)
}

type uploaderMock struct {
	url string
	err error
}

func (u *uploaderMock) Upload(context.Context, []byte, string) (string, error) {
	return u.url, u.err
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func validInput() NewItem {
	return NewItem{
		Name:        "Perceuse",
		Description: "Perceuse sans fil 18V",
		Category:    "bricolage",
		DailyPrice:  12.5,
		Deposit:     40,
		Quantity:    2,
		Location:    "Fort-de-France",
	}
}

func TestAddItem_Validation(t *testing.T) {
	svc := New(&repoMock{}, nil, discard())
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*NewItem)
	}{
		{"empty name", func(in *NewItem) { in.Name = " " }},
		{"empty description", func(in *NewItem) { in.Description = "" }},
		{"negative price", func(in *NewItem) { in.DailyPrice = -1 }},
		{"negative deposit", func(in *NewItem) { in.Deposit = -0.5 }},
		{"zero-or-less quantity", func(in *NewItem) { in.Quantity = -1 }},
		{"unknown category", func(in *NewItem) { in.Category = "weapons" }},
	}
	for _, c := range cases {
		in := validInput()
		c.mutate(&in)
		_, err := svc.AddItem(ctx, 1, in)
		require.Equal(t, apperr.CodeValidation, apperr.CodeOf(err), c.name)
	}
}

func TestAddItem_DefaultsQuantityToOne(t *testing.T) {
	svc := New(&repoMock{}, nil, discard())

	in := validInput()
	in.Quantity = 0
	it, err := svc.AddItem(context.Background(), 1, in)
	require.NoError(t, err)
	require.Equal(t, 1, it.TotalQty)
	require.Equal(t, 1, it.AvailableQty)
}

func TestAddItem_AvailableEqualsTotal(t *testing.T) {
	svc := New(&repoMock{}, nil, discard())

	it, err := svc.AddItem(context.Background(), 1, validInput())
	require.NoError(t, err)
	require.Equal(t, 2, it.TotalQty)
	require.Equal(t, 2, it.AvailableQty)
	require.Equal(t, int64(1), it.OwnerID)
}

func TestAddItem_ImageUploaded(t *testing.T) {
	up := &uploaderMock{url: "https://cdn.example/items/abc.jpg"}
	svc := New(&repoMock{}, up, discard())

	in := validInput()
	in.Image = []byte{0xff, 0xd8}
	in.ImageContentType = "image/jpeg"
	it, err := svc.AddItem(context.Background(), 1, in)
	require.NoError(t, err)
	require.NotNil(t, it.ImageURL)
	require.Equal(t, up.url, *it.ImageURL)
}

func TestAddItem_UploadFailureDoesNotBlock(t *testing.T) {
	up := &uploaderMock{err: errors.New("bucket unreachable")}
	svc := New(&repoMock{}, up, discard())

	in := validInput()
	in.Image = []byte{0xff, 0xd8}
	it, err := svc.AddItem(context.Background(), 1, in)
	require.NoError(t, err)
	require.Nil(t, it.ImageURL)
}

func TestDeactivate_NotFound(t *testing.T) {
	m := &repoMock{
		deactivateFn: func(ctx context.Context, ownerID, itemID int64) (bool, error) {
			return false, nil
		},
	}
	svc := New(m, nil, discard())

	err := svc.Deactivate(context.Background(), 1, 99)
	require.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}
