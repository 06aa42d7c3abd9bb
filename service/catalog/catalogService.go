package catalogsvc

import (
	"context"
	"log/slog"
	"strings"

	"lendoo/model"
	itemrepo "lendoo/repository/item"
	"lendoo/repository/storage"
	"lendoo/util/apperr"
)

// NewItem is the owner's listing payload. Image bytes are optional; an
// upload failure downgrades to an imageless listing instead of failing the
// whole creation.
type NewItem struct {
	Name             string
	Description      string
	Category         string
	DailyPrice       float64
	Deposit          float64
	Quantity         int
	Location         string
	Latitude         *float64
	Longitude        *float64
	Image            []byte
	ImageContentType string
}

type Repo interface {
	Create(ctx context.Context, it *model.Item) error
	ByID(ctx context.Context, id int64) (*model.Item, error)
	ListAvailable(ctx context.Context, f itemrepo.Filter) ([]model.Item, error)
	ByOwner(ctx context.Context, ownerID int64) ([]model.Item, error)
	Deactivate(ctx context.Context, ownerID, itemID int64) (bool, error)
}

type Service interface {
	AddItem(ctx context.Context, ownerID int64, in NewItem) (*model.Item, error)
	ListAvailable(ctx context.Context, f itemrepo.Filter) ([]model.Item, error)
	Detail(ctx context.Context, id int64) (*model.Item, error)
	MyItems(ctx context.Context, ownerID int64) ([]model.Item, error)
	Deactivate(ctx context.Context, ownerID, itemID int64) error
	Categories() []string
}

type service struct {
	r   Repo
	up  storage.Uploader
	log *slog.Logger
}

func New(r Repo, up storage.Uploader, log *slog.Logger) Service {
	return &service{r: r, up: up, log: log}
}

func (s *service) AddItem(ctx context.Context, ownerID int64, in NewItem) (*model.Item, error) {
	name := strings.TrimSpace(in.Name)
	desc := strings.TrimSpace(in.Description)
	switch {
	case name == "":
		return nil, apperr.New(apperr.CodeValidation, "name is required")
	case desc == "":
		return nil, apperr.New(apperr.CodeValidation, "description is required")
	case in.DailyPrice < 0:
		return nil, apperr.New(apperr.CodeValidation, "daily price must not be negative")
	case in.Deposit < 0:
		return nil, apperr.New(apperr.CodeValidation, "deposit must not be negative")
	case !model.ValidCategory(in.Category):
		return nil, apperr.New(apperr.CodeValidation, "unknown category")
	}
	qty := in.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 1 {
		return nil, apperr.New(apperr.CodeValidation, "quantity must be at least 1")
	}

	var imageURL *string
	if len(in.Image) > 0 && s.up != nil {
		url, err := s.up.Upload(ctx, in.Image, in.ImageContentType)
		if err != nil {
			// a listing without a photo is still a listing
			s.log.Warn("item image upload failed", "owner_id", ownerID, "err", err)
		} else {
			imageURL = &url
		}
	}

	it := &model.Item{
		OwnerID:     ownerID,
		Name:        name,
		Description: desc,
		Category:    in.Category,
		DailyPrice:  in.DailyPrice,
		Deposit:     in.Deposit,
		TotalQty:    qty,
		Location:    strings.TrimSpace(in.Location),
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		ImageURL:    imageURL,
	}
	if err := s.r.Create(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *service) ListAvailable(ctx context.Context, f itemrepo.Filter) ([]model.Item, error) {
	return s.r.ListAvailable(ctx, f)
}

func (s *service) Detail(ctx context.Context, id int64) (*model.Item, error) {
	return s.r.ByID(ctx, id)
}

func (s *service) MyItems(ctx context.Context, ownerID int64) ([]model.Item, error) {
	return s.r.ByOwner(ctx, ownerID)
}

func (s *service) Deactivate(ctx context.Context, ownerID, itemID int64) error {
	ok, err := s.r.Deactivate(ctx, ownerID, itemID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.New(apperr.CodeNotFound, "item not found or not yours")
	}
	return nil
}

func (s *service) Categories() []string { return model.ItemCategories }
