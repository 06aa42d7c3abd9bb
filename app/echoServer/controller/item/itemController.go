package item

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"lendoo/app/echoServer/jwtx"
	itemrepo "lendoo/repository/item"
	catalogsvc "lendoo/service/catalog"
	"lendoo/util/apperr"
)

type Controller struct {
	Svc catalogsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/items
func (h *Controller) Create(c echo.Context) error {
	var req CreateItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	var image []byte
	if req.ImageBase64 != "" {
		image, err = base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid image encoding"})
		}
	}

	it, err := h.Svc.AddItem(c.Request().Context(), uid, catalogsvc.NewItem{
		Name:             req.Name,
		Description:      req.Description,
		Category:         req.Category,
		DailyPrice:       req.DailyPrice,
		Deposit:          req.Deposit,
		Quantity:         req.Quantity,
		Location:         req.Location,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		Image:            image,
		ImageContentType: req.ImageContentType,
	})
	if err != nil {
		code := apperr.CodeOf(err)
		if code == "" {
			h.Log.Error("item create", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
		return c.JSON(code.HTTPStatus(), echo.Map{"message": err.Error()})
	}
	return c.JSON(http.StatusCreated, it)
}

// GET /v1/items?category=...
func (h *Controller) List(c echo.Context) error {
	uid, _ := jwtx.UserIDFromContext(c)

	f := itemrepo.Filter{Category: c.QueryParam("category")}
	if c.QueryParam("exclude_mine") == "true" {
		f.ExcludeOwner = uid
	}
	rows, err := h.Svc.ListAvailable(c.Request().Context(), f)
	if err != nil {
		h.Log.Error("item list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/items/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	it, err := h.Svc.Detail(c.Request().Context(), id)
	if err != nil {
		h.Log.Error("item detail", "err", err)
		return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
	}
	return c.JSON(http.StatusOK, it)
}

// GET /v1/items/mine
func (h *Controller) Mine(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	rows, err := h.Svc.MyItems(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("my items", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// DELETE /v1/items/:id
func (h *Controller) Deactivate(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	if err := h.Svc.Deactivate(c.Request().Context(), uid, id); err != nil {
		code := apperr.CodeOf(err)
		if code == "" {
			h.Log.Error("item deactivate", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
		return c.JSON(code.HTTPStatus(), echo.Map{"message": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "removed"})
}

// GET /v1/categories
func (h *Controller) Categories(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"data": h.Svc.Categories()})
}
