package cart

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"lendoo/app/echoServer/jwtx"
	cartsvc "lendoo/service/cart"
	"lendoo/util/apperr"
)

type Controller struct {
	Svc cartsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	code := apperr.CodeOf(err)
	if code == "" {
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	if code == apperr.CodeInvariantViolation {
		h.Log.Error(op+": invariant violation", "err", err)
	}
	return c.JSON(code.HTTPStatus(), echo.Map{"message": err.Error(), "code": code})
}

// POST /v1/cart
func (h *Controller) Add(c echo.Context) error {
	var req AddToCartReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	entry, err := h.Svc.Add(c.Request().Context(), uid, req.ItemID, req.Days)
	if err != nil {
		return h.fail(c, "cart add", err)
	}
	return c.JSON(http.StatusCreated, entry)
}

// GET /v1/cart
func (h *Controller) List(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	entries, err := h.Svc.List(c.Request().Context(), uid)
	if err != nil {
		return h.fail(c, "cart list", err)
	}
	var total float64
	for _, e := range entries {
		total += e.Fee
	}
	return c.JSON(http.StatusOK, echo.Map{"data": entries, "total": total})
}

// PATCH /v1/cart/:id
func (h *Controller) UpdateDuration(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req UpdateDurationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	entry, err := h.Svc.UpdateDuration(c.Request().Context(), uid, id, req.Days)
	if err != nil {
		return h.fail(c, "cart update", err)
	}
	if entry == nil {
		return c.JSON(http.StatusOK, echo.Map{"message": "removed"})
	}
	return c.JSON(http.StatusOK, entry)
}

// DELETE /v1/cart/:id
func (h *Controller) Remove(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	if err := h.Svc.Remove(c.Request().Context(), uid, id); err != nil {
		return h.fail(c, "cart remove", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "removed"})
}

// POST /v1/cart/checkout
func (h *Controller) Checkout(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	report, err := h.Svc.CheckoutAll(c.Request().Context(), uid)
	if err != nil {
		return h.fail(c, "cart checkout", err)
	}
	// partial failure is an expected outcome, reported per entry
	status := http.StatusOK
	if len(report.Failed) > 0 && len(report.Submitted) == 0 {
		status = http.StatusConflict
	}
	return c.JSON(status, report)
}
