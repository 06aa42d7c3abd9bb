package loan

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"lendoo/app/echoServer/jwtx"
	loansvc "lendoo/service/loan"
	reconcilesvc "lendoo/service/reconcile"
	"lendoo/util/apperr"
)

type Controller struct {
	Svc   loansvc.Service
	Views reconcilesvc.Service
	V     *validator.Validate
	Log   *slog.Logger
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

func (h *Controller) loanAction(c echo.Context, op string, fn func(ctx echo.Context, uid, loanID int64) error) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	if err := fn(c, uid, id); err != nil {
		return h.fail(c, op, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "ok"})
}

// POST /v1/loans/:id/approve
func (h *Controller) Approve(c echo.Context) error {
	return h.loanAction(c, "loan approve", func(ctx echo.Context, uid, id int64) error {
		return h.Svc.Approve(ctx.Request().Context(), uid, id)
	})
}

// POST /v1/loans/:id/reject
func (h *Controller) Reject(c echo.Context) error {
	return h.loanAction(c, "loan reject", func(ctx echo.Context, uid, id int64) error {
		return h.Svc.Reject(ctx.Request().Context(), uid, id)
	})
}

// POST /v1/loans/:id/return-request
func (h *Controller) RequestReturn(c echo.Context) error {
	return h.loanAction(c, "loan return request", func(ctx echo.Context, uid, id int64) error {
		return h.Svc.RequestReturn(ctx.Request().Context(), uid, id)
	})
}

// POST /v1/loans/:id/return-confirm
func (h *Controller) ConfirmReturn(c echo.Context) error {
	return h.loanAction(c, "loan return confirm", func(ctx echo.Context, uid, id int64) error {
		return h.Svc.ConfirmReturn(ctx.Request().Context(), uid, id)
	})
}

// POST /v1/loans/:id/extension
func (h *Controller) RequestExtension(c echo.Context) error {
	var req ExtensionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}
	return h.loanAction(c, "loan extension request", func(ctx echo.Context, uid, id int64) error {
		return h.Svc.RequestExtension(ctx.Request().Context(), uid, id, req.Days)
	})
}

// POST /v1/loans/:id/extension/accept
func (h *Controller) AcceptExtension(c echo.Context) error {
	return h.loanAction(c, "loan extension accept", func(ctx echo.Context, uid, id int64) error {
		return h.Svc.AcceptExtension(ctx.Request().Context(), uid, id)
	})
}

// POST /v1/loans/:id/extension/decline
func (h *Controller) DeclineExtension(c echo.Context) error {
	return h.loanAction(c, "loan extension decline", func(ctx echo.Context, uid, id int64) error {
		return h.Svc.DeclineExtension(ctx.Request().Context(), uid, id)
	})
}

// GET /v1/loans/borrowed
func (h *Controller) Borrowed(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	views, err := h.Views.MyBorrowedLoans(c.Request().Context(), uid)
	if err != nil {
		return h.fail(c, "loans borrowed", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": views})
}

// GET /v1/loans/lent
func (h *Controller) Lent(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	views, err := h.Views.MyLentLoans(c.Request().Context(), uid)
	if err != nil {
		return h.fail(c, "loans lent", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": views})
}

// GET /v1/loans/requests
func (h *Controller) PendingRequests(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	views, err := h.Views.PendingRequestsForOwner(c.Request().Context(), uid)
	if err != nil {
		return h.fail(c, "loan requests", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": views})
}
