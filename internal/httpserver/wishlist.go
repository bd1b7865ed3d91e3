package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/greenhaven/internal/logging"
	"github.com/Skotchmaster/greenhaven/internal/service"
	"github.com/Skotchmaster/greenhaven/internal/transport"
)

type WishlistHTTP struct {
	Svc *service.WishlistService
}

func (h *WishlistHTTP) Add(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist.add")

	var req transport.WishlistItemRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	item, err := h.Svc.Add(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return fail(c, http.StatusBadRequest, validationMessage(err))
		}
		l.Error("add_to_wishlist_error", "status", 500, "error", err)
		return fail(c, http.StatusInternalServerError, "Failed to add to wishlist")
	}
	return ok(c, http.StatusCreated, echo.Map{"message": "Added to wishlist", "item": item})
}

func (h *WishlistHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()

	items, err := h.Svc.List(ctx, c.QueryParam("email"))
	if err != nil {
		logging.FromContext(ctx).Error("list_wishlist_error", "status", 500, "error", err)
		return fail(c, http.StatusInternalServerError, "Failed to fetch wishlist")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *WishlistHTTP) Remove(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	if err := h.Svc.Remove(ctx, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return fail(c, http.StatusNotFound, "wishlist item not found")
		}
		logging.FromContext(ctx).Error("remove_wishlist_error", "status", 500, "wishlist_id", id, "error", err)
		return fail(c, http.StatusInternalServerError, "Failed to remove from wishlist")
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Removed from wishlist"})
}
