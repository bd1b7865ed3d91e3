package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/greenhaven/internal/logging"
	"github.com/Skotchmaster/greenhaven/internal/service"
	"github.com/Skotchmaster/greenhaven/internal/transport"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	var req transport.CartItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "reason", "invalid body", "error", err)
		return failErr(c, http.StatusBadRequest, "invalid body")
	}

	item, err := h.Svc.AddToCart(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("add_to_cart_error", "status", 400, "error", err)
			return failErr(c, http.StatusBadRequest, validationMessage(err))
		}
		l.Error("add_to_cart_error", "status", 500, "error", err)
		return failErr(c, http.StatusInternalServerError, "Failed to add item to cart")
	}
	return ok(c, http.StatusCreated, echo.Map{"message": "Item added to cart", "item": item})
}

func (h *CartHTTP) ListCart(c echo.Context) error {
	ctx := c.Request().Context()

	items, err := h.Svc.ListCart(ctx, c.QueryParam("email"))
	if err != nil {
		logging.FromContext(ctx).Error("list_cart_error", "status", 500, "error", err)
		return failErr(c, http.StatusInternalServerError, "Failed to fetch cart")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CartHTTP) UpdateQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	l := logging.FromContext(ctx).With("handler", "cart.update_quantity", "cart_id", id)

	var req transport.QuantityRequest
	if err := c.Bind(&req); err != nil {
		return failErr(c, http.StatusBadRequest, "invalid body")
	}

	item, err := h.Svc.UpdateQuantity(ctx, id, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return failErr(c, http.StatusBadRequest, validationMessage(err))
		case errors.Is(err, service.ErrNotFound):
			return failErr(c, http.StatusNotFound, "cart item not found")
		default:
			l.Error("update_cart_error", "status", 500, "error", err)
			return failErr(c, http.StatusInternalServerError, "Failed to update cart")
		}
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CartHTTP) DeleteItem(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	if err := h.Svc.DeleteItem(ctx, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return failErr(c, http.StatusNotFound, "cart item not found")
		}
		logging.FromContext(ctx).Error("delete_cart_item_error", "status", 500, "cart_id", id, "error", err)
		return failErr(c, http.StatusInternalServerError, "Failed to delete item")
	}
	return ok(c, http.StatusOK, nil)
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()

	n, err := h.Svc.Clear(ctx, c.QueryParam("email"))
	if err != nil {
		logging.FromContext(ctx).Error("clear_cart_error", "status", 500, "error", err)
		return failErr(c, http.StatusInternalServerError, "Failed to clear cart")
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Cart cleared", "deleted": n})
}
