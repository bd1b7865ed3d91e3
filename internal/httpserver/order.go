package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/greenhaven/internal/logging"
	"github.com/Skotchmaster/greenhaven/internal/models"
	"github.com/Skotchmaster/greenhaven/internal/service"
	"github.com/Skotchmaster/greenhaven/internal/transport"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) PlaceOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.place_order")

	var req transport.PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("place_order_error", "status", 400, "reason", "invalid body", "error", err)
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	conf, err := h.Svc.PlaceOrder(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingContact):
			l.Warn("place_order_error", "status", 400, "reason", "email missing")
			return fail(c, http.StatusBadRequest, "User email missing")
		case errors.Is(err, service.ErrAmountMismatch):
			l.Warn("place_order_error", "status", 400, "reason", "amount mismatch", "error", err)
			return fail(c, http.StatusBadRequest, "Final amount does not match order totals")
		case errors.Is(err, service.ErrValidation):
			l.Warn("place_order_error", "status", 400, "reason", "invalid order", "error", err)
			return fail(c, http.StatusBadRequest, validationMessage(err))
		default:
			l.Error("place_order_error", "status", 500, "error", err)
			return fail(c, http.StatusInternalServerError, "Order failed")
		}
	}

	l.Info("place_order_success", "order_id", conf.OrderID)
	return ok(c, http.StatusCreated, echo.Map{"message": "Order placed", "orderId": conf.OrderID})
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_orders")

	orders, err := h.Svc.ListOrders(ctx, c.QueryParam("email"))
	if err != nil {
		l.Error("list_orders_error", "status", 500, "error", err)
		return fail(c, http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) SearchOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.search_orders")

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))

	res, err := h.Svc.SearchOrders(ctx, c.QueryParam("q"), page, size)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return fail(c, http.StatusBadRequest, "query parameter q is required")
		case errors.Is(err, service.ErrUnavailable):
			l.Warn("search_orders_error", "status", 503, "error", err)
			return fail(c, http.StatusServiceUnavailable, "search unavailable")
		default:
			l.Error("search_orders_error", "status", 500, "error", err)
			return fail(c, http.StatusInternalServerError, "internal error")
		}
	}
	return c.JSON(http.StatusOK, res)
}

func (h *OrderHTTP) DeleteOrder(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	l := logging.FromContext(ctx).With("handler", "order.delete_order", "order_id", id)

	if err := h.Svc.DeleteOrder(ctx, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("delete_order_error", "status", 404)
			return failErr(c, http.StatusNotFound, "order not found")
		}
		l.Error("delete_order_error", "status", 500, "error", err)
		return failErr(c, http.StatusInternalServerError, "internal error")
	}

	l.Info("delete_order_success")
	return ok(c, http.StatusOK, nil)
}

func (h *OrderHTTP) DeleteAllOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.delete_all_orders")

	n, err := h.Svc.DeleteAllOrders(ctx)
	if err != nil {
		l.Error("delete_all_orders_error", "status", 500, "error", err)
		return failErr(c, http.StatusInternalServerError, "internal error")
	}

	l.Info("delete_all_orders_success", "deleted", n)
	return ok(c, http.StatusOK, echo.Map{"message": "All orders deleted", "deleted": n})
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	l := logging.FromContext(ctx).With("handler", "order.update_status", "order_id", id)

	var req transport.StatusRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_status_error", "status", 400, "reason", "invalid body", "error", err)
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.UpdateStatus(ctx, id, models.OrderStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("update_status_error", "status", 400, "error", err)
			return fail(c, http.StatusBadRequest, validationMessage(err))
		case errors.Is(err, service.ErrNotFound):
			return fail(c, http.StatusNotFound, "order not found")
		default:
			l.Error("update_status_error", "status", 500, "error", err)
			return fail(c, http.StatusInternalServerError, "internal error")
		}
	}
	return c.JSON(http.StatusOK, order)
}
