package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/greenhaven/internal/logging"
	"github.com/Skotchmaster/greenhaven/internal/metrics"
	"github.com/Skotchmaster/greenhaven/internal/models"
	"github.com/Skotchmaster/greenhaven/internal/mykafka"
	"github.com/Skotchmaster/greenhaven/internal/notify"
	"github.com/Skotchmaster/greenhaven/internal/repo"
	"github.com/Skotchmaster/greenhaven/internal/transport"
	"github.com/Skotchmaster/greenhaven/internal/util"
)

const (
	defaultSideEffectTimeout = 5 * time.Second
	defaultFollowUpBudget    = 20 * time.Second
)

type OrderService struct {
	Repo       *repo.GormRepo
	Notifier   Notifier
	AdminEmail string

	// optional
	Events  EventPublisher
	Index   OrderIndexer
	Metrics *metrics.Metrics

	// FollowUpBudget bounds everything PlaceOrder does after the insert,
	// except the cart purge which gets SideEffectTimeout of its own.
	FollowUpBudget    time.Duration
	SideEffectTimeout time.Duration

	Now func() time.Time
}

type OrderConfirmation struct {
	OrderID       string
	Notifications []notify.Result
	CartPurged    int64
}

// PlaceOrder validates and stores the order, then notifies the buyer and the
// admin and purges the buyer's cart. Only validation and storage failures
// fail the call; everything after the insert is best-effort.
func (s *OrderService) PlaceOrder(ctx context.Context, req transport.PlaceOrderRequest) (*OrderConfirmation, error) {
	l := logging.FromContext(ctx).With("svc", "order.place")

	order, err := s.buildOrder(req)
	if err != nil {
		l.Warn("place_order_rejected", "status", 400, "error", err)
		s.Metrics.OrderRejected("validation")
		return nil, err
	}

	if err := s.Repo.CreateOrder(ctx, order); err != nil {
		l.Error("place_order_error", "status", 500, "reason", "cannot save order", "error", err)
		s.Metrics.OrderRejected("persistence")
		return nil, fmt.Errorf("%w: save order: %w", ErrPersistence, err)
	}
	s.Metrics.OrderPlaced()
	l = l.With("order_id", order.ID)

	// the order is durable; a disconnecting client must not cut the rest short
	bg := context.WithoutCancel(ctx)
	followUp, cancel := context.WithTimeout(bg, s.followUpBudget())
	defer cancel()

	summary := buildSummary(order)
	results := make([]notify.Result, 0, 2)
	results = append(results, s.send(followUp, l, notify.Message{
		To:       order.Email,
		Subject:  "Order Confirmation - GreenHaven",
		Template: notify.TemplateOrderConfirmation,
		Data:     summary,
	}))
	results = append(results, s.send(followUp, l, notify.Message{
		To:       s.AdminEmail,
		Subject:  "New Order from " + buyerLabel(order),
		Template: notify.TemplateAdminNewOrder,
		Data:     summary,
	}))

	purgeCtx, cancelPurge := context.WithTimeout(bg, s.sideEffectTimeout())
	purged, err := s.Repo.DeleteCartByEmail(purgeCtx, order.Email)
	cancelPurge()
	if err != nil {
		l.Error("cart_purge_error", "status", 500, "email", order.Email, "error", err)
	}

	s.publishPlaced(followUp, l, order, purged)

	l.Info("place_order_success", "cart_purged", purged)
	return &OrderConfirmation{OrderID: order.ID, Notifications: results, CartPurged: purged}, nil
}

func (s *OrderService) send(ctx context.Context, l *slog.Logger, msg notify.Message) notify.Result {
	if s.Notifier == nil {
		return notify.Result{Recipient: msg.To, Template: msg.Template, Error: "no notifier configured"}
	}
	res := s.Notifier.Send(ctx, msg)
	s.Metrics.Notification(msg.Template, res.Sent)
	if !res.Sent {
		l.Warn("notification_error", "recipient", res.Recipient, "template", res.Template, "error", res.Error)
	}
	return res
}

func (s *OrderService) publishPlaced(ctx context.Context, l *slog.Logger, order *models.Order, purged int64) {
	if s.Events != nil {
		ev := mykafka.NewEvent("order_placed", map[string]any{
			"orderId":     order.ID,
			"userId":      order.UserID,
			"email":       order.Email,
			"items":       len(order.Items),
			"finalAmount": order.FinalAmount,
		})
		if err := s.Events.PublishEvent(ctx, mykafka.TopicOrderEvents, order.ID, ev); err != nil {
			l.Warn("kafka_publish_error", "topic", mykafka.TopicOrderEvents, "error", err)
		}
		cartEv := mykafka.NewEvent("cart_purged", map[string]any{"email": order.Email, "removed": purged})
		if err := s.Events.PublishEvent(ctx, mykafka.TopicCartEvents, order.Email, cartEv); err != nil {
			l.Warn("kafka_publish_error", "topic", mykafka.TopicCartEvents, "error", err)
		}
	}
	if s.Index != nil {
		ictx, cancel := context.WithTimeout(ctx, s.sideEffectTimeout())
		defer cancel()
		if err := s.Index.IndexOrder(ictx, order); err != nil {
			l.Warn("es_index_error", "error", err)
		}
	}
}

func (s *OrderService) followUpBudget() time.Duration {
	if s.FollowUpBudget > 0 {
		return s.FollowUpBudget
	}
	return defaultFollowUpBudget
}

func (s *OrderService) sideEffectTimeout() time.Duration {
	if s.SideEffectTimeout > 0 {
		return s.SideEffectTimeout
	}
	return defaultSideEffectTimeout
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *OrderService) buildOrder(req transport.PlaceOrderRequest) (*models.Order, error) {
	email := normalizeEmail(req.Email)
	if email == "" {
		return nil, ErrMissingContact
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: items required", ErrValidation)
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for i, it := range req.Items {
		if strings.TrimSpace(it.Name) == "" {
			return nil, fmt.Errorf("%w: item %d: name required", ErrValidation, i)
		}
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item %d: quantity must be > 0", ErrValidation, i)
		}
		if it.Price < 0 {
			return nil, fmt.Errorf("%w: item %d: price must be >= 0", ErrValidation, i)
		}
		items = append(items, models.OrderItem{
			ItemID:   it.ItemID,
			Name:     it.Name,
			Price:    it.Price,
			Quantity: it.Quantity,
			Image:    it.Image,
		})
	}

	if req.TotalPrice < 0 || req.Discount < 0 || req.DeliveryFee < 0 || req.FinalAmount < 0 {
		return nil, fmt.Errorf("%w: amounts must be >= 0", ErrValidation)
	}
	if err := checkFinalAmount(req.TotalPrice, req.Discount, req.DeliveryFee, req.FinalAmount); err != nil {
		return nil, err
	}

	return &models.Order{
		UserID:          strings.TrimSpace(req.UserID),
		Email:           email,
		Items:           items,
		TotalPrice:      req.TotalPrice,
		Discount:        req.Discount,
		DeliveryFee:     req.DeliveryFee,
		FinalAmount:     req.FinalAmount,
		OrderDate:       s.now(),
		Status:          models.OrderStatusPending,
		ShippingAddress: strings.TrimSpace(req.ShippingAddress),
		PaymentMethod:   strings.TrimSpace(req.PaymentMethod),
	}, nil
}

// checkFinalAmount enforces final = total - discount + delivery to the cent.
func checkFinalAmount(total, discount, delivery, final float64) error {
	want := decimal.NewFromFloat(total).
		Sub(decimal.NewFromFloat(discount)).
		Add(decimal.NewFromFloat(delivery)).
		Round(2)
	got := decimal.NewFromFloat(final).Round(2)
	if !want.Equal(got) {
		return fmt.Errorf("%w: expected %s, got %s", ErrAmountMismatch, want.StringFixed(2), got.StringFixed(2))
	}
	return nil
}

func buildSummary(o *models.Order) notify.OrderSummary {
	lines := make([]notify.SummaryLine, 0, len(o.Items))
	for _, it := range o.Items {
		price := decimal.NewFromFloat(it.Price)
		lines = append(lines, notify.SummaryLine{
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    price.StringFixed(2),
			Subtotal: price.Mul(decimal.NewFromInt(int64(it.Quantity))).StringFixed(2),
		})
	}
	return notify.OrderSummary{
		OrderID:     o.ID,
		UserID:      o.UserID,
		Email:       o.Email,
		Lines:       lines,
		FinalAmount: decimal.NewFromFloat(o.FinalAmount).StringFixed(2),
		PlacedOn:    o.OrderDate.Format("2006-01-02 15:04 MST"),
	}
}

func buyerLabel(o *models.Order) string {
	if o.UserID != "" {
		return o.UserID
	}
	return o.Email
}

func (s *OrderService) ListOrders(ctx context.Context, email string) ([]models.Order, error) {
	orders, err := s.Repo.ListOrders(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("%w: list orders: %w", ErrPersistence, err)
	}
	return orders, nil
}

type SearchResult struct {
	Total  int64          `json:"total"`
	Orders []models.Order `json:"orders"`
}

func (s *OrderService) SearchOrders(ctx context.Context, query string, page, size int) (*SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: q required", ErrValidation)
	}
	if s.Index == nil {
		return nil, fmt.Errorf("%w: search is not configured", ErrUnavailable)
	}
	from, limit := util.Page(page, size)
	total, orders, err := s.Index.SearchOrders(ctx, query, from, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %w", ErrUnavailable, err)
	}
	return &SearchResult{Total: total, Orders: orders}, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	if !status.Known() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	order, err := s.Repo.UpdateOrderStatus(ctx, id, status)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: update status: %w", ErrPersistence, err)
	}

	l := logging.FromContext(ctx).With("svc", "order.update_status", "order_id", id)
	if s.Events != nil {
		ev := mykafka.NewEvent("order_status_changed", map[string]any{"orderId": id, "status": status})
		if err := s.Events.PublishEvent(ctx, mykafka.TopicOrderEvents, id, ev); err != nil {
			l.Warn("kafka_publish_error", "topic", mykafka.TopicOrderEvents, "error", err)
		}
	}
	if s.Index != nil {
		ictx, cancel := context.WithTimeout(ctx, s.sideEffectTimeout())
		defer cancel()
		if err := s.Index.IndexOrder(ictx, order); err != nil {
			l.Warn("es_index_error", "error", err)
		}
	}
	return order, nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	deleted, err := s.Repo.DeleteOrder(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: delete order: %w", ErrPersistence, err)
	}
	if !deleted {
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	if s.Index != nil {
		ictx, cancel := context.WithTimeout(ctx, s.sideEffectTimeout())
		defer cancel()
		if err := s.Index.DeleteOrder(ictx, id); err != nil {
			logging.FromContext(ctx).Warn("es_delete_error", "order_id", id, "error", err)
		}
	}
	return nil
}

func (s *OrderService) DeleteAllOrders(ctx context.Context) (int64, error) {
	n, err := s.Repo.DeleteAllOrders(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: delete orders: %w", ErrPersistence, err)
	}
	if s.Index != nil {
		ictx, cancel := context.WithTimeout(ctx, s.sideEffectTimeout())
		defer cancel()
		if err := s.Index.DeleteAll(ictx); err != nil {
			logging.FromContext(ctx).Warn("es_delete_error", "error", err)
		}
	}
	return n, nil
}
