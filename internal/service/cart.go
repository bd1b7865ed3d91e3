package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/greenhaven/internal/logging"
	"github.com/Skotchmaster/greenhaven/internal/models"
	"github.com/Skotchmaster/greenhaven/internal/mykafka"
	"github.com/Skotchmaster/greenhaven/internal/repo"
	"github.com/Skotchmaster/greenhaven/internal/transport"
)

type CartService struct {
	Repo   *repo.GormRepo
	Events EventPublisher
}

func (s *CartService) AddToCart(ctx context.Context, req transport.CartItemRequest) (*models.CartItem, error) {
	item := &models.CartItem{
		UserID:   strings.TrimSpace(req.UserID),
		Email:    normalizeEmail(req.Email),
		ItemID:   strings.TrimSpace(req.ItemID),
		Name:     strings.TrimSpace(req.Name),
		Price:    req.Price,
		Quantity: req.Quantity,
		Image:    req.Image,
	}
	if item.Email == "" && item.UserID == "" {
		return nil, fmt.Errorf("%w: email or userId required", ErrValidation)
	}
	if item.Name == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}
	if item.Price < 0 {
		return nil, fmt.Errorf("%w: price must be >= 0", ErrValidation)
	}
	if item.Quantity == 0 {
		item.Quantity = 1
	}
	if item.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must be > 0", ErrValidation)
	}

	if err := s.Repo.AddToCart(ctx, item); err != nil {
		return nil, fmt.Errorf("%w: add to cart: %w", ErrPersistence, err)
	}
	s.publish(ctx, "cart_item_added", item.Email, map[string]any{"id": item.ID, "itemId": item.ItemID, "quantity": item.Quantity})
	return item, nil
}

func (s *CartService) ListCart(ctx context.Context, email string) ([]models.CartItem, error) {
	items, err := s.Repo.ListCart(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("%w: list cart: %w", ErrPersistence, err)
	}
	return items, nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, id string, qty int) (*models.CartItem, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: quantity must be > 0", ErrValidation)
	}
	item, err := s.Repo.UpdateCartQuantity(ctx, id, qty)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("cart item %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: update cart: %w", ErrPersistence, err)
	}
	return item, nil
}

func (s *CartService) DeleteItem(ctx context.Context, id string) error {
	deleted, err := s.Repo.DeleteCartItem(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: delete cart item: %w", ErrPersistence, err)
	}
	if !deleted {
		return fmt.Errorf("cart item %s: %w", id, ErrNotFound)
	}
	return nil
}

// Clear removes the cart of one buyer, or every cart when email is empty.
func (s *CartService) Clear(ctx context.Context, email string) (int64, error) {
	email = normalizeEmail(email)

	var (
		n   int64
		err error
	)
	if email == "" {
		n, err = s.Repo.DeleteAllCart(ctx)
	} else {
		n, err = s.Repo.DeleteCartByEmail(ctx, email)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: clear cart: %w", ErrPersistence, err)
	}
	s.publish(ctx, "cart_cleared", email, map[string]any{"email": email, "removed": n})
	return n, nil
}

func (s *CartService) publish(ctx context.Context, typ, key string, payload map[string]any) {
	if s.Events == nil {
		return
	}
	if err := s.Events.PublishEvent(ctx, mykafka.TopicCartEvents, key, mykafka.NewEvent(typ, payload)); err != nil {
		logging.FromContext(ctx).Warn("kafka_publish_error", "topic", mykafka.TopicCartEvents, "error", err)
	}
}
