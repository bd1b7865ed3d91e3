package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skotchmaster/greenhaven/internal/models"
	"github.com/Skotchmaster/greenhaven/internal/repo"
	"github.com/Skotchmaster/greenhaven/internal/transport"
)

type WishlistService struct {
	Repo *repo.GormRepo
}

func (s *WishlistService) Add(ctx context.Context, req transport.WishlistItemRequest) (*models.WishlistItem, error) {
	item := &models.WishlistItem{
		UserID: strings.TrimSpace(req.UserID),
		Email:  normalizeEmail(req.Email),
		ItemID: strings.TrimSpace(req.ItemID),
		Name:   strings.TrimSpace(req.Name),
		Price:  req.Price,
		Image:  req.Image,
	}
	if item.Name == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}
	if item.Price < 0 {
		return nil, fmt.Errorf("%w: price must be >= 0", ErrValidation)
	}
	if err := s.Repo.AddToWishlist(ctx, item); err != nil {
		return nil, fmt.Errorf("%w: add to wishlist: %w", ErrPersistence, err)
	}
	return item, nil
}

func (s *WishlistService) List(ctx context.Context, email string) ([]models.WishlistItem, error) {
	items, err := s.Repo.ListWishlist(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("%w: list wishlist: %w", ErrPersistence, err)
	}
	return items, nil
}

func (s *WishlistService) Remove(ctx context.Context, id string) error {
	deleted, err := s.Repo.DeleteWishlistItem(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: delete wishlist item: %w", ErrPersistence, err)
	}
	if !deleted {
		return fmt.Errorf("wishlist item %s: %w", id, ErrNotFound)
	}
	return nil
}
