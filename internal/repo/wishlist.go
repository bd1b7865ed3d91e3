package repo

import (
	"context"

	"github.com/Skotchmaster/greenhaven/internal/models"
)

func (r *GormRepo) AddToWishlist(ctx context.Context, item *models.WishlistItem) error {
	return r.DB.WithContext(ctx).Create(item).Error
}

func (r *GormRepo) ListWishlist(ctx context.Context, email string) ([]models.WishlistItem, error) {
	q := r.DB.WithContext(ctx).Order("created_at ASC")
	if email != "" {
		q = q.Where("email = ?", email)
	}
	var items []models.WishlistItem
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) DeleteWishlistItem(ctx context.Context, id string) (bool, error) {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.WishlistItem{})
	return res.RowsAffected > 0, res.Error
}
