package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/greenhaven/internal/models"
)

func ownerScope(email, userID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if email != "" {
			return db.Where("email = ?", email)
		}
		return db.Where("user_id = ?", userID)
	}
}

// AddToCart bumps the quantity when the owner already has the item,
// otherwise it inserts a new row. Items without an item id are never merged.
func (r *GormRepo) AddToCart(ctx context.Context, item *models.CartItem) error {
	if item.ItemID == "" {
		return r.DB.WithContext(ctx).Create(item).Error
	}
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartItem{}).
			Scopes(ownerScope(item.Email, item.UserID)).
			Where("item_id = ?", item.ItemID).
			Update("quantity", gorm.Expr("quantity + ?", item.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return tx.Scopes(ownerScope(item.Email, item.UserID)).
				Where("item_id = ?", item.ItemID).
				First(item).Error
		}
		return tx.Create(item).Error
	})
}

func (r *GormRepo) ListCart(ctx context.Context, email string) ([]models.CartItem, error) {
	q := r.DB.WithContext(ctx).Order("created_at ASC")
	if email != "" {
		q = q.Where("email = ?", email)
	}
	var items []models.CartItem
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) UpdateCartQuantity(ctx context.Context, id string, qty int) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&item).Error; err != nil {
			return err
		}
		return tx.Model(&item).Update("quantity", qty).Error
	})
	if err != nil {
		return nil, err
	}
	item.Quantity = qty
	return &item, nil
}

func (r *GormRepo) DeleteCartItem(ctx context.Context, id string) (bool, error) {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.CartItem{})
	return res.RowsAffected > 0, res.Error
}

// DeleteCartByEmail purges every cart row for a buyer. Deleting an empty
// cart is not an error.
func (r *GormRepo) DeleteCartByEmail(ctx context.Context, email string) (int64, error) {
	res := r.DB.WithContext(ctx).Where("email = ?", email).Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}

func (r *GormRepo) DeleteAllCart(ctx context.Context) (int64, error) {
	res := r.DB.WithContext(ctx).Where("1 = 1").Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}
