package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusDelivered OrderStatus = "Delivered"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// Known reports whether s is one of the statuses the admin UI can set.
func (s OrderStatus) Known() bool {
	switch s {
	case OrderStatusPending, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID              string    `gorm:"primaryKey;size:36"       json:"id"`
	FirstName       string    `gorm:"not null"                 json:"firstName"`
	LastName        string    `                                json:"lastName"`
	Email           string    `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash    string    `gorm:"not null"                 json:"-"`
	Role            string    `gorm:"not null;default:user"    json:"role"`
	IsEmailVerified bool      `gorm:"not null;default:false"   json:"isEmailVerified"`
	CreatedAt       time.Time `                                json:"createdAt"`
}

type CartItem struct {
	ID        string    `gorm:"primaryKey;size:36"   json:"id"`
	UserID    string    `gorm:"index"                json:"userId,omitempty"`
	Email     string    `gorm:"index"                json:"email,omitempty"`
	ItemID    string    `                            json:"itemId"`
	Name      string    `gorm:"not null"             json:"name"`
	Price     float64   `gorm:"not null"             json:"price"`
	Quantity  int       `gorm:"not null;default:1"   json:"quantity"`
	Image     string    `                            json:"image"`
	CreatedAt time.Time `                            json:"createdAt"`
}

type WishlistItem struct {
	ID        string    `gorm:"primaryKey;size:36"   json:"id"`
	UserID    string    `gorm:"index"                json:"userId,omitempty"`
	Email     string    `gorm:"index"                json:"email,omitempty"`
	ItemID    string    `                            json:"itemId"`
	Name      string    `gorm:"not null"             json:"name"`
	Price     float64   `gorm:"not null"             json:"price"`
	Image     string    `                            json:"image"`
	CreatedAt time.Time `                            json:"createdAt"`
}

type Order struct {
	ID              string      `gorm:"primaryKey;size:36"                      json:"id"`
	UserID          string      `gorm:"index"                                   json:"userId"`
	Email           string      `gorm:"index;not null"                          json:"email"`
	Items           []OrderItem `gorm:"foreignKey:OrderID"                      json:"items"`
	TotalPrice      float64     `gorm:"not null"                                json:"totalPrice"`
	Discount        float64     `gorm:"not null;default:0"                      json:"discount"`
	DeliveryFee     float64     `gorm:"not null;default:0"                      json:"deliveryFee"`
	FinalAmount     float64     `gorm:"not null"                                json:"finalAmount"`
	OrderDate       time.Time   `gorm:"index"                                   json:"orderDate"`
	Status          OrderStatus `gorm:"not null;default:Pending"                json:"status"`
	ShippingAddress string      `                                               json:"shippingAddress,omitempty"`
	PaymentMethod   string      `                                               json:"paymentMethod,omitempty"`
}

type OrderItem struct {
	ID       uint    `gorm:"primaryKey;autoIncrement"  json:"-"`
	OrderID  string  `gorm:"index;size:36;not null"    json:"-"`
	ItemID   string  `                                 json:"itemId"`
	Name     string  `gorm:"not null"                  json:"name"`
	Price    float64 `gorm:"not null"                  json:"price"`
	Quantity int     `gorm:"not null"                  json:"quantity"`
	Image    string  `                                 json:"image"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

func (w *WishlistItem) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

func (CartItem) TableName() string {
	return "cart_items"
}

func (WishlistItem) TableName() string {
	return "wishlist_items"
}

// All lists every persisted model, in migration order.
func All() []any {
	return []any{&User{}, &CartItem{}, &WishlistItem{}, &Order{}, &OrderItem{}}
}
