package transport

import "time"

type OrderItem struct {
	ItemID   string  `json:"itemId"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Image    string  `json:"image"`
}

type PlaceOrderRequest struct {
	UserID          string      `json:"userId"`
	Email           string      `json:"email"`
	Items           []OrderItem `json:"items"`
	TotalPrice      float64     `json:"totalPrice"`
	Discount        float64     `json:"discount"`
	DeliveryFee     float64     `json:"deliveryFee"`
	FinalAmount     float64     `json:"finalAmount"`
	ShippingAddress string      `json:"shippingAddress"`
	PaymentMethod   string      `json:"paymentMethod"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type SignupRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	AccessToken string
	AccessExp   time.Time
	Email       string
	IsAdmin     bool
}

type EmailOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type MobileOTPRequest struct {
	Mobile string `json:"mobile"`
	OTP    string `json:"otp"`
}

type CartItemRequest struct {
	UserID   string  `json:"userId"`
	Email    string  `json:"email"`
	ItemID   string  `json:"itemId"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Image    string  `json:"image"`
}

type QuantityRequest struct {
	Quantity int `json:"quantity"`
}

type WishlistItemRequest struct {
	UserID string  `json:"userId"`
	Email  string  `json:"email"`
	ItemID string  `json:"itemId"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Image  string  `json:"image"`
}
