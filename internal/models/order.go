package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order status values.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// OrderItem is an immutable snapshot of a purchased product taken at order
// time. It never changes when the live catalog record does.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"_id" json:"_id"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Price     float64            `bson:"price" json:"price"`
	Size      string             `bson:"size" json:"size"`
	Name      string             `bson:"name" json:"name"`
	Grind     string             `bson:"grind" json:"grind"`
	Thumbnail string             `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`
	Discount  float64            `bson:"discount,omitempty" json:"discount,omitempty"`
}

// ShippingAddress captures where an order is delivered.
type ShippingAddress struct {
	Name        string `bson:"name" json:"name"`
	Address     string `bson:"address" json:"address"`
	PhoneNumber string `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
}

// Coupon records a discount code applied to an order.
type Coupon struct {
	Code     string  `bson:"code,omitempty" json:"code,omitempty"`
	Discount float64 `bson:"discount,omitempty" json:"discount,omitempty"`
}

// Order defines the persisted order document.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"user" json:"user"`
	Products        []OrderItem        `bson:"products" json:"products"`
	ShippingAddress ShippingAddress    `bson:"shippingAddress" json:"shippingAddress"`
	PaymentMethod   string             `bson:"paymentMethod" json:"paymentMethod"`
	Status          string             `bson:"status" json:"status"`
	OrderDate       time.Time          `bson:"orderDate" json:"orderDate"`
	ShippingCost    float64            `bson:"shippingCost" json:"shippingCost"`
	TotalPrice      float64            `bson:"totalPrice" json:"totalPrice"`
	Coupon          *Coupon            `bson:"coupon,omitempty" json:"coupon,omitempty"`
	IsPaid          bool               `bson:"isPaid" json:"isPaid"`
	PaidAt          *time.Time         `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	IsDelivered     bool               `bson:"isDelivered" json:"isDelivered"`
	DeliveredAt     *time.Time         `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	OrderCode       string             `bson:"orderCode" json:"orderCode"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}

// ValidOrderStatus reports whether s is one of the known status values.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// ValidPaymentMethod reports whether m is an accepted payment method.
func ValidPaymentMethod(m string) bool {
	switch m {
	case "credit card", "paypal", "cod":
		return true
	}
	return false
}
