package domain

import (
	"time"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPendingPayment OrderStatus = "pending_payment"
	OrderStatusPaid           OrderStatus = "paid"
)

// Order is a priced snapshot of a cart at checkout.
type Order struct {
	ID              string      `json:"id"`
	CartKey         string      `json:"cart_key"`
	Items           []LineItem  `json:"items"`
	Totals          OrderTotal  `json:"totals"`
	Currency        string      `json:"currency"`
	Email           string      `json:"email"`
	ContactName     string      `json:"contact_name"`
	DeliveryAddress string      `json:"delivery_address,omitempty"`
	Status          OrderStatus `json:"status"`
	PaymentID       string      `json:"payment_id,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// IsPaid reports whether a payment has already succeeded for the order.
func (o *Order) IsPaid() bool {
	return o.Status == OrderStatusPaid
}
