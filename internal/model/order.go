package model

import "time"

// Order statuses stored in orders.status.
const (
	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
	OrderCompleted = "completed"
	OrderCancelled = "cancelled"
)

// Order models a row in the `orders` table. Code is a UUID handed to
// the customer as a reference; TotalVND is the sum of item subtotals
// computed server-side from catalog prices at checkout time.
type Order struct {
	ID        uint64    // orders.id
	Code      string    // orders.code (unique)
	UserID    uint64    // orders.user_id
	Status    string    // orders.status
	TotalVND  uint64    // orders.total_vnd
	Note      string    // orders.note (optional)
	CreatedAt time.Time // orders.created_at
	UpdatedAt time.Time // orders.updated_at
}

// OrderItem models a row in the `order_items` table. UnitPriceVND is
// the catalog price captured at checkout so later price changes do not
// alter past orders.
type OrderItem struct {
	ID           uint64 // order_items.id
	OrderID      uint64 // order_items.order_id
	CarID        uint64 // order_items.car_id
	CarName      string // joined from cars.name for responses
	Quantity     uint32 // order_items.quantity
	UnitPriceVND uint64 // order_items.unit_price_vnd
}
