// Package queue defines message payloads exchanged over the message broker.
package queue

// TestDriveCreatedEvent is published after a test drive booking is
// persisted. It carries enough for downstream consumers to log or
// notify showroom staff without querying the primary database.
type TestDriveCreatedEvent struct {
	BookingID     uint64 `json:"booking_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CarID         uint64 `json:"car_id"`
	Showroom      string `json:"showroom"`
	PreferredDate string `json:"preferred_date"`
	PreferredTime string `json:"preferred_time"`
	CreatedAt     string `json:"created_at"`
}

// OrderPlacedEvent is published after a checkout commits.
type OrderPlacedEvent struct {
	OrderID   uint64 `json:"order_id"`
	OrderCode string `json:"order_code"`
	UserID    uint64 `json:"user_id"`
	TotalVND  uint64 `json:"total_vnd"`
	ItemCount int    `json:"item_count"`
	PlacedAt  string `json:"placed_at"`
}
