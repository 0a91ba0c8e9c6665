package model

import "time"

// Car is a catalog entry in the `cars` table.
type Car struct {
	ID           uint64    // cars.id
	Name         string    // cars.name
	Slug         string    // cars.slug (unique)
	Brand        string    // cars.brand
	Category     string    // cars.category (sedan, suv, ...)
	PriceVND     uint64    // cars.price_vnd
	Fuel         string    // cars.fuel
	Seats        uint8     // cars.seats
	Transmission string    // cars.transmission
	Description  string    // cars.description
	ImageURL     string    // cars.image_url
	IsAvailable  bool      // cars.is_available
	CreatedAt    time.Time // cars.created_at
}
