// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver-specific error strings themselves: repositories
// translate MySQL duplicate-key failures (error 1062) into the
// appropriate sentinel, and handlers translate sentinels into HTTP
// status codes.
package repository

import "errors"

// ErrEmailExists is returned when an insert collides with the unique
// index on users.email. Handlers translate this into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrSlotTaken is returned when a booking insert collides with the
// unique key on (showroom, preferred_date, preferred_time, slot_guard),
// meaning another pending or confirmed booking already occupies the
// slot. Handlers translate this into HTTP 409.
var ErrSlotTaken = errors.New("slot already booked")

// ErrNotFound is returned when a requested row does not exist.
// Handlers translate this into HTTP 404.
var ErrNotFound = errors.New("not found")
