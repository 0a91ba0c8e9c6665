package model

import "time"

// ContactMessage is a row in the `contact_messages` table, written by
// the public contact form. Messages are never exposed through the
// public API; staff read them out of band.
type ContactMessage struct {
	ID        uint64    // contact_messages.id
	Name      string    // contact_messages.name
	Email     string    // contact_messages.email
	Phone     string    // contact_messages.phone (optional)
	Subject   string    // contact_messages.subject
	Message   string    // contact_messages.message
	CreatedAt time.Time // contact_messages.created_at
}
