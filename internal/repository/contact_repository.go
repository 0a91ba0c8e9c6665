package repository

import (
	"context"
	"database/sql"

	"github.com/ducnm/oto-dealer/internal/model"
)

// ContactRepo persists contact form submissions.
type ContactRepo struct{ DB *sql.DB }

func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{DB: db} }

// Create inserts a contact message and fills in its id.
func (r *ContactRepo) Create(ctx context.Context, m *model.ContactMessage) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO contact_messages (name, email, phone, subject, message) VALUES (?,?,?,?,?)",
		m.Name, m.Email, m.Phone, m.Subject, m.Message)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}
