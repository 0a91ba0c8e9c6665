package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/ducnm/oto-dealer/internal/model"
)

// OrderRepo persists orders and their line items. Checkout runs inside
// a single transaction so an order row can never exist without its
// items or with a total that disagrees with them.
type OrderRepo struct{ DB *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{DB: db} }

// CartItem is a checkout request line before pricing.
type CartItem struct {
	CarID    uint64
	Quantity uint32
}

// Checkout prices the cart against the catalog, then writes the order
// and its items atomically. Unknown or unavailable car ids abort the
// transaction with ErrNotFound.
func (r *OrderRepo) Checkout(ctx context.Context, userID uint64, items []CartItem, note string) (model.Order, []model.OrderItem, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Order{}, nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Price each line from the catalog inside the transaction.
	lines := make([]model.OrderItem, 0, len(items))
	var total uint64
	for _, it := range items {
		var (
			name  string
			price uint64
		)
		err := tx.QueryRowContext(ctx,
			"SELECT name, price_vnd FROM cars WHERE id=? AND is_available=1 LIMIT 1",
			it.CarID).Scan(&name, &price)
		if err == sql.ErrNoRows {
			return model.Order{}, nil, ErrNotFound
		}
		if err != nil {
			return model.Order{}, nil, err
		}
		lines = append(lines, model.OrderItem{
			CarID:        it.CarID,
			CarName:      name,
			Quantity:     it.Quantity,
			UnitPriceVND: price,
		})
		total += price * uint64(it.Quantity)
	}

	code := uuid.NewString()
	res, err := tx.ExecContext(ctx,
		"INSERT INTO orders (code, user_id, status, total_vnd, note) VALUES (?,?,?,?,?)",
		code, userID, model.OrderPending, total, note)
	if err != nil {
		return model.Order{}, nil, err
	}
	oid, err := res.LastInsertId()
	if err != nil {
		return model.Order{}, nil, err
	}

	for i := range lines {
		lines[i].OrderID = uint64(oid)
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO order_items (order_id, car_id, quantity, unit_price_vnd) VALUES (?,?,?,?)",
			oid, lines[i].CarID, lines[i].Quantity, lines[i].UnitPriceVND); err != nil {
			return model.Order{}, nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return model.Order{}, nil, err
	}
	committed = true

	order := model.Order{
		ID:       uint64(oid),
		Code:     code,
		UserID:   userID,
		Status:   model.OrderPending,
		TotalVND: total,
		Note:     note,
	}
	return order, lines, nil
}

// ListByUser returns the user's orders, newest first, without items.
func (r *OrderRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Order, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,code,user_id,status,total_vnd,note,created_at,updated_at FROM orders WHERE user_id=? ORDER BY created_at DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Order{}
	for rows.Next() {
		var (
			o    model.Order
			note sql.NullString
		)
		if err := rows.Scan(&o.ID, &o.Code, &o.UserID, &o.Status, &o.TotalVND,
			&note, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		o.Note = note.String
		out = append(out, o)
	}
	return out, rows.Err()
}

// GetByID returns an order with its items. Ownership is checked by the
// handler against the authenticated user.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (model.Order, []model.OrderItem, error) {
	var (
		o    model.Order
		note sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,code,user_id,status,total_vnd,note,created_at,updated_at FROM orders WHERE id=? LIMIT 1",
		id).Scan(&o.ID, &o.Code, &o.UserID, &o.Status, &o.TotalVND, &note, &o.CreatedAt, &o.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Order{}, nil, ErrNotFound
	}
	if err != nil {
		return model.Order{}, nil, err
	}
	o.Note = note.String

	rows, err := r.DB.QueryContext(ctx,
		`SELECT oi.id, oi.order_id, oi.car_id, c.name, oi.quantity, oi.unit_price_vnd
		 FROM order_items oi JOIN cars c ON c.id = oi.car_id
		 WHERE oi.order_id=? ORDER BY oi.id`, id)
	if err != nil {
		return model.Order{}, nil, err
	}
	defer rows.Close()
	items := []model.OrderItem{}
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.CarID, &it.CarName, &it.Quantity, &it.UnitPriceVND); err != nil {
			return model.Order{}, nil, err
		}
		items = append(items, it)
	}
	return o, items, rows.Err()
}
