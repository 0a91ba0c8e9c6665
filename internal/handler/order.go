package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ducnm/oto-dealer/internal/repository"
	queuepub "github.com/ducnm/oto-dealer/internal/service"

	q "github.com/ducnm/oto-dealer/internal/queue"
)

// OrderHandler turns a client-side cart into a persisted order. All
// endpoints require an authenticated session; the user id comes from
// the verified cookie claims, never from the request body.
type OrderHandler struct {
	Orders *repository.OrderRepo
}

func NewOrderHandler(o *repository.OrderRepo) *OrderHandler { return &OrderHandler{Orders: o} }

type orderItemReq struct {
	CarID    uint64 `json:"carId"`
	Quantity uint32 `json:"quantity"`
}
type orderReq struct {
	Items []orderItemReq `json:"items"`
	Note  string         `json:"note"`
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c echo.Context) error {
	uid, ok := c.Get("user_id").(uint64)
	if !ok || uid == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Vui lòng đăng nhập"})
	}
	var req orderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Dữ liệu không hợp lệ"})
	}
	if len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Giỏ hàng trống"})
	}
	items := make([]repository.CartItem, 0, len(req.Items))
	for _, it := range req.Items {
		if it.CarID == 0 || it.Quantity == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Sản phẩm trong giỏ hàng không hợp lệ"})
		}
		items = append(items, repository.CartItem{CarID: it.CarID, Quantity: it.Quantity})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	order, lines, err := h.Orders.Checkout(ctx, uid, items, req.Note)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Một số xe trong giỏ hàng không còn bán"})
		}
		log.Printf("order: checkout failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Có lỗi xảy ra, vui lòng thử lại sau"})
	}

	// Fire-and-forget; order placement must not depend on the broker.
	_ = queuepub.PublishOrderPlaced(ctx, q.OrderPlacedEvent{
		OrderID:   order.ID,
		OrderCode: order.Code,
		UserID:    order.UserID,
		TotalVND:  order.TotalVND,
		ItemCount: len(lines),
		PlacedAt:  time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"order": order,
		"items": lines,
	})
}

// List handles GET /api/orders and returns only the caller's orders.
func (h *OrderHandler) List(c echo.Context) error {
	uid, ok := c.Get("user_id").(uint64)
	if !ok || uid == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Vui lòng đăng nhập"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	orders, err := h.Orders.ListByUser(ctx, uid)
	if err != nil {
		log.Printf("order: list failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Có lỗi xảy ra, vui lòng thử lại sau"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": orders})
}

// Get handles GET /api/orders/:id. A foreign order answers 404 rather
// than 403 so order ids cannot be probed.
func (h *OrderHandler) Get(c echo.Context) error {
	uid, ok := c.Get("user_id").(uint64)
	if !ok || uid == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Vui lòng đăng nhập"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Mã đơn hàng không hợp lệ"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	order, items, err := h.Orders.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Không tìm thấy đơn hàng"})
		}
		log.Printf("order: get failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Có lỗi xảy ra, vui lòng thử lại sau"})
	}
	if order.UserID != uid {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Không tìm thấy đơn hàng"})
	}
	return c.JSON(http.StatusOK, echo.Map{"order": order, "items": items})
}
