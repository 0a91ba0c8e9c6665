package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ducnm/oto-dealer/internal/model"
	"github.com/ducnm/oto-dealer/internal/repository"
	"github.com/ducnm/oto-dealer/internal/schedule"
	queuepub "github.com/ducnm/oto-dealer/internal/service"

	q "github.com/ducnm/oto-dealer/internal/queue"
)

// TestDriveHandler serves slot availability and booking endpoints.
type TestDriveHandler struct {
	Bookings *repository.BookingRepo
	Cars     *repository.CarRepo
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewTestDriveHandler(b *repository.BookingRepo, cars *repository.CarRepo) *TestDriveHandler {
	return &TestDriveHandler{Bookings: b, Cars: cars, Now: time.Now}
}

// ----- DTOs -----

type bookingReq struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	CarID         uint64 `json:"carId"`
	Showroom      string `json:"showroom"`
	PreferredDate string `json:"preferredDate"`
	PreferredTime string `json:"preferredTime"`
	AltDate       string `json:"alternativeDate"`
	AltTime       string `json:"alternativeTime"`
	Experience    string `json:"experience"`
	LicenseNo     string `json:"licenseNumber"`
	Message       string `json:"message"`
}

type bookingPart struct {
	ID            uint64 `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	CarID         uint64 `json:"carId"`
	Showroom      string `json:"showroom"`
	PreferredDate string `json:"preferredDate"`
	PreferredTime string `json:"preferredTime"`
	Status        string `json:"status"`
}

func bookingSummary(b model.TestDriveBooking) bookingPart {
	return bookingPart{
		ID:            b.ID,
		Name:          b.CustomerName,
		Email:         b.CustomerEmail,
		Phone:         b.CustomerPhone,
		CarID:         b.CarID,
		Showroom:      b.Showroom,
		PreferredDate: b.PreferredDate,
		PreferredTime: b.PreferredTime,
		Status:        b.Status,
	}
}

// AvailableSlots handles GET /api/test-drive/available-slots. It reads
// the live bookings for the showroom/date and lets the schedule
// package decide availability, including the same-day cutoff.
func (h *TestDriveHandler) AvailableSlots(c echo.Context) error {
	showroom := strings.TrimSpace(c.QueryParam("showroom"))
	date := strings.TrimSpace(c.QueryParam("date"))
	if showroom == "" || date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Vui lòng chọn showroom và ngày"})
	}
	if !model.ValidShowroom(showroom) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Showroom không hợp lệ"})
	}
	// Reject bad dates before paying for the bookings query.
	if err := schedule.ValidateDate(date, h.Now()); err != nil {
		if err == schedule.ErrPastDate {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Vui lòng chọn ngày từ hôm nay trở đi"})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Ngày không hợp lệ"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	booked, err := h.Bookings.BookedTimes(ctx, showroom, date)
	if err != nil {
		log.Printf("testdrive: load booked times failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Có lỗi xảy ra, vui lòng thử lại sau"})
	}

	av, err := schedule.Compute(date, h.Now(), booked)
	if err != nil {
		if err == schedule.ErrPastDate {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Vui lòng chọn ngày từ hôm nay trở đi"})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Ngày không hợp lệ"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"showroom":       showroom,
		"date":           date,
		"slots":          av.Slots,
		"availableSlots": av.AvailableSlots,
		"counts": echo.Map{
			"total":     av.Total,
			"available": av.Available,
			"booked":    av.Booked,
		},
	})
}

// Create handles POST /api/test-drive. Validation covers contact
// fields, the car reference, a strictly future date, the HH:MM format
// and showroom membership. The double-booking guarantee does NOT come
// from a prior availability read: the insert itself collides on the
// slot's unique key when another live booking holds it, so two
// concurrent bookers cannot both win.
func (h *TestDriveHandler) Create(c echo.Context) error {
	var req bookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Dữ liệu không hợp lệ"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" || req.Email == "" || req.Phone == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Vui lòng nhập đầy đủ họ tên, email và số điện thoại"})
	}
	if req.CarID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Vui lòng chọn xe muốn lái thử"})
	}
	if !model.ValidShowroom(req.Showroom) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Showroom không hợp lệ"})
	}
	if !schedule.ValidTimeFormat(req.PreferredTime) || !schedule.ValidSlotTime(req.PreferredTime) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Giờ lái thử không hợp lệ"})
	}
	if req.Experience == "" {
		req.Experience = "beginner"
	}
	if !model.ValidExperience(req.Experience) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Kinh nghiệm lái xe không hợp lệ"})
	}

	now := h.Now()
	day, err := time.ParseInLocation("2006-01-02", req.PreferredDate, now.Location())
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Ngày không hợp lệ"})
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if !day.After(today) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Vui lòng chọn ngày trong tương lai"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	exists, err := h.Cars.Exists(ctx, req.CarID)
	if err != nil {
		log.Printf("testdrive: car lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Có lỗi xảy ra, vui lòng thử lại sau"})
	}
	if !exists {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Xe không tồn tại"})
	}

	b := model.TestDriveBooking{
		CustomerName:  req.Name,
		CustomerEmail: req.Email,
		CustomerPhone: req.Phone,
		Address:       req.Address,
		CarID:         req.CarID,
		Showroom:      req.Showroom,
		PreferredDate: req.PreferredDate,
		PreferredTime: req.PreferredTime,
		AltDate:       req.AltDate,
		AltTime:       req.AltTime,
		Experience:    req.Experience,
		LicenseNo:     req.LicenseNo,
		Message:       req.Message,
	}
	if err := h.Bookings.Create(ctx, &b); err != nil {
		if err == repository.ErrSlotTaken {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Khung giờ này đã được đặt, vui lòng chọn giờ khác"})
		}
		log.Printf("testdrive: create booking failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Có lỗi xảy ra, vui lòng thử lại sau"})
	}

	// Notify downstream consumers; a broker outage must not fail the booking.
	_ = queuepub.PublishTestDriveCreated(ctx, q.TestDriveCreatedEvent{
		BookingID:     b.ID,
		CustomerName:  b.CustomerName,
		CustomerEmail: b.CustomerEmail,
		CarID:         b.CarID,
		Showroom:      b.Showroom,
		PreferredDate: b.PreferredDate,
		PreferredTime: b.PreferredTime,
		CreatedAt:     now.UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Đặt lịch lái thử thành công",
		"booking": bookingSummary(b),
	})
}

// List handles GET /api/test-drive (admin). Optional status, showroom
// and date query filters narrow the result.
func (h *TestDriveHandler) List(c echo.Context) error {
	status := strings.TrimSpace(c.QueryParam("status"))
	if status != "" && status != model.BookingPending && status != model.BookingConfirmed &&
		status != model.BookingCompleted && status != model.BookingCancelled {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Trạng thái không hợp lệ"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Bookings.List(ctx, status, strings.TrimSpace(c.QueryParam("showroom")), strings.TrimSpace(c.QueryParam("date")))
	if err != nil {
		log.Printf("testdrive: list bookings failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Có lỗi xảy ra, vui lòng thử lại sau"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// UpdateStatus handles PATCH /api/test-drive/:id/status (admin). The
// transition also updates the slot guard so a cancelled or completed
// booking frees its slot.
func (h *TestDriveHandler) UpdateStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Mã đặt lịch không hợp lệ"})
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Dữ liệu không hợp lệ"})
	}
	switch req.Status {
	case model.BookingConfirmed, model.BookingCompleted, model.BookingCancelled:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Trạng thái không hợp lệ"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Bookings.UpdateStatus(ctx, id, req.Status); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Không tìm thấy lịch lái thử"})
		}
		log.Printf("testdrive: update status failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Có lỗi xảy ra, vui lòng thử lại sau"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": req.Status})
}
