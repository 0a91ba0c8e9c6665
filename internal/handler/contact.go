package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ducnm/oto-dealer/internal/model"
	"github.com/ducnm/oto-dealer/internal/repository"
)

// ContactHandler persists contact form submissions.
type ContactHandler struct {
	Contacts *repository.ContactRepo
}

func NewContactHandler(r *repository.ContactRepo) *ContactHandler {
	return &ContactHandler{Contacts: r}
}

type contactReq struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Create handles POST /api/contact.
func (h *ContactHandler) Create(c echo.Context) error {
	var req contactReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Dữ liệu không hợp lệ"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)
	if req.Name == "" || req.Email == "" || req.Subject == "" || req.Message == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Vui lòng nhập đầy đủ thông tin liên hệ"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m := model.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   strings.TrimSpace(req.Phone),
		Subject: req.Subject,
		Message: req.Message,
	}
	if err := h.Contacts.Create(ctx, &m); err != nil {
		log.Printf("contact: create failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Có lỗi xảy ra, vui lòng thử lại sau"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Gửi liên hệ thành công, chúng tôi sẽ phản hồi sớm nhất",
		"id":      m.ID,
	})
}
