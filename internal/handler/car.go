package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ducnm/oto-dealer/internal/repository"
)

// CarHandler exposes the public catalog. These endpoints sit behind
// the Redis response cache middleware.
type CarHandler struct {
	Cars *repository.CarRepo
}

func NewCarHandler(cars *repository.CarRepo) *CarHandler { return &CarHandler{Cars: cars} }

// List handles GET /api/cars with optional category, price range,
// search and paging query parameters.
func (h *CarHandler) List(c echo.Context) error {
	f := repository.CarFilter{
		Category: strings.TrimSpace(c.QueryParam("category")),
		Search:   strings.TrimSpace(c.QueryParam("search")),
		Limit:    20,
	}
	if v := c.QueryParam("minPrice"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Giá không hợp lệ"})
		}
		f.MinPrice = n
	}
	if v := c.QueryParam("maxPrice"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Giá không hợp lệ"})
		}
		f.MaxPrice = n
	}
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			f.Limit = n
		}
	}
	if v := c.QueryParam("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			f.Offset = (n - 1) * f.Limit
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cars, total, err := h.Cars.List(ctx, f)
	if err != nil {
		log.Printf("car: list failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Có lỗi xảy ra, vui lòng thử lại sau"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items": cars,
		"total": total,
	})
}

// Get handles GET /api/cars/:id.
func (h *CarHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Mã xe không hợp lệ"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	car, err := h.Cars.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Không tìm thấy xe"})
		}
		log.Printf("car: get failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Có lỗi xảy ra, vui lòng thử lại sau"})
	}
	return c.JSON(http.StatusOK, echo.Map{"car": car})
}
