package handlers

import (
	"errors"
	"net/http"

	"github.com/ihere-app/ihere-backend/internal/models"
	"github.com/ihere-app/ihere-backend/internal/social"
	"github.com/labstack/echo/v4"
)

// BookingHandler handles HTTP requests related to bookings
type BookingHandler struct {
	bookings *social.BookingService
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(bookings *social.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// RegisterBookingRoutes registers booking-related routes
func (h *BookingHandler) RegisterBookingRoutes(g *echo.Group) {
	g.POST("/bookings", h.CreateBooking)
	g.GET("/bookings", h.GetBookings)
	g.DELETE("/bookings/:booked_user", h.CancelBooking)
}

// CreateBooking books another user. Booking the same user again overwrites
// the existing booking.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req models.CreateBookingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	booking, err := h.bookings.Book(c.Request().Context(), uid, req)
	if err != nil {
		if errors.Is(err, social.ErrSelfBooking) {
			return echo.NewHTTPError(http.StatusBadRequest, "Cannot book yourself")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, booking)
}

// GetBookings lists the caller's bookings
func (h *BookingHandler) GetBookings(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return err
	}

	bookings, err := h.bookings.ListByBooker(c.Request().Context(), uid)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, bookings)
}

// CancelBooking removes the caller's booking of the given user
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return err
	}

	if err := h.bookings.Cancel(c.Request().Context(), uid, c.Param("booked_user")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}
