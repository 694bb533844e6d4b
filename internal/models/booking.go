package models

import (
	"time"

	"github.com/ihere-app/ihere-backend/internal/store"
)

// Booking represents a booking document. The document id is derived from the
// (booker, booked user) pair, so booking the same user again overwrites the
// previous booking instead of duplicating it.
type Booking struct {
	ID         string    `json:"id"`
	BookedBy   string    `json:"bookedBy"`
	BookedUser string    `json:"bookedUser"`
	JobTitle   string    `json:"jobTitle"`
	Date       time.Time `json:"date"`
	CreatedAt  time.Time `json:"createdAt"`
}

// BookingPairID derives the deterministic document id for an ordered
// (booker, booked user) pair.
func BookingPairID(bookedBy, bookedUser string) string {
	return bookedBy + "_" + bookedUser
}

// Path returns the booking's document path.
func (b Booking) Path() string {
	return store.Path(CollectionBookings, BookingPairID(b.BookedBy, b.BookedUser))
}

// Doc flattens the booking into a store document.
func (b Booking) Doc() map[string]interface{} {
	return map[string]interface{}{
		"bookedBy":   b.BookedBy,
		"bookedUser": b.BookedUser,
		"jobTitle":   b.JobTitle,
		"date":       b.Date,
		"createdAt":  b.CreatedAt,
	}
}

// BookingFromDoc rebuilds a Booking from a store document.
func BookingFromDoc(d store.Document) Booking {
	return Booking{
		ID:         d.ID,
		BookedBy:   DocString(d.Data, "bookedBy"),
		BookedUser: DocString(d.Data, "bookedUser"),
		JobTitle:   DocString(d.Data, "jobTitle"),
		Date:       DocTime(d.Data, "date"),
		CreatedAt:  DocTime(d.Data, "createdAt"),
	}
}

// CreateBookingRequest defines the request body for booking a user.
type CreateBookingRequest struct {
	BookedUser string    `json:"bookedUser" validate:"required"`
	JobTitle   string    `json:"jobTitle" validate:"required,min=1,max=200"`
	Date       time.Time `json:"date" validate:"required"`
}
