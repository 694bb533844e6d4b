package social

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ihere-app/ihere-backend/internal/models"
	"github.com/ihere-app/ihere-backend/internal/store"
)

// ErrSelfBooking is returned when a user tries to book themselves.
var ErrSelfBooking = errors.New("social: cannot book yourself")

// BookingService owns the bookings collection.
type BookingService struct {
	client store.Client
	fanout *Fanout
	now    func() time.Time
}

// NewBookingService creates a booking service.
func NewBookingService(client store.Client, fanout *Fanout) *BookingService {
	return &BookingService{client: client, fanout: fanout, now: time.Now}
}

// Book creates or replaces the booking for the (booker, booked user) pair.
// The deterministic document id guarantees at most one booking per pair, so
// booking the same user again overwrites instead of duplicating. The booked
// user is always notified.
func (s *BookingService) Book(ctx context.Context, bookedBy string, req models.CreateBookingRequest) (models.Booking, error) {
	if bookedBy == req.BookedUser {
		return models.Booking{}, ErrSelfBooking
	}

	b := models.Booking{
		ID:         models.BookingPairID(bookedBy, req.BookedUser),
		BookedBy:   bookedBy,
		BookedUser: req.BookedUser,
		JobTitle:   req.JobTitle,
		Date:       req.Date,
		CreatedAt:  s.now(),
	}
	if err := s.client.Set(ctx, b.Path(), b.Doc()); err != nil {
		return models.Booking{}, fmt.Errorf("save booking: %w", err)
	}

	if err := s.fanout.Apply(ctx, Action{Kind: ActionBookingCreated, Booking: b}); err != nil {
		log.Printf("booking fanout for %s: %v", b.ID, err)
	}
	return b, nil
}

// ListByBooker returns every booking the user has made, newest first.
func (s *BookingService) ListByBooker(ctx context.Context, bookedBy string) ([]models.Booking, error) {
	docs, err := s.client.GetAll(ctx, store.Query{
		Collection: models.CollectionBookings,
		Filters:    []store.Filter{{Field: "bookedBy", Op: "==", Value: bookedBy}},
		OrderBy:    "createdAt",
		Direction:  store.Descending,
	})
	if err != nil {
		return nil, err
	}
	bookings := make([]models.Booking, 0, len(docs))
	for _, d := range docs {
		bookings = append(bookings, models.BookingFromDoc(d))
	}
	return bookings, nil
}

// ListForPair returns the booking between the pair, if any.
func (s *BookingService) ListForPair(ctx context.Context, bookedBy, bookedUser string) ([]models.Booking, error) {
	doc, err := s.client.Get(ctx, store.Path(models.CollectionBookings, models.BookingPairID(bookedBy, bookedUser)))
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []models.Booking{models.BookingFromDoc(*doc)}, nil
}

// Cancel removes the booking for the pair. Cancelling a booking that does
// not exist is a no-op.
func (s *BookingService) Cancel(ctx context.Context, bookedBy, bookedUser string) error {
	return s.client.Delete(ctx, store.Path(models.CollectionBookings, models.BookingPairID(bookedBy, bookedUser)))
}
