package social

import (
	"context"
	"testing"
	"time"

	"github.com/ihere-app/ihere-backend/internal/models"
	"github.com/ihere-app/ihere-backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBookingFixture() (*store.MemoryClient, *BookingService) {
	mem := store.NewMemoryClient()
	return mem, NewBookingService(mem, NewFanout(mem))
}

func TestBookingService_BookNotifiesBookedUser(t *testing.T) {
	mem, svc := newBookingFixture()
	ctx := context.Background()
	date := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)

	b, err := svc.Book(ctx, "alice", models.CreateBookingRequest{
		BookedUser: "bob",
		JobTitle:   "Wedding shoot",
		Date:       date,
	})
	require.NoError(t, err)
	assert.Equal(t, "alice_bob", b.ID)

	notifs, err := mem.GetAll(ctx, store.Query{Collection: models.CollectionNotifications})
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, "bob", notifs[0].Data["userId"])
	assert.Equal(t, models.NotificationBooking, notifs[0].Data["type"])
}

func TestBookingService_RebookingOverwrites(t *testing.T) {
	mem, svc := newBookingFixture()
	ctx := context.Background()

	_, err := svc.Book(ctx, "alice", models.CreateBookingRequest{
		BookedUser: "bob", JobTitle: "First gig", Date: time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	_, err = svc.Book(ctx, "alice", models.CreateBookingRequest{
		BookedUser: "bob", JobTitle: "Second gig", Date: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	docs, err := mem.GetAll(ctx, store.Query{Collection: models.CollectionBookings})
	require.NoError(t, err)
	require.Len(t, docs, 1, "one booking per pair, the second overwrites")
	assert.Equal(t, "Second gig", docs[0].Data["jobTitle"])
}

func TestBookingService_SelfBookingRejected(t *testing.T) {
	_, svc := newBookingFixture()

	_, err := svc.Book(context.Background(), "alice", models.CreateBookingRequest{
		BookedUser: "alice", JobTitle: "Gig", Date: time.Now(),
	})
	assert.ErrorIs(t, err, ErrSelfBooking)
}

func TestBookingService_PairIDIsDirectional(t *testing.T) {
	mem, svc := newBookingFixture()
	ctx := context.Background()
	date := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)

	_, err := svc.Book(ctx, "alice", models.CreateBookingRequest{BookedUser: "bob", JobTitle: "A books B", Date: date})
	require.NoError(t, err)
	_, err = svc.Book(ctx, "bob", models.CreateBookingRequest{BookedUser: "alice", JobTitle: "B books A", Date: date})
	require.NoError(t, err)

	docs, err := mem.GetAll(ctx, store.Query{Collection: models.CollectionBookings})
	require.NoError(t, err)
	assert.Len(t, docs, 2, "opposite directions are distinct bookings")
}

func TestBookingService_ListByBooker(t *testing.T) {
	_, svc := newBookingFixture()
	ctx := context.Background()
	date := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)

	_, err := svc.Book(ctx, "alice", models.CreateBookingRequest{BookedUser: "bob", JobTitle: "Gig 1", Date: date})
	require.NoError(t, err)
	_, err = svc.Book(ctx, "alice", models.CreateBookingRequest{BookedUser: "carol", JobTitle: "Gig 2", Date: date})
	require.NoError(t, err)
	_, err = svc.Book(ctx, "dave", models.CreateBookingRequest{BookedUser: "bob", JobTitle: "Gig 3", Date: date})
	require.NoError(t, err)

	bookings, err := svc.ListByBooker(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, bookings, 2)
	for _, b := range bookings {
		assert.Equal(t, "alice", b.BookedBy)
	}
}

func TestBookingService_CancelIsIdempotent(t *testing.T) {
	_, svc := newBookingFixture()
	ctx := context.Background()

	_, err := svc.Book(ctx, "alice", models.CreateBookingRequest{
		BookedUser: "bob", JobTitle: "Gig", Date: time.Now(),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(ctx, "alice", "bob"))
	require.NoError(t, svc.Cancel(ctx, "alice", "bob"))

	bookings, err := svc.ListForPair(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Empty(t, bookings)
}
