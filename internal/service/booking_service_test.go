package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"lendhub/internal/database"
	"lendhub/internal/events"
	"lendhub/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestBookingService(repo *mockRepo, bus *events.EventBus) *BookingService {
	logger := zerolog.Nop()
	if bus == nil {
		return NewBookingService(repo, nil, &logger)
	}
	return NewBookingService(repo, bus, &logger)
}

func testUser(id int64) *models.User {
	return &models.User{ID: id, Name: "User", Email: "user@example.com"}
}

func testItem(id, ownerID int64, available bool) *models.Item {
	return &models.Item{ID: id, Name: "Drill", Description: "a drill", OwnerID: ownerID, Available: available}
}

func testBooking(id int64, item *models.Item, bookerID int64, status models.BookingStatus) *models.Booking {
	start := time.Now().Add(time.Hour)
	return &models.Booking{
		ID:       id,
		ItemID:   item.ID,
		BookerID: bookerID,
		Start:    start,
		End:      start.Add(time.Hour),
		Status:   status,
		Version:  1,
		Item:     item,
		Booker:   testUser(bookerID),
	}
}

func TestCreateBooking(t *testing.T) {
	ctx := context.Background()
	start := time.Now().Add(time.Hour)
	input := CreateBookingInput{ItemID: 5, Start: start, End: start.Add(2 * time.Hour)}

	t.Run("Success", func(t *testing.T) {
		repo := new(mockRepo)
		bus := events.NewEventBus()
		var published []string
		bus.Subscribe(events.EventBookingCreated, func(e *events.Event) error {
			published = append(published, e.Type)
			var payload events.BookingEventPayload
			require.NoError(t, json.Unmarshal(e.Payload, &payload))
			assert.Equal(t, int64(1), payload.BookerID)
			assert.Equal(t, int64(2), payload.OwnerID)
			return nil
		})
		svc := newTestBookingService(repo, bus)

		repo.On("GetUserByID", ctx, int64(1)).Return(testUser(1), nil)
		repo.On("GetItemByID", ctx, int64(5)).Return(testItem(5, 2, true), nil)
		repo.On("CreateBooking", ctx, mock.AnythingOfType("*models.Booking")).Run(func(args mock.Arguments) {
			args.Get(1).(*models.Booking).ID = 10
		}).Return(nil)

		booking, err := svc.CreateBooking(ctx, 1, input)
		require.NoError(t, err)
		assert.Equal(t, int64(10), booking.ID)
		assert.Equal(t, models.StatusWaiting, booking.Status)
		require.NotNil(t, booking.Item)
		require.NotNil(t, booking.Booker)
		assert.Equal(t, []string{events.EventBookingCreated}, published)
		repo.AssertExpectations(t)
	})

	t.Run("RequesterNotFound", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestBookingService(repo, nil)
		repo.On("GetUserByID", ctx, int64(99)).Return(nil, database.ErrUserNotFound)

		_, err := svc.CreateBooking(ctx, 99, input)
		assert.ErrorIs(t, err, database.ErrUserNotFound)
		repo.AssertNotCalled(t, "GetItemByID", mock.Anything, mock.Anything)
	})

	t.Run("ItemNotFound", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestBookingService(repo, nil)
		repo.On("GetUserByID", ctx, int64(1)).Return(testUser(1), nil)
		repo.On("GetItemByID", ctx, int64(5)).Return(nil, database.ErrItemNotFound)

		_, err := svc.CreateBooking(ctx, 1, input)
		assert.ErrorIs(t, err, database.ErrItemNotFound)
	})

	t.Run("OwnItem", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestBookingService(repo, nil)
		repo.On("GetUserByID", ctx, int64(2)).Return(testUser(2), nil)
		repo.On("GetItemByID", ctx, int64(5)).Return(testItem(5, 2, true), nil)

		_, err := svc.CreateBooking(ctx, 2, input)
		assert.ErrorIs(t, err, ErrOwnItem)
	})

	t.Run("ItemUnavailable", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestBookingService(repo, nil)
		repo.On("GetUserByID", ctx, int64(1)).Return(testUser(1), nil)
		repo.On("GetItemByID", ctx, int64(5)).Return(testItem(5, 2, false), nil)

		_, err := svc.CreateBooking(ctx, 1, input)
		assert.ErrorIs(t, err, ErrItemUnavailable)
	})

	t.Run("InvalidPeriod", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestBookingService(repo, nil)
		repo.On("GetUserByID", ctx, int64(1)).Return(testUser(1), nil)
		repo.On("GetItemByID", ctx, int64(5)).Return(testItem(5, 2, true), nil)

		bad := CreateBookingInput{ItemID: 5, Start: start.Add(time.Hour), End: start}
		_, err := svc.CreateBooking(ctx, 1, bad)
		assert.ErrorIs(t, err, ErrInvalidPeriod)
		repo.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
	})
}

func TestGetBooking_Visibility(t *testing.T) {
	ctx := context.Background()
	item := testItem(5, 2, true)
	booking := testBooking(10, item, 1, models.StatusWaiting)

	cases := []struct {
		name    string
		actorID int64
		wantErr error
	}{
		{"Booker", 1, nil},
		{"Owner", 2, nil},
		{"Stranger", 3, database.ErrBookingNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(mockRepo)
			svc := newTestBookingService(repo, nil)
			repo.On("GetUserByID", ctx, tc.actorID).Return(testUser(tc.actorID), nil)
			repo.On("GetBooking", ctx, int64(10)).Return(booking, nil)

			got, err := svc.GetBooking(ctx, tc.actorID, 10)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, booking.ID, got.ID)
		})
	}
}

func TestApproveBooking(t *testing.T) {
	ctx := context.Background()
	item := testItem(5, 2, true)

	t.Run("Approve", func(t *testing.T) {
		repo := new(mockRepo)
		bus := events.NewEventBus()
		var published []string
		bus.Subscribe(events.EventBookingApproved, func(e *events.Event) error {
			published = append(published, e.Type)
			return nil
		})
		svc := newTestBookingService(repo, bus)

		waiting := testBooking(10, item, 1, models.StatusWaiting)
		approved := testBooking(10, item, 1, models.StatusApproved)
		approved.Version = 2

		repo.On("GetUserByID", ctx, int64(2)).Return(testUser(2), nil)
		repo.On("GetBooking", ctx, int64(10)).Return(waiting, nil).Once()
		repo.On("UpdateBookingStatusWithVersion", ctx, int64(10), int64(1), models.StatusApproved).Return(nil)
		repo.On("GetBooking", ctx, int64(10)).Return(approved, nil).Once()

		got, err := svc.ApproveBooking(ctx, 10, 2, true)
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, got.Status)
		assert.Equal(t, []string{events.EventBookingApproved}, published)
		repo.AssertExpectations(t)
	})

	t.Run("Reject", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestBookingService(repo, nil)

		waiting := testBooking(10, item, 1, models.StatusWaiting)
		rejected := testBooking(10, item, 1, models.StatusRejected)
		rejected.Version = 2

		repo.On("GetUserByID", ctx, int64(2)).Return(testUser(2), nil)
		repo.On("GetBooking", ctx, int64(10)).Return(waiting, nil).Once()
		repo.On("UpdateBookingStatusWithVersion", ctx, int64(10), int64(1), models.StatusRejected).Return(nil)
		repo.On("GetBooking", ctx, int64(10)).Return(rejected, nil).Once()

		got, err := svc.ApproveBooking(ctx, 10, 2, false)
		require.NoError(t, err)
		assert.Equal(t, models.StatusRejected, got.Status)
	})

	t.Run("BookerAsActor", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestBookingService(repo, nil)

		repo.On("GetUserByID", ctx, int64(1)).Return(testUser(1), nil)
		repo.On("GetBooking", ctx, int64(10)).Return(testBooking(10, item, 1, models.StatusWaiting), nil)

		_, err := svc.ApproveBooking(ctx, 10, 1, true)
		assert.ErrorIs(t, err, ErrBookerApproval)
	})

	t.Run("NotOwner", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestBookingService(repo, nil)

		repo.On("GetUserByID", ctx, int64(3)).Return(testUser(3), nil)
		repo.On("GetBooking", ctx, int64(10)).Return(testBooking(10, item, 1, models.StatusWaiting), nil)

		_, err := svc.ApproveBooking(ctx, 10, 3, true)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("AlreadyApproved", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestBookingService(repo, nil)

		repo.On("GetUserByID", ctx, int64(2)).Return(testUser(2), nil)
		repo.On("GetBooking", ctx, int64(10)).Return(testBooking(10, item, 1, models.StatusApproved), nil)

		_, err := svc.ApproveBooking(ctx, 10, 2, false)
		assert.ErrorIs(t, err, ErrAlreadyApproved)
		repo.AssertNotCalled(t, "UpdateBookingStatusWithVersion", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("LostRaceToApproval", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestBookingService(repo, nil)

		waiting := testBooking(10, item, 1, models.StatusWaiting)
		approved := testBooking(10, item, 1, models.StatusApproved)
		approved.Version = 2

		repo.On("GetUserByID", ctx, int64(2)).Return(testUser(2), nil)
		repo.On("GetBooking", ctx, int64(10)).Return(waiting, nil).Once()
		repo.On("UpdateBookingStatusWithVersion", ctx, int64(10), int64(1), models.StatusRejected).Return(database.ErrConcurrentModification)
		repo.On("GetBooking", ctx, int64(10)).Return(approved, nil).Once()

		_, err := svc.ApproveBooking(ctx, 10, 2, false)
		assert.ErrorIs(t, err, ErrAlreadyApproved)
	})

	t.Run("ConflictWithoutApproval", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestBookingService(repo, nil)

		waiting := testBooking(10, item, 1, models.StatusWaiting)
		bumped := testBooking(10, item, 1, models.StatusRejected)
		bumped.Version = 2

		repo.On("GetUserByID", ctx, int64(2)).Return(testUser(2), nil)
		repo.On("GetBooking", ctx, int64(10)).Return(waiting, nil).Once()
		repo.On("UpdateBookingStatusWithVersion", ctx, int64(10), int64(1), models.StatusApproved).Return(database.ErrConcurrentModification)
		repo.On("GetBooking", ctx, int64(10)).Return(bumped, nil).Once()

		_, err := svc.ApproveBooking(ctx, 10, 2, true)
		assert.ErrorIs(t, err, database.ErrConcurrentModification)
	})
}

func TestGetBookingsByBooker(t *testing.T) {
	ctx := context.Background()

	t.Run("UnknownState", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestBookingService(repo, nil)
		repo.On("GetUserByID", ctx, int64(1)).Return(testUser(1), nil)

		_, err := svc.GetBookingsByBooker(ctx, 1, "BOGUS", 0, 10)
		assert.ErrorIs(t, err, models.ErrUnknownState)
	})

	t.Run("InvalidPaging", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestBookingService(repo, nil)
		repo.On("GetUserByID", ctx, int64(1)).Return(testUser(1), nil)

		_, err := svc.GetBookingsByBooker(ctx, 1, models.StateAll, -1, 10)
		assert.ErrorIs(t, err, ErrInvalidPaging)

		_, err = svc.GetBookingsByBooker(ctx, 1, models.StateAll, 0, 0)
		assert.ErrorIs(t, err, ErrInvalidPaging)
	})

	t.Run("PageIndexAlignment", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestBookingService(repo, nil)
		repo.On("GetUserByID", ctx, int64(1)).Return(testUser(1), nil)
		repo.On("GetBookingsByBooker", ctx, int64(1), models.StateAll, mock.AnythingOfType("time.Time"), 3, 6).
			Return([]*models.Booking{}, nil)

		// from=7 size=3 lands on the page containing element 7.
		_, err := svc.GetBookingsByBooker(ctx, 1, models.StateAll, 7, 3)
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}

func TestLastNextBookings(t *testing.T) {
	ctx := context.Background()
	item := testItem(5, 2, true)
	repo := new(mockRepo)
	svc := newTestBookingService(repo, nil)

	last := testBooking(10, item, 1, models.StatusApproved)
	repo.On("GetLastBooking", ctx, int64(5), mock.AnythingOfType("time.Time")).Return(last, nil)
	repo.On("GetNextBooking", ctx, int64(5), mock.AnythingOfType("time.Time")).Return(nil, nil)

	gotLast, gotNext, err := svc.LastNextBookings(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, last, gotLast)
	assert.Nil(t, gotNext)
}
