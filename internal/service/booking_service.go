package service

import (
	"context"
	"errors"
	"time"

	"lendhub/internal/database"
	"lendhub/internal/domain"
	"lendhub/internal/events"
	"lendhub/internal/models"

	"github.com/rs/zerolog"
)

// CreateBookingInput carries the caller-supplied booking fields. The input
// boundary validates the period before this reaches the engine; the engine
// re-checks defensively.
type CreateBookingInput struct {
	ItemID int64     `json:"item_id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

// BookingService owns the booking lifecycle: creation, the owner's
// approve/reject decision and time-partitioned retrieval. Users and items
// are re-fetched on every operation; caller-supplied snapshots are never
// trusted for authorization.
type BookingService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

func (s *BookingService) CreateBooking(ctx context.Context, requesterID int64, input CreateBookingInput) (*models.Booking, error) {
	user, err := s.repo.GetUserByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.GetItemByID(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}

	if item.OwnerID == requesterID {
		return nil, ErrOwnItem
	}
	if !item.Available {
		return nil, ErrItemUnavailable
	}

	now := time.Now()
	if !input.Start.After(now) || !input.End.After(now) || !input.End.After(input.Start) {
		return nil, ErrInvalidPeriod
	}

	booking := &models.Booking{
		ItemID:   item.ID,
		BookerID: user.ID,
		Start:    input.Start.UTC(),
		End:      input.End.UTC(),
		Status:   models.StatusWaiting,
	}

	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	booking.Item = item
	booking.Booker = user

	s.publishEvent(events.EventBookingCreated, booking, requesterID)
	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, requesterID, bookingID int64) (*models.Booking, error) {
	if _, err := s.repo.GetUserByID(ctx, requesterID); err != nil {
		return nil, err
	}

	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	// Existence is hidden from actors who are neither the booker nor the
	// item's owner.
	if booking.BookerID != requesterID && booking.Item.OwnerID != requesterID {
		return nil, database.ErrBookingNotFound
	}
	return booking, nil
}

func (s *BookingService) GetBookingsByBooker(ctx context.Context, bookerID int64, state models.BookingState, from, size int) ([]*models.Booking, error) {
	if _, err := s.repo.GetUserByID(ctx, bookerID); err != nil {
		return nil, err
	}
	if _, err := models.ParseBookingState(string(state)); err != nil {
		return nil, err
	}
	limit, offset, err := pageOffset(from, size)
	if err != nil {
		return nil, err
	}
	return s.repo.GetBookingsByBooker(ctx, bookerID, state, time.Now(), limit, offset)
}

func (s *BookingService) GetBookingsByOwner(ctx context.Context, ownerID int64, state models.BookingState, from, size int) ([]*models.Booking, error) {
	if _, err := s.repo.GetUserByID(ctx, ownerID); err != nil {
		return nil, err
	}
	if _, err := models.ParseBookingState(string(state)); err != nil {
		return nil, err
	}
	limit, offset, err := pageOffset(from, size)
	if err != nil {
		return nil, err
	}
	return s.repo.GetBookingsByOwner(ctx, ownerID, state, time.Now(), limit, offset)
}

// ApproveBooking settles a WAITING request. The booker acting as approver is
// answered with not-found; a third party who is not the owner gets an access
// error since the preceding checks already established nothing about the
// booking was revealed to them that the error would leak.
func (s *BookingService) ApproveBooking(ctx context.Context, bookingID, ownerID int64, approved bool) (*models.Booking, error) {
	if _, err := s.repo.GetUserByID(ctx, ownerID); err != nil {
		return nil, err
	}

	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.BookerID == ownerID {
		return nil, ErrBookerApproval
	}
	if booking.Item.OwnerID != ownerID {
		return nil, ErrAccessDenied
	}
	if booking.Status == models.StatusApproved {
		return nil, ErrAlreadyApproved
	}

	status := models.StatusRejected
	eventType := events.EventBookingRejected
	if approved {
		status = models.StatusApproved
		eventType = events.EventBookingApproved
	}

	err = s.repo.UpdateBookingStatusWithVersion(ctx, bookingID, booking.Version, status)
	if errors.Is(err, database.ErrConcurrentModification) {
		// Lost the race; report already-approved when that is what won.
		current, curErr := s.repo.GetBooking(ctx, bookingID)
		if curErr == nil && current.Status == models.StatusApproved {
			return nil, ErrAlreadyApproved
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	s.publishEvent(eventType, updated, ownerID)
	return updated, nil
}

// LastNextBookings derives an item's adjacent approved bookings: the latest
// finished-or-running one and the nearest upcoming one. Either may be nil.
func (s *BookingService) LastNextBookings(ctx context.Context, itemID int64) (last, next *models.Booking, err error) {
	now := time.Now()
	last, err = s.repo.GetLastBooking(ctx, itemID, now)
	if err != nil {
		return nil, nil, err
	}
	next, err = s.repo.GetNextBooking(ctx, itemID, now)
	if err != nil {
		return nil, nil, err
	}
	return last, next, nil
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, actorID int64) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID: booking.ID,
		ItemID:    booking.ItemID,
		BookerID:  booking.BookerID,
		Status:    string(booking.Status),
		Start:     booking.Start,
		End:       booking.End,
		ActorID:   actorID,
	}
	if booking.Item != nil {
		payload.ItemName = booking.Item.Name
		payload.OwnerID = booking.Item.OwnerID
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}
