package models

import (
	"errors"
	"time"
)

type BookingStatus string

const (
	StatusWaiting  BookingStatus = "WAITING"
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
)

// BookingState is a temporal/status filter for booking listings. CURRENT,
// PAST and FUTURE are evaluated against the clock at query time, not stored.
type BookingState string

const (
	StateAll      BookingState = "ALL"
	StateCurrent  BookingState = "CURRENT"
	StatePast     BookingState = "PAST"
	StateFuture   BookingState = "FUTURE"
	StateWaiting  BookingState = "WAITING"
	StateRejected BookingState = "REJECTED"
)

var ErrUnknownState = errors.New("unknown booking state")

// ParseBookingState maps a raw token to a BookingState. An empty token
// defaults to ALL; anything unrecognized is rejected before it can reach
// the booking engine.
func ParseBookingState(raw string) (BookingState, error) {
	if raw == "" {
		return StateAll, nil
	}
	switch BookingState(raw) {
	case StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected:
		return BookingState(raw), nil
	}
	return "", ErrUnknownState
}

type Booking struct {
	ID        int64         `json:"id"`
	ItemID    int64         `json:"item_id"`
	BookerID  int64         `json:"booker_id"`
	Start     time.Time     `json:"start"`
	End       time.Time     `json:"end"`
	Status    BookingStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Version   int64         `json:"version"`

	// Snapshots resolved by the store on read.
	Item   *Item `json:"item,omitempty"`
	Booker *User `json:"booker,omitempty"`
}
