package service

import "errors"

// Policy errors raised by the services. Not-found-class errors deliberately
// hide entity existence from actors without visibility; the boundary maps
// them the same way as a genuine missing row.
var (
	// ErrOwnItem: an owner tried to book their own item. Not-found class.
	ErrOwnItem = errors.New("cannot book your own item")

	// ErrBookerApproval: a booker tried to decide their own request.
	// Not-found class, so existence is not confirmed to a non-owner.
	ErrBookerApproval = errors.New("cannot change the status of your own booking")

	// ErrAccessDenied: actor is known to see the entity but lacks the
	// permission for a state-changing action.
	ErrAccessDenied = errors.New("only the owner can make changes")

	ErrItemUnavailable    = errors.New("item is not available for booking")
	ErrAlreadyApproved    = errors.New("booking is already approved")
	ErrInvalidPeriod      = errors.New("booking period is invalid")
	ErrInvalidPaging      = errors.New("paging parameters are invalid")
	ErrBlankField         = errors.New("required field is blank")
	ErrInvalidEmail       = errors.New("email is malformed")
	ErrNoCompletedBooking = errors.New("no completed booking for this item")
)
