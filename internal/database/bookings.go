package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lendhub/internal/models"
)

const bookingSelect = `
SELECT b.id, b.item_id, b.booker_id, b.start_time, b.end_time, b.status,
       b.created_at, b.updated_at, b.version,
       i.name, i.description, i.available, i.owner_id,
       u.name, u.email
FROM bookings b
JOIN items i ON i.id = b.item_id
JOIN users u ON u.id = b.booker_id`

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (item_id, booker_id, start_time, end_time, status, created_at, updated_at, version)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query,
		booking.ItemID,
		booking.BookerID,
		booking.Start.UTC(),
		booking.End.UTC(),
		booking.Status,
		now,
		now,
		1,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now
	booking.Version = 1
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := bookingSelect + ` WHERE b.id = ?`
	booking, err := db.scanBookingRow(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

// UpdateBookingStatusWithVersion transitions a booking's status with an
// optimistic compare-and-set: the update applies only if the version still
// matches and the booking has not already been approved. Under concurrent
// approval calls at most one caller observes a successful transition.
func (db *DB) UpdateBookingStatusWithVersion(ctx context.Context, id, fromVersion int64, status models.BookingStatus) error {
	query := `UPDATE bookings SET status = ?, version = version + 1, updated_at = ?
              WHERE id = ? AND version = ? AND status <> ?`
	result, err := db.ExecContext(ctx, query, status, time.Now().UTC(), id, fromVersion, models.StatusApproved)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}

func (db *DB) GetBookingsByBooker(ctx context.Context, bookerID int64, state models.BookingState, now time.Time, limit, offset int) ([]*models.Booking, error) {
	return db.queryBookingsByState(ctx, `b.booker_id = ?`, bookerID, state, now, limit, offset)
}

func (db *DB) GetBookingsByOwner(ctx context.Context, ownerID int64, state models.BookingState, now time.Time, limit, offset int) ([]*models.Booking, error) {
	return db.queryBookingsByState(ctx, `i.owner_id = ?`, ownerID, state, now, limit, offset)
}

func (db *DB) queryBookingsByState(ctx context.Context, actorCond string, actorID int64, state models.BookingState, now time.Time, limit, offset int) ([]*models.Booking, error) {
	now = now.UTC()
	args := []interface{}{actorID}

	var stateCond string
	switch state {
	case models.StateAll:
		stateCond = ""
	case models.StateCurrent:
		stateCond = ` AND b.start_time < ? AND b.end_time > ?`
		args = append(args, now, now)
	case models.StatePast:
		stateCond = ` AND b.end_time < ?`
		args = append(args, now)
	case models.StateFuture:
		stateCond = ` AND b.start_time > ?`
		args = append(args, now)
	case models.StateWaiting:
		stateCond = ` AND b.status = ?`
		args = append(args, models.StatusWaiting)
	case models.StateRejected:
		stateCond = ` AND b.status = ?`
		args = append(args, models.StatusRejected)
	default:
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownState, state)
	}

	query := bookingSelect + ` WHERE ` + actorCond + stateCond +
		` ORDER BY b.start_time DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	return db.queryBookings(ctx, query, args...)
}

// GetLastBooking returns the approved booking for an item with the latest
// end time among those started before now, or nil when there is none.
func (db *DB) GetLastBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	query := bookingSelect + ` WHERE b.item_id = ? AND b.status = ? AND b.start_time < ?
              ORDER BY b.end_time DESC LIMIT 1`
	booking, err := db.scanBookingRow(db.QueryRowContext(ctx, query, itemID, models.StatusApproved, now.UTC()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last booking: %w", err)
	}
	return booking, nil
}

// GetNextBooking returns the approved booking for an item with the earliest
// start time after now, or nil when there is none.
func (db *DB) GetNextBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	query := bookingSelect + ` WHERE b.item_id = ? AND b.status = ? AND b.start_time > ?
              ORDER BY b.start_time ASC LIMIT 1`
	booking, err := db.scanBookingRow(db.QueryRowContext(ctx, query, itemID, models.StatusApproved, now.UTC()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get next booking: %w", err)
	}
	return booking, nil
}

// GetBookingsInPeriod returns bookings overlapping [start, end), ordered by
// start time. The report exporter reads through this.
func (db *DB) GetBookingsInPeriod(ctx context.Context, start, end time.Time) ([]*models.Booking, error) {
	query := bookingSelect + ` WHERE b.start_time < ? AND b.end_time > ?
              ORDER BY b.start_time ASC`
	return db.queryBookings(ctx, query, end.UTC(), start.UTC())
}

// HasCompletedBooking reports whether the booker has at least one booking on
// the item that ended before now.
func (db *DB) HasCompletedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE booker_id = ? AND item_id = ? AND end_time < ?`
	var count int
	err := db.QueryRowContext(ctx, query, bookerID, itemID, now.UTC()).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to count completed bookings: %w", err)
	}
	return count > 0, nil
}

type bookingScanner interface {
	Scan(dest ...interface{}) error
}

func (db *DB) scanBookingRow(row bookingScanner) (*models.Booking, error) {
	b := &models.Booking{Item: &models.Item{}, Booker: &models.User{}}
	err := row.Scan(
		&b.ID, &b.ItemID, &b.BookerID, &b.Start, &b.End, &b.Status,
		&b.CreatedAt, &b.UpdatedAt, &b.Version,
		&b.Item.Name, &b.Item.Description, &b.Item.Available, &b.Item.OwnerID,
		&b.Booker.Name, &b.Booker.Email,
	)
	if err != nil {
		return nil, err
	}
	b.Item.ID = b.ItemID
	b.Booker.ID = b.BookerID
	return b, nil
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...interface{}) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := db.scanBookingRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
