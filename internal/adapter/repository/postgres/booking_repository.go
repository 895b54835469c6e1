package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/satrio28/hallbook/internal/core/domain"
)

// uniqueViolation is the postgres error code raised by the partial unique
// index on (hall_id, event day, time_slot) over active bookings. That index
// is what makes check-then-insert a single atomic operation.
const uniqueViolation = "23505"

type BookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, hall_id, user_id, event_date, time_slot, time_slot_label, duration_hours, price, guest_count, details, status, created_at`

func (r *BookingRepository) Insert(ctx context.Context, b *domain.Booking) error {
	query := `
	INSERT INTO bookings (` + bookingColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		b.ID, b.HallID, b.UserID, b.EventDate, b.TimeSlot, b.TimeSlotLabel,
		b.DurationHours, b.Price, b.GuestCount, b.Details, b.Status, b.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return domain.ErrSlotTaken
		}
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRowContext(ctx, query, bookingID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}

	return booking, nil
}

// ListActiveSlots returns slots held by pending or approved bookings on the
// calendar day containing day, regardless of the stored time-of-day.
func (r *BookingRepository) ListActiveSlots(ctx context.Context, hallID uuid.UUID, day time.Time) ([]domain.TimeSlot, error) {
	startOfDay := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	endOfDay := startOfDay.Add(24 * time.Hour)

	query := `
	SELECT time_slot FROM bookings
	WHERE hall_id = $1
	  AND event_date >= $2 AND event_date < $3
	  AND status IN ('pending', 'approved')
	`

	rows, err := r.db.QueryContext(ctx, query, hallID, startOfDay, endOfDay)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var slots []domain.TimeSlot
	for rows.Next() {
		var slot domain.TimeSlot
		if err := rows.Scan(&slot); err != nil {
			return nil, err
		}

		slots = append(slots, slot)
	}

	return slots, rows.Err()
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, bookingID uuid.UUID, status domain.BookingStatus) (*domain.Booking, error) {
	query := `
	UPDATE bookings
	SET status = $1
	WHERE id = $2
	RETURNING ` + bookingColumns

	booking, err := scanBooking(r.db.QueryRowContext(ctx, query, status, bookingID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}

	return booking, nil
}

func (r *BookingRepository) ListByRequester(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *BookingRepository) ListByHall(ctx context.Context, hallID uuid.UUID) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE hall_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, hallID)
}

func (r *BookingRepository) list(ctx context.Context, query string, arg any) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}

		bookings = append(bookings, *booking)
	}

	return bookings, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(
		&b.ID,
		&b.HallID,
		&b.UserID,
		&b.EventDate,
		&b.TimeSlot,
		&b.TimeSlotLabel,
		&b.DurationHours,
		&b.Price,
		&b.GuestCount,
		&b.Details,
		&b.Status,
		&b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &b, nil
}
