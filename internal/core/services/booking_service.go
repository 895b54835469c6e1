package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/satrio28/hallbook/internal/core/domain"
	"github.com/satrio28/hallbook/internal/core/ports"
)

const (
	dateLayout      = "2006-01-02"
	availabilityTTL = time.Minute
)

type SubmitBookingRequest struct {
	HallID        string  `json:"hallId"`
	Date          string  `json:"date"`
	TimeSlot      string  `json:"timeSlot"`
	TimeSlotLabel string  `json:"timeSlotLabel"`
	DurationHours int     `json:"durationHours"`
	Price         float64 `json:"price"`
	GuestCount    int     `json:"guestCount"`
	Details       string  `json:"details"`
}

type BookingService struct {
	bookings ports.BookingRepository
	halls    ports.HallRepository
	cache    *redis.Client
	log      *zap.Logger
}

func NewBookingService(bookings ports.BookingRepository, halls ports.HallRepository, cache *redis.Client, log *zap.Logger) *BookingService {
	return &BookingService{
		bookings: bookings,
		halls:    halls,
		cache:    cache,
		log:      log,
	}
}

// Submit creates a pending booking for (hall, date, slot). The check against
// existing active bookings and the insert happen as one atomic ledger
// operation: of two concurrent submissions for the same key exactly one
// succeeds, the other receives domain.ErrSlotTaken.
func (s *BookingService) Submit(ctx context.Context, requester domain.Identity, req SubmitBookingRequest) (*domain.Booking, error) {
	var missing []string
	if req.HallID == "" {
		missing = append(missing, "hallId")
	}
	if req.Date == "" {
		missing = append(missing, "date")
	}
	if req.TimeSlot == "" {
		missing = append(missing, "timeSlot")
	}
	if req.TimeSlotLabel == "" {
		missing = append(missing, "timeSlotLabel")
	}
	if req.DurationHours <= 0 {
		missing = append(missing, "durationHours")
	}
	if req.Price <= 0 {
		missing = append(missing, "price")
	}
	if req.GuestCount <= 0 {
		missing = append(missing, "guestCount")
	}
	if len(missing) > 0 {
		return nil, &domain.ValidationError{Missing: missing}
	}

	hallID, err := uuid.Parse(req.HallID)
	if err != nil {
		return nil, fmt.Errorf("hallId: %w", domain.ErrInvalidID)
	}

	eventDate, err := parseEventDate(req.Date)
	if err != nil {
		return nil, err
	}

	slot := domain.TimeSlot(req.TimeSlot)
	if !slot.Valid() {
		return nil, domain.ErrInvalidTimeSlot
	}

	if _, err := s.halls.GetByID(ctx, hallID); err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		ID:            uuid.New(),
		HallID:        hallID,
		UserID:        requester.UserID,
		EventDate:     eventDate,
		TimeSlot:      slot,
		TimeSlotLabel: req.TimeSlotLabel,
		DurationHours: req.DurationHours,
		Price:         req.Price,
		GuestCount:    req.GuestCount,
		Details:       req.Details,
		Status:        domain.BookingPending,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.bookings.Insert(ctx, booking); err != nil {
		if domain.IsConflictError(err) {
			// Expected under contention, not a server fault.
			s.log.Info("slot already requested",
				zap.String("hall_id", hallID.String()),
				zap.String("slot", string(slot)),
				zap.String("date", eventDate.Format(dateLayout)))
			return nil, err
		}
		return nil, fmt.Errorf("insert booking: %w", err)
	}

	s.invalidateAvailability(ctx, hallID, eventDate)

	s.log.Info("booking submitted",
		zap.String("booking_id", booking.ID.String()),
		zap.String("hall_id", hallID.String()),
		zap.String("slot", string(slot)))

	return booking, nil
}

// CheckAvailability annotates the three fixed slots for a hall and date.
// Results are cached briefly; every booking mutation invalidates the key.
func (s *BookingService) CheckAvailability(ctx context.Context, hallIDRaw, dateRaw string) (*domain.DayAvailability, error) {
	hallID, err := uuid.Parse(hallIDRaw)
	if err != nil {
		return nil, fmt.Errorf("hallId: %w", domain.ErrInvalidID)
	}

	day, err := time.Parse(dateLayout, dateRaw)
	if err != nil {
		return nil, domain.ErrInvalidDate
	}

	if _, err := s.halls.GetByID(ctx, hallID); err != nil {
		return nil, err
	}

	key := availabilityKey(hallID, day)
	if cached, err := s.cache.Get(ctx, key).Result(); err == nil {
		var out domain.DayAvailability
		if err := json.Unmarshal([]byte(cached), &out); err == nil {
			return &out, nil
		}
	} else if err != redis.Nil {
		s.log.Warn("availability cache read failed", zap.Error(err))
	}

	taken, err := s.bookings.ListActiveSlots(ctx, hallID, day)
	if err != nil {
		return nil, fmt.Errorf("list active slots: %w", err)
	}

	occupied := make(map[domain.TimeSlot]bool, len(taken))
	for _, slot := range taken {
		occupied[slot] = true
	}

	out := &domain.DayAvailability{Date: day.Format(dateLayout)}
	for _, slot := range domain.AllTimeSlots() {
		out.Slots = append(out.Slots, domain.SlotAvailability{
			ID:        slot,
			Label:     slot.Label(),
			Available: !occupied[slot],
		})
	}

	if payload, err := json.Marshal(out); err == nil {
		if err := s.cache.Set(ctx, key, payload, availabilityTTL).Err(); err != nil {
			s.log.Warn("availability cache write failed", zap.Error(err))
		}
	}

	return out, nil
}

// Cancel moves an active booking to cancelled. Only the requester (or an
// admin) may cancel. Approved bookings additionally require at least
// CancelNoticeHours before the event; pending ones may be cancelled anytime.
func (s *BookingService) Cancel(ctx context.Context, caller domain.Identity, bookingIDRaw string) (*domain.Booking, error) {
	bookingID, err := uuid.Parse(bookingIDRaw)
	if err != nil {
		return nil, fmt.Errorf("bookingId: %w", domain.ErrInvalidID)
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.UserID != caller.UserID && caller.Role != domain.RoleAdmin {
		return nil, domain.ErrUnauthorized
	}

	if !booking.Active() {
		return nil, domain.ErrBookingTerminal
	}

	if time.Now().After(booking.EventDate) {
		return nil, domain.ErrPastEvent
	}

	if booking.Status == domain.BookingApproved {
		hoursUntilEvent := time.Until(booking.EventDate).Hours()
		if hoursUntilEvent < domain.CancelNoticeHours {
			return nil, &domain.CancellationWindowError{HoursUntilEvent: math.Round(hoursUntilEvent*100) / 100}
		}
	}

	updated, err := s.bookings.UpdateStatus(ctx, bookingID, domain.BookingCancelled)
	if err != nil {
		return nil, fmt.Errorf("cancel booking: %w", err)
	}

	s.invalidateAvailability(ctx, booking.HallID, booking.EventDate)

	s.log.Info("booking cancelled", zap.String("booking_id", bookingID.String()))
	return updated, nil
}

// Approve transitions a pending booking to approved. Manager-of-hall only.
func (s *BookingService) Approve(ctx context.Context, caller domain.Identity, bookingID string) (*domain.Booking, error) {
	return s.decide(ctx, caller, bookingID, domain.BookingApproved)
}

// Reject transitions a pending booking to rejected, freeing its slot.
// Manager-of-hall only.
func (s *BookingService) Reject(ctx context.Context, caller domain.Identity, bookingID string) (*domain.Booking, error) {
	return s.decide(ctx, caller, bookingID, domain.BookingRejected)
}

func (s *BookingService) decide(ctx context.Context, caller domain.Identity, bookingIDRaw string, status domain.BookingStatus) (*domain.Booking, error) {
	bookingID, err := uuid.Parse(bookingIDRaw)
	if err != nil {
		return nil, fmt.Errorf("bookingId: %w", domain.ErrInvalidID)
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	hall, err := s.halls.GetByID(ctx, booking.HallID)
	if err != nil {
		return nil, err
	}

	if hall.ManagerID != caller.UserID {
		return nil, domain.ErrUnauthorized
	}

	if booking.Status != domain.BookingPending {
		return nil, domain.ErrBookingNotPending
	}

	updated, err := s.bookings.UpdateStatus(ctx, bookingID, status)
	if err != nil {
		return nil, fmt.Errorf("update booking status: %w", err)
	}

	s.invalidateAvailability(ctx, booking.HallID, booking.EventDate)

	s.log.Info("booking decided",
		zap.String("booking_id", bookingID.String()),
		zap.String("status", string(status)))
	return updated, nil
}

// ListMine returns the caller's own bookings.
func (s *BookingService) ListMine(ctx context.Context, caller domain.Identity) ([]domain.Booking, error) {
	return s.bookings.ListByRequester(ctx, caller.UserID)
}

// ListForHall returns all bookings of a hall. Manager-of-hall only.
func (s *BookingService) ListForHall(ctx context.Context, caller domain.Identity, hallIDRaw string) ([]domain.Booking, error) {
	hallID, err := uuid.Parse(hallIDRaw)
	if err != nil {
		return nil, fmt.Errorf("hallId: %w", domain.ErrInvalidID)
	}

	hall, err := s.halls.GetByID(ctx, hallID)
	if err != nil {
		return nil, err
	}

	if hall.ManagerID != caller.UserID && caller.Role != domain.RoleAdmin {
		return nil, domain.ErrUnauthorized
	}

	return s.bookings.ListByHall(ctx, hallID)
}

func (s *BookingService) invalidateAvailability(ctx context.Context, hallID uuid.UUID, day time.Time) {
	key := availabilityKey(hallID, day)
	if err := s.cache.Del(ctx, key).Err(); err != nil {
		s.log.Warn("availability cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}

func availabilityKey(hallID uuid.UUID, day time.Time) string {
	return fmt.Sprintf("availability:%s:%s", hallID, day.Format(dateLayout))
}

// parseEventDate accepts either a full timestamp or a bare calendar date.
func parseEventDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, domain.ErrInvalidDate
	}
	return t, nil
}
