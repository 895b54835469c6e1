package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/satrio28/hallbook/internal/core/domain"
	"github.com/satrio28/hallbook/internal/core/ports/mocks"
	"github.com/satrio28/hallbook/internal/core/services"
)

// memoryBookingLedger enforces the same guarantee as the partial unique
// index: at most one active booking per (hall, date, slot), decided under
// one lock.
type memoryBookingLedger struct {
	mu     sync.Mutex
	active map[string]uuid.UUID
}

func newMemoryBookingLedger() *memoryBookingLedger {
	return &memoryBookingLedger{active: make(map[string]uuid.UUID)}
}

func slotKey(hallID uuid.UUID, day time.Time, slot domain.TimeSlot) string {
	return fmt.Sprintf("%s|%s|%s", hallID, day.Format("2006-01-02"), slot)
}

func (l *memoryBookingLedger) Insert(_ context.Context, booking *domain.Booking) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := slotKey(booking.HallID, booking.EventDate, booking.TimeSlot)
	if _, taken := l.active[key]; taken {
		return domain.ErrSlotTaken
	}
	l.active[key] = booking.ID
	return nil
}

func (l *memoryBookingLedger) GetByID(context.Context, uuid.UUID) (*domain.Booking, error) {
	return nil, domain.ErrBookingNotFound
}

func (l *memoryBookingLedger) ListActiveSlots(context.Context, uuid.UUID, time.Time) ([]domain.TimeSlot, error) {
	return nil, nil
}

func (l *memoryBookingLedger) UpdateStatus(context.Context, uuid.UUID, domain.BookingStatus) (*domain.Booking, error) {
	return nil, domain.ErrBookingNotFound
}

func (l *memoryBookingLedger) ListByRequester(context.Context, uuid.UUID) ([]domain.Booking, error) {
	return nil, nil
}

func (l *memoryBookingLedger) ListByHall(context.Context, uuid.UUID) ([]domain.Booking, error) {
	return nil, nil
}

func TestSubmit_ConcurrentSameSlot(t *testing.T) {
	ledger := newMemoryBookingLedger()
	mockHalls := mocks.NewHallRepository(t)
	cache, _ := redismock.NewClientMock()

	service := services.NewBookingService(ledger, mockHalls, cache, zap.NewNop())

	hallID := uuid.New()
	mockHalls.On("GetByID", mock.Anything, hallID).Return(&domain.Hall{ID: hallID, ManagerID: uuid.New()}, nil)

	const workers = 32

	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.Submit(context.Background(), domain.Identity{UserID: uuid.New(), Role: domain.RoleCustomer}, services.SubmitBookingRequest{
				HallID:        hallID.String(),
				Date:          "2025-08-15",
				TimeSlot:      "evening",
				TimeSlotLabel: domain.SlotEvening.Label(),
				DurationHours: 4,
				Price:         1200,
				GuestCount:    80,
			})
			results <- err
		}()
	}

	wg.Wait()
	close(results)

	var succeeded, conflicted int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case domain.IsConflictError(err):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, conflicted)
}
