package domain

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingApproved  BookingStatus = "approved"
	BookingRejected  BookingStatus = "rejected"
	BookingCancelled BookingStatus = "cancelled"
)

// TimeSlot is one of the three fixed daily windows a hall can be booked for.
type TimeSlot string

const (
	SlotMorning   TimeSlot = "morning"
	SlotAfternoon TimeSlot = "afternoon"
	SlotEvening   TimeSlot = "evening"
)

var slotLabels = map[TimeSlot]string{
	SlotMorning:   "Morning (10:00 AM - 2:00 PM)",
	SlotAfternoon: "Afternoon (3:00 PM - 7:00 PM)",
	SlotEvening:   "Evening (7:30 PM - 11:30 PM)",
}

// AllTimeSlots returns the fixed slots in display order.
func AllTimeSlots() []TimeSlot {
	return []TimeSlot{SlotMorning, SlotAfternoon, SlotEvening}
}

func (s TimeSlot) Valid() bool {
	_, ok := slotLabels[s]
	return ok
}

func (s TimeSlot) Label() string {
	return slotLabels[s]
}

// CancelNoticeHours is the minimum notice required to cancel an approved booking.
const CancelNoticeHours = 24

type Booking struct {
	ID            uuid.UUID
	HallID        uuid.UUID
	UserID        uuid.UUID
	EventDate     time.Time
	TimeSlot      TimeSlot
	TimeSlotLabel string
	DurationHours int
	Price         float64
	GuestCount    int
	Details       string
	Status        BookingStatus
	CreatedAt     time.Time
}

// Active reports whether the booking still occupies its slot.
func (b *Booking) Active() bool {
	return b.Status == BookingPending || b.Status == BookingApproved
}

// SlotAvailability annotates one fixed slot for a given hall and date.
type SlotAvailability struct {
	ID        TimeSlot `json:"id"`
	Label     string   `json:"label"`
	Available bool     `json:"available"`
}

// DayAvailability is the availability of all fixed slots for one date.
type DayAvailability struct {
	Date  string             `json:"date"`
	Slots []SlotAvailability `json:"slots"`
}
