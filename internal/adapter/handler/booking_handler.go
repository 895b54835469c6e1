package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/satrio28/hallbook/internal/core/domain"
	"github.com/satrio28/hallbook/internal/core/services"
)

type BookingHandler struct {
	svc *services.BookingService
}

func NewBookingHandler(svc *services.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

func (h *BookingHandler) RegisterRoutes(r chi.Router) {
	r.Get("/halls/{hallID}/availability", h.CheckAvailability)
	r.Get("/halls/{hallID}/bookings", h.ListHallBookings)
	r.Post("/bookings", h.CreateBooking)
	r.Get("/bookings/me", h.ListMyBookings)
	r.Post("/bookings/{bookingID}/cancel", h.CancelBooking)
	r.Post("/bookings/{bookingID}/approve", h.ApproveBooking)
	r.Post("/bookings/{bookingID}/reject", h.RejectBooking)
}

type bookingResponse struct {
	BookingID     string  `json:"bookingId"`
	HallID        string  `json:"hallId"`
	UserID        string  `json:"userId"`
	EventDate     string  `json:"eventDate"`
	TimeSlot      string  `json:"timeSlot"`
	TimeSlotLabel string  `json:"timeSlotLabel"`
	DurationHours int     `json:"durationHours"`
	Price         float64 `json:"price"`
	GuestCount    int     `json:"guestCount"`
	Details       string  `json:"details,omitempty"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"createdAt"`
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		BookingID:     b.ID.String(),
		HallID:        b.HallID.String(),
		UserID:        b.UserID.String(),
		EventDate:     b.EventDate.Format(time.RFC3339),
		TimeSlot:      string(b.TimeSlot),
		TimeSlotLabel: b.TimeSlotLabel,
		DurationHours: b.DurationHours,
		Price:         b.Price,
		GuestCount:    b.GuestCount,
		Details:       b.Details,
		Status:        string(b.Status),
		CreatedAt:     b.CreatedAt.Format(time.RFC3339),
	}
}

func (h *BookingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	hallID := chi.URLParam(r, "hallID")
	date := r.URL.Query().Get("date")
	if date == "" {
		respondError(w, http.StatusBadRequest, "date query parameter is required")
		return
	}

	availability, err := h.svc.CheckAvailability(r.Context(), hallID, date)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, availability)
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req services.SubmitBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	booking, err := h.svc.Submit(r.Context(), identity, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"status":  "success",
		"data":    toBookingResponse(booking),
		"message": "Booking request submitted successfully",
	})
}

func (h *BookingHandler) ListMyBookings(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	bookings, err := h.svc.ListMine(r.Context(), identity)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"status": "success", "data": toBookingResponses(bookings)})
}

func (h *BookingHandler) ListHallBookings(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	bookings, err := h.svc.ListForHall(r.Context(), identity, chi.URLParam(r, "hallID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"status": "success", "data": toBookingResponses(bookings)})
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	booking, err := h.svc.Cancel(r.Context(), identity, chi.URLParam(r, "bookingID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "Booking cancelled successfully",
		"data":    toBookingResponse(booking),
	})
}

func (h *BookingHandler) ApproveBooking(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.svc.Approve, "Booking approved")
}

func (h *BookingHandler) RejectBooking(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.svc.Reject, "Booking rejected")
}

func (h *BookingHandler) decide(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, caller domain.Identity, bookingID string) (*domain.Booking, error), message string) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	booking, err := op(r.Context(), identity, chi.URLParam(r, "bookingID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": message,
		"data":    toBookingResponse(booking),
	})
}

func toBookingResponses(bookings []domain.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, toBookingResponse(&bookings[i]))
	}
	return out
}

// writeDomainError converts domain errors to the caller-visible HTTP shape.
// Slot conflicts are the expected case and carry a retry hint.
func writeDomainError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		respondJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "Missing required fields",
			"missing": ve.Missing,
		})
		return
	}

	var cwe *domain.CancellationWindowError
	if errors.As(err, &cwe) {
		respondJSON(w, http.StatusBadRequest, map[string]any{
			"error":           "Cancellation not allowed within 24 hours",
			"message":         cwe.Error(),
			"hoursUntilEvent": cwe.HoursUntilEvent,
		})
		return
	}

	switch {
	case domain.IsConflictError(err):
		respondJSON(w, http.StatusConflict, map[string]any{
			"error":   "slot_already_requested",
			"message": "Time slot not available, please choose another",
		})
	case domain.IsNotFoundError(err):
		respondError(w, http.StatusNotFound, err.Error())
	case domain.IsValidationError(err):
		respondError(w, http.StatusBadRequest, err.Error())
	case domain.IsAuthError(err):
		respondError(w, http.StatusForbidden, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
