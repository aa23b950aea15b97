package app

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/metinatakli/ticket-booking-system/api"
	"github.com/metinatakli/ticket-booking-system/internal/booking"
	"github.com/metinatakli/ticket-booking-system/internal/domain"
)

const (
	reservedMessage  = "Seats reserved successfully. Complete payment within 5 minutes."
	confirmedMessage = "Booking confirmed successfully"
	cancelledMessage = "Booking cancelled successfully. Refund will be processed in 3-5 business days."
)

func (app *Application) ReserveSeats(w http.ResponseWriter, r *http.Request) {
	var input api.ReserveSeatsRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	seats := make([]domain.SeatPosition, len(input.Seats))
	for i, s := range input.Seats {
		seats[i] = domain.SeatPosition{Section: s.Section, Row: s.Row, SeatNumber: s.SeatNumber}
	}

	result, err := app.bookings.Reserve(r.Context(), app.contextGetUserID(r), booking.ReserveInput{
		ShowID: input.ShowId,
		Seats:  seats,
	})
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	resp := api.ReserveSeatsResponse{
		ReservationId: result.ReservationID,
		TotalAmount:   result.TotalAmount,
		ExpiresAt:     result.ExpiresAt,
		Message:       reservedMessage,
		Success:       true,
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	var input api.PaymentRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	result, err := app.bookings.ProcessPayment(r.Context(), input.ReservationId, app.contextGetUserID(r), input.Amount)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	resp := api.PaymentResponse{
		BookingId: result.BookingID,
		Message:   confirmedMessage,
		Success:   true,
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) CancelBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, err := readIDParam(r, "bookingId", "booking")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	result, err := app.bookings.CancelBooking(r.Context(), bookingID, app.contextGetUserID(r))
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	resp := api.CancelBookingResponse{
		BookingId:    result.BookingID,
		RefundAmount: result.RefundAmount,
		Message:      cancelledMessage,
		Success:      true,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) ReleaseReservation(w http.ResponseWriter, r *http.Request) {
	reservationID := chi.URLParam(r, "reservationId")

	err := uuid.Validate(reservationID)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("reservation ID must be a valid UUID"))
		return
	}

	err = app.bookings.ReleaseReservation(r.Context(), reservationID, app.contextGetUserID(r))
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
