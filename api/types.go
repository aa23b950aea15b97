// Package api holds the JSON request and response bodies of the HTTP API.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	RequestId        string            `json:"requestId"`
	Timestamp        time.Time         `json:"timestamp"`
	ValidationErrors []ValidationError `json:"validationErrors"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

type SeatInfo struct {
	Id         int64  `json:"id"`
	SeatNumber string `json:"seatNumber"`
	SeatLabel  string `json:"seatLabel"`
	Status     string `json:"status"`
}

type SeatRow struct {
	Row   string     `json:"row"`
	Seats []SeatInfo `json:"seats"`
}

type SeatSection struct {
	Section string    `json:"section"`
	Rows    []SeatRow `json:"rows"`
}

type SeatMapResponse struct {
	ShowId        int64         `json:"showId"`
	EventTitle    string        `json:"eventTitle"`
	VenueName     string        `json:"venueName"`
	StartTime     time.Time     `json:"startTime"`
	Sections      []SeatSection `json:"sections"`
	BookedSeatIds []int64       `json:"bookedSeatIds"`
	HeldSeatIds   []int64       `json:"heldSeatIds"`
}

type SeatSelection struct {
	Section    string `json:"section" validate:"required,max=20"`
	Row        string `json:"row" validate:"required,max=20"`
	SeatNumber string `json:"seatNumber" validate:"required,max=20"`
}

// Seat count limits are enforced by the booking service, not here.
type ReserveSeatsRequest struct {
	ShowId int64           `json:"showId" validate:"gt=0"`
	Seats  []SeatSelection `json:"seats" validate:"dive"`
}

type ReserveSeatsResponse struct {
	ReservationId string          `json:"reservationId"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	ExpiresAt     time.Time       `json:"expiresAt"`
	Message       string          `json:"message"`
	Success       bool            `json:"success"`
}

type PaymentRequest struct {
	ReservationId string          `json:"reservationId" validate:"required,uuid"`
	Amount        decimal.Decimal `json:"amount" validate:"gt=0"`
}

type PaymentResponse struct {
	BookingId int64  `json:"bookingId"`
	Message   string `json:"message"`
	Success   bool   `json:"success"`
}

type CancelBookingResponse struct {
	BookingId    int64           `json:"bookingId"`
	RefundAmount decimal.Decimal `json:"refundAmount"`
	Message      string          `json:"message"`
	Success      bool            `json:"success"`
}
