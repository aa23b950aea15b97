package domain

import "errors"

var (
	ErrRecordNotFound      = errors.New("record not found")
	ErrShowNotFound        = errors.New("show not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrReservationNotFound = errors.New("reservation expired or not found")

	ErrNoSeatsSelected       = errors.New("at least one seat must be selected")
	ErrTooManySeats          = errors.New("cannot book more than 10 seats at once")
	ErrDuplicateSeat         = errors.New("the same seat was selected more than once")
	ErrSeatNotFound          = errors.New("seat not found")
	ErrSeatsNoLongerExist    = errors.New("some seats no longer exist")
	ErrSeatsAlreadyBooked    = errors.New("some seats are already booked")
	ErrSeatsLocked           = errors.New("selected seats are currently being reserved by another user")
	ErrAmountMismatch        = errors.New("payment amount mismatch")
	ErrBookingCancelled      = errors.New("booking is already cancelled")
	ErrCancellationTooLate   = errors.New("cannot cancel booking within 24 hours of the show")
	ErrShowAlreadyStarted    = errors.New("cannot cancel booking for a show that has already started")
	ErrPaymentRecordNotFound = errors.New("no payment record found for this booking")

	ErrReservationNotOwned = errors.New("you are not authorized to pay for this reservation")
	ErrBookingNotOwned     = errors.New("you are not authorized to cancel this booking")
)

// Kind groups errors into the categories callers react to.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindBadRequest
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrRecordNotFound, KindNotFound},
	{ErrShowNotFound, KindNotFound},
	{ErrUserNotFound, KindNotFound},
	{ErrBookingNotFound, KindNotFound},
	{ErrReservationNotFound, KindNotFound},

	{ErrNoSeatsSelected, KindBadRequest},
	{ErrTooManySeats, KindBadRequest},
	{ErrDuplicateSeat, KindBadRequest},
	{ErrSeatNotFound, KindBadRequest},
	{ErrSeatsNoLongerExist, KindBadRequest},
	{ErrSeatsAlreadyBooked, KindBadRequest},
	{ErrSeatsLocked, KindBadRequest},
	{ErrAmountMismatch, KindBadRequest},
	{ErrBookingCancelled, KindBadRequest},
	{ErrCancellationTooLate, KindBadRequest},
	{ErrShowAlreadyStarted, KindBadRequest},
	{ErrPaymentRecordNotFound, KindBadRequest},

	{ErrReservationNotOwned, KindUnauthorized},
	{ErrBookingNotOwned, KindUnauthorized},
}

// KindOf reports the category of err. Anything not wrapping one of the
// sentinel errors above is internal.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}

	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}

	return KindInternal
}
