// Package notification renders the messages stored for a user after a
// booking is confirmed or cancelled.
package notification

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
	"time"

	"github.com/metinatakli/ticket-booking-system/internal/domain"
	"github.com/shopspring/decimal"
)

//go:embed "templates"
var templateFS embed.FS

const (
	confirmationTemplate = "booking_confirmation.tmpl"
	cancellationTemplate = "booking_cancellation.tmpl"
)

var funcs = template.FuncMap{
	"money": func(d decimal.Decimal) string {
		return d.StringFixed(2)
	},
	"showTime": func(t time.Time) string {
		return t.UTC().Format("Mon, 02 Jan 2006 15:04 MST")
	},
	"inc": func(i int) int {
		return i + 1
	},
}

type Composer struct {
	templates map[string]*template.Template
}

func NewComposer() (*Composer, error) {
	c := &Composer{templates: make(map[string]*template.Template)}

	for _, name := range []string{confirmationTemplate, cancellationTemplate} {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		c.templates[name] = tmpl
	}

	return c, nil
}

type ticketLine struct {
	Section    string
	Row        string
	SeatNumber string
	Price      decimal.Decimal
}

func ticketLines(tickets []domain.Ticket) []ticketLine {
	lines := make([]ticketLine, len(tickets))
	for i, t := range tickets {
		lines[i] = ticketLine{Price: t.Price}
		if t.Seat != nil {
			lines[i].Section = t.Seat.Section
			lines[i].Row = t.Seat.Row
			lines[i].SeatNumber = t.Seat.SeatNumber
		}
	}

	return lines
}

// BookingConfirmation renders the confirmation for booking. Ticket seats are
// read from booking.Tickets.
func (c *Composer) BookingConfirmation(user *domain.User, show *domain.Show, booking *domain.Booking) (*domain.Notification, error) {
	data := map[string]any{
		"User":    user,
		"Show":    show,
		"Booking": booking,
		"Tickets": ticketLines(booking.Tickets),
	}

	return c.render(confirmationTemplate, user.ID, domain.NotificationBookingConfirmation, data)
}

func (c *Composer) BookingCancellation(
	user *domain.User,
	show *domain.Show,
	booking *domain.Booking,
	tickets []domain.Ticket,
	refund *domain.Refund,
) (*domain.Notification, error) {
	data := map[string]any{
		"User":    user,
		"Show":    show,
		"Booking": booking,
		"Tickets": ticketLines(tickets),
		"Refund":  refund,
	}

	return c.render(cancellationTemplate, user.ID, domain.NotificationCancelBooking, data)
}

func (c *Composer) render(name string, userID int64, kind domain.NotificationType, data any) (*domain.Notification, error) {
	tmpl, ok := c.templates[name]
	if !ok {
		return nil, fmt.Errorf("unknown template %s", name)
	}

	subject := new(bytes.Buffer)
	err := tmpl.ExecuteTemplate(subject, "subject", data)
	if err != nil {
		return nil, fmt.Errorf("render %s subject: %w", name, err)
	}

	body := new(bytes.Buffer)
	err = tmpl.ExecuteTemplate(body, "body", data)
	if err != nil {
		return nil, fmt.Errorf("render %s body: %w", name, err)
	}

	return &domain.Notification{
		UserID:  userID,
		Type:    kind,
		Subject: subject.String(),
		Body:    body.String(),
	}, nil
}
