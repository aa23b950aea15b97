package app

import (
	"net/http"

	"github.com/metinatakli/ticket-booking-system/api"
	"github.com/metinatakli/ticket-booking-system/internal/booking"
)

func (app *Application) GetSeatMap(w http.ResponseWriter, r *http.Request) {
	showID, err := readIDParam(r, "showId", "show")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	seats, err := app.bookings.ShowSeats(r.Context(), showID)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toSeatMapResponse(seats), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toSeatMapResponse(seats *booking.ShowSeats) api.SeatMapResponse {
	resp := api.SeatMapResponse{
		ShowId:        seats.Show.ID,
		EventTitle:    seats.Show.EventTitle,
		VenueName:     seats.Show.VenueName,
		StartTime:     seats.Show.StartTime,
		Sections:      make([]api.SeatSection, len(seats.Sections)),
		BookedSeatIds: nonNil(seats.BookedSeatIDs),
		HeldSeatIds:   nonNil(seats.HeldSeatIDs),
	}

	for i, section := range seats.Sections {
		rows := make([]api.SeatRow, len(section.Rows))

		for j, row := range section.Rows {
			infos := make([]api.SeatInfo, len(row.Seats))
			for k, seat := range row.Seats {
				infos[k] = api.SeatInfo{
					Id:         seat.ID,
					SeatNumber: seat.SeatNumber,
					SeatLabel:  seat.Label,
					Status:     string(seat.Status),
				}
			}

			rows[j] = api.SeatRow{Row: row.Row, Seats: infos}
		}

		resp.Sections[i] = api.SeatSection{Section: section.Section, Rows: rows}
	}

	return resp
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}

	return ids
}
