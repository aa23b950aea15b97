package app

import (
	"net/http"

	"github.com/metinatakli/ticket-booking-system/api"
)

func (app *Application) GetHealth(w http.ResponseWriter, r *http.Request) {
	resp := api.HealthcheckResponse{
		Status: "UP",
		SystemInfo: api.SystemInfo{
			Version:     version,
			Environment: app.config.Env,
		},
	}

	err := app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
