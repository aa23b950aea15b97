package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
)

type contextKey string

const userIDContextKey = contextKey("userId")

const userIDHeader = "X-User-ID"

func (app *Application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")

				app.serverErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// requireUser takes the caller's identity from the X-User-ID header.
func (app *Application) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseInt(r.Header.Get(userIDHeader), 10, 64)
		if err != nil || userID < 1 {
			app.unauthorizedAccessResponse(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), userIDContextKey, userID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (app *Application) contextGetUserID(r *http.Request) int64 {
	userID, ok := r.Context().Value(userIDContextKey).(int64)
	if !ok {
		panic("missing user id value in request context")
	}

	return userID
}

func (app *Application) contextGetLogger(r *http.Request) *slog.Logger {
	return app.logger.With(
		"request_id", middleware.GetReqID(r.Context()),
		"method", r.Method,
		"uri", r.URL.RequestURI(),
	)
}
