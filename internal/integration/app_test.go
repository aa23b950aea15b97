package integration_test

import (
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/ticket-booking-system/internal/app"
	"github.com/metinatakli/ticket-booking-system/internal/booking"
	"github.com/metinatakli/ticket-booking-system/internal/notification"
	"github.com/metinatakli/ticket-booking-system/internal/repository"
	"github.com/metinatakli/ticket-booking-system/internal/reservation"
	"github.com/metinatakli/ticket-booking-system/internal/seatlock"
	appvalidator "github.com/metinatakli/ticket-booking-system/internal/validator"
	"github.com/redis/go-redis/v9"
)

type TestApp struct {
	App         *app.Application
	DB          *pgxpool.Pool
	RedisClient *redis.Client
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	validator := appvalidator.NewValidator()

	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	composer, err := notification.NewComposer()
	if err != nil {
		db.Close()
		redisClient.Close()
		return nil, err
	}

	locker := seatlock.NewRedisLocker(redisClient, seatlock.WithLogger(logger))
	reservations := reservation.NewManager(redisClient, locker, reservation.WithLogger(logger))

	repos := booking.Repositories{
		Shows:         repository.NewPostgresShowRepository(db),
		Seats:         repository.NewPostgresSeatRepository(db),
		Users:         repository.NewPostgresUserRepository(db),
		Bookings:      repository.NewPostgresBookingRepository(db),
		Tickets:       repository.NewPostgresTicketRepository(db),
		Notifications: repository.NewPostgresNotificationRepository(db),
	}

	service := booking.NewService(repos, reservations, composer, booking.WithLogger(logger))

	application := app.NewApp(cfg, logger, validator, service)

	return &TestApp{
		App:         application,
		DB:          db,
		RedisClient: redisClient,
	}, nil
}
