package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/ticket-booking-system/internal/booking"
	"github.com/metinatakli/ticket-booking-system/internal/events"
	"github.com/metinatakli/ticket-booking-system/internal/notification"
	"github.com/metinatakli/ticket-booking-system/internal/repository"
	"github.com/metinatakli/ticket-booking-system/internal/reservation"
	"github.com/metinatakli/ticket-booking-system/internal/seatlock"
	appvalidator "github.com/metinatakli/ticket-booking-system/internal/validator"
	"github.com/metinatakli/ticket-booking-system/internal/vcs"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/riandyrn/otelchi"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const serviceName = "ticket-booking-api"

var (
	version = vcs.Version()
)

// BookingService is the workflow the HTTP handlers drive.
type BookingService interface {
	ShowSeats(ctx context.Context, showID int64) (*booking.ShowSeats, error)
	Reserve(ctx context.Context, userID int64, input booking.ReserveInput) (*booking.ReserveResult, error)
	ProcessPayment(ctx context.Context, reservationID string, userID int64, amount decimal.Decimal) (*booking.PaymentResult, error)
	CancelBooking(ctx context.Context, bookingID, userID int64) (*booking.CancelResult, error)
	ReleaseReservation(ctx context.Context, reservationID string, userID int64) error
}

type Application struct {
	config    Config
	logger    *slog.Logger
	validator *validator.Validate
	bookings  BookingService
}

type Config struct {
	Port                    int
	Env                     string
	DB                      DBConfig
	Redis                   RedisConfig
	SeatLockStrategy        string
	ReservationDegradedMode bool
	AMQPUrl                 string
	OtelCollectorUrl        string
}

type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleTime  time.Duration
}

type RedisConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

func NewApp(cfg Config, logger *slog.Logger, validator *validator.Validate, bookings BookingService) *Application {
	return &Application{
		config:    cfg,
		logger:    logger,
		validator: validator,
		bookings:  bookings,
	}
}

func Run() error {
	cfg, displayVersion, err := parseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		return err
	}

	if displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	strategy, err := seatlock.ParseStrategy(cfg.SeatLockStrategy)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	shutdownTelemetry, err := InitTelemetry(cfg, logger)
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	if cfg.OtelCollectorUrl != "" {
		logger = slog.New(NewMultiHandler(logger.Handler(), otelslog.NewHandler(serviceName)))
	}

	db, err := NewDatabasePool(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := NewRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQPUrl != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPUrl)
		if err != nil {
			return err
		}
		publisher = amqpPublisher
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("failed to close event publisher", "error", err)
		}
	}()

	composer, err := notification.NewComposer()
	if err != nil {
		return err
	}

	locker := seatlock.NewRedisLocker(redisClient,
		seatlock.WithStrategy(strategy),
		seatlock.WithTTL(reservation.DefaultTTL),
		seatlock.WithLogger(logger),
	)

	reservations := reservation.NewManager(redisClient, locker,
		reservation.WithLogger(logger),
		reservation.WithDegradedMode(cfg.ReservationDegradedMode),
	)

	repos := booking.Repositories{
		Shows:         repository.NewPostgresShowRepository(db),
		Seats:         repository.NewPostgresSeatRepository(db),
		Users:         repository.NewPostgresUserRepository(db),
		Bookings:      repository.NewPostgresBookingRepository(db),
		Tickets:       repository.NewPostgresTicketRepository(db),
		Notifications: repository.NewPostgresNotificationRepository(db),
	}

	service := booking.NewService(repos, reservations, composer,
		booking.WithPublisher(publisher),
		booking.WithLogger(logger),
	)

	app := NewApp(cfg, logger, appvalidator.NewValidator(), service)

	return app.run()
}

func parseConfig(fs *flag.FlagSet, args []string) (Config, bool, error) {
	var cfg Config

	fs.IntVar(&cfg.Port, "port", 3000, "server port")
	fs.StringVar(&cfg.Env, "env", "dev", "Environment (dev|staging|prod)")

	fs.StringVar(&cfg.DB.DSN, "db-dsn", "", "PostgreSQL DSN")
	fs.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	fs.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max idle time for connections")

	fs.StringVar(&cfg.Redis.URL, "redis-url", "", "Redis URL")
	fs.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	fs.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	fs.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	fs.StringVar(&cfg.SeatLockStrategy, "seat-lock-strategy", string(seatlock.StrategyAtomic),
		"Seat locking strategy (atomic|sequential). atomic grants overlapping requests to exactly one caller; "+
			"sequential only guarantees they never both win")
	fs.BoolVar(&cfg.ReservationDegradedMode, "reservation-degraded-mode", true, "Hold reservations in process memory while Redis is unreachable")

	fs.StringVar(&cfg.AMQPUrl, "amqp-url", "", "RabbitMQ URL for booking events")
	fs.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", "", "OpenTelemetry collector gRPC endpoint")

	displayVersion := fs.Bool("version", false, "Display version and exit")

	err := fs.Parse(args)
	if err != nil {
		return Config{}, false, err
	}

	return cfg, *displayVersion, nil
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	err := errors.Join(redisotel.InstrumentTracing(rdb), redisotel.InstrumentMetrics(rdb))
	if err != nil {
		rdb.Close()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = rdb.Ping(ctx).Err()
	if err != nil {
		rdb.Close()
		return nil, err
	}

	return rdb, nil
}

func NewDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func (app *Application) run() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		shutdownError <- srv.Shutdown(ctx)
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env, "version", version)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)
	r.MethodNotAllowed(app.methodNotAllowedResponse)

	r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))
	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(app.recoverPanic)

	r.Get("/api/v1/healthcheck", app.GetHealth)

	r.Route("/api/v1/user", func(r chi.Router) {
		r.Get("/show/{showId}/seats", app.GetSeatMap)

		r.Group(func(r chi.Router) {
			r.Use(app.requireUser)

			r.Post("/booking", app.ReserveSeats)
			r.Post("/booking/payment", app.ProcessPayment)
			r.Delete("/booking/{bookingId}", app.CancelBooking)
			r.Delete("/reservation/{reservationId}", app.ReleaseReservation)
		})
	})

	return r
}
