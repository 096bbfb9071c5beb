package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-booking/internal/auth"
	"ms-booking/internal/booking"
	booking_api "ms-booking/internal/booking/api"
	booking_db "ms-booking/internal/booking/db"
	"ms-booking/internal/booking/qr"
	"ms-booking/internal/cache"
	"ms-booking/internal/config"
	"ms-booking/internal/database/migrations"
	events_api "ms-booking/internal/events/api"
	events_db "ms-booking/internal/events/db"
	"ms-booking/internal/feedback"
	feedback_api "ms-booking/internal/feedback/api"
	feedback_db "ms-booking/internal/feedback/db"
	"ms-booking/internal/kafka"
	"ms-booking/internal/logger"
	manage_api "ms-booking/internal/manage/api"
	manage_db "ms-booking/internal/manage/db"
	"ms-booking/internal/models"
	users_api "ms-booking/internal/users/api"
	users_db "ms-booking/internal/users/db"
	"ms-booking/internal/utils"
)

func connectPostgres(cfg config.DatabaseConfig, log *logger.Logger) *bun.DB {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.DSN)
		if err == nil {
			err = sqldb.Ping()
			if err == nil {
				break
			}
		}
		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)

	log.Info("DATABASE", "PostgreSQL connection successful")
	return bun.NewDB(sqldb, pgdialect.New())
}

func connectRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("REDIS", fmt.Sprintf("Redis unavailable at %s, availability cache disabled: %v", cfg.Addr, err))
		return nil
	}
	log.Info("REDIS", fmt.Sprintf("Redis connection successful to %s", cfg.Addr))
	return client
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting Booking Service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	bunDB := connectPostgres(cfg.Database, log)
	defer bunDB.Close()

	if cfg.Database.AutoMigrate {
		runner := migrations.NewRunner(bunDB, migrations.MigrateOptions{
			MigrationsDir: "./migrations",
			AutoMigrate:   true,
			SeedData:      false,
		})
		if err := runner.RunMigrations(); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
		}
		if err := runner.Close(); err != nil {
			log.Warn("DATABASE", fmt.Sprintf("Migration runner close: %v", err))
		}
	}

	redisClient := connectRedis(ctx, cfg.Redis, log)
	if redisClient != nil {
		defer redisClient.Close()
	}
	availabilityCache := cache.NewAvailabilityCache(redisClient, cfg.Redis.AvailabilityTTL)

	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		requiredTopics := []string{
			cfg.Kafka.Topics.BookingCreated,
			cfg.Kafka.Topics.BookingCancelled,
			cfg.Kafka.Topics.PaymentRecorded,
		}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, requiredTopics); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			log.Info("KAFKA", "Required topics ensured successfully")
		}
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics)
		defer producer.Close()
		log.Info("KAFKA", "Kafka producer initialized successfully")
	} else {
		log.Info("KAFKA", "Kafka disabled, lifecycle events will not be published")
	}

	userDB := &users_db.DB{Bun: bunDB}

	bookingService := booking.NewService(
		&booking_db.DB{Bun: bunDB},
		publisherOrNil(producer),
		availabilityCache,
		qr.NewGenerator(cfg.Auth.QRSecret),
		log,
	)
	feedbackService := feedback.NewService(&feedback_db.DB{Bun: bunDB})

	authMW := auth.NewMiddleware(userDB, cfg.Auth.CookieName, log)

	userHandler := &users_api.Handler{Store: userDB, CookieName: cfg.Auth.CookieName, Logger: log}
	bookingHandler := &booking_api.Handler{BookingService: bookingService, Logger: log}
	feedbackHandler := &feedback_api.Handler{FeedbackService: feedbackService, Logger: log}
	eventsHandler := &events_api.Handler{Store: &events_db.DB{Bun: bunDB}, Cache: availabilityCache, Logger: log}
	manageHandler := &manage_api.Handler{Store: &manage_db.DB{Bun: bunDB}, Logger: log}

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		// --- Public routes ---
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			utils.WriteJSON(w, http.StatusOK, map[string]any{
				"ok":   true,
				"time": time.Now().UTC().Format(time.RFC3339),
			})
		})
		r.Post("/login", userHandler.Login)
		r.Post("/logout", userHandler.Logout)
		r.Get("/events", eventsHandler.ListEvents)
		r.Get("/events/{eventId}", eventsHandler.GetEvent)
		r.Get("/venues", eventsHandler.ListVenues)

		// --- Authenticated routes ---
		r.Group(func(r chi.Router) {
			r.Use(authMW.RequireAuth())

			r.Get("/me", userHandler.Me)
			r.Get("/me/total-paid", userHandler.TotalPaid)

			r.Post("/bookings", bookingHandler.CreateBooking)
			r.Get("/bookings/me", bookingHandler.ListMyBookings)
			r.Post("/bookings/{bookingId}/cancel", bookingHandler.CancelBooking)
			r.Post("/bookings/fix-payments", bookingHandler.FixPayments)

			r.Post("/feedback", feedbackHandler.Submit)
			r.Get("/feedback/me", feedbackHandler.ListMine)
		})

		// --- Role-gated management ---
		r.Route("/manage", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(authMW.RequireRole(models.RoleAdmin))
				manageHandler.RegisterUserRoutes(r)
			})
			r.Group(func(r chi.Router) {
				r.Use(authMW.RequireRole(models.RoleOrganizer, models.RoleAdmin))
				manageHandler.RegisterEventRoutes(r)
			})
		})
	})
	log.Info("ROUTER", "Routes registered under /api")

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Booking Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server shutdown failed: %v", err))
	} else {
		log.Info("HTTP", "Booking Service shutdown complete")
	}
}

// publisherOrNil keeps the service's Publisher interface nil when Kafka is
// disabled instead of wrapping a nil *Producer.
func publisherOrNil(p *kafka.Producer) booking.Publisher {
	if p == nil {
		return nil
	}
	return p
}
