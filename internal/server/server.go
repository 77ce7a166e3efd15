package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/venusseo127/dentalApp/config"
	"github.com/venusseo127/dentalApp/internal/booking"
	"github.com/venusseo127/dentalApp/internal/cache"
	"github.com/venusseo127/dentalApp/internal/db"
	"github.com/venusseo127/dentalApp/internal/handlers"
	"github.com/venusseo127/dentalApp/internal/identity"
	appmw "github.com/venusseo127/dentalApp/internal/middleware"
	"github.com/venusseo127/dentalApp/internal/mq"
	"github.com/venusseo127/dentalApp/internal/seed"
	"github.com/venusseo127/dentalApp/internal/services"
	"github.com/venusseo127/dentalApp/internal/storage"
	"github.com/venusseo127/dentalApp/internal/store"
	"github.com/venusseo127/dentalApp/internal/store/memstore"
)

// Server wraps the HTTP server, router and the backends it owns.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	redis      *redis.Client
	broker     mq.Backend
	cancel     context.CancelFunc
	logger     *slog.Logger
}

type repositories struct {
	users        services.UserRepository
	dentists     services.DentistRepository
	services     services.ServiceRepository
	appointments services.AppointmentRepository
	availability services.AvailabilityRepository
	stats        services.StatsRepository
}

// New wires every backend named by cfg and builds the router.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	runCtx, cancel := context.WithCancel(ctx)
	s := &Server{cancel: cancel, logger: slog.Default()}

	router, err := s.build(runCtx, cfg)
	if err != nil {
		s.close()
		return nil, err
	}

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	s.router = router
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

func (s *Server) build(ctx context.Context, cfg config.Config) (*chi.Mux, error) {
	repos, err := s.openStore(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	var catalogCache services.CatalogCache
	if strings.TrimSpace(cfg.Redis.Addr) != "" {
		client, err := cache.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		s.redis = client
		catalogCache = cache.NewCatalogCache(client, cfg.Redis.CatalogTTL)
	}

	images, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open object storage: %w", err)
	}

	broker, err := mq.Open(ctx, cfg.MQ)
	if err != nil {
		return nil, fmt.Errorf("open message broker: %w", err)
	}
	s.broker = broker
	publishers := services.Publishers{appmw.EventMetrics{}}
	if broker != nil {
		publishers = append(publishers, mq.NewEventPublisher(broker, cfg.MQ.Topic))
	}

	var verifier identity.Verifier
	if cfg.Firebase.Enabled() {
		firebaseVerifier, err := identity.NewFirebaseVerifier(ctx, cfg.Firebase)
		if err != nil {
			return nil, fmt.Errorf("init firebase: %w", err)
		}
		verifier = firebaseVerifier
	}

	userService := services.NewUserService(repos.users)
	catalogService := services.NewCatalogService(repos.dentists, repos.services, catalogCache, images)
	availabilityService := services.NewAvailabilityService(repos.availability, catalogService)
	appointmentService := services.NewAppointmentService(repos.appointments, catalogService, publishers, services.AppointmentConfig{
		PreventDoubleBooking: cfg.Booking.PreventDoubleBooking,
	})
	statsService := services.NewStatsService(repos.stats, nil)

	var slots booking.SlotProvider = booking.FixedSlots(booking.DefaultSlots)
	if strings.EqualFold(cfg.Booking.SlotSource, "availability") {
		slots = booking.AvailabilitySlots{Base: booking.DefaultSlots, Availability: availabilityService}
	}

	authHandler := handlers.NewAuthHandler(userService, verifier, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	catalogHandler := handlers.NewCatalogHandler(catalogService, availabilityService)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentService)
	bookingHandler := handlers.NewBookingHandler(appointmentService, slots, nil)
	limiter := appmw.NewRateLimiter(ctx, cfg.HTTP.AuthRateLimitRPS, cfg.HTTP.AuthRateLimitBurst)
	actor := authHandler.Authenticated

	var pinger handlers.Pinger
	if s.db != nil {
		pinger = s.db
	}

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		appmw.Logging(s.logger),
		appmw.Metrics(),
		appmw.CORS(cfg.HTTP.CORSAllowedOrigins),
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz(pinger))
	router.Handle("/metrics", promhttp.Handler())
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, authHandler, limiter.Handler)
	})
	router.Route("/dentists", func(r chi.Router) {
		handlers.DentistRouter(r, catalogHandler, actor)
	})
	router.Route("/services", func(r chi.Router) {
		handlers.ServiceRouter(r, catalogHandler, actor)
	})
	router.Route("/availability", func(r chi.Router) {
		handlers.AvailabilityRouter(r, catalogHandler, actor)
	})
	router.Route("/appointments", func(r chi.Router) {
		handlers.AppointmentRouter(r, appointmentHandler, actor)
	})
	router.Route("/booking", func(r chi.Router) {
		handlers.BookingRouter(r, bookingHandler, actor)
	})
	router.Route("/admin", func(r chi.Router) {
		handlers.AdminRouter(r, statsService, actor)
	})
	return router, nil
}

// openStore selects the repository backend. The memory backend starts with
// the sample catalog.
func (s *Server) openStore(ctx context.Context, cfg config.DatabaseConfig) (repositories, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "memory":
		mem := memstore.New()
		if _, err := seed.Catalog(ctx, mem.Dentists(), mem.Services()); err != nil {
			return repositories{}, err
		}
		s.logger.Warn("using in-memory store; data is lost on restart")
		return repositories{
			users:        mem.Users(),
			dentists:     mem.Dentists(),
			services:     mem.Services(),
			appointments: mem.Appointments(),
			availability: mem.Availability(),
			stats:        mem.Stats(),
		}, nil
	case "", "postgres":
		conn, err := db.Open(ctx, cfg)
		if err != nil {
			return repositories{}, fmt.Errorf("open database: %w", err)
		}
		s.db = conn
		return repositories{
			users:        store.NewUserRepository(conn),
			dentists:     store.NewDentistRepository(conn),
			services:     store.NewServiceRepository(conn),
			appointments: store.NewAppointmentRepository(conn),
			availability: store.NewAvailabilityRepository(conn),
			stats:        store.NewStatsRepository(conn),
		}, nil
	default:
		return repositories{}, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("server listening", slog.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and releases every backend.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.close()
	return err
}

func (s *Server) close() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.broker != nil {
		if err := s.broker.Close(); err != nil {
			s.logger.Warn("close message broker", slog.Any("error", err))
		}
	}
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
}
