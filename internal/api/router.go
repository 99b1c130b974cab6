package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hackgods/clinic-scheduling/internal/appointment"
	"github.com/hackgods/clinic-scheduling/internal/metrics"
	"github.com/hackgods/clinic-scheduling/internal/slots"
)

// AppointmentService is the part of appointment.Service the HTTP layer uses.
type AppointmentService interface {
	ListAppointments(ctx context.Context, date, search string) ([]appointment.Appointment, error)
	ListAppointmentTypes(ctx context.Context) ([]appointment.AppointmentType, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
	CreateAppointment(ctx context.Context, in appointment.AppointmentInput) (*appointment.Appointment, error)
	UpdateAppointment(ctx context.Context, id uuid.UUID, in appointment.AppointmentInput) (*appointment.Appointment, error)
	DeleteAppointment(ctx context.Context, id uuid.UUID) error
	ConfirmAppointment(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
	MarkPaid(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
	DaySlots(ctx context.Context, date string) (*appointment.DaySchedule, error)
}

type RouterConfig struct {
	Service  AppointmentService
	Settings slots.ConfigProvider
	Postgres Pinger
	Redis    Pinger
	Env      string
	Version  string
	Logger   *zap.Logger
	Metrics  *metrics.SchedulingMetrics
	// MetricsHandler serves /metrics; promhttp.Handler() when nil.
	MetricsHandler http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))
	r.Use(MetricsMiddleware(cfg.Metrics))
	r.Use(middleware.Recoverer)

	// Health endpoints
	health := NewHealthHandler(cfg.Postgres, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	// Schedule
	r.Get("/slots", daySlotsHandler(cfg.Service))
	r.Get("/settings/schedule", getScheduleHandler(cfg.Settings))
	r.Put("/settings/schedule", putScheduleHandler(cfg.Settings, logger))
	r.Get("/appointment-types", listAppointmentTypesHandler(cfg.Service))

	// Appointment endpoints
	r.Route("/appointments", func(r chi.Router) {
		r.Get("/", listAppointmentsHandler(cfg.Service))
		r.Post("/", createAppointmentHandler(cfg.Service))
		r.Get("/{id}", getAppointmentHandler(cfg.Service))
		r.Put("/{id}", updateAppointmentHandler(cfg.Service))
		r.Delete("/{id}", deleteAppointmentHandler(cfg.Service))
		r.Post("/{id}/confirm", confirmAppointmentHandler(cfg.Service))
		r.Post("/{id}/pay", payAppointmentHandler(cfg.Service))
	})

	return r
}
