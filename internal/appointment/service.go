package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackgods/clinic-scheduling/internal/config"
	"github.com/hackgods/clinic-scheduling/internal/metrics"
	redisclient "github.com/hackgods/clinic-scheduling/internal/redis"
	"github.com/hackgods/clinic-scheduling/internal/slots"
)

const (
	EventAppointmentCreated   = "APPOINTMENT_CREATED"
	EventAppointmentConfirmed = "APPOINTMENT_CONFIRMED"
	EventAppointmentUpdated   = "APPOINTMENT_UPDATED"
	EventAppointmentCancelled = "APPOINTMENT_CANCELLED"
	EventAppointmentDeleted   = "APPOINTMENT_DELETED"
	EventAppointmentExpired   = "APPOINTMENT_EXPIRED"
	EventAppointmentPaid      = "APPOINTMENT_PAID"
)

// Booking outcomes reported to metrics.
const (
	outcomeCreated   = "created"
	outcomeUpdated   = "updated"
	outcomeConflict  = "conflict"
	outcomeContended = "contended"
	outcomeError     = "error"
)

const dateLayout = "2006-01-02"

var (
	ErrInvalidInput            = errors.New("invalid appointment input")
	ErrSlotConflict            = errors.New("time overlaps an existing appointment")
	ErrSlotBeingBooked         = errors.New("day is currently being booked, please retry")
	ErrAppointmentExpiredState = errors.New("appointment is already expired")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

// DaySchedule is the classified view of one calendar day.
type DaySchedule struct {
	Date    string                    `json:"date"`
	Closed  bool                      `json:"closed"`
	Slots   []slots.Slot[Appointment] `json:"slots"`
	Summary slots.Summary             `json:"summary"`
}

type Service struct {
	repo     Repository
	locker   redisclient.Locker
	schedule slots.ConfigProvider
	cfg      config.Config
	logger   *zap.Logger
	metrics  *metrics.SchedulingMetrics
	now      func() time.Time
}

func NewService(
	repo Repository,
	locker redisclient.Locker,
	schedule slots.ConfigProvider,
	cfg config.Config,
	logger *zap.Logger,
	m *metrics.SchedulingMetrics,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locker == nil {
		locker = redisclient.NoopLocker{}
	}
	return &Service{
		repo:     repo,
		locker:   locker,
		schedule: schedule,
		cfg:      cfg,
		logger:   logger,
		metrics:  m,
		now:      time.Now,
	}
}

// ListAppointments returns the appointments on date, optionally filtered by a
// patient name search.
func (s *Service) ListAppointments(ctx context.Context, date, search string) ([]Appointment, error) {
	if _, err := parseDate(date); err != nil {
		return nil, err
	}

	appts, err := s.repo.ListAppointmentsByDate(ctx, date, strings.TrimSpace(search))
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appts, nil
}

func (s *Service) ListAppointmentTypes(ctx context.Context) ([]AppointmentType, error) {
	types, err := s.repo.ListAppointmentTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list appointment types: %w", err)
	}
	return types, nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return appt, nil
}

// DaySlots classifies the configured slots of date against the appointments
// that hold time on that day.
func (s *Service) DaySlots(ctx context.Context, date string) (*DaySchedule, error) {
	day, err := parseDate(date)
	if err != nil {
		return nil, err
	}

	cfg, err := s.schedule.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load schedule settings: %w", err)
	}

	slotTimes := slots.SlotsForDay(cfg, day)

	appts, err := s.repo.ListAppointmentsByDate(ctx, date, "")
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	classified := slots.ClassifySlots(slotTimes, occupying(appts, uuid.Nil), date)
	summary := slots.Summarize(classified)
	s.metrics.ObserveClassification(summary)

	return &DaySchedule{
		Date:    date,
		Closed:  !cfg.IsWorkDay(day.Weekday()),
		Slots:   classified,
		Summary: summary,
	}, nil
}

// CreateAppointment books a new appointment. New appointments are pending and
// hold their time until AppointmentTTL passes unless confirmed.
func (s *Service) CreateAppointment(ctx context.Context, in AppointmentInput) (*Appointment, error) {
	if in.PatientID == nil || in.Date == nil || in.Time == nil {
		return nil, fmt.Errorf("%w: patient_id, date and time are required", ErrInvalidInput)
	}

	appt := Appointment{
		PatientID:         *in.PatientID,
		AppointmentTypeID: in.AppointmentTypeID,
		Date:              strings.TrimSpace(*in.Date),
		Status:            StatusPending,
	}
	if in.Status != nil {
		appt.Status = *in.Status
	}
	if in.Paid != nil {
		appt.Paid = *in.Paid
	}
	if in.Notes != nil {
		appt.Notes = *in.Notes
	}

	if err := s.prepare(ctx, &appt, *in.Time, in.Duration); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetPatientByID(ctx, appt.PatientID); err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}

	if appt.Status == StatusPending {
		expiresAt := s.now().Add(s.cfg.AppointmentTTL)
		appt.ExpiresAt = &expiresAt
	}

	var created *Appointment

	err := s.guard(ctx, appt, func(lockCtx context.Context) error {
		res, err := s.repo.CreateAppointment(lockCtx, appt)
		if err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}
		created = res
		return nil
	})
	if err != nil {
		s.observeBookingError(err)
		return nil, err
	}

	s.metrics.ObserveBooking(outcomeCreated)
	s.logEvent(ctx, created.ID, EventAppointmentCreated, map[string]any{
		"patient_id": created.PatientID.String(),
		"date":       created.Date,
		"time":       created.Time,
		"duration":   created.Duration,
		"expires_at": created.ExpiresAt,
	})

	return created, nil
}

// UpdateAppointment applies the non-nil fields of in. Moving an appointment
// re-runs the overlap check against the rest of the day.
func (s *Service) UpdateAppointment(ctx context.Context, id uuid.UUID, in AppointmentInput) (*Appointment, error) {
	current, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	prevStatus := current.Status
	next := *current
	if in.PatientID != nil && *in.PatientID != current.PatientID {
		if _, err := s.repo.GetPatientByID(ctx, *in.PatientID); err != nil {
			if errors.Is(err, ErrPatientNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("load patient: %w", err)
		}
		next.PatientID = *in.PatientID
	}
	if in.AppointmentTypeID != nil {
		next.AppointmentTypeID = in.AppointmentTypeID
	}
	if in.Date != nil {
		next.Date = strings.TrimSpace(*in.Date)
	}
	if in.Status != nil {
		next.Status = *in.Status
	}
	if in.Paid != nil {
		next.Paid = *in.Paid
	}
	if in.Notes != nil {
		next.Notes = *in.Notes
	}

	timeStr := current.Time
	if in.Time != nil {
		timeStr = *in.Time
	}
	duration := &current.Duration
	if in.Duration != nil {
		duration = in.Duration
	}
	if err := s.prepare(ctx, &next, timeStr, duration); err != nil {
		return nil, err
	}
	switch {
	case next.Status != StatusPending:
		next.ExpiresAt = nil
	case prevStatus != StatusPending:
		expiresAt := s.now().Add(s.cfg.AppointmentTTL)
		next.ExpiresAt = &expiresAt
	}

	write := func(writeCtx context.Context) error {
		res, err := s.repo.UpdateAppointment(writeCtx, next)
		if err != nil {
			return fmt.Errorf("update appointment: %w", err)
		}
		current = res
		return nil
	}

	if movesTime(*current, next) {
		err = s.guard(ctx, next, write)
	} else {
		err = write(ctx)
	}
	if err != nil {
		s.observeBookingError(err)
		return nil, err
	}

	s.metrics.ObserveBooking(outcomeUpdated)

	event := EventAppointmentUpdated
	if current.Status == StatusCancelled && prevStatus != StatusCancelled {
		event = EventAppointmentCancelled
	}
	s.logEvent(ctx, current.ID, event, map[string]any{
		"date":     current.Date,
		"time":     current.Time,
		"duration": current.Duration,
		"status":   current.Status,
	})

	return current, nil
}

func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteAppointment(ctx, id); err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return err
		}
		return fmt.Errorf("delete appointment: %w", err)
	}

	s.logEvent(ctx, id, EventAppointmentDeleted, map[string]any{})
	return nil
}

// ConfirmAppointment moves a pending appointment to confirmed
func (s *Service) ConfirmAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	if appt.Status == StatusExpired {
		return nil, ErrAppointmentExpiredState
	}

	if appt.Status == StatusPending && appt.ExpiresAt != nil && appt.ExpiresAt.Before(s.now()) {
		_, updErr := s.repo.UpdateAppointmentStatus(ctx, appt.ID, StatusPending, StatusExpired)
		if updErr != nil && !errors.Is(updErr, ErrAppointmentNotFound) {
			s.logger.Warn("failed to mark appointment expired during confirm",
				zap.String("appointment_id", appt.ID.String()),
				zap.Error(updErr),
			)
		}
		s.logEvent(ctx, appt.ID, EventAppointmentExpired, map[string]any{
			"reason": "confirm_after_expiry",
		})
		return nil, ErrAppointmentExpiredState
	}

	if appt.Status != StatusPending {
		return nil, ErrInvalidStatusTransition
	}

	updated, err := s.repo.UpdateAppointmentStatus(ctx, appt.ID, StatusPending, StatusConfirmed)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// status moved under us
			return nil, ErrInvalidStatusTransition
		}
		return nil, fmt.Errorf("confirm appointment: %w", err)
	}

	s.logEvent(ctx, updated.ID, EventAppointmentConfirmed, map[string]any{})

	return updated, nil
}

func (s *Service) MarkPaid(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	updated, err := s.repo.MarkPaid(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("mark paid: %w", err)
	}

	s.logEvent(ctx, updated.ID, EventAppointmentPaid, map[string]any{})
	return updated, nil
}

// ExpirePendingAppointments is intended to be called by the worker periodically.
// It returns how many appointments were expired.
func (s *Service) ExpirePendingAppointments(ctx context.Context) (int, error) {
	candidates, err := s.repo.FindExpiredPending(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("find expired pending appointments: %w", err)
	}

	expired := 0
	for _, appt := range candidates {
		_, err := s.repo.UpdateAppointmentStatus(ctx, appt.ID, StatusPending, StatusExpired)
		if err != nil {
			if !errors.Is(err, ErrAppointmentNotFound) {
				s.logger.Warn("failed to expire appointment",
					zap.String("appointment_id", appt.ID.String()),
					zap.Error(err),
				)
			}
			continue
		}
		expired++
		s.logEvent(ctx, appt.ID, EventAppointmentExpired, map[string]any{
			"reason": "worker",
		})
	}

	return expired, nil
}

// prepare validates the date, normalizes timeStr into appt.Time and resolves
// the duration: explicit value, then the appointment type's, then the default.
func (s *Service) prepare(ctx context.Context, appt *Appointment, timeStr string, duration *string) error {
	if _, err := parseDate(appt.Date); err != nil {
		return err
	}

	normalized := slots.NormalizeTimeFormat(timeStr)
	if slots.ExtractTimeParts(normalized) == nil {
		return fmt.Errorf("%w: unrecognized time %q", ErrInvalidInput, timeStr)
	}
	appt.Time = normalized

	if !appt.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, appt.Status)
	}

	switch {
	case duration != nil && strings.TrimSpace(*duration) != "":
		appt.Duration = strings.TrimSpace(*duration)
	case appt.AppointmentTypeID != nil:
		t, err := s.repo.GetAppointmentTypeByID(ctx, *appt.AppointmentTypeID)
		if err != nil {
			if errors.Is(err, ErrAppointmentTypeNotFound) {
				return err
			}
			return fmt.Errorf("load appointment type: %w", err)
		}
		appt.Duration = t.Duration
	default:
		appt.Duration = slots.FormatDuration(slots.DefaultDurationMinutes)
	}

	return nil
}

// guard runs write under the day lock after checking that appt does not
// overlap another appointment holding time that day.
func (s *Service) guard(ctx context.Context, appt Appointment, write func(ctx context.Context) error) error {
	if s.cfg.AllowDoubleBooking || !appt.Status.Occupies() {
		return write(ctx)
	}

	err := s.locker.WithDayLock(ctx, appt.Date, func(lockCtx context.Context) error {
		existing, err := s.repo.ListAppointmentsByDate(lockCtx, appt.Date, "")
		if err != nil {
			return fmt.Errorf("load day appointments: %w", err)
		}

		if other, found := slots.FindConflict(occupying(existing, appt.ID), appt.Date, appt.Time, appt.Duration); found {
			return fmt.Errorf("%w: %s at %s (%s)", ErrSlotConflict, other.PatientName, other.Time, other.Duration)
		}

		return write(lockCtx)
	})
	if errors.Is(err, redisclient.ErrLockNotAcquired) {
		return ErrSlotBeingBooked
	}
	return err
}

func (s *Service) observeBookingError(err error) {
	switch {
	case errors.Is(err, ErrSlotConflict):
		s.metrics.ObserveBooking(outcomeConflict)
	case errors.Is(err, ErrSlotBeingBooked):
		s.metrics.ObserveBooking(outcomeContended)
	default:
		s.metrics.ObserveBooking(outcomeError)
	}
}

func (s *Service) logEvent(ctx context.Context, appointmentID uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warn("failed to marshal event payload",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		data = nil
	}

	apptID := appointmentID

	ev := EventLog{
		EventType:     eventType,
		AppointmentID: &apptID,
		Payload:       data,
		CreatedAt:     s.now(),
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		s.logger.Warn("failed to insert event log",
			zap.String("event_type", eventType),
			zap.String("appointment_id", appointmentID.String()),
			zap.Error(err),
		)
	}
}

// occupying keeps the appointments that hold time, minus exclude.
func occupying(appts []Appointment, exclude uuid.UUID) []Appointment {
	out := make([]Appointment, 0, len(appts))
	for _, a := range appts {
		if a.ID == exclude && exclude != uuid.Nil {
			continue
		}
		if !a.Status.Occupies() {
			continue
		}
		out = append(out, a)
	}
	return out
}

func movesTime(before, after Appointment) bool {
	if !after.Status.Occupies() {
		return false
	}
	return !before.Status.Occupies() ||
		before.Date != after.Date ||
		before.Time != after.Time ||
		before.Duration != after.Duration
}

func parseDate(date string) (time.Time, error) {
	day, err := time.Parse(dateLayout, strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD, got %q", ErrInvalidInput, date)
	}
	return day, nil
}
