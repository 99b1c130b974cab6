package appointment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/clinic-scheduling/internal/config"
	redisclient "github.com/hackgods/clinic-scheduling/internal/redis"
	"github.com/hackgods/clinic-scheduling/internal/settings"
	"github.com/hackgods/clinic-scheduling/internal/slots"
)

type fakeRepo struct {
	mu       sync.Mutex
	patients map[uuid.UUID]Patient
	types    map[uuid.UUID]AppointmentType
	appts    []Appointment
	events   []EventLog
	eventErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		patients: map[uuid.UUID]Patient{},
		types:    map[uuid.UUID]AppointmentType{},
	}
}

func (r *fakeRepo) addPatient(name string) uuid.UUID {
	id := uuid.New()
	r.patients[id] = Patient{ID: id, Name: name}
	return id
}

func (r *fakeRepo) seed(a Appointment) Appointment {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.appts = append(r.appts, a)
	return a
}

func (r *fakeRepo) GetPatientByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := r.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	return &p, nil
}

func (r *fakeRepo) ListAppointmentTypes(_ context.Context) ([]AppointmentType, error) {
	out := make([]AppointmentType, 0, len(r.types))
	for _, t := range r.types {
		out = append(out, t)
	}
	return out, nil
}

func (r *fakeRepo) GetAppointmentTypeByID(_ context.Context, id uuid.UUID) (*AppointmentType, error) {
	t, ok := r.types[id]
	if !ok {
		return nil, ErrAppointmentTypeNotFound
	}
	return &t, nil
}

func (r *fakeRepo) ListAppointmentsByDate(_ context.Context, date, search string) ([]Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Appointment, 0)
	for _, a := range r.appts {
		if a.Date != date {
			continue
		}
		if search != "" && a.PatientName != search {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *fakeRepo) GetAppointmentByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.appts {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, ErrAppointmentNotFound
}

func (r *fakeRepo) CreateAppointment(_ context.Context, a Appointment) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = uuid.New()
	a.PatientName = r.patients[a.PatientID].Name
	r.appts = append(r.appts, a)
	return &a, nil
}

func (r *fakeRepo) UpdateAppointment(_ context.Context, a Appointment) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.appts {
		if r.appts[i].ID == a.ID {
			r.appts[i] = a
			return &a, nil
		}
	}
	return nil, ErrAppointmentNotFound
}

func (r *fakeRepo) DeleteAppointment(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.appts {
		if r.appts[i].ID == id {
			r.appts = append(r.appts[:i], r.appts[i+1:]...)
			return nil
		}
	}
	return ErrAppointmentNotFound
}

func (r *fakeRepo) UpdateAppointmentStatus(_ context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.appts {
		if r.appts[i].ID == id && r.appts[i].Status == from {
			r.appts[i].Status = to
			a := r.appts[i]
			return &a, nil
		}
	}
	return nil, ErrAppointmentNotFound
}

func (r *fakeRepo) MarkPaid(_ context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.appts {
		if r.appts[i].ID == id {
			r.appts[i].Paid = true
			a := r.appts[i]
			return &a, nil
		}
	}
	return nil, ErrAppointmentNotFound
}

func (r *fakeRepo) FindExpiredPending(_ context.Context, now time.Time) ([]Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Appointment, 0)
	for _, a := range r.appts {
		if a.Status == StatusPending && a.ExpiresAt != nil && a.ExpiresAt.Before(now) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeRepo) InsertEvent(_ context.Context, ev EventLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.eventErr != nil {
		return r.eventErr
	}
	r.events = append(r.events, ev)
	return nil
}

func (r *fakeRepo) eventTypes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.EventType)
	}
	return out
}

// busyLocker always reports the day as locked.
type busyLocker struct{}

func (busyLocker) WithDayLock(context.Context, string, func(context.Context) error) error {
	return redisclient.ErrLockNotAcquired
}

var fixedNow = time.Date(2024, 6, 12, 8, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, repo *fakeRepo, cfg config.Config) *Service {
	t.Helper()
	if cfg.AppointmentTTL == 0 {
		cfg.AppointmentTTL = 15 * time.Minute
	}
	svc := NewService(repo, redisclient.NoopLocker{}, settings.NewMemoryStore(settings.DefaultConfiguration()), cfg, nil, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func ptr[T any](v T) *T { return &v }

func TestCreateAppointmentDefaults(t *testing.T) {
	repo := newFakeRepo()
	patient := repo.addPatient("Ada Lovelace")
	svc := newTestService(t, repo, config.Config{})

	appt, err := svc.CreateAppointment(context.Background(), AppointmentInput{
		PatientID: &patient,
		Date:      ptr("2024-06-12"),
		Time:      ptr("9:00 am"),
	})
	require.NoError(t, err)

	assert.Equal(t, "09:00 AM", appt.Time)
	assert.Equal(t, "30 min", appt.Duration)
	assert.Equal(t, StatusPending, appt.Status)
	require.NotNil(t, appt.ExpiresAt)
	assert.Equal(t, fixedNow.Add(15*time.Minute), *appt.ExpiresAt)
	assert.Equal(t, []string{EventAppointmentCreated}, repo.eventTypes())
}

func TestCreateAppointmentUsesTypeDuration(t *testing.T) {
	repo := newFakeRepo()
	patient := repo.addPatient("Grace Hopper")
	typeID := uuid.New()
	repo.types[typeID] = AppointmentType{ID: typeID, Name: "Consultation", Duration: "1 hour"}
	svc := newTestService(t, repo, config.Config{})

	appt, err := svc.CreateAppointment(context.Background(), AppointmentInput{
		PatientID:         &patient,
		AppointmentTypeID: &typeID,
		Date:              ptr("2024-06-12"),
		Time:              ptr("14:30"),
	})
	require.NoError(t, err)
	assert.Equal(t, "02:30 PM", appt.Time)
	assert.Equal(t, "1 hour", appt.Duration)
}

func TestCreateAppointmentValidation(t *testing.T) {
	repo := newFakeRepo()
	patient := repo.addPatient("Alan Turing")
	svc := newTestService(t, repo, config.Config{})
	ctx := context.Background()

	_, err := svc.CreateAppointment(ctx, AppointmentInput{Date: ptr("2024-06-12"), Time: ptr("9:00 AM")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateAppointment(ctx, AppointmentInput{PatientID: &patient, Date: ptr("12/06/2024"), Time: ptr("9:00 AM")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateAppointment(ctx, AppointmentInput{PatientID: &patient, Date: ptr("2024-06-12"), Time: ptr("morning")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	unknown := uuid.New()
	_, err = svc.CreateAppointment(ctx, AppointmentInput{PatientID: &unknown, Date: ptr("2024-06-12"), Time: ptr("9:00 AM")})
	assert.ErrorIs(t, err, ErrPatientNotFound)

	missingType := uuid.New()
	_, err = svc.CreateAppointment(ctx, AppointmentInput{PatientID: &patient, AppointmentTypeID: &missingType, Date: ptr("2024-06-12"), Time: ptr("9:00 AM")})
	assert.ErrorIs(t, err, ErrAppointmentTypeNotFound)
}

func TestCreateAppointmentRejectsOverlap(t *testing.T) {
	repo := newFakeRepo()
	patient := repo.addPatient("Ada Lovelace")
	repo.seed(Appointment{PatientID: patient, PatientName: "Ada Lovelace", Date: "2024-06-12", Time: "09:00 AM", Duration: "45 min", Status: StatusConfirmed})
	svc := newTestService(t, repo, config.Config{})

	_, err := svc.CreateAppointment(context.Background(), AppointmentInput{
		PatientID: &patient,
		Date:      ptr("2024-06-12"),
		Time:      ptr("9:30 AM"),
	})
	require.ErrorIs(t, err, ErrSlotConflict)
	assert.Contains(t, err.Error(), "Ada Lovelace")

	// back-to-back is fine: intervals are half-open
	_, err = svc.CreateAppointment(context.Background(), AppointmentInput{
		PatientID: &patient,
		Date:      ptr("2024-06-12"),
		Time:      ptr("9:45 AM"),
	})
	require.NoError(t, err)
}

func TestCreateAppointmentIgnoresFreedSlots(t *testing.T) {
	repo := newFakeRepo()
	patient := repo.addPatient("Ada Lovelace")
	repo.seed(Appointment{PatientID: patient, Date: "2024-06-12", Time: "09:00 AM", Duration: "30 min", Status: StatusCancelled})
	repo.seed(Appointment{PatientID: patient, Date: "2024-06-12", Time: "09:00 AM", Duration: "30 min", Status: StatusExpired})
	svc := newTestService(t, repo, config.Config{})

	_, err := svc.CreateAppointment(context.Background(), AppointmentInput{
		PatientID: &patient,
		Date:      ptr("2024-06-12"),
		Time:      ptr("9:00 AM"),
	})
	require.NoError(t, err)
}

func TestCreateAppointmentAllowDoubleBooking(t *testing.T) {
	repo := newFakeRepo()
	patient := repo.addPatient("Ada Lovelace")
	repo.seed(Appointment{PatientID: patient, Date: "2024-06-12", Time: "09:00 AM", Duration: "30 min", Status: StatusConfirmed})
	svc := newTestService(t, repo, config.Config{AllowDoubleBooking: true})

	_, err := svc.CreateAppointment(context.Background(), AppointmentInput{
		PatientID: &patient,
		Date:      ptr("2024-06-12"),
		Time:      ptr("9:00 AM"),
	})
	require.NoError(t, err)
}

func TestCreateAppointmentLockContention(t *testing.T) {
	repo := newFakeRepo()
	patient := repo.addPatient("Ada Lovelace")
	svc := newTestService(t, repo, config.Config{})
	svc.locker = busyLocker{}

	_, err := svc.CreateAppointment(context.Background(), AppointmentInput{
		PatientID: &patient,
		Date:      ptr("2024-06-12"),
		Time:      ptr("9:00 AM"),
	})
	assert.ErrorIs(t, err, ErrSlotBeingBooked)
	assert.Empty(t, repo.appts)
}

func TestUpdateAppointmentExcludesItselfFromConflicts(t *testing.T) {
	repo := newFakeRepo()
	patient := repo.addPatient("Ada Lovelace")
	appt := repo.seed(Appointment{PatientID: patient, Date: "2024-06-12", Time: "09:00 AM", Duration: "30 min", Status: StatusConfirmed})
	repo.seed(Appointment{PatientID: patient, Date: "2024-06-12", Time: "10:00 AM", Duration: "30 min", Status: StatusConfirmed})
	svc := newTestService(t, repo, config.Config{})
	ctx := context.Background()

	updated, err := svc.UpdateAppointment(ctx, appt.ID, AppointmentInput{Duration: ptr("45 min")})
	require.NoError(t, err)
	assert.Equal(t, "45 min", updated.Duration)

	_, err = svc.UpdateAppointment(ctx, appt.ID, AppointmentInput{Time: ptr("9:45 AM")})
	assert.ErrorIs(t, err, ErrSlotConflict)

	_, err = svc.UpdateAppointment(ctx, uuid.New(), AppointmentInput{Notes: ptr("x")})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestUpdateAppointmentCancelLogsCancellation(t *testing.T) {
	repo := newFakeRepo()
	patient := repo.addPatient("Ada Lovelace")
	exp := fixedNow.Add(time.Minute)
	appt := repo.seed(Appointment{PatientID: patient, Date: "2024-06-12", Time: "09:00 AM", Duration: "30 min", Status: StatusPending, ExpiresAt: &exp})
	svc := newTestService(t, repo, config.Config{})
	svc.locker = busyLocker{}

	updated, err := svc.UpdateAppointment(context.Background(), appt.ID, AppointmentInput{Status: ptr(StatusCancelled)})
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, updated.Status)
	assert.Nil(t, updated.ExpiresAt)
	assert.Equal(t, []string{EventAppointmentCancelled}, repo.eventTypes())
}

func TestUpdateAppointmentBackToPendingStartsNewHold(t *testing.T) {
	repo := newFakeRepo()
	patient := repo.addPatient("Ada Lovelace")
	appt := repo.seed(Appointment{PatientID: patient, Date: "2024-06-12", Time: "09:00 AM", Duration: "30 min", Status: StatusCancelled})
	svc := newTestService(t, repo, config.Config{AppointmentTTL: 10 * time.Minute})
	ctx := context.Background()

	updated, err := svc.UpdateAppointment(ctx, appt.ID, AppointmentInput{Status: ptr(StatusPending)})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, updated.Status)
	require.NotNil(t, updated.ExpiresAt)
	assert.Equal(t, fixedNow.Add(10*time.Minute), *updated.ExpiresAt)

	// a pending edit keeps the running hold
	svc.now = func() time.Time { return fixedNow.Add(5 * time.Minute) }
	updated, err = svc.UpdateAppointment(ctx, appt.ID, AppointmentInput{Notes: ptr("call first")})
	require.NoError(t, err)
	require.NotNil(t, updated.ExpiresAt)
	assert.Equal(t, fixedNow.Add(10*time.Minute), *updated.ExpiresAt)

	svc.now = func() time.Time { return fixedNow.Add(11 * time.Minute) }
	n, err := svc.ExpirePendingAppointments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestConfirmAppointment(t *testing.T) {
	repo := newFakeRepo()
	patient := repo.addPatient("Ada Lovelace")
	future := fixedNow.Add(time.Minute)
	past := fixedNow.Add(-time.Minute)
	fresh := repo.seed(Appointment{PatientID: patient, Date: "2024-06-12", Time: "09:00 AM", Duration: "30 min", Status: StatusPending, ExpiresAt: &future})
	stale := repo.seed(Appointment{PatientID: patient, Date: "2024-06-12", Time: "10:00 AM", Duration: "30 min", Status: StatusPending, ExpiresAt: &past})
	done := repo.seed(Appointment{PatientID: patient, Date: "2024-06-12", Time: "11:00 AM", Duration: "30 min", Status: StatusCompleted})
	svc := newTestService(t, repo, config.Config{})
	ctx := context.Background()

	confirmed, err := svc.ConfirmAppointment(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, confirmed.Status)

	_, err = svc.ConfirmAppointment(ctx, stale.ID)
	assert.ErrorIs(t, err, ErrAppointmentExpiredState)
	got, err := svc.GetAppointment(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, got.Status)

	_, err = svc.ConfirmAppointment(ctx, stale.ID)
	assert.ErrorIs(t, err, ErrAppointmentExpiredState)

	_, err = svc.ConfirmAppointment(ctx, done.ID)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestMarkPaidAndDelete(t *testing.T) {
	repo := newFakeRepo()
	patient := repo.addPatient("Ada Lovelace")
	appt := repo.seed(Appointment{PatientID: patient, Date: "2024-06-12", Time: "09:00 AM", Duration: "30 min", Status: StatusConfirmed})
	svc := newTestService(t, repo, config.Config{})
	ctx := context.Background()

	paid, err := svc.MarkPaid(ctx, appt.ID)
	require.NoError(t, err)
	assert.True(t, paid.Paid)

	require.NoError(t, svc.DeleteAppointment(ctx, appt.ID))
	assert.ErrorIs(t, svc.DeleteAppointment(ctx, appt.ID), ErrAppointmentNotFound)
	assert.Equal(t, []string{EventAppointmentPaid, EventAppointmentDeleted}, repo.eventTypes())
}

func TestExpirePendingAppointments(t *testing.T) {
	repo := newFakeRepo()
	patient := repo.addPatient("Ada Lovelace")
	past := fixedNow.Add(-time.Minute)
	future := fixedNow.Add(time.Minute)
	repo.seed(Appointment{PatientID: patient, Date: "2024-06-12", Time: "09:00 AM", Status: StatusPending, ExpiresAt: &past})
	repo.seed(Appointment{PatientID: patient, Date: "2024-06-12", Time: "10:00 AM", Status: StatusPending, ExpiresAt: &future})
	repo.seed(Appointment{PatientID: patient, Date: "2024-06-12", Time: "11:00 AM", Status: StatusConfirmed, ExpiresAt: &past})
	svc := newTestService(t, repo, config.Config{})

	n, err := svc.ExpirePendingAppointments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, StatusExpired, repo.appts[0].Status)
	assert.Equal(t, StatusPending, repo.appts[1].Status)
}

func TestEventLogFailureDoesNotFailBooking(t *testing.T) {
	repo := newFakeRepo()
	repo.eventErr = errors.New("event table unavailable")
	patient := repo.addPatient("Ada Lovelace")
	svc := newTestService(t, repo, config.Config{})

	_, err := svc.CreateAppointment(context.Background(), AppointmentInput{
		PatientID: &patient,
		Date:      ptr("2024-06-12"),
		Time:      ptr("9:00 AM"),
	})
	require.NoError(t, err)
}

func TestDaySlots(t *testing.T) {
	repo := newFakeRepo()
	patient := repo.addPatient("Ada Lovelace")
	repo.seed(Appointment{PatientName: "Ada Lovelace", PatientID: patient, Date: "2024-06-12", Time: "09:00 AM", Duration: "1 hour", Status: StatusConfirmed})
	repo.seed(Appointment{PatientID: patient, Date: "2024-06-12", Time: "02:00 PM", Duration: "30 min", Status: StatusCancelled})
	svc := newTestService(t, repo, config.Config{})

	// 2024-06-12 is a Wednesday
	day, err := svc.DaySlots(context.Background(), "2024-06-12")
	require.NoError(t, err)
	assert.False(t, day.Closed)
	require.Len(t, day.Slots, 18)

	assert.Equal(t, "8:00 AM", day.Slots[0].Time)
	assert.Equal(t, slots.StatusStart, day.Slots[2].Status)
	require.NotNil(t, day.Slots[2].Appointment)
	assert.Equal(t, "Ada Lovelace", day.Slots[2].Appointment.PatientName)
	assert.Equal(t, slots.StatusOccupied, day.Slots[3].Status)
	assert.Equal(t, slots.StatusAvailable, day.Slots[12].Status)
	assert.Equal(t, slots.Summary{Start: 1, Occupied: 1, Available: 16}, day.Summary)
}

func TestDaySlotsClosedDay(t *testing.T) {
	svc := newTestService(t, newFakeRepo(), config.Config{})

	// 2024-06-15 is a Saturday
	day, err := svc.DaySlots(context.Background(), "2024-06-15")
	require.NoError(t, err)
	assert.True(t, day.Closed)
	assert.Empty(t, day.Slots)

	_, err = svc.DaySlots(context.Background(), "tomorrow")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
