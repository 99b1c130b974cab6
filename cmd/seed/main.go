package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hackgods/clinic-scheduling/internal/appointment"
	"github.com/hackgods/clinic-scheduling/internal/config"
	"github.com/hackgods/clinic-scheduling/internal/db"
	"github.com/hackgods/clinic-scheduling/internal/logging"
	"github.com/hackgods/clinic-scheduling/internal/settings"
	"github.com/hackgods/clinic-scheduling/internal/slots"
)

var appointmentTypes = []appointment.AppointmentType{
	{Name: "Consultation", Duration: "30 min", PriceCents: 8000, Color: "#3b82f6"},
	{Name: "Follow-up", Duration: "15 min", PriceCents: 4000, Color: "#10b981"},
	{Name: "Cleaning", Duration: "45 min", PriceCents: 12000, Color: "#f59e0b"},
	{Name: "Extended treatment", Duration: "1 hour", PriceCents: 20000, Color: "#ef4444"},
	{Name: "Surgery", Duration: "1h 30m", PriceCents: 45000, Color: "#8b5cf6"},
}

var visitNotes = []string{
	"",
	"First visit",
	"Bring previous x-rays",
	"Patient prefers morning calls",
	"Check allergy history",
}

func main() {
	patients := flag.Int("patients", 500, "number of patients to create")
	date := flag.String("date", time.Now().Format("2006-01-02"), "day to fill with appointments (YYYY-MM-DD)")
	bookings := flag.Int("appointments", 12, "appointments to try to place on -date")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger := logging.Must(cfg.Env, cfg.LogLevel).Named("seed")
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool); err != nil {
			logger.Fatal("migrate", zap.Error(err))
		}
	}

	faker := gofakeit.New(uint64(*seed))

	typeIDs, err := seedAppointmentTypes(ctx, pool)
	if err != nil {
		logger.Fatal("seed appointment types", zap.Error(err))
	}
	logger.Info("appointment types seeded", zap.Int("count", len(typeIDs)))

	patientIDs, err := seedPatients(ctx, pool, faker, *patients, logger)
	if err != nil {
		logger.Fatal("seed patients", zap.Error(err))
	}

	placed, err := seedDay(ctx, pool, faker, *date, patientIDs, typeIDs, *bookings)
	if err != nil {
		logger.Fatal("seed appointments", zap.Error(err))
	}

	logger.Info("seed complete",
		zap.Int("patients", len(patientIDs)),
		zap.String("date", *date),
		zap.Int("appointments", placed),
	)
}

// seedAppointmentTypes upserts the fixed catalogue and returns the ids keyed by
// position in appointmentTypes.
func seedAppointmentTypes(ctx context.Context, pool *pgxpool.Pool) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(appointmentTypes))
	for _, t := range appointmentTypes {
		var id uuid.UUID
		err := pool.QueryRow(ctx, `
			INSERT INTO appointment_types (id, name, duration, price_cents, color, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, now(), now())
			ON CONFLICT (name) DO UPDATE
			SET duration = EXCLUDED.duration,
			    price_cents = EXCLUDED.price_cents,
			    color = EXCLUDED.color,
			    updated_at = now()
			RETURNING id
		`, uuid.New(), t.Name, t.Duration, t.PriceCents, t.Color).Scan(&id)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, faker *gofakeit.Faker, count int, logger *zap.Logger) ([]uuid.UUID, error) {
	const batchSize = 500

	ids := make([]uuid.UUID, 0, count)
	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return nil, err
		}

		for i := offset; i < end; i++ {
			id := uuid.New()
			_, err := tx.Exec(ctx, `
				INSERT INTO patients (id, name, email, phone, created_at, updated_at)
				VALUES ($1, $2, $3, $4, now(), now())
			`, id, faker.Name(), faker.Email(), faker.Phone())
			if err != nil {
				_ = tx.Rollback(ctx)
				return nil, err
			}
			ids = append(ids, id)
		}

		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}

		logger.Info("patients seeded", zap.Int("done", end), zap.Int("total", count))
	}

	return ids, nil
}

// seedDay places up to count confirmed appointments on date at random slots of
// the default schedule, skipping any pick that would overlap an earlier one.
func seedDay(ctx context.Context, pool *pgxpool.Pool, faker *gofakeit.Faker, date string, patientIDs, typeIDs []uuid.UUID, count int) (int, error) {
	if len(patientIDs) == 0 || count <= 0 {
		return 0, nil
	}

	slotTimes := slots.GenerateSlots(settings.DefaultConfiguration())
	if len(slotTimes) == 0 {
		return 0, nil
	}

	placed := make([]appointment.Appointment, 0, count)
	for attempt := 0; attempt < count*4 && len(placed) < count; attempt++ {
		typeIdx := faker.Number(0, len(typeIDs)-1)
		typeID := typeIDs[typeIdx]
		appt := appointment.Appointment{
			ID:                uuid.New(),
			PatientID:         patientIDs[faker.Number(0, len(patientIDs)-1)],
			AppointmentTypeID: &typeID,
			Date:              date,
			Time:              slots.NormalizeTimeFormat(slotTimes[faker.Number(0, len(slotTimes)-1)]),
			Duration:          appointmentTypes[typeIdx].Duration,
			Status:            appointment.StatusConfirmed,
			Paid:              faker.Bool(),
		}
		if _, clash := slots.FindConflict(placed, date, appt.Time, appt.Duration); clash {
			continue
		}

		_, err := pool.Exec(ctx, `
			INSERT INTO appointments (id, patient_id, appointment_type_id, date, time, duration, status, paid, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4::date, $5, $6, $7, $8, $9, now(), now())
		`, appt.ID, appt.PatientID, appt.AppointmentTypeID, appt.Date, appt.Time, appt.Duration, appt.Status, appt.Paid, visitNotes[faker.Number(0, len(visitNotes)-1)])
		if err != nil {
			return len(placed), err
		}
		placed = append(placed, appt)
	}

	return len(placed), nil
}
