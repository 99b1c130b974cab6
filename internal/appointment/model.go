package appointment

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusExpired   AppointmentStatus = "expired"
)

// Valid reports whether s is a known status.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// Occupies reports whether an appointment in this status holds its time.
// Cancelled and expired appointments free their slots.
func (s AppointmentStatus) Occupies() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted:
		return true
	}
	return false
}

type Patient struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AppointmentType supplies the default duration and price for new appointments.
type AppointmentType struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Duration   string    `json:"duration"`
	PriceCents int64     `json:"price_cents"`
	Color      string    `json:"color"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Appointment is a booking as stored. Date is YYYY-MM-DD. Time and Duration are
// kept as entered ("2:30 PM", "14:30", "45 min") and interpreted by the slot
// engine.
type Appointment struct {
	ID                uuid.UUID         `json:"id"`
	PatientID         uuid.UUID         `json:"patient_id"`
	PatientName       string            `json:"patient_name"`
	AppointmentTypeID *uuid.UUID        `json:"appointment_type_id,omitempty"`
	Date              string            `json:"date"`
	Time              string            `json:"time"`
	Duration          string            `json:"duration"`
	Status            AppointmentStatus `json:"status"`
	Paid              bool              `json:"paid"`
	Notes             string            `json:"notes,omitempty"`
	ExpiresAt         *time.Time        `json:"expires_at,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

func (a Appointment) OccupancyDate() string     { return a.Date }
func (a Appointment) OccupancyTime() string     { return a.Time }
func (a Appointment) OccupancyDuration() string { return a.Duration }

// AppointmentInput carries the writable fields for create and update.
// Nil pointers mean "leave unchanged" on update.
type AppointmentInput struct {
	PatientID         *uuid.UUID
	AppointmentTypeID *uuid.UUID
	Date              *string
	Time              *string
	Duration          *string
	Status            *AppointmentStatus
	Paid              *bool
	Notes             *string
}

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}
