package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-scheduling/internal/appointment"
)

// AppointmentRequest is the body of POST /appointments and PUT
// /appointments/{id}. Absent fields are left unchanged on update.
type AppointmentRequest struct {
	PatientID         *string `json:"patient_id"`
	AppointmentTypeID *string `json:"appointment_type_id"`
	Date              *string `json:"date"`
	Time              *string `json:"time"`
	Duration          *string `json:"duration"`
	Status            *string `json:"status"`
	Paid              *bool   `json:"paid"`
	Notes             *string `json:"notes"`
}

func (req AppointmentRequest) toInput() (appointment.AppointmentInput, error) {
	in := appointment.AppointmentInput{
		Date:     req.Date,
		Time:     req.Time,
		Duration: req.Duration,
		Paid:     req.Paid,
		Notes:    req.Notes,
	}

	if req.PatientID != nil {
		id, err := uuid.Parse(*req.PatientID)
		if err != nil {
			return in, errors.New("patient_id must be a valid UUID")
		}
		in.PatientID = &id
	}
	if req.AppointmentTypeID != nil && *req.AppointmentTypeID != "" {
		id, err := uuid.Parse(*req.AppointmentTypeID)
		if err != nil {
			return in, errors.New("appointment_type_id must be a valid UUID")
		}
		in.AppointmentTypeID = &id
	}
	if req.Status != nil {
		status := appointment.AppointmentStatus(*req.Status)
		if !status.Valid() {
			return in, fmt.Errorf("unknown status %q", *req.Status)
		}
		in.Status = &status
	}

	return in, nil
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}
