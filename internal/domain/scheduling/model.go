package scheduling

import (
	"fmt"
	"strings"
	"time"
)

// Status is an appointment's position in its lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	// StatusNoShow is a valid value but no engine operation assigns it.
	StatusNoShow Status = "noshow"
)

var statusLabels = map[Status]string{
	StatusPending:   "Pending",
	StatusConfirmed: "Confirmed",
	StatusCompleted: "Completed",
	StatusCancelled: "Cancelled",
	StatusNoShow:    "No Show",
}

func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// ParseStatus accepts a status code or its label, ignoring case and
// separators ("no_show", "No Show" and "noshow" are equivalent).
func ParseStatus(v string) (Status, error) {
	norm := strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(v)))
	if s := Status(norm); s.Valid() {
		return s, nil
	}
	return "", fmt.Errorf("unknown appointment status: %q", v)
}

// Appointment books a patient with a doctor at a point in time.
// ConsultationFee is copied from the doctor when the appointment is created
// and does not follow later fee changes.
type Appointment struct {
	ID              string    `json:"id"`
	PatientID       string    `json:"patient_id"`
	DoctorID        string    `json:"doctor_id"`
	DateTime        time.Time `json:"date_time"`
	Reason          string    `json:"reason"`
	Status          Status    `json:"status"`
	Notes           string    `json:"notes"`
	ConsultationFee float64   `json:"consultation_fee"`
}

// Equal reports whether both values refer to the same appointment.
func (a *Appointment) Equal(other *Appointment) bool {
	return a != nil && other != nil && a.ID == other.ID
}

// blocksSlot reports whether a occupies its start instant on the doctor's
// calendar.
func (a *Appointment) blocksSlot() bool {
	return a.Status != StatusCancelled
}
