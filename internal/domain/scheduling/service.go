package scheduling

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/meditrack/clinic/internal/domain/directory"
	"github.com/meditrack/clinic/internal/platform/apperr"
	"github.com/meditrack/clinic/internal/platform/idgen"
	"github.com/meditrack/clinic/internal/platform/middleware"
	"github.com/meditrack/clinic/internal/platform/telemetry"
	"github.com/meditrack/clinic/pkg/store"
)

// DoctorLookup is the part of the doctor directory the engine reads.
type DoctorLookup interface {
	Get(ctx context.Context, id string) (*directory.Doctor, error)
	RecommendBySymptoms(ctx context.Context, symptoms []string, maxResults int) []*directory.Doctor
}

// PatientLookup is the part of the patient directory the engine reads.
type PatientLookup interface {
	Exists(ctx context.Context, id string) bool
}

type Option func(*Service)

// WithClock replaces time.Now as the engine's notion of the current moment.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service is the appointment engine: it owns appointment records and their
// status transitions and answers availability questions. It is not safe
// for concurrent use.
type Service struct {
	appointments *store.Store[*Appointment]
	doctors      DoctorLookup
	patients     PatientLookup
	ids          *idgen.Issuer
	logger       zerolog.Logger
	metrics      *telemetry.Metrics
	now          func() time.Time
}

func NewService(doctors DoctorLookup, patients PatientLookup, ids *idgen.Issuer, logger zerolog.Logger, metrics *telemetry.Metrics, opts ...Option) *Service {
	s := &Service{
		appointments: store.New[*Appointment](),
		doctors:      doctors,
		patients:     patients,
		ids:          ids,
		logger:       logger.With().Str("component", "appointments").Logger(),
		metrics:      metrics,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the engine's current time.
func (s *Service) Now() time.Time {
	return s.now()
}

// Create books a pending appointment. Both the doctor and the patient must
// exist; the doctor's current fee is copied onto the appointment.
func (s *Service) Create(ctx context.Context, patientID, doctorID string, at time.Time, reason string) (*Appointment, error) {
	doc, err := s.doctors.Get(ctx, doctorID)
	if err != nil {
		return nil, apperr.NotFound(doctorID, "Invalid doctor or patient ID")
	}
	if !s.patients.Exists(ctx, patientID) {
		return nil, apperr.NotFound(patientID, "Invalid doctor or patient ID")
	}

	a := &Appointment{
		ID:              s.ids.AppointmentID(),
		PatientID:       patientID,
		DoctorID:        doctorID,
		DateTime:        at,
		Reason:          reason,
		Status:          StatusPending,
		ConsultationFee: doc.ConsultationFee,
	}
	if err := s.appointments.Add(a.ID, a); err != nil {
		return nil, apperr.Duplicate(a.ID)
	}
	s.metrics.AppointmentTransition(string(StatusPending))
	middleware.LoggerFrom(ctx, s.logger).Info().
		Str("appointment_id", a.ID).
		Str("patient_id", patientID).
		Str("doctor_id", doctorID).
		Time("date_time", at).
		Msg("appointment created")
	return a, nil
}

func (s *Service) Get(_ context.Context, id string) (*Appointment, error) {
	a, ok := s.appointments.Get(id)
	if !ok {
		return nil, apperr.NotFound(id, "Appointment not found")
	}
	return a, nil
}

func (s *Service) List(_ context.Context) []*Appointment {
	return s.appointments.All()
}

func (s *Service) ListByPatient(_ context.Context, patientID string) []*Appointment {
	return s.appointments.Search(func(a *Appointment) bool { return a.PatientID == patientID })
}

func (s *Service) ListByDoctor(_ context.Context, doctorID string) []*Appointment {
	return s.appointments.Search(func(a *Appointment) bool { return a.DoctorID == doctorID })
}

func (s *Service) ListByStatus(_ context.Context, status Status) []*Appointment {
	return s.appointments.Search(func(a *Appointment) bool { return a.Status == status })
}

// ListUpcoming returns appointments later than now that are not cancelled.
func (s *Service) ListUpcoming(_ context.Context) []*Appointment {
	now := s.now()
	return s.appointments.Search(func(a *Appointment) bool {
		return a.DateTime.After(now) && a.Status != StatusCancelled
	})
}

func (s *Service) Count(_ context.Context) int {
	return s.appointments.Len()
}

func (s *Service) CountForDoctor(ctx context.Context, doctorID string) int {
	return len(s.ListByDoctor(ctx, doctorID))
}

// Confirm marks the appointment confirmed whatever its current status.
func (s *Service) Confirm(ctx context.Context, id string) (*Appointment, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.transition(ctx, a, StatusConfirmed)
	return a, nil
}

// Cancel marks the appointment cancelled. Completed appointments cannot be
// cancelled and are left untouched.
func (s *Service) Cancel(ctx context.Context, id string) (*Appointment, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status == StatusCompleted {
		return nil, apperr.InvalidTransition(id, "Appointment is completed, cannot be cancelled")
	}
	s.transition(ctx, a, StatusCancelled)
	return a, nil
}

// Complete marks the appointment completed. Empty notes keep the existing
// ones.
func (s *Service) Complete(ctx context.Context, id, notes string) (*Appointment, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if notes != "" {
		a.Notes = notes
	}
	s.transition(ctx, a, StatusCompleted)
	return a, nil
}

// Reschedule moves the appointment to at. Status is unchanged and no
// conflict check is made against the doctor's other appointments.
func (s *Service) Reschedule(ctx context.Context, id string, at time.Time) (*Appointment, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	prev := a.DateTime
	a.DateTime = at
	middleware.LoggerFrom(ctx, s.logger).Info().
		Str("appointment_id", id).
		Time("from", prev).
		Time("to", at).
		Msg("appointment rescheduled")
	return a, nil
}

// Clone stores a pending copy of the appointment under a fresh ID.
func (s *Service) Clone(ctx context.Context, id string) (*Appointment, error) {
	orig, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	cp := *orig
	cp.ID = s.ids.AppointmentID()
	cp.Status = StatusPending
	if err := s.appointments.Add(cp.ID, &cp); err != nil {
		return nil, apperr.Duplicate(cp.ID)
	}
	s.metrics.AppointmentTransition(string(StatusPending))
	middleware.LoggerFrom(ctx, s.logger).Info().
		Str("appointment_id", id).
		Str("clone_id", cp.ID).
		Msg("appointment cloned")
	return &cp, nil
}

func (s *Service) transition(ctx context.Context, a *Appointment, to Status) {
	from := a.Status
	a.Status = to
	s.metrics.AppointmentTransition(string(to))
	middleware.LoggerFrom(ctx, s.logger).Info().
		Str("appointment_id", a.ID).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("appointment status changed")
}
