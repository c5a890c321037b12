package directory

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/meditrack/clinic/internal/platform/apperr"
	"github.com/meditrack/clinic/internal/platform/idgen"
	"github.com/meditrack/clinic/internal/platform/middleware"
	"github.com/meditrack/clinic/internal/platform/telemetry"
	"github.com/meditrack/clinic/pkg/store"
)

// DoctorService owns the doctor records. It is not safe for concurrent use;
// callers serialize access.
type DoctorService struct {
	doctors *store.Store[*Doctor]
	ids     *idgen.Issuer
	logger  zerolog.Logger
	metrics *telemetry.Metrics
}

func NewDoctorService(ids *idgen.Issuer, logger zerolog.Logger, metrics *telemetry.Metrics) *DoctorService {
	return &DoctorService{
		doctors: store.New[*Doctor](),
		ids:     ids,
		logger:  logger.With().Str("component", "doctors").Logger(),
		metrics: metrics,
	}
}

// Add issues a fresh ID for d and stores it. A zero fee falls back to the
// specialization default.
func (s *DoctorService) Add(ctx context.Context, d *Doctor) (*Doctor, error) {
	if !d.Specialization.Valid() {
		return nil, apperr.InvalidInput("specialization", string(d.Specialization))
	}
	if d.ConsultationFee == 0 {
		d.ConsultationFee = d.Specialization.DefaultFee()
	}
	d.Rating = clampRating(d.Rating)
	d.ID = s.ids.DoctorID()
	if err := s.doctors.Add(d.ID, d); err != nil {
		return nil, apperr.Duplicate(d.ID)
	}
	middleware.LoggerFrom(ctx, s.logger).Info().
		Str("doctor_id", d.ID).
		Str("specialization", string(d.Specialization)).
		Msg("doctor added")
	return d, nil
}

func (s *DoctorService) Get(_ context.Context, id string) (*Doctor, error) {
	d, ok := s.doctors.Get(id)
	if !ok {
		return nil, apperr.NotFound(id, "Doctor not found")
	}
	return d, nil
}

// Exists reports whether id names a stored doctor.
func (s *DoctorService) Exists(_ context.Context, id string) bool {
	return s.doctors.Exists(id)
}

// Update replaces the record stored under d.ID.
func (s *DoctorService) Update(ctx context.Context, d *Doctor) error {
	if !d.Specialization.Valid() {
		return apperr.InvalidInput("specialization", string(d.Specialization))
	}
	d.Rating = clampRating(d.Rating)
	if !s.doctors.Update(d.ID, d) {
		return apperr.NotFound(d.ID, "Doctor not found")
	}
	middleware.LoggerFrom(ctx, s.logger).Info().Str("doctor_id", d.ID).Msg("doctor updated")
	return nil
}

// Remove deletes the doctor and reports whether it existed.
func (s *DoctorService) Remove(ctx context.Context, id string) bool {
	ok := s.doctors.Delete(id)
	if ok {
		middleware.LoggerFrom(ctx, s.logger).Info().Str("doctor_id", id).Msg("doctor removed")
	}
	return ok
}

func (s *DoctorService) List(_ context.Context) []*Doctor {
	return s.doctors.All()
}

func (s *DoctorService) Count(_ context.Context) int {
	return s.doctors.Len()
}

// SearchByName returns the first doctor whose name matches exactly,
// ignoring case.
func (s *DoctorService) SearchByName(_ context.Context, name string) (*Doctor, error) {
	matches := s.doctors.Search(func(d *Doctor) bool {
		return strings.EqualFold(d.Name, name)
	})
	if len(matches) == 0 {
		return nil, apperr.NotFound(name, "Doctor not found")
	}
	return matches[0], nil
}

func (s *DoctorService) SearchBySpecialization(_ context.Context, spec Specialization) []*Doctor {
	return s.doctors.Search(func(d *Doctor) bool { return d.Specialization == spec })
}

func (s *DoctorService) SearchByMinRating(_ context.Context, minRating float64) []*Doctor {
	return s.doctors.Search(func(d *Doctor) bool { return d.Rating >= minRating })
}

// RankByRating returns all doctors, highest rating first. Equal ratings keep
// insertion order.
func (s *DoctorService) RankByRating(_ context.Context) []*Doctor {
	out := s.doctors.All()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	return out
}

// RankByExperience returns all doctors, most years of experience first.
func (s *DoctorService) RankByExperience(_ context.Context) []*Doctor {
	out := s.doctors.All()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].YearsOfExperience > out[j].YearsOfExperience
	})
	return out
}

// AverageFee is the mean consultation fee for spec, 0 when no doctor has it.
func (s *DoctorService) AverageFee(ctx context.Context, spec Specialization) float64 {
	matches := s.SearchBySpecialization(ctx, spec)
	if len(matches) == 0 {
		return 0
	}
	var sum float64
	for _, d := range matches {
		sum += d.ConsultationFee
	}
	return sum / float64(len(matches))
}

// RecommendBySymptoms ranks doctors whose specialization the symptoms point
// to, by rating and then experience. With no symptoms it falls back to the
// overall rating ranking. The triage is a keyword heuristic and best-effort.
func (s *DoctorService) RecommendBySymptoms(ctx context.Context, symptoms []string, maxResults int) []*Doctor {
	if maxResults <= 0 {
		return []*Doctor{}
	}
	if len(symptoms) == 0 {
		return truncate(s.RankByRating(ctx), maxResults)
	}

	inferred := InferSpecializations(symptoms)
	wanted := make(map[Specialization]bool, len(inferred))
	for _, spec := range inferred {
		wanted[spec] = true
		s.metrics.Recommendation(string(spec))
	}

	candidates := s.doctors.Search(func(d *Doctor) bool { return wanted[d.Specialization] })
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Rating != candidates[j].Rating {
			return candidates[i].Rating > candidates[j].Rating
		}
		return candidates[i].YearsOfExperience > candidates[j].YearsOfExperience
	})

	middleware.LoggerFrom(ctx, s.logger).Debug().
		Strs("symptoms", symptoms).
		Int("candidates", len(candidates)).
		Msg("recommendation computed")
	return truncate(candidates, maxResults)
}

// NameOf resolves a doctor's display name, empty when unknown.
func (s *DoctorService) NameOf(_ context.Context, id string) string {
	if d, ok := s.doctors.Get(id); ok {
		return d.Name
	}
	return ""
}

func truncate[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// PatientService owns the patient records. Like DoctorService it expects
// callers to serialize access.
type PatientService struct {
	patients *store.Store[*Patient]
	ids      *idgen.Issuer
	logger   zerolog.Logger
}

func NewPatientService(ids *idgen.Issuer, logger zerolog.Logger) *PatientService {
	return &PatientService{
		patients: store.New[*Patient](),
		ids:      ids,
		logger:   logger.With().Str("component", "patients").Logger(),
	}
}

func (s *PatientService) Add(ctx context.Context, p *Patient) (*Patient, error) {
	p.ID = s.ids.PatientID()
	p.normalizeAllergies()
	if err := s.patients.Add(p.ID, p); err != nil {
		return nil, apperr.Duplicate(p.ID)
	}
	middleware.LoggerFrom(ctx, s.logger).Info().Str("patient_id", p.ID).Msg("patient added")
	return p, nil
}

func (s *PatientService) Get(_ context.Context, id string) (*Patient, error) {
	p, ok := s.patients.Get(id)
	if !ok {
		return nil, apperr.NotFound(id, "Patient not found")
	}
	return p, nil
}

func (s *PatientService) Exists(_ context.Context, id string) bool {
	return s.patients.Exists(id)
}

func (s *PatientService) Update(ctx context.Context, p *Patient) error {
	p.normalizeAllergies()
	if !s.patients.Update(p.ID, p) {
		return apperr.NotFound(p.ID, "Patient not found")
	}
	middleware.LoggerFrom(ctx, s.logger).Info().Str("patient_id", p.ID).Msg("patient updated")
	return nil
}

func (s *PatientService) Remove(ctx context.Context, id string) bool {
	ok := s.patients.Delete(id)
	if ok {
		middleware.LoggerFrom(ctx, s.logger).Info().Str("patient_id", id).Msg("patient removed")
	}
	return ok
}

func (s *PatientService) List(_ context.Context) []*Patient {
	return s.patients.All()
}

func (s *PatientService) Count(_ context.Context) int {
	return s.patients.Len()
}

func (s *PatientService) SearchByName(_ context.Context, name string) (*Patient, error) {
	matches := s.patients.Search(func(p *Patient) bool {
		return strings.EqualFold(p.Name, name)
	})
	if len(matches) == 0 {
		return nil, apperr.NotFound(name, "Patient not found")
	}
	return matches[0], nil
}

func (s *PatientService) SearchByAge(_ context.Context, age int) []*Patient {
	return s.patients.Search(func(p *Patient) bool { return p.Age == age })
}

func (s *PatientService) SearchByBloodType(_ context.Context, bt BloodType) []*Patient {
	return s.patients.Search(func(p *Patient) bool { return p.BloodType == bt })
}

// AddAllergy records an allergy for the patient. Duplicates are ignored.
func (s *PatientService) AddAllergy(ctx context.Context, id, allergy string) (*Patient, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.AddAllergy(allergy) {
		middleware.LoggerFrom(ctx, s.logger).Info().
			Str("patient_id", id).
			Str("allergy", allergy).
			Msg("allergy added")
	}
	return p, nil
}

// WithBMIAbove returns patients whose BMI is strictly greater than threshold.
func (s *PatientService) WithBMIAbove(_ context.Context, threshold float64) []*Patient {
	return s.patients.Search(func(p *Patient) bool { return p.BMI() > threshold })
}

func (s *PatientService) MedicalHistory(ctx context.Context, id string) (string, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return p.MedicalHistory, nil
}

func (s *PatientService) UpdateMedicalHistory(ctx context.Context, id, history string) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	p.MedicalHistory = history
	return nil
}

// Clone stores a copy of the patient under a freshly issued ID.
func (s *PatientService) Clone(ctx context.Context, id string) (*Patient, error) {
	orig, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	cp := orig.clone()
	cp.ID = s.ids.PatientID()
	if err := s.patients.Add(cp.ID, cp); err != nil {
		return nil, apperr.Duplicate(cp.ID)
	}
	middleware.LoggerFrom(ctx, s.logger).Info().
		Str("patient_id", id).
		Str("clone_id", cp.ID).
		Msg("patient cloned")
	return cp, nil
}

func (s *PatientService) NameOf(_ context.Context, id string) string {
	if p, ok := s.patients.Get(id); ok {
		return p.Name
	}
	return ""
}
