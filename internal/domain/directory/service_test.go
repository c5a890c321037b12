package directory

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meditrack/clinic/internal/platform/apperr"
	"github.com/meditrack/clinic/internal/platform/idgen"
	"github.com/meditrack/clinic/internal/platform/telemetry"
)

func newTestDoctorService() *DoctorService {
	return NewDoctorService(idgen.New(), zerolog.Nop(), telemetry.New(false))
}

func newTestPatientService() *PatientService {
	return NewPatientService(idgen.New(), zerolog.Nop())
}

func addDoctor(t *testing.T, s *DoctorService, name string, spec Specialization, rating float64, years int) *Doctor {
	t.Helper()
	d, err := s.Add(context.Background(), &Doctor{
		Person:            Person{Name: name, Email: "doc@example.com", Phone: "9876543210", Age: 45, Gender: GenderFemale},
		Specialization:    spec,
		YearsOfExperience: years,
		Rating:            rating,
	})
	require.NoError(t, err)
	return d
}

func names(ds []*Doctor) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Name
	}
	return out
}

func TestDoctorService_AddIssuesIDAndDefaultFee(t *testing.T) {
	s := newTestDoctorService()
	ctx := context.Background()

	d := addDoctor(t, s, "Dr. Rao", Cardiologist, 4.5, 10)
	assert.Equal(t, "DOC00501", d.ID)
	assert.Equal(t, 500.0, d.ConsultationFee)

	got, err := s.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Same(t, d, got)
	assert.Equal(t, 1, s.Count(ctx))
}

func TestDoctorService_AddKeepsExplicitFeeAndClampsRating(t *testing.T) {
	s := newTestDoctorService()
	d, err := s.Add(context.Background(), &Doctor{
		Person:          Person{Name: "Dr. Iyer"},
		Specialization:  ENT,
		ConsultationFee: 999,
		Rating:          7,
	})
	require.NoError(t, err)
	assert.Equal(t, 999.0, d.ConsultationFee)
	assert.Equal(t, 5.0, d.Rating)
}

func TestDoctorService_AddRejectsUnknownSpecialization(t *testing.T) {
	s := newTestDoctorService()
	_, err := s.Add(context.Background(), &Doctor{Specialization: "ASTROLOGER"})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	assert.Equal(t, 0, s.Count(context.Background()))
}

func TestDoctorService_GetNotFound(t *testing.T) {
	s := newTestDoctorService()
	_, err := s.Get(context.Background(), "DOC99999")
	require.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Contains(t, err.Error(), "DOC99999")
}

func TestDoctorService_UpdateAndRemove(t *testing.T) {
	s := newTestDoctorService()
	ctx := context.Background()
	d := addDoctor(t, s, "Dr. Shah", Dermatologist, 3, 4)

	updated := *d
	updated.ConsultationFee = 410
	updated.Rating = -1
	require.NoError(t, s.Update(ctx, &updated))

	got, _ := s.Get(ctx, d.ID)
	assert.Equal(t, 410.0, got.ConsultationFee)
	assert.Equal(t, 0.0, got.Rating)

	missing := updated
	missing.ID = "DOC00000"
	assert.ErrorIs(t, s.Update(ctx, &missing), apperr.ErrNotFound)

	assert.True(t, s.Remove(ctx, d.ID))
	assert.False(t, s.Remove(ctx, d.ID))
	assert.Equal(t, 0, s.Count(ctx))
}

func TestDoctorService_Searches(t *testing.T) {
	s := newTestDoctorService()
	ctx := context.Background()
	addDoctor(t, s, "Dr. Mehta", Cardiologist, 4.8, 20)
	addDoctor(t, s, "Dr. Gupta", Neurologist, 3.9, 8)
	addDoctor(t, s, "Dr. Bose", Cardiologist, 4.1, 12)

	d, err := s.SearchByName(ctx, "dr. GUPTA")
	require.NoError(t, err)
	assert.Equal(t, Neurologist, d.Specialization)

	_, err = s.SearchByName(ctx, "Dr. Nobody")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.Equal(t, []string{"Dr. Mehta", "Dr. Bose"}, names(s.SearchBySpecialization(ctx, Cardiologist)))
	assert.Equal(t, []string{"Dr. Mehta", "Dr. Bose"}, names(s.SearchByMinRating(ctx, 4.0)))
	assert.Empty(t, s.SearchBySpecialization(ctx, Surgeon))
}

func TestDoctorService_Rankings(t *testing.T) {
	s := newTestDoctorService()
	ctx := context.Background()
	addDoctor(t, s, "A", GeneralPractitioner, 4.0, 5)
	addDoctor(t, s, "B", GeneralPractitioner, 4.5, 3)
	addDoctor(t, s, "C", GeneralPractitioner, 4.0, 9)
	addDoctor(t, s, "D", GeneralPractitioner, 3.0, 9)

	assert.Equal(t, []string{"B", "A", "C", "D"}, names(s.RankByRating(ctx)))
	assert.Equal(t, []string{"C", "D", "A", "B"}, names(s.RankByExperience(ctx)))
	// ranking never reorders the underlying store
	assert.Equal(t, []string{"A", "B", "C", "D"}, names(s.List(ctx)))
}

func TestDoctorService_AverageFee(t *testing.T) {
	s := newTestDoctorService()
	ctx := context.Background()
	assert.Equal(t, 0.0, s.AverageFee(ctx, Cardiologist))

	addDoctor(t, s, "A", Cardiologist, 4, 1)
	_, err := s.Add(ctx, &Doctor{Person: Person{Name: "B"}, Specialization: Cardiologist, ConsultationFee: 700})
	require.NoError(t, err)

	assert.InDelta(t, 600.0, s.AverageFee(ctx, Cardiologist), 1e-9)
	assert.Equal(t, 0.0, s.AverageFee(ctx, ENT))
}

func TestDoctorService_RecommendChestPainReturnsCardiologists(t *testing.T) {
	s := newTestDoctorService()
	ctx := context.Background()
	addDoctor(t, s, "Neuro", Neurologist, 5.0, 30)
	addDoctor(t, s, "Cardio Junior", Cardiologist, 4.5, 3)
	addDoctor(t, s, "Cardio Senior", Cardiologist, 4.5, 15)
	addDoctor(t, s, "Cardio Top", Cardiologist, 4.9, 1)
	addDoctor(t, s, "GP", GeneralPractitioner, 4.9, 10)

	got := s.RecommendBySymptoms(ctx, []string{"chest pain"}, 5)
	assert.Equal(t, []string{"Cardio Top", "Cardio Senior", "Cardio Junior"}, names(got))
	for _, d := range got {
		assert.Equal(t, Cardiologist, d.Specialization)
	}
}

func TestDoctorService_RecommendNoSymptomsUsesRating(t *testing.T) {
	s := newTestDoctorService()
	ctx := context.Background()
	for i, r := range []float64{3.0, 4.0, 5.0, 2.0, 4.5, 1.0, 3.5} {
		addDoctor(t, s, string(rune('A'+i)), Specializations()[i], r, i)
	}

	got := s.RecommendBySymptoms(ctx, nil, 5)
	assert.Equal(t, []string{"C", "E", "B", "G", "A"}, names(got))
}

func TestDoctorService_RecommendUnmatchedFallsBackToGP(t *testing.T) {
	s := newTestDoctorService()
	ctx := context.Background()
	addDoctor(t, s, "Derm", Dermatologist, 5, 1)
	addDoctor(t, s, "GP", GeneralPractitioner, 2, 1)

	got := s.RecommendBySymptoms(ctx, []string{"feeling odd"}, 3)
	assert.Equal(t, []string{"GP"}, names(got))
}

func TestDoctorService_RecommendMultipleSpecializationsAndLimit(t *testing.T) {
	s := newTestDoctorService()
	ctx := context.Background()
	addDoctor(t, s, "Skin", Dermatologist, 4.0, 2)
	addDoctor(t, s, "Ear", ENT, 4.2, 6)
	addDoctor(t, s, "Eye", Ophthalmologist, 4.9, 6)

	got := s.RecommendBySymptoms(ctx, []string{"itchy rash", "sinus pressure"}, 1)
	assert.Equal(t, []string{"Ear"}, names(got))

	assert.Empty(t, s.RecommendBySymptoms(ctx, []string{"rash"}, 0))
}

func TestDoctorService_NameOf(t *testing.T) {
	s := newTestDoctorService()
	d := addDoctor(t, s, "Dr. Khan", Surgeon, 4, 4)
	assert.Equal(t, "Dr. Khan", s.NameOf(context.Background(), d.ID))
	assert.Equal(t, "", s.NameOf(context.Background(), "DOC0"))
}

func addPatient(t *testing.T, s *PatientService, name string, age int, bt BloodType, h, w float64) *Patient {
	t.Helper()
	p, err := s.Add(context.Background(), &Patient{
		Person:    Person{Name: name, Age: age, Gender: GenderMale},
		BloodType: bt,
		Height:    h,
		Weight:    w,
	})
	require.NoError(t, err)
	return p
}

func TestPatientService_AddGetRemove(t *testing.T) {
	s := newTestPatientService()
	ctx := context.Background()

	p := addPatient(t, s, "Asha", 30, BloodOPos, 160, 55)
	assert.Equal(t, "PAT01001", p.ID)
	assert.NotNil(t, p.Allergies)

	got, err := s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.Name)

	_, err = s.Get(ctx, "PAT00000")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.True(t, s.Remove(ctx, p.ID))
	assert.False(t, s.Remove(ctx, p.ID))
}

func TestPatientService_Update(t *testing.T) {
	s := newTestPatientService()
	ctx := context.Background()
	p := addPatient(t, s, "Ravi", 40, BloodBPos, 170, 70)

	updated := *p
	updated.Weight = 80
	require.NoError(t, s.Update(ctx, &updated))
	got, _ := s.Get(ctx, p.ID)
	assert.Equal(t, 80.0, got.Weight)

	updated.ID = "PAT00000"
	assert.ErrorIs(t, s.Update(ctx, &updated), apperr.ErrNotFound)
}

func TestPatientService_Searches(t *testing.T) {
	s := newTestPatientService()
	ctx := context.Background()
	addPatient(t, s, "Asha", 30, BloodOPos, 160, 55)
	addPatient(t, s, "Ravi", 40, BloodBPos, 170, 95)
	addPatient(t, s, "Meena", 30, BloodBPos, 0, 60)

	p, err := s.SearchByName(ctx, "ravi")
	require.NoError(t, err)
	assert.Equal(t, 40, p.Age)

	assert.Len(t, s.SearchByAge(ctx, 30), 2)
	assert.Len(t, s.SearchByBloodType(ctx, BloodBPos), 2)
	assert.Empty(t, s.SearchByBloodType(ctx, BloodABNeg))

	high := s.WithBMIAbove(ctx, 25)
	require.Len(t, high, 1)
	assert.Equal(t, "Ravi", high[0].Name)
}

func TestPatientService_AddAllergySuppressesDuplicates(t *testing.T) {
	s := newTestPatientService()
	ctx := context.Background()
	p := addPatient(t, s, "Asha", 30, BloodOPos, 160, 55)

	_, err := s.AddAllergy(ctx, p.ID, "Penicillin")
	require.NoError(t, err)
	_, err = s.AddAllergy(ctx, p.ID, "Penicillin")
	require.NoError(t, err)
	got, err := s.AddAllergy(ctx, p.ID, "Peanuts")
	require.NoError(t, err)

	assert.Equal(t, []string{"Penicillin", "Peanuts"}, got.Allergies)

	_, err = s.AddAllergy(ctx, "PAT00000", "Dust")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPatientService_AddAndUpdateKeepAllergiesUnique(t *testing.T) {
	s := newTestPatientService()
	ctx := context.Background()

	p, err := s.Add(ctx, &Patient{
		Person:    Person{Name: "Kiran"},
		Allergies: []string{"Peanut", "Peanut", " ", "Latex", " Peanut "},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Peanut", "Latex"}, p.Allergies)

	updated := *p
	updated.Allergies = []string{"Dust", "Dust", "Latex", "Dust"}
	require.NoError(t, s.Update(ctx, &updated))
	got, err := s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dust", "Latex"}, got.Allergies)
}

func TestPatientService_MedicalHistory(t *testing.T) {
	s := newTestPatientService()
	ctx := context.Background()
	p := addPatient(t, s, "Asha", 30, BloodOPos, 160, 55)

	require.NoError(t, s.UpdateMedicalHistory(ctx, p.ID, "Asthma since 2010"))
	h, err := s.MedicalHistory(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asthma since 2010", h)

	_, err = s.MedicalHistory(ctx, "PAT00000")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, s.UpdateMedicalHistory(ctx, "PAT00000", "x"), apperr.ErrNotFound)
}

func TestPatientService_CloneIsDeepAndStored(t *testing.T) {
	s := newTestPatientService()
	ctx := context.Background()
	p := addPatient(t, s, "Asha", 30, BloodOPos, 160, 55)
	p.AddAllergy("Latex")

	cp, err := s.Clone(ctx, p.ID)
	require.NoError(t, err)
	assert.NotEqual(t, p.ID, cp.ID)
	assert.Equal(t, p.Name, cp.Name)
	assert.Equal(t, 2, s.Count(ctx))

	cp.AddAllergy("Pollen")
	assert.Equal(t, []string{"Latex"}, p.Allergies)

	_, err = s.Clone(ctx, "PAT00000")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
