package directory

import (
	"strings"
)

// Role is the capability tag shared by every person record.
type Role string

const (
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// ParseGender matches case-insensitively and returns the canonical value.
func ParseGender(s string) (Gender, bool) {
	for _, g := range []Gender{GenderMale, GenderFemale, GenderOther} {
		if strings.EqualFold(strings.TrimSpace(s), string(g)) {
			return g, true
		}
	}
	return "", false
}

type BloodType string

const (
	BloodOPos  BloodType = "O+"
	BloodONeg  BloodType = "O-"
	BloodAPos  BloodType = "A+"
	BloodANeg  BloodType = "A-"
	BloodBPos  BloodType = "B+"
	BloodBNeg  BloodType = "B-"
	BloodABPos BloodType = "AB+"
	BloodABNeg BloodType = "AB-"
)

var bloodTypes = []BloodType{
	BloodOPos, BloodONeg, BloodAPos, BloodANeg,
	BloodBPos, BloodBNeg, BloodABPos, BloodABNeg,
}

func (b BloodType) Valid() bool {
	for _, v := range bloodTypes {
		if b == v {
			return true
		}
	}
	return false
}

// Person holds the fields common to doctors and patients.
type Person struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Age     int    `json:"age"`
	Gender  Gender `json:"gender"`
	Address string `json:"address,omitempty"`
}

// Doctor is a practitioner listed in the directory.
type Doctor struct {
	Person
	Specialization    Specialization `json:"specialization"`
	ConsultationFee   float64        `json:"consultation_fee"`
	YearsOfExperience int            `json:"years_of_experience"`
	LicenseNumber     string         `json:"license_number"`
	Rating            float64        `json:"rating"`
	TotalPatients     int            `json:"total_patients"`
}

func (d *Doctor) Role() Role { return RoleDoctor }

// SetRating stores r clamped to [0, 5].
func (d *Doctor) SetRating(r float64) {
	d.Rating = clampRating(r)
}

func clampRating(r float64) float64 {
	switch {
	case r < 0:
		return 0
	case r > 5:
		return 5
	}
	return r
}

// Patient is a person receiving care.
type Patient struct {
	Person
	MedicalHistory   string    `json:"medical_history,omitempty"`
	Allergies        []string  `json:"allergies"`
	Height           float64   `json:"height_cm"`
	Weight           float64   `json:"weight_kg"`
	BloodType        BloodType `json:"blood_type,omitempty"`
	EmergencyContact string    `json:"emergency_contact,omitempty"`
}

func (p *Patient) Role() Role { return RolePatient }

// BMI is weight / (height in metres)^2, or 0 when no height is recorded.
func (p *Patient) BMI() float64 {
	if p.Height <= 0 {
		return 0
	}
	m := p.Height / 100
	return p.Weight / (m * m)
}

// AddAllergy appends allergy unless it is already listed. It reports whether
// the list changed.
func (p *Patient) AddAllergy(allergy string) bool {
	allergy = strings.TrimSpace(allergy)
	if allergy == "" {
		return false
	}
	for _, a := range p.Allergies {
		if a == allergy {
			return false
		}
	}
	p.Allergies = append(p.Allergies, allergy)
	return true
}

// normalizeAllergies rebuilds the allergy list as a set: blanks dropped,
// first occurrence kept. The result is never nil.
func (p *Patient) normalizeAllergies() {
	given := p.Allergies
	p.Allergies = make([]string, 0, len(given))
	for _, a := range given {
		p.AddAllergy(a)
	}
}

func (p *Patient) clone() *Patient {
	cp := *p
	cp.Allergies = append([]string(nil), p.Allergies...)
	return &cp
}
