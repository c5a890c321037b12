package directory

import (
	"fmt"
	"strings"
)

// Specialization is a medical field a doctor practises in.
type Specialization string

const (
	GeneralPractitioner Specialization = "GENERAL_PRACTITIONER"
	Cardiologist        Specialization = "CARDIOLOGIST"
	Dermatologist       Specialization = "DERMATOLOGIST"
	Pediatrician        Specialization = "PEDIATRICIAN"
	Orthopedic          Specialization = "ORTHOPEDIC"
	Neurologist         Specialization = "NEUROLOGIST"
	Psychiatrist        Specialization = "PSYCHIATRIST"
	Ophthalmologist     Specialization = "OPHTHALMOLOGIST"
	ENT                 Specialization = "ENT"
	Surgeon             Specialization = "SURGEON"
)

type specializationInfo struct {
	label string
	fee   float64
}

var specializations = map[Specialization]specializationInfo{
	GeneralPractitioner: {"General Practice", 300},
	Cardiologist:        {"Cardiology", 500},
	Dermatologist:       {"Dermatology", 400},
	Pediatrician:        {"Pediatrics", 350},
	Orthopedic:          {"Orthopedic", 450},
	Neurologist:         {"Neurology", 550},
	Psychiatrist:        {"Psychiatry", 400},
	Ophthalmologist:     {"Ophthalmology", 420},
	ENT:                 {"ENT", 380},
	Surgeon:             {"General Surgery", 600},
}

// Specializations lists every specialization in declaration order.
func Specializations() []Specialization {
	return []Specialization{
		GeneralPractitioner, Cardiologist, Dermatologist, Pediatrician, Orthopedic,
		Neurologist, Psychiatrist, Ophthalmologist, ENT, Surgeon,
	}
}

func (s Specialization) Valid() bool {
	_, ok := specializations[s]
	return ok
}

// Label returns the display name, or the raw code when unknown.
func (s Specialization) Label() string {
	if info, ok := specializations[s]; ok {
		return info.label
	}
	return string(s)
}

// DefaultFee returns the consultation fee doctors of s charge unless
// configured otherwise.
func (s Specialization) DefaultFee() float64 {
	return specializations[s].fee
}

// ParseSpecialization accepts a code or a display label, case-insensitively.
func ParseSpecialization(v string) (Specialization, error) {
	v = strings.TrimSpace(v)
	for _, s := range Specializations() {
		if strings.EqualFold(v, string(s)) || strings.EqualFold(v, s.Label()) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown specialization: %q", v)
}
