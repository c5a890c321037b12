package directory

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/meditrack/clinic/internal/platform/apperr"
)

const (
	minNameLength  = 2
	maxNameLength  = 100
	minPhoneLength = 10
	maxPhoneLength = 15
	minAge         = 1
	maxAge         = 150
)

var (
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,6}$`)
	digitsOnly   = regexp.MustCompile(`^\d+$`)
)

// Validate checks the shared person fields. The first failing field is
// reported as an apperr InvalidInput.
func (p *Person) Validate() error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return apperr.InvalidInput("name", "null or empty")
	}
	if n := utf8.RuneCountInString(name); n < minNameLength || n > maxNameLength {
		return apperr.InvalidInput("name", "invalid length")
	}
	if p.Age < minAge || p.Age > maxAge {
		return apperr.InvalidInput("age", strconv.Itoa(p.Age))
	}
	if strings.TrimSpace(p.Email) == "" {
		return apperr.InvalidInput("email", "null or empty")
	}
	if !emailPattern.MatchString(p.Email) {
		return apperr.InvalidInput("email", p.Email)
	}
	if strings.TrimSpace(p.Phone) == "" {
		return apperr.InvalidInput("phone", "null or empty")
	}
	if n := len(p.Phone); n < minPhoneLength || n > maxPhoneLength {
		return apperr.InvalidInput("phone", "invalid length: "+strconv.Itoa(n))
	}
	if !digitsOnly.MatchString(p.Phone) {
		return apperr.InvalidInput("phone", p.Phone)
	}
	g, ok := ParseGender(string(p.Gender))
	if !ok {
		return apperr.InvalidInput("gender", string(p.Gender))
	}
	p.Gender = g
	return nil
}

// Validate checks a doctor record before it is handed to the directory.
func (d *Doctor) Validate() error {
	if err := d.Person.Validate(); err != nil {
		return err
	}
	if !d.Specialization.Valid() {
		return apperr.InvalidInput("specialization", string(d.Specialization))
	}
	if d.ConsultationFee < 0 {
		return apperr.InvalidInput("consultation_fee", strconv.FormatFloat(d.ConsultationFee, 'f', -1, 64))
	}
	if d.YearsOfExperience < 0 {
		return apperr.InvalidInput("years_of_experience", strconv.Itoa(d.YearsOfExperience))
	}
	return nil
}

// Validate checks a patient record. Blood type is optional but must be
// recognised when given.
func (p *Patient) Validate() error {
	if err := p.Person.Validate(); err != nil {
		return err
	}
	if p.BloodType != "" && !p.BloodType.Valid() {
		return apperr.InvalidInput("blood_type", string(p.BloodType))
	}
	if p.Height < 0 {
		return apperr.InvalidInput("height_cm", strconv.FormatFloat(p.Height, 'f', -1, 64))
	}
	if p.Weight < 0 {
		return apperr.InvalidInput("weight_kg", strconv.FormatFloat(p.Weight, 'f', -1, 64))
	}
	return nil
}
