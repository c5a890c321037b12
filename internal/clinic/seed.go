package clinic

import (
	"context"
	"fmt"

	"github.com/meditrack/clinic/internal/domain/directory"
)

func demoDoctors() []*directory.Doctor {
	return []*directory.Doctor{
		{
			Person: directory.Person{
				Name: "Dr. Rajesh Kumar", Email: "rajesh@meditrack.com", Phone: "9876543210",
				Age: 45, Gender: directory.GenderMale, Address: "Mumbai",
			},
			Specialization:    directory.Cardiologist,
			ConsultationFee:   500,
			YearsOfExperience: 15,
			LicenseNumber:     "LIC001",
			Rating:            4.6,
		},
		{
			Person: directory.Person{
				Name: "Dr. Priya Sharma", Email: "priya@meditrack.com", Phone: "9876543211",
				Age: 38, Gender: directory.GenderFemale, Address: "Mumbai",
			},
			Specialization:    directory.Dermatologist,
			ConsultationFee:   400,
			YearsOfExperience: 10,
			LicenseNumber:     "LIC002",
			Rating:            4.4,
		},
		{
			Person: directory.Person{
				Name: "Dr. Anita Desai", Email: "anita@meditrack.com", Phone: "9876543212",
				Age: 52, Gender: directory.GenderFemale, Address: "Pune",
			},
			Specialization:    directory.GeneralPractitioner,
			YearsOfExperience: 22,
			LicenseNumber:     "LIC003",
			Rating:            4.2,
		},
	}
}

func demoPatients() []*directory.Patient {
	return []*directory.Patient{
		{Person: directory.Person{
			Name: "Amit Singh", Email: "amit@email.com", Phone: "9123456789",
			Age: 35, Gender: directory.GenderMale, Address: "Delhi",
		}},
		{Person: directory.Person{
			Name: "Neha Patel", Email: "neha@email.com", Phone: "9123456790",
			Age: 28, Gender: directory.GenderFemale, Address: "Bangalore",
		}},
	}
}

// Seed loads a small demo directory. It does nothing when the directory
// already has entries and returns how many records were added.
func (c *Clinic) Seed(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Doctors.Count(ctx) > 0 || c.Patients.Count(ctx) > 0 {
		c.logger.Info().Msg("directory not empty, skipping demo data")
		return 0, nil
	}

	n := 0
	for _, d := range demoDoctors() {
		if err := d.Validate(); err != nil {
			return n, fmt.Errorf("demo doctor %s: %w", d.Name, err)
		}
		if _, err := c.Doctors.Add(ctx, d); err != nil {
			return n, fmt.Errorf("add demo doctor %s: %w", d.Name, err)
		}
		n++
	}
	for _, p := range demoPatients() {
		if err := p.Validate(); err != nil {
			return n, fmt.Errorf("demo patient %s: %w", p.Name, err)
		}
		if _, err := c.Patients.Add(ctx, p); err != nil {
			return n, fmt.Errorf("add demo patient %s: %w", p.Name, err)
		}
		n++
	}

	c.logger.Info().Int("records", n).Msg("demo data loaded")
	return n, nil
}
