package billing

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/meditrack/clinic/internal/platform/apperr"
)

// DefaultTaxRate is the flat rate applied to every bill unless configured
// otherwise.
const DefaultTaxRate = 0.18

// TaxFunc computes the tax owed on a subtotal.
type TaxFunc func(subtotal float64) float64

// FlatTax charges rate on the whole subtotal.
func FlatTax(rate float64) TaxFunc {
	return func(subtotal float64) float64 { return subtotal * rate }
}

// Bill is the invoice raised for an appointment. Charges are changed only
// through the setters, each of which recomputes tax and total.
type Bill struct {
	ID            string
	AppointmentID string
	PatientID     string
	DoctorID      string
	CreatedAt     time.Time
	Paid          bool

	consultationFee float64
	medicines       float64
	tests           float64
	other           float64
	tax             float64
	total           float64
	taxFn           TaxFunc
}

func newBill(id, appointmentID, patientID, doctorID string, fee float64, taxFn TaxFunc, createdAt time.Time) *Bill {
	b := &Bill{
		ID:              id,
		AppointmentID:   appointmentID,
		PatientID:       patientID,
		DoctorID:        doctorID,
		CreatedAt:       createdAt,
		consultationFee: fee,
		taxFn:           taxFn,
	}
	b.recalculate()
	return b
}

func (b *Bill) ConsultationFee() float64 { return b.consultationFee }
func (b *Bill) Medicines() float64       { return b.medicines }
func (b *Bill) Tests() float64           { return b.tests }
func (b *Bill) Other() float64           { return b.other }
func (b *Bill) Tax() float64             { return b.tax }
func (b *Bill) Total() float64           { return b.total }

func (b *Bill) Subtotal() float64 {
	return b.consultationFee + b.medicines + b.tests + b.other
}

func (b *Bill) SetConsultationFee(v float64) error {
	return b.setCharge(&b.consultationFee, "consultation_fee", v)
}

func (b *Bill) SetMedicines(v float64) error {
	return b.setCharge(&b.medicines, "medicines", v)
}

func (b *Bill) SetTests(v float64) error {
	return b.setCharge(&b.tests, "tests", v)
}

func (b *Bill) SetOther(v float64) error {
	return b.setCharge(&b.other, "other", v)
}

func (b *Bill) setCharge(dst *float64, field string, v float64) error {
	if v < 0 {
		return apperr.InvalidInput(field, strconv.FormatFloat(v, 'f', -1, 64))
	}
	*dst = v
	b.recalculate()
	return nil
}

func (b *Bill) recalculate() {
	subtotal := b.Subtotal()
	b.tax = 0
	if b.taxFn != nil {
		b.tax = b.taxFn(subtotal)
	}
	b.total = subtotal + b.tax
}

type billJSON struct {
	ID              string    `json:"id"`
	AppointmentID   string    `json:"appointment_id"`
	PatientID       string    `json:"patient_id"`
	DoctorID        string    `json:"doctor_id"`
	ConsultationFee float64   `json:"consultation_fee"`
	Medicines       float64   `json:"medicines"`
	Tests           float64   `json:"tests"`
	Other           float64   `json:"other"`
	Subtotal        float64   `json:"subtotal"`
	Tax             float64   `json:"tax"`
	Total           float64   `json:"total"`
	CreatedAt       time.Time `json:"created_at"`
	Paid            bool      `json:"paid"`
}

func (b *Bill) MarshalJSON() ([]byte, error) {
	return json.Marshal(billJSON{
		ID:              b.ID,
		AppointmentID:   b.AppointmentID,
		PatientID:       b.PatientID,
		DoctorID:        b.DoctorID,
		ConsultationFee: b.consultationFee,
		Medicines:       b.medicines,
		Tests:           b.tests,
		Other:           b.other,
		Subtotal:        b.Subtotal(),
		Tax:             b.tax,
		Total:           b.total,
		CreatedAt:       b.CreatedAt,
		Paid:            b.Paid,
	})
}

// Summary is a read-only snapshot of a bill with display names resolved.
type Summary struct {
	BillID      string    `json:"bill_id"`
	PatientName string    `json:"patient_name"`
	DoctorName  string    `json:"doctor_name"`
	Total       float64   `json:"total"`
	Tax         float64   `json:"tax"`
	BilledAt    time.Time `json:"billed_at"`
	Paid        bool      `json:"paid"`
}

func NewSummary(b *Bill, patientName, doctorName string) Summary {
	return Summary{
		BillID:      b.ID,
		PatientName: patientName,
		DoctorName:  doctorName,
		Total:       b.total,
		Tax:         b.tax,
		BilledAt:    b.CreatedAt,
		Paid:        b.Paid,
	}
}
