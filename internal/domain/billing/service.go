package billing

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/meditrack/clinic/internal/domain/scheduling"
	"github.com/meditrack/clinic/internal/platform/apperr"
	"github.com/meditrack/clinic/internal/platform/idgen"
	"github.com/meditrack/clinic/internal/platform/middleware"
	"github.com/meditrack/clinic/internal/platform/telemetry"
	"github.com/meditrack/clinic/pkg/store"
)

// AppointmentLookup resolves the appointment a bill is raised for.
type AppointmentLookup interface {
	Get(ctx context.Context, id string) (*scheduling.Appointment, error)
}

type Option func(*Service)

// WithTax replaces the flat default tax.
func WithTax(fn TaxFunc) Option {
	return func(s *Service) { s.tax = fn }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service raises and tracks bills. It is not safe for concurrent use.
type Service struct {
	bills        *store.Store[*Bill]
	appointments AppointmentLookup
	ids          *idgen.Issuer
	logger       zerolog.Logger
	metrics      *telemetry.Metrics
	tax          TaxFunc
	now          func() time.Time
}

func NewService(appointments AppointmentLookup, ids *idgen.Issuer, logger zerolog.Logger, metrics *telemetry.Metrics, opts ...Option) *Service {
	s := &Service{
		bills:        store.New[*Bill](),
		appointments: appointments,
		ids:          ids,
		logger:       logger.With().Str("component", "billing").Logger(),
		metrics:      metrics,
		tax:          FlatTax(DefaultTaxRate),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate raises a bill for the appointment, copying its parties and fee.
// Medicine, test and other charges start at zero.
func (s *Service) Generate(ctx context.Context, appointmentID string) (*Bill, error) {
	a, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	b := newBill(s.ids.BillID(), a.ID, a.PatientID, a.DoctorID, a.ConsultationFee, s.tax, s.now())
	if err := s.bills.Add(b.ID, b); err != nil {
		return nil, apperr.Duplicate(b.ID)
	}
	s.metrics.BillGenerated()
	middleware.LoggerFrom(ctx, s.logger).Info().
		Str("bill_id", b.ID).
		Str("appointment_id", a.ID).
		Float64("total", b.Total()).
		Msg("bill generated")
	return b, nil
}

func (s *Service) Get(_ context.Context, id string) (*Bill, error) {
	b, ok := s.bills.Get(id)
	if !ok {
		return nil, apperr.NotFound(id, "Bill not found")
	}
	return b, nil
}

func (s *Service) List(_ context.Context) []*Bill {
	return s.bills.All()
}

func (s *Service) ListByPatient(_ context.Context, patientID string) []*Bill {
	return s.bills.Search(func(b *Bill) bool { return b.PatientID == patientID })
}

func (s *Service) ListPending(_ context.Context) []*Bill {
	return s.bills.Search(func(b *Bill) bool { return !b.Paid })
}

func (s *Service) ListPaid(_ context.Context) []*Bill {
	return s.bills.Search(func(b *Bill) bool { return b.Paid })
}

// MarkPaid settles the bill. There is no way back to unpaid; paying twice
// is a no-op.
func (s *Service) MarkPaid(ctx context.Context, id string) (*Bill, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Paid {
		return b, nil
	}
	b.Paid = true
	s.metrics.BillPaid(b.Total())
	middleware.LoggerFrom(ctx, s.logger).Info().
		Str("bill_id", id).
		Float64("total", b.Total()).
		Msg("bill marked paid")
	return b, nil
}

// Charges carries a partial update; nil fields are left unchanged.
type Charges struct {
	ConsultationFee *float64 `json:"consultation_fee,omitempty"`
	Medicines       *float64 `json:"medicines,omitempty"`
	Tests           *float64 `json:"tests,omitempty"`
	Other           *float64 `json:"other,omitempty"`
}

// Validate rejects negative charges.
func (c Charges) Validate() error {
	for _, f := range []struct {
		name string
		v    *float64
	}{
		{"consultation_fee", c.ConsultationFee},
		{"medicines", c.Medicines},
		{"tests", c.Tests},
		{"other", c.Other},
	} {
		if f.v != nil && *f.v < 0 {
			return apperr.InvalidInput(f.name, strconv.FormatFloat(*f.v, 'f', -1, 64))
		}
	}
	return nil
}

func (c Charges) empty() bool {
	return c.ConsultationFee == nil && c.Medicines == nil && c.Tests == nil && c.Other == nil
}

// UpdateCharges applies c to the bill. Every value is checked before any is
// applied, so a rejected update leaves the bill unchanged.
func (s *Service) UpdateCharges(ctx context.Context, id string, c Charges) (*Bill, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	for _, st := range []struct {
		v   *float64
		set func(float64) error
	}{
		{c.ConsultationFee, b.SetConsultationFee},
		{c.Medicines, b.SetMedicines},
		{c.Tests, b.SetTests},
		{c.Other, b.SetOther},
	} {
		if st.v == nil {
			continue
		}
		if err := st.set(*st.v); err != nil {
			return nil, err
		}
	}

	middleware.LoggerFrom(ctx, s.logger).Info().
		Str("bill_id", id).
		Float64("total", b.Total()).
		Msg("bill charges updated")
	return b, nil
}

// TotalRevenue sums the totals of paid bills.
func (s *Service) TotalRevenue(ctx context.Context) float64 {
	return sumTotals(s.ListPaid(ctx))
}

// OutstandingAmount sums the totals of unpaid bills.
func (s *Service) OutstandingAmount(ctx context.Context) float64 {
	return sumTotals(s.ListPending(ctx))
}

// AverageBill is the mean total across all bills, 0 when there are none.
func (s *Service) AverageBill(ctx context.Context) float64 {
	all := s.List(ctx)
	if len(all) == 0 {
		return 0
	}
	return sumTotals(all) / float64(len(all))
}

func sumTotals(bills []*Bill) float64 {
	var sum float64
	for _, b := range bills {
		sum += b.Total()
	}
	return sum
}
