// Package clinic wires the directory, scheduling and billing services into
// one engine and exposes it over HTTP.
package clinic

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/meditrack/clinic/internal/domain/billing"
	"github.com/meditrack/clinic/internal/domain/directory"
	"github.com/meditrack/clinic/internal/domain/scheduling"
	"github.com/meditrack/clinic/internal/platform/db"
	"github.com/meditrack/clinic/internal/platform/idgen"
	"github.com/meditrack/clinic/internal/platform/middleware"
	"github.com/meditrack/clinic/internal/platform/reporting"
	"github.com/meditrack/clinic/internal/platform/telemetry"
)

type Options struct {
	TaxRate float64
	Slots   scheduling.SlotDefaults
	// Clock overrides time.Now for scheduling and billing.
	Clock func() time.Time
}

// Clinic owns every service. The services are not safe for concurrent use;
// HTTP access goes through a single engine lock.
type Clinic struct {
	IDs          *idgen.Issuer
	Doctors      *directory.DoctorService
	Patients     *directory.PatientService
	Appointments *scheduling.Service
	Billing      *billing.Service

	logger zerolog.Logger
	slots  scheduling.SlotDefaults
	mu     sync.Mutex
}

func New(logger zerolog.Logger, metrics *telemetry.Metrics, opts Options) *Clinic {
	ids := idgen.New()
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	c := &Clinic{
		IDs:    ids,
		logger: logger,
		slots:  opts.Slots,
	}
	c.Doctors = directory.NewDoctorService(ids, logger, metrics)
	c.Patients = directory.NewPatientService(ids, logger)
	c.Appointments = scheduling.NewService(c.Doctors, c.Patients, ids, logger, metrics,
		scheduling.WithClock(clock))
	c.Billing = billing.NewService(c.Appointments, ids, logger, metrics,
		billing.WithClock(clock),
		billing.WithTax(billing.FlatTax(opts.TaxRate)))
	return c
}

// RegisterRoutes mounts the engine under api. Engine routes run one at a
// time; the snapshot route takes the same lock itself.
func (c *Clinic) RegisterRoutes(api *echo.Group, snapshots *db.SnapshotWriter) {
	engine := api.Group("", middleware.Serialize(&c.mu))

	directory.NewHandler(c.Doctors, c.Patients).RegisterRoutes(engine)
	scheduling.NewHandler(c.Appointments, c.slots).RegisterRoutes(engine)
	billing.NewHandler(c.Billing, c.Patients, c.Doctors).RegisterRoutes(engine)
	reporting.NewHandler(c.Reports()...).RegisterRoutes(engine)

	if snapshots != nil {
		api.POST("/admin/snapshot", c.snapshotHandler(snapshots))
	}
}

// Snapshot persists every entity through w while holding the engine lock.
func (c *Clinic) Snapshot(ctx context.Context, w *db.SnapshotWriter) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return w.Write(ctx, c.records(ctx))
}

func (c *Clinic) snapshotHandler(w *db.SnapshotWriter) echo.HandlerFunc {
	return func(e echo.Context) error {
		n, err := c.Snapshot(e.Request().Context(), w)
		if err != nil {
			middleware.LoggerFrom(e.Request().Context(), c.logger).Error().Err(err).Msg("snapshot failed")
			return echo.NewHTTPError(http.StatusServiceUnavailable, "snapshot failed")
		}
		return e.JSON(http.StatusOK, map[string]int{"records": n})
	}
}

func (c *Clinic) records(ctx context.Context) []db.Record {
	var out []db.Record
	for _, d := range c.Doctors.List(ctx) {
		out = append(out, db.Record{Kind: "doctor", ID: d.ID, Payload: d})
	}
	for _, p := range c.Patients.List(ctx) {
		out = append(out, db.Record{Kind: "patient", ID: p.ID, Payload: p})
	}
	for _, a := range c.Appointments.List(ctx) {
		out = append(out, db.Record{Kind: "appointment", ID: a.ID, Payload: a})
	}
	for _, b := range c.Billing.List(ctx) {
		out = append(out, db.Record{Kind: "bill", ID: b.ID, Payload: b})
	}
	return out
}
