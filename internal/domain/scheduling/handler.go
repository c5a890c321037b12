package scheduling

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/meditrack/clinic/internal/platform/apperr"
	"github.com/meditrack/clinic/pkg/pagination"
)

// clinicDateTime is the day-first layout used by the front desk.
const clinicDateTime = "02-01-2006 15:04:05"

// SlotDefaults are applied when a request leaves the search window open.
type SlotDefaults struct {
	DaysAhead      int
	SlotsPerDoctor int
	MaxDoctors     int
}

// Upper bounds for a single availability search. Searches run under the
// engine lock, so request values above these are clamped.
const (
	maxSearchDays    = 60
	maxSearchSlots   = 100
	maxSearchDoctors = 20
)

type Handler struct {
	svc      *Service
	defaults SlotDefaults
}

func NewHandler(svc *Service, defaults SlotDefaults) *Handler {
	if defaults.DaysAhead <= 0 {
		defaults.DaysAhead = 7
	}
	if defaults.SlotsPerDoctor <= 0 {
		defaults.SlotsPerDoctor = 5
	}
	if defaults.MaxDoctors <= 0 {
		defaults.MaxDoctors = 3
	}
	return &Handler{svc: svc, defaults: defaults}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/appointments", h.CreateAppointment)
	api.GET("/appointments", h.ListAppointments)
	api.GET("/appointments/upcoming", h.ListUpcoming)
	api.GET("/appointments/count", h.CountAppointments)
	api.POST("/appointments/suggest", h.SuggestForSymptoms)
	api.GET("/appointments/:id", h.GetAppointment)
	api.POST("/appointments/:id/confirm", h.ConfirmAppointment)
	api.POST("/appointments/:id/cancel", h.CancelAppointment)
	api.POST("/appointments/:id/complete", h.CompleteAppointment)
	api.POST("/appointments/:id/reschedule", h.RescheduleAppointment)
	api.POST("/appointments/:id/clone", h.CloneAppointment)

	api.GET("/doctors/:id/slots", h.DoctorSlots)
}

// parseDateTime accepts RFC 3339 or the clinic's day-first layout, the
// latter read in the engine clock's location.
func (h *Handler) parseDateTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(clinicDateTime, v, h.svc.Now().Location())
	if err != nil {
		return time.Time{}, apperr.InvalidInput("date_time", v)
	}
	return t, nil
}

type createRequest struct {
	PatientID string `json:"patient_id"`
	DoctorID  string `json:"doctor_id"`
	DateTime  string `json:"date_time"`
	Reason    string `json:"reason"`
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.PatientID == "" || req.DoctorID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "patient_id and doctor_id are required")
	}
	at, err := h.parseDateTime(req.DateTime)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	a, err := h.svc.Create(c.Request().Context(), req.PatientID, req.DoctorID, at, req.Reason)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	a, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListAppointments(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)

	items := h.svc.List(ctx)
	if v := c.QueryParam("status"); v != "" {
		status, err := ParseStatus(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		items = intersect(items, h.svc.ListByStatus(ctx, status))
	}
	if v := c.QueryParam("patient_id"); v != "" {
		items = intersect(items, h.svc.ListByPatient(ctx, v))
	}
	if v := c.QueryParam("doctor_id"); v != "" {
		items = intersect(items, h.svc.ListByDoctor(ctx, v))
	}
	return c.JSON(http.StatusOK, pagination.Page(items, pg))
}

func (h *Handler) ListUpcoming(c echo.Context) error {
	pg := pagination.FromContext(c)
	return c.JSON(http.StatusOK, pagination.Page(h.svc.ListUpcoming(c.Request().Context()), pg))
}

func (h *Handler) CountAppointments(c echo.Context) error {
	ctx := c.Request().Context()
	if doctorID := c.QueryParam("doctor_id"); doctorID != "" {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"doctor_id": doctorID,
			"count":     h.svc.CountForDoctor(ctx, doctorID),
		})
	}
	return c.JSON(http.StatusOK, map[string]int{"count": h.svc.Count(ctx)})
}

func (h *Handler) ConfirmAppointment(c echo.Context) error {
	a, err := h.svc.Confirm(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) CancelAppointment(c echo.Context) error {
	a, err := h.svc.Cancel(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) CompleteAppointment(c echo.Context) error {
	var req struct {
		Notes string `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.Complete(c.Request().Context(), c.Param("id"), req.Notes)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) RescheduleAppointment(c echo.Context) error {
	var req struct {
		DateTime string `json:"date_time"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	at, err := h.parseDateTime(req.DateTime)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	a, err := h.svc.Reschedule(c.Request().Context(), c.Param("id"), at)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) CloneAppointment(c echo.Context) error {
	a, err := h.svc.Clone(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) DoctorSlots(c echo.Context) error {
	ctx := c.Request().Context()
	doc, err := h.svc.doctors.Get(ctx, c.Param("id"))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	days, err := intParam(c, "days", h.defaults.DaysAhead)
	if err != nil {
		return err
	}
	maxSlots, err := intParam(c, "max", h.defaults.SlotsPerDoctor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, DoctorAvailability{
		Doctor: doc,
		Slots:  h.svc.SuggestAvailableSlots(ctx, doc.ID, min(days, maxSearchDays), min(maxSlots, maxSearchSlots)),
	})
}

type suggestRequest struct {
	Symptoms       []string `json:"symptoms"`
	MaxDoctors     int      `json:"max_doctors"`
	DaysAhead      int      `json:"days_ahead"`
	SlotsPerDoctor int      `json:"slots_per_doctor"`
}

func (h *Handler) SuggestForSymptoms(c echo.Context) error {
	var req suggestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.MaxDoctors <= 0 {
		req.MaxDoctors = h.defaults.MaxDoctors
	}
	if req.DaysAhead <= 0 {
		req.DaysAhead = h.defaults.DaysAhead
	}
	if req.SlotsPerDoctor <= 0 {
		req.SlotsPerDoctor = h.defaults.SlotsPerDoctor
	}
	out := h.svc.SuggestSlotsForSymptoms(c.Request().Context(), req.Symptoms,
		min(req.MaxDoctors, maxSearchDoctors),
		min(req.DaysAhead, maxSearchDays),
		min(req.SlotsPerDoctor, maxSearchSlots))
	return c.JSON(http.StatusOK, out)
}

func intParam(c echo.Context, name string, def int) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return n, nil
}

func intersect(items, subset []*Appointment) []*Appointment {
	keep := make(map[*Appointment]bool, len(subset))
	for _, a := range subset {
		keep[a] = true
	}
	out := make([]*Appointment, 0, len(subset))
	for _, a := range items {
		if keep[a] {
			out = append(out, a)
		}
	}
	return out
}
