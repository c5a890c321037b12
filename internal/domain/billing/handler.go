package billing

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/meditrack/clinic/internal/platform/apperr"
	"github.com/meditrack/clinic/pkg/pagination"
)

// NameResolver maps a person id to a display name.
type NameResolver interface {
	NameOf(ctx context.Context, id string) string
}

type Handler struct {
	svc      *Service
	patients NameResolver
	doctors  NameResolver
}

func NewHandler(svc *Service, patients, doctors NameResolver) *Handler {
	return &Handler{svc: svc, patients: patients, doctors: doctors}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/bills", h.GenerateBill)
	api.GET("/bills", h.ListBills)
	api.GET("/bills/stats", h.Stats)
	api.GET("/bills/:id", h.GetBill)
	api.PUT("/bills/:id/charges", h.UpdateCharges)
	api.POST("/bills/:id/pay", h.PayBill)
	api.GET("/bills/:id/summary", h.Summary)
}

type generateRequest struct {
	AppointmentID string `json:"appointment_id"`
	Charges
}

func (h *Handler) GenerateBill(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.AppointmentID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "appointment_id is required")
	}
	if err := req.Charges.Validate(); err != nil {
		return apperr.ToHTTP(err)
	}
	ctx := c.Request().Context()
	b, err := h.svc.Generate(ctx, req.AppointmentID)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	if !req.Charges.empty() {
		if b, err = h.svc.UpdateCharges(ctx, b.ID, req.Charges); err != nil {
			return apperr.ToHTTP(err)
		}
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) GetBill(c echo.Context) error {
	b, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) ListBills(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)

	var items []*Bill
	switch v := c.QueryParam("paid"); v {
	case "":
		items = h.svc.List(ctx)
	default:
		paid, err := strconv.ParseBool(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid paid")
		}
		if paid {
			items = h.svc.ListPaid(ctx)
		} else {
			items = h.svc.ListPending(ctx)
		}
	}
	if patientID := c.QueryParam("patient_id"); patientID != "" {
		mine := make(map[*Bill]bool)
		for _, b := range h.svc.ListByPatient(ctx, patientID) {
			mine[b] = true
		}
		filtered := make([]*Bill, 0, len(mine))
		for _, b := range items {
			if mine[b] {
				filtered = append(filtered, b)
			}
		}
		items = filtered
	}
	return c.JSON(http.StatusOK, pagination.Page(items, pg))
}

func (h *Handler) UpdateCharges(c echo.Context) error {
	var req Charges
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	b, err := h.svc.UpdateCharges(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) PayBill(c echo.Context) error {
	b, err := h.svc.MarkPaid(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) Summary(c echo.Context) error {
	ctx := c.Request().Context()
	b, err := h.svc.Get(ctx, c.Param("id"))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, NewSummary(b, h.patients.NameOf(ctx, b.PatientID), h.doctors.NameOf(ctx, b.DoctorID)))
}

// Stats reports the revenue aggregates.
type Stats struct {
	Bills       int     `json:"bills"`
	Paid        int     `json:"paid"`
	Pending     int     `json:"pending"`
	Revenue     float64 `json:"total_revenue"`
	Outstanding float64 `json:"outstanding_amount"`
	Average     float64 `json:"average_bill"`
}

func (h *Handler) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	return c.JSON(http.StatusOK, Stats{
		Bills:       len(h.svc.List(ctx)),
		Paid:        len(h.svc.ListPaid(ctx)),
		Pending:     len(h.svc.ListPending(ctx)),
		Revenue:     h.svc.TotalRevenue(ctx),
		Outstanding: h.svc.OutstandingAmount(ctx),
		Average:     h.svc.AverageBill(ctx),
	})
}
