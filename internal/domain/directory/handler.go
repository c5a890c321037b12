package directory

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/meditrack/clinic/internal/platform/apperr"
	"github.com/meditrack/clinic/pkg/pagination"
)

const defaultRecommendations = 5

type Handler struct {
	doctors  *DoctorService
	patients *PatientService
}

func NewHandler(doctors *DoctorService, patients *PatientService) *Handler {
	return &Handler{doctors: doctors, patients: patients}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/doctors", h.CreateDoctor)
	api.GET("/doctors", h.ListDoctors)
	api.GET("/doctors/count", h.CountDoctors)
	api.GET("/doctors/average-fee", h.AverageFee)
	api.GET("/doctors/search", h.SearchDoctor)
	api.POST("/doctors/recommend", h.Recommend)
	api.GET("/doctors/:id", h.GetDoctor)
	api.PUT("/doctors/:id", h.UpdateDoctor)
	api.DELETE("/doctors/:id", h.DeleteDoctor)

	api.POST("/patients", h.CreatePatient)
	api.GET("/patients", h.ListPatients)
	api.GET("/patients/count", h.CountPatients)
	api.GET("/patients/search", h.SearchPatient)
	api.GET("/patients/:id", h.GetPatient)
	api.PUT("/patients/:id", h.UpdatePatient)
	api.DELETE("/patients/:id", h.DeletePatient)
	api.POST("/patients/:id/allergies", h.AddAllergy)
	api.GET("/patients/:id/history", h.GetHistory)
	api.PUT("/patients/:id/history", h.UpdateHistory)
	api.POST("/patients/:id/clone", h.ClonePatient)
}

// -- Doctor Handlers --

func (h *Handler) bindDoctor(c echo.Context) (*Doctor, error) {
	var d Doctor
	if err := c.Bind(&d); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	spec, err := ParseSpecialization(string(d.Specialization))
	if err != nil {
		return nil, apperr.ToHTTP(apperr.InvalidInput("specialization", string(d.Specialization)))
	}
	d.Specialization = spec
	if err := d.Validate(); err != nil {
		return nil, apperr.ToHTTP(err)
	}
	return &d, nil
}

func (h *Handler) CreateDoctor(c echo.Context) error {
	d, err := h.bindDoctor(c)
	if err != nil {
		return err
	}
	created, err := h.doctors.Add(c.Request().Context(), d)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) GetDoctor(c echo.Context) error {
	d, err := h.doctors.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) ListDoctors(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)

	var items []*Doctor
	switch c.QueryParam("sort") {
	case "rating":
		items = h.doctors.RankByRating(ctx)
	case "experience":
		items = h.doctors.RankByExperience(ctx)
	case "":
		items = h.doctors.List(ctx)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "sort must be rating or experience")
	}

	if v := c.QueryParam("specialization"); v != "" {
		spec, err := ParseSpecialization(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		items = intersect(items, h.doctors.SearchBySpecialization(ctx, spec))
	}
	if v := c.QueryParam("min_rating"); v != "" {
		minRating, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid min_rating")
		}
		items = intersect(items, h.doctors.SearchByMinRating(ctx, minRating))
	}
	return c.JSON(http.StatusOK, pagination.Page(items, pg))
}

func (h *Handler) CountDoctors(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]int{"count": h.doctors.Count(c.Request().Context())})
}

func (h *Handler) AverageFee(c echo.Context) error {
	spec, err := ParseSpecialization(c.QueryParam("specialization"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	avg := h.doctors.AverageFee(c.Request().Context(), spec)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"specialization": spec,
		"label":          spec.Label(),
		"average_fee":    avg,
	})
}

func (h *Handler) SearchDoctor(c echo.Context) error {
	name := strings.TrimSpace(c.QueryParam("name"))
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	d, err := h.doctors.SearchByName(c.Request().Context(), name)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, d)
}

type recommendRequest struct {
	Symptoms   []string `json:"symptoms"`
	MaxResults int      `json:"max_results"`
}

func (h *Handler) Recommend(c echo.Context) error {
	var req recommendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.MaxResults <= 0 {
		req.MaxResults = defaultRecommendations
	}
	ctx := c.Request().Context()
	var inferred []Specialization
	if len(req.Symptoms) > 0 {
		inferred = InferSpecializations(req.Symptoms)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"specializations": inferred,
		"doctors":         h.doctors.RecommendBySymptoms(ctx, req.Symptoms, req.MaxResults),
	})
}

func (h *Handler) UpdateDoctor(c echo.Context) error {
	d, err := h.bindDoctor(c)
	if err != nil {
		return err
	}
	d.ID = c.Param("id")
	if err := h.doctors.Update(c.Request().Context(), d); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) DeleteDoctor(c echo.Context) error {
	id := c.Param("id")
	if !h.doctors.Remove(c.Request().Context(), id) {
		return apperr.ToHTTP(apperr.NotFound(id, "Doctor not found"))
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Patient Handlers --

func (h *Handler) bindPatient(c echo.Context) (*Patient, error) {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.BloodType = BloodType(strings.ToUpper(strings.TrimSpace(string(p.BloodType))))
	if err := p.Validate(); err != nil {
		return nil, apperr.ToHTTP(err)
	}
	return &p, nil
}

func (h *Handler) CreatePatient(c echo.Context) error {
	p, err := h.bindPatient(c)
	if err != nil {
		return err
	}
	created, err := h.patients.Add(c.Request().Context(), p)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) GetPatient(c echo.Context) error {
	p, err := h.patients.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, patientView(p))
}

func (h *Handler) ListPatients(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)
	items := h.patients.List(ctx)

	if v := c.QueryParam("blood_type"); v != "" {
		// A literal "+" in a query string decodes to a space.
		bt := BloodType(strings.ToUpper(strings.ReplaceAll(v, " ", "+")))
		if !bt.Valid() {
			return apperr.ToHTTP(apperr.InvalidInput("blood_type", v))
		}
		items = intersect(items, h.patients.SearchByBloodType(ctx, bt))
	}
	if v := c.QueryParam("age"); v != "" {
		age, err := strconv.Atoi(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid age")
		}
		items = intersect(items, h.patients.SearchByAge(ctx, age))
	}
	if v := c.QueryParam("min_bmi"); v != "" {
		threshold, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid min_bmi")
		}
		items = intersect(items, h.patients.WithBMIAbove(ctx, threshold))
	}

	views := make([]patientResponse, len(items))
	for i, p := range items {
		views[i] = patientView(p)
	}
	return c.JSON(http.StatusOK, pagination.Page(views, pg))
}

func (h *Handler) CountPatients(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]int{"count": h.patients.Count(c.Request().Context())})
}

func (h *Handler) SearchPatient(c echo.Context) error {
	name := strings.TrimSpace(c.QueryParam("name"))
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	p, err := h.patients.SearchByName(c.Request().Context(), name)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, patientView(p))
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	p, err := h.bindPatient(c)
	if err != nil {
		return err
	}
	p.ID = c.Param("id")
	if err := h.patients.Update(c.Request().Context(), p); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, patientView(p))
}

func (h *Handler) DeletePatient(c echo.Context) error {
	id := c.Param("id")
	if !h.patients.Remove(c.Request().Context(), id) {
		return apperr.ToHTTP(apperr.NotFound(id, "Patient not found"))
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) AddAllergy(c echo.Context) error {
	var req struct {
		Allergy string `json:"allergy"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Allergy) == "" {
		return apperr.ToHTTP(apperr.InvalidInput("allergy", "null or empty"))
	}
	p, err := h.patients.AddAllergy(c.Request().Context(), c.Param("id"), req.Allergy)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, patientView(p))
}

func (h *Handler) GetHistory(c echo.Context) error {
	history, err := h.patients.MedicalHistory(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"medical_history": history})
}

func (h *Handler) UpdateHistory(c echo.Context) error {
	var req struct {
		MedicalHistory string `json:"medical_history"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.patients.UpdateMedicalHistory(c.Request().Context(), c.Param("id"), req.MedicalHistory); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"medical_history": req.MedicalHistory})
}

func (h *Handler) ClonePatient(c echo.Context) error {
	p, err := h.patients.Clone(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, patientView(p))
}

// patientResponse adds the derived BMI to the stored record.
type patientResponse struct {
	*Patient
	BMI float64 `json:"bmi"`
}

func patientView(p *Patient) patientResponse {
	return patientResponse{Patient: p, BMI: p.BMI()}
}

// intersect keeps the elements of items that also appear in subset,
// preserving the order of items.
func intersect[T comparable](items, subset []T) []T {
	keep := make(map[T]bool, len(subset))
	for _, it := range subset {
		keep[it] = true
	}
	out := make([]T, 0, len(subset))
	for _, it := range items {
		if keep[it] {
			out = append(out, it)
		}
	}
	return out
}
