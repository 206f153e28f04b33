package vitals

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hivcare/emr/internal/platform/auth"
	"github.com/hivcare/emr/internal/platform/validation"
	"github.com/hivcare/emr/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	clinical := auth.RequireRole(auth.RoleClinician, auth.RoleNurse, auth.RoleCounselor)

	api.POST("/vitals/classify", h.Classify, clinical)

	read := api.Group("", auth.RequireRole(auth.RoleClinician, auth.RoleNurse, auth.RoleCounselor, auth.RoleDataClerk))
	read.GET("/vital-signs", h.ListVitalSigns)
	read.GET("/vital-signs/:id", h.GetVitalSigns)
	read.GET("/patients/:patient_id/vital-signs/latest", h.LatestVitalSigns)

	write := api.Group("", auth.RequireRole(auth.RoleClinician, auth.RoleNurse))
	write.POST("/vital-signs", h.CreateVitalSigns)
	write.DELETE("/vital-signs/:id", h.DeleteVitalSigns, auth.RequireRole(auth.RoleClinician))
}

type createVitalSignsRequest struct {
	PatientID   string     `json:"patient_id" validate:"required,uuid"`
	EncounterID string     `json:"encounter_id" validate:"omitempty,uuid"`
	RecordedAt  *time.Time `json:"recorded_at" validate:"omitempty,not_future"`
	Reading
	Note *string `json:"note" validate:"omitempty,max=2000"`
}

type vitalSignsResponse struct {
	*VitalSigns
	Classifications []Classification `json:"classifications"`
	Worst           *Status          `json:"worst,omitempty"`
}

func newVitalSignsResponse(v *VitalSigns) vitalSignsResponse {
	res := ClassifyPanel(v.Reading)
	return vitalSignsResponse{VitalSigns: v, Classifications: res.Classifications, Worst: res.Worst}
}

func bindValid(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validation.Message(err))
	}
	return nil
}

func httpError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "vital signs not found")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func (h *Handler) Classify(c echo.Context) error {
	var r Reading
	if err := bindValid(c, &r); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.svc.Classify(r))
}

func (h *Handler) CreateVitalSigns(c echo.Context) error {
	var req createVitalSignsRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	v := &VitalSigns{
		PatientID:  uuid.MustParse(req.PatientID),
		RecordedBy: auth.UserIDFromContext(c.Request().Context()),
		Reading:    req.Reading,
		Note:       req.Note,
	}
	if req.EncounterID != "" {
		eid := uuid.MustParse(req.EncounterID)
		v.EncounterID = &eid
	}
	if req.RecordedAt != nil {
		v.RecordedAt = *req.RecordedAt
	}
	if err := h.svc.CreateVitalSigns(c.Request().Context(), v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, newVitalSignsResponse(v))
}

func (h *Handler) GetVitalSigns(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	v, err := h.svc.GetVitalSigns(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, newVitalSignsResponse(v))
}

func (h *Handler) LatestVitalSigns(c echo.Context) error {
	pid, err := uuid.Parse(c.Param("patient_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
	}
	v, err := h.svc.LatestForPatient(c.Request().Context(), pid)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, newVitalSignsResponse(v))
}

func (h *Handler) ListVitalSigns(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := map[string]string{}
	for k, v := range c.QueryParams() {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	items, total, err := h.svc.SearchVitalSigns(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	out := make([]vitalSignsResponse, len(items))
	for i, v := range items {
		out[i] = newVitalSignsResponse(v)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(out, total, pg.Limit, pg.Offset))
}

func (h *Handler) DeleteVitalSigns(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteVitalSigns(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
