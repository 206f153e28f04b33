package hts

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
	read := api.Group("/hts", auth.RequireRole(auth.RoleCounselor, auth.RoleClinician, auth.RoleNurse, auth.RoleDataClerk))
	read.GET("/indicators", h.ListIndicators)
	read.GET("/pre-tests", h.ListPreTests)
	read.GET("/pre-tests/:id", h.GetPreTest)

	write := api.Group("/hts", auth.RequireRole(auth.RoleCounselor, auth.RoleClinician, auth.RoleNurse))
	write.POST("/risk-score", h.ScoreRisk)
	write.POST("/pre-tests", h.CreatePreTest)
	write.PUT("/pre-tests/:id", h.UpdatePreTest)
	write.DELETE("/pre-tests/:id", h.DeletePreTest, auth.RequireRole(auth.RoleClinician))
}

type riskScoreRequest struct {
	Answers map[string]bool `json:"answers" validate:"required"`
}

type riskScoreResponse struct {
	RiskScoreResult
	IgnoredIndicators []string `json:"ignored_indicators,omitempty"`
}

type indicatorGroup struct {
	Group      Group               `json:"group"`
	MaxScore   int                 `json:"max_score"`
	Indicators []WeightedIndicator `json:"indicators"`
}

type createPreTestRequest struct {
	PatientID   string          `json:"patient_id" validate:"required,uuid"`
	CounselorID string          `json:"counselor_id" validate:"max=128"`
	ClientCode  *string         `json:"client_code" validate:"omitempty,max=64"`
	TestSetting string          `json:"test_setting" validate:"omitempty,oneof=facility community pmtct index"`
	SessionDate *time.Time      `json:"session_date" validate:"omitempty,not_future"`
	Answers     map[string]bool `json:"answers" validate:"required"`
	Note        *string         `json:"note" validate:"omitempty,max=2000"`
}

type updatePreTestRequest struct {
	CounselorID string          `json:"counselor_id" validate:"max=128"`
	ClientCode  *string         `json:"client_code" validate:"omitempty,max=64"`
	TestSetting string          `json:"test_setting" validate:"omitempty,oneof=facility community pmtct index"`
	SessionDate *time.Time      `json:"session_date" validate:"omitempty,not_future"`
	Answers     map[string]bool `json:"answers"`
	Note        *string         `json:"note" validate:"omitempty,max=2000"`
}

// preTestResponse adds the display-only derived fields that are not stored.
type preTestResponse struct {
	*PreTest
	STISeverity string   `json:"sti_severity"`
	Advisories  []string `json:"advisories"`
}

func newPreTestResponse(p *PreTest) preTestResponse {
	r := p.Result()
	return preTestResponse{PreTest: p, STISeverity: r.STISeverity, Advisories: r.Advisories}
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

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func httpError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "pre-test not found")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func (h *Handler) ScoreRisk(c echo.Context) error {
	var req riskScoreRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	result, ignored := h.svc.Assess(c.Request().Context(), req.Answers)
	return c.JSON(http.StatusOK, riskScoreResponse{RiskScoreResult: result, IgnoredIndicators: ignored})
}

func (h *Handler) ListIndicators(c echo.Context) error {
	out := make([]indicatorGroup, 0, len(Groups))
	table := WeightTable()
	for _, g := range Groups {
		ig := indicatorGroup{Group: g, MaxScore: MaxScore(g)}
		for _, w := range table {
			if w.Group == g {
				ig.Indicators = append(ig.Indicators, w)
			}
		}
		out = append(out, ig)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) CreatePreTest(c echo.Context) error {
	var req createPreTestRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	p := &PreTest{
		PatientID:   uuid.MustParse(req.PatientID),
		CounselorID: req.CounselorID,
		ClientCode:  req.ClientCode,
		TestSetting: req.TestSetting,
		Answers:     req.Answers,
		Note:        req.Note,
	}
	if p.CounselorID == "" {
		p.CounselorID = auth.UserIDFromContext(c.Request().Context())
	}
	if req.SessionDate != nil {
		p.SessionDate = *req.SessionDate
	}
	if err := h.svc.CreatePreTest(c.Request().Context(), p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, newPreTestResponse(p))
}

func (h *Handler) GetPreTest(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.GetPreTest(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, newPreTestResponse(p))
}

func (h *Handler) ListPreTests(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := map[string]string{}
	for k, v := range c.QueryParams() {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	items, total, err := h.svc.SearchPreTests(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	out := make([]preTestResponse, len(items))
	for i, p := range items {
		out[i] = newPreTestResponse(p)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(out, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdatePreTest(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req updatePreTestRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	p := &PreTest{
		ID:          id,
		CounselorID: req.CounselorID,
		ClientCode:  req.ClientCode,
		TestSetting: req.TestSetting,
		Answers:     req.Answers,
		Note:        req.Note,
	}
	if req.SessionDate != nil {
		p.SessionDate = *req.SessionDate
	}
	if err := h.svc.UpdatePreTest(c.Request().Context(), p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return httpError(err)
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, newPreTestResponse(p))
}

func (h *Handler) DeletePreTest(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeletePreTest(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
