package hts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hivcare/emr/internal/platform/validation"
)

func newTestHandler() (*Handler, *echo.Echo) {
	h := NewHandler(newTestService())
	e := echo.New()
	e.Validator = validation.New()
	return h, e
}

func jsonRequest(method, body string) *http.Request {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestHandler_ScoreRisk(t *testing.T) {
	h, e := newTestHandler()
	body := `{"answers":{"risk_unprotected_anal_sex":true,"sti_genital_ulcer":true,"made_up":true}}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, body), rec)

	if err := h.ScoreRisk(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp riskScoreResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.HIVRiskScore != 3 || resp.STIScreeningScore != 1 {
		t.Errorf("unexpected scores: %+v", resp.RiskScoreResult)
	}
	if len(resp.IgnoredIndicators) != 1 || resp.IgnoredIndicators[0] != "made_up" {
		t.Errorf("unexpected ignored: %v", resp.IgnoredIndicators)
	}
}

func TestHandler_ScoreRisk_MissingAnswers(t *testing.T) {
	h, e := newTestHandler()
	c := e.NewContext(jsonRequest(http.MethodPost, `{}`), httptest.NewRecorder())

	err := h.ScoreRisk(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
	if !strings.Contains(he.Message.(string), "answers is required") {
		t.Errorf("unexpected message: %v", he.Message)
	}
}

func TestHandler_ListIndicators(t *testing.T) {
	h, e := newTestHandler()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	if err := h.ListIndicators(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var groups []indicatorGroup
	if err := json.Unmarshal(rec.Body.Bytes(), &groups); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(groups) != 4 {
		t.Fatalf("expected 4 groups, got %d", len(groups))
	}
	if groups[0].Group != GroupHIVRisk || groups[0].MaxScore != 24 || len(groups[0].Indicators) != 13 {
		t.Errorf("unexpected first group: %+v", groups[0])
	}
}

func TestHandler_CreatePreTest(t *testing.T) {
	h, e := newTestHandler()
	body := `{"patient_id":"` + uuid.New().String() + `","counselor_id":"c-7","test_setting":"pmtct",
		"answers":{"partner_hiv_positive":true,"partner_injects_drugs":true,"partner_msm":true,"partner_sex_worker":true}}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, body), rec)

	if err := h.CreatePreTest(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var resp map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["partner_risk_severity"] != SeverityHigh {
		t.Errorf("expected High partner risk, got %v", resp["partner_risk_severity"])
	}
	if resp["prep_recommended"] != true {
		t.Errorf("expected prep_recommended, got %v", resp["prep_recommended"])
	}
	advisories, _ := resp["advisories"].([]interface{})
	if len(advisories) == 0 || advisories[0] != AdvisoryPrEP {
		t.Errorf("expected PrEP advisory first, got %v", resp["advisories"])
	}
}

func TestHandler_CreatePreTest_BadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad patient", `{"patient_id":"nope","answers":{}}`},
		{"bad setting", `{"patient_id":"` + uuid.New().String() + `","test_setting":"van","answers":{}}`},
		{"no answers", `{"patient_id":"` + uuid.New().String() + `"}`},
		{"no counselor", `{"patient_id":"` + uuid.New().String() + `","answers":{}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, e := newTestHandler()
			c := e.NewContext(jsonRequest(http.MethodPost, tt.body), httptest.NewRecorder())
			err := h.CreatePreTest(c)
			he, ok := err.(*echo.HTTPError)
			if !ok || he.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %v", err)
			}
		})
	}
}

func TestHandler_GetPreTest(t *testing.T) {
	h, e := newTestHandler()
	p := newPreTest()
	h.svc.CreatePreTest(context.Background(), p)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())

	if err := h.GetPreTest(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_GetPreTest_NotFound(t *testing.T) {
	h, e := newTestHandler()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.GetPreTest(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_GetPreTest_InvalidID(t *testing.T) {
	h, e := newTestHandler()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := h.GetPreTest(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_ListPreTests(t *testing.T) {
	h, e := newTestHandler()
	p := newPreTest()
	h.svc.CreatePreTest(context.Background(), p)
	h.svc.CreatePreTest(context.Background(), newPreTest())

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?patient="+p.PatientID.String(), nil), rec)

	if err := h.ListPreTests(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["total"] != float64(1) {
		t.Errorf("expected total 1, got %v", resp["total"])
	}
}

func TestHandler_UpdatePreTest(t *testing.T) {
	h, e := newTestHandler()
	p := newPreTest()
	h.svc.CreatePreTest(context.Background(), p)

	body := `{"test_setting":"index","answers":{"sti_genital_discharge":true}}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPut, body), rec)
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())

	if err := h.UpdatePreTest(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := h.svc.GetPreTest(context.Background(), p.ID)
	if got.HIVRiskScore != 0 || got.STIScreeningScore != 1 || got.TestSetting != "index" {
		t.Errorf("unexpected record after update: %+v", got)
	}
}

func TestHandler_UpdatePreTest_NotFound(t *testing.T) {
	h, e := newTestHandler()
	c := e.NewContext(jsonRequest(http.MethodPut, `{}`), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.UpdatePreTest(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_DeletePreTest(t *testing.T) {
	h, e := newTestHandler()
	p := newPreTest()
	h.svc.CreatePreTest(context.Background(), p)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())

	if err := h.DeletePreTest(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}
