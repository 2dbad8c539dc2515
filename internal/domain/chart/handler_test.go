package chart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ehr/emr/internal/domain/patient"
)

func getChart(t *testing.T, h *Handler, id string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues(id)
	if err := h.GetChart(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return rec
}

func TestHandler_GetChart(t *testing.T) {
	s := newServices()
	p, _ := s.patients.Create(context.Background(), patient.CreateInput{FirstName: "Ada", LastName: "Lovelace", Status: "discharged"})

	rec := getChart(t, NewHandler(s.loader), p.ID.String())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Patient   patient.View `json:"patient"`
		Allergies []any        `json:"allergies"`
		Notes     []any        `json:"notes"`
		Draft     string       `json:"draft"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Patient.Badge != patient.BadgeNeutral || body.Allergies == nil || body.Notes == nil {
		t.Errorf("unexpected chart: %s", rec.Body.String())
	}
}

func TestHandler_GetChart_NotFound(t *testing.T) {
	s := newServices()
	rec := getChart(t, NewHandler(s.loader), uuid.NewString())
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["found"] != false || body["back"] != patient.ListPath {
		t.Errorf("unexpected empty state: %v", body)
	}
}
