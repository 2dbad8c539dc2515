package pagination

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(query string) Params {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients?"+query, nil)
	return FromContext(e.NewContext(req, httptest.NewRecorder()))
}

func TestFromContext(t *testing.T) {
	tests := []struct {
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"", DefaultLimit, 0},
		{"limit=5&offset=10", 5, 10},
		{"limit=500", MaxLimit, 0},
		{"limit=-3&offset=-1", DefaultLimit, 0},
		{"limit=abc&offset=xyz", DefaultLimit, 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			p := paramsFor(tt.query)
			if p.Limit != tt.wantLimit || p.Offset != tt.wantOffset {
				t.Errorf("got limit=%d offset=%d, want %d/%d", p.Limit, p.Offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestNewResponse(t *testing.T) {
	p := Params{Limit: 2, Offset: 0}
	resp := NewResponse([]string{"a", "b"}, 3, p)
	if !resp.HasMore {
		t.Error("expected HasMore with 3 total and 2 shown")
	}
	if p.NextOffset() != 2 {
		t.Errorf("expected next offset 2, got %d", p.NextOffset())
	}

	last := NewResponse([]string{"c"}, 3, Params{Limit: 2, Offset: 2})
	if last.HasMore {
		t.Error("last page should not have more")
	}
}

func TestNewResponse_NilDataEncodesEmptyArray(t *testing.T) {
	resp := NewResponse[int](nil, 0, Params{Limit: DefaultLimit})
	b, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]any
	_ = json.Unmarshal(b, &out)
	if data, ok := out["data"].([]any); !ok || len(data) != 0 {
		t.Errorf("expected empty data array, got %v", out["data"])
	}
}
