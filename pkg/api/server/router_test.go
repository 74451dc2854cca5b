package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bsr_estimator/pkg/api/httputil"
	"bsr_estimator/pkg/core/calibration"
	"bsr_estimator/pkg/core/config"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	table, err := calibration.LoadDefault(calibration.Options{Strict: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return NewRouter(config.Defaults(), table)
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type estimateBody struct {
	RequestID      string  `json:"request_id"`
	Category       string  `json:"category"`
	Rank           int64   `json:"rank"`
	MonthlyUnits   int     `json:"monthly_units"`
	DailyUnits     int     `json:"daily_units"`
	Method         string  `json:"method"`
	MonthlyRevenue float64 `json:"monthly_revenue"`
	AnnualRevenue  float64 `json:"annual_revenue"`
	PriceProvided  bool    `json:"price_provided"`
	Narrative      string  `json:"narrative"`
	Error          string  `json:"error"`
	Field          string  `json:"field"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) estimateBody {
	t.Helper()
	var body estimateBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response %q: %v", w.Body.String(), err)
	}
	return body
}

func TestEstimate_OK(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/estimate", `{"category": "Books", "rank": "1,000", "price": 19.99}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := decode(t, w)

	if body.Method != "interpolation" {
		t.Errorf("expected interpolation at a stored rank, got %s", body.Method)
	}
	if body.Rank != 1000 || body.Category != "Books" {
		t.Errorf("unexpected echo %+v", body)
	}
	if body.MonthlyUnits < 30 || body.MonthlyUnits%30 != 0 {
		t.Errorf("unexpected monthly units %d", body.MonthlyUnits)
	}
	if !body.PriceProvided || body.AnnualRevenue <= body.MonthlyRevenue {
		t.Errorf("unexpected revenue fields %+v", body)
	}
	if _, err := uuid.Parse(body.RequestID); err != nil {
		t.Errorf("expected uuid request id, got %q", body.RequestID)
	}
	if w.Header().Get(httputil.RequestIDHeader) != body.RequestID {
		t.Errorf("header and body request ids differ")
	}
}

func TestEstimate_Methods(t *testing.T) {
	r := newTestRouter(t)

	tests := map[string]string{
		`{"category": "Electronics", "rank": 5}`:       "extrapolation",
		`{"category": "Electronics", "rank": 777}`:     "interpolation",
		`{"category": "Electronics", "rank": 2500000}`: "power_law",
	}
	for reqBody, want := range tests {
		w := do(r, http.MethodPost, "/api/estimate", reqBody)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", reqBody, w.Code)
		}
		body := decode(t, w)
		if body.Method != want {
			t.Errorf("%s: expected %s, got %s", reqBody, want, body.Method)
		}
		if body.PriceProvided || body.MonthlyRevenue != 0 {
			t.Errorf("%s: expected no revenue without price", reqBody)
		}
	}
}

func TestEstimate_LenientBody(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/estimate", `{"category": "Books", "rank": 500,}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestEstimate_RankForms(t *testing.T) {
	r := newTestRouter(t)

	for _, reqBody := range []string{
		`{"category": "Books", "rank": 1e3}`,
		`{"category": "Books", "rank": 1000.0}`,
		`{"category": "Books", "rank": "1000"}`,
		`{"category": "Books", "rank": "1,000"}`,
	} {
		w := do(r, http.MethodPost, "/api/estimate", reqBody)
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d: %s", reqBody, w.Code, w.Body.String())
			continue
		}
		if body := decode(t, w); body.Rank != 1000 {
			t.Errorf("%s: expected rank 1000, got %d", reqBody, body.Rank)
		}
	}
}

func TestEstimate_ValidationErrors(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		body      string
		wantField string
		wantMsg   string
	}{
		{`{"category": "", "rank": 100}`, "category", "Please select a product category."},
		{`{"category": "Garden", "rank": 100}`, "category", "Unknown product category: Garden"},
		{`{"category": "Books", "rank": 0}`, "rank", "Please enter a valid Best Seller Rank (must be 1 or greater)."},
		{`{"category": "Books"}`, "rank", "Please enter a valid Best Seller Rank (must be 1 or greater)."},
		{`{"category": "Books", "rank": "abc"}`, "rank", "Please enter a valid Best Seller Rank (must be 1 or greater)."},
		{`{"category": "Books", "rank": 10000001}`, "rank", "BSR value seems unusually high. Please verify your input."},
		{`{"category": "Books", "rank": 10, "price": 0}`, "price", "Please enter a valid price (must be greater than 0)."},
		{`{"category": "Books", "rank": 10, "price": "free"}`, "price", "Please enter a valid price (must be greater than 0)."},
		{`{"category": "Books", "rank": "1e3"}`, "rank", "Please enter a valid Best Seller Rank (must be 1 or greater)."},
		{`{"category": "Books", "rank": true}`, "rank", "Please enter a valid Best Seller Rank (must be 1 or greater)."},
		{`{"category": "", "rank": "abc", "price": "free"}`, "category", "Please select a product category."},
		{`{"category": "Books", "rank": "abc", "price": "free"}`, "rank", "Please enter a valid Best Seller Rank (must be 1 or greater)."},
	}
	for _, tt := range tests {
		w := do(r, http.MethodPost, "/api/estimate", tt.body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tt.body, w.Code)
			continue
		}
		body := decode(t, w)
		if body.Field != tt.wantField || body.Error != tt.wantMsg {
			t.Errorf("%s: expected %s/%q, got %s/%q", tt.body, tt.wantField, tt.wantMsg, body.Field, body.Error)
		}
	}
}

func TestEstimate_GarbageBody(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/estimate", ``)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty body, got %d", w.Code)
	}
}

func TestReport(t *testing.T) {
	r := newTestRouter(t)
	reqBody := `{"category": "Books", "rank": 1500, "price": 12.5}`

	w := do(r, http.MethodPost, "/api/estimate/report", reqBody)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/markdown") {
		t.Errorf("unexpected content type %s", w.Header().Get("Content-Type"))
	}
	if !strings.Contains(w.Body.String(), "## Sales estimate: Books at BSR 1,500") {
		t.Errorf("unexpected markdown:\n%s", w.Body.String())
	}

	w = do(r, http.MethodPost, "/api/estimate/report?format=html", reqBody)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "<table>") {
		t.Errorf("unexpected html:\n%s", w.Body.String())
	}

	w = do(r, http.MethodPost, "/api/estimate/report?format=pdf", reqBody)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unsupported format, got %d", w.Code)
	}
}

func TestCategoriesAndConfig(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodGet, "/api/categories", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var cats struct {
		Categories []struct {
			Name    string  `json:"name"`
			Points  int     `json:"points"`
			MinRank float64 `json:"min_rank"`
		} `json:"categories"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &cats); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(cats.Categories) != 12 || cats.Categories[0].Name != "Baby" {
		t.Errorf("unexpected categories %+v", cats.Categories)
	}

	w = do(r, http.MethodGet, "/api/config", "")
	var cfg struct {
		Source     string        `json:"calibration_source"`
		Categories int           `json:"categories"`
		Excluded   []interface{} `json:"excluded_categories"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if cfg.Source != calibration.DefaultSource || cfg.Categories != 12 || cfg.Excluded == nil || len(cfg.Excluded) != 0 {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestCORSAndHealth(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodOptions, "/api/estimate", "")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for preflight, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("missing CORS header")
	}

	w = do(r, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("unexpected health response %d %s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodGet, "/nope", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
