package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricecast-dev/pricecast/internal/districts"
	"github.com/pricecast-dev/pricecast/internal/features"
	"github.com/pricecast-dev/pricecast/internal/forecast"
	"github.com/pricecast-dev/pricecast/internal/logging"
)

// ageModel prices a ping at 50 minus half the house age plus one per year
// past 2025.
type ageModel struct{}

func (ageModel) Predict(x []float64) (float64, error) {
	return 50 - 0.5*x[0] + (x[5] - 2025), nil
}

func testHandler() *Handler {
	table := districts.Build([]string{"左營區", "鼓山區", "三民區"})
	p := forecast.New(ageModel{}, features.DefaultSchema(), table, forecast.DefaultLimits(2025, 5))
	return NewHandler(p, nil, forecast.Limits{}, logging.Discard())
}

func unavailableHandler() *Handler {
	return NewHandler(nil, forecast.ErrModelNotFound, forecast.DefaultLimits(2025, 5), logging.Discard())
}

func validForm() url.Values {
	return url.Values{
		"district":      {"三民區"},
		"house_age":     {"10"},
		"area":          {"35"},
		"total_floors":  {"15"},
		"building_type": {"3"},
		"target_year":   {"2027"},
	}
}

func postForm(t *testing.T, h http.Handler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func postJSON(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/estimate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestIndex(t *testing.T) {
	rec := get(t, testHandler().Routes(), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	for _, name := range []string{"三民區", "左營區", "鼓山區"} {
		assert.Contains(t, body, name)
	}
	assert.Contains(t, body, `<option value="三民區" selected>`)
	assert.Contains(t, body, `min="2025" max="2030"`)
	assert.Contains(t, body, "大樓/華廈")
	assert.Contains(t, body, forecast.Disclaimer)
	assert.NotContains(t, body, `id="result"`)
	assert.NotContains(t, body, "blocking\"")
}

func TestPredictForm(t *testing.T) {
	rec := postForm(t, testHandler().Routes(), validForm())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := rec.Body.String()

	assert.Contains(t, body, "【2027 年】")
	assert.Contains(t, body, "46.0 萬/坪")
	assert.Contains(t, body, "1,610 萬元")
	assert.Contains(t, body, "<polyline")
	assert.Equal(t, 6, strings.Count(body, "<circle"))
	assert.Contains(t, body, "屋齡將會變成 12 年")
	assert.Contains(t, body, forecast.Disclaimer)
}

func TestPredictFormOutOfRange(t *testing.T) {
	form := validForm()
	form.Set("area", "500")
	rec := postForm(t, testHandler().Routes(), form)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "area: 500 not in [5, 200]")
	assert.NotContains(t, rec.Body.String(), `id="result"`)
}

func TestPredictFormNotANumber(t *testing.T) {
	form := validForm()
	form.Set("house_age", "old")
	rec := postForm(t, testHandler().Routes(), form)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "house_age: not a whole number")
}

func TestAPIEstimate(t *testing.T) {
	body := `{"district":"三民區","house_age":10,"target_year":2027,"area":35,"total_floors":15,"building_type":3}`
	rec := postJSON(t, testHandler().Routes(), body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp estimateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2027, resp.Estimate.Year)
	assert.Equal(t, 12, resp.Estimate.HouseAge)
	assert.InDelta(t, 46.0, resp.Estimate.UnitPrice, 1e-9)
	assert.InDelta(t, 1610.0, resp.Estimate.TotalPrice, 1e-9)
	require.Len(t, resp.Trend, 6)
	assert.Equal(t, 2025, resp.Trend[0].Year)
	assert.Equal(t, 2030, resp.Trend[5].Year)
	require.NotNil(t, resp.Chart)
	assert.Len(t, resp.Chart.Points, 6)
	assert.Equal(t, forecast.Disclaimer, resp.Disclaimer)
}

func TestAPIEstimateErrors(t *testing.T) {
	h := testHandler().Routes()

	rec := postJSON(t, h, `{"district":"三民區","color":"red"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, h, `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, h, `{"district":"信義區","house_age":10,"target_year":2027,"area":35,"total_floors":15,"building_type":3}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "unknown district")
}

func TestHealth(t *testing.T) {
	rec := get(t, testHandler().Routes(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestUnavailable(t *testing.T) {
	h := unavailableHandler().Routes()

	rec := get(t, h, "/")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "pricecast train")
	assert.Contains(t, body, "<fieldset disabled>")

	rec = postForm(t, h, validForm())
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), `id="result"`)

	rec = postJSON(t, h, `{}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = get(t, h, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "unavailable")
}

func TestNewHandlerWithoutError(t *testing.T) {
	h := NewHandler(nil, nil, forecast.DefaultLimits(2025, 5), logging.Discard())
	assert.Error(t, h.loadErr)
}

func TestTraceID(t *testing.T) {
	h := testHandler().Routes()

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(TraceHeader, id)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Header().Get(TraceHeader))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(TraceHeader, "not-a-uuid")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	_, err := uuid.Parse(rec.Header().Get(TraceHeader))
	assert.NoError(t, err)
}

func TestLoggerMiddlewareLogsRequest(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.FromConfig(&buf, "info", "json")
	require.NoError(t, err)

	h := LoggerMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotSame(t, logger, loggerFrom(r.Context()))
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request finished", entry["msg"])
	assert.Equal(t, float64(http.StatusTeapot), entry["status_code"])
	assert.Equal(t, "/x", entry["http_path"])
	assert.NotEmpty(t, entry["trace_id"])
}

func TestTrendChartLayout(t *testing.T) {
	trend := []forecast.Estimate{
		{Year: 2025, TotalPrice: 1000.7},
		{Year: 2026, TotalPrice: 1200},
		{Year: 2027, TotalPrice: 1100},
	}
	c := BuildTrendChart(trend)
	require.NotNil(t, c)
	assert.Equal(t, []ChartPoint{{"2025", 1000}, {"2026", 1200}, {"2027", 1100}}, c.Points)

	p := c.layout()
	require.Len(t, p.Dots, 3)
	assert.Equal(t, p.Left, p.Dots[0].X)
	assert.Equal(t, p.Right, p.Dots[2].X)
	assert.Equal(t, p.Bottom, p.Dots[0].Y, "minimum sits on the axis")
	assert.Equal(t, p.Top, p.Dots[1].Y, "maximum sits at the top")
	assert.Less(t, p.Dots[1].Y, p.Dots[2].Y)
	assert.Len(t, p.YTicks, yTickCount+1)
	assert.Equal(t, "1,000", p.YTicks[0].Label)
	assert.Equal(t, "1,200", p.YTicks[yTickCount].Label)
}

func TestTrendChartFlat(t *testing.T) {
	c := BuildTrendChart([]forecast.Estimate{{Year: 2025, TotalPrice: 500}})
	p := c.layout()
	require.Len(t, p.Dots, 1)
	assert.Equal(t, (p.Left+p.Right)/2, p.Dots[0].X)
	assert.Nil(t, BuildTrendChart(nil))
	assert.Nil(t, BuildTrendChart(nil).layout())
}
