// Package web serves the estimation form.
package web

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pricecast-dev/pricecast/internal/forecast"
	"github.com/pricecast-dev/pricecast/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Default form values.
const (
	defaultHouseAge = 10
	defaultArea     = 35.0
	defaultFloors   = 15.0
)

// Handler serves the form and estimates. With no predictor it runs in
// unavailable mode: pages show the load error and estimates return 503.
type Handler struct {
	predictor *forecast.Predictor
	loadErr   error
	limits    forecast.Limits
	logger    *slog.Logger
}

// NewHandler creates a Handler. loadErr is shown when predictor is nil.
func NewHandler(predictor *forecast.Predictor, loadErr error, limits forecast.Limits, logger *slog.Logger) *Handler {
	if predictor == nil && loadErr == nil {
		loadErr = errors.New("no model loaded")
	}
	if predictor != nil {
		limits = predictor.Limits()
	}
	return &Handler{predictor: predictor, loadErr: loadErr, limits: limits, logger: logger}
}

// Routes returns the router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(h.logger))
	r.Use(middleware.Recoverer)

	r.Get("/", h.index)
	r.Post("/predict", h.predict)
	r.Get("/healthz", h.health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.SetHeader("Content-Type", "application/json"))
		r.Post("/estimate", h.apiEstimate)
	})
	return r
}

type buildingOption struct {
	Value   int
	Label   string
	Checked bool
}

type resultView struct {
	Year       int
	UnitPrice  string
	TotalPrice string
	Plot       *svgPlot
}

type pageData struct {
	Blocking      string
	FormError     string
	Disabled      bool
	Districts     []string
	BuildingTypes []buildingOption
	Limits        forecast.Limits
	Input         forecast.Input
	FutureAge     int
	Result        *resultView
	Disclaimer    string
}

func (h *Handler) newPage(in forecast.Input) pageData {
	d := pageData{
		Limits:     h.limits,
		Input:      in,
		FutureAge:  forecast.FutureAge(in.HouseAge, in.TargetYear, h.limits.BaseYear),
		Disclaimer: forecast.Disclaimer,
	}
	if h.predictor == nil {
		d.Blocking = "錯誤：找不到可用的模型，請先執行 pricecast train。(" + h.loadErr.Error() + ")"
		d.Disabled = true
	} else {
		d.Districts = h.predictor.Districts()
	}
	for _, bt := range model.SelectableBuildingTypes {
		d.BuildingTypes = append(d.BuildingTypes, buildingOption{
			Value:   int(bt),
			Label:   bt.String(),
			Checked: bt == in.BuildingType,
		})
	}
	return d
}

func (h *Handler) defaultInput() forecast.Input {
	in := forecast.Input{
		HouseAge:     defaultHouseAge,
		TargetYear:   h.limits.BaseYear,
		Area:         defaultArea,
		TotalFloors:  defaultFloors,
		BuildingType: model.SelectableBuildingTypes[0],
	}
	if h.predictor != nil {
		if names := h.predictor.Districts(); len(names) > 0 {
			in.District = names[0]
		}
	}
	return in
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	if h.predictor == nil {
		status = http.StatusServiceUnavailable
	}
	h.render(w, r, status, h.newPage(h.defaultInput()))
}

func (h *Handler) predict(w http.ResponseWriter, r *http.Request) {
	if h.predictor == nil {
		h.render(w, r, http.StatusServiceUnavailable, h.newPage(h.defaultInput()))
		return
	}

	in, err := parseForm(r)
	if err != nil {
		page := h.newPage(in)
		page.FormError = err.Error()
		h.render(w, r, http.StatusBadRequest, page)
		return
	}

	page := h.newPage(in)
	est, trend, err := h.run(in)
	if err != nil {
		page.FormError = err.Error()
		h.render(w, r, statusFor(err), page)
		return
	}

	page.Result = &resultView{
		Year:       est.Year,
		UnitPrice:  forecast.FormatUnitPrice(est.UnitPrice),
		TotalPrice: forecast.FormatTotalPrice(est.TotalPrice),
		Plot:       BuildTrendChart(trend).layout(),
	}
	h.render(w, r, http.StatusOK, page)
}

// estimateResponse is the JSON body of /api/v1/estimate.
type estimateResponse struct {
	ModelID    string              `json:"model_id,omitempty"`
	Estimate   forecast.Estimate   `json:"estimate"`
	Trend      []forecast.Estimate `json:"trend"`
	Chart      *ChartConfig        `json:"chart"`
	Disclaimer string              `json:"disclaimer"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) apiEstimate(w http.ResponseWriter, r *http.Request) {
	if h.predictor == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: h.loadErr.Error()})
		return
	}

	var in forecast.Input
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON: " + err.Error()})
		return
	}

	est, trend, err := h.run(in)
	if err != nil {
		writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, estimateResponse{
		ModelID:    h.predictor.ModelID(),
		Estimate:   est,
		Trend:      trend,
		Chart:      BuildTrendChart(trend),
		Disclaimer: forecast.Disclaimer,
	})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if h.predictor == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": h.loadErr.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "model_id": h.predictor.ModelID()})
}

func (h *Handler) run(in forecast.Input) (forecast.Estimate, []forecast.Estimate, error) {
	est, err := h.predictor.Estimate(in)
	if err != nil {
		return forecast.Estimate{}, nil, err
	}
	trend, err := h.predictor.Trend(in)
	if err != nil {
		return forecast.Estimate{}, nil, err
	}
	return est, trend, nil
}

func statusFor(err error) int {
	var fe *forecast.FieldError
	if errors.As(err, &fe) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	var buf strings.Builder
	if err := pageTemplate.Execute(&buf, data); err != nil {
		loggerFrom(r.Context()).Error("rendering page", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(buf.String()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// parseForm reads the form fields. On error the returned Input holds
// whatever parsed so the form can be redisplayed.
func parseForm(r *http.Request) (forecast.Input, error) {
	var in forecast.Input
	if err := r.ParseForm(); err != nil {
		return in, fmt.Errorf("reading form: %w", err)
	}

	var errs []error
	atoi := func(field string, dst *int) {
		v, err := strconv.Atoi(strings.TrimSpace(r.PostForm.Get(field)))
		if err != nil {
			errs = append(errs, &forecast.FieldError{Field: field, Message: "not a whole number"})
			return
		}
		*dst = v
	}
	atof := func(field string, dst *float64) {
		v, err := strconv.ParseFloat(strings.TrimSpace(r.PostForm.Get(field)), 64)
		if err != nil {
			errs = append(errs, &forecast.FieldError{Field: field, Message: "not a number"})
			return
		}
		*dst = v
	}

	in.District = r.PostForm.Get("district")
	atoi("house_age", &in.HouseAge)
	atoi("target_year", &in.TargetYear)
	atof("area", &in.Area)
	atof("total_floors", &in.TotalFloors)
	var bt int
	atoi("building_type", &bt)
	in.BuildingType = model.BuildingType(bt)

	return in, errors.Join(errs...)
}
