package forecast

import (
	"errors"
	"fmt"
	"slices"

	"github.com/pricecast-dev/pricecast/internal/districts"
	"github.com/pricecast-dev/pricecast/internal/model"
)

// Limits are the accepted input ranges, all inclusive.
type Limits struct {
	MinAge, MaxAge       int
	MinArea, MaxArea     float64 // ping
	MinFloors, MaxFloors float64
	BaseYear, MaxYear    int
}

// DefaultLimits returns the form's ranges: projections from baseYear
// through baseYear+horizon.
func DefaultLimits(baseYear, horizon int) Limits {
	return Limits{
		MinAge:    0,
		MaxAge:    60,
		MinArea:   5,
		MaxArea:   200,
		MinFloors: 1,
		MaxFloors: 50,
		BaseYear:  baseYear,
		MaxYear:   baseYear + horizon,
	}
}

// Years lists every projection year.
func (l Limits) Years() []int {
	var ys []int
	for y := l.BaseYear; y <= l.MaxYear; y++ {
		ys = append(ys, y)
	}
	return ys
}

// Input is one user query. HouseAge is the age in the base year.
type Input struct {
	District     string             `json:"district"`
	HouseAge     int                `json:"house_age"`
	TargetYear   int                `json:"target_year"`
	Area         float64            `json:"area"`
	TotalFloors  float64            `json:"total_floors"`
	BuildingType model.BuildingType `json:"building_type"`
}

// FieldError is a rejected input field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Validate checks every field against l and the known districts.
func (in Input) Validate(l Limits, table *districts.Table) error {
	var errs []error
	add := func(field, format string, args ...any) {
		errs = append(errs, &FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if _, ok := table.Code(in.District); !ok {
		add("district", "unknown district %q", in.District)
	}
	if in.HouseAge < l.MinAge || in.HouseAge > l.MaxAge {
		add("house_age", "%d not in [%d, %d]", in.HouseAge, l.MinAge, l.MaxAge)
	}
	if in.TargetYear < l.BaseYear || in.TargetYear > l.MaxYear {
		add("target_year", "%d not in [%d, %d]", in.TargetYear, l.BaseYear, l.MaxYear)
	}
	if !(in.Area >= l.MinArea && in.Area <= l.MaxArea) {
		add("area", "%g not in [%g, %g]", in.Area, l.MinArea, l.MaxArea)
	}
	if !(in.TotalFloors >= l.MinFloors && in.TotalFloors <= l.MaxFloors) {
		add("total_floors", "%g not in [%g, %g]", in.TotalFloors, l.MinFloors, l.MaxFloors)
	}
	if !slices.Contains(model.SelectableBuildingTypes, in.BuildingType) {
		add("building_type", "%d is not a selectable building type", in.BuildingType)
	}
	return errors.Join(errs...)
}
