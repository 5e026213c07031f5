package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pricecast-dev/pricecast/internal/forecast"
	"github.com/pricecast-dev/pricecast/internal/model"
)

func newPredictCommand(projectDir *string) *cobra.Command {
	var in forecast.Input
	var buildingType int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Estimate the price of one property and its yearly trend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(*projectDir)
			if err != nil {
				return err
			}
			in.BuildingType = model.BuildingType(buildingType)
			return runPredict(p, in, asJSON)
		},
	}

	cmd.Flags().StringVar(&in.District, "district", "", "district name, e.g. 左營區 (required)")
	_ = cmd.MarkFlagRequired("district")
	cmd.Flags().IntVar(&in.HouseAge, "age", 10, "current house age in years")
	cmd.Flags().Float64Var(&in.Area, "area", 35, "area in ping")
	cmd.Flags().Float64Var(&in.TotalFloors, "floors", 15, "total floors of the building")
	cmd.Flags().IntVar(&buildingType, "type", int(model.BuildingTower), "building type: 3 tower, 2 townhouse/villa, 1 apartment")
	cmd.Flags().IntVar(&in.TargetYear, "year", 2025, "target year")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}

type predictOutput struct {
	Estimate   forecast.Estimate   `json:"estimate"`
	Trend      []forecast.Estimate `json:"trend"`
	Disclaimer string              `json:"disclaimer"`
}

func runPredict(p *project, in forecast.Input, asJSON bool) error {
	limits := forecast.DefaultLimits(p.cfg.Forecast.BaseYear, p.cfg.Forecast.HorizonYears)
	pred, err := forecast.Load(p.root, limits)
	if err != nil {
		return err
	}

	est, err := pred.Estimate(in)
	if err != nil {
		return err
	}
	trend, err := pred.Trend(in)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(predictOutput{Estimate: est, Trend: trend, Disclaimer: forecast.Disclaimer})
	}

	fmt.Printf("[%d] %s, %s, age %d in %d, %g ping, %g floors\n",
		est.Year, in.District, in.BuildingType, est.HouseAge, est.Year, in.Area, in.TotalFloors)
	fmt.Printf("Unit price:  %s 萬/坪\n", forecast.FormatUnitPrice(est.UnitPrice))
	fmt.Printf("Total price: %s 萬元\n", forecast.FormatTotalPrice(est.TotalPrice))
	fmt.Println()
	fmt.Println("Trend:")
	for _, e := range trend {
		fmt.Printf("  %d  age %2d  %8s 萬/坪  %10s 萬元\n",
			e.Year, e.HouseAge, forecast.FormatUnitPrice(e.UnitPrice), forecast.FormatTotalPrice(e.TotalPrice))
	}
	fmt.Println()
	fmt.Println(forecast.Disclaimer)
	return nil
}
