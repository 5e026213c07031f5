package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pricecast-dev/pricecast/internal/cleaning"
	"github.com/pricecast-dev/pricecast/internal/districts"
	"github.com/pricecast-dev/pricecast/internal/features"
	"github.com/pricecast-dev/pricecast/internal/trainer"
)

func newCleanCommand(projectDir *string) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Filter the raw registry export and write the feature table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(*projectDir)
			if err != nil {
				return err
			}
			if input != "" {
				p.cfg.Data.Input = input
			}
			return runClean(p)
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "raw CSV file or directory (overrides data.input)")

	return cmd
}

func runClean(p *project) error {
	ds, err := trainer.Clean(p.root, p.cfg, p.logger)
	if err != nil {
		return err
	}

	fmt.Printf("Read %d rows from %s\n", ds.Report.Initial, p.rel(p.cfg.InputPath(p.root)))
	printReport(*ds.Report)
	fmt.Printf("Kept %d rows in %d districts\n", len(ds.Rows), ds.Districts.Len())
	fmt.Printf("Wrote %s, %s, %s\n", p.rel(p.cfg.FeaturesPath(p.root)), features.SchemaRelPath, districts.RelPath)
	return nil
}

func printReport(r cleaning.Report) {
	for _, s := range r.Stages {
		if s.Skipped {
			fmt.Printf("  %-22s %6d -> %-6d (skipped, column absent)\n", s.Name, s.In, s.Out)
			continue
		}
		fmt.Printf("  %-22s %6d -> %-6d (-%d)\n", s.Name, s.In, s.Out, s.Dropped())
	}
}
