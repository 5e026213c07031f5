package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pricecast-dev/pricecast/internal/gbm"
	"github.com/pricecast-dev/pricecast/internal/trainer"
)

func newTrainCommand(projectDir *string) *cobra.Command {
	var fromFeatures bool
	var trees int

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Clean, split, fit, evaluate, and save the model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(*projectDir)
			if err != nil {
				return err
			}
			if trees > 0 {
				p.cfg.Training.NEstimators = trees
			}
			return runTrain(p, fromFeatures)
		},
	}

	cmd.Flags().BoolVar(&fromFeatures, "from-features", false, "train on the saved feature table instead of re-cleaning")
	cmd.Flags().IntVar(&trees, "trees", 0, "override training.n_estimators")

	return cmd
}

func runTrain(p *project, fromFeatures bool) error {
	res, err := trainer.Run(p.root, p.cfg, trainer.Options{
		FromFeatures: fromFeatures,
		Logger:       p.logger,
	})
	if err != nil {
		return err
	}

	if res.Dataset.Report != nil {
		fmt.Printf("Cleaned %d -> %d rows\n", res.Dataset.Report.Initial, res.Dataset.Report.Final)
		printReport(*res.Dataset.Report)
	}
	fmt.Printf("Run %s: %d trees, trained on %d rows, tested on %d\n",
		res.RunID, len(res.Model.Trees), res.TrainRows, res.TestRows)
	fmt.Printf("RMSE: %.2f 萬元/坪\n", res.Score.RMSE)
	fmt.Printf("R2:   %.4f (%s: %s)\n", res.Score.R2, res.Score.Grade, res.Score.Grade.Verdict())
	fmt.Printf("Model %s saved to %s\n", res.Model.ID, gbm.RelPath)
	if res.CommitHash != "" {
		fmt.Printf("Committed artifacts (%s)\n", res.CommitHash)
	}
	return nil
}
