package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pricecast-dev/pricecast/internal/buildinfo"
	"github.com/pricecast-dev/pricecast/internal/config"
	"github.com/pricecast-dev/pricecast/internal/logging"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var projectDir string

	rootCmd := &cobra.Command{
		Use:     "pricecast",
		Short:   "Residential price-per-ping estimation from registry transactions",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&projectDir, "project", ".", "project directory")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newCleanCommand(&projectDir))
	rootCmd.AddCommand(newTrainCommand(&projectDir))
	rootCmd.AddCommand(newPredictCommand(&projectDir))
	rootCmd.AddCommand(newServeCommand(&projectDir))

	return rootCmd
}

// project is a resolved project directory with its config and logger.
type project struct {
	root   string
	cfg    *config.Config
	logger *slog.Logger
}

func openProject(dir string) (*project, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	cfg, err := config.LoadOrDefault(root)
	if err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(cfg, root); err != nil {
		return nil, err
	}
	logger, err := logging.FromConfig(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("log config: %w", err)
	}
	return &project{root: root, cfg: cfg, logger: logger}, nil
}

// rel shortens path for display when it lies inside the project.
func (p *project) rel(path string) string {
	if r, err := filepath.Rel(p.root, path); err == nil && filepath.IsLocal(r) {
		return r
	}
	return path
}
