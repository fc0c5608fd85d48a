package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/intrafact/internal/adapters/driving/watch"
	"github.com/custodia-labs/intrafact/internal/core/domain"
)

var (
	watchRecursive bool
	watchDebounce  time.Duration
	watchInitial   bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Index files as they are created or changed",
	Long: `Watches a directory and ingests every file that is created or written.
With no argument the configured raw data directory (paths.raw_dir) is watched.

Removing or renaming a file does not remove it from the index.
Press Ctrl+C to stop.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVarP(&watchRecursive, "recursive", "r", false, "also watch subdirectories")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce,
		"quiet period before a changed file is ingested")
	watchCmd.Flags().BoolVar(&watchInitial, "initial", true, "ingest the directory once before watching")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	paths, err := ingestPaths(args)
	if err != nil {
		return err
	}
	dir := paths[0]

	w, err := watch.New(ingestService, dir,
		watch.WithRecursive(watchRecursive),
		watch.WithDebounce(watchDebounce),
		watch.WithResultHandler(func(f domain.FileResult) {
			printFileResult(cmd, f)
		}),
	)
	if err != nil {
		return err
	}

	if watchInitial {
		report, err := ingestService.Ingest(cmd.Context(), []string{dir})
		if err != nil {
			return fmt.Errorf("initial ingest failed: %w", err)
		}
		cmd.Printf("Initial ingest: processed %d, duplicate %d, failed %d\n",
			report.Count(domain.OutcomeProcessed),
			report.Count(domain.OutcomeDuplicate),
			report.Count(domain.OutcomeFailed),
		)
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", dir)
	return w.Run(cmd.Context())
}
