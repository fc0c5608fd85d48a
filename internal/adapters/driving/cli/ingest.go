package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/intrafact/internal/core/domain"
)

var ingestQuiet bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [paths...]",
	Short: "Index files into the vector store",
	Long: `Extracts, chunks, embeds and indexes the given files and directories.
With no arguments the configured raw data directory (paths.raw_dir) is used.

Files whose content has been indexed before are skipped, whatever their name.
A file that cannot be read is skipped; the run fails only if indexing a
readable file fails.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestQuiet, "quiet", "q", false, "print only the summary")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	paths, err := ingestPaths(args)
	if err != nil {
		return err
	}

	report, err := ingestService.Ingest(cmd.Context(), paths)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	var failures []error
	for _, f := range report.Files {
		if !ingestQuiet {
			printFileResult(cmd, f)
		}
		if f.Outcome == domain.OutcomeFailed {
			failures = append(failures, fmt.Errorf("%s: %w", f.Path, f.Err))
		}
	}

	cmd.Printf("\nProcessed %d, duplicate %d, empty %d, unreadable %d, failed %d (%d chunks)\n",
		report.Count(domain.OutcomeProcessed),
		report.Count(domain.OutcomeDuplicate),
		report.Count(domain.OutcomeEmpty),
		report.Count(domain.OutcomeUnreadable),
		report.Count(domain.OutcomeFailed),
		report.Chunks(),
	)

	if len(failures) > 0 {
		return fmt.Errorf("%d files failed: %w", len(failures), errors.Join(failures...))
	}
	return nil
}

// ingestPaths falls back to the configured raw data directory.
func ingestPaths(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if settingsService == nil {
		return nil, fmt.Errorf("%w: no paths given", domain.ErrInvalidInput)
	}
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	if settings.Paths.RawDir == "" {
		return nil, fmt.Errorf("%w: no paths given and paths.raw_dir is empty", domain.ErrInvalidInput)
	}
	return []string{settings.Paths.RawDir}, nil
}

func printFileResult(cmd *cobra.Command, f domain.FileResult) {
	switch f.Outcome {
	case domain.OutcomeProcessed:
		cmd.Printf("  %-10s %s (%d chunks)\n", f.Outcome, f.Path, f.Chunks)
	case domain.OutcomeUnreadable, domain.OutcomeFailed:
		cmd.Printf("  %-10s %s: %v\n", f.Outcome, f.Path, f.Err)
	default:
		cmd.Printf("  %-10s %s\n", f.Outcome, f.Path)
	}
}
