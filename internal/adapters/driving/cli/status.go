package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	statusRecent int
	statusCheck  bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what has been indexed",
	Long:  `Shows the number of indexed documents and chunks, the configured models and the most recently indexed files.`,
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().IntVarP(&statusRecent, "recent", "n", 10, "number of recent documents to list")
	statusCmd.Flags().BoolVar(&statusCheck, "check", false, "check that the AI providers are reachable")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if statusService == nil {
		return errors.New("status service not configured")
	}

	st, err := statusService.Status(cmd.Context(), statusRecent)
	if err != nil {
		return fmt.Errorf("status failed: %w", err)
	}

	cmd.Println("Index")
	cmd.Println("=====")
	cmd.Printf("  Documents: %d\n", st.Documents)
	cmd.Printf("  Chunks: %d\n", st.Chunks)
	if st.LastIngested.IsZero() {
		cmd.Println("  Last ingested: never")
	} else {
		cmd.Printf("  Last ingested: %s\n", st.LastIngested.Local().Format(time.DateTime))
	}
	cmd.Println()

	cmd.Println("Models")
	cmd.Println("======")
	cmd.Printf("  Embedding: %s\n", orNone(st.EmbeddingModel))
	cmd.Printf("  LLM: %s\n", orNone(st.LLMModel))
	if statusCheck {
		printConnectivity(cmd)
	}

	if len(st.Recent) > 0 {
		cmd.Println()
		cmd.Println("Recent documents")
		cmd.Println("================")
		for _, r := range st.Recent {
			cmd.Printf("  %s  %-40s %3d chunks  %s\n",
				r.StoredAt.Local().Format(time.DateTime), r.FileName, r.ChunkCount, shortHash(r.ContentHash))
		}
	}
	return nil
}

func printConnectivity(cmd *cobra.Command) {
	if pingServices == nil {
		cmd.Println("  Connectivity: unknown")
		return
	}
	if err := pingServices(cmd.Context()); err != nil {
		cmd.Printf("  Connectivity: %v\n", err)
		return
	}
	cmd.Println("  Connectivity: ok")
}

func orNone(s string) string {
	if s == "" {
		return "(not configured)"
	}
	return s
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
