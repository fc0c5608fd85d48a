package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/intrafact/internal/core/domain"
)

const snippetLength = 200

var (
	retrieveLimit int
	retrieveJSON  bool
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Show the indexed chunks closest to a query",
	Long: `Embeds the query and lists the closest chunks with their cosine
distance. Lower distances are closer. No language model is called.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().IntVarP(&retrieveLimit, "limit", "n", 5, "maximum number of results")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(retrieveCmd)
}

// resultJSON is the JSON form of a retrieval hit.
type resultJSON struct {
	ID       string         `json:"id"`
	FileName string         `json:"file_name,omitempty"`
	Distance float64        `json:"distance"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}
	if retrieveLimit <= 0 {
		return fmt.Errorf("%w: --limit must be positive", domain.ErrInvalidInput)
	}

	query, err := readQuery(cmd, args)
	if err != nil {
		return err
	}

	results, err := retrievalService.Retrieve(cmd.Context(), query, retrieveLimit)
	if err != nil {
		return fmt.Errorf("retrieve failed: %w", err)
	}

	if retrieveJSON {
		return outputRetrieveJSON(cmd, results)
	}

	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}
	cmd.Println("Results:")
	cmd.Println()
	printResults(cmd, results)
	return nil
}

func outputRetrieveJSON(cmd *cobra.Command, results []domain.QueryResult) error {
	data, err := json.MarshalIndent(toResultJSON(results), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func toResultJSON(results []domain.QueryResult) []resultJSON {
	out := make([]resultJSON, len(results))
	for i, r := range results {
		out[i] = resultJSON{
			ID:       r.ID,
			FileName: r.FileName(),
			Distance: r.Score,
			Content:  r.Content,
			Metadata: r.Metadata,
		}
	}
	return out
}

func printResults(cmd *cobra.Command, results []domain.QueryResult) {
	for i, r := range results {
		// Format: [N] file - distance, then a one-line snippet
		name := r.FileName()
		if name == "" {
			name = r.ID
		}
		cmd.Printf("  [%d] %s (distance %.3f)\n", i+1, name, r.Score)
		cmd.Printf("      %s\n", r.Snippet(snippetLength))
		cmd.Println()
	}
}
