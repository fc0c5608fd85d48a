package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/intrafact/internal/core/domain"
)

// maxStdinQuery caps how much piped input is read as a question.
const maxStdinQuery = 64 * 1024

var (
	askSources bool
	askJSON    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question",
	Long: `Routes the question, then answers it either from the closest indexed
chunks or directly from the model. The question is read from standard
input when it is piped and no argument is given.

An answer is always printed. When the model or the index is unavailable the
printed text is a labelled error message instead.`,
	Example: `  intrafact ask "What does the onboarding guide say about laptops?"
  echo "Summarise the release notes" | intrafact ask`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVarP(&askSources, "sources", "s", false, "list the chunks the answer was grounded in")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

// answerJSON is the JSON form of an answer.
type answerJSON struct {
	Answer   string       `json:"answer"`
	Route    string       `json:"route"`
	Degraded bool         `json:"degraded"`
	Sources  []resultJSON `json:"sources"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	query, err := readQuery(cmd, args)
	if err != nil {
		return err
	}

	answer := answerService.Answer(cmd.Context(), query)

	if askJSON {
		data, err := json.MarshalIndent(answerJSON{
			Answer:   answer.Text,
			Route:    answer.Route.String(),
			Degraded: answer.Degraded,
			Sources:  toResultJSON(answer.Sources),
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(answer.Text)
	if askSources && len(answer.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		printResults(cmd, answer.Sources)
	}
	return nil
}

// readQuery joins the arguments, or reads piped standard input when there are none.
func readQuery(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		query := strings.TrimSpace(strings.Join(args, " "))
		if query == "" {
			return "", fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
		}
		return query, nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "", fmt.Errorf("%w: no question given", domain.ErrInvalidInput)
	}

	data, err := io.ReadAll(io.LimitReader(in, maxStdinQuery))
	if err != nil {
		return "", fmt.Errorf("read question from stdin: %w", err)
	}
	query := strings.TrimSpace(string(data))
	if query == "" {
		return "", fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	return query, nil
}
