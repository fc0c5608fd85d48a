// Package cli provides the intrafact command-line interface.
// It implements a driving adapter following hexagonal architecture principles.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/intrafact/internal/core/ports/driving"
	"github.com/custodia-labs/intrafact/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services holds the driving ports used by the commands.
type Services struct {
	Ingest    driving.IngestService
	Retrieval driving.RetrievalService
	Answer    driving.AnswerService
	Status    driving.StatusService
	Settings  driving.SettingsService

	// Ping checks that the AI providers are reachable. Optional.
	Ping func(ctx context.Context) error

	// Close releases stores and connections. Optional.
	Close func() error
}

// Bootstrapper builds services from the config file at configPath.
// On failure it may still return Services with only Settings set, so that
// a broken configuration can be repaired with "settings set".
type Bootstrapper func(ctx context.Context, configPath string) (*Services, error)

// Command annotations.
const (
	// annotationStandalone marks commands that need no services.
	annotationStandalone = "intrafact/standalone"

	// annotationSettingsOnly marks commands that only need the settings service.
	annotationSettingsOnly = "intrafact/settings-only"
)

var (
	ingestService    driving.IngestService
	retrievalService driving.RetrievalService
	answerService    driving.AnswerService
	statusService    driving.StatusService
	settingsService  driving.SettingsService
	pingServices     func(ctx context.Context) error
	closeServices    func() error

	bootstrap Bootstrapper

	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "intrafact",
	Short: "Ask questions about your local documents",
	Long: `intrafact indexes local documents into a vector store and answers
questions about them with a language model.

Questions that need your documents are answered from the closest chunks;
general questions are answered directly.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"config file (default ~/.intrafact/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetBootstrap sets how services are built before a command runs.
func SetBootstrap(b Bootstrapper) {
	bootstrap = b
}

// SetServices injects services directly.
func SetServices(s *Services) {
	ingestService = s.Ingest
	retrievalService = s.Retrieval
	answerService = s.Answer
	statusService = s.Status
	settingsService = s.Settings
	pingServices = s.Ping
	closeServices = s.Close
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	// PersistentPostRunE is skipped when a command fails.
	if cerr := teardown(rootCmd, nil); cerr != nil {
		err = errors.Join(err, cerr)
	}
	return err
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("load .env: %v", err)
	}

	if bootstrap == nil || hasAnnotation(cmd, annotationStandalone) || cmd.Name() == "help" {
		return nil
	}

	svc, err := bootstrap(cmd.Context(), configPath)
	if svc != nil {
		SetServices(svc)
	}
	if err != nil {
		if hasAnnotation(cmd, annotationSettingsOnly) && settingsService != nil {
			logger.Warn("%v", err)
			return nil
		}
		return fmt.Errorf("initialise: %w", err)
	}
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if closeServices == nil {
		return nil
	}
	closer := closeServices
	closeServices = nil
	if err := closer(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}

// hasAnnotation reports whether cmd or any parent carries the annotation.
func hasAnnotation(cmd *cobra.Command, name string) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[name] == "true" {
			return true
		}
	}
	return false
}

func standalone() map[string]string {
	return map[string]string{annotationStandalone: "true"}
}

func settingsOnly() map[string]string {
	return map[string]string{annotationSettingsOnly: "true"}
}
