// Package app wires the driven adapters into the core services.
package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/intrafact/internal/adapters/driven/ai"
	"github.com/custodia-labs/intrafact/internal/adapters/driven/config/file"
	"github.com/custodia-labs/intrafact/internal/adapters/driving/cli"
	"github.com/custodia-labs/intrafact/internal/core/domain"
	"github.com/custodia-labs/intrafact/internal/core/services"
	"github.com/custodia-labs/intrafact/internal/extractors"
	"github.com/custodia-labs/intrafact/internal/logger"
	"github.com/custodia-labs/intrafact/internal/postprocessors"
)

// promptDirName is the prompt directory, relative to the config file.
const promptDirName = "prompts"

// Bootstrap builds every service from the config file at configPath.
//
// When the configuration cannot be turned into working adapters the
// returned Services still carry the settings service, so the file can be
// repaired from the command line.
func Bootstrap(_ context.Context, configPath string) (*cli.Services, error) {
	defer logger.Timed("bootstrap")()

	store, err := file.NewConfigStore(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	settingsSvc := services.NewSettingsService(store)
	out := &cli.Services{Settings: settingsSvc}

	settings, err := settingsSvc.Get()
	if err != nil {
		return out, fmt.Errorf("read settings: %w", err)
	}
	if err := settings.Chunking.Validate(); err != nil {
		return out, err
	}

	pipeline, err := postprocessors.DefaultRegistry().BuildPipeline(domain.PipelineConfigFor(settings.Chunking))
	if err != nil {
		return out, fmt.Errorf("build pipeline: %w", err)
	}

	adapters, err := ai.Initialise(settings)
	if err != nil {
		return out, err
	}

	prompts, err := file.NewPromptStore(filepath.Join(filepath.Dir(store.Path()), promptDirName))
	if err != nil {
		adapters.Close()
		return out, err
	}

	retriever := services.NewRetriever(adapters.EmbeddingService, adapters.VectorIndex, settings.AdapterTimeout)
	answerer := services.NewAnswerer(adapters.LLMService, retriever, services.QueryOptionsFrom(settings))
	answerer.SetPromptStore(prompts)

	out.Ingest = services.NewIngestService(
		extractors.DefaultRegistry(),
		pipeline,
		adapters.EmbeddingService,
		adapters.VectorIndex,
		adapters.ProcessedIndex,
		services.IngestOptionsFrom(settings),
	)
	out.Retrieval = retriever
	out.Answer = answerer
	out.Status = services.NewStatusService(
		adapters.ProcessedIndex,
		adapters.VectorIndex,
		adapters.EmbeddingService,
		adapters.LLMService,
	)
	out.Ping = adapters.Ping
	out.Close = func() error {
		adapters.Close()
		return nil
	}

	logger.Debug("services ready %s", logger.Fields(
		"backend", settings.VectorIndex.Backend,
		"embedding", settings.Embedding.Model,
		"llm", settings.LLM.Model,
	))
	return out, nil
}
