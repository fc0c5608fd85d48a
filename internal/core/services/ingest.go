package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/intrafact/internal/core/domain"
	"github.com/custodia-labs/intrafact/internal/core/ports/driven"
	"github.com/custodia-labs/intrafact/internal/core/ports/driving"
	"github.com/custodia-labs/intrafact/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestOptions tunes an IngestService.
type IngestOptions struct {
	// Workers bounds the number of files processed concurrently.
	Workers int
	// BatchSize bounds the number of chunks per embedding call.
	BatchSize int
	// Recursive descends into subdirectories when expanding paths.
	Recursive bool
	// Timeout bounds each adapter call. Zero means no per-call limit.
	Timeout time.Duration
}

// IngestOptionsFrom derives options from application settings.
func IngestOptionsFrom(s *domain.AppSettings) IngestOptions {
	return IngestOptions{
		Workers:   s.Ingest.Workers,
		BatchSize: s.Ingest.BatchSize,
		Recursive: s.Ingest.Recursive,
		Timeout:   s.AdapterTimeout,
	}
}

func (o IngestOptions) normalised() IngestOptions {
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 64
	}
	return o
}

// IngestService loads local files into the vector index.
//
// A processed record is committed only after every chunk of the document
// has been embedded and upserted. If anything fails after the first
// upsert, the upserted chunks are deleted again.
type IngestService struct {
	extractors driven.ExtractorRegistry
	gate       *Gate
	pipeline   driven.PostProcessorPipeline
	embedder   driven.EmbeddingService
	index      driven.VectorIndex
	processed  driven.ProcessedIndex
	opts       IngestOptions
	now        func() time.Time

	// inflight maps content hashes being indexed to a channel closed when done.
	inflight sync.Map
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	extractors driven.ExtractorRegistry,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	processed driven.ProcessedIndex,
	opts IngestOptions,
) *IngestService {
	return &IngestService{
		extractors: extractors,
		gate:       NewGate(processed),
		pipeline:   pipeline,
		embedder:   embedder,
		index:      index,
		processed:  processed,
		opts:       opts.normalised(),
		now:        time.Now,
	}
}

// Ingest expands paths and processes every file with a bounded worker pool.
// Per-file failures are reported in the result. The returned error is
// non-nil only for invalid input or cancellation.
func (s *IngestService) Ingest(ctx context.Context, paths []string) (*domain.IngestReport, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no paths to ingest", domain.ErrInvalidInput)
	}

	logger.Section("Ingest")
	files, missing := s.expand(paths)
	logger.Info("Ingesting %d files with %d workers", len(files), s.opts.Workers)

	report := &domain.IngestReport{Files: make([]domain.FileResult, len(files), len(files)+len(missing))}

	var g errgroup.Group
	g.SetLimit(s.opts.Workers)
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				report.Files[i] = domain.FileResult{Path: path, Outcome: domain.OutcomeFailed, Err: err}
				return nil
			}
			report.Files[i] = s.IngestFile(ctx, path)
			return nil
		})
	}
	_ = g.Wait()

	report.Files = append(report.Files, missing...)

	logger.Info("Ingest complete: %s", logger.Fields(
		"processed", report.Count(domain.OutcomeProcessed),
		"duplicate", report.Count(domain.OutcomeDuplicate),
		"empty", report.Count(domain.OutcomeEmpty),
		"unreadable", report.Count(domain.OutcomeUnreadable),
		"failed", report.Count(domain.OutcomeFailed),
		"chunks", report.Chunks(),
	))

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// IngestFile processes a single file end to end.
func (s *IngestService) IngestFile(ctx context.Context, path string) domain.FileResult {
	result := domain.FileResult{Path: path}

	raw, err := s.extract(ctx, path)
	if err != nil {
		logger.Warn("skipping %s: %v", path, err)
		result.Outcome = domain.OutcomeUnreadable
		result.Err = err
		return result
	}

	hash := domain.ContentHash(raw.Text)
	release, err := s.claim(ctx, hash, path)
	if err != nil {
		logger.Warn("failed %s: %v", path, err)
		result.Outcome = domain.OutcomeFailed
		result.Err = err
		return result
	}
	defer release()

	admitCtx, cancel := adapterContext(ctx, s.opts.Timeout)
	admission, err := s.gate.Admit(admitCtx, raw)
	cancel()
	if err != nil {
		logger.Warn("failed %s: %v", path, err)
		result.Outcome = domain.OutcomeFailed
		result.Err = err
		return result
	}

	switch admission.Decision {
	case AdmitEmpty:
		logger.Warn("skipping %s: %v", path, domain.ErrEmptyContent)
		result.Outcome = domain.OutcomeEmpty
		return result
	case AdmitDuplicate:
		logger.Debug("skipping %s: %v", path, domain.ErrDuplicateContent)
		result.Outcome = domain.OutcomeDuplicate
		result.DocumentID = admission.Existing.DocumentID
		return result
	}

	doc := admission.Document
	n, err := s.store(ctx, doc)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			logger.Debug("skipping %s: committed concurrently", path)
			result.Outcome = domain.OutcomeDuplicate
			return result
		}
		logger.Warn("failed %s: %v", path, err)
		result.Outcome = domain.OutcomeFailed
		result.Err = err
		return result
	}

	logger.Debug("indexed %s", logger.Fields("file", path, "document", doc.ID, "chunks", n))
	result.Outcome = domain.OutcomeProcessed
	result.DocumentID = doc.ID
	result.Chunks = n
	return result
}

// claim makes the caller the only worker indexing hash. A worker holding an
// identical file waits for the current owner and then goes through the gate
// itself, so it sees the owner's commit, or retries if the owner failed.
func (s *IngestService) claim(ctx context.Context, hash, path string) (func(), error) {
	for {
		mine := make(chan struct{})
		owner, busy := s.inflight.LoadOrStore(hash, mine)
		if !busy {
			return func() {
				s.inflight.Delete(hash)
				close(mine)
			}, nil
		}
		logger.Debug("%s: identical content already being indexed, waiting", path)
		select {
		case <-owner.(chan struct{}):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (s *IngestService) extract(ctx context.Context, path string) (*domain.RawDocument, error) {
	ctx, cancel := adapterContext(ctx, s.opts.Timeout)
	defer cancel()
	return s.extractors.Extract(ctx, path)
}

// store chunks, embeds and upserts doc, then commits its processed record.
func (s *IngestService) store(ctx context.Context, doc *domain.Document) (int, error) {
	chunks, err := s.pipeline.Process(ctx, doc)
	if err != nil {
		return 0, fmt.Errorf("chunk: %w", err)
	}
	if len(chunks) == 0 {
		return 0, domain.ErrEmptyContent
	}

	var upserted []string
	for start := 0; start < len(chunks); start += s.opts.BatchSize {
		end := min(start+s.opts.BatchSize, len(chunks))
		batch := chunks[start:end]

		if err := s.embed(ctx, batch); err != nil {
			s.compensate(ctx, upserted)
			return 0, err
		}
		// A failed upsert may have written part of the batch.
		for _, c := range batch {
			upserted = append(upserted, c.ID)
		}
		if err := s.upsert(ctx, batch); err != nil {
			s.compensate(ctx, upserted)
			return 0, err
		}
	}

	record := domain.ProcessedRecord{
		ContentHash: doc.ContentHash(),
		DocumentID:  doc.ID,
		FileName:    doc.FileName(),
		FilePath:    metaString(doc.Metadata, domain.MetaFilePath),
		ChunkCount:  len(chunks),
		StoredAt:    s.now().UTC(),
	}

	commitCtx, cancel := adapterContext(ctx, s.opts.Timeout)
	err = s.processed.Commit(commitCtx, record)
	cancel()
	if err != nil {
		s.compensate(ctx, upserted)
		if errors.Is(err, domain.ErrAlreadyExists) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: commit processed record: %w", domain.ErrIndexWrite, err)
	}
	return len(chunks), nil
}

func (s *IngestService) embed(ctx context.Context, batch []domain.Chunk) error {
	if s.embedder == nil {
		return fmt.Errorf("%w: %w", domain.ErrEmbedding, domain.ErrEmbeddingUnavailable)
	}
	defer logger.Timed(fmt.Sprintf("embed %d chunks", len(batch)))()

	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Content
	}

	ctx, cancel := adapterContext(ctx, s.opts.Timeout)
	defer cancel()
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("%w: got %d vectors for %d chunks", domain.ErrEmbedding, len(vectors), len(batch))
	}
	for i := range batch {
		if len(vectors[i]) == 0 {
			return fmt.Errorf("%w: empty vector for chunk %d", domain.ErrEmbedding, batch[i].ChunkIndex)
		}
		batch[i].Embedding = vectors[i]
	}
	return nil
}

func (s *IngestService) upsert(ctx context.Context, batch []domain.Chunk) error {
	b := driven.UpsertBatch{
		IDs:       make([]string, len(batch)),
		Vectors:   make([][]float32, len(batch)),
		Documents: make([]string, len(batch)),
		Metadatas: make([]map[string]any, len(batch)),
	}
	for i, c := range batch {
		b.IDs[i] = c.ID
		b.Vectors[i] = c.Embedding
		b.Documents[i] = c.Content
		b.Metadatas[i] = c.Metadata
	}

	ctx, cancel := adapterContext(ctx, s.opts.Timeout)
	defer cancel()
	if err := s.index.Upsert(ctx, b); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrIndexWrite, err)
	}
	return nil
}

// compensate removes chunks of a document that will not be committed.
// It runs even when ctx is already cancelled.
func (s *IngestService) compensate(ctx context.Context, ids []string) {
	if len(ids) == 0 {
		return
	}
	ctx, cancel := adapterContext(context.WithoutCancel(ctx), s.opts.Timeout)
	defer cancel()
	if err := s.index.Delete(ctx, ids); err != nil {
		logger.Error("could not remove %d orphaned chunks: %v", len(ids), err)
		return
	}
	logger.Debug("removed %d uncommitted chunks", len(ids))
}

// expand turns paths into a sorted, de-duplicated file list. Hidden
// entries inside directories are skipped. Paths that cannot be read are
// returned as unreadable results.
func (s *IngestService) expand(paths []string) ([]string, []domain.FileResult) {
	seen := make(map[string]bool)
	var files []string
	var missing []domain.FileResult

	add := func(path string) {
		key := filepath.Clean(path)
		if abs, err := filepath.Abs(key); err == nil {
			key = abs
		}
		if !seen[key] {
			seen[key] = true
			files = append(files, path)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			logger.Warn("skipping %s: %v", root, err)
			missing = append(missing, domain.FileResult{
				Path: root, Outcome: domain.OutcomeUnreadable,
				Err: fmt.Errorf("%w: %w", domain.ErrExtraction, err),
			})
			continue
		}
		if !info.IsDir() {
			add(root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logger.Warn("skipping %s: %v", path, err)
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if path == root {
				return nil
			}
			if isHidden(d.Name()) {
				if d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if !s.opts.Recursive {
					return fs.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() {
				add(path)
			}
			return nil
		})
		if err != nil {
			logger.Warn("walking %s: %v", root, err)
		}
	}

	sort.Strings(files)
	return files, missing
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func metaString(meta map[string]any, key string) string {
	v, _ := meta[key].(string)
	return v
}
