package detect

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chastnik/mm-bot/internal/catalog"
	"github.com/chastnik/mm-bot/internal/config"
	"github.com/chastnik/mm-bot/internal/llm"
	"github.com/chastnik/mm-bot/internal/models"
	"github.com/chastnik/mm-bot/pkg/utils"
)

// ErrBackendUnavailable is returned when the model backend keeps failing
// after the bounded retry budget. Partial verdicts are discarded: a partial
// report would claim "not found" for artifacts that were never checked.
var ErrBackendUnavailable = errors.New("detection backend unavailable")

// ErrNoContent is returned when none of the session's documents yielded any
// extractable text.
var ErrNoContent = errors.New("no analyzable document content")

// maxExcerptRunes bounds evidence excerpts stored on findings.
const maxExcerptRunes = 300

// Detector runs artifact detection; the interface exists so the session
// layer can be tested with a stub.
type Detector interface {
	Detect(ctx context.Context, docs []*models.SourceDocument, artifacts []catalog.Definition) ([]models.ArtifactVerdict, error)
}

// Engine is the production Detector backed by an LLM client.
type Engine struct {
	llm     llm.Client
	cfg     config.AnalysisConfig
	chunker *Chunker
	logger  *zap.Logger
}

// NewEngine creates a detection engine.
func NewEngine(client llm.Client, cfg config.AnalysisConfig, logger *zap.Logger) *Engine {
	return &Engine{
		llm:     client,
		cfg:     cfg,
		chunker: NewChunker(cfg.ChunkWords, cfg.ChunkOverlapWords),
		logger:  logger,
	}
}

// preparedDoc is one usable document with its chunks and optional prescreen index.
type preparedDoc struct {
	doc    *models.SourceDocument
	chunks []Chunk
	screen *prescreen
}

// Detect checks every artifact against every usable document. Per-(artifact,
// document) model calls run on a bounded worker pool; chunk findings feed the
// order-independent dominance aggregation, so concurrency does not affect the
// result. A backend failure that survives the retry budget aborts the whole
// call.
func (e *Engine) Detect(ctx context.Context, docs []*models.SourceDocument, artifacts []catalog.Definition) ([]models.ArtifactVerdict, error) {
	prepared := make([]preparedDoc, 0, len(docs))
	for _, doc := range docs {
		if !doc.Usable() {
			continue
		}
		chunks := e.chunker.Chunk(doc.Text)
		if len(chunks) == 0 {
			continue
		}
		pd := preparedDoc{doc: doc, chunks: chunks}
		if len(chunks) > e.cfg.MaxChunksPerArtifact {
			screen, err := newPrescreen(chunks)
			if err != nil {
				e.logger.Warn("prescreen index failed, using leading chunks",
					zap.String("document", doc.DisplayName), zap.Error(err))
			} else {
				pd.screen = screen
			}
		}
		prepared = append(prepared, pd)
	}
	if len(prepared) == 0 {
		return nil, ErrNoContent
	}
	defer func() {
		for _, pd := range prepared {
			if pd.screen != nil {
				_ = pd.screen.Close()
			}
		}
	}()

	var mu sync.Mutex
	findings := make(map[string][]models.Finding, len(artifacts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for _, def := range artifacts {
		for _, pd := range prepared {
			def, pd := def, pd
			g.Go(func() error {
				fs, err := e.detectOne(gctx, def, pd)
				if err != nil {
					return err
				}
				mu.Lock()
				findings[def.ID] = append(findings[def.ID], fs...)
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	verdicts := make([]models.ArtifactVerdict, 0, len(artifacts))
	for _, def := range artifacts {
		verdicts = append(verdicts, Aggregate(def.ID, findings[def.ID], e.cfg.MaxEvidence))
	}
	return verdicts, nil
}

// detectOne queries the model for one artifact against one document,
// chunk by chunk.
func (e *Engine) detectOne(ctx context.Context, def catalog.Definition, pd preparedDoc) ([]models.Finding, error) {
	chunks := pd.chunks
	if pd.screen != nil {
		chunks = pd.screen.Rank(def, e.cfg.MaxChunksPerArtifact)
	} else if len(chunks) > e.cfg.MaxChunksPerArtifact {
		chunks = chunks[:e.cfg.MaxChunksPerArtifact]
	}

	out := make([]models.Finding, 0, len(chunks))
	for _, chunk := range chunks {
		excerpt := utils.Truncate(chunk.Text, e.cfg.MaxDocChars)
		response, err := e.complete(ctx, systemPrompt, buildPrompt(def, pd.doc, excerpt))
		if err != nil {
			return nil, err
		}

		finding := models.Finding{ArtifactID: def.ID, DocumentID: pd.doc.ID}
		result := parseResponse(response)
		if !result.OK {
			// Malformed structure degrades to not_found; it must not fail the run.
			e.logger.Warn("malformed model response",
				zap.String("artifact", def.ID),
				zap.String("document", pd.doc.DisplayName),
				zap.String("response", utils.Truncate(result.Raw, 200)))
			finding.Status = models.StatusNotFound
			finding.Confidence = 0
		} else {
			finding.Status = result.Finding.Status
			finding.Confidence = result.Finding.Confidence
			finding.Source = result.Finding.Source
			finding.Evidence = utils.Truncate(result.Finding.Evidence, maxExcerptRunes)
		}
		out = append(out, finding)
	}
	return out, nil
}

// complete calls the LLM with the bounded retry policy. Only transport
// failures are retried; context cancellation stops immediately.
func (e *Engine) complete(ctx context.Context, system, prompt string) (string, error) {
	var response string
	operation := func() error {
		var err error
		response, err = e.llm.Complete(ctx, system, prompt)
		if err != nil && ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(e.cfg.MaxRetries)),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return response, nil
}
