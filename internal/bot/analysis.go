package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/chastnik/mm-bot/internal/detect"
	"github.com/chastnik/mm-bot/internal/models"
	"github.com/chastnik/mm-bot/internal/session"
)

// startAnalysis moves the session into analyzing and runs detection on a
// background goroutine. The generation tag taken at start guards every
// completion path: if the user resets the session meanwhile, the result is
// discarded silently.
func (b *Bot) startAnalysis(ctx context.Context, sess *session.Session) {
	gen, docs, err := sess.BeginAnalysis()
	if err != nil {
		if errors.Is(err, session.ErrNoDocuments) {
			b.send(ctx, sess.ChannelID, msgNoDocuments)
		}
		return
	}

	b.started.Add(1)
	b.send(ctx, sess.ChannelID, msgAnalysisStarted(len(docs)))
	selected := sess.SelectedTypes()
	artifacts := b.registry.ForSelection(selected)

	go func() {
		start := time.Now()
		verdicts, err := b.detector.Detect(ctx, docs, artifacts)
		if err != nil {
			if !sess.FailAnalysis(gen) {
				b.logger.Debug("stale analysis failure discarded",
					zap.String("user_id", sess.UserID), zap.Uint64("generation", gen))
				return
			}
			b.failed.Add(1)
			b.logger.Error("analysis failed",
				zap.String("user_id", sess.UserID),
				zap.Int("documents", len(docs)),
				zap.Error(err))
			if errors.Is(err, detect.ErrNoContent) {
				b.send(ctx, sess.ChannelID, msgAnalysisNoContent)
			} else {
				b.send(ctx, sess.ChannelID, msgAnalysisBackendDown)
			}
			return
		}

		if !sess.CompleteAnalysis(gen, verdicts) {
			b.logger.Debug("stale analysis result discarded",
				zap.String("user_id", sess.UserID), zap.Uint64("generation", gen))
			return
		}
		b.logger.Info("analysis completed",
			zap.String("user_id", sess.UserID),
			zap.Int("documents", len(docs)),
			zap.Int("artifacts", len(artifacts)),
			zap.Duration("took", time.Since(start)))
		b.deliverReport(ctx, sess, gen, selected, verdicts, docs)
	}()
}

// deliverReport renders the PDF and posts it with the chat summary. It works
// only on the snapshots captured when the analysis started: the session may
// be reset concurrently, so its current verdicts and documents cannot be
// trusted here. The generation is re-checked before the slow rendering step
// and again right before delivery so a reset mid-render drops the report.
func (b *Bot) deliverReport(ctx context.Context, sess *session.Session, gen uint64, selected []string, verdicts []models.ArtifactVerdict, docs []*models.SourceDocument) {
	if gen != sess.Generation() {
		b.logger.Debug("stale report discarded before rendering",
			zap.String("user_id", sess.UserID), zap.Uint64("generation", gen))
		return
	}
	b.send(ctx, sess.ChannelID, msgReportInProgress(len(docs)))

	pdf, err := b.renderer.Render(selected, verdicts, docs)
	if err != nil {
		b.logger.Error("report rendering failed",
			zap.String("user_id", sess.UserID), zap.Error(err))
		if sess.FailReport(gen) {
			b.failed.Add(1)
			b.send(ctx, sess.ChannelID, msgReportFailed)
		}
		return
	}

	if gen != sess.Generation() {
		b.logger.Debug("stale report discarded before delivery",
			zap.String("user_id", sess.UserID), zap.Uint64("generation", gen))
		return
	}
	filename := fmt.Sprintf("отчет_анализа_%s.pdf", time.Now().Format("2006-01-02_15-04"))
	summary := msgResultSummary(verdicts, b.registry.Lookup)
	if err := b.sendAttachment(ctx, sess.ChannelID, summary, filename, pdf); err != nil {
		b.logger.Error("report delivery failed",
			zap.String("user_id", sess.UserID), zap.Error(err))
		if sess.FailReport(gen) {
			b.failed.Add(1)
			b.send(ctx, sess.ChannelID, msgReportFailed)
		}
		return
	}

	if sess.FinishReport(gen) {
		b.completed.Add(1)
		b.send(ctx, sess.ChannelID, msgConfirmMore)
	}
}
