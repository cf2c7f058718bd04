// Package bot wires the platform, session, detection and report packages
// into the conversational workflow.
package bot

import (
	"context"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/chastnik/mm-bot/internal/catalog"
	"github.com/chastnik/mm-bot/internal/config"
	"github.com/chastnik/mm-bot/internal/confluence"
	"github.com/chastnik/mm-bot/internal/dedup"
	"github.com/chastnik/mm-bot/internal/detect"
	"github.com/chastnik/mm-bot/internal/models"
	"github.com/chastnik/mm-bot/internal/normalize"
	"github.com/chastnik/mm-bot/internal/platform"
	"github.com/chastnik/mm-bot/internal/session"
)

// sendRetries bounds retry attempts for outbound platform messages.
const sendRetries = 2

// Stats are live counters exposed on the ops endpoint.
type Stats struct {
	AnalysesStarted   int64 `json:"analyses_started"`
	AnalysesCompleted int64 `json:"analyses_completed"`
	AnalysesFailed    int64 `json:"analyses_failed"`
}

// Bot runs the polling dispatch loop. Events are applied sequentially in
// (timestamp, id) order; only analysis itself runs on background goroutines,
// tagged with the session generation so stale results are dropped.
type Bot struct {
	platform   platform.Client
	dedup      *dedup.Deduplicator
	sessions   *session.Store
	registry   *catalog.Registry
	normalizer *normalize.Normalizer
	detector   detect.Detector
	renderer   Renderer
	logger     *zap.Logger
	poll       time.Duration

	started   atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
}

// Renderer is the report surface the bot needs; satisfied by report.Renderer.
type Renderer interface {
	Render(selected []string, verdicts []models.ArtifactVerdict, docs []*models.SourceDocument) ([]byte, error)
}

// New assembles a bot from its collaborators.
func New(
	client platform.Client,
	sessions *session.Store,
	registry *catalog.Registry,
	normalizer *normalize.Normalizer,
	detector detect.Detector,
	renderer Renderer,
	cfg *config.Config,
	logger *zap.Logger,
) *Bot {
	return &Bot{
		platform:   client,
		dedup:      dedup.NewDeduplicator(cfg.Session.DedupWindow, logger),
		sessions:   sessions,
		registry:   registry,
		normalizer: normalizer,
		detector:   detector,
		renderer:   renderer,
		logger:     logger,
		poll:       time.Duration(cfg.Mattermost.PollIntervalSeconds) * time.Second,
	}
}

// Stats returns a snapshot of the live counters.
func (b *Bot) Stats() Stats {
	return Stats{
		AnalysesStarted:   b.started.Load(),
		AnalysesCompleted: b.completed.Load(),
		AnalysesFailed:    b.failed.Load(),
	}
}

// SessionStats reports session counts per state.
func (b *Bot) SessionStats() map[session.State]int {
	return b.sessions.Stats()
}

// Run polls until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("dispatch loop started", zap.Duration("poll_interval", b.poll))
	ticker := time.NewTicker(b.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("dispatch loop stopped")
			return ctx.Err()
		case <-ticker.C:
			b.cycle(ctx)
		}
	}
}

// cycle runs one poll iteration.
func (b *Bot) cycle(ctx context.Context) {
	events, err := b.platform.Poll(ctx)
	if err != nil {
		b.logger.Warn("poll failed", zap.Error(err))
		return
	}
	for _, ev := range b.dedup.Process(events, b.platform.IsDirect) {
		b.handleEvent(ctx, ev)
	}
}

// handleEvent applies one inbound event to its user's session.
func (b *Bot) handleEvent(ctx context.Context, ev models.InboundEvent) {
	sess := b.sessions.Get(ev.UserID, ev.ChannelID)
	cmd := session.ParseCommand(ev.Text)

	// A start command resets the workflow from any state, including a
	// running analysis, which the generation bump makes stale.
	if cmd == session.CmdStart {
		sess.StartSelection()
		b.send(ctx, sess.ChannelID, msgSelectTypes(b.registry.ProjectTypes()))
		return
	}
	if cmd == session.CmdHelp {
		b.send(ctx, sess.ChannelID, msgHelp)
		return
	}

	switch sess.State() {
	case session.StateIdle:
		// First contact starts the workflow regardless of wording.
		sess.StartSelection()
		b.send(ctx, sess.ChannelID, msgSelectTypes(b.registry.ProjectTypes()))
	case session.StateSelectingTypes:
		b.handleSelection(ctx, sess, ev.Text, cmd)
	case session.StateAwaitingDocs:
		b.handleDocuments(ctx, sess, ev, cmd)
	case session.StateConfirmMoreDocs:
		b.handleConfirmMore(ctx, sess, ev, cmd)
	case session.StateAnalyzing, session.StateReporting:
		// Analysis in progress; do not disturb the state.
		b.logger.Debug("message ignored during analysis",
			zap.String("user_id", sess.UserID), zap.String("state", sess.State().String()))
	case session.StateError:
		b.handleError(ctx, sess, cmd)
	}
}

func (b *Bot) handleSelection(ctx context.Context, sess *session.Session, text string, cmd session.CommandKind) {
	if cmd == session.CmdConfirm {
		if err := sess.ConfirmTypes(); err != nil {
			b.send(ctx, sess.ChannelID, msgEmptySelection)
			return
		}
		b.send(ctx, sess.ChannelID, msgAwaitDocuments)
		return
	}

	codes := b.matchTypeCodes(text)
	if len(codes) == 0 {
		b.send(ctx, sess.ChannelID, msgUnknownSelection)
		return
	}
	var added, removed []string
	for _, code := range codes {
		selected, err := sess.ToggleType(code)
		if err != nil {
			return
		}
		if selected {
			added = append(added, code)
		} else {
			removed = append(removed, code)
		}
	}
	b.send(ctx, sess.ChannelID, msgSelectionChanged(added, removed, sess.SelectedTypes(), b.registry.TypeName))
}

// matchTypeCodes extracts project type codes from a selection message. Codes
// are matched as comma or space separated tokens, full type names by
// substring, both case-insensitively. Each code is returned once.
func (b *Bot) matchTypeCodes(text string) []string {
	lower := strings.ToLower(text)
	tokens := strings.FieldsFunc(lower, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\n' || r == '\t'
	})

	seen := make(map[string]bool)
	var codes []string
	add := func(code string) {
		if !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	for _, t := range b.registry.ProjectTypes() {
		code := strings.ToLower(t.Code)
		for _, token := range tokens {
			if token == code {
				add(t.Code)
			}
		}
		if name := strings.ToLower(t.Name); name != "" && strings.Contains(lower, name) {
			add(t.Code)
		}
	}
	return codes
}

func (b *Bot) handleDocuments(ctx context.Context, sess *session.Session, ev models.InboundEvent, cmd session.CommandKind) {
	accepted := b.intake(ctx, sess, ev)

	switch cmd {
	case session.CmdAnalyze:
		b.startAnalysis(ctx, sess)
		return
	case session.CmdAddMore:
		b.send(ctx, sess.ChannelID, msgAddMoreHint)
		return
	case session.CmdConfirm:
		// «готово» during intake reads as "start the analysis".
		b.startAnalysis(ctx, sess)
		return
	}
	if accepted > 0 {
		return
	}
	if !session.IsNoise(ev.Text) {
		b.send(ctx, sess.ChannelID, msgHelp)
	}
}

// intake normalizes the event's attachments and Confluence links into the
// session, reporting each acceptance or failure to the user. Returns how
// many documents were taken in.
func (b *Bot) intake(ctx context.Context, sess *session.Session, ev models.InboundEvent) int {
	count := 0
	record := func(doc *models.SourceDocument) {
		if err := sess.AddDocument(doc); err != nil {
			b.logger.Warn("document arrived in wrong state",
				zap.String("user_id", sess.UserID), zap.Error(err))
			return
		}
		count++
		b.send(ctx, sess.ChannelID, msgDocumentAccepted(doc))
	}

	for _, att := range ev.Attachments {
		data, err := b.platform.FetchAttachment(ctx, att.ID)
		if err != nil {
			b.logger.Warn("attachment download failed",
				zap.String("file_id", att.ID), zap.Error(err))
			doc := &models.SourceDocument{
				DisplayName: att.Name,
				Origin:      models.OriginUpload,
				Format:      filepath.Ext(att.Name),
				Status:      models.ExtractionFailed,
				FailReason:  "extraction_failed",
				CreatedAt:   time.Now(),
			}
			record(doc)
			continue
		}
		record(b.normalizer.FromUpload(att.Name, data))
	}
	for _, link := range confluence.ExtractLinks(ev.Text) {
		record(b.normalizer.FromConfluence(ctx, link))
	}
	return count
}

func (b *Bot) handleConfirmMore(ctx context.Context, sess *session.Session, ev models.InboundEvent, cmd session.CommandKind) {
	// Documents sent at the confirmation prompt count as "add more": move
	// back to intake and process them right away.
	if len(ev.Attachments) > 0 || len(confluence.ExtractLinks(ev.Text)) > 0 {
		if err := sess.RequestMore(); err == nil {
			b.intake(ctx, sess, ev)
		}
		return
	}

	switch cmd {
	case session.CmdAddMore:
		if err := sess.RequestMore(); err == nil {
			b.send(ctx, sess.ChannelID, msgAddMoreHint)
		}
	case session.CmdAnalyze:
		if err := sess.RequestMore(); err == nil {
			b.startAnalysis(ctx, sess)
		}
	default:
		// Short chatter is ignored; anything that looks like a real
		// question gets the prompt repeated.
		if !session.IsNoise(ev.Text) {
			b.send(ctx, sess.ChannelID, msgConfirmMore)
		}
	}
}

func (b *Bot) handleError(ctx context.Context, sess *session.Session, cmd session.CommandKind) {
	switch cmd {
	case session.CmdAnalyze:
		b.startAnalysis(ctx, sess)
	default:
		b.send(ctx, sess.ChannelID, msgHelp)
	}
}

// send delivers a message with a bounded retry; delivery failure is logged
// and otherwise swallowed so the dispatch loop keeps running.
func (b *Bot) send(ctx context.Context, channelID, text string) {
	operation := func() error {
		return b.platform.Send(ctx, channelID, text)
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), sendRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		b.logger.Error("message delivery failed",
			zap.String("channel_id", channelID), zap.Error(err))
	}
}

// sendAttachment posts a file with the same bounded retry as send, but
// reports failure to the caller so the session can be moved to error.
func (b *Bot) sendAttachment(ctx context.Context, channelID, text, filename string, data []byte) error {
	operation := func() error {
		return b.platform.SendWithAttachment(ctx, channelID, text, filename, data)
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), sendRetries), ctx)
	return backoff.Retry(operation, policy)
}
