package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/chastnik/mm-bot/internal/catalog"
	"github.com/chastnik/mm-bot/internal/config"
	"github.com/chastnik/mm-bot/internal/detect"
	"github.com/chastnik/mm-bot/internal/models"
	"github.com/chastnik/mm-bot/internal/normalize"
	"github.com/chastnik/mm-bot/internal/session"
)

// fakePlatform records outbound traffic and serves canned attachments.
// attachFails makes the next N attachment sends fail, to exercise retries.
type fakePlatform struct {
	mu          sync.Mutex
	messages    []string
	reports     []string // filenames of delivered report attachments
	files       map[string][]byte
	batches     [][]models.InboundEvent
	attachFails int
}

func (p *fakePlatform) Poll(ctx context.Context) ([]models.InboundEvent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.batches) == 0 {
		return nil, nil
	}
	batch := p.batches[0]
	p.batches = p.batches[1:]
	return batch, nil
}

func (p *fakePlatform) Send(ctx context.Context, channelID, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, text)
	return nil
}

func (p *fakePlatform) SendWithAttachment(ctx context.Context, channelID, text, filename string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.attachFails > 0 {
		p.attachFails--
		return errors.New("gateway timeout")
	}
	p.messages = append(p.messages, text)
	p.reports = append(p.reports, filename)
	return nil
}

func (p *fakePlatform) FetchAttachment(ctx context.Context, fileID string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.files[fileID], nil
}

func (p *fakePlatform) IsDirect(channelID string) bool { return true }

func (p *fakePlatform) messageCount(substr string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, m := range p.messages {
		if strings.Contains(m, substr) {
			n++
		}
	}
	return n
}

func (p *fakePlatform) reportCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.reports)
}

// stubDetector returns canned verdicts, optionally failing or blocking.
type stubDetector struct {
	mu       sync.Mutex
	verdicts []models.ArtifactVerdict
	err      error
	gate     chan struct{} // when set, Detect blocks until the gate closes
	seenDocs [][]*models.SourceDocument
}

func (d *stubDetector) Detect(ctx context.Context, docs []*models.SourceDocument, artifacts []catalog.Definition) ([]models.ArtifactVerdict, error) {
	if d.gate != nil {
		<-d.gate
	}
	d.mu.Lock()
	d.seenDocs = append(d.seenDocs, docs)
	err := d.err
	verdicts := d.verdicts
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return verdicts, nil
}

type stubRenderer struct{}

func (stubRenderer) Render(selected []string, verdicts []models.ArtifactVerdict, docs []*models.SourceDocument) ([]byte, error) {
	return []byte("%PDF-1.4 stub"), nil
}

// gatedRenderer blocks in Render until its gate closes.
type gatedRenderer struct {
	gate chan struct{}
}

func (r gatedRenderer) Render(selected []string, verdicts []models.ArtifactVerdict, docs []*models.SourceDocument) ([]byte, error) {
	<-r.gate
	return []byte("%PDF-1.4 stub"), nil
}

func newTestBot(p *fakePlatform, d detect.Detector) *Bot {
	return newTestBotWithRenderer(p, d, stubRenderer{})
}

func newTestBotWithRenderer(p *fakePlatform, d detect.Detector, r Renderer) *Bot {
	cfg := &config.Config{}
	cfg.Session.DedupWindow = 100
	cfg.Mattermost.PollIntervalSeconds = 1
	logger := zap.NewNop()
	return New(
		p,
		session.NewStore(time.Hour),
		catalog.NewRegistry(),
		normalize.NewNormalizer(nil, logger),
		d,
		r,
		cfg,
		logger,
	)
}

func event(id, user, text string, atts ...models.Attachment) models.InboundEvent {
	return models.InboundEvent{
		ID: id, ChannelID: "dm-" + user, UserID: user,
		Text: text, Attachments: atts, CreateAt: time.Now().UnixMilli(),
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestScenario_biAnalysis(t *testing.T) {
	p := &fakePlatform{files: map[string][]byte{
		"f1": []byte("Паспорт проекта. Список KPI: выручка, маржа."),
	}}
	d := &stubDetector{verdicts: []models.ArtifactVerdict{
		{ArtifactID: "general.passport", Status: models.StatusFound},
		{ArtifactID: "bi.kpi-list", Status: models.StatusFound},
		{ArtifactID: "technical.architecture", Status: models.StatusNotFound},
	}}
	b := newTestBot(p, d)
	ctx := context.Background()

	b.handleEvent(ctx, event("e1", "u1", "привет"))
	if p.messageCount("Выберите типы проекта") != 1 {
		t.Fatal("first contact should prompt for project types")
	}

	b.handleEvent(ctx, event("e2", "u1", "BI"))
	if p.messageCount("Бизнес-аналитика") == 0 {
		t.Fatal("type selection should be acknowledged by name")
	}

	b.handleEvent(ctx, event("e3", "u1", "готово"))
	if p.messageCount("пришлите документы") == 0 && p.messageCount("Теперь пришлите") == 0 {
		t.Fatal("confirmation should ask for documents")
	}

	b.handleEvent(ctx, event("e4", "u1", "", models.Attachment{ID: "f1", Name: "паспорт.txt"}))
	if p.messageCount("получен и обработан") != 1 {
		t.Fatal("accepted document should be acknowledged")
	}

	b.handleEvent(ctx, event("e5", "u1", "анализ"))
	waitFor(t, "report delivery", func() bool { return p.reportCount() == 1 })

	if p.messageCount("✅ Паспорт проекта") == 0 {
		t.Error("summary should list found artifacts with emoji")
	}
	if p.messageCount("❌") == 0 {
		t.Error("summary should list missing artifacts")
	}

	sess := b.sessions.Get("u1", "dm-u1")
	waitFor(t, "confirm_more state", func() bool {
		return sess.State() == session.StateConfirmMoreDocs
	})

	stats := b.Stats()
	if stats.AnalysesStarted != 1 || stats.AnalysesCompleted != 1 || stats.AnalysesFailed != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestCycle_duplicateEventsAppliedOnce(t *testing.T) {
	batch := []models.InboundEvent{event("same-id", "u1", "привет")}
	p := &fakePlatform{batches: [][]models.InboundEvent{batch, batch}}
	b := newTestBot(p, &stubDetector{})
	ctx := context.Background()

	b.cycle(ctx)
	b.cycle(ctx)
	if got := p.messageCount("Выберите типы проекта"); got != 1 {
		t.Errorf("duplicate event should be applied once, got %d prompts", got)
	}
}

func TestFormatFailureIsolation(t *testing.T) {
	p := &fakePlatform{files: map[string][]byte{
		"ok":  []byte("нормальный документ"),
		"bad": {0x4d, 0x5a, 0x90},
	}}
	d := &stubDetector{verdicts: []models.ArtifactVerdict{}}
	b := newTestBot(p, d)
	ctx := context.Background()

	b.handleEvent(ctx, event("e1", "u1", "начать анализ"))
	b.handleEvent(ctx, event("e2", "u1", "BI"))
	b.handleEvent(ctx, event("e3", "u1", "готово"))
	b.handleEvent(ctx, event("e4", "u1", "",
		models.Attachment{ID: "ok", Name: "данные.txt"},
		models.Attachment{ID: "bad", Name: "installer.exe"},
	))

	if p.messageCount("не поддерживается") != 1 {
		t.Error("unsupported format should produce a warning")
	}
	sess := b.sessions.Get("u1", "dm-u1")
	if len(sess.Documents()) != 2 {
		t.Fatalf("both documents should be recorded, got %d", len(sess.Documents()))
	}
	if sess.State() != session.StateAwaitingDocs {
		t.Errorf("a failed document must not abort intake, state = %v", sess.State())
	}

	// Analysis proceeds and the engine receives both, usable or not.
	b.handleEvent(ctx, event("e5", "u1", "анализ"))
	waitFor(t, "analysis", func() bool { return p.reportCount() == 1 })
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.seenDocs) != 1 || len(d.seenDocs[0]) != 2 {
		t.Errorf("detector should see the full document batch")
	}
}

func TestStaleAnalysisDiscarded(t *testing.T) {
	p := &fakePlatform{files: map[string][]byte{"f1": []byte("текст")}}
	gate := make(chan struct{})
	d := &stubDetector{gate: gate, verdicts: []models.ArtifactVerdict{
		{ArtifactID: "general.passport", Status: models.StatusFound},
	}}
	b := newTestBot(p, d)
	ctx := context.Background()

	b.handleEvent(ctx, event("e1", "u1", "начать анализ"))
	b.handleEvent(ctx, event("e2", "u1", "BI"))
	b.handleEvent(ctx, event("e3", "u1", "готово"))
	b.handleEvent(ctx, event("e4", "u1", "", models.Attachment{ID: "f1", Name: "a.txt"}))
	b.handleEvent(ctx, event("e5", "u1", "анализ"))

	// The user restarts while the analysis is blocked in flight.
	b.handleEvent(ctx, event("e6", "u1", "начать анализ"))
	close(gate)

	// Give the stale goroutine time to finish and be discarded.
	time.Sleep(200 * time.Millisecond)
	if p.reportCount() != 0 {
		t.Error("stale analysis must not deliver a report")
	}
	sess := b.sessions.Get("u1", "dm-u1")
	if sess.State() != session.StateSelectingTypes {
		t.Errorf("restart must win over stale analysis, state = %v", sess.State())
	}
}

func TestStaleReportNotDeliveredAfterReset(t *testing.T) {
	p := &fakePlatform{files: map[string][]byte{"f1": []byte("текст")}}
	gate := make(chan struct{})
	d := &stubDetector{verdicts: []models.ArtifactVerdict{
		{ArtifactID: "general.passport", Status: models.StatusFound},
	}}
	b := newTestBotWithRenderer(p, d, gatedRenderer{gate: gate})
	ctx := context.Background()

	b.handleEvent(ctx, event("e1", "u1", "начать анализ"))
	b.handleEvent(ctx, event("e2", "u1", "BI"))
	b.handleEvent(ctx, event("e3", "u1", "готово"))
	b.handleEvent(ctx, event("e4", "u1", "", models.Attachment{ID: "f1", Name: "a.txt"}))
	b.handleEvent(ctx, event("e5", "u1", "анализ"))
	waitFor(t, "rendering to start", func() bool {
		return p.messageCount("Генерирую") == 1
	})

	// The user restarts while the PDF is being rendered.
	b.handleEvent(ctx, event("e6", "u1", "новый анализ"))
	close(gate)

	time.Sleep(200 * time.Millisecond)
	if got := p.reportCount(); got != 0 {
		t.Errorf("stale report must not be delivered after a reset, got %d", got)
	}
	sess := b.sessions.Get("u1", "dm-u1")
	if sess.State() != session.StateSelectingTypes {
		t.Errorf("restart must win over the in-flight report, state = %v", sess.State())
	}
}

// driveToConfirmMore runs one successful analysis so the session ends up at
// the "more documents?" prompt.
func driveToConfirmMore(t *testing.T, ctx context.Context, b *Bot, p *fakePlatform) *session.Session {
	t.Helper()
	b.handleEvent(ctx, event("s1", "u1", "начать анализ"))
	b.handleEvent(ctx, event("s2", "u1", "BI"))
	b.handleEvent(ctx, event("s3", "u1", "готово"))
	b.handleEvent(ctx, event("s4", "u1", "", models.Attachment{ID: "f1", Name: "a.txt"}))
	b.handleEvent(ctx, event("s5", "u1", "анализ"))
	sess := b.sessions.Get("u1", "dm-u1")
	waitFor(t, "confirm_more state", func() bool {
		return sess.State() == session.StateConfirmMoreDocs
	})
	return sess
}

func TestConfirmMore_documentsProcessed(t *testing.T) {
	p := &fakePlatform{files: map[string][]byte{
		"f1": []byte("текст"),
		"f2": []byte("ещё документ"),
	}}
	d := &stubDetector{verdicts: []models.ArtifactVerdict{
		{ArtifactID: "general.passport", Status: models.StatusFound},
	}}
	b := newTestBot(p, d)
	ctx := context.Background()
	sess := driveToConfirmMore(t, ctx, b, p)

	// A document sent at the prompt counts as "add more".
	b.handleEvent(ctx, event("e1", "u1", "", models.Attachment{ID: "f2", Name: "b.txt"}))
	if got := len(sess.Documents()); got != 2 {
		t.Fatalf("document sent at the prompt must be taken in, got %d documents", got)
	}
	if p.messageCount("получен и обработан") != 2 {
		t.Error("the new document should be acknowledged")
	}
	if sess.State() != session.StateAwaitingDocs {
		t.Errorf("intake should resume, state = %v", sess.State())
	}
}

func TestConfirmMore_noiseIgnored(t *testing.T) {
	p := &fakePlatform{files: map[string][]byte{"f1": []byte("текст")}}
	d := &stubDetector{verdicts: []models.ArtifactVerdict{
		{ArtifactID: "general.passport", Status: models.StatusFound},
	}}
	b := newTestBot(p, d)
	ctx := context.Background()
	driveToConfirmMore(t, ctx, b, p)

	before := p.messageCount("Хотите продолжить")
	b.handleEvent(ctx, event("e1", "u1", "ок"))
	b.handleEvent(ctx, event("e2", "u1", "1"))
	if got := p.messageCount("Хотите продолжить"); got != before {
		t.Errorf("short chatter must not repeat the prompt, %d -> %d", before, got)
	}

	b.handleEvent(ctx, event("e3", "u1", "а что мне теперь делать?"))
	if got := p.messageCount("Хотите продолжить"); got != before+1 {
		t.Errorf("a question should repeat the prompt once, %d -> %d", before, got)
	}
}

func TestReportDeliveryRetried(t *testing.T) {
	p := &fakePlatform{
		files:       map[string][]byte{"f1": []byte("текст")},
		attachFails: 1,
	}
	d := &stubDetector{verdicts: []models.ArtifactVerdict{
		{ArtifactID: "general.passport", Status: models.StatusFound},
	}}
	b := newTestBot(p, d)
	ctx := context.Background()
	driveToConfirmMore(t, ctx, b, p)

	if p.reportCount() != 1 {
		t.Fatal("report should be delivered on a retry after a transient failure")
	}
	if p.messageCount("Не удалось") != 0 {
		t.Error("a recovered delivery must not surface a failure message")
	}
	if stats := b.Stats(); stats.AnalysesCompleted != 1 || stats.AnalysesFailed != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestBackendUnavailable_recoverableByRetry(t *testing.T) {
	p := &fakePlatform{files: map[string][]byte{"f1": []byte("текст")}}
	d := &stubDetector{err: detect.ErrBackendUnavailable}
	b := newTestBot(p, d)
	ctx := context.Background()

	b.handleEvent(ctx, event("e1", "u1", "начать анализ"))
	b.handleEvent(ctx, event("e2", "u1", "DWH"))
	b.handleEvent(ctx, event("e3", "u1", "готово"))
	b.handleEvent(ctx, event("e4", "u1", "", models.Attachment{ID: "f1", Name: "a.txt"}))
	b.handleEvent(ctx, event("e5", "u1", "анализ"))

	waitFor(t, "failure message", func() bool {
		return p.messageCount("недоступен") == 1
	})
	sess := b.sessions.Get("u1", "dm-u1")
	waitFor(t, "error state", func() bool { return sess.State() == session.StateError })
	if len(sess.Documents()) != 1 {
		t.Fatal("documents must survive a backend failure")
	}

	// Backend recovers; a plain retry command reruns the analysis.
	d.mu.Lock()
	d.err = nil
	d.verdicts = []models.ArtifactVerdict{{ArtifactID: "general.passport", Status: models.StatusPartial}}
	d.mu.Unlock()

	b.handleEvent(ctx, event("e6", "u1", "анализ"))
	waitFor(t, "report after retry", func() bool { return p.reportCount() == 1 })
}

func TestAnalyzeWithoutDocumentsRejected(t *testing.T) {
	p := &fakePlatform{}
	b := newTestBot(p, &stubDetector{})
	ctx := context.Background()

	b.handleEvent(ctx, event("e1", "u1", "начать анализ"))
	b.handleEvent(ctx, event("e2", "u1", "RPA"))
	b.handleEvent(ctx, event("e3", "u1", "готово"))
	b.handleEvent(ctx, event("e4", "u1", "анализ"))

	if p.messageCount("Пока нет ни одного документа") != 1 {
		t.Error("analysis without documents should be rejected with a message")
	}
	if p.reportCount() != 0 {
		t.Error("no report should be produced")
	}
}

func TestEmptySelectionRejected(t *testing.T) {
	p := &fakePlatform{}
	b := newTestBot(p, &stubDetector{})
	ctx := context.Background()

	b.handleEvent(ctx, event("e1", "u1", "привет"))
	b.handleEvent(ctx, event("e2", "u1", "готово"))

	if p.messageCount("хотя бы один тип") != 1 {
		t.Error("leaving selection empty should be rejected")
	}
	sess := b.sessions.Get("u1", "dm-u1")
	if sess.State() != session.StateSelectingTypes {
		t.Errorf("state must stay in selection, got %v", sess.State())
	}
}

func TestNoiseIgnoredDuringIntake(t *testing.T) {
	p := &fakePlatform{}
	b := newTestBot(p, &stubDetector{})
	ctx := context.Background()

	b.handleEvent(ctx, event("e1", "u1", "начать анализ"))
	b.handleEvent(ctx, event("e2", "u1", "MDM"))
	b.handleEvent(ctx, event("e3", "u1", "готово"))

	before := p.messageCount("Команды")
	b.handleEvent(ctx, event("e4", "u1", "ок"))
	b.handleEvent(ctx, event("e5", "u1", "спасибо"))
	if p.messageCount("Команды") != before {
		t.Error("short noise in intake should be ignored silently")
	}

	b.handleEvent(ctx, event("e6", "u1", "а какие документы вообще нужны?"))
	if p.messageCount("Команды") != before+1 {
		t.Error("a question should get the help text")
	}
}
