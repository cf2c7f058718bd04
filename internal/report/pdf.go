// Package report renders analysis results into a PDF document.
package report

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/chastnik/mm-bot/internal/catalog"
	"github.com/chastnik/mm-bot/internal/config"
	"github.com/chastnik/mm-bot/internal/models"
	"github.com/chastnik/mm-bot/pkg/utils"
)

const (
	fontFamily = "DejaVu"

	pageLeft  = 15.0
	pageWidth = 180.0
	lineH     = 6.0
)

// Status colors, the report's visual contract.
var statusColors = map[models.ArtifactStatus][3]int{
	models.StatusFound:    {0x28, 0xA7, 0x45},
	models.StatusPartial:  {0xFF, 0xC1, 0x07},
	models.StatusNotFound: {0xDC, 0x35, 0x45},
}

var statusLabels = map[models.ArtifactStatus]string{
	models.StatusFound:    "Найден",
	models.StatusPartial:  "Частично",
	models.StatusNotFound: "Не найден",
}

// categoryTitles localizes the base category sections. Type-specific
// categories take their title from the project type name.
var categoryTitles = map[string]string{
	catalog.CategoryGeneral:    "Общие документы",
	catalog.CategoryTechnical:  "Техническая документация",
	catalog.CategoryOperations: "Эксплуатационная документация",
	catalog.CategoryTesting:    "Тестирование",
	catalog.CategoryChanges:    "Управление изменениями",
}

// Renderer builds PDF reports. Cyrillic text requires registered TTF fonts;
// the font files are read once at construction, so a missing or unreadable
// font is a configuration error, not a per-report failure.
type Renderer struct {
	font     []byte
	boldFont []byte
	registry *catalog.Registry
	logger   *zap.Logger
	now      func() time.Time
}

// NewRenderer loads the configured fonts and returns a renderer.
func NewRenderer(cfg config.ReportConfig, registry *catalog.Registry, logger *zap.Logger) (*Renderer, error) {
	font, err := os.ReadFile(cfg.FontPath)
	if err != nil {
		return nil, fmt.Errorf("report font: %w", err)
	}
	boldFont, err := os.ReadFile(cfg.BoldFontPath)
	if err != nil {
		return nil, fmt.Errorf("report bold font: %w", err)
	}
	return &Renderer{
		font:     font,
		boldFont: boldFont,
		registry: registry,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Render produces the PDF for one completed analysis.
func (r *Renderer) Render(selected []string, verdicts []models.ArtifactVerdict, docs []*models.SourceDocument) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddUTF8FontFromBytes(fontFamily, "", r.font)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", r.boldFont)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	byID := make(map[string]models.ArtifactVerdict, len(verdicts))
	for _, v := range verdicts {
		byID[v.ArtifactID] = v
	}

	r.title(pdf)
	r.info(pdf, selected, docs)
	r.summary(pdf, verdicts)
	r.details(pdf, selected, byID)
	r.documents(pdf, docs)

	if pdf.Error() != nil {
		return nil, fmt.Errorf("failed to build pdf: %w", pdf.Error())
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) title(pdf *fpdf.Fpdf) {
	pdf.SetFont(fontFamily, "B", 16)
	pdf.SetTextColor(0x21, 0x25, 0x29)
	pdf.CellFormat(pageWidth, 10, "Отчёт по анализу проектной документации", "", 1, "C", false, 0, "")
	pdf.Ln(4)
}

func (r *Renderer) info(pdf *fpdf.Fpdf, selected []string, docs []*models.SourceDocument) {
	names := make([]string, 0, len(selected))
	for _, code := range selected {
		names = append(names, r.registry.TypeName(code))
	}

	pdf.SetFont(fontFamily, "", 10)
	r.infoLine(pdf, "Дата анализа:", r.now().Format("02.01.2006 15:04"))
	r.infoLine(pdf, "Типы проекта:", strings.Join(names, ", "))
	r.infoLine(pdf, "Документов проанализировано:", fmt.Sprintf("%d", len(docs)))
	pdf.Ln(4)
}

func (r *Renderer) infoLine(pdf *fpdf.Fpdf, label, value string) {
	pdf.SetFont(fontFamily, "B", 10)
	pdf.CellFormat(65, lineH, label, "", 0, "L", false, 0, "")
	pdf.SetFont(fontFamily, "", 10)
	pdf.MultiCell(pageWidth-65, lineH, value, "", "L", false)
}

// summary renders the status count table and an overall readiness figure.
func (r *Renderer) summary(pdf *fpdf.Fpdf, verdicts []models.ArtifactVerdict) {
	counts := map[models.ArtifactStatus]int{}
	for _, v := range verdicts {
		counts[v.Status]++
	}
	total := len(verdicts)
	readiness := 0.0
	if total > 0 {
		readiness = 100 * (float64(counts[models.StatusFound]) +
			0.5*float64(counts[models.StatusPartial])) / float64(total)
	}

	pdf.SetFont(fontFamily, "B", 12)
	pdf.CellFormat(pageWidth, 8, "Сводка", "", 1, "L", false, 0, "")

	pdf.SetFont(fontFamily, "", 10)
	for _, status := range []models.ArtifactStatus{models.StatusFound, models.StatusPartial, models.StatusNotFound} {
		c := statusColors[status]
		pdf.SetFillColor(c[0], c[1], c[2])
		pdf.CellFormat(8, lineH, "", "1", 0, "", true, 0, "")
		pdf.CellFormat(60, lineH, statusLabels[status], "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, lineH, fmt.Sprintf("%d из %d", counts[status], total), "1", 1, "C", false, 0, "")
	}
	pdf.Ln(2)
	pdf.SetFont(fontFamily, "B", 10)
	pdf.CellFormat(pageWidth, lineH, fmt.Sprintf("Готовность документации: %.0f%%", readiness), "", 1, "L", false, 0, "")
	pdf.Ln(4)
}

// details renders one section per category in the fixed report order.
func (r *Renderer) details(pdf *fpdf.Fpdf, selected []string, byID map[string]models.ArtifactVerdict) {
	defs := r.registry.ForSelection(selected)
	perCategory := make(map[string][]catalog.Definition)
	for _, def := range defs {
		perCategory[def.Category] = append(perCategory[def.Category], def)
	}

	for _, category := range r.registry.Categories(selected) {
		section := perCategory[category]
		if len(section) == 0 {
			continue
		}
		title := categoryTitles[category]
		if title == "" {
			title = r.registry.TypeName(category)
		}

		pdf.SetFont(fontFamily, "B", 12)
		pdf.CellFormat(pageWidth, 8, title, "", 1, "L", false, 0, "")
		for _, def := range section {
			verdict, ok := byID[def.ID]
			if !ok {
				verdict = models.ArtifactVerdict{ArtifactID: def.ID, Status: models.StatusNotFound}
			}
			r.artifactRow(pdf, def, verdict)
		}
		pdf.Ln(3)
	}
}

func (r *Renderer) artifactRow(pdf *fpdf.Fpdf, def catalog.Definition, verdict models.ArtifactVerdict) {
	c := statusColors[verdict.Status]
	pdf.SetFillColor(c[0], c[1], c[2])
	pdf.CellFormat(8, lineH, "", "1", 0, "", true, 0, "")

	pdf.SetFont(fontFamily, "", 10)
	pdf.CellFormat(122, lineH, utils.Truncate(def.Name, 70), "1", 0, "L", false, 0, "")
	pdf.SetFont(fontFamily, "B", 9)
	pdf.SetTextColor(c[0], c[1], c[2])
	pdf.CellFormat(30, lineH, statusLabels[verdict.Status], "1", 1, "C", false, 0, "")
	pdf.SetTextColor(0x21, 0x25, 0x29)

	for _, ev := range verdict.Evidence {
		pdf.SetFont(fontFamily, "", 8)
		pdf.SetTextColor(0x6C, 0x75, 0x7D)
		source := ev.Source
		if source == "" {
			source = ev.DocumentID
		}
		// Excerpts come straight from documents and may span lines.
		excerpt := utils.Truncate(utils.CollapseSpace(ev.Excerpt), 200)
		text := fmt.Sprintf("%s: «%s»", source, excerpt)
		pdf.SetX(pageLeft + 8)
		pdf.MultiCell(pageWidth-8, 4.5, text, "", "L", false)
		pdf.SetTextColor(0x21, 0x25, 0x29)
	}
}

// documents renders the appendix listing every analyzed source, including
// the ones that failed extraction.
func (r *Renderer) documents(pdf *fpdf.Fpdf, docs []*models.SourceDocument) {
	pdf.SetFont(fontFamily, "B", 12)
	pdf.CellFormat(pageWidth, 8, "Проанализированные документы", "", 1, "L", false, 0, "")

	pdf.SetFont(fontFamily, "", 9)
	for i, doc := range docs {
		state := "обработан"
		if doc.Status != models.ExtractionOK {
			state = "не обработан"
		}
		line := fmt.Sprintf("%d. %s (%s)", i+1, doc.DisplayName, state)
		pdf.MultiCell(pageWidth, 5, line, "", "L", false)
	}
}
