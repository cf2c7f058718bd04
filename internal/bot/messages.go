package bot

import (
	"fmt"
	"strings"

	"github.com/chastnik/mm-bot/internal/catalog"
	"github.com/chastnik/mm-bot/internal/models"
)

// maxSummaryArtifacts caps the per-artifact list in the chat summary; the
// full list is always in the PDF.
const maxSummaryArtifacts = 15

var statusEmoji = map[models.ArtifactStatus]string{
	models.StatusFound:    "✅",
	models.StatusPartial:  "⚠️",
	models.StatusNotFound: "❌",
}

func msgSelectTypes(types []catalog.ProjectType) string {
	var b strings.Builder
	b.WriteString("Привет! Я помогу проверить комплектность проектной документации.\n\n")
	b.WriteString("Выберите типы проекта (можно несколько, через запятую):\n")
	for _, t := range types {
		fmt.Fprintf(&b, "- **%s** — %s\n", t.Code, t.Name)
	}
	b.WriteString("\nКогда закончите выбор, напишите «готово».")
	return b.String()
}

func msgSelectionChanged(added, removed []string, selected []string, typeName func(string) string) string {
	var b strings.Builder
	if len(added) > 0 {
		b.WriteString("Добавлено: " + joinNames(added, typeName) + ".\n")
	}
	if len(removed) > 0 {
		b.WriteString("Убрано: " + joinNames(removed, typeName) + ".\n")
	}
	if len(selected) == 0 {
		b.WriteString("Сейчас ничего не выбрано.")
	} else {
		b.WriteString("Текущий выбор: " + joinNames(selected, typeName) + ". Напишите «готово», чтобы продолжить.")
	}
	return b.String()
}

func joinNames(codes []string, typeName func(string) string) string {
	names := make([]string, 0, len(codes))
	for _, c := range codes {
		names = append(names, typeName(c))
	}
	return strings.Join(names, ", ")
}

const msgEmptySelection = "Выберите хотя бы один тип проекта, прежде чем продолжить."

const msgUnknownSelection = "Не узнал ни одного типа проекта. Укажите коды из списка, например: BI, DWH."

const msgAwaitDocuments = "Отлично! Теперь пришлите документы проекта: файлы PDF, DOCX, XLSX, RTF, TXT " +
	"или ссылки на страницы Confluence.\n\nКогда всё будет загружено, напишите «анализ»."

const msgNoDocuments = "Пока нет ни одного документа. Пришлите файлы или ссылки на Confluence, затем напишите «анализ»."

const msgAddMoreHint = "Хорошо, жду новые документы. Когда будете готовы, напишите «анализ»."

const msgConfirmMore = "Хотите продолжить? Напишите «добавить», чтобы загрузить ещё документы и повторить анализ, " +
	"или «начать анализ», чтобы начать заново."

const msgAnalysisNoContent = "Ни из одного документа не удалось извлечь текст, анализ невозможен. " +
	"Проверьте файлы и пришлите их ещё раз."

const msgAnalysisBackendDown = "Сервис анализа сейчас недоступен, отчёт не построен. " +
	"Документы сохранены: напишите «анализ», чтобы повторить попытку."

const msgReportFailed = "Не удалось сформировать или отправить отчёт. " +
	"Документы сохранены: напишите «анализ», чтобы повторить попытку."

const msgHelp = "Я собираю документы проекта и проверяю их на наличие обязательных артефактов.\n\n" +
	"Команды:\n" +
	"- «начать анализ» — начать заново\n" +
	"- «готово» — завершить выбор типов проекта\n" +
	"- «анализ» — запустить проверку загруженных документов\n" +
	"- «добавить» — загрузить ещё документы"

func msgDocumentAccepted(doc *models.SourceDocument) string {
	if doc.Status == models.ExtractionOK {
		return fmt.Sprintf("Документ «%s» получен и обработан.", doc.DisplayName)
	}
	switch doc.FailReason {
	case "unsupported_format":
		return fmt.Sprintf("Формат документа «%s» не поддерживается, он не будет участвовать в анализе.", doc.DisplayName)
	case "confluence_not_configured":
		return fmt.Sprintf("Ссылка «%s» не обработана: интеграция с Confluence не настроена.", doc.DisplayName)
	default:
		return fmt.Sprintf("Не удалось извлечь текст из «%s», документ не будет участвовать в анализе.", doc.DisplayName)
	}
}

func msgAnalysisStarted(docCount int) string {
	return fmt.Sprintf("Начинаю анализ %d документов. Это может занять несколько минут…", docCount)
}

func msgReportInProgress(docCount int) string {
	return fmt.Sprintf("Обработано документов: %d. Генерирую PDF отчёт…", docCount)
}

// msgResultSummary builds the chat summary with per-artifact emoji lines.
func msgResultSummary(verdicts []models.ArtifactVerdict, lookup func(string) (catalog.Definition, bool)) string {
	counts := map[models.ArtifactStatus]int{}
	for _, v := range verdicts {
		counts[v.Status]++
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Анализ завершён: найдено %d, частично %d, не найдено %d.\n\n",
		counts[models.StatusFound], counts[models.StatusPartial], counts[models.StatusNotFound])

	shown := 0
	for _, v := range verdicts {
		if shown == maxSummaryArtifacts {
			fmt.Fprintf(&b, "… и ещё %d артефактов в отчёте.\n", len(verdicts)-shown)
			break
		}
		name := v.ArtifactID
		if def, ok := lookup(v.ArtifactID); ok {
			name = def.Name
		}
		fmt.Fprintf(&b, "%s %s\n", statusEmoji[v.Status], name)
		shown++
	}
	b.WriteString("\nПодробный отчёт во вложении.")
	return b.String()
}
