package detect

import (
	"fmt"
	"strings"

	"github.com/chastnik/mm-bot/internal/catalog"
	"github.com/chastnik/mm-bot/internal/models"
)

// systemPrompt frames the model as a documentation auditor.
const systemPrompt = "Ты эксперт по анализу ИТ документации. " +
	"Твоя задача - определить, присутствует ли запрошенный артефакт проекта в предоставленном документе. " +
	"Отвечай строго в заданном формате."

// buildPrompt composes the query for one artifact against one document excerpt.
// The response format mirrors what parseResponse expects.
func buildPrompt(def catalog.Definition, doc *models.SourceDocument, excerpt string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "АРТЕФАКТ ДЛЯ ПОИСКА: %s\n", def.Name)
	if def.Description != "" {
		fmt.Fprintf(&b, "ОПИСАНИЕ АРТЕФАКТА: %s\n", def.Description)
	}
	if len(def.SearchHints) > 0 {
		fmt.Fprintf(&b, "КЛЮЧЕВЫЕ СЛОВА: %s\n", strings.Join(def.SearchHints, ", "))
	}

	b.WriteString("\nДОКУМЕНТ: ")
	b.WriteString(doc.DisplayName)
	b.WriteByte('\n')
	b.WriteString(strings.Repeat("=", 40))
	b.WriteByte('\n')
	b.WriteString(excerpt)
	b.WriteByte('\n')
	b.WriteString(strings.Repeat("=", 40))
	b.WriteByte('\n')

	b.WriteString(`
ИНСТРУКЦИИ:
1. Определи, содержит ли документ указанный артефакт.
2. Если информация присутствует, но неполная, используй статус ЧАСТИЧНО НАЙДЕН.
3. Укажи уверенность числом от 0 до 1.
4. Приведи короткую цитату из документа, подтверждающую находку, и укажи страницу или раздел.

ФОРМАТ ОТВЕТА (строго соблюдай):
СТАТУС: [НАЙДЕН/ЧАСТИЧНО НАЙДЕН/НЕ НАЙДЕН]
УВЕРЕННОСТЬ: [число от 0 до 1]
ИСТОЧНИК: [страница или раздел, либо "-"]
ЦИТАТА: [краткая цитата из документа, либо "-"]
ОПИСАНИЕ: [одно-два предложения о найденной информации]
`)
	return b.String()
}
