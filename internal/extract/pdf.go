package extract

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// extractPDF extracts text page by page. Page markers are kept in the output
// so model findings can cite a page number.
func extractPDF(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}
	var buf bytes.Buffer
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract page %d: %w", i, err)
		}
		fmt.Fprintf(&buf, "--- Страница %d ---\n", i)
		buf.WriteString(text)
		buf.WriteByte('\n')
	}
	return buf.String(), nil
}

// CountPages returns the number of page markers in extracted text, at least 1
// for non-empty text.
func CountPages(text string) int {
	if text == "" {
		return 0
	}
	n := bytes.Count([]byte(text), []byte("--- Страница"))
	if n == 0 {
		return 1
	}
	return n
}
