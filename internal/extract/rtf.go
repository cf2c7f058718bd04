package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/lu4p/cat/rtftxt"
)

// extractRTF converts RTF control-word markup to plain text. The parser
// swallows malformed markup silently, so empty output from a non-empty file
// is reported as a failure rather than an empty document.
func extractRTF(content []byte) (string, error) {
	buf, err := rtftxt.Text(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("extract RTF: %w", err)
	}
	text := strings.TrimSpace(buf.String())
	if text == "" && len(bytes.TrimSpace(content)) > 0 {
		return "", errors.New("extract RTF: no text recovered")
	}
	return text, nil
}
