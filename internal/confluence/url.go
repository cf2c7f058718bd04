// Package confluence fetches Confluence pages and flattens them to plain text.
package confluence

import (
	"fmt"
	"regexp"
	"strings"
)

// linkPattern matches Confluence URLs inside free-form message text.
var linkPattern = regexp.MustCompile(`(?i)https?://\S*confluence\S*`)

// ExtractLinks returns all Confluence URLs found in a message.
func ExtractLinks(text string) []string {
	return linkPattern.FindAllString(text, -1)
}

// ResolvePageID extracts the page id from a Confluence URL. Two forms are
// accepted: full URLs containing /pages/<id>/ and short /x/<tiny> URLs,
// where the tiny id is used directly (it resolves through the REST API for
// most server installations).
func ResolvePageID(url string) (string, error) {
	if i := strings.Index(url, "/pages/"); i >= 0 {
		rest := url[i+len("/pages/"):]
		id := strings.SplitN(rest, "/", 2)[0]
		if id = strings.TrimSpace(id); id != "" {
			return id, nil
		}
	}
	if i := strings.Index(url, "/x/"); i >= 0 {
		rest := url[i+len("/x/"):]
		id := strings.SplitN(rest, "/", 2)[0]
		if id = strings.TrimSpace(id); id != "" {
			return id, nil
		}
	}
	return "", fmt.Errorf("cannot resolve page id from url %q", url)
}
