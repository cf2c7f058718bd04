package confluence

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	goconfluence "github.com/virtomize/confluence-go-api"
	"go.uber.org/zap"

	"github.com/chastnik/mm-bot/internal/extract"
)

// PageTree is one Confluence link flattened to analyzable text: the page
// itself, its children up to the configured depth, and the text of supported
// attachments across the tree.
type PageTree struct {
	Title       string
	Text        string
	Pages       int
	Attachments int
}

// Fetcher resolves a Confluence URL to flattened page content.
type Fetcher interface {
	FetchPageTree(ctx context.Context, url string) (*PageTree, error)
}

// Client talks to the Confluence REST API.
type Client struct {
	api       *goconfluence.API
	http      *http.Client
	baseURL   string
	username  string
	token     string
	maxDepth  int
	extractor *extract.Extractor
	logger    *zap.Logger
}

// NewClient creates a Confluence client. baseURL is the site root (without
// /rest/api); maxDepth bounds child-page recursion.
func NewClient(baseURL, username, token string, maxDepth int, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	base := strings.TrimRight(baseURL, "/")
	api, err := goconfluence.NewAPI(base+"/rest/api", username, token)
	if err != nil {
		return nil, fmt.Errorf("confluence api: %w", err)
	}
	return &Client{
		api:       api,
		http:      &http.Client{Timeout: timeout},
		baseURL:   base,
		username:  username,
		token:     token,
		maxDepth:  maxDepth,
		extractor: extract.NewExtractor(),
		logger:    logger,
	}, nil
}

// FetchPageTree resolves url to a page id and flattens the page, its child
// pages, and their supported attachments to one text block. Child-page and
// attachment failures are logged and skipped; only a failure to fetch the
// root page is an error.
func (c *Client) FetchPageTree(ctx context.Context, url string) (*PageTree, error) {
	pageID, err := ResolvePageID(url)
	if err != nil {
		return nil, err
	}

	title, text, err := c.fetchPage(pageID)
	if err != nil {
		return nil, fmt.Errorf("fetch page %s: %w", pageID, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- Страница: %s ---\n%s\n", title, text)
	tree := &PageTree{Title: title, Pages: 1}

	c.appendAttachments(ctx, &b, tree, pageID, title)
	c.walkChildren(ctx, &b, tree, pageID, 1)

	tree.Text = b.String()
	return tree, nil
}

func (c *Client) fetchPage(pageID string) (title, text string, err error) {
	content, err := c.api.GetContentByID(pageID, goconfluence.ContentQuery{
		Expand: []string{"body.storage"},
	})
	if err != nil {
		return "", "", err
	}
	return content.Title, StripHTML(content.Body.Storage.Value), nil
}

// walkChildren appends child pages recursively up to maxDepth.
func (c *Client) walkChildren(ctx context.Context, b *strings.Builder, tree *PageTree, parentID string, depth int) {
	if depth > c.maxDepth || ctx.Err() != nil {
		return
	}
	children, err := c.api.GetChildPages(parentID)
	if err != nil {
		c.logger.Warn("confluence child pages unavailable",
			zap.String("parent_id", parentID), zap.Error(err))
		return
	}
	for _, child := range children.Results {
		title, text, err := c.fetchPage(child.ID)
		if err != nil {
			c.logger.Warn("confluence child page skipped",
				zap.String("page_id", child.ID), zap.Error(err))
			continue
		}
		fmt.Fprintf(b, "\n--- Дочерняя страница (уровень %d): %s ---\n%s\n", depth, title, text)
		tree.Pages++
		c.appendAttachments(ctx, b, tree, child.ID, title)
		c.walkChildren(ctx, b, tree, child.ID, depth+1)
	}
}

// appendAttachments downloads supported attachments of a page and appends
// their extracted text.
func (c *Client) appendAttachments(ctx context.Context, b *strings.Builder, tree *PageTree, pageID, pageTitle string) {
	attachments, err := c.api.GetAttachments(pageID)
	if err != nil {
		c.logger.Warn("confluence attachments unavailable",
			zap.String("page_id", pageID), zap.Error(err))
		return
	}
	for _, att := range attachments.Results {
		name, link, ok := attachmentDownload(att)
		ext := strings.ToLower(filepath.Ext(name))
		if !c.extractor.Supported(ext) {
			continue
		}
		if !ok {
			c.logger.Warn("confluence attachment has no download link",
				zap.String("attachment", name))
			continue
		}
		data, err := c.download(ctx, link)
		if err != nil {
			c.logger.Warn("confluence attachment download failed",
				zap.String("attachment", name), zap.Error(err))
			continue
		}
		text, err := c.extractor.ExtractBytes(data, ext)
		if err != nil {
			c.logger.Warn("confluence attachment extraction failed",
				zap.String("attachment", name), zap.Error(err))
			continue
		}
		fmt.Fprintf(b, "\n--- Вложенный файл (страница «%s»): %s ---\n%s\n", pageTitle, name, text)
		tree.Attachments++
	}
}

// attachmentDownload resolves the display name and download link of one
// attachment result. The title and link live on the nested Content object;
// older servers fill only the top-level Title. ok is false when the result
// carries no download link.
func attachmentDownload(att goconfluence.Results) (name, link string, ok bool) {
	name = att.Content.Title
	if name == "" {
		name = att.Title
	}
	if att.Content.Links == nil || att.Content.Links.Download == "" {
		return name, "", false
	}
	return name, att.Content.Links.Download, true
}

// download fetches an attachment by its download link (relative to the site root).
func (c *Client) download(ctx context.Context, link string) ([]byte, error) {
	url := link
	if strings.HasPrefix(link, "/") {
		url = c.baseURL + link
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.username, c.token)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: HTTP %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
