package nso

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/patrikb/ligafeed/internal/fetch"
)

// Client collects NB I articles. The section index goes through the
// headless renderer; the articles themselves are server-rendered and
// go through the polite fetcher.
type Client struct {
	fetcher  *fetch.Fetcher
	renderer IndexRenderer
	baseURL  string
	section  string
	log      *zap.SugaredLogger
}

// NewClient creates an NSO client. section is the index path under
// the base URL, e.g. "rovat/labdarugo-nb-i".
func NewClient(fetcher *fetch.Fetcher, renderer IndexRenderer, baseURL, section string, log *zap.SugaredLogger) *Client {
	return &Client{
		fetcher:  fetcher,
		renderer: renderer,
		baseURL:  strings.TrimRight(baseURL, "/"),
		section:  strings.Trim(section, "/"),
		log:      log,
	}
}

// ArticleLinks renders the section index and returns the article URLs
// found on it.
func (c *Client) ArticleLinks(ctx context.Context) ([]string, error) {
	url := c.baseURL + "/" + c.section

	html, err := c.renderer.Render(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("rendering section index: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing section index: %w", err)
	}

	links := ParseArticleLinks(doc, c.baseURL)
	c.log.Infow("collected article links", "section", c.section, "count", len(links))
	return links, nil
}

// Article fetches and parses one article.
func (c *Client) Article(ctx context.Context, url string) (*Article, error) {
	doc, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetching article %s: %w", url, err)
	}
	return ParseArticle(doc, url), nil
}
