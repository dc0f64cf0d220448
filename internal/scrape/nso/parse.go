// Package nso scrapes the Nemzeti Sport Online news site: article
// links from the NB I section index and the text of individual
// articles.
package nso

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Article is one parsed news article.
type Article struct {
	URL         string
	Title       string
	Lead        string
	Text        string
	PublishedAt *time.Time
}

// FullText joins title, lead and body the way the classifier expects
// to see an article.
func (a *Article) FullText() string {
	return a.Title + "\n\n" + a.Lead + "\n\n" + a.Text
}

// Link patterns. The section index mixes article cards with
// navigation, newsletter and media links.
var excludedLinkPatterns = []string{
	"/rovat/",
	"/hirlevel/",
	"/szerzo/",
	"/video/",
	"/galeria/",
	"#",
	"javascript:",
	"mailto:",
	"tel:",
}

const requiredLinkPattern = "/labdarugo-nb-i/"

// ParseArticleLinks extracts article URLs from the rendered section
// index. Links are collected from the article card components and the
// category list, filtered and deduplicated, and resolved against the
// base URL. Order follows first appearance on the page.
func ParseArticleLinks(doc *goquery.Document, baseURL string) []string {
	var links []string
	seen := make(map[string]bool)

	add := func(href string) {
		if !validArticleLink(href) {
			return
		}
		full := resolveLink(href, baseURL)
		if seen[full] {
			return
		}
		seen[full] = true
		links = append(links, full)
	}

	doc.Find("nso-article-card a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		add(href)
	})

	doc.Find("app-category-article-list a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		add(href)
	})

	return links
}

func validArticleLink(href string) bool {
	if href == "" {
		return false
	}
	for _, p := range excludedLinkPatterns {
		if strings.Contains(href, p) {
			return false
		}
	}
	return strings.Contains(href, requiredLinkPattern)
}

func resolveLink(href, baseURL string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(href, "/")
}

// ParseArticle extracts the title, lead, body text and publish date
// from an article page.
func ParseArticle(doc *goquery.Document, url string) *Article {
	a := &Article{
		URL:   url,
		Title: strings.TrimSpace(doc.Find("h1.article-header-title").First().Text()),
		Lead:  strings.TrimSpace(doc.Find("div.lead").First().Text()),
	}

	a.Text = articleText(doc)

	raw := strings.TrimSpace(doc.Find("div.article-header-date").First().Text())
	if d, ok := parsePublishDate(raw); ok {
		a.PublishedAt = &d
	}

	return a
}

// articleText collects paragraphs from the known content containers.
// Short fragments are image captions and embeds, so only paragraphs
// over 30 characters count. When the containers yield too little the
// whole page's paragraphs are tried with a stricter cutoff.
func articleText(doc *goquery.Document) string {
	var parts []string
	seen := make(map[string]bool)

	collect := func(s *goquery.Selection, minLen int) {
		s.Find("p").Each(func(_ int, p *goquery.Selection) {
			text := strings.TrimSpace(p.Text())
			if len(text) <= minLen || seen[text] {
				return
			}
			seen[text] = true
			parts = append(parts, text)
		})
	}

	for _, sel := range []string{"div.block-content", "div.article-content", "div.article-body", "nso-wysiwyg-box"} {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			collect(s, 30)
		})
	}

	if len(parts) < 3 {
		collect(doc.Selection, 50)
	}

	return strings.Join(parts, "\n\n")
}

// parsePublishDate parses the header date, "2025.08.12. 10:30" style.
// Only the day part matters.
func parsePublishDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	datePart := strings.TrimRight(strings.Fields(raw)[0], ".")
	d, err := time.Parse("2006.01.02", datePart)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}
