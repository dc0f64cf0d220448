package nso

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return d
}

func TestParseArticleLinks(t *testing.T) {
	d := doc(t, `
		<nso-article-card>
			<nso-article-card-link-wrapper>
				<a href="/labdarugo-nb-i/2025/08/serules-kovacs">cikk</a>
			</nso-article-card-link-wrapper>
		</nso-article-card>
		<nso-article-card>
			<a href="https://www.nemzetisport.hu/labdarugo-nb-i/2025/08/masik-cikk">cikk</a>
		</nso-article-card>
		<nso-article-card>
			<a href="/rovat/labdarugo-nb-i">rovat link</a>
		</nso-article-card>
		<app-category-article-list>
			<a href="/labdarugo-nb-i/2025/08/serules-kovacs">duplikatum</a>
			<a href="/labdarugo-nb-i/2025/08/harmadik">cikk</a>
			<a href="/video/labdarugo-nb-i/felvetel">video</a>
			<a href="/kezilabda/2025/08/nem-foci">masik rovat</a>
		</app-category-article-list>`)

	links := ParseArticleLinks(d, "https://www.nemzetisport.hu")
	require.Len(t, links, 3)
	assert.Equal(t, "https://www.nemzetisport.hu/labdarugo-nb-i/2025/08/serules-kovacs", links[0])
	assert.Equal(t, "https://www.nemzetisport.hu/labdarugo-nb-i/2025/08/masik-cikk", links[1])
	assert.Equal(t, "https://www.nemzetisport.hu/labdarugo-nb-i/2025/08/harmadik", links[2])
}

func TestValidArticleLink(t *testing.T) {
	assert.True(t, validArticleLink("/labdarugo-nb-i/2025/08/cikk"))
	assert.False(t, validArticleLink("/rovat/labdarugo-nb-i"))
	assert.False(t, validArticleLink("/labdarugo-nb-i/galeria/kepek"))
	assert.False(t, validArticleLink("mailto:szerk@nso.hu"))
	assert.False(t, validArticleLink("/kezilabda/2025/08/cikk"))
	assert.False(t, validArticleLink(""))
}

func TestParseArticle(t *testing.T) {
	long := strings.Repeat("Hosszú bekezdés a mérkőzésről és a sérülésről. ", 2)
	d := doc(t, `
		<h1 class="article-header-title">Megsérült Kovács Péter</h1>
		<div class="article-header-date">2025.08.12. 10:30</div>
		<div class="lead">A DVSC támadója hetekig nem játszhat.</div>
		<div class="article-content">
			<p>`+long+`</p>
			<p>Fotó</p>
			<p>`+long+`</p>
		</div>`)

	a := ParseArticle(d, "https://www.nemzetisport.hu/labdarugo-nb-i/2025/08/cikk")
	assert.Equal(t, "Megsérült Kovács Péter", a.Title)
	assert.Equal(t, "A DVSC támadója hetekig nem játszhat.", a.Lead)
	require.NotNil(t, a.PublishedAt)
	assert.Equal(t, time.Date(2025, 8, 12, 0, 0, 0, 0, time.UTC), *a.PublishedAt)

	// The short "Fotó" caption is dropped; the two long paragraphs
	// are identical so deduplication keeps one.
	assert.NotContains(t, a.Text, "Fotó")
	assert.Contains(t, a.Text, "Hosszú bekezdés")

	assert.Contains(t, a.FullText(), a.Title)
	assert.Contains(t, a.FullText(), a.Lead)
}

func TestParseArticleMissingDate(t *testing.T) {
	d := doc(t, `<h1 class="article-header-title">Cím</h1>`)
	a := ParseArticle(d, "u")
	assert.Nil(t, a.PublishedAt)
	assert.Equal(t, "Cím", a.Title)
}

func TestParsePublishDate(t *testing.T) {
	d, ok := parsePublishDate("2025.08.12. 10:30")
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 8, 12, 0, 0, 0, 0, time.UTC), d)

	_, ok = parsePublishDate("")
	assert.False(t, ok)
	_, ok = parsePublishDate("tegnap")
	assert.False(t, ok)
}
