package nso

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

const rendererUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// IndexRenderer returns the rendered HTML of a page. The section
// index is a client-side application, so a plain GET yields an empty
// shell; rendering needs a headless browser.
type IndexRenderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// ChromeRenderer renders pages with a headless Chrome instance.
type ChromeRenderer struct {
	allocCtx context.Context
	cancel   context.CancelFunc
}

// NewChromeRenderer starts the headless browser allocator.
func NewChromeRenderer() *ChromeRenderer {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(rendererUserAgent),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &ChromeRenderer{allocCtx: allocCtx, cancel: cancel}
}

// Close releases the browser allocator.
func (r *ChromeRenderer) Close() {
	if r.cancel != nil {
		r.cancel()
	}
}

// Render navigates to the URL, waits for the page to settle, and
// returns the rendered HTML.
func (r *ChromeRenderer) Render(ctx context.Context, url string) (string, error) {
	browserCtx, cancel := chromedp.NewContext(r.allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, 30*time.Second)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(`body`, chromedp.ByQuery),
		chromedp.Sleep(2*time.Second), // allow the article cards to render
		chromedp.OuterHTML(`html`, &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("rendering %s: %w", url, err)
	}
	if html == "" {
		return "", fmt.Errorf("rendering %s: empty document", url)
	}
	return html, nil
}
