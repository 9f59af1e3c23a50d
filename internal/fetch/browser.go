// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"

	"github.com/pdiddy/hatebu-clipper/pkg/types"
)

// BrowserFetcher loads pages in headless Chrome so that client-rendered
// content is present in the captured HTML.
type BrowserFetcher struct {
	// ChromePath optionally overrides the browser executable.
	ChromePath string
	cfg        types.HTTPConfig
}

// NewBrowserFetcher returns a fetcher that launches one browser per page.
func NewBrowserFetcher(cfg types.HTTPConfig, chromePath string) *BrowserFetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &BrowserFetcher{ChromePath: chromePath, cfg: cfg}
}

// allocatorOptions builds the exec allocator flags for a headless run.
func (f *BrowserFetcher) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.NoDefaultBrowserCheck,
		chromedp.NoFirstRun,
		chromedp.Headless,
	)
	if f.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(f.ChromePath))
	}
	if f.cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(f.cfg.UserAgent))
	}
	return opts
}

// Fetch implements Fetcher. The timeout covers browser start, navigation,
// and capture.
func (f *BrowserFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, f.allocatorOptions()...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, f.cfg.Timeout)
	defer cancelRun()

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("browser capture of %s: %w", url, err)
	}
	return []byte(html), nil
}
