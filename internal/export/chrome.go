package export

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/MikeMC777/customtees/internal/config"
	"github.com/MikeMC777/customtees/internal/order"
)

const (
	defaultChromeTimeout = 30 * time.Second
	// A4 in inches
	a4Width  = 8.27
	a4Height = 11.69
)

// Chrome captures and prints through headless Chrome. It serves as both
// the Rasterizer and the Documenter.
type Chrome struct {
	timeout     time.Duration
	log         *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

var (
	_ Rasterizer = (*Chrome)(nil)
	_ Documenter = (*Chrome)(nil)
)

// NewChrome starts an allocator for a local Chrome, or attaches to the
// DevTools endpoint in cfg.RemoteURL.
func NewChrome(cfg config.ChromeConfig, log *zap.Logger) *Chrome {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Chrome{timeout: cfg.Timeout, log: log}
	if c.timeout <= 0 {
		c.timeout = defaultChromeTimeout
	}

	if cfg.RemoteURL != "" {
		c.allocCtx, c.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
		return c
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("font-render-hinting", "none"),
		chromedp.WindowSize(800, 1000),
	)
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	c.allocCtx, c.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	return c
}

func (c *Chrome) Close() {
	if c.allocCancel != nil {
		c.allocCancel()
	}
}

// Capture renders the bill view and takes a full-page PNG screenshot.
func (c *Chrome) Capture(ctx context.Context, o order.Order) ([]byte, error) {
	html, err := RenderBill(o)
	if err != nil {
		return nil, fmt.Errorf("render bill: %w", err)
	}
	var png []byte
	err = c.run(ctx, html, chromedp.FullScreenshot(&png, 100))
	if err != nil {
		return nil, err
	}
	if len(png) == 0 {
		return nil, errors.New("screenshot is empty")
	}
	return png, nil
}

// Document prints the image onto a single A4 page.
func (c *Chrome) Document(ctx context.Context, png []byte) ([]byte, error) {
	if len(png) == 0 {
		return nil, errors.New("no image to print")
	}
	html := `<!DOCTYPE html><html><head><style>@page{size:A4;margin:0}html,body{margin:0}` +
		`img{display:block;width:100%;max-height:100vh;object-fit:contain}</style></head><body>` +
		`<img src="data:image/png;base64,` + base64.StdEncoding.EncodeToString(png) + `"></body></html>`

	var pdf []byte
	err := c.run(ctx, html, chromedp.ActionFunc(func(ctx context.Context) error {
		data, _, err := page.PrintToPDF().
			WithPrintBackground(true).
			WithPaperWidth(a4Width).
			WithPaperHeight(a4Height).
			WithMarginTop(0).
			WithMarginBottom(0).
			WithMarginLeft(0).
			WithMarginRight(0).
			WithPreferCSSPageSize(true).
			Do(ctx)
		if err != nil {
			return err
		}
		pdf = data
		return nil
	}))
	if err != nil {
		return nil, err
	}
	if len(pdf) == 0 {
		return nil, errors.New("generated PDF is empty")
	}
	return pdf, nil
}

// run loads html into a fresh tab and performs action.
func (c *Chrome) run(ctx context.Context, html string, action chromedp.Action) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	tabCtx, tabCancel := chromedp.NewContext(c.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			c.log.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer tabCancel()

	// tie the tab to the caller's deadline and cancellation
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	err := chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		action,
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("chrome: %w", ctxErr)
		}
		return fmt.Errorf("chrome: %w", err)
	}
	return nil
}
