package rendering

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// DefaultCaptureTimeout bounds a single browser capture.
const DefaultCaptureTimeout = 60 * time.Second

// cssPixelsPerInch is the CSS reference resolution.
const cssPixelsPerInch = 96

// PDFRenderer captures print HTML with headless Chrome.
type PDFRenderer struct {
	// ChromePath overrides the browser executable; empty uses the chromedp lookup.
	ChromePath string
	Timeout    time.Duration
}

// NewPDFRenderer creates a renderer. chromePath may be empty.
func NewPDFRenderer(chromePath string) *PDFRenderer {
	return &PDFRenderer{ChromePath: chromePath, Timeout: DefaultCaptureTimeout}
}

// Render prints html to an A4 PDF using the margins and raster scale from settings.
func (r *PDFRenderer) Render(ctx context.Context, html string, settings PageSettings) ([]byte, error) {
	if err := settings.Validate(); err != nil {
		return nil, &ExportError{Format: ExtPDF, Message: "invalid page settings", Cause: err}
	}

	width, height := settings.PaperInches()
	var pdfBuf []byte
	err := r.capture(ctx, ExtPDF, html, settings,
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(width).
				WithPaperHeight(height).
				WithMarginTop(mmToInches(settings.MarginTopMM)).
				WithMarginRight(mmToInches(settings.MarginRightMM)).
				WithMarginBottom(mmToInches(settings.MarginBottomMM)).
				WithMarginLeft(mmToInches(settings.MarginLeftMM)).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}
	if len(pdfBuf) == 0 {
		return nil, &ExportError{Format: ExtPDF, Message: "browser returned an empty document"}
	}
	return pdfBuf, nil
}

// Snapshot renders html to a full-page JPEG at the configured quality and raster scale.
func (r *PDFRenderer) Snapshot(ctx context.Context, html string, settings PageSettings) ([]byte, error) {
	if err := settings.Validate(); err != nil {
		return nil, &ExportError{Format: ExtJPEG, Message: "invalid page settings", Cause: err}
	}

	var img []byte
	err := r.capture(ctx, ExtJPEG, html, settings, chromedp.FullScreenshot(&img, settings.JPEGQuality()))
	if err != nil {
		return nil, err
	}
	return img, nil
}

// capture loads html from a temporary file at the page's device metrics and runs action.
func (r *PDFRenderer) capture(ctx context.Context, format, html string, settings PageSettings, action chromedp.Action) error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if r.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.ChromePath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultCaptureTimeout
	}
	runCtx, cancelRun := context.WithTimeout(browserCtx, timeout)
	defer cancelRun()

	tmpDir, err := os.MkdirTemp("", "profile-export-")
	if err != nil {
		return &ExportError{Format: format, Message: "failed to create temp dir", Cause: err}
	}
	defer os.RemoveAll(tmpDir)

	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		return &ExportError{Format: format, Message: "failed to write page", Cause: err}
	}

	width, height := settings.PaperInches()
	err = chromedp.Run(runCtx,
		emulation.SetDeviceMetricsOverride(
			int64(math.Round(width*cssPixelsPerInch)),
			int64(math.Round(height*cssPixelsPerInch)),
			settings.RasterScale,
			false,
		),
		chromedp.Navigate("file://"+htmlPath),
		chromedp.WaitReady("body", chromedp.ByQuery),
		action,
	)
	if err != nil {
		return &ExportError{Format: format, Message: "browser capture failed", Cause: err}
	}
	return nil
}
