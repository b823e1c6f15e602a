package exportpdf

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/goliatone/go-shopadmin/catalog"
	"github.com/goliatone/go-shopadmin/export"
)

const defaultPDFScale = 1.0

var pdfLengthPattern = regexp.MustCompile(`^\s*([0-9]+(?:\.[0-9]+)?)\s*([a-zA-Z]*)\s*$`)

var pdfPageSizesInches = map[string]struct {
	width  float64
	height float64
}{
	"A3":     {width: 11.69, height: 16.54},
	"A4":     {width: 8.27, height: 11.69},
	"A5":     {width: 5.83, height: 8.27},
	"LETTER": {width: 8.5, height: 11},
	"LEGAL":  {width: 8.5, height: 14},
}

// BrowserCandidates are looked up on PATH when BrowserPath is empty.
var BrowserCandidates = []string{"chromium", "chromium-browser", "google-chrome", "google-chrome-stable", "headless-shell"}

// ChromiumEngine renders PDF output using a shared headless Chromium instance.
type ChromiumEngine struct {
	BrowserPath string
	Headless    bool
	Timeout     time.Duration
	Args        []string
	Scale       float64
	Margin      string

	initOnce      sync.Once
	initErr       error
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// Available reports whether a browser binary can be found.
func (e *ChromiumEngine) Available() bool {
	_, err := e.browserPath()
	return err == nil
}

// Render executes Chromium-based HTML-to-PDF rendering. It returns
// ErrEngineUnavailable when no browser can be started.
func (e *ChromiumEngine) Render(ctx context.Context, req RenderRequest) ([]byte, error) {
	if e == nil {
		return nil, ErrEngineUnavailable
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if err := e.ensureBrowser(); err != nil {
		return nil, err
	}

	params, err := buildPrintToPDFParams(req.Options.PDF, e.Scale, e.Margin)
	if err != nil {
		return nil, err
	}

	tabCtx, cancel := chromedp.NewContext(e.browserCtx)
	defer cancel()

	execCtx, cancelReq := context.WithCancel(tabCtx)
	defer cancelReq()
	go func() {
		select {
		case <-ctx.Done():
			cancelReq()
		case <-execCtx.Done():
		}
	}()
	if e.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		execCtx, cancelTimeout = context.WithTimeout(execCtx, e.Timeout)
		defer cancelTimeout()
	}

	var pdf []byte
	actions := []chromedp.Action{
		network.Enable(),
		network.SetBlockedURLs([]string{"http://*", "https://*"}),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(req.HTML)).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = params.Do(ctx)
			return err
		}),
	}

	if err := chromedp.Run(execCtx, actions...); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
		}
		return nil, catalog.NewError(catalog.KindExternal, "chromium pdf render failed", err)
	}
	return pdf, nil
}

// Close releases Chromium resources if they have been initialized.
func (e *ChromiumEngine) Close() error {
	if e == nil {
		return nil
	}
	if e.browserCancel != nil {
		e.browserCancel()
	}
	if e.allocCancel != nil {
		e.allocCancel()
	}
	return nil
}

func (e *ChromiumEngine) browserPath() (string, error) {
	if e.BrowserPath != "" {
		return exec.LookPath(e.BrowserPath)
	}
	for _, candidate := range BrowserCandidates {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}
	return "", exec.ErrNotFound
}

func (e *ChromiumEngine) ensureBrowser() error {
	e.initOnce.Do(func() {
		path, err := e.browserPath()
		if err != nil {
			e.initErr = fmt.Errorf("%w: no chromium binary: %v", ErrEngineUnavailable, err)
			return
		}

		options := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
		options = append(options, chromedp.ExecPath(path))
		options = append(options, chromedp.Flag("headless", e.Headless))
		options = append(options, allocatorOptionsFromArgs(e.Args)...)

		e.allocCtx, e.allocCancel = chromedp.NewExecAllocator(context.Background(), options...)
		e.browserCtx, e.browserCancel = chromedp.NewContext(e.allocCtx)
	})
	return e.initErr
}

func buildPrintToPDFParams(opts export.PDFOptions, scale float64, margin string) (*page.PrintToPDFParams, error) {
	params := page.PrintToPDF().WithPrintBackground(true)

	if scale == 0 {
		scale = defaultPDFScale
	}
	if scale < 0.1 || scale > 2.0 {
		return nil, catalog.NewError(catalog.KindValidation, "pdf scale must be between 0.1 and 2.0", nil)
	}
	params = params.WithScale(scale)

	landscape := true
	if opts.Landscape != nil {
		landscape = *opts.Landscape
	}
	params = params.WithLandscape(landscape)

	if opts.PageSize == "" {
		params = params.WithPreferCSSPageSize(true)
	} else {
		size, ok := pdfPageSizesInches[strings.ToUpper(opts.PageSize)]
		if !ok {
			return nil, catalog.NewError(catalog.KindValidation, fmt.Sprintf("unsupported pdf page size: %s", opts.PageSize), nil)
		}
		params = params.WithPaperWidth(size.width).WithPaperHeight(size.height)
	}

	if margin != "" {
		value, err := parseLengthInches(margin)
		if err != nil {
			return nil, err
		}
		params = params.WithMarginTop(value).WithMarginBottom(value).WithMarginLeft(value).WithMarginRight(value)
	}

	return params, nil
}

func parseLengthInches(value string) (float64, error) {
	matches := pdfLengthPattern.FindStringSubmatch(value)
	if len(matches) != 3 {
		return 0, catalog.NewError(catalog.KindValidation, fmt.Sprintf("invalid pdf length: %s", value), nil)
	}

	unit := strings.ToLower(matches[2])
	if unit == "" {
		unit = "in"
	}

	amount, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, catalog.NewError(catalog.KindValidation, fmt.Sprintf("invalid pdf length: %s", value), err)
	}

	switch unit {
	case "in":
		return amount, nil
	case "cm":
		return amount / 2.54, nil
	case "mm":
		return amount / 25.4, nil
	case "pt":
		return amount / 72.0, nil
	case "px":
		return amount / 96.0, nil
	default:
		return 0, catalog.NewError(catalog.KindValidation, fmt.Sprintf("unsupported pdf length unit: %s", unit), nil)
	}
}

func allocatorOptionsFromArgs(args []string) []chromedp.ExecAllocatorOption {
	options := make([]chromedp.ExecAllocatorOption, 0, len(args))
	for _, arg := range args {
		arg = strings.TrimPrefix(strings.TrimSpace(arg), "--")
		if arg == "" {
			continue
		}
		if name, value, ok := strings.Cut(arg, "="); ok {
			options = append(options, chromedp.Flag(name, value))
			continue
		}
		options = append(options, chromedp.Flag(arg, true))
	}
	return options
}
