package render

import (
	"context"
	"errors"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Chrome prints markup with a headless Chrome instance started per call.
type Chrome struct {
	execPath string
	timeout  time.Duration
}

// NewChrome returns a renderer using the Chrome binary at execPath, or the
// one chromedp finds on the system when execPath is empty.
func NewChrome(execPath string, timeout time.Duration) *Chrome {
	return &Chrome{execPath: execPath, timeout: timeout}
}

func (c *Chrome) Render(ctx context.Context, markup string, size PageSize, m Margins) ([]byte, error) {
	top, bottom, left, right, err := m.Inches()
	if err != nil {
		return nil, &RenderError{Engine: "chrome", Err: err}
	}

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if c.execPath != "" {
		opts = append(opts, chromedp.ExecPath(c.execPath))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(taskCtx, c.timeout)
		defer cancel()
	}

	var pdf []byte
	err = chromedp.Run(taskCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, markup).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(size.Width).
				WithPaperHeight(size.Height).
				WithMarginTop(top).
				WithMarginBottom(bottom).
				WithMarginLeft(left).
				WithMarginRight(right).
				Do(ctx)
			pdf = data
			return err
		}),
	)
	if err != nil {
		return nil, &RenderError{Engine: "chrome", Err: err}
	}
	if len(pdf) == 0 {
		return nil, &RenderError{Engine: "chrome", Err: errors.New("empty document")}
	}
	return pdf, nil
}
