// Package pipeline runs chapters through formatting, rendering, overlay
// generation and merging, and collects the results into a book.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/opd-ai/bookpress/format"
	"github.com/opd-ai/bookpress/overlay"
	"github.com/opd-ai/bookpress/paginate"
	"github.com/opd-ai/bookpress/pdfdoc"
	"github.com/opd-ai/bookpress/render"
	"github.com/opd-ai/bookpress/util"
)

type Progressor interface {
	UpdateOutput(message string)
}

type nullProgressor struct{}

func (nullProgressor) UpdateOutput(message string) {}

// Pipeline holds the collaborators and settings shared by every chapter.
type Pipeline struct {
	Formatter format.Formatter
	Renderer  render.Renderer
	Overlay   *overlay.Generator
	WorkDir   string
	Style     format.Style
	Layout    render.Settings
	// Retries is how many extra formatting attempts a chapter gets after a
	// formatting service failure.
	Retries  int
	Progress Progressor
}

// Result describes the files produced for one chapter.
type Result struct {
	Name        string
	MarkupPath  string
	ContentPath string
	OverlayPath string
	OutputPath  string
	Pages       int
	StartPage   int
	// Next is the context the following chapter should be laid out with.
	Next paginate.Context
}

// Run lays out one chapter starting from pctx. Each step must succeed before
// the next starts, and the first failure ends the run as a *StageError.
func (p *Pipeline) Run(ctx context.Context, pctx paginate.Context, ch Chapter) (*Result, error) {
	pr := p.Progress
	if pr == nil {
		pr = nullProgressor{}
	}
	gen := p.Overlay
	if gen == nil {
		gen = overlay.New()
	}
	if err := os.MkdirAll(p.WorkDir, 0o755); err != nil {
		return nil, &StageError{Chapter: ch.Name, Stage: StageSave, Err: fmt.Errorf("creating work directory: %w", err)}
	}

	stem := filepath.Join(p.WorkDir, fileStem(ch.Name))
	res := &Result{
		Name:        ch.Name,
		MarkupPath:  stem + ".html",
		ContentPath: stem + ".content.pdf",
		OverlayPath: stem + ".overlay.pdf",
		OutputPath:  stem + ".pdf",
		StartPage:   pctx.StartPage,
	}

	var markup string
	var content []byte
	steps := []struct {
		name     string
		function func() error
	}{
		{
			name: StageFormat,
			function: func() error {
				pr.UpdateOutput(fmt.Sprintf("Formatting %s", ch.Name))
				var err error
				markup, err = p.format(ctx, ch)
				return err
			},
		},
		{
			name: StageSave,
			function: func() error {
				return os.WriteFile(res.MarkupPath, []byte(markup), 0o644)
			},
		},
		{
			name: StageRender,
			function: func() error {
				pr.UpdateOutput(fmt.Sprintf("Rendering %s", ch.Name))
				var err error
				content, err = p.Renderer.Render(ctx, markup, p.Layout.Size, p.Layout.Margins)
				if err != nil {
					return err
				}
				return os.WriteFile(res.ContentPath, content, 0o644)
			},
		},
		{
			name: StageCount,
			function: func() error {
				var err error
				res.Pages, err = pdfdoc.CountFile(res.ContentPath)
				return err
			},
		},
		{
			name: StageOverlay,
			function: func() error {
				pr.UpdateOutput(fmt.Sprintf("Numbering %d pages of %s from page %d", res.Pages, ch.Name, pctx.StartPage))
				w, h, err := pdfdoc.PageSize(res.ContentPath)
				if err != nil {
					return err
				}
				return gen.Sized(w, h).GenerateFile(ctx, pctx, res.Pages, res.OverlayPath)
			},
		},
		{
			name: StageMerge,
			function: func() error {
				return pdfdoc.MergeFile(res.ContentPath, res.OverlayPath, res.OutputPath)
			},
		},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, &StageError{Chapter: ch.Name, Stage: step.name, Err: err}
		}
		start := time.Now()
		util.InfoLogger.Printf("Chapter %s: %s", ch.Name, step.name)
		if err := step.function(); err != nil {
			util.ErrorLogger.Printf("Chapter %s: %s failed: %v", ch.Name, step.name, err)
			return nil, &StageError{Chapter: ch.Name, Stage: step.name, Err: err}
		}
		util.InfoLogger.Printf("Chapter %s: %s done in %v", ch.Name, step.name, time.Since(start))
	}

	res.Next = pctx.Next(res.Pages)
	util.InfoLogger.Printf("Chapter %s: %d pages, %d-%d", ch.Name, res.Pages, res.StartPage, res.Next.StartPage-1)
	pr.UpdateOutput(fmt.Sprintf("Finished %s: %d pages", ch.Name, res.Pages))
	return res, nil
}

// format calls the formatter, retrying formatting service failures up to
// p.Retries times.
func (p *Pipeline) format(ctx context.Context, ch Chapter) (string, error) {
	var err error
	for attempt := 0; attempt <= p.Retries; attempt++ {
		if attempt > 0 {
			util.InfoLogger.Printf("Chapter %s: retrying format, attempt %d", ch.Name, attempt+1)
		}
		var markup string
		markup, err = p.Formatter.Format(ctx, ch.Text, p.Style)
		if err == nil {
			return markup, nil
		}
		if !errors.Is(err, format.ErrFormattingService) || ctx.Err() != nil {
			return "", err
		}
	}
	return "", err
}
