package pipeline

import (
	"context"

	"github.com/opd-ai/bookpress/paginate"
	"github.com/opd-ai/bookpress/pdfdoc"
	"github.com/opd-ai/bookpress/util"
)

// Book appends chapters to one PDF, carrying page numbering and physical
// sides from each chapter into the next.
type Book struct {
	pipeline *Pipeline
	path     string
	next     paginate.Context
	pages    int
	chapters []*Result
}

// NewBook starts a book at path whose next chapter is laid out with c.
func NewBook(p *Pipeline, path string, c paginate.Context) *Book {
	return &Book{pipeline: p, path: path, next: c}
}

func (b *Book) Path() string { return b.path }

// Context is the context the next added chapter will be laid out with.
func (b *Book) Context() paginate.Context { return b.next }

// Pages is the page count of the book file after the last append.
func (b *Book) Pages() int { return b.pages }

func (b *Book) Chapters() []*Result { return b.chapters }

// AddChapter runs ch through the pipeline and appends the numbered chapter to
// the book. On failure the book and its running context are unchanged.
func (b *Book) AddChapter(ctx context.Context, ch Chapter) (*Result, error) {
	res, err := b.pipeline.Run(ctx, b.next, ch)
	if err != nil {
		return nil, err
	}
	pages, err := pdfdoc.AppendFile(b.path, res.OutputPath)
	if err != nil {
		util.ErrorLogger.Printf("Chapter %s: appending to %s failed: %v", ch.Name, b.path, err)
		return nil, &StageError{Chapter: ch.Name, Stage: StageAppend, Err: err}
	}
	util.InfoLogger.Printf("Book %s now has %d pages", b.path, pages)
	b.pages = pages
	b.next = res.Next
	b.chapters = append(b.chapters, res)
	return res, nil
}

// Compile adds chapters in order and stops at the first failure.
func (b *Book) Compile(ctx context.Context, chapters []Chapter) ([]*Result, error) {
	results := make([]*Result, 0, len(chapters))
	for _, ch := range chapters {
		res, err := b.AddChapter(ctx, ch)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// CompileFiles reads each chapter file just before it is laid out.
func (b *Book) CompileFiles(ctx context.Context, paths []string) ([]*Result, error) {
	results := make([]*Result, 0, len(paths))
	for _, path := range paths {
		ch, err := ReadChapter(path)
		if err != nil {
			return results, &StageError{Chapter: path, Stage: StageRead, Err: err}
		}
		res, err := b.AddChapter(ctx, ch)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}
