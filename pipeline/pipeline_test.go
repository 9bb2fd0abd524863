package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/opd-ai/bookpress/format"
	"github.com/opd-ai/bookpress/paginate"
	"github.com/opd-ai/bookpress/pdfdoc"
	"github.com/opd-ai/bookpress/pdftest"
	"github.com/opd-ai/bookpress/render"
)

// fakeFormatter echoes the chapter text as markup and fails the first
// failures calls with a formatting service error.
type fakeFormatter struct {
	failures int
	calls    int
	err      error
}

func (f *fakeFormatter) Format(ctx context.Context, chapter string, style format.Style) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if f.calls <= f.failures {
		return "", &format.FormattingServiceError{Provider: "fake", Err: errors.New("rate limited")}
	}
	return "<html><body>" + chapter + "</body></html>", nil
}

// fakeRenderer renders as many pages as the markup's body says, e.g.
// "<body>3</body>" renders three pages.
type fakeRenderer struct {
	t   *testing.T
	err error
	raw []byte
}

func (r *fakeRenderer) Render(ctx context.Context, markup string, size render.PageSize, m render.Margins) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.raw != nil {
		return r.raw, nil
	}
	body := strings.TrimSuffix(strings.TrimPrefix(markup, "<html><body>"), "</body></html>")
	n, err := strconv.Atoi(body)
	if err != nil {
		return nil, err
	}
	pages := make([]string, n)
	for i := range pages {
		pages[i] = fmt.Sprintf("body text %d", i+1)
	}
	return pdftest.Content(r.t, pages...), nil
}

func testPipeline(t *testing.T, f format.Formatter, r render.Renderer) *Pipeline {
	t.Helper()
	return &Pipeline{
		Formatter: f,
		Renderer:  r,
		WorkDir:   t.TempDir(),
		Style:     format.Style{FontSizePx: 16, LineHeight: "140%"},
		Layout:    render.Settings{Size: render.A4, Margins: render.DefaultMargins},
	}
}

func gita(t *testing.T, start int, first paginate.Orientation) paginate.Context {
	t.Helper()
	c, err := paginate.NewContext("Gita", "Vyasa", "Times", start, first)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

type recorder struct{ messages []string }

func (r *recorder) UpdateOutput(message string) { r.messages = append(r.messages, message) }

func TestRun(t *testing.T) {
	p := testPipeline(t, &fakeFormatter{}, &fakeRenderer{t: t})
	progress := &recorder{}
	p.Progress = progress

	res, err := p.Run(context.Background(), gita(t, 5, paginate.Recto), Chapter{Name: "Chapter 1", Text: "3"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Pages != 3 || res.StartPage != 5 {
		t.Errorf("pages = %d start = %d", res.Pages, res.StartPage)
	}
	if res.Next.StartPage != 8 || res.Next.FirstPage != paginate.Verso {
		t.Errorf("next = %+v", res.Next)
	}
	for _, path := range []string{res.MarkupPath, res.ContentPath, res.OverlayPath, res.OutputPath} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing %s: %v", path, err)
		}
	}
	if filepath.Base(res.OutputPath) != "Chapter_1.pdf" {
		t.Errorf("output = %s", res.OutputPath)
	}

	n, err := pdfdoc.CountFile(res.OutputPath)
	if err != nil || n != 3 {
		t.Fatalf("output pages = %d, %v", n, err)
	}
	data, err := os.ReadFile(res.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{"5", "6", "7", "Gita", "Vyasa", "body text 2"} {
		if !pdftest.TextShown(data, s) {
			t.Errorf("output does not show %q", s)
		}
	}
	if len(progress.messages) == 0 {
		t.Error("no progress reported")
	}
}

func TestRun_StageErrors(t *testing.T) {
	serviceErr := &format.FormattingServiceError{Provider: "fake", Err: errors.New("down")}
	tests := []struct {
		name      string
		formatter *fakeFormatter
		renderer  *fakeRenderer
		stage     string
		want      error
	}{
		{"format", &fakeFormatter{err: serviceErr}, &fakeRenderer{}, StageFormat, format.ErrFormattingService},
		{"render", &fakeFormatter{}, &fakeRenderer{err: &render.RenderError{Engine: "fake", Err: errors.New("crash")}}, StageRender, render.ErrRender},
		{"count", &fakeFormatter{}, &fakeRenderer{raw: []byte("not a pdf")}, StageCount, pdfdoc.ErrDocumentUnreadable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.renderer.t = t
			p := testPipeline(t, tt.formatter, tt.renderer)
			_, err := p.Run(context.Background(), gita(t, 1, paginate.Recto), Chapter{Name: "one", Text: "2"})
			var se *StageError
			if !errors.As(err, &se) {
				t.Fatalf("err = %v, want *StageError", err)
			}
			if se.Stage != tt.stage || se.Chapter != "one" {
				t.Errorf("stage = %q chapter = %q", se.Stage, se.Chapter)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if !strings.HasPrefix(err.Error(), "chapter one: "+tt.stage+": ") {
				t.Errorf("message = %q", err.Error())
			}
			if _, err := os.Stat(filepath.Join(p.WorkDir, "one.pdf")); !os.IsNotExist(err) {
				t.Error("output written despite failure")
			}
		})
	}
}

func TestRun_Retries(t *testing.T) {
	f := &fakeFormatter{failures: 1}
	p := testPipeline(t, f, &fakeRenderer{t: t})
	p.Retries = 1
	if _, err := p.Run(context.Background(), gita(t, 1, paginate.Recto), Chapter{Name: "c", Text: "1"}); err != nil {
		t.Fatalf("retry should succeed: %v", err)
	}
	if f.calls != 2 {
		t.Errorf("calls = %d, want 2", f.calls)
	}

	f = &fakeFormatter{failures: 1}
	p = testPipeline(t, f, &fakeRenderer{t: t})
	if _, err := p.Run(context.Background(), gita(t, 1, paginate.Recto), Chapter{Name: "c", Text: "1"}); err == nil {
		t.Fatal("expected failure without retries")
	}
	if f.calls != 1 {
		t.Errorf("calls = %d, want 1", f.calls)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := &fakeFormatter{}
	_, err := testPipeline(t, f, &fakeRenderer{t: t}).Run(ctx, gita(t, 1, paginate.Recto), Chapter{Name: "c", Text: "1"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
	if f.calls != 0 {
		t.Errorf("formatter called %d times", f.calls)
	}
}

func TestBook(t *testing.T) {
	p := testPipeline(t, &fakeFormatter{}, &fakeRenderer{t: t})
	bookPath := filepath.Join(t.TempDir(), "book.pdf")
	book := NewBook(p, bookPath, gita(t, 1, paginate.Recto))

	results, err := book.Compile(context.Background(), []Chapter{
		{Name: "one", Text: "3"},
		{Name: "two", Text: "2"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 || results[1].StartPage != 4 {
		t.Fatalf("results = %+v", results)
	}
	// Chapter two starts on page 4, the back of page 3.
	if results[0].Next.FirstPage != paginate.Verso {
		t.Errorf("chapter two orientation = %v", results[0].Next.FirstPage)
	}
	if book.Pages() != 5 {
		t.Errorf("book pages = %d", book.Pages())
	}
	if n, err := pdfdoc.CountFile(bookPath); err != nil || n != 5 {
		t.Errorf("book file pages = %d, %v", n, err)
	}
	if next := book.Context(); next.StartPage != 6 || next.FirstPage != paginate.Verso {
		t.Errorf("next = %+v", next)
	}
	if len(book.Chapters()) != 2 {
		t.Errorf("chapters = %d", len(book.Chapters()))
	}
}

func TestBook_FailureLeavesBookUnchanged(t *testing.T) {
	f := &fakeFormatter{}
	p := testPipeline(t, f, &fakeRenderer{t: t})
	book := NewBook(p, filepath.Join(t.TempDir(), "book.pdf"), gita(t, 1, paginate.Recto))

	results, err := book.Compile(context.Background(), []Chapter{
		{Name: "one", Text: "2"},
		{Name: "broken", Text: "many"},
		{Name: "three", Text: "1"},
	})
	var se *StageError
	if !errors.As(err, &se) || se.Chapter != "broken" || se.Stage != StageRender {
		t.Fatalf("err = %v", err)
	}
	if len(results) != 1 {
		t.Errorf("results = %d, want 1", len(results))
	}
	if f.calls != 2 {
		t.Errorf("compile continued past failure: %d format calls", f.calls)
	}
	if book.Pages() != 2 || book.Context().StartPage != 3 {
		t.Errorf("book = %d pages, next start %d", book.Pages(), book.Context().StartPage)
	}
}

func TestBook_OfflineEndToEnd(t *testing.T) {
	p := testPipeline(t, format.NewMarkdownFormatter(), render.NewFpdf())
	dir := t.TempDir()
	for name, text := range map[string]string{
		"01-opening.md": "# Opening\n\nThe field was quiet.",
		"02-dialogue.md": "# Dialogue\n\nArjuna asked and Krishna answered.",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	paths, err := DiscoverChapters(dir)
	if err != nil {
		t.Fatal(err)
	}

	bookPath := filepath.Join(t.TempDir(), "book.pdf")
	book := NewBook(p, bookPath, gita(t, 1, paginate.Recto))
	results, err := book.CompileFiles(context.Background(), paths)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 || results[0].Name != "01-opening" {
		t.Fatalf("results = %+v", results)
	}
	if book.Pages() != results[0].Pages+results[1].Pages {
		t.Errorf("book pages = %d", book.Pages())
	}
	markup, err := os.ReadFile(results[1].MarkupPath)
	if err != nil || !strings.Contains(string(markup), "Krishna") {
		t.Errorf("markup = %q, %v", markup, err)
	}
}

func TestDiscoverChapters(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"chapter10.txt", "chapter2.md", "preface.txt", "notes.pdf", "chapter2a.txt", "Chapter1.TXT"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "chapter3.md"), 0o755); err != nil {
		t.Fatal(err)
	}

	paths, err := DiscoverChapters(dir)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, p := range paths {
		got = append(got, filepath.Base(p))
	}
	want := []string{"preface.txt", "Chapter1.TXT", "chapter2.md", "chapter2a.txt", "chapter10.txt"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if _, err := DiscoverChapters(t.TempDir()); err == nil {
		t.Error("expected error for empty directory")
	}
}

func TestReadChapter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "03 The Road.md")
	if err := os.WriteFile(path, []byte("text"), 0o600); err != nil {
		t.Fatal(err)
	}
	ch, err := ReadChapter(path)
	if err != nil {
		t.Fatal(err)
	}
	if ch.Name != "03 The Road" || ch.Text != "text" {
		t.Errorf("chapter = %+v", ch)
	}
	if got := fileStem(ch.Name); got != "03_The_Road" {
		t.Errorf("fileStem = %q", got)
	}
	if got := fileStem("???"); got != "chapter" {
		t.Errorf("fileStem = %q", got)
	}
}
