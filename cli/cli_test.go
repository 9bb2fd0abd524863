package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/opd-ai/bookpress/pdfdoc"
	"github.com/opd-ai/bookpress/pdftest"
)

// run executes the command line with a config file that keeps everything
// offline.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cfg := filepath.Join(dir, "bookpress.yaml")
	if _, err := os.Stat(cfg); os.IsNotExist(err) {
		yaml := "book:\n  title: Gita\n  author: Vyasa\n" +
			"formatter:\n  provider: markdown\n" +
			"render:\n  engine: fpdf\n" +
			"output:\n  dir: " + filepath.Join(dir, "out") + "\n"
		if err := os.WriteFile(cfg, []byte(yaml), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", cfg}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestCount(t *testing.T) {
	dir := t.TempDir()
	path := pdftest.WriteFile(t, "doc.pdf", pdftest.Content(t, "a", "b"))
	out, err := run(t, dir, "count", path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "2" {
		t.Errorf("out = %q", out)
	}
	if _, err := run(t, dir, "count", filepath.Join(dir, "missing.pdf")); !errors.Is(err, pdfdoc.ErrDocumentUnreadable) {
		t.Errorf("err = %v", err)
	}
}

func TestPlan(t *testing.T) {
	out, err := run(t, t.TempDir(), "plan", "--pages", "3", "--start", "20")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("out = %q", out)
	}
	for i, want := range [][]string{
		{"PAGE", "ROLE"},
		{"20", "chapter-first-page", "footer", "center"},
		{"21", "verso", "header", "left", "Vyasa"},
		{"22", "recto", "header", "right", "Gita"},
	} {
		if got := strings.Fields(lines[i]); !startsWith(got, want) {
			t.Errorf("line %d = %q, want fields %v", i, lines[i], want)
		}
	}

	if _, err := run(t, t.TempDir(), "plan", "--pages", "0"); err == nil {
		t.Error("expected error for --pages 0")
	}
	if _, err := run(t, t.TempDir(), "plan", "--pages", "2", "--first-page", "upside"); err == nil {
		t.Error("expected error for bad --first-page")
	}
}

func startsWith(got, want []string) bool {
	if len(got) < len(want) {
		return false
	}
	for i := range want {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestOverlayAndStamp(t *testing.T) {
	dir := t.TempDir()
	content := filepath.Join(dir, "content.pdf")
	if err := os.WriteFile(content, pdftest.Content(t, "one", "two", "three"), 0o600); err != nil {
		t.Fatal(err)
	}
	ov := filepath.Join(dir, "overlay.pdf")
	if _, err := run(t, dir, "overlay", "--like", content, "--out", ov, "--start", "7"); err != nil {
		t.Fatal(err)
	}
	if n, err := pdfdoc.CountFile(ov); err != nil || n != 3 {
		t.Fatalf("overlay pages = %d, %v", n, err)
	}

	stamped := filepath.Join(dir, "stamped.pdf")
	out, err := run(t, dir, "stamp", content, ov, stamped)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "3 pages") {
		t.Errorf("out = %q", out)
	}

	short := filepath.Join(dir, "short.pdf")
	if _, err := run(t, dir, "overlay", "--pages", "2", "--out", short); err != nil {
		t.Fatal(err)
	}
	_, err = run(t, dir, "stamp", content, short, filepath.Join(dir, "bad.pdf"))
	var buf bytes.Buffer
	printError(&buf, err)
	if !strings.Contains(buf.String(), "content pages: 3") || !strings.Contains(buf.String(), "overlay pages: 2") {
		t.Errorf("error output = %q", buf.String())
	}
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	path := pdftest.WriteFile(t, "doc.pdf", pdftest.Content(t, "first words", "second words"))
	out, err := run(t, dir, "inspect", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "--- page 2 ---") || !strings.Contains(out, "second") {
		t.Errorf("out = %q", out)
	}
	out, err = run(t, dir, "inspect", "--page", "1", path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "page 2") {
		t.Errorf("out = %q", out)
	}
}

func TestChapterAndBook(t *testing.T) {
	dir := t.TempDir()
	chapters := filepath.Join(dir, "chapters")
	if err := os.Mkdir(chapters, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, text := range map[string]string{
		"1-field.md":  "# The Field\n\nTwo armies faced each other.",
		"2-answer.md": "# The Answer\n\nThe charioteer spoke at length.",
	} {
		if err := os.WriteFile(filepath.Join(chapters, name), []byte(text), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	out, err := run(t, dir, "book", chapters)
	if err != nil {
		t.Fatalf("book: %v\n%s", err, out)
	}
	if !strings.Contains(out, "chapter 1-field: pages 1-") || !strings.Contains(out, "2 chapters") {
		t.Errorf("out = %q", out)
	}
	bookPath := filepath.Join(dir, "out", "book.pdf")
	pages, err := pdfdoc.CountFile(bookPath)
	if err != nil {
		t.Fatal(err)
	}

	// Rebuilding starts over rather than appending to the old book.
	if _, err := run(t, dir, "book", chapters); err != nil {
		t.Fatal(err)
	}
	if n, _ := pdfdoc.CountFile(bookPath); n != pages {
		t.Errorf("rebuilt book has %d pages, want %d", n, pages)
	}

	out, err = run(t, dir, "chapter", "--start", "101", filepath.Join(chapters, "2-answer.md"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "chapter 2-answer: pages 101-") {
		t.Errorf("out = %q", out)
	}
	if n, _ := pdfdoc.CountFile(bookPath); n <= pages {
		t.Errorf("chapter was not appended: %d pages", n)
	}
}
