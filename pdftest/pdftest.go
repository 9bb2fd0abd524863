// Package pdftest builds small PDF fixtures and looks inside generated
// documents for tests.
package pdftest

import (
	"bytes"
	"compress/zlib"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/jung-kurt/gofpdf"
)

var streamRe = regexp.MustCompile(`(?s)stream\r?\n(.*?)endstream`)

// Streams returns the contents of every stream object in data, inflated
// when it is zlib compressed and raw otherwise.
func Streams(data []byte) []string {
	var out []string
	for _, m := range streamRe.FindAllSubmatch(data, -1) {
		raw := m[1]
		if zr, err := zlib.NewReader(bytes.NewReader(raw)); err == nil {
			inflated, _ := io.ReadAll(zr)
			zr.Close()
			if len(inflated) > 0 {
				out = append(out, string(inflated))
				continue
			}
		}
		out = append(out, string(raw))
	}
	return out
}

// TextShown reports whether a text-showing operator for s appears in any
// stream of data.
func TextShown(data []byte, s string) bool {
	needle := "(" + s + ") Tj"
	for _, st := range Streams(data) {
		if strings.Contains(st, needle) {
			return true
		}
	}
	return false
}

// TextStreams returns the streams of data that show text, in document order.
func TextStreams(data []byte) []string {
	var out []string
	for _, st := range Streams(data) {
		if strings.Contains(st, " Tj") {
			out = append(out, st)
		}
	}
	return out
}

// Content returns an A4 PDF with one page per entry of pages, each page
// showing its entry as body text.
func Content(t testing.TB, pages ...string) []byte {
	t.Helper()
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetCreationDate(time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC))
	pdf.SetCatalogSort(true)
	pdf.SetFont("Helvetica", "", 11)
	for _, text := range pages {
		pdf.AddPage()
		pdf.Text(90, 400, text)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("building content fixture: %v", err)
	}
	return buf.Bytes()
}

// WriteFile writes data to name inside a fresh temp dir and returns the path.
func WriteFile(t testing.TB, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}
