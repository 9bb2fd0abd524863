// Package overlay draws running headers, footers and page numbers onto
// otherwise blank PDF pages, one page per page of the chapter they will be
// stamped onto.
package overlay

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/opd-ai/bookpress/paginate"
)

var ErrUnknownFont = errors.New("font family is not a core PDF font and no font file was registered")

// A4 page size in points.
const (
	A4Width  = 595.28
	A4Height = 841.89
)

// fixedDate keeps overlay bytes identical between runs.
var fixedDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

var coreFonts = map[string]bool{
	"times":        true,
	"helvetica":    true,
	"arial":        true,
	"courier":      true,
	"symbol":       true,
	"zapfdingbats": true,
}

// Generator renders overlay documents.
type Generator struct {
	pageWidth  float64
	pageHeight float64
	fontFiles  map[string]string
}

type Option func(*Generator)

// WithPageSize sets the overlay page size in points. It must match the
// content document the overlay is merged onto.
func WithPageSize(width, height float64) Option {
	return func(g *Generator) {
		if width > 0 && height > 0 {
			g.pageWidth = width
			g.pageHeight = height
		}
	}
}

// WithFontFile registers a TrueType file for a family that is not one of the
// core PDF fonts.
func WithFontFile(family, path string) Option {
	return func(g *Generator) {
		g.fontFiles[strings.ToLower(family)] = path
	}
}

// New creates a Generator for A4 pages unless told otherwise.
func New(opts ...Option) *Generator {
	g := &Generator{
		pageWidth:  A4Width,
		pageHeight: A4Height,
		fontFiles:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// PageSize reports the overlay page size in points.
func (g *Generator) PageSize() (float64, float64) {
	return g.pageWidth, g.pageHeight
}

// Sized returns a copy of g that draws pages of the given size.
func (g *Generator) Sized(width, height float64) *Generator {
	cp := *g
	WithPageSize(width, height)(&cp)
	return &cp
}

// Generate returns a PDF with pageCount pages carrying only the marks decided
// for each page of the chapter described by c.
func (g *Generator) Generate(ctx context.Context, c paginate.Context, pageCount int) ([]byte, error) {
	decisions, err := paginate.Plan(ctx, c, pageCount)
	if err != nil {
		return nil, err
	}

	pdf, err := g.newDocument(c.Font)
	if err != nil {
		return nil, err
	}
	translate := func(s string) string { return s }
	if coreFonts[strings.ToLower(c.Font)] {
		translate = pdf.UnicodeTranslatorFromDescriptor("")
	}

	for _, d := range decisions {
		pdf.AddPage()
		drawMarks(pdf, g.pageWidth, g.pageHeight, d, translate)
		if pdf.Err() {
			return nil, fmt.Errorf("drawing overlay page %d: %w", d.PageNumber, pdf.Error())
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing overlay: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateFile writes the overlay to path.
func (g *Generator) GenerateFile(ctx context.Context, c paginate.Context, pageCount int, path string) error {
	data, err := g.Generate(ctx, c, pageCount)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("saving overlay: %w", err)
	}
	return nil
}

func (g *Generator) newDocument(font string) (*gofpdf.Fpdf, error) {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: g.pageWidth, Ht: g.pageHeight},
	})
	pdf.SetCreationDate(fixedDate)
	pdf.SetCatalogSort(true)
	pdf.SetCompression(true)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	family := strings.ToLower(font)
	if path, ok := g.fontFiles[family]; ok {
		pdf.AddUTF8Font(font, "", path)
		if pdf.Err() {
			return nil, fmt.Errorf("loading font %s from %s: %w", font, path, pdf.Error())
		}
	} else if !coreFonts[family] {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFont, font)
	}
	return pdf, nil
}
