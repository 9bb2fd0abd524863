package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/net/html"
)

var fpdfDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Fpdf lays out markup directly with gofpdf. It understands the handful of
// elements a formatted chapter uses and needs no browser, at the cost of
// ignoring stylesheets.
type Fpdf struct {
	TextFont    string
	HeadingFont string
	FontSize    float64
}

func NewFpdf() *Fpdf {
	return &Fpdf{TextFont: "Times", HeadingFont: "Times", FontSize: 12}
}

func (f *Fpdf) Render(ctx context.Context, markup string, size PageSize, m Margins) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &RenderError{Engine: "fpdf", Err: err}
	}
	top, bottom, left, right, err := m.Inches()
	if err != nil {
		return nil, &RenderError{Engine: "fpdf", Err: err}
	}
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, &RenderError{Engine: "fpdf", Err: fmt.Errorf("parsing markup: %w", err)}
	}
	root := findBody(doc)
	if root == nil {
		root = doc
	}

	width, height := size.Points()
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: width, Ht: height},
	})
	pdf.SetCreationDate(fpdfDate)
	pdf.SetCatalogSort(true)
	pdf.SetMargins(left*72, top*72, right*72)
	pdf.SetAutoPageBreak(true, bottom*72)
	pdf.AddPage()

	w := &writer{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		family: f.TextFont,
		size:   f.FontSize,
		r:      f,
		height: height,
	}
	pdf.SetFont(w.family, w.style, w.size)
	w.children(root)

	if pdf.Err() {
		return nil, &RenderError{Engine: "fpdf", Err: pdf.Error()}
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &RenderError{Engine: "fpdf", Err: err}
	}
	return buf.Bytes(), nil
}

type writer struct {
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	r      *Fpdf
	family string
	style  string
	size   float64
	height float64
}

func (w *writer) lineHeight() float64 { return w.size * 1.4 }

// with renders fn in the given font, then restores the previous one.
func (w *writer) with(family, style string, size float64, fn func()) {
	prevFamily, prevStyle, prevSize := w.family, w.style, w.size
	w.family, w.style, w.size = family, style, size
	w.pdf.SetFont(family, style, size)
	fn()
	w.family, w.style, w.size = prevFamily, prevStyle, prevSize
	w.pdf.SetFont(prevFamily, prevStyle, prevSize)
}

func (w *writer) addStyle(s string) string {
	if strings.Contains(w.style, s) {
		return w.style
	}
	if s == "B" {
		return "B" + w.style
	}
	return w.style + s
}

// newline ends the current line unless the cursor already sits at the left
// margin.
func (w *writer) newline() {
	left, _, _, _ := w.pdf.GetMargins()
	if w.pdf.GetX() > left+0.5 {
		w.pdf.Ln(w.lineHeight())
	}
}

func (w *writer) heading(n *html.Node, scale float64, after float64) {
	w.newline()
	text := strings.Join(strings.Fields(nodeText(n)), " ")
	if text == "" {
		return
	}
	w.with(w.r.HeadingFont, "B", w.r.FontSize*scale, func() {
		w.pdf.MultiCell(0, w.lineHeight(), w.tr(text), "", "C", false)
	})
	w.pdf.Ln(after)
}

func (w *writer) node(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.text(n.Data)
	case html.ElementNode:
		switch n.Data {
		case "head", "style", "script", "title":
		case "h1":
			if _, y := w.pdf.GetXY(); y < w.height/4 {
				w.pdf.SetY(w.height / 4)
			}
			w.heading(n, 2, w.r.FontSize*2)
		case "h2":
			w.pdf.Ln(w.r.FontSize)
			w.heading(n, 1.5, w.r.FontSize)
		case "h3", "h4", "h5", "h6":
			w.pdf.Ln(w.r.FontSize * 0.5)
			w.heading(n, 1.2, w.r.FontSize*0.5)
		case "p", "div":
			w.newline()
			w.pdf.SetX(w.pdf.GetX() + w.size)
			w.children(n)
			w.newline()
			w.pdf.Ln(w.size * 0.2)
		case "blockquote":
			w.newline()
			left, top, right, _ := w.pdf.GetMargins()
			w.pdf.SetLeftMargin(left + 2*w.size)
			w.pdf.SetX(left + 2*w.size)
			w.with(w.family, w.addStyle("I"), w.size, func() { w.children(n) })
			w.newline()
			w.pdf.SetMargins(left, top, right)
			w.pdf.SetX(left)
		case "strong", "b":
			w.with(w.family, w.addStyle("B"), w.size, func() { w.children(n) })
		case "em", "i":
			w.with(w.family, w.addStyle("I"), w.size, func() { w.children(n) })
		case "code", "pre":
			w.with("Courier", "", w.size*0.85, func() { w.children(n) })
		case "li":
			w.newline()
			w.pdf.Write(w.lineHeight(), w.tr("• "))
			w.children(n)
			w.newline()
		case "br":
			w.pdf.Ln(w.lineHeight())
		case "hr":
			w.newline()
			w.pdf.Ln(w.lineHeight())
		default:
			w.children(n)
		}
	default:
		w.children(n)
	}
}

func (w *writer) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.node(c)
	}
}

// text writes a run of inline text with HTML whitespace collapsing.
func (w *writer) text(s string) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return
	}
	text := strings.Join(fields, " ")
	if unicode.IsSpace(rune(s[0])) {
		left, _, _, _ := w.pdf.GetMargins()
		if w.pdf.GetX() > left+w.size+0.5 {
			text = " " + text
		}
	}
	if unicode.IsSpace(rune(s[len(s)-1])) {
		text += " "
	}
	w.pdf.Write(w.lineHeight(), w.tr(text))
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findBody(c); found != nil {
			return found
		}
	}
	return nil
}

func nodeText(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return text.String()
}
