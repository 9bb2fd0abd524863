package pdfdoc

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// TextLayer returns the plain text of every page of the PDF at path, in page
// order. Text drawn inside stamped form XObjects is not part of a page's
// own text layer and is not returned.
func TextLayer(path string) ([]string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, unreadable(path, err)
	}
	defer func() { _ = f.Close() }()

	fonts := make(map[string]*pdf.Font)
	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		text, err := pageText(r, i, fonts)
		if err != nil {
			return nil, err
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// PageText returns the plain text of one page, numbered from 1.
func PageText(path string, page int) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", unreadable(path, err)
	}
	defer func() { _ = f.Close() }()

	if page < 1 || page > r.NumPage() {
		return "", fmt.Errorf("page %d out of range 1-%d", page, r.NumPage())
	}
	return pageText(r, page, make(map[string]*pdf.Font))
}

func pageText(r *pdf.Reader, i int, fonts map[string]*pdf.Font) (string, error) {
	p := r.Page(i)
	if p.V.IsNull() {
		return "", nil
	}
	for _, name := range p.Fonts() {
		if _, ok := fonts[name]; !ok {
			font := p.Font(name)
			fonts[name] = &font
		}
	}
	text, err := p.GetPlainText(fonts)
	if err != nil {
		return "", fmt.Errorf("reading text of page %d: %w", i, err)
	}
	return text, nil
}
