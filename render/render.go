// Package render prints chapter markup to PDF.
package render

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/opd-ai/bookpress/config"
)

var ErrRender = errors.New("render error")

type RenderError struct {
	Engine string
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%s renderer: %v", e.Engine, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

func (e *RenderError) Is(target error) bool { return target == ErrRender }

// PageSize is a paper size in inches.
type PageSize struct {
	Name   string
	Width  float64
	Height float64
}

var (
	A4     = PageSize{Name: "A4", Width: 8.27, Height: 11.69}
	A5     = PageSize{Name: "A5", Width: 5.83, Height: 8.27}
	Letter = PageSize{Name: "Letter", Width: 8.5, Height: 11}
	Legal  = PageSize{Name: "Legal", Width: 8.5, Height: 14}
)

// Points returns the page size in PDF points.
func (p PageSize) Points() (float64, float64) {
	return p.Width * 72, p.Height * 72
}

func ParsePageSize(name string) (PageSize, error) {
	for _, size := range []PageSize{A4, A5, Letter, Legal} {
		if strings.EqualFold(name, size.Name) {
			return size, nil
		}
	}
	return PageSize{}, fmt.Errorf("unknown page size %q", name)
}

// Margins holds CSS lengths such as "70px" or "1in".
type Margins struct {
	Top    string
	Bottom string
	Left   string
	Right  string
}

// DefaultMargins leave room above and below the body for the running
// header and the page number.
var DefaultMargins = Margins{Top: "70px", Bottom: "60px", Left: "70px", Right: "40px"}

// Inches converts all four margins to inches.
func (m Margins) Inches() (top, bottom, left, right float64, err error) {
	values := []*float64{&top, &bottom, &left, &right}
	for i, s := range []string{m.Top, m.Bottom, m.Left, m.Right} {
		if *values[i], err = ParseLength(s); err != nil {
			return 0, 0, 0, 0, err
		}
	}
	return top, bottom, left, right, nil
}

var unitsPerInch = map[string]float64{
	"px": 96,
	"pt": 72,
	"in": 1,
	"mm": 25.4,
	"cm": 2.54,
}

// ParseLength converts a CSS length to inches. A bare number is taken as
// pixels and an empty string as zero.
func ParseLength(s string) (float64, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, nil
	}
	perInch := unitsPerInch["px"]
	for unit, n := range unitsPerInch {
		if strings.HasSuffix(s, unit) {
			s, perInch = strings.TrimSpace(strings.TrimSuffix(s, unit)), n
			break
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid length %q", s)
	}
	return v / perInch, nil
}

// Renderer prints one markup document to PDF bytes.
type Renderer interface {
	Render(ctx context.Context, markup string, size PageSize, m Margins) ([]byte, error)
}

// Settings are the layout parameters every chapter is rendered with.
type Settings struct {
	Size    PageSize
	Margins Margins
}

// New builds the renderer selected by cfg along with its layout settings.
func New(cfg config.Render) (Renderer, Settings, error) {
	size, err := ParsePageSize(cfg.PageSize)
	if err != nil {
		return nil, Settings{}, err
	}
	settings := Settings{
		Size: size,
		Margins: Margins{
			Top:    cfg.Margins.Top,
			Bottom: cfg.Margins.Bottom,
			Left:   cfg.Margins.Left,
			Right:  cfg.Margins.Right,
		},
	}
	if _, _, _, _, err := settings.Margins.Inches(); err != nil {
		return nil, Settings{}, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	switch cfg.Engine {
	case "", "chrome":
		return NewChrome(cfg.ChromePath, timeout), settings, nil
	case "fpdf":
		return NewFpdf(), settings, nil
	default:
		return nil, Settings{}, fmt.Errorf("unknown render engine %q", cfg.Engine)
	}
}
