package paginate

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// Policy constants, in points.
const (
	FontSize       = 12.0
	HeaderBaseline = 40.0 // distance from the top edge
	FooterBaseline = 30.0 // distance from the bottom edge
	NumberGap      = 62.0 // distance of the page number from the outer edge
)

// Role of a page within its chapter.
type Role int

const (
	ChapterFirstPage Role = iota
	RectoPage
	VersoPage
)

func (r Role) String() string {
	switch r {
	case ChapterFirstPage:
		return "chapter-first-page"
	case RectoPage:
		return "recto"
	case VersoPage:
		return "verso"
	}
	return "Role(" + strconv.Itoa(int(r)) + ")"
}

// Anchor is the horizontal alignment of the page number.
type Anchor int

const (
	Center Anchor = iota
	Left
	Right
)

func (a Anchor) String() string {
	switch a {
	case Center:
		return "center"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "Anchor(" + strconv.Itoa(int(a)) + ")"
}

// Band is the vertical margin the marks are drawn in.
type Band int

const (
	Header Band = iota
	Footer
)

func (b Band) String() string {
	if b == Footer {
		return "footer"
	}
	return "header"
}

// Decision describes the marks for one page. An empty Header means no
// running header is drawn.
type Decision struct {
	PageNumber   int
	Role         Role
	Header       string
	NumberText   string
	NumberAnchor Anchor
	Band         Band
	Font         string
	FontSize     float64
}

// Decide maps a page's offset within its chapter to the marks drawn on it.
func Decide(c Context, offset int) Decision {
	if offset < 0 {
		panic(fmt.Sprintf("paginate: negative chapter page offset %d", offset))
	}
	page := c.StartPage + offset
	d := Decision{
		PageNumber: page,
		NumberText: strconv.Itoa(page),
		Font:       c.Font,
		FontSize:   FontSize,
	}
	if offset == 0 {
		d.Role = ChapterFirstPage
		d.NumberAnchor = Center
		d.Band = Footer
		return d
	}
	d.Band = Header
	if ((page-c.StartPage)%2 == 0) != (c.FirstPage == Verso) {
		d.Role = RectoPage
		d.Header = c.Title
		d.NumberAnchor = Right
	} else {
		d.Role = VersoPage
		d.Header = c.Author
		d.NumberAnchor = Left
	}
	return d
}

// Plan returns the decisions for every page of a chapter, in page order.
func Plan(ctx context.Context, c Context, pageCount int) ([]Decision, error) {
	if pageCount <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPageCount, pageCount)
	}
	decisions := make([]Decision, pageCount)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range decisions {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			decisions[i] = Decide(c, i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return decisions, nil
}

// Baseline returns the y coordinate of the marks' baseline measured from the
// top edge of a page of the given height.
func (d Decision) Baseline(pageHeight float64) float64 {
	if d.Band == Footer {
		return pageHeight - FooterBaseline
	}
	return HeaderBaseline
}

// NumberX returns the x coordinate where a page number of the given rendered
// width starts.
func (d Decision) NumberX(pageWidth, textWidth float64) float64 {
	switch d.NumberAnchor {
	case Left:
		return NumberGap
	case Right:
		return pageWidth - NumberGap - textWidth
	}
	return (pageWidth - textWidth) / 2
}

// HeaderX returns the x coordinate where the running header starts. Headers
// are always centered.
func (d Decision) HeaderX(pageWidth, textWidth float64) float64 {
	return (pageWidth - textWidth) / 2
}
