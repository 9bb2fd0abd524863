package srv

import (
	"time"

	"github.com/opd-ai/bookpress/paginate"
	"github.com/opd-ai/bookpress/pipeline"
)

// contextRequest is the JSON form of a pagination context.
type contextRequest struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	Font      string `json:"font"`
	StartPage int    `json:"start_page"`
	FirstPage string `json:"first_page"`
}

func (r contextRequest) context() (paginate.Context, error) {
	first, err := paginate.ParseOrientation(r.FirstPage)
	if err != nil {
		return paginate.Context{}, err
	}
	font := r.Font
	if font == "" {
		font = "Times"
	}
	start := r.StartPage
	if start == 0 {
		start = 1
	}
	return paginate.NewContext(r.Title, r.Author, font, start, first)
}

type overlayRequest struct {
	contextRequest
	Pages  int     `json:"pages"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

type createBookResponse struct {
	ID string `json:"id"`
}

type chapterResponse struct {
	Name          string `json:"name"`
	Pages         int    `json:"pages"`
	StartPage     int    `json:"start_page"`
	EndPage       int    `json:"end_page"`
	NextStartPage int    `json:"next_start_page"`
	NextFirstPage string `json:"next_first_page"`
	BookPages     int    `json:"book_pages,omitempty"`
}

func newChapterResponse(res *pipeline.Result, bookPages int) chapterResponse {
	return chapterResponse{
		Name:          res.Name,
		Pages:         res.Pages,
		StartPage:     res.StartPage,
		EndPage:       res.StartPage + res.Pages - 1,
		NextStartPage: res.Next.StartPage,
		NextFirstPage: res.Next.FirstPage.String(),
		BookPages:     bookPages,
	}
}

type bookStatus struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Author        string            `json:"author"`
	Font          string            `json:"font"`
	Pages         int               `json:"pages"`
	NextStartPage int               `json:"next_start_page"`
	NextFirstPage string            `json:"next_first_page"`
	Created       time.Time         `json:"created"`
	Chapters      []chapterResponse `json:"chapters"`
}

type planEntry struct {
	Page   int    `json:"page"`
	Role   string `json:"role"`
	Band   string `json:"band"`
	Header string `json:"header,omitempty"`
	Number string `json:"number"`
	Anchor string `json:"anchor"`
}

func newPlanEntry(d paginate.Decision) planEntry {
	return planEntry{
		Page:   d.PageNumber,
		Role:   d.Role.String(),
		Band:   d.Band.String(),
		Header: d.Header,
		Number: d.NumberText,
		Anchor: d.NumberAnchor.String(),
	}
}

type errorResponse struct {
	Error        string `json:"error"`
	Chapter      string `json:"chapter,omitempty"`
	Stage        string `json:"stage,omitempty"`
	ContentPages int    `json:"content_pages,omitempty"`
	OverlayPages int    `json:"overlay_pages,omitempty"`
}
