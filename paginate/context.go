package paginate

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidStartPage   = errors.New("starting page number must be positive")
	ErrInvalidFont        = errors.New("font family is required")
	ErrInvalidPageCount   = errors.New("page count must be positive")
	ErrInvalidOrientation = errors.New("unknown page orientation")
)

// Orientation is the physical side a chapter's first page falls on.
type Orientation int

const (
	Recto Orientation = iota
	Verso
)

func (o Orientation) String() string {
	if o == Verso {
		return "verso"
	}
	return "recto"
}

// Flip returns the opposite side.
func (o Orientation) Flip() Orientation {
	if o == Verso {
		return Recto
	}
	return Verso
}

// ParseOrientation accepts "recto"/"right" and "verso"/"left".
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "recto", "right":
		return Recto, nil
	case "verso", "left":
		return Verso, nil
	}
	return Recto, fmt.Errorf("%w %q", ErrInvalidOrientation, s)
}

// Context holds everything the policy needs to lay out one chapter.
type Context struct {
	Title     string
	Author    string
	Font      string
	StartPage int
	FirstPage Orientation
}

// NewContext validates and builds a Context.
func NewContext(title, author, font string, startPage int, firstPage Orientation) (Context, error) {
	if startPage < 1 {
		return Context{}, fmt.Errorf("%w: got %d", ErrInvalidStartPage, startPage)
	}
	if strings.TrimSpace(font) == "" {
		return Context{}, ErrInvalidFont
	}
	return Context{
		Title:     title,
		Author:    author,
		Font:      font,
		StartPage: startPage,
		FirstPage: firstPage,
	}, nil
}

// Next returns the context for the chapter that follows one of pageCount
// pages. The first page keeps alternating with the physical sides of this
// chapter, so an odd page count flips the orientation.
func (c Context) Next(pageCount int) Context {
	next := c
	next.StartPage = c.StartPage + pageCount
	if pageCount%2 != 0 {
		next.FirstPage = c.FirstPage.Flip()
	}
	return next
}
