package pdfdoc

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentUnreadable = errors.New("document unreadable")
	ErrPageCountMismatch  = errors.New("page count mismatch")
)

// PageCountMismatchError is returned when a content document and its overlay
// do not have the same number of pages.
type PageCountMismatchError struct {
	Content int
	Overlay int
}

func (e *PageCountMismatchError) Error() string {
	return fmt.Sprintf("page count mismatch: content has %d pages, overlay has %d", e.Content, e.Overlay)
}

func (e *PageCountMismatchError) Is(target error) bool {
	return target == ErrPageCountMismatch
}

func unreadable(name string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrDocumentUnreadable, name, err)
}
