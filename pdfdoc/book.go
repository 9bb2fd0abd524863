package pdfdoc

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// AppendFile appends the pages of chapterPath to the book at bookPath,
// creating the book when it does not exist yet. It returns the book's page
// count afterwards.
func AppendFile(bookPath, chapterPath string) (int, error) {
	if _, err := CountFile(chapterPath); err != nil {
		return 0, err
	}

	inputs := []string{chapterPath}
	if _, err := os.Stat(bookPath); err == nil {
		if _, err := CountFile(bookPath); err != nil {
			return 0, err
		}
		inputs = []string{bookPath, chapterPath}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return 0, fmt.Errorf("checking book: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(bookPath), 0o755); err != nil {
		return 0, fmt.Errorf("creating book directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(bookPath), ".book-*.pdf")
	if err != nil {
		return 0, fmt.Errorf("creating book: %w", err)
	}
	tmpName := tmp.Name()
	tmp.Close()

	if err := api.MergeCreateFile(inputs, tmpName, false, configuration()); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("appending %s to book: %w", chapterPath, err)
	}
	if err := os.Rename(tmpName, bookPath); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("saving book: %w", err)
	}
	return CountFile(bookPath)
}

// PageSize returns the size in points of the first page of the PDF at path.
func PageSize(path string) (width, height float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, unreadable(path, err)
	}
	defer f.Close()

	dims, err := api.PageDims(f, configuration())
	if err != nil {
		return 0, 0, unreadable(path, err)
	}
	if len(dims) == 0 {
		return 0, 0, unreadable(path, errors.New("no pages"))
	}
	return dims[0].Width, dims[0].Height, nil
}
