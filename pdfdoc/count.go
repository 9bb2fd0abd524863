// Package pdfdoc counts, stamps and concatenates the paged documents the
// pipeline produces.
package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var configOnce sync.Once

// configuration returns a relaxed pdfcpu configuration that never touches
// the user's config directory.
func configuration() *model.Configuration {
	configOnce.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Count reports how many pages the document in rs has.
func Count(rs io.ReadSeeker) (int, error) {
	return count(rs, "document")
}

// CountFile reports how many pages the PDF at path has.
func CountFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, unreadable(path, err)
	}
	defer f.Close()
	return count(f, path)
}

// CountBytes reports how many pages the PDF in data has.
func CountBytes(data []byte) (int, error) {
	return count(bytes.NewReader(data), "document")
}

func count(rs io.ReadSeeker, name string) (n int, err error) {
	if size, serr := rs.Seek(0, io.SeekEnd); serr != nil {
		return 0, unreadable(name, serr)
	} else if size == 0 {
		return 0, unreadable(name, errors.New("empty file"))
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return 0, unreadable(name, err)
	}

	// pdfcpu panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, unreadable(name, fmt.Errorf("%v", r))
		}
	}()

	n, err = api.PageCount(rs, configuration())
	if err != nil {
		return 0, unreadable(name, err)
	}
	if n <= 0 {
		return 0, unreadable(name, errors.New("no pages"))
	}
	return n, nil
}
