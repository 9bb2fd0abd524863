package pdfdoc

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// stampDescription places an overlay page over the whole content page at
// its natural size.
const stampDescription = "pos:c, sc:1 abs, rot:0"

// MergeFile stamps page i of the overlay onto page i of the content document
// and writes the result to outPath. Both documents must have the same number
// of pages. Nothing is written when merging fails.
func MergeFile(contentPath, overlayPath, outPath string) (err error) {
	contentPages, err := CountFile(contentPath)
	if err != nil {
		return err
	}
	overlayPages, err := CountFile(overlayPath)
	if err != nil {
		return err
	}
	if contentPages != overlayPages {
		return &PageCountMismatchError{Content: contentPages, Overlay: overlayPages}
	}

	stamps := make(map[int]*model.Watermark, contentPages)
	for page := 1; page <= contentPages; page++ {
		wm, err := api.PDFWatermark(overlayPath+":"+strconv.Itoa(page), stampDescription, true, false, types.POINTS)
		if err != nil {
			return unreadable(overlayPath, err)
		}
		stamps[page] = wm
	}

	in, err := os.Open(contentPath)
	if err != nil {
		return unreadable(contentPath, err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(outPath), ".merge-*.pdf")
	if err != nil {
		return fmt.Errorf("creating merged document: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			err = unreadable(contentPath, fmt.Errorf("%v", r))
		}
	}()

	if err := api.AddWatermarksMap(in, tmp, stamps, configuration()); err != nil {
		return fmt.Errorf("stamping %s: %w", contentPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing merged document: %w", err)
	}
	if err := os.Rename(tmp.Name(), outPath); err != nil {
		return fmt.Errorf("saving merged document: %w", err)
	}
	return nil
}

// Merge is MergeFile for documents held in memory.
func Merge(content, overlay []byte) ([]byte, error) {
	dir, err := os.MkdirTemp("", "bookpress-merge-")
	if err != nil {
		return nil, fmt.Errorf("creating work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	contentPath := filepath.Join(dir, "content.pdf")
	overlayPath := filepath.Join(dir, "overlay.pdf")
	outPath := filepath.Join(dir, "merged.pdf")
	if err := os.WriteFile(contentPath, content, 0o600); err != nil {
		return nil, fmt.Errorf("staging content: %w", err)
	}
	if err := os.WriteFile(overlayPath, overlay, 0o600); err != nil {
		return nil, fmt.Errorf("staging overlay: %w", err)
	}
	if err := MergeFile(contentPath, overlayPath, outPath); err != nil {
		return nil, err
	}
	return os.ReadFile(outPath)
}
