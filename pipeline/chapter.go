package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Chapter is one unit of raw text laid out as a single PDF.
type Chapter struct {
	Name string
	Text string
}

// ReadChapter loads a chapter file, naming the chapter after the file.
func ReadChapter(path string) (Chapter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Chapter{}, fmt.Errorf("error reading file %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Chapter{Name: name, Text: string(data)}, nil
}

var chapterExts = map[string]bool{".txt": true, ".md": true}

var numberRe = regexp.MustCompile(`\d+`)

// DiscoverChapters lists the chapter files in dir, ordered by the first
// number in each file name and then by name.
func DiscoverChapters(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error reading chapter directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !chapterExts[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		files = append(files, entry.Name())
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no chapter files found in %s", dir)
	}

	sort.SliceStable(files, func(i, j int) bool {
		ni, nj := chapterNumber(files[i]), chapterNumber(files[j])
		if ni != nj {
			return ni < nj
		}
		return files[i] < files[j]
	})
	for i, name := range files {
		files[i] = filepath.Join(dir, name)
	}
	return files, nil
}

// chapterNumber returns the first number in name, or -1 when it has none so
// unnumbered front matter sorts first.
func chapterNumber(name string) int {
	m := numberRe.FindString(name)
	if m == "" {
		return -1
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return -1
	}
	return n
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// fileStem turns a chapter name into a safe file name prefix.
func fileStem(name string) string {
	stem := strings.Trim(unsafeName.ReplaceAllString(name, "_"), "_.")
	if stem == "" {
		return "chapter"
	}
	return stem
}
