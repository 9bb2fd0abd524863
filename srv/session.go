package srv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/opd-ai/bookpress/paginate"
	"github.com/opd-ai/bookpress/pipeline"
)

// bookSession is one book being assembled through the API. Chapters are
// added one at a time, in request order.
type bookSession struct {
	mu      sync.Mutex
	id      string
	dir     string
	created time.Time
	book    *pipeline.Book
}

func (s *Server) createSession(c paginate.Context) (*bookSession, error) {
	id := uuid.New().String()
	dir := filepath.Join(s.outputDir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating book directory: %w", err)
	}

	p := s.pipeline
	p.WorkDir = filepath.Join(dir, "chapters")
	sess := &bookSession{
		id:      id,
		dir:     dir,
		created: time.Now(),
		book:    pipeline.NewBook(&p, filepath.Join(dir, "book.pdf"), c),
	}
	s.sessions.Set(id, sess, cache.DefaultExpiration)
	return sess, nil
}

func (s *Server) session(id string) (*bookSession, bool) {
	v, found := s.sessions.Get(id)
	if !found {
		return nil, false
	}
	sess, ok := v.(*bookSession)
	return sess, ok
}

func (sess *bookSession) addChapter(ctx context.Context, ch pipeline.Chapter) (*pipeline.Result, int, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	res, err := sess.book.AddChapter(ctx, ch)
	return res, sess.book.Pages(), err
}

func (sess *bookSession) status() bookStatus {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	c := sess.book.Context()
	st := bookStatus{
		ID:            sess.id,
		Title:         c.Title,
		Author:        c.Author,
		Font:          c.Font,
		Pages:         sess.book.Pages(),
		NextStartPage: c.StartPage,
		NextFirstPage: c.FirstPage.String(),
		Created:       sess.created,
		Chapters:      make([]chapterResponse, 0, len(sess.book.Chapters())),
	}
	for _, res := range sess.book.Chapters() {
		st.Chapters = append(st.Chapters, newChapterResponse(res, 0))
	}
	return st
}

// pdfPath returns the book file, or false while no chapter has been added.
func (sess *bookSession) pdfPath() (string, bool) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.book.Path(), sess.book.Pages() > 0
}
