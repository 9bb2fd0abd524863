package srv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/opd-ai/bookpress/format"
	"github.com/opd-ai/bookpress/overlay"
	"github.com/opd-ai/bookpress/paginate"
	"github.com/opd-ai/bookpress/pdfdoc"
	"github.com/opd-ai/bookpress/pipeline"
	"github.com/opd-ai/bookpress/render"
	"github.com/opd-ai/bookpress/util"
)

func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var req contextRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	c, err := req.context()
	if err != nil {
		writeFailure(w, err)
		return
	}
	sess, err := s.createSession(c)
	if err != nil {
		util.ErrorLogger.Printf("Creating book: %v", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	util.InfoLogger.Printf("Created book %s (%q by %q from page %d)", sess.id, c.Title, c.Author, c.StartPage)
	writeJSON(w, http.StatusCreated, createBookResponse{ID: sess.id})
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(chi.URLParam(r, "bookID"))
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("book not found"))
		return
	}
	writeJSON(w, http.StatusOK, sess.status())
}

func (s *Server) handleAddChapter(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(chi.URLParam(r, "bookID"))
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("book not found"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	text, err := chapterText(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		name = fmt.Sprintf("chapter-%d", len(sess.status().Chapters)+1)
	}

	res, bookPages, err := sess.addChapter(r.Context(), pipeline.Chapter{Name: name, Text: text})
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newChapterResponse(res, bookPages))
}

// chapterText reads the chapter from the "text" form field or, failing
// that, an uploaded "file".
func chapterText(r *http.Request) (string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUpload); err != nil {
			return "", fmt.Errorf("parsing form: %w", err)
		}
	} else if err := r.ParseForm(); err != nil {
		return "", fmt.Errorf("parsing form: %w", err)
	}
	if text := r.FormValue("text"); strings.TrimSpace(text) != "" {
		return text, nil
	}
	data, err := formFile(r, "file")
	if err != nil {
		return "", errors.New("chapter text is required")
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", errors.New("chapter text is required")
	}
	return string(data), nil
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(chi.URLParam(r, "bookID"))
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("book not found"))
		return
	}
	path, ok := sess.pdfPath()
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("book has no chapters yet"))
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=book-%s.pdf", sess.id))
	w.Header().Set("Content-Type", "application/pdf")
	http.ServeFile(w, r, path)
	util.InfoLogger.Printf("Book downloaded: %s", path)
}

func (s *Server) handleOverlay(w http.ResponseWriter, r *http.Request) {
	var req overlayRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	c, err := req.context()
	if err != nil {
		writeFailure(w, err)
		return
	}
	gen := s.overlay
	if req.Width > 0 && req.Height > 0 {
		gen = gen.Sized(req.Width, req.Height)
	}
	data, err := gen.Generate(r.Context(), c, req.Pages)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writePDF(w, "overlay.pdf", data)
}

func (s *Server) handleStamp(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("parsing form: %w", err))
		return
	}
	content, err := formFile(r, "content")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ov, err := formFile(r, "overlay")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	merged, err := pdfdoc.Merge(content, ov)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writePDF(w, "stamped.pdf", merged)
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := contextRequest{
		Title:     q.Get("title"),
		Author:    q.Get("author"),
		Font:      q.Get("font"),
		FirstPage: q.Get("first"),
	}
	var err error
	if v := q.Get("start"); v != "" {
		if req.StartPage, err = strconv.Atoi(v); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid start page %q", v))
			return
		}
	}
	pages, err := strconv.Atoi(q.Get("pages"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid page count %q", q.Get("pages")))
		return
	}
	c, err := req.context()
	if err != nil {
		writeFailure(w, err)
		return
	}
	decisions, err := paginate.Plan(r.Context(), c, pages)
	if err != nil {
		writeFailure(w, err)
		return
	}
	entries := make([]planEntry, len(decisions))
	for i, d := range decisions {
		entries[i] = newPlanEntry(d)
	}
	writeJSON(w, http.StatusOK, entries)
}

func formFile(r *http.Request, field string) ([]byte, error) {
	if r.MultipartForm == nil {
		return nil, fmt.Errorf("missing %s file", field)
	}
	f, _, err := r.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("missing %s file", field)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s file: %w", field, err)
	}
	return data, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		util.ErrorLogger.Printf("Encoding response: %v", err)
	}
}

func writePDF(w http.ResponseWriter, name string, data []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename="+name)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		util.ErrorLogger.Printf("Writing %s: %v", name, err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// writeFailure reports a layout failure with the status matching its kind.
func writeFailure(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}
	var se *pipeline.StageError
	if errors.As(err, &se) {
		resp.Chapter, resp.Stage = se.Chapter, se.Stage
	}
	var mismatch *pdfdoc.PageCountMismatchError
	if errors.As(err, &mismatch) {
		resp.ContentPages, resp.OverlayPages = mismatch.Content, mismatch.Overlay
	}
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		util.ErrorLogger.Printf("Request failed: %v", err)
	}
	writeJSON(w, status, resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, pdfdoc.ErrPageCountMismatch):
		return http.StatusConflict
	case errors.Is(err, pdfdoc.ErrDocumentUnreadable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, paginate.ErrInvalidPageCount),
		errors.Is(err, paginate.ErrInvalidStartPage),
		errors.Is(err, paginate.ErrInvalidFont),
		errors.Is(err, paginate.ErrInvalidOrientation),
		errors.Is(err, overlay.ErrUnknownFont),
		errors.Is(err, format.ErrInvalidStyle):
		return http.StatusBadRequest
	case errors.Is(err, format.ErrFormattingService), errors.Is(err, render.ErrRender):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
