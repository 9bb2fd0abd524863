// Package srv exposes book compilation, overlay generation and stamping over
// HTTP.
package srv

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/patrickmn/go-cache"
	secure "github.com/srikrsna/security-headers"

	"github.com/opd-ai/bookpress/overlay"
	"github.com/opd-ai/bookpress/pipeline"
	"github.com/opd-ai/bookpress/util"
)

// maxUpload bounds request bodies, which carry chapter text or whole PDFs.
const maxUpload = 64 << 20

const sessionTTL = 24 * time.Hour

type Server struct {
	router    chi.Router
	handler   http.Handler
	pipeline  pipeline.Pipeline
	overlay   *overlay.Generator
	outputDir string
	sessions  *cache.Cache
	rateLimit int
}

// New creates a server whose books are laid out by copies of p, each working
// in its own directory under outputDir. rateLimit is the number of requests
// per minute allowed from one client address; zero disables limiting.
func New(p pipeline.Pipeline, outputDir string, rateLimit int) *Server {
	if p.Overlay == nil {
		p.Overlay = overlay.New()
	}
	s := &Server{
		router:    chi.NewRouter(),
		pipeline:  p,
		overlay:   p.Overlay,
		outputDir: outputDir,
		sessions:  cache.New(sessionTTL, time.Hour),
		rateLimit: rateLimit,
	}
	s.sessions.OnEvicted(func(id string, v interface{}) {
		if sess, ok := v.(*bookSession); ok {
			if err := os.RemoveAll(sess.dir); err != nil {
				util.ErrorLogger.Printf("Removing book %s: %v", id, err)
			}
			util.InfoLogger.Printf("Expired book session: %s", id)
		}
	})
	s.setupRoutes()

	headers := &secure.Secure{
		ContentTypeNoSniff: true,
		XSSFilterBlock:     true,
		FrameOption:        secure.FrameDeny,
	}
	s.handler = headers.Middleware()(s.router)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(util.LoggingMiddleware)
	s.router.Use(util.RecoveryMiddleware)
	if s.rateLimit > 0 {
		s.router.Use(httprate.LimitByIP(s.rateLimit, time.Minute))
	}

	s.router.Get("/healthz", handleHealthCheck)
	s.router.Get("/plan", s.handlePlan)
	s.router.Post("/overlay", s.handleOverlay)
	s.router.Post("/stamp", s.handleStamp)

	s.router.Route("/books", func(r chi.Router) {
		r.Post("/", s.handleCreateBook)
		r.Get("/{bookID}", s.handleGetBook)
		r.Post("/{bookID}/chapters", s.handleAddChapter)
		r.Get("/{bookID}/pdf", s.handleDownload)
	})
}
