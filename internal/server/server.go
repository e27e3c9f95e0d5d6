// Package server exposes a client.Client to a host environment as a small
// JSON-over-HTTP API.
//
//	GET    /healthz                 connection test
//	GET    /v1/entries?path=/dir    direct children of a directory
//	GET    /v1/stat?path=/a.txt     metadata of one path
//	GET    /v1/object?path=/a.txt   file content
//	PUT    /v1/object?path=/a.txt   replace file content with the body
//	DELETE /v1/object?path=/a.txt   delete
//	POST   /v1/rename               {"from": "...", "to": "..."}
//	POST   /v1/dirs?path=/photos    create a directory
//	GET    /v1/filetype?name=a.png  preview classification
//
// Failures are answered with {"error": "<message>"} and a status derived
// from the error kind.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/koustreak/s3studio/internal/client"
	"github.com/koustreak/s3studio/internal/errs"
	"github.com/koustreak/s3studio/internal/filetype"
	"github.com/koustreak/s3studio/internal/logger"
)

// DefaultMaxUploadBytes caps PUT bodies.
const DefaultMaxUploadBytes = 64 << 20

// Server routes HTTP requests to one bucket client.
type Server struct {
	client    *client.Client
	log       *logger.Logger
	maxUpload int64
}

// New returns a Server. A nil log means the global logger.
func New(c *client.Client, log *logger.Logger, maxUpload int64) *Server {
	if log == nil {
		log = logger.Global()
	}
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	return &Server{client: c, log: log, maxUpload: maxUpload}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/entries", s.list)
		r.Get("/stat", s.stat)
		r.Get("/object", s.read)
		r.Put("/object", s.write)
		r.Delete("/object", s.delete)
		r.Post("/rename", s.rename)
		r.Post("/dirs", s.createDir)
		r.Get("/filetype", s.fileType)
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.log.HTTPEvent().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("query", r.URL.RawQuery).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("latency", time.Since(start)).
			Msg("request processed")
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	res := s.client.Check(r.Context())
	status := http.StatusOK
	if res.Status != client.StatusSuccess {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, res)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		path = "/"
	}
	entries, err := s.client.List(r.Context(), path)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Server) stat(w http.ResponseWriter, r *http.Request) {
	path, ok := s.requirePath(w, r)
	if !ok {
		return
	}
	entry, err := s.client.Stat(r.Context(), path)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, entry)
}

func (s *Server) read(w http.ResponseWriter, r *http.Request) {
	path, ok := s.requirePath(w, r)
	if !ok {
		return
	}
	data, err := s.client.Read(r.Context(), path)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", filetype.Detect(path).MIMEType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) write(w http.ResponseWriter, r *http.Request) {
	path, ok := s.requirePath(w, r)
	if !ok {
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxUpload))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "request body too large"})
			return
		}
		s.writeError(w, errs.Wrap(errs.ErrKindInvalidInput, "failed to read request body", err))
		return
	}
	if err := s.client.Write(r.Context(), path, data); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	path, ok := s.requirePath(w, r)
	if !ok {
		return
	}
	if err := s.client.Delete(r.Context(), path); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type renameRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (s *Server) rename(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errs.Wrap(errs.ErrKindInvalidInput, "invalid rename request", err))
		return
	}
	if req.From == "" || req.To == "" {
		s.writeError(w, errs.New(errs.ErrKindInvalidInput, "from and to are required"))
		return
	}
	if err := s.client.Rename(r.Context(), req.From, req.To); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) createDir(w http.ResponseWriter, r *http.Request) {
	path, ok := s.requirePath(w, r)
	if !ok {
		return
	}
	if err := s.client.CreateDir(r.Context(), path); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) fileType(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		s.writeError(w, errs.New(errs.ErrKindInvalidInput, "name is required"))
		return
	}
	s.writeJSON(w, http.StatusOK, filetype.Detect(name))
}
