// Package server exposes a session's intents and screen over HTTP/JSON.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sirupsen/logrus"
	"github.com/tgienger/taskbox/internal/models"
	"github.com/tgienger/taskbox/internal/nav"
	"github.com/tgienger/taskbox/internal/session"
)

type Server struct {
	router         *chi.Mux
	log            logrus.FieldLogger
	allowedOrigins []string

	// One action at a time against the single session
	mu      sync.Mutex
	session *session.Session
}

type Options func(*Server)

func WithLogger(log logrus.FieldLogger) Options {
	return func(s *Server) {
		s.log = log
	}
}

func WithAllowedOrigins(origins []string) Options {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// New builds the router for sess
func New(sess *session.Session, opts ...Options) *Server {
	s := &Server{
		session: sess,
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.accessLogger)
	r.Use(middleware.Recoverer)
	if len(s.allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.allowedOrigins,
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/screen", s.handleScreen)
		r.Post("/section", s.handleSelectSection)

		r.Post("/projects", s.handleCreateProject)
		r.Post("/projects/close", s.handleCloseProject)
		r.Post("/projects/{id}/open", s.handleOpenProject)
		r.Delete("/projects/{id}", s.handleDeleteProject)

		r.Post("/employees", s.handleCreateEmployee)
		r.Delete("/employees/{id}", s.handleDeleteEmployee)

		r.Post("/tasks", s.handleCreateTask)
		r.Delete("/tasks/{id}", s.handleDeleteTask)

		r.Post("/chat", s.handleSendMessage)
	})

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func (s *Server) accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.log.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start),
				"request_id": middleware.GetReqID(r.Context()),
			}).Info("access")
		}()

		next.ServeHTTP(ww, r)
	})
}

// act runs one intent and, if it succeeds, responds with the recomputed screen
func (s *Server) act(w http.ResponseWriter, status int, intent func(*session.Session) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := intent(s.session); err != nil {
		s.writeError(w, err)
		return
	}
	screen, err := s.session.Screen()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, status, screen)
}

func (s *Server) handleScreen(w http.ResponseWriter, r *http.Request) {
	s.act(w, http.StatusOK, func(*session.Session) error { return nil })
}

type sectionRequest struct {
	Section nav.Section `json:"section"`
}

func (s *Server) handleSelectSection(w http.ResponseWriter, r *http.Request) {
	var req sectionRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.act(w, http.StatusOK, func(sess *session.Session) error {
		return sess.SelectSection(req.Section)
	})
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req models.ProjectInput
	if !s.decode(w, r, &req) {
		return
	}
	s.act(w, http.StatusCreated, func(sess *session.Session) error {
		_, err := sess.CreateProject(req)
		return err
	})
}

func (s *Server) handleOpenProject(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	s.act(w, http.StatusOK, func(sess *session.Session) error {
		return sess.OpenProject(id)
	})
}

func (s *Server) handleCloseProject(w http.ResponseWriter, r *http.Request) {
	s.act(w, http.StatusOK, func(sess *session.Session) error {
		return sess.CloseProject()
	})
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	s.act(w, http.StatusOK, func(sess *session.Session) error {
		return sess.DeleteProject(id)
	})
}

type employeeRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.act(w, http.StatusCreated, func(sess *session.Session) error {
		_, err := sess.CreateEmployee(req.Name)
		return err
	})
}

func (s *Server) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	s.act(w, http.StatusOK, func(sess *session.Session) error {
		return sess.DeleteEmployee(id)
	})
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req models.TaskInput
	if !s.decode(w, r, &req) {
		return
	}
	s.act(w, http.StatusCreated, func(sess *session.Session) error {
		_, err := sess.CreateTask(req)
		return err
	})
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	s.act(w, http.StatusOK, func(sess *session.Session) error {
		return sess.DeleteTask(id)
	})
}

type chatRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.act(w, http.StatusOK, func(sess *session.Session) error {
		return sess.SendMessage(req.Text)
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, goerr.Wrap(session.ErrValidation, "invalid request body", goerr.V("error", err.Error())))
		return false
	}
	return true
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.writeError(w, goerr.Wrap(session.ErrValidation, "invalid id", goerr.V("id", raw)))
		return 0, false
	}
	return id, true
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// statusOf maps error kinds to HTTP status codes
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrValidation):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, session.ErrIllegalTransition):
		return http.StatusConflict, "illegal_transition"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, kind := statusOf(err)

	entry := s.log.WithError(err).WithField("status", status)
	var ge *goerr.Error
	if errors.As(err, &ge) {
		entry = entry.WithField("values", ge.Values())
	}
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Warn("request rejected")
	}

	s.writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.WithError(err).Error("failed to marshal response")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck // header already committed
}
