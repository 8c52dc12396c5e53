package mockserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/bellfeed/pkg/apiclient"
	"github.com/dmitrymomot/bellfeed/pkg/httpserver"
	"github.com/dmitrymomot/bellfeed/pkg/logger"
	"github.com/dmitrymomot/bellfeed/pkg/notifications"
	"github.com/dmitrymomot/bellfeed/pkg/realtime"
	"github.com/dmitrymomot/bellfeed/pkg/requestid"
)

// Server exposes a MemoryAPI over HTTP.
type Server struct {
	api       *notifications.MemoryAPI
	apiKey    string
	publisher realtime.Publisher
	checks    []httpserver.Check
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithAPIKey requires key on every API request. An empty key disables the
// check.
func WithAPIKey(key string) Option {
	return func(s *Server) { s.apiKey = key }
}

// WithPublisher emits realtime events after writes.
func WithPublisher(p realtime.Publisher) Option {
	return func(s *Server) { s.publisher = p }
}

// WithHealthChecks adds readiness checks to /healthz.
func WithHealthChecks(checks ...httpserver.Check) Option {
	return func(s *Server) { s.checks = append(s.checks, checks...) }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

func New(api *notifications.MemoryAPI, opts ...Option) *Server {
	s := &Server{api: api, logger: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("mockserver"))
	return s
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", httpserver.HealthHandler(s.logger, s.checks...))

	r.Route("/notifications", func(r chi.Router) {
		r.Use(s.authenticate)

		r.Get("/", s.list)
		r.Post("/", s.create)
		r.Post("/seen", s.markAllSeen)
		r.Post("/read", s.markAllRead)
		r.Post("/{id}/read", s.markRead)
		r.Post("/{id}/unread", s.markUnread)
		r.Delete("/{id}", s.delete)
	})

	return r
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey != "" {
			switch key := r.Header.Get(apiclient.HeaderAPIKey); {
			case key == "":
				writeError(w, http.StatusUnauthorized, "missing api key")
				return
			case key != s.apiKey:
				writeError(w, http.StatusForbidden, "invalid api key")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.LogAttrs(r.Context(), slog.LevelDebug, "request served",
			logger.Method(r.Method),
			logger.Path(r.URL.Path),
			logger.Status(ww.Status()),
			logger.Duration(time.Since(start)),
			logger.RequestID(requestid.FromContext(r.Context())),
		)
	})
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	page, err := s.api.FetchNotifications(r.Context(), notifications.ParamsFromValues(r.URL.Query()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, apiclient.EncodePage(page))
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var in apiclient.WireNotification
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid notification payload")
		return
	}
	if in.Title == "" {
		writeError(w, http.StatusUnprocessableEntity, "title is required")
		return
	}

	added := s.api.Add(in.Decode())
	s.publish(r.Context(), realtime.NotificationCreated{NotificationID: added[0].ID})
	writeJSON(w, http.StatusCreated, apiclient.EncodeNotification(added[0]))
}

func (s *Server) markAllSeen(w http.ResponseWriter, r *http.Request) {
	s.write(w, r, s.api.MarkAllAsSeen(r.Context()), realtime.AllSeen{})
}

func (s *Server) markAllRead(w http.ResponseWriter, r *http.Request) {
	s.write(w, r, s.api.MarkAllAsRead(r.Context()), realtime.AllRead{})
}

func (s *Server) markRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.write(w, r, s.api.MarkAsRead(r.Context(), id), realtime.NotificationRead{NotificationID: id})
}

func (s *Server) markUnread(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.write(w, r, s.api.MarkAsUnread(r.Context(), id), realtime.NotificationUnread{NotificationID: id})
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.write(w, r, s.api.Delete(r.Context(), id), realtime.NotificationDeleted{NotificationID: id})
}

// write finishes a mutation: it reports err, or answers 204 and publishes ev.
func (s *Server) write(w http.ResponseWriter, r *http.Request, err error, ev realtime.Event) {
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.publish(r.Context(), ev)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) publish(ctx context.Context, ev realtime.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(context.WithoutCancel(ctx), ev); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "realtime event not published",
			logger.Event(ev.Name()),
			logger.Error(err),
		)
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, notifications.ErrNotificationNotFound) {
		writeError(w, http.StatusNotFound, "notification not found")
		return
	}
	s.logger.LogAttrs(r.Context(), slog.LevelError, "request failed", logger.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

type errorBody struct {
	Errors []errorItem `json:"errors"`
}

type errorItem struct {
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Errors: []errorItem{{Message: msg}}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
