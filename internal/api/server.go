// Package api exposes the engine over a local JSON HTTP API. The daemon
// serves it; Client talks to it from the CLI, the MCP server and the
// dashboard.
package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/manav03panchal/watchout/internal/engine"
	"github.com/manav03panchal/watchout/internal/errors"
	"github.com/manav03panchal/watchout/internal/logging"
	"github.com/manav03panchal/watchout/internal/model"
	"github.com/manav03panchal/watchout/internal/notify"
	"github.com/manav03panchal/watchout/internal/parser"
)

// Notifier sends a test notification through every configured sink.
type Notifier interface {
	Test(ctx context.Context) []notify.DispatchResult
}

// Options configures the router.
type Options struct {
	// Health returns the JSON body of GET /health. Nil serves {"status":"ok"}.
	Health func() any
	// Notifier backs POST /notify/test. Nil disables the route.
	Notifier Notifier
	// Now is the time source used to validate fire times.
	Now func() time.Time
}

// AddRequest is the body of POST /reminders. Frequency takes precedence;
// otherwise Every (an interval) or At (a fire time expression) is parsed.
type AddRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Frequency   *model.Frequency `json:"frequency,omitempty"`
	Every       string           `json:"every,omitempty"`
	At          string           `json:"at,omitempty"`
}

// ActivateRequest is the body of POST /library/activate.
type ActivateRequest struct {
	ID string `json:"id"`
}

// TestResult reports one sink of POST /notify/test.
type TestResult struct {
	Sink       string `json:"sink"`
	DurationMs int64  `json:"durationMs"`
	Error      string `json:"error,omitempty"`
}

// NewTestResult converts a dispatcher result.
func NewTestResult(res notify.DispatchResult) TestResult {
	tr := TestResult{Sink: res.Sink, DurationMs: res.Duration.Milliseconds()}
	if res.Error != nil {
		tr.Error = res.Error.Error()
	}
	return tr
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error      string `json:"error"`
	Code       string `json:"code"`
	Field      string `json:"field,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Error codes carried in ErrorResponse.Code.
const (
	CodeValidation       = "validation"
	CodeNotFound         = "not_found"
	CodeAmbiguous        = "ambiguous"
	CodeFireTimeInPast   = "fire_time_in_past"
	CodeDaemonNotRunning = "daemon_not_running"
	CodeBadRequest       = "bad_request"
	CodeInternal         = "internal"
)

type handler struct {
	ctrl engine.Controller
	opts Options
}

// NewRouter builds the API routes over ctrl.
func NewRouter(ctrl engine.Controller, opts Options) http.Handler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	h := &handler{ctrl: ctrl, opts: opts}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	router.Get("/health", h.health)

	router.Route("/reminders", func(r chi.Router) {
		r.Get("/", h.listReminders)
		r.Post("/", h.addReminder)
		r.Delete("/{id}", h.removeReminder)
	})

	router.Route("/library", func(r chi.Router) {
		r.Get("/", h.listLibrary)
		r.Post("/activate", h.activate)
		r.Post("/{id}", h.saveToLibrary)
		r.Delete("/{id}", h.removeFromLibrary)
	})

	router.Route("/scheduler", func(r chi.Router) {
		r.Get("/active", h.timers)
		r.Post("/{id}", h.schedule)
		r.Delete("/{id}", h.cancel)
	})

	if opts.Notifier != nil {
		router.Post("/notify/test", h.testNotify)
	}

	return router
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := logging.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(ctx))

		logging.LoggerFromContext(ctx).Info("request",
			logging.KeyOperation, r.Method+" "+r.URL.Path,
			logging.KeyStatus, ww.Status(),
			logging.KeyDuration, time.Since(start).String(),
		)
	})
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	if h.opts.Health == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	writeJSON(w, http.StatusOK, h.opts.Health())
}

func (h *handler) listReminders(w http.ResponseWriter, r *http.Request) {
	list, err := h.ctrl.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (h *handler) addReminder(w http.ResponseWriter, r *http.Request) {
	var req AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "error parsing request body: " + err.Error(),
			Code:  CodeBadRequest,
		})
		return
	}

	freq, err := h.frequency(req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rem, err := h.ctrl.Add(r.Context(), req.Title, req.Description, freq)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rem)
}

func (h *handler) frequency(req AddRequest) (model.Frequency, error) {
	now := h.opts.Now()
	switch {
	case req.Frequency != nil:
		return parser.NormalizeFrequency(*req.Frequency, now)
	case req.At != "":
		at, err := parser.ParseFireAt(req.At, now)
		if err != nil {
			return model.Frequency{}, err
		}
		return model.OneTime(at), nil
	case req.Every != "":
		i, err := parser.ParseInterval(req.Every)
		if err != nil {
			return model.Frequency{}, err
		}
		return model.Recurring(i), nil
	default:
		return model.Frequency{}, errors.NewValidationError("frequency", "frequency is required",
			"Pass 'every' (e.g. 30s) or 'at' (e.g. +10m).")
	}
}

func (h *handler) removeReminder(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) listLibrary(w http.ResponseWriter, r *http.Request) {
	list, err := h.ctrl.ListLibrary(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (h *handler) saveToLibrary(w http.ResponseWriter, r *http.Request) {
	rem, err := h.ctrl.SaveToLibrary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rem)
}

func (h *handler) removeFromLibrary(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.RemoveFromLibrary(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) activate(w http.ResponseWriter, r *http.Request) {
	var req ActivateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "error parsing request body: " + err.Error(),
			Code:  CodeBadRequest,
		})
		return
	}
	if req.ID == "" {
		writeError(w, r, errors.NewValidationError("id", "id is required", ""))
		return
	}

	rem, err := h.ctrl.ActivateFromLibrary(r.Context(), req.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rem)
}

func (h *handler) timers(w http.ResponseWriter, r *http.Request) {
	timers, err := h.ctrl.Timers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if timers == nil {
		timers = []engine.Timer{}
	}
	writeJSON(w, http.StatusOK, timers)
}

func (h *handler) schedule(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.Schedule(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.Cancel(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) testNotify(w http.ResponseWriter, r *http.Request) {
	results := h.opts.Notifier.Test(r.Context())
	out := make([]TestResult, 0, len(results))
	for _, res := range results {
		out = append(out, NewTestResult(res))
	}
	writeJSON(w, http.StatusOK, out)
}

func nonNil(list []model.Reminder) []model.Reminder {
	if list == nil {
		return []model.Reminder{}
	}
	return list
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("failed to write response", logging.KeyError, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		logging.LoggerFromContext(r.Context()).Error("request failed", logging.KeyError, err)
	}
	writeJSON(w, status, body)
}

func errorResponse(err error) (int, ErrorResponse) {
	if ve, ok := errors.AsValidation(err); ok {
		return http.StatusBadRequest, ErrorResponse{
			Error:      ve.Message,
			Code:       CodeValidation,
			Field:      ve.Field,
			Suggestion: ve.Suggestion,
		}
	}

	body := ErrorResponse{Error: err.Error(), Suggestion: errors.GetSuggestion(err)}
	switch {
	case errors.Is(err, errors.ErrReminderNotFound):
		body.Code = CodeNotFound
		return http.StatusNotFound, body
	case errors.Is(err, errors.ErrAmbiguousID):
		body.Code = CodeAmbiguous
		return http.StatusConflict, body
	case errors.Is(err, errors.ErrFireTimeInPast):
		body.Code = CodeFireTimeInPast
		return http.StatusConflict, body
	case errors.Is(err, errors.ErrDaemonNotRunning):
		body.Code = CodeDaemonNotRunning
		return http.StatusServiceUnavailable, body
	default:
		body.Code = CodeInternal
		return http.StatusInternalServerError, body
	}
}

// Server serves the API on a TCP address.
type Server struct {
	http *http.Server
	ln   net.Listener
}

// NewServer creates a server for handler on addr.
func NewServer(addr string, handler http.Handler) *Server {
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start binds the address and serves in the background. It fails fast when
// the address is in use.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", s.http.Addr)
	}
	s.ln = ln

	go func() {
		if err := s.http.Serve(ln); err != nil && err != http.ErrServerClosed {
			logging.Error("api server stopped", logging.KeyError, err)
		}
	}()
	logging.Info("api listening", logging.KeyURL, "http://"+ln.Addr().String())
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.http.Addr
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
