// Package chi is the HTTP surface: the record/transcribe/save view and the search view
// as JSON endpoints over live sessions.
package chi

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/voicenote/internal/domain"
	"github.com/kailas-cloud/voicenote/internal/domain/audio"
	"github.com/kailas-cloud/voicenote/internal/metrics"
	healthuc "github.com/kailas-cloud/voicenote/internal/usecase/health"
	"github.com/kailas-cloud/voicenote/internal/usecase/session"
)

// maxUploadBytes leaves room for multipart framing around the largest accepted clip.
const maxUploadBytes = audio.MaxSize + 1<<20

// Server serves the session API.
type Server struct {
	sessions      *session.Registry
	controller    *session.Controller
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	sessions *session.Registry,
	controller *session.Controller,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	return &Server{
		sessions:      sessions,
		controller:    controller,
		health:        health,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Handler returns the router with the middleware chain installed.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(metrics.Middleware())

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Post("/sessions", s.CreateSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", s.GetSession)
		r.Delete("/", s.DeleteSession)
		r.Post("/credential", s.SetCredential)
		r.Post("/audio", s.UploadAudio)
		r.Get("/audio", s.GetAudio)
		r.Post("/transcribe", s.Transcribe)
		r.Put("/draft", s.EditDraft)
		r.Post("/save", s.Save)
		r.Get("/notes", s.SearchNotes)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeBadRequest, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeBadRequest, "method not allowed")
	})
	return r
}

// CreateSession handles POST /sessions. The new session is authorized right away when a
// credential is configured for the process.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	st := s.sessions.Create()

	res, err := s.sessions.Do(st.ID, func(st session.State) (session.Result, error) {
		return s.controller.Authorize(r.Context(), st)
	})
	if err != nil && !errors.Is(err, domain.ErrCredentialRequired) {
		_ = s.sessions.Delete(st.ID)
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionToResponse(res.State, res.Status))
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	st, err := s.sessions.Get(id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionToResponse(st, ""))
}

// GetAudio handles GET /sessions/{id}/audio. It plays back the current clip and honours
// Range and If-None-Match with the clip digest as ETag.
func (s *Server) GetAudio(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	st, err := s.sessions.Get(id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if !st.Draft.HasAudio() {
		s.handleDomainError(w, r, domain.ErrNoAudio)
		return
	}

	clip := st.Draft.Clip()
	w.Header().Set("Content-Type", clip.MIME())
	w.Header().Set("ETag", strconv.Quote(clip.Digest()))
	w.Header().Set("Cache-Control", "no-cache")
	if cd := mime.FormatMediaType("inline", map[string]string{"filename": clip.Filename()}); cd != "" {
		w.Header().Set("Content-Disposition", cd)
	}
	http.ServeContent(w, r, clip.Filename(), time.Time{}, clip.Reader())
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	if err := s.sessions.Delete(id); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetCredential handles POST /sessions/{id}/credential.
func (s *Server) SetCredential(w http.ResponseWriter, r *http.Request) {
	var req CredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	s.run(w, r, false, func(st session.State) (session.Result, error) {
		return s.controller.SetCredential(st, req.APIKey)
	})
}

// UploadAudio handles POST /sessions/{id}/audio. The clip is either the raw request body
// (filename hint in ?filename=) or the "audio" part of a multipart form.
func (s *Server) UploadAudio(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	clip, err := readClip(r)
	if err != nil {
		if errors.Is(err, audio.ErrEmpty) {
			s.handleDomainError(w, r, err)
			return
		}
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid audio upload: "+err.Error())
		return
	}
	s.run(w, r, true, func(st session.State) (session.Result, error) {
		return s.controller.Record(st, clip)
	})
}

// Transcribe handles POST /sessions/{id}/transcribe.
func (s *Server) Transcribe(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, true, func(st session.State) (session.Result, error) {
		return s.controller.Transcribe(r.Context(), st)
	})
}

// EditDraft handles PUT /sessions/{id}/draft.
func (s *Server) EditDraft(w http.ResponseWriter, r *http.Request) {
	var req DraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	s.run(w, r, true, func(st session.State) (session.Result, error) {
		return s.controller.Edit(st, req.Text)
	})
}

// Save handles POST /sessions/{id}/save.
func (s *Server) Save(w http.ResponseWriter, r *http.Request) {
	ctx, usage := domain.NewContextWithUsage(r.Context())
	r = r.WithContext(ctx)

	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	res, err := s.sessions.Do(id, s.authorized(r, func(st session.State) (session.Result, error) {
		return s.controller.Save(r.Context(), st)
	}))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	resp := sessionToResponse(res.State, res.Status)
	resp.Saved = &res.Saved
	status := http.StatusOK
	if res.Saved {
		status = http.StatusCreated
	}
	writeJSON(w, status, resp)
}

// SearchNotes handles GET /sessions/{id}/notes?q=.
func (s *Server) SearchNotes(w http.ResponseWriter, r *http.Request) {
	var q *string
	if err := runtime.BindQueryParameter("form", true, false, "q", r.URL.Query(), &q); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid format for parameter q: "+err.Error())
		return
	}

	var query string
	if q != nil {
		query = *q
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	r = r.WithContext(ctx)

	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	res, err := s.sessions.Do(id, s.authorized(r, func(st session.State) (session.Result, error) {
		return s.controller.Search(r.Context(), st, query)
	}))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, notesToResponse(res))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// run executes one session action and answers with the resulting session.
func (s *Server) run(
	w http.ResponseWriter, r *http.Request, needsCredential bool,
	fn func(session.State) (session.Result, error),
) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	if needsCredential {
		fn = s.authorized(r, fn)
	}
	res, err := s.sessions.Do(id, fn)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionToResponse(res.State, res.Status))
}

// authorized retries credential resolution for a session that has none before running fn,
// so a key added to the environment after the session started is picked up.
func (s *Server) authorized(
	r *http.Request, fn func(session.State) (session.Result, error),
) func(session.State) (session.Result, error) {
	return func(st session.State) (session.Result, error) {
		if !st.Authorized() {
			res, err := s.controller.Authorize(r.Context(), st)
			if err != nil {
				return res, err
			}
			st = res.State
		}
		return fn(st)
	}
}

func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid format for parameter id: "+err.Error())
		return "", false
	}
	return id, true
}

func readClip(r *http.Request) (audio.Clip, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(audio.MaxSize); err != nil {
			return audio.Clip{}, err
		}
		f, hdr, err := r.FormFile("audio")
		if err != nil {
			return audio.Clip{}, err
		}
		defer func() { _ = f.Close() }()
		return audio.Read(f, hdr.Filename)
	}
	return audio.Read(r.Body, r.URL.Query().Get("filename"))
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage != nil && usage.Used {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}
