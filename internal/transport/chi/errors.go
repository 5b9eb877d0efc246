package chi

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/kailas-cloud/voicenote/internal/domain"
	logpkg "github.com/kailas-cloud/voicenote/internal/logger"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		idConflictHandler,
		sentinelHandler(domain.ErrSessionNotFound, http.StatusNotFound, ErrorCodeSessionNotFound),
		sentinelHandler(domain.ErrCredentialRequired, http.StatusUnauthorized, ErrorCodeCredentialRequired),
		sentinelHandler(domain.ErrEmptyAudio, http.StatusBadRequest, ErrorCodeEmptyAudio),
		sentinelHandler(domain.ErrEmptyText, http.StatusBadRequest, ErrorCodeEmptyText),
		sentinelHandler(domain.ErrNoAudio, http.StatusConflict, ErrorCodeNoAudio),
		sentinelHandler(domain.ErrNoDraft, http.StatusConflict, ErrorCodeNoDraft),
		sentinelHandler(domain.ErrTranscriptionProviderError,
			http.StatusBadGateway, ErrorCodeTranscriptionProviderError),
		sentinelHandler(domain.ErrEmbeddingProviderError,
			http.StatusBadGateway, ErrorCodeEmbeddingProviderError),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusInternalServerError, ErrorCodeVectorDimMismatch),
	}
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrSessionNotFound,
		domain.ErrCredentialRequired,
		domain.ErrEmptyAudio,
		domain.ErrEmptyText,
		domain.ErrNoAudio,
		domain.ErrNoDraft,
		domain.ErrIDConflict,
		domain.ErrTranscriptionProviderError,
		domain.ErrEmbeddingProviderError,
		domain.ErrVectorDimMismatch,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// idConflictHandler reports the colliding note id so the client can retry the save.
func idConflictHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrIDConflict) {
		return false
	}
	var ice *domain.IDConflictError
	if errors.As(err, &ice) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"code":    ErrorCodeIDConflict,
			"message": msg,
			"id":      strconv.FormatUint(ice.ID, 10),
		})
		return true
	}
	writeError(w, http.StatusConflict, ErrorCodeIDConflict, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context())
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
