package api

import (
	"encoding/json"
	"net/http"
	"time"

	"kycflow/internal/errs"

	"go.uber.org/zap"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
}

var statusByCode = map[errs.Code]int{
	errs.CodeInvalidInput:     http.StatusBadRequest,
	errs.CodeNotFound:         http.StatusNotFound,
	errs.CodePermissionDenied: http.StatusForbidden,
	errs.CodeConflict:         http.StatusConflict,
	errs.CodeExternal:         http.StatusBadGateway,
	errs.CodeInternal:         http.StatusInternalServerError,
}

// HTTPStatus maps an error onto its response status
func HTTPStatus(err error) int {
	if status, ok := statusByCode[errs.CodeOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WriteError writes a standardized error response
func WriteError(w http.ResponseWriter, err error, log *zap.Logger) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error("API error", zap.Int("status", status), zap.Error(err))
	} else {
		log.Debug("API error", zap.Int("status", status), zap.Error(err))
	}

	writeJSON(w, status, ErrorResponse{
		Error:   string(errs.CodeOf(err)),
		Reason:  string(errs.ReasonOf(err)),
		Message: errs.PublicMessage(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// RequestLogger logs HTTP requests and responses
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip wrapping for WebSocket upgrades - they need direct access to ResponseWriter
			if r.Header.Get("Upgrade") == "websocket" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()

			// Wrap response writer to capture status code
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			log.Info("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", wrapped.statusCode),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote_addr", r.RemoteAddr),
			)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
