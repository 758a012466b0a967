package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// responseRecorder holds back plain-text error bodies so they can be re-encoded as JSON
type responseRecorder struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
	capture     bool
	body        bytes.Buffer
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	if r.wroteHeader {
		return
	}
	r.wroteHeader = true
	r.statusCode = statusCode
	if statusCode >= 400 && !isJSON(r.Header().Get("Content-Type")) {
		r.capture = true
		return
	}
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	if r.capture {
		return r.body.Write(b)
	}
	return r.ResponseWriter.Write(b)
}

// Flush keeps streaming responses working through the recorder
func (r *responseRecorder) Flush() {
	if r.capture {
		return
	}
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func isJSON(contentType string) bool {
	return strings.HasPrefix(contentType, "application/json")
}

// ErrorHandler recovers panics and rewrites non-JSON error responses as
// {"error": "..."} bodies
func ErrorHandler(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		defer func() {
			if err := recover(); err != nil {
				log.Error("[ErrorHandler] panic while serving request",
					zap.Any("error", err),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path))
				if rec.wroteHeader && !rec.capture {
					return
				}
				writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
				return
			}
			if rec.capture {
				writeJSONError(w, rec.statusCode, strings.TrimSpace(rec.body.String()))
			}
		}()

		next.ServeHTTP(rec, r)
	})
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Del("Content-Length")
	w.Header().Del("X-Content-Type-Options")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}
