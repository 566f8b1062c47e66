package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	"github.com/rezkam/ledger/internal/infrastructure/http/response"
)

// MaxBodyBytes limits request body size and answers 413 with the standard error envelope.
//
// A declared Content-Length over the limit is rejected before reading. Otherwise
// the body is read through http.MaxBytesReader, which also catches chunked
// bodies and understated lengths, and replayed to the next handler.
func MaxBodyBytes(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				payloadTooLarge(w, r, maxBytes, nil)
				return
			}

			if r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}

			buf, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes))
			if err != nil {
				payloadTooLarge(w, r, maxBytes, err)
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(buf))
			next.ServeHTTP(w, r)
		})
	}
}

func payloadTooLarge(w http.ResponseWriter, r *http.Request, limit int64, err error) {
	slog.WarnContext(r.Context(), "Request body size limit exceeded",
		"method", r.Method,
		"path", r.URL.Path,
		"content_length", r.ContentLength,
		"limit", limit,
		"error", err)
	response.Error(w, "PAYLOAD_TOO_LARGE", "request body exceeds size limit", http.StatusRequestEntityTooLarge)
}
