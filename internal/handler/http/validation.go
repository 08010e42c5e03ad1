package http

import (
	"net/http"
)

const (
	maxPathLength  = 2048
	maxQueryLength = 2048
	maxBodyBytes   = 64 << 10
)

// InputValidation rejects oversized paths and query strings and caps the
// request body. Event bodies are a handful of short fields, so the body cap
// is far below anything a legitimate client sends.
func InputValidation() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.URL.Path) > maxPathLength || len(r.URL.RawQuery) > maxQueryLength {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestURITooLong)
				_, _ = w.Write([]byte(`{"error":"URI too long"}`))
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			next.ServeHTTP(w, r)
		})
	}
}
