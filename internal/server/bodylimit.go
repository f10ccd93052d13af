package server

import "net/http"

const defaultMaxRequestSize = 5 * 1024 * 1024 // 5 MiB, spec.md §4.H body-size policy

// BodySizeLimit rejects requests whose declared Content-Length exceeds
// cap with 413 before the handler reads a byte, and additionally wraps
// the body in http.MaxBytesReader so a chunked/streamed body that lies
// about its length is still cut off at cap.
func BodySizeLimit(next http.Handler, cap int64) http.Handler {
	if cap <= 0 {
		cap = defaultMaxRequestSize
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > cap {
			http.Error(w, "request entity too large", http.StatusRequestEntityTooLarge)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, cap)
		next.ServeHTTP(w, r)
	})
}
