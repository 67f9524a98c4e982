package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/memotica/memotica/internal/errors"
	"github.com/memotica/memotica/internal/logger"
)

// statusRecorder remembers the status and body size a handler wrote.
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	n, err := sr.ResponseWriter.Write(b)
	sr.size += n
	return n, err
}

const requestIDHeader = "X-Request-ID"

// requestLogger builds the logger every handler of one request shares.
func requestLogger(r *http.Request, requestID string) *logger.Logger {
	fields := map[string]any{
		"request_id": requestID,
		"method":     r.Method,
		"path":       r.URL.Path,
	}
	if r.RemoteAddr != "" {
		fields["remote_addr"] = r.RemoteAddr
	}
	return logger.Default().WithPrefix("http").WithFields(fields)
}

// loggingMiddleware tags each request with an id (the caller's X-Request-ID
// or a fresh uuid), installs a request logger in the context and logs the
// outcome once the handler returns.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		log := requestLogger(r, requestID)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(logger.NewContext(r.Context(), log)))

		log = log.WithFields(map[string]any{
			"status":      rec.status,
			"size":        rec.size,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		switch {
		case rec.status >= 500:
			log.Error("%s %s failed", r.Method, r.URL.Path)
		case rec.status >= 400:
			log.Warn("%s %s rejected", r.Method, r.URL.Path)
		default:
			log.Info("%s %s", r.Method, r.URL.Path)
		}
	})
}

// recoveryMiddleware turns a handler panic into an error response. Panics
// carrying an AppError, such as scheduler invariant violations, keep their
// code.
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger.FromContext(r.Context()).Error("panic recovered: %v", rec)
			handleError(w, r, panicError(rec))
		}()
		next.ServeHTTP(w, r)
	})
}

func panicError(rec any) error {
	err, ok := rec.(error)
	if !ok {
		return errors.NewInternalError(fmt.Errorf("panic: %v", rec))
	}
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return errors.NewInternalError(err)
}

var securityHeaders = map[string]string{
	"X-Content-Type-Options": "nosniff",
	"X-Frame-Options":        "DENY",
	"Referrer-Policy":        "no-referrer",
	"Cache-Control":          "no-store",
}

// securityHeadersMiddleware marks API responses as uncacheable and not
// embeddable.
func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for k, v := range securityHeaders {
			w.Header().Set(k, v)
		}
		next.ServeHTTP(w, r)
	})
}

// timeoutMiddleware answers 503 with a JSON error body when a handler runs
// longer than timeout.
func timeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	body := `{"error":{"code":"` + errors.ErrCodeInternal + `","message":"request timed out"}}`
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, body)
	}
}
