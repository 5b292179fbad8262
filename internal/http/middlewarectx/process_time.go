package middlewarectx

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/contacts-api/internal/metrics"
)

// ProcessTimeHeader заголовок с временем обработки запроса в секундах.
const ProcessTimeHeader = "My-Process-Time"

type timedWriter struct {
	http.ResponseWriter
	start       time.Time
	status      int
	wroteHeader bool
}

func (tw *timedWriter) WriteHeader(code int) {
	if tw.wroteHeader {
		return
	}
	tw.wroteHeader = true
	tw.status = code
	tw.Header().Set(ProcessTimeHeader, strconv.FormatFloat(time.Since(tw.start).Seconds(), 'f', 6, 64))
	tw.ResponseWriter.WriteHeader(code)
}

func (tw *timedWriter) Write(b []byte) (int, error) {
	if !tw.wroteHeader {
		tw.WriteHeader(http.StatusOK)
	}
	return tw.ResponseWriter.Write(b)
}

// Flush отправляет заголовки, если они ещё не ушли, и сбрасывает буфер.
func (tw *timedWriter) Flush() {
	if !tw.wroteHeader {
		tw.WriteHeader(http.StatusOK)
	}
	if f, ok := tw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (tw *timedWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := tw.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, errors.New("middlewarectx: underlying ResponseWriter does not support hijacking")
}

// Unwrap нужен http.ResponseController.
func (tw *timedWriter) Unwrap() http.ResponseWriter {
	return tw.ResponseWriter
}

// Observe добавляет заголовок My-Process-Time и считает запросы в m.
// Метка route это шаблон маршрута chi, чтобы идентификаторы не раздували кардинальность.
func Observe(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tw := &timedWriter{ResponseWriter: w, start: time.Now(), status: http.StatusOK}
			next.ServeHTTP(tw, r)
			if !tw.wroteHeader {
				tw.WriteHeader(http.StatusOK)
			}

			if m == nil {
				return
			}
			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			m.RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(tw.status)).Inc()
			m.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(tw.start).Seconds())
		})
	}
}
