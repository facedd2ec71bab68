package middleware

import (
	"context"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type contextKey string

const contextValueRequestID contextKey = "RequestID"
const httpHeaderRequestID = "X-Request-Id"

// AddRequestID attaches a request id to the request context and to a request
// scoped logger retrievable with log.Ctx. An id sent by the client in the
// X-Request-Id header is reused, if it is a valid uuid.
func AddRequestID(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.Header.Get(httpHeaderRequestID))
		if err != nil {
			id = uuid.New()
		}
		requestID := id.String()
		w.Header().Set(httpHeaderRequestID, requestID)
		logger := log.With().Str("request", requestID).Logger()
		ctx := logger.WithContext(r.Context())
		ctx = CtxNewWithRequestID(ctx, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
	return http.HandlerFunc(fn)
}

// AddLogging logs every request with its response status and duration.
func AddLogging(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		event := log.Ctx(r.Context()).Info()
		if status >= http.StatusInternalServerError {
			event = log.Ctx(r.Context()).Error()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msgf("r=%v", r.RemoteAddr)
	}
	return http.HandlerFunc(fn)
}

func AddAll(next http.Handler) http.Handler {
	return AddRequestID(AddLogging(next))
}

func CtxGetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(contextValueRequestID).(string); ok {
		return id
	}
	return ""
}

func CtxNewWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextValueRequestID, id)
}
