package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestAddRequestID(t *testing.T) {
	for _, test := range []struct {
		Name     string
		Header   string
		ExpectID string
	}{
		{Name: "generated", Header: ""},
		{Name: "invalid header is replaced", Header: "not-a-uuid"},
		{Name: "valid header is reused", Header: "0b7c7e0e-5f51-4d5c-9f0b-2f6d7a9b3c11", ExpectID: "0b7c7e0e-5f51-4d5c-9f0b-2f6d7a9b3c11"},
	} {
		t.Run(test.Name, func(t *testing.T) {
			assert := assert.New(t)
			id := ""
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				id = CtxGetRequestID(r.Context())
			})
			req := httptest.NewRequest(http.MethodGet, "/layouts/a", nil)
			if test.Header != "" {
				req.Header.Set("X-Request-Id", test.Header)
			}
			rec := httptest.NewRecorder()
			AddRequestID(next).ServeHTTP(rec, req)
			_, err := uuid.Parse(id)
			assert.NoError(err, "request id must be a uuid")
			if test.ExpectID != "" {
				assert.Equal(test.ExpectID, id)
			}
			assert.Equal(id, rec.Header().Get("X-Request-Id"))
		})
	}
}

func TestCtxGetRequestID(t *testing.T) {
	ctx := context.WithValue(context.Background(), contextKey("a"), "c")
	assert.Equal(t, "", CtxGetRequestID(ctx), "request id key not found")
	assert.Equal(t, "b", CtxGetRequestID(CtxNewWithRequestID(context.Background(), "b")), "valid")
	ctx = context.WithValue(context.Background(), contextValueRequestID, []string{"a"})
	assert.Equal(t, "", CtxGetRequestID(ctx), "invalid type in correct key")
}

func TestAddAll(t *testing.T) {
	logBuffer := bytes.NewBuffer([]byte{})
	oldLogger := log.Logger
	t.Cleanup(func() { log.Logger = oldLogger })
	log.Logger = zerolog.New(logBuffer).Level(zerolog.DebugLevel).With().Str("test", "test").Logger()
	requestID := ""
	next := http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			requestID = CtxGetRequestID(r.Context())
			log.Ctx(r.Context()).Info().Msg("AAA")
			w.WriteHeader(http.StatusTeapot)
		},
	)
	rec := httptest.NewRecorder()
	AddAll(next).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/layouts/b", nil))
	assert := assert.New(t)
	assert.Equal(http.StatusTeapot, rec.Code)
	assert.NotEmpty(requestID)
	logs := logBuffer.String()
	assert.Contains(logs, `"message":"AAA"`)
	assert.Contains(logs, `"request":"`+requestID+`"`, "request scoped logger is used by handlers")
	assert.Contains(logs, `"method":"DELETE"`)
	assert.Contains(logs, `"path":"/layouts/b"`)
	assert.Contains(logs, `"status":418`)
	assert.Contains(logs, `"test":"test"`)
}
