package app

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/suxatcode/learn-graph-layout/db"
	"github.com/suxatcode/learn-graph-layout/graph/model"
	"github.com/suxatcode/learn-graph-layout/internal/controller"
	"github.com/suxatcode/learn-graph-layout/layout"
	"github.com/suxatcode/learn-graph-layout/middleware"
)

// graphs larger than this are rejected
const maxRequestBytes = 32 << 20

type handler struct {
	layouter controller.Layouter
	store    db.Store
}

// NewRouter serves the layout api. Request contexts are cancelled after
// timeout, if timeout is positive.
func NewRouter(layouter controller.Layouter, store db.Store, timeout time.Duration) http.Handler {
	h := &handler{layouter: layouter, store: store}
	r := chi.NewRouter()
	r.Use(middleware.AddAll)
	r.Use(chimiddleware.Recoverer)
	if timeout > 0 {
		r.Use(chimiddleware.Timeout(timeout))
	}
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Route("/layouts/{name}", func(r chi.Router) {
		r.Use(validName)
		r.Put("/", h.putLayout)
		r.Get("/", h.getLayout)
		r.Delete("/", h.deleteLayout)
		r.Post("/positions", h.postPositions)
	})
	return r
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	resp := errorResponse{Error: err.Error()}
	configErr := &layout.ConfigError{}
	switch {
	case errors.As(err, &configErr):
		status = http.StatusUnprocessableEntity
		resp.Field = configErr.Field
	case errors.Is(err, db.ErrLayoutNotFound):
		status = http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		// client is gone, the response is not read
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		log.Ctx(r.Context()).Error().Msgf("%v", err)
	}
	writeJSON(w, status, resp)
}

func validName(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := db.ValidName(chi.URLParam(r, "name")); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func decodeGraph(w http.ResponseWriter, r *http.Request) (*model.Graph, bool) {
	g := &model.Graph{}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(g); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: errors.Wrap(err, "invalid graph").Error()})
		return nil, false
	}
	if err := g.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: errors.Wrap(err, "invalid graph").Error()})
		return nil, false
	}
	return g, true
}

func (h *handler) putLayout(w http.ResponseWriter, r *http.Request) {
	g, ok := decodeGraph(w, r)
	if !ok {
		return
	}
	record, _, err := h.layouter.Reload(r.Context(), chi.URLParam(r, "name"), g)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *handler) getLayout(w http.ResponseWriter, r *http.Request) {
	record, err := h.store.LoadLayout(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *handler) deleteLayout(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteLayout(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) postPositions(w http.ResponseWriter, r *http.Request) {
	g, ok := decodeGraph(w, r)
	if !ok {
		return
	}
	if err := h.layouter.GetNodePositions(r.Context(), chi.URLParam(r, "name"), g); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}
