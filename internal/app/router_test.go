package app

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/suxatcode/learn-graph-layout/db"
	"github.com/suxatcode/learn-graph-layout/graph/model"
	"github.com/suxatcode/learn-graph-layout/internal/controller"
	"github.com/suxatcode/learn-graph-layout/layout"
)

const testGraph = `{
  "nodes": [{"id": "a", "x": 0.5, "y": 0.5}, {"id": "b"}, {"id": "c"}],
  "edges": [{"from": "a", "to": "b"}, {"from": "b", "to": "c"}]
}`

func newTestServer(t *testing.T) *httptest.Server {
	store, err := db.NewFileStore(t.TempDir())
	assert.NoError(t, err)
	conf := layout.DefaultConfig
	conf.Params.Iterations = 10
	layouter, err := controller.NewLayouter(store, conf)
	assert.NoError(t, err)
	s := httptest.NewServer(NewRouter(layouter, store, 0))
	t.Cleanup(s.Close)
	return s
}

func do(t *testing.T, s *httptest.Server, method, path, body string) (*http.Response, []byte) {
	req, err := http.NewRequest(method, s.URL+path, strings.NewReader(body))
	assert.NoError(t, err)
	resp, err := s.Client().Do(req)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	return resp, data
}

func TestRouter_layoutLifecycle(t *testing.T) {
	s := newTestServer(t)
	assert := assert.New(t)

	resp, _ := do(t, s, http.MethodGet, "/layouts/tree", "")
	assert.Equal(http.StatusNotFound, resp.StatusCode)

	resp, body := do(t, s, http.MethodPut, "/layouts/tree", testGraph)
	assert.Equal(http.StatusOK, resp.StatusCode)
	assert.NotEmpty(resp.Header.Get("X-Request-Id"))
	record, err := db.DecodeRecord("response", body)
	assert.NoError(err)
	assert.Len(record.Pos, 3)
	assert.Equal("tree", record.MetaString(db.MetaName))
	assert.Equal(3.0, record.Meta[db.MetaVertexCount])

	resp, body = do(t, s, http.MethodGet, "/layouts/tree", "")
	assert.Equal(http.StatusOK, resp.StatusCode)
	stored, err := db.DecodeRecord("response", body)
	assert.NoError(err)
	assert.Equal(record, stored)

	resp, body = do(t, s, http.MethodPost, "/layouts/tree/positions", testGraph)
	assert.Equal(http.StatusOK, resp.StatusCode)
	g := model.Graph{}
	assert.NoError(json.Unmarshal(body, &g))
	for _, node := range g.Nodes {
		if assert.NotNil(node.Position, node.ID) {
			assert.Equal(record.Pos[node.ID], layout.Position{X: node.Position.X, Y: node.Position.Y})
		}
	}

	resp, _ = do(t, s, http.MethodDelete, "/layouts/tree", "")
	assert.Equal(http.StatusNoContent, resp.StatusCode)
	resp, _ = do(t, s, http.MethodDelete, "/layouts/tree", "")
	assert.Equal(http.StatusNotFound, resp.StatusCode)
}

func TestRouter_errors(t *testing.T) {
	s := newTestServer(t)
	for _, test := range []struct {
		Name         string
		Method       string
		Path         string
		Body         string
		ExpectStatus int
		ExpectBody   string
	}{
		{Name: "invalid json", Method: http.MethodPut, Path: "/layouts/a", Body: `{"nodes": [`, ExpectStatus: http.StatusBadRequest},
		{Name: "unknown field", Method: http.MethodPut, Path: "/layouts/a", Body: `{"vertices": []}`, ExpectStatus: http.StatusBadRequest},
		{Name: "null node", Method: http.MethodPut, Path: "/layouts/a", Body: `{"nodes": [null]}`, ExpectStatus: http.StatusBadRequest, ExpectBody: "node 0 is null"},
		{Name: "null edge", Method: http.MethodPost, Path: "/layouts/a/positions", Body: `{"nodes": [{"id": "a"}], "edges": [null]}`, ExpectStatus: http.StatusBadRequest, ExpectBody: "edge 0 is null"},
		{Name: "invalid name", Method: http.MethodGet, Path: "/layouts/.hidden", ExpectStatus: http.StatusBadRequest},
		{
			Name:         "unknown edge endpoint",
			Method:       http.MethodPut,
			Path:         "/layouts/a",
			Body:         `{"nodes": [{"id": "a"}], "edges": [{"from": "a", "to": "z"}]}`,
			ExpectStatus: http.StatusUnprocessableEntity,
			ExpectBody:   `"field":"link"`,
		},
		{
			Name:         "duplicate vertex",
			Method:       http.MethodPost,
			Path:         "/layouts/a/positions",
			Body:         `{"nodes": [{"id": "a"}, {"id": "a"}]}`,
			ExpectStatus: http.StatusUnprocessableEntity,
			ExpectBody:   `"field":"vertex"`,
		},
		{Name: "unknown route", Method: http.MethodGet, Path: "/graphs", ExpectStatus: http.StatusNotFound},
		{Name: "health", Method: http.MethodGet, Path: "/healthz", ExpectStatus: http.StatusNoContent},
	} {
		t.Run(test.Name, func(t *testing.T) {
			resp, body := do(t, s, test.Method, test.Path, test.Body)
			assert.Equal(t, test.ExpectStatus, resp.StatusCode, string(body))
			if test.ExpectBody != "" {
				assert.Contains(t, string(body), test.ExpectBody)
			}
		})
	}
}

func TestRouter_internalError(t *testing.T) {
	ctrl := gomock.NewController(t)
	layouter := controller.NewMockLayouter(ctrl)
	layouter.EXPECT().GetNodePositions(gomock.Any(), "a", gomock.Any()).Return(errors.New("connection reset"))
	s := httptest.NewServer(NewRouter(layouter, db.NewMockStore(ctrl), 0))
	defer s.Close()
	resp, body := do(t, s, http.MethodPost, "/layouts/a/positions", `{"nodes": []}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"error": "connection reset"}`, string(body))
}
