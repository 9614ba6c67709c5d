package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/search"
	"github.com/sells-group/leadgen-cli/internal/store"
)

func newTestEnv(t *testing.T) *pipelineEnv {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	svc := search.New(st, nil, nil, search.Options{})
	return &pipelineEnv{Store: st, Service: svc}
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestServeHealth(t *testing.T) {
	router := newRouter(newTestEnv(t))

	rr := doRequest(t, router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rr.Body.String())
}

func TestServeSearchValidation(t *testing.T) {
	router := newRouter(newTestEnv(t))

	rr := doRequest(t, router, http.MethodPost, "/api/search", `{broken`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doRequest(t, router, http.MethodPost, "/api/search", `{"count": 3}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// No discovery client configured and nothing cached.
	rr = doRequest(t, router, http.MethodPost, "/api/search", `{"query": "plumbers"}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestServeLeadEndpoints(t *testing.T) {
	env := newTestEnv(t)
	router := newRouter(env)

	rr := doRequest(t, router, http.MethodGet, "/api/leads/unknown", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	lead := &model.Lead{
		ID:        "l1",
		SearchKey: "plumbers in austin",
		Business:  model.Business{PlaceID: "p1", Name: "Acme"},
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, env.Store.SaveLead(context.Background(), lead))

	rr = doRequest(t, router, http.MethodGet, "/api/leads/l1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var got model.Lead
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "Acme", got.Business.Name)

	rr = doRequest(t, router, http.MethodGet, "/api/leads", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)
}

func TestServeQueryEndpoints(t *testing.T) {
	env := newTestEnv(t)
	router := newRouter(env)

	rr := doRequest(t, router, http.MethodGet, "/api/queries/never%20searched", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	lead := &model.Lead{ID: "l1", SearchKey: "bakeries", Business: model.Business{Name: "Crumb"}}
	require.NoError(t, env.Store.SaveLead(context.Background(), lead))
	require.NoError(t, env.Store.SaveSearch(context.Background(), &model.SearchRecord{
		Key:         "bakeries",
		LeadIDs:     []string{"l1"},
		SearchCount: 2,
		ResultCount: 1,
	}))

	rr = doRequest(t, router, http.MethodGet, "/api/queries/bakeries", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var got struct {
		Record  model.SearchRecord `json:"record"`
		Results []model.Lead       `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Record.SearchCount)
	require.Len(t, got.Results, 1)
	assert.Equal(t, "Crumb", got.Results[0].Business.Name)

	rr = doRequest(t, router, http.MethodGet, "/api/queries", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)
}
