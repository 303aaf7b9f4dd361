package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ss12000-mock/internal/db/memory"
	"ss12000-mock/internal/domain"
	"ss12000-mock/internal/filter"
	"ss12000-mock/internal/middleware"
	"ss12000-mock/internal/resource"
	"ss12000-mock/internal/service/endpoint"
	"ss12000-mock/internal/service/expand"
	"ss12000-mock/internal/service/subscription"
	"ss12000-mock/internal/testutil"
	"ss12000-mock/internal/validator"
)

func newHandler(reg *resource.Registry) *Handler {
	logger := testutil.DiscardLogger()
	endpoints := endpoint.NewService(reg, expand.NewEngine(reg, logger), logger)
	subs := subscription.NewService(reg.Stores.Subscriptions, validator.New(reg.Has), logger)
	return NewHandler(endpoints, subs, logger)
}

// setupTestServer serves the canonical dataset.
func setupTestServer(t *testing.T, cfg RouterConfig) *httptest.Server {
	t.Helper()
	return serve(t, testutil.SeededRegistry(t), cfg)
}

func serve(t *testing.T, reg *resource.Registry, cfg RouterConfig) *httptest.Server {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = testutil.DiscardLogger()
	}
	srv := httptest.NewServer(NewRouter(t.Context(), newHandler(reg), cfg))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, target string, body any) (int, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(t.Context(), method, target, rd)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(bytes.TrimSpace(raw)) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func data(t *testing.T, body map[string]any) []map[string]any {
	t.Helper()
	items, ok := body["data"].([]any)
	require.True(t, ok, "body has a data array: %v", body)
	out := make([]map[string]any, len(items))
	for i, it := range items {
		out[i] = it.(map[string]any)
	}
	return out
}

func TestAPI_ListOrganisationsWithReferenceNames(t *testing.T) {
	srv := setupTestServer(t, RouterConfig{})

	status, body := do(t, http.MethodGet, srv.URL+"/v1/organisations?parent="+testutil.OrgRoot+"&expandReferenceNames=true", nil)
	require.Equal(t, http.StatusOK, status)

	items := data(t, body)
	require.Len(t, items, 2)
	assert.Equal(t, testutil.OrgSchool, items[0]["id"])
	assert.Equal(t, "Exempelkommun", items[0]["parent_name"])

	meta := body["meta"].(map[string]any)
	assert.InDelta(t, 2, meta["totalCount"], 0.001)
	assert.InDelta(t, domain.DefaultLimit, meta["limit"], 0.001)
	assert.InDelta(t, 0, meta["offset"], 0.001)
	assert.NotContains(t, body, "pageToken")
}

func TestAPI_OpenEndedDutyMatchesEndDateBound(t *testing.T) {
	srv := setupTestServer(t, RouterConfig{})

	status, body := do(t, http.MethodGet, srv.URL+"/v1/duties?endDate.onOrAfter=2024-01-01", nil)
	require.Equal(t, http.StatusOK, status)
	items := data(t, body)
	require.Len(t, items, 1)
	assert.Equal(t, testutil.DutyID, items[0]["id"])
}

func TestAPI_LookupPersonByCivicNumber(t *testing.T) {
	srv := setupTestServer(t, RouterConfig{})

	status, body := do(t, http.MethodPost, srv.URL+"/v1/persons/lookup", LookupRequest{IDs: []string{testutil.TeacherCivicNo}})
	require.Equal(t, http.StatusOK, status)
	items := data(t, body)
	require.Len(t, items, 1)
	assert.Equal(t, testutil.TeacherID, items[0]["id"])
}

func TestAPI_GetWithExpansion(t *testing.T) {
	srv := setupTestServer(t, RouterConfig{})

	status, body := do(t, http.MethodGet, srv.URL+"/v1/persons/"+testutil.TeacherID+"?expand=duties", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Anna Andersson", body["display_name"])
	duties, ok := body["duties"].([]any)
	require.True(t, ok)
	require.Len(t, duties, 1)
	assert.Equal(t, testutil.DutyID, duties[0].(map[string]any)["id"])
}

func TestAPI_Errors(t *testing.T) {
	srv := setupTestServer(t, RouterConfig{})

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
		wantDetail string
	}{
		{name: "partial school type", method: http.MethodGet, path: "/v1/organisations?schoolTypes=Gymnas", wantStatus: http.StatusBadRequest, wantDetail: "Gymnas"},
		{name: "unknown sort key", method: http.MethodGet, path: "/v1/persons?sortkey=Shoesize", wantStatus: http.StatusBadRequest},
		{name: "sort key on wrong resource", method: http.MethodGet, path: "/v1/rooms?sortkey=DisplayNameAsc", wantStatus: http.StatusBadRequest},
		{name: "non-numeric limit", method: http.MethodGet, path: "/v1/persons?limit=ten", wantStatus: http.StatusBadRequest, wantDetail: "limit"},
		{name: "unknown expansion", method: http.MethodGet, path: "/v1/persons?expand=pets", wantStatus: http.StatusBadRequest},
		{name: "missing record", method: http.MethodGet, path: "/v1/organisations/nope", wantStatus: http.StatusNotFound, wantDetail: "nope"},
		{name: "unknown resource", method: http.MethodGet, path: "/v1/planets", wantStatus: http.StatusNotFound},
		{name: "malformed subscription id", method: http.MethodGet, path: "/v1/subscriptions/not-a-uuid", wantStatus: http.StatusBadRequest},
		{name: "bad lookup body", method: http.MethodPost, path: "/v1/persons/lookup", body: map[string]any{"ids": "x"}, wantStatus: http.StatusBadRequest},
		{name: "unknown route", method: http.MethodGet, path: "/v2/persons", wantStatus: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, tt.method, srv.URL+tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, status)
			assert.InDelta(t, float64(tt.wantStatus), body["code"], 0.001)
			assert.NotEmpty(t, body["detail"])
			if tt.wantDetail != "" {
				assert.Contains(t, body["detail"], tt.wantDetail)
			}
		})
	}
}

func TestAPI_Pagination(t *testing.T) {
	srv := setupTestServer(t, RouterConfig{})

	status, first := do(t, http.MethodGet, srv.URL+"/v1/persons?limit=2", nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, data(t, first), 2)
	token, ok := first["pageToken"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)

	status, second := do(t, http.MethodGet, srv.URL+"/v1/persons?limit=2&pageToken="+url.QueryEscape(token), nil)
	require.Equal(t, http.StatusOK, status)
	rest := data(t, second)
	require.Len(t, rest, 1)
	assert.NotContains(t, second, "pageToken")

	seen := map[any]bool{}
	for _, it := range append(data(t, first), rest...) {
		assert.False(t, seen[it["id"]], "each record appears once")
		seen[it["id"]] = true
	}

	status, body := do(t, http.MethodGet, srv.URL+"/v1/persons?nameContains=a&pageToken="+url.QueryEscape(token), nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["detail"], "pageToken")
}

func TestAPI_SubscriptionLifecycle(t *testing.T) {
	srv := setupTestServer(t, RouterConfig{})

	status, created := do(t, http.MethodPost, srv.URL+"/v1/subscriptions", map[string]any{
		"resource_type": "persons", "resource_id": testutil.StudentID, "user_id": "u1",
	})
	require.Equal(t, http.StatusCreated, status)
	id, _ := created["id"].(string)
	require.NoError(t, domain.RequireUUID(id))

	status, got := do(t, http.MethodGet, srv.URL+"/v1/subscriptions/"+id, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "u1", got["user_id"])

	status, patched := do(t, http.MethodPatch, srv.URL+"/v1/subscriptions/"+id, map[string]any{"user_id": "u2"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "u2", patched["user_id"])
	assert.Equal(t, "persons", patched["resource_type"])

	status, list := do(t, http.MethodGet, srv.URL+"/v1/subscriptions", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, data(t, list), 1)

	status, _ = do(t, http.MethodDelete, srv.URL+"/v1/subscriptions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = do(t, http.MethodDelete, srv.URL+"/v1/subscriptions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body := do(t, http.MethodPost, srv.URL+"/v1/subscriptions", map[string]any{
		"resource_type": "planets", "resource_id": "x", "user_id": "u1",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["detail"], "planets")
}

func TestAPI_Statistics(t *testing.T) {
	srv := setupTestServer(t, RouterConfig{})

	status, body := do(t, http.MethodGet, srv.URL+"/v1/statistics", nil)
	require.Equal(t, http.StatusOK, status)
	assert.InDelta(t, 3, body["persons"], 0.001)
	assert.InDelta(t, 3, body["organisations"], 0.001)
	assert.InDelta(t, 0, body["subscriptions"], 0.001)

	status, body = do(t, http.MethodGet, srv.URL+"/v1/statistics?meta.created.after=2030-01-01T00:00:00Z", nil)
	require.Equal(t, http.StatusOK, status)
	assert.InDelta(t, 0, body["persons"], 0.001)
}

func TestAPI_StoreFailureIsInternal(t *testing.T) {
	stores := resource.OpenStores(resource.MemoryBackend(memory.NewDB()))
	stores.Persons = &testutil.MockStore[domain.Person]{
		CountFn: func(context.Context, filter.Predicate) (int64, error) {
			return 0, errors.New("connection reset by peer")
		},
	}
	srv := serve(t, resource.NewRegistry(stores), RouterConfig{})

	status, body := do(t, http.MethodGet, srv.URL+"/v1/persons", nil)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", body["detail"])
}

func TestAPI_OperationalRoutes(t *testing.T) {
	srv := setupTestServer(t, RouterConfig{Registry: prometheus.NewRegistry()})

	status, body := do(t, http.MethodGet, srv.URL+"/healthz", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	status, _ = do(t, http.MethodGet, srv.URL+"/v1/rooms", nil)
	require.Equal(t, http.StatusOK, status)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `ss12000_http_requests_total{method="GET",route="/v1/{resource}",status="200"} 1`)
}

func TestAPI_BearerAuth(t *testing.T) {
	v, err := middleware.NewHS256Validator("s3cret")
	require.NoError(t, err)
	srv := setupTestServer(t, RouterConfig{Auth: v})

	status, _ := do(t, http.MethodGet, srv.URL+"/v1/persons", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "client"}).SignedString([]byte("s3cret"))
	require.NoError(t, err)
	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL+"/v1/persons", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	status, _ = do(t, http.MethodGet, srv.URL+"/healthz", nil)
	assert.Equal(t, http.StatusOK, status, "health checks stay public")
}

func TestAPI_LogRoutes(t *testing.T) {
	reg := resource.NewRegistry(resource.OpenStores(resource.MemoryBackend(memory.NewDB())))
	_, err := reg.Stores.Logs.Insert(t.Context(), &domain.Log{Meta: domain.Meta{ID: "log-1"}, LogMessage: "deleted persons p-1"})
	require.NoError(t, err)
	srv := serve(t, reg, RouterConfig{})

	status, body := do(t, http.MethodGet, srv.URL+"/v1/log", nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, data(t, body), 1)
	assert.Equal(t, "deleted persons p-1", data(t, body)[0]["log_message"])

	status, body = do(t, http.MethodPost, srv.URL+"/v1/log/lookup", LookupRequest{IDs: []string{"log-1", "log-2"}})
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, data(t, body), 1)

	status, _ = do(t, http.MethodGet, srv.URL+"/v1/logs", nil)
	assert.Equal(t, http.StatusNotFound, status)
}
