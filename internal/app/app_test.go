package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ss12000-mock/internal/config"
	"ss12000-mock/internal/testutil"
)

const fixture = `
organisations:
  - id: kommun
    name: Exempelkommun
    type: Kommun
  - id: skolan
    name: Skolan
    type: Skola
    parent_id: kommun
`

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o600))
	return &config.Config{
		StoreBackend:       backend,
		MetaDBPath:         filepath.Join(dir, "ss12000.sqlite"),
		FixturePath:        path,
		RateLimitRPS:       100,
		RateLimitBurst:     200,
		CORSAllowedOrigins: []string{"*"},
		SweepSchedule:      "@every 1m",
		RequestTimeout:     5 * time.Second,
	}
}

func TestNew_ServesProvisionedFixture(t *testing.T) {
	for _, backend := range []string{config.BackendMemory, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			a, err := New(ctx, Deps{Cfg: testConfig(t, backend), Logger: testutil.DiscardLogger()})
			require.NoError(t, err)
			t.Cleanup(func() { _ = a.Close() })

			srv := httptest.NewServer(a.Handler(t.Context()))
			t.Cleanup(srv.Close)

			resp, err := http.Get(srv.URL + "/v1/organisations?expandReferenceNames=true")
			require.NoError(t, err)
			defer resp.Body.Close() //nolint:errcheck
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var body struct {
				Data []map[string]any `json:"data"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			require.Len(t, body.Data, 2)
			assert.Equal(t, "Exempelkommun", body.Data[1]["parent_name"])
		})
	}
}

func TestNew_ReloadsFixtureOnRestart(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, config.BackendSQLite)

	first, err := New(ctx, Deps{Cfg: cfg, Logger: testutil.DiscardLogger()})
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := New(ctx, Deps{Cfg: cfg, Logger: testutil.DiscardLogger()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	n, err := second.Registry.Stores.Organisations.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestNew_InvalidFixture(t *testing.T) {
	cfg := testConfig(t, config.BackendMemory)
	require.NoError(t, os.WriteFile(cfg.FixturePath, []byte("planets: []\n"), 0o600))

	_, err := New(context.Background(), Deps{Cfg: cfg, Logger: testutil.DiscardLogger()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provision")
}

func TestOpenBackend_Unknown(t *testing.T) {
	_, _, err := OpenBackend(context.Background(), &config.Config{StoreBackend: "mongodb"}, nil)
	require.Error(t, err)
}

func TestHandler_RequiresTokenWhenSecretSet(t *testing.T) {
	cfg := testConfig(t, config.BackendMemory)
	cfg.JWTSecret = "s3cret"
	a, err := New(context.Background(), Deps{Cfg: cfg, Logger: testutil.DiscardLogger()})
	require.NoError(t, err)

	srv := httptest.NewServer(a.Handler(t.Context()))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/v1/organisations")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
