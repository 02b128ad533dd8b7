package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/backyonatan-alt/coronastats/internal/cache"
	"github.com/backyonatan-alt/coronastats/internal/config"
	"github.com/backyonatan-alt/coronastats/internal/model"
)

const inviteURL = "https://discord.test/invite"

func newTestServer(c *cache.Cache, origins ...string) http.Handler {
	cfg := &config.Config{InviteURL: inviteURL, AllowedOrigins: origins}
	return New(cfg, c).Router()
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func populated() *cache.Cache {
	c := cache.New()
	c.MergeGlobal(model.GlobalSnapshot{
		Cases:     model.Int64(1000),
		Deaths:    model.Int64(50),
		Recovered: model.Int64(200),
	})
	c.ReplaceCountries([]model.CountryRecord{
		{Country: "China", Cases: 80824, TodayCases: 11, Deaths: 3189, TodayDeaths: 13, Recovered: 65573, Critical: 3610},
	})
	return c
}

func TestAll(t *testing.T) {
	h := newTestServer(populated())

	for _, path := range []string{"/all/", "/all"} {
		rec := get(t, h, path)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		require.JSONEq(t, `{"cases":1000,"deaths":50,"recovered":200}`, rec.Body.String())
	}
}

func TestAll_BeforeFirstRefresh(t *testing.T) {
	rec := get(t, newTestServer(cache.New()), "/all/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{}`, rec.Body.String())
}

func TestCountries(t *testing.T) {
	rec := get(t, newTestServer(populated()), "/countries/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[{
		"country": "China",
		"cases": 80824,
		"todayCases": 11,
		"deaths": 3189,
		"todayDeaths": 13,
		"recovered": 65573,
		"critical": 3610
	}]`, rec.Body.String())

	rec = get(t, newTestServer(cache.New()), "/countries")
	require.JSONEq(t, `[]`, rec.Body.String())
}

func TestSummary(t *testing.T) {
	rec := get(t, newTestServer(populated()), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	require.Contains(t, body, "1000 cases are reported")
	require.Contains(t, body, "50 have died from it")
	require.Contains(t, body, "200 have recovered from it")

	rec = get(t, newTestServer(cache.New()), "/")
	require.Contains(t, rec.Body.String(), "unknown cases are reported")
}

func TestInvite(t *testing.T) {
	rec := get(t, newTestServer(cache.New()), "/invite/")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, inviteURL, rec.Header().Get("Location"))
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestServer(cache.New()), "/healthz")
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "ok", resp["status"])
	require.NotContains(t, resp, "last_update")

	rec = get(t, newTestServer(populated()), "/healthz")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Contains(t, resp, "last_update")
}

func TestCORS(t *testing.T) {
	h := newTestServer(cache.New(), "https://stats.test")

	req := httptest.NewRequest(http.MethodOptions, "/all/", nil)
	req.Header.Set("Origin", "https://evil.test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://stats.test", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/all/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = get(t, newTestServer(cache.New(), "*"), "/all/")
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNotFound(t *testing.T) {
	rec := get(t, newTestServer(cache.New()), "/nope")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
