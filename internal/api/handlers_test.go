// Entertainment Planner - Vibe-Based Venue Route Recommendations
// Copyright 2026 beatovk
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beatovk/entertainment-planner

package api

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/beatovk/entertainment-planner/internal/cache"
	"github.com/beatovk/entertainment-planner/internal/config"
	"github.com/beatovk/entertainment-planner/internal/database"
	"github.com/beatovk/entertainment-planner/internal/models"
	"github.com/beatovk/entertainment-planner/internal/recommend"
	"github.com/beatovk/entertainment-planner/internal/search"
)

// fakeStore implements both the handler Store and the engine's venue
// provider against an in-memory venue map.
type fakeStore struct {
	venues   map[int64]models.Venue
	feedback []models.Feedback
	pingErr  error
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) CountVenues(context.Context) (int, error) { return len(f.venues), nil }

func (f *fakeStore) VenueByID(_ context.Context, id int64) (*models.Venue, error) {
	if v, ok := f.venues[id]; ok {
		return &v, nil
	}
	return nil, database.ErrVenueNotFound
}

func (f *fakeStore) VenuesByIDs(_ context.Context, ids []int64) ([]models.Venue, error) {
	var out []models.Venue
	for _, id := range ids {
		if v, ok := f.venues[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertFeedback(_ context.Context, fb *models.Feedback) (int64, error) {
	f.feedback = append(f.feedback, *fb)
	return int64(len(f.feedback)), nil
}

type fakeSearch struct {
	hits   map[string][]search.Result
	docErr error
}

func (f *fakeSearch) Index(int64, string) error { return nil }

func (f *fakeSearch) Query(query string, k int) ([]search.Result, error) {
	results := f.hits[query]
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (f *fakeSearch) DocCount() (uint64, error) {
	if f.docErr != nil {
		return 0, f.docErr
	}
	return 4, nil
}

const metersPerDegreeLat = 2 * math.Pi * 6371000.0 / 360.0

func testStore() *fakeStore {
	at := func(id int64, northM float64, tags ...string) models.Venue {
		return models.Venue{
			ID: id, Name: "venue", Lat: northM / metersPerDegreeLat,
			District: "d", Rating: 4.5, Tags: tags,
			Vibe: map[string]string{"atmosphere": "classy"},
		}
	}
	return &fakeStore{venues: map[int64]models.Venue{
		1: at(1, 0, "rooftop"),
		2: at(2, 500, "jazz", "wine"),
		3: at(3, 900, "street-food"),
		4: at(4, 1300, "jazz", "wine"),
	}}
}

func newTestRouter(t *testing.T) (http.Handler, *fakeStore) {
	router, store, _ := newTestRouterFull(t)
	return router, store
}

func newTestRouterFull(t *testing.T) (http.Handler, *fakeStore, *fakeSearch) {
	t.Helper()

	store := testStore()
	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 8000, Timeout: 30 * time.Second},
		Cache:  config.CacheConfig{TTLDays: 7, CoordPrecision: 2},
		Search: config.SearchConfig{TopK: 20, EmbeddingDim: 64},
		Route:  config.RouteConfig{MinDistanceM: 300, MaxDistanceM: 1200},
		App:    config.AppConfig{City: "bangkok", DefaultLat: 0, DefaultLng: 0},
	}

	cacheMgr, err := cache.NewManager(t.TempDir(), cfg.Cache.TTLDays, cfg.Cache.CoordPrecision, zerolog.Nop())
	if err != nil {
		t.Fatalf("cache.NewManager: %v", err)
	}
	t.Cleanup(func() {
		if err := cacheMgr.Close(); err != nil {
			t.Errorf("cache Close: %v", err)
		}
	})

	lexical := &fakeSearch{hits: map[string][]search.Result{
		"classy jazz": {{ID: 1, Score: 1.0}, {ID: 2, Score: 0.5}, {ID: 3, Score: 0.33}},
	}}
	vector := &fakeSearch{hits: map[string][]search.Result{
		"classy jazz": {{ID: 2, Score: 0.9}, {ID: 4, Score: 0.8}},
	}}

	engine, err := recommend.NewEngine(recommend.Config{
		TopK:         cfg.Search.TopK,
		MinDistanceM: cfg.Route.MinDistanceM,
		MaxDistanceM: cfg.Route.MaxDistanceM,
	}, lexical, vector, store, cacheMgr, zerolog.Nop())
	if err != nil {
		t.Fatalf("recommend.NewEngine: %v", err)
	}

	return NewRouter(NewHandler(engine, store, lexical, cacheMgr, cfg)), store, lexical
}

func doRequest(t *testing.T, router http.Handler, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("X-Search"); got != "FTS+VEC" {
		t.Errorf("X-Search = %q, want FTS+VEC", got)
	}
	if got := rec.Header().Get("X-Debug"); !strings.HasPrefix(got, "time_ms=") {
		t.Errorf("X-Debug = %q, want time_ms= prefix", got)
	}

	resp := decodeResponse(t, rec)
	if resp.Status != "success" {
		t.Errorf("Status = %q, want success", resp.Status)
	}
	data := resp.Data.(map[string]interface{})
	if data["status"] != "ok" {
		t.Errorf("status field = %v, want ok", data["status"])
	}
	if data["db"] != "ok" || data["fts"] != "ok" {
		t.Errorf("probes = db:%v fts:%v, want ok/ok", data["db"], data["fts"])
	}
	if data["venues"] != float64(4) {
		t.Errorf("venues = %v, want 4", data["venues"])
	}
	if data["fts_docs"] != float64(4) {
		t.Errorf("fts_docs = %v, want 4", data["fts_docs"])
	}
}

func TestHealthDatabaseDown(t *testing.T) {
	router, store := newTestRouter(t)
	store.pingErr = context.DeadlineExceeded

	// Component failures degrade the status fields but keep the endpoint
	// itself answering 200.
	rec := doRequest(t, router, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	data := decodeResponse(t, rec).Data.(map[string]interface{})
	if data["status"] != "degraded" {
		t.Errorf("status field = %v, want degraded", data["status"])
	}
	if data["db"] != "error" {
		t.Errorf("db = %v, want error", data["db"])
	}
	if data["fts"] != "ok" {
		t.Errorf("fts = %v, want ok", data["fts"])
	}
}

func TestHealthSearchIndexDown(t *testing.T) {
	router, _, lexical := newTestRouterFull(t)
	lexical.docErr = context.DeadlineExceeded

	rec := doRequest(t, router, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	data := decodeResponse(t, rec).Data.(map[string]interface{})
	if data["status"] != "degraded" || data["fts"] != "error" {
		t.Errorf("probes = status:%v fts:%v, want degraded/error", data["status"], data["fts"])
	}
	if data["db"] != "ok" {
		t.Errorf("db = %v, want ok", data["db"])
	}
}

func TestRecommendEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	target := "/api/places/recommend?vibe=classy&intents=jazz&day=friday"

	rec := doRequest(t, router, http.MethodGet, target, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	if got := rec.Header().Get("X-Search"); got != "FTS+VEC" {
		t.Errorf("X-Search = %q, want FTS+VEC", got)
	}
	if got := rec.Header().Get("X-Cache-Status"); got != "MISS" {
		t.Errorf("X-Cache-Status = %q, want MISS", got)
	}
	if got := rec.Header().Get("X-Cache-Store"); got != "compute" {
		t.Errorf("X-Cache-Store = %q, want compute", got)
	}
	if got := rec.Header().Get("X-Debug"); !strings.HasPrefix(got, "time_ms=") {
		t.Errorf("X-Debug = %q, want time_ms= prefix", got)
	}

	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]interface{})
	routes := data["routes"].([]interface{})
	if len(routes) != 1 {
		t.Fatalf("routes len = %d, want 1", len(routes))
	}
	steps := routes[0].(map[string]interface{})["steps"].([]interface{})
	if len(steps) != 3 {
		t.Errorf("steps = %v, want 3 stops", steps)
	}

	// Identical query again: served from the memory tier.
	rec = doRequest(t, router, http.MethodGet, target, "")
	if got := rec.Header().Get("X-Cache-Status"); got != "HIT" {
		t.Errorf("second X-Cache-Status = %q, want HIT", got)
	}
	if got := rec.Header().Get("X-Cache-Store"); got != "memory" {
		t.Errorf("second X-Cache-Store = %q, want memory", got)
	}
}

func TestRecommendRequiresVibe(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/places/recommend?intents=jazz", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if resp := decodeResponse(t, rec); resp.Error == nil || resp.Error.Code != ErrCodeValidationFailed {
		t.Errorf("error = %+v, want %s", resp.Error, ErrCodeValidationFailed)
	}
}

func TestRecommendInvalidCoordinates(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/places/recommend?vibe=classy&lat=abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unparsable lat: status = %d, want 400", rec.Code)
	}

	rec = doRequest(t, router, http.MethodGet, "/api/places/recommend?vibe=classy&lat=123.0", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("out-of-range lat: status = %d, want 400", rec.Code)
	}
}

func TestRecommendNoViableRoute(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/places/recommend?vibe=boring&day=friday", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if resp := decodeResponse(t, rec); resp.Error == nil || resp.Error.Code != ErrCodeNoRoute {
		t.Errorf("error = %+v, want %s", resp.Error, ErrCodeNoRoute)
	}
}

func TestVenueByID(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/places/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	data := decodeResponse(t, rec).Data.(map[string]interface{})
	if data["id"] != float64(1) {
		t.Errorf("id = %v, want 1", data["id"])
	}

	rec = doRequest(t, router, http.MethodGet, "/api/places/999", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing venue: status = %d, want 404", rec.Code)
	}

	rec = doRequest(t, router, http.MethodGet, "/api/places/abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("non-numeric id: status = %d, want 400", rec.Code)
	}
}

func TestFeedback(t *testing.T) {
	router, store := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/feedback",
		`{"route":[1,2,3],"useful":true,"note":"great evening"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	data := decodeResponse(t, rec).Data.(map[string]interface{})
	if data["id"] != float64(1) {
		t.Errorf("id = %v, want 1", data["id"])
	}
	if len(store.feedback) != 1 || !store.feedback[0].Useful {
		t.Errorf("stored feedback = %+v", store.feedback)
	}

	rec = doRequest(t, router, http.MethodPost, "/api/feedback", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid JSON: status = %d, want 400", rec.Code)
	}

	rec = doRequest(t, router, http.MethodPost, "/api/feedback", `{"route":[],"useful":true}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty route: status = %d, want 400", rec.Code)
	}
}

func TestWarmCache(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/cache/warm?combos=classy:jazz&day=friday", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	data := decodeResponse(t, rec).Data.(map[string]interface{})
	if data["warmed"] != float64(1) {
		t.Errorf("warmed = %v, want 1", data["warmed"])
	}
	if data["city"] != "bangkok" {
		t.Errorf("city = %v, want configured default bangkok", data["city"])
	}

	// The warmed entry now serves the equivalent recommend query.
	rec = doRequest(t, router, http.MethodGet, "/api/places/recommend?vibe=classy&intents=jazz&day=friday", "")
	if got := rec.Header().Get("X-Cache-Status"); got != "HIT" {
		t.Errorf("X-Cache-Status after warm = %q, want HIT", got)
	}

	rec = doRequest(t, router, http.MethodGet, "/api/cache/warm", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing combos: status = %d, want 400", rec.Code)
	}
}

func TestWarmCacheHonorsCityParameter(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/cache/warm?combos=classy:jazz&day=friday&city=chiangmai", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	data := decodeResponse(t, rec).Data.(map[string]interface{})
	if data["city"] != "chiangmai" {
		t.Errorf("city = %v, want chiangmai", data["city"])
	}
	if data["warmed"] != float64(1) {
		t.Errorf("warmed = %v, want 1", data["warmed"])
	}

	// Entries warmed for another city must not serve the configured city's
	// recommend queries.
	rec = doRequest(t, router, http.MethodGet, "/api/places/recommend?vibe=classy&intents=jazz&day=friday", "")
	if got := rec.Header().Get("X-Cache-Status"); got != "MISS" {
		t.Errorf("X-Cache-Status = %q, want MISS for a different city's entry", got)
	}
}

func TestWarmCacheDefaultDayMatchesRecommend(t *testing.T) {
	router, _ := newTestRouter(t)

	// Both endpoints default day to today's date, so a warm without an
	// explicit day serves a recommend without one.
	rec := doRequest(t, router, http.MethodGet, "/api/cache/warm?combos=classy:jazz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodGet, "/api/places/recommend?vibe=classy&intents=jazz", "")
	if got := rec.Header().Get("X-Cache-Status"); got != "HIT" {
		t.Errorf("X-Cache-Status = %q, want HIT from default-day warm", got)
	}
}

func TestCORSHeaders(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
	if got := rec.Header().Get("Access-Control-Expose-Headers"); !strings.Contains(got, "X-Cache-Status") {
		t.Errorf("Access-Control-Expose-Headers = %q, want X-Cache-Status exposed", got)
	}

	// Preflight for the recommend endpoint.
	req = httptest.NewRequest(http.MethodOptions, "/api/places/recommend", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("preflight Access-Control-Allow-Origin = %q, want *", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, http.MethodGet) {
		t.Errorf("Access-Control-Allow-Methods = %q, want GET allowed", got)
	}
}

func TestRecommendRateLimit(t *testing.T) {
	router, _ := newTestRouter(t)
	target := "/api/places/recommend?vibe=classy&intents=jazz&day=friday"

	// httptest requests share a remote address, so the per-IP limiter sees
	// one client. The request after the limit must be rejected.
	var last *httptest.ResponseRecorder
	for i := 0; i < recommendRateLimit+1; i++ {
		last = doRequest(t, router, http.MethodGet, target, "")
	}
	if last.Code != http.StatusTooManyRequests {
		t.Errorf("request %d: status = %d, want 429", recommendRateLimit+1, last.Code)
	}

	// Other endpoints are not limited.
	rec := doRequest(t, router, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Errorf("health during rate limiting: status = %d, want 200", rec.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/health", "")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "upstream-id")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if got := rr.Header().Get("X-Request-ID"); got != "upstream-id" {
		t.Errorf("X-Request-ID = %q, want upstream-id preserved", got)
	}
}
