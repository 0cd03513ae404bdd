package httpapi

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
	"go.uber.org/zap"

	"github.com/denisok6893-rgb/car-budget-matching/internal/cache"
	"github.com/denisok6893-rgb/car-budget-matching/internal/domain"
	"github.com/denisok6893-rgb/car-budget-matching/internal/matching"
	"github.com/denisok6893-rgb/car-budget-matching/internal/storage"
)

func fixtures() []domain.Listing {
	return []domain.Listing{
		{ID: "c1", Name: "Honda City", Make: "Honda", Year: 2022, Age: domain.IntPtr(2), Kilometer: domain.FloatPtr(40000), Price: 750000, FuelType: "Petrol", Owner: "First"},
		{ID: "c2", Name: "Hyundai Verna", Make: "Hyundai", Year: 2021, Age: domain.IntPtr(3), Kilometer: domain.FloatPtr(20000), Price: 780000, FuelType: "Diesel", Owner: "Second"},
		{ID: "c3", Name: "Kia Seltos", Make: "Kia", Year: 2020, Age: domain.IntPtr(4), Kilometer: domain.FloatPtr(35000), Price: 1100000, FuelType: "Diesel", Owner: "First"},
		{ID: "c4", Name: "Tata Nexon", Make: "Tata", Year: 2024, Age: domain.IntPtr(0), Kilometer: domain.FloatPtr(500), Price: 800000, FuelType: "Petrol", Owner: "First"},
	}
}

func newTestServer(t *testing.T, listings []domain.Listing) *Server {
	t.Helper()
	engine := matching.NewEngine(matching.DefaultBands(), zap.NewNop())
	return NewServer(engine, listings, zap.NewNop())
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, fixtures())
	rr := do(t, srv.Routes(), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "ok", got["status"])
	assert.EqualValues(t, 4, got["listings"])
}

func TestMatch_PostUsedAll(t *testing.T) {
	srv := newTestServer(t, fixtures())
	rr := do(t, srv.Routes(), http.MethodPost, "/match", `{"budget":"800,000","condition":"used","owner":"All"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var res domain.QueryResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))

	assert.Equal(t, 800000.0, res.Preference.Budget)
	assert.Equal(t, 1000000.0, res.StretchBudget)
	require.Len(t, res.Primary, 2)
	assert.Equal(t, "c1", res.Primary[0].ID)
	assert.Equal(t, "c2", res.Primary[1].ID)
	require.Len(t, res.Stretch, 1)
	assert.Equal(t, "c3", res.Stretch[0].ID)

	require.NotNil(t, res.Recommendation.Best)
	assert.Equal(t, "c1", res.Recommendation.Best.Listing.ID)
	assert.Equal(t, "Top Recommendation: Honda City (2022) at ₹750,000", res.Message)
}

func TestMatch_NumericBudgetAndGet(t *testing.T) {
	srv := newTestServer(t, fixtures())
	h := srv.Routes()

	post := do(t, h, http.MethodPost, "/match", `{"budget":800000,"condition":"new"}`)
	require.Equal(t, http.StatusOK, post.Code, post.Body.String())
	get := do(t, h, http.MethodGet, "/match?budget=800000&condition=new&owner=All", "")
	require.Equal(t, http.StatusOK, get.Code, get.Body.String())

	var a, b domain.QueryResult
	require.NoError(t, json.Unmarshal(post.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(get.Body.Bytes(), &b))
	assert.Equal(t, a, b)

	require.Len(t, a.Primary, 1)
	assert.Equal(t, "c4", a.Primary[0].ID)
	assert.Equal(t, domain.OwnerAll, a.Preference.Owner)
}

func TestMatch_NoRecommendation(t *testing.T) {
	srv := newTestServer(t, fixtures())
	rr := do(t, srv.Routes(), http.MethodGet, "/match?budget=100000", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var res domain.QueryResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Empty(t, res.Primary)
	assert.Nil(t, res.Recommendation.Best)
	assert.Equal(t, "No cars found to make a recommendation.", res.Message)
}

func TestMatch_InvalidPreference(t *testing.T) {
	srv := newTestServer(t, fixtures())
	h := srv.Routes()

	cases := []struct {
		name   string
		method string
		target string
		body   string
		code   int
		errKey string
	}{
		{"non numeric budget", http.MethodPost, "/match", `{"budget":"abc"}`, http.StatusBadRequest, "invalid_preference"},
		{"zero budget", http.MethodGet, "/match?budget=0", "", http.StatusBadRequest, "invalid_preference"},
		{"bad condition", http.MethodGet, "/match?budget=5000&condition=certified", "", http.StatusBadRequest, "invalid_preference"},
		{"bad owner", http.MethodPost, "/match", `{"budget":5000,"owner":"Third"}`, http.StatusBadRequest, "invalid_preference"},
		{"budget of wrong type", http.MethodPost, "/match", `{"budget":true}`, http.StatusBadRequest, "invalid_json"},
		{"broken json", http.MethodPost, "/match", `{`, http.StatusBadRequest, "invalid_json"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := do(t, h, tc.method, tc.target, tc.body)
			assert.Equal(t, tc.code, rr.Code)

			var got map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
			assert.Equal(t, tc.errKey, got["error"])
		})
	}

	rr := do(t, h, http.MethodDelete, "/match", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestMatch_DataContractViolation(t *testing.T) {
	listings := fixtures()
	listings[1].Owner = ""
	srv := newTestServer(t, listings)

	rr := do(t, srv.Routes(), http.MethodGet, "/match?budget=800000", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"data_contract_violation"}`, rr.Body.String())
}

func TestMatch_UsesCache(t *testing.T) {
	srv := newTestServer(t, fixtures())
	c, err := cache.New[domain.QueryResult]("query_results", 100, time.Minute)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	srv.Cache = c

	pref, err := domain.ParsePreference("800000", "used", "All")
	require.NoError(t, err)

	first, err := srv.query(pref)
	require.NoError(t, err)
	c.Wait()

	// A cached result is served even after the snapshot changes.
	srv.Listings = nil
	second, err := srv.query(pref)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	rr := do(t, srv.Routes(), http.MethodGet, "/health", "")
	var health map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &health))
	assert.Contains(t, health, "cache")
}

func TestInsights(t *testing.T) {
	srv := newTestServer(t, fixtures())
	h := srv.Routes()

	rr := do(t, h, http.MethodPost, "/insights", `{"budget":800000}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var got InsightsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Total)
	assert.Empty(t, got.Message)
	assert.Equal(t, 765000.0, got.Numeric["price"].Mean)
	assert.Len(t, got.Categorical["make"], 2)

	rr = do(t, h, http.MethodGet, "/insights?budget=100", "")
	require.Equal(t, http.StatusOK, rr.Code)
	got = InsightsResponse{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, 0, got.Total)
	assert.Equal(t, noInsightsMessage, got.Message)
}

func TestListings_InMemory(t *testing.T) {
	srv := newTestServer(t, fixtures())
	h := srv.Routes()

	rr := do(t, h, http.MethodGet, "/listings?limit=2&offset=1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var page ListingsListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, 2, page.Limit)
	assert.Equal(t, 1, page.Offset)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "c2", page.Items[0].ID)

	rr = do(t, h, http.MethodGet, "/listings?fuel_type=petrol&sort=price_desc", "")
	require.Equal(t, http.StatusOK, rr.Code)
	page = ListingsListResponse{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "c4", page.Items[0].ID)

	rr = do(t, h, http.MethodGet, "/listings?sort=name", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListingByID(t *testing.T) {
	srv := newTestServer(t, fixtures())
	h := srv.Routes()

	rr := do(t, h, http.MethodGet, "/listings/c3", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var l domain.Listing
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &l))
	assert.Equal(t, "Kia Seltos", l.Name)

	rr = do(t, h, http.MethodGet, "/listings/nope", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, http.MethodGet, "/listings/", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListings_SQLiteRepo(t *testing.T) {
	ctx := context.Background()
	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "cars.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.EnsureSchema(ctx))
	require.NoError(t, store.ReplaceListings(ctx, fixtures()))

	srv := newTestServer(t, fixtures())
	srv.Repo = &SQLiteListingsRepo{Store: store}
	h := srv.Routes()

	rr := do(t, h, http.MethodGet, "/listings?owner=First&min_price=760000&sort=price_asc", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var page ListingsListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "c4", page.Items[0].ID)
	assert.Equal(t, "c3", page.Items[1].ID)

	rr = do(t, h, http.MethodGet, "/listings/c2", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, fixtures())
	h := srv.Routes()
	do(t, h, http.MethodGet, "/match?budget=800000", "")

	rr := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "car_matching_queries_total")
}
