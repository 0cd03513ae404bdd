package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/denisok6893-rgb/car-budget-matching/internal/cache"
	"github.com/denisok6893-rgb/car-budget-matching/internal/domain"
	"github.com/denisok6893-rgb/car-budget-matching/internal/matching"
)

const noInsightsMessage = "No car data found in the selected budget to generate insights."

type Server struct {
	Engine   *matching.Engine
	Listings []domain.Listing
	Repo     ListingsRepo
	Cache    *cache.Cache[domain.QueryResult]
	Logger   *zap.Logger
}

// NewServer serves the listings snapshot; Repo defaults to paging over it in memory.
func NewServer(engine *matching.Engine, listings []domain.Listing, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		Engine:   engine,
		Listings: listings,
		Repo:     &MemoryListingsRepo{Listings: listings},
		Logger:   logger,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/match", s.handleMatch)
	mux.HandleFunc("/insights", s.handleInsights)
	mux.HandleFunc("/listings", s.handleListingsList)
	mux.HandleFunc("/listings/", s.handleListingGetByID)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok", "listings": len(s.Listings)}
	if s.Cache != nil {
		resp["cache"] = s.Cache.Stats()
	}
	writeJSON(w, http.StatusOK, resp)
}

// budgetInput accepts the budget as a JSON string ("800,000") or number.
type budgetInput string

func (b *budgetInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*b = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*b = budgetInput(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("budget must be a string or a number")
	}
	*b = budgetInput(n.String())
	return nil
}

type MatchRequest struct {
	Budget    budgetInput `json:"budget"`
	Condition string      `json:"condition"`
	Owner     string      `json:"owner"`
}

type InsightsResponse struct {
	domain.Insights
	Message string `json:"message,omitempty"`
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	pref, ok := s.readPreference(w, r)
	if !ok {
		return
	}

	start := time.Now()
	res, err := s.query(pref)
	queryDuration.WithLabelValues("match").Observe(time.Since(start).Seconds())
	if err != nil {
		s.writeQueryError(w, "match", err)
		return
	}

	queriesTotal.WithLabelValues("match", "ok").Inc()
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	pref, ok := s.readPreference(w, r)
	if !ok {
		return
	}

	start := time.Now()
	primary, err := s.Engine.PrimaryBand(s.Listings, pref)
	queryDuration.WithLabelValues("insights").Observe(time.Since(start).Seconds())
	if err != nil {
		s.writeQueryError(w, "insights", err)
		return
	}

	resp := InsightsResponse{Insights: matching.Insights(primary)}
	if resp.Total == 0 {
		resp.Message = noInsightsMessage
	}
	queriesTotal.WithLabelValues("insights", "ok").Inc()
	writeJSON(w, http.StatusOK, resp)
}

// query consults the result cache before running the pipeline.
func (s *Server) query(pref domain.Preference) (domain.QueryResult, error) {
	if s.Cache == nil {
		return s.Engine.Query(s.Listings, pref)
	}

	key := cacheKey(pref)
	if res, ok := s.Cache.Get(key); ok {
		cacheLookups.WithLabelValues("hit").Inc()
		return res, nil
	}
	cacheLookups.WithLabelValues("miss").Inc()

	res, err := s.Engine.Query(s.Listings, pref)
	if err != nil {
		return domain.QueryResult{}, err
	}
	s.Cache.Set(key, res)
	return res, nil
}

func cacheKey(p domain.Preference) string {
	return string(p.Condition) + "|" + string(p.Owner) + "|" + strconv.FormatFloat(p.Budget, 'f', -1, 64)
}

// readPreference takes the preference from a JSON body on POST or from the
// query string on GET, and writes the error response itself on failure.
func (s *Server) readPreference(w http.ResponseWriter, r *http.Request) (domain.Preference, bool) {
	var budget, condition, owner string

	switch r.Method {
	case http.MethodPost:
		var req MatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_json", "message": err.Error()})
			return domain.Preference{}, false
		}
		budget, condition, owner = string(req.Budget), req.Condition, req.Owner
	case http.MethodGet:
		q := r.URL.Query()
		budget, condition, owner = q.Get("budget"), q.Get("condition"), q.Get("owner")
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return domain.Preference{}, false
	}

	pref, err := domain.ParsePreference(budget, condition, owner)
	if err != nil {
		queriesTotal.WithLabelValues(strings.TrimPrefix(r.URL.Path, "/"), "invalid").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_preference", "message": err.Error()})
		return domain.Preference{}, false
	}
	return pref, true
}

func (s *Server) writeQueryError(w http.ResponseWriter, endpoint string, err error) {
	switch {
	case domain.IsValidationError(err):
		queriesTotal.WithLabelValues(endpoint, "invalid").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_preference", "message": err.Error()})
	case errors.Is(err, domain.ErrDataContract):
		queriesTotal.WithLabelValues(endpoint, "contract_violation").Inc()
		s.Logger.Error("dataset breaks the listing contract", zap.String("endpoint", endpoint), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "data_contract_violation"})
	default:
		queriesTotal.WithLabelValues(endpoint, "error").Inc()
		s.Logger.Error("query failed", zap.String("endpoint", endpoint), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
	}
}

// ---- Listings API (read-only) ----

type ListingSummary struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Year      int      `json:"year"`
	Age       *int     `json:"age,omitempty"`
	Kilometer *float64 `json:"kilometer,omitempty"`
	Price     float64  `json:"price"`
	FuelType  string   `json:"fuel_type"`
	Owner     string   `json:"owner"`
	Location  string   `json:"location,omitempty"`
}

type ListingsListResponse struct {
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
	Total  int              `json:"total"`
	Items  []ListingSummary `json:"items"`
}

func (s *Server) handleListingsList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit, offset := parseLimitOffset(r, 20, 0)
	q := r.URL.Query()

	sortBy := q.Get("sort")
	switch sortBy {
	case "", "price_asc", "price_desc":
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_sort"})
		return
	}

	items, total, err := s.Repo.List(r.Context(), ListParams{
		Limit:    limit,
		Offset:   offset,
		FuelType: q.Get("fuel_type"),
		Owner:    q.Get("owner"),
		MinPrice: q.Get("min_price"),
		MaxPrice: q.Get("max_price"),
		Sort:     sortBy,
	})
	if err != nil {
		s.Logger.Error("list listings", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
		return
	}

	summaries := make([]ListingSummary, 0, len(items))
	for _, l := range items {
		summaries = append(summaries, ListingSummary{
			ID:        l.ID,
			Name:      l.Name,
			Year:      l.Year,
			Age:       l.Age,
			Kilometer: l.Kilometer,
			Price:     l.Price,
			FuelType:  l.FuelType,
			Owner:     l.Owner,
			Location:  l.Location,
		})
	}

	writeJSON(w, http.StatusOK, ListingsListResponse{
		Limit:  limit,
		Offset: offset,
		Total:  total,
		Items:  summaries,
	})
}

func (s *Server) handleListingGetByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/listings/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing_id"})
		return
	}

	l, ok, err := s.Repo.Get(r.Context(), id)
	if err != nil {
		s.Logger.Error("get listing", zap.String("id", id), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found"})
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func parseLimitOffset(r *http.Request, defLimit, defOffset int) (int, int) {
	q := r.URL.Query()

	limit := defLimit
	if v := q.Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit <= 0 {
		limit = defLimit
	}
	// safety cap
	if limit > 200 {
		limit = 200
	}

	offset := defOffset
	if v := q.Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = defOffset
	}

	return limit, offset
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
