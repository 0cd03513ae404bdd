package matching

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/denisok6893-rgb/car-budget-matching/internal/domain"
)

const noRecommendationMessage = "No cars found to make a recommendation."

type Engine struct {
	bands  Bands
	logger *zap.Logger
}

func NewEngine(b Bands, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{bands: b, logger: logger}
}

// Query runs Filter, Match and Recommend for one preference and returns the
// displayed bands together with the recommendation.
func (e *Engine) Query(listings []domain.Listing, pref domain.Preference) (domain.QueryResult, error) {
	if err := pref.Validate(); err != nil {
		return domain.QueryResult{}, err
	}

	working, err := Filter(listings, pref.Condition, pref.Owner)
	if err != nil {
		return domain.QueryResult{}, err
	}

	m := Match(working, pref.Budget, e.bands)
	rec := Recommend(m.Primary)

	res := domain.QueryResult{
		Preference:     pref,
		StretchBudget:  m.StretchBudget,
		Primary:        head(m.Primary, e.bands.PrimaryDisplay),
		PrimaryTotal:   len(m.Primary),
		Stretch:        head(m.Stretch, e.bands.StretchDisplay),
		StretchTotal:   len(m.Stretch),
		Recommendation: rec,
		Message:        recommendationMessage(rec),
	}

	e.logger.Debug("query evaluated",
		zap.Float64("budget", pref.Budget),
		zap.String("condition", string(pref.Condition)),
		zap.String("owner", string(pref.Owner)),
		zap.Int("dataset", len(listings)),
		zap.Int("working_set", len(working)),
		zap.Int("primary", res.PrimaryTotal),
		zap.Int("stretch", res.StretchTotal),
		zap.Bool("recommended", rec.Best != nil),
	)
	return res, nil
}

// PrimaryBand returns the full primary band for a preference; used by insights.
func (e *Engine) PrimaryBand(listings []domain.Listing, pref domain.Preference) ([]domain.Listing, error) {
	if err := pref.Validate(); err != nil {
		return nil, err
	}
	working, err := Filter(listings, pref.Condition, pref.Owner)
	if err != nil {
		return nil, err
	}
	return Match(working, pref.Budget, e.bands).Primary, nil
}

func recommendationMessage(rec domain.Recommendation) string {
	if rec.Best == nil {
		return noRecommendationMessage
	}
	l := rec.Best.Listing
	return fmt.Sprintf("Top Recommendation: %s (%d) at ₹%s", l.Name, l.Year, formatAmount(l.Price))
}

// formatAmount renders whole currency units with comma grouping, e.g. 780000 -> "780,000".
func formatAmount(v float64) string {
	return humanize.Comma(int64(math.Round(v)))
}
