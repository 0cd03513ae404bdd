package matching

import (
	"sort"

	"github.com/denisok6893-rgb/car-budget-matching/internal/domain"
	"github.com/denisok6893-rgb/car-budget-matching/internal/stats"
)

const topValues = 10

var categoricalFields = map[string]func(domain.Listing) string{
	"make":         func(l domain.Listing) string { return l.Make },
	"fuel_type":    func(l domain.Listing) string { return l.FuelType },
	"owner":        func(l domain.Listing) string { return l.Owner },
	"transmission": func(l domain.Listing) string { return l.Transmission },
	"seller_type":  func(l domain.Listing) string { return l.SellerType },
	"drivetrain":   func(l domain.Listing) string { return l.Drivetrain },
	"color":        func(l domain.Listing) string { return l.Color },
}

// Numeric extractors report false when the listing has no value for the field.
var numericFields = map[string]func(domain.Listing) (float64, bool){
	"price": func(l domain.Listing) (float64, bool) { return l.Price, true },
	"kilometer": func(l domain.Listing) (float64, bool) {
		if l.Kilometer == nil {
			return 0, false
		}
		return *l.Kilometer, true
	},
	"age": func(l domain.Listing) (float64, bool) {
		if l.Age == nil {
			return 0, false
		}
		return float64(*l.Age), true
	},
	"engine_cc":          positive(func(l domain.Listing) float64 { return l.EngineCC }),
	"max_power_bhp":      positive(func(l domain.Listing) float64 { return l.MaxPowerBHP }),
	"seating_capacity":   positive(func(l domain.Listing) float64 { return l.SeatingCapacity }),
	"length":             positive(func(l domain.Listing) float64 { return l.Length }),
	"width":              positive(func(l domain.Listing) float64 { return l.Width }),
	"height":             positive(func(l domain.Listing) float64 { return l.Height }),
	"fuel_tank_capacity": positive(func(l domain.Listing) float64 { return l.FuelTankCapacity }),
}

func positive(get func(domain.Listing) float64) func(domain.Listing) (float64, bool) {
	return func(l domain.Listing) (float64, bool) {
		v := get(l)
		return v, v > 0
	}
}

// Insights computes value counts and numeric summaries over the given listings.
func Insights(listings []domain.Listing) domain.Insights {
	in := domain.Insights{
		Total:       len(listings),
		Categorical: make(map[string][]domain.ValueCount),
		Numeric:     make(map[string]domain.NumericSummary),
	}
	if len(listings) == 0 {
		return in
	}

	for name, get := range categoricalFields {
		if counts := valueCounts(listings, get); len(counts) > 0 {
			in.Categorical[name] = counts
		}
	}
	for name, get := range numericFields {
		var vals []float64
		for _, l := range listings {
			if v, ok := get(l); ok {
				vals = append(vals, v)
			}
		}
		if len(vals) > 0 {
			in.Numeric[name] = summarize(vals)
		}
	}
	return in
}

func valueCounts(listings []domain.Listing, get func(domain.Listing) string) []domain.ValueCount {
	counts := make(map[string]int)
	for _, l := range listings {
		if v := get(l); v != "" {
			counts[v]++
		}
	}
	out := make([]domain.ValueCount, 0, len(counts))
	for v, c := range counts {
		out = append(out, domain.ValueCount{Value: v, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if len(out) > topValues {
		out = out[:topValues]
	}
	return out
}

func summarize(vals []float64) domain.NumericSummary {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	return domain.NumericSummary{
		Count:  len(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Mean:   sum / float64(len(sorted)),
		Median: stats.Median(sorted),
	}
}
