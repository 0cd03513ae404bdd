package matching

import (
	"math"
	"sort"

	"github.com/denisok6893-rgb/car-budget-matching/internal/domain"
)

// StretchBudget inflates the budget by the stretch factor and truncates to whole units.
func (b Bands) StretchBudget(budget float64) float64 {
	return math.Floor(budget * b.StretchFactor)
}

// Match splits the working set into the primary band [low×budget, high×budget]
// and the stretch band (high×budget, high×stretchBudget]. The stretch band's
// upper edge is derived from the truncated stretch budget, so depending on the
// budget the two bands may leave a gap; that arithmetic is kept as is.
func Match(working []domain.Listing, budget float64, bands Bands) domain.BudgetMatch {
	lo := budget * bands.PrimaryLow
	hi := budget * bands.PrimaryHigh
	stretchBudget := bands.StretchBudget(budget)
	stretchHi := stretchBudget * bands.PrimaryHigh

	m := domain.BudgetMatch{
		Budget:        budget,
		StretchBudget: stretchBudget,
		Primary:       []domain.Listing{},
		Stretch:       []domain.Listing{},
	}
	for _, l := range working {
		switch {
		case l.Price >= lo && l.Price <= hi:
			m.Primary = append(m.Primary, l)
		case l.Price > hi && l.Price <= stretchHi:
			m.Stretch = append(m.Stretch, l)
		}
	}

	sortByPrice(m.Primary)
	sortByPrice(m.Stretch)
	return m
}

func sortByPrice(ls []domain.Listing) {
	sort.SliceStable(ls, func(i, j int) bool { return ls[i].Price < ls[j].Price })
}

// head returns at most n leading listings as a new slice.
func head(ls []domain.Listing, n int) []domain.Listing {
	if n < 0 || n > len(ls) {
		n = len(ls)
	}
	out := make([]domain.Listing, n)
	copy(out, ls[:n])
	return out
}
