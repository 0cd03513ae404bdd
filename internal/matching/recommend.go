package matching

import (
	"math"
	"sort"

	"github.com/denisok6893-rgb/car-budget-matching/internal/domain"
)

// Overall scores on the same multiple of this grid are ties.
const scoreEpsilon = 1e-9

// Recommend scores the primary band on inverse age and inverse mileage,
// each min-max scaled against the candidates themselves, and picks the best.
// Ties go to the lower price, then the lower age, then input order.
func Recommend(primary []domain.Listing) domain.Recommendation {
	type candidate struct {
		l   domain.Listing
		age float64
		km  float64
		pos int
	}

	cands := make([]candidate, 0, len(primary))
	for i, l := range primary {
		if l.Age == nil || l.Kilometer == nil {
			continue
		}
		cands = append(cands, candidate{l: l, age: float64(*l.Age), km: *l.Kilometer, pos: i})
	}
	if len(cands) == 0 {
		return domain.Recommendation{Candidates: []domain.ScoredListing{}}
	}

	ageMin, ageMax := cands[0].age, cands[0].age
	kmMin, kmMax := cands[0].km, cands[0].km
	for _, c := range cands[1:] {
		ageMin, ageMax = math.Min(ageMin, c.age), math.Max(ageMax, c.age)
		kmMin, kmMax = math.Min(kmMin, c.km), math.Max(kmMax, c.km)
	}

	scored := make([]domain.ScoredListing, len(cands))
	for i, c := range cands {
		as := inverseMinMax(c.age, ageMin, ageMax)
		ks := inverseMinMax(c.km, kmMin, kmMax)
		scored[i] = domain.ScoredListing{
			Listing:      c.l,
			AgeScore:     as,
			KmScore:      ks,
			OverallScore: as + ks,
		}
	}

	// scored and cands share indexes until the sort; pos keeps input order for the last tie-break.
	order := make([]int, len(scored))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return better(scored[order[i]], cands[order[i]].pos, scored[order[j]], cands[order[j]].pos)
	})

	ranked := make([]domain.ScoredListing, len(order))
	for i, idx := range order {
		ranked[i] = scored[idx]
	}
	best := ranked[0]
	return domain.Recommendation{Best: &best, Candidates: ranked}
}

// inverseMinMax maps v to [0, 1] with the minimum scoring 1. A zero-spread
// axis scores 1 for everyone.
func inverseMinMax(v, lo, hi float64) float64 {
	if hi == lo {
		return 1
	}
	return 1 - (v-lo)/(hi-lo)
}

// scoreKey snaps an overall score to the epsilon grid so that near-equal
// scores compare as exactly equal and the ordering stays transitive.
func scoreKey(s float64) float64 {
	return math.Round(s / scoreEpsilon)
}

func better(a domain.ScoredListing, aPos int, b domain.ScoredListing, bPos int) bool {
	if ka, kb := scoreKey(a.OverallScore), scoreKey(b.OverallScore); ka != kb {
		return ka > kb
	}
	if a.Listing.Price != b.Listing.Price {
		return a.Listing.Price < b.Listing.Price
	}
	if *a.Listing.Age != *b.Listing.Age {
		return *a.Listing.Age < *b.Listing.Age
	}
	return aPos < bPos
}
