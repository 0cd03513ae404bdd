package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denisok6893-rgb/car-budget-matching/internal/domain"
)

func car(id string, price float64, age int, km float64, owner string) domain.Listing {
	return domain.Listing{
		ID:        id,
		Name:      "Car " + id,
		Year:      2024 - age,
		Age:       domain.IntPtr(age),
		Kilometer: domain.FloatPtr(km),
		Price:     price,
		FuelType:  "Petrol",
		Owner:     owner,
	}
}

func ids(ls []domain.Listing) []string {
	out := make([]string, 0, len(ls))
	for _, l := range ls {
		out = append(out, l.ID)
	}
	return out
}

func sampleFleet() []domain.Listing {
	return []domain.Listing{
		car("a", 500000, 0, 10, "First"),
		car("b", 600000, 1, 5000, "First"),
		car("c", 650000, 1, 3000, "Second"),
		car("d", 700000, 2, 40000, "First"),
		car("e", 720000, 5, 90000, " Second "),
		car("f", 730000, 7, 120000, "Third"),
	}
}

func TestFilter_NewRequiresFirstOwner(t *testing.T) {
	got, err := Filter(sampleFleet(), domain.ConditionNew, domain.OwnerAll)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(got))
}

func TestFilter_NewExcludesSecondOwnerAtAgeOne(t *testing.T) {
	in := []domain.Listing{car("x", 700000, 1, 100, "Second")}
	got, err := Filter(in, domain.ConditionNew, domain.OwnerAll)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFilter_Used(t *testing.T) {
	got, err := Filter(sampleFleet(), domain.ConditionUsed, domain.OwnerAll)
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "e", "f"}, ids(got))
}

func TestFilter_OwnerChoiceTrimsWhitespace(t *testing.T) {
	got, err := Filter(sampleFleet(), domain.ConditionUsed, domain.OwnerSecond)
	require.NoError(t, err)
	assert.Equal(t, []string{"e"}, ids(got))

	got, err = Filter(sampleFleet(), domain.ConditionNew, domain.OwnerSecond)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFilter_SubsetAndIdempotent(t *testing.T) {
	fleet := sampleFleet()
	for _, c := range []domain.Condition{domain.ConditionNew, domain.ConditionUsed} {
		for _, o := range []domain.OwnerChoice{domain.OwnerAll, domain.OwnerFirst, domain.OwnerSecond} {
			once, err := Filter(fleet, c, o)
			require.NoError(t, err)
			assert.Subset(t, fleet, once)

			twice, err := Filter(once, c, o)
			require.NoError(t, err)
			assert.Equal(t, once, twice, "condition=%s owner=%s", c, o)
		}
	}
}

func TestFilter_MissingAgeMatchesNeitherCondition(t *testing.T) {
	l := car("n", 500000, 0, 10, "First")
	l.Age = nil
	for _, c := range []domain.Condition{domain.ConditionNew, domain.ConditionUsed} {
		got, err := Filter([]domain.Listing{l}, c, domain.OwnerAll)
		require.NoError(t, err)
		assert.Empty(t, got)
	}
}

func TestFilter_DataContractViolations(t *testing.T) {
	noOwner := car("o", 1, 3, 1, "  ")
	_, err := Filter([]domain.Listing{noOwner}, domain.ConditionUsed, domain.OwnerAll)
	assert.ErrorIs(t, err, domain.ErrDataContract)

	negative := car("neg", 1, 3, 1, "First")
	negative.Age = domain.IntPtr(-2)
	_, err = Filter([]domain.Listing{negative}, domain.ConditionUsed, domain.OwnerAll)
	assert.ErrorIs(t, err, domain.ErrDataContract)
}

func TestFilter_EmptyInput(t *testing.T) {
	got, err := Filter(nil, domain.ConditionUsed, domain.OwnerAll)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
