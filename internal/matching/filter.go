package matching

import (
	"fmt"
	"strings"

	"github.com/denisok6893-rgb/car-budget-matching/internal/domain"
)

// Filter keeps listings that satisfy the condition and owner predicates.
// The result is a new slice in input order. Listings without an age satisfy
// neither condition.
func Filter(listings []domain.Listing, condition domain.Condition, owner domain.OwnerChoice) ([]domain.Listing, error) {
	out := make([]domain.Listing, 0, len(listings))
	for _, l := range listings {
		if err := checkContract(l); err != nil {
			return nil, err
		}
		if !passesCondition(l, condition) {
			continue
		}
		if owner != domain.OwnerAll && strings.TrimSpace(l.Owner) != string(owner) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func passesCondition(l domain.Listing, condition domain.Condition) bool {
	if l.Age == nil {
		return false
	}
	switch condition {
	case domain.ConditionNew:
		// A new car must also be first-owned.
		return *l.Age <= 1 && strings.TrimSpace(l.Owner) == string(domain.OwnerFirst)
	case domain.ConditionUsed:
		return *l.Age > 1
	}
	return false
}

func checkContract(l domain.Listing) error {
	if strings.TrimSpace(l.Owner) == "" {
		return fmt.Errorf("%w: listing %q has no owner", domain.ErrDataContract, l.ID)
	}
	if l.Age != nil && *l.Age < 0 {
		return fmt.Errorf("%w: listing %q has negative age %d", domain.ErrDataContract, l.ID, *l.Age)
	}
	return nil
}
