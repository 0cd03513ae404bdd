package storage

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/denisok6893-rgb/car-budget-matching/internal/domain"
)

// LoadListingsFromFile reads listings from a JSON array file and passes them
// through the cleaner's ingestion rules.
func LoadListingsFromFile(path string, c *Cleaner) ([]domain.Listing, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read listings file: %w", err)
	}

	var listings []domain.Listing
	if err := json.Unmarshal(b, &listings); err != nil {
		return nil, fmt.Errorf("unmarshal listings: %w", err)
	}
	return c.Normalise(listings), nil
}
