package matching

import (
	"encoding/json"
	"fmt"
	"os"
)

// Bands defines the price-band ratios and how many rows of each band are displayed.
type Bands struct {
	PrimaryLow     float64 `json:"primary_low"`
	PrimaryHigh    float64 `json:"primary_high"`
	StretchFactor  float64 `json:"stretch_factor"`
	PrimaryDisplay int     `json:"primary_display"`
	StretchDisplay int     `json:"stretch_display"`
}

// DefaultBands returns ±20% around the budget, a 25% stretch budget, 10 and 5 displayed rows.
func DefaultBands() Bands {
	return Bands{
		PrimaryLow:     0.80,
		PrimaryHigh:    1.20,
		StretchFactor:  1.25,
		PrimaryDisplay: 10,
		StretchDisplay: 5,
	}
}

// LoadBandsFromFile loads bands from JSON file, falling back to defaults on errors.
func LoadBandsFromFile(path string) (Bands, error) {
	b := DefaultBands()
	raw, err := os.ReadFile(path)
	if err != nil {
		return b, fmt.Errorf("read bands file: %w", err)
	}
	if err := json.Unmarshal(raw, &b); err != nil {
		return DefaultBands(), fmt.Errorf("unmarshal bands: %w", err)
	}
	if err := b.validate(); err != nil {
		return DefaultBands(), err
	}
	return b, nil
}

func (b Bands) validate() error {
	if b.PrimaryLow < 0 || b.PrimaryHigh <= b.PrimaryLow {
		return fmt.Errorf("bands: primary range [%v, %v] is empty", b.PrimaryLow, b.PrimaryHigh)
	}
	if b.StretchFactor <= 0 {
		return fmt.Errorf("bands: stretch factor must be > 0, got %v", b.StretchFactor)
	}
	if b.PrimaryDisplay < 0 || b.StretchDisplay < 0 {
		return fmt.Errorf("bands: display counts must not be negative")
	}
	return nil
}
