package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrInvalidBudget      = errors.New("budget must be a positive number")
	ErrInvalidCondition   = errors.New("condition must be one of: new, used")
	ErrInvalidOwnerChoice = errors.New("owner must be one of: All, First, Second")

	// ErrDataContract reports a listing that breaks the provider contract
	// (missing owner, negative age).
	ErrDataContract = errors.New("data contract violation")
)

type Condition string

const (
	ConditionNew  Condition = "new"
	ConditionUsed Condition = "used"
)

type OwnerChoice string

const (
	OwnerAll    OwnerChoice = "All"
	OwnerFirst  OwnerChoice = "First"
	OwnerSecond OwnerChoice = "Second"
)

// Preference is the validated user query.
type Preference struct {
	Budget    float64     `json:"budget"`
	Condition Condition   `json:"condition"`
	Owner     OwnerChoice `json:"owner"`
}

// ParseCondition accepts "new" or "used" case-insensitively. Empty means used.
func ParseCondition(raw string) (Condition, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "used":
		return ConditionUsed, nil
	case "new":
		return ConditionNew, nil
	}
	return "", fmt.Errorf("%w: got %q", ErrInvalidCondition, raw)
}

// ParseOwnerChoice accepts All, First or Second case-insensitively. Empty means All.
func ParseOwnerChoice(raw string) (OwnerChoice, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "all":
		return OwnerAll, nil
	case "first":
		return OwnerFirst, nil
	case "second":
		return OwnerSecond, nil
	}
	return "", fmt.Errorf("%w: got %q", ErrInvalidOwnerChoice, raw)
}

func ParseBudget(raw string) (float64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidBudget)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidBudget, raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidBudget, raw)
	}
	return v, nil
}

// ParsePreference validates all three inputs and returns the first error found.
func ParsePreference(budget, condition, owner string) (Preference, error) {
	b, err := ParseBudget(budget)
	if err != nil {
		return Preference{}, err
	}
	c, err := ParseCondition(condition)
	if err != nil {
		return Preference{}, err
	}
	o, err := ParseOwnerChoice(owner)
	if err != nil {
		return Preference{}, err
	}
	return Preference{Budget: b, Condition: c, Owner: o}, nil
}

// Validate checks a Preference built without ParsePreference.
func (p Preference) Validate() error {
	if math.IsNaN(p.Budget) || math.IsInf(p.Budget, 0) || p.Budget <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidBudget, p.Budget)
	}
	if p.Condition != ConditionNew && p.Condition != ConditionUsed {
		return fmt.Errorf("%w: got %q", ErrInvalidCondition, p.Condition)
	}
	switch p.Owner {
	case OwnerAll, OwnerFirst, OwnerSecond:
		return nil
	}
	return fmt.Errorf("%w: got %q", ErrInvalidOwnerChoice, p.Owner)
}

// IsValidationError reports whether err came from preference validation.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidBudget) ||
		errors.Is(err, ErrInvalidCondition) ||
		errors.Is(err, ErrInvalidOwnerChoice)
}
