package storage

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/denisok6893-rgb/car-budget-matching/internal/domain"
	"github.com/denisok6893-rgb/car-budget-matching/internal/stats"
)

const (
	colID               = "ID"
	colName             = "Name"
	colMake             = "Make"
	colModel            = "Model"
	colPrice            = "Price"
	colYear             = "Year"
	colKilometer        = "Kilometer"
	colFuelType         = "Fuel Type"
	colTransmission     = "Transmission"
	colLocation         = "Location"
	colColor            = "Color"
	colOwner            = "Owner"
	colSellerType       = "Seller Type"
	colEngine           = "Engine"
	colMaxPower         = "Max Power"
	colDrivetrain       = "Drivetrain"
	colLength           = "Length"
	colWidth            = "Width"
	colHeight           = "Height"
	colSeatingCapacity  = "Seating Capacity"
	colFuelTankCapacity = "Fuel Tank Capacity"
)

// numberRegexp captures the first decimal number in free text such as "1197 cc" or "87 bhp @ 6000 rpm".
var numberRegexp = regexp.MustCompile(`(\d+\.?\d*)`)

// DefaultReferenceYear is the year listing ages are computed against.
const DefaultReferenceYear = 2024

// listingNamespace seeds the deterministic IDs given to rows without an ID column.
var listingNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("car-budget-matching/listing"))

// imputed lists the payload fields whose gaps are filled with the column median.
var imputed = []struct {
	col string
	ptr func(*domain.Listing) *float64
}{
	{colEngine, func(l *domain.Listing) *float64 { return &l.EngineCC }},
	{colMaxPower, func(l *domain.Listing) *float64 { return &l.MaxPowerBHP }},
	{colLength, func(l *domain.Listing) *float64 { return &l.Length }},
	{colWidth, func(l *domain.Listing) *float64 { return &l.Width }},
	{colHeight, func(l *domain.Listing) *float64 { return &l.Height }},
	{colFuelTankCapacity, func(l *domain.Listing) *float64 { return &l.FuelTankCapacity }},
	{colSeatingCapacity, func(l *domain.Listing) *float64 { return &l.SeatingCapacity }},
}

// Cleaner turns raw CSV rows into listings that satisfy the engine's data contract.
type Cleaner struct {
	logger        *zap.Logger
	referenceYear int
}

func NewCleaner(logger *zap.Logger, referenceYear int) *Cleaner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if referenceYear <= 0 {
		referenceYear = DefaultReferenceYear
	}
	return &Cleaner{logger: logger, referenceYear: referenceYear}
}

// Clean converts rows to listings. Rows without a positive price, without an
// owner or with a model year after the reference year are dropped.
func (c *Cleaner) Clean(rows []RawRow) []domain.Listing {
	type pending struct {
		l       domain.Listing
		missing []bool
	}

	kept := make([]pending, 0, len(rows))
	for i, r := range rows {
		price, ok := parseNumber(r.get(colPrice))
		if !ok || price <= 0 {
			c.logger.Warn("dropping row without price", zap.Int("row", i+1))
			continue
		}
		owner := r.get(colOwner)
		if owner == "" {
			c.logger.Warn("dropping row without owner", zap.Int("row", i+1))
			continue
		}

		l := domain.Listing{
			Price:        price,
			Owner:        owner,
			FuelType:     normaliseText(r.get(colFuelType)),
			Transmission: normaliseText(r.get(colTransmission)),
			Location:     normaliseText(r.get(colLocation)),
			Color:        normaliseText(r.get(colColor)),
			SellerType:   normaliseText(r.get(colSellerType)),
			Drivetrain:   normaliseText(r.get(colDrivetrain)),
		}
		l.Name, l.Make, l.Model = c.names(r)

		if year, err := strconv.Atoi(r.get(colYear)); err == nil {
			age := c.referenceYear - year
			if age < 0 {
				c.logger.Warn("dropping row with model year after reference year",
					zap.Int("row", i+1), zap.Int("year", year), zap.Int("reference_year", c.referenceYear))
				continue
			}
			l.Year = year
			l.Age = domain.IntPtr(age)
		}
		if km, ok := parseNumber(r.get(colKilometer)); ok {
			l.Kilometer = domain.FloatPtr(km)
		}

		p := pending{l: l, missing: make([]bool, len(imputed))}
		for j, f := range imputed {
			if v, ok := extractNumber(r.get(f.col)); ok {
				*f.ptr(&p.l) = v
			} else {
				p.missing[j] = true
			}
		}

		p.l.ID = r.get(colID)
		if p.l.ID == "" {
			p.l.ID = rowID(i, p.l)
		}
		kept = append(kept, p)
	}

	for j, f := range imputed {
		var present []float64
		for _, p := range kept {
			if !p.missing[j] {
				present = append(present, *f.ptr(&p.l))
			}
		}
		if len(present) == 0 {
			continue
		}
		sort.Float64s(present)
		med := stats.Median(present)
		for k := range kept {
			if kept[k].missing[j] {
				*f.ptr(&kept[k].l) = med
			}
		}
	}

	out := make([]domain.Listing, len(kept))
	for i, p := range kept {
		out[i] = p.l
	}
	c.logger.Info("cleaned dataset",
		zap.Int("rows", len(rows)), zap.Int("listings", len(out)), zap.Int("dropped", len(rows)-len(out)))
	return out
}

// Normalise applies the ingestion rules to listings that arrive already
// structured (JSON). Text is trimmed, a missing age is derived from the model
// year and a missing ID is synthesized. Listings without a positive price,
// without an owner or with a negative age are dropped.
func (c *Cleaner) Normalise(listings []domain.Listing) []domain.Listing {
	out := make([]domain.Listing, 0, len(listings))
	for i, l := range listings {
		normaliseListing(&l)
		if l.Price <= 0 {
			c.logger.Warn("dropping listing without price", zap.Int("index", i), zap.String("id", l.ID))
			continue
		}
		if l.Owner == "" {
			c.logger.Warn("dropping listing without owner", zap.Int("index", i), zap.String("id", l.ID))
			continue
		}
		if l.Age == nil && l.Year > 0 {
			l.Age = domain.IntPtr(c.referenceYear - l.Year)
		}
		if l.Age != nil && *l.Age < 0 {
			c.logger.Warn("dropping listing with negative age",
				zap.Int("index", i), zap.String("id", l.ID), zap.Int("year", l.Year), zap.Int("age", *l.Age))
			continue
		}
		if l.ID == "" {
			l.ID = rowID(i, l)
		}
		out = append(out, l)
	}
	if dropped := len(listings) - len(out); dropped > 0 {
		c.logger.Info("normalised dataset", zap.Int("listings", len(out)), zap.Int("dropped", dropped))
	}
	return out
}

// names derives name, make and model: a missing name is make + model, a
// missing make is the first word of the name.
func (c *Cleaner) names(r RawRow) (name, mk, model string) {
	name = normaliseText(r.get(colName))
	mk = normaliseText(r.get(colMake))
	model = normaliseText(r.get(colModel))
	if name == "" {
		name = strings.TrimSpace(mk + " " + model)
	}
	if mk == "" && name != "" {
		mk = strings.Fields(name)[0]
	}
	return name, mk, model
}

func rowID(i int, l domain.Listing) string {
	key := fmt.Sprintf("%d|%s|%s|%d|%.2f", i, l.Make, l.Model, l.Year, l.Price)
	return uuid.NewSHA1(listingNamespace, []byte(key)).String()
}

// parseNumber reads a plain number, tolerating thousands separators.
func parseNumber(raw string) (float64, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// extractNumber pulls the first number out of free text like "1498 cc".
func extractNumber(raw string) (float64, bool) {
	match := numberRegexp.FindString(strings.ReplaceAll(raw, ",", ""))
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// normaliseText strips surrounding whitespace and collapses internal runs.
func normaliseText(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// normaliseListing applies the ingestion trimming to listings loaded from JSON or SQLite.
func normaliseListing(l *domain.Listing) {
	l.Name = normaliseText(l.Name)
	l.Make = normaliseText(l.Make)
	l.Model = normaliseText(l.Model)
	l.Owner = strings.TrimSpace(l.Owner)
	l.FuelType = normaliseText(l.FuelType)
}
