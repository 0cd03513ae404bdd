package httpapi

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/denisok6893-rgb/car-budget-matching/internal/domain"
	"github.com/denisok6893-rgb/car-budget-matching/internal/storage"
)

type ListParams struct {
	Limit    int
	Offset   int
	FuelType string
	Owner    string
	MinPrice string
	MaxPrice string
	Sort     string
}

// ListingsRepo serves the read-only listing browse endpoints.
type ListingsRepo interface {
	List(ctx context.Context, p ListParams) ([]domain.Listing, int, error)
	Get(ctx context.Context, id string) (domain.Listing, bool, error)
}

// MemoryListingsRepo pages over the in-memory snapshot.
type MemoryListingsRepo struct {
	Listings []domain.Listing
}

func (r *MemoryListingsRepo) List(_ context.Context, p ListParams) ([]domain.Listing, int, error) {
	minPrice, _ := strconv.ParseFloat(p.MinPrice, 64)
	maxPrice, _ := strconv.ParseFloat(p.MaxPrice, 64)

	matched := make([]domain.Listing, 0, len(r.Listings))
	for _, l := range r.Listings {
		if p.FuelType != "" && !strings.EqualFold(l.FuelType, strings.TrimSpace(p.FuelType)) {
			continue
		}
		if p.Owner != "" && l.Owner != strings.TrimSpace(p.Owner) {
			continue
		}
		if minPrice > 0 && l.Price < minPrice {
			continue
		}
		if maxPrice > 0 && l.Price > maxPrice {
			continue
		}
		matched = append(matched, l)
	}

	switch p.Sort {
	case "price_asc":
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Price < matched[j].Price })
	case "price_desc":
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Price > matched[j].Price })
	}

	total := len(matched)
	offset := min(p.Offset, total)
	end := min(offset+p.Limit, total)
	return matched[offset:end], total, nil
}

func (r *MemoryListingsRepo) Get(_ context.Context, id string) (domain.Listing, bool, error) {
	for _, l := range r.Listings {
		if l.ID == id {
			return l, true, nil
		}
	}
	return domain.Listing{}, false, nil
}

type SQLiteListingsRepo struct {
	Store *storage.SQLiteStore
}

func (r *SQLiteListingsRepo) List(ctx context.Context, p ListParams) ([]domain.Listing, int, error) {
	minPrice, _ := strconv.ParseFloat(p.MinPrice, 64)
	maxPrice, _ := strconv.ParseFloat(p.MaxPrice, 64)

	return r.Store.ListListingsFiltered(ctx, storage.ListFilter{
		Limit:    p.Limit,
		Offset:   p.Offset,
		FuelType: p.FuelType,
		Owner:    p.Owner,
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		Sort:     p.Sort,
	})
}

func (r *SQLiteListingsRepo) Get(ctx context.Context, id string) (domain.Listing, bool, error) {
	return r.Store.GetListing(ctx, id)
}
