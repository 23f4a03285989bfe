package outlets

import (
	"context"
	"strings"
)

// InMemoryStore serves the seeded directory without external dependencies.
// It is the default when no database is configured.
type InMemoryStore struct {
	rows []Outlet
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{rows: seedOutlets()}
}

func (s *InMemoryStore) Search(ctx context.Context, f Filter) ([]Outlet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}

	var out []Outlet
	for _, o := range s.rows {
		if !matchLocation(o, f) {
			continue
		}
		if !matchServices(o, f.ServicesLike) {
			continue
		}
		out = append(out, o)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *InMemoryStore) Close() error { return nil }

// matchLocation treats the city and location predicates as alternatives: an
// outlet passes when either side of the filter names it.
func matchLocation(o Outlet, f Filter) bool {
	if len(f.CityIn) == 0 && f.LocationLike == "" {
		return true
	}
	for _, city := range f.CityIn {
		if strings.EqualFold(o.City, city) {
			return true
		}
	}
	if f.LocationLike != "" &&
		strings.Contains(strings.ToLower(o.Location), strings.ToLower(f.LocationLike)) {
		return true
	}
	return false
}

func matchServices(o Outlet, wanted []string) bool {
	services := strings.ToLower(o.Services)
	for _, w := range wanted {
		if !strings.Contains(services, strings.ToLower(w)) {
			return false
		}
	}
	return true
}
