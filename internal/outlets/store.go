// Package outlets is the read-only outlet directory. Free text is mapped to a
// constrained Filter before it ever reaches a store; user input is never
// interpolated into SQL.
package outlets

import (
	"context"
	"strings"
)

// Outlet is one row of the fixed directory table.
type Outlet struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Location   string `json:"location"`
	City       string `json:"city"`
	HoursOpen  string `json:"hours_open"`
	HoursClose string `json:"hours_close"`
	Address    string `json:"address"`
	Services   string `json:"services"`
}

// Store answers constrained read-only queries over the directory.
type Store interface {
	Search(ctx context.Context, f Filter) ([]Outlet, error)
	Close() error
}

// NewStore creates a postgres-backed store when configured, otherwise the
// seeded in-memory table.
func NewStore(ctx context.Context, databaseURL string) (Store, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return NewInMemoryStore(), nil
	}
	return NewPostgresStore(ctx, databaseURL)
}

// seedOutlets is the canonical directory content, shared by both stores.
func seedOutlets() []Outlet {
	return []Outlet{
		{ID: 1, Name: "SS 2, Petaling Jaya", Location: "SS 2", City: "Petaling Jaya",
			HoursOpen: "09:00", HoursClose: "22:00",
			Address: "123 Jalan SS 2/45, 58000 Kuala Lumpur", Services: "Dine-in, Takeaway, WiFi"},
		{ID: 2, Name: "Klang Main Branch", Location: "Klang Main", City: "Klang",
			HoursOpen: "08:00", HoursClose: "23:00",
			Address: "456 Jalan Sultan Sulaiman, 41000 Klang", Services: "Dine-in, Takeaway, Drive-through"},
		{ID: 3, Name: "Shah Alam Outlet", Location: "Shah Alam", City: "Shah Alam",
			HoursOpen: "10:00", HoursClose: "21:00",
			Address: "789 Persiaran Sultan Salahuddin, 40000 Shah Alam", Services: "Dine-in, Takeaway"},
		{ID: 4, Name: "Pavilion KL", Location: "Pavilion", City: "Kuala Lumpur",
			HoursOpen: "10:00", HoursClose: "22:00",
			Address: "168 Jalan Bukit Bintang, 55100 Kuala Lumpur", Services: "Dine-in, Takeaway, WiFi"},
		{ID: 5, Name: "IOI Mall", Location: "IOI Mall", City: "Putrajaya",
			HoursOpen: "11:00", HoursClose: "21:00",
			Address: "Lot 1-A-1A & 1-A-1B, Level 1, IOI Mall, 62000 Putrajaya", Services: "Dine-in, Takeaway"},
	}
}
