package outlets

import "strings"

// Filter is the only query shape a Store accepts. Every field is a
// constrained predicate; there is no free-text passthrough.
type Filter struct {
	CityIn       []string
	LocationLike string
	ServicesLike []string
	Limit        int
}

// IsZero reports whether the filter constrains nothing.
func (f Filter) IsZero() bool {
	return len(f.CityIn) == 0 && f.LocationLike == "" && len(f.ServicesLike) == 0
}

// ParseQuery maps free text onto a Filter using a fixed keyword chain. The
// location branches are mutually exclusive and checked in order; service
// predicates stack on top.
func ParseQuery(text string) Filter {
	q := strings.ToLower(text)
	f := Filter{Limit: 10}

	switch {
	case containsAny(q, "petaling", "pj", "ss 2", "ss2"):
		f.CityIn = []string{"Petaling Jaya"}
		f.LocationLike = "SS 2"
	case strings.Contains(q, "klang"):
		f.CityIn = []string{"Klang"}
	case strings.Contains(q, "shah alam"):
		f.CityIn = []string{"Shah Alam"}
	case containsAny(q, "pavilion", "bukit bintang"):
		f.LocationLike = "Pavilion"
	case containsAny(q, "ioi", "putrajaya"):
		f.LocationLike = "IOI"
		f.CityIn = []string{"Putrajaya"}
	case containsAny(q, "kuala lumpur", "kl"):
		f.CityIn = []string{"Kuala Lumpur"}
	}

	if containsAny(q, "dine", "seating") {
		f.ServicesLike = append(f.ServicesLike, "Dine-in")
	}
	if containsAny(q, "takeaway", "takeout") {
		f.ServicesLike = append(f.ServicesLike, "Takeaway")
	}
	if strings.Contains(q, "drive") {
		f.ServicesLike = append(f.ServicesLike, "Drive-through")
	}
	return f
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
