package outlets

import (
	"reflect"
	"testing"
)

func TestParseQueryLocationBranches(t *testing.T) {
	tests := []struct {
		text string
		want Filter
	}{
		{"outlets in petaling jaya", Filter{CityIn: []string{"Petaling Jaya"}, LocationLike: "SS 2", Limit: 10}},
		{"is there one in PJ", Filter{CityIn: []string{"Petaling Jaya"}, LocationLike: "SS 2", Limit: 10}},
		{"klang branch", Filter{CityIn: []string{"Klang"}, Limit: 10}},
		{"shah alam outlet", Filter{CityIn: []string{"Shah Alam"}, Limit: 10}},
		{"near bukit bintang", Filter{LocationLike: "Pavilion", Limit: 10}},
		{"ioi mall please", Filter{LocationLike: "IOI", CityIn: []string{"Putrajaya"}, Limit: 10}},
		{"kuala lumpur stores", Filter{CityIn: []string{"Kuala Lumpur"}, Limit: 10}},
		{"any outlet at all", Filter{Limit: 10}},
	}
	for _, tt := range tests {
		got := ParseQuery(tt.text)
		if !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("ParseQuery(%q) = %+v, want %+v", tt.text, got, tt.want)
		}
	}
}

func TestParseQueryBranchOrder(t *testing.T) {
	// "klang" contains "kl"; the earlier branch must win.
	got := ParseQuery("outlets in klang")
	if !reflect.DeepEqual(got.CityIn, []string{"Klang"}) {
		t.Fatalf("CityIn = %v, want [Klang]", got.CityIn)
	}
}

func TestParseQueryServicePredicatesStack(t *testing.T) {
	got := ParseQuery("klang outlet with dine-in and drive-through")
	want := Filter{
		CityIn:       []string{"Klang"},
		ServicesLike: []string{"Dine-in", "Drive-through"},
		Limit:        10,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseQuery() = %+v, want %+v", got, want)
	}
}

func TestFilterIsZero(t *testing.T) {
	if !(Filter{Limit: 10}).IsZero() {
		t.Fatalf("Filter{Limit: 10}.IsZero() = false, want true")
	}
	if (Filter{CityIn: []string{"Klang"}}).IsZero() {
		t.Fatalf("city filter IsZero() = true, want false")
	}
}
