package products

import (
	"strings"
	"testing"
)

func TestSearchGenericQueryReturnsWholeCatalog(t *testing.T) {
	c := NewCatalog()

	results := c.Search("what products do you have all show list", 5)
	if len(results) != 5 {
		t.Fatalf("len(results) = %d, want 5", len(results))
	}
	for _, p := range results {
		if p.RelevanceScore != 0.5 {
			t.Fatalf("RelevanceScore = %v, want 0.5 for generic query", p.RelevanceScore)
		}
	}
}

func TestSearchShortQueryIsGeneric(t *testing.T) {
	c := NewCatalog()

	results := c.Search("anything here", 3)
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3 (topK cap)", len(results))
	}
}

func TestSearchRanksByKeywordOverlap(t *testing.T) {
	c := NewCatalog()

	results := c.Search("insulated stainless steel thermos flask", 5)
	if len(results) == 0 {
		t.Fatalf("expected results for thermos query")
	}
	if results[0].ID != "prod_003" {
		t.Fatalf("top result = %s, want prod_003", results[0].ID)
	}
	if results[0].RelevanceScore <= 0 || results[0].RelevanceScore > 0.99 {
		t.Fatalf("RelevanceScore = %v, want in (0, 0.99]", results[0].RelevanceScore)
	}
}

func TestSearchDeterministicOrderOnTies(t *testing.T) {
	c := NewCatalog()

	first := c.Search("insulated coffee glass bamboo ceramic", 5)
	second := c.Search("insulated coffee glass bamboo ceramic", 5)
	if len(first) != len(second) {
		t.Fatalf("result lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("result order differs at %d: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
}

func TestSummaryFullCatalog(t *testing.T) {
	c := NewCatalog()
	results := c.Search("products", 5)

	summary := c.Summary(results, "products")
	if !strings.Contains(summary, "5 drinkware products") {
		t.Fatalf("summary missing product count: %q", summary)
	}
}

func TestSummaryBestMatchCallout(t *testing.T) {
	c := NewCatalog()
	results := []Product{{
		Name:           "Stainless Steel Thermos",
		Description:    "Double-wall stainless steel thermos",
		Price:          44.99,
		RelevanceScore: 0.8,
	}}

	summary := c.Summary(results, "thermos")
	if !strings.Contains(summary, "Best match: Stainless Steel Thermos") {
		t.Fatalf("summary missing best-match callout: %q", summary)
	}
}

func TestSummaryEmptyResults(t *testing.T) {
	c := NewCatalog()
	summary := c.Summary(nil, "unobtainium")
	if !strings.Contains(summary, "drinkware products available") {
		t.Fatalf("fallback summary unexpected: %q", summary)
	}
}
