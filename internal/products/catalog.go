// Package products holds the static drinkware catalog and its
// keyword-overlap ranking.
package products

import (
	"fmt"
	"sort"
	"strings"
)

type Product struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	Description    string  `json:"description"`
	Price          float64 `json:"price"`
	RelevanceScore float64 `json:"relevance_score"`
}

type entry struct {
	product  Product
	keywords map[string]struct{}
}

// Catalog is a fixed in-process product knowledge base.
type Catalog struct {
	entries []entry
}

// Queries made only of these words (or of two words or fewer) are treated as
// "show me everything".
var genericQueryWords = map[string]struct{}{
	"product": {}, "products": {}, "all": {}, "what": {}, "show": {},
	"list": {}, "have": {}, "sell": {}, "offer": {},
}

func NewCatalog() *Catalog {
	return &Catalog{entries: []entry{
		newEntry("prod_001", "Glass Coffee Cup", "Drinkware",
			"Premium borosilicate glass coffee cup, heat-resistant, 350ml capacity", 24.99,
			"glass", "cup", "coffee", "drinkware", "borosilicate", "350ml", "transparent"),
		newEntry("prod_002", "Ceramic Travel Mug", "Drinkware",
			"Insulated ceramic travel mug with leak-proof lid, 400ml", 34.99,
			"ceramic", "travel", "mug", "insulated", "leak-proof", "400ml", "portable"),
		newEntry("prod_003", "Stainless Steel Thermos", "Drinkware",
			"Double-wall stainless steel thermos, keeps drinks hot/cold for 12 hours", 44.99,
			"stainless", "steel", "thermos", "insulated", "hot", "cold", "flask"),
		newEntry("prod_004", "Eco-Friendly Bamboo Cup", "Drinkware",
			"Sustainable bamboo drinkware, biodegradable, 300ml", 19.99,
			"bamboo", "eco", "sustainable", "green", "biodegradable", "300ml", "environment"),
		newEntry("prod_005", "French Press Coffee Maker", "Drinkware",
			"Classic French press for brewing, 1L capacity, stainless steel", 39.99,
			"french", "press", "coffee", "maker", "brewing", "1l", "brewer"),
	}}
}

func newEntry(id, name, category, description string, price float64, keywords ...string) entry {
	kw := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		kw[k] = struct{}{}
	}
	return entry{
		product: Product{
			ID:          id,
			Name:        name,
			Category:    category,
			Description: description,
			Price:       price,
		},
		keywords: kw,
	}
}

// Search ranks products against the query by keyword-set overlap plus
// half-weighted description word hits.
func (c *Catalog) Search(query string, topK int) []Product {
	if topK <= 0 {
		topK = 5
	}
	queryWords := fields(strings.ToLower(query))

	if isGenericQuery(queryWords) {
		out := make([]Product, 0, topK)
		for _, e := range c.entries {
			if len(out) >= topK {
				break
			}
			p := e.product
			p.RelevanceScore = 0.5
			out = append(out, p)
		}
		return out
	}

	type scored struct {
		product Product
		score   float64
		order   int
	}
	var results []scored
	for i, e := range c.entries {
		matches := 0.0
		for w := range queryWords {
			if _, ok := e.keywords[w]; ok {
				matches++
			}
		}
		descLower := strings.ToLower(e.product.Description)
		for w := range queryWords {
			if strings.Contains(descLower, w) {
				matches += 0.5
			}
		}
		if matches <= 0 {
			continue
		}
		score := matches / float64(len(e.keywords))
		if score > 0.99 {
			score = 0.99
		}
		results = append(results, scored{product: e.product, score: score, order: i})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].order < results[j].order
	})

	if len(results) > topK {
		results = results[:topK]
	}
	out := make([]Product, 0, len(results))
	for _, r := range results {
		p := r.product
		p.RelevanceScore = r.score
		out = append(out, p)
	}
	return out
}

// Summary renders a human-readable answer for a result set.
func (c *Catalog) Summary(results []Product, query string) string {
	if len(results) == 0 {
		return "We have drinkware products available. Try asking about: glass cups, travel mugs, thermoses, bamboo cups, or french press."
	}

	if len(results) >= 4 {
		var b strings.Builder
		fmt.Fprintf(&b, "We have %d drinkware products:\n", len(results))
		for _, p := range results {
			fmt.Fprintf(&b, "\n- %s - $%.2f - %s", p.Name, p.Price, p.Description)
		}
		return b.String()
	}

	names := make([]string, 0, len(results))
	for _, p := range results {
		names = append(names, fmt.Sprintf("%s ($%.2f)", p.Name, p.Price))
	}
	summary := fmt.Sprintf("Found %d product(s): %s.", len(results), strings.Join(names, ", "))
	if results[0].RelevanceScore > 0.7 {
		summary += fmt.Sprintf("\n\nBest match: %s - %s", results[0].Name, results[0].Description)
	}
	return summary
}

func fields(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		out[w] = struct{}{}
	}
	return out
}

func isGenericQuery(words map[string]struct{}) bool {
	if len(words) <= 2 {
		return true
	}
	for w := range words {
		if _, ok := genericQueryWords[w]; !ok {
			return false
		}
	}
	return true
}
