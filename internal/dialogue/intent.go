package dialogue

import "strings"

// intentKeywords maps each intent to its trigger keywords. Matching is
// case-insensitive substring containment, so "hours" matches "hour".
var intentKeywords = map[Intent][]string{
	IntentFindOutlet:     {"outlet", "branch", "store", "location", "where"},
	IntentGetHours:       {"open", "close", "hour", "time", "operational", "outlet"},
	IntentGetAddress:     {"address", "located", "where", "directions"},
	IntentCalculate:      {"calculate", "calc", "compute", "math", "add", "subtract", "multiply", "divide"},
	IntentProductInquiry: {"product", "menu", "item", "drink", "coffee", "tea", "price"},
	IntentComplaint:      {"problem", "issue", "complaint", "unhappy", "wrong", "broken"},
	IntentGreeting:       {"hello", "hi", "hey", "greetings", "good morning"},
}

const (
	maxKeywordConfidence  = 0.95
	keywordConfidenceStep = 0.25
	unknownConfidence     = 0.3
)

// ClassifyIntent scores each intent by keyword hits and picks the highest.
// Ties resolve by declaration order; zero hits yield Unknown.
func ClassifyIntent(message string) (Intent, float64) {
	lower := strings.ToLower(message)

	best := IntentUnknown
	bestCount := 0
	for _, intent := range intentOrder {
		count := 0
		for _, kw := range intentKeywords[intent] {
			if strings.Contains(lower, kw) {
				count++
			}
		}
		if count > bestCount {
			best = intent
			bestCount = count
		}
	}
	if bestCount == 0 {
		return IntentUnknown, unknownConfidence
	}

	confidence := float64(bestCount) * keywordConfidenceStep
	if confidence > maxKeywordConfidence {
		confidence = maxKeywordConfidence
	}
	return best, confidence
}
