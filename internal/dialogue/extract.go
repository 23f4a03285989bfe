package dialogue

import (
	"strings"

	"github.com/wan-ilhami/ChatBot-AI-backend/internal/calculator"
)

// knownLocations is the gazetteer checked in order; the first hit wins.
var knownLocations = []struct {
	match string
	value string
}{
	{"petaling jaya", "Petaling Jaya"},
	{"pj", "Petaling Jaya"},
	{"klang", "Klang"},
	{"shah alam", "Shah Alam"},
}

// outletAliases maps user phrasings to canonical outlet names.
var outletAliases = []struct {
	match string
	value string
}{
	{"ss 2", "SS 2"},
	{"klang main", "Klang Main"},
	{"shah alam", "Shah Alam"},
}

// ExtractEntities pulls slot values out of a message. Extraction is
// deterministic and idempotent; intent-specific slots are only filled for
// their intent.
func ExtractEntities(message string, intent Intent) SlotUpdate {
	lower := strings.ToLower(message)
	var u SlotUpdate

	for _, loc := range knownLocations {
		if strings.Contains(lower, loc.match) {
			u.Location = loc.value
			break
		}
	}
	for _, alias := range outletAliases {
		if strings.Contains(lower, alias.match) {
			u.OutletName = alias.value
			break
		}
	}

	switch intent {
	case IntentCalculate:
		if expr, ok := calculator.Extract(message); ok {
			u.CalculationExpression = expr
		}
	case IntentProductInquiry:
		u.ProductSearchTerm = message
	}
	return u
}
