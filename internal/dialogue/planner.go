package dialogue

// slotRequirements lists the slots an intent needs before its tool can run.
var slotRequirements = map[Intent][]string{
	IntentFindOutlet:     {SlotLocation},
	IntentGetHours:       {SlotLocation, SlotOutletName},
	IntentGetAddress:     {SlotLocation, SlotOutletName},
	IntentCalculate:      {SlotCalculationExpression},
	IntentProductInquiry: {SlotProductSearchTerm},
	IntentComplaint:      {},
	IntentGreeting:       {},
	IntentUnknown:        {},
}

// clarificationQuestions maps a missing slot to the follow-up question asked
// for it. The first missing slot in requirement order is asked first.
var clarificationQuestions = map[string]string{
	SlotLocation:              "Which location are you interested in? (e.g., Petaling Jaya, Klang, Shah Alam)",
	SlotOutletName:            "Which outlet would you like to know about?",
	SlotCalculationExpression: "What calculation would you like me to perform?",
	SlotProductSearchTerm:     "What product are you looking for?",
}

const fallbackClarification = "Could you provide more details?"

// intentTools names the tool dispatched once an intent's slots are complete.
var intentTools = map[Intent]string{
	IntentFindOutlet:     "search_outlets",
	IntentGetHours:       "get_outlet_hours",
	IntentGetAddress:     "get_address",
	IntentCalculate:      "calculator",
	IntentProductInquiry: "search_products",
}

const (
	planConfidenceMissing  = 0.5
	planConfidenceComplete = 0.8
)

// Plan decides the next action for an intent given the session's slot state.
func Plan(intent Intent, slots Slots) Action {
	required := slotRequirements[intent]

	a := Action{
		Intent:        intent,
		RequiredSlots: required,
	}
	for _, name := range required {
		if slots.Get(name) != "" {
			a.FilledSlots = append(a.FilledSlots, name)
		} else {
			a.MissingSlots = append(a.MissingSlots, name)
		}
	}

	if len(a.MissingSlots) > 0 {
		first := a.MissingSlots[0]
		q, ok := clarificationQuestions[first]
		if !ok {
			q = fallbackClarification
		}
		a.NextQuestion = q
		a.Confidence = planConfidenceMissing
		return a
	}

	a.ToolToCall = intentTools[intent]
	a.Confidence = planConfidenceComplete
	return a
}
