// Package dialogue implements the rule-based conversation engine: intent
// classification, slot filling, planning and turn orchestration.
package dialogue

import "time"

// Intent is the classified purpose of a user message.
type Intent string

const (
	IntentFindOutlet     Intent = "find_outlet"
	IntentGetHours       Intent = "get_hours"
	IntentGetAddress     Intent = "get_address"
	IntentCalculate      Intent = "calculate"
	IntentProductInquiry Intent = "product_inquiry"
	IntentComplaint      Intent = "complaint"
	IntentGreeting       Intent = "greeting"
	IntentUnknown        Intent = "unknown"
)

// intentOrder fixes the tie-break between intents with equal keyword scores.
var intentOrder = []Intent{
	IntentFindOutlet,
	IntentGetHours,
	IntentGetAddress,
	IntentCalculate,
	IntentProductInquiry,
	IntentComplaint,
	IntentGreeting,
}

// State is the coarse lifecycle of a session.
type State string

const (
	StateIdle           State = "idle"
	StateGatheringInfo  State = "gathering_info"
	StateProcessingTool State = "processing_tool"
	StateCompleted      State = "completed"
	StateError          State = "error"
)

// Slot names used across extraction, planning and clarification.
const (
	SlotLocation              = "location"
	SlotOutletName            = "outlet_name"
	SlotQueryType             = "query_type"
	SlotCalculationExpression = "calculation_expression"
	SlotProductSearchTerm     = "product_search_term"
)

// Slots is the accumulated slot state of a session. Values persist across
// turns until an explicit reset.
type Slots struct {
	Location              string    `json:"location,omitempty"`
	OutletName            string    `json:"outlet_name,omitempty"`
	QueryType             string    `json:"query_type,omitempty"`
	CalculationExpression string    `json:"calculation_expression,omitempty"`
	ProductSearchTerm     string    `json:"product_search_term,omitempty"`
	UpdatedAt             time.Time `json:"updated_at,omitempty"`
}

// Get returns the value of the named slot, empty when unset or unknown.
func (s Slots) Get(name string) string {
	switch name {
	case SlotLocation:
		return s.Location
	case SlotOutletName:
		return s.OutletName
	case SlotQueryType:
		return s.QueryType
	case SlotCalculationExpression:
		return s.CalculationExpression
	case SlotProductSearchTerm:
		return s.ProductSearchTerm
	}
	return ""
}

// SlotUpdate is a partial slot write. Empty fields leave the session value
// untouched.
type SlotUpdate struct {
	Location              string
	OutletName            string
	QueryType             string
	CalculationExpression string
	ProductSearchTerm     string
}

// IsZero reports whether the update carries nothing.
func (u SlotUpdate) IsZero() bool {
	return u == SlotUpdate{}
}

// Turn is one completed user/bot exchange.
type Turn struct {
	UserMessage string    `json:"user_message"`
	BotResponse string    `json:"bot_response"`
	Intent      Intent    `json:"intent"`
	Action      string    `json:"action"`
	Slots       Slots     `json:"slots"`
	Timestamp   time.Time `json:"timestamp"`
}

// Action is the planner's decision for a turn.
type Action struct {
	Intent        Intent   `json:"intent"`
	RequiredSlots []string `json:"required_slots"`
	FilledSlots   []string `json:"filled_slots"`
	MissingSlots  []string `json:"missing_slots"`
	NextQuestion  string   `json:"next_question,omitempty"`
	ToolToCall    string   `json:"tool_to_call,omitempty"`
	Confidence    float64  `json:"confidence"`
}

// NeedsClarification reports whether the plan is blocked on missing slots.
func (a Action) NeedsClarification() bool {
	return len(a.MissingSlots) > 0
}
