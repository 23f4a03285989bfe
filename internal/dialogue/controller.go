package dialogue

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wan-ilhami/ChatBot-AI-backend/internal/calculator"
	"github.com/wan-ilhami/ChatBot-AI-backend/internal/observability"
	"github.com/wan-ilhami/ChatBot-AI-backend/internal/policy"
)

// OutletInfo is the directory row shape the controller consumes. The
// concrete store lives behind OutletSearchFunc so this package has no
// storage dependency.
type OutletInfo struct {
	Name       string
	Location   string
	City       string
	HoursOpen  string
	HoursClose string
	Address    string
	Services   string
}

// OutletSearchFunc resolves free text to matching outlets.
type OutletSearchFunc func(ctx context.Context, query string) ([]OutletInfo, error)

// ProductSearchFunc resolves a product query to a rendered summary and the
// number of hits.
type ProductSearchFunc func(ctx context.Context, query string) (summary string, count int, err error)

// Options configures a Controller.
type Options struct {
	MaxTurns       int
	ContextWindow  int
	Logger         *zap.Logger
	Metrics        *observability.Metrics
	SearchOutlets  OutletSearchFunc
	SearchProducts ProductSearchFunc
}

// Result is the outcome of one processed turn.
type Result struct {
	Response  string    `json:"response"`
	Intent    Intent    `json:"intent"`
	Action    string    `json:"action"`
	ToolsUsed []string  `json:"tools_used"`
	Timestamp time.Time `json:"timestamp"`
}

// Controller orchestrates turns across sessions. Sessions are created on
// first use; turns within one session run strictly one at a time.
type Controller struct {
	mu       sync.RWMutex
	sessions map[string]*session

	opts Options
	log  *zap.Logger
}

type session struct {
	turnMu sync.Mutex
	mem    *Memory
}

func NewController(opts Options) *Controller {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		sessions: make(map[string]*session),
		opts:     opts,
		log:      log,
	}
}

func (c *Controller) getOrCreate(key string) *session {
	c.mu.RLock()
	s, ok := c.sessions[key]
	c.mu.RUnlock()
	if ok {
		return s
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.sessions[key]; ok {
		return s
	}
	s = &session{mem: NewMemory(c.opts.MaxTurns, c.opts.ContextWindow)}
	c.sessions[key] = s
	if c.opts.Metrics != nil {
		c.opts.Metrics.ActiveSessions.Inc()
	}
	return s
}

// ProcessTurn runs the full pipeline for one message: classify, extract,
// plan, then either clarify or dispatch a tool. Handler panics and errors
// put the session in the error state without recording a turn.
func (c *Controller) ProcessTurn(ctx context.Context, sessionKey, message string) (res Result, err error) {
	s := c.getOrCreate(sessionKey)
	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	turnStart := time.Now()
	defer func() {
		if c.opts.Metrics != nil {
			c.opts.Metrics.ObserveTurnLatency(time.Since(turnStart))
			c.opts.Metrics.ObserveTurnStage(observability.StageTurnTotal, time.Since(turnStart))
		}
		if r := recover(); r != nil {
			c.log.Error("turn handler panicked",
				zap.String("session_key", sessionKey), zap.Any("panic", r))
			s.mem.SetState(StateError)
			c.countError()
			res = Result{
				Response:  "I encountered an error: internal failure. Please try again.",
				Intent:    IntentUnknown,
				Action:    "error",
				Timestamp: time.Now().UTC(),
			}
			err = nil
		}
	}()

	c.log.Info("processing turn",
		zap.String("session_key", sessionKey),
		zap.Int("turn", s.mem.TurnCount()+1),
		zap.String("message", policy.RedactPII(message)))

	intent, confidence := c.timedClassify(message)

	// An unclassifiable follow-up inherits the previous turn's intent at
	// reduced confidence, so "what about SS 2?" stays on topic.
	if intent == IntentUnknown {
		if last, ok := s.mem.LastTurn(); ok && last.Intent != IntentUnknown {
			intent = last.Intent
			confidence = 0.5
			c.log.Info("inferred intent from context", zap.String("intent", string(intent)))
		}
	}

	extractStart := time.Now()
	update := ExtractEntities(message, intent)
	c.observeStage(observability.StageExtractEntities, time.Since(extractStart))
	s.mem.UpdateSlots(update)

	planStart := time.Now()
	action := Plan(intent, s.mem.SlotsCopy())
	c.observeStage(observability.StagePlan, time.Since(planStart))

	var (
		response    string
		actionTaken string
		toolsUsed   []string
	)
	if action.NeedsClarification() {
		response = action.NextQuestion
		actionTaken = "ask_clarification"
		if c.opts.Metrics != nil {
			c.opts.Metrics.Clarifications.Inc()
		}
	} else {
		execStart := time.Now()
		response, actionTaken, err = c.execute(ctx, s.mem, intent)
		c.observeStage(observability.StageExecute, time.Since(execStart))
		if err != nil {
			c.log.Error("turn execution failed",
				zap.String("session_key", sessionKey),
				zap.String("intent", string(intent)), zap.Error(err))
			s.mem.SetState(StateError)
			c.countError()
			return Result{
				Response:  fmt.Sprintf("I encountered an error: %v. Please try again.", err),
				Intent:    intent,
				Action:    "error",
				Timestamp: time.Now().UTC(),
			}, nil
		}
		if tool := action.ToolToCall; tool != "" {
			toolsUsed = append(toolsUsed, tool)
		}
	}

	s.mem.SetState(StateCompleted)
	s.mem.AddTurn(message, response, intent, actionTaken)

	if c.opts.Metrics != nil {
		c.opts.Metrics.TurnsProcessed.WithLabelValues(string(intent)).Inc()
		c.opts.Metrics.ObserveIndicator(actionTaken)
	}
	c.log.Debug("turn completed",
		zap.String("session_key", sessionKey),
		zap.String("intent", string(intent)),
		zap.Float64("confidence", confidence),
		zap.String("action", actionTaken))

	return Result{
		Response:  response,
		Intent:    intent,
		Action:    actionTaken,
		ToolsUsed: toolsUsed,
		Timestamp: time.Now().UTC(),
	}, nil
}

func (c *Controller) timedClassify(message string) (Intent, float64) {
	start := time.Now()
	intent, confidence := ClassifyIntent(message)
	c.observeStage(observability.StageClassifyIntent, time.Since(start))
	return intent, confidence
}

func (c *Controller) observeStage(stage string, d time.Duration) {
	if c.opts.Metrics != nil {
		c.opts.Metrics.ObserveTurnStage(stage, d)
	}
}

func (c *Controller) countError() {
	if c.opts.Metrics != nil {
		c.opts.Metrics.TurnErrors.Inc()
	}
}

func (c *Controller) countTool(tool, outcome string) {
	if c.opts.Metrics != nil {
		c.opts.Metrics.ToolCalls.WithLabelValues(tool, outcome).Inc()
	}
}

// execute dispatches the tool for a fully slotted intent. Every handler is
// pure over memory: it reads slots and returns a response without mutating
// session state.
func (c *Controller) execute(ctx context.Context, mem *Memory, intent Intent) (string, string, error) {
	slots := mem.SlotsCopy()

	switch intent {
	case IntentFindOutlet:
		return c.handleFindOutlet(ctx, slots)
	case IntentGetHours:
		return c.handleGetHours(ctx, slots)
	case IntentGetAddress:
		return c.handleGetAddress(ctx, slots)
	case IntentCalculate:
		return c.handleCalculate(slots)
	case IntentProductInquiry:
		return c.handleProductInquiry(ctx, slots)
	case IntentComplaint:
		return "I'm sorry to hear that. Could you tell me more about the issue so we can help?", "complaint_received", nil
	case IntentGreeting:
		return "Hello! How can I help you today? You can ask about our outlets, hours, or products.", "greeting", nil
	}
	return "I'm here to help! Ask me about outlets, hours, calculations, or products.", "unknown_intent", nil
}

func (c *Controller) handleFindOutlet(ctx context.Context, slots Slots) (string, string, error) {
	location := slots.Location
	if location == "" {
		return "", "", fmt.Errorf("find outlet without a location")
	}
	if c.opts.SearchOutlets == nil {
		return fmt.Sprintf("Found outlets in %s! Which one would you like to know more about?", location),
			"search_outlets", nil
	}

	results, err := c.opts.SearchOutlets(ctx, location)
	if err != nil {
		c.countTool("search_outlets", "error")
		return "", "", fmt.Errorf("search outlets: %w", err)
	}
	c.countTool("search_outlets", "ok")
	if len(results) == 0 {
		return fmt.Sprintf("I couldn't find any outlets in %s. We have outlets in Petaling Jaya, Klang, and Shah Alam.", location),
			"search_outlets", nil
	}
	names := make([]string, 0, len(results))
	for _, o := range results {
		names = append(names, o.Name)
	}
	return fmt.Sprintf("Found %d outlet(s) in %s: %s. Which one would you like to know more about?",
		len(results), location, strings.Join(names, ", ")), "search_outlets", nil
}

func (c *Controller) handleGetHours(ctx context.Context, slots Slots) (string, string, error) {
	outlet := slots.OutletName
	if outlet == "" {
		return "", "", fmt.Errorf("get hours without an outlet name")
	}
	if o, ok := c.lookupOutlet(ctx, outlet); ok {
		return fmt.Sprintf("The %s outlet opens at %s - %s daily.", outlet, o.HoursOpen, o.HoursClose),
			"get_outlet_hours", nil
	}
	return fmt.Sprintf("Hours for %s: Please contact us for specific times.", outlet),
		"get_outlet_hours", nil
}

func (c *Controller) handleGetAddress(ctx context.Context, slots Slots) (string, string, error) {
	outlet := slots.OutletName
	if outlet == "" {
		return "", "", fmt.Errorf("get address without an outlet name")
	}
	if o, ok := c.lookupOutlet(ctx, outlet); ok && o.Address != "" {
		return fmt.Sprintf("Address for %s: %s.", outlet, o.Address), "get_address", nil
	}
	return fmt.Sprintf("Address for %s: Please contact us for directions.", outlet),
		"get_address", nil
}

// lookupOutlet resolves an outlet name through the directory. A missing
// store or a lookup failure degrade to the contact-us fallback.
func (c *Controller) lookupOutlet(ctx context.Context, name string) (OutletInfo, bool) {
	if c.opts.SearchOutlets == nil {
		return OutletInfo{}, false
	}
	results, err := c.opts.SearchOutlets(ctx, name)
	if err != nil {
		c.countTool("get_outlet_hours", "error")
		c.log.Warn("outlet lookup failed", zap.String("outlet", name), zap.Error(err))
		return OutletInfo{}, false
	}
	if len(results) == 0 {
		return OutletInfo{}, false
	}
	c.countTool("get_outlet_hours", "ok")
	return results[0], true
}

func (c *Controller) handleCalculate(slots Slots) (string, string, error) {
	expr := slots.CalculationExpression
	if expr == "" {
		return "", "", fmt.Errorf("calculate without an expression")
	}
	result, err := calculator.Calculate(expr)
	if err != nil {
		c.countTool("calculator", "error")
		return fmt.Sprintf("Calculation failed: %v", err), "calculator_error", nil
	}
	c.countTool("calculator", "ok")
	return fmt.Sprintf("The result of %s is %s.", expr, calculator.FormatResult(result)),
		"calculator_success", nil
}

func (c *Controller) handleProductInquiry(ctx context.Context, slots Slots) (string, string, error) {
	term := slots.ProductSearchTerm
	if term == "" {
		return "", "", fmt.Errorf("product inquiry without a search term")
	}
	if c.opts.SearchProducts == nil {
		return "We offer a variety of products! What specifically are you looking for?",
			"product_inquiry", nil
	}
	summary, count, err := c.opts.SearchProducts(ctx, term)
	if err != nil {
		c.countTool("search_products", "error")
		return "", "", fmt.Errorf("search products: %w", err)
	}
	c.countTool("search_products", "ok")
	if count == 0 {
		return "We offer a variety of products! What specifically are you looking for?",
			"product_inquiry", nil
	}
	return summary, "product_inquiry", nil
}

// Snapshot returns the session state for a key, if the session exists.
func (c *Controller) Snapshot(sessionKey string) (MemorySnapshot, bool) {
	c.mu.RLock()
	s, ok := c.sessions[sessionKey]
	c.mu.RUnlock()
	if !ok {
		return MemorySnapshot{}, false
	}
	return s.mem.Snapshot(), true
}

// Reset clears a session's history and slots. Resetting an unknown key is a
// no-op that reports false.
func (c *Controller) Reset(sessionKey string) bool {
	c.mu.RLock()
	s, ok := c.sessions[sessionKey]
	c.mu.RUnlock()
	if !ok {
		return false
	}
	s.turnMu.Lock()
	defer s.turnMu.Unlock()
	s.mem.Reset()
	return true
}

// ActiveSessions reports how many sessions the controller currently holds.
func (c *Controller) ActiveSessions() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sessions)
}

// ContextPreview renders the recent history of a session for diagnostics.
func (c *Controller) ContextPreview(sessionKey string, depth int) (string, bool) {
	c.mu.RLock()
	s, ok := c.sessions[sessionKey]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}
	return s.mem.Context(depth), true
}
