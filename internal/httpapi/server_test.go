package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/wan-ilhami/ChatBot-AI-backend/internal/dialogue"
	"github.com/wan-ilhami/ChatBot-AI-backend/internal/observability"
	"github.com/wan-ilhami/ChatBot-AI-backend/internal/outlets"
	"github.com/wan-ilhami/ChatBot-AI-backend/internal/products"
)

// newTestServer wires a full stack on the in-memory store. Each call uses a
// unique metrics namespace so the default registry accepts re-registration.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	metrics := observability.NewMetrics(fmt.Sprintf("test_%d", time.Now().UnixNano()))
	store := outlets.NewInMemoryStore()
	catalog := products.NewCatalog()

	ctrl := dialogue.NewController(dialogue.Options{
		MaxTurns:       50,
		ContextWindow:  5,
		Metrics:        metrics,
		SearchOutlets:  OutletSearcher(store),
		SearchProducts: ProductSearcher(catalog),
	})

	srv := httptest.NewServer(New(Options{
		Metrics:        metrics,
		Controller:     ctrl,
		Store:          store,
		Catalog:        catalog,
		MaxMessageLen:  1000,
		MaxQueryLen:    200,
		AllowAnyOrigin: true,
	}))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestChatEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/v1/chat", map[string]string{
		"session_id": "web-1",
		"message":    "Hello!",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body chatResponse
	decodeBody(t, resp, &body)
	if body.Intent != dialogue.IntentGreeting {
		t.Fatalf("intent = %q, want greeting", body.Intent)
	}
	if !strings.Contains(body.Response, "Hello!") {
		t.Fatalf("response = %q", body.Response)
	}
}

func TestChatEndpointValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing session", map[string]string{"message": "hi"}},
		{"empty message", map[string]string{"session_id": "s", "message": "   "}},
		{"oversized message", map[string]string{"session_id": "s", "message": strings.Repeat("a", 1001)}},
		{"script injection", map[string]string{"session_id": "s", "message": "<script>alert(1)</script>"}},
	}
	for _, tt := range tests {
		resp := postJSON(t, srv.URL+"/v1/chat", tt.body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400", tt.name, resp.StatusCode)
		}
	}
}

func TestChatEndpointMultiTurn(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/v1/chat", map[string]string{
		"session_id": "multi", "message": "What are your hours?",
	})
	var first chatResponse
	decodeBody(t, resp, &first)
	if first.Action != "ask_clarification" {
		t.Fatalf("action = %q, want ask_clarification", first.Action)
	}

	resp = postJSON(t, srv.URL+"/v1/chat", map[string]string{
		"session_id": "multi", "message": "the SS 2 outlet in petaling jaya, what time does it open",
	})
	var second chatResponse
	decodeBody(t, resp, &second)
	if second.Intent != dialogue.IntentGetHours {
		t.Fatalf("intent = %q, want get_hours", second.Intent)
	}
	if !strings.Contains(second.Response, "09:00 - 22:00") {
		t.Fatalf("response = %q, want store-backed hours", second.Response)
	}
}

func TestProductsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/v1/products?query=thermos+flask+stainless&top_k=3")
	if err != nil {
		t.Fatalf("GET /v1/products: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		Results []products.Product `json:"results"`
		Count   int                `json:"count"`
		Summary string             `json:"summary"`
	}
	decodeBody(t, resp, &body)
	if body.Count == 0 || body.Results[0].ID != "prod_003" {
		t.Fatalf("body = %+v, want thermos ranked first", body)
	}
}

func TestProductsEndpointRejectsBadTopK(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/v1/products?top_k=999")
	if err != nil {
		t.Fatalf("GET /v1/products: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestOutletsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/v1/outlets?query=outlets+in+klang")
	if err != nil {
		t.Fatalf("GET /v1/outlets: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		Results []outlets.Outlet `json:"results"`
		Count   int              `json:"count"`
	}
	decodeBody(t, resp, &body)
	if body.Count != 1 || body.Results[0].Name != "Klang Main Branch" {
		t.Fatalf("body = %+v, want Klang Main Branch", body)
	}
}

func TestOutletsEndpointScreensQuery(t *testing.T) {
	srv := newTestServer(t)

	for _, q := range []string{
		"klang%3B%20DROP%20TABLE%20outlets",
		"x%27%20OR%201%3D1%20--",
	} {
		resp, err := http.Get(srv.URL + "/v1/outlets?query=" + q)
		if err != nil {
			t.Fatalf("GET /v1/outlets: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("q=%s: status = %d, want 400", q, resp.StatusCode)
		}
	}
}

func TestSessionEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/v1/sessions/nope")
	if err != nil {
		t.Fatalf("GET session: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 for unknown session", resp.StatusCode)
	}

	postJSON(t, srv.URL+"/v1/chat", map[string]string{
		"session_id": "sess-a", "message": "outlets in klang",
	}).Body.Close()

	resp, err = http.Get(srv.URL + "/v1/sessions/sess-a")
	if err != nil {
		t.Fatalf("GET session: %v", err)
	}
	var snap dialogue.MemorySnapshot
	decodeBody(t, resp, &snap)
	if len(snap.Turns) != 1 || snap.Slots.Location != "Klang" {
		t.Fatalf("snapshot = %+v, want one turn with location Klang", snap)
	}

	resp = postJSON(t, srv.URL+"/v1/sessions/sess-a/reset", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reset status = %d, want 200", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/v1/sessions/sess-a")
	if err != nil {
		t.Fatalf("GET session: %v", err)
	}
	decodeBody(t, resp, &snap)
	if len(snap.Turns) != 0 {
		t.Fatalf("turns = %d after reset, want 0", len(snap.Turns))
	}
}

func TestHealthAndReadiness(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s status = %d, want 200", path, resp.StatusCode)
		}
	}
}

func TestPerfLatencyEndpoint(t *testing.T) {
	srv := newTestServer(t)

	postJSON(t, srv.URL+"/v1/chat", map[string]string{
		"session_id": "perf", "message": "Hello!",
	}).Body.Close()

	resp, err := http.Get(srv.URL + "/v1/perf/latency")
	if err != nil {
		t.Fatalf("GET /v1/perf/latency: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var snap observability.TurnStageSnapshot
	decodeBody(t, resp, &snap)
	if len(snap.Stages) == 0 {
		t.Fatalf("snapshot has no stages after a processed turn")
	}
}
