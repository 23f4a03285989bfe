package httpapi

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/wan-ilhami/ChatBot-AI-backend/internal/protocol"
)

func dialWS(t *testing.T, httpURL string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(httpURL, "http") + "/v1/chat/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestChatWebSocketRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	conn := dialWS(t, srv.URL)

	err := conn.WriteJSON(protocol.Envelope{
		Type:    protocol.TypeClientMessage,
		Payload: json.RawMessage(`{"session_id":"ws-1","message":"Can you calculate 15 + 25 * 2?"}`),
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	var env protocol.Envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	if env.Type != protocol.TypeBotReply {
		t.Fatalf("type = %q, want %q", env.Type, protocol.TypeBotReply)
	}
	var reply protocol.BotReply
	if err := json.Unmarshal(env.Payload, &reply); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if reply.Response != "The result of 15 + 25 * 2 is 65." {
		t.Fatalf("response = %q", reply.Response)
	}
	if reply.Intent != "calculate" {
		t.Fatalf("intent = %q, want calculate", reply.Intent)
	}
}

func TestChatWebSocketRejectsBadFrames(t *testing.T) {
	srv := newTestServer(t)
	conn := dialWS(t, srv.URL)

	// Wrong envelope type.
	err := conn.WriteJSON(protocol.Envelope{
		Type:    protocol.TypeBotReply,
		Payload: json.RawMessage(`{}`),
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	var env protocol.Envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	if env.Type != protocol.TypeErrorEvent {
		t.Fatalf("type = %q, want %q", env.Type, protocol.TypeErrorEvent)
	}

	// Suspicious message content.
	err = conn.WriteJSON(protocol.Envelope{
		Type:    protocol.TypeClientMessage,
		Payload: json.RawMessage(`{"session_id":"ws-2","message":"<script>alert(1)</script>"}`),
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	if env.Type != protocol.TypeErrorEvent {
		t.Fatalf("type = %q, want %q", env.Type, protocol.TypeErrorEvent)
	}

	// The loop keeps serving after rejected frames.
	err = conn.WriteJSON(protocol.Envelope{
		Type:    protocol.TypeClientMessage,
		Payload: json.RawMessage(`{"session_id":"ws-2","message":"Hello!"}`),
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	if env.Type != protocol.TypeBotReply {
		t.Fatalf("type = %q, want %q after recovery", env.Type, protocol.TypeBotReply)
	}
}
