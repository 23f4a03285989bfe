// Package protocol defines the JSON envelopes spoken over the chat
// websocket.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	TypeClientMessage = "client_message"
	TypeBotReply      = "bot_reply"
	TypeErrorEvent    = "error_event"
)

var ErrUnsupportedType = errors.New("unsupported message type")

// Envelope wraps every frame with its type tag.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ClientMessage is one user utterance sent over the socket.
type ClientMessage struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	TsMS      int64  `json:"ts_ms,omitempty"`
}

// BotReply carries the engine's answer for one turn.
type BotReply struct {
	SessionID string    `json:"session_id"`
	Response  string    `json:"response"`
	Intent    string    `json:"intent"`
	ToolsUsed []string  `json:"tools_used,omitempty"`
	At        time.Time `json:"at"`
}

// ErrorEvent reports a rejected or failed frame.
type ErrorEvent struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// ParseClientMessage decodes and validates one inbound frame.
func ParseClientMessage(data []byte) (ClientMessage, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return ClientMessage{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Type != TypeClientMessage {
		return ClientMessage{}, fmt.Errorf("%w: %q", ErrUnsupportedType, env.Type)
	}
	var msg ClientMessage
	if err := json.Unmarshal(env.Payload, &msg); err != nil {
		return ClientMessage{}, fmt.Errorf("decode client message: %w", err)
	}
	if msg.SessionID == "" {
		return ClientMessage{}, errors.New("client message missing session_id")
	}
	if msg.Message == "" {
		return ClientMessage{}, errors.New("client message missing message")
	}
	return msg, nil
}

// NewBotReplyEnvelope wraps a reply for the wire.
func NewBotReplyEnvelope(reply BotReply) (Envelope, error) {
	payload, err := json.Marshal(reply)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode bot reply: %w", err)
	}
	return Envelope{Type: TypeBotReply, Payload: payload}, nil
}

// NewErrorEnvelope wraps an error event for the wire.
func NewErrorEnvelope(code, detail string) (Envelope, error) {
	payload, err := json.Marshal(ErrorEvent{Code: code, Detail: detail})
	if err != nil {
		return Envelope{}, fmt.Errorf("encode error event: %w", err)
	}
	return Envelope{Type: TypeErrorEvent, Payload: payload}, nil
}
