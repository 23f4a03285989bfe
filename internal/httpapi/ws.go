package httpapi

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wan-ilhami/ChatBot-AI-backend/internal/protocol"
)

// handleChatWS runs a synchronous request/reply chat loop over one socket.
// Each inbound client_message produces exactly one bot_reply or error_event.
func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	conn.SetReadLimit(int64(s.maxMessageLen) * 4)
	s.log.Info("websocket session opened", zap.String("remote", r.RemoteAddr))

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warn("websocket read failed", zap.Error(err))
			}
			return
		}
		s.countWS("in", protocol.TypeClientMessage)

		msg, err := protocol.ParseClientMessage(data)
		if err != nil {
			s.writeWSError(conn, "bad_request", err.Error())
			continue
		}
		if err := s.validateMessage(msg.Message); err != nil {
			s.writeWSError(conn, "bad_request", err.Error())
			continue
		}

		res, err := s.ctrl.ProcessTurn(r.Context(), msg.SessionID, msg.Message)
		if err != nil {
			s.writeWSError(conn, "internal", "failed to process message")
			continue
		}

		env, err := protocol.NewBotReplyEnvelope(protocol.BotReply{
			SessionID: msg.SessionID,
			Response:  res.Response,
			Intent:    string(res.Intent),
			ToolsUsed: res.ToolsUsed,
			At:        res.Timestamp,
		})
		if err != nil {
			s.writeWSError(conn, "internal", "failed to encode reply")
			continue
		}
		if err := conn.WriteJSON(env); err != nil {
			s.log.Warn("websocket write failed", zap.Error(err))
			return
		}
		s.countWS("out", protocol.TypeBotReply)
	}
}

func (s *Server) writeWSError(conn *websocket.Conn, code, detail string) {
	env, err := protocol.NewErrorEnvelope(code, detail)
	if err != nil {
		return
	}
	if err := conn.WriteJSON(env); err == nil {
		s.countWS("out", protocol.TypeErrorEvent)
	}
}

func (s *Server) countWS(direction, msgType string) {
	if s.metrics != nil {
		s.metrics.WSMessages.WithLabelValues(direction, msgType).Inc()
	}
}
