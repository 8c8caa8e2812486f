package web

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const maxWSMessageBytes = 64 << 20

// handleWebsocket carries the JSON-RPC tool protocol, one request per text
// message. Requests on a connection are answered in order.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxWSMessageBytes)

	s.logger.Info("Websocket client connected", zap.String("remote", r.RemoteAddr))
	ctx := r.Context()

	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("Websocket read failed", zap.Error(err))
			}
			return
		}
		if mt != websocket.TextMessage {
			continue
		}

		resp := s.rpc.Handle(ctx, msg)
		if resp == nil {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, resp); err != nil {
			s.logger.Warn("Websocket write failed", zap.Error(err))
			return
		}
	}
}
