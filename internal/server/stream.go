package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/kapu/aion2-character-go/internal/constants"
	"github.com/kapu/aion2-character-go/internal/domain"
	"github.com/kapu/aion2-character-go/pkg/errors"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// streamMessage is one websocket frame of a ranking batch.
type streamMessage struct {
	Type   string                  `json:"type"`
	Record *domain.CharacterRecord `json:"record,omitempty"`
	Count  *int                    `json:"count,omitempty"`
	Error  string                  `json:"error,omitempty"`
	Code   string                  `json:"code,omitempty"`
}

// streamAbyss sends each ranker's record as soon as it is built, then a
// done frame with the number of records sent.
func (s *Server) streamAbyss(c *gin.Context) {
	var req abyssRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		s.fail(c, errors.NewValidationError("invalid ranking query", "query", err.Error()))
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	sent := 0
	err = s.characters.StreamAbyss(ctx, req.query(), func(record *domain.CharacterRecord) error {
		if err := writeFrame(conn, streamMessage{Type: "record", Record: record}); err != nil {
			return err
		}
		sent++
		return nil
	})
	if err != nil {
		s.logger.Warn("Ranking stream ended early", zap.Int("sent", sent), zap.Error(err))
		_, code := errors.Describe(err)
		_ = writeFrame(conn, streamMessage{Type: "error", Error: err.Error(), Code: code})
		return
	}

	if err := writeFrame(conn, streamMessage{Type: "done", Count: &sent}); err != nil {
		s.logger.Warn("WebSocket done frame failed", zap.Error(err))
		return
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(constants.HTTPConfig.WriteWait),
	)
}

func writeFrame(conn *websocket.Conn, msg streamMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(constants.HTTPConfig.WriteWait)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}
