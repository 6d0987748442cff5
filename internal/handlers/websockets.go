package handlers

import (
	"net/http"

	"github.com/OscarR093/monitoreoTermico-sub000/internal/live"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Upgrader for HTTP -> WebSocket. Consider tightening CheckOrigin in production.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origins once the dashboard host is fixed in config
}

// @Summary      Live telemetry stream
// @Description  WebSocket upgrade. Requires the access_token cookie or a Bearer token;
// @Description  send "react-client" to receive the connected ack, then realtime frames.
// @Tags         live
// @Success      101
// @Failure      401  {object}  ErrorResponse
// @Router       /ws [get]
func (h *Handler) wsConnect(c *gin.Context) {
	// reject before the upgrade so the browser gets a plain 401
	if _, ok := h.authenticate(c); !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}

	live.NewClient(conn, h.gateway, h.opts.SendBuffer, h.log).Serve()
}
