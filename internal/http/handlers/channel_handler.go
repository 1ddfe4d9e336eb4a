// Realtime channel handler.
//
// This file upgrades GET /ws to a WebSocket and hands the connection to a
// hub session. The HTTP layer does not authenticate the socket itself: the
// session stays unbound (and receives nothing) until the client sends a
// connect message carrying its partner id, mirroring mobile clients that
// open the socket before login completes.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/swiftroute/partner-backend/internal/http/middleware"
	"github.com/swiftroute/partner-backend/internal/hub"
)

// upgrader promotes HTTP requests to WebSocket connections. Origin checks
// are disabled: callers are native apps and the field simulator, not
// browsers, and the socket grants nothing until a connect message binds it.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Channel godoc
// @ID          channel
// @Summary     Open the realtime channel
// @Description Upgrades to a WebSocket carrying location updates and order status events.
// @Tags        Channel
//
// @Success     101  {string}  string  "Switching Protocols"
// @Failure     400  {object}  handlers.ErrorResponse  "Upgrade failed"
// @Router      /ws [get]
func (h *Handlers) Channel(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote its own response; just log.
		middleware.LoggerFrom(c).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	s := hub.NewSession(uuid.NewString(), h.hub, conn, h.locationSvc, h.orderSvc, h.channelOpts, *middleware.LoggerFrom(c))
	s.Run(c.Request.Context())
}
