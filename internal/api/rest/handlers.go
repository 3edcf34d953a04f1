package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openhauscore/kc868/internal/api/websocket"
	"github.com/openhauscore/kc868/internal/types"
	"github.com/openhauscore/kc868/internal/web"
)

// GET /
//
// Without query parameters this serves the control page. With
// relay+state parameters it is a control request, answered in plain
// text to stay compatible with the original firmware's URL scheme.
func (s *Server) index(c *gin.Context) {
	relay := c.Query("relay")
	state := c.Query("state")

	if relay == "" && state == "" {
		c.Data(http.StatusOK, "text/html; charset=utf-8", web.IndexPage)
		return
	}

	if err := s.board.ApplyControl(relay, state); err != nil {
		switch {
		case errors.Is(err, types.ErrUnknownRelay):
			c.String(http.StatusNotFound, "unknown relay %q", relay)
		case errors.Is(err, types.ErrMalformedState):
			c.String(http.StatusBadRequest, "state must be \"on\" or \"off\"")
		default:
			c.String(http.StatusInternalServerError, "error: %v", err)
		}
		return
	}

	s.broadcastRelayChange(relay, state)

	c.String(http.StatusOK, "OK")
}

// GET /api/control?relay=&state=
//
// Same control operation as the compat endpoint, but with structured
// JSON responses for API clients.
func (s *Server) control(c *gin.Context) {
	relay := c.Query("relay")
	state := c.Query("state")

	if err := s.board.ApplyControl(relay, state); err != nil {
		switch {
		case errors.Is(err, types.ErrUnknownRelay):
			c.JSON(http.StatusNotFound, types.NewErrorResponse("RELAY_404", "Unknown relay", relay))
		case errors.Is(err, types.ErrMalformedState):
			c.JSON(http.StatusBadRequest, types.NewErrorResponse("CONTROL_400", "State must be \"on\" or \"off\"", state))
		default:
			c.JSON(http.StatusInternalServerError, types.NewErrorResponse("CONTROL_500", "Control failed", err.Error()))
		}
		return
	}

	s.broadcastRelayChange(relay, state)

	c.JSON(http.StatusOK, gin.H{
		"relay": relay,
		"state": state,
	})
}

func (s *Server) broadcastRelayChange(relay, state string) {
	s.wsHub.Broadcast(websocket.NewRelayChangedMessage(relay, state, "api"))
	s.wsHub.Broadcast(websocket.NewStateMessage(s.board.RenderState()))
}

// GET /api/state
func (s *Server) getState(c *gin.Context) {
	c.JSON(http.StatusOK, s.board.RenderState())
}

// GET /api/board
func (s *Server) getBoard(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"board":      s.profile.Board,
		"vendor":     s.profile.Vendor,
		"relays":     s.profile.Relays,
		"inputs":     s.profile.Inputs,
		"ws_clients": s.wsHub.GetClientCount(),
	})
}
