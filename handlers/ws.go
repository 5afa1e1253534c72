package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/groupchat/groupchat/internal/hub"
	"github.com/groupchat/groupchat/internal/sessions"
	"github.com/groupchat/groupchat/internal/tokens"
	"github.com/groupchat/groupchat/pkg/logger"
	"github.com/groupchat/groupchat/pkg/response"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Browser clients connect from arbitrary origins in development.
	CheckOrigin: func(*http.Request) bool { return true },
}

// WSHandler upgrades authenticated clients into the room hub. The token may
// arrive in the Authorization header or, for browser WebSocket clients that
// cannot set headers, a token query parameter.
type WSHandler struct {
	hub       *hub.Hub
	issuer    *tokens.Issuer
	blacklist sessions.Blacklist
}

func NewWSHandler(h *hub.Hub, iss *tokens.Issuer, bl sessions.Blacklist) *WSHandler {
	return &WSHandler{hub: h, issuer: iss, blacklist: bl}
}

func (h *WSHandler) Register(r gin.IRoutes) {
	r.GET("/ws", h.Serve)
}

func (h *WSHandler) Serve(c *gin.Context) {
	raw := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
		raw = strings.TrimSpace(raw[7:])
	}
	if raw == "" {
		raw = c.Query("token")
	}
	if raw == "" {
		response.Fail(c, http.StatusUnauthorized, "authentication token is required")
		return
	}
	if revoked, err := h.blacklist.IsRevoked(c.Request.Context(), raw); err != nil || revoked {
		response.Fail(c, http.StatusUnauthorized, "session has been logged out")
		return
	}
	id, err := h.issuer.Verify(raw)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "invalid or expired token")
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Errorf("ws: upgrade failed: %v", err)
		return
	}
	hub.NewClient(h.hub, conn, id.ID)
}
