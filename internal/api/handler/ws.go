package handler

import (
	"net/http"
	"strings"

	"github.com/Suryathangaraj2003/consulting/internal/chathub"
	"github.com/Suryathangaraj2003/consulting/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin is handled by the CORS middleware on the HTTP routes;
	// the upgrade accepts any origin here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket authenticates the caller and upgrades the connection to a
// realtime session. Browsers cannot set headers on websocket requests, so
// the token is also accepted as a query parameter.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}
	if tokenString == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authorization token missing"})
		return
	}

	userID, userType, err := h.parseToken(tokenString)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token or expired"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to upgrade connection"})
		return
	}

	client := &chathub.WebSocketClient{
		SessionID: uuid.New().String(),
		UserID:    userID,
		UserType:  userType,
		Conn:      conn,
		Hub:       h.Hub,
		Send:      make(chan models.RealtimeEvent, 256),
	}

	h.Hub.RegisterCh <- client
	client.Run()
}
