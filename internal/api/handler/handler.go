package handler

import (
	"net/http"

	"github.com/Suryathangaraj2003/consulting/internal/chathub"
	"github.com/Suryathangaraj2003/consulting/internal/notify"
	"github.com/Suryathangaraj2003/consulting/internal/rating"
	"github.com/Suryathangaraj2003/consulting/internal/storage"
	"github.com/gin-gonic/gin"
)

// Handler holds the dependencies shared by all HTTP endpoints.
type Handler struct {
	Storage   storage.Storage
	Hub       *chathub.ManagerService
	Rating    *rating.Service
	Notifier  notify.Notifier
	JWTSecret []byte
}

func NewHandler(s storage.Storage, hub *chathub.ManagerService, r *rating.Service, n notify.Notifier, jwtSecret []byte) *Handler {
	return &Handler{
		Storage:   s,
		Hub:       hub,
		Rating:    r,
		Notifier:  n,
		JWTSecret: jwtSecret,
	}
}

// Health reports service liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Server is running!"})
}
