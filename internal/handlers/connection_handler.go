package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/linkedin-agent/internal/auth"
	"github.com/justsurfingit/linkedin-agent/internal/dtos"
	"github.com/justsurfingit/linkedin-agent/internal/services"
)

// ConnectionHandler tracks outreach messages sent about a job.
type ConnectionHandler struct {
	Connections *services.ConnectionService
}

func NewConnectionHandler(conns *services.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{Connections: conns}
}

func (h *ConnectionHandler) List(c *gin.Context) {
	conns, err := h.Connections.List(c.Request.Context(), auth.CurrentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(conns), "connections": conns})
}

func (h *ConnectionHandler) Create(c *gin.Context) {
	var req dtos.ConnectionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	conn, err := h.Connections.Create(c.Request.Context(), auth.CurrentUser(c).ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, conn)
}

func (h *ConnectionHandler) UpdateStatus(c *gin.Context) {
	var req dtos.ConnectionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	conn, err := h.Connections.UpdateStatus(c.Request.Context(), auth.CurrentUser(c).ID, c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conn)
}
