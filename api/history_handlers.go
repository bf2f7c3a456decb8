package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tariff-duty/internal/errors"
)

// handleHistoryList handles GET /api/history
func (s *Server) handleHistoryList(c *gin.Context) {
	items := s.opts.History.List()
	s.writeJSON(c, gin.H{
		"items": items,
		"count": len(items),
	}, http.StatusOK)
}

// handleHistoryGet handles GET /api/history/:id
func (s *Server) handleHistoryGet(c *gin.Context) {
	id := c.Param("id")
	item, ok := s.opts.History.Get(id)
	if !ok {
		s.writeError(c, errors.NotFound("history item", id))
		return
	}
	s.writeJSON(c, item, http.StatusOK)
}

// handleHistoryRemove handles DELETE /api/history/:id
func (s *Server) handleHistoryRemove(c *gin.Context) {
	id := c.Param("id")
	if !s.opts.History.Remove(id) {
		s.writeError(c, errors.NotFound("history item", id))
		return
	}
	c.Status(http.StatusNoContent)
}

// handleHistoryClear handles DELETE /api/history
func (s *Server) handleHistoryClear(c *gin.Context) {
	s.opts.History.Clear()
	c.Status(http.StatusNoContent)
}
