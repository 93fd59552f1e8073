package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) getStatus(c *gin.Context) {
	report, err := s.deps.Views.Status(c.Request.Context())
	if err != nil {
		slog.Error("status", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch agent status", "details": err.Error()})
		return
	}
	s.cached(c, report)
}

func (s *Server) getActivity(c *gin.Context) {
	report, err := s.deps.Views.Activity(c.Request.Context())
	if err != nil {
		slog.Error("agent activity", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch agent activity", "details": err.Error()})
		return
	}
	s.cached(c, report)
}

func (s *Server) getBrief(c *gin.Context) {
	brief, err := s.deps.Views.Brief(c.Request.Context())
	if err != nil {
		slog.Error("brief", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch brief data", "details": err.Error()})
		return
	}
	s.cached(c, brief)
}

func (s *Server) getMarkets(c *gin.Context) {
	markets, err := s.deps.Views.Markets(c.Request.Context())
	if err != nil {
		slog.Error("polymarket", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch prediction markets"})
		return
	}
	s.cached(c, markets)
}

func (s *Server) cached(c *gin.Context, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("encoding response", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	writeCached(c, body)
}
