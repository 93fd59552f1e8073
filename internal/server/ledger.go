package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/theirongolddev/reefboard/internal/ledger"
)

const recentArbs = 10

func (s *Server) getArbLedger(c *gin.Context) {
	entries, err := s.deps.ArbLedger.Recent(recentArbs)
	if err != nil {
		slog.Error("reading arb ledger", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) postArbLedger(c *gin.Context) {
	var req ledger.ArbRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": ledger.MissingArbFieldsMessage})
		return
	}
	entry, err := ledger.NewArbEntry(req, s.deps.Now())
	if errors.Is(err, ledger.ErrMissingFields) {
		c.JSON(http.StatusBadRequest, gin.H{"error": ledger.MissingArbFieldsMessage})
		return
	}
	if err == nil {
		err = s.deps.ArbLedger.Append(entry)
	}
	if err != nil {
		slog.Error("writing arb ledger", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "entry": entry})
}

func (s *Server) postSimulateBet(c *gin.Context) {
	var req ledger.SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": ledger.MissingSimFieldsMessage})
		return
	}
	entry, err := ledger.NewSimulatedBet(req, s.deps.Now())
	if errors.Is(err, ledger.ErrMissingFields) {
		c.JSON(http.StatusBadRequest, gin.H{"error": ledger.MissingSimFieldsMessage})
		return
	}
	if err == nil {
		err = s.deps.SimLedger.Append(entry)
	}
	if err != nil {
		slog.Error("writing simulated portfolio", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "entry": entry})
}

func (s *Server) getSimulateStats(c *gin.Context) {
	entries, err := s.deps.SimLedger.All()
	if err != nil {
		slog.Error("reading simulated portfolio", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, ledger.Stats(entries))
}
