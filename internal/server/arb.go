package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/reefboard/internal/store"
)

const (
	betListLimit         = 100
	opportunityListLimit = 50
)

type bankrollPatch struct {
	Amount decimal.NullDecimal `json:"amount"`
	Reason string              `json:"reason"`
	BetID  json.RawMessage     `json:"betId"`
}

var errInvalidBetID = errors.New("invalid betId")

// parseBetID accepts a JSON integer or a numeric string. Null, false, zero
// and the empty string mean the adjustment is not tied to a bet.
func parseBetID(raw json.RawMessage) (int64, error) {
	raw = bytes.TrimSpace(raw)
	switch string(raw) {
	case "", "null", "false", `""`:
		return 0, nil
	}
	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, errInvalidBetID
		}
	}
	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil || id < 0 {
		return 0, errInvalidBetID
	}
	return id, nil
}

func (s *Server) listBets(c *gin.Context) {
	s.writeBets(c, betListLimit)
}

func (s *Server) listOpportunities(c *gin.Context) {
	s.writeBets(c, opportunityListLimit)
}

func (s *Server) writeBets(c *gin.Context, limit int) {
	bets, err := s.deps.Bets.ListBets(c.Request.Context(), limit)
	if err != nil {
		slog.Error("listing bets", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, bets)
}

func (s *Server) saveBet(c *gin.Context) {
	var in store.BetInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": store.MissingBetFieldsMessage})
		return
	}
	id, err := s.deps.Bets.SaveBet(c.Request.Context(), in)
	if err != nil {
		betError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "id": id, "message": "Bet placed successfully"})
}

func (s *Server) reportOpportunity(c *gin.Context) {
	var in store.BetInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": store.MissingBetFieldsMessage})
		return
	}
	id, err := s.deps.Bets.ReportOpportunity(c.Request.Context(), in)
	if err != nil {
		betError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"id":      id,
		"message": "Arb opportunity reported successfully. Awaiting approval in #dev-ops channel.",
	})
}

func betError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"error": store.MissingBetFieldsMessage})
	case errors.Is(err, store.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status: must be pending, won, or lost"})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Bet not found"})
	default:
		slog.Error("saving bet", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func (s *Server) getBankroll(c *gin.Context) {
	snap, err := s.deps.Bets.LatestBalance(c.Request.Context())
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No bankroll data found", "balance": store.InitialBalance})
		return
	}
	if err != nil {
		slog.Error("reading bankroll", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": snap.Balance, "updated_at": snap.UpdatedAt})
}

func (s *Server) patchBankroll(c *gin.Context) {
	var req bankrollPatch
	if err := c.ShouldBindJSON(&req); err != nil || !req.Amount.Valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required field: amount"})
		return
	}
	betID, err := parseBetID(req.BetID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid betId: must be an integer"})
		return
	}
	ctx := c.Request.Context()
	adj, err := s.deps.Bets.AdjustBalance(ctx, req.Amount.Decimal, betID)
	if err != nil {
		slog.Error("adjusting bankroll", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	reason := req.Reason
	if reason == "" {
		reason = "Bankroll adjustment"
	}
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"previousBalance": adj.PreviousBalance,
		"adjustment":      adj.Amount,
		"newBalance":      adj.NewBalance,
		"reason":          reason,
		"updated_at":      s.deps.Now().UTC().Format("2006-01-02 15:04:05"),
	})
}

func (s *Server) getBankrollHistory(c *gin.Context) {
	history, err := s.deps.Bets.BalanceHistory(c.Request.Context())
	if err != nil {
		slog.Error("reading bankroll history", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if len(history) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No bankroll history found", "history": []store.Snapshot{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}
