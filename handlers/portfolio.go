package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"finsight/api/db"
	"finsight/api/models"
)

type HoldingRequest struct {
	Symbol  string  `json:"symbol" binding:"required"`
	Shares  float64 `json:"shares"`
	AvgCost float64 `json:"avg_cost"`
}

func (r *HoldingRequest) validate() string {
	if r.Shares <= 0 {
		return "shares must be greater than zero"
	}
	if r.AvgCost < 0 {
		return "avg_cost must not be negative"
	}
	if len(r.Symbol) > 12 {
		return "symbol must be at most 12 characters"
	}
	return ""
}

func HandleGetPortfolio(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	holdings, err := db.ListHoldings(c.Request.Context(), id.UserID)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondData(c, http.StatusOK, models.BuildPortfolioView(holdings))
}

func HandleAddHolding(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req HoldingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "symbol is required")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(c, http.StatusBadRequest, msg)
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	holding, err := db.CreateHolding(c.Request.Context(), id.UserID, symbol, req.Shares, req.AvgCost)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondData(c, http.StatusCreated, holding)
}

func HandleUpdateHolding(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req HoldingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "symbol is required")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(c, http.StatusBadRequest, msg)
		return
	}

	holding, err := db.UpdateHolding(c.Request.Context(), c.Param("id"), id.UserID, req.Shares, req.AvgCost)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondData(c, http.StatusOK, holding)
}

func HandleDeleteHolding(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	if err := db.DeleteHolding(c.Request.Context(), c.Param("id"), id.UserID); err != nil {
		respondStoreError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "holding removed")
}
