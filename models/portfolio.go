package models

import (
	"math"
	"time"
)

// Holding is an investment portfolio row.
type Holding struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Symbol    string    `json:"symbol"`
	Shares    float64   `json:"shares"`
	AvgCost   float64   `json:"avg_cost"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (h Holding) CostBasis() float64 {
	return h.Shares * h.AvgCost
}

// PortfolioView aggregates holdings with per-holding weights derived at read
// time from cost basis.
type PortfolioView struct {
	Holdings       []HoldingView `json:"holdings"`
	TotalCostBasis float64       `json:"total_cost_basis"`
}

type HoldingView struct {
	Holding
	CostBasis float64 `json:"cost_basis"`
	WeightPct int     `json:"weight_percentage"`
}

// BuildPortfolioView computes totals and weights. With a zero total every
// weight reports zero.
func BuildPortfolioView(holdings []Holding) PortfolioView {
	view := PortfolioView{Holdings: make([]HoldingView, 0, len(holdings))}
	for _, h := range holdings {
		view.TotalCostBasis += h.CostBasis()
	}
	for _, h := range holdings {
		hv := HoldingView{Holding: h, CostBasis: h.CostBasis()}
		if view.TotalCostBasis > 0 {
			hv.WeightPct = int(math.Round(hv.CostBasis / view.TotalCostBasis * 100))
		}
		view.Holdings = append(view.Holdings, hv)
	}
	return view
}
