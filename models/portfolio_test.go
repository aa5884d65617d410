package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPortfolioView(t *testing.T) {
	holdings := []Holding{
		{Symbol: "VTI", Shares: 10, AvgCost: 200},  // 2000
		{Symbol: "BND", Shares: 25, AvgCost: 80},   // 2000
		{Symbol: "VXUS", Shares: 100, AvgCost: 60}, // 6000
	}
	view := BuildPortfolioView(holdings)

	assert.Equal(t, 10000.0, view.TotalCostBasis)
	assert.Equal(t, 20, view.Holdings[0].WeightPct)
	assert.Equal(t, 20, view.Holdings[1].WeightPct)
	assert.Equal(t, 60, view.Holdings[2].WeightPct)
}

func TestBuildPortfolioViewEmpty(t *testing.T) {
	view := BuildPortfolioView(nil)
	assert.Equal(t, 0.0, view.TotalCostBasis)
	assert.Empty(t, view.Holdings)
}
