package models

import (
	"math"
	"time"
)

// Goal is a financial goal row. Progress and days-remaining are derived at
// read time, never stored.
type Goal struct {
	ID            string     `json:"id"`
	OwnerID       string     `json:"owner_id"`
	Name          string     `json:"name"`
	TargetAmount  float64    `json:"target_amount"`
	CurrentAmount float64    `json:"current_amount"`
	TargetDate    *time.Time `json:"target_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// GoalView is the response shape: the stored goal plus computed fields.
type GoalView struct {
	Goal
	ProgressPercentage int  `json:"progress_percentage"`
	DaysRemaining      *int `json:"days_remaining,omitempty"`
}

// View computes the derived fields against the supplied clock.
func (g Goal) View(now time.Time) GoalView {
	v := GoalView{Goal: g, ProgressPercentage: GoalProgress(g.CurrentAmount, g.TargetAmount)}
	if g.TargetDate != nil {
		d := DaysRemaining(*g.TargetDate, now)
		v.DaysRemaining = &d
	}
	return v
}

// GoalProgress returns round(current/target*100). An overfunded goal reads
// past 100; a zero target reports zero progress.
func GoalProgress(current, target float64) int {
	if target <= 0 {
		return 0
	}
	return int(math.Round(current / target * 100))
}

// DaysRemaining is ceil((target - now) / 24h). Past dates go negative.
func DaysRemaining(target, now time.Time) int {
	return int(math.Ceil(target.Sub(now).Hours() / 24))
}
