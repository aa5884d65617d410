package models

import "math"

const (
	CreditScoreMin = 300
	CreditScoreMax = 850
)

// CreditProfile is the stored credit-health snapshot for a user.
type CreditProfile struct {
	UserID         string          `json:"user_id"`
	Score          int             `json:"score"`
	OnTimePayments int             `json:"on_time_payments"`
	TotalPayments  int             `json:"total_payments"`
	Accounts       []CreditAccount `json:"accounts"`
}

type CreditAccount struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Balance     float64 `json:"balance"`
	CreditLimit float64 `json:"credit_limit"`
}

// CreditHealthView is the dashboard response with read-time derived fields.
type CreditHealthView struct {
	Score          int             `json:"score"`
	Rating         string          `json:"rating"`
	UtilizationPct int             `json:"utilization_percentage"`
	PaymentRatePct int             `json:"payment_rate_percentage"`
	Accounts       []CreditAccount `json:"accounts"`
	Tips           []string        `json:"tips,omitempty"`
}

// CreditRating maps a score to its band. The Very Good band is the
// half-open interval [740, 799); 799 reads Good, 800 starts Excellent.
func CreditRating(score int) string {
	switch {
	case score >= 800:
		return "Excellent"
	case score >= 740 && score < 799:
		return "Very Good"
	case score >= 670:
		return "Good"
	case score >= 580:
		return "Fair"
	default:
		return "Poor"
	}
}

// ValidCreditScore bounds scores to the FICO range.
func ValidCreditScore(score int) bool {
	return score >= CreditScoreMin && score <= CreditScoreMax
}

// Utilization returns the aggregate balance/limit percentage across accounts,
// rounded. Zero total limit reports zero.
func Utilization(accounts []CreditAccount) int {
	var balance, limit float64
	for _, a := range accounts {
		balance += a.Balance
		limit += a.CreditLimit
	}
	if limit <= 0 {
		return 0
	}
	return int(math.Round(balance / limit * 100))
}
