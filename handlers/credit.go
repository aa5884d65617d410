package handlers

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"finsight/api/db"
	"finsight/api/models"
)

// HandleCreditHealth returns the dashboard snapshot. Missing profiles are
// seeded deterministically from the user id, so repeated calls agree.
func HandleCreditHealth(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	profile, err := db.EnsureCreditProfile(c.Request.Context(), id.UserID)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	view := models.CreditHealthView{
		Score:          profile.Score,
		Rating:         models.CreditRating(profile.Score),
		UtilizationPct: models.Utilization(profile.Accounts),
		Accounts:       profile.Accounts,
	}
	if profile.TotalPayments > 0 {
		view.PaymentRatePct = int(math.Round(float64(profile.OnTimePayments) / float64(profile.TotalPayments) * 100))
	}
	view.Tips = AI.Tips(c.Request.Context(), id.UserID, profile.Score)

	respondData(c, http.StatusOK, view)
}
