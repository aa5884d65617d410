package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"finsight/api/db"
	"finsight/api/models"
)

type GoalRequest struct {
	Name          string     `json:"name" binding:"required"`
	TargetAmount  float64    `json:"target_amount"`
	CurrentAmount float64    `json:"current_amount"`
	TargetDate    *time.Time `json:"target_date"`
}

func (r *GoalRequest) validate() string {
	if r.TargetAmount <= 0 {
		return "target_amount must be greater than zero"
	}
	if r.CurrentAmount < 0 {
		return "current_amount must not be negative"
	}
	return ""
}

func HandleCreateGoal(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req GoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "name and target_amount are required")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(c, http.StatusBadRequest, msg)
		return
	}

	goal, err := db.CreateGoal(c.Request.Context(), id.UserID, req.Name, req.TargetAmount, req.CurrentAmount, req.TargetDate)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondData(c, http.StatusCreated, goal.View(time.Now()))
}

func HandleListGoals(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	goals, err := db.ListGoals(c.Request.Context(), id.UserID)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	now := time.Now()
	views := make([]models.GoalView, 0, len(goals))
	for _, g := range goals {
		views = append(views, g.View(now))
	}
	respondData(c, http.StatusOK, views)
}

func HandleGetGoal(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	goal, err := db.GetGoal(c.Request.Context(), c.Param("id"), id.UserID)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondData(c, http.StatusOK, goal.View(time.Now()))
}

func HandleUpdateGoal(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req GoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "name and target_amount are required")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(c, http.StatusBadRequest, msg)
		return
	}

	goal, err := db.UpdateGoal(c.Request.Context(), c.Param("id"), id.UserID, req.Name, req.TargetAmount, req.CurrentAmount, req.TargetDate)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	respondData(c, http.StatusOK, goal.View(time.Now()))
}

func HandleDeleteGoal(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	if err := db.DeleteGoal(c.Request.Context(), c.Param("id"), id.UserID); err != nil {
		respondStoreError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "goal deleted")
}
