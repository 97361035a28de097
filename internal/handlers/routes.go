package handlers

import (
	"github.com/chipchip/sgl-tracker/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RegisterRoutes mounts every tracker endpoint on v1
func RegisterRoutes(v1 *gin.RouterGroup, tracker *services.TrackerService, logger *logrus.Logger) {
	salesTeamHandler := NewSalesTeamHandler(tracker, logger)
	leadHandler := NewLeadHandler(tracker, logger)
	leaderHandler := NewLeaderHandler(tracker, logger)
	checkInHandler := NewCheckInHandler(tracker, logger)
	dashboardHandler := NewDashboardHandler(tracker, logger)

	salesTeam := v1.Group("/sales-team")
	{
		salesTeam.GET("", salesTeamHandler.List)
		salesTeam.POST("", salesTeamHandler.Add)
	}

	leads := v1.Group("/leads")
	{
		leads.GET("", leadHandler.ListActive)
		leads.POST("", leadHandler.Add)
		leads.POST("/import", leadHandler.Import)
		leads.GET("/export", leadHandler.Export)
		leads.PATCH("/:id", leadHandler.Update)
		leads.POST("/:id/promote", leadHandler.Promote)
	}

	leaders := v1.Group("/leaders")
	{
		leaders.GET("", leaderHandler.List)
		leaders.GET("/follow-ups", leaderHandler.FollowUps)
		leaders.GET("/export", leaderHandler.Export)
		leaders.PATCH("/:id", leaderHandler.Update)
	}

	checkIns := v1.Group("/check-ins")
	{
		checkIns.GET("", checkInHandler.ListForDate)
		checkIns.POST("", checkInHandler.CheckIn)
	}

	dashboard := v1.Group("/dashboard")
	{
		dashboard.GET("/weeks", dashboardHandler.Weeks)
		dashboard.GET("/performance", dashboardHandler.Performance)
		dashboard.GET("/cohorts", dashboardHandler.Cohorts)
	}
}
