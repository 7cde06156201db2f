package controllers

import (
	"net/http"
	"time"

	"roomdesk-backend/services"
	"roomdesk-backend/utils"

	"github.com/gin-gonic/gin"
)

type ReportController struct {
	Reports *services.ReportService
}

func NewReportController(svc *services.ReportService) *ReportController {
	return &ReportController{Reports: svc}
}

// RoomsAvailability returns today's per-room-type occupancy snapshot.
// An explicit ?date=YYYY-MM-DD overrides today.
func (ctrl *ReportController) RoomsAvailability(c *gin.Context) {
	date := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "date: expected YYYY-MM-DD")
			return
		}
		date = t
	}

	occupancy, err := ctrl.Reports.Occupancy(date)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, occupancy)
}

// BookingMetrics returns the week-over-week comparison.
func (ctrl *ReportController) BookingMetrics(c *gin.Context) {
	metrics, err := ctrl.Reports.WeekOverWeek(time.Now().UTC())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, metrics)
}
