package controllers

import (
	"net/http"
	"strconv"

	"roomdesk-backend/services"
	"roomdesk-backend/utils"

	"github.com/gin-gonic/gin"
)

type CheckAvailabilityRequest struct {
	RoomTypeID uint   `json:"roomTypeId" binding:"required"`
	CheckIn    string `json:"checkIn" binding:"required"`
	CheckOut   string `json:"checkOut" binding:"required"`
}

type AvailabilityController struct {
	Availability *services.AvailabilityService
}

func NewAvailabilityController(svc *services.AvailabilityService) *AvailabilityController {
	return &AvailabilityController{Availability: svc}
}

// CheckAvailability is the public pre-booking check: is any unit of this
// type free for the date range.
func (ctrl *AvailabilityController) CheckAvailability(c *gin.Context) {
	var req CheckAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload: "+err.Error())
		return
	}

	checkIn, err := parseDate(req.CheckIn)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "checkIn: expected YYYY-MM-DD")
		return
	}
	checkOut, err := parseDate(req.CheckOut)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "checkOut: expected YYYY-MM-DD")
		return
	}
	if !checkOut.After(checkIn) {
		utils.JSONError(c, http.StatusBadRequest, "checkOut must be after checkIn")
		return
	}

	result, err := ctrl.Availability.CheckAvailability(req.RoomTypeID, checkIn, checkOut)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, result)
}

// AvailableRooms is the admin unit-assignment candidate list: which
// specific room numbers are free for a date range, optionally excluding
// the booking being edited.
func (ctrl *AvailabilityController) AvailableRooms(c *gin.Context) {
	rawID := c.Query("roomTypeId")
	if rawID == "" {
		rawID = c.Query("roomId")
	}
	roomTypeID, err := strconv.ParseUint(rawID, 10, 32)
	if err != nil || roomTypeID == 0 {
		utils.JSONError(c, http.StatusBadRequest, "roomTypeId is required")
		return
	}

	checkIn, err := parseDate(c.Query("checkIn"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "checkIn: expected YYYY-MM-DD")
		return
	}
	checkOut, err := parseDate(c.Query("checkOut"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "checkOut: expected YYYY-MM-DD")
		return
	}
	if !checkOut.After(checkIn) {
		utils.JSONError(c, http.StatusBadRequest, "checkOut must be after checkIn")
		return
	}

	var exclude uint
	if raw := c.Query("excludeBookingId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid excludeBookingId")
			return
		}
		exclude = uint(id)
	}

	av, err := ctrl.Availability.ComputeAvailability(uint(roomTypeID), checkIn, checkOut, exclude)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, av)
}
