package controllers

import (
	"net/http"
	"time"

	"roomdesk-backend/services"
	"roomdesk-backend/utils"

	"github.com/gin-gonic/gin"
)

// CreateBookingRequest is the public booking payload. Dates travel as
// "2006-01-02" strings; derived fields are never accepted from clients.
type CreateBookingRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Phone     string `json:"phone"`

	RoomTypeID uint   `json:"roomTypeId" binding:"required"`
	CheckIn    string `json:"checkIn" binding:"required"`
	CheckOut   string `json:"checkOut" binding:"required"`
	Guests     int    `json:"guests"`

	PricePerNight *int64 `json:"pricePerNight,omitempty"`
	Discount      int64  `json:"discount"`

	Source        string `json:"source"`
	PaymentMethod string `json:"paymentMethod"`
}

// UpdateBookingRequest mirrors services.BookingUpdate with dates as
// "2006-01-02" strings, matching the create payload.
type UpdateBookingRequest struct {
	FirstName     *string `json:"firstName,omitempty"`
	LastName      *string `json:"lastName,omitempty"`
	Email         *string `json:"email,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	CheckIn       *string `json:"checkIn,omitempty"`
	CheckOut      *string `json:"checkOut,omitempty"`
	Guests        *int    `json:"guests,omitempty"`
	PricePerNight *int64  `json:"pricePerNight,omitempty"`
	Discount      *int64  `json:"discount,omitempty"`
	PaymentStatus *string `json:"paymentStatus,omitempty"`
	PaymentMethod *string `json:"paymentMethod,omitempty"`
}

type TransitionRequest struct {
	Status string `json:"status" binding:"required"`
}

type AssignUnitRequest struct {
	Unit string `json:"unit" binding:"required"`
}

type BookingController struct {
	Bookings *services.BookingService
}

func NewBookingController(svc *services.BookingService) *BookingController {
	return &BookingController{Bookings: svc}
}

func (ctrl *BookingController) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
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

	guests := req.Guests
	if guests == 0 {
		guests = 1
	}

	draft := services.BookingDraft{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Phone:         req.Phone,
		RoomTypeID:    req.RoomTypeID,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		Guests:        guests,
		PricePerNight: req.PricePerNight,
		Discount:      req.Discount,
		Source:        req.Source,
		PaymentMethod: req.PaymentMethod,
	}

	booking, err := ctrl.Bookings.CreateBooking(&draft)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, booking)
}

func (ctrl *BookingController) GetBookings(c *gin.Context) {
	var from, to time.Time
	if raw := c.Query("from"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "from: expected YYYY-MM-DD")
			return
		}
		from = t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "to: expected YYYY-MM-DD")
			return
		}
		to = t
	}

	bookings, err := ctrl.Bookings.ListBookings(c.Query("status"), from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, bookings)
}

func (ctrl *BookingController) GetBookingDetails(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	booking, err := ctrl.Bookings.GetBooking(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

func (ctrl *BookingController) UpdateBooking(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload: "+err.Error())
		return
	}

	upd := services.BookingUpdate{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Phone:         req.Phone,
		Guests:        req.Guests,
		PricePerNight: req.PricePerNight,
		Discount:      req.Discount,
		PaymentStatus: req.PaymentStatus,
		PaymentMethod: req.PaymentMethod,
	}
	if req.CheckIn != nil {
		t, err := parseDate(*req.CheckIn)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "checkIn: expected YYYY-MM-DD")
			return
		}
		upd.CheckIn = &t
	}
	if req.CheckOut != nil {
		t, err := parseDate(*req.CheckOut)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "checkOut: expected YYYY-MM-DD")
			return
		}
		upd.CheckOut = &t
	}

	booking, err := ctrl.Bookings.UpdateBooking(id, &upd)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

func (ctrl *BookingController) UpdateBookingStatus(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload: status required")
		return
	}

	booking, err := ctrl.Bookings.TransitionStatus(id, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

func (ctrl *BookingController) AssignUnit(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req AssignUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload: unit required")
		return
	}

	booking, err := ctrl.Bookings.AssignUnit(id, req.Unit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}
