package services

import (
	"errors"
	"time"

	"roomdesk-backend/models"

	"gorm.io/gorm"
)

// Overlaps is the date-range predicate used everywhere occupancy is
// decided: half-open intervals [aStart,aEnd) and [bStart,bEnd) intersect
// iff each starts before the other ends. Ranges touching at a point
// (checkout day == checkin day) do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Availability is the transient result of an availability query.
type Availability struct {
	TotalUnits     int      `json:"totalUnits"`
	BookedCount    int      `json:"bookedCount"`
	AvailableCount int      `json:"availableCount"`
	FreeUnits      []string `json:"freeUnits"`
	OccupiedUnits  []string `json:"occupiedUnits"`
}

// AvailabilityCheck is the lightweight pre-booking answer for the public
// endpoint.
type AvailabilityCheck struct {
	Available      bool `json:"available"`
	AvailableUnits int  `json:"availableUnits"`
	TotalUnits     int  `json:"totalUnits"`
	BookedUnits    int  `json:"bookedUnits"`
}

type AvailabilityService struct {
	DB *gorm.DB
}

func NewAvailabilityService(db *gorm.DB) *AvailabilityService {
	return &AvailabilityService{DB: db}
}

// overlappingActive loads bookings of the room type whose stay intersects
// [checkIn, checkOut) and whose status occupies inventory, optionally
// excluding one booking id (self-collision when editing).
func (s *AvailabilityService) overlappingActive(roomTypeID uint, checkIn, checkOut time.Time, excludeBookingID uint) ([]models.Booking, error) {
	q := s.DB.Model(&models.Booking{}).
		Where("room_type_id = ?", roomTypeID).
		Where("status IN ?", models.ActiveStatuses()).
		Where("check_in < ? AND check_out > ?", checkOut, checkIn)
	if excludeBookingID != 0 {
		q = q.Where("id <> ?", excludeBookingID)
	}

	var bookings []models.Booking
	if err := q.Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// ComputeAvailability answers the unit-level question: which physical
// rooms of this type are free for the date range. Only bookings with an
// assigned unit can occupy a specific room, so unassigned active bookings
// do not appear in the occupied list here.
func (s *AvailabilityService) ComputeAvailability(roomTypeID uint, checkIn, checkOut time.Time, excludeBookingID uint) (Availability, error) {
	var rt models.RoomType
	if err := s.DB.Preload("Units").First(&rt, roomTypeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Availability{}, NotFoundError{Resource: "room type"}
		}
		return Availability{}, err
	}

	bookings, err := s.overlappingActive(roomTypeID, checkIn, checkOut, excludeBookingID)
	if err != nil {
		return Availability{}, err
	}

	return unitAvailability(&rt, bookings), nil
}

// unitAvailability partitions a room type's unit labels into free and
// occupied given the overlapping active bookings.
func unitAvailability(rt *models.RoomType, bookings []models.Booking) Availability {
	occupied := make(map[string]bool)
	for _, b := range bookings {
		if b.AssignedUnit != "" && rt.HasUnit(b.AssignedUnit) {
			occupied[b.AssignedUnit] = true
		}
	}

	av := Availability{
		TotalUnits:    len(rt.Units),
		FreeUnits:     []string{},
		OccupiedUnits: []string{},
	}
	for _, u := range rt.Units {
		if occupied[u.Label] {
			av.OccupiedUnits = append(av.OccupiedUnits, u.Label)
		} else {
			av.FreeUnits = append(av.FreeUnits, u.Label)
		}
	}
	av.BookedCount = len(av.OccupiedUnits)
	av.AvailableCount = clampNonNegative(av.TotalUnits - av.BookedCount)
	return av
}

// CheckAvailability answers the coarse question "is any unit free", by
// overlapping booking count rather than per-unit attribution, so bookings
// without an assigned unit still consume capacity.
func (s *AvailabilityService) CheckAvailability(roomTypeID uint, checkIn, checkOut time.Time) (AvailabilityCheck, error) {
	var rt models.RoomType
	if err := s.DB.First(&rt, roomTypeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AvailabilityCheck{}, NotFoundError{Resource: "room type"}
		}
		return AvailabilityCheck{}, err
	}

	var booked int64
	err := s.DB.Model(&models.Booking{}).
		Where("room_type_id = ?", roomTypeID).
		Where("status IN ?", models.ActiveStatuses()).
		Where("check_in < ? AND check_out > ?", checkOut, checkIn).
		Count(&booked).Error
	if err != nil {
		return AvailabilityCheck{}, err
	}

	return coarseAvailability(rt.TotalUnits, int(booked)), nil
}

func coarseAvailability(totalUnits, booked int) AvailabilityCheck {
	available := clampNonNegative(totalUnits - booked)
	return AvailabilityCheck{
		Available:      available > 0,
		AvailableUnits: available,
		TotalUnits:     totalUnits,
		BookedUnits:    booked,
	}
}

func clampNonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
