package services

import (
	"time"

	"roomdesk-backend/models"

	"gorm.io/gorm"
)

// WindowMetrics are the figures for one rolling 7-day window. Arrivals
// and departures count actual status transitions (stamped timestamps),
// not reservation creation — they measure guests who really showed up.
type WindowMetrics struct {
	Created    int64 `json:"created"`
	Arrivals   int64 `json:"arrivals"`
	Departures int64 `json:"departures"`
	Revenue    int64 `json:"revenue"`
}

// MetricsComparison is current week vs previous week with percent deltas.
type MetricsComparison struct {
	Current  WindowMetrics `json:"current"`
	Previous WindowMetrics `json:"previous"`

	CreatedChange    float64 `json:"createdChange"`
	ArrivalsChange   float64 `json:"arrivalsChange"`
	DeparturesChange float64 `json:"departuresChange"`
	RevenueChange    float64 `json:"revenueChange"`
}

// RoomTypeOccupancy is today's occupancy snapshot for one room type.
type RoomTypeOccupancy struct {
	RoomTypeID uint   `json:"roomTypeId"`
	Name       string `json:"name"`
	TotalUnits int    `json:"totalUnits"`
	Occupied   int    `json:"occupied"`
	Available  int    `json:"available"`
}

type ReportService struct {
	DB *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{DB: db}
}

// PercentChange returns the week-over-week delta in percent. A zero
// previous period yields 0 by convention — a sentinel, not a meaningful
// "0% change", but it keeps dashboards free of division blowups.
func PercentChange(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

func (s *ReportService) windowMetrics(start, end time.Time) (WindowMetrics, error) {
	var m WindowMetrics

	err := s.DB.Model(&models.Booking{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&m.Created).Error
	if err != nil {
		return m, err
	}

	err = s.DB.Model(&models.Booking{}).
		Where("actual_check_in >= ? AND actual_check_in < ?", start, end).
		Count(&m.Arrivals).Error
	if err != nil {
		return m, err
	}

	err = s.DB.Model(&models.Booking{}).
		Where("actual_check_out >= ? AND actual_check_out < ?", start, end).
		Count(&m.Departures).Error
	if err != nil {
		return m, err
	}

	// Revenue is recognized on arrival: it sums bookings whose guests
	// actually checked in during the window.
	err = s.DB.Model(&models.Booking{}).
		Select("COALESCE(SUM(total_price), 0)").
		Where("actual_check_in >= ? AND actual_check_in < ?", start, end).
		Scan(&m.Revenue).Error
	return m, err
}

// WeekOverWeek compares [now-7d, now) against [now-14d, now-7d).
func (s *ReportService) WeekOverWeek(now time.Time) (MetricsComparison, error) {
	weekAgo := now.AddDate(0, 0, -7)
	twoWeeksAgo := now.AddDate(0, 0, -14)

	current, err := s.windowMetrics(weekAgo, now)
	if err != nil {
		return MetricsComparison{}, err
	}
	previous, err := s.windowMetrics(twoWeeksAgo, weekAgo)
	if err != nil {
		return MetricsComparison{}, err
	}

	return MetricsComparison{
		Current:          current,
		Previous:         previous,
		CreatedChange:    PercentChange(float64(current.Created), float64(previous.Created)),
		ArrivalsChange:   PercentChange(float64(current.Arrivals), float64(previous.Arrivals)),
		DeparturesChange: PercentChange(float64(current.Departures), float64(previous.Departures)),
		RevenueChange:    PercentChange(float64(current.Revenue), float64(previous.Revenue)),
	}, nil
}

// Occupancy reports, per room type, how many units are consumed by active
// bookings overlapping the single night starting at date.
func (s *ReportService) Occupancy(date time.Time) ([]RoomTypeOccupancy, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	next := day.AddDate(0, 0, 1)

	var types []models.RoomType
	if err := s.DB.Order("id").Find(&types).Error; err != nil {
		return nil, err
	}

	out := make([]RoomTypeOccupancy, 0, len(types))
	for _, rt := range types {
		var booked int64
		err := s.DB.Model(&models.Booking{}).
			Where("room_type_id = ?", rt.ID).
			Where("status IN ?", models.ActiveStatuses()).
			Where("check_in < ? AND check_out > ?", next, day).
			Count(&booked).Error
		if err != nil {
			return nil, err
		}

		out = append(out, RoomTypeOccupancy{
			RoomTypeID: rt.ID,
			Name:       rt.Name,
			TotalUnits: rt.TotalUnits,
			Occupied:   int(booked),
			Available:  clampNonNegative(rt.TotalUnits - int(booked)),
		})
	}
	return out, nil
}
