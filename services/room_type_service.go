package services

import (
	"errors"
	"strconv"
	"strings"

	"roomdesk-backend/models"

	"gorm.io/gorm"
)

type RoomTypeService struct {
	DB *gorm.DB
}

func NewRoomTypeService(db *gorm.DB) *RoomTypeService {
	return &RoomTypeService{DB: db}
}

// GenerateUnitsFromRange produces one unit per integer in [start, end]
// inclusive, labelled prefix+number. Floor is number/100 when that is
// positive (so "101" lands on floor 1, "7" has no floor). start > end
// generates nothing.
func GenerateUnitsFromRange(start, end int, prefix string) []models.RoomUnit {
	if start > end {
		return nil
	}
	units := make([]models.RoomUnit, 0, end-start+1)
	for n := start; n <= end; n++ {
		u := models.RoomUnit{Label: prefix + strconv.Itoa(n)}
		if f := n / 100; f > 0 {
			u.Floor = &f
		}
		units = append(units, u)
	}
	return units
}

// applyDerived enforces the inventory invariants before any save: a
// supplied range overwrites the manual unit list, and total_units is
// always len(units) — the client-sent value is discarded.
func applyDerived(rt *models.RoomType) {
	if rt.StartNumber != 0 || rt.EndNumber != 0 {
		if generated := GenerateUnitsFromRange(rt.StartNumber, rt.EndNumber, rt.UnitPrefix); generated != nil {
			rt.Units = generated
		}
	}
	for i := range rt.Units {
		rt.Units[i].Label = strings.TrimSpace(rt.Units[i].Label)
	}
	rt.TotalUnits = len(rt.Units)
}

func validateRoomType(rt *models.RoomType) error {
	if strings.TrimSpace(rt.Name) == "" {
		return ValidationError{Field: "name", Msg: "required"}
	}
	if rt.PricePerNight < 0 {
		return ValidationError{Field: "pricePerNight", Msg: "must not be negative"}
	}
	seen := make(map[string]bool, len(rt.Units))
	for _, u := range rt.Units {
		label := strings.TrimSpace(u.Label)
		if label == "" {
			return ValidationError{Field: "units", Msg: "unit label must not be empty"}
		}
		if seen[label] {
			return ValidationError{Field: "units", Msg: "duplicate unit label " + label}
		}
		seen[label] = true
	}
	return nil
}

func (s *RoomTypeService) Create(rt *models.RoomType) error {
	applyDerived(rt)
	if err := validateRoomType(rt); err != nil {
		return err
	}
	return s.DB.Create(rt).Error
}

// Update replaces the room type row and its unit list wholesale. Units
// have no lifecycle of their own, so the stored set is dropped and
// recreated rather than diffed.
func (s *RoomTypeService) Update(rt *models.RoomType) error {
	if rt.ID == 0 {
		return ValidationError{Field: "id", Msg: "required"}
	}
	applyDerived(rt)
	if err := validateRoomType(rt); err != nil {
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.RoomType
		if err := tx.First(&existing, rt.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundError{Resource: "room type"}
			}
			return err
		}

		if err := tx.Where("room_type_id = ?", rt.ID).Delete(&models.RoomUnit{}).Error; err != nil {
			return err
		}
		units := rt.Units
		rt.Units = nil
		if err := tx.Model(&models.RoomType{}).Where("id = ?", rt.ID).
			Select("name", "category", "description", "price_per_night", "total_units",
				"square_meters", "bed_config", "max_guests", "amenities",
				"unit_prefix", "start_number", "end_number").
			Updates(rt).Error; err != nil {
			return err
		}
		for i := range units {
			units[i].ID = 0
			units[i].RoomTypeID = rt.ID
		}
		if len(units) > 0 {
			if err := tx.Create(&units).Error; err != nil {
				return err
			}
		}
		rt.Units = units
		return nil
	})
}

func (s *RoomTypeService) GetByID(id uint) (*models.RoomType, error) {
	var rt models.RoomType
	if err := s.DB.Preload("Units").First(&rt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError{Resource: "room type"}
		}
		return nil, err
	}
	return &rt, nil
}

func (s *RoomTypeService) GetAll() ([]models.RoomType, error) {
	var types []models.RoomType
	if err := s.DB.Preload("Units").Order("id").Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

func (s *RoomTypeService) Delete(id uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_type_id = ?", id).Delete(&models.RoomUnit{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.RoomType{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return NotFoundError{Resource: "room type"}
		}
		return nil
	})
}
