package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Room categories offered by the property.
const (
	CategoryStandard = "standard"
	CategorySuperior = "superior"
	CategoryDeluxe   = "deluxe"
	CategorySuite    = "suite"
)

type RoomType struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name        string `gorm:"size:150" json:"name"`
	Category    string `gorm:"size:50;default:standard" json:"category"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	// Price per night in minor currency units (e.g. satang, cents).
	PricePerNight int64 `gorm:"column:price_per_night" json:"pricePerNight"`

	// Derived: recomputed as len(Units) on every save via the service layer.
	TotalUnits int `gorm:"column:total_units" json:"totalUnits"`

	SquareMeters int    `gorm:"column:square_meters" json:"squareMeters,omitempty"`
	BedConfig    string `gorm:"size:100" json:"bedConfig,omitempty"`
	MaxGuests    int    `gorm:"default:2" json:"maxGuests"`

	Amenities datatypes.JSON `json:"amenities,omitempty"`

	// When a valid range (start <= end, not both zero) is supplied, the
	// generated units replace whatever unit list was entered manually.
	UnitPrefix  string `gorm:"size:20" json:"unitPrefix,omitempty"`
	StartNumber int    `gorm:"column:start_number" json:"startNumber,omitempty"`
	EndNumber   int    `gorm:"column:end_number" json:"endNumber,omitempty"`

	Units []RoomUnit `gorm:"foreignKey:RoomTypeID" json:"units"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// RoomUnit is one physical, individually assignable room. It has no
// lifecycle of its own: units are replaced wholesale when their RoomType
// is saved.
type RoomUnit struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	RoomTypeID uint `gorm:"index;column:room_type_id" json:"roomTypeId"`

	Label string `gorm:"column:label;size:50" json:"label"`
	Floor *int   `gorm:"column:floor" json:"floor,omitempty"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// UnitLabels returns the labels of all units in declaration order.
func (rt *RoomType) UnitLabels() []string {
	labels := make([]string, 0, len(rt.Units))
	for _, u := range rt.Units {
		labels = append(labels, u.Label)
	}
	return labels
}

// HasUnit reports whether label names one of this type's physical rooms.
func (rt *RoomType) HasUnit(label string) bool {
	for _, u := range rt.Units {
		if u.Label == label {
			return true
		}
	}
	return false
}
