package models

// BookingSequence backs reference allocation: one row per calendar year,
// incremented under a row lock inside the booking create transaction so
// concurrent creates cannot read the same value.
type BookingSequence struct {
	Year    int   `gorm:"primaryKey;autoIncrement:false" json:"year"`
	Counter int64 `gorm:"column:counter" json:"counter"`
}
