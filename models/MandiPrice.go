package models

import (
	"time"

	"gorm.io/gorm"
)

// Fallbacks applied at insert time; the columns carry no SQL defaults.
const (
	MandiDefaultUnit   = "₹/quintal"
	MandiDefaultSource = "Agmarknet (cached)"
)

// MandiPrice is a cached wholesale commodity price row for a crop+market pair.
// Crop and market are stored lowercase; the latest row by date wins.
type MandiPrice struct {
	gorm.Model
	Crop       string    `json:"crop" gorm:"not null;index:idx_mandi_crop_market"`
	Market     string    `json:"market" gorm:"not null;index:idx_mandi_crop_market"`
	MinPrice   float64   `json:"minPrice" gorm:"not null"`
	MaxPrice   float64   `json:"maxPrice" gorm:"not null"`
	ModalPrice float64   `json:"modalPrice" gorm:"not null"`
	Unit       string    `json:"unit"`
	Source     string    `json:"source"`
	Date       time.Time `json:"date"`
}
