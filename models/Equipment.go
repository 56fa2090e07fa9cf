package models

import (
	"golang.org/x/exp/slices"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var equipmentCategories = []string{"tractor", "harvester", "rotavator", "sprayer", "other"}

func ValidEquipmentCategory(category string) bool {
	return slices.Contains(equipmentCategories, category)
}

type Equipment struct {
	gorm.Model
	OwnerID           uint           `json:"ownerID" gorm:"not null;index"`
	Owner             User           `json:"owner" gorm:"foreignKey:OwnerID"`
	Name              string         `json:"name" gorm:"not null"`
	Category          string         `json:"category" gorm:"type:varchar(20);not null"` // tractor, harvester, rotavator, sprayer, other
	Description       string         `json:"description" gorm:"type:text"`
	Images            datatypes.JSON `json:"images"`
	PricePerDay       float64        `json:"pricePerDay" gorm:"not null"`
	MinimumRentalDays int            `json:"minimumRentalDays" gorm:"default:1"`
	ShippingCharge    float64        `json:"shippingCharge" gorm:"default:0"`
	Negotiable        bool           `json:"negotiable"`
	Availability      bool           `json:"availability" gorm:"index"`
	Location          string         `json:"location"`
	Approved          bool           `json:"approved" gorm:"index"` // listings wait for admin approval
}
