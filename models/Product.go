package models

import (
	"golang.org/x/exp/slices"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ProductPending  = "pending"
	ProductApproved = "approved"
	ProductRejected = "rejected"
)

var productCategories = []string{"seed", "pesticide", "fertilizer"}

func ValidProductCategory(category string) bool {
	return slices.Contains(productCategories, category)
}

type Product struct {
	gorm.Model
	SellerID      uint           `json:"sellerID" gorm:"not null;index"`
	Seller        User           `json:"seller" gorm:"foreignKey:SellerID"`
	Name          string         `json:"name" gorm:"not null"`
	Brand         string         `json:"brand"`
	Category      string         `json:"category" gorm:"type:varchar(20);not null"` // seed, pesticide, fertilizer
	Price         float64        `json:"price" gorm:"not null"`
	Stock         int            `json:"stock" gorm:"not null"`
	Images        datatypes.JSON `json:"images"`
	SuitableCrops datatypes.JSON `json:"suitableCrops"` // lowercase crop names, recommendation matching
	SuitableSoil  datatypes.JSON `json:"suitableSoil"`
	Status        string         `json:"status" gorm:"type:varchar(20);default:pending;index"` // pending, approved, rejected
}
