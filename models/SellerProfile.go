package models

import "gorm.io/gorm"

type SellerProfile struct {
	gorm.Model
	UserID             uint   `json:"userID" gorm:"not null;uniqueIndex"` // one profile per user
	User               User   `json:"user" gorm:"foreignKey:UserID"`
	BusinessName       string `json:"businessName" gorm:"not null"`
	LicenseNumber      string `json:"licenseNumber"`
	Address            string `json:"address"`
	VerificationStatus string `json:"verificationStatus" gorm:"type:varchar(20);default:pending"` // pending, approved, rejected
}
