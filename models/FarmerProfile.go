package models

import "gorm.io/gorm"

type FarmerProfile struct {
	gorm.Model
	UserID            uint   `json:"userID" gorm:"not null;uniqueIndex"` // one profile per user
	User              User   `json:"-" gorm:"foreignKey:UserID"`
	Phone             string `json:"phone"`
	Village           string `json:"village"`
	Taluka            string `json:"taluka"`
	District          string `json:"district"`
	State             string `json:"state"`
	Pincode           string `json:"pincode"`
	PreferredLanguage string `json:"preferredLanguage" gorm:"type:varchar(5);default:en"`
}
