package models

import (
	"golang.org/x/exp/slices"

	"gorm.io/gorm"
)

var irrigationTypes = []string{"rainfed", "canal", "drip", "borewell"}

func ValidIrrigationType(t string) bool {
	return t == "" || slices.Contains(irrigationTypes, t)
}

type Land struct {
	gorm.Model
	FarmerID       uint    `json:"farmerID" gorm:"not null;index"`
	Farmer         User    `json:"-" gorm:"foreignKey:FarmerID"`
	LandName       string  `json:"landName" gorm:"not null"`
	Area           float64 `json:"area" gorm:"not null"`
	AreaUnit       string  `json:"areaUnit" gorm:"type:varchar(10);default:acre"` // acre, hectare
	SoilType       string  `json:"soilType"`
	IrrigationType string  `json:"irrigationType" gorm:"type:varchar(10)"` // rainfed, canal, drip, borewell
	Crop           string  `json:"crop"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
}
