package models

import (
	"time"

	"gorm.io/gorm"
)

// Rental request lifecycle. PENDING is the only state in which chat is open
// and the only state accept/reject/cancel may leave from. COMPLETED is set
// when the renter converts an accepted request into a rent order.
const (
	RequestPending   = "PENDING"
	RequestAccepted  = "ACCEPTED"
	RequestRejected  = "REJECTED"
	RequestCancelled = "CANCELLED"
	RequestCompleted = "COMPLETED"
)

type RentalRequest struct {
	gorm.Model
	EquipmentID         uint      `json:"equipmentID" gorm:"not null;index"`
	Equipment           Equipment `json:"equipment" gorm:"foreignKey:EquipmentID"`
	OwnerID             uint      `json:"ownerID" gorm:"not null;index"`
	Owner               User      `json:"owner" gorm:"foreignKey:OwnerID"`
	RenterID            uint      `json:"renterID" gorm:"not null;index"`
	Renter              User      `json:"renter" gorm:"foreignKey:RenterID"`
	StartDate           time.Time `json:"startDate" gorm:"not null"`
	EndDate             time.Time `json:"endDate" gorm:"not null"`
	ProposedPricePerDay float64   `json:"proposedPricePerDay" gorm:"not null"`
	ShippingCharge      float64   `json:"shippingCharge" gorm:"default:0"` // copied from equipment at creation
	Message             string    `json:"message"`
	Status              string    `json:"status" gorm:"type:varchar(20);default:PENDING;index"`
}

// IsParty reports whether the user is the owner or the renter on the request.
func (r *RentalRequest) IsParty(userID uint) bool {
	return r.OwnerID == userID || r.RenterID == userID
}

// OtherParty returns the counterpart of the given user on the request.
func (r *RentalRequest) OtherParty(userID uint) uint {
	if r.OwnerID == userID {
		return r.RenterID
	}
	return r.OwnerID
}
