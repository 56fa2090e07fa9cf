package models

import "time"

// ChatMessage is a negotiation message tied to a rental request. Receiver is
// always the other party of the request at send time. Read flips to true when
// the receiver fetches the history.
type ChatMessage struct {
	ID              uint          `json:"id" gorm:"primaryKey"`
	RentalRequestID uint          `json:"rentalRequestID" gorm:"not null;index"`
	RentalRequest   RentalRequest `json:"-" gorm:"foreignKey:RentalRequestID"`

	SenderID   uint `json:"senderID" gorm:"not null;index"`
	Sender     User `json:"sender" gorm:"foreignKey:SenderID"`
	ReceiverID uint `json:"receiverID" gorm:"not null;index"`

	Message string `json:"message" gorm:"type:text;not null"`
	Read    bool   `json:"read" gorm:"default:false;index"`

	CreatedAt time.Time `json:"createdAt"`
}
