package models

import "gorm.io/gorm"

const (
	PaymentCreated = "CREATED"
	PaymentPaid    = "PAID"
	PaymentFailed  = "FAILED"
)

type Payment struct {
	gorm.Model
	OrderID uint  `json:"orderID" gorm:"not null;index"`
	Order   Order `json:"-" gorm:"foreignKey:OrderID"`

	PayerID uint `json:"payerID" gorm:"not null;index"`
	Payer   User `json:"-" gorm:"foreignKey:PayerID"`

	Amount            float64 `json:"amount" gorm:"not null"`
	RazorpayOrderID   string  `json:"razorpayOrderId" gorm:"index"`
	RazorpayPaymentID string  `json:"razorpayPaymentId"`
	RazorpaySignature string  `json:"-"`
	Status            string  `json:"status" gorm:"type:varchar(10);default:CREATED"` // CREATED, PAID, FAILED
}
