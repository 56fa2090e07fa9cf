package models

import (
	"time"

	"golang.org/x/exp/slices"

	"gorm.io/gorm"
)

const (
	OrderTypeBuy  = "BUY"
	OrderTypeRent = "RENT"
)

const (
	PaymentMethodCOD    = "COD"
	PaymentMethodOnline = "ONLINE"
)

const (
	OrderPlaced         = "PLACED"
	OrderPendingPayment = "PENDING_PAYMENT"
	OrderConfirmed      = "CONFIRMED"
	OrderShipped        = "SHIPPED"
	OrderDelivered      = "DELIVERED"
	OrderCancelled      = "CANCELLED"
)

// Legal order status transitions. Cancellation is only possible before the
// seller confirms; PENDING_PAYMENT -> CONFIRMED is reserved for payment
// verification.
var orderTransitions = map[string][]string{
	OrderPlaced:         {OrderConfirmed, OrderCancelled},
	OrderPendingPayment: {OrderConfirmed, OrderCancelled},
	OrderConfirmed:      {OrderShipped},
	OrderShipped:        {OrderDelivered},
}

// CanTransitionOrder reports whether an order may move from one status to
// another. Unknown statuses never transition.
func CanTransitionOrder(from, to string) bool {
	return slices.Contains(orderTransitions[from], to)
}

// OrderCancellable reports whether an order in the given status may still be
// cancelled by the buyer.
func OrderCancellable(status string) bool {
	return status == OrderPlaced || status == OrderPendingPayment
}

type Order struct {
	gorm.Model
	OrderType string `json:"orderType" gorm:"type:varchar(10);default:BUY"` // BUY, RENT

	// BUY fields
	FarmerID     *uint    `json:"farmerID" gorm:"index"`
	Farmer       *User    `json:"farmer,omitempty" gorm:"foreignKey:FarmerID"`
	ProductID    *uint    `json:"productID" gorm:"index"`
	Product      *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Quantity     int      `json:"quantity"`
	PriceAtOrder float64  `json:"priceAtOrder"`

	// RENT fields
	RenterID        *uint          `json:"renterID" gorm:"index"`
	Renter          *User          `json:"renter,omitempty" gorm:"foreignKey:RenterID"`
	EquipmentID     *uint          `json:"equipmentID" gorm:"index"`
	Equipment       *Equipment     `json:"equipment,omitempty" gorm:"foreignKey:EquipmentID"`
	RentalRequestID *uint          `json:"rentalRequestID" gorm:"uniqueIndex"` // at most one order per request
	RentalRequest   *RentalRequest `json:"rentalRequest,omitempty" gorm:"foreignKey:RentalRequestID"`
	RentalStartDate *time.Time     `json:"rentalStartDate"`
	RentalEndDate   *time.Time     `json:"rentalEndDate"`
	TotalDays       int            `json:"totalDays"`
	PricePerDay     float64        `json:"pricePerDay"`
	ShippingCharge  float64        `json:"shippingCharge"`

	// common
	SellerID        uint    `json:"sellerID" gorm:"not null;index"`
	Seller          User    `json:"seller" gorm:"foreignKey:SellerID"`
	Amount          float64 `json:"amount" gorm:"not null"`
	PaymentMethod   string  `json:"paymentMethod" gorm:"type:varchar(10);default:COD"` // COD, ONLINE
	ShippingAddress string  `json:"shippingAddress"`
	Status          string  `json:"status" gorm:"type:varchar(20);default:PLACED;index"`
}
