package models

import (
	"golang.org/x/exp/slices"

	"gorm.io/gorm"
)

const (
	RoleFarmer = "farmer"
	RoleSeller = "seller"
	RoleBuyer  = "buyer"
	RoleAdmin  = "admin"
)

const (
	VerificationPending  = "pending"
	VerificationApproved = "approved"
	VerificationRejected = "rejected"
)

var userRoles = []string{RoleFarmer, RoleSeller, RoleBuyer, RoleAdmin}

func ValidRole(role string) bool {
	return slices.Contains(userRoles, role)
}

func ValidVerificationStatus(status string) bool {
	return slices.Contains([]string{VerificationPending, VerificationApproved, VerificationRejected}, status)
}

type User struct {
	gorm.Model
	Name               string `json:"name"`
	Email              string `json:"email" gorm:"uniqueIndex"`
	Password           string `json:"-"`
	Role               string `json:"role" gorm:"type:varchar(20);default:farmer;index"` // farmer, seller, buyer, admin
	VerificationStatus string `json:"verificationStatus" gorm:"type:varchar(20)"`        // pending, approved, rejected
	RazorpayAccountID  string `json:"razorpayAccountId"`
}
