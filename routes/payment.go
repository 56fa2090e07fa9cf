package routes

import (
	"fmt"
	"math"
	"strings"

	"agrimarket-server/models"
	"agrimarket-server/services"
	"agrimarket-server/storage"
	"agrimarket-server/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

type OnboardSellerInput struct {
	Phone string `json:"phone"`
}

type CreatePaymentOrderInput struct {
	OrderID uint `json:"orderId" validate:"required"`
}

type VerifyPaymentInput struct {
	RazorpayOrderID   string `json:"razorpayOrderId" validate:"required"`
	RazorpayPaymentID string `json:"razorpayPaymentId" validate:"required"`
	RazorpaySignature string `json:"razorpaySignature" validate:"required"`
}

// OnboardSeller registers the seller as a Razorpay linked account so captured
// payments can be split their way. In test mode a mock account id is issued so
// the rest of the flow works without live onboarding.
func OnboardSeller(ctx iris.Context) {
	claims := utils.GetClaims(ctx)

	var user models.User
	if err := storage.DB.First(&user, claims.ID).Error; err != nil {
		utils.CreateNotFound(ctx, "User")
		return
	}
	if user.RazorpayAccountID != "" {
		ctx.JSON(iris.Map{"success": true, "razorpayAccountId": user.RazorpayAccountID, "message": "Already onboarded"})
		return
	}

	var input OnboardSellerInput
	ctx.ReadJSON(&input)

	accountID := ""
	if services.RazorpayConfigured() && !services.RazorpayTestMode() {
		id, err := services.CreateLinkedAccount(user.Name, user.Email, input.Phone)
		if err != nil {
			utils.CreateError(iris.StatusBadGateway, "Payment provider onboarding failed", ctx)
			return
		}
		accountID = id
	} else {
		accountID = fmt.Sprintf("acc_mock_%d", user.ID)
	}

	if err := storage.DB.Model(&user).Update("razorpay_account_id", accountID).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "razorpayAccountId": accountID})
}

// CreatePaymentOrder opens a gateway order for an order awaiting online
// payment. 95% of the amount is routed to the seller's linked account; mock
// accounts from dev onboarding get no transfer leg.
func CreatePaymentOrder(ctx iris.Context) {
	claims := utils.GetClaims(ctx)

	if !services.RazorpayConfigured() {
		utils.CreateError(iris.StatusServiceUnavailable, "Payment service not configured", ctx)
		return
	}

	var input CreatePaymentOrderInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var order models.Order
	if err := storage.DB.First(&order, input.OrderID).Error; err != nil {
		utils.CreateNotFound(ctx, "Order")
		return
	}

	payerID := uint(0)
	if order.FarmerID != nil {
		payerID = *order.FarmerID
	} else if order.RenterID != nil {
		payerID = *order.RenterID
	}
	if payerID != claims.ID {
		utils.CreateError(iris.StatusForbidden, "Not authorized to pay for this order", ctx)
		return
	}
	if order.Status != models.OrderPendingPayment {
		utils.CreateError(iris.StatusBadRequest, "Order is not awaiting payment", ctx)
		return
	}

	amountPaise := int64(math.Round(order.Amount * 100))

	var transfers []services.RazorpayTransfer
	var seller models.User
	if err := storage.DB.First(&seller, order.SellerID).Error; err == nil &&
		seller.RazorpayAccountID != "" &&
		!strings.HasPrefix(seller.RazorpayAccountID, "acc_mock_") {
		transfers = append(transfers, services.RazorpayTransfer{
			Account:  seller.RazorpayAccountID,
			Amount:   amountPaise * 95 / 100,
			Currency: "INR",
		})
	}

	receipt := fmt.Sprintf("order_%d", order.ID)
	rzpOrder, err := services.CreateRazorpayOrder(amountPaise, receipt, transfers)
	if err != nil {
		utils.CreateError(iris.StatusBadGateway, "Failed to create payment order", ctx)
		return
	}

	payment := models.Payment{
		OrderID:         order.ID,
		PayerID:         claims.ID,
		Amount:          order.Amount,
		RazorpayOrderID: rzpOrder.ID,
		Status:          models.PaymentCreated,
	}
	if err := storage.DB.Create(&payment).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{
		"success":         true,
		"razorpayOrderId": rzpOrder.ID,
		"amount":          rzpOrder.Amount,
		"currency":        rzpOrder.Currency,
		"paymentID":       payment.ID,
	})
}

// VerifyPayment checks the checkout callback signature and, on success,
// settles the payment and confirms the order. A rent order locks its
// equipment here in case the conversion-time lock was somehow reverted.
func VerifyPayment(ctx iris.Context) {
	claims := utils.GetClaims(ctx)

	var input VerifyPaymentInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var payment models.Payment
	if err := storage.DB.Where("razorpay_order_id = ?", input.RazorpayOrderID).First(&payment).Error; err != nil {
		utils.CreateNotFound(ctx, "Payment")
		return
	}
	if payment.PayerID != claims.ID {
		utils.CreateForbidden(ctx)
		return
	}
	if payment.Status == models.PaymentPaid {
		ctx.JSON(iris.Map{"success": true, "message": "Payment already verified"})
		return
	}

	// A forged signature is a hard reject: no state changes at all.
	if !services.VerifyRazorpaySignature(input.RazorpayOrderID, input.RazorpayPaymentID, input.RazorpaySignature) {
		utils.CreateError(iris.StatusBadRequest, "Invalid payment signature", ctx)
		return
	}

	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&payment).Updates(map[string]interface{}{
			"razorpay_payment_id": input.RazorpayPaymentID,
			"razorpay_signature":  input.RazorpaySignature,
			"status":              models.PaymentPaid,
		}).Error; err != nil {
			return err
		}

		var order models.Order
		if err := tx.First(&order, payment.OrderID).Error; err != nil {
			return err
		}
		if err := tx.Model(&order).Update("status", models.OrderConfirmed).Error; err != nil {
			return err
		}

		if order.OrderType == models.OrderTypeRent && order.EquipmentID != nil {
			return tx.Model(&models.Equipment{}).
				Where("id = ?", *order.EquipmentID).
				Update("availability", false).Error
		}
		return nil
	})
	if txErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "message": "Payment verified successfully"})
}
