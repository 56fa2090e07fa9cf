package routes

import (
	"errors"
	"math"

	"agrimarket-server/models"
	"agrimarket-server/storage"
	"agrimarket-server/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

type CreateRentOrderInput struct {
	RentalRequestID uint   `json:"rentalRequestId" validate:"required"`
	PaymentMethod   string `json:"paymentMethod"`
	ShippingAddress string `json:"shippingAddress" validate:"required"`
}

var (
	errRequestNotAccepted = errors.New("rental request is not accepted")
	errNotRenter          = errors.New("not the renter")
	errAlreadyConverted   = errors.New("rent order already created for this request")
)

// rentTotalDays is the inclusive day count of a rental period:
// ceil(end-start in days) + 1, so a Jan 1 - Jan 3 rental is 3 days.
func rentTotalDays(rentalRequest *models.RentalRequest) int {
	diff := rentalRequest.EndDate.Sub(rentalRequest.StartDate)
	return int(math.Ceil(diff.Hours()/24)) + 1
}

// CreateRentOrder converts an accepted rental request into a binding rent
// order. Order insert, equipment lock and request completion commit in one
// transaction so a mid-sequence failure cannot strand partial state.
func CreateRentOrder(ctx iris.Context) {
	claims := utils.GetClaims(ctx)

	var input CreateRentOrderInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	paymentMethod := input.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = models.PaymentMethodOnline
	}
	if paymentMethod != models.PaymentMethodCOD && paymentMethod != models.PaymentMethodOnline {
		utils.CreateError(iris.StatusBadRequest, "Invalid payment method", ctx)
		return
	}

	var order models.Order
	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		var rentalRequest models.RentalRequest
		if err := tx.First(&rentalRequest, input.RentalRequestID).Error; err != nil {
			return err
		}
		if rentalRequest.Status != models.RequestAccepted {
			return errRequestNotAccepted
		}
		if rentalRequest.RenterID != claims.ID {
			return errNotRenter
		}

		var existingCount int64
		tx.Model(&models.Order{}).Where("rental_request_id = ?", rentalRequest.ID).Count(&existingCount)
		if existingCount > 0 {
			return errAlreadyConverted
		}

		totalDays := rentTotalDays(&rentalRequest)
		amount := float64(totalDays)*rentalRequest.ProposedPricePerDay + rentalRequest.ShippingCharge

		startDate := rentalRequest.StartDate
		endDate := rentalRequest.EndDate
		order = models.Order{
			OrderType:       models.OrderTypeRent,
			RenterID:        &rentalRequest.RenterID,
			EquipmentID:     &rentalRequest.EquipmentID,
			RentalRequestID: &rentalRequest.ID,
			RentalStartDate: &startDate,
			RentalEndDate:   &endDate,
			TotalDays:       totalDays,
			PricePerDay:     rentalRequest.ProposedPricePerDay,
			ShippingCharge:  rentalRequest.ShippingCharge,
			SellerID:        rentalRequest.OwnerID,
			Amount:          amount,
			PaymentMethod:   paymentMethod,
			ShippingAddress: input.ShippingAddress,
			Status:          models.OrderPendingPayment,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		// Lock the equipment against further rentals.
		if err := tx.Model(&models.Equipment{}).
			Where("id = ?", rentalRequest.EquipmentID).
			Update("availability", false).Error; err != nil {
			return err
		}

		return tx.Model(&models.RentalRequest{}).
			Where("id = ?", rentalRequest.ID).
			Update("status", models.RequestCompleted).Error
	})

	switch {
	case txErr == nil:
	case errors.Is(txErr, gorm.ErrRecordNotFound):
		utils.CreateNotFound(ctx, "Rental request")
		return
	case errors.Is(txErr, errRequestNotAccepted):
		utils.CreateError(iris.StatusBadRequest, "Rental request is not accepted", ctx)
		return
	case errors.Is(txErr, errNotRenter):
		utils.CreateForbidden(ctx)
		return
	case errors.Is(txErr, errAlreadyConverted):
		utils.CreateError(iris.StatusBadRequest, "Rent order already created for this request", ctx)
		return
	default:
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "order": order})
}
