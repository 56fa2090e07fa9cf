package routes

import (
	"time"

	"agrimarket-server/models"
	"agrimarket-server/storage"
	"agrimarket-server/utils"

	"github.com/kataras/iris/v12"
)

type CreateRentalRequestInput struct {
	EquipmentID         uint    `json:"equipmentId" validate:"required"`
	StartDate           string  `json:"startDate" validate:"required"`
	EndDate             string  `json:"endDate" validate:"required"`
	ProposedPricePerDay float64 `json:"proposedPricePerDay" validate:"required,gt=0"`
	Message             string  `json:"message"`
}

// CreateRentalRequest opens a negotiation: the renter proposes a date range
// and price for available equipment they do not own. The equipment's shipping
// charge is copied onto the request so later conversion is insulated from
// listing edits.
func CreateRentalRequest(ctx iris.Context) {
	claims := utils.GetClaims(ctx)

	var input CreateRentalRequestInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	startDate, err := time.Parse("2006-01-02", input.StartDate)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Invalid startDate format, expected YYYY-MM-DD", ctx)
		return
	}
	endDate, err := time.Parse("2006-01-02", input.EndDate)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Invalid endDate format, expected YYYY-MM-DD", ctx)
		return
	}
	if endDate.Before(startDate) {
		utils.CreateError(iris.StatusBadRequest, "endDate must not be before startDate", ctx)
		return
	}

	var equipment models.Equipment
	if err := storage.DB.First(&equipment, input.EquipmentID).Error; err != nil {
		utils.CreateNotFound(ctx, "Equipment")
		return
	}
	if !equipment.Availability || !equipment.Approved {
		utils.CreateError(iris.StatusNotFound, "Equipment not available", ctx)
		return
	}

	if equipment.OwnerID == claims.ID {
		utils.CreateError(iris.StatusForbidden, "You cannot rent your own equipment", ctx)
		return
	}

	rentalRequest := models.RentalRequest{
		EquipmentID:         equipment.ID,
		OwnerID:             equipment.OwnerID,
		RenterID:            claims.ID,
		StartDate:           startDate,
		EndDate:             endDate,
		ProposedPricePerDay: input.ProposedPricePerDay,
		ShippingCharge:      equipment.ShippingCharge,
		Message:             input.Message,
		Status:              models.RequestPending,
	}
	if err := storage.DB.Create(&rentalRequest).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "rentalRequest": rentalRequest})
}

// resolveRentalRequest is the owner-side PENDING -> ACCEPTED/REJECTED
// transition. The status change is a compare-and-swap on the PENDING state so
// two racing resolutions cannot both win.
func resolveRentalRequest(ctx iris.Context, newStatus string) {
	claims := utils.GetClaims(ctx)
	requestID, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Invalid request id", ctx)
		return
	}

	var rentalRequest models.RentalRequest
	if err := storage.DB.First(&rentalRequest, requestID).Error; err != nil {
		utils.CreateNotFound(ctx, "Rental request")
		return
	}

	if rentalRequest.OwnerID != claims.ID {
		utils.CreateForbidden(ctx)
		return
	}

	if newStatus == models.RequestAccepted {
		// The owner's acceptance is the scarcity gate: once the equipment is
		// locked by a converted order, later acceptances must fail.
		var equipment models.Equipment
		if err := storage.DB.First(&equipment, rentalRequest.EquipmentID).Error; err == nil && !equipment.Availability {
			utils.CreateError(iris.StatusConflict, "Equipment is no longer available", ctx)
			return
		}
	}

	result := storage.DB.Model(&models.RentalRequest{}).
		Where("id = ? AND status = ?", requestID, models.RequestPending).
		Update("status", newStatus)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if result.RowsAffected == 0 {
		utils.CreateError(iris.StatusConflict, "Rental request already processed", ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "message": "Rental request " + statusWord(newStatus)})
}

func statusWord(status string) string {
	switch status {
	case models.RequestAccepted:
		return "accepted"
	case models.RequestRejected:
		return "rejected"
	case models.RequestCancelled:
		return "cancelled"
	}
	return status
}

func AcceptRentalRequest(ctx iris.Context) {
	resolveRentalRequest(ctx, models.RequestAccepted)
}

func RejectRentalRequest(ctx iris.Context) {
	resolveRentalRequest(ctx, models.RequestRejected)
}

// CancelRentalRequest withdraws a still-pending negotiation. Renter only;
// resolved requests cannot be cancelled.
func CancelRentalRequest(ctx iris.Context) {
	claims := utils.GetClaims(ctx)
	requestID, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Invalid request id", ctx)
		return
	}

	var rentalRequest models.RentalRequest
	if err := storage.DB.First(&rentalRequest, requestID).Error; err != nil {
		utils.CreateNotFound(ctx, "Rental request")
		return
	}
	if rentalRequest.RenterID != claims.ID {
		utils.CreateForbidden(ctx)
		return
	}

	result := storage.DB.Model(&models.RentalRequest{}).
		Where("id = ? AND status = ?", requestID, models.RequestPending).
		Update("status", models.RequestCancelled)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if result.RowsAffected == 0 {
		utils.CreateError(iris.StatusConflict, "Rental request already processed", ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "message": "Rental request cancelled"})
}

// listRentalRequests returns the user's requests from one side of the table
// along with per-request unread message counts for notification badges.
func listRentalRequests(ctx iris.Context, column string) {
	claims := utils.GetClaims(ctx)

	var requests []models.RentalRequest
	if err := storage.DB.Where(column+" = ?", claims.ID).
		Preload("Equipment").
		Preload("Owner").
		Preload("Renter").
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	out := make([]iris.Map, 0, len(requests))
	for _, request := range requests {
		var unreadCount int64
		storage.DB.Model(&models.ChatMessage{}).
			Where("rental_request_id = ? AND receiver_id = ? AND read = ?", request.ID, claims.ID, false).
			Count(&unreadCount)
		out = append(out, iris.Map{
			"request":     request,
			"unreadCount": unreadCount,
		})
	}

	ctx.JSON(iris.Map{"success": true, "requests": out})
}

func GetOwnerRentalRequests(ctx iris.Context) {
	listRentalRequests(ctx, "owner_id")
}

func GetRenterRentalRequests(ctx iris.Context) {
	listRentalRequests(ctx, "renter_id")
}
