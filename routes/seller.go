package routes

import (
	"errors"

	"agrimarket-server/models"
	"agrimarket-server/storage"
	"agrimarket-server/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

type SellerApplicationInput struct {
	BusinessName  string `json:"businessName" validate:"required"`
	LicenseNumber string `json:"licenseNumber"`
	Address       string `json:"address"`
}

// ApplyAsSeller files or refreshes a seller application. A rejected applicant
// may re-apply, which resets the profile back to pending review.
func ApplyAsSeller(ctx iris.Context) {
	claims := utils.GetClaims(ctx)

	var input SellerApplicationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var profile models.SellerProfile
	err := storage.DB.Where("user_id = ?", claims.ID).First(&profile).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.CreateInternalServerError(ctx)
		return
	}
	if err == nil && profile.VerificationStatus == models.VerificationApproved {
		utils.CreateError(iris.StatusConflict, "Seller application already approved", ctx)
		return
	}

	profile.UserID = claims.ID
	profile.BusinessName = input.BusinessName
	profile.LicenseNumber = input.LicenseNumber
	profile.Address = input.Address
	profile.VerificationStatus = models.VerificationPending

	if err := storage.DB.Save(&profile).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	storage.DB.Model(&models.User{}).
		Where("id = ?", claims.ID).
		Update("verification_status", models.VerificationPending)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "message": "Seller application submitted", "profile": profile})
}

func GetSellerProfile(ctx iris.Context) {
	claims := utils.GetClaims(ctx)

	var profile models.SellerProfile
	if err := storage.DB.Where("user_id = ?", claims.ID).First(&profile).Error; err != nil {
		utils.CreateNotFound(ctx, "Seller profile")
		return
	}

	ctx.JSON(iris.Map{"success": true, "profile": profile})
}
