package routes

import (
	"errors"

	"agrimarket-server/models"
	"agrimarket-server/storage"
	"agrimarket-server/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

type FarmerProfileInput struct {
	Phone             string `json:"phone"`
	Village           string `json:"village"`
	Taluka            string `json:"taluka"`
	District          string `json:"district"`
	State             string `json:"state"`
	Pincode           string `json:"pincode"`
	PreferredLanguage string `json:"preferredLanguage"`
}

// UpsertFarmerProfile creates or updates the caller's farmer profile. One
// profile per user.
func UpsertFarmerProfile(ctx iris.Context) {
	claims := utils.GetClaims(ctx)

	var input FarmerProfileInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	language := input.PreferredLanguage
	switch language {
	case "", "en", "hi", "mr":
	default:
		utils.CreateError(iris.StatusBadRequest, "Unsupported language, expected en, hi or mr", ctx)
		return
	}

	var profile models.FarmerProfile
	err := storage.DB.Where("user_id = ?", claims.ID).First(&profile).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.CreateInternalServerError(ctx)
		return
	}

	profile.UserID = claims.ID
	profile.Phone = input.Phone
	profile.Village = input.Village
	profile.Taluka = input.Taluka
	profile.District = input.District
	profile.State = input.State
	profile.Pincode = input.Pincode
	if language != "" {
		profile.PreferredLanguage = language
	}

	if err := storage.DB.Save(&profile).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "profile": profile})
}

func GetFarmerProfile(ctx iris.Context) {
	claims := utils.GetClaims(ctx)

	var profile models.FarmerProfile
	if err := storage.DB.Where("user_id = ?", claims.ID).First(&profile).Error; err != nil {
		utils.CreateNotFound(ctx, "Farmer profile")
		return
	}

	ctx.JSON(iris.Map{"success": true, "profile": profile})
}
