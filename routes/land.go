package routes

import (
	"agrimarket-server/models"
	"agrimarket-server/storage"
	"agrimarket-server/utils"

	"github.com/kataras/iris/v12"
)

type LandInput struct {
	LandName       string  `json:"landName" validate:"required"`
	Area           float64 `json:"area" validate:"required,gt=0"`
	AreaUnit       string  `json:"areaUnit"`
	SoilType       string  `json:"soilType"`
	IrrigationType string  `json:"irrigationType"`
	Crop           string  `json:"crop"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
}

// AddLand records a plot in the farmer's land profile. Soil type and crop
// feed the product recommendation matcher.
func AddLand(ctx iris.Context) {
	claims := utils.GetClaims(ctx)

	var input LandInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if !models.ValidIrrigationType(input.IrrigationType) {
		utils.CreateError(iris.StatusBadRequest, "Invalid irrigation type", ctx)
		return
	}

	areaUnit := input.AreaUnit
	if areaUnit == "" {
		areaUnit = "acre"
	}

	land := models.Land{
		FarmerID:       claims.ID,
		LandName:       input.LandName,
		Area:           input.Area,
		AreaUnit:       areaUnit,
		SoilType:       input.SoilType,
		IrrigationType: input.IrrigationType,
		Crop:           input.Crop,
		Latitude:       input.Latitude,
		Longitude:      input.Longitude,
	}
	if err := storage.DB.Create(&land).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "land": land})
}

func GetMyLands(ctx iris.Context) {
	claims := utils.GetClaims(ctx)

	var lands []models.Land
	if err := storage.DB.Where("farmer_id = ?", claims.ID).
		Order("created_at DESC").
		Find(&lands).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "count": len(lands), "lands": lands})
}

func UpdateLand(ctx iris.Context) {
	claims := utils.GetClaims(ctx)
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Invalid land id", ctx)
		return
	}

	var land models.Land
	if err := storage.DB.First(&land, id).Error; err != nil {
		utils.CreateNotFound(ctx, "Land")
		return
	}
	if land.FarmerID != claims.ID {
		utils.CreateForbidden(ctx)
		return
	}

	var input LandInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if !models.ValidIrrigationType(input.IrrigationType) {
		utils.CreateError(iris.StatusBadRequest, "Invalid irrigation type", ctx)
		return
	}

	land.LandName = input.LandName
	land.Area = input.Area
	if input.AreaUnit != "" {
		land.AreaUnit = input.AreaUnit
	}
	land.SoilType = input.SoilType
	land.IrrigationType = input.IrrigationType
	land.Crop = input.Crop
	land.Latitude = input.Latitude
	land.Longitude = input.Longitude

	if err := storage.DB.Save(&land).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "land": land})
}

func DeleteLand(ctx iris.Context) {
	claims := utils.GetClaims(ctx)
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Invalid land id", ctx)
		return
	}

	var land models.Land
	if err := storage.DB.First(&land, id).Error; err != nil {
		utils.CreateNotFound(ctx, "Land")
		return
	}
	if land.FarmerID != claims.ID {
		utils.CreateForbidden(ctx)
		return
	}

	if err := storage.DB.Delete(&land).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "message": "Land deleted successfully"})
}
