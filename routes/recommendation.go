package routes

import (
	"encoding/json"
	"strings"

	"agrimarket-server/models"
	"agrimarket-server/storage"
	"agrimarket-server/utils"

	"github.com/kataras/iris/v12"
)

func decodeList(raw []byte) []string {
	var items []string
	json.Unmarshal(raw, &items)
	return items
}

func containsFold(items []string, target string) bool {
	for _, item := range items {
		if strings.EqualFold(item, target) {
			return true
		}
	}
	return false
}

// GetRecommendations matches approved products against the farmer's recorded
// lands. A product is recommended when its suitable crops include a land's
// crop or its suitable soils include a land's soil type. Each hit carries the
// reason so the client can explain the suggestion.
func GetRecommendations(ctx iris.Context) {
	claims := utils.GetClaims(ctx)

	var lands []models.Land
	if err := storage.DB.Where("farmer_id = ?", claims.ID).Find(&lands).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if len(lands) == 0 {
		ctx.JSON(iris.Map{
			"success":         true,
			"message":         "Add your land details to get personalized recommendations",
			"recommendations": []iris.Map{},
		})
		return
	}

	var products []models.Product
	if err := storage.DB.Where("status = ?", models.ProductApproved).
		Preload("Seller").
		Find(&products).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	recommendations := []iris.Map{}
	for _, product := range products {
		crops := decodeList(product.SuitableCrops)
		soils := decodeList(product.SuitableSoil)

		for _, land := range lands {
			reasons := []string{}
			if land.Crop != "" && containsFold(crops, land.Crop) {
				reasons = append(reasons, "suitable for your "+strings.ToLower(land.Crop)+" crop")
			}
			if land.SoilType != "" && containsFold(soils, land.SoilType) {
				reasons = append(reasons, "works in "+strings.ToLower(land.SoilType)+" soil")
			}
			if len(reasons) == 0 {
				continue
			}

			recommendations = append(recommendations, iris.Map{
				"product": product,
				"land":    land.LandName,
				"reason":  strings.Join(reasons, ", "),
			})
			break
		}
	}

	ctx.JSON(iris.Map{"success": true, "count": len(recommendations), "recommendations": recommendations})
}
