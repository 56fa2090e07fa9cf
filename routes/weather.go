package routes

import (
	"agrimarket-server/services"
	"agrimarket-server/utils"

	"github.com/kataras/iris/v12"
)

// GetWeather proxies current weather for the farmer's city.
func GetWeather(ctx iris.Context) {
	city := ctx.URLParam("city")
	if city == "" {
		utils.CreateError(iris.StatusBadRequest, "city query parameter is required", ctx)
		return
	}

	weather, err := services.FetchCurrentWeather(city)
	if err != nil {
		utils.CreateError(iris.StatusBadGateway, "Failed to fetch weather data", ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "weather": weather})
}
