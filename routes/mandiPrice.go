package routes

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"agrimarket-server/models"
	"agrimarket-server/storage"
	"agrimarket-server/utils"

	"github.com/kataras/iris/v12"
)

const mandiCacheTTL = 6 * time.Hour

// GetMandiPrice serves the latest cached wholesale price for a crop+market
// pair. A Redis layer sits in front of the database because price rows change
// at most daily while the query is hit on every price-widget render.
func GetMandiPrice(ctx iris.Context) {
	crop := strings.ToLower(strings.TrimSpace(ctx.URLParam("crop")))
	market := strings.ToLower(strings.TrimSpace(ctx.URLParam("market")))
	if crop == "" || market == "" {
		utils.CreateError(iris.StatusBadRequest, "crop and market query parameters are required", ctx)
		return
	}

	cacheKey := "mandi:" + crop + ":" + market
	if storage.Redis != nil {
		if cached, err := storage.Redis.Get(context.Background(), cacheKey).Result(); err == nil {
			var price models.MandiPrice
			if json.Unmarshal([]byte(cached), &price) == nil {
				ctx.JSON(iris.Map{"success": true, "cached": true, "price": price})
				return
			}
		}
	}

	var price models.MandiPrice
	if err := storage.DB.Where("crop = ? AND market = ?", crop, market).
		Order("date DESC").
		First(&price).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Mandi price data not available", ctx)
		return
	}

	if storage.Redis != nil {
		if encoded, err := json.Marshal(price); err == nil {
			storage.Redis.Set(context.Background(), cacheKey, encoded, mandiCacheTTL)
		}
	}

	ctx.JSON(iris.Map{"success": true, "cached": false, "price": price})
}

type UpsertMandiPriceInput struct {
	Crop       string  `json:"crop" validate:"required"`
	Market     string  `json:"market" validate:"required"`
	MinPrice   float64 `json:"minPrice" validate:"required,gt=0"`
	MaxPrice   float64 `json:"maxPrice" validate:"required,gt=0"`
	ModalPrice float64 `json:"modalPrice" validate:"required,gt=0"`
	Unit       string  `json:"unit"`
	Date       string  `json:"date"`
}

// UpsertMandiPrice inserts a fresh price row and invalidates the cache entry
// for its crop+market pair. Admin only.
func UpsertMandiPrice(ctx iris.Context) {
	var input UpsertMandiPriceInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	date := time.Now()
	if input.Date != "" {
		parsed, err := time.Parse("2006-01-02", input.Date)
		if err != nil {
			utils.CreateError(iris.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD", ctx)
			return
		}
		date = parsed
	}

	price := models.MandiPrice{
		Crop:       strings.ToLower(strings.TrimSpace(input.Crop)),
		Market:     strings.ToLower(strings.TrimSpace(input.Market)),
		MinPrice:   input.MinPrice,
		MaxPrice:   input.MaxPrice,
		ModalPrice: input.ModalPrice,
		Unit:       input.Unit,
		Source:     models.MandiDefaultSource,
		Date:       date,
	}
	if price.Unit == "" {
		price.Unit = models.MandiDefaultUnit
	}

	if err := storage.DB.Create(&price).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if storage.Redis != nil {
		storage.Redis.Del(context.Background(), "mandi:"+price.Crop+":"+price.Market)
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "price": price})
}
