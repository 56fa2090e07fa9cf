package routes

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"time"

	"agrimarket-server/models"
	"agrimarket-server/storage"
	"agrimarket-server/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/datatypes"
)

// uploadFormImages pushes every file under the "images" form key to
// Cloudinary and returns the hosted URLs. Failed uploads are skipped.
func uploadFormImages(files []*multipart.FileHeader, prefix string) []string {
	urls := []string{}
	for i, header := range files {
		file, err := header.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			continue
		}
		publicID := fmt.Sprintf("%s_%d_%d", prefix, time.Now().UnixNano(), i)
		if url := storage.UploadImage(data, publicID); url != "" {
			urls = append(urls, url)
		}
	}
	return urls
}

// CreateEquipment lists new equipment for rent. Multipart form: images plus
// the listing fields.
func CreateEquipment(ctx iris.Context) {
	claims := utils.GetClaims(ctx)

	name := ctx.FormValue("name")
	category := ctx.FormValue("category")
	description := ctx.FormValue("description")
	location := ctx.FormValue("location")

	if name == "" || category == "" || location == "" {
		utils.CreateError(iris.StatusBadRequest, "name, category and location are required", ctx)
		return
	}
	if !models.ValidEquipmentCategory(category) {
		utils.CreateError(iris.StatusBadRequest, "Invalid equipment category", ctx)
		return
	}

	pricePerDay, err := strconv.ParseFloat(ctx.FormValue("pricePerDay"), 64)
	if err != nil || pricePerDay <= 0 {
		utils.CreateError(iris.StatusBadRequest, "pricePerDay must be a positive number", ctx)
		return
	}
	minimumRentalDays := ctx.PostValueIntDefault("minimumRentalDays", 1)
	shippingCharge, _ := strconv.ParseFloat(ctx.FormValueDefault("shippingCharge", "0"), 64)
	negotiable := ctx.FormValueDefault("negotiable", "true") != "false"

	imageURLs := []string{}
	if form := ctx.Request().MultipartForm; form != nil {
		imageURLs = uploadFormImages(form.File["images"], "equipment")
	}
	if len(imageURLs) == 0 {
		utils.CreateError(iris.StatusBadRequest, "At least one image is required", ctx)
		return
	}
	imagesJSON, _ := json.Marshal(imageURLs)

	equipment := models.Equipment{
		OwnerID:           claims.ID,
		Name:              name,
		Category:          category,
		Description:       description,
		Images:            datatypes.JSON(imagesJSON),
		PricePerDay:       pricePerDay,
		MinimumRentalDays: minimumRentalDays,
		ShippingCharge:    shippingCharge,
		Negotiable:        negotiable,
		Availability:      true,
		Location:          location,
	}
	if err := storage.DB.Create(&equipment).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "message": "Equipment submitted for approval", "equipment": equipment})
}

// GetAllEquipment lists rentable equipment: available and admin-approved.
func GetAllEquipment(ctx iris.Context) {
	var equipment []models.Equipment
	if err := storage.DB.Where("availability = ? AND approved = ?", true, true).
		Preload("Owner").
		Order("created_at DESC").
		Find(&equipment).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "equipment": equipment})
}

func GetEquipmentByID(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Invalid equipment id", ctx)
		return
	}

	var equipment models.Equipment
	if err := storage.DB.Preload("Owner").First(&equipment, id).Error; err != nil {
		utils.CreateNotFound(ctx, "Equipment")
		return
	}

	ctx.JSON(iris.Map{"success": true, "equipment": equipment})
}

func GetMyEquipment(ctx iris.Context) {
	claims := utils.GetClaims(ctx)

	var equipment []models.Equipment
	if err := storage.DB.Where("owner_id = ?", claims.ID).
		Order("created_at DESC").
		Find(&equipment).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "equipment": equipment})
}

// DeleteEquipment removes a listing and its hosted images. Owner only.
func DeleteEquipment(ctx iris.Context) {
	claims := utils.GetClaims(ctx)
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Invalid equipment id", ctx)
		return
	}

	var equipment models.Equipment
	if err := storage.DB.First(&equipment, id).Error; err != nil {
		utils.CreateNotFound(ctx, "Equipment")
		return
	}
	if equipment.OwnerID != claims.ID {
		utils.CreateForbidden(ctx)
		return
	}

	if err := storage.DB.Delete(&equipment).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var urls []string
	if json.Unmarshal(equipment.Images, &urls) == nil {
		for _, url := range urls {
			go storage.DeleteImage(url)
		}
	}

	ctx.JSON(iris.Map{"success": true, "message": "Equipment deleted successfully"})
}
