package routes

import (
	"encoding/json"
	"strconv"
	"strings"

	"agrimarket-server/models"
	"agrimarket-server/storage"
	"agrimarket-server/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/datatypes"
)

// parseListField reads a comma separated form value into a lowercase JSON
// array for the recommendation matcher.
func parseListField(raw string) datatypes.JSON {
	items := []string{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			items = append(items, part)
		}
	}
	encoded, _ := json.Marshal(items)
	return datatypes.JSON(encoded)
}

// AddProduct lists a farm input for sale. The product starts pending and is
// invisible to farmers until an admin approves it.
func AddProduct(ctx iris.Context) {
	claims := utils.GetClaims(ctx)

	name := ctx.FormValue("name")
	category := ctx.FormValue("category")
	if name == "" || category == "" {
		utils.CreateError(iris.StatusBadRequest, "name and category are required", ctx)
		return
	}
	if !models.ValidProductCategory(category) {
		utils.CreateError(iris.StatusBadRequest, "Invalid product category", ctx)
		return
	}

	price, err := strconv.ParseFloat(ctx.FormValue("price"), 64)
	if err != nil || price <= 0 {
		utils.CreateError(iris.StatusBadRequest, "price must be a positive number", ctx)
		return
	}
	stock := ctx.PostValueIntDefault("stock", 0)
	if stock < 0 {
		utils.CreateError(iris.StatusBadRequest, "stock cannot be negative", ctx)
		return
	}

	imageURLs := []string{}
	if form := ctx.Request().MultipartForm; form != nil {
		imageURLs = uploadFormImages(form.File["images"], "product")
	}
	imagesJSON, _ := json.Marshal(imageURLs)

	product := models.Product{
		SellerID:      claims.ID,
		Name:          name,
		Brand:         ctx.FormValue("brand"),
		Category:      category,
		Price:         price,
		Stock:         stock,
		Images:        datatypes.JSON(imagesJSON),
		SuitableCrops: parseListField(ctx.FormValue("suitableCrops")),
		SuitableSoil:  parseListField(ctx.FormValue("suitableSoil")),
		Status:        models.ProductPending,
	}
	if err := storage.DB.Create(&product).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "message": "Product submitted for approval", "product": product})
}

// GetApprovedProducts is the farmer-facing catalog. Optional category filter.
func GetApprovedProducts(ctx iris.Context) {
	query := storage.DB.Where("status = ?", models.ProductApproved).Preload("Seller")
	if category := ctx.URLParam("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var products []models.Product
	if err := query.Order("created_at DESC").Find(&products).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "count": len(products), "products": products})
}

func GetProductByID(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Invalid product id", ctx)
		return
	}

	var product models.Product
	if err := storage.DB.Preload("Seller").First(&product, id).Error; err != nil {
		utils.CreateNotFound(ctx, "Product")
		return
	}

	ctx.JSON(iris.Map{"success": true, "product": product})
}

// GetMyProducts lists the seller's own products in every status.
func GetMyProducts(ctx iris.Context) {
	claims := utils.GetClaims(ctx)

	var products []models.Product
	if err := storage.DB.Where("seller_id = ?", claims.ID).
		Order("created_at DESC").
		Find(&products).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "count": len(products), "products": products})
}

type UpdateStockInput struct {
	Stock int      `json:"stock" validate:"min=0"`
	Price *float64 `json:"price"`
}

// UpdateProduct lets the owning seller adjust stock and price without going
// through re-approval.
func UpdateProduct(ctx iris.Context) {
	claims := utils.GetClaims(ctx)
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Invalid product id", ctx)
		return
	}

	var product models.Product
	if err := storage.DB.First(&product, id).Error; err != nil {
		utils.CreateNotFound(ctx, "Product")
		return
	}
	if product.SellerID != claims.ID {
		utils.CreateForbidden(ctx)
		return
	}

	var input UpdateStockInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	updates := map[string]interface{}{"stock": input.Stock}
	if input.Price != nil {
		if *input.Price <= 0 {
			utils.CreateError(iris.StatusBadRequest, "price must be a positive number", ctx)
			return
		}
		updates["price"] = *input.Price
	}
	if err := storage.DB.Model(&product).Updates(updates).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "product": product})
}

// DeleteProduct removes a listing and its hosted images. Owner only.
func DeleteProduct(ctx iris.Context) {
	claims := utils.GetClaims(ctx)
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Invalid product id", ctx)
		return
	}

	var product models.Product
	if err := storage.DB.First(&product, id).Error; err != nil {
		utils.CreateNotFound(ctx, "Product")
		return
	}
	if product.SellerID != claims.ID {
		utils.CreateForbidden(ctx)
		return
	}

	if err := storage.DB.Delete(&product).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var urls []string
	if json.Unmarshal(product.Images, &urls) == nil {
		for _, url := range urls {
			go storage.DeleteImage(url)
		}
	}

	ctx.JSON(iris.Map{"success": true, "message": "Product deleted successfully"})
}
