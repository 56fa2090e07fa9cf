package routes

import (
	"agrimarket-server/models"
	"agrimarket-server/storage"
	"agrimarket-server/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

type VerificationStatusInput struct {
	Status string `json:"status" validate:"required"`
}

// GetSellersByStatus lists seller applications, filtered by verification
// status when the query parameter is present.
func GetSellersByStatus(ctx iris.Context) {
	query := storage.DB.Preload("User")
	if status := ctx.URLParamDefault("status", models.VerificationPending); status != "" {
		if !models.ValidVerificationStatus(status) {
			utils.CreateError(iris.StatusBadRequest, "Invalid verification status", ctx)
			return
		}
		query = query.Where("verification_status = ?", status)
	}

	var profiles []models.SellerProfile
	if err := query.Order("created_at ASC").Find(&profiles).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "count": len(profiles), "sellers": profiles})
}

// UpdateSellerStatus settles a seller application. Approval promotes the user
// to the seller role; both the profile and the user row move together.
func UpdateSellerStatus(ctx iris.Context) {
	profileID, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Invalid seller profile id", ctx)
		return
	}

	var input VerificationStatusInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if input.Status != models.VerificationApproved && input.Status != models.VerificationRejected {
		utils.CreateError(iris.StatusBadRequest, "status must be approved or rejected", ctx)
		return
	}

	var profile models.SellerProfile
	if err := storage.DB.First(&profile, profileID).Error; err != nil {
		utils.CreateNotFound(ctx, "Seller profile")
		return
	}

	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&profile).Update("verification_status", input.Status).Error; err != nil {
			return err
		}

		userUpdates := map[string]interface{}{"verification_status": input.Status}
		if input.Status == models.VerificationApproved {
			userUpdates["role"] = models.RoleSeller
		}
		return tx.Model(&models.User{}).Where("id = ?", profile.UserID).Updates(userUpdates).Error
	})
	if txErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "message": "Seller application " + input.Status})
}

// GetProductsByStatus is the admin product review queue.
func GetProductsByStatus(ctx iris.Context) {
	status := ctx.URLParamDefault("status", models.ProductPending)

	var products []models.Product
	if err := storage.DB.Where("status = ?", status).
		Preload("Seller").
		Order("created_at ASC").
		Find(&products).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "count": len(products), "products": products})
}

// UpdateProductStatus approves or rejects a pending product listing.
func UpdateProductStatus(ctx iris.Context) {
	productID, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Invalid product id", ctx)
		return
	}

	var input VerificationStatusInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if input.Status != models.ProductApproved && input.Status != models.ProductRejected {
		utils.CreateError(iris.StatusBadRequest, "status must be approved or rejected", ctx)
		return
	}

	var product models.Product
	if err := storage.DB.First(&product, productID).Error; err != nil {
		utils.CreateNotFound(ctx, "Product")
		return
	}

	if err := storage.DB.Model(&product).Update("status", input.Status).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "message": "Product " + input.Status})
}

// GetPendingEquipment lists equipment listings awaiting admin approval.
func GetPendingEquipment(ctx iris.Context) {
	var equipment []models.Equipment
	if err := storage.DB.Where("approved = ?", false).
		Preload("Owner").
		Order("created_at ASC").
		Find(&equipment).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "count": len(equipment), "equipment": equipment})
}

// ApproveEquipment makes a listing visible in the rental catalog.
func ApproveEquipment(ctx iris.Context) {
	equipmentID, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Invalid equipment id", ctx)
		return
	}

	var equipment models.Equipment
	if err := storage.DB.First(&equipment, equipmentID).Error; err != nil {
		utils.CreateNotFound(ctx, "Equipment")
		return
	}

	if err := storage.DB.Model(&equipment).Update("approved", true).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "message": "Equipment approved"})
}

// GetDashboardStats aggregates platform-wide counts for the admin home page.
func GetDashboardStats(ctx iris.Context) {
	var (
		totalUsers     int64
		totalFarmers   int64
		totalSellers   int64
		pendingSellers int64
		totalProducts  int64
		pendingProduct int64
		totalEquipment int64
		totalOrders    int64
		totalRevenue   float64
	)

	storage.DB.Model(&models.User{}).Count(&totalUsers)
	storage.DB.Model(&models.User{}).Where("role = ?", models.RoleFarmer).Count(&totalFarmers)
	storage.DB.Model(&models.User{}).Where("role = ?", models.RoleSeller).Count(&totalSellers)
	storage.DB.Model(&models.SellerProfile{}).Where("verification_status = ?", models.VerificationPending).Count(&pendingSellers)
	storage.DB.Model(&models.Product{}).Count(&totalProducts)
	storage.DB.Model(&models.Product{}).Where("status = ?", models.ProductPending).Count(&pendingProduct)
	storage.DB.Model(&models.Equipment{}).Count(&totalEquipment)
	storage.DB.Model(&models.Order{}).Count(&totalOrders)
	storage.DB.Model(&models.Order{}).
		Where("status NOT IN ?", []string{models.OrderCancelled, models.OrderPendingPayment}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&totalRevenue)

	ctx.JSON(iris.Map{
		"success": true,
		"stats": iris.Map{
			"totalUsers":      totalUsers,
			"totalFarmers":    totalFarmers,
			"totalSellers":    totalSellers,
			"pendingSellers":  pendingSellers,
			"totalProducts":   totalProducts,
			"pendingProducts": pendingProduct,
			"totalEquipment":  totalEquipment,
			"totalOrders":     totalOrders,
			"totalRevenue":    totalRevenue,
		},
	})
}
