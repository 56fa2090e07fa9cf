package routes

import (
	"errors"

	"agrimarket-server/models"
	"agrimarket-server/storage"
	"agrimarket-server/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

type PlaceOrderInput struct {
	ProductID       uint   `json:"productId" validate:"required"`
	Quantity        int    `json:"quantity" validate:"required,min=1"`
	PaymentMethod   string `json:"paymentMethod"`
	ShippingAddress string `json:"shippingAddress" validate:"required"`
}

type UpdateOrderStatusInput struct {
	Status string `json:"status" validate:"required"`
}

var errInsufficientStock = errors.New("insufficient stock")

// PlaceOrder creates a BUY order for an approved product. Stock is
// decremented in the same transaction as the insert; a COD order starts
// PLACED, an online one waits in PENDING_PAYMENT.
func PlaceOrder(ctx iris.Context) {
	claims := utils.GetClaims(ctx)

	var input PlaceOrderInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	paymentMethod := input.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = models.PaymentMethodCOD
	}
	if paymentMethod != models.PaymentMethodCOD && paymentMethod != models.PaymentMethodOnline {
		utils.CreateError(iris.StatusBadRequest, "Invalid payment method", ctx)
		return
	}

	var order models.Order
	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, input.ProductID).Error; err != nil {
			return err
		}
		if product.Status != models.ProductApproved {
			return gorm.ErrRecordNotFound
		}
		if input.Quantity > product.Stock {
			return errInsufficientStock
		}

		status := models.OrderPlaced
		if paymentMethod == models.PaymentMethodOnline {
			status = models.OrderPendingPayment
		}

		order = models.Order{
			OrderType:       models.OrderTypeBuy,
			FarmerID:        &claims.ID,
			ProductID:       &product.ID,
			SellerID:        product.SellerID,
			Quantity:        input.Quantity,
			PriceAtOrder:    product.Price,
			Amount:          float64(input.Quantity) * product.Price,
			PaymentMethod:   paymentMethod,
			ShippingAddress: input.ShippingAddress,
			Status:          status,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		return tx.Model(&models.Product{}).
			Where("id = ?", product.ID).
			Update("stock", gorm.Expr("stock - ?", input.Quantity)).Error
	})

	switch {
	case txErr == nil:
	case errors.Is(txErr, gorm.ErrRecordNotFound):
		utils.CreateError(iris.StatusNotFound, "Product not available", ctx)
		return
	case errors.Is(txErr, errInsufficientStock):
		utils.CreateError(iris.StatusBadRequest, "Insufficient stock", ctx)
		return
	default:
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "message": "Order placed successfully", "order": order})
}

// GetMyOrders lists orders the user placed, as buying farmer or as renter.
func GetMyOrders(ctx iris.Context) {
	claims := utils.GetClaims(ctx)

	var orders []models.Order
	if err := storage.DB.Where("farmer_id = ? OR renter_id = ?", claims.ID, claims.ID).
		Preload("Product").
		Preload("Equipment").
		Preload("Seller").
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "count": len(orders), "orders": orders})
}

func GetSellerOrders(ctx iris.Context) {
	claims := utils.GetClaims(ctx)

	var orders []models.Order
	if err := storage.DB.Where("seller_id = ?", claims.ID).
		Preload("Product").
		Preload("Farmer").
		Preload("Renter").
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "count": len(orders), "orders": orders})
}

// UpdateOrderStatus lets the owning seller advance an order through the
// legal transition table. Cancellation goes through CancelOrder, and
// PENDING_PAYMENT -> CONFIRMED is reserved for payment verification.
func UpdateOrderStatus(ctx iris.Context) {
	claims := utils.GetClaims(ctx)
	orderID, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Invalid order id", ctx)
		return
	}

	var input UpdateOrderStatusInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var order models.Order
	if err := storage.DB.First(&order, orderID).Error; err != nil {
		utils.CreateNotFound(ctx, "Order")
		return
	}
	if order.SellerID != claims.ID {
		utils.CreateError(iris.StatusForbidden, "Not authorized to update this order", ctx)
		return
	}

	if input.Status == models.OrderCancelled || !models.CanTransitionOrder(order.Status, input.Status) {
		utils.CreateError(iris.StatusConflict, "Illegal status transition "+order.Status+" -> "+input.Status, ctx)
		return
	}
	if order.Status == models.OrderPendingPayment && input.Status == models.OrderConfirmed {
		utils.CreateError(iris.StatusConflict, "Order confirms through payment verification", ctx)
		return
	}

	order.Status = input.Status
	if err := storage.DB.Save(&order).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "message": "Order status updated", "order": order})
}

// CancelOrder lets the placing farmer cancel a BUY order that has not been
// confirmed yet. The cancelled quantity returns to product stock atomically
// with the status flip.
func CancelOrder(ctx iris.Context) {
	claims := utils.GetClaims(ctx)
	orderID, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Invalid order id", ctx)
		return
	}

	var order models.Order
	if err := storage.DB.First(&order, orderID).Error; err != nil {
		utils.CreateNotFound(ctx, "Order")
		return
	}

	if order.FarmerID == nil || *order.FarmerID != claims.ID {
		utils.CreateError(iris.StatusForbidden, "Not authorized to cancel this order", ctx)
		return
	}
	if !models.OrderCancellable(order.Status) {
		utils.CreateError(iris.StatusBadRequest, "Cannot cancel order in "+order.Status+" status", ctx)
		return
	}

	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Order{}).
			Where("id = ?", order.ID).
			Update("status", models.OrderCancelled).Error; err != nil {
			return err
		}
		if order.ProductID != nil {
			return tx.Model(&models.Product{}).
				Where("id = ?", *order.ProductID).
				Update("stock", gorm.Expr("stock + ?", order.Quantity)).Error
		}
		return nil
	})
	if txErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "message": "Order cancelled successfully"})
}

// GetAllOrders is the admin view over every order.
func GetAllOrders(ctx iris.Context) {
	var orders []models.Order
	if err := storage.DB.
		Preload("Product").
		Preload("Farmer").
		Preload("Renter").
		Preload("Seller").
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "count": len(orders), "orders": orders})
}
