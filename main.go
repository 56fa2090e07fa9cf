package main

import (
	"fmt"
	"log"
	"os"

	"agrimarket-server/models"
	"agrimarket-server/realtime"
	"agrimarket-server/routes"
	"agrimarket-server/storage"
	"agrimarket-server/utils"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	// Only load .env in development
	if os.Getenv("RENDER") == "" {
		godotenv.Load()
	}

	storage.InitializeDB()
	storage.InitializeRedis()

	app := iris.New()
	app.Validator = validator.New()

	// CORS configuration
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(iris.Compression)

	// JWT Verifiers
	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		if err := ctx.ReadJSON(&tokenInput); err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})

	// Realtime hub for negotiation chat fan-out
	hub := realtime.NewHub()
	go hub.Run()
	chatHandlers := routes.NewChatHandlers(hub)

	app.Get("/ws", func(ctx iris.Context) {
		hub.ServeWS(ctx.ResponseWriter(), ctx.Request())
	})

	// Health check endpoint
	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	// Routes
	user := app.Party("/api/user")
	{
		user.Post("/register", routes.Register)
		user.Post("/login", routes.Login)
		user.Patch("/profile", accessTokenVerifierMiddleware, routes.UpdateUserProfile)
	}

	app.Post("/api/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)

	farmer := app.Party("/api/farmer", accessTokenVerifierMiddleware, utils.AuthorizeRoles(models.RoleFarmer))
	{
		farmer.Get("/profile", routes.GetFarmerProfile)
		farmer.Post("/profile", routes.UpsertFarmerProfile)
		farmer.Put("/profile", routes.UpsertFarmerProfile)
		farmer.Post("/lands", routes.AddLand)
		farmer.Get("/lands", routes.GetMyLands)
		farmer.Put("/lands/{id:uint}", routes.UpdateLand)
		farmer.Delete("/lands/{id:uint}", routes.DeleteLand)
		farmer.Get("/recommendations", routes.GetRecommendations)
	}

	seller := app.Party("/api/seller")
	{
		seller.Post("/apply", accessTokenVerifierMiddleware, utils.AuthorizeRoles(models.RoleFarmer, models.RoleSeller), routes.ApplyAsSeller)
		seller.Get("/profile", accessTokenVerifierMiddleware, utils.AuthorizeRoles(models.RoleSeller), routes.GetSellerProfile)
		seller.Post("/onboard", accessTokenVerifierMiddleware, utils.AuthorizeRoles(models.RoleSeller), routes.OnboardSeller)
	}

	product := app.Party("/api/product")
	{
		product.Get("/", routes.GetApprovedProducts)
		product.Get("/{id:uint}", routes.GetProductByID)
		product.Post("/", accessTokenVerifierMiddleware, utils.AuthorizeRoles(models.RoleSeller), routes.AddProduct)
		product.Get("/mine/list", accessTokenVerifierMiddleware, utils.AuthorizeRoles(models.RoleSeller), routes.GetMyProducts)
		product.Patch("/{id:uint}", accessTokenVerifierMiddleware, utils.AuthorizeRoles(models.RoleSeller), routes.UpdateProduct)
		product.Delete("/{id:uint}", accessTokenVerifierMiddleware, utils.AuthorizeRoles(models.RoleSeller), routes.DeleteProduct)
	}

	equipment := app.Party("/api/equipment")
	{
		equipment.Get("/", routes.GetAllEquipment)
		equipment.Get("/{id:uint}", routes.GetEquipmentByID)
		equipment.Post("/", accessTokenVerifierMiddleware, utils.AuthorizeRoles(models.RoleFarmer, models.RoleSeller), routes.CreateEquipment)
		equipment.Get("/mine/list", accessTokenVerifierMiddleware, utils.AuthorizeRoles(models.RoleFarmer, models.RoleSeller), routes.GetMyEquipment)
		equipment.Delete("/{id:uint}", accessTokenVerifierMiddleware, utils.AuthorizeRoles(models.RoleFarmer, models.RoleSeller), routes.DeleteEquipment)
	}

	rental := app.Party("/api/rental-request", accessTokenVerifierMiddleware, utils.AuthorizeRoles(models.RoleFarmer, models.RoleSeller))
	{
		rental.Post("/", routes.CreateRentalRequest)
		rental.Get("/owner", routes.GetOwnerRentalRequests)
		rental.Get("/renter", routes.GetRenterRentalRequests)
		rental.Patch("/{id:uint}/accept", routes.AcceptRentalRequest)
		rental.Patch("/{id:uint}/reject", routes.RejectRentalRequest)
		rental.Patch("/{id:uint}/cancel", routes.CancelRentalRequest)
	}

	chat := app.Party("/api/chat", accessTokenVerifierMiddleware, utils.AuthorizeRoles(models.RoleFarmer, models.RoleSeller))
	{
		chat.Post("/message", chatHandlers.SendMessage)
		chat.Get("/{rentalRequestID:uint}", chatHandlers.GetHistory)
		chat.Get("/unread/count", chatHandlers.GetUnreadCount)
	}

	order := app.Party("/api/order", accessTokenVerifierMiddleware)
	{
		order.Post("/", utils.AuthorizeRoles(models.RoleFarmer), routes.PlaceOrder)
		order.Post("/rent", utils.AuthorizeRoles(models.RoleFarmer, models.RoleSeller), routes.CreateRentOrder)
		order.Get("/mine", utils.AuthorizeRoles(models.RoleFarmer, models.RoleSeller), routes.GetMyOrders)
		order.Get("/seller", utils.AuthorizeRoles(models.RoleSeller), routes.GetSellerOrders)
		order.Patch("/{id:uint}/status", utils.AuthorizeRoles(models.RoleSeller), routes.UpdateOrderStatus)
		order.Patch("/{id:uint}/cancel", utils.AuthorizeRoles(models.RoleFarmer), routes.CancelOrder)
	}

	payment := app.Party("/api/payment", accessTokenVerifierMiddleware)
	{
		payment.Post("/order", routes.CreatePaymentOrder)
		payment.Post("/verify", routes.VerifyPayment)
	}

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Get("/sellers", routes.GetSellersByStatus)
		admin.Patch("/sellers/{id:uint}/status", routes.UpdateSellerStatus)
		admin.Get("/products", routes.GetProductsByStatus)
		admin.Patch("/products/{id:uint}/status", routes.UpdateProductStatus)
		admin.Get("/equipment/pending", routes.GetPendingEquipment)
		admin.Patch("/equipment/{id:uint}/approve", routes.ApproveEquipment)
		admin.Get("/orders", routes.GetAllOrders)
		admin.Get("/stats", routes.GetDashboardStats)
		admin.Post("/mandi-price", routes.UpsertMandiPrice)
	}

	mandi := app.Party("/api/mandi-price")
	{
		mandi.Get("/", routes.GetMandiPrice)
	}

	weather := app.Party("/api/weather")
	{
		weather.Get("/", accessTokenVerifierMiddleware, routes.GetWeather)
	}

	chatbot := app.Party("/api/chatbot")
	{
		chatbot.Post("/ask", accessTokenVerifierMiddleware, routes.AskChatbot)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	addr := ":" + port

	fmt.Println("Starting server on", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
