package routes

import (
	"fmt"
	"strings"

	"agrimarket-server/models"
	"agrimarket-server/storage"
	"agrimarket-server/utils"

	"github.com/kataras/iris/v12"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterUserInput struct {
	Name     string `json:"name" validate:"required,max=256"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=256"`
	Role     string `json:"role"`
}

type LoginUserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func Register(ctx iris.Context) {
	var userInput RegisterUserInput
	if err := ctx.ReadJSON(&userInput); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	role := userInput.Role
	if role == "" {
		role = models.RoleFarmer
	}
	if !models.ValidRole(role) || role == models.RoleAdmin {
		utils.CreateError(iris.StatusBadRequest, "Invalid role", ctx)
		return
	}

	var existing models.User
	userExists, err := getAndHandleUserExists(&existing, userInput.Email)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if userExists {
		utils.CreateError(iris.StatusConflict, "User already registered", ctx)
		return
	}

	hashedPassword, hashErr := hashAndSaltPassword(userInput.Password)
	if hashErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	// Sellers start unverified and wait for admin approval.
	verificationStatus := models.VerificationApproved
	if role == models.RoleSeller {
		verificationStatus = models.VerificationPending
	}

	newUser := models.User{
		Name:               userInput.Name,
		Email:              strings.ToLower(userInput.Email),
		Password:           hashedPassword,
		Role:               role,
		VerificationStatus: verificationStatus,
	}
	if err := storage.DB.Create(&newUser).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	// Seed the role-matching profile so dashboards have something to load.
	switch role {
	case models.RoleFarmer:
		storage.DB.Create(&models.FarmerProfile{UserID: newUser.ID, Phone: "0000000000"})
	case models.RoleSeller:
		storage.DB.Create(&models.SellerProfile{
			UserID:        newUser.ID,
			BusinessName:  fmt.Sprintf("%s's Business", newUser.Name),
			LicenseNumber: "PENDING",
		})
	}

	returnUser(newUser, iris.StatusCreated, ctx)
}

func Login(ctx iris.Context) {
	var userInput LoginUserInput
	if err := ctx.ReadJSON(&userInput); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	errorMsg := "Invalid email or password"

	var existingUser models.User
	userExists, err := getAndHandleUserExists(&existingUser, userInput.Email)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if !userExists {
		utils.CreateError(iris.StatusUnauthorized, errorMsg, ctx)
		return
	}

	if passwordErr := bcrypt.CompareHashAndPassword([]byte(existingUser.Password), []byte(userInput.Password)); passwordErr != nil {
		utils.CreateError(iris.StatusUnauthorized, errorMsg, ctx)
		return
	}

	returnUser(existingUser, iris.StatusOK, ctx)
}

// UpdateUserProfile lets the authenticated user change name and email.
// Email changes re-check uniqueness.
func UpdateUserProfile(ctx iris.Context) {
	claims := utils.GetClaims(ctx)

	var input UpdateProfileInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var user models.User
	if err := storage.DB.First(&user, claims.ID).Error; err != nil {
		utils.CreateNotFound(ctx, "User")
		return
	}

	newEmail := strings.ToLower(input.Email)
	if newEmail != "" && newEmail != user.Email {
		var count int64
		storage.DB.Model(&models.User{}).Where("email = ?", newEmail).Count(&count)
		if count > 0 {
			utils.CreateError(iris.StatusConflict, "Email already in use", ctx)
			return
		}
		user.Email = newEmail
	}
	if input.Name != "" {
		user.Name = input.Name
	}

	if err := storage.DB.Save(&user).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"success": true,
		"message": "Profile updated successfully",
		"user":    user,
	})
}

func getAndHandleUserExists(user *models.User, email string) (bool, error) {
	result := storage.DB.Where("email = ?", strings.ToLower(email)).Limit(1).Find(user)
	if result.Error != nil && result.Error != gorm.ErrRecordNotFound {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func hashAndSaltPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func returnUser(user models.User, status int, ctx iris.Context) {
	tokenPair, err := utils.CreateTokenPair(user.ID, user.Role)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(status)
	ctx.JSON(iris.Map{
		"success":      true,
		"token":        string(tokenPair.AccessToken),
		"refreshToken": string(tokenPair.RefreshToken),
		"user": iris.Map{
			"id":                 user.ID,
			"name":               user.Name,
			"email":              user.Email,
			"role":               user.Role,
			"verificationStatus": user.VerificationStatus,
		},
	})
}
