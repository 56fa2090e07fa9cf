package utils

import (
	"context"
	"os"
	"strconv"
	"time"

	"agrimarket-server/storage"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

var bgContext = context.Background()

// AccessToken carries the authenticated identity and role. Every request is
// independently authenticated from it; no server-side session exists.
type AccessToken struct {
	ID   uint   `json:"ID"`
	Role string `json:"role"`
}

type RefreshTokenInput struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// CreateTokenPair signs a 7-day access token with the user's role embedded
// and a 1-year refresh token whitelisted in Redis.
func CreateTokenPair(id uint, role string) (*jwt.TokenPair, error) {
	accessTokenSigner := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), 7*24*time.Hour)
	refreshTokenSigner := jwt.NewSigner(jwt.HS256, os.Getenv("REFRESH_TOKEN_SECRET"), 365*24*time.Hour)

	accessToken, err := accessTokenSigner.Sign(AccessToken{ID: id, Role: role})
	if err != nil {
		return nil, err
	}

	userID := strconv.FormatUint(uint64(id), 10)
	refreshToken, err := refreshTokenSigner.Sign(jwt.Claims{Subject: userID})
	if err != nil {
		return nil, err
	}

	var tokenPair jwt.TokenPair
	tokenPair.AccessToken = accessToken
	tokenPair.RefreshToken = refreshToken

	if storage.Redis != nil {
		storage.Redis.Set(bgContext, string(refreshToken), role, 365*24*time.Hour+5*time.Minute)
	}

	return &tokenPair, nil
}

// RefreshToken rotates a refresh token: the presented token must still be
// whitelisted, is deleted on use, and a fresh pair is issued.
func RefreshToken(ctx iris.Context) {
	token := jwt.GetVerifiedToken(ctx)
	tokenStr := string(token.Token)

	role, tokenErr := storage.Redis.Get(bgContext, tokenStr).Result()
	if tokenErr != nil {
		CreateNotFound(ctx, "Refresh token")
		return
	}

	storage.Redis.Del(bgContext, tokenStr)

	userID, parseErr := strconv.ParseUint(token.StandardClaims.Subject, 10, 32)
	if parseErr != nil {
		CreateInternalServerError(ctx)
		return
	}

	tokenPair, tokenPairErr := CreateTokenPair(uint(userID), role)
	if tokenPairErr != nil {
		CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"success":      true,
		"accessToken":  string(tokenPair.AccessToken),
		"refreshToken": string(tokenPair.RefreshToken),
	})
}
