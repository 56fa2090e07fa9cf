package utils

import (
	"golang.org/x/exp/slices"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// GetClaims returns the verified access token claims, or nil when the route
// was reached without passing the verifier.
func GetClaims(ctx iris.Context) *AccessToken {
	if tok := jwt.Get(ctx); tok != nil {
		if claims, ok := tok.(*AccessToken); ok {
			return claims
		}
	}
	return nil
}

// AuthorizeRoles rejects the request with 403 unless the token role is in the
// allow-list. Stateless: the role comes from the verified token, never the DB.
func AuthorizeRoles(roles ...string) iris.Handler {
	return func(ctx iris.Context) {
		claims := GetClaims(ctx)
		if claims == nil {
			CreateError(iris.StatusUnauthorized, "Not authorized, token missing", ctx)
			return
		}
		if !slices.Contains(roles, claims.Role) {
			CreateError(iris.StatusForbidden, "Access denied for role "+claims.Role, ctx)
			return
		}
		ctx.Values().Set("userID", claims.ID)
		ctx.Next()
	}
}

// AdminOnlyMiddleware ensures the requester has the admin role.
func AdminOnlyMiddleware(ctx iris.Context) {
	claims := GetClaims(ctx)
	if claims == nil || claims.Role != "admin" {
		CreateError(iris.StatusForbidden, "Admin access required", ctx)
		return
	}
	ctx.Values().Set("userID", claims.ID)
	ctx.Next()
}
