package auth

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// CtxShopKey is the fiber locals key holding the authenticated shop domain
const CtxShopKey = "shop"

// Middleware validates the Bearer session token and stores the shop domain
// in the request context.
func Middleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing Authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization must be 'Bearer <token>'")
		}

		token, err := jwt.ParseWithClaims(parts[1], &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired session token")
		}

		claims, ok := token.Claims.(*SessionClaims)
		if !ok || claims.Shop == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "session token carries no shop")
		}

		c.Locals(CtxShopKey, claims.Shop)
		return c.Next()
	}
}

// ShopFromCtx returns the authenticated shop stored by Middleware
func ShopFromCtx(c *fiber.Ctx) string {
	shop, _ := c.Locals(CtxShopKey).(string)
	return shop
}
