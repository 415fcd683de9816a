package middlewares

import (
	t_token "team_portal_service/pkg/token"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	//QueryToken token in query name
	QueryToken = "auth"

	//CookieToken token in cookie name
	CookieToken = "auth_token"

	//TokenUserID get user id from token, set c.locals name
	TokenUserID = "UserID"
	//TokenUserName get display name from token, set c.locals name
	TokenUserName = "UserName"
	//TokenRole get role from token, set c.locals name
	TokenRole = "Role"
)

// JWTMiddleware validates the JWT from the query string or cookie and puts
// the resolved identity into c.Locals. Browser EventSource/WebSocket clients
// cannot set headers, hence query/cookie transport.
func JWTMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := c.Query(QueryToken)

		if tokenStr == "" {
			tokenStr = c.Cookies(CookieToken)
		}

		if tokenStr == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Missing token",
			})
		}

		token, err := jwt.ParseWithClaims(tokenStr, &t_token.Claims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Unexpected signing method")
			}
			return t_token.JWTSecret, nil
		})

		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid token",
			})
		}

		if claims, ok := token.Claims.(*t_token.Claims); ok && token.Valid {
			c.Locals(TokenUserID, claims.UserID)
			c.Locals(TokenUserName, claims.Name)
			c.Locals(TokenRole, claims.Role)
		} else {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid token claims",
			})
		}

		return c.Next()
	}
}

// RequireModerator rejects callers whose role may not issue moderation
// commands. Must run after JWTMiddleware.
func RequireModerator() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(TokenRole).(string)
		if !t_token.RoleType(role).CanModerate() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"error":   "Moderator role required",
			})
		}
		return c.Next()
	}
}
