package middleware

import (
	"net/http"
	"strings"

	"hotel-service/pkg/jwtutil"
	"hotel-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthMiddleware validates the JWT token and extracts the hotel scope
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		// Get the Authorization header
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("Missing Authorization header")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		// Check if it's a Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		// Validate the token
		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Error("Invalid JWT token", zap.Error(err))
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		// Store user info in context for later use
		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("user_role", claims.Role)

		// Every hotel-scoped endpoint needs the hotel from the token
		if claims.HotelID == nil {
			log.Warn("JWT token does not contain hotel_id")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "hotel_id is required in the token"})
		}
		c.Set("hotel_id", *claims.HotelID)
		log.Info("Request authenticated with hotel context",
			zap.Uint("hotel_id", *claims.HotelID),
			zap.String("role", claims.Role))

		return next(c)
	}
}

// GetHotelIDFromContext retrieves the hotel ID from the context.
// Returns 0, false if it is not set.
func GetHotelIDFromContext(c echo.Context) (uint, bool) {
	hotelID, ok := c.Get("hotel_id").(uint)
	return hotelID, ok
}
