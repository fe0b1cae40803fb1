// Package middleware contains HTTP middleware functions for request processing
package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/movedocs/tariffworks/app/dto"
	"github.com/movedocs/tariffworks/app/services"
)

// AuthMiddleware handles JWT token validation for protected endpoints
type AuthMiddleware struct {
	tokenService services.TokenService
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(tokenService services.TokenService) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
	}
}

// Authenticate is the middleware function that validates carrier JWT tokens
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, code, message := bearerToken(c)
		if code != "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: message,
				Error:   dto.ErrorDetail{Code: code},
			})
		}

		claims, err := m.tokenService.ValidateToken(token)
		if err != nil {
			code, message := tokenErrorDetails(err)
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: message,
				Error: dto.ErrorDetail{
					Code: code,
				},
			})
		}

		// Store carrier information in context for downstream handlers
		c.Locals("carrier_id", claims.CarrierID)
		c.Locals("token_id", claims.TokenID)
		c.Locals("token_claims", claims)

		// Store RequestID for audit logging
		if requestID := c.Get("X-Request-ID"); requestID != "" {
			c.Locals("request_id", requestID)
		}

		return c.Next()
	}
}

// StaffAuthenticate validates JWT tokens and sets staff-specific context values
func (m *AuthMiddleware) StaffAuthenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, code, message := bearerToken(c)
		if code != "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: message,
				Error:   dto.ErrorDetail{Code: code},
			})
		}

		staffClaims, err := m.tokenService.ValidateStaffToken(token)
		if err != nil {
			code, message := tokenErrorDetails(err)
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: message,
				Error:   dto.ErrorDetail{Code: code},
			})
		}

		c.Locals("staff_id", staffClaims.StaffID)
		c.Locals("token_id", staffClaims.TokenID)
		c.Locals("token_claims", staffClaims)

		if requestID := c.Get("X-Request-ID"); requestID != "" {
			c.Locals("request_id", requestID)
		}

		return c.Next()
	}
}

// bearerToken extracts the Bearer token, or the error code and message to
// respond with when the header is missing or malformed
func bearerToken(c fiber.Ctx) (token, code, message string) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", "MISSING_AUTHORIZATION_HEADER", "Authorization header is required"
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", "INVALID_AUTHORIZATION_FORMAT", "Invalid authorization header format. Expected 'Bearer <token>'"
	}

	token = strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", "MISSING_ACCESS_TOKEN", "Access token is required"
	}

	return token, "", ""
}

func tokenErrorDetails(err error) (code, message string) {
	if errors.Is(err, services.ErrTokenExpired) {
		return "TOKEN_EXPIRED", "Access token has expired"
	}
	if errors.Is(err, services.ErrTokenInvalid) {
		return "TOKEN_INVALID", "Invalid access token"
	}
	if errors.Is(err, services.ErrTokenRevoked) {
		return "TOKEN_REVOKED", "Access token has been revoked"
	}
	return "TOKEN_VALIDATION_FAILED", "Token validation failed"
}

// GetCarrierIDFromContext extracts carrier ID from the request context
func GetCarrierIDFromContext(c fiber.Ctx) (uint, bool) {
	carrierID, ok := c.Locals("carrier_id").(uint)
	return carrierID, ok
}

// GetStaffIDFromContext extracts staff ID from the request context
func GetStaffIDFromContext(c fiber.Ctx) (uint, bool) {
	staffID, ok := c.Locals("staff_id").(uint)
	return staffID, ok
}
