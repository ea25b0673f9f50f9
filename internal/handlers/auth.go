// Package handlers contains the HTTP request handlers.
// Handlers stay thin: decode, call a service, map errors to responses.
package handlers

import (
	"errors"

	"datasub/internal/models"
	"datasub/internal/repositories"
	"datasub/internal/services/auth"
	"datasub/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService auth.Service
}

func NewAuthHandler(authService auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
		Phone    string `json:"phone"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if input.Email == "" || input.Name == "" || input.Phone == "" {
		return response.ValidationError(c, "email, name and phone are required")
	}

	user, err := h.authService.Register(auth.RegisterInput{
		Email:    input.Email,
		Password: input.Password,
		Name:     input.Name,
		Phone:    input.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrEmailTaken), errors.Is(err, repositories.ErrPhoneTaken):
			return response.Conflict(c, err.Error())
		case errors.Is(err, auth.ErrWeakPassword):
			return response.ValidationError(c, err.Error())
		default:
			return response.ServerError(c, "Registration failed")
		}
	}
	return response.Success(c, "Registration successful", user)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	user, accessToken, refreshToken, err := h.authService.Login(input.Email, input.Password, c.IP())
	if err != nil {
		if errors.Is(err, auth.ErrAccountBanned) {
			return response.Forbidden(c, err.Error())
		}
		return response.Error(c, fiber.StatusUnauthorized, "Invalid credentials")
	}

	return response.Success(c, "Login successful", fiber.Map{
		"user":          user,
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var input struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&input); err != nil || input.RefreshToken == "" {
		return response.BadRequest(c, "refresh_token is required")
	}

	accessToken, refreshToken, err := h.authService.RefreshTokens(input.RefreshToken)
	if err != nil {
		return response.Error(c, fiber.StatusUnauthorized, err.Error())
	}
	return response.Success(c, "Token refreshed", fiber.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)
	if err := h.authService.Logout(claims.UserID); err != nil {
		return response.ServerError(c, "Logout failed")
	}
	return response.Success(c, "Logged out", nil)
}
