package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jaehoon-dev/commerce-api/internal/usecase"
)

// AuthHandler represents the HTTP delivery layer for authentication.
type AuthHandler struct {
	usecase *usecase.AuthUsecase
}

// NewAuthHandler registers the authentication routes to the provided echo group.
func NewAuthHandler(e *echo.Group, u *usecase.AuthUsecase) {
	handler := &AuthHandler{usecase: u}

	e.POST("/auth/login", handler.Login)
	e.POST("/auth/register", handler.Register)
	e.POST("/auth/mfa/verify", handler.VerifyMFA)
}

// loginRequest defines the expected JSON payload for the login endpoint.
type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// registerRequest defines the expected JSON payload for the register endpoint.
type registerRequest struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password" validate:"required,min=8"`
}

// mfaRequest defines the expected JSON payload for the MFA verification endpoint.
type mfaRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6"`
}

// Login handles the credential check and token issuance.
//
// Both failure shapes use 401: "Invalid credentials" for a bad email or
// password, "Authentication failed" for anything else. The split is by
// message only so nothing about account existence leaks through status
// codes.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx := c.Request().Context()
	resp, err := h.usecase.Login(ctx, req.Email, req.Password)

	if err != nil {
		// Handle the specific MFA required case
		if errors.Is(err, usecase.ErrMFARequired) {
			return c.JSON(http.StatusAccepted, echo.Map{
				"message": "mfa_required",
				"email":   req.Email,
			})
		}

		if errors.Is(err, usecase.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": usecase.ErrInvalidCredentials.Error()})
		}

		return c.JSON(http.StatusUnauthorized, echo.Map{"error": usecase.ErrAuthenticationFailed.Error()})
	}

	return c.JSON(http.StatusOK, resp)
}

// Register creates a new USER account.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	ctx := c.Request().Context()
	user, err := h.usecase.Register(ctx, req.Email, req.DisplayName, req.Password)

	if err != nil {
		if errors.Is(err, usecase.ErrEmailTaken) {
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	return c.JSON(http.StatusCreated, user)
}

// VerifyMFA handles the second step of authentication for users with MFA enabled.
func (h *AuthHandler) VerifyMFA(c echo.Context) error {
	var req mfaRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx := c.Request().Context()
	resp, err := h.usecase.VerifyMFA(ctx, req.Email, req.Code)

	if err != nil {
		if errors.Is(err, usecase.ErrInvalidMFACode) || errors.Is(err, usecase.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": usecase.ErrAuthenticationFailed.Error()})
	}

	return c.JSON(http.StatusOK, resp)
}
