package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jaehoon-dev/commerce-api/internal/usecase"
)

// MFAHandler handles MFA enrollment for the authenticated user.
type MFAHandler struct {
	usecase *usecase.AuthUsecase
}

// NewMFAHandler registers the MFA management routes. Both routes require an
// authenticated identity (enforced by the authorization policy).
func NewMFAHandler(e *echo.Group, u *usecase.AuthUsecase) {
	handler := &MFAHandler{usecase: u}

	e.POST("/auth/mfa/setup", handler.Setup)
	e.POST("/auth/mfa/enable", handler.Enable)
}

// mfaSetupResponse returns the QR code URI to the frontend.
type mfaSetupResponse struct {
	Secret string `json:"secret"`
	QRCode string `json:"qr_code_uri"`
}

// mfaEnableRequest is used to verify the first code before enabling MFA.
type mfaEnableRequest struct {
	Code string `json:"code" validate:"required,len=6"`
}

// Setup generates a pending TOTP secret for the calling user.
func (h *MFAHandler) Setup(c echo.Context) error {
	id, ok := CurrentIdentity(c)
	if !ok {
		return respondUnauthorized(c)
	}

	secret, uri, err := h.usecase.SetupMFA(c.Request().Context(), id.PrincipalID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	return c.JSON(http.StatusOK, mfaSetupResponse{Secret: secret, QRCode: uri})
}

// Enable verifies the provided code and officially turns on MFA for the account.
func (h *MFAHandler) Enable(c echo.Context) error {
	id, ok := CurrentIdentity(c)
	if !ok {
		return respondUnauthorized(c)
	}

	var req mfaEnableRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if err := h.usecase.EnableMFA(c.Request().Context(), id.PrincipalID, req.Code); err != nil {
		if errors.Is(err, usecase.ErrInvalidMFACode) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "mfa_enabled_successfully"})
}
