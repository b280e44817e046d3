package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/jaehoon-dev/commerce-api/internal/domain"
	"github.com/jaehoon-dev/commerce-api/internal/usecase"
)

// UserHandler represents the HTTP delivery layer for accounts.
type UserHandler struct {
	usecase *usecase.UserUsecase
}

// NewUserHandler registers the account routes. "/users/me" needs any
// authenticated identity; the rest are admin-only (enforced by the
// authorization policy).
func NewUserHandler(e *echo.Group, u *usecase.UserUsecase) {
	handler := &UserHandler{usecase: u}

	e.GET("/users/me", handler.Me)
	e.GET("/users", handler.List)
	e.GET("/users/:id", handler.Get)
	e.DELETE("/users/:id", handler.Delete)
}

// Me returns the calling user's own record.
func (h *UserHandler) Me(c echo.Context) error {
	id, ok := CurrentIdentity(c)
	if !ok {
		return respondUnauthorized(c)
	}

	user, err := h.usecase.GetByID(c.Request().Context(), id.PrincipalID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	return c.JSON(http.StatusOK, user)
}

// List returns a page of accounts.
func (h *UserHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	users, err := h.usecase.List(c.Request().Context(), limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	if users == nil {
		users = []*domain.User{}
	}
	return c.JSON(http.StatusOK, users)
}

// Get returns a single account.
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.usecase.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	return c.JSON(http.StatusOK, user)
}

// Delete removes an account.
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.usecase.Delete(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	return c.NoContent(http.StatusNoContent)
}
