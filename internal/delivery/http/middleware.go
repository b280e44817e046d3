package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jaehoon-dev/commerce-api/internal/authz"
	"github.com/jaehoon-dev/commerce-api/pkg/security"
)

// identityKey is the echo context key holding the request's *authz.Identity.
// The identity lives and dies with the request; nothing is shared across
// requests.
const identityKey = "auth.identity"

// bearerPrefix is the only accepted Authorization scheme. Anything else is
// treated the same as no header at all.
const bearerPrefix = "Bearer "

// CurrentIdentity returns the authenticated identity for this request, or
// (nil, false) when the request is anonymous.
func CurrentIdentity(c echo.Context) (*authz.Identity, bool) {
	id, ok := c.Get(identityKey).(*authz.Identity)
	if !ok || id == nil {
		return nil, false
	}
	return id, true
}

// Authenticate extracts and validates a bearer token, installing an identity
// into the request context when the token is authentic and unexpired.
//
// Failures here are soft: a missing header, wrong scheme, bad signature,
// malformed token or expired token all leave the request anonymous and let
// it proceed. Authorize is the single place that turns "anonymous" into a
// 401, so public routes stay reachable. An identity installed by an earlier
// stage is never overwritten.
func Authenticate(codec *security.TokenCodec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return next(c)
			}

			if !strings.HasPrefix(authHeader, bearerPrefix) {
				return next(c)
			}
			tokenString := authHeader[len(bearerPrefix):]

			// First writer wins.
			if _, ok := CurrentIdentity(c); ok {
				return next(c)
			}

			claims, err := codec.Decode(tokenString)
			if err != nil {
				c.Logger().Warnf("rejected bearer token: %v", err)
				return next(c)
			}

			if claims.IsExpired(time.Now()) {
				c.Logger().Debugf("expired bearer token for subject %q", claims.Subject)
				return next(c)
			}

			c.Set(identityKey, &authz.Identity{
				PrincipalID: claims.Subject,
				Authorities: claims.Roles,
			})

			return next(c)
		}
	}
}

// Authorize evaluates every request against the policy table. It must run
// after Authenticate.
func Authorize(policy *authz.Policy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, _ := CurrentIdentity(c)

			switch policy.Decide(c.Request().Method, c.Request().URL.Path, id) {
			case authz.Allow:
				return next(c)
			case authz.Forbidden:
				return respondForbidden(c)
			default:
				return respondUnauthorized(c)
			}
		}
	}
}

// accessErrorBody is the fixed three-field shape for 401/403 responses.
type accessErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Path    string `json:"path"`
}

func respondUnauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, accessErrorBody{
		Error:   "Unauthorized",
		Message: "Authentication required to access this resource",
		Path:    requestPath(c),
	})
}

func respondForbidden(c echo.Context) error {
	return c.JSON(http.StatusForbidden, accessErrorBody{
		Error:   "Forbidden",
		Message: "Insufficient permissions to access this resource",
		Path:    requestPath(c),
	})
}

func requestPath(c echo.Context) string {
	if req := c.Request(); req != nil && req.URL != nil {
		return req.URL.Path
	}
	return ""
}
