package auth

import (
	"github.com/chiyopla/bookspace/pkg/errcodes"
	"github.com/chiyopla/bookspace/pkg/models"
	"github.com/labstack/echo/v4"
)

// Middleware provides authentication middleware.
type Middleware struct {
	authService *Service
}

// NewMiddleware creates a new auth middleware.
func NewMiddleware(authService *Service) *Middleware {
	return &Middleware{
		authService: authService,
	}
}

// Authenticate extracts and validates the JWT from the session cookie. If
// valid, it verifies the user still exists and isn't disabled, then adds user
// info to the context. If not authenticated, it returns 401.
func (m *Middleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		cookie, err := c.Cookie(CookieName)
		if err != nil || cookie.Value == "" {
			return errcodes.Unauthorized("Authentication required")
		}

		claims, err := m.authService.ValidateToken(cookie.Value)
		if err != nil {
			return errcodes.Unauthorized("Invalid or expired token")
		}

		user, err := m.authService.GetActiveUserByID(ctx, claims.UserID)
		if err != nil {
			return errcodes.Unauthorized("User not found or disabled")
		}

		c.Set("user_id", user.ID)
		c.Set("user", user)

		return next(c)
	}
}

// AuthenticateOptional extracts user info if a valid session is present but
// doesn't require authentication.
func (m *Middleware) AuthenticateOptional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		cookie, err := c.Cookie(CookieName)
		if err == nil && cookie.Value != "" {
			claims, err := m.authService.ValidateToken(cookie.Value)
			if err == nil {
				user, err := m.authService.GetActiveUserByID(ctx, claims.UserID)
				if err == nil {
					c.Set("user_id", user.ID)
					c.Set("user", user)
				}
			}
		}
		return next(c)
	}
}

// RequireRole returns middleware that rejects users whose role isn't in the
// allowed set. Every staff-only route goes through this one gate. Must be used
// after Authenticate middleware.
func (m *Middleware) RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := c.Get("user").(*models.User)
			if !ok {
				return errcodes.Unauthorized("Authentication required")
			}

			if !allowed[user.Role] {
				return errcodes.Forbidden("You don't have permission to perform this action")
			}

			return next(c)
		}
	}
}

// RequireStaff is shorthand for RequireRole(librarian, admin).
func (m *Middleware) RequireStaff() echo.MiddlewareFunc {
	return m.RequireRole(models.RoleLibrarian, models.RoleAdmin)
}

// UserFromContext retrieves the authenticated user from the Echo context.
func UserFromContext(c echo.Context) *models.User {
	user, _ := c.Get("user").(*models.User)
	return user
}

// UserIDFromContext retrieves the authenticated user's ID from the Echo
// context.
func UserIDFromContext(c echo.Context) (int, bool) {
	userID, ok := c.Get("user_id").(int)
	return userID, ok
}
