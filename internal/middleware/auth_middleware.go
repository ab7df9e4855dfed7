package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"dineqr_backend/internal/models"
	"dineqr_backend/internal/services"
	"dineqr_backend/pkg/utils"
)

// Context keys set by the middleware for downstream handlers.
const (
	ContextActorKey   = "actor"
	ContextSessionKey = "guestSession"
)

// SessionTokenHeader carries the guest session token on public endpoints.
const SessionTokenHeader = "X-Session-Token"

// AuthMiddleware verifies the Bearer token and loads the full actor with
// its capability overrides so handlers get a ready authorization context.
func AuthMiddleware(authz services.AuthzService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authorization header required", ""))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeTokenInvalid, "Invalid authorization header format. Use Bearer <token>", ""))
			return
		}

		claims, err := utils.ValidateToken(parts[1])
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeTokenInvalid, "Invalid or expired token", err.Error()))
			return
		}

		actor, err := authz.LoadActor(claims.UserID)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Account is not available", ""))
			return
		}

		c.Set(ContextActorKey, actor)
		c.Next()
	}
}

// RoleAuthMiddleware restricts a route group to the named roles. Fine
// grained checks stay in the services; this is a coarse outer gate.
func RoleAuthMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := GetActor(c)
		if actor == nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "Authentication context missing", ""))
			return
		}

		for _, role := range allowedRoles {
			if strings.EqualFold(actor.Role, role) {
				c.Next()
				return
			}
		}
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "Insufficient role. Required: "+strings.Join(allowedRoles, ", "), ""))
	}
}

// GuestSessionMiddleware resolves the X-Session-Token header into a valid
// guest session, rejecting expired and ended sessions with distinct codes.
func GuestSessionMiddleware(sessions services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(SessionTokenHeader)
		if token == "" {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, SessionTokenHeader+" header required", ""))
			return
		}

		session, err := sessions.Validate(c.Request.Context(), token)
		if err != nil {
			switch {
			case err == services.ErrSessionExpired:
				utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeSessionExpired, "Guest session has expired. Scan the table QR code again.", ""))
			case err == services.ErrSessionInactive:
				utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeSessionInactive, "Guest session was ended.", ""))
			case err == services.ErrSessionNotFound:
				utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Unknown session token", ""))
			default:
				utils.LogError(err, "guest session validation")
				utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Could not validate session", ""))
			}
			return
		}

		c.Set(ContextSessionKey, session)
		c.Next()
	}
}

// GetActor returns the authenticated actor set by AuthMiddleware, or nil.
func GetActor(c *gin.Context) *services.Actor {
	value, exists := c.Get(ContextActorKey)
	if !exists {
		return nil
	}
	actor, _ := value.(*services.Actor)
	return actor
}

// GetSession returns the guest session set by GuestSessionMiddleware, or nil.
func GetSession(c *gin.Context) *models.GuestSession {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil
	}
	session, _ := value.(*models.GuestSession)
	return session
}
