package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/taptosell/marketplace-workflow/internal/application/service"
	"github.com/taptosell/marketplace-workflow/internal/domain/actor"
)

const (
	headerActorID   = "X-Actor-ID"
	headerActorRole = "X-Actor-Role"
	headerRequestID = "X-Request-ID"

	contextKeyActor = "actor"
)

// requestIDMiddleware attaches a request ID to every request, honoring a
// client-supplied one when present
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set(headerRequestID, id)
		c.Set("request_id", id)
		c.Next()
	}
}

// actorMiddleware resolves the acting user from the X-Actor-ID and
// X-Actor-Role headers. Upstream authentication is expected to have
// verified these; this layer only parses and validates them.
func actorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		idStr := c.GetHeader(headerActorID)
		roleStr := c.GetHeader(headerActorRole)
		if idStr == "" || roleStr == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, Response{
				Success: false,
				Error:   "actor headers are required",
				Code:    "forbidden",
			})
			return
		}

		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil || id <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, Response{
				Success: false,
				Error:   "invalid actor ID",
				Code:    "bad_request",
			})
			return
		}

		role := actor.Role(roleStr)
		if !role.IsValid() {
			c.AbortWithStatusJSON(http.StatusForbidden, Response{
				Success: false,
				Error:   "unknown actor role",
				Code:    "forbidden",
			})
			return
		}

		c.Set(contextKeyActor, actor.Actor{ID: id, Role: role})
		c.Next()
	}
}

// maintenanceMiddleware rejects non-administrator traffic while the
// platform is in maintenance mode. Settings lookups failing closed would
// lock everyone out, so lookup errors let the request through.
func maintenanceMiddleware(settings service.SettingsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		act := actorFrom(c)
		if act.Role == actor.RoleAdministrator {
			c.Next()
			return
		}

		enabled, err := settings.MaintenanceMode(c.Request.Context())
		if err == nil && enabled {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, Response{
				Success: false,
				Error:   "platform is under maintenance",
				Code:    "store_unavailable",
			})
			return
		}
		c.Next()
	}
}

// actorFrom returns the actor resolved by actorMiddleware
func actorFrom(c *gin.Context) actor.Actor {
	v, ok := c.Get(contextKeyActor)
	if !ok {
		return actor.Actor{}
	}
	act, _ := v.(actor.Actor)
	return act
}
