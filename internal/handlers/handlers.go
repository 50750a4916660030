// Package handlers wires the storefront gateway's HTTP surface: cart, stock
// validation, checkout with payment callbacks, auth, orders, wishlist and
// notifications.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/revcart/storefront-gateway/internal/auth"
	"github.com/revcart/storefront-gateway/internal/backend"
	"github.com/revcart/storefront-gateway/internal/catalog"
	"github.com/revcart/storefront-gateway/internal/checkout"
	"github.com/revcart/storefront-gateway/internal/metrics"
	"github.com/revcart/storefront-gateway/internal/notify"
	"github.com/revcart/storefront-gateway/internal/orders"
	"github.com/revcart/storefront-gateway/internal/payment"
	"github.com/revcart/storefront-gateway/internal/session"
	"github.com/revcart/storefront-gateway/internal/snapshot"
	"github.com/revcart/storefront-gateway/internal/stock"
	"github.com/revcart/storefront-gateway/internal/validation"
)

// HandlerConfig groups dependencies for the gateway routes.
type HandlerConfig struct {
	Backend           *backend.Client
	Catalog           *catalog.Client
	Stock             *stock.Service
	Auth              *auth.Client
	Orders            *orders.Client
	Sessions          *session.Store
	CartSnapshots     snapshot.Store
	WishlistSnapshots snapshot.Store
	Notifications     *notify.Store
	Publisher         checkout.EventPublisher
	Gateway           *payment.CallbackGateway
	Metrics           *metrics.Emitter
	Log               *logrus.Logger
}

const sessionKey = "gateway_session"

// RegisterRoutes registers every gateway route on r.
func RegisterRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()

	// A backend 401 means the bearer token went stale upstream; the session
	// is dropped too so the next request forces a fresh login.
	cfg.Backend.OnUnauthorized(func(ctx context.Context) {
		token := backend.TokenFromContext(ctx)
		if token == "" {
			return
		}
		if err := cfg.Sessions.Logout(ctx, token); err != nil {
			cfg.Log.WithError(err).Warn("failed to revoke session after 401")
		}
	})

	registerAuthRoutes(r, cfg, v)
	registerCatalogRoutes(r, cfg)

	authed := r.Group("/", requireSession(cfg))
	registerCartRoutes(authed, cfg, v)
	registerCheckoutRoutes(authed, cfg, v)
	registerAccountRoutes(authed, cfg, v)

	admin := authed.Group("/admin", requireRole(session.RoleAdmin))
	registerAdminRoutes(admin, cfg)

	delivery := authed.Group("/delivery", requireRole(session.RoleDeliveryAgent))
	registerDeliveryRoutes(delivery, cfg, v)
}

// currentSession returns the session placed in the gin context by
// requireSession.
func currentSession(c *gin.Context) *session.Session {
	val, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := val.(*session.Session)
	return sess
}

// respondBackendError maps a classified backend failure onto the gateway's
// uniform error response. Raw errors never reach the response body.
func respondBackendError(c *gin.Context, cfg HandlerConfig, err error, fallback string) {
	switch {
	case backend.IsUnauthorized(err):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "please log in again"})
	case backend.IsForbidden(err):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "access denied"})
	case backend.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": backend.BusinessMessage(err, "not found")})
	case backend.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": backend.BusinessMessage(err, fallback)})
	default:
		cfg.Log.WithError(err).Error("backend call failed")
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": fallback})
	}
}
