package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/revcart/storefront-gateway/internal/auth"
	"github.com/revcart/storefront-gateway/internal/orders"
	"github.com/revcart/storefront-gateway/internal/session"
	"github.com/revcart/storefront-gateway/internal/validation"
	"github.com/revcart/storefront-gateway/internal/wishlist"
)

func registerAuthRoutes(r *gin.Engine, cfg HandlerConfig, v *validatorv10.Validate) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/auth/login", func(c *gin.Context) {
		var req validation.LoginRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		result, err := cfg.Auth.Login(c.Request.Context(), auth.Credentials{
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			respondBackendError(c, cfg, err, "login failed")
			return
		}
		establishSession(c, cfg, result)
	})

	r.POST("/auth/signup", func(c *gin.Context) {
		var req validation.SignupRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		result, err := cfg.Auth.Signup(c.Request.Context(), auth.SignupData{
			Email:    req.Email,
			Password: req.Password,
			Name:     req.Name,
			Phone:    req.Phone,
		})
		if err != nil {
			respondBackendError(c, cfg, err, "signup failed")
			return
		}
		// Signup may return no token when the account still needs OTP
		// verification.
		if result.Token == "" {
			c.JSON(http.StatusOK, gin.H{"success": true, "user": result.User, "verificationRequired": true})
			return
		}
		establishSession(c, cfg, result)
	})

	r.POST("/auth/verify-otp", func(c *gin.Context) {
		var req validation.OTPRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		if req.Code == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "verification code is required"})
			return
		}
		result, err := cfg.Auth.VerifyOTP(c.Request.Context(), req.Email, req.Code)
		if err != nil {
			respondBackendError(c, cfg, err, "verification failed")
			return
		}
		establishSession(c, cfg, result)
	})

	r.POST("/auth/resend-otp", func(c *gin.Context) {
		var req validation.OTPRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		if err := cfg.Auth.ResendOTP(c.Request.Context(), req.Email); err != nil {
			respondBackendError(c, cfg, err, "failed to resend code")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
}

// establishSession records the authenticated user against their bearer token
// and returns the login payload.
func establishSession(c *gin.Context, cfg HandlerConfig, result *auth.Result) {
	sess := session.Session{
		UserID:      result.User.ID,
		Role:        auth.SessionRole(result.User.Role),
		DisplayName: result.User.Name,
	}
	if err := cfg.Sessions.Login(c.Request.Context(), result.Token, sess); err != nil {
		cfg.Log.WithError(err).Error("failed to store session")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "something went wrong"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": result.Token, "user": result.User})
}

func registerAccountRoutes(r *gin.RouterGroup, cfg HandlerConfig, v *validatorv10.Validate) {
	r.POST("/auth/logout", func(c *gin.Context) {
		token := c.GetString("session_token")
		if err := cfg.Sessions.Logout(c.Request.Context(), token); err != nil {
			cfg.Log.WithError(err).Error("failed to revoke session")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "something went wrong"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	r.GET("/orders", func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
		size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
		list, err := cfg.Orders.ListMine(c.Request.Context(), page, size)
		if err != nil {
			respondBackendError(c, cfg, err, "failed to load orders")
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": list})
	})

	r.GET("/orders/:id", func(c *gin.Context) {
		order, err := cfg.Orders.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondBackendError(c, cfg, err, "failed to load order")
			return
		}
		c.JSON(http.StatusOK, order)
	})

	r.POST("/orders/:id/cancel", func(c *gin.Context) {
		if err := cfg.Orders.Cancel(c.Request.Context(), c.Param("id")); err != nil {
			respondBackendError(c, cfg, err, "failed to cancel order")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	registerWishlistRoutes(r, cfg, v)
	registerNotificationRoutes(r, cfg)
}

func registerWishlistRoutes(r *gin.RouterGroup, cfg HandlerConfig, v *validatorv10.Validate) {
	r.GET("/wishlist", func(c *gin.Context) {
		s, ok := wishlistStore(c, cfg)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": s.Items()})
	})

	r.POST("/wishlist", func(c *gin.Context) {
		var req validation.WishlistAddRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		p, err := cfg.Catalog.Get(c.Request.Context(), req.ProductID)
		if err != nil {
			respondBackendError(c, cfg, err, "failed to load product")
			return
		}
		s, ok := wishlistStore(c, cfg)
		if !ok {
			return
		}
		err = s.Add(c.Request.Context(), wishlist.Item{
			ProductID: strconv.FormatInt(p.ID, 10),
			Name:      p.Name,
			UnitPrice: p.Price,
			ImageRef:  p.Image,
			Unit:      p.Unit,
		})
		if err != nil {
			cfg.Log.WithError(err).Error("failed to persist wishlist")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to save wishlist"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": s.Items()})
	})

	r.DELETE("/wishlist/:id", func(c *gin.Context) {
		s, ok := wishlistStore(c, cfg)
		if !ok {
			return
		}
		if err := s.Remove(c.Request.Context(), c.Param("id")); err != nil {
			cfg.Log.WithError(err).Error("failed to persist wishlist")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to save wishlist"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": s.Items()})
	})
}

func registerNotificationRoutes(r *gin.RouterGroup, cfg HandlerConfig) {
	r.GET("/notifications", func(c *gin.Context) {
		sess := currentSession(c)
		list, err := cfg.Notifications.ListForUser(c.Request.Context(), sess.UserID)
		if err != nil {
			cfg.Log.WithError(err).Error("failed to load notifications")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to load notifications"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"notifications": list})
	})

	r.POST("/notifications/:id/read", func(c *gin.Context) {
		if err := cfg.Notifications.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
			cfg.Log.WithError(err).Error("failed to mark notification read")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to update notification"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
}

func registerDeliveryRoutes(r *gin.RouterGroup, cfg HandlerConfig, v *validatorv10.Validate) {
	r.GET("/orders", func(c *gin.Context) {
		list, err := cfg.Orders.ListAssigned(c.Request.Context())
		if err != nil {
			respondBackendError(c, cfg, err, "failed to load assigned orders")
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": list})
	})

	r.PUT("/orders/:id/status", func(c *gin.Context) {
		var req validation.OrderStatusUpdateRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		if err := cfg.Orders.UpdateStatus(c.Request.Context(), c.Param("id"), orders.Status(req.Status)); err != nil {
			respondBackendError(c, cfg, err, "failed to update order status")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
}

func registerAdminRoutes(r *gin.RouterGroup, cfg HandlerConfig) {
	r.GET("/orders", func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
		size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
		list, err := cfg.Orders.ListAll(c.Request.Context(), page, size)
		if err != nil {
			respondBackendError(c, cfg, err, "failed to load orders")
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": list})
	})
}

// wishlistStore loads the session's wishlist, mirroring cartStore.
func wishlistStore(c *gin.Context, cfg HandlerConfig) (*wishlist.Store, bool) {
	sess := currentSession(c)
	s, err := wishlist.NewStore(c.Request.Context(), "wishlist:"+sess.UserID, cfg.WishlistSnapshots, cfg.Log)
	if err != nil {
		cfg.Log.WithError(err).Error("failed to load wishlist")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to load wishlist"})
		return nil, false
	}
	return s, true
}
