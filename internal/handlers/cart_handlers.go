package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/revcart/storefront-gateway/internal/cart"
	"github.com/revcart/storefront-gateway/internal/catalog"
	"github.com/revcart/storefront-gateway/internal/validation"
)

func registerCatalogRoutes(r *gin.Engine, cfg HandlerConfig) {
	r.GET("/products", func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
		size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
		result, err := cfg.Catalog.List(c.Request.Context(), catalog.ListOptions{
			Search:   c.Query("search"),
			Category: c.Query("category"),
			Page:     page,
			Size:     size,
		})
		if err != nil {
			respondBackendError(c, cfg, err, "failed to load products")
			return
		}
		c.JSON(http.StatusOK, result)
	})

	r.GET("/products/:id", func(c *gin.Context) {
		p, err := cfg.Catalog.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondBackendError(c, cfg, err, "failed to load product")
			return
		}
		c.JSON(http.StatusOK, p)
	})
}

func registerCartRoutes(r *gin.RouterGroup, cfg HandlerConfig, v *validatorv10.Validate) {
	r.GET("/cart", func(c *gin.Context) {
		s, ok := cartStore(c, cfg)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, s.CurrentView())
	})

	r.POST("/cart/items", func(c *gin.Context) {
		var req validation.AddToCartRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		if req.Quantity < 1 {
			req.Quantity = 1
		}

		p, err := cfg.Catalog.Get(c.Request.Context(), req.ProductID)
		if err != nil {
			respondBackendError(c, cfg, err, "failed to load product")
			return
		}

		s, ok := cartStore(c, cfg)
		if !ok {
			return
		}
		err = s.Add(c.Request.Context(), cart.Product{
			ID:        strconv.FormatInt(p.ID, 10),
			Name:      p.Name,
			UnitPrice: p.Price,
			ImageRef:  p.Image,
			Unit:      p.Unit,
		}, req.Quantity)
		if err != nil {
			cfg.Log.WithError(err).Error("failed to persist cart")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to save cart"})
			return
		}
		c.JSON(http.StatusOK, s.CurrentView())
	})

	r.PUT("/cart/items/:id", func(c *gin.Context) {
		var req validation.SetQuantityRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		s, ok := cartStore(c, cfg)
		if !ok {
			return
		}
		if err := s.SetQuantity(c.Request.Context(), c.Param("id"), req.Quantity); err != nil {
			cfg.Log.WithError(err).Error("failed to persist cart")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to save cart"})
			return
		}
		c.JSON(http.StatusOK, s.CurrentView())
	})

	r.DELETE("/cart/items/:id", func(c *gin.Context) {
		s, ok := cartStore(c, cfg)
		if !ok {
			return
		}
		if err := s.Remove(c.Request.Context(), c.Param("id")); err != nil {
			cfg.Log.WithError(err).Error("failed to persist cart")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to save cart"})
			return
		}
		c.JSON(http.StatusOK, s.CurrentView())
	})

	r.DELETE("/cart", func(c *gin.Context) {
		s, ok := cartStore(c, cfg)
		if !ok {
			return
		}
		if err := s.Clear(c.Request.Context()); err != nil {
			cfg.Log.WithError(err).Error("failed to clear cart")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to clear cart"})
			return
		}
		c.JSON(http.StatusOK, s.CurrentView())
	})

	// Re-checks every cart line against live stock and stamps the fetched
	// quantities onto the cart so the response and the stored lines agree.
	r.POST("/cart/validate-stock", func(c *gin.Context) {
		s, ok := cartStore(c, cfg)
		if !ok {
			return
		}
		verdict, snap, err := cfg.Stock.Validate(c.Request.Context(), s.Lines())
		if err != nil {
			respondBackendError(c, cfg, err, "stock validation failed")
			return
		}
		if err := s.ApplyStockSnapshot(c.Request.Context(), snap); err != nil {
			cfg.Log.WithError(err).Warn("failed to persist stock snapshot")
		}
		c.JSON(http.StatusOK, gin.H{
			"isValid":           verdict.Valid,
			"insufficientItems": verdict.InsufficientItems,
			"cart":              s.CurrentView(),
		})
	})
}

// cartStore loads the session's cart. Loading is cheap enough to do per
// request and keeps instances of the gateway stateless across replicas.
func cartStore(c *gin.Context, cfg HandlerConfig) (*cart.Store, bool) {
	sess := currentSession(c)
	s, err := cart.NewStore(c.Request.Context(), "cart:"+sess.UserID, cfg.CartSnapshots, cfg.Log)
	if err != nil {
		cfg.Log.WithError(err).Error("failed to load cart")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to load cart"})
		return nil, false
	}
	return s, true
}
