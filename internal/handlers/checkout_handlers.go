package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/revcart/storefront-gateway/internal/backend"
	"github.com/revcart/storefront-gateway/internal/cartsync"
	"github.com/revcart/storefront-gateway/internal/checkout"
	"github.com/revcart/storefront-gateway/internal/validation"
)

func registerCheckoutRoutes(r *gin.RouterGroup, cfg HandlerConfig, v *validatorv10.Validate) {
	// One blocking request per checkout: for card payments the handler parks
	// in the gateway's Collect until the widget posts its callback to
	// /payments/:orderRef/complete or /payments/:orderRef/dismiss.
	r.POST("/checkout", func(c *gin.Context) {
		var req validation.CheckoutRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		sess := currentSession(c)
		s, ok := cartStore(c, cfg)
		if !ok {
			return
		}

		opts := []checkout.Option{checkout.WithMetrics(cfg.Metrics)}
		if cfg.Publisher != nil {
			opts = append(opts, checkout.WithPublisher(cfg.Publisher))
		}
		orch := checkout.NewOrchestrator(
			s,
			cartsync.NewPusher(cfg.Backend, cfg.Log),
			cfg.Backend,
			cfg.Gateway,
			cfg.Log,
			opts...,
		)

		result, err := orch.Run(c.Request.Context(), sess.UserID, checkout.Request{
			FullName:      req.FullName,
			Phone:         req.Phone,
			Address:       req.Address,
			City:          req.City,
			PostalCode:    req.PostalCode,
			PaymentMethod: req.PaymentMethod,
		})
		if err != nil {
			respondFlowError(c, cfg, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"orderId":     result.OrderID,
			"orderNumber": result.OrderNumber,
			"amount":      result.Amount,
		})
	})

	r.GET("/payments/pending", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"pending": cfg.Gateway.Pending()})
	})

	r.POST("/payments/:orderRef/complete", func(c *gin.Context) {
		orderRef, err := strconv.ParseInt(c.Param("orderRef"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid order reference"})
			return
		}
		var resp backend.GatewayResponse
		if err := c.ShouldBindJSON(&resp); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
			return
		}
		if !cfg.Gateway.Complete(orderRef, resp) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "no payment awaiting this order"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	r.POST("/payments/:orderRef/dismiss", func(c *gin.Context) {
		orderRef, err := strconv.ParseInt(c.Param("orderRef"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid order reference"})
			return
		}
		if !cfg.Gateway.Dismiss(orderRef) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "no payment awaiting this order"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
}

// respondFlowError turns a failed checkout run into an HTTP response carrying
// the flow's user-facing message.
func respondFlowError(c *gin.Context, cfg HandlerConfig, err error) {
	if errors.Is(err, checkout.ErrFlowInProgress) {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "checkout already in progress"})
		return
	}

	var flowErr *checkout.FlowError
	if !errors.As(err, &flowErr) {
		cfg.Log.WithError(err).Error("checkout failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "something went wrong"})
		return
	}

	status := http.StatusBadGateway
	switch {
	case flowErr.Err == nil:
		// Entry guard: empty cart or missing form fields.
		status = http.StatusBadRequest
	case errors.Is(flowErr.Err, checkout.ErrPaymentDismissed):
		status = http.StatusConflict
	case errors.Is(flowErr.Err, cartsync.ErrNoValidProducts):
		status = http.StatusBadRequest
	case backend.IsValidation(flowErr.Err):
		status = http.StatusBadRequest
	case backend.IsUnauthorized(flowErr.Err):
		status = http.StatusUnauthorized
	case backend.IsForbidden(flowErr.Err):
		status = http.StatusForbidden
	}
	c.JSON(status, gin.H{
		"success": false,
		"message": flowErr.Message,
		"step":    string(flowErr.Step),
	})
}
