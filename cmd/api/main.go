package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"

	"github.com/revcart/storefront-gateway/internal/auth"
	"github.com/revcart/storefront-gateway/internal/backend"
	"github.com/revcart/storefront-gateway/internal/catalog"
	"github.com/revcart/storefront-gateway/internal/handlers"
	"github.com/revcart/storefront-gateway/internal/metrics"
	"github.com/revcart/storefront-gateway/internal/notify"
	"github.com/revcart/storefront-gateway/internal/orders"
	"github.com/revcart/storefront-gateway/internal/payment"
	"github.com/revcart/storefront-gateway/internal/platform"
	"github.com/revcart/storefront-gateway/internal/session"
	"github.com/revcart/storefront-gateway/internal/snapshot"
	"github.com/revcart/storefront-gateway/internal/stock"
)

func setupRouter(cfg handlers.HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	handlers.RegisterRoutes(r, cfg)

	return r
}

func main() {
	log := platform.NewLogger()

	cfg, err := platform.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	clients, err := platform.NewAWSClients(context.Background())
	if err != nil {
		log.WithError(err).Fatal("failed to init aws clients")
	}

	sessions := session.NewStore(session.NewRedisKV(cfg.RedisAddr), cfg.SessionTTL, log)

	api := backend.NewClient(cfg.CommerceBaseURL, cfg.RequestTimeout, backend.ContextTokenSource, log)
	catalogClient := catalog.NewClient(api)

	handlerCfg := handlers.HandlerConfig{
		Backend:           api,
		Catalog:           catalogClient,
		Stock:             stock.NewService(catalogClient),
		Auth:              auth.NewClient(api),
		Orders:            orders.NewClient(api),
		Sessions:          sessions,
		CartSnapshots:     snapshot.NewDynamoStore(clients.DynamoDB, cfg.CartTable),
		WishlistSnapshots: snapshot.NewDynamoStore(clients.DynamoDB, cfg.WishlistTable),
		Notifications:     notify.NewStore(clients.DynamoDB, cfg.NotificationsTable),
		Publisher:         notify.NewPublisher(clients.SQS, cfg.OrderEventsQueue),
		Gateway:           payment.NewCallbackGateway(cfg.PaymentTimeout, log),
		Metrics:           metrics.NewEmitter(clients.CloudWatch, cfg.MetricsNamespace, log),
		Log:               log,
	}

	r := setupRouter(handlerCfg)

	// if environment variable RUN_LOCAL is set to "true", run local HTTP server for development.
	if cfg.RunLocal {
		log.WithField("addr", cfg.ListenAddr).Info("running local server")
		if err := r.Run(cfg.ListenAddr); err != nil {
			log.WithError(err).Fatal("failed to run local server")
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		// the adapter handles proxying; use adapter.ProxyWithContext for proper context propagation
		return adapter.ProxyWithContext(ctx, req)
	})
}
