package platform

import (
	"context"
	"fmt"
	"os"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every environment-driven setting of the gateway.
type Config struct {
	RunLocal   bool   `envconfig:"RUN_LOCAL" default:"false"`
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8080"`

	AWSRegion          string `envconfig:"AWS_REGION" default:"us-east-1"`
	CartTable          string `envconfig:"CART_TABLE" required:"true"`
	WishlistTable      string `envconfig:"WISHLIST_TABLE" required:"true"`
	NotificationsTable string `envconfig:"NOTIFICATIONS_TABLE" required:"true"`
	OrderEventsQueue   string `envconfig:"ORDER_EVENTS_QUEUE_URL" required:"true"`

	CommerceBaseURL string        `envconfig:"COMMERCE_BASE_URL" required:"true"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"15s"`
	PaymentTimeout  time.Duration `envconfig:"PAYMENT_TIMEOUT" default:"5m"`

	RedisAddr  string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"24h"`

	MetricsNamespace string `envconfig:"METRICS_NAMESPACE" default:"RevCart/StorefrontGateway"`
}

// LoadConfig populates Config from the process environment.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env config: %w", err)
	}
	return &cfg, nil
}

// LoadAWSConfig loads the default AWS SDK config for the configured region.
func LoadAWSConfig(ctx context.Context) (sdkaws.Config, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-1" // default fallback
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return awsCfg, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return awsCfg, nil
}
