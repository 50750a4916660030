package platform

import (
	"context"
	"os"
	"testing"
)

func TestLoadAWSConfig_DefaultRegion(t *testing.T) {
	os.Setenv("AWS_REGION", "")

	cfg, err := LoadAWSConfig(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Region != "us-east-1" {
		t.Fatalf("expected default region 'us-east-1', got %s", cfg.Region)
	}
}

func TestLoadConfig_RequiredAndDefaults(t *testing.T) {
	os.Setenv("CART_TABLE", "carts")
	os.Setenv("WISHLIST_TABLE", "wishlists")
	os.Setenv("NOTIFICATIONS_TABLE", "notifications")
	os.Setenv("ORDER_EVENTS_QUEUE_URL", "https://sqs.local/queue")
	os.Setenv("COMMERCE_BASE_URL", "http://localhost:9090")
	defer func() {
		for _, k := range []string{"CART_TABLE", "WISHLIST_TABLE", "NOTIFICATIONS_TABLE", "ORDER_EVENTS_QUEUE_URL", "COMMERCE_BASE_URL"} {
			os.Unsetenv(k)
		}
	}()

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.CartTable != "carts" {
		t.Fatalf("cart table mismatch, got %s", cfg.CartTable)
	}
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("expected default listen addr ':8080', got %s", cfg.ListenAddr)
	}
	if cfg.SessionTTL.Hours() != 24 {
		t.Fatalf("expected default session ttl 24h, got %s", cfg.SessionTTL)
	}
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	for _, k := range []string{"CART_TABLE", "WISHLIST_TABLE", "NOTIFICATIONS_TABLE", "ORDER_EVENTS_QUEUE_URL", "COMMERCE_BASE_URL"} {
		os.Unsetenv(k)
	}

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected an error when required settings are missing")
	}
}
