// Package metrics emits checkout and sync outcome counters to CloudWatch.
// Emission is best-effort: a metrics failure is logged, never surfaced.
package metrics

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/sirupsen/logrus"

	"github.com/revcart/storefront-gateway/internal/platform"
)

// Emitter publishes counters under a single namespace.
type Emitter struct {
	client    platform.CloudWatchAPI
	namespace string
	log       *logrus.Entry
	nowFunc   func() time.Time
}

func NewEmitter(client platform.CloudWatchAPI, namespace string, log *logrus.Logger) *Emitter {
	return &Emitter{
		client:    client,
		namespace: namespace,
		log:       log.WithField("component", "metrics"),
		nowFunc:   time.Now,
	}
}

// CountCheckout records one checkout reaching a terminal outcome
// ("complete", "error") at a given step.
func (e *Emitter) CountCheckout(ctx context.Context, outcome, step string) {
	e.count(ctx, "CheckoutOutcome", map[string]string{"Outcome": outcome, "Step": step})
}

// CountSyncSkippedLines records lines dropped or rejected during a cart push.
func (e *Emitter) CountSyncSkippedLines(ctx context.Context, n int) {
	if n <= 0 {
		return
	}
	e.put(ctx, "CartSyncSkippedLines", float64(n), nil)
}

func (e *Emitter) count(ctx context.Context, name string, dims map[string]string) {
	e.put(ctx, name, 1, dims)
}

func (e *Emitter) put(ctx context.Context, name string, value float64, dims map[string]string) {
	if e == nil || e.client == nil {
		return
	}
	datum := cwtypes.MetricDatum{
		MetricName: aws.String(name),
		Timestamp:  aws.Time(e.nowFunc().UTC()),
		Unit:       cwtypes.StandardUnitCount,
		Value:      aws.Float64(value),
	}
	for k, v := range dims {
		datum.Dimensions = append(datum.Dimensions, cwtypes.Dimension{
			Name:  aws.String(k),
			Value: aws.String(v),
		})
	}

	_, err := e.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(e.namespace),
		MetricData: []cwtypes.MetricDatum{datum},
	})
	if err != nil {
		e.log.WithError(err).WithField("metric", name).Warn("failed to put metric")
	}
}
