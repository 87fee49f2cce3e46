package order

import (
	"context"

	"go.uber.org/zap"

	"ordersvc/pkg/logger"
)

// Step names the pipeline checkpoint an observer callback refers to.
type Step string

const (
	StepChecked   Step = "checked"
	StepPriced    Step = "priced"
	StepPersisted Step = "persisted"
	StepPublished Step = "published"
)

// Observer receives a callback at each pipeline checkpoint. Callbacks
// must be cheap and must not fail; the workflow never reacts to them.
type Observer interface {
	Checked(ctx context.Context, orderID string)
	Priced(ctx context.Context, orderID string, amount float64)
	Persisted(ctx context.Context, orderID string)
	Published(ctx context.Context, orderID string)
	Failed(ctx context.Context, orderID string, step Step, err error)
}

// NopObserver ignores every checkpoint.
type NopObserver struct{}

func (NopObserver) Checked(context.Context, string)             {}
func (NopObserver) Priced(context.Context, string, float64)     {}
func (NopObserver) Persisted(context.Context, string)           {}
func (NopObserver) Published(context.Context, string)           {}
func (NopObserver) Failed(context.Context, string, Step, error) {}

// LogObserver writes a structured log line per checkpoint, correlated
// with the active trace.
type LogObserver struct {
	log *zap.Logger
}

// NewLogObserver returns an observer logging through the given logger.
func NewLogObserver(log *zap.Logger) *LogObserver {
	return &LogObserver{log: log}
}

func (o *LogObserver) Checked(ctx context.Context, orderID string) {
	logger.For(ctx, o.log).Info("order id is free, fetching a price", zap.String("order_id", orderID))
}

func (o *LogObserver) Priced(ctx context.Context, orderID string, amount float64) {
	logger.For(ctx, o.log).Info("price resolved", zap.String("order_id", orderID), zap.Float64("total_amount", amount))
}

func (o *LogObserver) Persisted(ctx context.Context, orderID string) {
	logger.For(ctx, o.log).Info("order created", zap.String("order_id", orderID))
}

func (o *LogObserver) Published(ctx context.Context, orderID string) {
	logger.For(ctx, o.log).Info("order created event published", zap.String("order_id", orderID))
}

func (o *LogObserver) Failed(ctx context.Context, orderID string, step Step, err error) {
	logger.For(ctx, o.log).Error("order creation failed",
		zap.String("order_id", orderID), zap.String("step", string(step)), zap.Error(err))
}

// MultiObserver fans out every checkpoint to each wrapped observer in
// order.
type MultiObserver []Observer

func (m MultiObserver) Checked(ctx context.Context, orderID string) {
	for _, o := range m {
		o.Checked(ctx, orderID)
	}
}

func (m MultiObserver) Priced(ctx context.Context, orderID string, amount float64) {
	for _, o := range m {
		o.Priced(ctx, orderID, amount)
	}
}

func (m MultiObserver) Persisted(ctx context.Context, orderID string) {
	for _, o := range m {
		o.Persisted(ctx, orderID)
	}
}

func (m MultiObserver) Published(ctx context.Context, orderID string) {
	for _, o := range m {
		o.Published(ctx, orderID)
	}
}

func (m MultiObserver) Failed(ctx context.Context, orderID string, step Step, err error) {
	for _, o := range m {
		o.Failed(ctx, orderID, step, err)
	}
}
