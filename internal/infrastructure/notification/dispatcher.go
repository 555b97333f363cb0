package notification

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SaleNotification carries the facts of a completed sale to interested
// parties.
type SaleNotification struct {
	PlotID    uuid.UUID
	PlotNo    string
	BuyerID   uuid.UUID
	SalePrice string
}

// Dispatcher sends fire-and-forget notifications. Callers bound the call
// with a timeout context and log failures instead of propagating them.
type Dispatcher interface {
	NotifySaleCompleted(ctx context.Context, n SaleNotification) error
}

// LogDispatcher is a Dispatcher that only logs. Stands in for the real
// delivery channel in development and tests.
type LogDispatcher struct {
	logger *zap.Logger
}

// NewLogDispatcher creates a log-only dispatcher
func NewLogDispatcher(logger *zap.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger.Named("notification")}
}

// NotifySaleCompleted implements Dispatcher
func (d *LogDispatcher) NotifySaleCompleted(ctx context.Context, n SaleNotification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.logger.Info("sale completed",
		zap.String("plot_id", n.PlotID.String()),
		zap.String("plot_no", n.PlotNo),
		zap.String("buyer_id", n.BuyerID.String()),
		zap.String("sale_price", n.SalePrice),
	)
	return nil
}

var _ Dispatcher = (*LogDispatcher)(nil)
