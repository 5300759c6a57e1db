package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/cdCorey/woocommerce-sage-erp-connector/internal/application/export"
)

// ErrMeterNil indicates a nil meter was passed to a metrics constructor
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// ExportMetrics counts export outcomes. It implements export.Metrics.
type ExportMetrics struct {
	logger *zap.Logger

	ordersExportedTotal *Counter
	ordersFailedTotal   *Counter
}

// NewExportMetrics creates a new ExportMetrics instance on the given meter
func NewExportMetrics(meter metric.Meter, logger *zap.Logger) (*ExportMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &ExportMetrics{logger: logger}

	var err error
	m.ordersExportedTotal, err = NewCounter(
		meter,
		"connector_orders_exported_total",
		"Total number of orders successfully exported to the remote ERP",
		"{orders}",
	)
	if err != nil {
		return nil, err
	}

	m.ordersFailedTotal, err = NewCounter(
		meter,
		"connector_orders_export_failed_total",
		"Total number of orders that failed to export",
		"{orders}",
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// OrderExported counts one successful order export
func (m *ExportMetrics) OrderExported(ctx context.Context) {
	m.ordersExportedTotal.Inc(ctx)
}

// OrderFailed counts one failed order export
func (m *ExportMetrics) OrderFailed(ctx context.Context) {
	m.ordersFailedTotal.Inc(ctx)
}

// Ensure ExportMetrics implements export.Metrics
var _ export.Metrics = (*ExportMetrics)(nil)
