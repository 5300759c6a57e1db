package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cdCorey/woocommerce-sage-erp-connector/internal/application/export"
	"github.com/cdCorey/woocommerce-sage-erp-connector/internal/domain/commerce"
	"github.com/cdCorey/woocommerce-sage-erp-connector/internal/infrastructure/config"
	"github.com/cdCorey/woocommerce-sage-erp-connector/internal/infrastructure/logger"
	"github.com/cdCorey/woocommerce-sage-erp-connector/internal/infrastructure/messages"
	"github.com/cdCorey/woocommerce-sage-erp-connector/internal/infrastructure/persistence"
	"github.com/cdCorey/woocommerce-sage-erp-connector/internal/infrastructure/sage"
	"github.com/cdCorey/woocommerce-sage-erp-connector/internal/infrastructure/telemetry"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "connector",
		Short:         "Synchronize commerce orders into Sage ERP",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newUnexportCmd())
	cmd.AddCommand(newMessagesCmd())
	cmd.AddCommand(newMigrateCmd())
	return cmd
}

// ---------------------------------------------------------------------------
// Commands
// ---------------------------------------------------------------------------

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <order-id>...",
		Short: "Export the given orders to Sage ERP",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orderIDs, err := parseOrderIDs(args)
			if err != nil {
				return err
			}

			conn, err := newConnector(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close(cmd.Context())

			result := conn.Exporter.Export(cmd.Context(), orderIDs)
			for _, message := range result.Messages {
				fmt.Fprintln(cmd.OutOrStdout(), message)
			}
			if result.Failed > 0 {
				return fmt.Errorf("%d of %d orders failed to export",
					result.Failed, result.Failed+result.Succeeded)
			}
			return nil
		},
	}
}

func newUnexportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unexport <order-id>",
		Short: "Reverse a prior export (test mode only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid order id %q: %w", args[0], err)
			}

			conn, err := newConnector(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close(cmd.Context())

			if err := conn.Exporter.Unexport(cmd.Context(), orderID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order %d unexported\n", orderID)
			return nil
		},
	}
}

func newMessagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "messages",
		Short: "Print and clear buffered diagnostic messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := newConnector(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close(cmd.Context())

			buffered, err := conn.Sink.Drain(cmd.Context())
			if err != nil {
				return err
			}
			for _, message := range buffered {
				fmt.Fprintln(cmd.OutOrStdout(), message)
			}
			return nil
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the connector's database tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			db, err := persistence.NewDatabase(&cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Migrate(); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migration complete")
			return nil
		},
	}
}

func parseOrderIDs(args []string) ([]int64, error) {
	orderIDs := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid order id %q: %w", arg, err)
		}
		orderIDs = append(orderIDs, id)
	}
	return orderIDs, nil
}

// ---------------------------------------------------------------------------
// Wiring
// ---------------------------------------------------------------------------

// connector holds the wired dependencies for one CLI invocation
type connector struct {
	Exporter *export.Exporter
	Sink     export.MessageSink

	logger *zap.Logger
	db     *persistence.Database
	meter  *telemetry.MeterProvider
	redis  *messages.RedisBuffer
}

func newConnector(ctx context.Context) (*connector, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	conn := &connector{logger: log, db: db}

	metaStore := persistence.NewGormMetaStore(db.DB)
	orders := persistence.NewGormOrderRepository(db.DB)
	linkage := commerce.NewLinkageStore(metaStore)

	sageClient, err := sage.NewClient(&sage.Config{
		Endpoint:       cfg.Sage.Endpoint,
		Username:       cfg.Sage.Username,
		Password:       cfg.Sage.Password,
		CompanyCode:    cfg.Sage.CompanyCode,
		TimeoutSeconds: cfg.Sage.TimeoutSeconds,
	}, log)
	if err != nil {
		conn.Close(ctx)
		return nil, err
	}

	extended := sage.NewExtendedClient(cfg.Sage.ExtendedEndpoint, cfg.Sage.ExtendedAPIKey, cfg.Sage.TimeoutSeconds, log)

	if cfg.Export.MessageBuffer == "redis" {
		buffer, err := messages.NewRedisBuffer(messages.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			conn.Close(ctx)
			return nil, err
		}
		conn.redis = buffer
		conn.Sink = buffer
	} else {
		conn.Sink = messages.NewMemoryBuffer()
	}

	var metrics export.Metrics
	if cfg.Telemetry.Enabled {
		meter, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
			Enabled:           true,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			ServiceName:       cfg.Telemetry.ServiceName,
			Insecure:          cfg.Telemetry.Insecure,
		}, log)
		if err != nil {
			conn.Close(ctx)
			return nil, err
		}
		conn.meter = meter

		exportMetrics, err := telemetry.NewExportMetrics(meter.Meter("connector"), log)
		if err != nil {
			conn.Close(ctx)
			return nil, err
		}
		metrics = exportMetrics
	}

	restrict := make([]commerce.OrderStatus, 0, len(cfg.Export.RestrictStatuses))
	for _, status := range cfg.Export.RestrictStatuses {
		restrict = append(restrict, commerce.OrderStatus(status))
	}

	conn.Exporter = export.NewExporter(
		sageClient,
		extended,
		orders,
		linkage,
		conn.Sink,
		export.Options{
			Defaults: export.Defaults{
				DivisionNo:            cfg.Defaults.DivisionNo,
				SalespersonNo:         cfg.Defaults.SalespersonNo,
				SalespersonDivisionNo: cfg.Defaults.SalespersonDivisionNo,
				PriceLevel:            cfg.Defaults.PriceLevel,
			},
			TestMode:         cfg.Export.TestMode,
			RestrictStatuses: restrict,
			Metrics:          metrics,
		},
		log,
	)
	return conn, nil
}

// Close releases the connector's resources, flushing telemetry first
func (c *connector) Close(ctx context.Context) {
	if c.meter != nil {
		if err := c.meter.Shutdown(ctx); err != nil {
			c.logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.logger.Warn("redis close failed", zap.Error(err))
		}
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			c.logger.Warn("database close failed", zap.Error(err))
		}
	}
	_ = c.logger.Sync()
}
