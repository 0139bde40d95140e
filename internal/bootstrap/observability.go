package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/quillhq/quill/config"
	"github.com/quillhq/quill/internal/observability/statsd"
)

// NewMetricsSink builds the StatsD client from configuration. The returned
// client is a no-op when metrics are disabled.
func NewMetricsSink(cfg config.MetricsConfig, logger *slog.Logger) (*statsd.Client, error) {
	client, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Enabled,
		Address: cfg.Address,
		Prefix:  cfg.Prefix,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create statsd client: %w", err)
	}

	if client.Enabled() && logger != nil {
		logger.Info("metrics enabled", "addr", cfg.Address, "prefix", cfg.Prefix)
	}

	return client, nil
}
