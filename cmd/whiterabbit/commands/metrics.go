package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/rs/zerolog/log"
)

// PushMetrics sends the process metrics to a Prometheus Pushgateway.
func PushMetrics(ctx context.Context, url, job string) error {
	if job == "" {
		job = "whiterabbit"
	}
	pusher := push.New(url, job).Gatherer(prometheus.DefaultGatherer)
	if host, err := os.Hostname(); err == nil {
		pusher = pusher.Grouping("instance", host)
	}
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}
	log.Debug().Str("pushgateway", url).Str("job", job).Msg("Metrics pushed")
	return nil
}
