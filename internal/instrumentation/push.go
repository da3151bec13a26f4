package instrumentation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus/push"
)

// Push sends the provider's current metrics to the configured Pushgateway.
// A triage run is a short-lived batch job with nothing left to scrape once it
// exits, so its metrics are pushed once at the end of the run instead.
//
// Push is a no-op when instrumentation is disabled or no Pushgateway URL is set.
func (p *Provider) Push(ctx context.Context) error {
	if !p.enabled || p.config.PushgatewayURL == "" {
		return nil
	}
	gatherer := p.Gatherer()
	if gatherer == nil {
		return fmt.Errorf("pushgateway requires the prometheus metrics exporter")
	}

	job := p.config.PushJobName
	if job == "" {
		job = p.config.ServiceName
	}

	pusher := push.New(p.config.PushgatewayURL, job).Gatherer(gatherer)
	if p.config.ServiceInstanceID != "" {
		pusher = pusher.Grouping("instance", p.config.ServiceInstanceID)
	}

	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", p.config.PushgatewayURL, err)
	}
	slog.Debug("pushed metrics", "component", "instrumentation", "pushgateway", p.config.PushgatewayURL, "job", job)
	return nil
}
