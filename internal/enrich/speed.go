package enrich

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/pkg/pagespeed"
)

// SpeedAdapter maps PageSpeed Insights results onto the enrichment
// metrics block. A nil client means the integration is unconfigured
// and measurement is skipped entirely.
type SpeedAdapter struct {
	client pagespeed.Client
}

func NewSpeedAdapter(client pagespeed.Client) *SpeedAdapter {
	return &SpeedAdapter{client: client}
}

// Measure runs an analysis for targetURL. It returns nil when the
// adapter is unconfigured or targetURL is empty, and an error-marked
// record (all metrics unset) when the upstream call fails, so
// downstream consumers can distinguish "not attempted" from "failed".
func (a *SpeedAdapter) Measure(ctx context.Context, targetURL string) *model.PageSpeed {
	if a == nil || a.client == nil || targetURL == "" {
		return nil
	}

	resp, err := a.client.Run(ctx, targetURL)
	if err != nil {
		zap.L().Warn("pagespeed: run failed", zap.String("url", targetURL), zap.Error(err))
		return &model.PageSpeed{Error: "PageSpeed analysis failed: " + err.Error()}
	}

	ps := &model.PageSpeed{}
	lh := resp.LighthouseResult
	if lh == nil {
		ps.Error = "PageSpeed analysis returned no lighthouse result"
		return ps
	}

	if cat := lh.Categories.Performance; cat != nil && cat.Score != nil {
		score := *cat.Score * 100
		ps.Performance = &score
	}
	if v := auditDisplay(lh.Audits, "largest-contentful-paint"); v != "" {
		ps.LCP = &v
	}
	if v := auditDisplay(lh.Audits, "first-contentful-paint"); v != "" {
		ps.FCP = &v
	}
	if v := auditDisplay(lh.Audits, "interactive"); v != "" {
		ps.TTI = &v
	}
	if load, ok := observedLoad(lh.Audits); ok {
		ps.ObservedLoad = &load
	}
	return ps
}

func auditDisplay(audits map[string]pagespeed.Audit, key string) string {
	return audits[key].DisplayValue
}

// observedLoad digs the observed load time out of the metrics audit,
// whose details carry a single items entry of raw timings.
func observedLoad(audits map[string]pagespeed.Audit) (float64, bool) {
	metrics, ok := audits["metrics"]
	if !ok || metrics.Details == nil || len(metrics.Details.Items) == 0 {
		return 0, false
	}
	v, ok := metrics.Details.Items[0]["observedLoad"]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}
