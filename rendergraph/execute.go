package rendergraph

import (
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/vull-engine/vull/internal/logx"
)

// ExecuteOption configures a single [Plan.Execute] call.
type ExecuteOption func(*executeConfig)

type executeConfig struct {
	timestamps     bool
	log            logx.Logger
	metricsLimiter *catrate.Limiter
}

// WithTimestampPool enables per-pass timing. When enabled, [Plan.Execute]
// returns a pass_times map of pass name to elapsed wall time around
// each pass's bound barrier, begin/end rendering, and execute callback
// — the CPU-side analogue of the domain model's GPU timestamp queries,
// since this package has no GPU timeline of its own to query.
func WithTimestampPool(enabled bool) ExecuteOption {
	return func(c *executeConfig) { c.timestamps = enabled }
}

// WithExecuteLogger attaches a structured logger used to report
// pass_times.
func WithExecuteLogger(log logx.Logger) ExecuteOption {
	return func(c *executeConfig) { c.log = log }
}

// WithMetricsRateLimit throttles how often pass_times are logged via
// limiter, reusing catrate's sliding-window limiter so a per-frame
// executor doesn't spam a log sink at frame rate.
func WithMetricsRateLimit(limiter *catrate.Limiter) ExecuteOption {
	return func(c *executeConfig) { c.metricsLimiter = limiter }
}

// Execute walks the plan's passes in order: binding each pass's
// barrier, beginning rendering for Graphics passes with declared
// attachments, invoking the execute callback (skipped entirely for a
// synchronization-only pass with no callback), then ending rendering.
func (p *Plan) Execute(cb CommandBuffer, opts ...ExecuteOption) map[string]time.Duration {
	c := executeConfig{log: logx.Nop()}
	for _, o := range opts {
		o(&c)
	}

	cb.Begin()
	defer cb.End()

	var passTimes map[string]time.Duration
	if c.timestamps {
		passTimes = make(map[string]time.Duration, len(p.passes))
	}

	for i, ps := range p.passes {
		var start time.Time
		if c.timestamps {
			start = time.Now()
			cb.WriteTimestamp(i * 2)
		}

		if b := p.barriers[i]; !b.empty() {
			cb.PipelineBarrier(b)
		}

		rendering := ps.kind == PassGraphics && (len(ps.colorAttachments) > 0 || ps.hasDepth)
		if rendering {
			depth := ResourceID(-1)
			if ps.hasDepth {
				depth = ps.depthAttachment
			}
			cb.BeginRendering(ps.colorAttachments, depth)
		}

		if ps.execute != nil {
			ps.execute(cb)
		}

		if rendering {
			cb.EndRendering()
		}

		if c.timestamps {
			cb.WriteTimestamp(i*2 + 1)
			elapsed := time.Since(start)
			passTimes[ps.name] = elapsed

			if c.metricsLimiter == nil {
				c.log.Debug().Str("pass", ps.name).Dur("elapsed", elapsed).Log("pass timing")
			} else if _, ok := c.metricsLimiter.Allow(ps.name); ok {
				c.log.Debug().Str("pass", ps.name).Dur("elapsed", elapsed).Log("pass timing")
			}
		}
	}

	return passTimes
}
