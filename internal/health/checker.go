package health

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Probe is one dependency check. A failing Required probe makes the service
// not ready; a failing optional probe only marks it degraded.
type Probe struct {
	Name     string
	Required bool
	Check    func(ctx context.Context) error
}

// PostgresProbe wraps the pool ping.
func PostgresProbe(db Pinger) Probe {
	return Probe{Name: "postgres", Required: true, Check: db.Ping}
}

// CheckResult represents the health of a single dependency.
type CheckResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// HealthResult is the top-level health response. Status is up, degraded or down.
type HealthResult struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks,omitempty"`
}

// Checker verifies that all dependencies are reachable.
type Checker struct {
	probes []Probe
	logger *slog.Logger
	gauge  *prometheus.GaugeVec
}

// NewChecker creates a health checker and registers its Prometheus gauge.
func NewChecker(logger *slog.Logger, reg prometheus.Registerer, probes ...Probe) *Checker {
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "marketplace",
		Name:      "health_check_up",
		Help:      "Whether a dependency is reachable. 1 = up, 0 = down.",
	}, []string{"dependency"})
	reg.MustRegister(gauge)

	return &Checker{
		probes: probes,
		logger: logger.With("component", "health"),
		gauge:  gauge,
	}
}

// Liveness returns a simple "up" response if the process is running.
func (c *Checker) Liveness(_ context.Context) HealthResult {
	return HealthResult{Status: "up"}
}

// Readiness runs every probe under a shared 2s budget.
func (c *Checker) Readiness(ctx context.Context) HealthResult {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	result := HealthResult{
		Status: "up",
		Checks: make(map[string]CheckResult, len(c.probes)),
	}

	for _, p := range c.probes {
		if err := p.Check(checkCtx); err != nil {
			c.logger.WarnContext(ctx, "health check failed", "dependency", p.Name, "error", err)
			result.Checks[p.Name] = CheckResult{Status: "down", Error: err.Error()}
			c.gauge.WithLabelValues(p.Name).Set(0)
			switch {
			case p.Required:
				result.Status = "down"
			case result.Status == "up":
				result.Status = "degraded"
			}
			continue
		}
		result.Checks[p.Name] = CheckResult{Status: "up"}
		c.gauge.WithLabelValues(p.Name).Set(1)
	}

	return result
}
