// Package telemetry records one run of settle as a build scan report.
//
// Reports are Prometheus text files written to the build cache's scans
// directory, one per run and named by a random scan id. Whether a report
// is written follows the environment's publish policy. Nothing is sent
// over the network.
package telemetry

import (
	"bytes"
	"path/filepath"
	"strconv"
	"time"

	"github.com/arthur-debert/settle/pkg/environment"
	"github.com/arthur-debert/settle/pkg/errors"
	"github.com/arthur-debert/settle/pkg/logging"
	"github.com/arthur-debert/settle/pkg/types"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Report collects metrics for a single run
type Report struct {
	id       string
	started  time.Time
	registry *prometheus.Registry

	modules   prometheus.Gauge
	synced    prometheus.Counter
	contexts  prometheus.Counter
	forced    prometheus.Gauge
	errors    *prometheus.CounterVec
	duration  prometheus.Gauge
	failed    prometheus.Gauge
	scanInfo  *prometheus.GaugeVec
	published bool
}

// NewReport starts a report with a fresh scan id
func NewReport() *Report {
	r := &Report{
		id:       uuid.NewString(),
		started:  time.Now(),
		registry: prometheus.NewRegistry(),
		modules: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "settle_modules",
			Help: "Modules in the project tree.",
		}),
		synced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "settle_modules_synced_total",
			Help: "Modules whose metadata was synchronized.",
		}),
		contexts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "settle_resolution_contexts_enforced_total",
			Help: "Resolution contexts the catalog policy was attached to.",
		}),
		forced: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "settle_forced_directives",
			Help: "Forced version directives derived from the catalogs.",
		}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "settle_errors_total",
			Help: "Errors by code.",
		}, []string{"code"}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "settle_run_duration_seconds",
			Help: "Wall time of the run.",
		}),
		failed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "settle_run_failed",
			Help: "1 when the run failed.",
		}),
		scanInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "settle_scan_info",
			Help: "Build scan identity and consent.",
		}, []string{"scan_id", "terms_of_service_url", "terms_of_service_agree", "publish_always"}),
	}
	r.registry.MustRegister(r.modules, r.synced, r.contexts, r.forced, r.errors, r.duration, r.failed, r.scanInfo)
	return r
}

// ID returns the scan id
func (r *Report) ID() string {
	return r.id
}

// Modules records the tree size
func (r *Report) Modules(n int) {
	r.modules.Set(float64(n))
}

// ModuleSynced counts one synchronized module
func (r *Report) ModuleSynced() {
	r.synced.Inc()
}

// Enforced records the attached contexts and directive count
func (r *Report) Enforced(contexts, directives int) {
	r.contexts.Add(float64(contexts))
	r.forced.Set(float64(directives))
}

// Error counts an error by its code
func (r *Report) Error(err error) {
	if err == nil {
		return
	}
	r.errors.WithLabelValues(string(errors.GetErrorCode(err))).Inc()
}

// Registry exposes the underlying registry
func (r *Report) Registry() *prometheus.Registry {
	return r.registry
}

// Publish writes the report when the policy allows it and returns the
// written path. An empty path means the policy declined.
func (r *Report) Publish(fs types.FS, env *environment.EnvironmentConfig, failed bool) (string, error) {
	logger := logging.GetLogger("telemetry")
	if r.published {
		return "", nil
	}
	if !env.ShouldPublish(failed) {
		logger.Debug().Bool("failed", failed).Msg("Publish policy declined build scan")
		return "", nil
	}

	tel := env.Telemetry()
	r.scanInfo.WithLabelValues(r.id, tel.TermsOfServiceURL, tel.TermsOfServiceAgree, strconv.FormatBool(tel.PublishAlways)).Set(1)
	r.duration.Set(time.Since(r.started).Seconds())
	if failed {
		r.failed.Set(1)
	}

	data, err := r.encode()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to encode build scan")
	}
	if err := fs.MkdirAll(tel.ReportDir, 0755); err != nil {
		return "", errors.Wrap(err, errors.ErrDirCreate, "failed to create scan directory").
			WithDetail("dir", tel.ReportDir)
	}
	path := filepath.Join(tel.ReportDir, r.id+".prom")
	if err := fs.WriteFile(path, data, 0644); err != nil {
		return "", errors.Wrap(err, errors.ErrFileWrite, "failed to write build scan").
			WithDetail("path", path)
	}
	r.published = true

	logger.Info().Str("scan", r.id).Str("path", path).Msg("Build scan written")
	return path, nil
}

// encode renders the registry in the Prometheus text format
func (r *Report) encode() ([]byte, error) {
	families, err := r.registry.Gather()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
