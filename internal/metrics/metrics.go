// Package metrics exposes Prometheus counters for the fetch pipelines.
// Registration is lazy so library consumers that never call Init pay
// nothing and tests can run without touching the default registry.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	parameterPagesTotal   prometheus.Counter
	parametersLoadedTotal prometheus.Counter
	secretsLoadedTotal    prometheus.Counter
	fetchFailuresTotal    *prometheus.CounterVec
	refreshesTotal        *prometheus.CounterVec

	metricsOnce       sync.Once
	metricsRegistered bool
)

// Init registers all metrics on the default Prometheus registry.
// Call once at startup if metrics are wanted; safe to call again.
func Init() {
	metricsOnce.Do(func() {
		parameterPagesTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "remoteconfig_parameter_pages_total",
			Help: "Total number of parameter store pages fetched",
		})

		parametersLoadedTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "remoteconfig_parameters_loaded_total",
			Help: "Total number of parameters loaded from the parameter store",
		})

		secretsLoadedTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "remoteconfig_secrets_loaded_total",
			Help: "Total number of secrets loaded from the secret store",
		})

		fetchFailuresTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "remoteconfig_fetch_failures_total",
				Help: "Total number of fetch failures by store",
			},
			[]string{"store"},
		)

		refreshesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "remoteconfig_refreshes_total",
				Help: "Total number of refresh operations by scope",
			},
			[]string{"scope"},
		)

		metricsRegistered = true
	})
}

// RecordParameterPage increments the page counter and adds the number
// of parameters the page carried.
func RecordParameterPage(parameters int) {
	if !metricsRegistered {
		return
	}
	parameterPagesTotal.Inc()
	parametersLoadedTotal.Add(float64(parameters))
}

// RecordSecretsLoaded adds to the loaded-secrets counter.
func RecordSecretsLoaded(n int) {
	if !metricsRegistered {
		return
	}
	secretsLoadedTotal.Add(float64(n))
}

// RecordFetchFailure increments the failure counter for a store
// ("parameter" or "secret").
func RecordFetchFailure(store string) {
	if !metricsRegistered {
		return
	}
	fetchFailuresTotal.WithLabelValues(store).Inc()
}

// RecordRefresh increments the refresh counter for a scope
// ("all", "parameters", or "secrets").
func RecordRefresh(scope string) {
	if !metricsRegistered {
		return
	}
	refreshesTotal.WithLabelValues(scope).Inc()
}
