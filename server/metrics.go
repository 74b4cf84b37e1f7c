package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/stewardhq/steward/router"
)

// metrics holds the server's prometheus collectors. Fallbacks and provider
// errors are separate series: a fallback is a routing decision, a provider
// error is an outage.
type metrics struct {
	chatRequests   prometheus.Counter
	fallbacks      *prometheus.CounterVec
	providerErrors *prometheus.CounterVec
	toolExecutions *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		chatRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "steward_chat_requests_total",
			Help: "Chat requests received.",
		}),
		fallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "steward_remote_fallbacks_total",
			Help: "Requests that fell back from the remote agent to the local path.",
		}, []string{"reason"}),
		providerErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "steward_provider_errors_total",
			Help: "LLM provider call failures.",
		}, []string{"provider"}),
		toolExecutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "steward_tool_executions_total",
			Help: "Tool executions by tool and outcome.",
		}, []string{"tool", "status"}),
	}
}

// hooks adapts the collectors to the router's metrics interface.
func (m *metrics) hooks() router.Metrics {
	return router.Metrics{
		Fallback: func(reason string) {
			m.fallbacks.WithLabelValues(reason).Inc()
		},
		ProviderError: func(provider string) {
			m.providerErrors.WithLabelValues(provider).Inc()
		},
		ToolExecution: func(tool, status string) {
			m.toolExecutions.WithLabelValues(tool, status).Inc()
		},
	}
}
