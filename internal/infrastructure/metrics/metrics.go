package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// decisions_total{kind,action,outcome}; outcome is ok, rejected or error
	Decisions *prometheus.CounterVec

	// notify_total{event,result}; result is delivered, retried, failed or dropped
	Notifications *prometheus.CounterVec

	ModerationHits *prometheus.CounterVec
}

var singleton = sync.OnceValue(func() *Metrics {
	return &Metrics{
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "approval",
			Name:      "decisions_total",
			Help:      "Reviewer decisions broken down by entity kind, action and outcome.",
		}, []string{"kind", "action", "outcome"}),
		Notifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "approval",
			Name:      "notify_total",
			Help:      "Notification delivery attempts by event name and result.",
		}, []string{"event", "result"}),
		ModerationHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "approval",
			Name:      "moderation_verdicts_total",
			Help:      "Moderation verdicts by action.",
		}, []string{"action"}),
	}
})

// Default returns the process-wide collectors registered on the default registry.
func Default() *Metrics { return singleton() }
