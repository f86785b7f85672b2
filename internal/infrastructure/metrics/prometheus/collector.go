package prometheusmetrics

import (
	"github.com/crowdescrow/escrowd/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "escrowd"

// Collector turns subject events into prometheus metrics.
type Collector struct {
	events          *prometheus.CounterVec
	contributed     *prometheus.CounterVec
	refunded        prometheus.Counter
	disputes        prometheus.Counter
	appeals         prometheus.Counter
	resolved        *prometheus.CounterVec
	withdrawn       prometheus.Counter
	pendingRequests prometheus.Gauge
}

func NewCollector(registerer prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Subject events by type.",
		}, []string{"type"}),
		contributed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contributed_value_total",
			Help:      "Value accepted into funding rounds by side.",
		}, []string{"side"}),
		refunded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refunded_value_total",
			Help:      "Contribution value sent back because it exceeded the requirement.",
		}),
		disputes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "disputes_raised_total",
			Help:      "Disputes opened on adjudicators.",
		}),
		appeals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appeals_raised_total",
			Help:      "Appeals opened on adjudicators.",
		}),
		resolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_resolved_total",
			Help:      "Resolved requests by final ruling.",
		}, []string{"ruling"}),
		withdrawn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rewards_withdrawn_value_total",
			Help:      "Value withdrawn as rewards or reimbursements.",
		}),
		pendingRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_requests",
			Help:      "Requests submitted and not yet resolved since start.",
		}),
	}

	for _, collector := range []prometheus.Collector{
		c.events, c.contributed, c.refunded, c.disputes,
		c.appeals, c.resolved, c.withdrawn, c.pendingRequests,
	} {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// HandleEvents is meant to be registered as events handler on the subject
// topic.
func (c *Collector) HandleEvents(events []domain.SubjectEvent) {
	for _, event := range events {
		c.events.WithLabelValues(string(event.GetType())).Inc()

		switch e := event.(type) {
		case domain.RequestSubmitted:
			c.pendingRequests.Inc()
		case domain.ContributionAccepted:
			c.contributed.WithLabelValues(e.Side.String()).Add(float64(e.Accepted))
			c.refunded.Add(float64(e.Refunded))
		case domain.DisputeRaised:
			c.disputes.Inc()
		case domain.AppealRaised:
			c.appeals.Inc()
		case domain.RequestResolved:
			c.resolved.WithLabelValues(e.Ruling.String()).Inc()
			c.pendingRequests.Dec()
		case domain.RewardWithdrawn:
			c.withdrawn.Add(float64(e.Amount))
		}
	}
}
