package prometheusmetrics_test

import (
	"strings"
	"testing"

	"github.com/crowdescrow/escrowd/internal/core/domain"
	prometheusmetrics "github.com/crowdescrow/escrowd/internal/infrastructure/metrics/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

const expectedMetrics = `
# HELP escrowd_contributed_value_total Value accepted into funding rounds by side.
# TYPE escrowd_contributed_value_total counter
escrowd_contributed_value_total{side="challenger"} 300
escrowd_contributed_value_total{side="requester"} 200
# HELP escrowd_pending_requests Requests submitted and not yet resolved since start.
# TYPE escrowd_pending_requests gauge
escrowd_pending_requests 1
# HELP escrowd_refunded_value_total Contribution value sent back because it exceeded the requirement.
# TYPE escrowd_refunded_value_total counter
escrowd_refunded_value_total 50
# HELP escrowd_rewards_withdrawn_value_total Value withdrawn as rewards or reimbursements.
# TYPE escrowd_rewards_withdrawn_value_total counter
escrowd_rewards_withdrawn_value_total 400
`

func TestCollector(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector, err := prometheusmetrics.NewCollector(registry)
	require.NoError(t, err)

	collector.HandleEvents([]domain.SubjectEvent{
		domain.RequestSubmitted{SubjectId: "a"},
		domain.RequestSubmitted{SubjectId: "b"},
		domain.ContributionAccepted{SubjectId: "a", Side: domain.SideRequester, Accepted: 200, Refunded: 50},
		domain.ContributionAccepted{SubjectId: "a", Side: domain.SideChallenger, Accepted: 300},
		domain.DisputeRaised{SubjectId: "a"},
		domain.RequestResolved{SubjectId: "a", Ruling: domain.RulingReject},
		domain.RewardWithdrawn{SubjectId: "a", Amount: 400},
	})

	count, err := testutil.GatherAndCount(registry, "escrowd_events_total")
	require.NoError(t, err)
	require.Equal(t, 5, count)

	require.NoError(t, testutil.GatherAndCompare(
		registry, strings.NewReader(expectedMetrics),
		"escrowd_contributed_value_total",
		"escrowd_pending_requests",
		"escrowd_refunded_value_total",
		"escrowd_rewards_withdrawn_value_total",
	))

	_, err = prometheusmetrics.NewCollector(registry)
	require.Error(t, err)
}
