package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	socialActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "daoplus",
		Name:      "social_actions_total",
		Help:      "Social graph operations by action and outcome",
	}, []string{"action", "outcome"})

	rewardPoints = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "daoplus",
		Name:      "reward_points_total",
		Help:      "Reward points moved through the ledger",
	}, []string{"direction"})
)

func observe(action string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(KindOf(err))
	}
	socialActions.WithLabelValues(action, outcome).Inc()
}
