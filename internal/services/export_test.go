package services

import dto "github.com/prometheus/client_model/go"

// RewardPointsTotal reads the reward counter for one direction.
func RewardPointsTotal(direction string) float64 {
	m := &dto.Metric{}
	if err := rewardPoints.WithLabelValues(direction).Write(m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}
