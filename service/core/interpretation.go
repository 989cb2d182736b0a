package core

import (
	sm "github.com/Arushi-290602/Captial-Asset-Price-Management/service/models"
)

// Classify maps a beta and an annualized alpha onto a risk and a performance tier
func Classify(beta, alpha float64) sm.Interpretation {
	return sm.Interpretation{
		Risk:        classifyRisk(beta),
		Performance: classifyPerformance(alpha),
	}
}

func classifyRisk(beta float64) sm.RiskTier {
	switch {
	case beta > sm.HighRiskBeta:
		return sm.RiskHigh
	case beta > sm.ModerateRiskBeta:
		return sm.RiskModerate
	default:
		return sm.RiskLow
	}
}

func classifyPerformance(alpha float64) sm.PerformanceTier {
	if alpha > sm.OutperformingAlpha {
		return sm.Outperforming
	}
	return sm.Underperforming
}
