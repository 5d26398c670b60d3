package logic

import (
	"fmt"

	"github.com/funnelops/funnelboard/internal/models"
)

// ClassifyFunnelHealth grades a funnel's rolled-up metrics and produces its
// overall status plus the ordered alert and opportunity messages.
//
// Checks run in a fixed order — ROAS, CPP, frequency, CTR, then the product
// margin note — because the message order is part of the contract with the
// dashboard. The status itself is a max-severity reduction over the checks:
// any critical grade makes the funnel critical, otherwise any warning makes
// it warning, otherwise it is healthy.
//
// CPP is judged against the bound product's economics when one exists and
// falls back to the funnel threshold table when none does.
func ClassifyFunnelHealth(funnel *models.Funnel, metrics models.AggregatedMetrics, product *models.FunnelProduct) (models.FunnelStatus, []string, []string) {
	alerts := []string{}
	opportunities := []string{}
	hasCritical := false
	hasWarning := false

	if metrics.ROAS > 0 {
		switch funnel.EvaluateMetric("roas", metrics.ROAS) {
		case models.LevelCritical:
			alerts = append(alerts, fmt.Sprintf("Critical ROAS: %.2fx - pause underperforming campaigns", metrics.ROAS))
			hasCritical = true
		case models.LevelWarning:
			alerts = append(alerts, fmt.Sprintf("Low ROAS: %.2fx - review targeting and creatives", metrics.ROAS))
			hasWarning = true
		case models.LevelExcellent:
			opportunities = append(opportunities, fmt.Sprintf("Excellent ROAS: %.2fx - room to scale", metrics.ROAS))
		}
	}

	if metrics.CPP > 0 {
		if product != nil && product.BreakevenCPP > 0 {
			breakeven := product.BreakevenCPP
			target := product.TargetCPP
			if target == 0 {
				target = breakeven / 2
			}
			switch product.EvaluateCPP(metrics.CPP) {
			case models.LevelCritical:
				alerts = append(alerts, fmt.Sprintf("CPP PAST BREAKEVEN: $%.2f (max: $%.2f) - PAUSE NOW", metrics.CPP, breakeven))
				hasCritical = true
			case models.LevelWarning:
				excess := metrics.CPP - breakeven
				alerts = append(alerts, fmt.Sprintf("CPP over breakeven: $%.2f ($%.2f past the $%.2f limit)", metrics.CPP, excess, breakeven))
				hasWarning = true
			case models.LevelExcellent:
				margin := target - metrics.CPP
				opportunities = append(opportunities, fmt.Sprintf("Excellent CPP: $%.2f ($%.2f below target) - scale!", metrics.CPP, margin))
			case models.LevelGood:
				opportunities = append(opportunities, fmt.Sprintf("Healthy CPP: $%.2f (target: $%.2f) - margin to scale", metrics.CPP, target))
			}
		} else {
			switch funnel.EvaluateMetric("cpp", metrics.CPP) {
			case models.LevelCritical:
				alerts = append(alerts, fmt.Sprintf("CPP far too high: $%.2f - optimize urgently", metrics.CPP))
				hasCritical = true
			case models.LevelWarning:
				alerts = append(alerts, fmt.Sprintf("High CPP: $%.2f - keep monitoring", metrics.CPP))
				hasWarning = true
			case models.LevelExcellent:
				opportunities = append(opportunities, fmt.Sprintf("Excellent CPP: $%.2f - scale the efficient campaigns", metrics.CPP))
			}
		}
	}

	if metrics.Frequency > 0 {
		switch funnel.EvaluateMetric("frequency", metrics.Frequency) {
		case models.LevelCritical:
			alerts = append(alerts, fmt.Sprintf("Critical frequency: %.2f - audience saturated", metrics.Frequency))
			hasCritical = true
		case models.LevelWarning:
			alerts = append(alerts, fmt.Sprintf("High frequency: %.2f - prepare fresh creatives", metrics.Frequency))
			hasWarning = true
		}
	}

	if metrics.CTR > 0 {
		switch funnel.EvaluateMetric("ctr", metrics.CTR) {
		case models.LevelCritical:
			alerts = append(alerts, fmt.Sprintf("Low CTR: %.2f%% - rework creatives urgently", metrics.CTR))
			hasCritical = true
		case models.LevelExcellent:
			opportunities = append(opportunities, fmt.Sprintf("Strong CTR: %.2f%% - duplicate into new audiences", metrics.CTR))
		}
	}

	if product != nil && metrics.Purchases > 0 {
		estimatedRevenue := metrics.Purchases * product.Price
		actualProfit := estimatedRevenue - metrics.Spend
		if actualProfit > 0 && estimatedRevenue > 0 {
			marginPercent := actualProfit / estimatedRevenue * 100
			if marginPercent >= 50 {
				opportunities = append(opportunities, fmt.Sprintf("Healthy margin: %.0f%% ($%.0f estimated profit)", marginPercent, actualProfit))
			}
		}
	}

	status := models.StatusHealthy
	if hasCritical {
		status = models.StatusCritical
	} else if hasWarning {
		status = models.StatusWarning
	}
	return status, alerts, opportunities
}
