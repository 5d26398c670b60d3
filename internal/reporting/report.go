// Package reporting assembles dashboard-facing report structures from a
// finished aggregation run: cross-funnel comparisons and the alert digest.
package reporting

import (
	"sort"

	"github.com/funnelops/funnelboard/internal/models"
)

// FunnelComparisonRow summarizes one funnel for side-by-side comparison.
type FunnelComparisonRow struct {
	Funnel    string              `json:"funnel"`
	Name      string              `json:"name"`
	Type      models.FunnelType   `json:"type"`
	Status    models.FunnelStatus `json:"status"`
	Spend     float64             `json:"spend"`
	Revenue   float64             `json:"revenue"`
	ROAS      float64             `json:"roas"`
	CPP       float64             `json:"cpp"`
	Purchases float64             `json:"purchases"`
	Campaigns int                 `json:"campaigns"`
	Active    int                 `json:"active"`
}

// FunnelComparison flattens a client's funnels into comparison rows sorted by
// ROAS descending.
func FunnelComparison(data *models.ClientData) []FunnelComparisonRow {
	rows := make([]FunnelComparisonRow, 0, len(data.Funnels))
	for tag, fd := range data.Funnels {
		rows = append(rows, FunnelComparisonRow{
			Funnel:    tag,
			Name:      fd.FunnelName,
			Type:      fd.FunnelType,
			Status:    fd.Status,
			Spend:     fd.Metrics.Spend,
			Revenue:   fd.Metrics.Revenue,
			ROAS:      fd.Metrics.ROAS,
			CPP:       fd.Metrics.CPP,
			Purchases: fd.Metrics.Purchases,
			Campaigns: fd.Metrics.TotalCampaigns,
			Active:    fd.Metrics.ActiveCampaigns,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].ROAS > rows[j].ROAS
	})
	return rows
}

// FunnelAlert is one alert message labeled with its funnel and that funnel's
// overall status.
type FunnelAlert struct {
	Funnel  string              `json:"funnel"`
	Message string              `json:"message"`
	Status  models.FunnelStatus `json:"status"`
}

// FunnelOpportunity is one opportunity message labeled with its funnel.
type FunnelOpportunity struct {
	Funnel  string `json:"funnel"`
	Message string `json:"message"`
}

// AlertsSummary digests every funnel's alerts and opportunities for the
// client-level alert panel.
type AlertsSummary struct {
	Alerts        []FunnelAlert               `json:"alerts"`
	Opportunities []FunnelOpportunity         `json:"opportunities"`
	StatusCounts  map[models.FunnelStatus]int `json:"status_counts"`
	OverallStatus models.FunnelStatus         `json:"overall_status"`
}

var severityOrder = map[models.FunnelStatus]int{
	models.StatusCritical: 0,
	models.StatusWarning:  1,
	models.StatusHealthy:  2,
}

// SummarizeAlerts collects alerts across every funnel, sorted most severe
// first, and rolls the per-funnel statuses into an overall client status.
func SummarizeAlerts(data *models.ClientData) AlertsSummary {
	summary := AlertsSummary{
		Alerts:        []FunnelAlert{},
		Opportunities: []FunnelOpportunity{},
		StatusCounts: map[models.FunnelStatus]int{
			models.StatusHealthy:  0,
			models.StatusWarning:  0,
			models.StatusCritical: 0,
		},
	}

	for _, fd := range data.Funnels {
		for _, alert := range fd.Alerts {
			summary.Alerts = append(summary.Alerts, FunnelAlert{
				Funnel:  fd.FunnelTag,
				Message: alert,
				Status:  fd.Status,
			})
		}
		for _, opp := range fd.Opportunities {
			summary.Opportunities = append(summary.Opportunities, FunnelOpportunity{
				Funnel:  fd.FunnelTag,
				Message: opp,
			})
		}
		summary.StatusCounts[fd.Status]++
	}

	sort.SliceStable(summary.Alerts, func(i, j int) bool {
		return severityOrder[summary.Alerts[i].Status] < severityOrder[summary.Alerts[j].Status]
	})

	switch {
	case summary.StatusCounts[models.StatusCritical] > 0:
		summary.OverallStatus = models.StatusCritical
	case summary.StatusCounts[models.StatusWarning] > 0:
		summary.OverallStatus = models.StatusWarning
	default:
		summary.OverallStatus = models.StatusHealthy
	}
	return summary
}
