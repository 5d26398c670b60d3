package reporting

import (
	"testing"

	"github.com/funnelops/funnelboard/internal/models"
)

func testClientData() *models.ClientData {
	return &models.ClientData{
		Client: models.Client{Slug: "acme"},
		Funnels: map[string]*models.FunnelData{
			"A": {
				FunnelTag:  "A",
				FunnelName: "Funnel A",
				Status:     models.StatusHealthy,
				Metrics:    models.AggregatedMetrics{Spend: 100, Revenue: 400, ROAS: 4.0},
				Opportunities: []string{
					"Excellent ROAS: 4.00x - room to scale",
				},
			},
			"B": {
				FunnelTag: "B",
				Status:    models.StatusCritical,
				Metrics:   models.AggregatedMetrics{Spend: 200, Revenue: 100, ROAS: 0.5},
				Alerts: []string{
					"Critical ROAS: 0.50x - pause underperforming campaigns",
				},
			},
			"C": {
				FunnelTag: "C",
				Status:    models.StatusWarning,
				Metrics:   models.AggregatedMetrics{Spend: 50, Revenue: 100, ROAS: 2.0},
				Alerts: []string{
					"Low ROAS: 2.00x - review targeting and creatives",
				},
			},
		},
	}
}

func TestFunnelComparison_SortedByROAS(t *testing.T) {
	rows := FunnelComparison(testClientData())

	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0].Funnel != "A" || rows[1].Funnel != "C" || rows[2].Funnel != "B" {
		t.Errorf("order = [%s %s %s], want [A C B]", rows[0].Funnel, rows[1].Funnel, rows[2].Funnel)
	}
	if rows[0].Spend != 100 || rows[0].Revenue != 400 {
		t.Errorf("row A = %+v", rows[0])
	}
}

func TestFunnelComparison_Empty(t *testing.T) {
	rows := FunnelComparison(&models.ClientData{Funnels: map[string]*models.FunnelData{}})
	if len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}

func TestSummarizeAlerts(t *testing.T) {
	summary := SummarizeAlerts(testClientData())

	if len(summary.Alerts) != 2 {
		t.Fatalf("got %d alerts, want 2", len(summary.Alerts))
	}
	// Critical funnels sort ahead of warnings.
	if summary.Alerts[0].Funnel != "B" {
		t.Errorf("first alert from %q, want B", summary.Alerts[0].Funnel)
	}
	if summary.Alerts[1].Funnel != "C" {
		t.Errorf("second alert from %q, want C", summary.Alerts[1].Funnel)
	}

	if len(summary.Opportunities) != 1 || summary.Opportunities[0].Funnel != "A" {
		t.Errorf("opportunities = %+v", summary.Opportunities)
	}

	if summary.StatusCounts[models.StatusHealthy] != 1 ||
		summary.StatusCounts[models.StatusWarning] != 1 ||
		summary.StatusCounts[models.StatusCritical] != 1 {
		t.Errorf("status counts = %+v", summary.StatusCounts)
	}
	if summary.OverallStatus != models.StatusCritical {
		t.Errorf("overall = %q, want critical", summary.OverallStatus)
	}
}

func TestSummarizeAlerts_AllHealthy(t *testing.T) {
	data := &models.ClientData{
		Funnels: map[string]*models.FunnelData{
			"A": {FunnelTag: "A", Status: models.StatusHealthy},
		},
	}

	summary := SummarizeAlerts(data)
	if summary.OverallStatus != models.StatusHealthy {
		t.Errorf("overall = %q, want healthy", summary.OverallStatus)
	}
	if len(summary.Alerts) != 0 {
		t.Errorf("alerts = %+v, want none", summary.Alerts)
	}
}

func TestSummarizeAlerts_WarningWithoutCritical(t *testing.T) {
	data := &models.ClientData{
		Funnels: map[string]*models.FunnelData{
			"A": {FunnelTag: "A", Status: models.StatusHealthy},
			"B": {FunnelTag: "B", Status: models.StatusWarning},
		},
	}

	summary := SummarizeAlerts(data)
	if summary.OverallStatus != models.StatusWarning {
		t.Errorf("overall = %q, want warning", summary.OverallStatus)
	}
}
