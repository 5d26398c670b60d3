package logic

import (
	"testing"

	"go.uber.org/zap"

	"github.com/funnelops/funnelboard/internal/models"
	"github.com/funnelops/funnelboard/internal/registry"
)

func newTestAggregator(t *testing.T) *Aggregator {
	t.Helper()
	dir := t.TempDir()
	funnels := registry.NewFunnelRegistry(dir, zap.NewNop())
	products := registry.NewProductRegistry(dir, zap.NewNop())
	return NewAggregator(funnels, products, zap.NewNop())
}

func rawCampaign(id, name string, spend, purchases, revenue float64, active bool) models.RawCampaign {
	status := "PAUSED"
	if active {
		status = models.EffectiveStatusActive
	}
	actions := []models.ActionValue{}
	if purchases > 0 {
		actions = append(actions, models.ActionValue{ActionType: "purchase", Value: purchases})
	}
	var values []models.ActionValue
	if revenue > 0 {
		values = append(values, models.ActionValue{ActionType: "purchase", Value: revenue})
	}
	return models.RawCampaign{
		ID:              id,
		Name:            name,
		Status:          status,
		EffectiveStatus: status,
		Insights: &models.InsightsData{Data: []models.InsightRow{{
			Spend:        spend,
			Actions:      actions,
			ActionValues: values,
		}}},
	}
}

func TestAggregateCampaigns(t *testing.T) {
	res := []models.ParsedCampaign{
		{EffectiveStatus: "ACTIVE", Metrics: models.CampaignMetrics{Spend: 10, Purchases: 1}},
		{EffectiveStatus: "PAUSED", Metrics: models.CampaignMetrics{Spend: 20, Purchases: 1}},
		{EffectiveStatus: "ACTIVE", Metrics: models.CampaignMetrics{Spend: 30}},
	}

	m := AggregateCampaigns(res)

	if m.Spend != 60 {
		t.Errorf("Spend = %v, want 60", m.Spend)
	}
	if m.Purchases != 2 {
		t.Errorf("Purchases = %v, want 2", m.Purchases)
	}
	if m.CPP != 30 {
		t.Errorf("CPP = %v, want 30", m.CPP)
	}
	if m.TotalCampaigns != 3 {
		t.Errorf("TotalCampaigns = %v, want 3", m.TotalCampaigns)
	}
	if m.ActiveCampaigns != 2 {
		t.Errorf("ActiveCampaigns = %v, want 2", m.ActiveCampaigns)
	}
}

func TestAggregateCampaigns_Empty(t *testing.T) {
	m := AggregateCampaigns(nil)
	if m.Spend != 0 || m.ROAS != 0 || m.CPP != 0 || m.TotalCampaigns != 0 {
		t.Errorf("empty aggregate must be all zero, got %+v", m)
	}
}

func TestAggregateClient(t *testing.T) {
	agg := newTestAggregator(t)
	client := models.Client{ID: "CLI_ACM", Slug: "acme", Status: models.ClientStatusActive}

	raw := []models.RawCampaign{
		rawCampaign("1", "{A} - COLD - one", 50, 2, 200, true),
		rawCampaign("2", "{A} - RET - two", 30, 1, 90, true),
		rawCampaign("3", "{B} - COLD - three", 40, 1, 60, false),
		rawCampaign("4", "Untracked brand push", 30, 0, 0, true),
	}

	data, err := agg.AggregateClient(client, raw)
	if err != nil {
		t.Fatalf("AggregateClient: %v", err)
	}

	if len(data.Funnels) != 2 {
		t.Fatalf("got %d funnels, want 2", len(data.Funnels))
	}
	if len(data.UntaggedCampaigns) != 1 {
		t.Fatalf("got %d untagged, want 1", len(data.UntaggedCampaigns))
	}

	a := data.Funnels["A"]
	if a == nil {
		t.Fatal("funnel A missing")
	}
	if a.Metrics.Spend != 80 {
		t.Errorf("funnel A spend = %v, want 80", a.Metrics.Spend)
	}
	if a.Metrics.Purchases != 3 {
		t.Errorf("funnel A purchases = %v, want 3", a.Metrics.Purchases)
	}
	if a.FunnelType != models.FunnelCustom {
		t.Errorf("funnel A type = %q, want custom for an auto-registered tag", a.FunnelType)
	}

	// Client totals cover every campaign, untagged included.
	if data.Metrics.Spend != 150 {
		t.Errorf("client spend = %v, want 150", data.Metrics.Spend)
	}
	if data.Metrics.TotalCampaigns != 4 {
		t.Errorf("client TotalCampaigns = %v, want 4", data.Metrics.TotalCampaigns)
	}
	if data.Metrics.ActiveCampaigns != 3 {
		t.Errorf("client ActiveCampaigns = %v, want 3", data.Metrics.ActiveCampaigns)
	}
	if data.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set")
	}
}

func TestAggregateClient_UntaggedNeverBecomesFunnel(t *testing.T) {
	agg := newTestAggregator(t)
	client := models.Client{Slug: "acme"}

	data, err := agg.AggregateClient(client, []models.RawCampaign{
		rawCampaign("1", "plain name", 10, 0, 0, true),
		rawCampaign("2", "another plain name", 20, 0, 0, true),
	})
	if err != nil {
		t.Fatalf("AggregateClient: %v", err)
	}

	if len(data.Funnels) != 0 {
		t.Errorf("got %d funnels, want 0", len(data.Funnels))
	}
	if len(data.UntaggedCampaigns) != 2 {
		t.Errorf("got %d untagged, want 2", len(data.UntaggedCampaigns))
	}
	if data.Metrics.Spend != 30 {
		t.Errorf("client spend = %v, want 30", data.Metrics.Spend)
	}
}

func TestAggregateClient_SameInputSameOutput(t *testing.T) {
	agg := newTestAggregator(t)
	client := models.Client{Slug: "acme"}
	raw := []models.RawCampaign{
		rawCampaign("1", "{A} - COLD - one", 50, 2, 200, true),
	}

	first, err := agg.AggregateClient(client, raw)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := agg.AggregateClient(client, raw)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if first.Metrics != second.Metrics {
		t.Errorf("metrics differ across runs: %+v vs %+v", first.Metrics, second.Metrics)
	}
	if first.Funnels["A"].Status != second.Funnels["A"].Status {
		t.Errorf("status differs across runs")
	}
}
