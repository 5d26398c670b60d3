// Package logic contains the aggregation engine: the metric roll-up over
// parsed campaigns, the funnel health classifier and the per-client
// orchestration that ties parser, registries and classifier together.
//
// Every aggregation run is a pure transform over already-fetched inputs.
// Re-running with the same campaigns and configuration produces identical
// output; the only shared state is the injected registries, which guard their
// own lazy creation paths.
package logic

import (
	"time"

	"go.uber.org/zap"

	"github.com/funnelops/funnelboard/internal/models"
	"github.com/funnelops/funnelboard/internal/parser"
	"github.com/funnelops/funnelboard/internal/registry"
)

// Aggregator groups campaigns by funnel tag and produces client-level
// summaries with per-funnel health classification.
type Aggregator struct {
	funnels  *registry.FunnelRegistry
	products *registry.ProductRegistry
	logger   *zap.Logger
}

// NewAggregator wires an aggregator to its configuration registries. The
// product registry may be nil, in which case CPP is classified against
// generic funnel thresholds only.
func NewAggregator(funnels *registry.FunnelRegistry, products *registry.ProductRegistry, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		funnels:  funnels,
		products: products,
		logger:   logger,
	}
}

// AggregateCampaigns rolls a campaign list up into one AggregatedMetrics.
// An empty list yields an all-zero value object.
func AggregateCampaigns(campaigns []models.ParsedCampaign) models.AggregatedMetrics {
	var m models.AggregatedMetrics
	for _, c := range campaigns {
		m.Spend += c.Metrics.Spend
		m.Revenue += c.Metrics.Revenue
		m.Impressions += c.Metrics.Impressions
		m.Reach += c.Metrics.Reach
		m.Clicks += c.Metrics.Clicks
		m.Purchases += c.Metrics.Purchases
		m.Leads += c.Metrics.Leads
		m.TotalCampaigns++
		if c.IsActive() {
			m.ActiveCampaigns++
		}
	}
	m.CalculateDerived()
	return m
}

// AggregateClient runs a full aggregation pass for one client: parse and
// group the raw campaigns, roll up and classify each funnel, then compute
// client totals over the entire campaign list.
//
// Client-level metrics are deliberately recomputed over all parsed campaigns
// instead of summing the per-funnel aggregates, so untagged campaigns are
// included and no rounding drift accumulates.
func (a *Aggregator) AggregateClient(client models.Client, rawCampaigns []models.RawCampaign) (*models.ClientData, error) {
	parsed := parser.ParseCampaigns(rawCampaigns)

	funnelsData := make(map[string]*models.FunnelData, len(parsed.Funnels))
	for tag, campaigns := range parsed.Funnels {
		funnel, err := a.funnels.GetOrCreate(client.Slug, tag, models.FunnelCustom)
		if err != nil {
			return nil, err
		}

		metrics := AggregateCampaigns(campaigns)

		var product *models.FunnelProduct
		if a.products != nil {
			product = a.products.MainProduct(tag)
			if product != nil {
				metrics.ApplyProductThresholds(product)
			}
		}

		status, alerts, opportunities := ClassifyFunnelHealth(funnel, metrics, product)

		fd := &models.FunnelData{
			FunnelTag:     tag,
			FunnelName:    funnel.Name,
			FunnelType:    funnel.Type,
			ClientSlug:    client.Slug,
			Metrics:       metrics,
			Campaigns:     campaigns,
			Status:        status,
			Alerts:        alerts,
			Opportunities: opportunities,
			Product:       product,
		}
		if product != nil {
			fd.ProductName = product.Name
			fd.ProductPrice = product.Price
		}
		funnelsData[tag] = fd
	}

	totals := AggregateCampaigns(parsed.Campaigns)

	a.logger.Debug("client aggregated",
		zap.String("client", client.Slug),
		zap.Int("campaigns", len(parsed.Campaigns)),
		zap.Int("funnels", len(funnelsData)),
		zap.Int("untagged", len(parsed.Untagged)))

	return &models.ClientData{
		Client:            client,
		Metrics:           totals,
		Funnels:           funnelsData,
		AllCampaigns:      parsed.Campaigns,
		UntaggedCampaigns: parsed.Untagged,
		UpdatedAt:         time.Now().UTC(),
	}, nil
}
