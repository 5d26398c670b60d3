package models

import "time"

// FunnelStatus is the overall health of a funnel after classification.
type FunnelStatus string

const (
	StatusHealthy  FunnelStatus = "healthy"
	StatusWarning  FunnelStatus = "warning"
	StatusCritical FunnelStatus = "critical"
)

// FunnelData bundles one funnel's aggregation result: rolled-up metrics, the
// campaigns behind them, the health classification and the ordered
// alert/opportunity messages produced by the classifier.
type FunnelData struct {
	FunnelTag     string           `json:"funnel_tag"`
	FunnelName    string           `json:"funnel_name"`
	FunnelType    FunnelType       `json:"funnel_type"`
	ClientSlug    string           `json:"client_slug"`
	Metrics       AggregatedMetrics `json:"metrics"`
	Campaigns     []ParsedCampaign `json:"campaigns"`
	Status        FunnelStatus     `json:"status"`
	Alerts        []string         `json:"alerts"`
	Opportunities []string         `json:"opportunities"`

	Product      *FunnelProduct `json:"-"`
	ProductName  string         `json:"product_name,omitempty"`
	ProductPrice float64        `json:"product_price,omitempty"`
}

// ClientData is the result of one aggregation run over a client's campaigns.
// Client-level metrics are computed independently over the full campaign
// list, not summed from the per-funnel aggregates.
type ClientData struct {
	Client            Client                 `json:"client"`
	Metrics           AggregatedMetrics      `json:"metrics"`
	Funnels           map[string]*FunnelData `json:"funnels"`
	AllCampaigns      []ParsedCampaign       `json:"all_campaigns"`
	UntaggedCampaigns []ParsedCampaign       `json:"untagged_campaigns"`
	UpdatedAt         time.Time              `json:"updated_at"`
}
