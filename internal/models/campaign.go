// Package models defines the domain entities shared across the service:
// raw and parsed campaign records, funnel configurations, product economics
// and the aggregated metric value objects produced by each aggregation run.
package models

// CampaignType classifies a campaign by the audience/budget strategy encoded
// in its name. Unrecognized names map to CampaignTypeUnknown.
type CampaignType string

const (
	CampaignTypeCold    CampaignType = "cold" // cold traffic
	CampaignTypeWarm    CampaignType = "warm" // warm/engaged audience
	CampaignTypeRet     CampaignType = "retargeting"
	CampaignTypeLLA     CampaignType = "lookalike"
	CampaignTypeCBO     CampaignType = "cbo" // campaign budget optimization
	CampaignTypeABO     CampaignType = "abo" // ad set budget optimization
	CampaignTypeTest    CampaignType = "test"
	CampaignTypeScale   CampaignType = "scale"
	CampaignTypeUnknown CampaignType = "unknown"
)

// UntaggedFunnel is the sentinel funnel tag assigned to campaigns whose name
// carries no {TAG} marker.
const UntaggedFunnel = "UNTAGGED"

// EffectiveStatusActive is the Meta effective_status value for a delivering campaign.
const EffectiveStatusActive = "ACTIVE"

// CampaignMetrics holds the per-campaign numbers extracted from an insights
// payload. Fields the payload did not report stay zero; revenue and reach are
// populated by attribution enrichment when available.
type CampaignMetrics struct {
	Spend       float64 `json:"spend"`
	Revenue     float64 `json:"revenue,omitempty"`
	Impressions int64   `json:"impressions"`
	Reach       int64   `json:"reach,omitempty"`
	Clicks      int64   `json:"clicks"`
	CTR         float64 `json:"ctr"`
	CPC         float64 `json:"cpc"`
	Purchases   float64 `json:"purchases,omitempty"`
	Leads       float64 `json:"leads,omitempty"`
	ROAS        float64 `json:"roas,omitempty"`
	CPP         float64 `json:"cpp,omitempty"`
}

// RawCampaign is one campaign record as supplied by the ingestion boundary.
// Budgets are already converted to whole currency units and insight numbers
// are already parsed; the core never sees Meta's string-encoded wire format.
type RawCampaign struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Status          string        `json:"status"`
	EffectiveStatus string        `json:"effective_status"`
	DailyBudget     float64       `json:"daily_budget"`
	LifetimeBudget  float64       `json:"lifetime_budget"`
	Objective       string        `json:"objective"`
	Insights        *InsightsData `json:"insights,omitempty"`
}

// InsightsData mirrors the shape of a Meta insights block after numeric
// normalization. Only the first entry of Data is consulted.
type InsightsData struct {
	Data []InsightRow `json:"data"`
}

// InsightRow is a single insights window for a campaign.
type InsightRow struct {
	Spend        float64       `json:"spend"`
	Impressions  int64         `json:"impressions"`
	Reach        int64         `json:"reach"`
	Clicks       int64         `json:"clicks"`
	CTR          float64       `json:"ctr"`
	CPC          float64       `json:"cpc"`
	PurchaseROAS []ActionValue `json:"purchase_roas,omitempty"`
	Actions      []ActionValue `json:"actions,omitempty"`
	ActionValues []ActionValue `json:"action_values,omitempty"`
}

// ActionValue is Meta's generic {action_type, value} pair used for both
// conversion counts and monetary action values.
type ActionValue struct {
	ActionType string  `json:"action_type,omitempty"`
	Value      float64 `json:"value"`
}

// ParsedCampaign is the immutable result of parsing one RawCampaign. It is
// built fresh on every aggregation pass and is read-only downstream.
type ParsedCampaign struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	FunnelTag       string          `json:"funnel_tag"`
	CampaignType    CampaignType    `json:"campaign_type"`
	Description     string          `json:"description"`
	Status          string          `json:"status"`
	EffectiveStatus string          `json:"effective_status"`
	DailyBudget     float64         `json:"daily_budget"`
	LifetimeBudget  float64         `json:"lifetime_budget"`
	Objective       string          `json:"objective"`
	Metrics         CampaignMetrics `json:"metrics"`
}

// IsActive reports whether the campaign is currently delivering.
func (c ParsedCampaign) IsActive() bool {
	return c.EffectiveStatus == EffectiveStatusActive
}

// HasValidTag reports whether the campaign name carried a funnel tag.
func (c ParsedCampaign) HasValidTag() bool {
	return c.FunnelTag != UntaggedFunnel
}
