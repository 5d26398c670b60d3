package models

// AggregatedMetrics is the numeric summary for a set of campaigns, either a
// single funnel or a whole client. It is a value object: built, derived once,
// then never mutated.
type AggregatedMetrics struct {
	Spend       float64 `json:"spend"`
	Revenue     float64 `json:"revenue"`
	Profit      float64 `json:"profit"`
	Impressions int64   `json:"impressions"`
	Reach       int64   `json:"reach"`
	Clicks      int64   `json:"clicks"`
	Purchases   float64 `json:"purchases"`
	Leads       float64 `json:"leads"`

	ROAS      float64 `json:"roas"`
	CPP       float64 `json:"cpp"`
	CPL       float64 `json:"cpl"`
	CTR       float64 `json:"ctr"`
	CPC       float64 `json:"cpc"`
	CPM       float64 `json:"cpm"`
	Frequency float64 `json:"frequency"`

	TotalCampaigns  int `json:"total_campaigns"`
	ActiveCampaigns int `json:"active_campaigns"`

	// Product-aware fields, set only when a product is bound to the funnel.
	ProductPrice float64     `json:"product_price"`
	BreakevenCPP float64     `json:"breakeven_cpp"`
	TargetCPP    float64     `json:"target_cpp"`
	CPPMargin    float64     `json:"cpp_margin"` // room left before breakeven
	CPPStatus    MetricLevel `json:"cpp_status,omitempty"`
}

// CalculateDerived computes every ratio from the summed totals. Each ratio is
// guarded so a zero denominator yields 0, never NaN or Inf. Profit is always
// revenue minus spend, even when both are zero.
func (m *AggregatedMetrics) CalculateDerived() {
	if m.Spend > 0 {
		if m.Revenue > 0 {
			m.ROAS = m.Revenue / m.Spend
		} else {
			m.ROAS = 0
		}
		if m.Purchases > 0 {
			m.CPP = m.Spend / m.Purchases
		}
		if m.Leads > 0 {
			m.CPL = m.Spend / m.Leads
		}
		if m.Clicks > 0 {
			m.CPC = m.Spend / float64(m.Clicks)
		}
		if m.Impressions > 0 {
			m.CPM = m.Spend / float64(m.Impressions) * 1000
		}
	}

	if m.Impressions > 0 {
		m.CTR = float64(m.Clicks) / float64(m.Impressions) * 100
		if m.Reach > 0 {
			m.Frequency = float64(m.Impressions) / float64(m.Reach)
		}
	}

	m.Profit = m.Revenue - m.Spend

	if m.BreakevenCPP > 0 && m.CPP > 0 {
		m.CPPMargin = m.BreakevenCPP - m.CPP
	}
}

// ApplyProductThresholds overlays product economics onto the metrics and
// grades the realized CPP against them. A nil product is a no-op.
func (m *AggregatedMetrics) ApplyProductThresholds(product *FunnelProduct) {
	if product == nil {
		return
	}

	m.ProductPrice = product.Price
	m.BreakevenCPP = product.BreakevenCPP
	if m.BreakevenCPP == 0 {
		m.BreakevenCPP = product.NetRevenuePerSale()
	}
	m.TargetCPP = product.TargetCPP
	if m.TargetCPP == 0 && product.TargetROAS > 0 {
		m.TargetCPP = m.BreakevenCPP / product.TargetROAS
	}

	if m.CPP > 0 {
		m.CPPStatus = product.EvaluateCPP(m.CPP)
		m.CPPMargin = m.BreakevenCPP - m.CPP
	}
}
