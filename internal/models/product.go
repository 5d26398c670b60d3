package models

// FunnelPositionMain is the conventional position of the front-end offer in a
// funnel. Other positions follow the "upsell_1", "downsell", "order_bump"
// convention from the checkout platforms.
const FunnelPositionMain = "main"

// FunnelProduct ties checkout-platform product economics to a funnel tag so
// CPP can be judged against real margins instead of generic thresholds.
//
// BreakevenCPP and TargetCPP are derived once by Finalize; mutating price or
// fee fields afterwards requires rebuilding the product.
type FunnelProduct struct {
	ID                string  `json:"id" yaml:"id"`
	Name              string  `json:"name" yaml:"name"`
	Platform          string  `json:"platform" yaml:"platform"` // hotmart, kiwify, stripe, whop, clickfunnels
	PlatformProductID string  `json:"platform_product_id" yaml:"platform_product_id"`
	Price             float64 `json:"price" yaml:"price"`
	Currency          string  `json:"currency" yaml:"currency"`

	FunnelTag      string `json:"funnel_tag" yaml:"funnel_tag"`
	FunnelPosition string `json:"funnel_position" yaml:"funnel_position"`

	CostOfGoods                float64 `json:"cost_of_goods" yaml:"cost_of_goods"`
	FulfillmentCost            float64 `json:"fulfillment_cost" yaml:"fulfillment_cost"`
	PlatformFeePercent         float64 `json:"platform_fee_percent" yaml:"platform_fee_percent"`
	AffiliateCommissionPercent float64 `json:"affiliate_commission_percent" yaml:"affiliate_commission_percent"`

	AverageLTV float64 `json:"average_ltv" yaml:"average_ltv"`
	LTVMonths  int     `json:"ltv_months" yaml:"ltv_months"`

	TargetCPP    float64 `json:"target_cpp" yaml:"target_cpp"`
	TargetROAS   float64 `json:"target_roas" yaml:"target_roas"`
	BreakevenCPP float64 `json:"breakeven_cpp" yaml:"breakeven_cpp"`
}

// Finalize fills in defaults and derives breakeven and target CPP from the
// product economics. It must be called once after construction or config load.
func (p *FunnelProduct) Finalize() {
	if p.Currency == "" {
		p.Currency = "BRL"
	}
	if p.FunnelPosition == "" {
		p.FunnelPosition = FunnelPositionMain
	}
	if p.LTVMonths == 0 {
		p.LTVMonths = 12
	}
	if p.TargetROAS == 0 {
		p.TargetROAS = 2.0
	}
	p.BreakevenCPP = p.NetRevenuePerSale()
	if p.TargetCPP == 0 {
		p.TargetCPP = p.BreakevenCPP / p.TargetROAS
	}
}

// NetRevenuePerSale is the revenue kept from one sale after platform fees,
// affiliate commissions, goods and fulfillment costs.
func (p *FunnelProduct) NetRevenuePerSale() float64 {
	net := p.Price * (1 - p.PlatformFeePercent/100)
	net -= p.Price * (p.AffiliateCommissionPercent / 100)
	net -= p.CostOfGoods
	net -= p.FulfillmentCost
	return net
}

// MaxCPPForROAS returns the highest CPP that still hits the given ROAS
// target. A non-positive net revenue or target yields 0 so downstream
// comparisons stay well-formed.
func (p *FunnelProduct) MaxCPPForROAS(targetROAS float64) float64 {
	net := p.NetRevenuePerSale()
	if net <= 0 || targetROAS <= 0 {
		return 0
	}
	return net / targetROAS
}

// EvaluateCPP grades a realized CPP against the product's economics:
// no_data for non-positive CPP, excellent at or under target, good at or
// under breakeven, warning within 20% past breakeven, critical beyond.
func (p *FunnelProduct) EvaluateCPP(currentCPP float64) MetricLevel {
	if currentCPP <= 0 {
		return LevelNoData
	}
	switch {
	case p.TargetCPP > 0 && currentCPP <= p.TargetCPP:
		return LevelExcellent
	case p.BreakevenCPP > 0 && currentCPP <= p.BreakevenCPP:
		return LevelGood
	case p.BreakevenCPP > 0 && currentCPP <= p.BreakevenCPP*1.2:
		return LevelWarning
	default:
		return LevelCritical
	}
}
