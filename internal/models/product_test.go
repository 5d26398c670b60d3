package models

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestFinalize_DerivesBreakevenAndTarget(t *testing.T) {
	p := &FunnelProduct{
		Name:               "Challenge Offer",
		Price:              100,
		PlatformFeePercent: 10,
	}
	p.Finalize()

	if !almostEqual(p.BreakevenCPP, 90) {
		t.Errorf("BreakevenCPP = %v, want 90", p.BreakevenCPP)
	}
	if !almostEqual(p.TargetCPP, 45) {
		t.Errorf("TargetCPP = %v, want 45", p.TargetCPP)
	}
	if p.TargetROAS != 2.0 {
		t.Errorf("TargetROAS = %v, want default 2.0", p.TargetROAS)
	}
	if p.Currency != "BRL" {
		t.Errorf("Currency = %q, want BRL", p.Currency)
	}
	if p.FunnelPosition != FunnelPositionMain {
		t.Errorf("FunnelPosition = %q, want main", p.FunnelPosition)
	}
	if p.LTVMonths != 12 {
		t.Errorf("LTVMonths = %v, want 12", p.LTVMonths)
	}
}

func TestFinalize_ExplicitTargetCPPKept(t *testing.T) {
	p := &FunnelProduct{Price: 100, TargetCPP: 30}
	p.Finalize()

	if p.TargetCPP != 30 {
		t.Errorf("TargetCPP = %v, want explicit 30", p.TargetCPP)
	}
}

func TestNetRevenuePerSale_AllDeductions(t *testing.T) {
	p := &FunnelProduct{
		Price:                      200,
		PlatformFeePercent:         5,
		AffiliateCommissionPercent: 10,
		CostOfGoods:                20,
		FulfillmentCost:            10,
	}

	// 200 - 10 (fee) - 20 (affiliate) - 20 (goods) - 10 (fulfillment) = 140
	if got := p.NetRevenuePerSale(); !almostEqual(got, 140) {
		t.Errorf("NetRevenuePerSale = %v, want 140", got)
	}
}

func TestMaxCPPForROAS(t *testing.T) {
	p := &FunnelProduct{Price: 100}

	if got := p.MaxCPPForROAS(2.0); !almostEqual(got, 50) {
		t.Errorf("MaxCPPForROAS(2.0) = %v, want 50", got)
	}
	if got := p.MaxCPPForROAS(0); got != 0 {
		t.Errorf("MaxCPPForROAS(0) = %v, want 0", got)
	}

	loss := &FunnelProduct{Price: 10, CostOfGoods: 50}
	if got := loss.MaxCPPForROAS(2.0); got != 0 {
		t.Errorf("negative-margin MaxCPPForROAS = %v, want 0", got)
	}
}

func TestEvaluateCPP(t *testing.T) {
	p := &FunnelProduct{BreakevenCPP: 40, TargetCPP: 20}

	tests := []struct {
		cpp  float64
		want MetricLevel
	}{
		{0, LevelNoData},
		{-5, LevelNoData},
		{15, LevelExcellent},
		{20, LevelExcellent},
		{35, LevelGood},
		{40, LevelGood},
		{45, LevelWarning}, // within 20% past breakeven
		{48, LevelWarning},
		{49, LevelCritical},
		{100, LevelCritical},
	}
	for _, tc := range tests {
		if got := p.EvaluateCPP(tc.cpp); got != tc.want {
			t.Errorf("EvaluateCPP(%v) = %q, want %q", tc.cpp, got, tc.want)
		}
	}
}
