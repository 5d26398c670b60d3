// Package ingest normalizes raw Meta Graph API campaign payloads into the
// typed records the aggregation core consumes. Graph API responses encode
// most numbers as strings and budgets in minor currency units; everything
// downstream of this package works with parsed floats in whole currency
// units.
package ingest

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/funnelops/funnelboard/internal/models"
)

// flexNumber decodes a JSON value that may arrive as a number or as a
// string-encoded number. Empty and null values decode to zero.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*n = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("parse number %q: %w", s, err)
		}
		*n = flexNumber(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = flexNumber(f)
	return nil
}

// wireCampaign mirrors one campaign object from a Graph API
// /act_{id}/campaigns?fields=...,insights response.
type wireCampaign struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Status          string        `json:"status"`
	EffectiveStatus string        `json:"effective_status"`
	DailyBudget     flexNumber    `json:"daily_budget"`
	LifetimeBudget  flexNumber    `json:"lifetime_budget"`
	Objective       string        `json:"objective"`
	Insights        *wireInsights `json:"insights"`
}

type wireInsights struct {
	Data []wireInsightRow `json:"data"`
}

type wireInsightRow struct {
	Spend        flexNumber   `json:"spend"`
	Impressions  flexNumber   `json:"impressions"`
	Reach        flexNumber   `json:"reach"`
	Clicks       flexNumber   `json:"clicks"`
	CTR          flexNumber   `json:"ctr"`
	CPC          flexNumber   `json:"cpc"`
	PurchaseROAS []wireAction `json:"purchase_roas"`
	Actions      []wireAction `json:"actions"`
	ActionValues []wireAction `json:"action_values"`
}

type wireAction struct {
	ActionType string     `json:"action_type"`
	Value      flexNumber `json:"value"`
}

// wirePayload accepts both a bare campaign array and the Graph API's
// {"data": [...]} envelope.
type wirePayload struct {
	Data []wireCampaign `json:"data"`
}

// DecodeMetaCampaigns parses a Meta campaigns+insights JSON payload into
// normalized RawCampaign records: string numbers parsed, budgets converted
// from minor currency units to whole units.
func DecodeMetaCampaigns(payload []byte) ([]models.RawCampaign, error) {
	var campaigns []wireCampaign
	if err := json.Unmarshal(payload, &campaigns); err != nil {
		var envelope wirePayload
		if envErr := json.Unmarshal(payload, &envelope); envErr != nil {
			return nil, fmt.Errorf("decode campaigns payload: %w", err)
		}
		campaigns = envelope.Data
	}

	out := make([]models.RawCampaign, 0, len(campaigns))
	for _, wc := range campaigns {
		out = append(out, normalizeCampaign(wc))
	}
	return out, nil
}

func normalizeCampaign(wc wireCampaign) models.RawCampaign {
	raw := models.RawCampaign{
		ID:              wc.ID,
		Name:            wc.Name,
		Status:          wc.Status,
		EffectiveStatus: wc.EffectiveStatus,
		DailyBudget:     float64(wc.DailyBudget) / 100,
		LifetimeBudget:  float64(wc.LifetimeBudget) / 100,
		Objective:       wc.Objective,
	}

	if wc.Insights == nil || len(wc.Insights.Data) == 0 {
		return raw
	}

	insights := &models.InsightsData{Data: make([]models.InsightRow, 0, len(wc.Insights.Data))}
	for _, row := range wc.Insights.Data {
		insights.Data = append(insights.Data, models.InsightRow{
			Spend:        float64(row.Spend),
			Impressions:  int64(row.Impressions),
			Reach:        int64(row.Reach),
			Clicks:       int64(row.Clicks),
			CTR:          float64(row.CTR),
			CPC:          float64(row.CPC),
			PurchaseROAS: normalizeActions(row.PurchaseROAS),
			Actions:      normalizeActions(row.Actions),
			ActionValues: normalizeActions(row.ActionValues),
		})
	}
	raw.Insights = insights
	return raw
}

func normalizeActions(actions []wireAction) []models.ActionValue {
	if len(actions) == 0 {
		return nil
	}
	out := make([]models.ActionValue, 0, len(actions))
	for _, a := range actions {
		out = append(out, models.ActionValue{
			ActionType: a.ActionType,
			Value:      float64(a.Value),
		})
	}
	return out
}
