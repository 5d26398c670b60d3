// Package parser extracts funnel tags and campaign metadata from free-text
// campaign names.
//
// Naming convention:
//
//	{FUNNEL_TAG} - CAMPAIGN_TYPE - Description
//
// Examples:
//
//	{VSL_CHALLENGE} - COLD - Broad Interest
//	{WEBINAR_LIVE} - RET - Viewers 50%
//	{HIGH_TICKET} - COLD - Lookalike 1%
//
// Parsing is a pure transform: it never fails, it only falls back to the
// UNTAGGED / unknown defaults.
package parser

import (
	"regexp"
	"strings"

	"github.com/funnelops/funnelboard/internal/models"
)

var (
	// tagPattern matches the first {TAG} in a campaign name. Nested braces
	// are not supported.
	tagPattern = regexp.MustCompile(`\{([^}]+)\}`)

	// segmentDelimiters splits the remainder on "-", en-dash or "|",
	// each optionally surrounded by whitespace.
	segmentDelimiters = regexp.MustCompile(`\s*[-–|]\s*`)
)

// typeKeywords maps recognized name segments to campaign types. Portuguese
// spellings are kept for agencies naming campaigns in pt-BR.
var typeKeywords = map[string]models.CampaignType{
	"COLD":        models.CampaignTypeCold,
	"WARM":        models.CampaignTypeWarm,
	"RET":         models.CampaignTypeRet,
	"RETARGETING": models.CampaignTypeRet,
	"LLA":         models.CampaignTypeLLA,
	"LOOKALIKE":   models.CampaignTypeLLA,
	"CBO":         models.CampaignTypeCBO,
	"ABO":         models.CampaignTypeABO,
	"TEST":        models.CampaignTypeTest,
	"TESTE":       models.CampaignTypeTest,
	"SCALE":       models.CampaignTypeScale,
	"ESCALA":      models.CampaignTypeScale,
}

// ParseName splits a campaign name into funnel tag, campaign type and
// description.
//
// The first {TAG} wins and is upper-cased; names without one get the
// UNTAGGED sentinel. The remainder is split on delimiters and scanned left
// to right: when several segments are type keywords the last one wins.
// Non-keyword segments join into the description; when none remain the
// description falls back to the full original name.
func ParseName(name string) (funnelTag string, campaignType models.CampaignType, description string) {
	funnelTag = models.UntaggedFunnel
	if m := tagPattern.FindStringSubmatch(name); m != nil {
		funnelTag = strings.ToUpper(m[1])
	}

	remaining := strings.TrimSpace(tagPattern.ReplaceAllString(name, ""))

	campaignType = models.CampaignTypeUnknown
	var descriptionParts []string
	for _, part := range segmentDelimiters.Split(remaining, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if ct, ok := typeKeywords[strings.ToUpper(part)]; ok {
			campaignType = ct
		} else {
			descriptionParts = append(descriptionParts, part)
		}
	}

	description = strings.Join(descriptionParts, " - ")
	if description == "" {
		description = name
	}
	return funnelTag, campaignType, description
}

// ExtractFunnelTag returns the funnel tag embedded in a campaign name, or
// the UNTAGGED sentinel.
func ExtractFunnelTag(name string) string {
	if m := tagPattern.FindStringSubmatch(name); m != nil {
		return strings.ToUpper(m[1])
	}
	return models.UntaggedFunnel
}

// HasFunnelTag reports whether the campaign name carries a {TAG}.
func HasFunnelTag(name string) bool {
	return tagPattern.MatchString(name)
}

// ParseCampaign builds an immutable ParsedCampaign from one raw record,
// extracting the insight metrics when present.
func ParseCampaign(raw models.RawCampaign) models.ParsedCampaign {
	tag, ct, desc := ParseName(raw.Name)

	var metrics models.CampaignMetrics
	if raw.Insights != nil && len(raw.Insights.Data) > 0 {
		row := raw.Insights.Data[0]
		metrics.Spend = row.Spend
		metrics.Impressions = row.Impressions
		metrics.Reach = row.Reach
		metrics.Clicks = row.Clicks
		metrics.CTR = row.CTR
		metrics.CPC = row.CPC

		if len(row.PurchaseROAS) > 0 {
			metrics.ROAS = row.PurchaseROAS[0].Value
		}
		for _, action := range row.Actions {
			switch action.ActionType {
			case "purchase":
				metrics.Purchases = action.Value
			case "lead":
				metrics.Leads = action.Value
			}
		}
		for _, av := range row.ActionValues {
			if av.ActionType == "purchase" {
				metrics.Revenue = av.Value
			}
		}
		if metrics.Spend > 0 && metrics.Purchases > 0 {
			metrics.CPP = metrics.Spend / metrics.Purchases
		}
	}

	status := raw.Status
	if status == "" {
		status = "UNKNOWN"
	}
	effective := raw.EffectiveStatus
	if effective == "" {
		effective = "UNKNOWN"
	}

	return models.ParsedCampaign{
		ID:              raw.ID,
		Name:            raw.Name,
		FunnelTag:       tag,
		CampaignType:    ct,
		Description:     desc,
		Status:          status,
		EffectiveStatus: effective,
		DailyBudget:     raw.DailyBudget,
		LifetimeBudget:  raw.LifetimeBudget,
		Objective:       raw.Objective,
		Metrics:         metrics,
	}
}

// Result groups a full parsing pass: the parsed list in input order, the
// campaigns bucketed by funnel tag and the untagged remainder. Untagged
// campaigns never appear in a funnel bucket.
type Result struct {
	Campaigns []models.ParsedCampaign
	Funnels   map[string][]models.ParsedCampaign
	Untagged  []models.ParsedCampaign
}

// ParseCampaigns parses every raw record and groups the results by funnel.
func ParseCampaigns(raw []models.RawCampaign) Result {
	res := Result{
		Funnels: make(map[string][]models.ParsedCampaign),
	}
	for _, rc := range raw {
		parsed := ParseCampaign(rc)
		res.Campaigns = append(res.Campaigns, parsed)
		if parsed.HasValidTag() {
			res.Funnels[parsed.FunnelTag] = append(res.Funnels[parsed.FunnelTag], parsed)
		} else {
			res.Untagged = append(res.Untagged, parsed)
		}
	}
	return res
}

// CampaignsByType filters a parsed list down to one campaign type.
func CampaignsByType(campaigns []models.ParsedCampaign, ct models.CampaignType) []models.ParsedCampaign {
	var out []models.ParsedCampaign
	for _, c := range campaigns {
		if c.CampaignType == ct {
			out = append(out, c)
		}
	}
	return out
}
