package models

import (
	"fmt"
	"strings"
)

// FunnelType identifies the marketing funnel archetype a tag belongs to.
// Each type carries its own default KPI threshold table.
type FunnelType string

const (
	FunnelVSLChallenge     FunnelType = "vsl_challenge"
	FunnelWebinarLive      FunnelType = "webinar_live"
	FunnelWebinarEvergreen FunnelType = "webinar_evergreen"
	FunnelHighTicket       FunnelType = "high_ticket"
	FunnelLowTicket        FunnelType = "low_ticket"
	FunnelLeadGen          FunnelType = "lead_gen"
	FunnelEcommerce        FunnelType = "ecommerce"
	FunnelAppInstall       FunnelType = "app_install"
	FunnelCustom           FunnelType = "custom"
)

// FunnelTypes lists every valid funnel type, in declaration order.
func FunnelTypes() []FunnelType {
	return []FunnelType{
		FunnelVSLChallenge,
		FunnelWebinarLive,
		FunnelWebinarEvergreen,
		FunnelHighTicket,
		FunnelLowTicket,
		FunnelLeadGen,
		FunnelEcommerce,
		FunnelAppInstall,
		FunnelCustom,
	}
}

// ParseFunnelType validates a funnel type string from configuration.
// An unknown type is a configuration error and must fail the load rather
// than silently falling back to a wrong threshold table.
func ParseFunnelType(s string) (FunnelType, error) {
	if s == "" {
		return FunnelCustom, nil
	}
	normalized := strings.ToLower(s)
	for _, ft := range FunnelTypes() {
		if normalized == string(ft) {
			return ft, nil
		}
	}
	return "", fmt.Errorf("unknown funnel type %q", s)
}

// MetricLevel is the outcome of evaluating a metric against thresholds.
type MetricLevel string

const (
	LevelExcellent MetricLevel = "excellent"
	LevelGood      MetricLevel = "good"
	LevelWarning   MetricLevel = "warning"
	LevelCritical  MetricLevel = "critical"
	LevelUnknown   MetricLevel = "unknown"
	LevelNoData    MetricLevel = "no_data"
)

// defaultThresholds supplies per-type KPI targets applied when a funnel
// configuration does not define its own. Keys follow "{metric}_{level}" plus
// a handful of informational min/max bounds carried through for the UI.
var defaultThresholds = map[FunnelType]map[string]float64{
	FunnelVSLChallenge: {
		"roas_excellent":    3.0,
		"roas_good":         2.5,
		"roas_warning":      2.0,
		"roas_critical":     1.5,
		"cpp_excellent":     15,
		"cpp_good":          20,
		"cpp_warning":       30,
		"cpp_critical":      40,
		"ctr_min":           1.5,
		"frequency_max":     2.5,
		"checkout_rate_min": 5,
		"close_rate_min":    50,
	},
	FunnelWebinarLive: {
		"cpl_excellent":  10,
		"cpl_good":       15,
		"cpl_warning":    25,
		"cpl_critical":   35,
		"show_rate_min":  30,
		"close_rate_min": 5,
		"ctr_min":        1.0,
		"frequency_max":  3.0,
	},
	FunnelHighTicket: {
		"roas_excellent":     5.0,
		"roas_good":          3.5,
		"roas_warning":       2.5,
		"roas_critical":      1.5,
		"cac_max":            500,
		"ltv_min":            2500,
		"call_book_rate_min": 10,
		"call_show_rate_min": 70,
		"close_rate_min":     20,
	},
	FunnelLowTicket: {
		"roas_excellent": 4.0,
		"roas_good":      3.0,
		"roas_warning":   2.0,
		"roas_critical":  1.2,
		"aov_min":        47,
		"frequency_max":  3.5,
		"ctr_min":        2.0,
	},
	FunnelLeadGen: {
		"cpl_excellent":            5,
		"cpl_good":                 10,
		"cpl_warning":              20,
		"cpl_critical":             30,
		"lead_quality_min":         60,
		"ctr_min":                  1.5,
		"form_completion_rate_min": 30,
	},
	FunnelEcommerce: {
		"roas_excellent":       5.0,
		"roas_good":            3.5,
		"roas_warning":         2.5,
		"roas_critical":        1.5,
		"aov_min":              50,
		"cart_abandon_rate_max": 70,
		"frequency_max":        4.0,
	},
}

// DefaultThresholds returns a copy of the default threshold table for a
// funnel type. Types without a table yield an empty map.
func DefaultThresholds(ft FunnelType) map[string]float64 {
	src := defaultThresholds[ft]
	dst := make(map[string]float64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// higherIsBetter and lowerIsBetter fix metric polarity by name.
// Polarity is not configurable per evaluation.
var (
	higherIsBetter = map[string]bool{
		"roas":          true,
		"ctr":           true,
		"close_rate":    true,
		"show_rate":     true,
		"checkout_rate": true,
	}
	lowerIsBetter = map[string]bool{
		"cpl":               true,
		"cpp":               true,
		"cac":               true,
		"frequency":         true,
		"cart_abandon_rate": true,
	}
)

// Funnel is the per-client configuration entity for one {TAG}. Thresholds
// are fixed at construction; they are not recomputed afterwards.
type Funnel struct {
	ID          string             `json:"id" yaml:"id"`
	Name        string             `json:"name" yaml:"name"`
	Tag         string             `json:"tag" yaml:"tag"`
	Type        FunnelType         `json:"type" yaml:"type"`
	ClientSlug  string             `json:"client_slug" yaml:"client_slug"`
	Thresholds  map[string]float64 `json:"thresholds" yaml:"thresholds"`
	Description string             `json:"description,omitempty" yaml:"description,omitempty"`
	IsActive    bool               `json:"is_active" yaml:"is_active"`
}

// NewFunnel builds a funnel, populating thresholds from the per-type default
// table when none are supplied.
func NewFunnel(id, name, tag string, ft FunnelType, clientSlug string, thresholds map[string]float64) *Funnel {
	if len(thresholds) == 0 {
		thresholds = DefaultThresholds(ft)
	}
	return &Funnel{
		ID:         id,
		Name:       name,
		Tag:        tag,
		Type:       ft,
		ClientSlug: clientSlug,
		Thresholds: thresholds,
		IsActive:   true,
	}
}

// Threshold returns the configured value for "{metric}_{level}" and whether
// it exists. A zero value counts as absent, matching how the original
// configuration treated unset thresholds.
func (f *Funnel) Threshold(metric, level string) (float64, bool) {
	v, ok := f.Thresholds[metric+"_"+level]
	if !ok || v == 0 {
		return 0, false
	}
	return v, true
}

// EvaluateMetric grades a metric value against the funnel's thresholds.
//
// Higher-is-better metrics (roas, ctr, rates) pass excellent/good/warning on
// >= comparisons and reach critical only when a critical threshold exists and
// the value is strictly below it; otherwise the grade falls back to warning.
// Lower-is-better metrics (cpl, cpp, cac, frequency, cart_abandon_rate)
// mirror the logic with <= and >. Metrics outside both polarity sets grade
// as unknown.
func (f *Funnel) EvaluateMetric(metric string, value float64) MetricLevel {
	excellent, hasExcellent := f.Threshold(metric, "excellent")
	good, hasGood := f.Threshold(metric, "good")
	warning, hasWarning := f.Threshold(metric, "warning")
	critical, hasCritical := f.Threshold(metric, "critical")

	switch {
	case higherIsBetter[metric]:
		if hasExcellent && value >= excellent {
			return LevelExcellent
		}
		if hasGood && value >= good {
			return LevelGood
		}
		if hasWarning && value >= warning {
			return LevelWarning
		}
		if hasCritical && value < critical {
			return LevelCritical
		}
		return LevelWarning
	case lowerIsBetter[metric]:
		if hasExcellent && value <= excellent {
			return LevelExcellent
		}
		if hasGood && value <= good {
			return LevelGood
		}
		if hasWarning && value <= warning {
			return LevelWarning
		}
		if hasCritical && value > critical {
			return LevelCritical
		}
		return LevelWarning
	}
	return LevelUnknown
}
