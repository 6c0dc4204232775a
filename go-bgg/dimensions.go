package bgg

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	cmPerInch  = 2.54
	kgPerPound = 0.453592
)

var (
	metricLengthPattern = regexp.MustCompile(`(?i)(?:^|[\d\s.])(?:cm|mm|m)\b`)
	metricWeightPattern = regexp.MustCompile(`(?i)(?:^|[\d\s.])(?:kg|g)\b`)
	numberPattern       = regexp.MustCompile(`[-+]?\d*\.?\d+`)
)

// InchesToCm converts inches to centimetres rounded to one decimal.
func InchesToCm(in float64) float64 {
	return round1(in * cmPerInch)
}

// PoundsToKg converts pounds to kilograms rounded to one decimal.
func PoundsToKg(lb float64) float64 {
	return round1(lb * kgPerPound)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// isAbsent reports whether BGG left a measurement empty or zeroed.
func isAbsent(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return true
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f == 0 {
		return true
	}
	return false
}

// lengthToMetric renders a raw length as centimetres. Values that already
// carry a metric unit are returned unchanged.
func lengthToMetric(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if isAbsent(raw) {
		return "", false
	}
	if metricLengthPattern.MatchString(raw) {
		return raw, true
	}
	n, ok := leadingNumber(raw)
	if !ok {
		return "", false
	}
	return formatNumber(InchesToCm(n)) + " cm", true
}

// WeightToMetric renders a raw weight as kilograms. Values that already
// carry a metric unit are returned unchanged.
func WeightToMetric(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if isAbsent(raw) {
		return "", false
	}
	if metricWeightPattern.MatchString(raw) {
		return raw, true
	}
	n, ok := leadingNumber(raw)
	if !ok {
		return "", false
	}
	return formatNumber(PoundsToKg(n)) + " kg", true
}

func leadingNumber(raw string) (float64, bool) {
	m := numberPattern.FindString(raw)
	if m == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// BuildDimensions renders the present box dimensions as
// "W: x cm × L: y cm × D: z cm". HasDimensions is false when none is present.
func BuildDimensions(width, length, depth string) *Dimensions {
	parts := make([]string, 0, 3)
	for _, d := range []struct {
		label string
		raw   string
	}{
		{"W", width},
		{"L", length},
		{"D", depth},
	} {
		if v, ok := lengthToMetric(d.raw); ok {
			parts = append(parts, d.label+": "+v)
		}
	}
	if len(parts) == 0 {
		return &Dimensions{}
	}
	return &Dimensions{
		Metric:        strings.Join(parts, " × "),
		HasDimensions: true,
	}
}

// BuildWeightInfo renders a version weight in kilograms, or nil when absent.
func BuildWeightInfo(raw string) *WeightInfo {
	v, ok := WeightToMetric(raw)
	if !ok {
		return nil
	}
	return &WeightInfo{
		Metric:   v,
		RawValue: strings.TrimSpace(raw),
	}
}
